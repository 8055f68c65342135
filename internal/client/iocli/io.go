// Package iocli абстрагирует терминальный ввод-вывод CLI,
// чтобы команды можно было тестировать без настоящего stdin.
package iocli

//go:generate moq -out io_mock.go . IO

// IO — терминальный ввод-вывод команд
type IO interface {
	Println(a ...any)
	Printf(format string, a ...any)
	ReadInput(prompt string) (string, error)
	ReadPassword(prompt string) (string, error)
}
