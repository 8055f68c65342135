package iocli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// Stdio — ввод-вывод через настоящий терминал.
// Reader общий на все вызовы: новый bufio на каждый ReadInput терял бы
// буферизованный ввод между строками (play читает stdin в цикле).
type Stdio struct {
	in *bufio.Reader
}

func NewStdio() IO {
	return &Stdio{in: bufio.NewReader(os.Stdin)}
}

func (s *Stdio) Println(a ...any) {
	fmt.Println(a...)
}

func (s *Stdio) Printf(format string, a ...any) {
	fmt.Printf(format, a...)
}

func (s *Stdio) ReadInput(prompt string) (string, error) {
	if prompt != "" {
		fmt.Print(prompt)
	}

	line, err := s.in.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// ReadPassword читает пароль без эха. Читает с самого fd в обход
// буфера, поэтому пароль нельзя подать type-ahead-ом вместе с логином.
func (s *Stdio) ReadPassword(prompt string) (string, error) {
	if prompt != "" {
		fmt.Print(prompt)
	}

	secret, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(secret), nil
}
