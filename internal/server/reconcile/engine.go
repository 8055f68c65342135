// Package reconcile — серверный движок реконсиляции балансов.
// Принимает недоверенные клиентские заявки, ограничивает их потолком
// правдоподобия из пакета rates и применяет к авторитетному ledger
// единственным условным UPDATE. Никогда не отклоняет запрос из-за
// неправдоподобных цифр: заявка обрезается, факт обрезки логируется
// и уходит клиенту в диагностике.
package reconcile

import (
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iudanet/stablehand/internal/models"
	"github.com/iudanet/stablehand/internal/server/storage"
)

// Ошибки движка, различимые хендлерами.
var (
	// ErrUnknownUpgrade — идентификатор апгрейда не из каталога
	ErrUnknownUpgrade = errors.New("unknown upgrade")

	// ErrUpgradeOwned — апгрейд уже куплен этим аккаунтом
	ErrUpgradeOwned = errors.New("upgrade already owned")

	// ErrInsufficientFunds — на балансе не хватает на покупку;
	// трата не обрезается до остатка
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// maxApplyAttempts ограничивает перечитывания при проигрыше гонки за
// last_update_ts. Повторный конфликт практически недостижим: после
// перечитывания окно пересчитывается от нового timestamp.
const maxApplyAttempts = 3

// Engine применяет клиентские заявки к авторитетному ledger.
type Engine struct {
	ledgers storage.LedgerStorage
	logger  *slog.Logger
	now     func() time.Time
}

// New создаёт движок. Часы берутся системные; тесты подменяют поле now.
func New(ledgers storage.LedgerStorage, logger *slog.Logger) *Engine {
	return &Engine{
		ledgers: ledgers,
		logger:  logger,
		now:     time.Now,
	}
}

// Flags — по-валютные признаки обрезки заявки.
type Flags struct {
	Carrots       bool
	HorseShoes    bool
	GoldenCarrots bool
}

// Any сообщает, обрезана ли хоть одна валюта.
func (f Flags) Any() bool {
	return f.Carrots || f.HorseShoes || f.GoldenCarrots
}

// clampToBound обрезает заявку потолком правдоподобия по каждой валюте
// независимо и возвращает валидированную часть, перебор и флаги обрезки.
func clampToBound(claimed, bound models.Balances) (validated, overage models.Balances, clamped Flags) {
	validated = claimed

	if claimed.Carrots > bound.Carrots {
		validated.Carrots = bound.Carrots
		overage.Carrots = claimed.Carrots - bound.Carrots
		clamped.Carrots = true
	}
	if claimed.HorseShoes > bound.HorseShoes {
		validated.HorseShoes = bound.HorseShoes
		overage.HorseShoes = claimed.HorseShoes - bound.HorseShoes
		clamped.HorseShoes = true
	}
	if claimed.GoldenCarrots > bound.GoldenCarrots {
		validated.GoldenCarrots = bound.GoldenCarrots
		overage.GoldenCarrots = claimed.GoldenCarrots - bound.GoldenCarrots
		clamped.GoldenCarrots = true
	}

	return validated, overage, clamped
}

// isExtreme — перебор хотя бы по одной валюте больше десятикратного
// потолка. Такие заявки почти наверняка не баг клиентских часов,
// а подделка трафика.
func isExtreme(overage, bound models.Balances) bool {
	return overage.Carrots > 10*bound.Carrots ||
		overage.HorseShoes > 10*bound.HorseShoes ||
		overage.GoldenCarrots > 10*bound.GoldenCarrots
}

// clampNonNegative зануляет отрицательные значения заявки по каждой
// валюте: отрицательная "заработанная" дельта — мусорный инпут,
// а не способ списать чужой баланс.
func clampNonNegative(b models.Balances) models.Balances {
	if b.Carrots < 0 {
		b.Carrots = 0
	}
	if b.HorseShoes < 0 {
		b.HorseShoes = 0
	}
	if b.GoldenCarrots < 0 {
		b.GoldenCarrots = 0
	}
	return b
}

func efficiencyFloat(eff decimal.Decimal) float64 {
	f, _ := eff.Float64()
	return f
}
