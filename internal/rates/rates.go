// Package rates — единственный источник истины для всей экономической
// математики: пассивные и активные ставки производства по валютам,
// стоимость тапа, затухание офлайн-начислений. Пакет импортируют и
// клиентский кошелёк, и серверный движок реконсиляции, поэтому константы
// не могут разъехаться между двумя сторонами протокола.
package rates

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iudanet/stablehand/internal/models"
)

// Границы офлайн-окна и потолок кликов.
const (
	MinOfflineSeconds int64 = 300   // окна короче не начисляются и не сжигаются
	MaxOfflineSeconds int64 = 86400 // дольше суток отсутствия время не накапливается
	MaxClickRate      int64 = 10    // правдоподобный потолок кликов в секунду
)

// Базовые ставки производства, единиц валюты в секунду.
// decimal, а не float64: floor(14400 × 0.5 × 0.7) обязан быть ровно 5040,
// в двоичном float это 5039.999...
var (
	idleCarrots = decimal.RequireFromString("0.5")
	idleShoes   = decimal.RequireFromString("0.1")
	idleGolden  = decimal.RequireFromString("0.02")

	activeCarrots = decimal.RequireFromString("2.0")
	activeShoes   = decimal.RequireFromString("0.5")
	activeGolden  = decimal.RequireFromString("0.1")

	clickValueBase  = decimal.NewFromInt(1)
	productionBoost = decimal.RequireFromString("2.0")
)

// Ступени офлайн-эффективности.
var (
	effFull    = decimal.NewFromInt(1)
	effMedium  = decimal.RequireFromString("0.7")
	effHalf    = decimal.RequireFromString("0.5")
	effMinimal = decimal.RequireFromString("0.3")
)

// Table — ставки производства в единицах валюты за секунду.
type Table struct {
	Carrots       decimal.Decimal
	HorseShoes    decimal.Decimal
	GoldenCarrots decimal.Decimal
}

// PerHour пересчитывает ставки в единицы за час (для отображения клиенту).
func (t Table) PerHour() Table {
	hour := decimal.NewFromInt(3600)
	return Table{
		Carrots:       t.Carrots.Mul(hour),
		HorseShoes:    t.HorseShoes.Mul(hour),
		GoldenCarrots: t.GoldenCarrots.Mul(hour),
	}
}

// IdleRates возвращает пассивные ставки с учётом апгрейдов аккаунта.
// Морковки имеют ненулевую базовую ставку; подковы и золотые морковки
// производятся только после соответствующего анлока. Production boost
// умножает только морковки.
func IdleRates(up models.Upgrades) Table {
	t := Table{
		Carrots:       idleCarrots,
		HorseShoes:    decimal.Zero,
		GoldenCarrots: decimal.Zero,
	}
	if up.ProductionBoost {
		t.Carrots = t.Carrots.Mul(productionBoost)
	}
	if up.HorseShoesUnlocked {
		t.HorseShoes = idleShoes
	}
	if up.GoldenCarrotsUnlocked {
		t.GoldenCarrots = idleGolden
	}
	return t
}

// ActiveRates возвращает ставки активной игры. Они независимы от пассивных
// и выше их; гейтятся и умножаются теми же флагами апгрейдов.
func ActiveRates(up models.Upgrades) Table {
	t := Table{
		Carrots:       activeCarrots,
		HorseShoes:    decimal.Zero,
		GoldenCarrots: decimal.Zero,
	}
	if up.ProductionBoost {
		t.Carrots = t.Carrots.Mul(productionBoost)
	}
	if up.HorseShoesUnlocked {
		t.HorseShoes = activeShoes
	}
	if up.GoldenCarrotsUnlocked {
		t.GoldenCarrots = activeGolden
	}
	return t
}

// ClickValue — морковки за один зарегистрированный тап.
// Умножается тем же production boost, что и активное производство морковок.
func ClickValue(up models.Upgrades) decimal.Decimal {
	if up.ProductionBoost {
		return clickValueBase.Mul(productionBoost)
	}
	return clickValueBase
}

// OfflineEfficiency — ступенчатое затухание пассивных начислений
// по длительности отсутствия: до 2 часов — 100%, до 8 — 70%,
// до 16 — 50%, дальше — 30%. Аргумент — уже нормализованное окно.
func OfflineEfficiency(windowSeconds int64) decimal.Decimal {
	switch {
	case windowSeconds <= 2*3600:
		return effFull
	case windowSeconds <= 8*3600:
		return effMedium
	case windowSeconds <= 16*3600:
		return effHalf
	default:
		return effMinimal
	}
}

// OfflineWindow нормализует сырое время отсутствия: окна короче
// MinOfflineSeconds схлопываются в ноль, длиннее MaxOfflineSeconds
// обрезаются до суток.
func OfflineWindow(elapsed time.Duration) int64 {
	secs := int64(elapsed.Seconds())
	if secs < MinOfflineSeconds {
		return 0
	}
	if secs > MaxOfflineSeconds {
		return MaxOfflineSeconds
	}
	return secs
}

// OfflineEarnings — floor(window × idleRate × efficiency) по каждой валюте.
func OfflineEarnings(up models.Upgrades, windowSeconds int64) models.Balances {
	if windowSeconds <= 0 {
		return models.Balances{}
	}
	t := IdleRates(up)
	eff := OfflineEfficiency(windowSeconds)
	secs := decimal.NewFromInt(windowSeconds)
	return models.Balances{
		Carrots:       secs.Mul(t.Carrots).Mul(eff).Floor().IntPart(),
		HorseShoes:    secs.Mul(t.HorseShoes).Mul(eff).Floor().IntPart(),
		GoldenCarrots: secs.Mul(t.GoldenCarrots).Mul(eff).Floor().IntPart(),
	}
}

// ActiveEarnings — floor(seconds × activeRate) по каждой валюте.
// Это и клиентское начисление за игру, и серверный потолок правдоподобия.
func ActiveEarnings(up models.Upgrades, sessionSeconds int64) models.Balances {
	if sessionSeconds <= 0 {
		return models.Balances{}
	}
	t := ActiveRates(up)
	secs := decimal.NewFromInt(sessionSeconds)
	return models.Balances{
		Carrots:       secs.Mul(t.Carrots).Floor().IntPart(),
		HorseShoes:    secs.Mul(t.HorseShoes).Floor().IntPart(),
		GoldenCarrots: secs.Mul(t.GoldenCarrots).Floor().IntPart(),
	}
}

// ClickEarnings — морковки за clicks тапов.
func ClickEarnings(up models.Upgrades, clicks int64) int64 {
	if clicks <= 0 {
		return 0
	}
	return decimal.NewFromInt(clicks).Mul(ClickValue(up)).Floor().IntPart()
}

// AdjustClickCount ограничивает заявленное число кликов потолком
// MaxClickRate × длительность сессии. Флуд инпута (5000 кликов за 10
// секунд) схлопывается до того, что человек мог накликать физически.
func AdjustClickCount(clicks, sessionSeconds int64) int64 {
	if clicks < 0 {
		clicks = 0
	}
	if sessionSeconds < 0 {
		sessionSeconds = 0
	}
	limit := sessionSeconds * MaxClickRate
	if clicks > limit {
		return limit
	}
	return clicks
}

// Цены апгрейдов. Подковы открываются за морковки, золотые морковки —
// за подковы (то есть только после первого анлока), буст — дороже всего.
var upgradeCosts = map[string]models.Balances{
	models.UpgradeHorseShoes:      {Carrots: 1500},
	models.UpgradeGoldenCarrots:   {HorseShoes: 400},
	models.UpgradeProductionBoost: {Carrots: 5000},
}

// UpgradeCost возвращает цену апгрейда. Второе значение false —
// идентификатор апгрейда неизвестен.
func UpgradeCost(upgrade string) (models.Balances, bool) {
	cost, ok := upgradeCosts[upgrade]
	return cost, ok
}
