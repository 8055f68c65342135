package models

import "time"

// Идентификаторы апгрейдов — они же значения поля upgrade в запросе
// покупки и имена флаговых колонок в таблице ledgers.
const (
	UpgradeProductionBoost = "production_boost"
	UpgradeHorseShoes      = "horse_shoes_unlocked"
	UpgradeGoldenCarrots   = "golden_carrots_unlocked"
)

// Upgrades — флаги купленных апгрейдов аккаунта.
// Флаги только взводятся (покупкой), обратно не сбрасываются.
type Upgrades struct {
	ProductionBoost       bool `json:"production_boost"`        // ProductionBoost множитель производства морковок
	HorseShoesUnlocked    bool `json:"horse_shoes_unlocked"`    // HorseShoesUnlocked открывает производство подков
	GoldenCarrotsUnlocked bool `json:"golden_carrots_unlocked"` // GoldenCarrotsUnlocked открывает золотые морковки
}

// Has сообщает, куплен ли апгрейд с данным идентификатором.
// Неизвестный идентификатор считается некупленным.
func (u Upgrades) Has(upgrade string) bool {
	switch upgrade {
	case UpgradeProductionBoost:
		return u.ProductionBoost
	case UpgradeHorseShoes:
		return u.HorseShoesUnlocked
	case UpgradeGoldenCarrots:
		return u.GoldenCarrotsUnlocked
	default:
		return false
	}
}

// WithUpgrade возвращает копию флагов со взведённым апгрейдом.
func (u Upgrades) WithUpgrade(upgrade string) Upgrades {
	switch upgrade {
	case UpgradeProductionBoost:
		u.ProductionBoost = true
	case UpgradeHorseShoes:
		u.HorseShoesUnlocked = true
	case UpgradeGoldenCarrots:
		u.GoldenCarrotsUnlocked = true
	}
	return u
}

// Ledger — авторитетная строка балансов аккаунта на сервере.
// Единственный источник истины; клиентский кэш ей всегда подчинён.
type Ledger struct {
	AccountID  string    `json:"account_id"`  // UUID аккаунта (users.id)
	Balances   Balances  `json:"balances"`    // текущие балансы
	Upgrades   Upgrades  `json:"upgrades"`    // флаги апгрейдов
	LastUpdate time.Time `json:"last_update"` // момент, по который ledger отражает реальность
	CreatedAt  time.Time `json:"created_at"`  // время создания строки
	UpdatedAt  time.Time `json:"updated_at"`  // время последнего изменения строки
}

// LeaderboardRow — строка таблицы лидеров (выборка ledger join users).
type LeaderboardRow struct {
	Username string `json:"username"` // username аккаунта
	Carrots  int64  `json:"carrots"`  // текущий баланс морковок
}
