package api

// UpgradeRequest — покупка апгрейда по фиксированной цене каталога.
type UpgradeRequest struct {
	// production_boost | horse_shoes_unlocked | golden_carrots_unlocked
	Upgrade string `json:"upgrade"`
}

// UpgradeResponse — авторитетный снапшот после покупки.
// Цена либо списывается целиком, либо запрос завершается ошибкой:
// трата никогда не обрезается до остатка.
type UpgradeResponse struct {
	Upgrade   string       `json:"upgrade"`    // что куплено
	Cost      BalanceSet   `json:"cost"`       // сколько списано
	NewTotals BalanceSet   `json:"new_totals"` // балансы после списания
	Upgrades  UpgradeFlags `json:"upgrades"`   // все флаги после покупки
}
