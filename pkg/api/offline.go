package api

// BalanceRates — ставка производства по каждой валюте
// (единиц в секунду или в час, в зависимости от контекста).
type BalanceRates struct {
	Carrots       float64 `json:"carrots"`
	HorseShoes    float64 `json:"horse_shoes"`
	GoldenCarrots float64 `json:"golden_carrots"`
}

// RateTable — ставки пассивного производства для отображения клиенту.
type RateTable struct {
	IdlePerSecond BalanceRates `json:"idle_per_second"`
	IdlePerHour   BalanceRates `json:"idle_per_hour"`
}

// OfflineEarningsResponse — превью офлайн-наград, строго read-only.
// has_offline_earnings=false отличает «окно короче 5 минут»
// от честно нулевых сумм.
type OfflineEarningsResponse struct {
	HasOfflineEarnings bool       `json:"has_offline_earnings"`
	AwaySeconds        int64      `json:"away_seconds"`       // сырое время отсутствия
	OfflineSeconds     int64      `json:"offline_seconds"`    // нормализованное окно (кап сутки)
	EfficiencyPercent  float64    `json:"efficiency_percent"` // применённое затухание, процентов
	Earnings           BalanceSet `json:"earnings"`           // что начислит claim без бонуса
	Rates              RateTable  `json:"rates"`              // текущие пассивные ставки
}

// ClaimOfflineRequest — запрос на клейм офлайн-наград.
type ClaimOfflineRequest struct {
	WatchedAd bool `json:"watched_ad"` // удвоить награду за просмотр рекламы
}

// ClaimOfflineResponse — результат клейма: разбивка base/бонус и новые балансы.
// Клейм сжигает офлайн-окно: следующее превью вернёт has_offline_earnings=false.
type ClaimOfflineResponse struct {
	BaseEarnings BalanceSet `json:"base_earnings"` // начислено по формуле офлайна
	AdBonus      BalanceSet `json:"ad_bonus"`      // добавка за рекламу (нули без watched_ad)
	TotalClaimed BalanceSet `json:"total_claimed"` // фактически зачислено
	NewTotals    BalanceSet `json:"new_totals"`    // балансы после зачисления
}
