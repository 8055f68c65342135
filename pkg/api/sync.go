package api

// BalanceSet — количество каждой валюты в wire-формате.
type BalanceSet struct {
	Carrots       int64 `json:"carrots"`
	HorseShoes    int64 `json:"horse_shoes"`
	GoldenCarrots int64 `json:"golden_carrots"`
}

// UpgradeFlags — флаги апгрейдов аккаунта в wire-формате.
type UpgradeFlags struct {
	ProductionBoost       bool `json:"production_boost"`
	HorseShoesUnlocked    bool `json:"horse_shoes_unlocked"`
	GoldenCarrotsUnlocked bool `json:"golden_carrots_unlocked"`
}

// SyncRequest — отчёт клиента о текущей активной сессии.
// Сервер не доверяет ни одному полю: session_data клампится потолком
// правдоподобия, click_count ограничивается потолком кликов в секунду.
type SyncRequest struct {
	SessionData       BalanceSet `json:"session_data"`        // заявленный заработок за сессию
	ClickCount        int64      `json:"click_count"`         // тапы с прошлого применённого синка
	SessionDuration   int64      `json:"session_duration"`    // секунды активной игры
	IsReturningPlayer bool       `json:"is_returning_player"` // false на самом первом синке установки
}

// ClampFlags отмечает валюты, по которым сработал кламп.
type ClampFlags struct {
	Carrots       bool `json:"carrots"`
	HorseShoes    bool `json:"horse_shoes"`
	GoldenCarrots bool `json:"golden_carrots"`
}

// SyncDiagnostics — диагностика реконсиляции для клиента и операторских логов.
type SyncDiagnostics struct {
	Clamped           ClampFlags `json:"clamped"`            // по каким валютам сработал кламп
	Extreme           bool       `json:"extreme"`            // заявка превысила потолок более чем в 10 раз
	OfflineEfficiency float64    `json:"offline_efficiency"` // применённый коэффициент затухания
	ClickRate         float64    `json:"click_rate"`         // кликов/с, использованных в расчёте
}

// SyncResponse — результат реконсиляции: авторитетный снапшот сервера.
// new_totals перезаписывают клиентский кэш целиком (server wins).
type SyncResponse struct {
	OfflineEarnings         BalanceSet      `json:"offline_earnings"`          // начислено за время отсутствия
	ValidatedActiveEarnings BalanceSet      `json:"validated_active_earnings"` // сессионный заработок после клампа
	TotalCredited           BalanceSet      `json:"total_credited"`            // сумма двух предыдущих
	NewTotals               BalanceSet      `json:"new_totals"`                // балансы после апдейта
	Upgrades                UpgradeFlags    `json:"upgrades"`                  // авторитетные флаги апгрейдов
	Diagnostics             SyncDiagnostics `json:"diagnostics"`
}
