package api

// LeaderboardEntry — строка таблицы лидеров.
type LeaderboardEntry struct {
	Rank     int    `json:"rank"`     // позиция, с единицы
	Username string `json:"username"` // username аккаунта
	Carrots  int64  `json:"carrots"`  // баланс морковок
}

// LeaderboardResponse — топ аккаунтов по морковкам.
// Ответ кэшируется; generated_at — момент построения снапшота.
type LeaderboardResponse struct {
	Entries     []LeaderboardEntry `json:"entries"`
	GeneratedAt int64              `json:"generated_at"` // unix seconds
}
