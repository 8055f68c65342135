package models

// Balances хранит количество каждой игровой валюты.
// Значения всегда целые; на сервере они неотрицательные (инвариант ledger),
// клиентский кэш оперирует теми же типами.
type Balances struct {
	Carrots       int64 `json:"carrots"`        // Carrots морковки, базовая валюта
	HorseShoes    int64 `json:"horse_shoes"`    // HorseShoes подковы, открываются апгрейдом
	GoldenCarrots int64 `json:"golden_carrots"` // GoldenCarrots золотые морковки, открываются апгрейдом
}

// Add возвращает поэлементную сумму двух наборов балансов.
func (b Balances) Add(o Balances) Balances {
	return Balances{
		Carrots:       b.Carrots + o.Carrots,
		HorseShoes:    b.HorseShoes + o.HorseShoes,
		GoldenCarrots: b.GoldenCarrots + o.GoldenCarrots,
	}
}

// Sub возвращает поэлементную разность. Результат может быть отрицательным,
// вызывающая сторона проверяет его через HasNegative.
func (b Balances) Sub(o Balances) Balances {
	return Balances{
		Carrots:       b.Carrots - o.Carrots,
		HorseShoes:    b.HorseShoes - o.HorseShoes,
		GoldenCarrots: b.GoldenCarrots - o.GoldenCarrots,
	}
}

// Double удваивает каждую валюту (ad-бонус при клейме офлайн-наград).
func (b Balances) Double() Balances {
	return Balances{
		Carrots:       b.Carrots * 2,
		HorseShoes:    b.HorseShoes * 2,
		GoldenCarrots: b.GoldenCarrots * 2,
	}
}

// IsZero сообщает, что все валюты равны нулю.
func (b Balances) IsZero() bool {
	return b.Carrots == 0 && b.HorseShoes == 0 && b.GoldenCarrots == 0
}

// HasNegative сообщает, что хотя бы одна валюта отрицательна.
func (b Balances) HasNegative() bool {
	return b.Carrots < 0 || b.HorseShoes < 0 || b.GoldenCarrots < 0
}
