package models

// MaxLevel is the number of entry/exit levels tracked per symbol.
const MaxLevel = 4

// TradeStatus is the lifecycle tag assigned to a trade at load time.
type TradeStatus string

const (
	StatusOpen      TradeStatus = "open"
	StatusClosed    TradeStatus = "closed"
	StatusForceExit TradeStatus = "forceExit"
	StatusExitOnly  TradeStatus = "exit-only"
)

// Valid reports whether s is a known status.
func (s TradeStatus) Valid() bool {
	switch s {
	case StatusOpen, StatusClosed, StatusForceExit, StatusExitOnly:
		return true
	}
	return false
}

// Trade is one symbol x level position derived from a signal record.
// Trades are rebuilt on every load and never mutated afterwards.
type Trade struct {
	Symbol           string       `json:"symbol" yaml:"symbol"`
	Level            int          `json:"level" yaml:"level"`
	Entry            Opt[float64] `json:"entry" yaml:"entry"`
	EntryDate        Opt[Date]    `json:"entry_date" yaml:"entry_date"`
	Exit             Opt[float64] `json:"exit" yaml:"exit"`
	ExitDate         Opt[Date]    `json:"exit_date" yaml:"exit_date"`
	ClosingPrice     Opt[float64] `json:"closing_price" yaml:"closing_price"`
	Profit           Opt[float64] `json:"profit" yaml:"profit"`
	RealizedProfit   Opt[float64] `json:"realized_profit" yaml:"realized_profit"`
	UnrealizedProfit Opt[float64] `json:"unrealized_profit" yaml:"unrealized_profit"`
	MaxProfit        Opt[float64] `json:"max_profit" yaml:"max_profit"`
	Status           TradeStatus  `json:"status" yaml:"status"`
}

// Key identifies a trade within one load.
type Key struct {
	Symbol string
	Level  int
}

// Key returns the (symbol, level) identity of the trade.
func (t Trade) Key() Key {
	return Key{Symbol: t.Symbol, Level: t.Level}
}
