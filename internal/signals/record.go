// Package signals loads per-symbol signal records and normalizes them into trades.
package signals

import (
	"fmt"
	"maps"
	"slices"
)

// Record keys shared by every symbol.
const (
	KeyClosingPrice = "closing_price"
	KeyExitAll      = "exit_all"
	KeyExitAllDate  = "exit_all_date"
)

// EntryKey returns the entry price key for a level, e.g. "entry 1".
func EntryKey(level int) string { return fmt.Sprintf("entry %d", level) }

// EntryDateKey returns the entry date key for a level, e.g. "entry 1 date".
func EntryDateKey(level int) string { return fmt.Sprintf("entry %d date", level) }

// ExitKey returns the exit price key for a level, e.g. "exit 1".
func ExitKey(level int) string { return fmt.Sprintf("exit %d", level) }

// ExitDateKey returns the exit date key for a level, e.g. "exit 1 date".
func ExitDateKey(level int) string { return fmt.Sprintf("exit %d date", level) }

// MaxPriceKey returns the highest-price-since-entry key for a level, e.g. "entry1_max_price".
func MaxPriceKey(level int) string { return fmt.Sprintf("entry%d_max_price", level) }

// LevelKeys returns every key read for a level.
func LevelKeys(level int) []string {
	return []string{
		EntryKey(level),
		EntryDateKey(level),
		ExitKey(level),
		ExitDateKey(level),
		MaxPriceKey(level),
	}
}

// SignalRecord is the raw field set for one symbol. Missing keys and null
// values are equivalent; unknown keys are ignored.
type SignalRecord map[string]any

// Get returns the raw value for key, nil when missing.
func (r SignalRecord) Get(key string) any {
	if r == nil {
		return nil
	}
	return r[key]
}

// SignalSet is the full symbol -> record mapping in file order.
type SignalSet struct {
	Symbols []string
	Records map[string]SignalRecord

	invalid map[string]bool
}

// NewSignalSet returns an empty set.
func NewSignalSet() *SignalSet {
	return &SignalSet{Records: make(map[string]SignalRecord)}
}

// Add appends a symbol. A repeated symbol replaces the earlier record and keeps
// its original position.
func (s *SignalSet) Add(symbol string, rec SignalRecord) {
	if _, exists := s.Records[symbol]; !exists {
		s.Symbols = append(s.Symbols, symbol)
	}
	s.Records[symbol] = rec
	delete(s.invalid, symbol)
}

func (s *SignalSet) markInvalid(symbol string) {
	if s.invalid == nil {
		s.invalid = make(map[string]bool)
	}
	s.invalid[symbol] = true
}

// IsInvalid reports whether the symbol's value in the source was not an object.
func (s *SignalSet) IsInvalid(symbol string) bool {
	return s.invalid[symbol]
}

// Len returns the number of symbols.
func (s *SignalSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Symbols)
}

// FromMap builds a set from an unordered map, ordering symbols lexically.
func FromMap(m map[string]SignalRecord) *SignalSet {
	set := NewSignalSet()
	for _, sym := range slices.Sorted(maps.Keys(m)) {
		set.Add(sym, m[sym])
	}
	return set
}
