package signals

import (
	"strings"

	"github.com/rs/zerolog"

	"signal-dashboard/internal/logging"
	"signal-dashboard/internal/models"
)

// Result is the output of one normalization pass.
type Result struct {
	Trades      []models.Trade `json:"trades"`
	Diagnostics Diagnostics    `json:"diagnostics"`
}

// Normalizer turns signal records into trades.
type Normalizer struct {
	logger zerolog.Logger
}

// NewNormalizer creates a normalizer that reports skipped levels at debug level.
func NewNormalizer(logger zerolog.Logger) *Normalizer {
	return &Normalizer{logger: logging.WithOperation(logger, "normalize")}
}

// Normalize runs a pass without logging.
func Normalize(set *SignalSet) *Result {
	return NewNormalizer(zerolog.Nop()).Normalize(set)
}

// Normalize classifies every level of every symbol, in symbol order then
// level order. It never fails: fields that cannot be coerced are absent.
func (n *Normalizer) Normalize(set *SignalSet) *Result {
	res := &Result{Trades: make([]models.Trade, 0, set.Len()*models.MaxLevel)}
	if set == nil {
		return res
	}

	for _, symbol := range set.Symbols {
		rec := set.Records[symbol]
		diag := SymbolDiagnostics{Symbol: symbol}
		if set.IsInvalid(symbol) {
			diag.addIssue(Issue{Kind: IssueInvalidRecord, Message: "record is not an object"})
		}

		sym := parseSymbolFields(rec, &diag)
		for level := 1; level <= models.MaxLevel; level++ {
			trade, outcome := classifyLevel(symbol, level, rec, sym, &diag)
			switch outcome {
			case OutcomeEmitted:
				diag.Emitted++
				res.Trades = append(res.Trades, trade)
			case OutcomeEmpty:
				diag.Empty++
			case OutcomeRejected:
				diag.Rejected++
				diag.addIssue(Issue{Level: level, Kind: IssueRejectedLevel, Message: "no dated entry or exit"})
				logging.LogSkip(n.logger, symbol, level, string(outcome))
			}
		}
		res.Diagnostics.Symbols = append(res.Diagnostics.Symbols, diag)
	}
	return res
}

// symbolFields are parsed once per symbol and shared by its levels.
type symbolFields struct {
	closingPrice models.Opt[float64]
	exitAll      models.Opt[float64]
	exitAllDate  models.Opt[models.Date]
}

func parseSymbolFields(rec SignalRecord, diag *SymbolDiagnostics) symbolFields {
	return symbolFields{
		closingPrice: parsePrice(rec, KeyClosingPrice, 0, diag),
		exitAll:      parsePrice(rec, KeyExitAll, 0, diag),
		exitAllDate:  parseDay(rec, KeyExitAllDate, 0, diag),
	}
}

func classifyLevel(symbol string, level int, rec SignalRecord, sym symbolFields, diag *SymbolDiagnostics) (models.Trade, LevelOutcome) {
	if levelEmpty(rec, level) {
		return models.Trade{}, OutcomeEmpty
	}

	entry := parsePrice(rec, EntryKey(level), level, diag)
	entryDate := parseDay(rec, EntryDateKey(level), level, diag)
	exit := parsePrice(rec, ExitKey(level), level, diag)
	exitDate := parseDay(rec, ExitDateKey(level), level, diag)
	maxPrice := parsePrice(rec, MaxPriceKey(level), level, diag)

	// A date without its price is dropped.
	if entry.IsAbsent() {
		entryDate = models.Absent[models.Date]()
	}
	if exit.IsAbsent() {
		exitDate = models.Absent[models.Date]()
	}

	if ed, ok := entryDate.Get(); ok {
		if xd, ok := exitDate.Get(); ok && xd.Before(ed) {
			exit = models.Absent[float64]()
			exitDate = models.Absent[models.Date]()
			diag.StaleExits++
			diag.addIssue(Issue{Level: level, Key: ExitDateKey(level), Kind: IssueStaleExit, Value: xd.String(), Message: "exit dated before entry " + ed.String()})
		}
	}

	entryDated := entry.IsPresent() && entryDate.IsPresent()
	exitDated := exit.IsPresent() && exitDate.IsPresent()
	if !entryDated && !exitDated {
		return models.Trade{}, OutcomeRejected
	}

	t := models.Trade{
		Symbol:       symbol,
		Level:        level,
		Entry:        entry,
		EntryDate:    entryDate,
		Exit:         exit,
		ExitDate:     exitDate,
		ClosingPrice: sym.closingPrice,
		Status:       models.StatusOpen,
	}

	e, hasEntry := entry.Get()
	switch {
	case hasEntry && exit.IsPresent():
		t.Status = models.StatusClosed
		t.Profit = models.Present(exit.Value() - e)
		t.RealizedProfit = t.Profit
	case hasEntry && sym.exitAll.IsPresent():
		t.Status = models.StatusForceExit
		t.Profit = models.Present(sym.exitAll.Value() - e)
		t.RealizedProfit = t.Profit
		t.ExitDate = sym.exitAllDate
	case hasEntry && sym.closingPrice.IsPresent():
		t.Status = models.StatusOpen
		t.Profit = models.Present(sym.closingPrice.Value() - e)
		t.UnrealizedProfit = t.Profit
	case !hasEntry && exit.IsPresent():
		t.Status = models.StatusExitOnly
	}

	if hasEntry {
		if mp, ok := maxPrice.Get(); ok {
			t.MaxProfit = models.Present(mp - e)
		}
	}
	return t, OutcomeEmitted
}

func levelEmpty(rec SignalRecord, level int) bool {
	for _, key := range LevelKeys(level) {
		if !isNullSentinel(rec.Get(key)) {
			return false
		}
	}
	return true
}

func parsePrice(rec SignalRecord, key string, level int, diag *SymbolDiagnostics) models.Opt[float64] {
	raw := rec.Get(key)
	v := ParseFloat(raw)
	if v.IsAbsent() && !isNullSentinel(raw) {
		diag.Malformed++
		diag.addIssue(Issue{Level: level, Key: key, Kind: IssueMalformedValue, Value: raw, Message: "not a number"})
	}
	return v
}

func parseDay(rec SignalRecord, key string, level int, diag *SymbolDiagnostics) models.Opt[models.Date] {
	raw := rec.Get(key)
	v := ParseDate(raw)
	if v.IsAbsent() && !isNullSentinel(raw) {
		diag.Malformed++
		diag.addIssue(Issue{Level: level, Key: key, Kind: IssueMalformedValue, Value: raw, Message: "not a date"})
	}
	return v
}

// isNullSentinel reports whether v is a blank rather than a bad value.
func isNullSentinel(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	if !ok {
		return false
	}
	return nullDateStrings[strings.TrimSpace(s)]
}
