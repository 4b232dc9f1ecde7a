package signals

import "fmt"

// LevelOutcome is what happened to one symbol x level during normalization.
type LevelOutcome string

const (
	OutcomeEmitted  LevelOutcome = "emitted"
	OutcomeEmpty    LevelOutcome = "empty"    // no level field carried a value
	OutcomeRejected LevelOutcome = "rejected" // values present, no dated side
)

// IssueKind classifies a diagnostic finding.
type IssueKind string

const (
	IssueMalformedValue IssueKind = "malformed_value"
	IssueStaleExit      IssueKind = "stale_exit"
	IssueRejectedLevel  IssueKind = "rejected_level"
	IssueInvalidRecord  IssueKind = "invalid_record"
)

// Issue is one finding for a symbol. Level is 0 for symbol-wide fields.
type Issue struct {
	Symbol  string    `json:"symbol"`
	Level   int       `json:"level,omitempty"`
	Key     string    `json:"key,omitempty"`
	Kind    IssueKind `json:"kind"`
	Value   any       `json:"value,omitempty"`
	Message string    `json:"message"`
}

func (i Issue) String() string {
	where := i.Symbol
	if i.Level > 0 {
		where = fmt.Sprintf("%s L%d", i.Symbol, i.Level)
	}
	if i.Key != "" {
		where = fmt.Sprintf("%s %q", where, i.Key)
	}
	if i.Value != nil {
		return fmt.Sprintf("%s: %s (%v)", where, i.Message, i.Value)
	}
	return fmt.Sprintf("%s: %s", where, i.Message)
}

// SymbolDiagnostics counts level outcomes for one symbol so that "no signal"
// can be told apart from "malformed signal".
type SymbolDiagnostics struct {
	Symbol     string  `json:"symbol"`
	Emitted    int     `json:"emitted"`
	Empty      int     `json:"empty"`
	Rejected   int     `json:"rejected"`
	StaleExits int     `json:"stale_exits"`
	Malformed  int     `json:"malformed"`
	Issues     []Issue `json:"issues,omitempty"`
}

func (d *SymbolDiagnostics) addIssue(issue Issue) {
	issue.Symbol = d.Symbol
	d.Issues = append(d.Issues, issue)
}

// Clean reports whether the symbol produced no findings.
func (d SymbolDiagnostics) Clean() bool {
	return len(d.Issues) == 0
}

// Diagnostics is the per-symbol debug record of a normalization pass.
type Diagnostics struct {
	Symbols []SymbolDiagnostics `json:"symbols"`
}

// DiagnosticTotals sums the per-symbol counters.
type DiagnosticTotals struct {
	Symbols    int `json:"symbols"`
	Emitted    int `json:"emitted"`
	Empty      int `json:"empty"`
	Rejected   int `json:"rejected"`
	StaleExits int `json:"stale_exits"`
	Malformed  int `json:"malformed"`
	Issues     int `json:"issues"`
}

// Totals sums the counters across symbols.
func (d Diagnostics) Totals() DiagnosticTotals {
	t := DiagnosticTotals{Symbols: len(d.Symbols)}
	for _, s := range d.Symbols {
		t.Emitted += s.Emitted
		t.Empty += s.Empty
		t.Rejected += s.Rejected
		t.StaleExits += s.StaleExits
		t.Malformed += s.Malformed
		t.Issues += len(s.Issues)
	}
	return t
}

// Issues flattens all findings in symbol order.
func (d Diagnostics) Issues() []Issue {
	var out []Issue
	for _, s := range d.Symbols {
		out = append(out, s.Issues...)
	}
	return out
}

// For returns the diagnostics of one symbol.
func (d Diagnostics) For(symbol string) (SymbolDiagnostics, bool) {
	for _, s := range d.Symbols {
		if s.Symbol == symbol {
			return s, true
		}
	}
	return SymbolDiagnostics{}, false
}
