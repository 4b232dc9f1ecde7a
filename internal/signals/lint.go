package signals

import (
	"bytes"
	"encoding/json"
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	apperrors "signal-dashboard/internal/errors"
)

const schemaURL = "signals.schema.json"

const signalsSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "additionalProperties": {
    "type": "object",
    "properties": {
      "closing_price": { "$ref": "#/$defs/price" },
      "exit_all": { "$ref": "#/$defs/price" },
      "exit_all_date": { "$ref": "#/$defs/date" }
    },
    "patternProperties": {
      "^(entry|exit) [1-4]$": { "$ref": "#/$defs/price" },
      "^(entry|exit) [1-4] date$": { "$ref": "#/$defs/date" },
      "^entry[1-4]_max_price$": { "$ref": "#/$defs/price" }
    }
  },
  "$defs": {
    "price": { "type": ["number", "string", "null"] },
    "date": { "type": ["string", "number", "null"] }
  }
}`

var (
	schemaOnce     sync.Once
	schemaCompiled *jsonschema.Schema
	schemaErr      error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource(schemaURL, strings.NewReader(signalsSchema)); err != nil {
			schemaErr = err
			return
		}
		schemaCompiled, schemaErr = compiler.Compile(schemaURL)
	})
	return schemaCompiled, schemaErr
}

// Finding is one schema violation.
type Finding struct {
	Location string `json:"location"`
	Message  string `json:"message"`
}

// LintResult combines structural findings with the normalization diagnostics.
type LintResult struct {
	Findings    []Finding   `json:"findings"`
	Diagnostics Diagnostics `json:"diagnostics"`
}

// OK reports whether the file has no findings and no issues.
func (r *LintResult) OK() bool {
	return len(r.Findings) == 0 && r.Diagnostics.Totals().Issues == 0
}

// Lint checks a signals document. It only reports; classification of the same
// document is unaffected. An error is returned only for undecodable JSON.
func Lint(raw []byte) (*LintResult, error) {
	schema, err := compiledSchema()
	if err != nil {
		return nil, apperrors.Wrap(err, "compiling signals schema")
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, apperrors.NewInputError("", err.Error(), apperrors.ErrSignalsInvalid)
	}

	res := &LintResult{}
	if err := schema.Validate(doc); err != nil {
		var verr *jsonschema.ValidationError
		if apperrors.As(err, &verr) {
			res.Findings = flattenFindings(verr)
		} else {
			res.Findings = []Finding{{Location: "/", Message: err.Error()}}
		}
	}

	if set, err := Parse(raw); err == nil {
		res.Diagnostics = Normalize(set).Diagnostics
	}
	return res, nil
}

func flattenFindings(verr *jsonschema.ValidationError) []Finding {
	var out []Finding
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			out = append(out, Finding{Location: keyPath(e.InstanceLocation), Message: e.Message})
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(verr)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Location < out[j].Location })
	return out
}

// keyPath turns an escaped JSON pointer such as "/ABC/exit%201%20date" back
// into the document's key names: "/ABC/exit 1 date".
func keyPath(pointer string) string {
	if pointer == "" || pointer == "/" {
		return "/"
	}
	segments := strings.Split(strings.TrimPrefix(pointer, "/"), "/")
	for i, seg := range segments {
		if unescaped, err := url.PathUnescape(seg); err == nil {
			seg = unescaped
		}
		segments[i] = pointerUnescaper.Replace(seg)
	}
	return "/" + strings.Join(segments, "/")
}

var pointerUnescaper = strings.NewReplacer("~1", "/", "~0", "~")
