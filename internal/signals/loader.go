package signals

import (
	"os"

	"github.com/tidwall/gjson"

	apperrors "signal-dashboard/internal/errors"
)

// Load reads and parses a signals file.
func Load(path string) (*SignalSet, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewInputError(path, "", apperrors.ErrSignalsNotFound)
		}
		return nil, apperrors.Wrapf(err, "reading signals file %s", path)
	}
	set, err := Parse(raw)
	var inErr *apperrors.InputError
	if apperrors.As(err, &inErr) {
		inErr.Path = path
	}
	return set, err
}

// Parse decodes a JSON object keyed by symbol. Symbol order follows the
// document. A symbol whose value is not an object is kept as an empty record
// and reported by IsInvalid.
func Parse(raw []byte) (*SignalSet, error) {
	if !gjson.ValidBytes(raw) {
		return nil, apperrors.NewInputError("", "malformed JSON", apperrors.ErrSignalsInvalid)
	}
	root := gjson.ParseBytes(raw)
	if !root.IsObject() {
		return nil, apperrors.NewInputError("", "root is not an object", apperrors.ErrSignalsInvalid)
	}

	set := NewSignalSet()
	root.ForEach(func(key, value gjson.Result) bool {
		symbol := key.String()
		if !value.IsObject() {
			set.Add(symbol, SignalRecord{})
			set.markInvalid(symbol)
			return true
		}
		rec := make(SignalRecord)
		value.ForEach(func(k, v gjson.Result) bool {
			rec[k.String()] = v.Value()
			return true
		})
		set.Add(symbol, rec)
		return true
	})
	return set, nil
}
