// Package dataset holds the immutable student record store that every view
// and aggregation reads from.
package dataset

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"studyviz/domain/core"
)

// Record is one row of the loaded dataset. Records are never mutated after the
// store is built; selections hold pointers to the same values.
type Record struct {
	ID    core.RecordID
	Label string
	Index int

	values  map[string]string
	numeric map[string]float64
}

func newRecord(id core.RecordID, label string, index int, fields []string, row []string) *Record {
	r := &Record{
		ID:      id,
		Label:   label,
		Index:   index,
		values:  make(map[string]string, len(fields)),
		numeric: make(map[string]float64, len(fields)),
	}
	for i, field := range fields {
		if i >= len(row) {
			break
		}
		raw := row[i]
		r.values[field] = raw
		if v, ok := ParseNumeric(raw); ok {
			r.numeric[field] = v
		}
	}
	return r
}

// Value returns the raw string value of a field.
func (r *Record) Value(field string) (string, bool) {
	v, ok := r.values[field]
	return v, ok
}

// Numeric returns the numeric value of a field. Missing, empty, unparseable
// and non-finite values report false.
func (r *Record) Numeric(field string) (float64, bool) {
	v, ok := r.numeric[field]
	return v, ok
}

// Values returns a copy of the raw field values.
func (r *Record) Values() map[string]string {
	out := make(map[string]string, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}

// MarshalJSON exposes the record the way the render layer consumes it.
func (r *Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID     core.RecordID     `json:"id"`
		Label  string            `json:"label"`
		Fields map[string]string `json:"fields"`
	}{r.ID, r.Label, r.values})
}

// ParseNumeric parses a raw cell as a finite float.
func ParseNumeric(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// IDs returns the identifiers of records in order.
func IDs(records []*Record) []core.RecordID {
	ids := make([]core.RecordID, len(records))
	for i, r := range records {
		ids[i] = r.ID
	}
	return ids
}

// NumericValues collects the numeric values of field across records and
// reports how many records were excluded as missing or malformed.
func NumericValues(records []*Record, field string) ([]float64, int) {
	values := make([]float64, 0, len(records))
	excluded := 0
	for _, r := range records {
		if v, ok := r.Numeric(field); ok {
			values = append(values, v)
		} else {
			excluded++
		}
	}
	return values, excluded
}
