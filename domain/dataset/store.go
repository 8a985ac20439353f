package dataset

import (
	"fmt"
	"time"

	"studyviz/domain/core"
)

// RowLabelField is the label field used when no column holds text labels.
const RowLabelField = "row"

// Table is a normalized tabular input: field names already trimmed,
// lowercased and underscore-joined, rows aligned with Fields.
type Table struct {
	Fields     []string
	Rows       [][]string
	LabelField string
	Source     string
}

// DimensionSet is the ordered list of numeric fields of a dataset.
type DimensionSet []string

// Contains reports whether field is a numeric dimension.
func (d DimensionSet) Contains(field string) bool {
	for _, f := range d {
		if f == field {
			return true
		}
	}
	return false
}

// Intersect keeps the wanted fields that are dimensions, in wanted order.
func (d DimensionSet) Intersect(wanted []string) []string {
	out := make([]string, 0, len(wanted))
	for _, f := range wanted {
		if d.Contains(f) {
			out = append(out, f)
		}
	}
	return out
}

// Store is the immutable set of records loaded from one dataset. A reload
// builds a new Store.
type Store struct {
	records    []*Record
	byID       map[core.RecordID]*Record
	fields     []string
	dimensions DimensionSet
	labelField string
	source     string
	hash       core.DatasetHash
	loadedAt   time.Time
}

// NewStore builds a store from a normalized table. Record IDs are
// <labelField>_<row index>; labels come from the label field, or row_<index>
// when that value is empty or the table has no label column.
func NewStore(t Table) (*Store, error) {
	if len(t.Fields) == 0 {
		return nil, fmt.Errorf("%w: no fields", core.ErrMalformedInput)
	}
	labelField := t.LabelField
	if labelField == "" {
		labelField = RowLabelField
	}

	labelIdx := -1
	seen := make(map[string]bool, len(t.Fields))
	for i, f := range t.Fields {
		if f == "" {
			return nil, fmt.Errorf("%w: empty field name at column %d", core.ErrMalformedInput, i)
		}
		if seen[f] {
			return nil, fmt.Errorf("%w: duplicate field %q", core.ErrMalformedInput, f)
		}
		seen[f] = true
		if f == labelField {
			labelIdx = i
		}
	}

	s := &Store{
		records:    make([]*Record, 0, len(t.Rows)),
		byID:       make(map[core.RecordID]*Record, len(t.Rows)),
		fields:     append([]string(nil), t.Fields...),
		labelField: labelField,
		source:     t.Source,
		hash:       core.ComputeDatasetHash(t.Fields, t.Rows),
		loadedAt:   time.Now(),
	}

	for i, row := range t.Rows {
		label := ""
		if labelIdx >= 0 && labelIdx < len(row) {
			label = row[labelIdx]
		}
		if label == "" {
			label = fmt.Sprintf("row_%d", i)
		}
		rec := newRecord(core.NewRecordID(labelField, i), label, i, s.fields, row)
		s.records = append(s.records, rec)
		s.byID[rec.ID] = rec
	}

	s.dimensions = detectDimensions(s.fields, labelField, t.Rows)
	return s, nil
}

// detectDimensions marks a field numeric when its first non-empty value
// parses as a finite number.
func detectDimensions(fields []string, labelField string, rows [][]string) DimensionSet {
	dims := make(DimensionSet, 0, len(fields))
	for i, f := range fields {
		if f == labelField {
			continue
		}
		for _, row := range rows {
			if i >= len(row) || row[i] == "" {
				continue
			}
			if _, ok := ParseNumeric(row[i]); ok {
				dims = append(dims, f)
			}
			break
		}
	}
	return dims
}

// Records returns all records in load order.
func (s *Store) Records() []*Record {
	return append([]*Record(nil), s.records...)
}

// Len returns the number of records.
func (s *Store) Len() int { return len(s.records) }

// Get looks up a record by ID.
func (s *Store) Get(id core.RecordID) (*Record, bool) {
	r, ok := s.byID[id]
	return r, ok
}

// Lookup resolves IDs in the given order, failing on the first unknown ID.
func (s *Store) Lookup(ids []core.RecordID) ([]*Record, error) {
	out := make([]*Record, 0, len(ids))
	for _, id := range ids {
		r, ok := s.byID[id]
		if !ok {
			return nil, core.NewUnknownRecordError(id)
		}
		out = append(out, r)
	}
	return out, nil
}

// Fields returns the field names in column order.
func (s *Store) Fields() []string { return append([]string(nil), s.fields...) }

// HasField reports whether the dataset has a column named field.
func (s *Store) HasField(field string) bool {
	for _, f := range s.fields {
		if f == field {
			return true
		}
	}
	return false
}

// Dimensions returns the numeric fields.
func (s *Store) Dimensions() DimensionSet { return append(DimensionSet(nil), s.dimensions...) }

// HasDimension reports whether field is numeric.
func (s *Store) HasDimension(field string) bool { return s.dimensions.Contains(field) }

// RequireDimension fails with ErrUnknownField when field is not numeric.
func (s *Store) RequireDimension(field string) error {
	if !s.dimensions.Contains(field) {
		return core.NewUnknownFieldError("dimension", field)
	}
	return nil
}

// LabelField is the field record labels are read from.
func (s *Store) LabelField() string { return s.labelField }

// Source describes where the dataset was loaded from.
func (s *Store) Source() string { return s.source }

// Hash is the content fingerprint of the dataset.
func (s *Store) Hash() core.DatasetHash { return s.hash }

// LoadedAt is when the store was built.
func (s *Store) LoadedAt() time.Time { return s.loadedAt }
