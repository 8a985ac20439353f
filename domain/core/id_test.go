package core

import (
	"errors"
	"testing"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 10000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}

	if len(ids) != numIDs {
		t.Errorf("Expected %d unique IDs, got %d", numIDs, len(ids))
	}
}

// TestIDIsEmpty tests ID emptiness check
func TestIDIsEmpty(t *testing.T) {
	emptyID := ID("")
	if !emptyID.IsEmpty() {
		t.Error("Expected empty ID to be empty")
	}

	nonEmptyID := ID("not-empty")
	if nonEmptyID.IsEmpty() {
		t.Error("Expected non-empty ID to not be empty")
	}
}

func TestNewRecordID(t *testing.T) {
	if got := NewRecordID("student_id", 7); got != RecordID("student_id_7") {
		t.Errorf("Expected student_id_7, got %s", got)
	}
	if got := NewRecordID("row", 0); got.String() != "row_0" {
		t.Errorf("Expected row_0, got %s", got)
	}
}

// TestParseIDs tests the string parsers for domain IDs
func TestParseIDs(t *testing.T) {
	tests := []struct {
		input    string
		hasError bool
	}{
		{"valid-id", false},
		{"", true},
		{"   ", true},
	}

	for _, test := range tests {
		if _, err := ParseRecordID(test.input); (err != nil) != test.hasError {
			t.Errorf("ParseRecordID(%q): expected error=%v, got %v", test.input, test.hasError, err)
		}
		if _, err := ParseSessionID(test.input); (err != nil) != test.hasError {
			t.Errorf("ParseSessionID(%q): expected error=%v, got %v", test.input, test.hasError, err)
		}
		if _, err := ParseSnapshotID(test.input); (err != nil) != test.hasError {
			t.Errorf("ParseSnapshotID(%q): expected error=%v, got %v", test.input, test.hasError, err)
		}
	}
}

func TestDatasetHashIsContentAddressed(t *testing.T) {
	fields := []string{"student_id", "exam_score"}
	rows := [][]string{{"S1", "50"}, {"S2", "60"}}

	a := ComputeDatasetHash(fields, rows)
	b := ComputeDatasetHash(fields, [][]string{{"S1", "50"}, {"S2", "60"}})
	c := ComputeDatasetHash(fields, [][]string{{"S2", "60"}, {"S1", "50"}})

	if a != b {
		t.Error("Expected identical content to hash identically")
	}
	if a == c {
		t.Error("Expected row order to change the hash")
	}
}

func TestErrorHelpers(t *testing.T) {
	if !IsUnknownFieldError(NewUnknownFieldError("grouping", "shoe_size")) {
		t.Error("Expected unknown field error to match ErrUnknownField")
	}
	if !IsNotFoundError(NewUnknownRecordError("row_9")) {
		t.Error("Expected unknown record to be a not-found error")
	}
	if !errors.Is(NewUnknownNodeError([]string{"Low Study"}), ErrUnknownNode) {
		t.Error("Expected unknown node error to match ErrUnknownNode")
	}
	if !IsValidationError(NewInvalidParameterError("bin_count", "must be at least 1")) {
		t.Error("Expected invalid parameter to be a validation error")
	}
	if IsValidationError(ErrSessionNotFound) {
		t.Error("Expected session not found to not be a validation error")
	}
}
