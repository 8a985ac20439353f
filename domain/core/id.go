package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	// RecordID identifies one row of the loaded dataset. It is synthesized at
	// ingestion and never changes while that dataset is loaded.
	RecordID   ID
	SessionID  ID
	SnapshotID ID
)

// String conversions for domain IDs
func (id RecordID) String() string   { return ID(id).String() }
func (id SessionID) String() string  { return ID(id).String() }
func (id SnapshotID) String() string { return ID(id).String() }

// NewSessionID creates a time-ordered session identifier
func NewSessionID() SessionID { return SessionID(NewID()) }

// NewSnapshotID creates a time-ordered saved view identifier
func NewSnapshotID() SnapshotID { return SnapshotID(NewID()) }

// NewRecordID builds the identifier of the row at index i, prefixed by the
// label field name.
func NewRecordID(labelField string, i int) RecordID {
	return RecordID(fmt.Sprintf("%s_%d", labelField, i))
}

// ParseRecordID parses a string into RecordID
func ParseRecordID(s string) (RecordID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("record ID cannot be empty")
	}
	return RecordID(s), nil
}

// ParseSessionID parses a string into SessionID
func ParseSessionID(s string) (SessionID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("session ID cannot be empty")
	}
	return SessionID(s), nil
}

// ParseSnapshotID parses a string into SnapshotID
func ParseSnapshotID(s string) (SnapshotID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("snapshot ID cannot be empty")
	}
	return SnapshotID(s), nil
}
