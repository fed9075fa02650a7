package types

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// ID identifies a single orchestration run. The orchestrator mints one
// per run and stamps it on every log record and event as the trace ID,
// so a run's whole history can be pulled by a single value.
//
// The underlying representation is a canonical UUID string. The zero
// value means "no ID"; callers that need one generated on demand check
// IsZero first (see task.NewRecorder).
type ID string

// NewID mints a fresh random ID.
func NewID() ID {
	return ID(uuid.NewString())
}

func (id ID) String() string { return string(id) }

// IsZero reports whether the ID is unset.
func (id ID) IsZero() bool { return id == "" }

// MarshalJSON encodes the ID as a JSON string, or null when unset.
func (id ID) MarshalJSON() ([]byte, error) {
	if id.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(string(id))
}

// UnmarshalJSON decodes a JSON string into the ID, rejecting anything
// that is not a well-formed UUID. An empty string leaves the ID unset.
func (id *ID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("failed to unmarshal ID: %w", err)
	}
	if s == "" {
		*id = ""
		return nil
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return fmt.Errorf("invalid UUID format: %w", err)
	}
	*id = ID(parsed.String())
	return nil
}
