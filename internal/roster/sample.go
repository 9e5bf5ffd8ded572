package roster

import (
	"context"
	"encoding/json"
	"fmt"
)

// sampleJSON is served when a session has no id.
const sampleJSON = `[
	{"id":"1","rank":"PTE","name":"John Doe","appt":"trooper","subunit2":"1"},
	{"id":"2","rank":"PTE","name":"Jane Doe","appt":"trooper","subunit2":"1"},
	{"id":"3","rank":"PTE","name":"John Smith","appt":"trooper","subunit2":"2"},
	{"id":"4","rank":"PTE","name":"Jane Smith","appt":"trooper","subunit2":"2"},
	{"id":"5","rank":"3SG","name":"David Doe","appt":"wospec","subunit2":"1"},
	{"id":"6","rank":"3SG","name":"David Smith","appt":"wospec","subunit2":"2"},
	{"id":"7","rank":"2LT","name":"Sam Doe","appt":"officer","subunit2":"1"}
]`

// Sample returns a fresh copy of the bundled sample records.
func Sample() []Record {
	var records []Record
	if err := json.Unmarshal([]byte(sampleJSON), &records); err != nil {
		panic(fmt.Sprintf("roster: bundled sample is invalid: %v", err))
	}
	return records
}

// Static is a Source serving a fixed record list.
type Static struct {
	records []Record
}

// NewStatic returns a Static source. A nil list serves the bundled sample.
func NewStatic(records []Record) *Static {
	if records == nil {
		records = Sample()
	}
	return &Static{records: records}
}

// Fetch returns a copy of the fixed list, ignoring the session.
func (s *Static) Fetch(ctx context.Context, _ Session) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out, nil
}

// Name returns the source name.
func (s *Static) Name() string {
	return "static"
}
