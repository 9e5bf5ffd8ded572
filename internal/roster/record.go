// Package roster holds the personnel records a picker session works on and
// the sources that load them.
package roster

import (
	"fmt"
	"strings"
)

// Record is one personnel entry. Records are never mutated after loading.
type Record struct {
	ID       string `json:"id"`
	Rank     string `json:"rank"`
	Name     string `json:"name"`
	Appt     string `json:"appt"`
	Subunit2 string `json:"subunit2"`
}

// GroupField selects the record attribute used as a display group key.
type GroupField string

const (
	GroupNone     GroupField = ""
	GroupRank     GroupField = "rank"
	GroupAppt     GroupField = "appt"
	GroupSubunit2 GroupField = "subunit2"
)

// GroupFields lists every field in the order the UI cycles through them.
var GroupFields = []GroupField{GroupNone, GroupRank, GroupAppt, GroupSubunit2}

// ParseGroupField accepts the field names plus "none" for GroupNone.
func ParseGroupField(s string) (GroupField, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return GroupNone, nil
	case "rank":
		return GroupRank, nil
	case "appt", "appointment":
		return GroupAppt, nil
	case "subunit2", "platoon":
		return GroupSubunit2, nil
	}
	return GroupNone, fmt.Errorf("unknown group field %q (valid: none, rank, appt, subunit2)", s)
}

// Key returns the record's group key for f. GroupNone puts every record
// under the empty key.
func (f GroupField) Key(r Record) string {
	switch f {
	case GroupRank:
		return r.Rank
	case GroupAppt:
		return r.Appt
	case GroupSubunit2:
		return r.Subunit2
	}
	return ""
}

// Label is the human name of the field.
func (f GroupField) Label() string {
	switch f {
	case GroupRank:
		return "Rank"
	case GroupAppt:
		return "Appointment"
	case GroupSubunit2:
		return "Platoon"
	}
	return "None"
}

// Next returns the field after f in GroupFields, wrapping around.
func (f GroupField) Next() GroupField {
	for i, g := range GroupFields {
		if g == f {
			return GroupFields[(i+1)%len(GroupFields)]
		}
	}
	return GroupNone
}

func (f GroupField) String() string {
	if f == GroupNone {
		return "none"
	}
	return string(f)
}

// Validate checks that every record has a non-empty id and that ids are unique.
func Validate(records []Record) error {
	seen := make(map[string]int, len(records))
	for i, r := range records {
		if r.ID == "" {
			return fmt.Errorf("record %d has an empty id", i)
		}
		if j, dup := seen[r.ID]; dup {
			return fmt.Errorf("duplicate record id %q at positions %d and %d", r.ID, j, i)
		}
		seen[r.ID] = i
	}
	return nil
}

// IDs returns the ids of records in list order.
func IDs(records []Record) []string {
	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.ID
	}
	return ids
}
