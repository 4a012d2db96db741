// Package resolve orchestrates the resolution pipeline: admission,
// validation, embedding, candidate search, arbitration, and the audit write.
package resolve

import (
	"strings"

	"github.com/google/uuid"
)

// Query is one inbound resolution request.
type Query struct {
	Name    string
	Street  string
	City    string
	State   string
	Zip     string
	Website string
}

// Normalize trims and uppercases every field. Matching is case-insensitive
// end to end; uppercasing once at the door keeps the embedded text, the
// geographic filters, and the audit trail consistent.
func (q Query) Normalize() Query {
	norm := func(s string) string {
		return strings.ToUpper(strings.TrimSpace(s))
	}
	return Query{
		Name:    norm(q.Name),
		Street:  norm(q.Street),
		City:    norm(q.City),
		State:   norm(q.State),
		Zip:     norm(q.Zip),
		Website: norm(q.Website),
	}
}

// IsEmpty reports whether no field is set at all.
func (q Query) IsEmpty() bool {
	return q.Name == "" && q.Street == "" && q.City == "" &&
		q.State == "" && q.Zip == "" && q.Website == ""
}

// MissingRequired lists absent required fields: name, city, and state.
func (q Query) MissingRequired() []string {
	var missing []string
	if q.Name == "" {
		missing = append(missing, "name")
	}
	if q.City == "" {
		missing = append(missing, "city")
	}
	if q.State == "" {
		missing = append(missing, "state")
	}
	return missing
}

// Match is the resolution outcome handed to callers. A nil UUID means no
// confident match; the remaining fields echo the matched registry row.
type Match struct {
	UUID    *uuid.UUID `json:"uuid"`
	Name    string     `json:"name,omitempty"`
	Street  string     `json:"street,omitempty"`
	City    string     `json:"city,omitempty"`
	State   string     `json:"state,omitempty"`
	Zip     string     `json:"zip,omitempty"`
	Website string     `json:"website,omitempty"`
}

// Matched reports whether the pipeline settled on a registry row.
func (m Match) Matched() bool {
	return m.UUID != nil
}
