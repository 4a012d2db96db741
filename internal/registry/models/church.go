// Package models defines the canonical registry entities.
package models

import (
	"strconv"
	"strings"
	"time"

	"steeple/pkg/domain"
)

// Church is the canonical registry organization. The EIN is the natural
// dedup key used by ingestion; the surrogate ID is the stable reference
// handed to resolution consumers.
type Church struct {
	ID             domain.ChurchID
	EIN            int64
	Name           string
	Street         string
	City           string
	State          string
	Zip            string
	Website        string
	NTEE           string
	Activity       string
	Affiliation    string
	Classification string
	Foundation     string
	Subsection     string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// CombinedText is the space-joined identifying text embedded as the
// combined vector for this record. Field order matters for embedding
// stability: name, EIN, street, city, state, zip, website.
func (c Church) CombinedText() string {
	fields := []string{c.Name, "", c.Street, c.City, c.State, c.Zip, c.Website}
	if c.EIN != 0 {
		fields[1] = strconv.FormatInt(c.EIN, 10)
	}

	parts := fields[:0]
	for _, f := range fields {
		if f != "" {
			parts = append(parts, f)
		}
	}
	return strings.Join(parts, " ")
}
