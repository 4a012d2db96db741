// Package ingest reads IRS exempt-organization extracts and loads candidate
// church rows into the registry.
package ingest

import (
	"strings"

	"steeple/internal/registry/models"
)

// Activity codes that indicate religious congregations in the IRS extract.
var churchActivityCodes = map[string]bool{
	"022": true,
	"023": true,
	"024": true,
	"029": true,
}

// IsLikelyChurch classifies an extract row as a candidate church.
// Any one signal suffices: an NTEE code in the religion major group (X),
// a congregation activity code, or subsection 170.
func IsLikelyChurch(c models.Church) bool {
	if strings.HasPrefix(c.NTEE, "X") {
		return true
	}
	if churchActivityCodes[c.Activity] {
		return true
	}
	return c.Subsection == "170"
}
