package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"steeple/internal/registry/models"
)

func TestIsLikelyChurch(t *testing.T) {
	cases := []struct {
		name   string
		church models.Church
		want   bool
	}{
		{"ntee religion major group", models.Church{NTEE: "X20"}, true},
		{"congregation activity code", models.Church{Activity: "022"}, true},
		{"subsection 170", models.Church{Subsection: "170"}, true},
		{"any single signal suffices", models.Church{NTEE: "B21", Activity: "029"}, true},
		{"non-religious ntee and activity", models.Church{NTEE: "B21", Activity: "123", Subsection: "3"}, false},
		{"empty row", models.Church{}, false},
		{"x must be a prefix", models.Church{NTEE: "AX2"}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsLikelyChurch(tc.church))
		})
	}
}
