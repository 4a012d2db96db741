package ingest

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"steeple/internal/registry/store"
)

const sampleExtract = `EIN,NAME,STREET,CITY,STATE,ZIP,NTEE_CD,AFFILIATION,CLASSIFICATION,FOUNDATION,ACTIVITY,SUBSECTION
111111111,GRACE BAPTIST CHURCH,100 MAIN ST,AUSTIN,TX,78701,X21,9,7,10,022,170
222222222,AUSTIN FOOD BANK,200 OAK AVE,AUSTIN,TX,78702,K31,3,1,15,560,3
333333333,ST MARY PARISH,300 ELM DR,HOUSTON,TX,77001,X20,9,7,10,029,170
not-a-number,BROKEN ROW,,,,,,,,,,
444444444,GRACE BAPTIST CHURCH,100 MAIN ST,AUSTIN,TX,78701,X21,9,7,10,022,170
`

func TestParseExtract(t *testing.T) {
	rows, skipped, err := ParseExtract(strings.NewReader(sampleExtract))
	require.NoError(t, err)

	assert.Len(t, rows, 4)
	assert.Equal(t, 1, skipped, "row with bad EIN is skipped, not fatal")
	assert.Equal(t, int64(111111111), rows[0].EIN)
	assert.Equal(t, "GRACE BAPTIST CHURCH", rows[0].Name)
	assert.Equal(t, "X21", rows[0].NTEE)
	assert.Equal(t, "170", rows[0].Subsection)
}

func TestParseExtract_MissingEINColumn(t *testing.T) {
	_, _, err := ParseExtract(strings.NewReader("NAME,CITY\nFOO,AUSTIN\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "EIN")
}

func TestIngester_Run(t *testing.T) {
	reg := store.NewMemory()
	ing, err := New(reg, slog.New(slog.DiscardHandler), WithBatchSize(2))
	require.NoError(t, err)

	stats, err := ing.Run(context.Background(), strings.NewReader(sampleExtract))
	require.NoError(t, err)

	// Food bank filtered out; duplicate EIN inserts once per run (distinct
	// EINs here, so all three candidates land).
	assert.Equal(t, 4, stats.Parsed)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 3, stats.Classified)
	assert.Equal(t, 3, stats.Inserted)
	assert.Len(t, reg.All(), 3)
}

func TestIngester_RunIsIdempotentOnEIN(t *testing.T) {
	reg := store.NewMemory()
	ing, err := New(reg, slog.New(slog.DiscardHandler))
	require.NoError(t, err)

	_, err = ing.Run(context.Background(), strings.NewReader(sampleExtract))
	require.NoError(t, err)

	stats, err := ing.Run(context.Background(), strings.NewReader(sampleExtract))
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Inserted, "re-running the same extract inserts nothing")
}

func TestNew_RequiresStore(t *testing.T) {
	_, err := New(nil, slog.New(slog.DiscardHandler))
	require.Error(t, err)
}
