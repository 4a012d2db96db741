package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"steeple/internal/registry/models"
)

// ParseExtract reads an IRS exempt-organization CSV extract. Rows with a
// missing or unparseable EIN are skipped rather than failing the whole file;
// the extracts routinely contain ragged rows.
func ParseExtract(r io.Reader) ([]models.Church, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("read extract header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToUpper(strings.TrimSpace(name))] = i
	}
	if _, ok := col["EIN"]; !ok {
		return nil, 0, fmt.Errorf("extract header missing EIN column")
	}

	field := func(record []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var (
		out     []models.Church
		skipped int
	)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skipped++
			continue
		}

		ein, err := strconv.ParseInt(field(record, "EIN"), 10, 64)
		if err != nil || ein == 0 {
			skipped++
			continue
		}

		out = append(out, models.Church{
			EIN:            ein,
			Name:           field(record, "NAME"),
			Street:         field(record, "STREET"),
			City:           field(record, "CITY"),
			State:          field(record, "STATE"),
			Zip:            field(record, "ZIP"),
			NTEE:           field(record, "NTEE_CD"),
			Activity:       field(record, "ACTIVITY"),
			Affiliation:    field(record, "AFFILIATION"),
			Classification: field(record, "CLASSIFICATION"),
			Foundation:     field(record, "FOUNDATION"),
			Subsection:     field(record, "SUBSECTION"),
		})
	}
	return out, skipped, nil
}
