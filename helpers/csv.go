package helpers

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spektr-org/autovis/schema"
)

// ============================================================================
// CSV HELPER — Parses CSV data into raw rows + an inferred field list
// ============================================================================
// Consumer reads the CSV from wherever it lives (file, S3, HTTP).
// Column types are inferred from the values, then the rows go through the
// same normalizer as search results.
// ============================================================================

// ParseCSV parses CSV bytes. The first record is the header. Each returned
// row maps header name → trimmed cell value; fields carry inferred storage
// types understood by schema.Normalize.
func ParseCSV(data []byte) ([]schema.Row, []schema.Field, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV headers: %w", err)
	}
	names := columnNames(headers)

	var rows []schema.Row
	columns := make([][]string, len(names))
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			continue // skip malformed rows
		}

		row := make(schema.Row, len(names))
		for i, name := range names {
			val := ""
			if i < len(record) {
				val = strings.TrimSpace(record[i])
			}
			row[name] = val
			columns[i] = append(columns[i], val)
		}
		rows = append(rows, row)
	}

	fields := make([]schema.Field, len(names))
	for i, name := range names {
		fields[i] = schema.Field{
			Name: name,
			Type: schema.StorageType(schema.InferFieldType(columns[i])),
		}
	}
	return rows, fields, nil
}

// ParseCSVDataset parses CSV bytes straight into a Dataset.
func ParseCSVDataset(data []byte) (*schema.Dataset, error) {
	rows, fields, err := ParseCSV(data)
	if err != nil {
		return nil, err
	}
	return schema.Normalize(rows, fields), nil
}

// columnNames trims headers and makes them unique and non-empty.
func columnNames(headers []string) []string {
	names := make([]string, len(headers))
	seen := make(map[string]int, len(headers))
	for i, h := range headers {
		name := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		if n := seen[name]; n > 0 {
			seen[name] = n + 1
			name = fmt.Sprintf("%s_%d", name, n+1)
		}
		seen[name]++
		names[i] = name
	}
	return names
}
