package schema

import (
	"strconv"
	"strings"
	"time"
)

// ============================================================================
// TYPE INFERENCE — for untyped sources (CSV, ad-hoc rows)
// ============================================================================
// Requires 80%+ of non-null values to parse as a type before claiming it.
// Booleans are treated as categories; ISO-ish dates as dates.
// ============================================================================

// InferFieldType inspects raw string values and guesses their FieldType.
func InferFieldType(values []string) FieldType {
	present := make([]string, 0, len(values))
	for _, v := range values {
		if !isNullToken(v) {
			present = append(present, strings.TrimSpace(v))
		}
	}
	if len(present) == 0 {
		return Unknown
	}

	numCount, dateCount, boolCount := 0, 0, 0
	for _, v := range present {
		if isNumeric(v) {
			numCount++
		}
		if isDate(v) {
			dateCount++
		}
		if isBool(v) {
			boolCount++
		}
	}

	threshold := int(float64(len(present)) * 0.8)
	if threshold == 0 {
		threshold = 1
	}

	switch {
	case boolCount >= threshold:
		return Categorical
	case dateCount >= threshold:
		return Date
	case numCount >= threshold:
		return Numerical
	}
	return Categorical
}

// StorageType is the Field.Type name Normalize maps back to t.
func StorageType(t FieldType) string {
	switch t {
	case Numerical:
		return "double"
	case Date:
		return "date"
	case Categorical:
		return "keyword"
	}
	return "unknown"
}

func isNullToken(s string) bool {
	switch strings.TrimSpace(s) {
	case "", "null", "NULL", "N/A", "n/a":
		return true
	}
	return false
}

func isNumeric(s string) bool {
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimPrefix(s, "€")
	s = strings.TrimPrefix(s, "£")
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

var dateFormats = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.000",
	"01/02/2006",
	"Jan-2006",
	"January 2006",
	"Jan 2, 2006",
	"2 Jan 2006",
}

func isDate(s string) bool {
	for _, layout := range dateFormats {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

func isBool(s string) bool {
	switch strings.ToLower(s) {
	case "true", "false", "yes", "no":
		return true
	}
	return false
}
