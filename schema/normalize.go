package schema

import (
	"fmt"
	"strconv"
	"strings"
)

// ============================================================================
// NORMALIZE — raw rows + field list → Dataset
// ============================================================================
// Pipeline per field:
//   1. Map the source type name to a FieldType (unknown fields are dropped)
//   2. Copy values into transformed rows under a stable "field-<i>" key
//   3. Count present and distinct values (rules use these as cardinality hints)
// Rows shaped like search hits ({_id, _index, _source}) are unwrapped first.
// ============================================================================

// Field is a source column: its name in the raw row and its storage type.
type Field struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
}

var fieldTypeNames = map[string]FieldType{
	"byte": Numerical, "short": Numerical, "int": Numerical, "integer": Numerical,
	"long": Numerical, "unsigned_long": Numerical, "float": Numerical, "half_float": Numerical,
	"scaled_float": Numerical, "double": Numerical, "number": Numerical, "bigint": Numerical,

	"date": Date, "date_nanos": Date, "timestamp": Date, "time": Date, "datetime": Date,

	"text": Categorical, "keyword": Categorical, "string": Categorical, "boolean": Categorical,
	"ip": Categorical, "constant_keyword": Categorical, "wildcard": Categorical,
}

// FieldTypeOf maps a storage type name (OpenSearch, SQL, PPL) to a FieldType.
func FieldTypeOf(typeName string) FieldType {
	if t, ok := fieldTypeNames[strings.ToLower(strings.TrimSpace(typeName))]; ok {
		return t
	}
	return Unknown
}

// ColumnKey is the transformed-row key for the field at index i.
func ColumnKey(i int) string {
	return fmt.Sprintf("field-%d", i)
}

// Normalize builds a Dataset from raw rows and their field list.
func Normalize(rows []Row, fields []Field) *Dataset {
	ds := &Dataset{
		TransformedData:    make([]Row, len(rows)),
		NumericalColumns:   []Column{},
		CategoricalColumns: []Column{},
		DateColumns:        []Column{},
	}
	for r := range rows {
		ds.TransformedData[r] = Row{}
	}

	for i, f := range fields {
		fieldType := FieldTypeOf(f.Type)
		if fieldType == Unknown {
			continue
		}

		col := Column{
			ID:     i,
			Name:   f.Name,
			Column: ColumnKey(i),
			Schema: fieldType,
		}

		unique := make(map[string]bool)
		for r, raw := range rows {
			val, ok := lookup(source(raw), f.Name)
			if !ok {
				continue
			}
			if fieldType == Numerical {
				val = coerceNumber(val)
			}
			ds.TransformedData[r][col.Column] = val
			if isPresent(val) {
				col.ValidValuesCount++
				unique[fmt.Sprint(val)] = true
			}
		}
		col.UniqueValuesCount = len(unique)

		switch fieldType {
		case Numerical:
			ds.NumericalColumns = append(ds.NumericalColumns, col)
		case Categorical:
			ds.CategoricalColumns = append(ds.CategoricalColumns, col)
		case Date:
			ds.DateColumns = append(ds.DateColumns, col)
		}
	}

	return ds
}

// source unwraps a search hit; other rows are returned unchanged.
func source(row Row) Row {
	if src, ok := row["_source"].(map[string]any); ok {
		return src
	}
	return row
}

// lookup resolves name directly, then as a dotted path into nested objects.
func lookup(row Row, name string) (any, bool) {
	if v, ok := row[name]; ok {
		return v, true
	}
	if !strings.Contains(name, ".") {
		return nil, false
	}
	var cur any = row
	for _, part := range strings.Split(name, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = m[part]; !ok {
			return nil, false
		}
	}
	return cur, true
}

func isPresent(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(t) != ""
	}
	return true
}

// coerceNumber parses numeric strings, allowing thousands separators and a
// leading currency symbol. Any other value is kept as is.
func coerceNumber(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	s = strings.TrimLeft(s, "$€£")
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return v
}
