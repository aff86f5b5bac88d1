package schema

// ============================================================================
// SCHEMA — Typed description of a result set
// ============================================================================
// A Dataset is a result set whose columns have been partitioned by FieldType.
// Rules match on partition sizes; the builder binds axis roles to columns.
// Datasets are replaced wholesale on every query and never mutated in place.
// ============================================================================

// FieldType classifies a column for visualization purposes.
type FieldType string

const (
	Numerical   FieldType = "numerical"
	Categorical FieldType = "categorical"
	Date        FieldType = "date"
	Unknown     FieldType = "unknown"
)

// Row is one transformed record, keyed by Column.Column.
type Row = map[string]any

// Column describes one field of a result set.
type Column struct {
	ID     int       `json:"id" yaml:"id"`
	Name   string    `json:"name" yaml:"name"`     // display name, persistence key for axis mappings
	Column string    `json:"column" yaml:"column"` // key inside a transformed Row
	Schema FieldType `json:"schema" yaml:"schema"`

	ValidValuesCount  int `json:"validValuesCount" yaml:"validValuesCount"`
	UniqueValuesCount int `json:"uniqueValuesCount" yaml:"uniqueValuesCount"`
}

// Dataset is a result set with its columns pre-partitioned by schema.
// Every column appears in exactly one partition and names are unique across
// partitions.
type Dataset struct {
	TransformedData    []Row    `json:"transformedData" yaml:"transformedData"`
	NumericalColumns   []Column `json:"numericalColumns" yaml:"numericalColumns"`
	CategoricalColumns []Column `json:"categoricalColumns" yaml:"categoricalColumns"`
	DateColumns        []Column `json:"dateColumns" yaml:"dateColumns"`
}

// AllColumns returns numerical, categorical and date columns, in that order.
func (d *Dataset) AllColumns() []Column {
	if d == nil {
		return nil
	}
	all := make([]Column, 0, len(d.NumericalColumns)+len(d.CategoricalColumns)+len(d.DateColumns))
	all = append(all, d.NumericalColumns...)
	all = append(all, d.CategoricalColumns...)
	all = append(all, d.DateColumns...)
	return all
}

// Partition returns the columns of a single schema.
func (d *Dataset) Partition(t FieldType) []Column {
	if d == nil {
		return nil
	}
	switch t {
	case Numerical:
		return d.NumericalColumns
	case Categorical:
		return d.CategoricalColumns
	case Date:
		return d.DateColumns
	}
	return nil
}

// ColumnByName looks up a column across all partitions.
func (d *Dataset) ColumnByName(name string) (Column, bool) {
	return FindColumn(d.AllColumns(), name)
}

// FindColumn returns the first column in cols named name.
func FindColumn(cols []Column, name string) (Column, bool) {
	for _, c := range cols {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.TransformedData)
}
