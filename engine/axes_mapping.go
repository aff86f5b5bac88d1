package engine

import (
	"github.com/spektr-org/autovis/schema"
)

// ============================================================================
// AXES MAPPING — runtime/persisted conversion + validity
// ============================================================================
// The builder persists role → column name. Names are resolved against the
// current dataset on every read, so a mapping may go stale when the data
// changes; IsValidMapping is how callers detect that.
// ============================================================================

// ToNameMapping projects each bound column to its name.
func ToNameMapping(mapping AxesMapping) NameMapping {
	out := make(NameMapping, len(mapping))
	for role, col := range mapping {
		out[role] = col.Name
	}
	return out
}

// ToColumnMapping resolves names against all. Roles whose name does not
// resolve are left out of the result.
func ToColumnMapping(mapping NameMapping, all []schema.Column) AxesMapping {
	out := make(AxesMapping, len(mapping))
	for role, name := range mapping {
		if col, ok := schema.FindColumn(all, name); ok {
			out[role] = col
		}
	}
	return out
}

// IsValidMapping reports whether every non-empty name in mapping exists in
// all. The empty mapping is valid.
func IsValidMapping(mapping NameMapping, all []schema.Column) bool {
	for _, name := range mapping {
		if name == "" {
			continue
		}
		if _, ok := schema.FindColumn(all, name); !ok {
			return false
		}
	}
	return true
}

// MappingSignature counts the columns referenced by mapping, by schema.
// Unresolved names do not count.
func MappingSignature(mapping NameMapping, all []schema.Column) Signature {
	var sig Signature
	for _, col := range ToColumnMapping(mapping, all) {
		sig.add(col.Schema)
	}
	return sig
}

// MappedColumns returns the distinct columns referenced by mapping, grouped
// by schema and ordered by their position in all.
func MappedColumns(mapping NameMapping, all []schema.Column) map[schema.FieldType][]schema.Column {
	used := make(map[string]bool, len(mapping))
	for _, name := range mapping {
		used[name] = true
	}
	out := make(map[schema.FieldType][]schema.Column)
	for _, col := range all {
		if used[col.Name] {
			out[col.Schema] = append(out[col.Schema], col)
			delete(used, col.Name)
		}
	}
	return out
}
