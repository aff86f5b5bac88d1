package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInferFieldType(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   FieldType
	}{
		{"integers", []string{"1", "2", "3"}, Numerical},
		{"money", []string{"$1,200.50", "€30", "12"}, Numerical},
		{"iso dates", []string{"2026-01-15", "2026-01-16", ""}, Date},
		{"timestamps", []string{"2026-01-15T10:00:00Z", "2026-01-15 11:00:00"}, Date},
		{"month labels", []string{"Jan-2026", "Feb-2026"}, Date},
		{"booleans", []string{"true", "false", "yes"}, Categorical},
		{"strings", []string{"Backend", "Frontend"}, Categorical},
		{"mostly numbers", []string{"1", "2", "3", "4", "x"}, Numerical},
		{"mixed", []string{"1", "a", "b"}, Categorical},
		{"all null", []string{"", "null", "N/A"}, Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InferFieldType(tt.values))
		})
	}
}

func TestStorageTypeRoundTrip(t *testing.T) {
	for _, ft := range []FieldType{Numerical, Categorical, Date} {
		assert.Equal(t, ft, FieldTypeOf(StorageType(ft)))
	}
	assert.Equal(t, Unknown, FieldTypeOf(StorageType(Unknown)))
}
