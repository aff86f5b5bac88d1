package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spektr-org/autovis/schema"
)

func TestMappingRoundTrip(t *testing.T) {
	count := numCol(0, "count", 10, 3)
	ts := dateCol(1, "timestamp")
	all := cols(count, ts)

	m := AxesMapping{AxisX: ts, AxisY: count}
	names := ToNameMapping(m)

	assert.Equal(t, NameMapping{AxisX: "timestamp", AxisY: "count"}, names)
	assert.Equal(t, m, ToColumnMapping(names, all))
}

func TestToColumnMappingOmitsUnresolved(t *testing.T) {
	all := cols(numCol(0, "count", 10, 3))
	got := ToColumnMapping(NameMapping{AxisY: "count", AxisX: "gone"}, all)
	assert.Equal(t, AxesMapping{AxisY: all[0]}, got)
}

func TestIsValidMapping(t *testing.T) {
	all := cols(numCol(0, "count", 10, 3), catCol(1, "host", 4))

	assert.True(t, IsValidMapping(NameMapping{}, all))
	assert.True(t, IsValidMapping(nil, nil))
	assert.True(t, IsValidMapping(NameMapping{AxisX: "host", AxisY: "count"}, all))
	assert.True(t, IsValidMapping(NameMapping{AxisX: "host", AxisColor: ""}, all))
	assert.False(t, IsValidMapping(NameMapping{AxisX: "host", AxisY: "bytes"}, all))

	// Adding columns never invalidates a valid mapping.
	grown := append(cols(dateCol(2, "timestamp")), all...)
	assert.True(t, IsValidMapping(NameMapping{AxisX: "host", AxisY: "count"}, grown))
}

func TestMappingSignature(t *testing.T) {
	all := cols(numCol(0, "count", 10, 3), catCol(1, "host", 4), catCol(2, "status", 2), dateCol(3, "timestamp"))

	assert.Equal(t, Signature{Numerical: 1, Categorical: 2},
		MappingSignature(NameMapping{AxisX: "host", AxisY: "count", AxisColor: "status"}, all))
	assert.Equal(t, Signature{Numerical: 1, Date: 1},
		MappingSignature(NameMapping{AxisX: "timestamp", AxisY: "count", AxisColor: "gone"}, all))
}

func TestMappedColumns(t *testing.T) {
	host := catCol(1, "host", 4)
	status := catCol(2, "status", 2)
	count := numCol(0, "count", 10, 3)
	all := cols(count, host, status)

	got := MappedColumns(NameMapping{AxisColor: "status", AxisX: "host", AxisY: "count"}, all)
	assert.Equal(t, map[schema.FieldType][]schema.Column{
		schema.Numerical:   {count},
		schema.Categorical: {host, status},
	}, got)
}
