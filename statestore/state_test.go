package statestore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/autovis/config"
	"github.com/spektr-org/autovis/engine"
)

func TestDecodePersistedShape(t *testing.T) {
	s, err := Decode([]byte(`{"chartType":"line","axesMapping":{"x":"field0","y":"field1"},"styleOptions":{"addLegend":true},"extra":1}`))
	require.NoError(t, err)

	assert.Equal(t, engine.ChartLine, s.ChartType)
	assert.Equal(t, engine.NameMapping{engine.AxisX: "field0", engine.AxisY: "field1"}, s.AxesMapping)
	assert.Equal(t, map[string]any{"addLegend": true}, s.StyleOptions)
}

func TestEncodeOmitsUnset(t *testing.T) {
	data, err := Encode(State{ChartType: engine.ChartBar})
	require.NoError(t, err)
	assert.JSONEq(t, `{"chartType":"bar"}`, string(data))

	data, err = Encode(State{})
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data))
}

func TestDecodeInvalid(t *testing.T) {
	_, err := Decode([]byte(`{"chartType":`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode state")
}

func TestStateIsZero(t *testing.T) {
	assert.True(t, State{}.IsZero())
	assert.True(t, State{AxesMapping: engine.NameMapping{}}.IsZero())
	assert.False(t, State{ChartType: engine.ChartPie}.IsZero())
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.Load(ctx, "missing")
	assert.True(t, errors.Is(err, ErrNotFound))

	state := State{
		ChartType:    engine.ChartPie,
		AxesMapping:  engine.NameMapping{engine.AxisTheta: "count", engine.AxisColor: "host"},
		StyleOptions: map[string]any{"donut": true},
	}
	require.NoError(t, store.Save(ctx, "k", state))

	state.AxesMapping[engine.AxisTheta] = "mutated"

	got, err := store.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "count", got.AxesMapping[engine.AxisTheta])
	assert.Equal(t, engine.ChartPie, got.ChartType)
	assert.Equal(t, 1, store.Len())

	require.NoError(t, store.Delete(ctx, "k"))
	require.NoError(t, store.Delete(ctx, "k"))
	_, err = store.Load(ctx, "k")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestNewStore(t *testing.T) {
	store, err := New(context.Background(), config.StoreConfig{Type: config.StoreMemory}, nil)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, store)

	_, err = New(context.Background(), config.StoreConfig{Type: "etcd"}, nil)
	assert.ErrorContains(t, err, "unsupported store type")
}
