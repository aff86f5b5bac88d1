package statestore

import (
	"context"
	"errors"
	"fmt"

	"github.com/bytedance/sonic"

	"github.com/spektr-org/autovis/engine"
)

// ============================================================================
// STATE STORE — persisted builder state
// ============================================================================
// One key holds { chartType?, axesMapping?, styleOptions? }. The builder saves
// after each state-changing operation and reads once at Init. Datasets are
// never persisted.
// ============================================================================

// ErrNotFound is returned by Load when no state is stored under the key.
var ErrNotFound = errors.New("state not found")

// State is the persisted shape of a builder's visualization choice.
type State struct {
	ChartType    engine.ChartType   `json:"chartType,omitempty"`
	AxesMapping  engine.NameMapping `json:"axesMapping,omitempty"`
	StyleOptions map[string]any     `json:"styleOptions,omitempty"`
}

// IsZero reports whether nothing is set.
func (s State) IsZero() bool {
	return s.ChartType == "" && len(s.AxesMapping) == 0 && len(s.StyleOptions) == 0
}

// Store loads and saves State by key.
type Store interface {
	Load(ctx context.Context, key string) (State, error)
	Save(ctx context.Context, key string, state State) error
	Delete(ctx context.Context, key string) error
}

// Encode serializes a State to JSON.
func Encode(s State) ([]byte, error) {
	data, err := sonic.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	return data, nil
}

// Decode parses JSON produced by Encode. Unknown fields are ignored.
func Decode(data []byte) (State, error) {
	var s State
	if err := sonic.Unmarshal(data, &s); err != nil {
		return State{}, fmt.Errorf("decode state: %w", err)
	}
	return s, nil
}
