package builder

import (
	"maps"
	"reflect"

	"github.com/spektr-org/autovis/engine"
	"github.com/spektr-org/autovis/schema"
)

// StyleState is a chart type's style options, tagged with the chart type
// they belong to. Style options never carry across chart types.
type StyleState struct {
	Type   engine.ChartType `json:"type" yaml:"type"`
	Styles map[string]any   `json:"styles" yaml:"styles"`
}

// Snapshot is a point-in-time copy of the builder cells.
type Snapshot struct {
	ChartType    engine.ChartType   `json:"chartType,omitempty" yaml:"chartType,omitempty"`
	Styles       *StyleState        `json:"styles,omitempty" yaml:"styles,omitempty"`
	AxesMapping  engine.NameMapping `json:"axesMapping" yaml:"axesMapping"`
	Data         *schema.Dataset    `json:"-" yaml:"-"`
	ShowRawTable bool               `json:"showRawTable" yaml:"showRawTable"`
}

func cloneStyleState(s *StyleState) *StyleState {
	if s == nil {
		return nil
	}
	return &StyleState{Type: s.Type, Styles: engine.CloneStyles(s.Styles)}
}

func equalStyleState(a, b *StyleState) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Type == b.Type && reflect.DeepEqual(a.Styles, b.Styles)
}

func cloneMapping(m engine.NameMapping) engine.NameMapping {
	if m == nil {
		return engine.NameMapping{}
	}
	return maps.Clone(m)
}

func equalMapping(a, b engine.NameMapping) bool {
	return maps.Equal(a, b)
}

func equalDataset(a, b *schema.Dataset) bool {
	return a == b || reflect.DeepEqual(a, b)
}

func identity[T any](v T) T { return v }

func equalComparable[T comparable](a, b T) bool { return a == b }
