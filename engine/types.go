package engine

import (
	"github.com/spektr-org/autovis/schema"
)

// ============================================================================
// ENGINE TYPES — Rules, chart types, axis roles
// ============================================================================
// A VisualizationRule claims a column shape and ranks the chart types that can
// draw it. A ChartTypeConfig describes each chart type's style defaults and the
// templates used to bind columns to its axis roles.
// ============================================================================

// ChartType identifies a chart geometry.
type ChartType string

const (
	ChartLine    ChartType = "line"
	ChartArea    ChartType = "area"
	ChartBar     ChartType = "bar"
	ChartPie     ChartType = "pie"
	ChartMetric  ChartType = "metric"
	ChartHeatmap ChartType = "heatmap"
	ChartScatter ChartType = "scatter"
	ChartTable   ChartType = "table"
)

// AxisRole is a named visual binding slot. The vocabulary is chart-type specific.
type AxisRole string

const (
	AxisX     AxisRole = "x"
	AxisY     AxisRole = "y"
	AxisY2    AxisRole = "y2"
	AxisColor AxisRole = "color"
	AxisSize  AxisRole = "size"
	AxisFacet AxisRole = "facet"
	AxisTheta AxisRole = "theta"
	AxisValue AxisRole = "value"
)

// ChartTypeMeta is one ranked chart-type candidate of a rule.
type ChartTypeMeta struct {
	Type     ChartType `json:"type" yaml:"type"`
	Name     string    `json:"name" yaml:"name"`
	Priority int       `json:"priority" yaml:"priority"`
}

// MatchResult is the strength with which a rule claims a column shape.
type MatchResult int

const (
	NotMatch MatchResult = iota
	CompatibleMatch
	ExactMatch
)

// Matched reports whether the rule applies at all.
func (m MatchResult) Matched() bool {
	return m == ExactMatch || m == CompatibleMatch
}

func (m MatchResult) String() string {
	switch m {
	case ExactMatch:
		return "EXACT_MATCH"
	case CompatibleMatch:
		return "COMPATIBLE_MATCH"
	}
	return "NOT_MATCH"
}

// Signature counts columns per schema: (numerical, categorical, date).
type Signature struct {
	Numerical   int `json:"numerical" yaml:"numerical"`
	Categorical int `json:"categorical" yaml:"categorical"`
	Date        int `json:"date" yaml:"date"`
}

// Of returns the count for one schema.
func (s Signature) Of(t schema.FieldType) int {
	switch t {
	case schema.Numerical:
		return s.Numerical
	case schema.Categorical:
		return s.Categorical
	case schema.Date:
		return s.Date
	}
	return 0
}

func (s *Signature) add(t schema.FieldType) {
	switch t {
	case schema.Numerical:
		s.Numerical++
	case schema.Categorical:
		s.Categorical++
	case schema.Date:
		s.Date++
	}
}

// MatchFunc is a rule predicate over the three column partitions.
type MatchFunc func(numerical, categorical, date []schema.Column) MatchResult

// VisualizationRule is a stateless predicate plus ranked chart-type candidates.
type VisualizationRule struct {
	ID          string          `json:"id" yaml:"id"`
	Name        string          `json:"name" yaml:"name"`
	Description string          `json:"description,omitempty" yaml:"description,omitempty"`
	Signature   Signature       `json:"signature" yaml:"signature"`
	ChartTypes  []ChartTypeMeta `json:"chartTypes" yaml:"chartTypes"`

	Matches   MatchFunc                  `json:"-" yaml:"-"`
	Compilers map[ChartType]SpecCompiler `json:"-" yaml:"-"` // nil entries fall back to GenericCompiler
}

// TopChartType returns the highest-priority candidate, first declared on ties.
func (r *VisualizationRule) TopChartType() (ChartTypeMeta, bool) {
	if len(r.ChartTypes) == 0 {
		return ChartTypeMeta{}, false
	}
	top := r.ChartTypes[0]
	for _, ct := range r.ChartTypes[1:] {
		if ct.Priority > top.Priority {
			top = ct
		}
	}
	return top, true
}

// ChartTypeEntry returns the candidate of the given type.
func (r *VisualizationRule) ChartTypeEntry(t ChartType) (ChartTypeMeta, bool) {
	for _, ct := range r.ChartTypes {
		if ct.Type == t {
			return ct, true
		}
	}
	return ChartTypeMeta{}, false
}

// Supports reports whether the rule lists t among its candidates.
func (r *VisualizationRule) Supports(t ChartType) bool {
	_, ok := r.ChartTypeEntry(t)
	return ok
}

// ColumnRef points at a column by schema and ordinal within that partition.
type ColumnRef struct {
	Schema schema.FieldType `json:"schema" yaml:"schema"`
	Index  int              `json:"index" yaml:"index"`
}

// MappingTemplate binds axis roles to column refs for one column shape.
type MappingTemplate map[AxisRole]ColumnRef

// Signature counts the template's refs per schema.
func (t MappingTemplate) Signature() Signature {
	var s Signature
	for _, ref := range t {
		s.add(ref.Schema)
	}
	return s
}

// ChartTypeConfig holds a chart type's style defaults and mapping templates.
type ChartTypeConfig struct {
	Type              ChartType         `json:"type" yaml:"type"`
	Name              string            `json:"name" yaml:"name"`
	StyleDefaults     map[string]any    `json:"styleDefaults" yaml:"styleDefaults"`
	AvailableMappings []MappingTemplate `json:"availableMappings" yaml:"availableMappings"`
}

// Match is the winning rule / chart-type pair of FindBestMatch.
type Match struct {
	Rule      *VisualizationRule
	ChartType ChartTypeMeta
}

// AxesMapping is the runtime role → column binding.
type AxesMapping map[AxisRole]schema.Column

// NameMapping is the persisted role → column-name binding.
type NameMapping map[AxisRole]string
