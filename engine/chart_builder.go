package engine

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/spektr-org/autovis/schema"
)

// ============================================================================
// CHART BUILDER — Compiles rows + axes mapping into a ChartSpec
// ============================================================================
// Geometry-specific renderers plug in per rule and chart type through
// VisualizationRule.Compilers. GenericCompiler covers every built-in chart
// type with labelled series, which is enough for previews and the CLI.
// ============================================================================

// Default color palette for chart series.
var defaultColors = []string{
	"#4F46E5", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#06B6D4", "#EC4899", "#84CC16", "#F97316", "#6366F1",
}

// SpecRequest is the input of a SpecCompiler.
type SpecRequest struct {
	ChartType ChartType
	Rows      []schema.Row
	Mapping   AxesMapping
	Styles    map[string]any
}

// ChartSpec is a render-ready chart description.
type ChartSpec struct {
	ChartType  ChartType           `json:"chartType" yaml:"chartType"`
	Title      string              `json:"title" yaml:"title"`
	XAxis      string              `json:"xAxis,omitempty" yaml:"xAxis,omitempty"`
	YAxis      string              `json:"yAxis,omitempty" yaml:"yAxis,omitempty"`
	Encoding   map[AxisRole]string `json:"encoding" yaml:"encoding"`
	Series     []ChartSeries       `json:"series" yaml:"series"`
	Colors     []string            `json:"colors,omitempty" yaml:"colors,omitempty"`
	ShowLegend bool                `json:"showLegend" yaml:"showLegend"`
	ShowGrid   bool                `json:"showGrid" yaml:"showGrid"`
}

// ChartSeries represents a data series in a chart.
type ChartSeries struct {
	Name  string       `json:"name" yaml:"name"`
	Data  []ChartPoint `json:"data" yaml:"data"`
	Color string       `json:"color,omitempty" yaml:"color,omitempty"`
}

// ChartPoint represents a single data point.
type ChartPoint struct {
	Label string  `json:"label" yaml:"label"`
	Value float64 `json:"value" yaml:"value"`
}

// SpecCompiler turns a SpecRequest into a ChartSpec.
type SpecCompiler interface {
	Compile(req SpecRequest) (*ChartSpec, error)
}

// SpecCompilerFunc adapts a function to SpecCompiler.
type SpecCompilerFunc func(req SpecRequest) (*ChartSpec, error)

// Compile calls f(req).
func (f SpecCompilerFunc) Compile(req SpecRequest) (*ChartSpec, error) {
	return f(req)
}

// ToSpec compiles req as chartType, or as the rule's top chart type when
// chartType is empty. A compiler registered on the rule wins over the
// generic one.
func (r *VisualizationRule) ToSpec(req SpecRequest, chartType ChartType) (*ChartSpec, error) {
	if chartType == "" {
		top, ok := r.TopChartType()
		if !ok {
			return nil, fmt.Errorf("%w: rule %q lists no chart types", ErrUnknownChartType, r.ID)
		}
		chartType = top.Type
	}
	req.ChartType = chartType

	if c, ok := r.Compilers[chartType]; ok && c != nil {
		return c.Compile(req)
	}
	return GenericCompiler{}.Compile(req)
}

// ============================================================================
// GENERIC COMPILER
// ============================================================================

// GenericCompiler builds labelled series for every built-in chart type.
type GenericCompiler struct{}

// Compile implements SpecCompiler.
func (GenericCompiler) Compile(req SpecRequest) (*ChartSpec, error) {
	spec := &ChartSpec{
		ChartType:  req.ChartType,
		Encoding:   make(map[AxisRole]string, len(req.Mapping)),
		ShowLegend: styleBool(req.Styles, "addLegend", true),
		ShowGrid:   styleBool(req.Styles, "showGrid", req.ChartType != ChartPie && req.ChartType != ChartMetric),
	}
	for role, col := range req.Mapping {
		spec.Encoding[role] = col.Name
	}

	var err error
	switch req.ChartType {
	case ChartTable:
		spec.Series = []ChartSeries{}
	case ChartMetric:
		err = buildMetric(spec, req)
	case ChartPie:
		err = buildPie(spec, req)
	case ChartHeatmap:
		err = buildHeatmap(spec, req)
	default:
		err = buildXY(spec, req)
	}
	if err != nil {
		return nil, err
	}

	if title, ok := req.Styles["title"].(string); ok && title != "" {
		spec.Title = title
	}
	spec.Colors = assignColors(len(spec.Series))
	return spec, nil
}

func requireRoles(req SpecRequest, roles ...AxisRole) error {
	var missing []string
	for _, role := range roles {
		if _, ok := req.Mapping[role]; !ok {
			missing = append(missing, string(role))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s chart needs %s", ErrMissingAxis, req.ChartType, strings.Join(missing, ", "))
	}
	return nil
}

// ============================================================================
// SERIES BUILDERS
// ============================================================================

func buildMetric(spec *ChartSpec, req SpecRequest) error {
	if err := requireRoles(req, AxisValue); err != nil {
		return err
	}
	col := req.Mapping[AxisValue]
	spec.Title = col.Name

	point := ChartPoint{Label: col.Name}
	for _, row := range req.Rows {
		if v, ok := toFloat(row[col.Column]); ok {
			point.Value = RoundTo2(v)
			break
		}
	}
	spec.Series = []ChartSeries{{Name: col.Name, Data: []ChartPoint{point}}}
	return nil
}

func buildPie(spec *ChartSpec, req SpecRequest) error {
	if err := requireRoles(req, AxisTheta, AxisColor); err != nil {
		return err
	}
	theta, color := req.Mapping[AxisTheta], req.Mapping[AxisColor]
	spec.Title = fmt.Sprintf("%s by %s", theta.Name, color.Name)

	g := newGrouper()
	for _, row := range req.Rows {
		v, ok := toFloat(row[theta.Column])
		if !ok {
			continue
		}
		g.add("", formatLabel(row[color.Column]), v)
	}
	spec.Series = g.singleSeries(theta.Name)
	return nil
}

func buildHeatmap(spec *ChartSpec, req SpecRequest) error {
	if err := requireRoles(req, AxisX, AxisY, AxisColor); err != nil {
		return err
	}
	x, y, color := req.Mapping[AxisX], req.Mapping[AxisY], req.Mapping[AxisColor]
	spec.Title = fmt.Sprintf("%s by %s and %s", color.Name, x.Name, y.Name)
	spec.XAxis, spec.YAxis = x.Name, y.Name

	g := newGrouper()
	for _, row := range req.Rows {
		v, ok := toFloat(row[color.Column])
		if !ok {
			continue
		}
		g.add(formatLabel(row[y.Column]), formatLabel(row[x.Column]), v)
	}
	spec.Series = g.multiSeries()
	return nil
}

func buildXY(spec *ChartSpec, req SpecRequest) error {
	if err := requireRoles(req, AxisX, AxisY); err != nil {
		return err
	}
	x, y := req.Mapping[AxisX], req.Mapping[AxisY]
	spec.Title = fmt.Sprintf("%s by %s", y.Name, x.Name)
	spec.XAxis, spec.YAxis = x.Name, y.Name

	color, hasColor := req.Mapping[AxisColor]
	if hasColor && color.Schema == schema.Numerical {
		hasColor = false
	}

	g := newGrouper()
	for _, row := range req.Rows {
		v, ok := toFloat(row[y.Column])
		if !ok {
			continue
		}
		key := ""
		if hasColor {
			key = formatLabel(row[color.Column])
		}
		g.add(key, formatLabel(row[x.Column]), v)
	}

	if hasColor {
		spec.Series = g.multiSeries()
	} else {
		spec.Series = g.singleSeries(y.Name)
	}

	if y2, ok := req.Mapping[AxisY2]; ok {
		g2 := newGrouper()
		for _, row := range req.Rows {
			if v, ok := toFloat(row[y2.Column]); ok {
				g2.add("", formatLabel(row[x.Column]), v)
			}
		}
		spec.Series = append(spec.Series, g2.singleSeries(y2.Name)...)
	}
	return nil
}

// grouper sums values per (series key, label), keeping first-seen order.
type grouper struct {
	keys   []string
	labels map[string][]string
	sums   map[string]map[string]float64
}

func newGrouper() *grouper {
	return &grouper{
		labels: make(map[string][]string),
		sums:   make(map[string]map[string]float64),
	}
}

func (g *grouper) add(key, label string, v float64) {
	byLabel, ok := g.sums[key]
	if !ok {
		byLabel = make(map[string]float64)
		g.sums[key] = byLabel
		g.keys = append(g.keys, key)
	}
	if _, seen := byLabel[label]; !seen {
		g.labels[key] = append(g.labels[key], label)
	}
	byLabel[label] += v
}

func (g *grouper) points(key string) []ChartPoint {
	points := make([]ChartPoint, 0, len(g.labels[key]))
	for _, label := range g.labels[key] {
		points = append(points, ChartPoint{Label: label, Value: RoundTo2(g.sums[key][label])})
	}
	return points
}

func (g *grouper) singleSeries(name string) []ChartSeries {
	if name == "" {
		name = "Value"
	}
	return []ChartSeries{{Name: name, Data: g.points("")}}
}

func (g *grouper) multiSeries() []ChartSeries {
	series := make([]ChartSeries, 0, len(g.keys))
	for i, key := range g.keys {
		series = append(series, ChartSeries{
			Name:  key,
			Data:  g.points(key),
			Color: defaultColors[i%len(defaultColors)],
		})
	}
	return series
}

func assignColors(count int) []string {
	colors := make([]string, count)
	for i := 0; i < count; i++ {
		colors[i] = defaultColors[i%len(defaultColors)]
	}
	return colors
}

// ============================================================================
// VALUE HELPERS
// ============================================================================

// RoundTo2 rounds to 2 decimal places.
func RoundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(n), ",", ""), 64)
		return f, err == nil
	}
	return 0, false
}

func formatLabel(v any) string {
	switch t := v.(type) {
	case nil:
		return "(empty)"
	case string:
		if t == "" {
			return "(empty)"
		}
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case time.Time:
		return t.Format(time.RFC3339)
	}
	return fmt.Sprint(v)
}

func styleBool(styles map[string]any, key string, def bool) bool {
	if b, ok := styles[key].(bool); ok {
		return b
	}
	return def
}
