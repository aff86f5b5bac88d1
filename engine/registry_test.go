package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/autovis/schema"
)

func numCol(id int, name string, valid, unique int) schema.Column {
	return schema.Column{ID: id, Name: name, Column: schema.ColumnKey(id), Schema: schema.Numerical, ValidValuesCount: valid, UniqueValuesCount: unique}
}

func catCol(id int, name string, unique int) schema.Column {
	return schema.Column{ID: id, Name: name, Column: schema.ColumnKey(id), Schema: schema.Categorical, ValidValuesCount: 10, UniqueValuesCount: unique}
}

func dateCol(id int, name string) schema.Column {
	return schema.Column{ID: id, Name: name, Column: schema.ColumnKey(id), Schema: schema.Date, ValidValuesCount: 10, UniqueValuesCount: 10}
}

func cols(c ...schema.Column) []schema.Column { return c }

func TestFindBestMatch(t *testing.T) {
	reg := NewDefaultRegistry()

	tests := []struct {
		name        string
		numerical   []schema.Column
		categorical []schema.Column
		date        []schema.Column
		preferred   ChartType
		wantRule    string
		wantType    ChartType
		wantPrio    int
	}{
		{
			name:      "single metric value",
			numerical: cols(numCol(0, "count", 1, 1)),
			wantRule:  "one-metric", wantType: ChartMetric, wantPrio: 100,
		},
		{
			name:      "time series",
			numerical: cols(numCol(0, "count", 10, 10)),
			date:      cols(dateCol(1, "timestamp")),
			wantRule:  "one-metric-one-date", wantType: ChartLine, wantPrio: 100,
		},
		{
			name:      "time series prefers area",
			numerical: cols(numCol(0, "count", 10, 10)),
			date:      cols(dateCol(1, "timestamp")),
			preferred: ChartArea,
			wantRule:  "one-metric-one-date", wantType: ChartArea, wantPrio: 80,
		},
		{
			name:        "two categories high cardinality",
			numerical:   cols(numCol(0, "count", 10, 3)),
			categorical: cols(catCol(1, "host", 12), catCol(2, "status", 3)),
			wantRule:    "one-metric-two-category-high-cardinality", wantType: ChartHeatmap, wantPrio: 100,
		},
		{
			name:        "two categories high cardinality prefers bar",
			numerical:   cols(numCol(0, "count", 10, 3)),
			categorical: cols(catCol(1, "host", 12), catCol(2, "status", 3)),
			preferred:   ChartBar,
			wantRule:    "one-metric-two-category-high-cardinality", wantType: ChartBar, wantPrio: 80,
		},
		{
			name:        "two categories low cardinality",
			numerical:   cols(numCol(0, "count", 10, 3)),
			categorical: cols(catCol(1, "host", 4), catCol(2, "status", 3)),
			wantRule:    "one-metric-two-category-low-cardinality", wantType: ChartBar, wantPrio: 100,
		},
		{
			name:        "preference not offered falls back to top",
			numerical:   cols(numCol(0, "count", 10, 3)),
			categorical: cols(catCol(1, "host", 12), catCol(2, "status", 3)),
			preferred:   ChartPie,
			wantRule:    "one-metric-two-category-high-cardinality", wantType: ChartHeatmap, wantPrio: 100,
		},
		{
			name:      "two metrics",
			numerical: cols(numCol(0, "bytes", 10, 10), numCol(1, "latency", 10, 10)),
			wantRule:  "two-metric", wantType: ChartScatter, wantPrio: 100,
		},
		{
			name:      "three metrics",
			numerical: cols(numCol(0, "a", 10, 10), numCol(1, "b", 10, 10), numCol(2, "c", 10, 10)),
			wantRule:  "three-metric", wantType: ChartHeatmap, wantPrio: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := reg.FindBestMatch(tt.numerical, tt.categorical, tt.date, tt.preferred)
			require.True(t, ok)
			assert.Equal(t, tt.wantRule, m.Rule.ID)
			assert.Equal(t, tt.wantType, m.ChartType.Type)
			assert.Equal(t, tt.wantPrio, m.ChartType.Priority)
		})
	}
}

func TestFindBestMatchNoMatch(t *testing.T) {
	reg := NewDefaultRegistry()

	_, ok := reg.FindBestMatch(cols(numCol(0, "count", 5, 5)), nil, nil, "")
	assert.False(t, ok, "metric with several values has no rule")

	_, ok = reg.FindBestMatch(
		cols(numCol(0, "a", 1, 1), numCol(1, "b", 1, 1), numCol(2, "c", 1, 1), numCol(3, "d", 1, 1)), nil, nil, "")
	assert.False(t, ok)

	_, ok = reg.FindBestMatch(nil, nil, nil, "")
	assert.False(t, ok)
}

func TestFindBestMatchDeterministic(t *testing.T) {
	reg := NewDefaultRegistry()
	num := cols(numCol(0, "count", 10, 3))
	cat := cols(catCol(1, "host", 12), catCol(2, "status", 3))

	first, ok := reg.FindBestMatch(num, cat, nil, "")
	require.True(t, ok)
	for i := 0; i < 10; i++ {
		again, ok := reg.FindBestMatch(num, cat, nil, "")
		require.True(t, ok)
		assert.Same(t, first.Rule, again.Rule)
		assert.Equal(t, first.ChartType, again.ChartType)
	}
}

func TestFindBestMatchTieGoesToFirstRegistered(t *testing.T) {
	always := func(_, _, _ []schema.Column) MatchResult { return ExactMatch }
	reg := NewRegistry(WithRules(
		VisualizationRule{ID: "first", Matches: always, ChartTypes: []ChartTypeMeta{{Type: ChartBar, Priority: 50}}},
		VisualizationRule{ID: "second", Matches: always, ChartTypes: []ChartTypeMeta{{Type: ChartLine, Priority: 50}}},
		VisualizationRule{ID: "lower", Matches: always, ChartTypes: []ChartTypeMeta{{Type: ChartPie, Priority: 10}}},
	))

	m, ok := reg.FindBestMatch(nil, nil, nil, "")
	require.True(t, ok)
	assert.Equal(t, "first", m.Rule.ID)
	assert.Equal(t, ChartBar, m.ChartType.Type)
}

func TestFindBestMatchCompatibleCounts(t *testing.T) {
	compatible := func(_, _, _ []schema.Column) MatchResult { return CompatibleMatch }
	never := func(_, _, _ []schema.Column) MatchResult { return NotMatch }
	reg := NewRegistry(WithRules(
		VisualizationRule{ID: "never", Matches: never, ChartTypes: []ChartTypeMeta{{Type: ChartBar, Priority: 100}}},
		VisualizationRule{ID: "loose", Matches: compatible, ChartTypes: []ChartTypeMeta{{Type: ChartLine, Priority: 10}}},
	))

	m, ok := reg.FindBestMatch(nil, nil, nil, "")
	require.True(t, ok)
	assert.Equal(t, "loose", m.Rule.ID)
}

func TestRegisterRuleUpsert(t *testing.T) {
	reg := NewDefaultRegistry()
	before := reg.Rules()

	replacement := before[1]
	replacement.Name = "replaced"
	replacement.ChartTypes = []ChartTypeMeta{{Type: ChartArea, Priority: 150}}
	require.NoError(t, reg.RegisterRule(replacement))

	after := reg.Rules()
	require.Len(t, after, len(before))
	assert.Equal(t, "replaced", after[1].Name)
	assert.Equal(t, before[0].ID, after[0].ID)
	assert.Equal(t, "Area", after[1].ChartTypes[0].Name, "missing names are filled from chart configs")

	added := VisualizationRule{
		ID:         "custom",
		Matches:    exactShape(Signature{Categorical: 1}),
		ChartTypes: []ChartTypeMeta{{Type: ChartPie, Priority: 10}},
	}
	require.NoError(t, reg.RegisterRules(added))
	assert.Len(t, reg.Rules(), len(before)+1)

	got, ok := reg.Rule("custom")
	require.True(t, ok)
	assert.Equal(t, "custom", got.ID)
}

func TestRegisterRuleInvalid(t *testing.T) {
	reg := NewRegistry()

	err := reg.RegisterRule(VisualizationRule{Matches: singleValue, ChartTypes: []ChartTypeMeta{{Type: ChartBar}}})
	assert.True(t, errors.Is(err, ErrInvalidRule))

	err = reg.RegisterRule(VisualizationRule{ID: "no-predicate", ChartTypes: []ChartTypeMeta{{Type: ChartBar}}})
	assert.True(t, errors.Is(err, ErrInvalidRule))

	err = reg.RegisterRules(
		VisualizationRule{ID: "ok", Matches: singleValue, ChartTypes: []ChartTypeMeta{{Type: ChartMetric}}},
		VisualizationRule{ID: "bad"},
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rule 1")
	assert.Len(t, reg.Rules(), 1)
}

func TestDefaultAxesMapping(t *testing.T) {
	reg := NewDefaultRegistry()

	count := numCol(0, "count", 10, 3)
	host := catCol(1, "host", 12)
	status := catCol(2, "status", 3)
	ts := dateCol(3, "timestamp")

	tests := []struct {
		name      string
		ruleID    string
		chartType ChartType
		num, cat  []schema.Column
		date      []schema.Column
		want      AxesMapping
	}{
		{
			name: "line over time", ruleID: "one-metric-one-date", chartType: ChartLine,
			num: cols(count), date: cols(ts),
			want: AxesMapping{AxisX: ts, AxisY: count},
		},
		{
			name: "bar by category", ruleID: "one-metric-one-category", chartType: ChartBar,
			num: cols(count), cat: cols(host),
			want: AxesMapping{AxisX: host, AxisY: count},
		},
		{
			name: "pie by category", ruleID: "one-metric-one-category", chartType: ChartPie,
			num: cols(count), cat: cols(host),
			want: AxesMapping{AxisTheta: count, AxisColor: host},
		},
		{
			name: "heatmap of two categories", ruleID: "one-metric-two-category-high-cardinality", chartType: ChartHeatmap,
			num: cols(count), cat: cols(host, status),
			want: AxesMapping{AxisX: host, AxisY: status, AxisColor: count},
		},
		{
			name: "metric", ruleID: "one-metric", chartType: ChartMetric,
			num:  cols(numCol(0, "total", 1, 1)),
			want: AxesMapping{AxisValue: numCol(0, "total", 1, 1)},
		},
		{
			name: "no template for shape", ruleID: "two-metric", chartType: ChartPie,
			num:  cols(count, numCol(4, "bytes", 10, 10)),
			want: AxesMapping{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, ok := reg.Rule(tt.ruleID)
			require.True(t, ok)
			assert.Equal(t, tt.want, reg.DefaultAxesMapping(rule, tt.chartType, tt.num, tt.cat, tt.date))
		})
	}
}

func TestDefaultAxesMappingOmitsOutOfRange(t *testing.T) {
	reg := NewDefaultRegistry()
	rule, ok := reg.Rule("one-metric-one-category")
	require.True(t, ok)

	count := numCol(0, "count", 10, 3)
	got := reg.DefaultAxesMapping(rule, ChartBar, cols(count), nil, nil)
	assert.Equal(t, AxesMapping{AxisY: count}, got)

	assert.Empty(t, reg.DefaultAxesMapping(nil, ChartBar, cols(count), nil, nil))
	assert.Empty(t, reg.DefaultAxesMapping(rule, "sankey", cols(count), nil, nil))
}

func TestVisualizationConfig(t *testing.T) {
	reg := NewDefaultRegistry()

	cfg, ok := reg.VisualizationConfig(ChartLine)
	require.True(t, ok)
	assert.Equal(t, "Line", cfg.Name)
	assert.Equal(t, true, cfg.StyleDefaults["addLegend"])

	cfg.StyleDefaults["addLegend"] = false
	cfg.StyleDefaults["tooltipOptions"].(map[string]any)["mode"] = "hidden"

	again, _ := reg.VisualizationConfig(ChartLine)
	assert.Equal(t, true, again.StyleDefaults["addLegend"])
	assert.Equal(t, "all", again.StyleDefaults["tooltipOptions"].(map[string]any)["mode"])

	_, ok = reg.VisualizationConfig("sankey")
	assert.False(t, ok)

	assert.Equal(t,
		[]ChartType{ChartLine, ChartArea, ChartBar, ChartPie, ChartMetric, ChartHeatmap, ChartScatter, ChartTable},
		reg.ChartTypes())
}

func TestAvailableChartTypes(t *testing.T) {
	reg := NewDefaultRegistry()

	got := reg.AvailableChartTypes(cols(numCol(0, "count", 10, 3)), cols(catCol(1, "host", 5)), nil)
	assert.Equal(t, []ChartTypeMeta{
		{Type: ChartBar, Name: "Bar", Priority: 100},
		{Type: ChartPie, Name: "Pie", Priority: 80},
		{Type: ChartLine, Name: "Line", Priority: 60},
		{Type: ChartArea, Name: "Area", Priority: 40},
		{Type: ChartTable, Name: "Table"},
	}, got)

	none := reg.AvailableChartTypes(cols(numCol(0, "count", 5, 5)), nil, nil)
	assert.Equal(t, []ChartTypeMeta{{Type: ChartTable, Name: "Table"}}, none)
}

func TestAvailableChartTypesKeepsHighestPriority(t *testing.T) {
	always := func(_, _, _ []schema.Column) MatchResult { return ExactMatch }
	reg := NewRegistry(WithRules(
		VisualizationRule{ID: "a", Matches: always, ChartTypes: []ChartTypeMeta{{Type: ChartBar, Priority: 20}, {Type: ChartLine, Priority: 30}}},
		VisualizationRule{ID: "b", Matches: always, ChartTypes: []ChartTypeMeta{{Type: ChartBar, Priority: 90}}},
	))

	got := reg.AvailableChartTypes(nil, nil, nil)
	require.Len(t, got, 3)
	assert.Equal(t, ChartBar, got[0].Type)
	assert.Equal(t, 90, got[0].Priority)
	assert.Equal(t, ChartLine, got[1].Type)
	assert.Equal(t, ChartTable, got[2].Type)
}

func TestFindRuleByMapping(t *testing.T) {
	reg := NewDefaultRegistry()
	all := cols(numCol(0, "count", 10, 3), catCol(1, "host", 12), catCol(2, "status", 3), dateCol(3, "timestamp"))

	rule, ok := reg.FindRuleByMapping(NameMapping{AxisX: "timestamp", AxisY: "count"}, all)
	require.True(t, ok)
	assert.Equal(t, "one-metric-one-date", rule.ID)

	rule, ok = reg.FindRuleByMapping(NameMapping{AxisTheta: "count", AxisColor: "host"}, all)
	require.True(t, ok)
	assert.Equal(t, "one-metric-one-category", rule.ID)

	rule, ok = reg.FindRuleByMapping(NameMapping{AxisX: "host", AxisY: "status", AxisColor: "count"}, all)
	require.True(t, ok)
	assert.Equal(t, "one-metric-two-category-high-cardinality", rule.ID, "first registered rule with the signature")

	_, ok = reg.FindRuleByMapping(NameMapping{AxisX: "host"}, all)
	assert.False(t, ok)
}
