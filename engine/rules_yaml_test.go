package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/autovis/schema"
)

const pluginRules = `
rules:
  - id: category-share
    name: Category share
    description: Prefer pies for a single breakdown
    signature: {numerical: 1, categorical: 1, date: 0}
    chartTypes:
      - {type: pie, priority: 120}
      - {type: bar, priority: 90}
  - id: wide-metrics
    signature: {numerical: 4}
    match: atLeast
    chartTypes:
      - {type: table, priority: 10}
  - id: busy-categories
    signature: {numerical: 1, categorical: 1}
    cardinality: {mode: high}
    chartTypes:
      - {type: bar, priority: 130}
`

func TestLoadRules(t *testing.T) {
	rules, err := LoadRules([]byte(pluginRules))
	require.NoError(t, err)
	require.Len(t, rules, 3)

	share := rules[0]
	assert.Equal(t, "category-share", share.ID)
	assert.Equal(t, Signature{Numerical: 1, Categorical: 1}, share.Signature)
	assert.Equal(t, []ChartTypeMeta{
		{Type: ChartPie, Name: "Pie", Priority: 120},
		{Type: ChartBar, Name: "Bar", Priority: 90},
	}, share.ChartTypes)
	assert.Equal(t, ExactMatch, share.Matches(cols(numCol(0, "count", 5, 5)), cols(catCol(1, "host", 3)), nil))

	wide := rules[1]
	assert.Equal(t, "wide-metrics", wide.Name, "name defaults to id")
	five := cols(numCol(0, "a", 1, 1), numCol(1, "b", 1, 1), numCol(2, "c", 1, 1), numCol(3, "d", 1, 1), numCol(4, "e", 1, 1))
	assert.Equal(t, CompatibleMatch, wide.Matches(five, nil, nil))
	assert.Equal(t, ExactMatch, wide.Matches(five[:4], nil, nil))
	assert.Equal(t, NotMatch, wide.Matches(five[:3], nil, nil))

	busy := rules[2]
	assert.Equal(t, NotMatch, busy.Matches(cols(numCol(0, "count", 5, 5)), cols(catCol(1, "host", 3)), nil))
	assert.Equal(t, ExactMatch, busy.Matches(cols(numCol(0, "count", 5, 5)), cols(catCol(1, "host", 30)), nil))
}

func TestRegisterRulesFromYAML(t *testing.T) {
	reg := NewDefaultRegistry()
	builtins := len(reg.Rules())
	require.NoError(t, reg.RegisterRulesFromYAML([]byte(pluginRules)))
	assert.Len(t, reg.Rules(), builtins+3)

	m, ok := reg.FindBestMatch(cols(numCol(0, "count", 5, 5)), cols(catCol(1, "host", 3)), nil, "")
	require.True(t, ok)
	assert.Equal(t, "category-share", m.Rule.ID)
	assert.Equal(t, ChartPie, m.ChartType.Type)

	rule, ok := reg.Rule("category-share")
	require.True(t, ok)
	assert.Equal(t, AxesMapping{AxisTheta: numCol(0, "count", 5, 5), AxisColor: catCol(1, "host", 3)},
		reg.DefaultAxesMapping(rule, ChartPie, cols(numCol(0, "count", 5, 5)), cols(catCol(1, "host", 3)), nil))
}

func TestLoadRulesErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
		wantMsg string
	}{
		{
			name:    "missing id",
			input:   "rules:\n  - signature: {numerical: 1}\n    chartTypes: [{type: bar, priority: 1}]\n",
			wantErr: ErrInvalidRule,
			wantMsg: "rule 0",
		},
		{
			name:    "chart type without type",
			input:   "rules:\n  - id: a\n    chartTypes: [{type: bar, priority: 1}]\n  - id: b\n    chartTypes: [{priority: 1}]\n",
			wantErr: ErrInvalidRule,
			wantMsg: "rule 1",
		},
		{
			name:    "negative count",
			input:   "rules:\n  - id: a\n    signature: {numerical: -1}\n    chartTypes: [{type: bar}]\n",
			wantErr: ErrInvalidRule,
		},
		{
			name:    "unknown match mode",
			input:   "rules:\n  - id: a\n    match: fuzzy\n    chartTypes: [{type: bar}]\n",
			wantErr: ErrInvalidRule,
			wantMsg: "fuzzy",
		},
		{
			name:    "unknown cardinality mode",
			input:   "rules:\n  - id: a\n    cardinality: {mode: medium}\n    chartTypes: [{type: bar}]\n",
			wantErr: ErrInvalidRule,
			wantMsg: "medium",
		},
		{
			name:    "no chart types",
			input:   "rules:\n  - id: a\n",
			wantErr: ErrInvalidRule,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadRules([]byte(tt.input))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), err.Error())
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}

	_, err := LoadRules([]byte("rules: [unterminated"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse rule file")
}

const sankeyRules = `
rules:
  - id: flows
    signature: {numerical: 1, categorical: 2}
    chartTypes:
      - {type: sankey, priority: 150}
`

func TestRegisterRulesFromYAMLChartTypes(t *testing.T) {
	rules, err := LoadRules([]byte(sankeyRules))
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, ChartType("sankey"), rules[0].ChartTypes[0].Type)

	reg := NewDefaultRegistry()
	builtins := len(reg.Rules())
	err = reg.RegisterRulesFromYAML([]byte(sankeyRules))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownChartType), err.Error())
	assert.Contains(t, err.Error(), "rule 0")
	assert.Len(t, reg.Rules(), builtins)

	require.NoError(t, reg.RegisterChartConfig(ChartTypeConfig{
		Type: "sankey",
		Name: "Sankey",
		AvailableMappings: []MappingTemplate{{
			AxisX:     {Schema: schema.Categorical, Index: 0},
			AxisY:     {Schema: schema.Categorical, Index: 1},
			AxisValue: {Schema: schema.Numerical, Index: 0},
		}},
	}))
	require.NoError(t, reg.RegisterRulesFromYAML([]byte(sankeyRules)))

	rule, ok := reg.Rule("flows")
	require.True(t, ok)
	assert.Equal(t, []ChartTypeMeta{{Type: "sankey", Name: "Sankey", Priority: 150}}, rule.ChartTypes)

	num := cols(numCol(0, "bytes", 9, 9))
	cat := cols(catCol(1, "src", 3), catCol(2, "dst", 3))
	m, ok := reg.FindBestMatch(num, cat, nil, "")
	require.True(t, ok)
	assert.Equal(t, ChartType("sankey"), m.ChartType.Type)
	assert.Equal(t, AxesMapping{AxisX: cat[0], AxisY: cat[1], AxisValue: num[0]},
		reg.DefaultAxesMapping(m.Rule, "sankey", num, cat, nil))
}
