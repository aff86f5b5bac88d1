package engine

import (
	"github.com/spektr-org/autovis/schema"
)

// ============================================================================
// CHART TYPE CONFIGS — style defaults + axis mapping templates
// ============================================================================
// Each template covers one column shape. Its signature must equal the
// signature of a rule listing the chart type, otherwise DefaultAxesMapping
// returns an empty mapping for that pair.
// ============================================================================

// Chart-type display metadata, shared by rules and configs.
var chartNames = map[ChartType]string{
	ChartLine:    "Line",
	ChartArea:    "Area",
	ChartBar:     "Bar",
	ChartPie:     "Pie",
	ChartMetric:  "Metric",
	ChartHeatmap: "Heatmap",
	ChartScatter: "Scatter",
	ChartTable:   "Table",
}

func numRef(i int) ColumnRef  { return ColumnRef{Schema: schema.Numerical, Index: i} }
func catRef(i int) ColumnRef  { return ColumnRef{Schema: schema.Categorical, Index: i} }
func dateRef(i int) ColumnRef { return ColumnRef{Schema: schema.Date, Index: i} }

func legendDefaults() map[string]any {
	return map[string]any{
		"addLegend":      true,
		"legendPosition": "right",
		"tooltipOptions": map[string]any{"mode": "all"},
	}
}

func withDefaults(base map[string]any, extra map[string]any) map[string]any {
	for k, v := range extra {
		base[k] = v
	}
	return base
}

// DefaultChartConfigs returns a fresh copy of the built-in chart type configs.
func DefaultChartConfigs() []ChartTypeConfig {
	return []ChartTypeConfig{
		{
			Type: ChartLine, Name: chartNames[ChartLine],
			StyleDefaults: withDefaults(legendDefaults(), map[string]any{
				"addTimeMarker": false,
				"lineStyle":     "both",
				"lineMode":      "smooth",
				"lineWidth":     2,
				"showGrid":      true,
			}),
			AvailableMappings: []MappingTemplate{
				{AxisX: dateRef(0), AxisY: numRef(0)},
				{AxisX: dateRef(0), AxisY: numRef(0), AxisY2: numRef(1)},
				{AxisX: dateRef(0), AxisY: numRef(0), AxisColor: catRef(0)},
				{AxisX: dateRef(0), AxisY: numRef(0), AxisColor: catRef(0), AxisFacet: catRef(1)},
				{AxisX: catRef(0), AxisY: numRef(0)},
			},
		},
		{
			Type: ChartArea, Name: chartNames[ChartArea],
			StyleDefaults: withDefaults(legendDefaults(), map[string]any{
				"addTimeMarker": false,
				"areaOpacity":   0.6,
				"showGrid":      true,
			}),
			AvailableMappings: []MappingTemplate{
				{AxisX: dateRef(0), AxisY: numRef(0)},
				{AxisX: dateRef(0), AxisY: numRef(0), AxisColor: catRef(0)},
				{AxisX: dateRef(0), AxisY: numRef(0), AxisColor: catRef(0), AxisFacet: catRef(1)},
				{AxisX: catRef(0), AxisY: numRef(0), AxisColor: catRef(1)},
				{AxisX: catRef(0), AxisY: numRef(0)},
			},
		},
		{
			Type: ChartBar, Name: chartNames[ChartBar],
			StyleDefaults: withDefaults(legendDefaults(), map[string]any{
				"barSizeMode":   "auto",
				"barWidth":      0.7,
				"barPadding":    0.1,
				"showBarBorder": false,
				"showGrid":      true,
			}),
			AvailableMappings: []MappingTemplate{
				{AxisX: dateRef(0), AxisY: numRef(0)},
				{AxisX: dateRef(0), AxisY: numRef(0), AxisColor: catRef(0)},
				{AxisX: dateRef(0), AxisY: numRef(0), AxisColor: catRef(0), AxisFacet: catRef(1)},
				{AxisX: catRef(0), AxisY: numRef(0), AxisColor: catRef(1)},
				{AxisX: catRef(0), AxisY: numRef(0)},
			},
		},
		{
			Type: ChartPie, Name: chartNames[ChartPie],
			StyleDefaults: withDefaults(legendDefaults(), map[string]any{
				"donut":      true,
				"showValues": false,
				"showLabels": false,
				"truncate":   100,
			}),
			AvailableMappings: []MappingTemplate{
				{AxisTheta: numRef(0), AxisColor: catRef(0)},
			},
		},
		{
			Type: ChartMetric, Name: chartNames[ChartMetric],
			StyleDefaults: map[string]any{
				"showTitle":   true,
				"fontSize":    60,
				"useColor":    false,
				"colorSchema": "blues",
			},
			AvailableMappings: []MappingTemplate{
				{AxisValue: numRef(0)},
			},
		},
		{
			Type: ChartHeatmap, Name: chartNames[ChartHeatmap],
			StyleDefaults: withDefaults(legendDefaults(), map[string]any{
				"colorSchema":    "blues",
				"reverseSchema":  false,
				"showLabels":     false,
				"percentageMode": false,
			}),
			AvailableMappings: []MappingTemplate{
				{AxisX: numRef(0), AxisY: numRef(1), AxisColor: numRef(2)},
				{AxisX: catRef(0), AxisY: catRef(1), AxisColor: numRef(0)},
			},
		},
		{
			Type: ChartScatter, Name: chartNames[ChartScatter],
			StyleDefaults: withDefaults(legendDefaults(), map[string]any{
				"pointShape": "circle",
				"angle":      0,
				"filled":     false,
				"showGrid":   true,
			}),
			AvailableMappings: []MappingTemplate{
				{AxisX: numRef(0), AxisY: numRef(1)},
				{AxisX: numRef(0), AxisY: numRef(1), AxisColor: catRef(0)},
				{AxisX: numRef(0), AxisY: numRef(1), AxisColor: catRef(0), AxisSize: numRef(2)},
			},
		},
		{
			Type: ChartTable, Name: chartNames[ChartTable],
			StyleDefaults: map[string]any{
				"pageSize":        10,
				"showFooter":      false,
				"globalAlignment": "auto",
			},
		},
	}
}
