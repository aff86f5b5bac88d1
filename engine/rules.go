package engine

import (
	"github.com/spektr-org/autovis/schema"
)

// ============================================================================
// RULE REPOSITORY — built-in visualization rules
// ============================================================================
// Rules partition the column-shape space by exact counts of metrics (numerical),
// categories and dates. The 1 metric + 2 categories shape is split into a
// high- and a low-cardinality rule. Each rule ranks several chart types; the
// highest priority is the default visualization for that shape.
// ============================================================================

// HighCardinalityThreshold is the distinct-value count from which a column
// counts as high cardinality.
const HighCardinalityThreshold = 7

// exactShape matches when the partition sizes equal sig.
func exactShape(sig Signature) MatchFunc {
	return func(numerical, categorical, date []schema.Column) MatchResult {
		if len(numerical) == sig.Numerical && len(categorical) == sig.Categorical && len(date) == sig.Date {
			return ExactMatch
		}
		return NotMatch
	}
}

// atLeastShape matches partitions that are at least as large as sig.
func atLeastShape(sig Signature) MatchFunc {
	return func(numerical, categorical, date []schema.Column) MatchResult {
		if len(numerical) == sig.Numerical && len(categorical) == sig.Categorical && len(date) == sig.Date {
			return ExactMatch
		}
		if len(numerical) >= sig.Numerical && len(categorical) >= sig.Categorical && len(date) >= sig.Date {
			return CompatibleMatch
		}
		return NotMatch
	}
}

// both requires every predicate to match and keeps the weakest result.
func both(preds ...MatchFunc) MatchFunc {
	return func(numerical, categorical, date []schema.Column) MatchResult {
		result := ExactMatch
		for _, p := range preds {
			r := p(numerical, categorical, date)
			if !r.Matched() {
				return NotMatch
			}
			if r < result {
				result = r
			}
		}
		return result
	}
}

// highCardinality matches when any column has at least threshold distinct values.
func highCardinality(threshold int) MatchFunc {
	return func(numerical, categorical, date []schema.Column) MatchResult {
		for _, part := range [][]schema.Column{numerical, categorical, date} {
			for _, c := range part {
				if c.UniqueValuesCount >= threshold {
					return ExactMatch
				}
			}
		}
		return NotMatch
	}
}

// lowCardinality matches when every column has fewer than threshold distinct values.
func lowCardinality(threshold int) MatchFunc {
	return func(numerical, categorical, date []schema.Column) MatchResult {
		if highCardinality(threshold)(numerical, categorical, date).Matched() {
			return NotMatch
		}
		return ExactMatch
	}
}

// singleValue matches when the first metric holds exactly one value.
func singleValue(numerical, categorical, date []schema.Column) MatchResult {
	if len(numerical) > 0 && numerical[0].ValidValuesCount == 1 {
		return ExactMatch
	}
	return NotMatch
}

func candidate(t ChartType, priority int) ChartTypeMeta {
	return ChartTypeMeta{Type: t, Name: chartNames[t], Priority: priority}
}

// DefaultRules returns the built-in rules in registration order.
func DefaultRules() []VisualizationRule {
	oneMetricOneDate := Signature{Numerical: 1, Date: 1}
	twoMetricOneDate := Signature{Numerical: 2, Date: 1}
	oneMetricOneCateOneDate := Signature{Numerical: 1, Categorical: 1, Date: 1}
	oneMetricTwoCateOneDate := Signature{Numerical: 1, Categorical: 2, Date: 1}
	threeMetric := Signature{Numerical: 3}
	oneMetricTwoCate := Signature{Numerical: 1, Categorical: 2}
	oneMetricOneCate := Signature{Numerical: 1, Categorical: 1}
	twoMetric := Signature{Numerical: 2}
	twoMetricOneCate := Signature{Numerical: 2, Categorical: 1}
	threeMetricOneCate := Signature{Numerical: 3, Categorical: 1}
	oneMetric := Signature{Numerical: 1}

	return []VisualizationRule{
		{
			ID:          "one-metric-one-date",
			Name:        "1 Metric & 1 Date",
			Description: "Time series visualization for single metric",
			Signature:   oneMetricOneDate,
			Matches:     exactShape(oneMetricOneDate),
			ChartTypes: []ChartTypeMeta{
				candidate(ChartLine, 100),
				candidate(ChartArea, 80),
				candidate(ChartBar, 60),
			},
		},
		{
			ID:          "two-metric-one-date",
			Name:        "2 Metric & 1 Date",
			Description: "Time series visualization for double metrics",
			Signature:   twoMetricOneDate,
			Matches:     exactShape(twoMetricOneDate),
			ChartTypes:  []ChartTypeMeta{candidate(ChartLine, 100)},
		},
		{
			ID:          "one-metric-one-category-one-date",
			Name:        "1 Metric & 1 Category & 1 Date",
			Description: "Time series visualization with one metric and one category",
			Signature:   oneMetricOneCateOneDate,
			Matches:     exactShape(oneMetricOneCateOneDate),
			ChartTypes: []ChartTypeMeta{
				candidate(ChartLine, 100),
				candidate(ChartArea, 80),
				candidate(ChartBar, 60),
			},
		},
		{
			ID:          "one-metric-two-category-one-date",
			Name:        "1 Metric & 2 Category & 1 Date",
			Description: "Multiple time series visualizations",
			Signature:   oneMetricTwoCateOneDate,
			Matches:     exactShape(oneMetricTwoCateOneDate),
			ChartTypes: []ChartTypeMeta{
				candidate(ChartLine, 100),
				candidate(ChartArea, 80),
				candidate(ChartBar, 60),
			},
		},
		{
			ID:          "three-metric",
			Name:        "3 Metric",
			Description: "Heatmap with bin for three metric",
			Signature:   threeMetric,
			Matches:     exactShape(threeMetric),
			ChartTypes:  []ChartTypeMeta{candidate(ChartHeatmap, 100)},
		},
		{
			ID:          "one-metric-two-category-high-cardinality",
			Name:        "1 Metric & 2 Category (high cardinality)",
			Description: "Heatmap for one metric and two category with high cardinality",
			Signature:   oneMetricTwoCate,
			Matches:     both(exactShape(oneMetricTwoCate), highCardinality(HighCardinalityThreshold)),
			ChartTypes: []ChartTypeMeta{
				candidate(ChartHeatmap, 100),
				candidate(ChartBar, 80),
				candidate(ChartArea, 60),
			},
		},
		{
			ID:          "one-metric-two-category-low-cardinality",
			Name:        "1 Metric & 2 Category (low cardinality)",
			Description: "Stacked bars for one metric and two category with low cardinality",
			Signature:   oneMetricTwoCate,
			Matches:     both(exactShape(oneMetricTwoCate), lowCardinality(HighCardinalityThreshold)),
			ChartTypes: []ChartTypeMeta{
				candidate(ChartBar, 100),
				candidate(ChartHeatmap, 80),
				candidate(ChartArea, 60),
			},
		},
		{
			ID:          "one-metric-one-category",
			Name:        "1 Metric & 1 Category",
			Description: "Multiple visualizations for one metric and one category",
			Signature:   oneMetricOneCate,
			Matches:     exactShape(oneMetricOneCate),
			ChartTypes: []ChartTypeMeta{
				candidate(ChartBar, 100),
				candidate(ChartPie, 80),
				candidate(ChartLine, 60),
				candidate(ChartArea, 40),
			},
		},
		{
			ID:          "two-metric",
			Name:        "2 Metric",
			Description: "Scatter for two metric",
			Signature:   twoMetric,
			Matches:     exactShape(twoMetric),
			ChartTypes:  []ChartTypeMeta{candidate(ChartScatter, 100)},
		},
		{
			ID:          "two-metric-one-category",
			Name:        "2 Metric & 1 Category",
			Description: "Scatter for two metric and one category",
			Signature:   twoMetricOneCate,
			Matches:     exactShape(twoMetricOneCate),
			ChartTypes:  []ChartTypeMeta{candidate(ChartScatter, 100)},
		},
		{
			ID:          "three-metric-one-category",
			Name:        "3 Metric & 1 Category",
			Description: "Scatter for three metric and one category",
			Signature:   threeMetricOneCate,
			Matches:     exactShape(threeMetricOneCate),
			ChartTypes:  []ChartTypeMeta{candidate(ChartScatter, 100)},
		},
		{
			ID:          "one-metric",
			Name:        "1 Metric",
			Description: "Single value for one metric",
			Signature:   oneMetric,
			Matches:     both(exactShape(oneMetric), singleValue),
			ChartTypes:  []ChartTypeMeta{candidate(ChartMetric, 100)},
		},
	}
}
