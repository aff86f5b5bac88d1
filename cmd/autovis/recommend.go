package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/spektr-org/autovis/builder"
	"github.com/spektr-org/autovis/engine"
	"github.com/spektr-org/autovis/helpers"
	"github.com/spektr-org/autovis/schema"
)

// report is what recommend and switch print.
type report struct {
	File      string                 `json:"file" yaml:"file"`
	Rows      int                    `json:"rows" yaml:"rows"`
	Shape     engine.Signature       `json:"shape" yaml:"shape"`
	Rule      string                 `json:"rule,omitempty" yaml:"rule,omitempty"`
	Available []engine.ChartTypeMeta `json:"available" yaml:"available"`
	State     builder.Snapshot       `json:"state" yaml:"state"`
	Spec      *engine.ChartSpec      `json:"spec,omitempty" yaml:"spec,omitempty"`
}

func newRecommendCmd(opts *rootOptions) *cobra.Command {
	var file, chart string

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Recommend a chart for a CSV result set",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := loadApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			data, err := a.loadDataset(ctx, file)
			if err != nil {
				return err
			}

			b := builder.New(a.registry, builder.WithLogger(slog.Default()))
			b.SetData(data)
			if chart != "" {
				b.SetCurrentChartType(engine.ChartType(chart))
			}
			return a.write(cmd, newReport(file, b))
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "CSV file path or URL (required)")
	cmd.Flags().StringVarP(&chart, "chart", "c", "", "Preferred chart type: line, area, bar, pie, metric, heatmap, scatter, table")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// loadDataset downloads and parses a CSV file.
func (a *app) loadDataset(ctx context.Context, file string) (*schema.Dataset, error) {
	raw, err := a.download(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("failed to read data file: %w", err)
	}
	data, err := helpers.ParseCSVDataset(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse data file: %w", err)
	}
	slog.Info("📊 Loaded dataset",
		"file", file,
		"rows", data.Len(),
		"numerical", len(data.NumericalColumns),
		"categorical", len(data.CategoricalColumns),
		"date", len(data.DateColumns))
	return data, nil
}

func newReport(file string, b *builder.Builder) *report {
	snap := b.Snapshot()
	rep := &report{
		File:      file,
		Rows:      snap.Data.Len(),
		Available: b.AvailableChartTypes(),
		State:     snap,
	}
	if snap.Data != nil {
		rep.Shape = engine.Signature{
			Numerical:   len(snap.Data.NumericalColumns),
			Categorical: len(snap.Data.CategoricalColumns),
			Date:        len(snap.Data.DateColumns),
		}
		if rule, ok := b.Registry().FindRuleByMapping(snap.AxesMapping, snap.Data.AllColumns()); ok {
			rep.Rule = rule.ID
		}
	}

	if snap.ChartType == "" {
		return rep
	}
	spec, err := b.Spec()
	if err != nil {
		slog.Warn("chart spec not compiled", "chart_type", snap.ChartType, "error", err)
		return rep
	}
	rep.Spec = spec
	return rep
}
