package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/spektr-org/autovis/builder"
	"github.com/spektr-org/autovis/engine"
	"github.com/spektr-org/autovis/statestore"
)

func newSwitchCmd(opts *rootOptions) *cobra.Command {
	var file, chart, stateKey string
	var forget bool

	cmd := &cobra.Command{
		Use:   "switch",
		Short: "Switch the chart type of a persisted view",
		Long: `switch restores the view stored under --state-key, loads the CSV file,
changes the chart type and stores the reconciled state again. Axes bindings
of the previous chart type are reused whenever the new type has a template
for the same column shape.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := loadApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			store, err := statestore.New(ctx, a.cfg.Store, slog.Default())
			if err != nil {
				return err
			}
			if closer, ok := store.(interface{ Close() error }); ok {
				defer closer.Close()
			}

			if forget {
				if err := store.Delete(ctx, stateKey); err != nil {
					return fmt.Errorf("failed to delete state: %w", err)
				}
			}

			data, err := a.loadDataset(ctx, file)
			if err != nil {
				return err
			}

			b := builder.New(a.registry,
				builder.WithStateStore(store, stateKey),
				builder.WithLogger(slog.Default()))
			if err := b.Init(ctx); err != nil {
				return err
			}
			before := b.ChartType()

			b.SetData(data)
			if chart != "" {
				b.SetCurrentChartType(engine.ChartType(chart))
			}
			slog.Info("🔀 Chart type switched", "key", stateKey, "from", before, "to", b.ChartType())

			return a.write(cmd, newReport(file, b))
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "CSV file path or URL (required)")
	cmd.Flags().StringVarP(&chart, "chart", "c", "", "Chart type to switch to")
	cmd.Flags().StringVar(&stateKey, "state-key", "default", "Key of the persisted view state")
	cmd.Flags().BoolVar(&forget, "forget", false, "Delete the persisted state before switching")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
