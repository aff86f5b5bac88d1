// Package autovis picks a chart for any tabular result.
// Automatic visualization for any dataset.
//
// Usage:
//
//	import (
//	    "github.com/spektr-org/autovis/builder"
//	    "github.com/spektr-org/autovis/engine"
//	)
//
//	b := builder.New(engine.NewDefaultRegistry(),
//	    builder.WithStateStore(store, "dashboard-1"),
//	)
//	_ = b.Init(ctx)
//	b.HandleData(rows, fields)
//	spec, err := b.Spec()
//
// The engine package holds the rule registry: rules match the shape of a
// dataset (numerical, categorical and date columns) and rank the chart types
// that fit it. The builder package keeps one chart's state (chart type,
// style options, axes mapping, data) consistent as any of them changes.
//
// Chart state can be persisted through the statestore package; everything
// else runs locally.
package autovis
