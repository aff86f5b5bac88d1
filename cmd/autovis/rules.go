package main

import (
	"github.com/spf13/cobra"

	"github.com/spektr-org/autovis/engine"
)

func newRulesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List registered visualization rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()
			return a.write(cmd, ruleList(a.registry.Rules()))
		},
	}
}

// ruleList prints as a table in text mode.
type ruleList []engine.VisualizationRule
