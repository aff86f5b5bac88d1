package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/viant/afs"

	"github.com/spektr-org/autovis/config"
	"github.com/spektr-org/autovis/engine"
	"github.com/spektr-org/autovis/logger"
)

type rootOptions struct {
	configPath string
	ruleFiles  []string
	format     string
	outFile    string
}

// app is what every subcommand runs against.
type app struct {
	cfg      *config.Config
	registry *engine.Registry
	fs       afs.Service
	opts     *rootOptions
	logs     io.Closer
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:     "autovis",
		Short:   "Pick a chart for any tabular result",
		Version: version,
		Long: `autovis inspects the column shape of a CSV result set, picks the chart type
that fits it best, binds columns to the chart's axes and compiles a
render-ready chart spec.`,
		Example: `  # Recommend a chart for a CSV file
  $ autovis recommend --file data.csv

  # Force a chart type and print YAML
  $ autovis recommend --file data.csv --chart pie --format yaml

  # Switch chart type, reusing the persisted state of a view
  $ autovis switch --file data.csv --chart line --state-key dashboard-1

  # List rules, including a plugin rule file
  $ autovis rules --rules file:///etc/autovis/rules.yaml`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.CompletionOptions.DisableDefaultCmd = true

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "Path to config file (default: ./autovis.yaml or ./configs/autovis.yaml)")
	flags.StringSliceVar(&opts.ruleFiles, "rules", nil, "Extra YAML rule files or URLs")
	flags.StringVar(&opts.format, "format", "text", "Output format: text, json, pretty, yaml, csv")
	flags.StringVar(&opts.outFile, "out", "", "Write output to file instead of stdout")

	root.AddCommand(newRecommendCmd(opts))
	root.AddCommand(newSwitchCmd(opts))
	root.AddCommand(newRulesCmd(opts))

	root.SetUsageTemplate(usageTemplate())
	root.SetHelpTemplate(usageTemplate())
	return root
}

// loadApp reads config, sets up logging and builds the rule registry.
func loadApp(ctx context.Context, opts *rootOptions) (*app, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	logs, err := logger.Setup(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}

	a := &app{
		cfg:      cfg,
		registry: engine.NewDefaultRegistry(engine.WithLogger(slog.Default())),
		fs:       afs.New(),
		opts:     opts,
		logs:     logs,
	}

	files := append(append([]string{}, cfg.Rules.Files...), opts.ruleFiles...)
	for _, file := range files {
		data, err := a.download(ctx, file)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to read rule file: %w", err)
		}
		if err := a.registry.RegisterRulesFromYAML(data); err != nil {
			a.Close()
			return nil, fmt.Errorf("rule file %s: %w", file, err)
		}
		slog.Info("📋 Loaded rule file", "location", file)
	}
	return a, nil
}

// Close releases the log output. Logging falls back to stderr afterwards.
func (a *app) Close() error {
	if a.logs == nil {
		return nil
	}
	err := a.logs.Close()
	a.logs = nil
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	return err
}

// download reads a file path or any URL afs understands (file://, mem://,
// s3://, gs://, ...).
func (a *app) download(ctx context.Context, location string) ([]byte, error) {
	URL := location
	if u, err := url.Parse(location); err != nil || u.Scheme == "" {
		abs, err := filepath.Abs(location)
		if err != nil {
			return nil, err
		}
		URL = "file://" + abs
	}
	data, err := a.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", location, err)
	}
	return data, nil
}

func usageTemplate() string {
	return `{{if .Long}}{{.Long}}

{{end}}` + styles.Bold.Render("USAGE") + `
  {{.UseLine}}{{if .HasAvailableSubCommands}}
  {{.CommandPath}} [command]{{end}}

{{if .HasExample}}` + styles.Bold.Render("EXAMPLES") + `
{{.Example}}

{{end}}{{if .HasAvailableSubCommands}}` + styles.Bold.Render("COMMANDS") + `{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}

{{end}}{{if .HasAvailableLocalFlags}}` + styles.Bold.Render("OPTIONS") + `
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}

{{end}}{{if .HasAvailableInheritedFlags}}` + styles.Bold.Render("GLOBAL OPTIONS") + `
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}

{{end}}{{if .HasAvailableSubCommands}}Use "{{.CommandPath}} [command] --help" for more information about a command.{{end}}
`
}
