package main

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/spektr-org/autovis/engine"
)

// ============================================================================
// OUTPUT — text, json, pretty, yaml, csv
// ============================================================================

var styles = struct {
	Bold   lipgloss.Style
	Title  lipgloss.Style
	Key    lipgloss.Style
	Muted  lipgloss.Style
	Accent lipgloss.Style
	Error  lipgloss.Style
	Box    lipgloss.Style
}{
	Bold:   lipgloss.NewStyle().Bold(true),
	Title:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")),
	Key:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14),
	Muted:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	Accent: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
	Error:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("86")).
		Padding(0, 1),
}

var successColor = color.New(color.FgGreen, color.Bold)

// write renders v in the selected format to stdout or --out.
func (a *app) write(cmd *cobra.Command, v any) error {
	var buf bytes.Buffer
	if err := render(&buf, a.opts.format, v); err != nil {
		return err
	}

	if a.opts.outFile == "" {
		_, err := cmd.OutOrStdout().Write(buf.Bytes())
		return err
	}
	if err := os.WriteFile(a.opts.outFile, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	successColor.Fprintf(cmd.ErrOrStderr(), "✓ Written to %s\n", a.opts.outFile)
	return nil
}

func render(w io.Writer, format string, v any) error {
	switch strings.ToLower(format) {
	case "json":
		out, err := sonic.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}
		_, err = fmt.Fprintln(w, string(out))
		return err
	case "pretty":
		out, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}
		_, err = fmt.Fprintln(w, string(out))
		return err
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}
		return enc.Close()
	case "csv":
		return writeCSV(w, v)
	case "text", "":
		return writeText(w, v)
	default:
		return fmt.Errorf("unknown format %q (use text, json, pretty, yaml or csv)", format)
	}
}

// ============================================================================
// TEXT
// ============================================================================

func writeText(w io.Writer, v any) error {
	switch t := v.(type) {
	case *report:
		_, err := fmt.Fprintln(w, reportText(t))
		return err
	case ruleList:
		_, err := fmt.Fprintln(w, rulesText(t))
		return err
	}
	return fmt.Errorf("text output not supported for %T", v)
}

func reportText(r *report) string {
	var b strings.Builder
	line := func(key, value string) {
		b.WriteString(styles.Key.Render(key) + value + "\n")
	}

	b.WriteString(styles.Title.Render("📊 "+r.File) + "\n\n")
	line("rows", fmt.Sprintf("%d", r.Rows))
	line("shape", fmt.Sprintf("%d numerical, %d categorical, %d date",
		r.Shape.Numerical, r.Shape.Categorical, r.Shape.Date))

	if r.State.ChartType == "" {
		line("chart", styles.Muted.Render("no rule matches this shape"))
	} else {
		line("chart", styles.Accent.Render(string(r.State.ChartType)))
	}
	if r.Rule != "" {
		line("rule", r.Rule)
	}
	if r.State.ShowRawTable {
		line("raw table", "on")
	}

	types := make([]string, 0, len(r.Available))
	for _, ct := range r.Available {
		types = append(types, fmt.Sprintf("%s (%d)", ct.Type, ct.Priority))
	}
	line("available", strings.Join(types, ", "))

	if len(r.State.AxesMapping) > 0 {
		roles := make([]string, 0, len(r.State.AxesMapping))
		for role := range r.State.AxesMapping {
			roles = append(roles, string(role))
		}
		sort.Strings(roles)
		b.WriteString("\n" + styles.Bold.Render("AXES") + "\n")
		for _, role := range roles {
			line("  "+role, r.State.AxesMapping[engine.AxisRole(role)])
		}
	}

	if r.Spec != nil && len(r.Spec.Series) > 0 {
		b.WriteString("\n" + styles.Bold.Render(r.Spec.Title) + "\n")
		b.WriteString(seriesText(r.Spec))
	}
	return styles.Box.Render(strings.TrimRight(b.String(), "\n"))
}

// seriesText prints at most a handful of points per series.
func seriesText(spec *engine.ChartSpec) string {
	const maxPoints = 8

	var b strings.Builder
	for _, s := range spec.Series {
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(s.Color)).Render("■")
		if s.Color == "" {
			swatch = "■"
		}
		b.WriteString(swatch + " " + s.Name + "\n")
		for i, p := range s.Data {
			if i == maxPoints {
				b.WriteString(styles.Muted.Render(fmt.Sprintf("    … %d more", len(s.Data)-maxPoints)) + "\n")
				break
			}
			b.WriteString(fmt.Sprintf("    %-20s %s\n", p.Label, fmtNum(p.Value)))
		}
	}
	return b.String()
}

func rulesText(rules ruleList) string {
	var b strings.Builder
	b.WriteString(styles.Bold.Render(fmt.Sprintf("%-28s %-14s %s", "RULE", "SHAPE", "CHART TYPES")) + "\n")
	for _, rule := range rules {
		types := make([]string, 0, len(rule.ChartTypes))
		for _, ct := range rule.ChartTypes {
			types = append(types, fmt.Sprintf("%s:%d", ct.Type, ct.Priority))
		}
		shape := fmt.Sprintf("%dN %dC %dD", rule.Signature.Numerical, rule.Signature.Categorical, rule.Signature.Date)
		b.WriteString(fmt.Sprintf("%-28s %-14s %s\n", rule.ID, shape, strings.Join(types, " ")))
	}
	return strings.TrimRight(b.String(), "\n")
}

// ============================================================================
// CSV
// ============================================================================

func writeCSV(w io.Writer, v any) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	switch t := v.(type) {
	case *report:
		if t.Spec == nil || len(t.Spec.Series) == 0 {
			return fmt.Errorf("no chart series to export as CSV")
		}
		writeChartCSV(cw, t.Spec)
	case ruleList:
		cw.Write([]string{"id", "name", "numerical", "categorical", "date", "chart_types"})
		for _, rule := range t {
			types := make([]string, 0, len(rule.ChartTypes))
			for _, ct := range rule.ChartTypes {
				types = append(types, string(ct.Type))
			}
			cw.Write([]string{
				rule.ID, rule.Name,
				fmt.Sprint(rule.Signature.Numerical),
				fmt.Sprint(rule.Signature.Categorical),
				fmt.Sprint(rule.Signature.Date),
				strings.Join(types, ";"),
			})
		}
	default:
		return fmt.Errorf("csv output not supported for %T", v)
	}
	return cw.Error()
}

// writeChartCSV writes one row per label. Series are aligned by label since
// grouped series do not share a label set.
func writeChartCSV(cw *csv.Writer, spec *engine.ChartSpec) {
	xLabel := spec.XAxis
	yLabel := spec.YAxis
	if xLabel == "" {
		xLabel = "Label"
	}
	if yLabel == "" {
		yLabel = "Value"
	}

	// Single series → two columns
	if len(spec.Series) == 1 {
		cw.Write([]string{xLabel, yLabel})
		for _, d := range spec.Series[0].Data {
			cw.Write([]string{d.Label, fmtNum(d.Value)})
		}
		return
	}

	// Multi-series → label + one column per series
	headers := []string{xLabel}
	var labels []string
	values := make([]map[string]float64, len(spec.Series))
	seen := make(map[string]bool)
	for i, s := range spec.Series {
		headers = append(headers, s.Name)
		values[i] = make(map[string]float64, len(s.Data))
		for _, d := range s.Data {
			values[i][d.Label] = d.Value
			if !seen[d.Label] {
				seen[d.Label] = true
				labels = append(labels, d.Label)
			}
		}
	}
	cw.Write(headers)

	for _, label := range labels {
		row := []string{label}
		for i := range spec.Series {
			if v, ok := values[i][label]; ok {
				row = append(row, fmtNum(v))
			} else {
				row = append(row, "")
			}
		}
		cw.Write(row)
	}
}

func fmtNum(v float64) string {
	// Whole numbers → no decimals, fractional → 2 decimals
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}
