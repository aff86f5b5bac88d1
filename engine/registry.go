package engine

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/spektr-org/autovis/schema"
)

// ============================================================================
// VISUALIZATION REGISTRY — rule evaluation + chart type configs
// ============================================================================
// FindBestMatch ranks by chart-type priority, not by rule order, so several
// rules may claim the same column shape and still produce one winner. Ties go
// to the rule registered first.
//
// Registries are constructed explicitly and handed to builders; plugins extend
// them at runtime through RegisterRule(s), so all access is lock-protected.
// ============================================================================

// Registry indexes visualization rules and chart type configs.
type Registry struct {
	mu         sync.RWMutex
	rules      []*VisualizationRule
	ruleIndex  map[string]int
	charts     map[ChartType]ChartTypeConfig
	chartOrder []ChartType
	logger     *slog.Logger
}

// NewRegistry creates an empty registry configured by opts.
// Invalid rules or configs passed through options are logged and skipped.
func NewRegistry(opts ...Option) *Registry {
	cfg := applyOptions(opts)
	r := &Registry{
		ruleIndex: make(map[string]int),
		charts:    make(map[ChartType]ChartTypeConfig),
		logger:    cfg.logger,
	}
	for _, c := range cfg.charts {
		if err := r.RegisterChartConfig(c); err != nil {
			r.logger.Warn("skipping chart config", "type", c.Type, "error", err)
		}
	}
	for _, rule := range cfg.rules {
		if err := r.RegisterRule(rule); err != nil {
			r.logger.Warn("skipping rule", "id", rule.ID, "error", err)
		}
	}
	return r
}

// NewDefaultRegistry creates a registry preloaded with the built-in rules and
// chart type configs. Extra options are applied after the built-ins.
func NewDefaultRegistry(opts ...Option) *Registry {
	base := []Option{
		WithChartConfigs(DefaultChartConfigs()...),
		WithRules(DefaultRules()...),
	}
	return NewRegistry(append(base, opts...)...)
}

// ============================================================================
// REGISTRATION
// ============================================================================

// RegisterRule inserts rule, or replaces the rule with the same ID in place.
func (r *Registry) RegisterRule(rule VisualizationRule) error {
	if rule.ID == "" {
		return fmt.Errorf("%w: rule id is required", ErrInvalidRule)
	}
	if rule.Matches == nil {
		return fmt.Errorf("%w: rule %q has no match predicate", ErrInvalidRule, rule.ID)
	}
	if len(rule.ChartTypes) == 0 {
		return fmt.Errorf("%w: rule %q lists no chart types", ErrInvalidRule, rule.ID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := rule
	stored.ChartTypes = append([]ChartTypeMeta(nil), rule.ChartTypes...)
	for i := range stored.ChartTypes {
		if stored.ChartTypes[i].Name == "" {
			stored.ChartTypes[i].Name = r.chartName(stored.ChartTypes[i].Type)
		}
	}

	if i, exists := r.ruleIndex[rule.ID]; exists {
		r.rules[i] = &stored
		r.logger.Debug("visualization rule replaced", "id", rule.ID)
		return nil
	}
	r.ruleIndex[rule.ID] = len(r.rules)
	r.rules = append(r.rules, &stored)
	r.logger.Debug("visualization rule registered", "id", rule.ID, "signature", rule.Signature)
	return nil
}

// RegisterRules upserts rules in order and stops at the first invalid one.
func (r *Registry) RegisterRules(rules ...VisualizationRule) error {
	for i, rule := range rules {
		if err := r.RegisterRule(rule); err != nil {
			return fmt.Errorf("rule %d: %w", i, err)
		}
	}
	return nil
}

// RegisterChartConfig inserts or replaces the config of cfg.Type.
func (r *Registry) RegisterChartConfig(cfg ChartTypeConfig) error {
	if cfg.Type == "" {
		return fmt.Errorf("%w: chart config type is required", ErrInvalidRule)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.charts[cfg.Type]; !exists {
		r.chartOrder = append(r.chartOrder, cfg.Type)
	}
	r.charts[cfg.Type] = cfg
	return nil
}

// chartName must be called with r.mu held.
func (r *Registry) chartName(t ChartType) string {
	if cfg, ok := r.charts[t]; ok && cfg.Name != "" {
		return cfg.Name
	}
	if name, ok := chartNames[t]; ok {
		return name
	}
	return string(t)
}

// ============================================================================
// LOOKUP
// ============================================================================

// Rules returns the registered rules in registration order.
func (r *Registry) Rules() []VisualizationRule {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]VisualizationRule, len(r.rules))
	for i, rule := range r.rules {
		out[i] = *rule
	}
	return out
}

// Rule looks up a rule by ID.
func (r *Registry) Rule(id string) (*VisualizationRule, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.ruleIndex[id]
	if !ok {
		return nil, false
	}
	return r.rules[i], true
}

// ChartTypes returns the chart types that have a config, in registration order.
func (r *Registry) ChartTypes() []ChartType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]ChartType(nil), r.chartOrder...)
}

// VisualizationConfig returns the config of a chart type. A missing config
// means the chart type cannot be rendered. Style defaults are a private copy.
func (r *Registry) VisualizationConfig(t ChartType) (ChartTypeConfig, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cfg, ok := r.charts[t]
	if !ok {
		return ChartTypeConfig{}, false
	}
	cfg.StyleDefaults = CloneStyles(cfg.StyleDefaults)
	return cfg, true
}

// ============================================================================
// MATCHING
// ============================================================================

// FindBestMatch evaluates every rule against the column partitions. For each
// matching rule it takes the entry of chartType when the rule lists it (empty
// chartType = no preference), otherwise the rule's top entry, and keeps the
// pair with the strictly highest priority.
func (r *Registry) FindBestMatch(numerical, categorical, date []schema.Column, chartType ChartType) (Match, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var best Match
	found := false
	for _, rule := range r.rules {
		if !rule.Matches(numerical, categorical, date).Matched() {
			continue
		}

		candidate, ok := ChartTypeMeta{}, false
		if chartType != "" {
			candidate, ok = rule.ChartTypeEntry(chartType)
		}
		if !ok {
			candidate, ok = rule.TopChartType()
		}
		if !ok {
			continue
		}

		if !found || candidate.Priority > best.ChartType.Priority {
			best = Match{Rule: rule, ChartType: candidate}
			found = true
		}
	}

	if found {
		r.logger.Debug("visualization rule matched",
			"rule", best.Rule.ID, "chart_type", best.ChartType.Type, "priority", best.ChartType.Priority)
	}
	return best, found
}

// DefaultAxesMapping binds the chart type's template for rule's signature to
// concrete columns. Roles whose ordinal is out of range are left out; an empty
// mapping means the chart type has no template for that shape.
func (r *Registry) DefaultAxesMapping(rule *VisualizationRule, chartType ChartType, numerical, categorical, date []schema.Column) AxesMapping {
	mapping := AxesMapping{}
	if rule == nil {
		return mapping
	}
	template, ok := r.TemplateFor(chartType, rule.Signature)
	if !ok {
		return mapping
	}

	partitions := map[schema.FieldType][]schema.Column{
		schema.Numerical:   numerical,
		schema.Categorical: categorical,
		schema.Date:        date,
	}
	for role, ref := range template {
		cols := partitions[ref.Schema]
		if ref.Index < 0 || ref.Index >= len(cols) {
			continue
		}
		mapping[role] = cols[ref.Index]
	}
	return mapping
}

// TemplateFor returns the first mapping template of t whose signature is sig.
func (r *Registry) TemplateFor(t ChartType, sig Signature) (MappingTemplate, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cfg, ok := r.charts[t]
	if !ok {
		return nil, false
	}
	for _, tpl := range cfg.AvailableMappings {
		if tpl.Signature() == sig {
			return tpl, true
		}
	}
	return nil, false
}

// FindRuleByMapping returns the first rule whose signature equals the counts
// of columns actually referenced by mapping.
func (r *Registry) FindRuleByMapping(mapping NameMapping, all []schema.Column) (*VisualizationRule, bool) {
	sig := MappingSignature(mapping, all)

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rule := range r.rules {
		if rule.Signature == sig {
			return rule, true
		}
	}
	return nil, false
}

// AvailableChartTypes lists every chart type offered by a rule matching the
// partitions, each at its highest priority, sorted by priority. The table
// type is always offered last.
func (r *Registry) AvailableChartTypes(numerical, categorical, date []schema.Column) []ChartTypeMeta {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[ChartType]int)
	var out []ChartTypeMeta
	for _, rule := range r.rules {
		if !rule.Matches(numerical, categorical, date).Matched() {
			continue
		}
		for _, ct := range rule.ChartTypes {
			if ct.Type == ChartTable {
				continue
			}
			if i, ok := seen[ct.Type]; ok {
				if ct.Priority > out[i].Priority {
					out[i].Priority = ct.Priority
				}
				continue
			}
			seen[ct.Type] = len(out)
			out = append(out, ct)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority > out[j].Priority
	})
	return append(out, ChartTypeMeta{Type: ChartTable, Name: r.chartName(ChartTable)})
}
