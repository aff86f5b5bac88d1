package engine

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ============================================================================
// RULE FILES — declarative rules for plugins
// ============================================================================
// A rule file describes shape predicates only; custom compilers still have to
// be attached in code. Example:
//
//	rules:
//	  - id: two-category-count
//	    name: Two categories
//	    signature: {numerical: 1, categorical: 2, date: 0}
//	    match: exact
//	    cardinality: {threshold: 7, mode: high}
//	    chartTypes:
//	      - {type: bar, priority: 90}
// ============================================================================

// Match modes of a rule file entry.
const (
	MatchModeExact   = "exact"
	MatchModeAtLeast = "atLeast"
)

// Cardinality modes of a rule file entry.
const (
	CardinalityHigh = "high"
	CardinalityLow  = "low"
)

type ruleFile struct {
	Rules []ruleSpec `yaml:"rules"`
}

type ruleSpec struct {
	ID          string           `yaml:"id"`
	Name        string           `yaml:"name"`
	Description string           `yaml:"description"`
	Signature   Signature        `yaml:"signature"`
	Match       string           `yaml:"match"`
	Cardinality *cardinalitySpec `yaml:"cardinality"`
	ChartTypes  []ChartTypeMeta  `yaml:"chartTypes"`
}

type cardinalitySpec struct {
	Threshold int    `yaml:"threshold"`
	Mode      string `yaml:"mode"`
}

// LoadRules parses a YAML rule file.
func LoadRules(data []byte) ([]VisualizationRule, error) {
	var file ruleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse rule file: %w", err)
	}

	rules := make([]VisualizationRule, 0, len(file.Rules))
	for i, spec := range file.Rules {
		rule, err := spec.build()
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// RegisterRulesFromYAML parses data and upserts every rule it declares. Every
// chart type a rule lists must have a config in r; nothing is registered
// otherwise.
func (r *Registry) RegisterRulesFromYAML(data []byte) error {
	rules, err := LoadRules(data)
	if err != nil {
		return err
	}
	for i, rule := range rules {
		for _, ct := range rule.ChartTypes {
			if _, ok := r.VisualizationConfig(ct.Type); !ok {
				return fmt.Errorf("rule %d: %w: %q uses chart type %q", i, ErrUnknownChartType, rule.ID, ct.Type)
			}
		}
	}
	return r.RegisterRules(rules...)
}

func (s ruleSpec) build() (VisualizationRule, error) {
	if s.ID == "" {
		return VisualizationRule{}, fmt.Errorf("%w: id is required", ErrInvalidRule)
	}
	if s.Signature.Numerical < 0 || s.Signature.Categorical < 0 || s.Signature.Date < 0 {
		return VisualizationRule{}, fmt.Errorf("%w: %q has a negative signature count", ErrInvalidRule, s.ID)
	}
	if len(s.ChartTypes) == 0 {
		return VisualizationRule{}, fmt.Errorf("%w: %q lists no chart types", ErrInvalidRule, s.ID)
	}
	for _, ct := range s.ChartTypes {
		if ct.Type == "" {
			return VisualizationRule{}, fmt.Errorf("%w: %q has a chart type without a type", ErrInvalidRule, s.ID)
		}
	}

	var match MatchFunc
	switch s.Match {
	case "", MatchModeExact:
		match = exactShape(s.Signature)
	case MatchModeAtLeast:
		match = atLeastShape(s.Signature)
	default:
		return VisualizationRule{}, fmt.Errorf("%w: %q has unknown match mode %q", ErrInvalidRule, s.ID, s.Match)
	}

	if c := s.Cardinality; c != nil {
		threshold := c.Threshold
		if threshold <= 0 {
			threshold = HighCardinalityThreshold
		}
		switch c.Mode {
		case CardinalityHigh:
			match = both(match, highCardinality(threshold))
		case CardinalityLow:
			match = both(match, lowCardinality(threshold))
		default:
			return VisualizationRule{}, fmt.Errorf("%w: %q has unknown cardinality mode %q", ErrInvalidRule, s.ID, c.Mode)
		}
	}

	name := s.Name
	if name == "" {
		name = s.ID
	}
	chartTypes := make([]ChartTypeMeta, len(s.ChartTypes))
	for i, ct := range s.ChartTypes {
		if name, ok := chartNames[ct.Type]; ok && ct.Name == "" {
			ct.Name = name
		}
		chartTypes[i] = ct
	}

	return VisualizationRule{
		ID:          s.ID,
		Name:        name,
		Description: s.Description,
		Signature:   s.Signature,
		ChartTypes:  chartTypes,
		Matches:     match,
	}, nil
}
