package engine

// CloneStyles deep-copies a style option map. Nested maps and slices are
// copied so callers may mutate the result without touching chart defaults.
func CloneStyles(styles map[string]any) map[string]any {
	if styles == nil {
		return nil
	}
	out := make(map[string]any, len(styles))
	for k, v := range styles {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return CloneStyles(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	}
	return v
}

// MergeStyles returns a copy of base with every key of partial overwritten.
func MergeStyles(base, partial map[string]any) map[string]any {
	out := CloneStyles(base)
	if out == nil {
		out = make(map[string]any, len(partial))
	}
	for k, v := range partial {
		out[k] = cloneValue(v)
	}
	return out
}
