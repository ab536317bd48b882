package tools

import (
	"fmt"
	"strings"
)

func requiredString(params map[string]any, key string) (string, error) {
	v, ok := params[key].(string)
	if !ok || strings.TrimSpace(v) == "" {
		return "", fmt.Errorf("%s parameter is required", key)
	}
	return v, nil
}

func optionalString(params map[string]any, key string) string {
	v, _ := params[key].(string)
	return strings.TrimSpace(v)
}

// requiredInt accepts JSON numbers and numeric strings.
func requiredInt(params map[string]any, key string) (int, error) {
	switch v := params[key].(type) {
	case float64:
		return int(v), nil
	case int:
		return v, nil
	case string:
		var n int
		if _, err := fmt.Sscanf(strings.TrimPrefix(strings.TrimSpace(v), "#"), "%d", &n); err == nil {
			return n, nil
		}
	}
	return 0, fmt.Errorf("%s parameter must be an integer", key)
}

func optionalInt(params map[string]any, key string, def int) int {
	if _, ok := params[key]; !ok {
		return def
	}
	n, err := requiredInt(params, key)
	if err != nil {
		return def
	}
	return n
}

func stringList(params map[string]any, key string) []string {
	raw, _ := params[key].([]any)
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		if s, ok := r.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

func schema(required []string, props map[string]any) map[string]any {
	if required == nil {
		required = []string{}
	}
	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}

func prop(typ, description string) map[string]any {
	return map[string]any{"type": typ, "description": description}
}
