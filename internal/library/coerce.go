package library

import (
	"surfgen/internal/core"
	"surfgen/internal/geometry"
)

// Parameter coercion. Raw parameter bags arrive from YAML manifests and
// hand-written maps, so values come in looser shapes than the normalized
// forms the tasks store: Miller indices as []any of floats, settings as
// typed maps. Coercion narrows them or rejects with ErrInvalidParameter.

func stringParam(p core.Params, name string) (string, error) {
	v, ok := p[name]
	if !ok {
		return "", core.InvalidParameterf("missing parameter %q", name)
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", core.InvalidParameterf("parameter %q must be a non-empty string, got %T", name, v)
	}
	return s, nil
}

func floatParam(p core.Params, name string, def float64) (float64, error) {
	v, ok := p[name]
	if !ok {
		return def, nil
	}
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	default:
		return 0, core.InvalidParameterf("parameter %q must be a number, got %T", name, v)
	}
}

func intElem(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case int32:
		return int(x), true
	case int64:
		return int(x), true
	case float64:
		if x == float64(int64(x)) {
			return int(x), true
		}
	}
	return 0, false
}

func millerParam(p core.Params, name string) ([3]int, error) {
	v, ok := p[name]
	if !ok {
		return [3]int{}, core.InvalidParameterf("missing parameter %q", name)
	}
	switch x := v.(type) {
	case [3]int:
		return x, nil
	case []int:
		if len(x) == 3 {
			return [3]int{x[0], x[1], x[2]}, nil
		}
	case []any:
		if len(x) == 3 {
			var out [3]int
			for i, e := range x {
				n, ok := intElem(e)
				if !ok {
					return [3]int{}, core.InvalidParameterf("parameter %q element %d must be an integer, got %T", name, i, e)
				}
				out[i] = n
			}
			return out, nil
		}
	default:
		return [3]int{}, core.InvalidParameterf("parameter %q must be three integers, got %T", name, v)
	}
	return [3]int{}, core.InvalidParameterf("parameter %q must have exactly three elements", name)
}

// settingsParam normalizes an option map, falling back to def when absent.
// The result is a plain map[string]any so it canonicalizes as part of the
// task's parameters.
func settingsParam(p core.Params, name string, def geometry.Settings) (map[string]any, error) {
	v, ok := p[name]
	if !ok {
		return copySettings(map[string]any(def)), nil
	}
	switch x := v.(type) {
	case map[string]any:
		return copySettings(x), nil
	case core.Params:
		return copySettings(map[string]any(x)), nil
	case geometry.Settings:
		return copySettings(map[string]any(x)), nil
	default:
		return nil, core.InvalidParameterf("parameter %q must be a map, got %T", name, v)
	}
}

func copySettings(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
