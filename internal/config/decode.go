package config

import (
	"fmt"
	"strings"
	"time"
)

// decoder copies typed values out of a settings map and collects type
// errors instead of stopping at the first one.
type decoder struct {
	errs []error
}

func (d *decoder) mismatch(path, expected string, v any) {
	d.errs = append(d.errs, &TypeError{Path: path, Expected: expected, Actual: typeName(v)})
}

func (d *decoder) str(m map[string]any, path string, dst *string) {
	v, ok := getPath(m, path)
	if !ok {
		return
	}
	s, ok := v.(string)
	if !ok {
		d.mismatch(path, "string", v)
		return
	}
	*dst = s
}

func (d *decoder) integer(m map[string]any, path string, dst *int) {
	v, ok := getPath(m, path)
	if !ok {
		return
	}
	switch val := v.(type) {
	case int:
		*dst = val
	case int64:
		*dst = int(val)
	case uint64:
		*dst = int(val)
	case float64:
		*dst = int(val)
	default:
		d.mismatch(path, "int", v)
	}
}

func (d *decoder) boolean(m map[string]any, path string, dst *bool) {
	v, ok := getPath(m, path)
	if !ok {
		return
	}
	b, ok := v.(bool)
	if !ok {
		d.mismatch(path, "bool", v)
		return
	}
	*dst = b
}

// duration accepts a duration string ("250ms") or a number of
// milliseconds.
func (d *decoder) duration(m map[string]any, path string, dst *time.Duration) {
	v, ok := getPath(m, path)
	if !ok {
		return
	}
	switch val := v.(type) {
	case time.Duration:
		*dst = val
	case string:
		parsed, err := time.ParseDuration(val)
		if err != nil {
			d.mismatch(path, "duration", v)
			return
		}
		*dst = parsed
	case int:
		*dst = time.Duration(val) * time.Millisecond
	case int64:
		*dst = time.Duration(val) * time.Millisecond
	case float64:
		*dst = time.Duration(val * float64(time.Millisecond))
	default:
		d.mismatch(path, "duration", v)
	}
}

func (d *decoder) policies(raw any) []PolicyConfig {
	list, ok := raw.([]any)
	if !ok {
		d.mismatch("policies", "list", raw)
		return nil
	}

	out := make([]PolicyConfig, 0, len(list))
	for i, item := range list {
		path := fmt.Sprintf("policies[%d]", i)
		m, ok := item.(map[string]any)
		if !ok {
			d.mismatch(path, "table", item)
			continue
		}
		var p PolicyConfig
		d.str(m, "prefix", &p.Prefix)
		d.str(m, "pattern", &p.Pattern)
		d.str(m, "style", &p.Style)
		d.boolean(m, "allowAdjacent", &p.AllowAdjacent)
		d.str(m, "kind", &p.Kind)
		out = append(out, p)
	}
	return out
}

func (d *decoder) styles(raw any, dst map[string]string) {
	m, ok := raw.(map[string]any)
	if !ok {
		d.mismatch("styles", "table", raw)
		return
	}
	for name, v := range m {
		s, ok := v.(string)
		if !ok {
			d.mismatch("styles."+name, "string", v)
			continue
		}
		dst[name] = s
	}
}

// getPath retrieves a value from a nested map using a dot-separated path.
func getPath(m map[string]any, path string) (any, bool) {
	current := any(m)
	for _, part := range strings.Split(path, ".") {
		cm, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		if current, ok = cm[part]; !ok {
			return nil, false
		}
	}
	return current, true
}

// typeName returns the type name for error messages.
func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	switch v.(type) {
	case string:
		return "string"
	case int, int64, uint64:
		return "int"
	case float64:
		return "float64"
	case bool:
		return "bool"
	case []any:
		return "list"
	case map[string]any:
		return "table"
	default:
		return fmt.Sprintf("%T", v)
	}
}
