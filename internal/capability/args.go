package capability

import "encoding/json"

// StringArg returns the first non-empty string value among the given keys.
func StringArg(args map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if v, ok := args[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// IntArg returns the value under key coerced to int, or def when absent.
func IntArg(args map[string]interface{}, key string, def int) int {
	switch x := args[key].(type) {
	case int:
		return x
	case int64:
		return int(x)
	case float64:
		return int(x)
	case json.Number:
		i, _ := x.Int64()
		return int(i)
	default:
		return def
	}
}

// MissingRequired reports the schema fields that args does not satisfy.
func MissingRequired(schema []Field, args map[string]interface{}) []string {
	var missing []string
	for _, f := range schema {
		if !f.Required {
			continue
		}
		if v, ok := args[f.Name]; !ok || v == nil || v == "" {
			missing = append(missing, f.Name)
		}
	}
	return missing
}
