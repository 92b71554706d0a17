package devutil

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Field is one picked key/value.
type Field struct {
	Key   string
	Value any
}

// Pick round-trips v through JSON and returns the requested keys in the
// order asked. Missing keys are skipped. Useful for compact debug prints.
func Pick(v any, keys ...string) []Field {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}

	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil
	}

	out := make([]Field, 0, len(keys))
	for _, k := range keys {
		if val, ok := m[k]; ok {
			out = append(out, Field{Key: k, Value: val})
		}
	}
	return out
}

// Format renders picked fields as "k=v k=v".
func Format(fields []Field) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s=%v", f.Key, f.Value))
	}
	return strings.Join(parts, " ")
}

// SplitKeys parses a comma separated key list, dropping blanks.
func SplitKeys(s string) []string {
	var out []string
	for _, k := range strings.Split(s, ",") {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}
