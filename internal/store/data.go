package store

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"
)

type serverTimestamp struct{}

// ServerTimestamp is replaced by the store clock when a write is applied.
var ServerTimestamp = serverTimestamp{}

func (serverTimestamp) MarshalJSON() ([]byte, error) {
	return nil, fmt.Errorf("store: ServerTimestamp must be resolved before encoding")
}

// Encode converts a tagged struct into document data.
func Encode(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := map[string]any{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Normalize resolves timestamp sentinels and round-trips data through JSON
// so every backend stores and returns the same value shapes.
func Normalize(data map[string]any, now time.Time) (map[string]any, error) {
	resolved := resolveTimestamps(data, now)
	raw, err := json.Marshal(resolved)
	if err != nil {
		return nil, err
	}
	out := map[string]any{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func resolveTimestamps(v any, now time.Time) any {
	switch t := v.(type) {
	case serverTimestamp:
		return now.UTC()
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = resolveTimestamps(val, now)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = resolveTimestamps(val, now)
		}
		return out
	default:
		return v
	}
}

// DeepMerge copies src over dst, descending into nested maps. dst is not modified.
func DeepMerge(dst, src map[string]any) map[string]any {
	out := make(map[string]any, len(dst)+len(src))
	for k, v := range dst {
		out[k] = v
	}
	for k, v := range src {
		if sm, ok := v.(map[string]any); ok {
			if dm, ok := out[k].(map[string]any); ok {
				out[k] = DeepMerge(dm, sm)
				continue
			}
		}
		out[k] = v
	}
	return out
}

// ApplyFields replaces the given top-level fields. Keys are taken literally,
// so map keys containing dots are never split.
func ApplyFields(dst, fields map[string]any) map[string]any {
	out := make(map[string]any, len(dst)+len(fields))
	for k, v := range dst {
		out[k] = v
	}
	for k, v := range fields {
		out[k] = v
	}
	return out
}

// Lookup reads a field from data, descending into nested maps for dotted
// names when no literal key matches.
func Lookup(data map[string]any, field string) (any, bool) {
	if v, ok := data[field]; ok {
		return v, true
	}
	var cur any = data
	for _, p := range strings.Split(field, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[p]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Matches reports whether data satisfies every equality filter.
func Matches(data map[string]any, filters []Filter) bool {
	for _, f := range filters {
		got, ok := Lookup(data, f.Field)
		if !ok || compare(got, normalizeValue(f.Value)) != 0 {
			return false
		}
	}
	return true
}

func normalizeValue(v any) any {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case float32:
		return float64(n)
	case string, bool, float64, nil:
		return v
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	}
	return v
}

func rank(v any) int {
	switch v.(type) {
	case nil:
		return 0
	case bool:
		return 1
	case float64:
		return 2
	case string:
		return 3
	}
	return 4
}

func compare(a, b any) int {
	a, b = normalizeValue(a), normalizeValue(b)
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return ra - rb
	}
	switch x := a.(type) {
	case bool:
		y := b.(bool)
		switch {
		case x == y:
			return 0
		case !x:
			return -1
		}
		return 1
	case float64:
		y := b.(float64)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	case string:
		return strings.Compare(x, b.(string))
	case nil:
		return 0
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

// Finish applies ordering and limit to query results in place.
func Finish(docs []*Document, q Query) []*Document {
	sort.SliceStable(docs, func(i, j int) bool {
		if q.OrderBy == "" {
			return docs[i].Path < docs[j].Path
		}
		a, _ := Lookup(docs[i].Data, q.OrderBy)
		b, _ := Lookup(docs[j].Data, q.OrderBy)
		c := compare(a, b)
		if c == 0 {
			return docs[i].Path < docs[j].Path
		}
		if q.Desc {
			return c > 0
		}
		return c < 0
	})
	if q.Limit > 0 && len(docs) > q.Limit {
		docs = docs[:q.Limit]
	}
	return docs
}

// CloneData deep-copies nested maps and slices.
func CloneData(data map[string]any) map[string]any {
	if data == nil {
		return nil
	}
	return cloneValue(data).(map[string]any)
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = cloneValue(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = cloneValue(val)
		}
		return out
	}
	return v
}
