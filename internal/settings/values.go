package settings

import (
	"encoding/json"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Mask replaces stored secrets in payloads returned to the admin UI.
// Sending it back in a Put keeps the stored value.
const Mask = "********"

// Values is the decoded payload of one settings group.
type Values map[string]any

// String returns the string at a dotted path, or "".
func (v Values) String(path string) string {
	switch typed := v.lookup(path).(type) {
	case string:
		return strings.TrimSpace(typed)
	case json.Number:
		return typed.String()
	case nil:
		return ""
	default:
		encoded, err := json.Marshal(typed)
		if err != nil {
			return ""
		}
		return string(encoded)
	}
}

// Int returns the integer at a dotted path, or fallback.
func (v Values) Int(path string, fallback int) int {
	switch typed := v.lookup(path).(type) {
	case int:
		return typed
	case int64:
		return int(typed)
	case float64:
		return int(typed)
	case json.Number:
		if n, err := typed.Int64(); err == nil {
			return int(n)
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(typed)); err == nil {
			return n
		}
	}
	return fallback
}

// Bool returns the boolean at a dotted path, or fallback.
func (v Values) Bool(path string, fallback bool) bool {
	if typed, ok := v.lookup(path).(bool); ok {
		return typed
	}
	return fallback
}

// Map returns the object at a dotted path.
func (v Values) Map(path string) Values {
	if typed, ok := v.lookup(path).(map[string]any); ok {
		return Values(typed)
	}
	return nil
}

// List returns the array at a dotted path.
func (v Values) List(path string) []any {
	if typed, ok := v.lookup(path).([]any); ok {
		return typed
	}
	return nil
}

// Labels returns a locale keyed label object.
func (v Values) Labels(path string) map[string]string {
	raw := v.Map(path)
	if raw == nil {
		return nil
	}
	out := make(map[string]string, len(raw))
	for locale, label := range raw {
		if text, ok := label.(string); ok && strings.TrimSpace(text) != "" {
			out[locale] = strings.TrimSpace(text)
		}
	}
	return out
}

// Label picks the label for locale, then fallback.
func (v Values) Label(path, locale, fallback string) string {
	labels := v.Labels(path)
	if text := labels[locale]; text != "" {
		return text
	}
	return labels[fallback]
}

// Clone returns a deep copy.
func (v Values) Clone() Values {
	if v == nil {
		return nil
	}
	return Values(cloneMap(v))
}

func (v Values) lookup(path string) any {
	var current any = map[string]any(v)
	for _, segment := range strings.Split(path, ".") {
		node, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current = node[segment]
	}
	return current
}

// Keys lists top level keys in sorted order.
func (v Values) Keys() []string {
	return slices.Sorted(maps.Keys(v))
}

// walkSecrets calls fn for every leaf matched by the dotted path. fn gets the
// containing object and the key within it.
func walkSecrets(values map[string]any, path string, fn func(container map[string]any, key string)) {
	walkSegments(values, strings.Split(path, "."), fn)
}

func walkSegments(node any, segments []string, fn func(map[string]any, string)) {
	if len(segments) == 0 {
		return
	}
	head, rest := segments[0], segments[1:]
	switch typed := node.(type) {
	case map[string]any:
		if head == "*" {
			for _, key := range slices.Sorted(maps.Keys(typed)) {
				if len(rest) == 0 {
					fn(typed, key)
					continue
				}
				walkSegments(typed[key], rest, fn)
			}
			return
		}
		if len(rest) == 0 {
			if _, ok := typed[head]; ok {
				fn(typed, head)
			}
			return
		}
		walkSegments(typed[head], rest, fn)
	case []any:
		if head != "*" {
			return
		}
		for _, item := range typed {
			walkSegments(item, rest, fn)
		}
	}
}

func cloneMap(input map[string]any) map[string]any {
	if input == nil {
		return nil
	}
	out := make(map[string]any, len(input))
	for key, value := range input {
		out[key] = cloneValue(value)
	}
	return out
}

func cloneValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return cloneMap(typed)
	case Values:
		return cloneMap(typed)
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return value
	}
}

// merge overlays patch on base at the top level.
func merge(base, patch map[string]any) map[string]any {
	out := cloneMap(base)
	if out == nil {
		out = map[string]any{}
	}
	for key, value := range patch {
		out[key] = cloneValue(value)
	}
	return out
}

// expandPaths resolves a secret pattern into the concrete paths present in
// values. Array elements are addressed by index.
func expandPaths(values map[string]any, pattern string) []string {
	var out []string
	var walk func(node any, prefix string, segments []string)
	walk = func(node any, prefix string, segments []string) {
		if len(segments) == 0 {
			out = append(out, prefix)
			return
		}
		head, rest := segments[0], segments[1:]
		join := func(segment string) string {
			if prefix == "" {
				return segment
			}
			return prefix + "." + segment
		}
		switch typed := node.(type) {
		case map[string]any:
			if head == "*" {
				for _, key := range slices.Sorted(maps.Keys(typed)) {
					walk(typed[key], join(key), rest)
				}
				return
			}
			child, ok := typed[head]
			if !ok {
				return
			}
			walk(child, join(head), rest)
		case []any:
			if head != "*" {
				return
			}
			for i, item := range typed {
				walk(item, join(strconv.Itoa(i)), rest)
			}
		}
	}
	walk(values, "", strings.Split(pattern, "."))
	return out
}

func getPath(values map[string]any, path string) (any, bool) {
	var current any = values
	for _, segment := range strings.Split(path, ".") {
		switch typed := current.(type) {
		case map[string]any:
			next, ok := typed[segment]
			if !ok {
				return nil, false
			}
			current = next
		case []any:
			index, err := strconv.Atoi(segment)
			if err != nil || index < 0 || index >= len(typed) {
				return nil, false
			}
			current = typed[index]
		default:
			return nil, false
		}
	}
	return current, true
}

// setPath writes value at path when every parent along it already exists.
func setPath(values map[string]any, path string, value any) bool {
	segments := strings.Split(path, ".")
	parentPath := strings.Join(segments[:len(segments)-1], ".")
	parent := any(values)
	if parentPath != "" {
		var ok bool
		if parent, ok = getPath(values, parentPath); !ok {
			return false
		}
	}
	last := segments[len(segments)-1]
	switch typed := parent.(type) {
	case map[string]any:
		typed[last] = value
		return true
	case []any:
		index, err := strconv.Atoi(last)
		if err != nil || index < 0 || index >= len(typed) {
			return false
		}
		typed[index] = value
		return true
	}
	return false
}
