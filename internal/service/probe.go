package service

import (
	"strconv"
	"strings"
)

// probeString walks the alias keys in order and, for each, the scopes in
// order, returning the first present, non-null string value. Keeping the
// alias lists declarative keeps payload drift out of the extraction logic.
func probeString(scopes []map[string]any, keys ...string) string {
	for _, key := range keys {
		for _, scope := range scopes {
			if scope == nil {
				continue
			}
			value, ok := scope[key]
			if !ok || value == nil {
				continue
			}
			switch v := value.(type) {
			case string:
				if strings.TrimSpace(v) != "" {
					return v
				}
			case float64:
				return strconv.FormatFloat(v, 'f', -1, 64)
			case bool:
				return strconv.FormatBool(v)
			}
		}
	}
	return ""
}

// probeBool resolves an aliased boolean, accepting real booleans and their
// string spellings.
func probeBool(scopes []map[string]any, keys ...string) (bool, bool) {
	for _, key := range keys {
		for _, scope := range scopes {
			if scope == nil {
				continue
			}
			value, ok := scope[key]
			if !ok || value == nil {
				continue
			}
			switch v := value.(type) {
			case bool:
				return v, true
			case string:
				if parsed, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
					return parsed, true
				}
			}
		}
	}
	return false, false
}

// nestedMap returns m[key] when it is an object, nil otherwise.
func nestedMap(m map[string]any, key string) map[string]any {
	if m == nil {
		return nil
	}
	child, _ := m[key].(map[string]any)
	return child
}
