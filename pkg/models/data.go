package models

// SObject represents a generic record: a mapping from field API name to
// value. Field sets differ per object and per org, so records stay
// untyped. A key holding nil is distinct from an absent key — absent
// fields are omitted from writes, nil fields are written as null.
type SObject map[string]interface{}

// Helper methods for SObject
func (s SObject) GetString(key string) string {
	if val, ok := s[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}

func (s SObject) GetBool(key string) bool {
	if val, ok := s[key]; ok {
		if b, ok := val.(bool); ok {
			return b
		}
	}
	return false
}

// GetInt64 coerces numeric values, which JSON decoding may deliver as
// float64.
func (s SObject) GetInt64(key string) int64 {
	switch v := s[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	}
	return 0
}

// Has reports whether the key is present, regardless of value.
func (s SObject) Has(key string) bool {
	_, ok := s[key]
	return ok
}

// Clone returns a shallow copy of the record.
func (s SObject) Clone() SObject {
	out := make(SObject, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}
