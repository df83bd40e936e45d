package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Value is a sealed union of the shapes a stored datum can take:
// Null, Bool, Number, String, List and Map. Every record field, filter
// condition and update argument is expressed in this vocabulary, so the
// store never depends on caller-defined types.
type Value interface {
	isValue()
}

// Null represents an explicit null. A missing field and a Null field are
// distinct: equality filters never match a missing field, but they do
// match a stored Null against a Null condition.
type Null struct{}

func (Null) isValue() {}

// MarshalJSON renders Null as a JSON null (a bare struct would become {}).
func (Null) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// Bool represents a boolean value.
type Bool bool

func (Bool) isValue() {}

// Number represents any numeric value. There is a single numeric kind,
// matching the textual storage format.
type Number float64

func (Number) isValue() {}

// String represents a string value. Timestamps are carried as ISO-8601
// strings at this layer; their lexicographic order matches time order.
type String string

func (String) isValue() {}

// List represents an ordered sequence of values.
type List []Value

func (List) isValue() {}

// Map represents a mapping from field names to values. Records, filters
// and update specifications are all Maps.
type Map map[string]Value

func (Map) isValue() {}

// Record is a stored entity: a Map with one field acting as its unique
// identifier within a collection.
type Record = Map

// UnmarshalJSON decodes a JSON object into a Map of tagged values.
func (m *Map) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*m = make(Map, len(raw))
	for k, v := range raw {
		val, err := decodeValue(v)
		if err != nil {
			return fmt.Errorf("key %q: %w", k, err)
		}
		(*m)[k] = val
	}
	return nil
}

// UnmarshalJSON decodes a JSON array into a List of tagged values.
func (l *List) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*l = make(List, len(raw))
	for i, v := range raw {
		val, err := decodeValue(v)
		if err != nil {
			return fmt.Errorf("index %d: %w", i, err)
		}
		(*l)[i] = val
	}
	return nil
}

// decodeValue dispatches on the first byte of the JSON payload.
// Marshalling needs no counterpart: the named types serialize naturally.
func decodeValue(data []byte) (Value, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("empty JSON value")
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, err
		}
		return String(s), nil

	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return nil, err
		}
		return Bool(b), nil

	case 'n':
		return Null{}, nil

	case '[':
		var l List
		if err := json.Unmarshal(data, &l); err != nil {
			return nil, err
		}
		return l, nil

	case '{':
		var m Map
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, err
		}
		return m, nil

	default:
		var f float64
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, err
		}
		return Number(f), nil
	}
}

// FromGo converts a native Go value into a Value. Supported inputs are
// nil, booleans, strings, numeric types, time.Time (rendered as an
// ISO-8601 string), slices and string-keyed maps of the same, and Values
// themselves (passed through).
func FromGo(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return val, nil
	case bool:
		return Bool(val), nil
	case string:
		return String(val), nil
	case int:
		return Number(val), nil
	case int32:
		return Number(val), nil
	case int64:
		return Number(val), nil
	case float32:
		return Number(val), nil
	case float64:
		return Number(val), nil
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return nil, fmt.Errorf("number %q: %w", val, err)
		}
		return Number(f), nil
	case time.Time:
		return String(val.UTC().Format(time.RFC3339)), nil
	case []any:
		l := make(List, len(val))
		for i, elem := range val {
			conv, err := FromGo(elem)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			l[i] = conv
		}
		return l, nil
	case []string:
		l := make(List, len(val))
		for i, s := range val {
			l[i] = String(s)
		}
		return l, nil
	case map[string]any:
		m := make(Map, len(val))
		for k, elem := range val {
			conv, err := FromGo(elem)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k, err)
			}
			m[k] = conv
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unsupported type %T", v)
	}
}

// MustValue is FromGo for literals the caller knows are convertible.
// It panics on unsupported input; intended for filters and fixtures.
func MustValue(v any) Value {
	val, err := FromGo(v)
	if err != nil {
		panic(err)
	}
	return val
}

// MustMap converts a native string-keyed map into a Map, panicking on
// unsupported values. Intended for filters and fixtures.
func MustMap(m map[string]any) Map {
	return MustValue(m).(Map)
}

// Equal reports whether two values are deeply equal. Values of different
// kinds are never equal.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case nil:
		return b == nil
	case Null:
		_, ok := b.(Null)
		return ok
	case Bool:
		bv, ok := b.(Bool)
		return ok && av == bv
	case Number:
		bv, ok := b.(Number)
		return ok && av == bv
	case String:
		bv, ok := b.(String)
		return ok && av == bv
	case List:
		bv, ok := b.(List)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case Map:
		bv, ok := b.(Map)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			other, present := bv[k]
			if !present || !Equal(v, other) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Compare orders two values when they share an ordered kind. Numbers
// compare numerically, strings lexicographically (which orders ISO-8601
// timestamps correctly). The second return is false for every other
// pairing, including mixed kinds.
func Compare(a, b Value) (int, bool) {
	switch av := a.(type) {
	case Number:
		bv, ok := b.(Number)
		if !ok {
			return 0, false
		}
		switch {
		case av < bv:
			return -1, true
		case av > bv:
			return 1, true
		default:
			return 0, true
		}
	case String:
		bv, ok := b.(String)
		if !ok {
			return 0, false
		}
		switch {
		case av < bv:
			return -1, true
		case av > bv:
			return 1, true
		default:
			return 0, true
		}
	default:
		return 0, false
	}
}

// Clone returns a deep copy of a value. Scalars are returned as-is.
func Clone(v Value) Value {
	switch val := v.(type) {
	case List:
		out := make(List, len(val))
		for i, elem := range val {
			out[i] = Clone(elem)
		}
		return out
	case Map:
		return val.Clone()
	default:
		return val
	}
}

// Clone returns a deep copy of the map.
func (m Map) Clone() Map {
	out := make(Map, len(m))
	for k, v := range m {
		out[k] = Clone(v)
	}
	return out
}

// ID extracts the record's identifier under the given field name.
// It returns false if the field is absent or not a string.
func (m Map) ID(field string) (string, bool) {
	s, ok := m[field].(String)
	return string(s), ok
}
