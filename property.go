package libredadb

import (
	"fmt"
	"sort"
)

type propertyKind int

const (
	propertyString propertyKind = iota
	propertyBytes
	propertyInt
	propertyFloat
)

// PropertyValue is a user-defined property value. Properties can hold a
// string, a byte string, a signed integer or a float.
type PropertyValue struct {
	kind propertyKind
	str  string
	raw  []byte
	num  int64
	flt  float64
}

// StringProperty wraps a string value.
func StringProperty(s string) PropertyValue {
	return PropertyValue{kind: propertyString, str: s}
}

// BytesProperty wraps a byte string value.
func BytesProperty(b []byte) PropertyValue {
	return PropertyValue{kind: propertyBytes, raw: b}
}

// IntProperty wraps a signed integer value.
func IntProperty(i int64) PropertyValue {
	return PropertyValue{kind: propertyInt, num: i}
}

// FloatProperty wraps a float value.
func FloatProperty(f float64) PropertyValue {
	return PropertyValue{kind: propertyFloat, flt: f}
}

// AsString returns the string value. The second result is false when the
// property holds a different type.
func (v PropertyValue) AsString() (string, bool) {
	return v.str, v.kind == propertyString
}

// AsBytes returns the byte string value.
func (v PropertyValue) AsBytes() ([]byte, bool) {
	return v.raw, v.kind == propertyBytes
}

// AsInt returns the integer value.
func (v PropertyValue) AsInt() (int64, bool) {
	return v.num, v.kind == propertyInt
}

// AsFloat returns the float value.
func (v PropertyValue) AsFloat() (float64, bool) {
	return v.flt, v.kind == propertyFloat
}

func (v PropertyValue) String() string {
	switch v.kind {
	case propertyBytes:
		return fmt.Sprintf("%x", v.raw)
	case propertyInt:
		return fmt.Sprintf("%d", v.num)
	case propertyFloat:
		return fmt.Sprintf("%g", v.flt)
	default:
		return v.str
	}
}

// PropertyStore holds user-defined key/value properties of one object.
// The zero value is ready to use.
type PropertyStore struct {
	values map[string]PropertyValue
}

// Set stores a property, replacing any previous value under the key.
func (s *PropertyStore) Set(key string, value PropertyValue) {
	if s.values == nil {
		s.values = make(map[string]PropertyValue)
	}
	s.values[key] = value
}

// Get returns the property stored under key.
func (s *PropertyStore) Get(key string) (PropertyValue, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Delete removes the property stored under key.
func (s *PropertyStore) Delete(key string) {
	delete(s.values, key)
}

// Len returns the number of stored properties.
func (s *PropertyStore) Len() int {
	return len(s.values)
}

// Keys returns all property keys in sorted order.
func (s *PropertyStore) Keys() []string {
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
