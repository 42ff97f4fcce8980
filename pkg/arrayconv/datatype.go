// Package arrayconv converts between raw byte buffers and typed numeric arrays.
// Conversions honor byte order, per-side strides and offsets, and derive the
// copy length from the buffer sizes when none is given.
package arrayconv

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// DataType tags the numeric format of an array
type DataType int

const (
	Undefined DataType = iota
	Byte
	Short
	Int
	Long
	Float
	Double
)

var dataTypeNames = map[DataType]string{
	Undefined: "undefined",
	Byte:      "byte",
	Short:     "short",
	Int:       "int",
	Long:      "long",
	Float:     "float",
	Double:    "double",
}

// aliases accepted by ParseDataType in addition to the canonical names
var dataTypeAliases = map[string]DataType{
	"int8":    Byte,
	"uint8":   Byte,
	"int16":   Short,
	"int32":   Int,
	"int64":   Long,
	"float32": Float,
	"float64": Double,
}

// Size returns the width of one element in bytes, 0 for Undefined
func (t DataType) Size() int {
	switch t {
	case Byte:
		return 1
	case Short:
		return 2
	case Int, Float:
		return 4
	case Long, Double:
		return 8
	default:
		return 0
	}
}

func (t DataType) String() string {
	if s, ok := dataTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("DataType(%d)", int(t))
}

// ParseDataType parses a type name such as "short" or "int16".
func ParseDataType(s string) (DataType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for t, name := range dataTypeNames {
		if name == s && t != Undefined {
			return t, nil
		}
	}
	if t, ok := dataTypeAliases[s]; ok {
		return t, nil
	}
	return Undefined, fmt.Errorf("unsupported data type: %q", s)
}

// TypeOf returns the tag of a typed slice, Undefined for anything else.
func TypeOf(v any) DataType {
	switch v.(type) {
	case []byte:
		return Byte
	case []int16:
		return Short
	case []int32:
		return Int
	case []int64:
		return Long
	case []float32:
		return Float
	case []float64:
		return Double
	default:
		return Undefined
	}
}

// MarshalYAML implements yaml.Marshaler
func (t DataType) MarshalYAML() (interface{}, error) {
	return t.String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler
func (t *DataType) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseDataType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
