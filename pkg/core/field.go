package core

import "fmt"

// LogicalType is the backend-agnostic type of a field.
type LogicalType int

// LogicalType constants.
const (
	TypeDefault LogicalType = iota
	TypeID
	TypeSerial
	TypeInteger
	TypeFloat
	TypeDecimal
	TypeBoolean
	TypeDate
	TypeDateTime
	TypeString
	TypeNull
)

var logicalTypeNames = [...]string{
	TypeDefault:  "default",
	TypeID:       "id",
	TypeSerial:   "serial",
	TypeInteger:  "integer",
	TypeFloat:    "float",
	TypeDecimal:  "decimal",
	TypeBoolean:  "boolean",
	TypeDate:     "date",
	TypeDateTime: "datetime",
	TypeString:   "string",
	TypeNull:     "null",
}

// String returns the logical type name used by the schema layer.
func (t LogicalType) String() string {
	if t < 0 || int(t) >= len(logicalTypeNames) {
		return "unknown"
	}
	return logicalTypeNames[t]
}

// IsInteger reports whether t stores whole numbers.
func (t LogicalType) IsInteger() bool {
	return t == TypeID || t == TypeSerial || t == TypeInteger
}

// ParseLogicalType returns the logical type with the given name.
func ParseLogicalType(name string) (LogicalType, error) {
	for i, n := range logicalTypeNames {
		if n == name {
			return LogicalType(i), nil
		}
	}
	return TypeDefault, fmt.Errorf("unknown logical type %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (t LogicalType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *LogicalType) UnmarshalText(b []byte) error {
	parsed, err := ParseLogicalType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Field describes a single column of a table.
type Field struct {
	Name string      `json:"name" yaml:"name"`
	Type LogicalType `json:"type" yaml:"type"`

	// Use is the physical storage type reported by the backend (e.g. "varchar").
	Use string `json:"use,omitempty" yaml:"use,omitempty"`

	Length    *int `json:"length,omitempty" yaml:"length,omitempty"`
	Precision *int `json:"precision,omitempty" yaml:"precision,omitempty"`

	Nullable   bool `json:"nullable" yaml:"nullable"`
	Default    any  `json:"default" yaml:"default"`
	Array      bool `json:"array,omitempty" yaml:"array,omitempty"`
	PrimaryKey bool `json:"primary_key,omitempty" yaml:"primary_key,omitempty"`
}

// Schema is the structure of one table.
type Schema struct {
	Name   string  `json:"name" yaml:"name"`
	Fields []Field `json:"fields" yaml:"fields"`
}

// Field returns the field with the given name.
func (s *Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Direction selects which way a value is converted.
type Direction int

// Direction constants.
const (
	// ToDatasource produces SQL literal text.
	ToDatasource Direction = iota
	// ToApplication produces a typed Go value from a backend value.
	ToApplication
)
