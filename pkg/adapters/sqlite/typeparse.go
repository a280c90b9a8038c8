package sqlite

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// NativeType is a parsed column type declaration such as DECIMAL(10, 2).
type NativeType struct {
	Name      string // base type name, whitespace collapsed, original case
	Length    *int   // first size argument
	Precision *int   // second size argument (digits after the decimal point)
}

// nativeTypePattern matches: name ["(" int ["," int] ")"].
// Names may contain spaces, e.g. DOUBLE PRECISION or UNSIGNED BIG INT.
var nativeTypePattern = regexp.MustCompile(
	`^\s*([A-Za-z_][A-Za-z0-9_ ]*?)\s*(?:\(\s*([+-]?\d+)\s*(?:,\s*([+-]?\d+)\s*)?\))?\s*$`,
)

// ParseNativeType parses a declared column type. An empty declaration is
// valid and yields an empty name. Anything else that does not match the
// grammar is an error.
func ParseNativeType(s string) (NativeType, error) {
	if strings.TrimSpace(s) == "" {
		return NativeType{}, nil
	}

	m := nativeTypePattern.FindStringSubmatch(s)
	if m == nil {
		return NativeType{}, fmt.Errorf("invalid column type %q", s)
	}

	nt := NativeType{Name: strings.Join(strings.Fields(m[1]), " ")}
	var err error
	if nt.Length, err = parseSize(m[2]); err != nil {
		return NativeType{}, fmt.Errorf("invalid column type %q: %w", s, err)
	}
	if nt.Precision, err = parseSize(m[3]); err != nil {
		return NativeType{}, fmt.Errorf("invalid column type %q: %w", s, err)
	}
	return nt, nil
}

func parseSize(s string) (*int, error) {
	if s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, err
	}
	return &n, nil
}
