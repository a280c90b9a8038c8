package sqlite

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/leapstack-labs/leapsqlite/pkg/core"
	"github.com/shopspring/decimal"
)

const (
	dateLayout     = "2006-01-02"
	datetimeLayout = "2006-01-02 15:04:05"
)

// timeLayouts are tried in order when parsing text into a time.
// Layouts without a zone are read as UTC.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	dateLayout,
}

// Converter maps values between logical types and SQLite.
//
// ToDatasource renders SQL literal text; ToApplication produces typed Go
// values from what the driver returned. Both directions are pure.
type Converter struct{}

// Convert converts v for field f in the given direction.
func (c Converter) Convert(dir core.Direction, f core.Field, v any) (any, error) {
	switch dir {
	case core.ToDatasource:
		return c.ToDatasource(f, v)
	case core.ToApplication:
		return c.ToApplication(f, v)
	default:
		return nil, fmt.Errorf("unknown conversion direction %d", dir)
	}
}

// ToDatasource renders v as a SQLite literal for field f.
func (Converter) ToDatasource(f core.Field, v any) (string, error) {
	if v == nil {
		return "NULL", nil
	}

	switch f.Type {
	case core.TypeNull:
		return "NULL", nil

	case core.TypeID, core.TypeSerial, core.TypeInteger:
		n, err := toInt64(v)
		if err != nil {
			return "", invalid(f, v, err)
		}
		return strconv.FormatInt(n, 10), nil

	case core.TypeFloat:
		x, err := toFloat64(v)
		if err != nil {
			return "", invalid(f, v, err)
		}
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return "", invalid(f, v, fmt.Errorf("non-finite float"))
		}
		return strconv.FormatFloat(x, 'g', -1, 64), nil

	case core.TypeDecimal:
		d, err := toDecimal(v)
		if err != nil {
			return "", invalid(f, v, err)
		}
		return formatDecimal(d, f.Precision), nil

	case core.TypeBoolean:
		b, err := toBool(v)
		if err != nil {
			return "", invalid(f, v, err)
		}
		if b {
			return "1", nil
		}
		return "0", nil

	case core.TypeDate:
		t, err := toTime(v)
		if err != nil {
			return "", invalid(f, v, err)
		}
		return quoteString(t.Format(dateLayout)), nil

	case core.TypeDateTime:
		t, err := toTime(v)
		if err != nil {
			return "", invalid(f, v, err)
		}
		return quoteString(t.UTC().Format(datetimeLayout)), nil

	case core.TypeString, core.TypeDefault:
		return quoteString(toText(v)), nil

	default:
		return "", fmt.Errorf("%w: unknown logical type %s", core.ErrInvalidValue, f.Type)
	}
}

// ToApplication converts a value returned by SQLite into the Go type of field f.
func (Converter) ToApplication(f core.Field, v any) (any, error) {
	if v == nil {
		return nil, nil
	}

	switch f.Type {
	case core.TypeNull:
		return nil, nil

	case core.TypeID, core.TypeSerial, core.TypeInteger:
		n, err := toInt64(v)
		if err != nil {
			return nil, invalid(f, v, err)
		}
		return n, nil

	case core.TypeFloat:
		x, err := toFloat64(v)
		if err != nil {
			return nil, invalid(f, v, err)
		}
		return x, nil

	case core.TypeDecimal:
		d, err := toDecimal(v)
		if err != nil {
			return nil, invalid(f, v, err)
		}
		return formatDecimal(d, f.Precision), nil

	case core.TypeBoolean:
		b, err := toBool(v)
		if err != nil {
			return nil, invalid(f, v, err)
		}
		return b, nil

	case core.TypeDate:
		t, err := toTime(v)
		if err != nil {
			return nil, invalid(f, v, err)
		}
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil

	case core.TypeDateTime:
		t, err := toTime(v)
		if err != nil {
			return nil, invalid(f, v, err)
		}
		return t.UTC(), nil

	case core.TypeString, core.TypeDefault:
		return v, nil

	default:
		return nil, fmt.Errorf("%w: unknown logical type %s", core.ErrInvalidValue, f.Type)
	}
}

func invalid(f core.Field, v any, err error) error {
	if f.Name != "" {
		return fmt.Errorf("%w: column %q: cannot convert %T to %s: %v", core.ErrInvalidValue, f.Name, v, f.Type, err)
	}
	return fmt.Errorf("%w: cannot convert %T to %s: %v", core.ErrInvalidValue, v, f.Type, err)
}

// quoteString wraps s in single quotes, doubling embedded quotes.
func quoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func formatDecimal(d decimal.Decimal, precision *int) string {
	if precision != nil && *precision >= 0 {
		return d.StringFixed(int32(*precision)) //nolint:gosec // precision comes from a parsed type declaration
	}
	return d.String()
}

func toText(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case []byte:
		return string(val)
	case time.Time:
		return val.UTC().Format(datetimeLayout)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

func toInt64(v any) (int64, error) {
	switch val := v.(type) {
	case int:
		return int64(val), nil
	case int8:
		return int64(val), nil
	case int16:
		return int64(val), nil
	case int32:
		return int64(val), nil
	case int64:
		return val, nil
	case uint:
		return uintToInt64(uint64(val))
	case uint8:
		return int64(val), nil
	case uint16:
		return int64(val), nil
	case uint32:
		return int64(val), nil
	case uint64:
		return uintToInt64(val)
	case float32:
		return floatToInt64(float64(val))
	case float64:
		return floatToInt64(val)
	case bool:
		if val {
			return 1, nil
		}
		return 0, nil
	case decimal.Decimal:
		if !val.IsInteger() {
			return 0, fmt.Errorf("%s is not a whole number", val)
		}
		return val.IntPart(), nil
	case json.Number:
		return parseIntText(val.String())
	case string:
		return parseIntText(val)
	case []byte:
		return parseIntText(string(val))
	default:
		return 0, fmt.Errorf("unsupported type")
	}
}

func uintToInt64(u uint64) (int64, error) {
	if u > math.MaxInt64 {
		return 0, fmt.Errorf("%d overflows int64", u)
	}
	return int64(u), nil
}

func floatToInt64(x float64) (int64, error) {
	if math.IsNaN(x) || math.IsInf(x, 0) || x != math.Trunc(x) {
		return 0, fmt.Errorf("%v is not a whole number", x)
	}
	if x < math.MinInt64 || x >= math.MaxInt64 {
		return 0, fmt.Errorf("%v overflows int64", x)
	}
	return int64(x), nil
}

// parseIntText accepts base-10 integers and integral decimals such as "3.0".
func parseIntText(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%q is not an integer", s)
	}
	if !d.IsInteger() {
		return 0, fmt.Errorf("%q is not a whole number", s)
	}
	if d.GreaterThan(decimal.NewFromInt(math.MaxInt64)) || d.LessThan(decimal.NewFromInt(math.MinInt64)) {
		return 0, fmt.Errorf("%q overflows int64", s)
	}
	return d.IntPart(), nil
}

func toFloat64(v any) (float64, error) {
	switch val := v.(type) {
	case float64:
		return val, nil
	case float32:
		return float64(val), nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		n, err := toDecimal(val)
		if err != nil {
			return 0, err
		}
		return n.InexactFloat64(), nil
	case decimal.Decimal:
		return val.InexactFloat64(), nil
	case json.Number:
		return strconv.ParseFloat(val.String(), 64)
	case string:
		return strconv.ParseFloat(strings.TrimSpace(val), 64)
	case []byte:
		return strconv.ParseFloat(strings.TrimSpace(string(val)), 64)
	default:
		return 0, fmt.Errorf("unsupported type")
	}
}

func toDecimal(v any) (decimal.Decimal, error) {
	switch val := v.(type) {
	case decimal.Decimal:
		return val, nil
	case int:
		return decimal.NewFromInt(int64(val)), nil
	case int8:
		return decimal.NewFromInt(int64(val)), nil
	case int16:
		return decimal.NewFromInt(int64(val)), nil
	case int32:
		return decimal.NewFromInt32(val), nil
	case int64:
		return decimal.NewFromInt(val), nil
	case uint:
		return decimal.NewFromUint64(uint64(val)), nil
	case uint8:
		return decimal.NewFromUint64(uint64(val)), nil
	case uint16:
		return decimal.NewFromUint64(uint64(val)), nil
	case uint32:
		return decimal.NewFromUint64(uint64(val)), nil
	case uint64:
		return decimal.NewFromUint64(val), nil
	case float32:
		return floatToDecimal(float64(val))
	case float64:
		return floatToDecimal(val)
	case json.Number:
		return decimal.NewFromString(val.String())
	case string:
		return decimal.NewFromString(strings.TrimSpace(val))
	case []byte:
		return decimal.NewFromString(strings.TrimSpace(string(val)))
	default:
		return decimal.Decimal{}, fmt.Errorf("unsupported type")
	}
}

func floatToDecimal(x float64) (decimal.Decimal, error) {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return decimal.Decimal{}, fmt.Errorf("non-finite float")
	}
	return decimal.NewFromFloat(x), nil
}

func toBool(v any) (bool, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		return parseBoolText(val)
	case []byte:
		return parseBoolText(string(val))
	default:
		n, err := toInt64(v)
		if err != nil {
			return false, err
		}
		return n != 0, nil
	}
}

func parseBoolText(s string) (bool, error) {
	s = strings.TrimSpace(s)
	b, err := strconv.ParseBool(s)
	if err == nil {
		return b, nil
	}
	switch strings.ToLower(s) {
	case "yes", "on":
		return true, nil
	case "no", "off":
		return false, nil
	}
	return false, fmt.Errorf("%q is not a boolean", s)
}

func toTime(v any) (time.Time, error) {
	switch val := v.(type) {
	case time.Time:
		return val, nil
	case string:
		return parseTimeText(val)
	case []byte:
		return parseTimeText(string(val))
	case float32:
		return epochFloat(float64(val))
	case float64:
		return epochFloat(val)
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return time.Unix(n, 0).UTC(), nil
		}
		x, err := val.Float64()
		if err != nil {
			return time.Time{}, err
		}
		return epochFloat(x)
	default:
		n, err := toInt64(v)
		if err != nil {
			return time.Time{}, err
		}
		return time.Unix(n, 0).UTC(), nil
	}
}

// epochFloat reads fractional epoch seconds.
func epochFloat(x float64) (time.Time, error) {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return time.Time{}, fmt.Errorf("non-finite epoch")
	}
	sec, frac := math.Modf(x)
	return time.Unix(int64(sec), int64(frac*1e9)).UTC(), nil
}

func parseTimeText(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%q is not a recognized date or time", s)
}
