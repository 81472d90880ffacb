// internal/features/rawvalue.go
package features

import (
	"strconv"
	"strings"
)

// Kind identifies the underlying type carried by a RawValue.
type Kind int

const (
	KindNil Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
)

// RawValue is a tagged variant over the value types that survive JSON
// decoding. Coercion methods never panic; they report failure instead.
type RawValue struct {
	kind Kind
	s    string
	i    int64
	f    float64
	b    bool
}

func FromJSON(v interface{}) RawValue {
	switch val := v.(type) {
	case nil:
		return RawValue{kind: KindNil}
	case string:
		return RawValue{kind: KindString, s: val}
	case bool:
		return RawValue{kind: KindBool, b: val}
	case float64:
		return RawValue{kind: KindFloat, f: val}
	case float32:
		return RawValue{kind: KindFloat, f: float64(val)}
	case int:
		return RawValue{kind: KindInt, i: int64(val)}
	case int32:
		return RawValue{kind: KindInt, i: int64(val)}
	case int64:
		return RawValue{kind: KindInt, i: val}
	default:
		return RawValue{kind: KindNil}
	}
}

func (v RawValue) Kind() Kind {
	return v.kind
}

func (v RawValue) IsNil() bool {
	return v.kind == KindNil
}

// Int coerces to an integer. Floats truncate toward zero and numeric
// strings are accepted, so "24.0" and 24.0 both yield 24.
func (v RawValue) Int() (int, bool) {
	switch v.kind {
	case KindInt:
		return int(v.i), true
	case KindFloat:
		return int(v.f), true
	case KindString:
		cleaned := strings.TrimSpace(strings.ReplaceAll(v.s, ",", ""))
		if f, err := strconv.ParseFloat(cleaned, 64); err == nil {
			return int(f), true
		}
		return 0, false
	default:
		return 0, false
	}
}

// Float coerces to a float64; numeric strings are accepted.
func (v RawValue) Float() (float64, bool) {
	switch v.kind {
	case KindFloat:
		return v.f, true
	case KindInt:
		return float64(v.i), true
	case KindString:
		cleaned := strings.TrimSpace(strings.ReplaceAll(v.s, ",", ""))
		if f, err := strconv.ParseFloat(cleaned, 64); err == nil {
			return f, true
		}
		return 0, false
	default:
		return 0, false
	}
}

var truthyStrings = map[string]bool{
	"yes":  true,
	"y":    true,
	"true": true,
	"1":    true,
}

// Bool coerces to a boolean. Only the truthy string set maps to true;
// anything unrecognized is false rather than an error.
func (v RawValue) Bool() bool {
	switch v.kind {
	case KindBool:
		return v.b
	case KindString:
		return truthyStrings[strings.ToLower(strings.TrimSpace(v.s))]
	default:
		return false
	}
}

func (v RawValue) String() string {
	switch v.kind {
	case KindString:
		return v.s
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return ""
	}
}
