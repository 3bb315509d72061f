package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Number is a leniently decoded numeric API field. The backend is not
// consistent about types, so a field may arrive as a number, a numeric
// string, junk text, a boolean, null, or not at all.
type Number struct {
	Value   float64
	Raw     string
	Present bool
	Null    bool
	quoted  bool
}

// Num builds a set numeric value.
func Num(v float64) Number {
	return Number{Value: v, Raw: strconv.FormatFloat(v, 'f', -1, 64), Present: true}
}

// NumText builds a value as if the API had sent it as a string.
func NumText(s string) Number {
	return Number{Value: parseNumeric(s), Raw: s, Present: true, quoted: true}
}

// NullNumber builds an explicit JSON null.
func NullNumber() Number {
	return Number{Present: true, Null: true}
}

// IsSet reports whether the field carried a non-null value.
func (n Number) IsSet() bool {
	return n.Present && !n.Null
}

// IsNaN reports whether a set value failed to parse as a number.
func (n Number) IsNaN() bool {
	return n.IsSet() && math.IsNaN(n.Value)
}

// IsLiteral reports a value that arrived as a bare JSON number.
func (n Number) IsLiteral() bool {
	return n.IsSet() && !n.quoted && n.Raw != "true" && n.Raw != "false"
}

// Float returns the numeric value; unset fields read as NaN.
func (n Number) Float() float64 {
	if !n.IsSet() {
		return math.NaN()
	}
	return n.Value
}

// Or returns n when it is set and fallback otherwise.
func (n Number) Or(fallback Number) Number {
	if n.IsSet() {
		return n
	}
	return fallback
}

// Key returns a lookup key for id matching; ok is false when the value
// cannot match anything.
func (n Number) Key() (float64, bool) {
	if !n.IsSet() || math.IsNaN(n.Value) {
		return 0, false
	}
	return n.Value, true
}

// String renders the value the way it arrived, or "" when unset.
func (n Number) String() string {
	if !n.IsSet() {
		return ""
	}
	return n.Raw
}

// UnmarshalJSON accepts any JSON value and never fails on content.
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*n = Number{Present: true}

	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		n.Null = true
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			n.Raw = string(data)
			n.Value = math.NaN()
			n.quoted = true
			return nil
		}
		n.Raw = s
		n.Value = parseNumeric(s)
		n.quoted = true
	case bytes.Equal(data, []byte("true")):
		n.Raw, n.Value = "true", 1
	case bytes.Equal(data, []byte("false")):
		n.Raw, n.Value = "false", 0
	case data[0] == '{' || data[0] == '[':
		n.Raw = string(data)
		n.Value = math.NaN()
		n.quoted = true
	default:
		v, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			v = math.NaN()
		}
		n.Raw = string(data)
		n.Value = v
	}

	return nil
}

// MarshalJSON writes unset values as null and keeps the arrival form otherwise.
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.IsSet() {
		return []byte("null"), nil
	}
	if n.quoted || math.IsNaN(n.Value) || math.IsInf(n.Value, 0) {
		return json.Marshal(n.Raw)
	}
	return []byte(n.Raw), nil
}

// parseNumeric mirrors the browser's Number(string): surrounding
// whitespace is ignored, an empty string is zero, junk is NaN.
func parseNumeric(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// Text is a leniently decoded string field: numbers and booleans keep
// their literal text, null reads as empty.
type Text string

// UnmarshalJSON never fails on content.
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err == nil {
			*t = Text(s)
			return nil
		}
	}
	*t = Text(data)
	return nil
}

func (t Text) String() string {
	return string(t)
}

// Flag is a leniently decoded boolean using JavaScript truthiness: false,
// 0, "", null and a missing field are false; any other value is true.
type Flag bool

// UnmarshalJSON never fails on content.
func (f *Flag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0, bytes.Equal(data, []byte("null")), bytes.Equal(data, []byte("false")):
		*f = false
	case bytes.Equal(data, []byte("true")):
		*f = true
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*f = len(data) > 2
			return nil
		}
		*f = s != ""
	case data[0] == '{' || data[0] == '[':
		*f = true
	default:
		v, err := strconv.ParseFloat(string(data), 64)
		*f = Flag(err != nil || (v != 0 && !math.IsNaN(v)))
	}
	return nil
}

func (f Flag) Bool() bool {
	return bool(f)
}
