package value

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Tier identifies the interpretation a coerced value ended up in.
type Tier uint8

const (
	// TierRaw means no interpretation applied and the value was passed through.
	TierRaw Tier = 0
	// TierInteger means the value is an int64 or uint64.
	TierInteger Tier = 1
	// TierFloat means the value is a float64.
	TierFloat Tier = 2
	// TierText means the value is a string.
	TierText Tier = 3
)

// String returns the tier name.
func (t Tier) String() string {
	switch t {
	case TierRaw:
		return "raw"
	case TierInteger:
		return "integer"
	case TierFloat:
		return "float"
	case TierText:
		return "text"
	default:
		return "unknown"
	}
}

// Coerce casts raw to an integer, a float or text, in that order of
// preference. If none applies, raw is returned as is.
func Coerce(raw any) any {
	if v, ok := asInteger(raw); ok {
		return v
	}
	if v, ok := asFloat(raw); ok {
		return v
	}
	if v, ok := asText(raw); ok {
		return v
	}
	return raw
}

// KindOf reports which tier an already coerced value belongs to.
func KindOf(v any) Tier {
	switch v.(type) {
	case int64, uint64:
		return TierInteger
	case float64:
		return TierFloat
	case string:
		return TierText
	default:
		return TierRaw
	}
}

func asInteger(raw any) (any, bool) {
	switch v := raw.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		return fromUnsigned(uint64(v)), true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		return fromUnsigned(v), true
	case string:
		return parseInteger(v)
	case []byte:
		if !utf8.Valid(v) {
			return nil, false
		}
		return parseInteger(string(v))
	}
	return nil, false
}

// fromUnsigned keeps counters that exceed int64 as uint64.
func fromUnsigned(v uint64) any {
	if v > math.MaxInt64 {
		return v
	}
	return int64(v)
}

func parseInteger(s string) (any, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, true
	}
	if u, err := strconv.ParseUint(strings.TrimPrefix(s, "+"), 10, 64); err == nil {
		return u, true
	}
	return nil, false
}

func asFloat(raw any) (any, bool) {
	switch v := raw.(type) {
	case float32:
		return float64(v), true
	case float64:
		return v, true
	case string:
		return parseFloat(v)
	case []byte:
		if !utf8.Valid(v) {
			return nil, false
		}
		return parseFloat(string(v))
	}
	return nil, false
}

func parseFloat(s string) (any, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, false
	}
	return f, true
}

func asText(raw any) (any, bool) {
	switch v := raw.(type) {
	case string:
		return v, true
	case []byte:
		if !utf8.Valid(v) {
			return nil, false
		}
		return string(v), true
	case fmt.Stringer:
		return safeString(v)
	}
	return nil, false
}

// safeString guards against Stringer implementations that panic, such as
// methods on a nil pointer receiver.
func safeString(s fmt.Stringer) (out any, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			out, ok = nil, false
		}
	}()
	return s.String(), true
}
