package codec

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"skill-swap/internal/domain/user"
)

// Int coerces any numeric representation the store may hold into an int.
// Unparseable input yields def.
func Int(v any, def int) int {
	switch n := v.(type) {
	case int:
		return n
	case int32:
		return int(n)
	case int64:
		return int(n)
	case float64:
		if n == math.Trunc(n) && !math.IsInf(n, 0) {
			return int(n)
		}
	case float32:
		f := float64(n)
		if f == math.Trunc(f) && !math.IsInf(f, 0) {
			return int(f)
		}
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i)
		}
		if f, err := n.Float64(); err == nil && f == math.Trunc(f) {
			return int(f)
		}
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return i
		}
	}
	return def
}

// Int64 is Int for 64-bit values such as epoch-millisecond timestamps.
// Unparseable input yields 0.
func Int64(v any) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case int64:
		return n
	case float64:
		if n == math.Trunc(n) && !math.IsInf(n, 0) {
			return int64(n)
		}
	case float32:
		f := float64(n)
		if f == math.Trunc(f) && !math.IsInf(f, 0) {
			return int64(f)
		}
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i
		}
		if f, err := n.Float64(); err == nil && f == math.Trunc(f) {
			return int64(f)
		}
	case string:
		if i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64); err == nil {
			return i
		}
	}
	return 0
}

// Level coerces a stored proficiency level into [MinLevel, MaxLevel],
// defaulting to MinLevel when absent or unparseable.
func Level(v any) int {
	return user.ClampLevel(Int(v, user.DefaultLevel))
}

// Priority coerces a learning priority, falling back to DefaultPriority when
// the stored value is absent or out of range.
func Priority(v any) int {
	return user.NormalizePriority(Int(v, user.DefaultPriority))
}

// Millis converts epoch milliseconds to a UTC time. Zero means unset.
func Millis(v any) time.Time {
	ms := Int64(v)
	if ms <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

func ToMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}
