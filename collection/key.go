package collection

import (
	"math"
	"strconv"
)

// Kind identifies the concrete type stored in a Key.
type Kind uint8

const (
	// KindInvalid represents a key that carries no meaningful value.
	KindInvalid Kind = iota
	// KindInt represents an integer key.
	KindInt
	// KindFloat represents a float key.
	KindFloat
	// KindString represents a string key.
	KindString
	// KindBool represents a boolean key.
	KindBool
)

// Key is a small typed value used as an index key.
//
// The representation is designed to make indexing fast and predictable:
// no reflection and no fmt-based stringification.
type Key struct {
	Kind Kind    `json:"k"`
	I64  int64   `json:"i,omitempty"`
	F64  float64 `json:"f,omitempty"`
	S    string  `json:"s,omitempty"`
	B    bool    `json:"b,omitempty"`
}

// Int returns an int64 Key.
func Int(v int64) Key { return Key{Kind: KindInt, I64: v} }

// Float returns a float64 Key.
func Float(v float64) Key { return Key{Kind: KindFloat, F64: v} }

// String returns a string Key.
func String(v string) Key { return Key{Kind: KindString, S: v} }

// Bool returns a boolean Key.
func Bool(v bool) Key { return Key{Kind: KindBool, B: v} }

// KeyOf wraps one or more keys as a projection result, so scalar
// projections read the same as multi-valued ones.
func KeyOf(keys ...Key) []Key { return keys }

// Valid reports whether the key may be inserted into an index.
//
// Keys with no meaningful value are skipped per-key at insertion time:
// the zero (invalid) kind and NaN floats. Empty strings are valid keys.
func (k Key) Valid() bool {
	switch k.Kind {
	case KindInvalid:
		return false
	case KindFloat:
		return !math.IsNaN(k.F64)
	default:
		return true
	}
}

// MapKey returns a stable string representation for use in maps.
//
// The kind prefix keeps key spaces disjoint: Int(1) and String("1") never
// collide.
func (k Key) MapKey() string {
	switch k.Kind {
	case KindInt:
		return "i:" + strconv.FormatInt(k.I64, 10)
	case KindFloat:
		return "f:" + strconv.FormatUint(math.Float64bits(k.F64), 16)
	case KindString:
		return "s:" + k.S
	case KindBool:
		if k.B {
			return "b:1"
		}
		return "b:0"
	default:
		return "invalid"
	}
}

// String returns a human-readable representation of the key value.
func (k Key) String() string {
	switch k.Kind {
	case KindInt:
		return strconv.FormatInt(k.I64, 10)
	case KindFloat:
		return strconv.FormatFloat(k.F64, 'g', -1, 64)
	case KindString:
		return k.S
	case KindBool:
		return strconv.FormatBool(k.B)
	default:
		return "<invalid>"
	}
}

// AsInt64 returns the int64 value if Kind is KindInt.
func (k Key) AsInt64() (int64, bool) {
	if k.Kind != KindInt {
		return 0, false
	}
	return k.I64, true
}

// AsFloat64 returns the float64 value if Kind is KindFloat.
func (k Key) AsFloat64() (float64, bool) {
	if k.Kind != KindFloat {
		return 0, false
	}
	return k.F64, true
}

// AsString returns the string value if Kind is KindString.
func (k Key) AsString() (string, bool) {
	if k.Kind != KindString {
		return "", false
	}
	return k.S, true
}

// AsBool returns the boolean value if Kind is KindBool.
func (k Key) AsBool() (bool, bool) {
	if k.Kind != KindBool {
		return false, false
	}
	return k.B, true
}
