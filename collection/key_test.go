package collection

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey_Valid(t *testing.T) {
	tests := []struct {
		name string
		key  Key
		want bool
	}{
		{"int", Int(42), true},
		{"negative int", Int(-1), true},
		{"float", Float(1.5), true},
		{"nan float", Float(math.NaN()), false},
		{"string", String("x"), true},
		{"empty string", String(""), true},
		{"bool", Bool(false), true},
		{"zero value", Key{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.key.Valid())
		})
	}
}

func TestKey_MapKeyStability(t *testing.T) {
	assert.Equal(t, Int(7).MapKey(), Int(7).MapKey())
	assert.NotEqual(t, Int(7).MapKey(), Int(8).MapKey())
	assert.NotEqual(t, Int(1).MapKey(), String("1").MapKey())
	assert.NotEqual(t, Float(1).MapKey(), Int(1).MapKey())
	assert.NotEqual(t, Bool(true).MapKey(), Bool(false).MapKey())
}

func TestKey_Accessors(t *testing.T) {
	i, ok := Int(9).AsInt64()
	assert.True(t, ok)
	assert.Equal(t, int64(9), i)

	_, ok = String("s").AsInt64()
	assert.False(t, ok)

	s, ok := String("s").AsString()
	assert.True(t, ok)
	assert.Equal(t, "s", s)

	f, ok := Float(2.5).AsFloat64()
	assert.True(t, ok)
	assert.Equal(t, 2.5, f)

	b, ok := Bool(true).AsBool()
	assert.True(t, ok)
	assert.True(t, b)
}

func TestKey_String(t *testing.T) {
	assert.Equal(t, "42", Int(42).String())
	assert.Equal(t, "hello", String("hello").String())
	assert.Equal(t, "true", Bool(true).String())
	assert.Equal(t, "<invalid>", Key{}.String())
}
