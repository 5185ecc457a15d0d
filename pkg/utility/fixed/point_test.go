package fixed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedPoint_FromInt64(t *testing.T) {
	tests := []struct {
		name  string
		value int64
		scale int
		want  string
	}{
		{"zero", 0, 0, "0"},
		{"positive", 123, 0, "123"},
		{"negative", -456, 0, "-456"},
		{"with scale", 123, 2, "1.23"},
		{"negative with scale", -456, 3, "-0.456"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FromInt64(tt.value, tt.scale).String())
		})
	}
}

func TestFixedPoint_Parse(t *testing.T) {
	p, err := Parse("101.25")
	require.NoError(t, err)
	assert.True(t, p.Eq(FromInt(10125, 2)))

	_, err = Parse("abc")
	assert.Error(t, err)

	assert.Panics(t, func() { MustParse("1.2.3") })
}

func TestFixedPoint_Arithmetic(t *testing.T) {
	a := FromInt(150, 2)
	b := Two

	assert.True(t, a.Add(b).Eq(FromInt(350, 2)))
	assert.True(t, a.Sub(b).Eq(FromInt(-50, 2)))
	assert.True(t, a.Mul(b).Eq(FromInt(3, 0)))
	assert.True(t, a.Div(b).Eq(FromInt(75, 2)))
	assert.True(t, a.MulInt(4).Eq(FromInt(6, 0)))
	assert.True(t, a.DivInt(3).Eq(FromInt(5, 1)))
	assert.True(t, a.Neg().Abs().Eq(a))
}

func TestFixedPoint_DivOrZero(t *testing.T) {
	assert.True(t, Ten.DivOrZero(Zero).IsZero())
	assert.True(t, Ten.DivOrZero(Two).Eq(FromInt(5, 0)))
	assert.Panics(t, func() { Ten.Div(Zero) })
}

func TestFixedPoint_Comparison(t *testing.T) {
	tests := []struct {
		name string
		got  bool
		want bool
	}{
		{"1 < 2", One.Lt(Two), true},
		{"2 > 1", Two.Gt(One), true},
		{"1 <= 1", One.Lte(One), true},
		{"1 >= 2", One.Gte(Two), false},
		{"1.0 == 1", FromInt(10, 1).Eq(One), true},
		{"-1 is neg", NegOne.IsNeg(), true},
		{"0 is pos", Zero.IsPos(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestFixedPoint_MinMax(t *testing.T) {
	assert.True(t, One.Min(Two).Eq(One))
	assert.True(t, One.Max(Two).Eq(Two))
	assert.True(t, NegOne.Max(Zero).IsZero())
}

func TestFixedPoint_Floor(t *testing.T) {
	tests := []struct {
		name  string
		value Point
		scale int
		want  Point
	}{
		{"integer volume", MustParse("12.999"), 0, FromInt(12, 0)},
		{"two decimals", MustParse("0.0499"), 2, FromInt(4, 2)},
		{"already scaled", MustParse("3.5"), 2, MustParse("3.5")},
		{"negative", MustParse("-1.25"), 1, MustParse("-1.3")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.value.Floor(tt.scale).Eq(tt.want), "got %s", tt.value.Floor(tt.scale))
		})
	}
}

func TestFixedPoint_Text(t *testing.T) {
	text, err := FromInt(12345, 3).MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "12.345", string(text))

	var p Point
	require.NoError(t, p.UnmarshalText([]byte("0.001")))
	assert.True(t, p.Eq(FromInt(1, 3)))
	assert.Error(t, p.UnmarshalText([]byte("x")))
}
