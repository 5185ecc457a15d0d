package utility

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUtilityConversion_U64ToI64(t *testing.T) {
	tests := []struct {
		input    uint64
		expected int64
		hasError bool
	}{
		{0, 0, false},
		{1, 1, false},
		{math.MaxInt64, math.MaxInt64, false},
		{uint64(math.MaxInt64) + 1, 0, true},
		{math.MaxUint64, 0, true},
		{1 << 62, 1 << 62, false},
	}

	for _, tt := range tests {
		result, err := U64ToI64(tt.input)
		if tt.hasError {
			assert.ErrorIs(t, err, ErrIntegerOverflow)
			assert.Panics(t, func() { U64ToI64Unsafe(tt.input) })
			continue
		}
		assert.NoError(t, err)
		assert.Equal(t, tt.expected, result)
	}
}

func TestUtilityConversion_IntToUint(t *testing.T) {
	v, err := IntToUint(7)
	assert.NoError(t, err)
	assert.Equal(t, uint(7), v)

	_, err = IntToUint(-1)
	assert.ErrorIs(t, err, ErrIntegerOverflow)
}
