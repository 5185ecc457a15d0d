package utility

import (
	"errors"
	"math"
)

var ErrIntegerOverflow = errors.New("integer overflow")

func U64ToI64(i uint64) (int64, error) {
	if i <= uint64(math.MaxInt64) {
		return int64(i), nil // #nosec G115
	}
	return 0, ErrIntegerOverflow
}

func U64ToI64Unsafe(i uint64) int64 {
	v, err := U64ToI64(i)
	if err != nil {
		panic(err)
	}
	return v
}

func IntToUint(i int) (uint, error) {
	if i >= 0 {
		return uint(i), nil // #nosec G115
	}
	return 0, ErrIntegerOverflow
}
