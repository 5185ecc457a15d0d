package common

import (
	"errors"
	"time"

	"github.com/peter-kozarec/barsim/pkg/utility/fixed"
)

var ErrInvalidSignal = errors.New("invalid signal")

type Signal struct {
	Source     string      `json:"source,omitempty"`
	Symbol     string      `json:"symbol"`
	Kind       OrderKind   `json:"kind"`
	LimitPrice fixed.Point `json:"limit_price"`
	ExpiresAt  time.Time   `json:"expires_at"`
	TimeStamp  time.Time   `json:"ts"`
	Comment    string      `json:"comment,omitempty"`
}

func (s Signal) Validate() error {
	if !s.Kind.Valid() {
		return ErrInvalidSignal
	}
	if s.Kind.IsLimit() && !s.LimitPrice.IsPos() {
		return ErrInvalidSignal
	}
	return nil
}
