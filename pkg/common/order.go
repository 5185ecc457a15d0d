package common

import (
	"fmt"
	"time"

	"github.com/peter-kozarec/barsim/pkg/utility/fixed"
)

type OrderId = int64
type OrderSide int
type OrderStatus string

const (
	OrderSideBuy OrderSide = iota
	OrderSideSell
)

func (s OrderSide) String() string {
	if s == OrderSideSell {
		return "sell"
	}
	return "buy"
}

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusFilled    OrderStatus = "filled"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// OrderKind is a closed set, every switch over it must cover all four kinds
type OrderKind uint8

const (
	OrderKindMarketBuy OrderKind = iota
	OrderKindMarketSell
	OrderKindLimitBuy
	OrderKindLimitSell
)

var OrderKinds = [...]OrderKind{OrderKindMarketBuy, OrderKindMarketSell, OrderKindLimitBuy, OrderKindLimitSell}

var orderKindNames = [...]string{
	OrderKindMarketBuy:  "market_buy",
	OrderKindMarketSell: "market_sell",
	OrderKindLimitBuy:   "limit_buy",
	OrderKindLimitSell:  "limit_sell",
}

func (k OrderKind) Valid() bool {
	return int(k) < len(orderKindNames)
}

func (k OrderKind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("order_kind(%d)", uint8(k))
	}
	return orderKindNames[k]
}

func (k OrderKind) Side() OrderSide {
	switch k {
	case OrderKindMarketSell, OrderKindLimitSell:
		return OrderSideSell
	default:
		return OrderSideBuy
	}
}

func (k OrderKind) IsLimit() bool {
	return k == OrderKindLimitBuy || k == OrderKindLimitSell
}

func (k OrderKind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("unknown order kind %d", uint8(k))
	}
	return []byte(k.String()), nil
}

func (k *OrderKind) UnmarshalText(text []byte) error {
	for i, name := range orderKindNames {
		if name == string(text) {
			*k = OrderKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown order kind %q", string(text))
}

type Order struct {
	Id         OrderId     `json:"id"`
	Symbol     string      `json:"symbol"`
	Kind       OrderKind   `json:"kind"`
	Volume     fixed.Point `json:"volume"`
	LimitPrice fixed.Point `json:"limit_price"`
	ExpiresAt  time.Time   `json:"expires_at"`
	Status     OrderStatus `json:"status"`
	Source     string      `json:"src,omitempty"`
	TimeStamp  time.Time   `json:"ts"`

	FillPrice      fixed.Point `json:"fill_price"`
	RequestedPrice fixed.Point `json:"requested_price"`
	Size           fixed.Point `json:"size"`
	Commission     fixed.Point `json:"commission"`
	ClosedAt       time.Time   `json:"closed_at"`
}

// Expired reports whether the order has an expiry which lies before now
func (o Order) Expired(now time.Time) bool {
	return !o.ExpiresAt.IsZero() && now.After(o.ExpiresAt)
}
