package sandbox

import (
	"errors"
	"fmt"
	"time"

	"github.com/peter-kozarec/barsim/pkg/common"
	"github.com/peter-kozarec/barsim/pkg/utility/fixed"
)

var (
	ErrEmptyOrder      = errors.New("empty order")
	ErrOrderNotFound   = errors.New("order not found")
	ErrOrderNotPending = errors.New("order is not pending")
)

type orderSet [len(common.OrderKinds)][]common.OrderId

func (s *orderSet) add(order *common.Order) {
	s[order.Kind] = append(s[order.Kind], order.Id)
}

func (s *orderSet) remove(order *common.Order) {
	ids := s[order.Kind]
	for idx, id := range ids {
		if id == order.Id {
			s[order.Kind] = append(ids[:idx], ids[idx+1:]...)
			return
		}
	}
}

func (s *orderSet) counts() KindCount {
	return KindCount{
		MarketBuy:  len(s[common.OrderKindMarketBuy]),
		MarketSell: len(s[common.OrderKindMarketSell]),
		LimitBuy:   len(s[common.OrderKindLimitBuy]),
		LimitSell:  len(s[common.OrderKindLimitSell]),
	}
}

// OrderBook owns order identity and lifecycle, every order is in exactly one of its sets
type OrderBook struct {
	latestId common.OrderId
	orders   map[common.OrderId]*common.Order

	pending   orderSet
	filled    orderSet
	cancelled orderSet
}

func NewOrderBook() *OrderBook {
	return &OrderBook{
		orders: make(map[common.OrderId]*common.Order),
	}
}

func (b *OrderBook) Place(order common.Order) (common.PendingOrder, error) {
	if !order.Kind.Valid() {
		return common.PendingOrder{}, fmt.Errorf("unable to place order: unknown kind %d", order.Kind)
	}
	if !order.Volume.IsPos() {
		return common.PendingOrder{}, ErrEmptyOrder
	}

	b.latestId++
	order.Id = b.latestId
	order.Status = common.OrderStatusPending

	b.orders[order.Id] = &order
	b.pending.add(&order)

	return common.PendingOrder{OrderId: order.Id, ExpiresAt: order.ExpiresAt}, nil
}

func (b *OrderBook) Get(id common.OrderId) (common.Order, error) {
	order, ok := b.orders[id]
	if !ok {
		return common.Order{}, fmt.Errorf("%w: %d", ErrOrderNotFound, id)
	}
	return *order, nil
}

func (b *OrderBook) Fill(id common.OrderId, fillPrice, requestedPrice, size, commission fixed.Point, at time.Time) (common.Order, error) {
	order, err := b.pendingOrder(id)
	if err != nil {
		return common.Order{}, err
	}

	order.FillPrice = fillPrice
	order.RequestedPrice = requestedPrice
	order.Size = size
	order.Commission = commission
	order.ClosedAt = at
	order.Status = common.OrderStatusFilled

	b.pending.remove(order)
	b.filled.add(order)
	return *order, nil
}

func (b *OrderBook) Cancel(id common.OrderId, at time.Time) (common.Order, error) {
	order, err := b.pendingOrder(id)
	if err != nil {
		return common.Order{}, err
	}

	order.ClosedAt = at
	order.Status = common.OrderStatusCancelled

	b.pending.remove(order)
	b.cancelled.add(order)
	return *order, nil
}

// Rearm re-issues a pending event for every live order and cancels the expired ones.
// Sell orders come first so that buy orders end up on top of a LIFO stack.
func (b *OrderBook) Rearm(now time.Time) []common.PendingOrder {
	var events []common.PendingOrder
	var expired []common.OrderId

	for _, kind := range [...]common.OrderKind{
		common.OrderKindMarketSell,
		common.OrderKindLimitSell,
		common.OrderKindMarketBuy,
		common.OrderKindLimitBuy,
	} {
		for _, id := range b.pending[kind] {
			order := b.orders[id]
			if order.Expired(now) {
				expired = append(expired, id)
				continue
			}
			events = append(events, common.PendingOrder{OrderId: id, ExpiresAt: order.ExpiresAt})
		}
	}

	for _, id := range expired {
		// Ids were collected from the pending set, cancel cannot fail
		_, _ = b.Cancel(id, now)
	}

	return events
}

// Pending returns the pending orders, ordered by kind and then by placement
func (b *OrderBook) Pending() []common.Order {
	var orders []common.Order
	for _, kind := range common.OrderKinds {
		for _, id := range b.pending[kind] {
			orders = append(orders, *b.orders[id])
		}
	}
	return orders
}

func (b *OrderBook) PendingVolume(symbol string, side common.OrderSide) fixed.Point {
	volume := fixed.Zero
	for _, kind := range common.OrderKinds {
		if kind.Side() != side {
			continue
		}
		for _, id := range b.pending[kind] {
			if order := b.orders[id]; order.Symbol == symbol {
				volume = volume.Add(order.Volume)
			}
		}
	}
	return volume
}

func (b *OrderBook) Report() BookReport {
	return BookReport{
		LatestId:  b.latestId,
		Pending:   b.pending.counts(),
		Filled:    b.filled.counts(),
		Cancelled: b.cancelled.counts(),
	}
}

func (b *OrderBook) pendingOrder(id common.OrderId) (*common.Order, error) {
	order, ok := b.orders[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrOrderNotFound, id)
	}
	if order.Status != common.OrderStatusPending {
		return nil, fmt.Errorf("%w: %d is %s", ErrOrderNotPending, id, order.Status)
	}
	return order, nil
}
