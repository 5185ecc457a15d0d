package datasource

import (
	"context"
	"time"

	"github.com/peter-kozarec/barsim/pkg/bus"
)

// CreateTimeSeriesDispatcher returns a step function that advances the provider and posts
// one time series event per updated symbol. Events are posted in reverse so that the
// first symbol is dispatched first.
func CreateTimeSeriesDispatcher(r *bus.Router, p Provider) func(context.Context) (time.Time, error) {
	return func(ctx context.Context) (time.Time, error) {
		now, series, err := p.Next(ctx)
		if err != nil {
			return now, err
		}
		for i := len(series) - 1; i >= 0; i-- {
			if err := r.Post(bus.TimeSeriesEvent, series[i]); err != nil {
				return now, err
			}
		}
		return now, nil
	}
}
