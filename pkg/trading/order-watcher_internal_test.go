package trading

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
	"gotest.tools/assert"
)

func TestOrderWatcherRelease(t *testing.T) {
	trader := NewMockTrader(zap.NewNop())

	active, err := trader.LimitOrder(context.Background(), &RequestLimitOrder{
		Side:        OrderSideBuy,
		Product:     Product{ID: "BTC-USD"},
		Size:        d("1"),
		Price:       d("30000"),
		TimeInForce: OrderTimeInForceGTC,
	})
	assert.NilError(t, err)

	finished, err := trader.LimitOrder(context.Background(), &RequestLimitOrder{
		Side:        OrderSideSell,
		Product:     Product{ID: "BTC-USD"},
		Size:        d("1"),
		Price:       d("31000"),
		TimeInForce: OrderTimeInForceGTC,
	})
	assert.NilError(t, err)
	assert.NilError(t, trader.CompleteOrder(finished.ClientOrderID()))

	watcher := &OrderWatcher{
		doneAt:   make(map[ClientOrderID]int64),
		duration: time.Minute,
		trader:   trader,
	}

	// first sweep only records when the terminal order was seen
	watcher.release()
	assert.Equal(t, len(trader.Orders()), 2)
	_, seen := watcher.doneAt[finished.ClientOrderID()]
	assert.Check(t, seen)
	_, seen = watcher.doneAt[active.ClientOrderID()]
	assert.Check(t, !seen, "active orders are never tracked for release")

	// not yet past the retention window
	watcher.release()
	assert.Equal(t, len(trader.Orders()), 2)

	watcher.doneAt[finished.ClientOrderID()] = time.Now().Unix() - 120
	watcher.release()

	_, ok := trader.GetOrder(finished.ClientOrderID())
	assert.Check(t, !ok, "terminal order released after retention")
	_, ok = trader.GetOrder(active.ClientOrderID())
	assert.Check(t, ok, "active order survives the sweep")
	_, seen = watcher.doneAt[finished.ClientOrderID()]
	assert.Check(t, !seen, "bookkeeping dropped with the order")
}
