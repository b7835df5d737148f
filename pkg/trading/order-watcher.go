package trading

import (
	"sync"
	"time"
)

// OrderWatcher releases terminal orders from a trader's table after they have
// been done for the retention duration, so long-lived sessions do not grow
// their order table forever.
type OrderWatcher struct {
	mx       sync.Mutex
	doneAt   map[ClientOrderID]int64
	duration time.Duration
	trader   Trader
}

func NewOrderWatcher(trader Trader, duration time.Duration) *OrderWatcher {
	watcher := &OrderWatcher{
		doneAt:   make(map[ClientOrderID]int64),
		duration: duration,
		trader:   trader,
	}
	go func() {
		for range time.NewTicker(duration).C {
			watcher.release()
		}
	}()
	return watcher
}

func (w *OrderWatcher) release() {
	now := time.Now().Unix()
	obsoleteTime := now - int64(w.duration.Seconds())

	w.mx.Lock()
	defer w.mx.Unlock()
	for _, order := range w.trader.Orders() {
		select {
		case <-order.Done():
		default:
			continue
		}
		id := order.ClientOrderID()
		doneAt, seen := w.doneAt[id]
		if !seen {
			w.doneAt[id] = now
			continue
		}
		if doneAt < obsoleteTime {
			w.trader.ReleaseOrder(id)
			delete(w.doneAt, id)
		}
	}
}
