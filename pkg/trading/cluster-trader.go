package trading

import (
	"container/ring"
	"context"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// clusterTrader spreads order entry across several gateway endpoints and
// fails over when one stops being ready. New orders go to the next ready
// gate; lookups and cancels follow the gate that tracks the order.
type clusterTrader struct {
	logger    *zap.Logger
	available []Trader
	mx        sync.Mutex
	enabled   *ring.Ring
	ready     chan bool
	isReady   uint32
}

func newClusterTrader(logger *zap.Logger, gates []Trader) *clusterTrader {
	cluster := &clusterTrader{
		logger:    logger,
		available: gates,
		ready:     make(chan bool, 2),
	}
	go cluster.handleReady()
	return cluster
}

func (c *clusterTrader) getGate() (Trader, error) {
	c.mx.Lock()
	defer c.mx.Unlock()
	if c.enabled == nil || c.enabled.Len() == 0 {
		return nil, errors.New("no available trading gates")
	}
	c.enabled = c.enabled.Next()
	gate, ok := c.enabled.Value.(Trader)
	if !ok {
		return nil, errors.New("bad implementation get gate")
	}
	return gate, nil
}

// findGate locates the gate tracking a given order.
func (c *clusterTrader) findGate(clientOrderID ClientOrderID) (Trader, bool) {
	for _, gate := range c.available {
		if _, ok := gate.GetOrder(clientOrderID); ok {
			return gate, true
		}
	}
	return nil, false
}

// Connect dials every gate; the cluster is usable while at least one
// succeeds.
func (c *clusterTrader) Connect(ctx context.Context) error {
	var lastErr error
	connected := 0
	for _, gate := range c.available {
		if err := gate.Connect(ctx); err != nil {
			c.logger.Warn("cluster trading: fail connect gate", zap.Error(err))
			lastErr = err
			continue
		}
		connected++
	}
	if connected == 0 {
		return errors.WithMessage(lastErr, "fail connect all gates")
	}
	return nil
}

func (c *clusterTrader) Close(ctx context.Context) error {
	var lastErr error
	for _, gate := range c.available {
		if err := gate.Close(ctx); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

func (c *clusterTrader) LimitOrder(ctx context.Context, req *RequestLimitOrder) (*Order, error) {
	gate, err := c.getGate()
	if err != nil {
		return nil, err
	}
	return gate.LimitOrder(ctx, req)
}

func (c *clusterTrader) MarketOrder(ctx context.Context, req *RequestMarketOrder) (*Order, error) {
	gate, err := c.getGate()
	if err != nil {
		return nil, err
	}
	return gate.MarketOrder(ctx, req)
}

func (c *clusterTrader) CancelOrder(ctx context.Context, clientOrderID ClientOrderID) (*Order, error) {
	gate, ok := c.findGate(clientOrderID)
	if !ok {
		return nil, ErrorNotFoundOrder
	}
	return gate.CancelOrder(ctx, clientOrderID)
}

func (c *clusterTrader) GetOrder(clientOrderID ClientOrderID) (*Order, bool) {
	gate, ok := c.findGate(clientOrderID)
	if !ok {
		return nil, false
	}
	return gate.GetOrder(clientOrderID)
}

func (c *clusterTrader) ReleaseOrder(clientOrderID ClientOrderID) {
	if gate, ok := c.findGate(clientOrderID); ok {
		gate.ReleaseOrder(clientOrderID)
	}
}

func (c *clusterTrader) Orders() []*Order {
	var result []*Order
	for _, gate := range c.available {
		result = append(result, gate.Orders()...)
	}
	return result
}

func (c *clusterTrader) IsReady() bool {
	return atomic.LoadUint32(&c.isReady) == 1
}

func (c *clusterTrader) Ready() chan bool {
	return c.ready
}

func (c *clusterTrader) setReady(val bool) {
	var state uint32
	if val {
		state = 1
	}

	if atomic.SwapUint32(&c.isReady, state) != state {
		if val {
			c.logger.Info("cluster trading: ready")
		} else {
			c.logger.Error("cluster trading: no ready gates")
		}
		select {
		case c.ready <- val:
			// ok
		default:
			c.logger.Error("cluster trading: discarding ready call chan capacity")
		}
	}
}

// updateEnabled rebuilds the ring of gates ready for serving.
func (c *clusterTrader) updateEnabled() {
	c.mx.Lock()
	enabledCount := 0
	for _, gate := range c.available {
		if gate.IsReady() {
			enabledCount++
		}
	}
	c.enabled = ring.New(enabledCount)
	for _, gate := range c.available {
		if gate.IsReady() {
			c.enabled = c.enabled.Next()
			c.enabled.Value = gate
		}
	}
	c.mx.Unlock()
	c.setReady(enabledCount > 0)
}

func (c *clusterTrader) handleReady() {
	statusChanged := make(chan bool, 10)
	for _, gateVal := range c.available {
		go func(gate Trader) {
			for status := range gate.Ready() {
				statusChanged <- status
			}
		}(gateVal)
	}

	for range statusChanged {
		c.updateEnabled()
	}
}
