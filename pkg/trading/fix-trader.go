package trading

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var readyState = prometheus.NewGaugeVec(prometheus.GaugeOpts{
	Name: "fix_ready_state",
	Help: "Fix trading gate status",
}, []string{"gate"})

var requestDurations = prometheus.NewSummaryVec(prometheus.SummaryOpts{
	Name:       "fix_request_duration_us",
	Help:       "fix request durations microseconds",
	AgeBuckets: 1,
}, []string{"gate", "action"})

func init() {
	prometheus.MustRegister(readyState, requestDurations)
}

var defaultFeeRate = decimal.New(25, -4) // 0.0025 taker fee

// fixTrader trades through one FIX gateway session.
type fixTrader struct {
	logger  *zap.Logger
	session *fixSession
	feeRate decimal.Decimal
	isReady uint32
	ready   chan bool
}

func newFixTrader(logger *zap.Logger, conn Connecter, cfg sessionConfig, feeRate decimal.Decimal) *fixTrader {
	if feeRate.IsZero() {
		feeRate = defaultFeeRate
	}
	trader := &fixTrader{
		logger:  logger,
		session: newFixSession(logger, conn, cfg),
		feeRate: feeRate,
		ready:   make(chan bool, 2),
	}
	go trader.watchReady()
	return trader
}

func (c *fixTrader) Connect(ctx context.Context) error {
	return c.session.connect(ctx)
}

// Close logs out best-effort, then tears the transport down. Outstanding
// order waiters are not resolved; callers apply their own deadlines.
func (c *fixTrader) Close(ctx context.Context) error {
	if c.session.loggedIn.IsSet() {
		if err := c.session.logout(ctx); err != nil {
			c.logger.Warn("fix trading: fail logout on close", zap.Error(err))
		}
	}
	return c.session.close(ctx)
}

// LimitOrder places a limit or stop-limit order and waits for the gateway
// acknowledgment.
func (c *fixTrader) LimitOrder(ctx context.Context, req *RequestLimitOrder) (*Order, error) {
	order, err := req.createOrder(c.feeRate)
	if err != nil {
		return nil, err
	}
	return c.place(ctx, order)
}

// MarketOrder places a market or stop-market order and waits for the gateway
// acknowledgment.
func (c *fixTrader) MarketOrder(ctx context.Context, req *RequestMarketOrder) (*Order, error) {
	order, err := req.createOrder(c.feeRate)
	if err != nil {
		return nil, err
	}
	return c.place(ctx, order)
}

func (c *fixTrader) place(ctx context.Context, order *Order) (*Order, error) {
	start := time.Now()
	if err := c.session.orders.add(order); err != nil {
		return nil, err
	}

	key := c.session.cfg.creds.Key
	err := c.session.send(func(seqNum uint64, sendingTime string) (*Message, error) {
		return order.newOrderMessage(key, seqNum), nil
	})
	if err != nil {
		c.session.orders.remove(order)
		return nil, err
	}

	select {
	case <-order.Received():
		requestDurations.WithLabelValues(c.session.conn.Addr(), "place").
			Observe(float64(time.Since(start) / time.Microsecond))
		return order, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// CancelOrder requests cancellation of a tracked order and waits for the
// order to reach a terminal state. A gateway cancel reject leaves the order
// untouched and this call waiting; bound it with ctx.
func (c *fixTrader) CancelOrder(ctx context.Context, clientOrderID ClientOrderID) (*Order, error) {
	order, ok := c.session.orders.getByClient(clientOrderID)
	if !ok {
		return nil, ErrorNotFoundOrder
	}

	start := time.Now()
	key := c.session.cfg.creds.Key
	err := c.session.send(func(seqNum uint64, sendingTime string) (*Message, error) {
		return order.cancelMessage(key, seqNum), nil
	})
	if err != nil {
		return nil, err
	}

	select {
	case <-order.Done():
		requestDurations.WithLabelValues(c.session.conn.Addr(), "cancel").
			Observe(float64(time.Since(start) / time.Microsecond))
		return order, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *fixTrader) GetOrder(clientOrderID ClientOrderID) (*Order, bool) {
	return c.session.orders.getByClient(clientOrderID)
}

func (c *fixTrader) Orders() []*Order {
	return c.session.orders.list()
}

// ReleaseOrder drops a terminal order from the table. In-flight orders stay
// tracked; releasing them would orphan their execution reports.
func (c *fixTrader) ReleaseOrder(clientOrderID ClientOrderID) {
	order, ok := c.session.orders.getByClient(clientOrderID)
	if !ok {
		return
	}
	select {
	case <-order.Done():
		c.session.orders.remove(order)
	default:
		c.logger.Warn("fix trading: refuse release of active order",
			zap.String("clientOrderId", clientOrderID.String()))
	}
}

func (c *fixTrader) IsReady() bool {
	return atomic.LoadUint32(&c.isReady) == 1
}

func (c *fixTrader) Ready() chan bool {
	return c.ready
}

func (c *fixTrader) setReady(val bool) {
	var promStatus float64
	var state uint32
	if val {
		promStatus = 1
		state = 1
	}
	readyState.WithLabelValues(c.session.conn.Addr()).Set(promStatus)

	if atomic.SwapUint32(&c.isReady, state) != state {
		select {
		case c.ready <- val:
			// ok
		default:
			// We don't want to block here. It is the caller's responsibility to make
			// sure the channel has enough buffer space.
			c.logger.Error("fix trading: ready call discarding due to insufficient chan capacity")
		}
	}
}

// watchReady mirrors the session's login gates into the ready state. The
// gates toggle strictly in pairs, so alternating on them observes every
// transition.
func (c *fixTrader) watchReady() {
	for {
		<-c.session.loggedIn.Wait()
		c.setReady(true)
		<-c.session.loggedOut.Wait()
		c.setReady(false)
	}
}
