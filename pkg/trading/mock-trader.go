package trading

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type expectation struct {
	reject       bool
	rejectReason string
}

// MockTrader is an in-memory Trader for consumers' tests. Placements are
// acknowledged immediately; queued expectations turn individual placements
// into rejections, and the Fill/Complete helpers print trades against live
// orders. All state transitions run through the same execution-report fold
// as the real session.
type MockTrader struct {
	logger        *zap.Logger
	isReady       uint32
	ready         chan bool
	orders        *ordersContainer
	nextOrderID   uint64
	nextSeqNum    uint64
	expectationMx sync.Mutex
	expectations  []expectation
}

func NewMockTrader(logger *zap.Logger) *MockTrader {
	return &MockTrader{
		logger: logger,
		ready:  make(chan bool, 2),
		orders: newOrdersContainer(),
	}
}

// ExpectReject makes the next placement come back rejected with reason.
func (m *MockTrader) ExpectReject(reason string) {
	m.expectationMx.Lock()
	m.expectations = append(m.expectations, expectation{reject: true, rejectReason: reason})
	m.expectationMx.Unlock()
}

func (m *MockTrader) popExpectation() (expectation, bool) {
	m.expectationMx.Lock()
	defer m.expectationMx.Unlock()
	if len(m.expectations) == 0 {
		return expectation{}, false
	}
	exp := m.expectations[0]
	m.expectations = m.expectations[1:]
	return exp, true
}

func (m *MockTrader) report(order *Order, fields map[int]string) {
	msg := NewMessage("mock", atomic.AddUint64(&m.nextSeqNum, 1), msgTypeExecReport)
	msg.set(tagClOrdID, order.clientOrderID.String())
	for tag, value := range fields {
		msg.set(tag, value)
	}
	if err := order.applyReport(msg); err != nil {
		m.logger.Error("mock-trader: fail apply report", zap.Error(err))
	}
}

func (m *MockTrader) place(order *Order) (*Order, error) {
	if err := m.orders.add(order); err != nil {
		return nil, err
	}

	if exp, ok := m.popExpectation(); ok && exp.reject {
		m.report(order, map[int]string{
			tagExecType:  "8",
			tagOrdStatus: "8",
			tagText:      exp.rejectReason,
		})
		return order, nil
	}

	orderID := "mock-" + strconv.FormatUint(atomic.AddUint64(&m.nextOrderID, 1), 10)
	m.report(order, map[int]string{
		tagExecType:  "0",
		tagOrdStatus: "0",
		tagOrderID:   orderID,
	})
	m.orders.rekey(order)
	return order, nil
}

func (m *MockTrader) LimitOrder(_ context.Context, req *RequestLimitOrder) (*Order, error) {
	order, err := req.createOrder(defaultFeeRate)
	if err != nil {
		return nil, err
	}
	return m.place(order)
}

func (m *MockTrader) MarketOrder(_ context.Context, req *RequestMarketOrder) (*Order, error) {
	order, err := req.createOrder(defaultFeeRate)
	if err != nil {
		return nil, err
	}
	return m.place(order)
}

func (m *MockTrader) CancelOrder(_ context.Context, clientOrderID ClientOrderID) (*Order, error) {
	order, ok := m.orders.getByClient(clientOrderID)
	if !ok {
		return nil, ErrorNotFoundOrder
	}
	m.report(order, map[int]string{
		tagExecType:  "4",
		tagOrdStatus: "4",
	})
	return order, nil
}

// FillOrder prints a trade against a tracked order.
func (m *MockTrader) FillOrder(clientOrderID ClientOrderID, qty, price decimal.Decimal) error {
	order, ok := m.orders.getByClient(clientOrderID)
	if !ok {
		return ErrorNotFoundOrder
	}
	m.report(order, map[int]string{
		tagExecType:   "1",
		tagOrdStatus:  "1",
		tagLastShares: qty.String(),
		tagLastPx:     price.String(),
	})
	return nil
}

// CompleteOrder marks a tracked order fully filled and closed.
func (m *MockTrader) CompleteOrder(clientOrderID ClientOrderID) error {
	order, ok := m.orders.getByClient(clientOrderID)
	if !ok {
		return ErrorNotFoundOrder
	}
	m.report(order, map[int]string{
		tagExecType:  "3",
		tagOrdStatus: "3",
	})
	return nil
}

func (m *MockTrader) GetOrder(clientOrderID ClientOrderID) (*Order, bool) {
	return m.orders.getByClient(clientOrderID)
}

func (m *MockTrader) Orders() []*Order {
	return m.orders.list()
}

func (m *MockTrader) ReleaseOrder(clientOrderID ClientOrderID) {
	if order, ok := m.orders.getByClient(clientOrderID); ok {
		m.orders.remove(order)
	}
}

func (m *MockTrader) Connect(_ context.Context) error {
	m.SetReady(true)
	return nil
}

func (m *MockTrader) Close(_ context.Context) error {
	m.SetReady(false)
	return nil
}

func (m *MockTrader) IsReady() bool {
	return atomic.LoadUint32(&m.isReady) == 1
}

func (m *MockTrader) Ready() chan bool {
	return m.ready
}

func (m *MockTrader) SetReady(val bool) {
	var state uint32
	if val {
		state = 1
	}
	if atomic.SwapUint32(&m.isReady, state) != state {
		select {
		case m.ready <- val:
			// ok
		default:
			m.logger.Warn("mock-trader: ready call discarding due to insufficient chan capacity")
		}
	}
}
