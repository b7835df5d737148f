package trading

import "context"

// Trader is the order-entry facade. Placement calls block until the gateway
// acknowledges or rejects the order (the order's received gate); they carry
// no timeout of their own, so callers bound the wait through ctx.
type Trader interface {
	Connect(ctx context.Context) error
	Close(ctx context.Context) error
	LimitOrder(ctx context.Context, req *RequestLimitOrder) (*Order, error)
	MarketOrder(ctx context.Context, req *RequestMarketOrder) (*Order, error)
	CancelOrder(ctx context.Context, clientOrderID ClientOrderID) (*Order, error)
	GetOrder(clientOrderID ClientOrderID) (*Order, bool)
	Orders() []*Order
	ReleaseOrder(clientOrderID ClientOrderID)
	IsReady() bool
	Ready() chan bool
}
