package trading

import (
	"github.com/shopspring/decimal"
)

// RequestLimitOrder is the caller-facing intent for a limit or stop-limit
// order. StopPrice turns the order into a stop-limit; PostOnly together with
// a stop price is rejected before any network traffic.
type RequestLimitOrder struct {
	Side        OrderSide
	Product     Product
	Size        decimal.Decimal
	Price       decimal.Decimal
	TimeInForce OrderTimeInForce
	StopPrice   decimal.Decimal
	OnFill      func(Fill)
	OnDone      func(*Order)
}

func (r *RequestLimitOrder) createOrder(feeRate decimal.Decimal) (*Order, error) {
	if r.Side != OrderSideBuy && r.Side != OrderSideSell {
		return nil, ErrorBadSide
	}
	switch r.TimeInForce {
	case OrderTimeInForceGTC, OrderTimeInForceIOC, OrderTimeInForceFOK, OrderTimeInForcePostOnly:
	default:
		return nil, ErrorBadTimeInForce
	}
	if !r.StopPrice.IsZero() && r.TimeInForce == OrderTimeInForcePostOnly {
		return nil, ErrorPostOnlyStop
	}

	orderType := OrderTypeLimit
	if !r.StopPrice.IsZero() {
		orderType = OrderTypeStopLimit
	}
	return &Order{
		clientOrderID: ClientOrderIDGenerate(),
		side:          r.Side,
		product:       r.Product,
		orderType:     orderType,
		timeInForce:   r.TimeInForce,
		size:          r.Size,
		price:         r.Price,
		stopPrice:     r.StopPrice,
		feeRate:       feeRate,
		received:      newGate(false),
		done:          newGate(false),
		onFill:        r.OnFill,
		onDone:        r.OnDone,
	}, nil
}

// RequestMarketOrder is the caller-facing intent for a market or stop-market
// order. Exactly one of Size (base quantity) or Funds (quote amount) must be
// set.
type RequestMarketOrder struct {
	Side      OrderSide
	Product   Product
	Size      decimal.Decimal
	Funds     decimal.Decimal
	StopPrice decimal.Decimal
	OnFill    func(Fill)
	OnDone    func(*Order)
}

func (r *RequestMarketOrder) createOrder(feeRate decimal.Decimal) (*Order, error) {
	if r.Side != OrderSideBuy && r.Side != OrderSideSell {
		return nil, ErrorBadSide
	}
	if !r.Size.IsZero() && !r.Funds.IsZero() {
		return nil, ErrorSizeAndFunds
	}
	if r.Size.IsZero() && r.Funds.IsZero() {
		return nil, ErrorNoSizeOrFunds
	}

	orderType := OrderTypeMarket
	if !r.StopPrice.IsZero() {
		orderType = OrderTypeStopMarket
	}
	return &Order{
		clientOrderID: ClientOrderIDGenerate(),
		side:          r.Side,
		product:       r.Product,
		orderType:     orderType,
		timeInForce:   OrderTimeInForceGTC,
		size:          r.Size,
		funds:         r.Funds,
		stopPrice:     r.StopPrice,
		feeRate:       feeRate,
		received:      newGate(false),
		done:          newGate(false),
		onFill:        r.OnFill,
		onDone:        r.OnDone,
	}, nil
}

// newOrderMessage renders the order as a NewOrderSingle. ExecInst=1 scopes
// the order to cancel-on-disconnect; SecurityIDSource is pinned to "1" per
// the gateway profile.
func (o *Order) newOrderMessage(key string, seqNum uint64) *Message {
	msg := NewMessage(key, seqNum, msgTypeNewOrder)
	msg.set(tagClOrdID, o.clientOrderID.String()).
		set(tagSymbol, o.product.ID).
		set(tagSide, o.side.FixCode()).
		set(tagOrdType, o.orderType.FixCode()).
		set(tagExecInst, execInstCOD).
		set(tagSecurityIDSrc, securityIDSrc)

	switch o.orderType {
	case OrderTypeLimit, OrderTypeStopLimit:
		msg.set(tagOrderQty, o.size.String()).
			set(tagPrice, o.price.String()).
			set(tagTimeInForce, o.timeInForce.FixCode())
	case OrderTypeMarket, OrderTypeStopMarket:
		if !o.funds.IsZero() {
			msg.set(tagCashOrderQty, o.funds.String())
		} else {
			msg.set(tagOrderQty, o.size.String())
		}
	}
	if !o.stopPrice.IsZero() {
		msg.set(tagStopPx, o.stopPrice.String())
	}
	return msg
}

// cancelMessage renders an OrderCancelRequest against this order. The request
// itself carries a fresh ClOrdID; the original id and, once known, the
// exchange id identify the target.
func (o *Order) cancelMessage(key string, seqNum uint64) *Message {
	msg := NewMessage(key, seqNum, msgTypeCancelOrder)
	msg.set(tagClOrdID, ClientOrderIDGenerate().String()).
		set(tagOrigClOrdID, o.clientOrderID.String()).
		set(tagSymbol, o.product.ID).
		set(tagSide, o.side.FixCode())
	if orderID := o.OrderID(); orderID != "" {
		msg.set(tagOrderID, orderID)
	}
	return msg
}
