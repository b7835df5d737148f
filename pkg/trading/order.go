package trading

import (
	"strconv"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
)

// Product identifies a tradable pair and its price/size granularity. The
// increments come from the REST metadata collaborator; zero values fall back
// to the gateway defaults.
type Product struct {
	ID             string          `json:"id"`
	BaseIncrement  decimal.Decimal `json:"baseIncrement"`
	QuoteIncrement decimal.Decimal `json:"quoteIncrement"`
}

var (
	defaultBaseIncrement  = decimal.New(1, -8) // 0.00000001
	defaultQuoteIncrement = decimal.New(1, -2) // 0.01
)

func (p Product) baseIncrement() decimal.Decimal {
	if p.BaseIncrement.IsPositive() {
		return p.BaseIncrement
	}
	return defaultBaseIncrement
}

func (p Product) quoteIncrement() decimal.Decimal {
	if p.QuoteIncrement.IsPositive() {
		return p.QuoteIncrement
	}
	return defaultQuoteIncrement
}

// ceilToIncrement rounds value up to the next multiple of increment. Rounding
// toward positive infinity keeps executed value and fees from being
// under-credited; plain half-up rounding is never used here.
func ceilToIncrement(value, increment decimal.Decimal) decimal.Decimal {
	if increment.IsZero() {
		return value
	}
	return value.Div(increment).Ceil().Mul(increment)
}

// Fill is one trade printed against the order.
type Fill struct {
	Time     time.Time       `json:"time"`
	Quantity decimal.Decimal `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Fee      decimal.Decimal `json:"fee"`
}

// Order tracks one client-initiated order across its whole life. It is
// created by the request factories, mutated only by the session's execution
// report dispatch, and signals its waiters through two set-once gates:
// received (acknowledged or rejected by the gateway) and done (terminal).
type Order struct {
	clientOrderID ClientOrderID
	side          OrderSide
	product       Product
	orderType     OrderType
	timeInForce   OrderTimeInForce
	size          decimal.Decimal
	funds         decimal.Decimal
	price         decimal.Decimal
	stopPrice     decimal.Decimal
	feeRate       decimal.Decimal

	mx           sync.Mutex
	orderID      string
	status       OrderStatus
	rejectReason string
	fills        []Fill
	lastFillQty  decimal.Decimal

	received *gate
	done     *gate
	onFill   func(Fill)
	onDone   func(*Order)
}

func (o *Order) ClientOrderID() ClientOrderID {
	return o.clientOrderID
}

// OrderID is the exchange-assigned identifier (tag 37), empty until the
// gateway acknowledges the order.
func (o *Order) OrderID() string {
	o.mx.Lock()
	defer o.mx.Unlock()
	return o.orderID
}

func (o *Order) Side() OrderSide {
	return o.side
}

func (o *Order) Product() Product {
	return o.product
}

func (o *Order) Type() OrderType {
	return o.orderType
}

func (o *Order) TimeInForce() OrderTimeInForce {
	return o.timeInForce
}

func (o *Order) Size() decimal.Decimal {
	return o.size
}

func (o *Order) Funds() decimal.Decimal {
	return o.funds
}

func (o *Order) Price() decimal.Decimal {
	return o.price
}

func (o *Order) StopPrice() decimal.Decimal {
	return o.stopPrice
}

func (o *Order) Status() OrderStatus {
	o.mx.Lock()
	defer o.mx.Unlock()
	return o.status
}

func (o *Order) RejectReason() string {
	o.mx.Lock()
	defer o.mx.Unlock()
	return o.rejectReason
}

func (o *Order) Fills() []Fill {
	o.mx.Lock()
	defer o.mx.Unlock()
	result := make([]Fill, len(o.fills))
	copy(result, o.fills)
	return result
}

func (o *Order) LastFillQuantity() decimal.Decimal {
	o.mx.Lock()
	defer o.mx.Unlock()
	return o.lastFillQty
}

// Received is closed once the gateway has acknowledged, triggered or rejected
// the order.
func (o *Order) Received() <-chan struct{} {
	return o.received.Wait()
}

// Done is closed once the order is terminal: fully filled and closed,
// canceled, or rejected.
func (o *Order) Done() <-chan struct{} {
	return o.done.Wait()
}

// FilledSize is the sum of fill quantities, computed fresh from the fills.
func (o *Order) FilledSize() decimal.Decimal {
	o.mx.Lock()
	defer o.mx.Unlock()
	return o.filledSizeLocked()
}

func (o *Order) filledSizeLocked() decimal.Decimal {
	sum := decimal.Zero
	for _, fill := range o.fills {
		sum = sum.Add(fill.Quantity)
	}
	return sum
}

// ExecutedValue is the exact sum of fill quantity times price.
func (o *Order) ExecutedValue() decimal.Decimal {
	o.mx.Lock()
	defer o.mx.Unlock()
	return o.executedValueLocked()
}

func (o *Order) executedValueLocked() decimal.Decimal {
	sum := decimal.Zero
	for _, fill := range o.fills {
		sum = sum.Add(fill.Quantity.Mul(fill.Price))
	}
	return sum
}

// ExecutedValueRounded is the executed value ceiled at the quote increment:
// the figure shown to callers and used in settlement display.
func (o *Order) ExecutedValueRounded() decimal.Decimal {
	return ceilToIncrement(o.ExecutedValue(), o.product.quoteIncrement())
}

// AveragePrice is executed value over filled size, ceiled at the quote
// increment. Zero while nothing has filled.
func (o *Order) AveragePrice() decimal.Decimal {
	o.mx.Lock()
	defer o.mx.Unlock()
	filled := o.filledSizeLocked()
	if filled.IsZero() {
		return decimal.Zero
	}
	return ceilToIncrement(o.executedValueLocked().Div(filled), o.product.quoteIncrement())
}

// RemainingQuantity is the unfilled part of the target: base size for sized
// orders, quote funds for funds orders.
func (o *Order) RemainingQuantity() decimal.Decimal {
	o.mx.Lock()
	defer o.mx.Unlock()
	if !o.funds.IsZero() {
		return o.funds.Sub(o.executedValueLocked())
	}
	return o.size.Sub(o.filledSizeLocked())
}

// applyReport folds one execution report into the order state. Keyed by
// ExecType (tag 150); the display status comes verbatim from the tag 39 value
// table. Unknown exec types are reported back so the session can log them.
func (o *Order) applyReport(msg *Message) error {
	code, _ := msg.Get(tagExecType)
	reportType, ok := reportTypeFromFixCode(code)
	if !ok {
		return ErrorUnknown
	}

	o.mx.Lock()
	if statusCode, ok := msg.Get(tagOrdStatus); ok {
		if status, known := orderStatusFromFixCode(statusCode); known {
			o.status = status
		}
	}

	var firedFill *Fill
	var fireDone bool
	switch reportType {
	case ReportTypeNew, ReportTypeStopped:
		if orderID, ok := msg.Get(tagOrderID); ok {
			o.orderID = orderID
		}
	case ReportTypeRejected:
		if orderID, ok := msg.Get(tagOrderID); ok {
			o.orderID = orderID
		}
		if reason, ok := msg.Get(tagText); ok {
			o.rejectReason = reason
		}
	case ReportTypeFill:
		qty, _ := decimal.NewFromString(firstValue(msg, tagLastShares))
		price, _ := decimal.NewFromString(firstValue(msg, tagLastPx))
		fill := Fill{
			Time:     time.Now().UTC(),
			Quantity: qty,
			Price:    price,
			Fee:      ceilToIncrement(o.feeRate.Mul(qty).Mul(price), o.product.baseIncrement()),
		}
		o.fills = append(o.fills, fill)
		o.lastFillQty = qty
		firedFill = &fill
	case ReportTypeDone, ReportTypeCanceled:
		fireDone = true
	}
	onFill := o.onFill
	onDone := o.onDone
	o.mx.Unlock()

	switch reportType {
	case ReportTypeNew, ReportTypeStopped:
		o.received.Set()
	case ReportTypeRejected:
		o.received.Set()
		o.done.Set()
		if onDone != nil {
			onDone(o)
		}
	case ReportTypeFill:
		if onFill != nil && firedFill != nil {
			onFill(*firedFill)
		}
	case ReportTypeDone, ReportTypeCanceled:
		if fireDone {
			o.done.Set()
			if onDone != nil {
				onDone(o)
			}
		}
	}
	return nil
}

func firstValue(msg *Message, tag int) string {
	value, ok := msg.Get(tag)
	if !ok {
		return "0"
	}
	return value
}

type orderExport struct {
	ClientOrderID ClientOrderID    `json:"clientOrderId"`
	OrderID       string           `json:"orderId,omitempty"`
	Side          OrderSide        `json:"side"`
	Product       string           `json:"product"`
	Type          OrderType        `json:"type"`
	TimeInForce   OrderTimeInForce `json:"timeInForce"`
	Size          string           `json:"size,omitempty"`
	Funds         string           `json:"funds,omitempty"`
	Price         string           `json:"price,omitempty"`
	StopPrice     string           `json:"stopPrice,omitempty"`
	Status        OrderStatus      `json:"status"`
	RejectReason  string           `json:"rejectReason,omitempty"`
	FilledSize    string           `json:"filledSize"`
	ExecutedValue string           `json:"executedValue"`
	Fills         []Fill           `json:"fills,omitempty"`
}

func (o *Order) MarshalJSON() ([]byte, error) {
	export := orderExport{
		ClientOrderID: o.clientOrderID,
		OrderID:       o.OrderID(),
		Side:          o.side,
		Product:       o.product.ID,
		Type:          o.orderType,
		TimeInForce:   o.timeInForce,
		Status:        o.Status(),
		RejectReason:  o.RejectReason(),
		FilledSize:    o.FilledSize().String(),
		ExecutedValue: o.ExecutedValueRounded().String(),
		Fills:         o.Fills(),
	}
	if !o.size.IsZero() {
		export.Size = o.size.String()
	}
	if !o.funds.IsZero() {
		export.Funds = o.funds.String()
	}
	if !o.price.IsZero() {
		export.Price = o.price.String()
	}
	if !o.stopPrice.IsZero() {
		export.StopPrice = o.stopPrice.String()
	}
	return jsoniter.Marshal(export)
}

func (o *Order) String() string {
	return o.orderType.String() + " " + o.side.String() + " " + o.product.ID +
		" clOrdID=" + o.clientOrderID.String() + " status=" + strconv.Quote(o.Status().String())
}
