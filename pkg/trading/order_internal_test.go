package trading

import (
	"testing"

	"github.com/shopspring/decimal"
	"gotest.tools/assert"
)

func execReport(clientOrderID ClientOrderID, fields map[int]string) *Message {
	msg := NewMessage(targetCompID, 1, msgTypeExecReport)
	msg.set(tagClOrdID, clientOrderID.String())
	for tag, value := range fields {
		msg.set(tag, value)
	}
	return msg
}

func limitTestOrder(t *testing.T, product Product, feeRate decimal.Decimal) *Order {
	t.Helper()
	order, err := (&RequestLimitOrder{
		Side:        OrderSideBuy,
		Product:     product,
		Size:        d("0.75"),
		Price:       d("3002"),
		TimeInForce: OrderTimeInForceGTC,
	}).createOrder(feeRate)
	assert.NilError(t, err)
	return order
}

func TestOrderApplyReportNew(t *testing.T) {
	order := limitTestOrder(t, Product{ID: "ETH-USD"}, decimal.Zero)

	select {
	case <-order.Received():
		t.Fatal("not received before the ack")
	default:
	}

	err := order.applyReport(execReport(order.clientOrderID, map[int]string{
		tagExecType:  "0",
		tagOrdStatus: "0",
		tagOrderID:   "exchange-1",
	}))
	assert.NilError(t, err)

	assert.Equal(t, order.OrderID(), "exchange-1")
	assert.Equal(t, order.Status(), OrderStatusNew)
	select {
	case <-order.Received():
	default:
		t.Fatal("ack must open the received gate")
	}
	select {
	case <-order.Done():
		t.Fatal("an acked order is not terminal")
	default:
	}
}

func TestOrderApplyReportRejected(t *testing.T) {
	order := limitTestOrder(t, Product{ID: "ETH-USD"}, decimal.Zero)
	doneCalls := 0
	order.onDone = func(*Order) { doneCalls++ }

	err := order.applyReport(execReport(order.clientOrderID, map[int]string{
		tagExecType:  "8",
		tagOrdStatus: "8",
		tagText:      "insufficient funds",
	}))
	assert.NilError(t, err)

	assert.Equal(t, order.Status(), OrderStatusRejected)
	assert.Equal(t, order.RejectReason(), "insufficient funds")
	assert.Equal(t, doneCalls, 1)
	select {
	case <-order.Received():
	default:
		t.Fatal("a reject counts as received")
	}
	select {
	case <-order.Done():
	default:
		t.Fatal("a reject is terminal")
	}
}

func TestOrderApplyReportUnknownExecType(t *testing.T) {
	order := limitTestOrder(t, Product{ID: "ETH-USD"}, decimal.Zero)
	err := order.applyReport(execReport(order.clientOrderID, map[int]string{tagExecType: "Z"}))
	assert.Equal(t, err, ErrorUnknown)
}

func TestOrderFillAccounting(t *testing.T) {
	order := limitTestOrder(t, Product{ID: "ETH-USD"}, d("0.0025"))
	var fills []Fill
	order.onFill = func(fill Fill) { fills = append(fills, fill) }

	err := order.applyReport(execReport(order.clientOrderID, map[int]string{
		tagExecType:   "1",
		tagOrdStatus:  "1",
		tagLastShares: "0.5",
		tagLastPx:     "3000",
	}))
	assert.NilError(t, err)
	err = order.applyReport(execReport(order.clientOrderID, map[int]string{
		tagExecType:   "1",
		tagOrdStatus:  "1",
		tagLastShares: "0.25",
		tagLastPx:     "3001.50",
	}))
	assert.NilError(t, err)

	assert.Equal(t, order.Status(), OrderStatusPartiallyFilled)
	assert.Equal(t, len(order.Fills()), 2)
	assert.Equal(t, len(fills), 2, "fill callback per trade")
	assert.Check(t, order.LastFillQuantity().Equal(d("0.25")))

	assert.Check(t, order.FilledSize().Equal(d("0.75")))
	assert.Check(t, order.ExecutedValue().Equal(d("2250.375")), "exact, never rounded")
	assert.Check(t, order.ExecutedValueRounded().Equal(d("2250.38")), "ceiled at the quote increment")
	assert.Check(t, order.AveragePrice().Equal(d("3000.50")))
	assert.Check(t, order.RemainingQuantity().Equal(d("0")))

	// fee = rate * qty * price, ceiled at the base increment
	assert.Check(t, order.Fills()[0].Fee.Equal(d("3.75")))
	assert.Check(t, order.Fills()[1].Fee.Equal(d("1.8759375")))
}

func TestOrderFillCeilingAtIncrements(t *testing.T) {
	product := Product{ID: "XYZ-USD", BaseIncrement: d("0.001"), QuoteIncrement: d("0.05")}
	order := limitTestOrder(t, product, d("0.0025"))

	err := order.applyReport(execReport(order.clientOrderID, map[int]string{
		tagExecType:   "1",
		tagOrdStatus:  "1",
		tagLastShares: "0.1",
		tagLastPx:     "3333.33",
	}))
	assert.NilError(t, err)

	assert.Check(t, order.ExecutedValue().Equal(d("333.333")))
	assert.Check(t, order.ExecutedValueRounded().Equal(d("333.35")))
	assert.Check(t, order.AveragePrice().Equal(d("3333.35")))
	assert.Check(t, order.Fills()[0].Fee.Equal(d("0.834")))
}

func TestOrderDoneAndCanceled(t *testing.T) {
	order := limitTestOrder(t, Product{ID: "ETH-USD"}, decimal.Zero)
	assert.NilError(t, order.applyReport(execReport(order.clientOrderID, map[int]string{
		tagExecType:  "0",
		tagOrdStatus: "0",
		tagOrderID:   "exchange-1",
	})))

	assert.NilError(t, order.applyReport(execReport(order.clientOrderID, map[int]string{
		tagExecType:  "4",
		tagOrdStatus: "4",
	})))
	assert.Equal(t, order.Status(), OrderStatusCanceled)
	select {
	case <-order.Done():
	default:
		t.Fatal("canceled is terminal")
	}
}

func TestOrderRemainingQuantityFunds(t *testing.T) {
	order, err := (&RequestMarketOrder{
		Side:    OrderSideBuy,
		Product: Product{ID: "ETH-USD"},
		Funds:   d("100"),
	}).createOrder(decimal.Zero)
	assert.NilError(t, err)

	assert.Check(t, order.RemainingQuantity().Equal(d("100")), "funds orders count in quote units")
	assert.NilError(t, order.applyReport(execReport(order.clientOrderID, map[int]string{
		tagExecType:   "1",
		tagOrdStatus:  "1",
		tagLastShares: "0.01",
		tagLastPx:     "3000",
	})))
	assert.Check(t, order.RemainingQuantity().Equal(d("70")))
}

func TestOrderStopped(t *testing.T) {
	order, err := (&RequestLimitOrder{
		Side:        OrderSideSell,
		Product:     Product{ID: "ETH-USD"},
		Size:        d("1"),
		Price:       d("2900"),
		StopPrice:   d("2950"),
		TimeInForce: OrderTimeInForceGTC,
	}).createOrder(decimal.Zero)
	assert.NilError(t, err)

	assert.NilError(t, order.applyReport(execReport(order.clientOrderID, map[int]string{
		tagExecType:  "7",
		tagOrdStatus: "7",
		tagOrderID:   "exchange-2",
	})))
	assert.Equal(t, order.Status(), OrderStatusStopped)
	assert.Equal(t, order.OrderID(), "exchange-2")
	select {
	case <-order.Received():
	default:
		t.Fatal("a triggered stop counts as received")
	}
}
