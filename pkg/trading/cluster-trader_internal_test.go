package trading

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
	"gotest.tools/assert"
)

func waitClusterReady(t *testing.T, cluster *clusterTrader, expect bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for cluster.IsReady() != expect {
		if time.Now().After(deadline) {
			t.Fatal("cluster never settled the ready state")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func clusterLimitRequest() *RequestLimitOrder {
	return &RequestLimitOrder{
		Side:        OrderSideBuy,
		Product:     Product{ID: "BTC-USD"},
		Size:        d("0.1"),
		Price:       d("30000"),
		TimeInForce: OrderTimeInForceGTC,
	}
}

func TestClusterTraderFailover(t *testing.T) {
	gateA := NewMockTrader(zap.NewNop())
	gateB := NewMockTrader(zap.NewNop())
	cluster := newClusterTrader(zap.NewNop(), []Trader{gateA, gateB})

	_, err := cluster.LimitOrder(context.Background(), clusterLimitRequest())
	assert.ErrorContains(t, err, "no available trading gates")

	gateA.SetReady(true)
	waitClusterReady(t, cluster, true)

	// only one gate is ready, everything routes there
	orderA, err := cluster.LimitOrder(context.Background(), clusterLimitRequest())
	assert.NilError(t, err)
	_, ok := gateA.GetOrder(orderA.ClientOrderID())
	assert.Check(t, ok)

	gateB.SetReady(true)
	deadline := time.Now().Add(3 * time.Second)
	for len(gateB.Orders()) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("second gate never took an order")
		}
		if _, err := cluster.LimitOrder(context.Background(), clusterLimitRequest()); err != nil {
			t.Fatal(err)
		}
	}

	// lookups and cancels follow the gate tracking the order
	found, ok := cluster.GetOrder(orderA.ClientOrderID())
	assert.Check(t, ok)
	assert.Equal(t, found, orderA)

	canceled, err := cluster.CancelOrder(context.Background(), orderA.ClientOrderID())
	assert.NilError(t, err)
	assert.Equal(t, canceled.Status(), OrderStatusCanceled)

	_, err = cluster.CancelOrder(context.Background(), "no-such-order")
	assert.Equal(t, err, ErrorNotFoundOrder)

	assert.Equal(t, len(cluster.Orders()), len(gateA.Orders())+len(gateB.Orders()))

	// losing every gate drops the cluster out of ready
	gateA.SetReady(false)
	gateB.SetReady(false)
	waitClusterReady(t, cluster, false)

	_, err = cluster.LimitOrder(context.Background(), clusterLimitRequest())
	assert.ErrorContains(t, err, "no available trading gates")
}

func TestClusterTraderReleaseOrder(t *testing.T) {
	gate := NewMockTrader(zap.NewNop())
	cluster := newClusterTrader(zap.NewNop(), []Trader{gate})
	gate.SetReady(true)
	waitClusterReady(t, cluster, true)

	order, err := cluster.LimitOrder(context.Background(), clusterLimitRequest())
	assert.NilError(t, err)
	assert.NilError(t, gate.CompleteOrder(order.ClientOrderID()))

	cluster.ReleaseOrder(order.ClientOrderID())
	_, ok := cluster.GetOrder(order.ClientOrderID())
	assert.Check(t, !ok)
}
