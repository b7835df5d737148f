package trading

import (
	"sync"
)

// ordersContainer is the order table shared between the outbound placement
// path and the inbound dispatch path. Orders are keyed by their client order
// id for their whole life; once the gateway assigns an exchange id, rekey
// adds it as a lookup alias so reports that only carry tag 37 still resolve
// during and after the hand-off window.
type ordersContainer struct {
	mx         sync.RWMutex
	byClient   map[ClientOrderID]*Order
	byExchange map[string]*Order
}

func newOrdersContainer() *ordersContainer {
	return &ordersContainer{
		byClient:   make(map[ClientOrderID]*Order),
		byExchange: make(map[string]*Order),
	}
}

func (con *ordersContainer) add(order *Order) error {
	con.mx.Lock()
	defer con.mx.Unlock()
	if _, ok := con.byClient[order.clientOrderID]; ok {
		return ErrorDuplicateClientOrder
	}
	con.byClient[order.clientOrderID] = order
	return nil
}

// resolve finds the order for an execution report: the client id wins when
// present, the exchange id is the fallback.
func (con *ordersContainer) resolve(clientOrderID ClientOrderID, orderID string) (*Order, bool) {
	con.mx.RLock()
	defer con.mx.RUnlock()
	if clientOrderID != "" {
		if order, ok := con.byClient[clientOrderID]; ok {
			return order, true
		}
	}
	if orderID != "" {
		if order, ok := con.byExchange[orderID]; ok {
			return order, true
		}
	}
	return nil, false
}

func (con *ordersContainer) getByClient(clientOrderID ClientOrderID) (*Order, bool) {
	con.mx.RLock()
	defer con.mx.RUnlock()
	order, ok := con.byClient[clientOrderID]
	return order, ok
}

// rekey registers the order's exchange-assigned id as an alias. One-shot:
// later calls with the same id are no-ops, so concurrent lookups during the
// hand-off window always land on the same order.
func (con *ordersContainer) rekey(order *Order) {
	orderID := order.OrderID()
	if orderID == "" {
		return
	}
	con.mx.Lock()
	defer con.mx.Unlock()
	if _, ok := con.byExchange[orderID]; !ok {
		con.byExchange[orderID] = order
	}
}

func (con *ordersContainer) remove(order *Order) {
	con.mx.Lock()
	defer con.mx.Unlock()
	delete(con.byClient, order.clientOrderID)
	if orderID := order.OrderID(); orderID != "" {
		delete(con.byExchange, orderID)
	}
}

func (con *ordersContainer) list() []*Order {
	con.mx.RLock()
	defer con.mx.RUnlock()
	result := make([]*Order, 0, len(con.byClient))
	for _, order := range con.byClient {
		result = append(result, order)
	}
	return result
}

func (con *ordersContainer) size() int {
	con.mx.RLock()
	defer con.mx.RUnlock()
	return len(con.byClient)
}
