package trading

import (
	"bytes"
	"errors"
	"strconv"
)

type OrderStatus uint8

const (
	OrderStatusNew OrderStatus = iota
	OrderStatusPartiallyFilled
	OrderStatusFilled
	OrderStatusDone
	OrderStatusCanceled
	OrderStatusStopped
	OrderStatusRejected

	orderStatusNewStr             = "new"
	orderStatusPartiallyFilledStr = "partially filled"
	orderStatusFilledStr          = "filled"
	orderStatusDoneStr            = "done"
	orderStatusCanceledStr        = "canceled"
	orderStatusStoppedStr         = "stopped"
	orderStatusRejectedStr        = "rejected"
)

var (
	orderStatusNewByte             = []byte(`"new"`)
	orderStatusPartiallyFilledByte = []byte(`"partially filled"`)
	orderStatusFilledByte          = []byte(`"filled"`)
	orderStatusDoneByte            = []byte(`"done"`)
	orderStatusCanceledByte        = []byte(`"canceled"`)
	orderStatusStoppedByte         = []byte(`"stopped"`)
	orderStatusRejectedByte        = []byte(`"rejected"`)
)

// tag 39 value table
var orderStatusFixMapping = map[string]OrderStatus{
	"0": OrderStatusNew,
	"1": OrderStatusPartiallyFilled,
	"2": OrderStatusFilled,
	"3": OrderStatusDone,
	"4": OrderStatusCanceled,
	"7": OrderStatusStopped,
	"8": OrderStatusRejected,
}

func (st OrderStatus) String() string {
	switch st {
	case OrderStatusNew:
		return orderStatusNewStr
	case OrderStatusPartiallyFilled:
		return orderStatusPartiallyFilledStr
	case OrderStatusFilled:
		return orderStatusFilledStr
	case OrderStatusDone:
		return orderStatusDoneStr
	case OrderStatusCanceled:
		return orderStatusCanceledStr
	case OrderStatusStopped:
		return orderStatusStoppedStr
	case OrderStatusRejected:
		return orderStatusRejectedStr
	}
	panic("invalid order status string conversion" + strconv.Itoa(int(st)))
}

func (st OrderStatus) MarshalJSON() ([]byte, error) {
	switch st {
	case OrderStatusNew:
		return orderStatusNewByte, nil
	case OrderStatusPartiallyFilled:
		return orderStatusPartiallyFilledByte, nil
	case OrderStatusFilled:
		return orderStatusFilledByte, nil
	case OrderStatusDone:
		return orderStatusDoneByte, nil
	case OrderStatusCanceled:
		return orderStatusCanceledByte, nil
	case OrderStatusStopped:
		return orderStatusStoppedByte, nil
	case OrderStatusRejected:
		return orderStatusRejectedByte, nil
	}
	return nil, errors.New("invalid order status json conversion: " + strconv.Itoa(int(st)))
}

func (st *OrderStatus) UnmarshalJSON(data []byte) error {
	switch {
	case bytes.Equal(data, orderStatusNewByte):
		*st = OrderStatusNew
	case bytes.Equal(data, orderStatusPartiallyFilledByte):
		*st = OrderStatusPartiallyFilled
	case bytes.Equal(data, orderStatusFilledByte):
		*st = OrderStatusFilled
	case bytes.Equal(data, orderStatusDoneByte):
		*st = OrderStatusDone
	case bytes.Equal(data, orderStatusCanceledByte):
		*st = OrderStatusCanceled
	case bytes.Equal(data, orderStatusStoppedByte):
		*st = OrderStatusStopped
	case bytes.Equal(data, orderStatusRejectedByte):
		*st = OrderStatusRejected
	default:
		return errors.New("unsupported order status: " + string(data))
	}
	return nil
}

func OrderStatusStrToType(value string) (OrderStatus, error) {
	switch value {
	case orderStatusNewStr:
		return OrderStatusNew, nil
	case orderStatusPartiallyFilledStr:
		return OrderStatusPartiallyFilled, nil
	case orderStatusFilledStr:
		return OrderStatusFilled, nil
	case orderStatusDoneStr:
		return OrderStatusDone, nil
	case orderStatusCanceledStr:
		return OrderStatusCanceled, nil
	case orderStatusStoppedStr:
		return OrderStatusStopped, nil
	case orderStatusRejectedStr:
		return OrderStatusRejected, nil
	}
	return 0, errors.New("unsupported order status: " + value)
}

func orderStatusFromFixCode(code string) (OrderStatus, bool) {
	st, ok := orderStatusFixMapping[code]
	return st, ok
}
