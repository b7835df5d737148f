package trading

import (
	"bytes"
	"errors"
	"strconv"
)

type OrderSide uint8

const (
	OrderSideBuy OrderSide = iota
	OrderSideSell

	orderSideBuyStr  = "buy"
	orderSideSellStr = "sell"

	// tag 54 wire values per the gateway documentation
	orderSideBuyFix  = "1"
	orderSideSellFix = "2"
)

var (
	orderSideBuyByte  = []byte(`"buy"`)
	orderSideSellByte = []byte(`"sell"`)
)

func (os OrderSide) String() string {
	switch os {
	case OrderSideBuy:
		return orderSideBuyStr
	case OrderSideSell:
		return orderSideSellStr
	}
	panic("invalid order side string conversion" + strconv.Itoa(int(os)))
}

// FixCode value for tag 54
func (os OrderSide) FixCode() string {
	switch os {
	case OrderSideBuy:
		return orderSideBuyFix
	case OrderSideSell:
		return orderSideSellFix
	}
	panic("invalid order side fix conversion" + strconv.Itoa(int(os)))
}

func (os OrderSide) MarshalJSON() ([]byte, error) {
	switch os {
	case OrderSideBuy:
		return orderSideBuyByte, nil
	case OrderSideSell:
		return orderSideSellByte, nil
	}
	return nil, errors.New("invalid order side json conversion: " + strconv.Itoa(int(os)))
}

func (os *OrderSide) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, orderSideBuyByte) {
		*os = OrderSideBuy
		return nil
	}

	if bytes.Equal(data, orderSideSellByte) {
		*os = OrderSideSell
		return nil
	}

	return errors.New("unsupported order side: " + string(data))
}

func OrderSideStrToType(value string) (OrderSide, error) {
	switch value {
	case orderSideBuyStr:
		return OrderSideBuy, nil
	case orderSideSellStr:
		return OrderSideSell, nil
	}
	return 0, errors.New("unsupported order side: " + value)
}

func orderSideFromFixCode(code string) (OrderSide, error) {
	switch code {
	case orderSideBuyFix:
		return OrderSideBuy, nil
	case orderSideSellFix:
		return OrderSideSell, nil
	}
	return 0, errors.New("unsupported order side code: " + code)
}
