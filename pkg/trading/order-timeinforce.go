package trading

import (
	"bytes"
	"errors"
	"strconv"
)

type OrderTimeInForce uint8

const (
	OrderTimeInForceGTC      OrderTimeInForce = iota // good till cancel. cancel only by user request or full fill
	OrderTimeInForceIOC                              // immediate or cancel. can be partially filled, remainder canceled
	OrderTimeInForceFOK                              // fill or kill. fully filled or canceled
	OrderTimeInForcePostOnly                         // maker only. rejected if it would cross the book

	orderTimeInForceGTCstr      = "GTC"
	orderTimeInForceIOCstr      = "IOC"
	orderTimeInForceFOKstr      = "FOK"
	orderTimeInForcePostOnlyStr = "PO"

	// tag 59 wire values
	orderTimeInForceGTCfix      = "1"
	orderTimeInForceIOCfix      = "3"
	orderTimeInForceFOKfix      = "4"
	orderTimeInForcePostOnlyFix = "P"
)

var (
	orderTimeInForceGTCbytes      = []byte(`"GTC"`)
	orderTimeInForceIOCbytes      = []byte(`"IOC"`)
	orderTimeInForceFOKbytes      = []byte(`"FOK"`)
	orderTimeInForcePostOnlyBytes = []byte(`"PO"`)
)

func (tif OrderTimeInForce) String() string {
	switch tif {
	case OrderTimeInForceGTC:
		return orderTimeInForceGTCstr
	case OrderTimeInForceIOC:
		return orderTimeInForceIOCstr
	case OrderTimeInForceFOK:
		return orderTimeInForceFOKstr
	case OrderTimeInForcePostOnly:
		return orderTimeInForcePostOnlyStr
	}
	panic("invalid order timeInForce string conversion" + strconv.Itoa(int(tif)))
}

// FixCode value for tag 59
func (tif OrderTimeInForce) FixCode() string {
	switch tif {
	case OrderTimeInForceGTC:
		return orderTimeInForceGTCfix
	case OrderTimeInForceIOC:
		return orderTimeInForceIOCfix
	case OrderTimeInForceFOK:
		return orderTimeInForceFOKfix
	case OrderTimeInForcePostOnly:
		return orderTimeInForcePostOnlyFix
	}
	panic("invalid order timeInForce fix conversion" + strconv.Itoa(int(tif)))
}

func (tif OrderTimeInForce) MarshalJSON() ([]byte, error) {
	switch tif {
	case OrderTimeInForceGTC:
		return orderTimeInForceGTCbytes, nil
	case OrderTimeInForceIOC:
		return orderTimeInForceIOCbytes, nil
	case OrderTimeInForceFOK:
		return orderTimeInForceFOKbytes, nil
	case OrderTimeInForcePostOnly:
		return orderTimeInForcePostOnlyBytes, nil
	}
	return nil, errors.New("invalid order timeInForce json conversion: " + strconv.Itoa(int(tif)))
}

func (tif *OrderTimeInForce) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, orderTimeInForceGTCbytes) {
		*tif = OrderTimeInForceGTC
		return nil
	}

	if bytes.Equal(data, orderTimeInForceIOCbytes) {
		*tif = OrderTimeInForceIOC
		return nil
	}

	if bytes.Equal(data, orderTimeInForceFOKbytes) {
		*tif = OrderTimeInForceFOK
		return nil
	}

	if bytes.Equal(data, orderTimeInForcePostOnlyBytes) {
		*tif = OrderTimeInForcePostOnly
		return nil
	}

	return errors.New("unsupported order timeInForce: " + string(data))
}

func OrderTimeInForceStrToType(value string) (OrderTimeInForce, error) {
	switch value {
	case orderTimeInForceGTCstr:
		return OrderTimeInForceGTC, nil
	case orderTimeInForceIOCstr:
		return OrderTimeInForceIOC, nil
	case orderTimeInForceFOKstr:
		return OrderTimeInForceFOK, nil
	case orderTimeInForcePostOnlyStr:
		return OrderTimeInForcePostOnly, nil
	}
	return 0, errors.New("unsupported order timeInForce: " + value)
}
