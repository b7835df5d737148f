package trading

import (
	"errors"

	"github.com/google/uuid"
)

// ClientOrderID is the client-generated order identifier (tag 11). It is
// assigned before the gateway acknowledges the order and stays valid for the
// order's whole life, even after the exchange id becomes known.
type ClientOrderID string

func (co ClientOrderID) String() string {
	return string(co)
}

func ClientOrderIDGenerate() ClientOrderID {
	return ClientOrderID(uuid.NewString())
}

func ClientOrderIDStrToType(val string) (ClientOrderID, error) {
	if val == "" {
		return "", errors.New("empty clientOrderId")
	}
	if len(val) > 64 {
		return "", errors.New("too long clientOrderId: " + val)
	}
	return ClientOrderID(val), nil
}
