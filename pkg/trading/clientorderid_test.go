package trading_test

import (
	"strings"
	"testing"

	"github.com/tpodlaski/copra-sub000/pkg/trading"
	"gotest.tools/assert"
)

func TestClientOrderIDGenerate(t *testing.T) {
	seen := make(map[trading.ClientOrderID]bool)
	for i := 0; i < 100; i++ {
		id := trading.ClientOrderIDGenerate()
		assert.Check(t, !seen[id], "ids must be unique")
		seen[id] = true
		assert.Check(t, len(id.String()) <= 64)
	}
}

func TestClientOrderIDStrToType(t *testing.T) {
	id, err := trading.ClientOrderIDStrToType("order-1")
	assert.NilError(t, err)
	assert.Equal(t, id.String(), "order-1")

	_, err = trading.ClientOrderIDStrToType("")
	assert.Error(t, err, "empty clientOrderId")

	long := strings.Repeat("x", 65)
	_, err = trading.ClientOrderIDStrToType(long)
	assert.ErrorContains(t, err, "too long clientOrderId")
}
