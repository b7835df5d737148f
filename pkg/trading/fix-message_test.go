package trading_test

import (
	"bytes"
	"strconv"
	"testing"

	"github.com/tpodlaski/copra-sub000/pkg/trading"
	"gotest.tools/assert"
)

func TestMessage_Computed(t *testing.T) {
	msg := trading.NewMessage("Test923", 42, "0")

	bodyLength, ok := msg.Get(9)
	assert.Check(t, ok, "body length always present")
	assert.Equal(t, bodyLength, "34")

	checksum, ok := msg.Get(10)
	assert.Check(t, ok, "checksum always present")
	assert.Equal(t, checksum, "148")

	// the computed tags never land in the stored field set
	_, ok = msg.Fields()[9]
	assert.Check(t, !ok, "no stored body length")
	_, ok = msg.Fields()[10]
	assert.Check(t, !ok, "no stored checksum")
}

func TestMessage_ReadOnlyFields(t *testing.T) {
	msg := trading.NewMessage("key", 1, "D")

	assert.Equal(t, msg.Set(9, "100"), trading.ErrorReadOnlyField)
	assert.Equal(t, msg.Set(10, "000"), trading.ErrorReadOnlyField)
	assert.NilError(t, msg.Set(55, "BTC-USD"))

	value, ok := msg.Get(55)
	assert.Check(t, ok)
	assert.Equal(t, value, "BTC-USD")

	assert.Equal(t, msg.Del(44), trading.ErrorKeyNotFound)
	assert.NilError(t, msg.Del(55))
	_, ok = msg.Get(55)
	assert.Check(t, !ok, "deleted field is gone")
}

func TestMessage_ChecksumWidth(t *testing.T) {
	for seq := uint64(1); seq < 300; seq += 7 {
		msg := trading.NewMessage("width-key", seq, "0")
		checksum, _ := msg.Get(10)
		assert.Equal(t, len(checksum), 3, "seq "+strconv.FormatUint(seq, 10))
	}
}

func TestMessage_Encode(t *testing.T) {
	msg := trading.NewMessage("Test923", 42, "0")
	data := msg.Encode()

	assert.Check(t, bytes.HasPrefix(data, []byte("8=FIX.4.2\x019=34\x0135=0\x01")), "header order 8, 9, 35")
	assert.Check(t, bytes.HasSuffix(data, []byte("\x0110=148\x01")), "checksum last, delimiter terminated")
}

func TestMessage_RoundTrip(t *testing.T) {
	msg := trading.NewMessage("round-key", 17, "D")
	assert.NilError(t, msg.Set(11, "client-1"))
	assert.NilError(t, msg.Set(55, "ETH-USD"))
	assert.NilError(t, msg.Set(54, "1"))
	assert.NilError(t, msg.Set(44, "3001.50"))
	assert.NilError(t, msg.Set(38, "0.25"))

	decoded, err := trading.Decode(msg.Encode())
	assert.NilError(t, err)
	assert.Equal(t, decoded.MsgType(), "D")
	assert.Equal(t, decoded.SeqNum(), uint64(17))
	assert.DeepEqual(t, decoded.Fields(), msg.Fields())
}

func TestDecode_ChecksumMismatch(t *testing.T) {
	data := trading.NewMessage("tamper-key", 3, "0").Encode()
	// corrupt one byte inside the sender comp id
	idx := bytes.Index(data, []byte("tamper"))
	data[idx] = 'T'

	_, err := trading.Decode(data)
	assert.ErrorContains(t, err, "fix checksum mismatch")
}

func TestDecode_Malformed(t *testing.T) {
	_, err := trading.Decode([]byte("8=FIX.4.2\x01nonsense\x01"))
	assert.ErrorContains(t, err, "field without separator")

	_, err = trading.Decode([]byte("8=FIX.4.2\x01x9z=1\x0110=000\x01"))
	assert.ErrorContains(t, err, "bad tag")

	_, err = trading.Decode([]byte("8=FIX.4.2\x0135=0\x0134=1\x0110=000\x01"))
	assert.ErrorContains(t, err, "missing SenderCompID")

	_, err = trading.Decode([]byte("8=FIX.4.2\x0135=0\x0149=key\x0110=000\x01"))
	assert.ErrorContains(t, err, "missing MsgSeqNum")

	_, err = trading.Decode([]byte("8=FIX.4.2\x0149=key\x0134=1\x0110=000\x01"))
	assert.ErrorContains(t, err, "missing MsgType")

	_, err = trading.Decode([]byte("8=FIX.4.2\x0135=0\x0149=key\x0134=1\x01"))
	assert.ErrorContains(t, err, "missing Checksum")

	_, err = trading.Decode([]byte("8=FIX.4.2\x0135=0\x0149=key\x0134=abc\x0110=000\x01"))
	assert.ErrorContains(t, err, "bad MsgSeqNum")
}
