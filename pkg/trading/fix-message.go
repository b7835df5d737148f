package trading

import (
	"bytes"
	"sort"
	"strconv"
)

// soh is the FIX field delimiter (Start-of-Heading, 0x01).
const soh = "\x01"

// Message is a restricted tag=value container for one FIX 4.2 frame.
// BeginString (8) is pinned to FIX.4.2 and TargetCompID (56) to the gateway;
// SenderCompID (49), MsgSeqNum (34) and MsgType (35) are mandatory at
// construction. BodyLength (9) and Checksum (10) are always computed from the
// current field set and can never be stored. Values are decimal strings;
// callers convert prices and sizes to fixed-point text before insertion.
type Message struct {
	fields map[int]string
}

func NewMessage(key string, seqNum uint64, msgType string) *Message {
	return &Message{fields: map[int]string{
		tagBeginString:  beginString,
		tagSenderCompID: key,
		tagTargetCompID: targetCompID,
		tagMsgSeqNum:    strconv.FormatUint(seqNum, 10),
		tagMsgType:      msgType,
	}}
}

// Get returns the value for tag. Tags 9 and 10 are computed fresh on every
// call, never cached.
func (m *Message) Get(tag int) (string, bool) {
	switch tag {
	case tagBodyLength:
		return strconv.Itoa(m.BodyLength()), true
	case tagChecksum:
		return m.Checksum(), true
	}
	value, ok := m.fields[tag]
	return value, ok
}

func (m *Message) Set(tag int, value string) error {
	if tag == tagBodyLength || tag == tagChecksum {
		return ErrorReadOnlyField
	}
	m.fields[tag] = value
	return nil
}

// set is the internal unchecked write used by message builders; it never
// touches the computed tags.
func (m *Message) set(tag int, value string) *Message {
	m.fields[tag] = value
	return m
}

func (m *Message) Del(tag int) error {
	if _, ok := m.fields[tag]; !ok {
		return ErrorKeyNotFound
	}
	delete(m.fields, tag)
	return nil
}

func (m *Message) MsgType() string {
	return m.fields[tagMsgType]
}

func (m *Message) SeqNum() uint64 {
	seq, err := strconv.ParseUint(m.fields[tagMsgSeqNum], 10, 64)
	if err != nil {
		return 0
	}
	return seq
}

// Fields returns a copy of the stored fields. Tags 9 and 10 are absent since
// they are derived.
func (m *Message) Fields() map[int]string {
	result := make(map[int]string, len(m.fields))
	for tag, value := range m.fields {
		result[tag] = value
	}
	return result
}

// BodyLength is the byte count of every stored field except tag 8, each
// rendered as tag=value followed by the delimiter. Tags 9 and 10 contribute
// nothing: the length describes the body between them.
func (m *Message) BodyLength() int {
	length := 0
	for tag, value := range m.fields {
		if tag == tagBeginString {
			continue
		}
		length += len(strconv.Itoa(tag)) + 1 + len(value) + 1
	}
	return length
}

// Checksum sums the ASCII values of the whole rendered message including the
// computed tag 9 field and excluding tag 10, modulo 256, zero-padded to three
// digits. The sum does not depend on field order.
func (m *Message) Checksum() string {
	sum := fieldByteSum(tagBeginString, beginString)
	sum += fieldByteSum(tagBodyLength, strconv.Itoa(m.BodyLength()))
	for tag, value := range m.fields {
		if tag == tagBeginString {
			continue
		}
		sum += fieldByteSum(tag, value)
	}
	checksum := strconv.Itoa(sum % 256)
	for len(checksum) < 3 {
		checksum = "0" + checksum
	}
	return checksum
}

func fieldByteSum(tag int, value string) int {
	sum := 0
	for _, b := range []byte(strconv.Itoa(tag)) {
		sum += int(b)
	}
	sum += '='
	for _, b := range []byte(value) {
		sum += int(b)
	}
	sum += 1 // SOH
	return sum
}

// Encode renders the frame: 8, 9, 35 first, the remaining tags in ascending
// order, checksum last. Nothing follows the checksum's delimiter.
func (m *Message) Encode() []byte {
	var buf bytes.Buffer
	writeField(&buf, tagBeginString, beginString)
	writeField(&buf, tagBodyLength, strconv.Itoa(m.BodyLength()))
	writeField(&buf, tagMsgType, m.fields[tagMsgType])

	rest := make([]int, 0, len(m.fields))
	for tag := range m.fields {
		if tag == tagBeginString || tag == tagMsgType {
			continue
		}
		rest = append(rest, tag)
	}
	sort.Ints(rest)
	for _, tag := range rest {
		writeField(&buf, tag, m.fields[tag])
	}

	writeField(&buf, tagChecksum, m.Checksum())
	return buf.Bytes()
}

func writeField(buf *bytes.Buffer, tag int, value string) {
	buf.WriteString(strconv.Itoa(tag))
	buf.WriteByte('=')
	buf.WriteString(value)
	buf.WriteString(soh)
}

// Decode reverses Encode. The transmitted body length is discarded and
// recomputed on access; the transmitted checksum is verified against the
// reconstructed message and a mismatch fails with ChecksumError. This is the
// only integrity check the session performs on inbound frames.
func Decode(data []byte) (*Message, error) {
	parsed := make(map[int]string)
	for _, segment := range bytes.Split(data, []byte(soh)) {
		if len(segment) == 0 {
			continue
		}
		idx := bytes.IndexByte(segment, '=')
		if idx < 0 {
			return nil, FormatError("field without separator: " + string(segment))
		}
		tag, err := strconv.Atoi(string(segment[:idx]))
		if err != nil {
			return nil, FormatError("bad tag: " + string(segment[:idx]))
		}
		parsed[tag] = string(segment[idx+1:])
	}

	key, ok := parsed[tagSenderCompID]
	if !ok {
		return nil, FormatError("missing SenderCompID")
	}
	seqStr, ok := parsed[tagMsgSeqNum]
	if !ok {
		return nil, FormatError("missing MsgSeqNum")
	}
	seq, err := strconv.ParseUint(seqStr, 10, 64)
	if err != nil {
		return nil, FormatError("bad MsgSeqNum: " + seqStr)
	}
	msgType, ok := parsed[tagMsgType]
	if !ok {
		return nil, FormatError("missing MsgType")
	}
	expected, ok := parsed[tagChecksum]
	if !ok {
		return nil, FormatError("missing Checksum")
	}

	delete(parsed, tagBeginString)
	delete(parsed, tagBodyLength)
	delete(parsed, tagChecksum)
	delete(parsed, tagSenderCompID)
	delete(parsed, tagMsgSeqNum)
	delete(parsed, tagMsgType)

	msg := NewMessage(key, seq, msgType)
	for tag, value := range parsed {
		msg.fields[tag] = value
	}

	if computed := msg.Checksum(); computed != expected {
		return nil, &ChecksumError{Expected: expected, Computed: computed}
	}
	return msg, nil
}
