package trading

type ErrorResponse uint8

const (
	ErrorUnknown ErrorResponse = iota
	ErrorBadSide
	ErrorBadOrderType
	ErrorBadTimeInForce
	ErrorPostOnlyStop
	ErrorSizeAndFunds
	ErrorNoSizeOrFunds
	ErrorDuplicateClientOrder
	ErrorNotFoundOrder
	ErrorNotConnected
	ErrorConnectFailed
	ErrorReadOnlyField
	ErrorKeyNotFound
	ErrorClosed
)

func (e ErrorResponse) Error() string {
	return errorMapping[e]
}

var errorMapping = map[ErrorResponse]string{
	ErrorUnknown:              "unknown",
	ErrorBadSide:              "badSide",
	ErrorBadOrderType:         "badType",
	ErrorBadTimeInForce:       "badTimeInForce",
	ErrorPostOnlyStop:         "badTypeTimeInForceCombination",
	ErrorSizeAndFunds:         "bothSizeAndFunds",
	ErrorNoSizeOrFunds:        "neitherSizeNorFunds",
	ErrorDuplicateClientOrder: "duplicateOrder",
	ErrorNotFoundOrder:        "orderNotFound",
	ErrorNotConnected:         "notConnected",
	ErrorConnectFailed:        "connectFailed",
	ErrorReadOnlyField:        "readOnlyField",
	ErrorKeyNotFound:          "keyNotFound",
	ErrorClosed:               "sessionClosed",
}

// ChecksumError reports an inbound frame whose recomputed checksum does not
// match the transmitted tag 10 value. The frame is dropped, never the session.
type ChecksumError struct {
	Expected string
	Computed string
}

func (e *ChecksumError) Error() string {
	return "fix checksum mismatch: expected " + e.Expected + " computed " + e.Computed
}

// FormatError reports an inbound frame that does not parse as tag=value pairs.
type FormatError string

func (e FormatError) Error() string {
	return "malformed fix frame: " + string(e)
}
