package trading

// FIX 4.2 tags used by the Coinbase order-entry gateway.
const (
	tagBeginString    = 8
	tagBodyLength     = 9
	tagChecksum       = 10
	tagClOrdID        = 11
	tagExecInst       = 18
	tagSecurityIDSrc  = 22
	tagLastPx         = 31
	tagLastShares     = 32
	tagMsgSeqNum      = 34
	tagMsgType        = 35
	tagOrderID        = 37
	tagOrderQty       = 38
	tagOrdStatus      = 39
	tagOrdType        = 40
	tagOrigClOrdID    = 41
	tagPrice          = 44
	tagSenderCompID   = 49
	tagSendingTime    = 52
	tagSide           = 54
	tagSymbol         = 55
	tagTargetCompID   = 56
	tagText           = 58
	tagTimeInForce    = 59
	tagRawData        = 96
	tagEncryptMethod  = 98
	tagStopPx         = 99
	tagHeartBtInt     = 108
	tagTestReqID      = 112
	tagExecType       = 150
	tagCashOrderQty   = 152
	tagPassword       = 554
	tagCancelOrdersOn = 8013
)

// MsgType (tag 35) values.
const (
	msgTypeHeartbeat    = "0"
	msgTypeTestRequest  = "1"
	msgTypeReject       = "3"
	msgTypeLogout       = "5"
	msgTypeExecReport   = "8"
	msgTypeCancelReject = "9"
	msgTypeLogon        = "A"
	msgTypeNewOrder     = "D"
	msgTypeCancelOrder  = "F"
)

const (
	beginString    = "FIX.4.2"
	targetCompID   = "Coinbase"
	securityIDSrc  = "1"
	encryptNone    = "0"
	heartbeatSecs  = "30"
	cancelThisSess = "S" // cancel-on-disconnect: only orders from this session
	execInstCOD    = "1"

	sendingTimeFormat = "20060102-15:04:05.000"
)
