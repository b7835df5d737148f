package trading

import (
	"bytes"
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

var messageCounters = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "fix_message_count",
	Help: "fix income message counters",
}, []string{"gate", "type"})

var requestCounters = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "fix_request_count",
	Help: "fix send message counters",
}, []string{"gate", "type"})

var rejectCounters = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "fix_reject_count",
	Help: "fix dropped frame and reject counters",
}, []string{"gate", "type"})

func init() {
	prometheus.MustRegister(messageCounters, requestCounters, rejectCounters)
}

const (
	defaultHeartbeatInterval  = 30 * time.Second
	defaultConnectTimeout     = 10 * time.Second
	defaultMaxConnectAttempts = 4

	reconnectBaseDelay = time.Second
	reconnectMaxDelay  = 60 * time.Second
)

// calculateBackoff returns the delay before a scheduled reconnect:
// baseDelay * 2^lossCount, capped.
func calculateBackoff(lossCount int) time.Duration {
	if lossCount < 0 {
		return reconnectBaseDelay
	}
	if lossCount > 30 {
		return reconnectMaxDelay
	}
	delay := reconnectBaseDelay * time.Duration(1<<uint(lossCount))
	if delay > reconnectMaxDelay {
		return reconnectMaxDelay
	}
	return delay
}

type sessionConfig struct {
	creds              Credentials
	heartbeatInterval  time.Duration
	connectTimeout     time.Duration
	maxConnectAttempts int
	autoReconnect      bool
}

func (cfg *sessionConfig) withDefaults() sessionConfig {
	result := *cfg
	if result.heartbeatInterval == 0 {
		result.heartbeatInterval = defaultHeartbeatInterval
	}
	if result.connectTimeout == 0 {
		result.connectTimeout = defaultConnectTimeout
	}
	if result.maxConnectAttempts == 0 {
		result.maxConnectAttempts = defaultMaxConnectAttempts
	}
	return result
}

var frameAnchor = []byte("8=" + beginString + soh)

var checksumTrailerPrefix = []byte(soh + "10=")

// fixSession owns the wire connection lifecycle, the outbound sequence
// counter and the login/heartbeat sub-protocol, and dispatches inbound frames
// to the shared order table. One logical connection per session; the sequence
// counter survives reconnects and is never reused.
type fixSession struct {
	logger *zap.Logger
	conn   Connecter
	cfg    sessionConfig
	orders *ordersContainer

	sendMx sync.Mutex
	seqNum uint64

	connected    *gate
	disconnected *gate
	loggedIn     *gate
	loggedOut    *gate

	closing      uint32
	reconnecting uint32
	lossCount    uint32

	heartbeatMx     sync.Mutex
	heartbeatCancel context.CancelFunc

	inBuf []byte
}

func newFixSession(logger *zap.Logger, conn Connecter, cfg sessionConfig) *fixSession {
	session := &fixSession{
		logger:       logger,
		conn:         conn,
		cfg:          cfg.withDefaults(),
		orders:       newOrdersContainer(),
		connected:    newGate(false),
		disconnected: newGate(true),
		loggedIn:     newGate(false),
		loggedOut:    newGate(true),
	}
	go session.input()
	return session
}

// input is the single inbound ownership path: all frame decoding, dispatch
// and connection-loss handling happen here.
func (s *fixSession) input() {
	for {
		select {
		case data := <-s.conn.Data():
			s.onData(data)
		case err := <-s.conn.Closed():
			s.onConnectionLost(err)
		}
	}
}

func (s *fixSession) isClosing() bool {
	return atomic.LoadUint32(&s.closing) == 1
}

// connect dials the gateway, retrying up to maxConnectAttempts with the full
// per-attempt timeout each time, then performs the Logon handshake and starts
// the heartbeat keeper. Exhausting the attempts is terminal for this call;
// the session stays disconnected until connect is called again.
func (s *fixSession) connect(ctx context.Context) error {
	atomic.StoreUint32(&s.closing, 0)

	var err error
	for attempt := 1; attempt <= s.cfg.maxConnectAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, s.cfg.connectTimeout)
		err = s.conn.Connect(attemptCtx)
		cancel()
		if err == nil {
			break
		}
		s.logger.Warn("fix session: connect attempt failed",
			zap.String("gate", s.conn.Addr()), zap.Int("attempt", attempt), zap.Error(err))
		if ctx.Err() != nil {
			break
		}
	}
	if err != nil {
		return ErrorConnectFailed
	}

	s.disconnected.Clear()
	s.connected.Set()
	s.logger.Info("fix session: connected", zap.String("gate", s.conn.Addr()))

	if err := s.login(ctx); err != nil {
		return err
	}
	atomic.StoreUint32(&s.lossCount, 0)

	heartbeatCtx, cancel := context.WithCancel(context.Background())
	s.heartbeatMx.Lock()
	s.heartbeatCancel = cancel
	s.heartbeatMx.Unlock()
	go s.keepAlive(heartbeatCtx, s.cfg.heartbeatInterval)
	return nil
}

// send allocates the next sequence number and transmits the built message as
// one atomic step: two concurrent senders can never interleave their
// increments. The sequence number is consumed even if the transport write
// fails, so it is never reused.
func (s *fixSession) send(build func(seqNum uint64, sendingTime string) (*Message, error)) error {
	s.sendMx.Lock()
	defer s.sendMx.Unlock()
	sendingTime := time.Now().UTC().Format(sendingTimeFormat)
	msg, err := build(s.seqNum+1, sendingTime)
	if err != nil {
		return err
	}
	s.seqNum++
	msg.set(tagSendingTime, sendingTime)
	requestCounters.WithLabelValues(s.conn.Addr(), msg.MsgType()).Inc()
	return s.conn.Send(msg.Encode())
}

// login sends a signed Logon and waits for the gateway confirmation. There is
// no timeout of its own; the caller's context bounds the wait.
func (s *fixSession) login(ctx context.Context) error {
	err := s.send(func(seqNum uint64, sendingTime string) (*Message, error) {
		signature, err := signLogon(s.cfg.creds, sendingTime, strconv.FormatUint(seqNum, 10))
		if err != nil {
			return nil, err
		}
		msg := NewMessage(s.cfg.creds.Key, seqNum, msgTypeLogon)
		msg.set(tagEncryptMethod, encryptNone).
			set(tagHeartBtInt, heartbeatSecs).
			set(tagRawData, signature).
			set(tagPassword, s.cfg.creds.Passphrase).
			set(tagCancelOrdersOn, cancelThisSess)
		return msg, nil
	})
	if err != nil {
		return err
	}

	select {
	case <-s.loggedIn.Wait():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// logout sends a Logout and waits for the confirmation.
func (s *fixSession) logout(ctx context.Context) error {
	err := s.send(func(seqNum uint64, sendingTime string) (*Message, error) {
		return NewMessage(s.cfg.creds.Key, seqNum, msgTypeLogout), nil
	})
	if err != nil {
		return err
	}

	select {
	case <-s.loggedOut.Wait():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// close marks the shutdown as operator-initiated, closes the transport and
// waits for the disconnected gate. Safe to call when already disconnected.
func (s *fixSession) close(ctx context.Context) error {
	atomic.StoreUint32(&s.closing, 1)
	s.cancelHeartbeat()
	if err := s.conn.Close(); err != nil {
		s.logger.Warn("fix session: fail close transport", zap.Error(err))
	}

	select {
	case <-s.disconnected.Wait():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *fixSession) sendHeartbeat(testReqID string) error {
	return s.send(func(seqNum uint64, sendingTime string) (*Message, error) {
		msg := NewMessage(s.cfg.creds.Key, seqNum, msgTypeHeartbeat)
		if testReqID != "" {
			msg.set(tagTestReqID, testReqID)
		}
		return msg, nil
	})
}

// keepAlive waits up to interval for a logout; seeing none, it sends a
// Heartbeat and loops. Exits promptly on logout or cancellation.
func (s *fixSession) keepAlive(ctx context.Context, interval time.Duration) {
	timer := time.NewTimer(interval)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.loggedOut.Wait():
			return
		case <-timer.C:
			if err := s.sendHeartbeat(""); err != nil {
				s.logger.Warn("fix session: fail send heartbeat", zap.Error(err))
			}
			timer.Reset(interval)
		}
	}
}

func (s *fixSession) cancelHeartbeat() {
	s.heartbeatMx.Lock()
	if s.heartbeatCancel != nil {
		s.heartbeatCancel()
		s.heartbeatCancel = nil
	}
	s.heartbeatMx.Unlock()
}

// onData buffers raw bytes and carves out complete frames. Frames may arrive
// concatenated or split across reads; the 8=FIX.4.2<SOH> prefix anchors each
// message and an incomplete trailing frame is held for the next read.
func (s *fixSession) onData(data []byte) {
	s.inBuf = append(s.inBuf, data...)
	for {
		frame, rest, ok := nextFrame(s.inBuf)
		s.inBuf = rest
		if !ok {
			return
		}
		s.dispatch(frame)
	}
}

// nextFrame extracts the first complete frame from buf. A frame is complete
// when the next anchor follows it, or when it ends with a full checksum
// trailer (<SOH>10=ddd<SOH>).
func nextFrame(buf []byte) (frame, rest []byte, ok bool) {
	start := bytes.Index(buf, frameAnchor)
	if start < 0 {
		return nil, buf, false
	}
	buf = buf[start:]

	if next := bytes.Index(buf[1:], frameAnchor); next >= 0 {
		return buf[:next+1], buf[next+1:], true
	}

	trailer := bytes.Index(buf, checksumTrailerPrefix)
	if trailer >= 0 {
		end := trailer + len(checksumTrailerPrefix) + 4 // 3 checksum digits + SOH
		if len(buf) >= end && buf[end-1] == 0x01 {
			return buf[:end], buf[end:], true
		}
	}
	return nil, buf, false
}

func (s *fixSession) dispatch(frame []byte) {
	msg, err := Decode(frame)
	if err != nil {
		// malformed frames are noise, never a reason to drop the session
		rejectCounters.WithLabelValues(s.conn.Addr(), "badFrame").Inc()
		s.logger.Warn("fix session: drop bad frame", zap.Error(err))
		return
	}
	messageCounters.WithLabelValues(s.conn.Addr(), msg.MsgType()).Inc()

	switch msg.MsgType() {
	case msgTypeHeartbeat:
		// liveness only
	case msgTypeTestRequest:
		testReqID, _ := msg.Get(tagTestReqID)
		if err := s.sendHeartbeat(testReqID); err != nil {
			s.logger.Warn("fix session: fail answer test request", zap.Error(err))
		}
	case msgTypeLogon:
		s.loggedOut.Clear()
		s.loggedIn.Set()
		s.logger.Info("fix session: logged in", zap.String("gate", s.conn.Addr()))
	case msgTypeLogout:
		s.loggedIn.Clear()
		s.loggedOut.Set()
		s.logger.Info("fix session: logged out", zap.String("gate", s.conn.Addr()))
	case msgTypeExecReport:
		s.handleExecReport(msg)
	case msgTypeCancelReject:
		rejectCounters.WithLabelValues(s.conn.Addr(), "cancelReject").Inc()
		reason, _ := msg.Get(tagText)
		s.logger.Warn("fix session: cancel rejected", zap.String("reason", reason))
	case msgTypeReject:
		rejectCounters.WithLabelValues(s.conn.Addr(), "reject").Inc()
		reason, _ := msg.Get(tagText)
		s.logger.Warn("fix session: message rejected", zap.String("reason", reason))
	default:
		s.logger.Warn("fix session: unhandled message type", zap.String("type", msg.MsgType()))
	}
}

func (s *fixSession) handleExecReport(msg *Message) {
	clientOrderID, _ := msg.Get(tagClOrdID)
	orderID, _ := msg.Get(tagOrderID)
	order, ok := s.orders.resolve(ClientOrderID(clientOrderID), orderID)
	if !ok {
		// possibly an order from a previous session; drop, never escalate
		s.logger.Warn("fix session: execution report for unknown order",
			zap.String("clientOrderId", clientOrderID), zap.String("orderId", orderID))
		return
	}

	if err := order.applyReport(msg); err != nil {
		execType, _ := msg.Get(tagExecType)
		s.logger.Warn("fix session: unexpected exec type",
			zap.String("execType", execType), zap.String("clientOrderId", clientOrderID))
		return
	}

	execType, _ := msg.Get(tagExecType)
	switch reportType, _ := reportTypeFromFixCode(execType); reportType {
	case ReportTypeNew, ReportTypeStopped, ReportTypeRejected:
		s.orders.rekey(order)
	}
}

// onConnectionLost settles the gates, stops the heartbeat keeper and, when
// the loss was not operator-initiated and auto-reconnect is on, schedules one
// fresh connect. Reconnects are serialized: a second loss while one is being
// handled does not start another.
func (s *fixSession) onConnectionLost(cause error) {
	s.connected.Clear()
	s.disconnected.Set()
	s.loggedIn.Clear()
	s.loggedOut.Set()
	s.cancelHeartbeat()
	s.inBuf = nil

	if s.isClosing() {
		s.logger.Info("fix session: closed", zap.String("gate", s.conn.Addr()))
		return
	}
	s.logger.Warn("fix session: connection lost",
		zap.String("gate", s.conn.Addr()), zap.Error(cause))
	if !s.cfg.autoReconnect {
		return
	}
	if !atomic.CompareAndSwapUint32(&s.reconnecting, 0, 1) {
		return
	}

	delay := calculateBackoff(int(atomic.AddUint32(&s.lossCount, 1)) - 1)
	go func() {
		defer atomic.StoreUint32(&s.reconnecting, 0)
		time.Sleep(delay)
		if s.isClosing() {
			return
		}
		if err := s.connect(context.Background()); err != nil {
			s.logger.Error("fix session: reconnect failed",
				zap.String("gate", s.conn.Addr()), zap.Error(err))
		}
	}()
}
