package trading

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Connecter is the encrypted, ordered, reliable byte stream under a session.
// Data delivers raw inbound chunks with no framing guarantees; Closed
// delivers one event per connection loss, whatever the cause.
type Connecter interface {
	Connect(ctx context.Context) error
	Send(data []byte) error
	Close() error
	Data() <-chan []byte
	Closed() <-chan error
	Addr() string
}

type tlsConnecter struct {
	logger    *zap.Logger
	addr      string
	tlsConfig *tls.Config
	mx        sync.Mutex
	conn      *tls.Conn
	data      chan []byte
	closed    chan error
}

// NewTLSConnecter creates a TLS connecter for addr (host:port). A non-empty
// caPEM pins the gateway certificate: only chains rooted in it are accepted.
func NewTLSConnecter(addr string, caPEM []byte, logger *zap.Logger) (Connecter, error) {
	tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}
	if len(caPEM) > 0 {
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caPEM) {
			return nil, errors.New("fail parse pinned certificate")
		}
		tlsConfig.RootCAs = pool
	}
	return &tlsConnecter{
		logger:    logger,
		addr:      addr,
		tlsConfig: tlsConfig,
		data:      make(chan []byte, 64),
		closed:    make(chan error, 2),
	}, nil
}

func (c *tlsConnecter) Addr() string {
	return c.addr
}

func (c *tlsConnecter) Data() <-chan []byte {
	return c.data
}

func (c *tlsConnecter) Closed() <-chan error {
	return c.closed
}

func (c *tlsConnecter) Connect(ctx context.Context) error {
	dialer := &tls.Dialer{Config: c.tlsConfig}
	netConn, err := dialer.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return errors.WithMessage(err, "fail connect "+c.addr)
	}
	conn, ok := netConn.(*tls.Conn)
	if !ok {
		_ = netConn.Close()
		return errors.New("unexpected connection type from tls dialer")
	}

	c.mx.Lock()
	c.conn = conn
	c.mx.Unlock()

	go c.readLoop(conn)
	return nil
}

func (c *tlsConnecter) Send(data []byte) error {
	c.mx.Lock()
	conn := c.conn
	c.mx.Unlock()
	if conn == nil {
		return ErrorNotConnected
	}
	if _, err := conn.Write(data); err != nil {
		c.logger.Error("fix transport: fail send", zap.String("gate", c.addr), zap.Error(err))
		return errors.WithMessage(err, "fail send")
	}
	return nil
}

func (c *tlsConnecter) Close() error {
	c.mx.Lock()
	conn := c.conn
	c.conn = nil
	c.mx.Unlock()
	if conn == nil {
		return nil
	}
	return conn.Close()
}

func (c *tlsConnecter) readLoop(conn *tls.Conn) {
	buf := make([]byte, 4096)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			c.data <- chunk
		}
		if err != nil {
			c.mx.Lock()
			if c.conn == conn {
				c.conn = nil
			}
			c.mx.Unlock()
			select {
			case c.closed <- err:
			default:
				c.logger.Error("fix transport: discarding close event due to insufficient chan capacity")
			}
			return
		}
	}
}
