package trading

import (
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type configFixTrader struct {
	Addr    string
	CertPEM []byte
	Creds   Credentials
	FeeRate decimal.Decimal
	Session sessionConfig
}

// parseDsnFix parses a space-separated DSN: credential tokens shared by every
// gateway plus one fix:// URL per gateway endpoint, e.g.
//
//	key=K secret=S passphrase=P cert_file=/etc/fix/gateway.pem fix://fix.exchange.com:4198?heartbeat=30&reconnect=true
func parseDsnFix(dsn string) ([]configFixTrader, error) {
	tokens := strings.Split(strings.Trim(dsn, " "), " ")

	var creds Credentials
	var certPEM []byte
	feeRate := decimal.Zero

	for _, token := range tokens {
		if strings.HasPrefix(token, "key=") {
			creds.Key = strings.TrimPrefix(token, "key=")
		}

		if strings.HasPrefix(token, "secret=") {
			creds.Secret = strings.TrimPrefix(token, "secret=")
		}

		if strings.HasPrefix(token, "passphrase=") {
			creds.Passphrase = strings.TrimPrefix(token, "passphrase=")
		}

		if strings.HasPrefix(token, "cert_file=") {
			pem, err := os.ReadFile(strings.TrimPrefix(token, "cert_file="))
			if err != nil {
				return nil, errors.WithMessage(err, "fail read pinned certificate")
			}
			certPEM = pem
		}

		if strings.HasPrefix(token, "fee_rate=") {
			rate, err := decimal.NewFromString(strings.TrimPrefix(token, "fee_rate="))
			if err != nil {
				return nil, errors.WithMessage(err, "invalid fee rate value")
			}
			feeRate = rate
		}
	}

	result := make([]configFixTrader, 0)
	for _, token := range tokens {
		if !strings.HasPrefix(token, "fix://") {
			continue
		}
		u, err := url.Parse(token)
		if err != nil {
			return nil, err
		}
		if u.Hostname() == "" {
			return nil, errors.New("host is empty")
		}
		if u.Port() == "" {
			return nil, errors.New("port is empty")
		}

		session := sessionConfig{creds: creds, autoReconnect: true}

		if v := u.Query().Get("heartbeat"); v != "" {
			seconds, err := strconv.Atoi(v)
			if err != nil {
				return nil, errors.WithMessage(err, "invalid heartbeat value")
			}
			session.heartbeatInterval = time.Duration(seconds) * time.Second
		}
		if v := u.Query().Get("timeout"); v != "" {
			seconds, err := strconv.Atoi(v)
			if err != nil {
				return nil, errors.WithMessage(err, "invalid timeout value")
			}
			session.connectTimeout = time.Duration(seconds) * time.Second
		}
		if v := u.Query().Get("attempts"); v != "" {
			session.maxConnectAttempts, err = strconv.Atoi(v)
			if err != nil {
				return nil, errors.WithMessage(err, "invalid attempts value")
			}
		}
		if u.Query().Get("reconnect") == "false" {
			session.autoReconnect = false
		}

		result = append(result, configFixTrader{
			Addr:    u.Hostname() + ":" + u.Port(),
			CertPEM: certPEM,
			Creds:   creds,
			FeeRate: feeRate,
			Session: session,
		})
	}

	if len(result) == 0 {
		return nil, errors.New("empty config")
	}

	return result, nil
}

func createFixTrader(logger *zap.Logger, cfg configFixTrader) (Trader, error) {
	conn, err := NewTLSConnecter(cfg.Addr, cfg.CertPEM, logger)
	if err != nil {
		return nil, errors.WithMessage(err, "fail create fix connection")
	}
	return newFixTrader(logger, conn, cfg.Session, cfg.FeeRate), nil
}

type configMockTrader struct {
	Ready bool
}

func parseDsnMock(dsn string) (*configMockTrader, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return nil, err
	}
	cfg := &configMockTrader{}
	if u.Query().Get("ready") == "true" {
		cfg.Ready = true
	}
	return cfg, nil
}

// NewTrader creates a trader from a DSN. A single fix:// endpoint yields one
// gateway session; several endpoints in the same DSN yield a failover
// cluster; mock:// yields the in-memory test double.
func NewTrader(logger *zap.Logger, dsn string) (Trader, error) {

	if strings.HasPrefix(dsn, "mock://") {
		cfg, err := parseDsnMock(dsn)
		if err != nil {
			return nil, errors.WithMessage(err, "fail parse mock dsn")
		}
		trader := NewMockTrader(logger)
		trader.SetReady(cfg.Ready)
		return trader, nil
	}

	if strings.Contains(dsn, "fix://") {
		configs, err := parseDsnFix(dsn)
		if err != nil {
			return nil, errors.WithMessage(err, "fail parse fix dsn")
		}
		if len(configs) == 1 {
			return createFixTrader(logger, configs[0])
		}
		gates := make([]Trader, 0, len(configs))
		for _, gateConf := range configs {
			gate, err := createFixTrader(logger, gateConf)
			if err != nil {
				return nil, errors.WithMessage(err, "fail create gate")
			}
			gates = append(gates, gate)
		}
		return newClusterTrader(logger, gates), nil
	}

	return nil, errors.New("config not supported")
}
