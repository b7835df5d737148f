package trading

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strings"

	"github.com/pkg/errors"
)

// Credentials are supplied by the external configuration collaborator.
// Secret is the base64-encoded HMAC key issued with the API key.
type Credentials struct {
	Key        string
	Secret     string
	Passphrase string
}

// signLogon computes the tag 96 signature for a Logon message: HMAC-SHA256
// over the SOH-joined prehash SendingTime|MsgType|MsgSeqNum|SenderCompID|
// TargetCompID|Passphrase, keyed by the decoded secret, rendered base64.
func signLogon(creds Credentials, sendingTime, seqNum string) (string, error) {
	secret, err := base64.StdEncoding.DecodeString(creds.Secret)
	if err != nil {
		return "", errors.WithMessage(err, "fail decode api secret")
	}
	prehash := strings.Join([]string{
		sendingTime,
		msgTypeLogon,
		seqNum,
		creds.Key,
		targetCompID,
		creds.Passphrase,
	}, soh)

	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(prehash))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}
