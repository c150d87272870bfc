package binance

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"
)

const (
	timestampKey = "timestamp"
	signatureKey = "signature"
)

// Clock supplies the request timestamp. Injected so tests can pin a time and
// assert an exact signature.
type Clock func() time.Time

// Signer authenticates request parameters the Binance way: a millisecond
// timestamp is appended, the parameters are encoded in insertion order, and
// the hex HMAC-SHA256 of that exact string is attached as `signature`.
type Signer struct {
	secret []byte
	clock  Clock
}

func NewSigner(secret string, clock Clock) *Signer {
	if clock == nil {
		clock = time.Now
	}

	return &Signer{
		secret: []byte(secret),
		clock:  clock,
	}
}

// Sign mutates params: timestamp first, then the signature over every pair
// present at that point. Params must be used for exactly one request.
func (s *Signer) Sign(params *Params) *Params {
	params.Set(timestampKey, strconv.FormatInt(s.clock().UnixMilli(), 10))
	params.Set(signatureKey, s.signature(params.Encode()))
	return params
}

func (s *Signer) signature(payload string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
