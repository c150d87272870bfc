package binance

import (
	"net/url"
	"strings"
)

type paramPair struct {
	key   string
	value string
}

// Params is an insertion-ordered set of request parameters. Order matters:
// the signature covers the encoded string exactly as it is sent, so the
// encoding must not reorder keys the way url.Values.Encode does.
type Params struct {
	pairs []paramPair
}

func NewParams() *Params {
	return &Params{}
}

// Set appends the pair, or replaces the value in place when the key is
// already present.
func (p *Params) Set(key, value string) *Params {
	for i := range p.pairs {
		if p.pairs[i].key == key {
			p.pairs[i].value = value
			return p
		}
	}

	p.pairs = append(p.pairs, paramPair{key: key, value: value})
	return p
}

func (p *Params) Get(key string) (string, bool) {
	for _, pair := range p.pairs {
		if pair.key == key {
			return pair.value, true
		}
	}

	return "", false
}

func (p *Params) Len() int {
	return len(p.pairs)
}

// Encode renders the canonical query string in insertion order.
func (p *Params) Encode() string {
	if len(p.pairs) == 0 {
		return ""
	}

	var sb strings.Builder
	for i, pair := range p.pairs {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(pair.key))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(pair.value))
	}

	return sb.String()
}

// redactedEncode renders the query string with the signature value masked,
// for diagnostic logging. The real signature must never reach a log sink.
func (p *Params) redactedEncode() string {
	if len(p.pairs) == 0 {
		return ""
	}

	var sb strings.Builder
	for i, pair := range p.pairs {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(pair.key))
		sb.WriteByte('=')
		if pair.key == signatureKey {
			sb.WriteString("<redacted>")
			continue
		}
		sb.WriteString(url.QueryEscape(pair.value))
	}

	return sb.String()
}
