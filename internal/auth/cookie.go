package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/url"
	"strings"
)

const signedPrefix = "s:"

// Signer signs session ids into cookie values of the form s:<id>.<mac>
type Signer struct {
	secret []byte
}

// NewSigner creates a signer keyed by secret
func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret)}
}

// Sign returns the cookie value for a session id
func (s *Signer) Sign(id string) string {
	return signedPrefix + id + "." + s.mac(id)
}

// Unsign verifies a cookie value and returns the session id it carries.
// Percent-encoded values are accepted.
func (s *Signer) Unsign(value string) (string, bool) {
	if decoded, err := url.QueryUnescape(value); err == nil {
		value = decoded
	}
	if !strings.HasPrefix(value, signedPrefix) {
		return "", false
	}
	value = strings.TrimPrefix(value, signedPrefix)

	dot := strings.LastIndexByte(value, '.')
	if dot <= 0 || dot == len(value)-1 {
		return "", false
	}
	id, sig := value[:dot], value[dot+1:]

	if !hmac.Equal([]byte(sig), []byte(s.mac(id))) {
		return "", false
	}
	return id, true
}

func (s *Signer) mac(id string) string {
	h := hmac.New(sha256.New, s.secret)
	h.Write([]byte(id))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}
