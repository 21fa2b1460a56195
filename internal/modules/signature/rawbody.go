package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// RawBodySigner authenticates webhooks whose signature covers the exact
// request-body bytes as received (x-vivenu-signature protocol). The body
// must be captured before any JSON parsing; re-serialization is not
// byte-identical.
type RawBodySigner struct {
	secret []byte
}

func NewRawBodySigner(secret string) *RawBodySigner {
	return &RawBodySigner{secret: []byte(secret)}
}

// Sign returns the lowercase-hex HMAC-SHA256 of body.
func (s *RawBodySigner) Sign(body []byte) string {
	m := hmac.New(sha256.New, s.secret)
	m.Write(body)
	return hex.EncodeToString(m.Sum(nil))
}

// Verify compares the recomputed digest against the provided hex
// signature, case-insensitively. An empty provided signature is rejected
// before any comparison.
func (s *RawBodySigner) Verify(body []byte, provided string) bool {
	if provided == "" {
		return false
	}
	want := s.Sign(body)
	return hmac.Equal([]byte(want), []byte(strings.ToLower(provided)))
}
