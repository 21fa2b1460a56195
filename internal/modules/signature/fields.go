package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
)

// NullRepr selects how an absent field appears in the canonical string.
// Providers disagree: one joins absent fields as "", the other as the
// literal "null".
type NullRepr int

const (
	NullAsEmpty NullRepr = iota
	NullAsLiteral
)

// FieldSigner authenticates webhooks whose signature covers an ordered
// tuple of fields extracted from the parsed body (hmacSignature protocol).
// It is intentionally a separate type from RawBodySigner: the two wire
// contracts must not share a code path.
type FieldSigner struct {
	secret   []byte
	nullRepr NullRepr
}

// NewFieldSigner keys the signer with the raw secret bytes.
func NewFieldSigner(secret string, nullRepr NullRepr) *FieldSigner {
	return &FieldSigner{secret: []byte(secret), nullRepr: nullRepr}
}

// NewFieldSignerHex keys the signer with a hex-encoded secret, decoded to
// raw bytes before use.
func NewFieldSignerHex(secretHex string, nullRepr NullRepr) (*FieldSigner, error) {
	raw, err := hex.DecodeString(secretHex)
	if err != nil {
		return nil, fmt.Errorf("signature: webhook secret is not valid hex: %w", err)
	}
	return &FieldSigner{secret: raw, nullRepr: nullRepr}, nil
}

// Canonical joins the fields with ":" in the given order. nil fields take
// the configured null representation.
func (s *FieldSigner) Canonical(fields []*string) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		switch {
		case f != nil:
			parts[i] = *f
		case s.nullRepr == NullAsLiteral:
			parts[i] = "null"
		default:
			parts[i] = ""
		}
	}
	return strings.Join(parts, ":")
}

// Sign returns the base64 HMAC-SHA256 of the canonical string.
func (s *FieldSigner) Sign(fields []*string) string {
	m := hmac.New(sha256.New, s.secret)
	m.Write([]byte(s.Canonical(fields)))
	return base64.StdEncoding.EncodeToString(m.Sum(nil))
}

// Verify checks the provided base64 signature. An empty provided
// signature is rejected before any comparison.
func (s *FieldSigner) Verify(fields []*string, provided string) bool {
	if provided == "" {
		return false
	}
	return hmac.Equal([]byte(s.Sign(fields)), []byte(provided))
}
