// Package tokens generates session tokens and email verification codes
// from crypto/rand.
package tokens

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"math/big"
	"strings"
)

// SessionTokenBytes is the entropy of a session token (256 bits).
const SessionTokenBytes = 32

// CodeDigits is the width of a verification code.
const CodeDigits = 6

// Generator produces opaque session tokens and numeric codes.
type Generator struct {
	rand io.Reader
}

// New returns a Generator backed by crypto/rand.
func New() *Generator {
	return &Generator{rand: rand.Reader}
}

// NewWithReader returns a Generator reading randomness from r.
func NewWithReader(r io.Reader) *Generator {
	return &Generator{rand: r}
}

// SessionToken returns a URL-safe token with SessionTokenBytes of entropy.
func (g *Generator) SessionToken() (string, error) {
	buf := make([]byte, SessionTokenBytes)
	if _, err := io.ReadFull(g.rand, buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// VerificationCode returns a uniformly random CodeDigits-wide decimal string.
// Leading zeros are kept.
func (g *Generator) VerificationCode() (string, error) {
	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(CodeDigits), nil)
	n, err := rand.Int(g.rand, max)
	if err != nil {
		return "", fmt.Errorf("draw verification code: %w", err)
	}
	code := n.String()
	return strings.Repeat("0", CodeDigits-len(code)) + code, nil
}

// maskRevealMinLen is the shortest secret Mask shows any characters of.
// Verification codes are always masked entirely.
const maskRevealMinLen = 32

// Mask hides a secret for logging. Secrets of at least 32 characters keep
// their last four characters; shorter ones are fully masked.
func Mask(secret string) string {
	if len(secret) < maskRevealMinLen {
		return strings.Repeat("*", len(secret))
	}
	return strings.Repeat("*", len(secret)-4) + secret[len(secret)-4:]
}
