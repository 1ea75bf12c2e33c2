package token

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
)

const (
	secretBytes = 32
	linkIDBytes = 16

	secretLen = secretBytes * 2
	linkIDLen = linkIDBytes * 2
)

// ErrMalformedMagicLink is returned for tokens of an unknown shape.
var ErrMalformedMagicLink = errors.New("malformed magic link token")

// MagicLink is a freshly generated one-time login credential.
//
// Token is what the user receives. Secret is the part that is hashed and
// never stored. LinkID, when present, is a public discriminator stored in
// clear to find the owning record without hashing against every candidate.
type MagicLink struct {
	Token  string
	LinkID string
	Secret string
}

// NewMagicLink reads 256 bits of secret from rand. With discriminator set,
// a 128 bit link ID is prefixed to the token.
func NewMagicLink(rand io.Reader, discriminator bool) (MagicLink, error) {
	secret, err := randomHex(rand, secretBytes)
	if err != nil {
		return MagicLink{}, fmt.Errorf("failed to generate secret: %w", err)
	}

	if !discriminator {
		return MagicLink{Token: secret, Secret: secret}, nil
	}

	linkID, err := randomHex(rand, linkIDBytes)
	if err != nil {
		return MagicLink{}, fmt.Errorf("failed to generate link id: %w", err)
	}

	return MagicLink{
		Token:  linkID + secret,
		LinkID: linkID,
		Secret: secret,
	}, nil
}

// ParseMagicLink splits a presented token into its link ID (possibly empty)
// and secret.
func ParseMagicLink(token string) (linkID, secret string, err error) {
	switch len(token) {
	case secretLen:
		secret = token
	case linkIDLen + secretLen:
		linkID, secret = token[:linkIDLen], token[linkIDLen:]
	default:
		return "", "", ErrMalformedMagicLink
	}

	if _, err := hex.DecodeString(token); err != nil {
		return "", "", ErrMalformedMagicLink
	}

	return linkID, secret, nil
}

func randomHex(rand io.Reader, n int) (string, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(rand, b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
