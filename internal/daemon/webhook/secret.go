package webhook

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
)

// SecretLength is the length of the per-run webhook secret.
const SecretLength = 32

const secretAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// NewSecret generates a 32-character alphanumeric secret from a
// cryptographically secure RNG. The secret lives in memory and in the
// lockfile for the lifetime of the listener and is never logged.
func NewSecret() (string, error) {
	buf := make([]byte, SecretLength)
	max := big.NewInt(int64(len(secretAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate secret: %w", err)
		}
		buf[i] = secretAlphabet[n.Int64()]
	}
	return string(buf), nil
}

// secretEqual compares a presented secret against the expected one in
// constant time to prevent timing side channels.
func secretEqual(presented, expected string) bool {
	return subtle.ConstantTimeCompare([]byte(presented), []byte(expected)) == 1
}
