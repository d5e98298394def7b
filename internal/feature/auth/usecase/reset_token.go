package usecase

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

const (
	resetTokenBytes = 20
	// ResetTokenTTL is how long an emailed reset link stays usable.
	ResetTokenTTL = 15 * time.Minute
)

// newResetToken returns a hex encoded 160-bit random token.
func newResetToken() (string, error) {
	b := make([]byte, resetTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate reset token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// digestResetToken is the value persisted for token: HMAC-SHA256 keyed with
// secret, or plain SHA-256 when no secret is configured.
func digestResetToken(secret []byte, token string) string {
	if len(secret) == 0 {
		sum := sha256.Sum256([]byte(token))
		return hex.EncodeToString(sum[:])
	}
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(token))
	return hex.EncodeToString(mac.Sum(nil))
}
