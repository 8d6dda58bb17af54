package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"github.com/dmitrijs2005/hrkeeper/internal/common"
)

const tokenBytes = 32

// NewToken returns a random opaque token and the hash to store for it.
func NewToken() (token, hash string, err error) {
	token, err = common.MakeRandHexString(tokenBytes)
	if err != nil {
		return "", "", err
	}
	return token, HashToken(token), nil
}

// HashToken is the SHA-256 hex digest stored in place of a bearer token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// CSRFToken derives the CSRF token of a session. It never needs storage:
// the server recomputes it from the session id.
func CSRFToken(secret []byte, sessionID string) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte("csrf:" + sessionID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyCSRF compares in constant time.
func VerifyCSRF(secret []byte, sessionID, token string) bool {
	if token == "" {
		return false
	}
	return hmac.Equal([]byte(CSRFToken(secret, sessionID)), []byte(token))
}
