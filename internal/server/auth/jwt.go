package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/dmitrijs2005/hrkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Challenge purposes. A password-change token cannot be used to pass MFA
// and the other way round.
const (
	PurposeMFA            = "mfa"
	PurposePasswordChange = "password_change"
)

// Claims carries the user waiting to finish a login step. Binding, when
// set, ties the token to the credential it was issued against.
type Claims struct {
	jwt.RegisteredClaims
	UserID  string `json:"uid"`
	Purpose string `json:"purpose"`
	Binding string `json:"bnd,omitempty"`
}

// IssueChallenge signs a short-lived token that lets userID continue the
// login flow at the step named by purpose.
func IssueChallenge(userID, purpose string, secretKey []byte, ttl time.Duration) (string, error) {
	return issue(userID, purpose, "", secretKey, ttl)
}

// IssuePasswordChallenge signs a password-change token that stops working
// once the password it was issued against has been replaced.
func IssuePasswordChallenge(userID, passwordHash string, secretKey []byte, ttl time.Duration) (string, error) {
	return issue(userID, PurposePasswordChange, CredentialBinding(passwordHash), secretKey, ttl)
}

// CredentialBinding is a short digest of a stored password hash.
func CredentialBinding(passwordHash string) string {
	sum := sha256.Sum256([]byte(passwordHash))
	return hex.EncodeToString(sum[:16])
}

func issue(userID, purpose, binding string, secretKey []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:  userID,
		Purpose: purpose,
		Binding: binding,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseChallenge validates the token and returns its user id.
func ParseChallenge(tokenString, purpose string, secretKey []byte) (string, error) {
	claims, err := ParseChallengeClaims(tokenString, purpose, secretKey)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}

// ParseChallengeClaims is ParseChallenge returning every claim.
func ParseChallengeClaims(tokenString, purpose string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid || claims.Purpose != purpose || claims.UserID == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
