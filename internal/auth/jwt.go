// Package auth mints and checks the HS256 tokens used for authority session
// cookies and for the device control API.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/corral/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the standard claims plus a scope restricting what the token
// may be used for.
type Claims struct {
	jwt.RegisteredClaims
	Scope string `json:"scope,omitempty"`
}

func GenerateToken(subject, scope string, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		Scope: scope,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken validates tokenString. Expired tokens yield
// common.ErrTokenExpired, anything else unusable common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}

// SubjectForScope returns the token subject if the token is valid and was
// minted for scope.
func SubjectForScope(tokenString, scope string, secretKey []byte) (string, error) {
	c, err := ParseToken(tokenString, secretKey)
	if err != nil {
		return "", err
	}
	if c.Scope != scope {
		return "", fmt.Errorf("%w: scope %q", common.ErrInvalidToken, c.Scope)
	}
	return c.Subject, nil
}
