package utils

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Claims are the identity claims issued by the authentication provider.
// Permissions are never read from the token; they come from the role document.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

var ErrNoVerificationKey = errors.New("no key configured for this signing method")

// NewClaims builds claims for userID valid for ttl
func NewClaims(userID, email, role string, ttl time.Duration) Claims {
	now := time.Now()
	return Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
}

// GenerateJWT signs claims with the shared HS256 secret
func GenerateJWT(claims Claims, secret string) (string, error) {
	if secret == "" {
		return "", ErrNoVerificationKey
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseJWT verifies an HS256 token against secret or an RS256 token against
// publicKey. Either may be empty, which disables that method.
func ParseJWT(tokenString, secret string, publicKey *rsa.PublicKey) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		switch token.Method.(type) {
		case *jwt.SigningMethodHMAC:
			if secret == "" {
				return nil, ErrNoVerificationKey
			}
			return []byte(secret), nil
		case *jwt.SigningMethodRSA:
			if publicKey == nil {
				return nil, ErrNoVerificationKey
			}
			return publicKey, nil
		default:
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
	})
	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, jwt.ErrSignatureInvalid
	}
	if claims.UserID == "" {
		claims.UserID = claims.Subject
	}
	if claims.UserID == "" {
		return nil, errors.New("token has no user id")
	}

	return claims, nil
}
