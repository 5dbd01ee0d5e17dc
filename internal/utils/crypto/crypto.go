package crypto

import (
	"crypto/hmac"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"ndara/internal/utils/logger"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/ssh"
)

var log = logger.New("crypto")

var ErrNoPrivateKey = errors.New("private key not found")

// KeyPair signs service tokens with RS256
type KeyPair struct {
	PrivateKey *rsa.PrivateKey
	PublicKey  *rsa.PublicKey
}

// LoadKeys parses a base64 encoded PEM private key, as stored in PRIVATE_KEY
func LoadKeys(privateKeyEnv string) (*KeyPair, error) {
	log.Info("Initializing keys")

	if privateKeyEnv == "" {
		return nil, ErrNoPrivateKey
	}

	pemBytes, err := base64.StdEncoding.DecodeString(strings.TrimSpace(privateKeyEnv))
	if err != nil {
		return nil, fmt.Errorf("failed to decode private key: %w", err)
	}

	key, err := ssh.ParseRawPrivateKey(pemBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	private, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("private key is %T, want RSA", key)
	}
	return &KeyPair{PrivateKey: private, PublicKey: &private.PublicKey}, nil
}

// Sign issues an RS256 token carrying claims
func (k *KeyPair) Sign(claims jwt.Claims) (string, error) {
	if k == nil || k.PrivateKey == nil {
		return "", ErrNoPrivateKey
	}
	return jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(k.PrivateKey)
}

// Public returns the verification key, or nil when no pair is loaded
func (k *KeyPair) Public() *rsa.PublicKey {
	if k == nil {
		return nil
	}
	return k.PublicKey
}

func ComputeWebhookSignature(requestBody []byte, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(requestBody)
	return hex.EncodeToString(h.Sum(nil))
}

// VerifyWebhookSignature compares a hex HMAC-SHA256 signature in constant time
func VerifyWebhookSignature(requestBody []byte, secret, signature string) bool {
	want, err := hex.DecodeString(ComputeWebhookSignature(requestBody, secret))
	if err != nil {
		return false
	}
	got, err := hex.DecodeString(strings.TrimSpace(strings.TrimPrefix(signature, "sha256=")))
	if err != nil {
		return false
	}
	return hmac.Equal(want, got)
}
