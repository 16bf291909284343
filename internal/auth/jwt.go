package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ConsoleClaims is the payload of the console cookie. It names the client context whose
// storage holds the backend session; the backend token itself never leaves storage.
type ConsoleClaims struct {
	ClientID string `json:"cid"`
	jwt.RegisteredClaims
}

// JWTManager signs and validates console cookies.
type JWTManager struct {
	secret []byte
	ttl    time.Duration
}

func NewJWTManager(secret string, ttl time.Duration) *JWTManager {
	return &JWTManager{secret: []byte(secret), ttl: ttl}
}

// TTL is the lifetime of newly signed cookies.
func (m *JWTManager) TTL() time.Duration {
	return m.ttl
}

// Sign produces a compact JWT for the given client id.
func (m *JWTManager) Sign(now time.Time, clientID string) (string, *ConsoleClaims, error) {
	if clientID == "" {
		return "", nil, errors.New("empty client id")
	}
	claims := &ConsoleClaims{
		ClientID: clientID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	return signed, claims, err
}

// Parse validates the token and returns the embedded claims.
func (m *JWTManager) Parse(tokenString string) (*ConsoleClaims, error) {
	if tokenString == "" {
		return nil, errors.New("empty token")
	}

	token, err := jwt.ParseWithClaims(tokenString, &ConsoleClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*ConsoleClaims)
	if !ok || !token.Valid || claims.ClientID == "" {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}
