package pkg

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const refreshTokenType = "refresh"

type Claims struct {
	UserID uint   `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type RefreshClaims struct {
	UserID uint   `json:"userId"`
	Type   string `json:"type"`
	jwt.RegisteredClaims
}

// GenerateToken issues an access token valid for expiration minutes
func GenerateToken(userID uint, email, role, secret string, expiration int) (string, error) {
	if secret == "" {
		return "", errors.New("jwt secret is not configured")
	}
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expiration) * time.Minute)),
			Subject:   fmt.Sprint(userID),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// GenerateRefreshToken issues a refresh token valid for days days
func GenerateRefreshToken(userID uint, secret string, days int) (string, error) {
	if secret == "" {
		return "", errors.New("jwt secret is not configured")
	}
	now := time.Now()
	claims := RefreshClaims{
		UserID: userID,
		Type:   refreshTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(days) * 24 * time.Hour)),
			Subject:   fmt.Sprint(userID),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func ValidateToken(token, secret string) (*Claims, error) {
	claims := &Claims{}
	if err := parse(token, secret, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func ValidateRefreshToken(token, secret string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := parse(token, secret, claims); err != nil {
		return nil, err
	}
	if claims.Type != refreshTokenType {
		return nil, errors.New("not a refresh token")
	}
	return claims, nil
}

func parse(token, secret string, claims jwt.Claims) error {
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return fmt.Errorf("invalid token: %w", err)
	}
	if !parsed.Valid {
		return errors.New("invalid token")
	}
	return nil
}
