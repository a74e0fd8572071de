// Package auth issues and checks the HS256 session tokens handed to the
// registration UI after Google sign-in.
package auth

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// Issuer is stamped into every session token and required on verify.
	Issuer = "hippo-backend"

	defaultSessionTTL = 24 * time.Hour
	clockSkew         = 30 * time.Second
	devSecret         = "dev-secret"
)

var (
	errMissingSecret = errors.New("jwt secret not configured")
	ErrInvalidToken  = errors.New("invalid token")
)

// Claims is the profile snapshot carried by a session. Subject is the user id
// ("google:<sub>").
type Claims struct {
	Email   string `json:"email,omitempty"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
	jwt.RegisteredClaims
}

// SignJWT fills issuer, issued-at and expiry when unset and signs with JWT_SECRET.
func SignJWT(claims Claims) (string, error) {
	if strings.TrimSpace(claims.Subject) == "" {
		return "", errors.New("sub is required")
	}
	secret, err := signingSecret()
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	if claims.Issuer == "" {
		claims.Issuer = Issuer
	}
	if claims.IssuedAt == nil {
		claims.IssuedAt = jwt.NewNumericDate(now)
	}
	if claims.ExpiresAt == nil {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(sessionTTL()))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// VerifyJWT returns the claims of a valid, unexpired token from this issuer.
// Every failure collapses to ErrInvalidToken.
func VerifyJWT(token string) (Claims, error) {
	secret, err := signingSecret()
	if err != nil {
		return Claims{}, err
	}

	var claims Claims
	_, err = jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(clockSkew),
	)
	if err != nil || claims.Subject == "" {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}

// sessionTTL reads JWT_TTL (a Go duration) and falls back to a day.
func sessionTTL() time.Duration {
	if d, err := time.ParseDuration(strings.TrimSpace(os.Getenv("JWT_TTL"))); err == nil && d > 0 {
		return d
	}
	return defaultSessionTTL
}

func signingSecret() ([]byte, error) {
	secret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
	if secret != "" {
		return []byte(secret), nil
	}
	switch strings.ToLower(strings.TrimSpace(os.Getenv("ENV"))) {
	case "production", "prod":
		return nil, fmt.Errorf("%w: JWT_SECRET required in production", errMissingSecret)
	}
	return []byte(devSecret), nil
}
