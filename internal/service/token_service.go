package service

import (
	"errors"
	"fmt"
	"time"

	"digital-delivery-gateway/internal/core/ports"

	"github.com/golang-jwt/jwt/v5"
)

// AdminScope is the only scope accepted on admin endpoints.
const AdminScope = "admin"

// JWTTokenService implements ports.TokenService using HS256 JWT.
type JWTTokenService struct {
	secret []byte
	expiry time.Duration
	issuer string
}

// NewJWTTokenService creates a new JWT token service.
func NewJWTTokenService(secret string, expiry time.Duration, issuer string) *JWTTokenService {
	return &JWTTokenService{
		secret: []byte(secret),
		expiry: expiry,
		issuer: issuer,
	}
}

// WithExpiry returns a copy of the service that mints tokens with a different lifetime.
func (s *JWTTokenService) WithExpiry(expiry time.Duration) *JWTTokenService {
	cp := *s
	cp.expiry = expiry
	return &cp
}

// Generate creates a signed admin JWT for subject (an operator name).
func (s *JWTTokenService) Generate(subject string) (string, time.Time, error) {
	if len(s.secret) == 0 {
		return "", time.Time{}, errors.New("admin jwt secret is not configured")
	}
	now := time.Now()
	expiresAt := now.Add(s.expiry)

	claims := jwt.MapClaims{
		"sub":   subject,
		"scope": AdminScope,
		"iat":   now.Unix(),
		"exp":   expiresAt.Unix(),
		"iss":   s.issuer,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing token: %w", err)
	}

	return tokenString, expiresAt, nil
}

// Validate parses and validates a JWT token, returning the claims.
func (s *JWTTokenService) Validate(tokenString string) (*ports.TokenClaims, error) {
	if len(s.secret) == 0 {
		return nil, errors.New("admin jwt secret is not configured")
	}
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return nil, fmt.Errorf("missing subject claim")
	}

	scope, _ := claims["scope"].(string)
	if scope != AdminScope {
		return nil, fmt.Errorf("token scope %q is not allowed", scope)
	}

	return &ports.TokenClaims{
		Subject: sub,
		Scope:   scope,
	}, nil
}
