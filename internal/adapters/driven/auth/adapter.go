package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// serviceClaims is the JWT payload carried by a bearer token between two
// services. There is no end-user, session, or role in this system: every
// caller of the detection gRPC surface is another service, identified by
// ServiceID alone.
type serviceClaims struct {
	ServiceID string `json:"service_id"`
	jwt.RegisteredClaims
}

// Adapter issues and validates HS256 service-identity bearer tokens for
// the gRPC driving adapter's auth interceptor.
type Adapter struct {
	jwtSecret []byte
}

// NewAdapter creates an auth adapter with the given JWT signing secret.
func NewAdapter(jwtSecret string) *Adapter {
	return &Adapter{jwtSecret: []byte(jwtSecret)}
}

// GenerateToken signs a bearer token identifying serviceID, valid for ttl.
func (a *Adapter) GenerateToken(serviceID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := serviceClaims{
		ServiceID: serviceID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.jwtSecret)
}

// ParseToken validates a bearer token and returns the calling service's
// identity. Expired, malformed, or wrong-secret tokens are rejected.
func (a *Adapter) ParseToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &serviceClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.jwtSecret, nil
	})
	if err != nil {
		return "", fmt.Errorf("parse service token: %w", err)
	}

	claims, ok := token.Claims.(*serviceClaims)
	if !ok || !token.Valid || claims.ServiceID == "" {
		return "", fmt.Errorf("invalid service token claims")
	}

	return claims.ServiceID, nil
}
