// Package middleware provides HTTP middleware for logging, tracing, metrics
// and identity-provider token verification.
package middleware

import (
	"strings"
	"sync"

	"pulse/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// Locals keys set by IdentityRequired.
const (
	ExternalIDLocal = "externalID"
	ClaimsLocal     = "identityClaims"
)

// IdentityClaims are the claims we read from the identity provider's token.
// Subject is the stable external user identifier.
type IdentityClaims struct {
	Email    string `json:"email,omitempty"`
	Name     string `json:"name,omitempty"`
	Username string `json:"username,omitempty"`
	Picture  string `json:"picture,omitempty"`
	jwt.RegisteredClaims
}

var (
	cfgMu sync.RWMutex
	cfg   *config.Config
)

// InitMiddleware initializes identity middleware with the given config.
func InitMiddleware(c *config.Config) {
	cfgMu.Lock()
	defer cfgMu.Unlock()
	cfg = c
}

func currentConfig() *config.Config {
	cfgMu.RLock()
	defer cfgMu.RUnlock()
	return cfg
}

// IdentityRequired verifies the bearer token issued by the identity provider
// and stores the external user id and claims in locals. It does not touch the
// database: mapping to an internal user is the identity resolver's job.
func IdentityRequired(c *fiber.Ctx) error {
	conf := currentConfig()
	if conf == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Identity verification is not configured",
		})
	}

	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authorization header required",
		})
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid authorization header format",
		})
	}

	claims, err := ParseIdentityToken(conf, parts[1])
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid or expired token",
		})
	}

	c.Locals(ExternalIDLocal, claims.Subject)
	c.Locals(ClaimsLocal, claims)
	return c.Next()
}

// ParseIdentityToken validates the signature, expiry, issuer and subject of
// an identity token.
func ParseIdentityToken(conf *config.Config, tokenString string) (*IdentityClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
		jwt.WithExpirationRequired(),
	}
	if conf.IDPIssuer != "" {
		opts = append(opts, jwt.WithIssuer(conf.IDPIssuer))
	}

	claims := &IdentityClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (interface{}, error) {
		return []byte(conf.IDPJWTSecret), nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, jwt.ErrTokenInvalidSubject
	}
	return claims, nil
}
