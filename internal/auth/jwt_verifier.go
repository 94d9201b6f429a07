package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"noteshelf/internal/config"
	"noteshelf/internal/domain"
	"noteshelf/internal/domain/models"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

// JWKSVerifier implements JWTVerifier with public keys fetched from a JWKS
// endpoint.
type JWKSVerifier struct {
	jwks   keyfunc.Keyfunc
	logger *slog.Logger
}

// NewJWKSVerifier creates a verifier backed by jwksURL. keyfunc caches the
// key set and refreshes it on unknown key ids.
func NewJWKSVerifier(ctx context.Context, jwksURL string, logger *slog.Logger) (*JWKSVerifier, error) {
	if jwksURL == "" {
		return nil, errors.New("JWKS URL cannot be empty")
	}

	jwks, err := keyfunc.NewDefaultCtx(ctx, []string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("failed to create JWKS client: %w", err)
	}

	logger.Info("JWT verifier initialized", "mode", "jwks", "jwks_url", jwksURL)

	return &JWKSVerifier{
		jwks:   jwks,
		logger: logger,
	}, nil
}

// VerifyToken validates a token signed with RS256 or ES256
func (v *JWKSVerifier) VerifyToken(tokenString string) (*models.Claims, error) {
	// WithValidMethods blocks algorithm confusion (e.g. HS256 with a public key)
	token, err := jwt.ParseWithClaims(tokenString, &models.Claims{}, v.jwks.Keyfunc,
		jwt.WithValidMethods([]string{"RS256", "ES256"}),
	)
	if err != nil {
		v.logger.Debug("token parse failed", "error", err)
		return nil, domain.ErrUnauthorized
	}
	return checkClaims(token, v.logger)
}

// Close is a no-op: keyfunc stops its refresh goroutine with the context
// passed to NewJWKSVerifier.
func (v *JWKSVerifier) Close() error {
	v.logger.Info("JWT verifier closed")
	return nil
}

// HMACVerifier implements JWTVerifier for HS256 tokens signed with a shared
// secret. Used for local development and tests.
type HMACVerifier struct {
	secret []byte
	logger *slog.Logger
}

// NewHMACVerifier creates a verifier for tokens signed with secret
func NewHMACVerifier(secret string, logger *slog.Logger) (*HMACVerifier, error) {
	if secret == "" {
		return nil, errors.New("JWT secret cannot be empty")
	}
	logger.Info("JWT verifier initialized", "mode", "hmac")
	return &HMACVerifier{secret: []byte(secret), logger: logger}, nil
}

// VerifyToken validates an HS256 token
func (v *HMACVerifier) VerifyToken(tokenString string) (*models.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.Claims{}, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		v.logger.Debug("token parse failed", "error", err)
		return nil, domain.ErrUnauthorized
	}
	return checkClaims(token, v.logger)
}

func (v *HMACVerifier) Close() error {
	return nil
}

// NewVerifier picks JWKS verification when JWKS_URL is set, otherwise the
// shared secret.
func NewVerifier(ctx context.Context, cfg *config.Config, logger *slog.Logger) (JWTVerifier, error) {
	switch {
	case cfg.JWKSURL != "":
		return NewJWKSVerifier(ctx, cfg.JWKSURL, logger)
	case cfg.JWTSecret != "":
		return NewHMACVerifier(cfg.JWTSecret, logger)
	default:
		return nil, errors.New("either JWKS_URL or JWT_SECRET must be set")
	}
}

// checkClaims enforces the claims every accepted token must carry
func checkClaims(token *jwt.Token, logger *slog.Logger) (*models.Claims, error) {
	claims, ok := token.Claims.(*models.Claims)
	if !ok || !token.Valid {
		logger.Warn("token claims could not be read")
		return nil, domain.ErrUnauthorized
	}

	if claims.Subject == "" {
		logger.Debug("token missing subject claim")
		return nil, domain.ErrUnauthorized
	}

	switch claims.Role {
	case "":
		claims.Role = models.RoleUser
	case models.RoleUser, models.RoleAdmin:
	default:
		logger.Warn("token has unknown role", "role", claims.Role, "user_id", claims.Subject)
		return nil, domain.ErrUnauthorized
	}

	return claims, nil
}
