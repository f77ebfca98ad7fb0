package auth

import (
	"crypto/subtle"
	"errors"
	"time"

	"ivr-gateway/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrBadCredentials = errors.New("bad credentials")

type Manager struct {
	secret     []byte
	issuer     string
	audience   string
	accessTTL  time.Duration
	refreshTTL time.Duration

	// role -> shared password. Login is deliberately simple: the console
	// has at most two operators (admin, analyst), configured by env.
	passwords map[string]string
}

func NewManager(cfg config.AuthConfig) (*Manager, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	if cfg.AdminPassword == "" {
		return nil, errors.New("ADMIN_PASSWORD is required")
	}

	passwords := map[string]string{"admin": cfg.AdminPassword}
	if cfg.AnalystPassword != "" {
		passwords["analyst"] = cfg.AnalystPassword
	}

	return &Manager{
		secret:     []byte(cfg.JWTSecret),
		issuer:     cfg.JWTIssuer,
		audience:   cfg.JWTAudience,
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
		passwords:  passwords,
	}, nil
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

/* ===================== LOGIN ===================== */

// Login exchanges a role+password pair for tokens.
func (m *Manager) Login(now time.Time, role, password string) (TokenPair, error) {
	want, ok := m.passwords[role]
	if !ok {
		return TokenPair{}, ErrBadCredentials
	}
	if subtle.ConstantTimeCompare([]byte(want), []byte(password)) != 1 {
		return TokenPair{}, ErrBadCredentials
	}
	return m.IssuePair(now, role)
}

// Refresh exchanges a valid refresh token for a fresh pair. The role is
// re-resolved against the configured operators, so removing an operator's
// password revokes outstanding refresh tokens.
func (m *Manager) Refresh(now time.Time, refreshToken string) (TokenPair, error) {
	claims, err := m.Verify(refreshToken, TokenTypeRefresh, now)
	if err != nil {
		return TokenPair{}, err
	}
	role := claims.Subject
	if _, ok := m.passwords[role]; !ok {
		return TokenPair{}, ErrBadCredentials
	}
	return m.IssuePair(now, role)
}

/* ===================== ISSUE TOKENS ===================== */

func (m *Manager) IssuePair(now time.Time, role string) (TokenPair, error) {
	access, err := m.issue(now, TokenTypeAccess, role, m.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}

	// Refresh tokens DO NOT carry the role claim; the subject names the
	// operator and the role is re-resolved on refresh.
	refresh, err := m.issue(now, TokenTypeRefresh, role, m.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}

/* ===================== VERIFY TOKEN ===================== */

func (m *Manager) Verify(tokenString string, expected TokenType, now time.Time) (Claims, error) {
	var claims Claims

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
	)

	_, err := parser.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		return m.secret, nil
	})
	if err != nil {
		return Claims{}, err
	}

	// Build ONE validator
	opts := []jwt.ParserOption{
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithLeeway(30 * time.Second), // clock skew tolerance
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
	}

	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}
	if m.audience != "" {
		opts = append(opts, jwt.WithAudience(m.audience))
	}

	validator := jwt.NewValidator(opts...)
	if err := validator.Validate(claims.RegisteredClaims); err != nil {
		return Claims{}, err
	}

	// Custom claims validation
	if claims.TokenType != expected {
		return Claims{}, errors.New("token_type mismatch")
	}

	// Role is required ONLY for access tokens
	if expected == TokenTypeAccess && claims.Role == "" {
		return Claims{}, errors.New("role missing in access token")
	}

	return claims, nil
}

/* ===================== INTERNAL ISSUE ===================== */

func (m *Manager) issue(now time.Time, tokenType TokenType, role string, ttl time.Duration) (string, error) {
	jti := uuid.NewString()

	roleClaim := role
	if tokenType == TokenTypeRefresh {
		roleClaim = ""
	}

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   role,
			Audience:  audienceOrNil(m.audience),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        jti,
		},
		Role:      roleClaim,
		TokenType: tokenType,
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(m.secret)
}

func audienceOrNil(aud string) jwt.ClaimStrings {
	if aud == "" {
		return nil
	}
	return jwt.ClaimStrings{aud}
}
