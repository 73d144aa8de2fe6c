package auth

import (
	"errors"
	"strings"

	"fieldsales-service/internal/apperr"
	"fieldsales-service/pkg/jwtutil"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

// ContextKey is the echo context key holding the authenticated Principal
const ContextKey = "principal"

const bearerPrefix = "Bearer "

// Principal is the authenticated identity making a request
type Principal struct {
	TenantID  string
	SubjectID string
	Role      string
}

// IsAdmin reports whether the principal sees every row of its tenant.
func (p Principal) IsAdmin() bool {
	return strings.EqualFold(p.Role, "admin")
}

// Authenticator turns an Authorization header into a Principal
type Authenticator struct {
	jwt *jwtutil.JWTUtil
}

// NewAuthenticator creates an authenticator verifying tokens with the given utility
func NewAuthenticator(j *jwtutil.JWTUtil) *Authenticator {
	return &Authenticator{jwt: j}
}

// Authenticate decodes a "Bearer <token>" header. Tokens without a tenant are rejected.
func (a *Authenticator) Authenticate(header string) (Principal, error) {
	if header == "" {
		return Principal{}, apperr.New(apperr.MissingHeader, "Authorization header missing")
	}
	if !strings.HasPrefix(header, bearerPrefix) {
		return Principal{}, apperr.New(apperr.Malformed, "Invalid authorization format")
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
	if token == "" || strings.Contains(token, " ") {
		return Principal{}, apperr.New(apperr.Malformed, "Invalid authorization format")
	}

	claims, err := a.jwt.ValidateToken(token)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Principal{}, apperr.Wrap(err, apperr.Expired, "Token expired")
		}
		return Principal{}, apperr.Wrap(err, apperr.Invalid, "Invalid token")
	}

	if claims.ClientID == "" {
		return Principal{}, apperr.New(apperr.Invalid, "Invalid token")
	}

	return Principal{
		TenantID:  claims.ClientID,
		SubjectID: claims.Username,
		Role:      claims.Role,
	}, nil
}

// PrincipalFrom returns the principal stored by the auth middleware
func PrincipalFrom(c echo.Context) (Principal, bool) {
	p, ok := c.Get(ContextKey).(Principal)
	return p, ok
}

// RequireSubject returns the principal of a request that acts as a named user.
func RequireSubject(c echo.Context) (Principal, error) {
	p, ok := PrincipalFrom(c)
	if !ok || p.TenantID == "" {
		return Principal{}, apperr.New(apperr.Invalid, "Invalid token")
	}
	if p.SubjectID == "" {
		return Principal{}, apperr.New(apperr.Invalid, "Invalid token payload")
	}
	return p, nil
}
