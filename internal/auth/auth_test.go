package auth_test

import (
	"testing"
	"time"

	"fieldsales-service/internal/apperr"
	"fieldsales-service/internal/auth"
	"fieldsales-service/pkg/jwtutil"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/require"
)

func newAuthenticator(secret string) (*auth.Authenticator, *jwtutil.JWTUtil) {
	j := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{SigningKey: secret, ExpirationHours: 1})
	return auth.NewAuthenticator(j), j
}

func TestAuthenticate(t *testing.T) {
	a, j := newAuthenticator("secret")
	_, other := newAuthenticator("other-secret")

	valid, err := j.GenerateToken("T1", "alice", "Admin")
	require.NoError(t, err)
	noTenant, err := j.GenerateToken("", "alice", "user")
	require.NoError(t, err)
	foreign, err := other.GenerateToken("T1", "alice", "user")
	require.NoError(t, err)
	expired, err := j.Sign(jwtutil.UserClaims{
		ClientID: "T1",
		Username: "alice",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})
	require.NoError(t, err)

	tests := []struct {
		name    string
		header  string
		kind    apperr.Kind
		message string
	}{
		{name: "missing header", header: "", kind: apperr.MissingHeader, message: "Authorization header missing"},
		{name: "wrong scheme", header: "Basic abc", kind: apperr.Malformed, message: "Invalid authorization format"},
		{name: "empty token", header: "Bearer ", kind: apperr.Malformed, message: "Invalid authorization format"},
		{name: "extra parts", header: "Bearer a b", kind: apperr.Malformed, message: "Invalid authorization format"},
		{name: "garbage token", header: "Bearer not.a.jwt", kind: apperr.Invalid, message: "Invalid token"},
		{name: "wrong secret", header: "Bearer " + foreign, kind: apperr.Invalid, message: "Invalid token"},
		{name: "expired", header: "Bearer " + expired, kind: apperr.Expired, message: "Token expired"},
		{name: "no tenant", header: "Bearer " + noTenant, kind: apperr.Invalid, message: "Invalid token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Authenticate(tt.header)
			require.Error(t, err)
			require.Equal(t, tt.kind, apperr.KindOf(err))
			require.Equal(t, tt.message, apperr.Message(err))
			require.Equal(t, 401, apperr.HTTPStatus(err))
		})
	}

	t.Run("valid", func(t *testing.T) {
		p, err := a.Authenticate("Bearer " + valid)
		require.NoError(t, err)
		require.Equal(t, auth.Principal{TenantID: "T1", SubjectID: "alice", Role: "Admin"}, p)
		require.True(t, p.IsAdmin())
	})
}

func TestPrincipal_IsAdmin(t *testing.T) {
	require.True(t, auth.Principal{Role: "admin"}.IsAdmin())
	require.True(t, auth.Principal{Role: "ADMIN"}.IsAdmin())
	require.False(t, auth.Principal{Role: "salesman"}.IsAdmin())
	require.False(t, auth.Principal{}.IsAdmin())
}
