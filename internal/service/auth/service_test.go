package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/waelosamahelmi/saroistavaloon/internal/domain"
	"github.com/waelosamahelmi/saroistavaloon/pkg/logger"
)

func newService(t *testing.T, password string) *Service {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return NewService("test-secret", string(hash), time.Hour, logger.NewNop())
}

func TestLogin(t *testing.T) {
	svc := newService(t, "s3cret")

	resp, err := svc.Login("s3cret")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)

	p, err := svc.ParseToken(resp.Token)
	require.NoError(t, err)
	assert.True(t, p.IsOperator())

	_, err = svc.Login("wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_NotConfigured(t *testing.T) {
	svc := NewService("test-secret", "", time.Hour, logger.NewNop())

	_, err := svc.Login("anything")
	assert.ErrorIs(t, err, ErrLoginDisabled)
}

func TestParseToken(t *testing.T) {
	svc := newService(t, "x")

	token, _, err := svc.Issue(domain.Principal{UserID: "anna", Role: domain.RoleCustomer})
	require.NoError(t, err)

	p, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "anna", p.UserID)
	assert.False(t, p.IsOperator())

	other := NewService("other-secret", "", time.Hour, logger.NewNop())
	_, err = other.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ParseToken("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseToken_Expired(t *testing.T) {
	svc := newService(t, "x")
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, _, err := svc.Issue(domain.Principal{UserID: "anna", Role: domain.RoleCustomer})
	require.NoError(t, err)

	_, err = svc.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseToken_UnknownRole(t *testing.T) {
	svc := newService(t, "x")

	claims := Claims{
		Role:           "superuser",
		StandardClaims: jwt.StandardClaims{Subject: "anna", ExpiresAt: time.Now().Add(time.Hour).Unix()},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = svc.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
