package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartstudy/internal/model"
)

func TestManager_IssueVerify(t *testing.T) {
	m := NewManager("secret", 24*time.Hour)

	token, err := m.Issue("user-1", model.RoleAdmin)
	require.NoError(t, err)

	id, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", id.UserID)
	assert.True(t, id.IsAdmin())
}

func TestManager_Verify_Rejects(t *testing.T) {
	issuedAt := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewManager("secret", 24*time.Hour)
	m.now = func() time.Time { return issuedAt }

	valid, err := m.Issue("user-1", model.RoleStudent)
	require.NoError(t, err)

	other := NewManager("other-secret", time.Hour)
	other.now = m.now
	foreign, err := other.Issue("user-1", model.RoleAdmin)
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Issuer: issuer, Subject: "user-1", ExpiresAt: jwt.NewNumericDate(issuedAt.Add(time.Hour))},
		Role:             model.RoleAdmin,
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	badRole, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Issuer: issuer, Subject: "user-1", ExpiresAt: jwt.NewNumericDate(issuedAt.Add(time.Hour))},
		Role:             "superuser",
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		at    time.Time
	}{
		{"garbage", "not-a-token", issuedAt},
		{"wrong secret", foreign, issuedAt},
		{"alg none", none, issuedAt},
		{"unknown role", badRole, issuedAt},
		{"expired", valid, issuedAt.Add(24*time.Hour + time.Second)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			at := tt.at
			m.now = func() time.Time { return at }
			_, err := m.Verify(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}

	m.now = func() time.Time { return issuedAt.Add(23 * time.Hour) }
	_, err = m.Verify(valid)
	assert.NoError(t, err, "token is valid until its 24h expiry")
}
