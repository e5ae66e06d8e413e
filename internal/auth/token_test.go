package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifier_RoundTrip(t *testing.T) {
	v := NewVerifier("s3cret")
	tok, err := v.Issue(Identity{ID: "u1", Role: RoleVendor, Name: "Ana"}, time.Hour)
	require.NoError(t, err)

	id, err := v.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", id.ID)
	assert.Equal(t, RoleVendor, id.Role)
	assert.Equal(t, "Ana", id.Name)
}

func TestVerifier_Rejects(t *testing.T) {
	v := NewVerifier("s3cret")

	expired, err := v.Issue(Identity{ID: "u1", Role: RoleBuyer}, -time.Minute)
	require.NoError(t, err)
	_, err = v.Verify(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	other, err := NewVerifier("other").Issue(Identity{ID: "u1", Role: RoleBuyer}, time.Hour)
	require.NoError(t, err)
	_, err = v.Verify(other)
	assert.ErrorIs(t, err, ErrInvalidToken)

	bad := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role:             "superuser",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"},
	})
	raw, err := bad.SignedString([]byte("s3cret"))
	require.NoError(t, err)
	_, err = v.Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = v.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRole_LegacyAliases(t *testing.T) {
	r, err := ParseRole("user")
	require.NoError(t, err)
	assert.Equal(t, RoleBuyer, r)

	_, err = ParseRole("")
	assert.Error(t, err)
}
