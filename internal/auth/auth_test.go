package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToken_RoundTrip(t *testing.T) {
	a, err := New("secret", time.Hour)
	require.NoError(t, err)

	tok, err := a.GenerateToken(7, RoleStaff)
	require.NoError(t, err)

	claims, err := a.ValidateToken(tok)
	require.NoError(t, err)
	assert.Equal(t, 7, claims.UserId)
	assert.True(t, claims.Authorized(RoleStaff, RoleAdmin))
	assert.False(t, claims.Authorized(RoleAdmin))
	assert.True(t, claims.CanAccess(7))
	assert.False(t, claims.CanAccess(8))
}

func TestToken_Rejected(t *testing.T) {
	a, _ := New("secret", time.Hour)
	other, _ := New("other", time.Hour)

	tok, err := other.GenerateToken(1, RoleAdmin)
	require.NoError(t, err)
	_, err = a.ValidateToken(tok)
	assert.Error(t, err)

	a.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := a.GenerateToken(1, RoleAdmin)
	require.NoError(t, err)
	_, err = a.ValidateToken(expired)
	assert.Error(t, err)
}

func TestClaims_StaffID(t *testing.T) {
	staff := Claims{UserId: 7, Role: RoleStaff}

	id, err := staff.StaffID(0)
	require.NoError(t, err)
	assert.Equal(t, 7, id)

	_, err = staff.StaffID(8)
	assert.Error(t, err)

	id, err = Claims{UserId: 1, Role: RoleAdmin}.StaffID(8)
	require.NoError(t, err)
	assert.Equal(t, 8, id)
}

func TestGetClaims(t *testing.T) {
	_, err := GetClaims(context.Background())
	assert.Error(t, err)

	ctx := context.WithValue(context.Background(), Key, Claims{UserId: 3, Role: RoleAdmin})
	c, err := GetClaims(ctx)
	require.NoError(t, err)
	assert.True(t, c.CanAccess(99))
}
