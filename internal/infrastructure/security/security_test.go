package security

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"grievance/internal/domain/entity"
)

func TestJWTRoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)
	user := &entity.User{ID: "u1", Role: entity.RoleDepartmentHead}

	token, err := svc.Issue(user)
	require.NoError(t, err)

	identity, err := svc.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "u1", identity.UserID)
	assert.Equal(t, entity.RoleDepartmentHead, identity.Role)
}

func TestJWTRejectsExpiredToken(t *testing.T) {
	issuedAt := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	svc := NewJWTService("test-secret", time.Hour).WithClock(func() time.Time { return issuedAt })

	token, err := svc.Issue(&entity.User{ID: "u1", Role: entity.RolePublic})
	require.NoError(t, err)

	svc.WithClock(func() time.Time { return issuedAt.Add(2 * time.Hour) })
	_, err = svc.Verify(context.Background(), token)
	assert.Error(t, err)
}

func TestJWTRejectsForeignSignature(t *testing.T) {
	token, err := NewJWTService("other-secret", time.Hour).Issue(&entity.User{ID: "u1", Role: entity.RoleAdmin})
	require.NoError(t, err)

	_, err = NewJWTService("test-secret", time.Hour).Verify(context.Background(), token)
	assert.Error(t, err)
}

func TestJWTRejectsMissingClaims(t *testing.T) {
	secret := []byte("test-secret")
	now := time.Now()

	tests := map[string]Claims{
		"unknown role": {
			Role: "superuser",
			RegisteredClaims: jwt.RegisteredClaims{
				Subject: "u1", Issuer: issuer, ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			},
		},
		"no expiry": {
			Role:             entity.RolePublic,
			RegisteredClaims: jwt.RegisteredClaims{Subject: "u1", Issuer: issuer},
		},
		"wrong issuer": {
			Role: entity.RolePublic,
			RegisteredClaims: jwt.RegisteredClaims{
				Subject: "u1", Issuer: "someone-else", ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			},
		},
	}

	svc := NewJWTService(string(secret), time.Hour)
	for name, claims := range tests {
		t.Run(name, func(t *testing.T) {
			token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
			require.NoError(t, err)

			_, err = svc.Verify(context.Background(), token)
			assert.Error(t, err)
		})
	}
}

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("s3cret!")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret!", hash)
	assert.True(t, h.Compare(hash, "s3cret!"))
	assert.False(t, h.Compare(hash, "wrong"))

	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(0).cost)
}
