package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"grievance/internal/adapter/repository"
	"grievance/internal/domain/entity"
	"grievance/internal/infrastructure/security"
	"grievance/internal/usecase"
	"grievance/pkg/errors"
)

func newAuth() (*usecase.AuthUseCase, *security.JWTService) {
	jwtService := security.NewJWTService("test-secret", time.Hour)
	return usecase.NewAuthUseCase(repository.NewMemoryUserRepository(), security.NewBcryptHasher(bcrypt.MinCost), jwtService), jwtService
}

func TestRegisterAndLogin(t *testing.T) {
	auth, jwtService := newAuth()
	ctx := context.Background()

	res, err := auth.Register(ctx, usecase.RegisterInput{
		Name:     " Asha ",
		Email:    "Asha@Example.com",
		Password: "secret1",
		PinCode:  "560041",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.RolePublic, res.User.Role)
	assert.Equal(t, "asha@example.com", res.User.Email)
	assert.Equal(t, "Asha", res.User.Name)

	identity, err := jwtService.Verify(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, identity.UserID)

	login, err := auth.Login(ctx, "asha@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, login.User.ID)

	_, err = auth.Login(ctx, "asha@example.com", "wrong-pass")
	assert.True(t, errors.Is(err, errors.CodeUnauthorized))

	_, err = auth.Login(ctx, "nobody@example.com", "secret1")
	assert.True(t, errors.Is(err, errors.CodeUnauthorized))
}

func TestRegisterRejectsDuplicatesAndShortPasswords(t *testing.T) {
	auth, _ := newAuth()
	ctx := context.Background()

	_, err := auth.Register(ctx, usecase.RegisterInput{Name: "A", Email: "a@example.com", Password: "12345"})
	assert.True(t, errors.Is(err, errors.CodeBadRequest))

	_, err = auth.Register(ctx, usecase.RegisterInput{Name: "A", Email: "a@example.com", Password: "123456"})
	require.NoError(t, err)

	_, err = auth.Register(ctx, usecase.RegisterInput{Name: "B", Email: "A@example.com", Password: "123456"})
	assert.True(t, errors.Is(err, errors.CodeConflict))
}

func TestChangePassword(t *testing.T) {
	auth, _ := newAuth()
	ctx := context.Background()

	res, err := auth.Register(ctx, usecase.RegisterInput{Name: "A", Email: "a@example.com", Password: "first1"})
	require.NoError(t, err)
	id := res.User.ID

	assert.True(t, errors.Is(auth.ChangePassword(ctx, id, "first1", "first1"), errors.CodeBadRequest))
	assert.True(t, errors.Is(auth.ChangePassword(ctx, id, "first1", "abc"), errors.CodeBadRequest))
	assert.True(t, errors.Is(auth.ChangePassword(ctx, id, "wrong1", "second2"), errors.CodeUnauthorized))

	require.NoError(t, auth.ChangePassword(ctx, id, "first1", "second2"))

	_, err = auth.Login(ctx, "a@example.com", "first1")
	assert.Error(t, err)
	_, err = auth.Login(ctx, "a@example.com", "second2")
	assert.NoError(t, err)
}

func TestEnsureUser(t *testing.T) {
	auth, _ := newAuth()
	ctx := context.Background()

	user, created, err := auth.EnsureUser(ctx, usecase.SeedUserInput{
		Name:     "Admin",
		Email:    "admin@example.com",
		Password: "admin123",
		Role:     entity.RoleAdmin,
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, entity.RoleAdmin, user.Role)

	again, created, err := auth.EnsureUser(ctx, usecase.SeedUserInput{
		Email:      "admin@example.com",
		Role:       entity.RoleDepartmentHead,
		Department: entity.DepartmentRoads,
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, user.ID, again.ID)
	assert.Equal(t, entity.RoleDepartmentHead, again.Role)

	// The original password survives a re-seed.
	_, err = auth.Login(ctx, "admin@example.com", "admin123")
	assert.NoError(t, err)

	_, _, err = auth.EnsureUser(ctx, usecase.SeedUserInput{Email: "x@example.com", Password: "123456", Role: "root"})
	assert.True(t, errors.Is(err, errors.CodeBadRequest))

	_, _, err = auth.EnsureUser(ctx, usecase.SeedUserInput{Email: "y@example.com", Password: "123", Role: entity.RoleAdmin})
	assert.True(t, errors.Is(err, errors.CodeBadRequest))
}
