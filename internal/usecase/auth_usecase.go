package usecase

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"grievance/internal/domain/entity"
	"grievance/internal/domain/repository"
	"grievance/pkg/errors"
	"grievance/pkg/logger"
)

const minPasswordLength = 6

type AuthUseCase struct {
	userRepo repository.UserRepository
	hasher   PasswordHasher
	issuer   TokenIssuer
}

func NewAuthUseCase(userRepo repository.UserRepository, hasher PasswordHasher, issuer TokenIssuer) *AuthUseCase {
	return &AuthUseCase{
		userRepo: userRepo,
		hasher:   hasher,
		issuer:   issuer,
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Address  string
	PinCode  string
}

type AuthResult struct {
	User  *entity.User `json:"user"`
	Token string       `json:"token"`
}

// Register creates a citizen account. Staff and admin accounts are only
// created through seeding.
func (uc *AuthUseCase) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	if len(input.Password) < minPasswordLength {
		return nil, errors.BadRequest("Password must be at least 6 characters", nil)
	}

	existing, err := uc.userRepo.GetByEmail(ctx, input.Email)
	if err == nil && existing != nil {
		return nil, errors.Conflict("Email already registered")
	}
	if err != nil && !errors.Is(err, errors.CodeNotFound) {
		return nil, err
	}

	hash, err := uc.hasher.Hash(input.Password)
	if err != nil {
		return nil, errors.Internal("Failed to hash password", err)
	}

	user := &entity.User{
		ID:           uuid.New().String(),
		Name:         strings.TrimSpace(input.Name),
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		PasswordHash: hash,
		Phone:        input.Phone,
		Role:         entity.RolePublic,
		Address:      input.Address,
		PinCode:      input.PinCode,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	token, err := uc.issuer.Issue(user)
	if err != nil {
		return nil, errors.Internal("Failed to generate authentication token", err)
	}

	logger.Info("Registered user %s", user.ID)
	return &AuthResult{User: user, Token: token}, nil
}

func (uc *AuthUseCase) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, errors.CodeNotFound) {
			return nil, errors.Unauthorized("Invalid credentials", nil)
		}
		return nil, err
	}

	if !uc.hasher.Compare(user.PasswordHash, password) {
		logger.Debug("Password mismatch for user %s", user.ID)
		return nil, errors.Unauthorized("Invalid credentials", nil)
	}

	token, err := uc.issuer.Issue(user)
	if err != nil {
		return nil, errors.Internal("Failed to generate authentication token", err)
	}

	return &AuthResult{User: user, Token: token}, nil
}

func (uc *AuthUseCase) GetUserByID(ctx context.Context, id string) (*entity.User, error) {
	return uc.userRepo.GetByID(ctx, id)
}

func (uc *AuthUseCase) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return errors.BadRequest("New password must be at least 6 characters", nil)
	}
	if currentPassword == newPassword {
		return errors.BadRequest("New password must be different from the current password", nil)
	}

	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !uc.hasher.Compare(user.PasswordHash, currentPassword) {
		return errors.Unauthorized("Current password is incorrect", nil)
	}

	hash, err := uc.hasher.Hash(newPassword)
	if err != nil {
		return errors.Internal("Failed to hash password", err)
	}
	user.PasswordHash = hash

	return uc.userRepo.Update(ctx, user)
}

type SeedUserInput struct {
	Name       string
	Email      string
	Password   string
	Role       entity.Role
	Department entity.DepartmentID
}

// EnsureUser creates the account if the email is unknown, otherwise brings its
// role and department in line with input. The password of an existing account
// is left untouched.
func (uc *AuthUseCase) EnsureUser(ctx context.Context, input SeedUserInput) (*entity.User, bool, error) {
	if !input.Role.Valid() {
		return nil, false, errors.BadRequest("Invalid role: "+string(input.Role), nil)
	}

	existing, err := uc.userRepo.GetByEmail(ctx, input.Email)
	if err == nil {
		existing.Role = input.Role
		existing.Department = input.Department
		if err := uc.userRepo.Update(ctx, existing); err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}
	if !errors.Is(err, errors.CodeNotFound) {
		return nil, false, err
	}

	if len(input.Password) < minPasswordLength {
		return nil, false, errors.BadRequest("Password must be at least 6 characters", nil)
	}
	hash, err := uc.hasher.Hash(input.Password)
	if err != nil {
		return nil, false, errors.Internal("Failed to hash password", err)
	}

	user := &entity.User{
		ID:           uuid.New().String(),
		Name:         input.Name,
		Email:        strings.ToLower(input.Email),
		PasswordHash: hash,
		Role:         input.Role,
		Department:   input.Department,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, false, err
	}
	return user, true, nil
}
