package firebase

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/auth"
	"github.com/google/uuid"

	"grievance/internal/domain/entity"
	"grievance/internal/domain/repository"
	"grievance/pkg/errors"
	"grievance/pkg/logger"
)

// FirebaseAuthClient verifies Firebase ID tokens. The role comes from the
// "role" custom claim when present, otherwise from the users collection.
// A first-time caller is provisioned as a citizen.
type FirebaseAuthClient struct {
	client   *auth.Client
	userRepo repository.UserRepository
}

func NewFirebaseAuthClient(client *auth.Client, userRepo repository.UserRepository) *FirebaseAuthClient {
	return &FirebaseAuthClient{
		client:   client,
		userRepo: userRepo,
	}
}

func (f *FirebaseAuthClient) Verify(ctx context.Context, idToken string) (entity.Identity, error) {
	token, err := f.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return entity.Identity{}, err
	}

	if raw, ok := token.Claims["role"].(string); ok && entity.Role(raw).Valid() {
		return entity.Identity{UserID: token.UID, Role: entity.Role(raw)}, nil
	}

	user, err := f.userRepo.GetByID(ctx, token.UID)
	if err == nil {
		return entity.Identity{UserID: user.ID, Role: user.Role}, nil
	}
	if !errors.Is(err, errors.CodeNotFound) {
		return entity.Identity{}, err
	}

	user, err = f.provision(ctx, token)
	if err != nil {
		return entity.Identity{}, err
	}
	return entity.Identity{UserID: user.ID, Role: user.Role}, nil
}

func (f *FirebaseAuthClient) provision(ctx context.Context, token *auth.Token) (*entity.User, error) {
	email, _ := token.Claims["email"].(string)
	name, _ := token.Claims["name"].(string)
	if name == "" {
		name = email
	}

	user := &entity.User{
		ID:    token.UID,
		Name:  name,
		Email: email,
		Role:  entity.RolePublic,
		// Credentials live in Firebase; the local digest is never used.
		PasswordHash: uuid.New().String(),
	}
	if err := f.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to provision user %s: %w", token.UID, err)
	}

	logger.Info("Provisioned user %s from Firebase token", token.UID)
	return user, nil
}

// SetRole stores role as a custom claim so later tokens carry it.
func (f *FirebaseAuthClient) SetRole(ctx context.Context, uid string, role entity.Role) error {
	return f.client.SetCustomUserClaims(ctx, uid, map[string]interface{}{"role": string(role)})
}
