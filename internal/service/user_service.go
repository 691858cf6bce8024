package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"accountsvc/internal/auth"
	"accountsvc/internal/cache"
	apperrors "accountsvc/internal/errors"
	"accountsvc/internal/model"
	"accountsvc/internal/repository"
)

const userCacheTTL = 5 * time.Minute

// UpdateInput carries the optional fields of a profile update.
// The admin flag is deliberately absent: it cannot be changed here.
type UpdateInput struct {
	Name     *string
	Email    *string
	Password *string
	Age      *int
}

// UserService exposes account lifecycle operations.
type UserService interface {
	Register(ctx context.Context, email, password, name string, age int, isAdmin bool) (*model.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	Profile(ctx context.Context, id uuid.UUID) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*model.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type userService struct {
	repo       repository.UserRepository
	hasher     *auth.PasswordHasher
	jwtService *auth.JWTService
	cache      *cache.Client
}

// NewUserService builds a UserService with its dependencies.
func NewUserService(repo repository.UserRepository, hasher *auth.PasswordHasher, jwtService *auth.JWTService, cache *cache.Client) UserService {
	return &userService{
		repo:       repo,
		hasher:     hasher,
		jwtService: jwtService,
		cache:      cache,
	}
}

func (s *userService) cacheKey(id uuid.UUID) string {
	return fmt.Sprintf("user:%s", id.String())
}

// Register creates a new user with a hashed password. Email uniqueness is
// enforced here, at creation time only.
func (s *userService) Register(ctx context.Context, email, password, name string, age int, isAdmin bool) (*model.User, error) {
	existing, err := s.repo.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, apperrors.ErrEmailAlreadyRegistered
	}
	if err != nil && !errors.Is(err, apperrors.ErrUserNotFound) {
		return nil, fmt.Errorf("check user existence: %w", err)
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: hashed,
		Age:          age,
		IsAdmin:      isAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

// Login authenticates a user and returns a signed session token. Unknown
// email and wrong password produce the same error so callers cannot tell
// which one occurred.
func (s *userService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return "", apperrors.ErrInvalidCredentials
	}

	if !s.hasher.Compare(user.PasswordHash, password) {
		return "", apperrors.ErrInvalidCredentials
	}

	token, err := s.jwtService.GenerateToken(user.ID, user.IsAdmin)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}

	return token, nil
}

// Profile retrieves a user by ID with caching.
func (s *userService) Profile(ctx context.Context, id uuid.UUID) (*model.User, error) {
	if data, _ := s.cache.Get(ctx, s.cacheKey(id)); data != nil {
		var cached model.User
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(user); err == nil {
		_ = s.cache.Set(ctx, s.cacheKey(id), payload, userCacheTTL)
	}
	return user, nil
}

// List returns all users.
func (s *userService) List(ctx context.Context) ([]model.User, error) {
	return s.repo.List(ctx)
}

// Update merges the supplied fields into an existing user. The password is
// re-hashed only when a new one is supplied; the admin flag is never touched.
func (s *userService) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.Email != nil {
		user.Email = *input.Email
	}
	if input.Age != nil {
		user.Age = *input.Age
	}
	if input.Password != nil {
		hashed, err := s.hasher.Hash(*input.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hashed
	}
	user.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	_ = s.cache.Delete(ctx, s.cacheKey(id))
	return user, nil
}

// Delete removes a user. Previously issued tokens stay valid until expiry;
// they fail here on the next lookup instead.
func (s *userService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	_ = s.cache.Delete(ctx, s.cacheKey(id))
	return nil
}
