package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atinyakov/HydroPal/internal/models"
	"github.com/atinyakov/HydroPal/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// UserRepository defines the persistence operations
// required by the authentication service.
type UserRepository interface {
	// CreateUser stores a new user; it returns repository.ErrDuplicate
	// when the email is taken.
	CreateUser(ctx context.Context, u *models.User) error
	// EmailExists returns true if a user with the given email exists.
	EmailExists(ctx context.Context, email string) (bool, error)
	// GetUserByEmail returns repository.ErrNotFound for unknown emails.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// GetUserByID returns repository.ErrNotFound for unknown ids.
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// TokenManager mints and verifies bearer tokens.
type TokenManager interface {
	Generate(userID string, role models.Role) (string, error)
	Parse(token string) (models.Identity, error)
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	Token string            `json:"token"`
	User  models.PublicUser `json:"user"`
}

// AuthService implements registration, login, token verification, and
// profile lookup.
type AuthService struct {
	repo   UserRepository
	tokens TokenManager
	cost   int
	// dummyHash is compared against on unknown emails so both login failure
	// paths cost one bcrypt comparison.
	dummyHash []byte
}

// NewAuthService constructs an AuthService hashing passwords with the given
// bcrypt cost. Costs outside bcrypt's range fall back to bcrypt.DefaultCost.
func NewAuthService(repo UserRepository, tokens TokenManager, cost int) (*AuthService, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("hydropal-dummy-password"), cost)
	if err != nil {
		return nil, fmt.Errorf("init dummy hash: %w", err)
	}
	return &AuthService{repo: repo, tokens: tokens, cost: cost, dummyHash: dummy}, nil
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a user with role "user" and returns a token for it.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	email = NormalizeEmail(email)
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("name", "name is required")
	}
	if email == "" {
		return nil, invalid("email", "email is required")
	}

	exists, err := s.repo.EmailExists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, ErrDuplicateEmail
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleUser,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return s.issue(user)
}

// Login checks the credentials and returns a fresh token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.repo.GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issue(user)
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	token, err := s.tokens.Generate(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user.Public()}, nil
}

// Verify resolves a bearer token into the identity it was issued for.
func (s *AuthService) Verify(_ context.Context, token string) (models.Identity, error) {
	if token == "" {
		return models.Identity{}, ErrUnauthorized
	}
	id, err := s.tokens.Parse(token)
	if err != nil {
		return models.Identity{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	return id, nil
}

// Profile returns the public profile of userID.
func (s *AuthService) Profile(ctx context.Context, userID string) (*models.PublicUser, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, ErrNotFound
	}
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	p := user.Profile()
	return &p, nil
}
