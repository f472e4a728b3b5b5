package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/theswapneil/school-management-system/internal/auth"
	"github.com/theswapneil/school-management-system/internal/crypto"
	"github.com/theswapneil/school-management-system/internal/model"
	"github.com/theswapneil/school-management-system/internal/repository"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("user not found")
	ErrInvalidCredential = errors.New("invalid credentials")
	ErrConflict          = errors.New("email already registered")
)

// NormalizeEmail lowercases and trims an address so lookups, the uniqueness
// index and the login rate-limit counter all key on the same spelling.
func NormalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

// IdentityStore is the slice of the repository the orchestrator needs.
type IdentityStore interface {
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
	GetUserByID(ctx context.Context, userID string) (model.User, error)
	CreateUser(ctx context.Context, user model.User) error
}

type AuthService struct {
	store    IdentityStore
	logger   *zap.Logger
	secret   string
	issuer   string
	tokenTTL time.Duration
}

func NewAuthService(store IdentityStore, logger *zap.Logger, secret, issuer string, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		store:    store,
		logger:   logger,
		secret:   secret,
		issuer:   issuer,
		tokenTTL: tokenTTL,
	}
}

// AuthResult pairs a freshly issued token with the identity it asserts.
// The password hash stays on the User value here; handlers render only
// public fields.
type AuthResult struct {
	Token string
	User  model.User
}

func (s *AuthService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return AuthResult{}, fmt.Errorf("%w: email and password are required", ErrValidation)
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return AuthResult{}, ErrNotFound
		}
		s.logger.Error("login lookup failed", zap.Error(err))
		return AuthResult{}, err
	}

	if err := crypto.CheckPassword(user.PasswordHash, password); err != nil {
		return AuthResult{}, ErrInvalidCredential
	}

	token, err := auth.NewAccessToken(s.secret, s.issuer, s.tokenTTL, user)
	if err != nil {
		s.logger.Error("token issuance failed", zap.Error(err))
		return AuthResult{}, err
	}

	return AuthResult{Token: token, User: user}, nil
}

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      string
	Phone     *string
	Address   *string
}

// Register creates exactly one identity record per success. The email unique
// index resolves concurrent registrations of the same address: the loser's
// insert comes back as a duplicate and surfaces as ErrConflict.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (AuthResult, error) {
	input.Email = NormalizeEmail(input.Email)
	if input.Email == "" || input.Password == "" || input.FirstName == "" || input.LastName == "" {
		return AuthResult{}, fmt.Errorf("%w: email, password, firstName and lastName are required", ErrValidation)
	}

	role := model.RoleStudent
	if input.Role != "" {
		parsed, err := model.ParseRole(input.Role)
		if err != nil {
			return AuthResult{}, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		role = parsed
	}

	if _, err := s.store.GetUserByEmail(ctx, input.Email); err == nil {
		return AuthResult{}, ErrConflict
	} else if !errors.Is(err, repository.ErrNotFound) {
		s.logger.Error("register lookup failed", zap.Error(err))
		return AuthResult{}, err
	}

	hash, err := crypto.HashPassword(input.Password)
	if err != nil {
		s.logger.Error("password hash failed", zap.Error(err))
		return AuthResult{}, err
	}

	now := time.Now().UTC()
	user := model.User{
		ID:           uuid.NewString(),
		Email:        input.Email,
		PasswordHash: hash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Role:         role,
		Phone:        input.Phone,
		Address:      input.Address,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return AuthResult{}, ErrConflict
		}
		s.logger.Error("user create failed", zap.Error(err))
		return AuthResult{}, err
	}

	token, err := auth.NewAccessToken(s.secret, s.issuer, s.tokenTTL, user)
	if err != nil {
		s.logger.Error("token issuance failed", zap.Error(err))
		return AuthResult{}, err
	}

	return AuthResult{Token: token, User: user}, nil
}

func (s *AuthService) GetUser(ctx context.Context, userID string) (model.User, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, err
	}
	return user, nil
}
