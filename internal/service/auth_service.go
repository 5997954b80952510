package service

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/medikart/medikart-backend/internal/apperrors"
	"github.com/medikart/medikart-backend/internal/auth"
	"github.com/medikart/medikart-backend/internal/logging"
	"github.com/medikart/medikart-backend/internal/models"
	"github.com/medikart/medikart-backend/internal/repository"
)

const bcryptCost = 12

// RegisterInput is the self-service signup payload.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Address  models.ShippingAddress
}

// AuthResult pairs a user with a freshly issued token.
type AuthResult struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// AuthService handles registration and login.
type AuthService struct {
	users  repository.UserRepository
	tokens *auth.TokenManager
	logger *logging.Logger
}

func NewAuthService(users repository.UserRepository, tokens *auth.TokenManager) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		logger: logging.NewLogger("auth-service"),
	}
}

// Register creates an account and returns it with a token. Email must
// be unused. Self-registered accounts always get the user role; staff
// accounts are provisioned out of band.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if input.Name == "" {
		return nil, apperrors.NewValidationError("name", "Name is required")
	}
	if input.Email == "" || !strings.Contains(input.Email, "@") {
		return nil, apperrors.NewValidationError("email", "Valid email is required")
	}
	if len(input.Password) < 6 {
		return nil, apperrors.NewValidationError("password", "Password must be at least 6 characters")
	}

	if _, err := s.users.GetByEmail(ctx, input.Email); err == nil {
		return nil, apperrors.NewValidationError("email", "Email already registered")
	} else if !apperrors.IsNotFound(err) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:     input.Name,
		Email:    input.Email,
		Password: string(hash),
		Phone:    input.Phone,
		Address:  input.Address,
		Role:     models.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("User registered", logging.Fields{
		"user_id": user.ID.Hex(),
		"role":    string(user.Role),
	})

	return &AuthResult{User: user, Token: token}, nil
}

// Login verifies credentials and issues a token. Unknown email and bad
// password produce the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewUnauthorizedError("Invalid email or password")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, apperrors.NewUnauthorizedError("Invalid email or password")
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("User logged in", logging.Fields{"user_id": user.ID.Hex()})

	return &AuthResult{User: user, Token: token}, nil
}
