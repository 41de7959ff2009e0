package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"notes/internal/models"
	"notes/internal/repositories"

	"golang.org/x/crypto/bcrypt"
)

// DefaultHashCost is the bcrypt cost used for new passwords.
const DefaultHashCost = 12

const invalidCredentials = "Invalid email or password"

// AuthService handles registration and login.
type AuthService struct {
	userRepo repositories.UserRepository
	tokens   *TokenService
	events   EventPublisher
	hashCost int
}

// NewAuthService creates a new AuthService. events may be nil. A hashCost
// outside bcrypt's accepted range falls back to DefaultHashCost.
func NewAuthService(userRepo repositories.UserRepository, tokens *TokenService, events EventPublisher, hashCost int) *AuthService {
	if hashCost < bcrypt.MinCost || hashCost > bcrypt.MaxCost {
		hashCost = DefaultHashCost
	}
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
		events:   events,
		hashCost: hashCost,
	}
}

// RegisterInput is the signup request.
type RegisterInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// LoginInput is the login request.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult is the account together with a freshly issued token.
type AuthResult struct {
	User  *models.User
	Token string
}

func (in RegisterInput) validate() error {
	return firstFailure(
		func() error { return check(in.Username, "required", "Username is required") },
		func() error { return check(in.Password, "required", "Password is required") },
		func() error { return check(in.Email, "required", "Email is required") },
		func() error { return check(in.Email, "email", "Invalid email format") },
		func() error { return check(in.Password, "min=6", "Password must be at least 6 characters long") },
		func() error { return check(in.Username, "min=3", "Username must be at least 3 characters long") },
	)
}

func (in LoginInput) validate() error {
	return firstFailure(
		func() error { return check(in.Email, "required", "Email is required") },
		func() error { return check(in.Password, "required", "Password is required") },
		func() error { return check(in.Email, "email", "Invalid email format") },
	)
}

// Register creates an ACTIVE account and returns it with a token.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := s.tokens.Ready(); err != nil {
		log.Printf("Refusing signup: %v", err)
		return nil, configurationError(err)
	}

	role := models.RoleUser
	if models.ValidRole(in.Role) {
		role = models.Role(in.Role)
	}
	email := strings.ToLower(in.Email)

	existing, err := s.userRepo.FindByEmailOrUsername(ctx, email, in.Username)
	switch {
	case err == nil:
		field := "username"
		if existing.Email == email {
			field = "email"
		}
		return nil, conflictError(fmt.Sprintf("User with this %s already exists", field))
	case !errors.Is(err, repositories.ErrNotFound):
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &models.User{
		Username:  in.Username,
		Email:     email,
		Password:  string(hashed),
		Role:      role,
		Status:    models.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// The lookup above and the insert are not atomic; the unique
		// indexes catch the concurrent signup that slipped between them.
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, conflictError("User with this email or username already exists")
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	token, err := s.issue(user.ID)
	if err != nil {
		return nil, err
	}
	publishEvent(s.events, EventUserRegistered, user.ID, user.ID)
	return &AuthResult{User: user, Token: token}, nil
}

// Login authenticates by email and password. Unknown email and wrong
// password produce the same error.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, validationError(invalidCredentials)
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !user.IsActive() {
		return nil, newError(ErrForbidden, "Account is inactive. Please contact admin to activate your account")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		return nil, validationError(invalidCredentials)
	}

	token, err := s.issue(user.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token}, nil
}

func (s *AuthService) issue(userID string) (string, error) {
	token, err := s.tokens.Issue(userID)
	if err != nil {
		if errors.Is(err, ErrMissingSecret) {
			log.Printf("Cannot issue token: %v", err)
			return "", configurationError(err)
		}
		return "", fmt.Errorf("failed to issue token: %w", err)
	}
	return token, nil
}
