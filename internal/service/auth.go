package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/sakif/geodata-manager/internal/apperror"
	"github.com/sakif/geodata-manager/internal/auth"
	"github.com/sakif/geodata-manager/internal/model"
	"github.com/sakif/geodata-manager/internal/repository"
)

// AuthService handles registration, login, and account lookup. Login
// failures are reported with a single indistinct message so callers
// cannot probe which emails are registered.
type AuthService struct {
	users     repository.UserRepository
	passwords *auth.PasswordService
	tokens    *auth.TokenService
	validate  *validator.Validate
	logger    *slog.Logger
}

func NewAuthService(users repository.UserRepository, passwords *auth.PasswordService, tokens *auth.TokenService, logger *slog.Logger) *AuthService {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("strongpassword", validStrongPassword); err != nil {
		panic(fmt.Sprintf("registering password validator: %v", err))
	}
	return &AuthService{
		users:     users,
		passwords: passwords,
		tokens:    tokens,
		validate:  v,
		logger:    logger,
	}
}

type registerInput struct {
	Username string `validate:"required"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8,max=20,strongpassword"`
}

// validStrongPassword requires at least one uppercase letter, one
// lowercase letter, one digit, and one symbol. Length is enforced by
// the min/max tags alongside it.
func validStrongPassword(fl validator.FieldLevel) bool {
	var upper, lower, digit, symbol bool
	for _, r := range fl.Field().String() {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			symbol = true
		}
	}
	return upper && lower && digit && symbol
}

// registerMessage maps a failed validation to the message the client
// sees. Field names are lowercased to match the JSON request body.
func registerMessage(fe validator.FieldError) (field, message string) {
	switch fe.Field() {
	case "Username":
		return "username", "username is required"
	case "Email":
		if fe.Tag() == "required" {
			return "email", "email is required"
		}
		return "email", "email must be a valid email address"
	case "Password":
		switch fe.Tag() {
		case "required":
			return "password", "password is required"
		case "min", "max":
			return "password", "password must be between 8 and 20 characters"
		default:
			return "password", "password must contain an uppercase letter, a lowercase letter, a number, and a symbol"
		}
	}
	return "", "invalid request"
}

// Register validates the input, rejects taken emails, and stores the
// user with a bcrypt password hash. The plaintext password is never
// persisted or logged.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	in := registerInput{Username: username, Email: email, Password: password}
	if err := s.validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			field, message := registerMessage(verrs[0])
			return nil, apperror.ValidationFailed(field, message)
		}
		return nil, apperror.ValidationFailed("", "invalid request")
	}

	switch _, err := s.users.GetByEmail(ctx, email); {
	case err == nil:
		return nil, apperror.ValidationFailed("email", "email is already taken")
	case !errors.Is(err, apperror.ErrNotFound):
		s.logger.Error("failed to check email availability", slog.String("error", err.Error()))
		return nil, fmt.Errorf("checking email availability: %w", err)
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if isDomainError(err) {
			return nil, err
		}
		s.logger.Error("failed to create user", slog.String("error", err.Error()))
		return nil, fmt.Errorf("creating user: %w", err)
	}

	s.logger.Info("user registered",
		slog.String("id", user.ID),
		slog.String("username", user.Username),
	)
	return user, nil
}

// Login checks the credentials and returns a signed token. Unknown
// email and wrong password produce the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return "", nil, apperror.Unauthenticated("invalid credentials")
		}
		s.logger.Error("failed to look up user", slog.String("error", err.Error()))
		return "", nil, fmt.Errorf("looking up user: %w", err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return "", nil, apperror.Unauthenticated("invalid credentials")
	}

	token, err := s.tokens.Generate(user.ID, model.RoleUser)
	if err != nil {
		s.logger.Error("failed to sign token", slog.String("error", err.Error()))
		return "", nil, fmt.Errorf("signing token: %w", err)
	}

	s.logger.Info("user logged in", slog.String("id", user.ID))
	return token, user, nil
}

// Account returns the authenticated user's profile.
func (s *AuthService) Account(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if isDomainError(err) {
			return nil, err
		}
		s.logger.Error("failed to load account",
			slog.String("id", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("loading account: %w", err)
	}
	return user, nil
}
