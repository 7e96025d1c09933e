package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/taskboard-api/internal/dto"
	"github.com/noah-isme/taskboard-api/internal/models"
	"github.com/noah-isme/taskboard-api/internal/repository"
)

var (
	// ErrEmailInUse indicates the email already belongs to an account.
	ErrEmailInUse = errors.New("email already in use")
	// ErrInvalidCredentials hides whether the email or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthenticated indicates the caller has no resolvable identity.
	ErrUnauthenticated = errors.New("authentication required")
)

// TokenIssuer signs bearer tokens for token based identity.
type TokenIssuer interface {
	Issue(user models.User) (string, error)
}

// AuthService handles registration, login and identity lookup.
type AuthService interface {
	Register(ctx context.Context, payload dto.RegisterRequest) (models.User, error)
	Login(ctx context.Context, payload dto.LoginRequest) (dto.LoginResult, error)
	Logout(ctx context.Context, actor Actor)
	Identify(ctx context.Context, userID uint) (Actor, error)
}

type authService struct {
	users     repository.UserRepository
	hasher    PasswordHasher
	tokens    TokenIssuer
	activity  ActivityRecorder
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewAuthService constructs an AuthService. tokens may be nil when identity is
// carried by the session cookie.
func NewAuthService(users repository.UserRepository, hasher PasswordHasher, tokens TokenIssuer, activity ActivityRecorder, validate *validator.Validate, logger zerolog.Logger) AuthService {
	return &authService{
		users:     users,
		hasher:    hasher,
		tokens:    tokens,
		activity:  activity,
		validator: validate,
		logger:    logger.With().Str("component", "auth_service").Logger(),
	}
}

func (s *authService) Register(ctx context.Context, payload dto.RegisterRequest) (models.User, error) {
	payload.Email = strings.TrimSpace(payload.Email)
	payload.Role = strings.ToLower(strings.TrimSpace(payload.Role))

	if err := s.validator.Struct(payload); err != nil {
		return models.User{}, err
	}

	exists, err := s.users.EmailExists(ctx, payload.Email)
	if err != nil {
		return models.User{}, err
	}
	if exists {
		return models.User{}, ErrEmailInUse
	}

	hashed, err := s.hasher.Hash(payload.Password)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		Name:     strings.TrimSpace(payload.Name),
		Surname:  strings.TrimSpace(payload.Surname),
		Email:    payload.Email,
		Password: hashed,
		Role:     payload.Role,
	}

	if err := s.users.Create(ctx, &user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.User{}, ErrEmailInUse
		}
		return models.User{}, err
	}

	s.logger.Info().Uint("user_id", user.ID).Str("role", user.Role).Msg("user registered")
	s.activity.Record(ctx, ActivityEntry{
		UserID:   &user.ID,
		Action:   "Registered",
		Metadata: map[string]interface{}{"role": user.Role, "email": user.Email},
	})

	return user, nil
}

func (s *authService) Login(ctx context.Context, payload dto.LoginRequest) (dto.LoginResult, error) {
	email := strings.TrimSpace(payload.Email)
	if email == "" || payload.Password == "" {
		return dto.LoginResult{}, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn().Str("email", maskEmail(email)).Msg("login for unknown account")
			return dto.LoginResult{}, ErrInvalidCredentials
		}
		return dto.LoginResult{}, err
	}

	if !s.hasher.Compare(user.Password, payload.Password) {
		s.logger.Warn().Uint("user_id", user.ID).Str("email", maskEmail(email)).Msg("login with wrong password")
		return dto.LoginResult{}, ErrInvalidCredentials
	}

	result := dto.LoginResult{User: dto.NewSessionUser(user)}
	if s.tokens != nil {
		token, err := s.tokens.Issue(user)
		if err != nil {
			return dto.LoginResult{}, fmt.Errorf("failed to issue token: %w", err)
		}
		result.Token = token
	}

	s.activity.Record(ctx, ActivityEntry{UserID: &user.ID, Action: "Logged in"})

	return result, nil
}

func (s *authService) Logout(ctx context.Context, actor Actor) {
	if actor.ID == 0 {
		return
	}
	s.activity.Record(ctx, ActivityEntry{UserID: &actor.ID, Action: "Logged out"})
}

// Identify reloads the user behind an identity so that role changes and
// deleted accounts are honoured on every request.
func (s *authService) Identify(ctx context.Context, userID uint) (Actor, error) {
	if userID == 0 {
		return Actor{}, ErrUnauthenticated
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Actor{}, ErrUnauthenticated
		}
		return Actor{}, err
	}
	return NewActor(user), nil
}
