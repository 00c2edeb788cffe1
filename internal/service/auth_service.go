package service

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"blogsphere/internal/auth"
	apperrors "blogsphere/internal/errors"
	"blogsphere/internal/logging"
	"blogsphere/internal/model"
	"blogsphere/internal/repository"
)

const bcryptCost = 10

var (
	// ErrInvalidCredentials is returned when email or password is incorrect.
	ErrInvalidCredentials = apperrors.Unauthenticated("invalid email or password")
	// ErrUserAlreadyExists is returned when trying to register an existing email.
	ErrUserAlreadyExists = apperrors.Conflict("User with this email already exists")
	// ErrRegistrationClosed is returned when settings disable self-registration.
	ErrRegistrationClosed = apperrors.Forbidden("registration is currently disabled")
)

// AuthService handles authentication operations.
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*model.User, error)
	Login(ctx context.Context, email, password string) (token string, user *model.User, err error)
	Logout(ctx context.Context, identity *auth.Identity) error
	Me(ctx context.Context, identity *auth.Identity) (*model.User, error)
}

type authService struct {
	users      repository.UserRepository
	settings   SettingsService
	jwtService *auth.JWTService
	tokenStore auth.TokenStoreInterface
	log        logging.Logger
	now        func() time.Time
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	users repository.UserRepository,
	settings SettingsService,
	jwtService *auth.JWTService,
	tokenStore auth.TokenStoreInterface,
	log logging.Logger,
) AuthService {
	return &authService{
		users:      users,
		settings:   settings,
		jwtService: jwtService,
		tokenStore: tokenStore,
		log:        log,
		now:        time.Now,
	}
}

// Register creates a regular user with a hashed password.
func (s *authService) Register(ctx context.Context, name, email, password string) (*model.User, error) {
	site, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	if !site.EnableRegistration {
		return nil, ErrRegistrationClosed
	}

	user, err := createUser(ctx, s.users, name, email, password, model.RoleUser)
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

// Login authenticates a user and issues a token.
func (s *authService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, apperrors.Store("failed to login", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.jwtService.IssueToken(user.ID, user.Role)
	if err != nil {
		return "", nil, apperrors.Store("failed to issue token", err)
	}
	return token, user, nil
}

// Logout revokes the caller's token until it would have expired.
func (s *authService) Logout(ctx context.Context, identity *auth.Identity) error {
	if identity == nil {
		return auth.ErrAuthenticationRequired
	}
	if identity.TokenID == "" {
		return nil
	}
	ttl := identity.ExpiresAt.Sub(s.now())
	if err := s.tokenStore.Revoke(ctx, identity.TokenID, ttl); err != nil {
		return apperrors.Store("failed to logout", err)
	}
	return nil
}

// Me returns the user behind an identity.
func (s *authService) Me(ctx context.Context, identity *auth.Identity) (*model.User, error) {
	if identity == nil {
		return nil, auth.ErrAuthenticationRequired
	}
	user, err := s.users.FindByID(ctx, identity.UserID)
	if err != nil {
		return nil, lookupErr(err, "User not found", "failed to fetch user")
	}
	return user, nil
}

// createUser is shared by self-registration and admin user creation.
func createUser(ctx context.Context, users repository.UserRepository, name, email, password string, role model.Role) (*model.User, error) {
	existing, err := users.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, ErrUserAlreadyExists
	}
	// If error is not "record not found", return it (could be a database error)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Store("failed to check user existence", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, apperrors.Store("failed to hash password", err)
	}

	user := &model.User{
		Name:         name,
		Email:        model.NormalizeEmail(email),
		PasswordHash: string(hashedPassword),
		Role:         role,
	}
	if err := users.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUserAlreadyExists
		}
		return nil, apperrors.Store("failed to create user", err)
	}
	return user, nil
}
