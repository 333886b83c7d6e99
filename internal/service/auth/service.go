package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/realtorist/realtorist-api/internal/domain"
	"github.com/realtorist/realtorist-api/internal/store"
)

// Token is an issued access token.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// Service authenticates the single admin account whose credentials live in
// the profile and password settings documents.
type Service struct {
	settings store.SettingsStore
	tokens   TokenService
	hasher   PasswordHasher
	logger   *slog.Logger
}

// NewService creates an auth Service.
func NewService(
	settings store.SettingsStore,
	tokens TokenService,
	hasher PasswordHasher,
	logger *slog.Logger,
) (*Service, error) {
	if settings == nil {
		return nil, domain.NewValidationError("settings", "cannot be nil", domain.ErrValidation)
	}
	if tokens == nil {
		return nil, domain.NewValidationError("tokens", "cannot be nil", domain.ErrValidation)
	}
	if hasher == nil {
		return nil, domain.NewValidationError("hasher", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		settings: settings,
		tokens:   tokens,
		hasher:   hasher,
		logger:   logger.With("component", "auth_service"),
	}, nil
}

// Login checks email and password against the stored admin credentials and
// issues a token bound to the current password GUID.
func (s *Service) Login(ctx context.Context, email, password string) (*Token, error) {
	profile, pwd, err := s.credentials(ctx)
	if err != nil {
		return nil, err
	}

	if !strings.EqualFold(email, profile.Email) {
		s.logger.InfoContext(ctx, "login rejected: unknown email")
		return nil, ErrInvalidCredentials
	}
	if err := s.hasher.Compare(pwd.Hash, password); err != nil {
		s.logger.InfoContext(ctx, "login rejected: wrong password")
		return nil, ErrInvalidCredentials
	}

	value, expiresAt, err := s.tokens.GenerateToken(ctx, profile.Email, pwd.GUID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &Token{Value: value, ExpiresAt: expiresAt}, nil
}

// Authenticate validates token and checks it still matches the stored admin
// email and password GUID.
func (s *Service) Authenticate(ctx context.Context, token string) (*Claims, error) {
	if token == "" {
		return nil, ErrMissingToken
	}

	claims, err := s.tokens.ValidateToken(ctx, token)
	if err != nil {
		return nil, err
	}

	profile, pwd, err := s.credentials(ctx)
	if err != nil {
		return nil, err
	}
	if claims.Email != profile.Email || claims.PasswordGUID != pwd.GUID {
		return nil, ErrRevokedToken
	}
	return claims, nil
}

// ChangePassword replaces the admin password. The password GUID is rotated,
// which revokes every token issued before the change.
func (s *Service) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	_, pwd, err := s.credentials(ctx)
	if err != nil {
		return err
	}
	if err := s.hasher.Compare(pwd.Hash, oldPassword); err != nil {
		return ErrWrongPassword
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	next := domain.PasswordSettings{Hash: hash, GUID: uuid.New()}
	if err := s.settings.Put(ctx, domain.SettingTypePassword, next); err != nil {
		return fmt.Errorf("failed to store password: %w", err)
	}

	s.logger.InfoContext(ctx, "admin password changed")
	return nil
}

// Bootstrap seeds the profile and password settings when they are absent.
// Existing documents are never overwritten. It reports whether anything was written.
func (s *Service) Bootstrap(ctx context.Context, email, password string) (bool, error) {
	seeded := false

	var profile domain.ProfileSettings
	err := s.settings.Get(ctx, domain.SettingTypeProfile, &profile)
	switch {
	case store.IsNotFoundError(err):
		if email == "" {
			return false, domain.NewValidationError("email", "required to seed the admin profile", nil)
		}
		if err := s.settings.Put(ctx, domain.SettingTypeProfile, domain.ProfileSettings{Email: email}); err != nil {
			return false, fmt.Errorf("failed to seed profile: %w", err)
		}
		seeded = true
	case err != nil:
		return false, fmt.Errorf("failed to load profile: %w", err)
	}

	var pwd domain.PasswordSettings
	err = s.settings.Get(ctx, domain.SettingTypePassword, &pwd)
	switch {
	case store.IsNotFoundError(err):
		if err := validatePassword(password); err != nil {
			return seeded, err
		}
		hash, err := s.hasher.Hash(password)
		if err != nil {
			return seeded, err
		}
		next := domain.PasswordSettings{Hash: hash, GUID: uuid.New()}
		if err := s.settings.Put(ctx, domain.SettingTypePassword, next); err != nil {
			return seeded, fmt.Errorf("failed to seed password: %w", err)
		}
		seeded = true
	case err != nil:
		return seeded, fmt.Errorf("failed to load password: %w", err)
	}

	if seeded {
		s.logger.InfoContext(ctx, "admin account seeded")
	}
	return seeded, nil
}

func (s *Service) credentials(ctx context.Context) (*domain.ProfileSettings, *domain.PasswordSettings, error) {
	var profile domain.ProfileSettings
	if err := s.settings.Get(ctx, domain.SettingTypeProfile, &profile); err != nil {
		if store.IsNotFoundError(err) {
			return nil, nil, ErrAccountNotConfigured
		}
		return nil, nil, fmt.Errorf("failed to load profile: %w", err)
	}

	var pwd domain.PasswordSettings
	if err := s.settings.Get(ctx, domain.SettingTypePassword, &pwd); err != nil {
		if store.IsNotFoundError(err) {
			return nil, nil, ErrAccountNotConfigured
		}
		return nil, nil, fmt.Errorf("failed to load password: %w", err)
	}
	return &profile, &pwd, nil
}

// bcrypt ignores bytes past 72.
func validatePassword(password string) error {
	if len(password) < 8 {
		return domain.NewValidationError("password", "must be at least 8 characters", nil)
	}
	if len(password) > 72 {
		return domain.NewValidationError("password", "must be at most 72 bytes", nil)
	}
	return nil
}
