package services

import (
	"chatbox-backend/internal/auth"
	"chatbox-backend/internal/logging"
	"chatbox-backend/internal/models"
	"chatbox-backend/internal/store"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

// Custom errors for auth service. Their texts are what clients display.
var (
	ErrUserAlreadyExists  = errors.New("User already exists")
	ErrUserNotFound       = errors.New("User not found")
	ErrInvalidCredentials = errors.New("Wrong password")
	ErrHashingPassword    = errors.New("failed to hash password")
	ErrCreatingToken      = errors.New("failed to create access token")
	ErrValidation         = errors.New("Missing fields")

	ErrGoogleEmailUnverified = errors.New("Google email is not verified")
	ErrGoogleAccountConflict = errors.New("Account is linked to another Google account")
)

type AuthService struct {
	store   store.Store
	tokens  *auth.Issuer
	revoked *auth.RevocationList
	log     *slog.Logger
}

func NewAuthService(s store.Store, tokens *auth.Issuer, revoked *auth.RevocationList, logger *slog.Logger) *AuthService {
	return &AuthService{
		store:   s,
		tokens:  tokens,
		revoked: revoked,
		log:     logging.Component(logger, "auth_service"),
	}
}

// Register creates a password user and signs them in.
// The email is trimmed but kept case-sensitive.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (string, *models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", nil, fmt.Errorf("%w: email and password are required", ErrValidation)
	}

	_, err := s.store.GetUserByEmail(ctx, email)
	if err == nil {
		return "", nil, ErrUserAlreadyExists
	}
	if !errors.Is(err, store.ErrNotFound) {
		s.log.ErrorContext(ctx, "checking user existence failed", "email", email, "error", err)
		return "", nil, fmt.Errorf("failed to check user existence: %w", err)
	}

	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		s.log.ErrorContext(ctx, "hashing password failed", "email", email, "error", err)
		return "", nil, ErrHashingPassword
	}

	user := &models.User{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: &hashedPassword,
		HasPassword:  true,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		// a concurrent registration can still win the unique index
		if errors.Is(err, store.ErrConflict) {
			return "", nil, ErrUserAlreadyExists
		}
		return "", nil, fmt.Errorf("creating user failed: %w", err)
	}

	token, err := s.issue(ctx, user)
	if err != nil {
		return "", nil, err
	}
	s.log.InfoContext(ctx, "user registered", "user_id", user.ID)
	return token, user, nil
}

// Login verifies email/password credentials and returns an access token and the user.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", nil, fmt.Errorf("%w: email and password are required", ErrValidation)
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", nil, ErrUserNotFound
		}
		s.log.ErrorContext(ctx, "retrieving user during login failed", "email", email, "error", err)
		return "", nil, fmt.Errorf("failed to retrieve user: %w", err)
	}

	// Google-only accounts have no hash and can never match.
	if user.PasswordHash == nil || !auth.CheckPasswordHash(password, *user.PasswordHash) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.issue(ctx, user)
	if err != nil {
		return "", nil, err
	}
	s.log.InfoContext(ctx, "user logged in", "user_id", user.ID)
	return token, user, nil
}

// LoginWithGoogle runs the federated path: find by subject, else link the
// email-matched user, else create a passwordless user.
func (s *AuthService) LoginWithGoogle(ctx context.Context, profile *auth.GoogleProfile) (string, *models.User, error) {
	if profile == nil || profile.Subject == "" || profile.Email == "" {
		return "", nil, fmt.Errorf("%w: google profile is incomplete", ErrValidation)
	}

	user, err := s.findOrCreateGoogleUser(ctx, profile)
	if err != nil {
		return "", nil, err
	}

	token, err := s.issue(ctx, user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *AuthService) findOrCreateGoogleUser(ctx context.Context, profile *auth.GoogleProfile) (*models.User, error) {
	user, err := s.store.GetUserByGoogleID(ctx, profile.Subject)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("looking up google user: %w", err)
	}

	existing, err := s.store.GetUserByEmail(ctx, profile.Email)
	switch {
	case err == nil:
		// Only a verified address may claim an account, and only once.
		if !profile.EmailVerified {
			s.log.WarnContext(ctx, "refusing to link unverified google email", "user_id", existing.ID)
			return nil, ErrGoogleEmailUnverified
		}
		if existing.GoogleID != nil {
			s.log.WarnContext(ctx, "refusing to replace linked google account", "user_id", existing.ID)
			return nil, ErrGoogleAccountConflict
		}
		linked, err := s.store.LinkGoogleAccount(ctx, existing.ID, profile.Subject)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrConflict) {
				return nil, ErrGoogleAccountConflict
			}
			return nil, fmt.Errorf("linking google account: %w", err)
		}
		s.log.InfoContext(ctx, "google account linked", "user_id", linked.ID)
		return linked, nil
	case !errors.Is(err, store.ErrNotFound):
		return nil, fmt.Errorf("looking up user by email: %w", err)
	}

	subject := profile.Subject
	user = &models.User{
		ID:          uuid.New(),
		Name:        profile.Name,
		Email:       profile.Email,
		GoogleID:    &subject,
		HasPassword: false,
		Avatar:      profile.Picture,
		IsVerified:  profile.EmailVerified,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("creating google user: %w", err)
	}
	s.log.InfoContext(ctx, "google user created", "user_id", user.ID)
	return user, nil
}

// Me returns the principal's own user record.
func (s *AuthService) Me(ctx context.Context, userID string) (*models.User, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	return user, nil
}

// Logout deny-lists the caller's token until it expires.
func (s *AuthService) Logout(ctx context.Context, p auth.Principal) error {
	if err := s.revoked.Revoke(ctx, p); err != nil {
		return fmt.Errorf("revoking token: %w", err)
	}
	s.log.InfoContext(ctx, "token revoked", "user_id", p.UserID)
	return nil
}

func (s *AuthService) issue(ctx context.Context, user *models.User) (string, error) {
	token, err := s.tokens.NewAccessToken(user.ID, user.Email)
	if err != nil {
		s.log.ErrorContext(ctx, "generating token failed", "user_id", user.ID, "error", err)
		return "", ErrCreatingToken
	}
	return token, nil
}
