package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"paintsnap/internal/config"
	"paintsnap/internal/ids"
	"paintsnap/internal/models"
	"paintsnap/internal/repository"
	"paintsnap/internal/security"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserSuspended      = errors.New("user suspended")
	ErrEmailTaken         = errors.New("email already registered")
)

// AppleTokenVerifier validates a Sign in with Apple identity token.
type AppleTokenVerifier interface {
	Verify(ctx context.Context, rawToken string) (security.AppleIdentity, error)
}

// Profile defaults on first sign-in: one free credit, one generation.
const (
	signupCredits     = 1
	signupGenerations = 1
)

type AuthService struct {
	users    UserStore
	sessions SessionStore
	apple    AppleTokenVerifier
	cfg      *config.AppConfig
	log      zerolog.Logger
}

func NewAuthService(users UserStore, sessions SessionStore, apple AppleTokenVerifier, cfg *config.AppConfig, log zerolog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		apple:    apple,
		cfg:      cfg,
		log:      log,
	}
}

type RegisterInput struct {
	Email      string
	Password   string
	DeviceID   string
	DeviceName string
	IPAddress  string
	UserAgent  string
}

type AuthResult struct {
	AccessToken  string
	RefreshToken string
	User         models.User
	DeviceID     string
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (AuthResult, error) {
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))
	if input.Email == "" || input.Password == "" {
		return AuthResult{}, fmt.Errorf("email and password required")
	}

	if _, err := s.users.FindByEmail(ctx, input.Email); err == nil {
		return AuthResult{}, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return AuthResult{}, err
	}

	passwordHash, err := security.HashPassword(input.Password)
	if err != nil {
		return AuthResult{}, err
	}

	user, err := s.provisionProfile(ctx, models.User{
		ID:           ids.New(),
		Email:        input.Email,
		PasswordHash: passwordHash,
	})
	if err != nil {
		return AuthResult{}, err
	}

	return s.startSession(ctx, user, input.DeviceID, input.DeviceName, input.IPAddress, input.UserAgent)
}

type LoginInput struct {
	Email      string
	Password   string
	DeviceID   string
	DeviceName string
	IPAddress  string
	UserAgent  string
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (AuthResult, error) {
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))
	user, err := s.users.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, err
	}

	if user.Status != models.UserStatusActive {
		return AuthResult{}, ErrUserSuspended
	}

	if len(user.PasswordHash) == 0 {
		return AuthResult{}, ErrInvalidCredentials
	}
	ok, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil || !ok {
		return AuthResult{}, ErrInvalidCredentials
	}

	return s.startSession(ctx, user, input.DeviceID, input.DeviceName, input.IPAddress, input.UserAgent)
}

type AppleSignInInput struct {
	IdentityToken string
	DeviceID      string
	DeviceName    string
	IPAddress     string
	UserAgent     string
}

// AppleSignIn verifies the identity token and signs the user in,
// provisioning a profile on first use. An existing email account gets the
// Apple identifier linked rather than duplicated.
func (s *AuthService) AppleSignIn(ctx context.Context, input AppleSignInInput) (AuthResult, error) {
	if s.apple == nil {
		return AuthResult{}, fmt.Errorf("apple sign-in not configured")
	}

	identity, err := s.apple.Verify(ctx, input.IdentityToken)
	if err != nil {
		return AuthResult{}, ErrInvalidCredentials
	}

	user, err := s.users.FindByAppleID(ctx, identity.Subject)
	if errors.Is(err, repository.ErrUserNotFound) {
		user, err = s.lookupOrProvisionAppleUser(ctx, identity)
	}
	if err != nil {
		return AuthResult{}, err
	}

	if user.Status != models.UserStatusActive {
		return AuthResult{}, ErrUserSuspended
	}

	return s.startSession(ctx, user, input.DeviceID, input.DeviceName, input.IPAddress, input.UserAgent)
}

func (s *AuthService) lookupOrProvisionAppleUser(ctx context.Context, identity security.AppleIdentity) (models.User, error) {
	if identity.Email != "" {
		existing, err := s.users.FindByEmail(ctx, strings.ToLower(identity.Email))
		if err == nil {
			if linkErr := s.users.LinkAppleID(ctx, existing.ID, identity.Subject); linkErr != nil {
				return models.User{}, linkErr
			}
			appleID := identity.Subject
			existing.AppleUserID = &appleID
			return existing, nil
		}
		if !errors.Is(err, repository.ErrUserNotFound) {
			return models.User{}, err
		}
	}

	email := strings.ToLower(identity.Email)
	if email == "" {
		// Apple hides the email on subsequent consents; synthesize a
		// stable placeholder from the subject.
		email = fmt.Sprintf("%s@privaterelay.appleid.com", identity.Subject)
	}

	appleID := identity.Subject
	return s.provisionProfile(ctx, models.User{
		ID:          ids.New(),
		Email:       email,
		AppleUserID: &appleID,
	})
}

// provisionProfile inserts the default profile row. The conditional
// insert means two concurrent first sign-ins both end up reading the one
// row that won.
func (s *AuthService) provisionProfile(ctx context.Context, user models.User) (models.User, error) {
	user.Credits = signupCredits
	user.GenerationsRemaining = signupGenerations
	user.Role = models.UserRoleUser
	user.Status = models.UserStatusActive

	created, err := s.users.CreateIfAbsent(ctx, user)
	if err != nil {
		return models.User{}, fmt.Errorf("provision profile: %w", err)
	}
	return created, nil
}

func (s *AuthService) startSession(ctx context.Context, user models.User, deviceID, deviceName, ipAddress, userAgent string) (AuthResult, error) {
	if deviceID == "" {
		deviceID = ids.New()
	}
	if deviceName == "" {
		deviceName = "Unknown Device"
	}

	refreshToken, refreshHash, err := security.GenerateRefreshToken(64)
	if err != nil {
		return AuthResult{}, err
	}

	session := models.Session{
		ID:               ids.New(),
		UserID:           user.ID,
		DeviceID:         deviceID,
		DeviceName:       deviceName,
		RefreshTokenHash: refreshHash,
		IPAddress:        ipAddress,
		UserAgent:        userAgent,
		ExpiresAt:        time.Now().Add(s.cfg.Security.JWTRefreshTTL),
	}

	accessToken, err := security.GenerateAccessToken(
		s.cfg.Security.JWTAccessSecret,
		user.ID,
		session.ID,
		deviceID,
		string(user.Role),
		s.cfg.Security.JWTAccessTTL,
	)
	if err != nil {
		return AuthResult{}, err
	}

	if err := s.sessions.Upsert(ctx, session); err != nil {
		return AuthResult{}, err
	}

	if err := s.enforceSessionLimit(ctx, user.ID); err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("enforce session limit failed")
	}

	return AuthResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
		DeviceID:     deviceID,
	}, nil
}

func (s *AuthService) enforceSessionLimit(ctx context.Context, userID string) error {
	count, err := s.sessions.CountByUser(ctx, userID)
	if err != nil {
		return err
	}
	if count <= s.cfg.Security.MaxSessions {
		return nil
	}
	return s.sessions.DeleteOldest(ctx, userID, s.cfg.Security.MaxSessions)
}

type RefreshInput struct {
	UserID       string
	RefreshToken string
	DeviceID     string
}

func (s *AuthService) Refresh(ctx context.Context, input RefreshInput) (AuthResult, error) {
	user, err := s.users.GetByID(ctx, input.UserID)
	if err != nil {
		return AuthResult{}, err
	}
	if user.Status != models.UserStatusActive {
		return AuthResult{}, ErrUserSuspended
	}

	refreshHash := security.HashRefreshToken(input.RefreshToken)
	session, err := s.sessions.FindByRefreshHash(ctx, input.UserID, refreshHash)
	if err != nil {
		return AuthResult{}, ErrInvalidCredentials
	}

	if session.DeviceID != input.DeviceID {
		return AuthResult{}, ErrInvalidCredentials
	}

	if session.ExpiresAt.Before(time.Now()) {
		_ = s.sessions.DeleteByID(ctx, session.ID)
		return AuthResult{}, ErrInvalidCredentials
	}

	refreshToken, newHash, err := security.GenerateRefreshToken(64)
	if err != nil {
		return AuthResult{}, err
	}

	session.RefreshTokenHash = newHash
	session.ExpiresAt = time.Now().Add(s.cfg.Security.JWTRefreshTTL)

	if err := s.sessions.Upsert(ctx, session); err != nil {
		return AuthResult{}, err
	}

	accessToken, err := security.GenerateAccessToken(
		s.cfg.Security.JWTAccessSecret,
		user.ID,
		session.ID,
		session.DeviceID,
		string(user.Role),
		s.cfg.Security.JWTAccessTTL,
	)
	if err != nil {
		return AuthResult{}, err
	}

	return AuthResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
		DeviceID:     session.DeviceID,
	}, nil
}

func (s *AuthService) Logout(ctx context.Context, userID string, deviceID string) error {
	return s.sessions.DeleteByDevice(ctx, userID, deviceID)
}

// DeleteAccount removes the user and everything hanging off the row. This
// is the operation the original system delegated to an admin function.
func (s *AuthService) DeleteAccount(ctx context.Context, userID string) error {
	if err := s.sessions.DeleteByUser(ctx, userID); err != nil {
		return err
	}
	return s.users.Delete(ctx, userID)
}
