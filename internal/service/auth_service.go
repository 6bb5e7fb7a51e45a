package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"opscurator/internal/auth"
	"opscurator/internal/domain"
)

const minPasswordLength = 6

// Session is what a successful register or login hands back to the client.
type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *domain.User `json:"user"`
}

type AuthService struct {
	users       UserRepository
	sessions    SessionStore
	tokens      *auth.TokenIssuer
	mirror      ProfileMirror
	adminEmails map[string]bool
	bcryptCost  int
	logger      *zap.Logger
}

// NewAuthService wires authentication. mirror may be nil.
func NewAuthService(
	users UserRepository,
	sessions SessionStore,
	tokens *auth.TokenIssuer,
	mirror ProfileMirror,
	adminEmails []string,
	bcryptCost int,
	logger *zap.Logger,
) *AuthService {
	admins := make(map[string]bool, len(adminEmails))
	for _, e := range adminEmails {
		admins[normalizeEmail(e)] = true
	}
	return &AuthService{
		users:       users,
		sessions:    sessions,
		tokens:      tokens,
		mirror:      mirror,
		adminEmails: admins,
		bcryptCost:  bcryptCost,
		logger:      logger.Named("auth-service"),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Register(ctx context.Context, email, password, name string) (*Session, error) {
	email = normalizeEmail(email)
	name = strings.TrimSpace(name)

	if email == "" || password == "" || name == "" {
		return nil, fmt.Errorf("%w: email, password and name are required", domain.ErrInvalidInput)
	}
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: email address is not valid", domain.ErrInvalidInput)
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, minPasswordLength)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	role := domain.RoleUser
	if s.adminEmails[email] {
		role = domain.RoleAdmin
	}

	user := &domain.User{
		ID:            uuid.New().String(),
		Email:         email,
		Role:          role,
		PasswordHash:  hash,
		Profile:       domain.Profile{Name: name},
		CompletedLabs: []string{},
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID), zap.String("role", string(role)))
	mirrorProfile(ctx, s.mirror, user, s.logger)

	return s.startSession(ctx, user)
}

// Login never falls back to a made-up user: a store failure is returned as is.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", domain.ErrInvalidInput)
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrInvalidCredentials
	}
	if err := auth.CheckPassword(user.PasswordHash, password); err != nil {
		return nil, err
	}

	return s.startSession(ctx, user)
}

func (s *AuthService) startSession(ctx context.Context, user *domain.User) (*Session, error) {
	token, claims, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Put(ctx, claims.TokenID(), user.ID, s.tokens.TTL()); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	s.logger.Debug("session started", zap.String("user_id", user.ID), zap.String("token_id", claims.TokenID()))
	return &Session{Token: token, ExpiresAt: claims.ExpiresAt.Time, User: user}, nil
}

func (s *AuthService) Logout(ctx context.Context, tokenID string) error {
	if err := s.sessions.Delete(ctx, tokenID); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

// Authenticate checks the token signature and that its session is still live.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*auth.Claims, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}

	userID, err := s.sessions.Get(ctx, claims.TokenID())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: session has ended", domain.ErrUnauthorized)
		}
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	if userID != claims.UserID() {
		return nil, fmt.Errorf("%w: session does not match token", domain.ErrUnauthorized)
	}
	return claims, nil
}

func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user %s: %w", userID, err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user %s", domain.ErrNotFound, userID)
	}
	return user, nil
}
