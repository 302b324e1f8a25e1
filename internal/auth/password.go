package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/GriffinCanCode/PostPilot/internal/infrastructure/logging"
	"github.com/GriffinCanCode/PostPilot/internal/shared/id"
	"github.com/GriffinCanCode/PostPilot/internal/shared/utils"
	"github.com/GriffinCanCode/PostPilot/internal/storage"
)

// Service registers users and opens and closes their sessions
type Service struct {
	users    storage.Store
	sessions SessionStore
	ttl      time.Duration
	cost     int
	logger   *logging.Logger
	now      func() time.Time
}

// NewService creates an account service. A zero cost uses bcrypt.DefaultCost.
func NewService(users storage.Store, sessions SessionStore, ttl time.Duration, cost int, logger *logging.Logger) *Service {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Service{
		users:    users,
		sessions: sessions,
		ttl:      ttl,
		cost:     cost,
		logger:   logger,
		now:      time.Now,
	}
}

// Register creates a user and logs them in
func (s *Service) Register(ctx context.Context, username, password, email string) (*storage.User, *Session, error) {
	username = strings.TrimSpace(username)
	if err := utils.ValidateUsername(username); err != nil {
		return nil, nil, err
	}
	if err := utils.ValidatePassword(password); err != nil {
		return nil, nil, err
	}
	if err := utils.ValidateEmail(email, false); err != nil {
		return nil, nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	user := &storage.User{
		Username:     username,
		PasswordHash: string(hash),
		Email:        email,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, nil, ErrUserExists
		}
		return nil, nil, fmt.Errorf("create user: %w", err)
	}

	sess, err := s.open(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("User registered", zap.Int64("user_id", user.ID), zap.String("username", user.Username))
	return user, sess, nil
}

// Login checks credentials and opens a session
func (s *Service) Login(ctx context.Context, username, password string) (*storage.User, *Session, error) {
	user, err := s.users.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	sess, err := s.open(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, sess, nil
}

// Logout deletes a session
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.Delete(ctx, sessionID)
}

// CurrentUser loads the user behind an identity
func (s *Service) CurrentUser(ctx context.Context, ident *Identity) (*storage.User, error) {
	return s.users.GetUser(ctx, ident.UserID)
}

func (s *Service) open(ctx context.Context, user *storage.User) (*Session, error) {
	now := s.now()
	sess := &Session{
		ID:        id.NewSessionID().String(),
		UserID:    user.ID,
		Username:  user.Username,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return sess, nil
}
