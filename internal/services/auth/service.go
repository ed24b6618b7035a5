// Package auth authenticates local dashboard users and issues signed
// session tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/j-veylop/openai-costs-tui/internal/db"
	"github.com/j-veylop/openai-costs-tui/internal/logger"
	"github.com/j-veylop/openai-costs-tui/internal/models"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

const (
	defaultAdminUsername = "admin"
	defaultAdminPassword = "admin"
	defaultSessionTTL    = 24 * time.Hour
)

var (
	// ErrInvalidCredentials is returned for an unknown user or wrong password.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrSessionExpired is returned when a session token is past its expiry.
	ErrSessionExpired = errors.New("session expired")
	// ErrInvalidSession is returned for tampered tokens or deleted users.
	ErrInvalidSession = errors.New("invalid session")
	// ErrWrongPassword is returned when the current password does not match.
	ErrWrongPassword = errors.New("current password is incorrect")
	// ErrPasswordTooShort is returned for passwords under MinPasswordLength.
	ErrPasswordTooShort = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
)

// UserStore is the persistence the service needs. *db.DB implements it.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdatePasswordHash(ctx context.Context, username, hash string) error
	DeleteUser(ctx context.Context, username string) error
	CountUsers(ctx context.Context) (int, error)
}

// Config configures the service.
type Config struct {
	Secret     string
	SessionTTL time.Duration
	BcryptCost int
}

// Service handles login, session validation and user management.
type Service struct {
	store  UserStore
	now    func() time.Time
	secret []byte
	ttl    time.Duration
	cost   int
}

// New creates an auth service.
func New(store UserStore, cfg Config) *Service {
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	cost := cfg.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Service{
		store:  store,
		now:    time.Now,
		secret: []byte(cfg.Secret),
		ttl:    ttl,
		cost:   cost,
	}
}

// SeedDefaultAdmin creates admin/admin when no users exist yet.
func (s *Service) SeedDefaultAdmin(ctx context.Context) error {
	n, err := s.store.CountUsers(ctx)
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if n > 0 {
		return nil
	}

	// Seeding skips the length check that CreateUser enforces.
	if _, err := s.createUser(ctx, NewUser{
		FirstName: "Admin",
		Username:  defaultAdminUsername,
		Password:  defaultAdminPassword,
		Role:      models.RoleAdmin,
	}); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	logger.Warn("seeded default admin user; change its password", "username", defaultAdminUsername)
	return nil
}

// Login checks the credentials and issues a session.
func (s *Service) Login(ctx context.Context, username, password string) (*models.Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	u, err := s.store.GetUserByUsername(ctx, username)
	if errors.Is(err, db.ErrUserNotFound) {
		logger.Info("login rejected", "username", username, "reason", "unknown user")
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		logger.Info("login rejected", "username", username, "reason", "wrong password")
		return nil, ErrInvalidCredentials
	}

	sess, err := s.issue(u)
	if err != nil {
		return nil, err
	}

	logger.Info("login succeeded", "username", username)
	return sess, nil
}

// Validate checks the token signature, its expiry and that the user still
// exists.
func (s *Service) Validate(ctx context.Context, sess *models.Session) error {
	_, err := s.userFor(ctx, sess)
	return err
}

// ChangePassword replaces the password of the session's user.
func (s *Service) ChangePassword(ctx context.Context, sess *models.Session, current, next string) error {
	u, err := s.userFor(ctx, sess)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(current)); err != nil {
		return ErrWrongPassword
	}

	if err := s.SetPassword(ctx, u.Username, next); err != nil {
		return err
	}

	logger.Info("password changed", "username", u.Username)
	return nil
}

// NewUser describes a user to create.
type NewUser struct {
	FirstName string
	LastName  string
	Username  string
	Password  string
	Role      string
}

// CreateUser hashes the password and stores the user.
func (s *Service) CreateUser(ctx context.Context, nu NewUser) (*models.User, error) {
	if len(nu.Password) < MinPasswordLength {
		return nil, ErrPasswordTooShort
	}
	return s.createUser(ctx, nu)
}

func (s *Service) createUser(ctx context.Context, nu NewUser) (*models.User, error) {
	username := strings.TrimSpace(nu.Username)
	if username == "" {
		return nil, errors.New("username is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(nu.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &models.User{
		FirstName:    nu.FirstName,
		LastName:     nu.LastName,
		Username:     username,
		PasswordHash: string(hash),
		Role:         nu.Role,
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	return u, nil
}

// ListUsers returns every user.
func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.store.ListUsers(ctx)
}

// DeleteUser removes a user.
func (s *Service) DeleteUser(ctx context.Context, username string) error {
	return s.store.DeleteUser(ctx, username)
}

// SetPassword replaces a user's password without checking the old one.
func (s *Service) SetPassword(ctx context.Context, username, password string) error {
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.store.UpdatePasswordHash(ctx, username, string(hash)); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// userFor resolves the user behind a session, checking its token.
func (s *Service) userFor(ctx context.Context, sess *models.Session) (*models.User, error) {
	if sess == nil || sess.Token == "" {
		return nil, ErrInvalidSession
	}

	c, err := s.verify(sess.Token)
	if err != nil {
		return nil, err
	}
	if c.Subject != sess.Username {
		return nil, ErrInvalidSession
	}

	u, err := s.store.GetUserByUsername(ctx, c.Subject)
	if errors.Is(err, db.ErrUserNotFound) {
		return nil, ErrInvalidSession
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	return u, nil
}
