package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/apperr"
	"storefront/internal/domain"
	"storefront/internal/repos"
	"storefront/internal/validate"
)

var ErrBadCreds = apperr.New(apperr.Unauthorized, "Invalid credentials")

type AuthService struct {
	Users *repos.UserRepo
	TTL   time.Duration
	Cost  int
	Now   func() time.Time
}

func NewAuthService(users *repos.UserRepo, ttl time.Duration, cost int) *AuthService {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &AuthService{Users: users, TTL: ttl, Cost: cost, Now: time.Now}
}

// Session is what register/login hand back to the client.
type Session struct {
	Token     string       `json:"token"`
	ExpiresAt string       `json:"expires_at"`
	User      *domain.User `json:"user"`
}

func (s *AuthService) Register(ctx context.Context, req validate.RegisterRequest) (Session, error) {
	if err := validate.Struct(req); err != nil {
		return Session{}, err
	}
	email, _ := validate.Email(req.Email)
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.Cost)
	if err != nil {
		return Session{}, apperr.Wrap(err, "hash password")
	}
	u, err := s.Users.Create(ctx, email, string(hash), domain.RoleCustomer)
	if err != nil {
		return Session{}, apperr.FromStorage(err, "could not create user")
	}
	return s.issue(ctx, u)
}

func (s *AuthService) Login(ctx context.Context, req validate.LoginRequest) (Session, error) {
	if err := validate.Struct(req); err != nil {
		return Session{}, apperr.Invalidf("Email and password are required")
	}
	email, ok := validate.Email(req.Email)
	if !ok {
		return Session{}, ErrBadCreds
	}
	u, err := s.Users.ByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrBadCreds
	}
	if err != nil {
		return Session{}, apperr.Wrap(err, "load user")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(req.Password)) != nil {
		return Session{}, ErrBadCreds
	}
	return s.issue(ctx, u)
}

func (s *AuthService) issue(ctx context.Context, u *domain.User) (Session, error) {
	token := uuid.NewString()
	expires := s.Now().Add(s.TTL)
	if err := s.Users.BindSession(ctx, token, u.ID, expires); err != nil {
		return Session{}, apperr.Wrap(err, "bind session")
	}
	return Session{Token: token, ExpiresAt: expires.UTC().Format(time.RFC3339), User: u}, nil
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	if err := s.Users.UnbindSession(ctx, token); err != nil {
		return apperr.Wrap(err, "unbind session")
	}
	return nil
}

// CurrentUser resolves a bearer token; unknown or expired tokens are Unauthorized.
func (s *AuthService) CurrentUser(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, apperr.New(apperr.Unauthorized, "Authentication required")
	}
	u, err := s.Users.SessionUser(ctx, token, s.Now())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.New(apperr.Unauthorized, "Invalid or expired token")
	}
	if err != nil {
		return nil, apperr.Wrap(err, "load session")
	}
	return u, nil
}

// EnsureAdmin bootstraps an admin account from configuration.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) error {
	email, ok := validate.Email(email)
	if !ok || len(password) < 8 {
		return apperr.Invalidf("admin bootstrap needs a valid email and a password of at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.Cost)
	if err != nil {
		return err
	}
	return s.Users.EnsureAdmin(ctx, email, string(hash))
}

// PurgeSessions drops expired sessions and reports how many were removed.
func (s *AuthService) PurgeSessions(ctx context.Context) (int64, error) {
	return s.Users.PurgeExpiredSessions(ctx, s.Now())
}
