package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"linkup/portal/internal/api"
)

var (
	ErrMissingCredentials = errors.New("email and password are required")
	ErrNotAuthenticated   = errors.New("not authenticated")
)

const (
	fallbackLoginMessage    = "Erreur de connexion"
	fallbackRegisterMessage = "Erreur lors de l'inscription"
)

// Error is the failure value returned by Login and Register. Message is
// always safe to show to the user.
type Error struct {
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Op + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Authenticator is the part of the platform API the session service talks to.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (api.LoginResponse, error)
	Register(ctx context.Context, req api.RegisterRequest) (string, error)
}

type AuditLogger interface {
	Log(actor, action, target, outcome, detail string) error
}

type Service struct {
	api   Authenticator
	store Store
	audit AuditLogger
	log   *slog.Logger

	mu      sync.RWMutex
	current *Session
}

type ServiceConfig struct {
	Store  Store
	Audit  AuditLogger
	Logger *slog.Logger
}

func NewService(authn Authenticator, cfg ServiceConfig) (*Service, error) {
	if authn == nil {
		return nil, fmt.Errorf("authenticator is required")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("session store is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		api:   authn,
		store: cfg.Store,
		audit: cfg.Audit,
		log:   logger,
	}, nil
}

// Restore loads the persisted session without contacting the API. A record
// that cannot be decoded is removed and the service starts logged out.
func (s *Service) Restore(_ context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil

	rec, err := s.store.Load()
	if err != nil {
		if errors.Is(err, ErrCorruptRecord) {
			s.discardLocked(err)
			return
		}
		s.log.Warn("session restore failed", "error", err)
		return
	}
	if rec.Empty() {
		return
	}

	sess, err := decodeRecord(rec)
	if err != nil {
		s.discardLocked(err)
		return
	}
	s.current = &sess
	s.log.Debug("session restored", "user_id", sess.User.ID, "role", sess.User.Role)
}

func (s *Service) discardLocked(cause error) {
	s.log.Debug("discarding unreadable session record", "error", cause)
	if err := s.store.Clear(); err != nil {
		s.log.Warn("clear corrupt session record", "error", err)
	}
}

func (s *Service) Login(ctx context.Context, email, password string) (UserSummary, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return UserSummary{}, &Error{Op: "login", Message: ErrMissingCredentials.Error(), Err: ErrMissingCredentials}
	}

	resp, err := s.api.Login(ctx, email, password)
	if err != nil {
		s.auditSafe(email, "auth.login", "failed", err.Error())
		return UserSummary{}, &Error{Op: "login", Message: api.MessageOr(err, fallbackLoginMessage), Err: err}
	}
	if resp.Token == "" {
		err := errors.New("login response has no token")
		s.auditSafe(email, "auth.login", "failed", err.Error())
		return UserSummary{}, &Error{Op: "login", Message: fallbackLoginMessage, Err: err}
	}
	role, err := ParseRole(resp.Role)
	if err != nil {
		s.auditSafe(email, "auth.login", "failed", err.Error())
		return UserSummary{}, &Error{Op: "login", Message: fallbackLoginMessage, Err: err}
	}

	sess := Session{
		Token: resp.Token,
		User: UserSummary{
			ID:        resp.ID,
			Email:     resp.Email,
			LastName:  resp.LastName,
			FirstName: resp.FirstName,
			Role:      role,
		},
	}
	if err := sess.User.validate(); err != nil {
		s.auditSafe(email, "auth.login", "failed", err.Error())
		return UserSummary{}, &Error{Op: "login", Message: fallbackLoginMessage, Err: err}
	}
	rec, err := encodeRecord(sess)
	if err != nil {
		return UserSummary{}, &Error{Op: "login", Message: fallbackLoginMessage, Err: err}
	}

	s.mu.Lock()
	if err := s.store.Save(rec); err != nil {
		s.mu.Unlock()
		s.auditSafe(email, "auth.login", "failed", err.Error())
		return UserSummary{}, &Error{Op: "login", Message: fallbackLoginMessage, Err: err}
	}
	s.current = &sess
	s.mu.Unlock()

	s.auditSafe(sess.User.Email, "auth.login", "success", string(sess.User.Role))
	s.log.Info("logged in", "user_id", sess.User.ID, "role", sess.User.Role)
	return sess.User, nil
}

// Register forwards the payload to the API. It never opens a session; the
// caller logs in separately.
func (s *Service) Register(ctx context.Context, req api.RegisterRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", &Error{Op: "register", Message: err.Error(), Err: err}
	}
	msg, err := s.api.Register(ctx, req)
	if err != nil {
		s.auditSafe(req.Email, "auth.register", "failed", err.Error())
		return "", &Error{Op: "register", Message: api.MessageOr(err, fallbackRegisterMessage), Err: err}
	}
	s.auditSafe(req.Email, "auth.register", "success", req.Role)
	return msg, nil
}

// Logout drops the session both on disk and in memory. Calling it without a
// session is a no-op.
func (s *Service) Logout() {
	s.mu.Lock()
	actor := ""
	if s.current != nil {
		actor = s.current.User.Email
	}
	s.current = nil
	if err := s.store.Clear(); err != nil {
		s.log.Warn("clear session store", "error", err)
	}
	s.mu.Unlock()

	if actor != "" {
		s.auditSafe(actor, "auth.logout", "success", "")
	}
}

func (s *Service) CurrentUser() (UserSummary, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return UserSummary{}, false
	}
	return s.current.User, true
}

// Token returns the bearer credential of the current session, or "".
func (s *Service) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return ""
	}
	return s.current.Token
}

// TokenExpiry reads the exp claim of the current token without verifying
// its signature. Display only.
func (s *Service) TokenExpiry() (time.Time, bool) {
	token := s.Token()
	if token == "" {
		return time.Time{}, false
	}
	return tokenExpiry(token)
}

func tokenExpiry(token string) (time.Time, bool) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

func (s *Service) auditSafe(actor, action, outcome, detail string) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Log(actor, action, "", outcome, detail); err != nil {
		s.log.Debug("audit write failed", "error", err)
	}
}
