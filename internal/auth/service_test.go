package auth

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"linkup/portal/internal/api"
)

type fakeAuthenticator struct {
	loginResp   api.LoginResponse
	loginErr    error
	registerMsg string
	registerErr error
	loginCalls  int
	regCalls    int
}

func (f *fakeAuthenticator) Login(_ context.Context, _, _ string) (api.LoginResponse, error) {
	f.loginCalls++
	return f.loginResp, f.loginErr
}

func (f *fakeAuthenticator) Register(_ context.Context, _ api.RegisterRequest) (string, error) {
	f.regCalls++
	return f.registerMsg, f.registerErr
}

type recordingAudit struct {
	actions []string
}

func (r *recordingAudit) Log(_, action, _, outcome, _ string) error {
	r.actions = append(r.actions, action+":"+outcome)
	return nil
}

func studentLogin() api.LoginResponse {
	return api.LoginResponse{
		Token:     "T1",
		ID:        1,
		Email:     "a@b.com",
		LastName:  "Dupont",
		FirstName: "Jean",
		Role:      "ETUDIANT",
	}
}

func newTestService(t *testing.T, authn Authenticator, store Store) *Service {
	t.Helper()
	svc, err := NewService(authn, ServiceConfig{Store: store})
	if err != nil {
		t.Fatalf("NewService() error: %v", err)
	}
	return svc
}

func TestLoginPersistsSession(t *testing.T) {
	store := NewInMemoryStore()
	audit := &recordingAudit{}
	svc, err := NewService(&fakeAuthenticator{loginResp: studentLogin()}, ServiceConfig{Store: store, Audit: audit})
	if err != nil {
		t.Fatalf("NewService() error: %v", err)
	}

	user, err := svc.Login(context.Background(), "a@b.com", "secret1")
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	if user.Role != RoleStudent || user.DisplayName() != "Jean Dupont" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if svc.Token() != "T1" {
		t.Fatalf("expected token T1, got %q", svc.Token())
	}

	rec, _ := store.Load()
	if rec.Token != "T1" {
		t.Fatalf("expected stored token T1, got %q", rec.Token)
	}
	var stored UserSummary
	if err := json.Unmarshal([]byte(rec.User), &stored); err != nil {
		t.Fatalf("stored user is not JSON: %v", err)
	}
	if stored != user {
		t.Fatalf("stored user %+v differs from %+v", stored, user)
	}
	if len(audit.actions) != 1 || audit.actions[0] != "auth.login:success" {
		t.Fatalf("unexpected audit trail: %v", audit.actions)
	}
}

func TestLoginFailureLeavesStorageUntouched(t *testing.T) {
	store := NewInMemoryStore()
	previous := Record{Token: "OLD", User: `{"id":9,"email":"x@y.com","nom":"X","prenom":"Y","role":"TUTEUR"}`}
	_ = store.Save(previous)

	authn := &fakeAuthenticator{loginErr: &api.Error{StatusCode: 401, Message: "Identifiants invalides"}}
	svc := newTestService(t, authn, store)
	svc.Restore(context.Background())

	_, err := svc.Login(context.Background(), "a@b.com", "wrong")
	var aerr *Error
	if !errors.As(err, &aerr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if aerr.Message != "Identifiants invalides" {
		t.Fatalf("expected server message, got %q", aerr.Message)
	}
	if rec, _ := store.Load(); rec != previous {
		t.Fatalf("storage changed on failed login: %+v", rec)
	}
	if u, ok := svc.CurrentUser(); !ok || u.Email != "x@y.com" {
		t.Fatalf("current user changed on failed login: %+v %v", u, ok)
	}
}

func TestLoginFallbackMessage(t *testing.T) {
	authn := &fakeAuthenticator{loginErr: &api.Error{Err: errors.New("connection refused")}}
	svc := newTestService(t, authn, NewInMemoryStore())

	_, err := svc.Login(context.Background(), "a@b.com", "secret1")
	var aerr *Error
	if !errors.As(err, &aerr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if aerr.Message != "Erreur de connexion" {
		t.Fatalf("expected fallback message, got %q", aerr.Message)
	}
}

func TestLoginMissingCredentialsSkipsNetwork(t *testing.T) {
	authn := &fakeAuthenticator{loginResp: studentLogin()}
	svc := newTestService(t, authn, NewInMemoryStore())

	for _, tc := range [][2]string{{"", "secret1"}, {"a@b.com", ""}, {"   ", "x"}} {
		_, err := svc.Login(context.Background(), tc[0], tc[1])
		if !errors.Is(err, ErrMissingCredentials) {
			t.Fatalf("expected ErrMissingCredentials for %q, got %v", tc, err)
		}
	}
	if authn.loginCalls != 0 {
		t.Fatalf("expected no API calls, got %d", authn.loginCalls)
	}
}

func TestLoginRejectsUnknownRole(t *testing.T) {
	resp := studentLogin()
	resp.Role = "SUPERUSER"
	store := NewInMemoryStore()
	svc := newTestService(t, &fakeAuthenticator{loginResp: resp}, store)

	if _, err := svc.Login(context.Background(), "a@b.com", "secret1"); err == nil {
		t.Fatalf("expected error for unknown role")
	}
	if rec, _ := store.Load(); !rec.Empty() {
		t.Fatalf("expected nothing stored, got %+v", rec)
	}
}

func TestLoginRejectsResponseWithoutEmail(t *testing.T) {
	resp := studentLogin()
	resp.Email = ""
	store := NewInMemoryStore()
	audit := &recordingAudit{}
	svc, err := NewService(&fakeAuthenticator{loginResp: resp}, ServiceConfig{Store: store, Audit: audit})
	if err != nil {
		t.Fatalf("NewService() error: %v", err)
	}

	_, err = svc.Login(context.Background(), "a@b.com", "secret1")
	var aerr *Error
	if !errors.As(err, &aerr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if aerr.Message != "Erreur de connexion" {
		t.Fatalf("expected fallback message, got %q", aerr.Message)
	}
	if rec, _ := store.Load(); !rec.Empty() {
		t.Fatalf("expected nothing stored, got %+v", rec)
	}
	if _, ok := svc.CurrentUser(); ok {
		t.Fatalf("expected logged out")
	}
	if len(audit.actions) != 1 || audit.actions[0] != "auth.login:failed" {
		t.Fatalf("unexpected audit trail: %v", audit.actions)
	}
}

// Every session Login accepts must come back from storage on the next start.
func TestLoginAcceptedSessionSurvivesRestore(t *testing.T) {
	cases := map[string]func(*api.LoginResponse){
		"as returned":      func(*api.LoginResponse) {},
		"lowercase role":   func(r *api.LoginResponse) { r.Role = "tuteur" },
		"no name":          func(r *api.LoginResponse) { r.LastName, r.FirstName = "", "" },
		"missing email":    func(r *api.LoginResponse) { r.Email = "" },
		"blank email":      func(r *api.LoginResponse) { r.Email = "   " },
		"unknown role":     func(r *api.LoginResponse) { r.Role = "ROOT" },
		"zero id accepted": func(r *api.LoginResponse) { r.ID = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			resp := studentLogin()
			mutate(&resp)
			store := NewInMemoryStore()
			first := newTestService(t, &fakeAuthenticator{loginResp: resp}, store)
			user, loginErr := first.Login(context.Background(), "a@b.com", "secret1")

			second := newTestService(t, &fakeAuthenticator{}, store)
			second.Restore(context.Background())
			restored, ok := second.CurrentUser()

			if loginErr != nil {
				if ok {
					t.Fatalf("rejected login restored a session: %+v", restored)
				}
				return
			}
			if !ok {
				t.Fatalf("accepted login for %+v was discarded on restore", user)
			}
			if restored != user {
				t.Fatalf("restored %+v, want %+v", restored, user)
			}
		})
	}
}

func TestRestoreRoundTrip(t *testing.T) {
	store := NewInMemoryStore()
	first := newTestService(t, &fakeAuthenticator{loginResp: studentLogin()}, store)
	if _, err := first.Login(context.Background(), "a@b.com", "secret1"); err != nil {
		t.Fatalf("Login() error: %v", err)
	}

	authn := &fakeAuthenticator{}
	second := newTestService(t, authn, store)
	second.Restore(context.Background())

	user, ok := second.CurrentUser()
	if !ok {
		t.Fatalf("expected restored session")
	}
	if user.Email != "a@b.com" || second.Token() != "T1" {
		t.Fatalf("unexpected restored session: %+v token=%q", user, second.Token())
	}
	if authn.loginCalls != 0 {
		t.Fatalf("restore must not contact the API")
	}
}

func TestRestoreClearsCorruptRecord(t *testing.T) {
	store := NewInMemoryStore()
	_ = store.Save(Record{Token: "T1", User: "{not json"})

	svc := newTestService(t, &fakeAuthenticator{}, store)
	svc.Restore(context.Background())

	if _, ok := svc.CurrentUser(); ok {
		t.Fatalf("expected logged out after corrupt record")
	}
	if rec, _ := store.Load(); !rec.Empty() {
		t.Fatalf("expected corrupt record to be cleared, got %+v", rec)
	}

	svc.Restore(context.Background())
	if _, ok := svc.CurrentUser(); ok {
		t.Fatalf("second restore should stay logged out")
	}
}

func TestRestoreClearsHalfRecord(t *testing.T) {
	store := NewInMemoryStore()
	_ = store.Save(Record{Token: "T1"})

	svc := newTestService(t, &fakeAuthenticator{}, store)
	svc.Restore(context.Background())

	if _, ok := svc.CurrentUser(); ok {
		t.Fatalf("expected logged out with token but no user")
	}
	if rec, _ := store.Load(); !rec.Empty() {
		t.Fatalf("expected record cleared, got %+v", rec)
	}
}

func TestLogoutIsIdempotent(t *testing.T) {
	store := NewInMemoryStore()
	audit := &recordingAudit{}
	svc, _ := NewService(&fakeAuthenticator{loginResp: studentLogin()}, ServiceConfig{Store: store, Audit: audit})
	if _, err := svc.Login(context.Background(), "a@b.com", "secret1"); err != nil {
		t.Fatalf("Login() error: %v", err)
	}

	svc.Logout()
	svc.Logout()

	if _, ok := svc.CurrentUser(); ok {
		t.Fatalf("expected logged out")
	}
	if svc.Token() != "" {
		t.Fatalf("expected empty token")
	}
	if rec, _ := store.Load(); !rec.Empty() {
		t.Fatalf("expected empty store, got %+v", rec)
	}
	if got := audit.actions[len(audit.actions)-1]; got != "auth.logout:success" {
		t.Fatalf("unexpected last audit action %q", got)
	}
	if len(audit.actions) != 2 {
		t.Fatalf("expected a single logout audit entry, got %v", audit.actions)
	}
}

func TestRegisterValidatesBeforeCalling(t *testing.T) {
	authn := &fakeAuthenticator{registerMsg: "Inscription réussie"}
	svc := newTestService(t, authn, NewInMemoryStore())

	_, err := svc.Register(context.Background(), api.RegisterRequest{Email: "a@b.com", Password: "short"})
	var verr *api.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if authn.regCalls != 0 {
		t.Fatalf("expected no API call on invalid input")
	}

	msg, err := svc.Register(context.Background(), api.RegisterRequest{
		Email:     "a@b.com",
		Password:  "secret123",
		LastName:  "Dupont",
		FirstName: "Jean",
		Role:      "ETUDIANT",
	})
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	if msg != "Inscription réussie" {
		t.Fatalf("unexpected message %q", msg)
	}
	if _, ok := svc.CurrentUser(); ok {
		t.Fatalf("register must not open a session")
	}
}

func TestRegisterFallbackMessage(t *testing.T) {
	authn := &fakeAuthenticator{registerErr: &api.Error{StatusCode: 500}}
	svc := newTestService(t, authn, NewInMemoryStore())

	_, err := svc.Register(context.Background(), api.RegisterRequest{
		Email: "a@b.com", Password: "secret123", LastName: "D", FirstName: "J", Role: "ETUDIANT",
	})
	var aerr *Error
	if !errors.As(err, &aerr) || aerr.Message != "Erreur lors de l'inscription" {
		t.Fatalf("expected fallback message, got %v", err)
	}
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("unused"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	resp := studentLogin()
	resp.Token = token
	svc := newTestService(t, &fakeAuthenticator{loginResp: resp}, NewInMemoryStore())
	if _, ok := svc.TokenExpiry(); ok {
		t.Fatalf("expected no expiry while logged out")
	}
	if _, err := svc.Login(context.Background(), "a@b.com", "secret1"); err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	got, ok := svc.TokenExpiry()
	if !ok || !got.Equal(exp) {
		t.Fatalf("expected expiry %v, got %v (ok=%v)", exp, got, ok)
	}
}

func TestTokenExpiryOpaqueToken(t *testing.T) {
	if _, ok := tokenExpiry("T1"); ok {
		t.Fatalf("opaque token should have no expiry")
	}
}
