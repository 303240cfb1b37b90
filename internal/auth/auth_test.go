package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/abhinav121122/intellect-quiz-app/internal/model"
	"github.com/abhinav121122/intellect-quiz-app/internal/store"
)

func newTestService(t *testing.T, g *Google) (*Service, *store.Store) {
	t.Helper()
	s, err := store.New(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return NewService(s, g), s
}

func TestSignUpAndLogin(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	u, err := svc.SignUp(ctx, "  Alice@Example.com ", "secret1", "")
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if u.Email != "alice@example.com" {
		t.Errorf("expected normalized email, got %q", u.Email)
	}
	if u.DisplayName != "alice" {
		t.Errorf("expected display name from email prefix, got %q", u.DisplayName)
	}
	if u.PasswordHash == "secret1" || u.PasswordHash == "" {
		t.Error("expected password to be hashed")
	}

	got, err := svc.Login(ctx, "ALICE@example.com", "secret1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if got.ID != u.ID {
		t.Errorf("expected user %s, got %s", u.ID, got.ID)
	}

	if _, err := svc.Login(ctx, "alice@example.com", "wrong-pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for bad password, got %v", err)
	}
	if _, err := svc.Login(ctx, "nobody@example.com", "secret1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestSignUpValidation(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
		want     error
	}{
		{"empty email", "", "secret1", ErrEmailRequired},
		{"malformed email", "not-an-email", "secret1", ErrEmailRequired},
		{"short password", "bob@example.com", "12345", ErrWeakPassword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.SignUp(ctx, tt.email, tt.password, "Bob"); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}

	if _, err := svc.SignUp(ctx, "bob@example.com", "secret1", "Bob"); err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if _, err := svc.SignUp(ctx, "BOB@example.com", "secret2", "Bobby"); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}
}

func TestTokens(t *testing.T) {
	tokens, err := NewTokens("test-secret", time.Minute)
	if err != nil {
		t.Fatalf("NewTokens: %v", err)
	}

	tok, err := tokens.Issue("user-123")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	sub, err := tokens.Parse(tok)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if sub != "user-123" {
		t.Errorf("expected subject user-123, got %q", sub)
	}

	other, _ := NewTokens("other-secret", time.Minute)
	if _, err := other.Parse(tok); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for wrong secret, got %v", err)
	}

	if _, err := tokens.Parse("garbage"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for garbage, got %v", err)
	}

	tokens.now = func() time.Time { return time.Now().Add(-time.Hour) }
	expired, err := tokens.Issue("user-123")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	tokens.now = time.Now
	if _, err := tokens.Parse(expired); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for expired token, got %v", err)
	}

	if _, err := NewTokens("", time.Minute); err == nil {
		t.Error("expected error for empty secret")
	}
}

func newGoogleServer(t *testing.T, profile map[string]string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse token form: %v", err)
		}
		if r.PostForm.Get("code") != "good-code" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"access-1","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(profile)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testGoogle(srv *httptest.Server) *Google {
	g := NewGoogle(GoogleConfig{ClientID: "client", ClientSecret: "secret", RedirectURL: "http://localhost/cb"})
	g.oauth.Endpoint = oauth2.Endpoint{
		AuthURL:   srv.URL + "/auth",
		TokenURL:  srv.URL + "/token",
		AuthStyle: oauth2.AuthStyleInParams,
	}
	g.userinfoURL = srv.URL + "/userinfo"
	return g
}

func TestGoogleSignIn(t *testing.T) {
	srv := newGoogleServer(t, map[string]string{"sub": "1234", "email": "Carol@Example.com", "name": "Carol"})
	svc, s := newTestService(t, testGoogle(srv))
	ctx := context.Background()

	u, err := svc.GoogleSignIn(ctx, "good-code")
	if err != nil {
		t.Fatalf("GoogleSignIn: %v", err)
	}
	if u.ID != "google:1234" || u.Provider != model.ProviderGoogle {
		t.Errorf("unexpected user %+v", u)
	}
	if u.Email != "carol@example.com" || u.DisplayName != "Carol" {
		t.Errorf("unexpected profile %+v", u)
	}

	again, err := svc.GoogleSignIn(ctx, "good-code")
	if err != nil {
		t.Fatalf("second GoogleSignIn: %v", err)
	}
	if !again.CreatedAt.Equal(u.CreatedAt) {
		t.Error("expected existing profile to be reused")
	}
	if n, _ := s.UserCount(ctx); n != 1 {
		t.Errorf("expected 1 user, got %d", n)
	}

	if _, err := svc.GoogleSignIn(ctx, "bad-code"); !errors.Is(err, ErrGoogleSignIn) {
		t.Errorf("expected ErrGoogleSignIn, got %v", err)
	}
}

func TestGoogleDisabled(t *testing.T) {
	if NewGoogle(GoogleConfig{}) != nil {
		t.Fatal("expected nil Google without client ID")
	}
	svc, _ := newTestService(t, nil)
	if svc.GoogleEnabled() {
		t.Error("expected google disabled")
	}
	if _, err := svc.GoogleSignIn(context.Background(), "code"); !errors.Is(err, ErrGoogleDisabled) {
		t.Errorf("expected ErrGoogleDisabled, got %v", err)
	}
	if _, err := svc.GoogleAuthURL("state"); !errors.Is(err, ErrGoogleDisabled) {
		t.Errorf("expected ErrGoogleDisabled, got %v", err)
	}
}

func TestGoogleAuthURL(t *testing.T) {
	g := NewGoogle(GoogleConfig{ClientID: "client", RedirectURL: "http://localhost/cb"})
	raw := g.AuthCodeURL("state-1")
	if !strings.HasPrefix(raw, "https://accounts.google.com/") {
		t.Errorf("expected google endpoint, got %s", raw)
	}
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	q := u.Query()
	if q.Get("state") != "state-1" || q.Get("client_id") != "client" {
		t.Errorf("unexpected query %v", q)
	}
	if !strings.Contains(q.Get("scope"), "email") {
		t.Errorf("expected email scope, got %q", q.Get("scope"))
	}
}
