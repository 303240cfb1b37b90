package handler

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/abhinav121122/intellect-quiz-app/internal/model"
	"github.com/abhinav121122/intellect-quiz-app/internal/store"
)

const (
	sessionCookieName = "session"
	stateCookieName   = "oauth_state"
	tokenParam        = "token"
)

// requireAuth resolves the caller from a bearer token or the session cookie.
func (h *Handler) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := h.authenticate(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		ctx := model.ContextWithUser(r.Context(), user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) authenticate(r *http.Request) (*model.User, error) {
	var userID string
	if token := bearerToken(r); token != "" {
		sub, err := h.tokens.Parse(token)
		if err != nil {
			return nil, err
		}
		userID = sub
	} else {
		cookie, err := r.Cookie(sessionCookieName)
		if err != nil || cookie.Value == "" {
			return nil, errUnauthorized
		}
		authSess, err := h.store.GetAuthSession(r.Context(), cookie.Value)
		if err != nil {
			return nil, err
		}
		if authSess == nil {
			return nil, errUnauthorized
		}
		userID = authSess.UserID
	}

	user, err := h.store.GetUserByID(r.Context(), userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errUnauthorized
	}
	return user, nil
}

// bearerToken reads the Authorization header. Browsers cannot set headers on
// websocket handshakes, so upgrades may pass the token as a query parameter.
func bearerToken(r *http.Request) string {
	if v, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(v)
	}
	if websocket.IsWebSocketUpgrade(r) {
		return r.URL.Query().Get(tokenParam)
	}
	return ""
}

// RedactToken hides a token query parameter from RequestURI, which access
// loggers print. r.URL is left intact for bearerToken.
func RedactToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Has(tokenParam) {
			r = r.Clone(r.Context())
			r.RequestURI = redactTokenURI(r.RequestURI)
		}
		next.ServeHTTP(w, r)
	})
}

func redactTokenURI(uri string) string {
	u, err := url.ParseRequestURI(uri)
	if err != nil {
		return "[unparseable uri]"
	}
	q := u.Query()
	q.Set(tokenParam, "REDACTED")
	u.RawQuery = q.Encode()
	return u.RequestURI()
}

type credentialsRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName,omitempty"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

func (h *Handler) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	user, err := h.auth.SignUp(r.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp, err := h.signIn(w, r, user)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	user, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp, err := h.signIn(w, r, user)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// signIn opens a cookie session and issues a bearer token for user.
func (h *Handler) signIn(w http.ResponseWriter, r *http.Request, user *model.User) (authResponse, error) {
	sessToken, err := h.store.CreateAuthSession(r.Context(), user.ID)
	if err != nil {
		return authResponse{}, err
	}
	bearer, err := h.tokens.Issue(user.ID)
	if err != nil {
		return authResponse{}, err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sessToken,
		Path:     h.cookiePath(),
		MaxAge:   int(store.AuthSessionTTL / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.config.SecureCookies,
	})
	slog.Info("user signed in", "user", user.ID, "provider", user.Provider)
	return authResponse{Token: bearer, User: user}, nil
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(sessionCookieName)
	if err == nil && cookie.Value != "" {
		if err := h.store.DeleteAuthSession(r.Context(), cookie.Value); err != nil {
			slog.Warn("failed to delete auth session", "error", err)
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     h.cookiePath(),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.SecureCookies,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, currentUser(r))
}

func randomState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func (h *Handler) handleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	state, err := randomState()
	if err != nil {
		writeError(w, r, err)
		return
	}
	target, err := h.auth.GoogleAuthURL(state)
	if err != nil {
		writeError(w, r, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     h.cookiePath(),
		MaxAge:   int((10 * time.Minute) / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.config.SecureCookies,
	})
	http.Redirect(w, r, target, http.StatusFound)
}

func (h *Handler) handleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	cookie, err := r.Cookie(stateCookieName)
	if err != nil || state == "" || len(state) != len(cookie.Value) ||
		subtle.ConstantTimeCompare([]byte(state), []byte(cookie.Value)) != 1 {
		slog.Warn("oauth state mismatch")
		writeError(w, r, errBadRequest)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: stateCookieName, Value: "", Path: h.cookiePath(), MaxAge: -1})

	code := r.URL.Query().Get("code")
	if code == "" {
		writeError(w, r, errBadRequest)
		return
	}
	user, err := h.auth.GoogleSignIn(r.Context(), code)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := h.signIn(w, r, user); err != nil {
		writeError(w, r, err)
		return
	}

	next := h.config.PublicURL
	if next == "" {
		next = h.path("/")
	}
	http.Redirect(w, r, next, http.StatusSeeOther)
}
