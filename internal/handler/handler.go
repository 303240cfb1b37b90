package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/abhinav121122/intellect-quiz-app/internal/auth"
	appI18n "github.com/abhinav121122/intellect-quiz-app/internal/i18n"
	"github.com/abhinav121122/intellect-quiz-app/internal/model"
	"github.com/abhinav121122/intellect-quiz-app/internal/quiz"
	"github.com/abhinav121122/intellect-quiz-app/internal/session"
	"github.com/abhinav121122/intellect-quiz-app/internal/store"
	"github.com/abhinav121122/intellect-quiz-app/internal/watch"
)

// Deps are the services the HTTP layer routes to.
type Deps struct {
	Store    *store.Store
	Quizzes  *quiz.Service
	Sessions *session.Registry
	Auth     *auth.Service
	Tokens   *auth.Tokens
	Watcher  *watch.Watcher
	Config   model.ServerConfig
}

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	store    *store.Store
	quizzes  *quiz.Service
	sessions *session.Registry
	auth     *auth.Service
	tokens   *auth.Tokens
	watcher  *watch.Watcher
	config   model.ServerConfig
}

// New creates a new Handler.
func New(d Deps) (*Handler, error) {
	switch {
	case d.Store == nil:
		return nil, errors.New("handler: store is required")
	case d.Quizzes == nil:
		return nil, errors.New("handler: quiz service is required")
	case d.Sessions == nil:
		return nil, errors.New("handler: session registry is required")
	case d.Auth == nil || d.Tokens == nil:
		return nil, errors.New("handler: auth service and tokens are required")
	case d.Watcher == nil:
		return nil, errors.New("handler: watcher is required")
	}
	return &Handler{
		store:    d.Store,
		quizzes:  d.Quizzes,
		sessions: d.Sessions,
		auth:     d.Auth,
		tokens:   d.Tokens,
		watcher:  d.Watcher,
		config:   d.Config,
	}, nil
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/healthz", h.handleHealth)

	r.Route("/api", func(api chi.Router) {
		api.Post("/auth/signup", h.handleSignUp)
		api.Post("/auth/login", h.handleLogin)
		api.Post("/auth/logout", h.handleLogout)
		api.Get("/auth/google/login", h.handleGoogleLogin)
		api.Get("/auth/google/callback", h.handleGoogleCallback)

		api.Group(func(pr chi.Router) {
			pr.Use(h.requireAuth)
			pr.Get("/me", h.handleMe)

			pr.Post("/generate-quiz", h.handleGenerateQuiz)
			pr.Post("/suggest-count", h.handleSuggestCount)
			pr.Post("/extract", h.handleExtract)

			pr.Post("/quizzes", h.handleCreateQuiz)
			pr.Get("/quizzes", h.handleListQuizzes)
			pr.Get("/quizzes/watch", h.handleWatchQuizzes)
			pr.Get("/quizzes/{quizID}", h.handleGetQuiz)
			pr.Post("/quizzes/{quizID}/sessions", h.handleStartSession)

			pr.Get("/sessions/{sessionID}", h.handleGetSession)
			pr.Post("/sessions/{sessionID}/answers", h.handleSubmitAnswer)
			pr.Post("/sessions/{sessionID}/retake", h.handleRetake)
		})
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		slog.Error("health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// path prefixes p with the configured base path.
func (h *Handler) path(p string) string {
	return h.config.BasePath + p
}

func (h *Handler) cookiePath() string {
	if h.config.BasePath != "" {
		return h.config.BasePath + "/"
	}
	return "/"
}

// currentUser returns the user set by requireAuth.
func currentUser(r *http.Request) *model.User {
	return model.UserFromContext(r.Context())
}

func scoreMessageID(b session.Band) string {
	switch b {
	case session.BandExcellent:
		return "ScoreExcellent"
	case session.BandGreat:
		return "ScoreGreat"
	case session.BandGood:
		return "ScoreGood"
	case session.BandFair:
		return "ScoreFair"
	default:
		return "ScoreKeepStudying"
	}
}

func listMessage(r *http.Request, n int) string {
	if n == 0 {
		return appI18n.T(r.Context(), "NoQuizzes")
	}
	return appI18n.Tp(r.Context(), "QuizzesReady", n)
}
