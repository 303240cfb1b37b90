package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/viper"

	"github.com/abhinav121122/intellect-quiz-app/internal/auth"
	"github.com/abhinav121122/intellect-quiz-app/internal/generator"
	"github.com/abhinav121122/intellect-quiz-app/internal/handler"
	appI18n "github.com/abhinav121122/intellect-quiz-app/internal/i18n"
	"github.com/abhinav121122/intellect-quiz-app/internal/llm"
	"github.com/abhinav121122/intellect-quiz-app/internal/model"
	"github.com/abhinav121122/intellect-quiz-app/internal/quiz"
	"github.com/abhinav121122/intellect-quiz-app/internal/session"
	"github.com/abhinav121122/intellect-quiz-app/internal/store"
	"github.com/abhinav121122/intellect-quiz-app/internal/watch"
)

const (
	defaultOpenAIURL    = "http://localhost:11434/v1"
	defaultOpenAIModel  = "llama3.2"
	defaultSessionIdle  = 2 * time.Hour
	maintenanceInterval = time.Minute
	llmHealthCheckLimit = 10 * time.Second
)

// app is the wired service graph shared by the serve, generate and lambda commands.
type app struct {
	store     *store.Store
	generator *generator.Service
	notifier  watch.Notifier
	quizzes   *quiz.Service
	closers   []func() error
}

// openApp opens storage, the generation backend and the change notifier.
func openApp(ctx context.Context, v *viper.Viper, pingLLM bool) (*app, error) {
	a := &app{}

	db, err := store.Open(ctx, store.Driver(v.GetString("db-driver")), v.GetString("db"))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	a.store = db
	a.closers = append(a.closers, db.Close)

	gen, err := newGenerator(ctx, v, pingLLM)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.generator = generator.New(gen)

	if url := v.GetString("redis-url"); url != "" {
		rn, err := watch.NewRedisNotifier(ctx, url)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect notifier: %w", err)
		}
		a.notifier = rn
		a.closers = append(a.closers, rn.Close)
		slog.Info("sharing quiz list updates over redis")
	} else {
		a.notifier = watch.NewHub()
	}

	a.quizzes = quiz.NewService(a.store, a.generator, a.notifier)
	return a, nil
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			slog.Warn("close resource", "error", err)
		}
	}
}

func newGenerator(ctx context.Context, v *viper.Viper, ping bool) (llm.Generator, error) {
	provider := strings.ToLower(v.GetString("llm-provider"))
	url := v.GetString("llm-url")
	key := v.GetString("llm-key")
	modelName := v.GetString("llm-model")

	switch provider {
	case "gemini":
		if modelName == "" {
			modelName = llm.DefaultGeminiModel
		}
		g, err := llm.NewGemini(ctx, key, modelName, url)
		if err != nil {
			return nil, fmt.Errorf("create gemini client: %w", err)
		}
		slog.Info("using gemini backend", "model", modelName, "key", llm.MaskKey(key))
		return g, nil
	case "openai", "":
		if url == "" {
			url = defaultOpenAIURL
		}
		if modelName == "" {
			modelName = defaultOpenAIModel
		}
		c := llm.New(url, key, modelName)
		if ping {
			pingCtx, cancel := context.WithTimeout(ctx, llmHealthCheckLimit)
			defer cancel()
			if err := c.Ping(pingCtx); err != nil {
				return nil, fmt.Errorf("LLM health check: %w", err)
			}
			slog.Info("LLM endpoint OK", "url", url, "model", modelName)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", provider)
	}
}

// server holds the HTTP-facing pieces on top of an app.
type server struct {
	*app
	sessions *session.Registry
	router   http.Handler
	idleTTL  time.Duration
}

func newServer(a *app, v *viper.Viper) (*server, error) {
	if err := appI18n.Init(v.GetString("lang")); err != nil {
		return nil, fmt.Errorf("init i18n: %w", err)
	}

	secret := v.GetString("jwt-secret")
	if secret == "" {
		return nil, errors.New("jwt secret is required: set --jwt-secret flag or INTELLECT_JWT_SECRET env var")
	}
	tokens, err := auth.NewTokens(secret, v.GetDuration("jwt-ttl"))
	if err != nil {
		return nil, err
	}
	google := auth.NewGoogle(auth.GoogleConfig{
		ClientID:     v.GetString("google-client-id"),
		ClientSecret: v.GetString("google-client-secret"),
		RedirectURL:  v.GetString("google-redirect-url"),
	})
	if google == nil {
		slog.Info("google sign-in disabled")
	}

	// Normalize base path.
	basePath := strings.TrimRight(v.GetString("base-path"), "/")
	if basePath != "" && !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	origins := v.GetStringSlice("cors-origins")

	s := &server{
		app:      a,
		sessions: session.NewRegistry(),
		idleTTL:  v.GetDuration("session-idle-ttl"),
	}
	if s.idleTTL <= 0 {
		s.idleTTL = defaultSessionIdle
	}

	h, err := handler.New(handler.Deps{
		Store:    a.store,
		Quizzes:  a.quizzes,
		Sessions: s.sessions,
		Auth:     auth.NewService(a.store, google),
		Tokens:   tokens,
		Watcher:  watch.NewWatcher(a.store, a.notifier, v.GetDuration("watch-interval")),
		Config: model.ServerConfig{
			BasePath:       basePath,
			SecureCookies:  v.GetBool("secure-cookies"),
			PublicURL:      v.GetString("public-url"),
			AllowedOrigins: origins,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create handler: %w", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(handler.RedactToken)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "Accept-Language"},
		ExposedHeaders:   []string{"X-Quiz-Fallback"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(appI18n.Middleware)

	if basePath != "" {
		r.Route(basePath, h.Routes)
	} else {
		h.Routes(r)
	}
	s.router = r
	return s, nil
}

// maintain evicts idle quiz sessions and expired logins until ctx ends.
func (s *server) maintain(ctx context.Context) {
	ticker := time.NewTicker(maintenanceInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		if n := s.sessions.Sweep(s.idleTTL); n > 0 {
			slog.Info("evicted idle quiz sessions", "count", n)
		}
		n, err := s.store.CleanupExpiredSessions(ctx)
		if err != nil {
			slog.Warn("cleanup expired auth sessions", "error", err)
		} else if n > 0 {
			slog.Info("removed expired auth sessions", "count", n)
		}
	}
}
