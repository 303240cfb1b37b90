package main

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "intellect",
		Short: "Generate quizzes from study material with an LLM",
	}
	root.PersistentFlags().String("env-file", ".env", "Optional dotenv file loaded before reading INTELLECT_* variables")

	serve := serveCmd()
	root.AddCommand(serve, generateCmd(), exportCmd(), lambdaCmd())

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE

	// Register serve flags on root so bare `intellect --addr ...` still works.
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

// addAppFlags registers the flags every command that opens the app needs.
func addAppFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("db-driver", "sqlite", "Database driver (sqlite, postgres)")
	f.String("db", "intellect.db", "SQLite path or PostgreSQL DSN")
	f.String("llm-provider", "openai", "Generation backend (openai, gemini)")
	f.String("llm-url", "", "API base URL (default: local Ollama for openai, Google for gemini)")
	f.String("llm-key", "ollama", "API key for the generation backend")
	f.String("llm-model", "", "Model name (default: llama3.2 for openai, gemini-2.0-flash for gemini)")
	f.String("redis-url", "", "Redis URL for sharing quiz list updates between instances")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE:  runServe,
	}
	addAppFlags(cmd)
	addServerFlags(cmd)
	f := cmd.Flags()
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	return cmd
}

func addServerFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("base-path", "", "URL prefix for sub-path deployments (e.g. /quiz)")
	f.StringP("lang", "l", "en", "Default message language (en, ru)")
	f.Bool("secure-cookies", true, "Set Secure flag on session cookies")
	f.StringSlice("cors-origins", []string{"http://localhost:3000"}, "Browser origins allowed to call the API")
	f.String("public-url", "", "Where the browser lands after Google sign-in")
	f.String("jwt-secret", "", "Secret for signing bearer tokens (required)")
	f.Duration("jwt-ttl", 0, "Bearer token lifetime (default 24h)")
	f.String("google-client-id", "", "Google OAuth client ID (empty disables Google sign-in)")
	f.String("google-client-secret", "", "Google OAuth client secret")
	f.String("google-redirect-url", "", "Google OAuth redirect URL ending in /api/auth/google/callback")
	f.Duration("watch-interval", 0, "Quiz list refresh interval for live watchers (default 3s)")
	f.Duration("session-idle-ttl", 0, "Evict quiz sessions idle for this long (default 2h)")
}

func setupLogging(cmd *cobra.Command) {
	v := viperForCmd(cmd)

	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	loadEnvFile(cmd)

	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("INTELLECT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("intellect")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/intellect")
	v.AddConfigPath("/etc/intellect")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Debug("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

// loadEnvFile populates the process environment from the dotenv file named by
// --env-file. Variables already set are left alone.
func loadEnvFile(cmd *cobra.Command) {
	path, err := cmd.Flags().GetString("env-file")
	if err != nil || path == "" {
		return
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("error reading env file", "path", path, "error", err)
	}
}
