package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhinav121122/intellect-quiz-app/internal/store"
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a user's quizzes as JSON",
		RunE:  runExport,
	}
	f := cmd.Flags()
	f.String("db-driver", "sqlite", "Database driver (sqlite, postgres)")
	f.String("db", "intellect.db", "SQLite path or PostgreSQL DSN")
	f.String("owner", "", "User ID whose quizzes to export (required)")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")

	_ = cmd.MarkFlagRequired("owner")

	return cmd
}

func runExport(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)
	ctx := cmd.Context()

	db, err := store.Open(ctx, store.Driver(v.GetString("db-driver")), v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	export, err := db.ExportQuizzes(ctx, v.GetString("owner"))
	if err != nil {
		return fmt.Errorf("export quizzes: %w", err)
	}
	return writeJSONOutput(v.GetString("output"), export)
}
