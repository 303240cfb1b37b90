package model

import "time"

// QuizExport is the top-level JSON structure written by the export command.
type QuizExport struct {
	OwnerID    string           `json:"ownerId"`
	Email      string           `json:"email,omitempty"`
	ExportedAt time.Time        `json:"exportedAt"`
	NumQuizzes int              `json:"numQuizzes"`
	Quizzes    []QuizExportItem `json:"quizzes"`
}

// QuizExportItem holds one quiz with its list metadata for export.
type QuizExportItem struct {
	Summary QuizSummary `json:"summary"`
	Quiz    Quiz        `json:"quiz"`
}
