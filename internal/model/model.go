package model

import (
	"context"
	"time"
	"unicode/utf8"
)

// Difficulty represents the requested difficulty of a quiz.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// QuestionType is the kind of a generated question.
type QuestionType string

const (
	// TypeMultipleChoice questions carry 2 to 4 options.
	TypeMultipleChoice QuestionType = "Multiple Choice"
	// TypeTrueFalse questions are answered with "True" or "False".
	TypeTrueFalse QuestionType = "True/False"
	// TypeFillBlank questions contain BlankMarker where the answer goes.
	TypeFillBlank QuestionType = "Fill in the Blank"
)

// BlankMarker is the placeholder in a fill-in-the-blank question.
const BlankMarker = "____"

const (
	MinQuestions = 5
	MaxQuestions = 25
)

// Question is a single generated quiz question.
type Question struct {
	QuestionText  string       `json:"questionText"`
	Type          QuestionType `json:"type"`
	Options       []string     `json:"options,omitempty"`
	CorrectAnswer string       `json:"correctAnswer"`
	Explanation   string       `json:"explanation"`
}

// Quiz is a stored, immutable set of generated questions.
type Quiz struct {
	ID          string     `json:"id"`
	OwnerID     string     `json:"userId"`
	SourceTitle string     `json:"sourceTitle"`
	SourceText  string     `json:"sourceText"`
	Difficulty  Difficulty `json:"difficulty"`
	Questions   []Question `json:"questions"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// QuizSummary is the list view of a quiz.
type QuizSummary struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	QuestionCount int        `json:"questionCount"`
	Difficulty    Difficulty `json:"difficulty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

const summaryTitleMax = 50

// Summarize builds the list view of q.
func Summarize(q Quiz) QuizSummary {
	title := q.SourceTitle
	switch {
	case title == "":
		title = "Untitled Quiz"
	case utf8.RuneCountInString(title) > summaryTitleMax:
		title = string([]rune(title)[:summaryTitleMax]) + "..."
	}
	difficulty := q.Difficulty
	if difficulty == "" {
		difficulty = DifficultyMedium
	}
	return QuizSummary{
		ID:            q.ID,
		Title:         title,
		QuestionCount: len(q.Questions),
		Difficulty:    difficulty,
		CreatedAt:     q.CreatedAt,
	}
}

// AnswerRecord is the outcome of one submitted answer. Held in memory only.
type AnswerRecord struct {
	QuestionText  string `json:"questionText"`
	UserAnswer    string `json:"userAnswer"`
	CorrectAnswer string `json:"correctAnswer"`
	IsCorrect     bool   `json:"isCorrect"`
	Explanation   string `json:"explanation"`
}

// AuthProvider identifies how a user signs in.
type AuthProvider string

const (
	ProviderPassword AuthProvider = "password"
	ProviderGoogle   AuthProvider = "google"
)

// User is a user profile.
type User struct {
	ID           string       `json:"id"`
	Email        string       `json:"email"`
	DisplayName  string       `json:"displayName"`
	PasswordHash string       `json:"-"`
	Provider     AuthProvider `json:"provider"`
	CreatedAt    time.Time    `json:"createdAt"`
}

// AuthSession represents a cookie-backed authentication session.
type AuthSession struct {
	ID        string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
}

type userCtxKey struct{}

// ContextWithUser stores a user in the request context.
func ContextWithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, userCtxKey{}, u)
}

// UserFromContext retrieves the authenticated user from context, or nil.
func UserFromContext(ctx context.Context) *User {
	u, _ := ctx.Value(userCtxKey{}).(*User)
	return u
}

// ServerConfig holds runtime HTTP settings set via CLI flags.
type ServerConfig struct {
	BasePath       string   // URL prefix for sub-path deployments
	SecureCookies  bool     // Set Secure flag on cookies (disable for local dev)
	PublicURL      string   // where the OAuth callback sends the browser afterwards
	AllowedOrigins []string // browser origins allowed to call the API and open websockets
}
