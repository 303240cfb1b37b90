package model

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestSummarize(t *testing.T) {
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	long := strings.Repeat("a", 60)

	tests := []struct {
		name           string
		quiz           Quiz
		wantTitle      string
		wantDifficulty Difficulty
		wantCount      int
	}{
		{"plain", Quiz{SourceTitle: "Photosynthesis", Difficulty: DifficultyHard, Questions: make([]Question, 3)}, "Photosynthesis", DifficultyHard, 3},
		{"untitled", Quiz{Difficulty: DifficultyEasy}, "Untitled Quiz", DifficultyEasy, 0},
		{"long title", Quiz{SourceTitle: long}, strings.Repeat("a", 50) + "...", DifficultyMedium, 0},
		{"exactly fifty", Quiz{SourceTitle: strings.Repeat("b", 50)}, strings.Repeat("b", 50), DifficultyMedium, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.quiz.ID = "q1"
			tt.quiz.CreatedAt = created
			s := Summarize(tt.quiz)
			if s.Title != tt.wantTitle {
				t.Errorf("expected title %q, got %q", tt.wantTitle, s.Title)
			}
			if s.Difficulty != tt.wantDifficulty {
				t.Errorf("expected difficulty %q, got %q", tt.wantDifficulty, s.Difficulty)
			}
			if s.QuestionCount != tt.wantCount {
				t.Errorf("expected %d questions, got %d", tt.wantCount, s.QuestionCount)
			}
			if s.ID != "q1" || !s.CreatedAt.Equal(created) {
				t.Errorf("expected id and createdAt to carry over, got %+v", s)
			}
		})
	}
}

func TestQuizParametersValidate(t *testing.T) {
	valid := QuizParameters{
		NumberOfQuestions: 10,
		Difficulty:        DifficultyMedium,
		QuestionTypes:     []QuestionType{TypeMultipleChoice, TypeTrueFalse},
	}

	tests := []struct {
		name      string
		mutate    func(p *QuizParameters)
		wantField string
	}{
		{"valid", func(p *QuizParameters) {}, ""},
		{"all types", func(p *QuizParameters) {
			p.QuestionTypes = []QuestionType{TypeMultipleChoice, TypeTrueFalse, TypeFillBlank}
		}, ""},
		{"lower bound", func(p *QuizParameters) { p.NumberOfQuestions = 5 }, ""},
		{"upper bound", func(p *QuizParameters) { p.NumberOfQuestions = 25 }, ""},
		{"too few", func(p *QuizParameters) { p.NumberOfQuestions = 4 }, "numberOfQuestions"},
		{"too many", func(p *QuizParameters) { p.NumberOfQuestions = 26 }, "numberOfQuestions"},
		{"no types", func(p *QuizParameters) { p.QuestionTypes = nil }, "questionTypes"},
		{"unknown type", func(p *QuizParameters) { p.QuestionTypes = []QuestionType{"Essay"} }, "questionTypes"},
		{"bad difficulty", func(p *QuizParameters) { p.Difficulty = "easy" }, "difficulty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			p.QuestionTypes = append([]QuestionType(nil), valid.QuestionTypes...)
			tt.mutate(&p)
			err := p.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tt.wantField {
				t.Errorf("expected field %q, got %q", tt.wantField, verr.Field)
			}
		})
	}
}

func TestNormalizeDedupesTypes(t *testing.T) {
	p := QuizParameters{QuestionTypes: []QuestionType{TypeTrueFalse, TypeMultipleChoice, TypeTrueFalse}}
	got := p.Normalize().QuestionTypes
	if len(got) != 2 || got[0] != TypeTrueFalse || got[1] != TypeMultipleChoice {
		t.Errorf("expected [True/False Multiple Choice], got %v", got)
	}
}

func TestQuestionValidate(t *testing.T) {
	tests := []struct {
		name    string
		q       Question
		wantErr bool
	}{
		{"mc ok", Question{Type: TypeMultipleChoice, Options: []string{"A", "B", "C"}, CorrectAnswer: "B"}, false},
		{"mc answer missing", Question{Type: TypeMultipleChoice, Options: []string{"A", "B"}, CorrectAnswer: "C"}, true},
		{"mc too many", Question{Type: TypeMultipleChoice, Options: []string{"A", "B", "C", "D", "E"}, CorrectAnswer: "A"}, true},
		{"mc duplicates", Question{Type: TypeMultipleChoice, Options: []string{"A", "A"}, CorrectAnswer: "A"}, true},
		{"tf ok", Question{Type: TypeTrueFalse, CorrectAnswer: "False"}, false},
		{"tf lower case", Question{Type: TypeTrueFalse, CorrectAnswer: "true"}, true},
		{"tf with options", Question{Type: TypeTrueFalse, Options: []string{"True", "False"}, CorrectAnswer: "True"}, true},
		{"blank ok", Question{Type: TypeFillBlank, QuestionText: "Water boils at ____ degrees.", CorrectAnswer: "100"}, false},
		{"blank no marker", Question{Type: TypeFillBlank, QuestionText: "Water boils at what?", CorrectAnswer: "100"}, true},
		{"unknown", Question{Type: "Essay"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.q.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestUserContext(t *testing.T) {
	ctx := ContextWithUser(t.Context(), &User{ID: "u1"})
	if u := UserFromContext(ctx); u == nil || u.ID != "u1" {
		t.Errorf("expected user u1, got %+v", u)
	}
	if u := UserFromContext(t.Context()); u != nil {
		t.Errorf("expected nil user, got %+v", u)
	}
}
