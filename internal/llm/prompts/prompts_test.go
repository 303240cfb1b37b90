package prompts

import (
	"strings"
	"testing"

	"github.com/abhinav121122/intellect-quiz-app/internal/model"
)

func TestBuildWaterScenario(t *testing.T) {
	text := "Water boils at 100 degrees Celsius at sea level."
	prompt, err := Build(text, model.QuizParameters{
		NumberOfQuestions: 1,
		Difficulty:        model.DifficultyEasy,
		QuestionTypes:     []model.QuestionType{model.TypeTrueFalse},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	for _, want := range []string{
		"Number of Questions: 1\n",
		"Difficulty: Easy\n",
		`Question Types: ["True/False"]`,
		"---\n" + text + "\n---",
		"Respond with ONLY the JSON array, no other text.",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt should contain %q", want)
		}
	}
}

func TestBuildKeepsSourceVerbatim(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"markup", `<b>bold</b> & "quoted" {{.NotATemplate}}`},
		{"multiline", "line one\n\n  indented line two\n"},
		{"unicode", "Вода кипит при 100 °C."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prompt, err := Build(tt.text, model.QuizParameters{
				NumberOfQuestions: 12,
				Difficulty:        model.DifficultyHard,
				QuestionTypes:     []model.QuestionType{model.TypeMultipleChoice, model.TypeFillBlank},
			})
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			if !strings.Contains(prompt, tt.text) {
				t.Error("prompt should contain the source text unmodified")
			}
			if !strings.Contains(prompt, "Number of Questions: 12") {
				t.Error("prompt should contain the requested count")
			}
			if !strings.Contains(prompt, "Difficulty: Hard") {
				t.Error("prompt should contain the difficulty")
			}
			if !strings.Contains(prompt, `["Multiple Choice","Fill in the Blank"]`) {
				t.Error("prompt should list the question types as a JSON array")
			}
		})
	}
}

func TestBuildDescribesContract(t *testing.T) {
	prompt, err := Build("x", model.QuizParameters{NumberOfQuestions: 5, Difficulty: model.DifficultyMedium})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for _, want := range []string{`"questionText"`, `"correctAnswer"`, `"explanation"`, `"options"`, "____"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt should describe %s", want)
		}
	}
	if !strings.Contains(prompt, "Question Types: []") {
		t.Error("nil question types should render as an empty array")
	}
}

func TestSuggestQuestionCount(t *testing.T) {
	tests := []struct {
		name  string
		words int
		want  int
	}{
		{"empty", 0, 5},
		{"short", 120, 5},
		{"exact", 700, 7},
		{"rounds down", 1299, 12},
		{"clamped", 5000, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := strings.Repeat("word ", tt.words)
			if got := SuggestQuestionCount(text); got != tt.want {
				t.Errorf("SuggestQuestionCount(%d words) = %d, want %d", tt.words, got, tt.want)
			}
		})
	}
}
