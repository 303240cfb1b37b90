package prompts

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"text/template"

	"github.com/abhinav121122/intellect-quiz-app/internal/model"
)

//go:embed templates/*.txt
var templateFS embed.FS

var (
	loadOnce     sync.Once
	loadErr      error
	quizTemplate *template.Template
)

// QuizData holds template data for the quiz generation prompt.
type QuizData struct {
	NumberOfQuestions int
	Difficulty        model.Difficulty
	QuestionTypes     string // JSON array
	Text              string
}

func load() error {
	loadOnce.Do(func() {
		content, err := templateFS.ReadFile("templates/quiz.txt")
		if err != nil {
			loadErr = errors.New("failed to read prompt file templates/quiz.txt: " + err.Error())
			return
		}
		tmpl, err := template.New("quiz").Option("missingkey=error").Parse(string(content))
		if err != nil {
			loadErr = errors.New("failed to parse prompt template templates/quiz.txt: " + err.Error())
			return
		}
		quizTemplate = tmpl
	})
	return loadErr
}

// Build renders the generation instruction for text under p. The text is
// embedded verbatim.
func Build(text string, p model.QuizParameters) (string, error) {
	if err := load(); err != nil {
		return "", fmt.Errorf("templates load failed: %w", err)
	}

	types := p.QuestionTypes
	if types == nil {
		types = []model.QuestionType{}
	}
	typesJSON, err := json.Marshal(types)
	if err != nil {
		return "", fmt.Errorf("encode question types: %w", err)
	}

	data := QuizData{
		NumberOfQuestions: p.NumberOfQuestions,
		Difficulty:        p.Difficulty,
		QuestionTypes:     string(typesJSON),
		Text:              text,
	}

	var buf bytes.Buffer
	if err := quizTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// SuggestQuestionCount proposes a question count of one per hundred words,
// clamped to the allowed range.
func SuggestQuestionCount(text string) int {
	words := len(strings.Fields(text))
	return max(model.MinQuestions, min(model.MaxQuestions, words/100))
}
