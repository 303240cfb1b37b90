package generator

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/abhinav121122/intellect-quiz-app/internal/llm"
	"github.com/abhinav121122/intellect-quiz-app/internal/model"
)

func TestNormalizeFencedSingleQuestion(t *testing.T) {
	raw := "```json\n[{\"questionText\":\"Q\",\"type\":\"True/False\",\"correctAnswer\":\"True\",\"explanation\":\"E\"}]\n```"

	got, err := Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	want := []model.Question{{
		QuestionText:  "Q",
		Type:          model.TypeTrueFalse,
		CorrectAnswer: "True",
		Explanation:   "E",
	}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %+v, got %+v", want, got)
	}
	if got[0].Options != nil {
		t.Errorf("expected no options, got %v", got[0].Options)
	}
}

func TestNormalizeVariants(t *testing.T) {
	body := `[{"questionText":"A ____ B","type":"Fill in the Blank","correctAnswer":"x","explanation":"e"},` +
		`{"questionText":"Pick","type":"Multiple Choice","options":["1","2","3"],"correctAnswer":"2","explanation":"e"}]`

	tests := []struct {
		name string
		raw  string
	}{
		{"bare", body},
		{"padded", "\n\t  " + body + "  \n"},
		{"plain fence", "```\n" + body + "\n```"},
		{"json fence", "```json\n" + body + "\n```"},
		{"json fence no newline", "```json" + body + "```"},
		{"leading prose", "Here is your quiz:\n" + body},
		{"trailing prose", body + "\nLet me know if you need more."},
		{"prose inside fence", "```json\nSure!\n" + body + "\nDone.\n```"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.raw)
			if err != nil {
				t.Fatalf("Normalize: %v", err)
			}
			if len(got) != 2 {
				t.Fatalf("expected 2 questions, got %d", len(got))
			}
			if got[1].Type != model.TypeMultipleChoice || !reflect.DeepEqual(got[1].Options, []string{"1", "2", "3"}) {
				t.Errorf("unexpected second question %+v", got[1])
			}
		})
	}
}

func TestNormalizeKeepsCount(t *testing.T) {
	var parts []string
	for i := range 7 {
		parts = append(parts, fmt.Sprintf(`{"questionText":"Q%d","type":"True/False","correctAnswer":"False","explanation":"E"}`, i))
	}
	raw := "```json\n[" + strings.Join(parts, ",") + "]\n```"

	got, err := Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(got) != 7 {
		t.Fatalf("expected 7 questions, got %d", len(got))
	}
	for i, q := range got {
		if q.QuestionText != fmt.Sprintf("Q%d", i) {
			t.Errorf("question %d out of order: %q", i, q.QuestionText)
		}
	}
}

func TestNormalizeStringifiesScalars(t *testing.T) {
	raw := `[{"questionText":"Water boils at ____ degrees Celsius.","type":"Fill in the Blank","correctAnswer":100,"explanation":"E"},` +
		`{"questionText":5,"type":"True/False","correctAnswer":true,"explanation":null},` +
		`{"questionText":"Pick","type":"Multiple Choice","options":[1,2.5,false,"four"],"correctAnswer":2.5,"explanation":{"why":"x"}}]`

	got, err := Normalize(raw)
	if err != nil {
		t.Fatalf("expected mistyped fields to be kept, got %v", err)
	}
	want := []model.Question{
		{
			QuestionText:  "Water boils at ____ degrees Celsius.",
			Type:          model.TypeFillBlank,
			CorrectAnswer: "100",
			Explanation:   "E",
		},
		{
			QuestionText:  "5",
			Type:          model.TypeTrueFalse,
			CorrectAnswer: "True",
		},
		{
			QuestionText:  "Pick",
			Type:          model.TypeMultipleChoice,
			Options:       []string{"1", "2.5", "False", "four"},
			CorrectAnswer: "2.5",
			Explanation:   `{"why":"x"}`,
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestNormalizeIgnoresNonArrayOptions(t *testing.T) {
	got, err := Normalize(`[{"questionText":"Q","type":"Multiple Choice","options":"a, b","correctAnswer":"a"}]`)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if got[0].Options != nil {
		t.Errorf("expected no options, got %v", got[0].Options)
	}
	if got[0].CorrectAnswer != "a" {
		t.Errorf("expected answer %q, got %q", "a", got[0].CorrectAnswer)
	}
}

func TestNormalizeFailures(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"prose", "I cannot help with that."},
		{"object", `{"questionText":"Q"}`},
		{"empty array", "[]"},
		{"fenced empty array", "```json\n[]\n```"},
		{"truncated", `[{"questionText":"Q","type":"True/False"`},
		{"numbers", "[1, 2, 3]"},
		{"strings", `["a", "b"]`},
		{"reversed brackets", "] nothing here ["},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.raw)
			if !errors.Is(err, ErrParse) {
				t.Fatalf("expected ErrParse, got %v (questions %v)", err, got)
			}
		})
	}
}

func TestFallbackShape(t *testing.T) {
	fb := Fallback()
	if len(fb) != 2 {
		t.Fatalf("expected 2 fallback questions, got %d", len(fb))
	}
	if fb[0].Type != model.TypeMultipleChoice || fb[1].Type != model.TypeTrueFalse {
		t.Errorf("expected MC then T/F, got %q and %q", fb[0].Type, fb[1].Type)
	}
	for i, q := range fb {
		if err := q.Validate(); err != nil {
			t.Errorf("fallback question %d invalid: %v", i, err)
		}
	}

	fb[0].Options[0] = "changed"
	if Fallback()[0].Options[0] != "Science" {
		t.Error("Fallback should return a fresh copy")
	}
}

type fakeGenerator struct {
	raw    string
	err    error
	prompt string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.raw, f.err
}

func TestServiceGenerate(t *testing.T) {
	good := `[{"questionText":"Q","type":"True/False","correctAnswer":"True","explanation":"E"}]`

	tests := []struct {
		name         string
		gen          *fakeGenerator
		wantFallback bool
		wantCause    error
	}{
		{"success", &fakeGenerator{raw: good}, false, nil},
		{"request failure", &fakeGenerator{err: fmt.Errorf("%w: dial", llm.ErrRequest)}, true, llm.ErrRequest},
		{"status failure", &fakeGenerator{err: fmt.Errorf("%w: HTTP 500", llm.ErrStatus)}, true, llm.ErrStatus},
		{"empty content", &fakeGenerator{err: llm.ErrEmptyContent}, true, llm.ErrEmptyContent},
		{"unparsable", &fakeGenerator{raw: "no quiz today"}, true, ErrParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := New(tt.gen)
			res := svc.Generate(context.Background(), "the prompt", 10)

			if tt.gen.prompt != "the prompt" {
				t.Errorf("expected prompt to be forwarded, got %q", tt.gen.prompt)
			}
			if res.Fallback != tt.wantFallback {
				t.Fatalf("expected fallback=%v, got %v", tt.wantFallback, res.Fallback)
			}
			if tt.wantFallback {
				if !reflect.DeepEqual(res.Questions, Fallback()) {
					t.Errorf("expected fallback questions, got %+v", res.Questions)
				}
				if !errors.Is(res.Cause, tt.wantCause) {
					t.Errorf("expected cause %v, got %v", tt.wantCause, res.Cause)
				}
				return
			}
			if len(res.Questions) != 1 || res.Questions[0].QuestionText != "Q" {
				t.Errorf("unexpected questions %+v", res.Questions)
			}
			if res.Cause != nil {
				t.Errorf("expected no cause, got %v", res.Cause)
			}
		})
	}
}

func TestResultIsParseFailure(t *testing.T) {
	svc := New(&fakeGenerator{raw: "nope"})
	if !svc.Generate(context.Background(), "p", 5).IsParseFailure() {
		t.Error("expected parse failure")
	}
	svc = New(&fakeGenerator{err: llm.ErrStatus})
	if svc.Generate(context.Background(), "p", 5).IsParseFailure() {
		t.Error("status failure is not a parse failure")
	}
}
