package generator

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/abhinav121122/intellect-quiz-app/internal/model"
)

// ErrParse means the generated text did not contain a usable question array.
var ErrParse = errors.New("parse generated questions")

const fence = "```"

// Normalize extracts the question array from raw generated text.
//
// Surrounding whitespace is trimmed, a leading ```json or ``` fence and its
// closing fence are removed, and the text is cut to the span between the
// first '[' and the last ']'. The result must decode to a non-empty array of
// objects. Elements are returned without shape checks; non-string values in
// text fields are kept as their text form.
func Normalize(raw string) ([]model.Question, error) {
	text := stripFence(strings.TrimSpace(raw))

	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start != -1 && end > start {
		text = text[start : end+1]
	}

	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(text), &elems); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	if len(elems) == 0 {
		return nil, fmt.Errorf("%w: empty array", ErrParse)
	}

	questions := make([]model.Question, 0, len(elems))
	for i, e := range elems {
		if !bytes.HasPrefix(bytes.TrimSpace(e), []byte("{")) {
			return nil, fmt.Errorf("%w: element %d is not an object", ErrParse, i)
		}
		var lq looseQuestion
		if err := json.Unmarshal(e, &lq); err != nil {
			return nil, fmt.Errorf("%w: element %d: %w", ErrParse, i, err)
		}
		questions = append(questions, lq.question())
	}
	return questions, nil
}

// looseQuestion accepts any JSON value in the question fields. Models
// sometimes answer "Water boils at ____ degrees" with a bare 100.
type looseQuestion struct {
	QuestionText  json.RawMessage `json:"questionText"`
	Type          json.RawMessage `json:"type"`
	Options       json.RawMessage `json:"options"`
	CorrectAnswer json.RawMessage `json:"correctAnswer"`
	Explanation   json.RawMessage `json:"explanation"`
}

func (lq looseQuestion) question() model.Question {
	q := model.Question{
		QuestionText:  looseString(lq.QuestionText),
		Type:          model.QuestionType(looseString(lq.Type)),
		CorrectAnswer: looseString(lq.CorrectAnswer),
		Explanation:   looseString(lq.Explanation),
	}
	var opts []json.RawMessage
	if err := json.Unmarshal(lq.Options, &opts); err == nil && opts != nil {
		q.Options = make([]string, len(opts))
		for i, o := range opts {
			q.Options[i] = looseString(o)
		}
	}
	return q
}

// looseString renders a JSON value as text. Strings are unquoted, booleans
// use the "True"/"False" spelling of the answer contract, null and missing
// values are empty, and anything else keeps its JSON text.
func looseString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	switch {
	case len(raw) == 0, bytes.Equal(raw, []byte("null")):
		return ""
	case bytes.Equal(raw, []byte("true")):
		return "True"
	case bytes.Equal(raw, []byte("false")):
		return "False"
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

func stripFence(text string) string {
	if !strings.HasPrefix(text, fence) {
		return text
	}
	text = strings.TrimPrefix(text, fence)
	text = strings.TrimPrefix(text, "json")
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, fence)
	return strings.TrimSpace(text)
}

// Fallback returns the fixed demonstration questions used whenever generation
// or parsing fails. Each call returns a fresh copy.
func Fallback() []model.Question {
	return []model.Question{
		{
			QuestionText:  "What is the main topic discussed in the provided text?",
			Type:          model.TypeMultipleChoice,
			Options:       []string{"Science", "History", "Literature", "Technology"},
			CorrectAnswer: "Science",
			Explanation:   "Based on the content analysis, this appears to be the primary focus.",
		},
		{
			QuestionText:  "The information provided is comprehensive and detailed.",
			Type:          model.TypeTrueFalse,
			CorrectAnswer: "True",
			Explanation:   "The text contains detailed information on the subject matter.",
		},
	}
}
