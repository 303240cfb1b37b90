// Package session runs the question-by-question quiz taking flow.
package session

import (
	"errors"
	"math"
	"strings"

	"github.com/samber/lo"

	"github.com/abhinav121122/intellect-quiz-app/internal/model"
)

var (
	ErrEmptyQuiz    = errors.New("quiz has no questions")
	ErrNotAnswering = errors.New("session is not accepting answers")
	ErrNotReviewing = errors.New("session is not in review")
	ErrEmptyAnswer  = errors.New("answer is empty")
)

// Phase is the state of a session.
type Phase string

const (
	PhaseAnswering Phase = "answering"
	PhaseReviewing Phase = "reviewing"
)

// Band classifies a score for the results message.
type Band string

const (
	BandExcellent    Band = "excellent"
	BandGreat        Band = "great"
	BandGood         Band = "good"
	BandFair         Band = "fair"
	BandKeepStudying Band = "keep-studying"
)

// BandFor returns the band of a percentage score.
func BandFor(score int) Band {
	switch {
	case score >= 90:
		return BandExcellent
	case score >= 80:
		return BandGreat
	case score >= 70:
		return BandGood
	case score >= 60:
		return BandFair
	default:
		return BandKeepStudying
	}
}

// Session is a single pass through a quiz. It is not safe for concurrent use.
type Session struct {
	quiz    model.Quiz
	current int
	answers []*model.AnswerRecord
	phase   Phase
}

// New starts a session at the first question of quiz.
func New(quiz model.Quiz) (*Session, error) {
	if len(quiz.Questions) == 0 {
		return nil, ErrEmptyQuiz
	}
	return &Session{
		quiz:    quiz,
		answers: make([]*model.AnswerRecord, len(quiz.Questions)),
		phase:   PhaseAnswering,
	}, nil
}

func (s *Session) Quiz() model.Quiz { return s.quiz }

func (s *Session) Phase() Phase { return s.phase }

func (s *Session) CurrentIndex() int { return s.current }

// Current returns the question awaiting an answer. ok is false in review.
func (s *Session) Current() (q model.Question, ok bool) {
	if s.phase != PhaseAnswering {
		return model.Question{}, false
	}
	return s.quiz.Questions[s.current], true
}

// Answers returns the records submitted so far, in question order.
func (s *Session) Answers() []model.AnswerRecord {
	out := make([]model.AnswerRecord, 0, len(s.answers))
	for _, a := range s.answers {
		if a != nil {
			out = append(out, *a)
		}
	}
	return out
}

// SubmitAnswer records value for the current question and advances. The
// answer is correct only if it equals the expected answer byte for byte.
// Blank values are rejected without changing state.
func (s *Session) SubmitAnswer(value string) (model.AnswerRecord, error) {
	if s.phase != PhaseAnswering {
		return model.AnswerRecord{}, ErrNotAnswering
	}
	if strings.TrimSpace(value) == "" {
		return model.AnswerRecord{}, ErrEmptyAnswer
	}

	q := s.quiz.Questions[s.current]
	rec := model.AnswerRecord{
		QuestionText:  q.QuestionText,
		UserAnswer:    value,
		CorrectAnswer: q.CorrectAnswer,
		IsCorrect:     value == q.CorrectAnswer,
		Explanation:   q.Explanation,
	}
	s.answers[s.current] = &rec

	if s.current+1 < len(s.quiz.Questions) {
		s.current++
	} else {
		s.phase = PhaseReviewing
	}
	return rec, nil
}

// Retake discards all answers and returns to the first question.
func (s *Session) Retake() error {
	if s.phase != PhaseReviewing {
		return ErrNotReviewing
	}
	s.current = 0
	s.answers = make([]*model.AnswerRecord, len(s.quiz.Questions))
	s.phase = PhaseAnswering
	return nil
}

// Summary is the scored result of a finished session.
type Summary struct {
	Correct int                  `json:"correct"`
	Total   int                  `json:"total"`
	Score   int                  `json:"score"`
	Band    Band                 `json:"band"`
	Answers []model.AnswerRecord `json:"answers"`
}

// Summary scores the session. Score is the rounded percentage of correct answers.
func (s *Session) Summary() (Summary, error) {
	if s.phase != PhaseReviewing {
		return Summary{}, ErrNotReviewing
	}
	answers := s.Answers()
	correct := lo.CountBy(answers, func(a model.AnswerRecord) bool { return a.IsCorrect })
	score := int(math.Round(float64(correct) / float64(len(answers)) * 100))
	return Summary{
		Correct: correct,
		Total:   len(answers),
		Score:   score,
		Band:    BandFor(score),
		Answers: answers,
	}, nil
}
