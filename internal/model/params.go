package model

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

// QuizParameters are the user-selected generation settings.
type QuizParameters struct {
	NumberOfQuestions int            `json:"numberOfQuestions" validate:"min=5,max=25"`
	Difficulty        Difficulty     `json:"difficulty" validate:"oneof=Easy Medium Hard"`
	QuestionTypes     []QuestionType `json:"questionTypes" validate:"min=1,dive,oneof='Multiple Choice' 'True/False' 'Fill in the Blank'"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func paramsValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Normalize removes duplicate question types, keeping first-seen order.
func (p QuizParameters) Normalize() QuizParameters {
	p.QuestionTypes = lo.Uniq(p.QuestionTypes)
	return p
}

// Validate checks the parameter bounds. The first violation is returned.
func (p QuizParameters) Validate() error {
	if len(p.QuestionTypes) == 0 {
		return &ValidationError{Field: "questionTypes", MessageID: "ErrQuestionTypesRequired"}
	}
	err := paramsValidator().Struct(p)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("validate parameters: %w", err)
	}
	switch fe := fieldErrs[0]; {
	case fe.StructField() == "NumberOfQuestions":
		return &ValidationError{Field: "numberOfQuestions", MessageID: "ErrQuestionCountRange"}
	case fe.StructField() == "Difficulty":
		return &ValidationError{Field: "difficulty", MessageID: "ErrDifficultyInvalid"}
	default:
		return &ValidationError{Field: "questionTypes", MessageID: "ErrQuestionTypeInvalid"}
	}
}

// Validate reports the first way q departs from the shape rules for its type.
// Generated questions are never rejected on this basis; callers log the result.
func (q Question) Validate() error {
	switch q.Type {
	case TypeMultipleChoice:
		if len(q.Options) < 2 || len(q.Options) > 4 {
			return fmt.Errorf("multiple choice needs 2-4 options, got %d", len(q.Options))
		}
		if len(lo.Uniq(q.Options)) != len(q.Options) {
			return errors.New("multiple choice options are not unique")
		}
		if !slices.Contains(q.Options, q.CorrectAnswer) {
			return fmt.Errorf("correct answer %q is not one of the options", q.CorrectAnswer)
		}
	case TypeTrueFalse:
		if q.Options != nil {
			return errors.New("true/false question must not have options")
		}
		if q.CorrectAnswer != "True" && q.CorrectAnswer != "False" {
			return fmt.Errorf("true/false answer must be True or False, got %q", q.CorrectAnswer)
		}
	case TypeFillBlank:
		if q.Options != nil {
			return errors.New("fill in the blank question must not have options")
		}
		if !strings.Contains(q.QuestionText, BlankMarker) {
			return errors.New("fill in the blank question has no blank marker")
		}
	default:
		return fmt.Errorf("unknown question type %q", q.Type)
	}
	return nil
}
