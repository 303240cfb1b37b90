package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/abhinav121122/intellect-quiz-app/internal/extract"
	"github.com/abhinav121122/intellect-quiz-app/internal/llm/prompts"
	"github.com/abhinav121122/intellect-quiz-app/internal/model"
	"github.com/abhinav121122/intellect-quiz-app/internal/quiz"
)

func generateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate quiz questions from a text file",
		RunE:  runGenerate,
	}
	addAppFlags(cmd)
	f := cmd.Flags()
	f.StringP("input", "i", "-", "Source text file (- for stdin)")
	f.IntP("count", "n", 0, "Number of questions (default: suggested from the text length)")
	f.StringP("difficulty", "d", string(model.DifficultyMedium), "Difficulty (Easy, Medium, Hard)")
	f.StringSliceP("types", "t", []string{string(model.TypeMultipleChoice)},
		"Question types (Multiple Choice, True/False, Fill in the Blank)")
	f.String("title", "", "Quiz title (default: input file name)")
	f.String("owner", "", "Save the quiz for this user ID")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	return cmd
}

type generateOutput struct {
	Quiz      *model.Quiz      `json:"quiz,omitempty"`
	Questions []model.Question `json:"questions,omitempty"`
	Fallback  bool             `json:"fallback"`
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)
	ctx := cmd.Context()

	inPath := v.GetString("input")
	text, err := readInput(inPath)
	if err != nil {
		return err
	}

	title := v.GetString("title")
	if title == "" && inPath != "-" {
		title = extract.Title(filepath.Base(inPath))
	}
	count := v.GetInt("count")
	if count == 0 {
		count = prompts.SuggestQuestionCount(text)
	}
	req := quiz.CreateRequest{
		Title: title,
		Text:  text,
		Parameters: model.QuizParameters{
			NumberOfQuestions: count,
			Difficulty:        model.Difficulty(v.GetString("difficulty")),
			QuestionTypes: lo.Map(v.GetStringSlice("types"), func(s string, _ int) model.QuestionType {
				return model.QuestionType(strings.TrimSpace(s))
			}),
		},
	}
	if err := req.Validate(); err != nil {
		return err
	}

	a, err := openApp(ctx, v, false)
	if err != nil {
		return err
	}
	defer a.Close()

	var out generateOutput
	if owner := v.GetString("owner"); owner != "" {
		created, err := a.quizzes.Create(ctx, owner, req)
		if err != nil {
			return err
		}
		out = generateOutput{Quiz: created.Quiz, Fallback: created.Fallback}
	} else {
		params := req.Parameters.Normalize()
		prompt, err := prompts.Build(text, params)
		if err != nil {
			return fmt.Errorf("build prompt: %w", err)
		}
		res := a.generator.Generate(ctx, prompt, params.NumberOfQuestions)
		out = generateOutput{Questions: res.Questions, Fallback: res.Fallback}
	}

	return writeJSONOutput(v.GetString("output"), out)
}

func readInput(path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "" || path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return string(data), nil
}

// writeJSONOutput writes v as indented JSON to path, or stdout for "-".
func writeJSONOutput(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}

	var w io.Writer
	if path == "" || path == "-" {
		w = os.Stdout
	} else {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	// Ensure trailing newline.
	_, _ = fmt.Fprintln(w)
	return nil
}
