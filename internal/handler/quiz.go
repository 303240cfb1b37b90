package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"

	"github.com/abhinav121122/intellect-quiz-app/internal/extract"
	appI18n "github.com/abhinav121122/intellect-quiz-app/internal/i18n"
	"github.com/abhinav121122/intellect-quiz-app/internal/model"
	"github.com/abhinav121122/intellect-quiz-app/internal/quiz"
	"github.com/abhinav121122/intellect-quiz-app/internal/session"
)

type generateRequest struct {
	Prompt string `json:"prompt"`
}

type questionsResponse struct {
	Questions []model.Question `json:"questions"`
}

func (h *Handler) handleGenerateQuiz(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.quizzes.GenerateFromPrompt(r.Context(), req.Prompt)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, questionsResponse{Questions: res.Questions})
}

type suggestRequest struct {
	Text string `json:"text"`
}

type suggestResponse struct {
	NumberOfQuestions int `json:"numberOfQuestions"`
}

func (h *Handler) handleSuggestCount(w http.ResponseWriter, r *http.Request) {
	var req suggestRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, suggestResponse{NumberOfQuestions: h.quizzes.SuggestCount(req.Text)})
}

func (h *Handler) handleExtract(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, extract.MaxFileSize+1<<20)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, r, errTooLarge)
			return
		}
		writeError(w, r, errBadRequest)
		return
	}
	defer file.Close()

	kind := extract.Kind(r.FormValue("kind"))
	res, err := extract.Extract(kind, header.Filename, header.Header.Get("Content-Type"), header.Size)
	if errors.Is(err, extract.ErrInvalidFileType) {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: appI18n.Td(r.Context(), "ErrInvalidFileType", map[string]any{"Kind": string(kind)}),
		})
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) handleCreateQuiz(w http.ResponseWriter, r *http.Request) {
	var req quiz.CreateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	created, err := h.quizzes.Create(r.Context(), currentUser(r).ID, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if created.Fallback {
		w.Header().Set("X-Quiz-Fallback", "true")
	}
	writeJSON(w, http.StatusCreated, created.Quiz)
}

type listResponse struct {
	Quizzes []model.QuizSummary `json:"quizzes"`
	Message string              `json:"message"`
}

func (h *Handler) handleListQuizzes(w http.ResponseWriter, r *http.Request) {
	list, err := h.quizzes.List(r.Context(), currentUser(r).ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Quizzes: list, Message: listMessage(r, len(list))})
}

func (h *Handler) handleGetQuiz(w http.ResponseWriter, r *http.Request) {
	q, err := h.quizzes.Get(r.Context(), currentUser(r).ID, chi.URLParam(r, "quizID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

// questionView is a question as shown to the quiz taker, without its answer.
type questionView struct {
	QuestionText string             `json:"questionText"`
	Type         model.QuestionType `json:"type"`
	Options      []string           `json:"options,omitempty"`
}

type resultView struct {
	Correct int          `json:"correct"`
	Total   int          `json:"total"`
	Score   int          `json:"score"`
	Band    session.Band `json:"band"`
	Message string       `json:"message"`
}

type sessionResponse struct {
	ID             string               `json:"id"`
	QuizID         string               `json:"quizId"`
	Title          string               `json:"title"`
	Phase          session.Phase        `json:"phase"`
	CurrentIndex   int                  `json:"currentIndex"`
	TotalQuestions int                  `json:"totalQuestions"`
	Question       *questionView        `json:"question,omitempty"`
	Answers        []model.AnswerRecord `json:"answers,omitempty"`
	Result         *resultView          `json:"result,omitempty"`
}

func (h *Handler) sessionResponse(r *http.Request, v session.View) sessionResponse {
	resp := sessionResponse{
		ID:             v.ID,
		QuizID:         v.Quiz.ID,
		Title:          model.Summarize(v.Quiz).Title,
		Phase:          v.Phase,
		CurrentIndex:   v.CurrentIndex,
		TotalQuestions: len(v.Quiz.Questions),
	}
	if v.Current != nil {
		resp.Question = &questionView{
			QuestionText: v.Current.QuestionText,
			Type:         v.Current.Type,
			Options:      v.Current.Options,
		}
	}
	if v.Summary != nil {
		resp.Answers = v.Summary.Answers
		resp.Result = &resultView{
			Correct: v.Summary.Correct,
			Total:   v.Summary.Total,
			Score:   v.Summary.Score,
			Band:    v.Summary.Band,
			Message: appI18n.T(r.Context(), scoreMessageID(v.Summary.Band)),
		}
	}
	return resp
}

func (h *Handler) handleStartSession(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	q, err := h.quizzes.Get(r.Context(), user.ID, chi.URLParam(r, "quizID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	v, err := h.sessions.Start(user.ID, *q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.sessionResponse(r, v))
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	v, err := h.sessions.Get(currentUser(r).ID, chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.sessionResponse(r, v))
}

type answerRequest struct {
	Answer string `json:"answer"`
}

func (h *Handler) handleSubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	v, _, err := h.sessions.Submit(currentUser(r).ID, chi.URLParam(r, "sessionID"), req.Answer)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.sessionResponse(r, v))
}

func (h *Handler) handleRetake(w http.ResponseWriter, r *http.Request) {
	v, err := h.sessions.Retake(currentUser(r).ID, chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.sessionResponse(r, v))
}

// ownerQuizIDs lists the IDs in a snapshot, for logging.
func ownerQuizIDs(list []model.QuizSummary) []string {
	return lo.Map(list, func(s model.QuizSummary, _ int) string { return s.ID })
}
