package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/abhinav121122/intellect-quiz-app/internal/model"
)

func TestRegistryLifecycle(t *testing.T) {
	r := NewRegistry()
	v, err := r.Start("alice", testQuiz())
	require.NoError(t, err)
	require.NotEmpty(t, v.ID)
	require.Equal(t, PhaseAnswering, v.Phase)
	require.NotNil(t, v.Current)
	require.Equal(t, "What is H2O?", v.Current.QuestionText)
	require.Nil(t, v.Summary)

	for _, a := range []string{"Water", "True"} {
		_, rec, err := r.Submit("alice", v.ID, a)
		require.NoError(t, err)
		require.True(t, rec.IsCorrect)
	}
	v, rec, err := r.Submit("alice", v.ID, "1")
	require.NoError(t, err)
	require.False(t, rec.IsCorrect)
	require.Equal(t, PhaseReviewing, v.Phase)
	require.Nil(t, v.Current)
	require.NotNil(t, v.Summary)
	require.Equal(t, 67, v.Summary.Score)

	v, err = r.Retake("alice", v.ID)
	require.NoError(t, err)
	require.Equal(t, PhaseAnswering, v.Phase)
	require.Zero(t, v.CurrentIndex)
	require.Empty(t, v.Answers)
}

func TestRegistryOwnerScoping(t *testing.T) {
	r := NewRegistry()
	v, err := r.Start("alice", testQuiz())
	require.NoError(t, err)

	_, err = r.Get("bob", v.ID)
	require.ErrorIs(t, err, model.ErrForbidden)
	_, _, err = r.Submit("bob", v.ID, "Water")
	require.ErrorIs(t, err, model.ErrForbidden)

	_, err = r.Get("alice", "missing")
	require.ErrorIs(t, err, ErrSessionNotFound)

	got, err := r.Get("alice", v.ID)
	require.NoError(t, err)
	require.Zero(t, got.CurrentIndex, "bob's submit must not advance the session")
}

func TestRegistryPhaseErrors(t *testing.T) {
	r := NewRegistry()
	v, err := r.Start("alice", testQuiz())
	require.NoError(t, err)

	_, err = r.Retake("alice", v.ID)
	require.ErrorIs(t, err, ErrNotReviewing)

	_, _, err = r.Submit("alice", v.ID, "  ")
	require.ErrorIs(t, err, ErrEmptyAnswer)

	_, err = r.Start("alice", model.Quiz{})
	require.ErrorIs(t, err, ErrEmptyQuiz)
}

func TestRegistrySweep(t *testing.T) {
	r := NewRegistry()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	old, err := r.Start("alice", testQuiz())
	require.NoError(t, err)
	now = now.Add(time.Hour)
	recent, err := r.Start("alice", testQuiz())
	require.NoError(t, err)
	require.Equal(t, 2, r.Len())

	now = now.Add(10 * time.Minute)
	require.Equal(t, 1, r.Sweep(30*time.Minute))

	_, err = r.Get("alice", old.ID)
	require.ErrorIs(t, err, ErrSessionNotFound)
	_, err = r.Get("alice", recent.ID)
	require.NoError(t, err)
}
