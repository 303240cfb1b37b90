package session

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abhinav121122/intellect-quiz-app/internal/model"
)

// ErrSessionNotFound means no live session has the given ID.
var ErrSessionNotFound = errors.New("session not found")

// View is a point-in-time copy of a session for callers outside the registry.
type View struct {
	ID           string
	OwnerID      string
	Quiz         model.Quiz
	Phase        Phase
	CurrentIndex int
	Current      *model.Question
	Answers      []model.AnswerRecord
	Summary      *Summary
}

type entry struct {
	owner   string
	session *Session
	touched time.Time
}

// Registry keeps live sessions in memory, scoped to their owner.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*entry
	now      func() time.Time
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*entry), now: time.Now}
}

// Start opens a new session over quiz for ownerID.
func (r *Registry) Start(ownerID string, quiz model.Quiz) (View, error) {
	s, err := New(quiz)
	if err != nil {
		return View{}, err
	}
	id := uuid.NewString()

	r.mu.Lock()
	defer r.mu.Unlock()
	e := &entry{owner: ownerID, session: s, touched: r.now()}
	r.sessions[id] = e
	slog.Debug("started quiz session", "session", id, "quiz", quiz.ID, "owner", ownerID)
	return view(id, e), nil
}

// Get returns the current view of a session.
func (r *Registry) Get(ownerID, id string) (View, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, err := r.lookup(ownerID, id)
	if err != nil {
		return View{}, err
	}
	return view(id, e), nil
}

// Submit records an answer in a session.
func (r *Registry) Submit(ownerID, id, answer string) (View, model.AnswerRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, err := r.lookup(ownerID, id)
	if err != nil {
		return View{}, model.AnswerRecord{}, err
	}
	rec, err := e.session.SubmitAnswer(answer)
	if err != nil {
		return view(id, e), model.AnswerRecord{}, err
	}
	e.touched = r.now()
	return view(id, e), rec, nil
}

// Retake restarts a reviewed session.
func (r *Registry) Retake(ownerID, id string) (View, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, err := r.lookup(ownerID, id)
	if err != nil {
		return View{}, err
	}
	if err := e.session.Retake(); err != nil {
		return view(id, e), err
	}
	e.touched = r.now()
	return view(id, e), nil
}

// Sweep drops sessions idle for longer than idle and reports how many went.
func (r *Registry) Sweep(idle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := r.now().Add(-idle)
	n := 0
	for id, e := range r.sessions {
		if e.touched.Before(cutoff) {
			delete(r.sessions, id)
			n++
		}
	}
	return n
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *Registry) lookup(ownerID, id string) (*entry, error) {
	e, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if e.owner != ownerID {
		return nil, model.ErrForbidden
	}
	e.touched = r.now()
	return e, nil
}

func view(id string, e *entry) View {
	s := e.session
	v := View{
		ID:           id,
		OwnerID:      e.owner,
		Quiz:         s.Quiz(),
		Phase:        s.Phase(),
		CurrentIndex: s.CurrentIndex(),
		Answers:      s.Answers(),
	}
	if q, ok := s.Current(); ok {
		v.Current = &q
	}
	if sum, err := s.Summary(); err == nil {
		v.Summary = &sum
	}
	return v
}
