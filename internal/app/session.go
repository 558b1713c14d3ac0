package app

import (
	"time"

	"trivia-quiz-service/internal/domain"
	"trivia-quiz-service/internal/trivia"
)

// Session is one respondent's quiz state. It is owned by a single connection and is not
// safe for concurrent use; all mutation goes through QuizService.
type Session struct {
	id  string
	now func() time.Time

	config  domain.QuizConfiguration
	started bool

	questions    []domain.Question
	currentIndex int
	score        int
	history      []domain.AnswerRecord
	dropped      int

	scoreSubmitted bool
	reviewMode     bool
	lastActive     time.Time
}

// NewSession returns an idle session with the default configuration.
func NewSession(id string) *Session {
	return NewSessionWithClock(id, time.Now)
}

// NewSessionWithClock is for deterministic timestamps in tests.
func NewSessionWithClock(id string, now func() time.Time) *Session {
	return &Session{
		id:         id,
		now:        now,
		config:     domain.DefaultQuizConfiguration(),
		lastActive: now(),
	}
}

func (s *Session) ID() string { return s.id }

// LastActive is the time of the most recent transition.
func (s *Session) LastActive() time.Time { return s.lastActive }

func (s *Session) Config() domain.QuizConfiguration { return s.config }

// State derives the phase from the counters: completion is currentIndex == len(questions).
func (s *Session) State() domain.SessionState {
	switch {
	case !s.started:
		return domain.StateIdle
	case s.currentIndex < len(s.questions):
		return domain.StateInProgress
	default:
		return domain.StateCompleted
	}
}

func (s *Session) Score() int { return s.score }

func (s *Session) CurrentIndex() int { return s.currentIndex }

func (s *Session) TotalQuestions() int { return len(s.questions) }

func (s *Session) ScoreSubmitted() bool { return s.scoreSubmitted }

func (s *Session) ReviewMode() bool { return s.reviewMode }

// History returns a copy of the answer records.
func (s *Session) History() []domain.AnswerRecord {
	out := make([]domain.AnswerRecord, len(s.history))
	copy(out, s.history)
	return out
}

// Snapshot builds the read-only view the UI shell renders.
func (s *Session) Snapshot() domain.SessionSnapshot {
	snap := domain.SessionSnapshot{
		State:            s.State(),
		Config:           s.config,
		CurrentIndex:     s.currentIndex,
		TotalQuestions:   len(s.questions),
		Score:            s.score,
		ScoreSubmitted:   s.scoreSubmitted,
		ReviewMode:       s.reviewMode,
		DroppedQuestions: s.dropped,
	}
	if snap.State == domain.StateInProgress {
		view := s.questions[s.currentIndex].View()
		snap.CurrentQuestion = &view
	}
	if snap.State == domain.StateCompleted {
		snap.Percentage = domain.Percentage(s.score, len(s.questions))
	}
	if n := len(s.history); n > 0 {
		last := s.history[n-1]
		snap.LastAnswer = &last
	}
	return snap
}

func (s *Session) touch() {
	s.lastActive = s.now()
}

func (s *Session) setConfig(cfg domain.QuizConfiguration) {
	s.config = cfg
	s.touch()
}

// begin replaces whatever the session held with a fresh batch.
func (s *Session) begin(batch trivia.DecodeResult) {
	s.started = true
	s.questions = batch.Questions
	s.dropped = batch.Dropped
	s.currentIndex = 0
	s.score = 0
	s.history = make([]domain.AnswerRecord, 0, len(batch.Questions))
	s.scoreSubmitted = false
	s.reviewMode = false
	s.touch()
}

// applyAnswer is the only mutator of score, history and currentIndex. A submission for an
// index other than the current one is a duplicate or stale event and changes nothing.
func (s *Session) applyAnswer(index int, choice string) (domain.AnswerRecord, bool, error) {
	if s.State() != domain.StateInProgress {
		return domain.AnswerRecord{}, false, domain.ErrSessionNotStarted
	}
	if index != s.currentIndex {
		return domain.AnswerRecord{}, false, nil
	}
	if choice == "" {
		return domain.AnswerRecord{}, false, domain.ErrNoChoice
	}

	q := s.questions[s.currentIndex]
	rec := domain.AnswerRecord{
		Question:      q,
		UserAnswer:    choice,
		CorrectAnswer: q.CorrectAnswer,
		IsCorrect:     choice == q.CorrectAnswer,
	}
	s.history = append(s.history, rec)
	if rec.IsCorrect {
		s.score++
	}
	s.currentIndex++
	s.touch()
	return rec, true, nil
}

// reset returns to idle. The configuration is kept so the respondent can restart with it.
func (s *Session) reset() {
	s.started = false
	s.questions = nil
	s.dropped = 0
	s.currentIndex = 0
	s.score = 0
	s.history = nil
	s.scoreSubmitted = false
	s.reviewMode = false
	s.touch()
}

// unresolved returns the history indexes still missing an explanation, in order.
func (s *Session) unresolved() []int {
	var idx []int
	for i := range s.history {
		if s.history[i].Explanation == nil {
			idx = append(idx, i)
		}
	}
	return idx
}

func (s *Session) setExplanation(i int, text string) {
	s.history[i].Explanation = &text
}
