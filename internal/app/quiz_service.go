package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"trivia-quiz-service/internal/domain"
	"trivia-quiz-service/internal/trivia"
)

// ErrSessionBusy is returned when a session is already attached to another connection.
var ErrSessionBusy = errors.New("session already in use")

// SessionRepository hands out sessions to connections. A session is attached to at most
// one connection at a time; release detaches it.
type SessionRepository interface {
	Acquire(sessionID string) (session *Session, release func(), err error)
}

// QuestionSource fetches and decodes a question batch for a configuration.
type QuestionSource interface {
	Fetch(ctx context.Context, cfg domain.QuizConfiguration) (trivia.DecodeResult, error)
}

// Explainer produces a rationale for a correct answer. It never fails; failures come
// back as readable fallback text.
type Explainer interface {
	Explain(ctx context.Context, question, correctAnswer string) string
}

// QuizService contains the quiz use cases. It holds no per-respondent state: every
// transition operates on the *Session it is given and returns the resulting snapshot.
type QuizService struct {
	questions   QuestionSource
	explainer   Explainer
	leaderboard *LeaderboardService
	logger      *zap.Logger
}

func NewQuizService(questions QuestionSource, explainer Explainer, leaderboard *LeaderboardService, logger *zap.Logger) *QuizService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if leaderboard == nil {
		leaderboard = NewLeaderboardService(nil, logger)
	}
	return &QuizService{
		questions:   questions,
		explainer:   explainer,
		leaderboard: leaderboard,
		logger:      logger,
	}
}

// Leaderboard exposes the shared leaderboard contract.
func (q *QuizService) Leaderboard() *LeaderboardService {
	return q.leaderboard
}

// StartSession fetches a new batch for cfg and, on success, replaces the session's quiz.
// The configuration is remembered even when the fetch fails; the quiz state is not touched
// on failure so the respondent can change settings and retry.
func (q *QuizService) StartSession(ctx context.Context, s *Session, cfg domain.QuizConfiguration) (domain.SessionSnapshot, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return s.Snapshot(), err
	}
	s.setConfig(cfg)

	batch, err := q.questions.Fetch(ctx, cfg)
	if err != nil {
		q.logger.Warn("start session failed",
			zap.String("session", s.ID()),
			zap.String("difficulty", string(cfg.Difficulty)),
			zap.Int("category", cfg.CategoryID),
			zap.Error(err),
		)
		return s.Snapshot(), err
	}
	if len(batch.Questions) == 0 {
		return s.Snapshot(), domain.ErrCorruptBatch
	}

	s.begin(batch)
	q.logger.Info("session started",
		zap.String("session", s.ID()),
		zap.Int("questions", len(batch.Questions)),
		zap.Int("dropped", batch.Dropped),
	)
	return s.Snapshot(), nil
}

// SubmitAnswer scores choice for the question at index. applied is false when index is not
// the current question, which makes duplicate submissions harmless.
func (q *QuizService) SubmitAnswer(s *Session, index int, choice string) (domain.SessionSnapshot, bool, error) {
	rec, applied, err := s.applyAnswer(index, choice)
	if err != nil {
		return s.Snapshot(), false, err
	}
	if !applied {
		q.logger.Debug("ignored stale answer",
			zap.String("session", s.ID()),
			zap.Int("index", index),
			zap.Int("current", s.CurrentIndex()),
		)
		return s.Snapshot(), false, nil
	}
	q.logger.Debug("answer recorded",
		zap.String("session", s.ID()),
		zap.Int("index", index),
		zap.Bool("correct", rec.IsCorrect),
	)
	return s.Snapshot(), true, nil
}

// ResetSession discards the quiz and returns to idle, keeping the configuration.
func (q *QuizService) ResetSession(s *Session) domain.SessionSnapshot {
	s.reset()
	return s.Snapshot()
}

// RestartSameConfig resets and starts again with the remembered configuration.
func (q *QuizService) RestartSameConfig(ctx context.Context, s *Session) (domain.SessionSnapshot, error) {
	cfg := s.Config()
	q.ResetSession(s)
	return q.StartSession(ctx, s, cfg)
}

// ToggleReview flips review mode on a completed quiz. Entering review resolves every
// missing explanation one at a time in answer order; resolved ones are never refetched.
func (q *QuizService) ToggleReview(ctx context.Context, s *Session) (domain.SessionSnapshot, error) {
	if s.State() != domain.StateCompleted {
		return s.Snapshot(), domain.ErrSessionNotCompleted
	}
	if !s.reviewMode {
		for _, i := range s.unresolved() {
			if err := ctx.Err(); err != nil {
				return s.Snapshot(), err
			}
			rec := s.history[i]
			text := q.explainer.Explain(ctx, rec.Question.Text, rec.CorrectAnswer)
			if err := ctx.Err(); err != nil {
				// the fallback came from the cancellation, not the upstream; leave it unresolved
				return s.Snapshot(), err
			}
			s.setExplanation(i, text)
		}
	}
	s.reviewMode = !s.reviewMode
	s.touch()
	return s.Snapshot(), nil
}

// Review returns the assembled review of a completed quiz.
func (q *QuizService) Review(s *Session) ([]domain.ReviewItem, error) {
	if s.State() != domain.StateCompleted {
		return nil, domain.ErrSessionNotCompleted
	}
	return AssembleReview(s.history), nil
}

// SubmitScore writes the completed session to the leaderboard once. scoreSubmitted only
// flips after the store accepted the entry.
func (q *QuizService) SubmitScore(ctx context.Context, s *Session, username string) (domain.SessionSnapshot, domain.LeaderboardEntry, error) {
	if s.State() != domain.StateCompleted {
		return s.Snapshot(), domain.LeaderboardEntry{}, domain.ErrSessionNotCompleted
	}
	if s.scoreSubmitted {
		return s.Snapshot(), domain.LeaderboardEntry{}, domain.ErrScoreAlreadySubmitted
	}

	cfg := s.Config()
	entry, err := q.leaderboard.Submit(ctx, domain.LeaderboardEntry{
		Username:       username,
		Score:          s.score,
		TotalQuestions: len(s.questions),
		Difficulty:     domain.DifficultyLabel(cfg.Difficulty),
		Category:       domain.CategoryLabel(cfg.CategoryID),
	})
	if err != nil {
		return s.Snapshot(), domain.LeaderboardEntry{}, fmt.Errorf("submit score: %w", err)
	}
	s.scoreSubmitted = true
	s.touch()
	return s.Snapshot(), entry, nil
}
