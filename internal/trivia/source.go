package trivia

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"trivia-quiz-service/internal/domain"
)

// Fetcher is the raw request half of a question source.
type Fetcher interface {
	FetchQuestions(ctx context.Context, difficulty domain.Difficulty, categoryID, count int) ([]RawQuestion, error)
}

// Source fetches and decodes a batch in one call. It is shared by all sessions.
type Source struct {
	fetcher Fetcher
	logger  *zap.Logger

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewSource(fetcher Fetcher, logger *zap.Logger) *Source {
	return NewSourceWithRand(fetcher, logger, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewSourceWithRand allows deterministic shuffles in tests.
func NewSourceWithRand(fetcher Fetcher, logger *zap.Logger, rnd *rand.Rand) *Source {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Source{fetcher: fetcher, logger: logger, rnd: rnd}
}

// Fetch returns the decoded batch for cfg. A batch where every record was dropped is
// reported as domain.ErrCorruptBatch.
func (s *Source) Fetch(ctx context.Context, cfg domain.QuizConfiguration) (DecodeResult, error) {
	raw, err := s.fetcher.FetchQuestions(ctx, cfg.Difficulty, cfg.CategoryID, cfg.QuestionCount)
	if err != nil {
		return DecodeResult{}, err
	}

	s.mu.Lock()
	res := Decode(raw, s.rnd)
	s.mu.Unlock()

	if res.Dropped > 0 {
		s.logger.Warn("dropped undecodable questions",
			zap.Int("dropped", res.Dropped),
			zap.Int("received", len(raw)),
		)
	}
	if len(res.Questions) == 0 {
		return res, domain.ErrCorruptBatch
	}
	return res, nil
}
