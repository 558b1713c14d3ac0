package trivia

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"trivia-quiz-service/internal/domain"
)

type stubFetcher struct {
	items []RawQuestion
	err   error
	got   domain.QuizConfiguration
}

func (f *stubFetcher) FetchQuestions(_ context.Context, difficulty domain.Difficulty, categoryID, count int) ([]RawQuestion, error) {
	f.got = domain.QuizConfiguration{Difficulty: difficulty, CategoryID: categoryID, QuestionCount: count}
	return f.items, f.err
}

func TestSourceFetchDecodes(t *testing.T) {
	bad := rawItem("x", "y", "a", "b", "c")
	bad.Difficulty = nil
	fetcher := &stubFetcher{items: []RawQuestion{rawItem("q", "a", "b", "c", "d"), bad}}
	src := NewSourceWithRand(fetcher, zap.NewNop(), rand.New(rand.NewSource(1)))

	cfg := domain.QuizConfiguration{Difficulty: domain.DifficultyMedium, CategoryID: 9, QuestionCount: 2}
	res, err := src.Fetch(context.Background(), cfg)
	require.NoError(t, err)
	require.Equal(t, cfg, fetcher.got)
	require.Len(t, res.Questions, 1)
	require.Equal(t, 1, res.Dropped)
}

func TestSourceFetchAllDroppedIsCorruptBatch(t *testing.T) {
	bad := rawItem("x", "y", "a", "b", "c")
	bad.Question = ptr("***")
	src := NewSourceWithRand(&stubFetcher{items: []RawQuestion{bad}}, nil, rand.New(rand.NewSource(1)))

	res, err := src.Fetch(context.Background(), domain.DefaultQuizConfiguration())
	require.ErrorIs(t, err, domain.ErrCorruptBatch)
	require.ErrorIs(t, err, domain.ErrNoResults)
	require.Equal(t, 1, res.Dropped)
}

func TestSourceFetchPassesErrorsThrough(t *testing.T) {
	src := NewSource(&stubFetcher{err: domain.ErrNetwork}, nil)
	_, err := src.Fetch(context.Background(), domain.DefaultQuizConfiguration())
	require.True(t, errors.Is(err, domain.ErrNetwork))
}
