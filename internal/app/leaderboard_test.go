package app_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"
	"trivia-quiz-service/internal/infra/memory"
)

func fixedLeaderboard(store app.LeaderboardStore) *app.LeaderboardService {
	at := time.Date(2024, 11, 22, 10, 0, 0, 0, time.FixedZone("CET", 3600))
	return app.NewLeaderboardServiceWithClock(store, zap.NewNop(), func() time.Time { return at }, func() string { return "id-1" })
}

func TestLeaderboardSubmitFillsDerivedFields(t *testing.T) {
	store := memory.NewLeaderboardStore()
	svc := fixedLeaderboard(store)

	entry, err := svc.Submit(context.Background(), domain.LeaderboardEntry{
		ID:             "caller-supplied",
		Username:       "  carol ",
		Score:          3,
		TotalQuestions: 4,
		Percentage:     12,
	})
	require.NoError(t, err)
	require.Equal(t, "id-1", entry.ID)
	require.Equal(t, "carol", entry.Username)
	require.Equal(t, 75.0, entry.Percentage)
	require.Equal(t, time.UTC, entry.SubmittedAt.Location())
	require.Equal(t, 9, entry.SubmittedAt.Hour())
}

func TestLeaderboardZeroQuestionsIsZeroPercent(t *testing.T) {
	svc := fixedLeaderboard(memory.NewLeaderboardStore())
	entry, err := svc.Submit(context.Background(), domain.LeaderboardEntry{Username: "dave"})
	require.NoError(t, err)
	require.Zero(t, entry.Percentage)
}

func TestLeaderboardUsernameBounds(t *testing.T) {
	store := memory.NewLeaderboardStore()
	svc := fixedLeaderboard(store)
	ctx := context.Background()

	_, err := svc.Submit(ctx, domain.LeaderboardEntry{Username: strings.Repeat("x", app.MaxUsernameLength+1)})
	require.ErrorIs(t, err, domain.ErrUsernameRequired)

	_, err = svc.Submit(ctx, domain.LeaderboardEntry{Username: strings.Repeat("é", app.MaxUsernameLength)})
	require.NoError(t, err)
	require.Equal(t, 1, store.Len())
}

func TestLeaderboardTopNRanksByPercentage(t *testing.T) {
	svc := app.NewLeaderboardService(memory.NewLeaderboardStore(), zap.NewNop())
	ctx := context.Background()
	for _, e := range []domain.LeaderboardEntry{
		{Username: "low", Score: 1, TotalQuestions: 10},
		{Username: "top", Score: 10, TotalQuestions: 10},
		{Username: "mid", Score: 5, TotalQuestions: 10},
	} {
		_, err := svc.Submit(ctx, e)
		require.NoError(t, err)
	}

	board := svc.TopN(ctx, 2)
	require.False(t, board.Offline)
	require.Len(t, board.Entries, 2)
	require.Equal(t, "top", board.Entries[0].Username)
	require.Equal(t, "mid", board.Entries[1].Username)

	require.Empty(t, svc.TopN(ctx, 0).Entries)
}

func TestLeaderboardOffline(t *testing.T) {
	svc := app.NewLeaderboardService(nil, nil)
	require.True(t, svc.Offline())

	_, err := svc.Submit(context.Background(), domain.LeaderboardEntry{Username: ""})
	require.ErrorIs(t, err, domain.ErrStoreUnavailable)

	board := svc.TopN(context.Background(), 10)
	require.True(t, board.Offline)
	require.NotNil(t, board.Entries)
}

func TestLeaderboardWriteFailureWrapsCause(t *testing.T) {
	svc := fixedLeaderboard(failingStore{})
	_, err := svc.Submit(context.Background(), domain.LeaderboardEntry{Username: "erin", Score: 1, TotalQuestions: 1})
	require.ErrorIs(t, err, domain.ErrStoreWriteFailed)
	require.Contains(t, err.Error(), "disk full")
	require.False(t, errors.Is(err, domain.ErrStoreUnavailable))
}

type blockingStore struct {
	started chan struct{}
	release chan struct{}
	ctxErr  chan error
}

func (s *blockingStore) Append(context.Context, domain.LeaderboardEntry) error { return nil }

func (s *blockingStore) Top(ctx context.Context, _ int) ([]domain.LeaderboardEntry, error) {
	select {
	case s.started <- struct{}{}:
	default:
	}
	<-s.release
	select {
	case s.ctxErr <- ctx.Err():
	default:
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []domain.LeaderboardEntry{{Username: "top", Percentage: 100}}, nil
}

func TestLeaderboardSharedReadSurvivesCallerCancel(t *testing.T) {
	store := &blockingStore{
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
		ctxErr:  make(chan error, 1),
	}
	svc := app.NewLeaderboardService(store, zap.NewNop())

	leavingCtx, cancel := context.WithCancel(context.Background())
	leaving := make(chan domain.Leaderboard, 1)
	go func() { leaving <- svc.TopN(leavingCtx, 10) }()
	<-store.started

	staying := make(chan domain.Leaderboard, 1)
	go func() { staying <- svc.TopN(context.Background(), 10) }()
	time.Sleep(20 * time.Millisecond)

	cancel()
	select {
	case board := <-leaving:
		require.Empty(t, board.Entries)
	case <-time.After(2 * time.Second):
		t.Fatal("cancelled caller kept waiting on the shared read")
	}

	close(store.release)
	select {
	case board := <-staying:
		require.False(t, board.Offline)
		require.Len(t, board.Entries, 1)
		require.Equal(t, "top", board.Entries[0].Username)
	case <-time.After(2 * time.Second):
		t.Fatal("remaining caller never got the board")
	}
	require.NoError(t, <-store.ctxErr)
}
