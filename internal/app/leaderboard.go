package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"trivia-quiz-service/internal/domain"
)

// MaxUsernameLength matches the score form's input limit.
const MaxUsernameLength = 15

// LeaderboardStore is an append-only result log with a ranked read. Implementations must
// order Top by percentage descending; ties may come back in any order.
type LeaderboardStore interface {
	Append(ctx context.Context, entry domain.LeaderboardEntry) error
	Top(ctx context.Context, n int) ([]domain.LeaderboardEntry, error)
}

// LeaderboardService is the leaderboard contract used by sessions and the HTTP layer.
// A nil store puts it in offline mode.
type LeaderboardService struct {
	store  LeaderboardStore
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
	reads  singleflight.Group
}

func NewLeaderboardService(store LeaderboardStore, logger *zap.Logger) *LeaderboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LeaderboardService{
		store:  store,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// NewLeaderboardServiceWithClock is test-only for deterministic timestamps and IDs.
func NewLeaderboardServiceWithClock(store LeaderboardStore, logger *zap.Logger, now func() time.Time, newID func() string) *LeaderboardService {
	svc := NewLeaderboardService(store, logger)
	svc.now = now
	svc.newID = newID
	return svc
}

// Offline reports whether no backend is configured.
func (l *LeaderboardService) Offline() bool {
	return l.store == nil
}

// Submit appends one result. Percentage, ID and SubmittedAt are always set here, whatever
// the caller passed in.
func (l *LeaderboardService) Submit(ctx context.Context, entry domain.LeaderboardEntry) (domain.LeaderboardEntry, error) {
	if l.Offline() {
		return domain.LeaderboardEntry{}, domain.ErrStoreUnavailable
	}
	username := strings.TrimSpace(entry.Username)
	if username == "" || utf8.RuneCountInString(username) > MaxUsernameLength {
		return domain.LeaderboardEntry{}, fmt.Errorf("%w: 1 to %d characters", domain.ErrUsernameRequired, MaxUsernameLength)
	}

	entry.Username = username
	entry.ID = l.newID()
	entry.Percentage = domain.Percentage(entry.Score, entry.TotalQuestions)
	entry.SubmittedAt = l.now().UTC()

	if err := l.store.Append(ctx, entry); err != nil {
		l.logger.Error("leaderboard append failed", zap.String("username", username), zap.Error(err))
		return domain.LeaderboardEntry{}, fmt.Errorf("%w: %w", domain.ErrStoreWriteFailed, err)
	}
	l.logger.Info("score saved",
		zap.String("username", username),
		zap.Int("score", entry.Score),
		zap.Int("total", entry.TotalQuestions),
	)
	return entry, nil
}

// TopN never fails: offline mode yields the placeholder and read errors yield an empty board.
// Identical concurrent reads share one backend query.
func (l *LeaderboardService) TopN(ctx context.Context, n int) domain.Leaderboard {
	if l.Offline() {
		return domain.Leaderboard{Entries: []domain.LeaderboardEntry{}, Offline: true}
	}
	if n <= 0 {
		return domain.Leaderboard{Entries: []domain.LeaderboardEntry{}}
	}

	// The shared read outlives any single caller's cancellation; each caller still stops
	// waiting when its own context ends.
	shared := context.WithoutCancel(ctx)
	ch := l.reads.DoChan(strconv.Itoa(n), func() (interface{}, error) {
		return l.store.Top(shared, n)
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		l.logger.Debug("leaderboard read abandoned", zap.Int("limit", n), zap.Error(ctx.Err()))
		return domain.Leaderboard{Entries: []domain.LeaderboardEntry{}}
	}
	if res.Err != nil {
		l.logger.Warn("leaderboard read failed", zap.Int("limit", n), zap.Error(res.Err))
		return domain.Leaderboard{Entries: []domain.LeaderboardEntry{}}
	}
	entries := res.Val.([]domain.LeaderboardEntry)
	if entries == nil {
		entries = []domain.LeaderboardEntry{}
	}
	return domain.Leaderboard{Entries: entries}
}
