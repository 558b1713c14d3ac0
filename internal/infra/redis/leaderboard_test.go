package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"trivia-quiz-service/internal/domain"
)

func TestLeaderboardStoreRanksByPercentage(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewLeaderboardStore(newClient(mr), "")
	ctx := context.Background()
	at := time.Date(2024, 11, 22, 9, 0, 0, 0, time.UTC)

	for _, e := range []domain.LeaderboardEntry{
		{ID: "a", Username: "low", Score: 2, TotalQuestions: 10, Percentage: 20, SubmittedAt: at},
		{ID: "b", Username: "top", Score: 9, TotalQuestions: 10, Percentage: 90, SubmittedAt: at},
		{ID: "c", Username: "mid", Score: 5, TotalQuestions: 10, Percentage: 50, SubmittedAt: at},
	} {
		if err := store.Append(ctx, e); err != nil {
			t.Fatalf("append %s: %v", e.ID, err)
		}
	}

	if !mr.Exists("quiz_scores:rank") || !mr.Exists("quiz_scores:entries") {
		t.Fatalf("expected rank and entry keys to be set")
	}

	top, err := store.Top(ctx, 2)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(top))
	}
	if top[0].Username != "top" || top[1].Username != "mid" {
		t.Fatalf("unexpected order: %s, %s", top[0].Username, top[1].Username)
	}
	if !top[0].SubmittedAt.Equal(at) {
		t.Fatalf("expected submittedAt to round-trip, got %v", top[0].SubmittedAt)
	}
}

func TestLeaderboardStoreEmpty(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	top, err := NewLeaderboardStore(newClient(mr), "scores").Top(context.Background(), 10)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if top == nil || len(top) != 0 {
		t.Fatalf("expected empty slice, got %#v", top)
	}
}

func TestLeaderboardStoreUnreachable(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	client := newClient(mr)
	mr.Close()

	store := NewLeaderboardStore(client, "")
	if err := store.Append(context.Background(), domain.LeaderboardEntry{ID: "x"}); err == nil {
		t.Fatalf("expected append error with redis down")
	}
	if _, err := store.Top(context.Background(), 5); err == nil {
		t.Fatalf("expected top error with redis down")
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
