package firestore

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"

	"trivia-quiz-service/internal/domain"
)

// Runs against the Firestore emulator: FIRESTORE_EMULATOR_HOST=localhost:8080.
func TestLeaderboardStoreAgainstEmulator(t *testing.T) {
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	ctx := context.Background()

	client, err := NewClient(ctx, "trivia-test", "")
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	defer client.Close()

	store := NewLeaderboardStore(client, "quiz_scores_"+uuid.NewString())
	for _, e := range []domain.LeaderboardEntry{
		{ID: "entry-low", Username: "low", Score: 1, TotalQuestions: 4, Percentage: 25},
		{ID: "entry-high", Username: "high", Score: 4, TotalQuestions: 4, Percentage: 100},
	} {
		if err := store.Append(ctx, e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	top, err := store.Top(ctx, 1)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(top) != 1 || top[0].Username != "high" {
		t.Fatalf("unexpected top: %+v", top)
	}
	if top[0].ID != "entry-high" {
		t.Fatalf("expected stored document id to match entry id, got %q", top[0].ID)
	}
	if top[0].SubmittedAt.IsZero() {
		t.Fatalf("expected server-assigned timestamp, got %+v", top[0])
	}
}
