package firestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"trivia-quiz-service/internal/domain"
)

// DefaultCollection is where results are written.
const DefaultCollection = "quiz_scores"

type scoreDoc struct {
	Username       string    `firestore:"username"`
	Score          int       `firestore:"score"`
	TotalQuestions int       `firestore:"total_questions"`
	Percentage     float64   `firestore:"percentage"`
	Difficulty     string    `firestore:"difficulty"`
	Category       string    `firestore:"category"`
	Timestamp      time.Time `firestore:"timestamp"`
}

// LeaderboardStore keeps results in a Firestore collection, one document per entry ID.
// The write time is assigned by the server.
type LeaderboardStore struct {
	client     *firestore.Client
	collection string
}

// NewClient connects to projectID. An empty credentialsFile uses application default
// credentials, which is also what the emulator expects.
func NewClient(ctx context.Context, projectID, credentialsFile string) (*firestore.Client, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("firestore client: %w", err)
	}
	return client, nil
}

func NewLeaderboardStore(client *firestore.Client, collection string) *LeaderboardStore {
	if collection == "" {
		collection = DefaultCollection
	}
	return &LeaderboardStore{client: client, collection: collection}
}

func (s *LeaderboardStore) Append(ctx context.Context, entry domain.LeaderboardEntry) error {
	_, err := s.client.Collection(s.collection).Doc(entry.ID).Set(ctx, map[string]interface{}{
		"username":        entry.Username,
		"score":           entry.Score,
		"total_questions": entry.TotalQuestions,
		"percentage":      entry.Percentage,
		"difficulty":      entry.Difficulty,
		"category":        entry.Category,
		"timestamp":       firestore.ServerTimestamp,
	})
	if err != nil {
		return fmt.Errorf("add score: %w", err)
	}
	return nil
}

func (s *LeaderboardStore) Top(ctx context.Context, n int) ([]domain.LeaderboardEntry, error) {
	iter := s.client.Collection(s.collection).
		OrderBy("percentage", firestore.Desc).
		Limit(n).
		Documents(ctx)
	defer iter.Stop()

	entries := make([]domain.LeaderboardEntry, 0, n)
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("query scores: %w", err)
		}
		var doc scoreDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode score %s: %w", snap.Ref.ID, err)
		}
		entries = append(entries, domain.LeaderboardEntry{
			ID:             snap.Ref.ID,
			Username:       doc.Username,
			Score:          doc.Score,
			TotalQuestions: doc.TotalQuestions,
			Percentage:     doc.Percentage,
			Difficulty:     doc.Difficulty,
			Category:       doc.Category,
			SubmittedAt:    doc.Timestamp.UTC(),
		})
	}
	return entries, nil
}
