package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"trivia-quiz-service/internal/domain"
)

// LeaderboardStore writes results to the quiz_scores table created by migrations.
type LeaderboardStore struct {
	pool *pgxpool.Pool
}

func NewLeaderboardStore(pool *pgxpool.Pool) *LeaderboardStore {
	return &LeaderboardStore{pool: pool}
}

func (s *LeaderboardStore) Append(ctx context.Context, entry domain.LeaderboardEntry) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO quiz_scores (id, username, score, total_questions, percentage, difficulty, category, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		entry.ID, entry.Username, entry.Score, entry.TotalQuestions,
		entry.Percentage, entry.Difficulty, entry.Category, entry.SubmittedAt,
	)
	if err != nil {
		return fmt.Errorf("insert score: %w", err)
	}
	return nil
}

func (s *LeaderboardStore) Top(ctx context.Context, n int) ([]domain.LeaderboardEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, username, score, total_questions, percentage, difficulty, category, submitted_at
		FROM quiz_scores
		ORDER BY percentage DESC
		LIMIT $1`, n)
	if err != nil {
		return nil, fmt.Errorf("query scores: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.LeaderboardEntry, 0, n)
	for rows.Next() {
		var e domain.LeaderboardEntry
		if err := rows.Scan(&e.ID, &e.Username, &e.Score, &e.TotalQuestions,
			&e.Percentage, &e.Difficulty, &e.Category, &e.SubmittedAt); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		e.SubmittedAt = e.SubmittedAt.UTC()
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read scores: %w", err)
	}
	return entries, nil
}
