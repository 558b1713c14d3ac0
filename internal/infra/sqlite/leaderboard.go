package sqlite

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"trivia-quiz-service/internal/domain"
)

// scoreRow is the quiz_scores table layout.
type scoreRow struct {
	ID             string    `gorm:"primaryKey"`
	Username       string    `gorm:"not null"`
	Score          int       `gorm:"not null"`
	TotalQuestions int       `gorm:"not null"`
	Percentage     float64   `gorm:"not null;index"`
	Difficulty     string    `gorm:"not null"`
	Category       string    `gorm:"not null"`
	SubmittedAt    time.Time `gorm:"not null"`
}

func (scoreRow) TableName() string { return "quiz_scores" }

// LeaderboardStore keeps results in a local SQLite file for single-node deployments.
type LeaderboardStore struct {
	db *gorm.DB
}

// Open connects to the database at path and migrates the schema.
func Open(path string) (*LeaderboardStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.AutoMigrate(&scoreRow{}); err != nil {
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	return &LeaderboardStore{db: db}, nil
}

func (s *LeaderboardStore) Append(ctx context.Context, entry domain.LeaderboardEntry) error {
	row := scoreRow{
		ID:             entry.ID,
		Username:       entry.Username,
		Score:          entry.Score,
		TotalQuestions: entry.TotalQuestions,
		Percentage:     entry.Percentage,
		Difficulty:     entry.Difficulty,
		Category:       entry.Category,
		SubmittedAt:    entry.SubmittedAt,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("insert score: %w", err)
	}
	return nil
}

func (s *LeaderboardStore) Top(ctx context.Context, n int) ([]domain.LeaderboardEntry, error) {
	var rows []scoreRow
	err := s.db.WithContext(ctx).
		Order("percentage DESC").
		Limit(n).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query scores: %w", err)
	}
	entries := make([]domain.LeaderboardEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, domain.LeaderboardEntry{
			ID:             r.ID,
			Username:       r.Username,
			Score:          r.Score,
			TotalQuestions: r.TotalQuestions,
			Percentage:     r.Percentage,
			Difficulty:     r.Difficulty,
			Category:       r.Category,
			SubmittedAt:    r.SubmittedAt.UTC(),
		})
	}
	return entries, nil
}

// Close releases the underlying connection pool.
func (s *LeaderboardStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
