package domain

import (
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Difficulty keys understood by the question bank. DifficultyAny is the wildcard and is
// never sent upstream.
type Difficulty string

const (
	DifficultyAny    Difficulty = "any"
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

const (
	DefaultQuestionCount = 10
	MaxQuestionCount     = 50
)

// QuizConfiguration is chosen before a session starts and survives resets.
type QuizConfiguration struct {
	Difficulty    Difficulty `json:"difficulty" validate:"oneof=any easy medium hard"`
	CategoryID    int        `json:"category" validate:"gte=0"`
	QuestionCount int        `json:"count" validate:"gte=1,lte=50"`
}

// DefaultQuizConfiguration is the "Very Easy (All)", mixed-category, ten-question quiz.
func DefaultQuizConfiguration() QuizConfiguration {
	return QuizConfiguration{
		Difficulty:    DifficultyAny,
		CategoryID:    0,
		QuestionCount: DefaultQuestionCount,
	}
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validate checks the configuration and wraps failures in ErrInvalidConfig.
func (c QuizConfiguration) Validate() error {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// WithDefaults fills zero values left by partial client payloads.
func (c QuizConfiguration) WithDefaults() QuizConfiguration {
	if c.Difficulty == "" {
		c.Difficulty = DifficultyAny
	}
	if c.QuestionCount == 0 {
		c.QuestionCount = DefaultQuestionCount
	}
	return c
}

// Option is a labelled choice for the settings screen.
type Option[T any] struct {
	Label string `json:"label"`
	Value T      `json:"value"`
}

// DifficultyOptions lists the selectable difficulties in display order.
var DifficultyOptions = []Option[Difficulty]{
	{Label: "Very Easy (All)", Value: DifficultyAny},
	{Label: "Easy", Value: DifficultyEasy},
	{Label: "Medium", Value: DifficultyMedium},
	{Label: "Hard", Value: DifficultyHard},
}

// CategoryOptions lists the selectable OpenTDB categories in display order.
var CategoryOptions = []Option[int]{
	{Label: "Mix (Any Category)", Value: 0},
	{Label: "General Knowledge", Value: 9},
	{Label: "Books", Value: 10},
	{Label: "Film", Value: 11},
	{Label: "Music", Value: 12},
	{Label: "Science & Nature", Value: 17},
	{Label: "Computers", Value: 18},
	{Label: "Mathematics", Value: 19},
	{Label: "Geography", Value: 22},
	{Label: "History", Value: 23},
	{Label: "Sports", Value: 21},
}

// DifficultyLabel returns the display label, or the raw key when unknown.
func DifficultyLabel(d Difficulty) string {
	for _, opt := range DifficultyOptions {
		if opt.Value == d {
			return opt.Label
		}
	}
	return string(d)
}

// CategoryLabel returns the display label, or "Category <id>" for ids outside the table.
func CategoryLabel(id int) string {
	for _, opt := range CategoryOptions {
		if opt.Value == id {
			return opt.Label
		}
	}
	return fmt.Sprintf("Category %d", id)
}
