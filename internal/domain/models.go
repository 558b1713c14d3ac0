package domain

import "time"

// Question is a decoded multiple-choice question. Options are shuffled once when the
// question is built and never reordered afterwards.
type Question struct {
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Difficulty    string   `json:"difficulty"`
	Category      string   `json:"category"`
}

// QuestionView is what the UI shell may show while the question is still open.
type QuestionView struct {
	Text       string   `json:"text"`
	Options    []string `json:"options"`
	Difficulty string   `json:"difficulty"`
	Category   string   `json:"category"`
}

// View strips the correct answer.
func (q Question) View() QuestionView {
	opts := make([]string, len(q.Options))
	copy(opts, q.Options)
	return QuestionView{
		Text:       q.Text,
		Options:    opts,
		Difficulty: q.Difficulty,
		Category:   q.Category,
	}
}

// AnswerRecord is created once per submitted answer. Explanation stays nil until review
// mode resolves it, and is never fetched twice.
type AnswerRecord struct {
	Question      Question `json:"question"`
	UserAnswer    string   `json:"userAnswer"`
	CorrectAnswer string   `json:"correctAnswer"`
	IsCorrect     bool     `json:"isCorrect"`
	Explanation   *string  `json:"explanation,omitempty"`
}

// LeaderboardEntry is an immutable record of one submitted session result.
type LeaderboardEntry struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"totalQuestions"`
	Percentage     float64   `json:"percentage"`
	Difficulty     string    `json:"difficulty"`
	Category       string    `json:"category"`
	SubmittedAt    time.Time `json:"submittedAt"`
}

// Leaderboard is the ordered top-N view. Offline marks the placeholder returned when no
// store is configured.
type Leaderboard struct {
	Entries []LeaderboardEntry `json:"entries"`
	Offline bool               `json:"offline"`
}

// Percentage returns 100*score/total, or 0 when total is 0.
func Percentage(score, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(score) / float64(total) * 100
}

// SessionState is the coarse quiz phase.
type SessionState string

const (
	StateIdle       SessionState = "idle"
	StateInProgress SessionState = "in_progress"
	StateCompleted  SessionState = "completed"
)

// SessionSnapshot is emitted after every transition; the UI shell renders from it.
type SessionSnapshot struct {
	State            SessionState      `json:"state"`
	Config           QuizConfiguration `json:"config"`
	CurrentIndex     int               `json:"currentIndex"`
	TotalQuestions   int               `json:"totalQuestions"`
	Score            int               `json:"score"`
	Percentage       float64           `json:"percentage"`
	CurrentQuestion  *QuestionView     `json:"currentQuestion,omitempty"`
	LastAnswer       *AnswerRecord     `json:"lastAnswer,omitempty"`
	ScoreSubmitted   bool              `json:"scoreSubmitted"`
	ReviewMode       bool              `json:"reviewMode"`
	DroppedQuestions int               `json:"droppedQuestions"`
}

// ReviewItem pairs a past answer with its explanation for display.
type ReviewItem struct {
	Index         int      `json:"index"`
	Question      Question `json:"question"`
	UserAnswer    string   `json:"userAnswer"`
	CorrectAnswer string   `json:"correctAnswer"`
	IsCorrect     bool     `json:"isCorrect"`
	Explanation   string   `json:"explanation"`
}
