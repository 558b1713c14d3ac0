package app

import "trivia-quiz-service/internal/domain"

// AssembleReview pairs each answer with its explanation, in answer order. Entries whose
// explanation was never resolved get an empty string.
func AssembleReview(history []domain.AnswerRecord) []domain.ReviewItem {
	items := make([]domain.ReviewItem, 0, len(history))
	for i, rec := range history {
		item := domain.ReviewItem{
			Index:         i,
			Question:      rec.Question,
			UserAnswer:    rec.UserAnswer,
			CorrectAnswer: rec.CorrectAnswer,
			IsCorrect:     rec.IsCorrect,
		}
		if rec.Explanation != nil {
			item.Explanation = *rec.Explanation
		}
		items = append(items, item)
	}
	return items
}
