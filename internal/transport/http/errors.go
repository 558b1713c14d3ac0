package http

import (
	"context"
	"errors"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"
)

type errorPayload struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// errorMapping is checked in order; more specific sentinels come first.
var errorMapping = []struct {
	target  error
	code    string
	message string
}{
	{domain.ErrCorruptBatch, "corrupt_batch", "The questions we received were unreadable. Please try again."},
	{domain.ErrNoResults, "no_results", "No questions match this difficulty and category. Try a different combination."},
	{domain.ErrNetwork, "network", "Could not reach the trivia service. Check your connection and try again."},
	{domain.ErrStoreUnavailable, "store_unavailable", "The leaderboard is offline, so your score was not saved."},
	{domain.ErrStoreWriteFailed, "store_write_failed", "Saving your score failed. Please try again."},
	{domain.ErrInvalidConfig, "invalid_config", "That quiz configuration is not valid."},
	{domain.ErrSessionNotStarted, "not_started", "Start a quiz first."},
	{domain.ErrSessionNotCompleted, "not_completed", "Finish the quiz first."},
	{domain.ErrScoreAlreadySubmitted, "already_submitted", "Your score for this quiz is already on the leaderboard."},
	{domain.ErrNoChoice, "no_choice", "Please select an answer."},
	{domain.ErrUsernameRequired, "username_required", "Please enter a name of 1 to 15 characters."},
	{app.ErrSessionBusy, "session_busy", "This quiz is already open in another window."},
	{context.Canceled, "canceled", "The request was cancelled."},
	{context.DeadlineExceeded, "timeout", "The request timed out. Please try again."},
}

func toErrorPayload(err error) errorPayload {
	for _, m := range errorMapping {
		if errors.Is(err, m.target) {
			return errorPayload{Message: m.message, Code: m.code}
		}
	}
	return errorPayload{Message: "Something went wrong. Please try again.", Code: "internal"}
}
