package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNetwork is returned when the question bank cannot be reached or answers with a transport-level failure.
	ErrNetwork = errors.New("trivia service unreachable")
	// ErrNoResults is returned when the question bank has no questions for the requested configuration.
	ErrNoResults = errors.New("no questions available for this configuration")
	// ErrCorruptBatch means every fetched record failed to decode; it is a flavour of ErrNoResults.
	ErrCorruptBatch = fmt.Errorf("%w: fetched questions were empty or corrupted", ErrNoResults)

	// ErrStoreUnavailable is returned when no leaderboard backend is configured (offline mode).
	ErrStoreUnavailable = errors.New("leaderboard offline")
	// ErrStoreWriteFailed wraps a backend error while appending a leaderboard entry.
	ErrStoreWriteFailed = errors.New("leaderboard write failed")

	// ErrSessionNotStarted is returned when answering without a quiz in progress.
	ErrSessionNotStarted = errors.New("no quiz in progress")
	// ErrSessionNotCompleted is returned by completion-only operations (review, score submission).
	ErrSessionNotCompleted = errors.New("quiz not completed")
	// ErrScoreAlreadySubmitted prevents a second leaderboard write for the same session.
	ErrScoreAlreadySubmitted = errors.New("score already submitted")
	// ErrNoChoice is returned when an answer is submitted without a selected option.
	ErrNoChoice = errors.New("no answer selected")
	// ErrInvalidConfig is returned when a quiz configuration fails validation.
	ErrInvalidConfig = errors.New("invalid quiz configuration")
	// ErrUsernameRequired is returned when a score is submitted without a usable username.
	ErrUsernameRequired = errors.New("username required")
)
