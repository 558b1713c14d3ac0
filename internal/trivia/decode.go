package trivia

import (
	"encoding/base64"
	"errors"
	"fmt"
	"html"
	"math/rand"
	"unicode/utf8"

	"trivia-quiz-service/internal/domain"
)

// incorrectPerQuestion is what OpenTDB returns for type=multiple.
const incorrectPerQuestion = 3

// RawQuestion is one record of an OpenTDB response with encode=base64. Pointer fields let
// the decoder tell a missing field from an empty one.
type RawQuestion struct {
	Question         *string  `json:"question"`
	CorrectAnswer    *string  `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
	Difficulty       *string  `json:"difficulty"`
	Category         *string  `json:"category"`
	Type             *string  `json:"type,omitempty"`
}

// DecodeResult carries the usable questions and how many records were dropped.
type DecodeResult struct {
	Questions []domain.Question
	Dropped   int
}

var errMissingField = errors.New("missing field")

// Decode turns raw records into questions. A record that fails to decode is dropped and
// counted; the rest of the batch is kept. The result depends only on items and rnd.
func Decode(items []RawQuestion, rnd *rand.Rand) DecodeResult {
	res := DecodeResult{Questions: make([]domain.Question, 0, len(items))}
	for _, item := range items {
		q, err := decodeOne(item, rnd)
		if err != nil {
			res.Dropped++
			continue
		}
		res.Questions = append(res.Questions, q)
	}
	return res
}

func decodeOne(item RawQuestion, rnd *rand.Rand) (domain.Question, error) {
	text, err := decodeField("question", item.Question)
	if err != nil {
		return domain.Question{}, err
	}
	correct, err := decodeField("correct_answer", item.CorrectAnswer)
	if err != nil {
		return domain.Question{}, err
	}
	difficulty, err := decodeField("difficulty", item.Difficulty)
	if err != nil {
		return domain.Question{}, err
	}
	category, err := decodeField("category", item.Category)
	if err != nil {
		return domain.Question{}, err
	}
	if len(item.IncorrectAnswers) != incorrectPerQuestion {
		return domain.Question{}, fmt.Errorf("incorrect_answers: want %d, got %d", incorrectPerQuestion, len(item.IncorrectAnswers))
	}

	options := make([]string, 0, incorrectPerQuestion+1)
	for i := range item.IncorrectAnswers {
		ans, err := decodeText(item.IncorrectAnswers[i])
		if err != nil {
			return domain.Question{}, fmt.Errorf("incorrect_answers[%d]: %w", i, err)
		}
		options = append(options, ans)
	}
	options = append(options, correct)
	rnd.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})

	return domain.Question{
		Text:          text,
		Options:       options,
		CorrectAnswer: correct,
		Difficulty:    difficulty,
		Category:      category,
	}, nil
}

func decodeField(name string, raw *string) (string, error) {
	if raw == nil {
		return "", fmt.Errorf("%s: %w", name, errMissingField)
	}
	s, err := decodeText(*raw)
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	return s, nil
}

// decodeText reverses the transport encoding first, then HTML entity escaping.
func decodeText(raw string) (string, error) {
	b, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", errors.New("invalid utf-8")
	}
	return html.UnescapeString(string(b)), nil
}
