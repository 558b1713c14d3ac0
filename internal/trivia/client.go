package trivia

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"

	"trivia-quiz-service/internal/domain"
)

const (
	DefaultBaseURL = "https://opentdb.com"
	DefaultTimeout = 10 * time.Second

	apiPath = "/api.php"
)

// apiResponse is the OpenTDB envelope. ResponseCode 0 is success; anything else
// (no results, invalid parameter, token problems, rate limit) is a semantic failure.
type apiResponse struct {
	ResponseCode int           `json:"response_code"`
	Results      []RawQuestion `json:"results"`
}

// Client requests question batches from an OpenTDB-compatible endpoint.
type Client struct {
	http *resty.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetHeader("Accept", "application/json"),
	}
}

// FetchQuestions sends a single request for count multiple-choice questions.
// Transport failures wrap domain.ErrNetwork; a non-zero response code or an empty
// result set wraps domain.ErrNoResults.
func (c *Client) FetchQuestions(ctx context.Context, difficulty domain.Difficulty, categoryID, count int) ([]RawQuestion, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(queryParams(difficulty, categoryID, count)).
		Get(apiPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrNetwork, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: unexpected status %s", domain.ErrNetwork, resp.Status())
	}

	var body apiResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", domain.ErrNetwork, err)
	}
	if body.ResponseCode != 0 {
		return nil, fmt.Errorf("%w: response_code=%d", domain.ErrNoResults, body.ResponseCode)
	}
	if len(body.Results) == 0 {
		return nil, fmt.Errorf("%w: empty result set", domain.ErrNoResults)
	}
	return body.Results, nil
}

// queryParams leaves out the wildcard difficulty and the "any" category entirely.
func queryParams(difficulty domain.Difficulty, categoryID, count int) map[string]string {
	params := map[string]string{
		"amount": strconv.Itoa(count),
		"type":   "multiple",
		"encode": "base64",
	}
	if categoryID > 0 {
		params["category"] = strconv.Itoa(categoryID)
	}
	if difficulty != "" && difficulty != domain.DifficultyAny {
		params["difficulty"] = string(difficulty)
	}
	return params
}
