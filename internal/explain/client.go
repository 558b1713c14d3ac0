package explain

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/imroc/req/v3"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	DefaultModel   = "gemini-2.0-flash"
	DefaultTimeout = 20 * time.Second

	systemInstruction = "You are a concise, factual trivia explainer. " +
		"Given a quiz question and its correct answer, explain in two or three sentences why the answer is correct. " +
		"Do not restate the question and do not speculate."
)

// Fallback texts. Explain never fails; the reviewer always sees one of these instead.
const (
	fallbackNoKey    = "Explanation unavailable: no API key is configured for the explanation service."
	fallbackStatus   = "Explanation unavailable: the explanation service returned HTTP %d."
	fallbackRequest  = "Explanation unavailable: could not reach the explanation service."
	fallbackEmpty    = "Explanation unavailable: the explanation service returned no text."
	fallbackBadReply = "Explanation unavailable: the explanation service sent an unreadable reply."
)

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateRequest struct {
	SystemInstruction content   `json:"systemInstruction"`
	Contents          []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Client asks a generateContent-style endpoint why an answer is correct.
type Client struct {
	http   *req.Client
	apiKey string
	model  string
	logger *zap.Logger
}

type Options struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

func NewClient(opts Options, logger *zap.Logger) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	httpClient := req.C().
		SetBaseURL(opts.BaseURL).
		SetTimeout(opts.Timeout).
		SetJsonMarshal(json.Marshal).
		SetJsonUnmarshal(json.Unmarshal)
	return &Client{
		http:   httpClient,
		apiKey: opts.APIKey,
		model:  opts.Model,
		logger: logger,
	}
}

// Explain returns the rationale for correctAnswer, or a readable fallback on any failure.
// Without an API key no request is made.
func (c *Client) Explain(ctx context.Context, question, correctAnswer string) string {
	if c.apiKey == "" {
		return fallbackNoKey
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("x-goog-api-key", c.apiKey).
		SetBodyJsonMarshal(buildRequest(question, correctAnswer)).
		Post(fmt.Sprintf("/v1beta/models/%s:generateContent", c.model))
	if err != nil {
		c.logger.Warn("explanation request failed", zap.Error(withoutURL(err)))
		return fallbackRequest
	}
	if !resp.IsSuccessState() {
		c.logger.Warn("explanation service error", zap.Int("status", resp.GetStatusCode()))
		return fmt.Sprintf(fallbackStatus, resp.GetStatusCode())
	}

	body, err := resp.ToBytes()
	if err != nil {
		c.logger.Warn("read explanation body", zap.Error(err))
		return fallbackBadReply
	}
	var out generateResponse
	if err := json.Unmarshal(body, &out); err != nil {
		c.logger.Warn("decode explanation body", zap.Error(err))
		return fallbackBadReply
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return fallbackEmpty
	}
	text := strings.TrimSpace(out.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return fallbackEmpty
	}
	return text
}

// withoutURL drops the request URL that net/http puts in front of transport errors.
func withoutURL(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return uerr.Err
	}
	return err
}

func buildRequest(question, correctAnswer string) generateRequest {
	prompt := fmt.Sprintf("Question: %s\nCorrect answer: %s\nExplain why this answer is correct.", question, correctAnswer)
	return generateRequest{
		SystemInstruction: content{Parts: []part{{Text: systemInstruction}}},
		Contents:          []content{{Role: "user", Parts: []part{{Text: prompt}}}},
	}
}
