// Package ai is a small client for a Gemini-style generateContent endpoint.
package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/medihelp-api/pkg/metrics"
)

const (
	RoleUser  = "user"
	RoleModel = "model"
)

var (
	ErrEmptyResponse = errors.New("provider returned no candidates")
	ErrProviderError = errors.New("provider returned an error status")
)

// Part is one text fragment of a message.
type Part struct {
	Text string `json:"text"`
}

// Message is one conversation turn as stored and sent to the provider.
type Message struct {
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

// Text joins the message parts.
func (m Message) Text() string {
	var b strings.Builder
	for _, p := range m.Parts {
		b.WriteString(p.Text)
	}
	return b.String()
}

// NewMessage builds a single-part message.
func NewMessage(role, text string) Message {
	return Message{Role: role, Parts: []Part{{Text: text}}}
}

type GenerationConfig struct {
	Temperature      float64 `json:"temperature"`
	TopP             float64 `json:"topP"`
	TopK             int     `json:"topK"`
	MaxOutputTokens  int     `json:"maxOutputTokens"`
	ResponseMIMEType string  `json:"responseMimeType,omitempty"`
}

type Config struct {
	BaseURL    string
	APIKey     string
	Model      string
	Generation GenerationConfig
	// MaxRetries bounds retries of connection failures; 0 disables retrying.
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

func DefaultConfig() Config {
	return Config{
		BaseURL: "https://generativelanguage.googleapis.com",
		Model:   "gemini-1.5-flash",
		Generation: GenerationConfig{
			Temperature:     0.9,
			TopP:            1,
			TopK:            1,
			MaxOutputTokens: 2048,
		},
		MaxRetries:      3,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     5 * time.Second,
	}
}

// Generator is what services depend on; Client implements it.
type Generator interface {
	Generate(ctx context.Context, operation string, contents []Message, jsonOutput bool) (string, error)
}

type Client struct {
	http    *resty.Client
	cfg     Config
	logger  *zerolog.Logger
	metrics *metrics.Metrics
}

func NewClient(cfg Config, logger *zerolog.Logger, m *metrics.Metrics) *Client {
	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{
		http:    httpClient,
		cfg:     cfg,
		logger:  logger,
		metrics: m,
	}
}

type generateRequest struct {
	Contents         []Message        `json:"contents"`
	GenerationConfig GenerationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content      Message `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
}

type providerError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Generate sends the conversation and returns the text of the first candidate.
// Connection failures are retried with exponential backoff; an HTTP error
// status from the provider is returned immediately.
func (c *Client) Generate(ctx context.Context, operation string, contents []Message, jsonOutput bool) (string, error) {
	gen := c.cfg.Generation
	if jsonOutput {
		gen.ResponseMIMEType = "application/json"
	}
	body := generateRequest{Contents: contents, GenerationConfig: gen}

	start := time.Now()
	var out generateResponse
	attempt := 0

	op := func() error {
		attempt++
		var perr providerError
		resp, err := c.http.R().
			SetContext(ctx).
			SetQueryParam("key", c.cfg.APIKey).
			SetBody(body).
			SetResult(&out).
			SetError(&perr).
			Post(fmt.Sprintf("/v1beta/models/%s:generateContent", c.cfg.Model))
		if err != nil {
			c.logger.Warn().Err(err).Str("operation", operation).Int("attempt", attempt).Msg("AI provider call failed")
			return err
		}
		if resp.StatusCode() != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("%w: %d %s", ErrProviderError, resp.StatusCode(), perr.Error.Message))
		}
		return nil
	}

	err := backoff.Retry(op, backoff.WithContext(c.backoff(), ctx))
	if c.metrics != nil {
		c.metrics.AILatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
	if err != nil {
		c.observe(operation, "error")
		return "", err
	}

	if len(out.Candidates) == 0 {
		c.observe(operation, "empty")
		return "", ErrEmptyResponse
	}

	c.observe(operation, "success")
	return out.Candidates[0].Content.Text(), nil
}

func (c *Client) backoff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	if c.cfg.InitialInterval > 0 {
		b.InitialInterval = c.cfg.InitialInterval
	}
	if c.cfg.MaxInterval > 0 {
		b.MaxInterval = c.cfg.MaxInterval
	}
	retries := c.cfg.MaxRetries
	if retries < 0 {
		retries = 0
	}
	return backoff.WithMaxRetries(b, uint64(retries))
}

func (c *Client) observe(operation, status string) {
	if c.metrics != nil {
		c.metrics.AIRequests.WithLabelValues(operation, status).Inc()
	}
}
