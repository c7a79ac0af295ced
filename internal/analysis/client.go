// Package analysis sends health reports to an OpenAI-compatible
// chat-completion server and returns its reply.
//
// Every call is a fresh single-message request. There is no conversation
// state, retry or backoff: a failed call is returned to the caller as
// BACKEND_UNAVAILABLE (couldn't reach the server) or BACKEND_ERROR (the
// server answered with something unusable).
package analysis

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	pcherrors "github.com/rileyhilliard/pch/internal/errors"
	"github.com/rileyhilliard/pch/internal/logger"
	"github.com/sashabaranov/go-openai"
)

// Defaults for a local LM Studio style server.
const (
	DefaultBaseURL     = "http://localhost:1234/v1"
	DefaultModel       = "local-model"
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 200
	DefaultTimeout     = 60 * time.Second

	// placeholderKey is sent when no key is configured; local servers
	// ignore it but the header must be present for some proxies.
	placeholderKey = "not-needed"
)

// Analyzer turns a report into a free-text analysis.
type Analyzer interface {
	Analyze(ctx context.Context, report string) (string, error)
}

// Options configures a Client. Zero values take the defaults above.
type Options struct {
	BaseURL     string
	Model       string
	APIKey      string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
	Logger      logger.Logger

	// HTTPClient overrides the transport. Its Timeout is left alone.
	HTTPClient *http.Client
}

// Client is the chat-completion backed Analyzer.
type Client struct {
	api         *openai.Client
	baseURL     string
	model       string
	temperature float32
	maxTokens   int
	timeout     time.Duration
	log         logger.Logger
}

var _ Analyzer = (*Client)(nil)

// NewClient builds a client from opts.
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	// The API omits a zero temperature, which would hand the choice to the server.
	if opts.Temperature <= 0 {
		opts.Temperature = DefaultTemperature
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultMaxTokens
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	key := opts.APIKey
	if key == "" {
		key = placeholderKey
	}

	cfg := openai.DefaultConfig(key)
	cfg.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	if opts.HTTPClient != nil {
		cfg.HTTPClient = opts.HTTPClient
	} else {
		cfg.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}

	return &Client{
		api:         openai.NewClientWithConfig(cfg),
		baseURL:     cfg.BaseURL,
		model:       opts.Model,
		temperature: float32(opts.Temperature),
		maxTokens:   opts.MaxTokens,
		timeout:     opts.Timeout,
		log:         logger.OrDefault(opts.Logger),
	}
}

// BaseURL returns the server the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Model returns the model identifier sent with requests.
func (c *Client) Model() string {
	return c.model
}

// Analyze sends report to the backend and returns the first choice's text.
func (c *Client) Analyze(ctx context.Context, report string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: BuildPrompt(report)},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		c.log.Debug("chat completion failed after %s: %v", time.Since(start).Round(time.Millisecond), err)
		return "", c.classify(err)
	}
	c.log.Debug("chat completion took %s (%d tokens)", time.Since(start).Round(time.Millisecond), resp.Usage.TotalTokens)

	if len(resp.Choices) == 0 {
		return "", pcherrors.New(pcherrors.ErrBackend,
			"The model server returned no choices",
			"Check that a model is loaded on "+c.baseURL)
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", pcherrors.New(pcherrors.ErrBackend,
			"The model server returned an empty reply",
			"Check that a model is loaded on "+c.baseURL+", or raise backend.max_tokens")
	}
	return content, nil
}

// Ping lists the server's models to confirm it is reachable.
// It returns the model IDs the server reports.
func (c *Client) Ping(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	list, err := c.api.ListModels(ctx)
	if err != nil {
		return nil, c.classify(err)
	}

	ids := make([]string, 0, len(list.Models))
	for _, m := range list.Models {
		ids = append(ids, m.ID)
	}
	return ids, nil
}

// classify maps go-openai and transport errors onto the backend codes.
func (c *Client) classify(err error) error {
	var apiErr *openai.APIError
	var reqErr *openai.RequestError

	switch {
	case errors.As(err, &apiErr):
		return pcherrors.WrapWithCode(err, pcherrors.ErrBackend,
			fmt.Sprintf("The model server rejected the request (HTTP %d)", apiErr.HTTPStatusCode),
			"Check backend.model and that a model is loaded on "+c.baseURL)

	case errors.As(err, &reqErr):
		return pcherrors.WrapWithCode(err, pcherrors.ErrBackend,
			fmt.Sprintf("The model server returned an error (HTTP %d)", reqErr.HTTPStatusCode),
			"Check the server logs at "+c.baseURL)

	case isUnreachable(err):
		return pcherrors.WrapWithCode(err, pcherrors.ErrBackendUnavailable,
			"Can't reach the model server at "+c.baseURL,
			"Make sure LM Studio (or your OpenAI-compatible server) is running and backend.url is correct")

	default:
		return pcherrors.WrapWithCode(err, pcherrors.ErrBackend,
			"The model server sent a response pch couldn't read",
			"Check that "+c.baseURL+" speaks the OpenAI chat-completion API")
	}
}

// isUnreachable reports transport failures and timeouts.
func isUnreachable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
