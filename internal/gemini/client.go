// Package gemini suggests expense categories with the Google Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"google.golang.org/genai"

	"gitlab.com/yelinaung/finance-tracker/internal/logger"
)

// ModelName is the Gemini model used for categorization.
const ModelName = "gemini-2.5-flash"

// ErrUnavailable is returned while the circuit breaker is open.
var ErrUnavailable = errors.New("gemini temporarily unavailable")

// ContentGenerator defines the interface for generating content via Gemini.
// Tests substitute a fake.
type ContentGenerator interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// modelsAdapter wraps *genai.Models to implement ContentGenerator.
type modelsAdapter struct {
	models *genai.Models
}

func (m *modelsAdapter) GenerateContent(
	ctx context.Context,
	model string,
	contents []*genai.Content,
	config *genai.GenerateContentConfig,
) (*genai.GenerateContentResponse, error) {
	resp, err := m.models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("genai.GenerateContent: %w", err)
	}
	return resp, nil
}

// Client wraps the Gemini API client. Every call goes through a circuit
// breaker so a failing API stops being called for a while.
type Client struct {
	client    *genai.Client
	generator ContentGenerator
	breaker   *gobreaker.CircuitBreaker
}

// NewClient creates a new Gemini client with the provided API key.
func NewClient(ctx context.Context, apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Client{
		client:    client,
		generator: &modelsAdapter{models: client.Models},
		breaker:   newBreaker(),
	}, nil
}

// NewClientWithGenerator creates a Client with a custom ContentGenerator.
func NewClientWithGenerator(generator ContentGenerator) *Client {
	return &Client{
		generator: generator,
		breaker:   newBreaker(),
	}
}

// GenerativeClient returns the underlying genai client.
func (c *Client) GenerativeClient() *genai.Client {
	return c.client
}

// BreakerState reports the circuit breaker state, e.g. "closed" or "open".
func (c *Client) BreakerState() string {
	return c.breaker.State().String()
}

func newBreaker() *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "gemini",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Log.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state changed")
		},
	})
}

// generate calls the model through the breaker.
func (c *Client) generate(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.generator.GenerateContent(ctx, ModelName, contents, config)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if err != nil {
		return nil, err
	}
	resp, _ := out.(*genai.GenerateContentResponse)
	return resp, nil
}
