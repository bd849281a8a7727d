package grouping

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"google.golang.org/genai"

	"github.com/tabvault/tabvault/internal/logger"
)

// DefaultModel is the Gemini model used for grouping.
const DefaultModel = "gemini-2.0-flash"

const prompt = `Organize the following bookmarks into a small number of coherent, clearly labeled groups.
Reply with ONLY a JSON array of the form [{"groupName": string, "bookmarks": [{"name": string, "url": string}]}].
Every bookmark must appear in exactly one group; do not invent, drop, or rewrite urls.

Bookmarks:
%s`

// generator abstracts the model call so the service can be exercised
// without network access.
type generator interface {
	generate(ctx context.Context, prompt string) (string, error)
}

// Service batches items to the model behind a circuit breaker. It
// never returns an error: every failure path degrades to Fallback.
type Service struct {
	gen     generator
	breaker *gobreaker.CircuitBreaker
	logger  logger.Logger
}

// NewService creates a grouping service backed by Gemini.
func NewService(ctx context.Context, apiKey, model string, log logger.Logger) (*Service, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("grouping API key is required")
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return newService(&genaiGenerator{client: client, model: model}, log), nil
}

func newService(gen generator, log logger.Logger) *Service {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "grouping",
		MaxRequests: 2,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.Requests >= 3 && counts.TotalFailures >= counts.Requests
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("grouping breaker state changed",
				logger.String("from", from.String()),
				logger.String("to", to.String()))
		},
	})
	return &Service{gen: gen, breaker: breaker, logger: log}
}

// Group labels items with the model. Below MinItems, with the breaker
// open, on call failure, or on an unparseable reply, it returns
// Fallback(items).
func (s *Service) Group(ctx context.Context, items []Item) []ResultGroup {
	if len(items) < MinItems {
		return Fallback(items)
	}

	payload, err := json.Marshal(items)
	if err != nil {
		return Fallback(items)
	}

	reply, err := s.breaker.Execute(func() (any, error) {
		return s.gen.generate(ctx, fmt.Sprintf(prompt, payload))
	})
	if err != nil {
		s.logger.Warn("grouping call failed, using fallback", logger.Error(err))
		return Fallback(items)
	}

	groups, ok := parseReply(reply.(string), items)
	if !ok {
		s.logger.Warn("grouping reply did not parse, using fallback")
		return Fallback(items)
	}
	return groups
}

type genaiGenerator struct {
	client *genai.Client
	model  string
}

func (g *genaiGenerator) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("genai call failed: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("genai returned an empty reply")
	}
	return text, nil
}
