package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"

	genai "github.com/google/generative-ai-go/genai"

	"rag-chatbot-backend/internal/config"
	"rag-chatbot-backend/internal/logger"
	"rag-chatbot-backend/internal/telemetry"
)

// ErrChatUnavailable is returned while the circuit breaker is open.
var ErrChatUnavailable = errors.New("chat model temporarily unavailable")

// GeminiClient wraps the generative model used for answer synthesis.
// Safe for concurrent use.
type GeminiClient struct {
	client      *genai.Client
	model       string
	timeout     time.Duration
	breaker     *gobreaker.CircuitBreaker
	rateLimiter *rate.Limiter
	metrics     *telemetry.Metrics
}

func NewGeminiClient(ctx context.Context, cfg *config.Config, metrics *telemetry.Metrics) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, err
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "GeminiAPI",
		MaxRequests: 5,
		Interval:    10 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state change", "name", name, "from", from.String(), "to", to.String())
		},
	})

	return &GeminiClient{
		client:      client,
		model:       cfg.ModelName,
		timeout:     time.Duration(cfg.RemoteTimeoutSecs) * time.Second,
		breaker:     breaker,
		rateLimiter: rate.NewLimiter(rate.Limit(2), 4),
		metrics:     metrics,
	}, nil
}

// Answer generates a response to question conditioned on the retrieved
// snippets. Returns the reply text and the token count reported by the API.
func (gc *GeminiClient) Answer(ctx context.Context, question string, snippets []string) (string, int, error) {
	tracer := otel.Tracer("gemini-client")
	ctx, span := tracer.Start(ctx, "gemini.answer")
	defer span.End()

	span.SetAttributes(
		attribute.Int("gemini.context_snippets", len(snippets)),
		attribute.String("gemini.model", gc.model),
	)

	if err := gc.rateLimiter.Wait(ctx); err != nil {
		span.SetAttributes(attribute.Bool("gemini.rate_limited", true))
		return "", 0, err
	}

	ctx, cancel := context.WithTimeout(ctx, gc.timeout)
	defer cancel()

	result, err := gc.breaker.Execute(func() (interface{}, error) {
		model := gc.client.GenerativeModel(gc.model)
		model.SetTemperature(0.7)
		model.SetMaxOutputTokens(2048)

		resp, err := model.GenerateContent(ctx, genai.Text(buildPromptWithContext(question, snippets)))
		if err != nil {
			span.SetAttributes(attribute.String("gemini.error_message", err.Error()))
			return nil, err
		}
		return resp, nil
	})
	if err != nil {
		if err == gobreaker.ErrOpenState {
			span.SetAttributes(attribute.Bool("gemini.circuit_breaker_open", true))
			return "", 0, ErrChatUnavailable
		}
		span.SetAttributes(attribute.Bool("gemini.error", true))
		return "", 0, err
	}

	resp := result.(*genai.GenerateContentResponse)
	reply := collectText(resp)
	if reply == "" {
		return "", 0, fmt.Errorf("no content generated")
	}

	tokens := extractTokenUsage(resp)
	if gc.metrics != nil {
		gc.metrics.TokensUsed.Add(ctx, int64(tokens))
	}
	span.SetAttributes(attribute.Int("gemini.tokens", tokens))

	return reply, tokens, nil
}

func (gc *GeminiClient) Close() error {
	return gc.client.Close()
}

func buildPromptWithContext(question string, snippets []string) string {
	if len(snippets) == 0 {
		return question
	}

	var b strings.Builder
	b.WriteString("Answer the question using the document excerpts below. ")
	b.WriteString("If the excerpts do not contain the answer, say so.\n\n")
	for i, s := range snippets {
		fmt.Fprintf(&b, "Excerpt %d:\n%s\n\n", i+1, s)
	}
	b.WriteString("Question: ")
	b.WriteString(question)
	return b.String()
}

func collectText(resp *genai.GenerateContentResponse) string {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return b.String()
}

func extractTokenUsage(resp *genai.GenerateContentResponse) int {
	if resp.UsageMetadata == nil {
		return 0
	}
	return int(resp.UsageMetadata.TotalTokenCount)
}
