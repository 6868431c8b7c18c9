// Package openaillm is the ModelBackend adapter for the OpenAI Responses
// API, using strict structured outputs so the model returns moment records
// matching the wire schema.
package openaillm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"

	"github.com/sundaymedia/catholiccuts/internal/domain/moments"
	"github.com/sundaymedia/catholiccuts/internal/types"
)

const (
	defaultModel    = "gpt-4o-mini"
	attemptTimeout  = 90 * time.Second
	maxOutputTokens = 4_000
)

type Adapter struct {
	client *openai.Client
	model  string
}

func New(apiKey, model string) *Adapter {
	if model == "" {
		model = defaultModel
	}
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &Adapter{client: &client, model: model}
}

var momentsSchema = generateSchema[moments.Response]()

const instructions = "You find short, shareable moments in long-form Catholic spoken-word transcripts. " +
	"Given one transcript chunk, return the strongest candidate moments as JSON matching the schema. " +
	"Rules: quote must be copied verbatim from the chunk, character for character. " +
	"start_sec and end_sec come from the [MM:SS.xx–MM:SS.xx] markers surrounding the quote. " +
	"Each moment stands alone: a complete thought with a clear hook, 15 to 60 seconds of speech. " +
	"Write one short caption per persona in that persona's voice. " +
	"Return fewer moments rather than weak ones; an empty list is a valid answer."

func (a *Adapter) ExtractMoments(ctx context.Context, chunk types.Chunk, maxMoments int) ([]moments.Record, error) {
	if maxMoments <= 0 {
		return nil, nil
	}

	payload := fmt.Sprintf("Return up to %d moments.\n\nTranscript chunk %d:\n%s", maxMoments, chunk.Index, chunk.Text)

	format := responses.ResponseFormatTextConfigUnionParam{
		OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
			Name:        "ViralMoments",
			Schema:      momentsSchema,
			Strict:      openai.Bool(true),
			Description: openai.String("Candidate viral moments for one transcript chunk"),
			Type:        "json_schema",
		},
	}

	params := responses.ResponseNewParams{
		Model:           a.model,
		MaxOutputTokens: openai.Int(maxOutputTokens),
		Instructions:    openai.String(instructions),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage(payload, responses.EasyInputMessageRoleUser),
			},
		},
		Text: responses.ResponseTextConfigParam{Format: format},
	}

	resp, err := callWithRetry(ctx, func(ctx context.Context) (*responses.Response, error) {
		return a.client.Responses.New(ctx, params)
	}, defaultRetryPolicy)
	if err != nil {
		return nil, fmt.Errorf("openai extract chunk %d: %w", chunk.Index, err)
	}

	var out moments.Response
	if err := DecodeModelJSON(resp.OutputText(), &out); err != nil {
		return nil, fmt.Errorf("openai extract chunk %d: %w", chunk.Index, err)
	}
	if len(out.Moments) > maxMoments {
		out.Moments = out.Moments[:maxMoments]
	}
	return out.Moments, nil
}

// retryPolicy holds the fixed backoff schedules. attemptTimeout bounds a
// single request; the waits between attempts are not charged against it, so
// a slow rate-limit schedule never starves the final attempt.
type retryPolicy struct {
	attemptTimeout   time.Duration
	rateLimitWaits   []time.Duration
	serverErrorWaits []time.Duration
}

var defaultRetryPolicy = retryPolicy{
	attemptTimeout:   attemptTimeout,
	rateLimitWaits:   []time.Duration{65 * time.Second, 100 * time.Second, 135 * time.Second},
	serverErrorWaits: []time.Duration{5 * time.Second, 30 * time.Second, 60 * time.Second},
}

// callWithRetry retries rate-limit and server errors with fixed backoff
// schedules before giving up. Each attempt runs under its own timeout
// derived from ctx.
func callWithRetry(ctx context.Context, call func(context.Context) (*responses.Response, error), pol retryPolicy) (*responses.Response, error) {
	maxRetries := len(pol.rateLimitWaits)

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, pol.attemptTimeout)
		resp, err := call(attemptCtx)
		cancel()
		if err == nil {
			return resp, nil
		}
		lastErr = err

		var wait time.Duration
		switch {
		case isRateLimitError(err):
			wait = pol.rateLimitWaits[attempt]
		case isServerError(err):
			wait = pol.serverErrorWaits[attempt]
		default:
			return nil, err
		}
		if attempt == maxRetries-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
	return nil, fmt.Errorf("gave up after %d attempts: %w", maxRetries, lastErr)
}

func isRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "429") ||
		strings.Contains(s, "rate limit") ||
		strings.Contains(s, "too many requests")
}

func isServerError(err error) bool {
	if err == nil {
		return false
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "500") ||
		strings.Contains(s, "internal server error") ||
		strings.Contains(s, "server_error")
}

// DecodeModelJSON unmarshals model output, tolerating stray prose around the
// JSON object.
func DecodeModelJSON(outputText string, v any) error {
	s := strings.TrimSpace(outputText)
	if s == "" {
		return fmt.Errorf("empty model output")
	}

	if err := json.Unmarshal([]byte(s), v); err == nil {
		return nil
	}

	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start == -1 || end <= start {
		return fmt.Errorf("no JSON object found in model output (len=%d)", len(s))
	}
	if err := json.Unmarshal([]byte(s[start:end+1]), v); err != nil {
		return fmt.Errorf("unmarshal extracted JSON: %w", err)
	}
	return nil
}

// generateSchema reflects a strict OpenAI-compatible JSON schema for T.
func generateSchema[T any]() map[string]any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	var v T
	schema := reflector.Reflect(v)
	b, err := schema.MarshalJSON()
	if err != nil {
		panic(err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		panic(err)
	}
	ensureStrictCompliance(m)
	return m
}

// ensureStrictCompliance forces additionalProperties=false and full required
// lists on every object node, which OpenAI strict mode demands.
func ensureStrictCompliance(schema map[string]any) {
	if t, ok := schema["type"].(string); ok && t == "object" {
		schema["additionalProperties"] = false
		if props, ok := schema["properties"].(map[string]any); ok {
			required := make([]string, 0, len(props))
			for name := range props {
				required = append(required, name)
			}
			if len(required) > 0 {
				schema["required"] = required
			}
		}
	}
	if props, ok := schema["properties"].(map[string]any); ok {
		for _, p := range props {
			if pm, ok := p.(map[string]any); ok {
				ensureStrictCompliance(pm)
			}
		}
	}
	if items, ok := schema["items"].(map[string]any); ok {
		ensureStrictCompliance(items)
	}
}
