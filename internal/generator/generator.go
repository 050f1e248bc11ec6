// Package generator produces daily quests by calling an external
// text-generation provider. The provider is treated as an untrusted black
// box: exactly one attempt per call, a bounded timeout, and strict shape
// validation of whatever comes back. Failures are surfaced as errors for the
// caller to recover from; nothing here retries or panics.
package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/dailyquest-app/dailyquest-backend/internal/models"
)

var (
	// ErrProvider indicates the provider call itself failed (network, auth,
	// quota, timeout).
	ErrProvider = errors.New("quest provider unavailable")
	// ErrMalformedResponse indicates the provider replied but its content
	// does not match the expected quest schema.
	ErrMalformedResponse = errors.New("malformed quest response")
)

const systemPrompt = "You are a helpful life coach."

// Config holds the provider settings, resolved once at startup.
type Config struct {
	APIKey  string
	Model   string
	Timeout time.Duration
	BaseURL string // override for tests; empty means the provider default
}

// Generator invokes the text-generation provider. Construct one at process
// start and share it; it is safe for concurrent use.
type Generator struct {
	client  openai.Client
	model   shared.ChatModel
	timeout time.Duration
}

func New(cfg Config) *Generator {
	// One attempt per generation call: the SDK's default retry policy is
	// disabled, and failures fall through to the caller's fallback state.
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	model := cfg.Model
	if model == "" {
		model = string(openai.ChatModelGPT4oMini)
	}

	return &Generator{
		client:  openai.NewClient(opts...),
		model:   shared.ChatModel(model),
		timeout: timeout,
	}
}

// Generate asks the provider for daily quests scoped to the category and
// level. The prompt requests exactly 3 quests, but that is guidance: any
// non-empty list of well-formed items is accepted, and an explicitly empty
// "quests" list is an empty success, not an error.
func (g *Generator) Generate(ctx context.Context, category, level string) ([]models.QuestDraft, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	completion, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: g.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(buildPrompt(category, level)),
		},
		// Ask the provider to constrain its output to a JSON object. This is
		// a capability flag, not a guarantee; the response is still validated.
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("%w: provider returned no choices", ErrMalformedResponse)
	}

	return parseQuests(completion.Choices[0].Message.Content)
}

func buildPrompt(category, level string) string {
	return fmt.Sprintf(`Create exactly 3 daily challenges for a user interested in %s at a %s level.
The challenges should be actionable, small, and encouraging.
Return ONLY a JSON object with a key "quests" containing a list of objects with "title" and "description".
Example format: {"quests": [{"title": "Ex", "description": "Ex"}]}`, category, level)
}

// parseQuests validates the raw provider output against the expected schema:
// a JSON object whose "quests" key holds a list of objects with non-empty
// "title" and "description" strings.
func parseQuests(raw string) ([]models.QuestDraft, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &top); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if top == nil {
		return nil, fmt.Errorf("%w: top-level value is not an object", ErrMalformedResponse)
	}

	questsRaw, ok := top["quests"]
	if !ok {
		return nil, fmt.Errorf(`%w: missing "quests" key`, ErrMalformedResponse)
	}

	var items []models.QuestDraft
	if err := json.Unmarshal(questsRaw, &items); err != nil {
		return nil, fmt.Errorf(`%w: "quests" is not a list of quests: %v`, ErrMalformedResponse, err)
	}

	quests := make([]models.QuestDraft, 0, len(items))
	for i, q := range items {
		q.Title = strings.TrimSpace(q.Title)
		q.Description = strings.TrimSpace(q.Description)
		if q.Title == "" || q.Description == "" {
			return nil, fmt.Errorf("%w: quest %d lacks a title or description", ErrMalformedResponse, i)
		}
		quests = append(quests, q)
	}
	return quests, nil
}
