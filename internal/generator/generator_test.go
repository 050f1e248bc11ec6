package generator

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newFakeProvider starts a fake chat-completions endpoint that replies with
// the given assistant content, and returns a Generator pointed at it.
func newFakeProvider(t *testing.T, handler http.HandlerFunc) *Generator {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return New(Config{
		APIKey:  "test-key",
		Model:   "gpt-4o-mini",
		Timeout: 5 * time.Second,
		BaseURL: srv.URL,
	})
}

func respondWithContent(t *testing.T, content string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		body := map[string]interface{}{
			"id":     "chatcmpl-test",
			"object": "chat.completion",
			"model":  "gpt-4o-mini",
			"choices": []map[string]interface{}{
				{
					"index":         0,
					"finish_reason": "stop",
					"message": map[string]interface{}{
						"role":    "assistant",
						"content": content,
					},
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(body); err != nil {
			t.Errorf("encode fake response: %v", err)
		}
	}
}

func TestGenerate_SingleQuest(t *testing.T) {
	t.Parallel()

	g := newFakeProvider(t, respondWithContent(t,
		`{"quests": [{"title":"Read 10 pages","description":"Pick up any book"}]}`))

	quests, err := g.Generate(context.Background(), "reading", "beginner")
	require.NoError(t, err)
	require.Len(t, quests, 1)
	assert.Equal(t, "Read 10 pages", quests[0].Title)
	assert.Equal(t, "Pick up any book", quests[0].Description)
}

func TestGenerate_EmptyQuestListIsNotAnError(t *testing.T) {
	t.Parallel()

	g := newFakeProvider(t, respondWithContent(t, `{"quests": []}`))

	quests, err := g.Generate(context.Background(), "fitness", "advanced")
	require.NoError(t, err)
	assert.Empty(t, quests)
}

func TestGenerate_AcceptsMoreThanThreeQuests(t *testing.T) {
	t.Parallel()

	g := newFakeProvider(t, respondWithContent(t, `{"quests": [
		{"title":"A","description":"a"},
		{"title":"B","description":"b"},
		{"title":"C","description":"c"},
		{"title":"D","description":"d"}
	]}`))

	quests, err := g.Generate(context.Background(), "cooking", "intermediate")
	require.NoError(t, err)
	assert.Len(t, quests, 4)
}

func TestGenerate_MissingQuestsKeyIsMalformed(t *testing.T) {
	t.Parallel()

	g := newFakeProvider(t, respondWithContent(t, `{"challenges": []}`))

	_, err := g.Generate(context.Background(), "reading", "beginner")
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestGenerate_NonObjectTopLevelIsMalformed(t *testing.T) {
	t.Parallel()

	for _, content := range []string{`[1, 2, 3]`, `"quests"`, `null`, `not json at all`} {
		g := newFakeProvider(t, respondWithContent(t, content))

		_, err := g.Generate(context.Background(), "reading", "beginner")
		assert.ErrorIs(t, err, ErrMalformedResponse, "content: %s", content)
	}
}

func TestGenerate_BlankTitleOrDescriptionIsMalformed(t *testing.T) {
	t.Parallel()

	g := newFakeProvider(t, respondWithContent(t,
		`{"quests": [{"title":"  ","description":"do something"}]}`))

	_, err := g.Generate(context.Background(), "reading", "beginner")
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestGenerate_ProviderFailureIsProviderError(t *testing.T) {
	t.Parallel()

	g := newFakeProvider(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"quota exceeded"}}`, http.StatusTooManyRequests)
	})

	_, err := g.Generate(context.Background(), "reading", "beginner")
	assert.ErrorIs(t, err, ErrProvider)
}

func TestGenerate_MakesExactlyOneAttempt(t *testing.T) {
	t.Parallel()

	calls := 0
	g := newFakeProvider(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, `{"error":{"message":"boom"}}`, http.StatusInternalServerError)
	})

	_, err := g.Generate(context.Background(), "reading", "beginner")
	assert.ErrorIs(t, err, ErrProvider)
	assert.Equal(t, 1, calls)
}

func TestGenerate_PromptCarriesCategoryAndLevel(t *testing.T) {
	t.Parallel()

	var requestBody string
	g := newFakeProvider(t, func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		requestBody = string(data)
		respondWithContent(t, `{"quests":[{"title":"T","description":"D"}]}`)(w, r)
	})

	_, err := g.Generate(context.Background(), "gardening", "advanced")
	require.NoError(t, err)
	assert.True(t, strings.Contains(requestBody, "gardening"))
	assert.True(t, strings.Contains(requestBody, "advanced"))
	assert.True(t, strings.Contains(requestBody, "json_object"))
}
