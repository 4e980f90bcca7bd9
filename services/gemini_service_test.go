package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGemini(handler http.HandlerFunc) (*GeminiService, *httptest.Server) {
	server := httptest.NewServer(handler)
	svc := &GeminiService{
		apiKey:   "test-key",
		textURL:  server.URL,
		imageURL: server.URL,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
	return svc, server
}

func candidateResponse(parts ...geminiPart) geminiResponse {
	var resp geminiResponse
	resp.Candidates = []struct {
		Content geminiContent `json:"content"`
	}{{Content: geminiContent{Parts: parts}}}
	return resp
}

func TestGenerateJSONReturnsCandidateText(t *testing.T) {
	var gotSchema map[string]any
	svc, server := newTestGemini(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))

		var req geminiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotNil(t, req.GenerationConfig)
		assert.Equal(t, "application/json", req.GenerationConfig.ResponseMimeType)
		gotSchema = req.GenerationConfig.ResponseSchema

		json.NewEncoder(w).Encode(candidateResponse(geminiPart{Text: `{"plan":[]}`}))
	})
	defer server.Close()

	raw, err := svc.GenerateJSON(context.Background(), "make a plan", WeeklyPlanSchema())
	require.NoError(t, err)
	assert.JSONEq(t, `{"plan":[]}`, string(raw))
	assert.Equal(t, "OBJECT", gotSchema["type"])
}

func TestGenerateJSONStripsMarkdownFence(t *testing.T) {
	svc, server := newTestGemini(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(candidateResponse(geminiPart{Text: "```json\n{\"meals\":[]}\n```"}))
	})
	defer server.Close()

	raw, err := svc.GenerateJSON(context.Background(), "prompt", MultipleMealsSchema())
	require.NoError(t, err)
	assert.JSONEq(t, `{"meals":[]}`, string(raw))
}

func TestGenerateJSONMalformedCandidateIsStructureError(t *testing.T) {
	svc, server := newTestGemini(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(candidateResponse(geminiPart{Text: "not json at all"}))
	})
	defer server.Close()

	_, err := svc.GenerateJSON(context.Background(), "prompt", MealSchema())
	var structErr *StructureError
	require.ErrorAs(t, err, &structErr)
}

func TestGenerateJSONServerErrorIsUnavailable(t *testing.T) {
	svc, server := newTestGemini(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	defer server.Close()

	_, err := svc.GenerateJSON(context.Background(), "prompt", MealSchema())
	assert.ErrorIs(t, err, ErrGenerationUnavailable)
}

func TestGenerateJSONMissingKeyIsUnavailable(t *testing.T) {
	svc := NewGeminiService("")
	_, err := svc.GenerateJSON(context.Background(), "prompt", MealSchema())
	assert.ErrorIs(t, err, ErrGenerationUnavailable)
}

func TestGenerateImageReturnsInlineData(t *testing.T) {
	svc, server := newTestGemini(func(w http.ResponseWriter, r *http.Request) {
		var req geminiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"IMAGE"}, req.GenerationConfig.ResponseModalities)

		json.NewEncoder(w).Encode(candidateResponse(geminiPart{
			InlineData: &geminiInlineData{MimeType: "image/png", Data: "aGVsbG8="},
		}))
	})
	defer server.Close()

	data, mime, err := svc.GenerateImage(context.Background(), "a plate of pasta")
	require.NoError(t, err)
	assert.Equal(t, "aGVsbG8=", data)
	assert.Equal(t, "image/png", mime)
}

func TestGenerateImageNoInlineDataIsStructureError(t *testing.T) {
	svc, server := newTestGemini(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(candidateResponse(geminiPart{Text: "sorry"}))
	})
	defer server.Close()

	_, _, err := svc.GenerateImage(context.Background(), "a plate of pasta")
	var structErr *StructureError
	require.ErrorAs(t, err, &structErr)
}

func TestTruncateForLogNeverSplitsRunes(t *testing.T) {
	// a multi-byte rune straddles the 300-byte cut point
	raw := []byte(strings.Repeat("a", 299) + "éléphant")
	out := truncateForLog(raw)
	assert.True(t, utf8.ValidString(out))
	assert.True(t, strings.HasSuffix(out, "..."))

	short := []byte("réponse courte")
	assert.Equal(t, "réponse courte", truncateForLog(short))
}
