package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	geminiTextEndpoint  = "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.5-flash:generateContent"
	geminiImageEndpoint = "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.5-flash-image:generateContent"
)

// ErrGenerationUnavailable indicates the generation backend could not be
// reached or refused the request. Callers fall back to deterministic
// behavior where one exists.
var ErrGenerationUnavailable = fmt.Errorf("generation backend unavailable")

// StructureError indicates the backend answered but the payload did not
// match the requested shape. These are never retried blindly; the caller
// surfaces them so the request can be adjusted.
type StructureError struct {
	Reason string
}

func (e *StructureError) Error() string {
	return fmt.Sprintf("malformed generation result: %s", e.Reason)
}

// GeminiService calls the Gemini generateContent API for structured JSON
// and for inline image generation.
type GeminiService struct {
	apiKey   string
	textURL  string
	imageURL string
	client   *http.Client
}

// NewGeminiService creates a client for the given API key.
func NewGeminiService(apiKey string) *GeminiService {
	return &GeminiService{
		apiKey:   apiKey,
		textURL:  geminiTextEndpoint,
		imageURL: geminiImageEndpoint,
		client:   &http.Client{Timeout: 120 * time.Second},
	}
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiGenerationConfig struct {
	ResponseMimeType   string         `json:"responseMimeType,omitempty"`
	ResponseSchema     map[string]any `json:"responseSchema,omitempty"`
	ResponseModalities []string       `json:"responseModalities,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// GenerateJSON sends a prompt with a response schema and returns the raw
// JSON bytes of the first candidate.
func (s *GeminiService) GenerateJSON(ctx context.Context, prompt string, schema map[string]any) ([]byte, error) {
	body := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: &geminiGenerationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   schema,
		},
	}

	resp, err := s.call(ctx, s.textURL, body)
	if err != nil {
		return nil, err
	}

	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			text := stripJSONFence(part.Text)
			if !json.Valid([]byte(text)) {
				return nil, &StructureError{Reason: "candidate text is not valid JSON"}
			}
			return []byte(text), nil
		}
	}
	return nil, &StructureError{Reason: "no text part in candidate"}
}

// GenerateImage sends an image prompt and returns the base64 payload and
// its mime type.
func (s *GeminiService) GenerateImage(ctx context.Context, prompt string) (string, string, error) {
	body := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: &geminiGenerationConfig{
			ResponseModalities: []string{"IMAGE"},
		},
	}

	resp, err := s.call(ctx, s.imageURL, body)
	if err != nil {
		return "", "", err
	}

	for _, part := range resp.Candidates[0].Content.Parts {
		if part.InlineData != nil && part.InlineData.Data != "" {
			mime := part.InlineData.MimeType
			if mime == "" {
				mime = "image/png"
			}
			return part.InlineData.Data, mime, nil
		}
	}
	return "", "", &StructureError{Reason: "no inline image data in candidate"}
}

func (s *GeminiService) call(ctx context.Context, url string, body geminiRequest) (*geminiResponse, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("%w: missing API key", ErrGenerationUnavailable)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", s.apiKey)

	httpResp, err := s.client.Do(req)
	if err != nil {
		log.Printf("❌ Gemini request failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrGenerationUnavailable, err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrGenerationUnavailable, err)
	}

	if httpResp.StatusCode != http.StatusOK {
		log.Printf("❌ Gemini returned status %d: %s", httpResp.StatusCode, truncateForLog(raw))
		return nil, fmt.Errorf("%w: status %d", ErrGenerationUnavailable, httpResp.StatusCode)
	}

	var resp geminiResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &StructureError{Reason: fmt.Sprintf("unparseable response body: %v", err)}
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("%w: %s", ErrGenerationUnavailable, resp.Error.Message)
	}
	if len(resp.Candidates) == 0 {
		return nil, &StructureError{Reason: "empty candidate list"}
	}
	return &resp, nil
}

// stripJSONFence removes a markdown code fence if the model wrapped its
// JSON despite the response mime type.
func stripJSONFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
		trimmed = strings.TrimSpace(trimmed)
	}
	return trimmed
}

func truncateForLog(raw []byte) string {
	const max = 300
	if len(raw) <= max {
		return string(raw)
	}
	// back up to a rune start so the cut never splits a UTF-8 sequence
	cut := max
	for cut > 0 && !utf8.RuneStart(raw[cut]) {
		cut--
	}
	return string(raw[:cut]) + "..."
}
