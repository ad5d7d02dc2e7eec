package recognizer

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"shiftscan/internal/config"
	"shiftscan/internal/httpx"
)

// ErrUpstreamFailure wraps every error returned by a recognizer call.
var ErrUpstreamFailure = errors.New("recognizer upstream failure")

const (
	defaultGeminiModel    = "gemini-2.5-flash"
	defaultAnthropicModel = "claude-sonnet-4-5-20250929"
	defaultOpenAIModel    = "gpt-4o-mini"
	maxOutputTokens       = 4096
)

type Image struct {
	Data     []byte
	MIMEType string
}

type Usage struct {
	InputTokens  int64
	OutputTokens int64
}

func (u Usage) TotalTokens() int64 {
	return u.InputTokens + u.OutputTokens
}

type Response struct {
	Text  string
	Usage Usage
}

// Recognizer turns a schedule image and an instruction into free-form text.
type Recognizer interface {
	Recognize(ctx context.Context, img Image, instruction string) (Response, error)
	Provider() string
	Model() string
}

// New returns the recognizer selected by cfg.RecognizerProvider.
func New(ctx context.Context, cfg config.Config) (Recognizer, error) {
	httpClient := httpx.ExternalHTTPClient()
	switch cfg.RecognizerProvider {
	case "anthropic":
		return NewAnthropic(cfg.AnthropicAPIKey, modelOrDefault(cfg.RecognizerModel, defaultAnthropicModel), httpClient), nil
	case "openai":
		return NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, modelOrDefault(cfg.RecognizerModel, defaultOpenAIModel), httpClient), nil
	case "gemini", "":
		return NewGemini(ctx, cfg.GeminiAPIKey, modelOrDefault(cfg.RecognizerModel, defaultGeminiModel), httpClient)
	default:
		return nil, fmt.Errorf("unknown recognizer provider %q", cfg.RecognizerProvider)
	}
}

func modelOrDefault(model, fallback string) string {
	if model == "" {
		return fallback
	}
	return model
}

func upstreamError(provider string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrUpstreamFailure, provider, err)
}

var supportedImageTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/webp": true,
	"image/gif":  true,
}

// DetectImageType sniffs the image format and rejects anything the
// recognizers cannot read.
func DetectImageType(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("image is empty")
	}
	mimeType := http.DetectContentType(data)
	if !supportedImageTypes[mimeType] {
		return "", fmt.Errorf("unsupported image type %s (png, jpeg, webp or gif expected)", mimeType)
	}
	return mimeType, nil
}
