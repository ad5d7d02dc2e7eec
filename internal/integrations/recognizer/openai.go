package recognizer

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

type OpenAI struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

func NewOpenAI(apiKey, baseURL, model string, httpClient *http.Client) *OpenAI {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &OpenAI{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: httpClient,
	}
}

func (o *OpenAI) Provider() string { return "openai" }
func (o *OpenAI) Model() string    { return o.model }

type openAIRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens,omitempty"`
	Messages  []openAIMessage `json:"messages"`
}

type openAIMessage struct {
	Role    string              `json:"role"`
	Content []openAIContentPart `json:"content"`
}

type openAIContentPart struct {
	Type     string          `json:"type"`
	Text     string          `json:"text,omitempty"`
	ImageURL *openAIImageURL `json:"image_url,omitempty"`
}

type openAIImageURL struct {
	URL string `json:"url"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int64 `json:"prompt_tokens"`
		CompletionTokens int64 `json:"completion_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (o *OpenAI) Recognize(ctx context.Context, img Image, instruction string) (Response, error) {
	dataURL := "data:" + img.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
	reqBody := openAIRequest{
		Model:     o.model,
		MaxTokens: maxOutputTokens,
		Messages: []openAIMessage{
			{
				Role: "user",
				Content: []openAIContentPart{
					{Type: "text", Text: instruction},
					{Type: "image_url", ImageURL: &openAIImageURL{URL: dataURL}},
				},
			},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return Response{}, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return Response{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.httpClient.Do(req)
	if err != nil {
		zap.S().Warnf("recognizer openai error: %v", err)
		return Response{}, upstreamError("openai", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, upstreamError("openai", fmt.Errorf("reading response: %w", err))
	}

	var openAIResp openAIResponse
	if err := json.Unmarshal(respBody, &openAIResp); err != nil {
		return Response{}, upstreamError("openai", fmt.Errorf("parsing response (status %d): %w", resp.StatusCode, err))
	}
	if openAIResp.Error != nil {
		zap.S().Warnf("recognizer openai api error: %s", openAIResp.Error.Message)
		return Response{}, upstreamError("openai", fmt.Errorf("%s", openAIResp.Error.Message))
	}
	if resp.StatusCode >= 300 {
		return Response{}, upstreamError("openai", fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	usage := Usage{}
	if openAIResp.Usage != nil {
		usage.InputTokens = openAIResp.Usage.PromptTokens
		usage.OutputTokens = openAIResp.Usage.CompletionTokens
	}
	if len(openAIResp.Choices) == 0 {
		zap.S().Warnf("recognizer openai response model=%s had no choices", o.model)
		return Response{Usage: usage}, nil
	}

	text := openAIResp.Choices[0].Message.Content
	zap.S().Infof("recognizer openai response model=%s size=%d tokens_in=%d tokens_out=%d", o.model, len(text), usage.InputTokens, usage.OutputTokens)
	return Response{Text: text, Usage: usage}, nil
}
