package recognizer

import (
	"context"
	"encoding/base64"
	"net/http"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"
)

type Anthropic struct {
	client anthropic.Client
	model  string
}

func NewAnthropic(apiKey, model string, httpClient *http.Client) *Anthropic {
	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(httpClient),
	)
	return &Anthropic{client: client, model: model}
}

func (a *Anthropic) Provider() string { return "anthropic" }
func (a *Anthropic) Model() string    { return a.model }

func (a *Anthropic) Recognize(ctx context.Context, img Image, instruction string) (Response, error) {
	encoded := base64.StdEncoding.EncodeToString(img.Data)

	message, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: maxOutputTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewImageBlockBase64(img.MIMEType, encoded),
				anthropic.NewTextBlock(instruction),
			),
		},
	})
	if err != nil {
		zap.S().Warnf("recognizer anthropic error: %v", err)
		return Response{}, upstreamError("anthropic", err)
	}
	usage := Usage{
		InputTokens:  message.Usage.InputTokens,
		OutputTokens: message.Usage.OutputTokens,
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			zap.S().Infof("recognizer anthropic response model=%s size=%d tokens_in=%d tokens_out=%d", a.model, len(block.Text), usage.InputTokens, usage.OutputTokens)
			return Response{Text: block.Text, Usage: usage}, nil
		}
	}
	zap.S().Warnf("recognizer anthropic response model=%s had no text content", a.model)
	return Response{Usage: usage}, nil
}
