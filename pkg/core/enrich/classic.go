package enrich

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// ClassicGeminiProvider implements Provider on the older generative-ai-go
// SDK. Kept alongside GeminiProvider for deployments pinned to it.
type ClassicGeminiProvider struct {
	Model  string
	client *genai.Client
}

var _ Provider = (*ClassicGeminiProvider)(nil)

// NewClassicGeminiProvider dials the API once; the client is reused for
// every Generate call.
func NewClassicGeminiProvider(ctx context.Context, model string) (*ClassicGeminiProvider, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if model == "" {
		model = "gemini-1.5-flash"
	}
	return &ClassicGeminiProvider{Model: model, client: client}, nil
}

func (p *ClassicGeminiProvider) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	model := p.client.GenerativeModel(p.Model)
	model.SetTemperature(0.1)

	fullPrompt := userPrompt
	if systemPrompt != "" {
		fullPrompt = fmt.Sprintf("%s\n\nTask: %s", systemPrompt, userPrompt)
	}

	resp, err := model.GenerateContent(ctx, genai.Text(fullPrompt))
	if err != nil {
		return "", fmt.Errorf("gemini generation failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty response from model")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String(), nil
}

// Close releases the underlying API client.
func (p *ClassicGeminiProvider) Close() error {
	return p.client.Close()
}
