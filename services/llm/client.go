package llm

import (
	"context"
	"log"
	"time"

	genai "google.golang.org/genai"
)

// Generator is the boundary to the external text-generation service. It is
// treated as unreliable: the reply may be empty, may time out, and may wrap
// any JSON it contains in prose.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeminiClient is a thin wrapper around the official genai client. Every
// call gets a hard timeout; callers map failures to their own error space.
type GeminiClient struct {
	cli     *genai.Client
	model   string
	timeout time.Duration
}

// NewGeminiClient builds a client for the given model. The API key is read
// by the SDK from GEMINI_API_KEY / GOOGLE_API_KEY.
func NewGeminiClient(ctx context.Context, model string, timeout time.Duration) (*GeminiClient, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, err
	}
	return &GeminiClient{cli: cli, model: model, timeout: timeout}, nil
}

func (g *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.cli.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}}, nil)
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		log.Printf("[LLM] empty reply from %s", g.model)
		return "", nil
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}
