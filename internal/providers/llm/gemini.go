package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/sandevgo/evabot/internal/core"
	"google.golang.org/genai"
)

// Gemini is the chat-path model. It implements both Completer and
// StreamCompleter.
type Gemini struct {
	client *genai.Client
	model  string
}

func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) Complete(ctx context.Context, history []core.ChatMessage, system string) (string, error) {
	contents, cfg := toGenAI(history, system)

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	return resp.Text(), nil
}

func (g *Gemini) CompleteStream(ctx context.Context, history []core.ChatMessage, system string, onChunk func(string)) (string, error) {
	contents, cfg := toGenAI(history, system)

	var full strings.Builder
	for resp, err := range g.client.Models.GenerateContentStream(ctx, g.model, contents, cfg) {
		if err != nil {
			return "", fmt.Errorf("gemini stream: %w", err)
		}
		chunk := resp.Text()
		if chunk == "" {
			continue
		}
		full.WriteString(chunk)
		if onChunk != nil {
			onChunk(chunk)
		}
	}
	return full.String(), nil
}

// toGenAI maps provider-neutral messages onto the Gemini API shape:
// system entries fold into the system instruction, assistant becomes
// the model role.
func toGenAI(history []core.ChatMessage, system string) ([]*genai.Content, *genai.GenerateContentConfig) {
	sysParts := make([]string, 0, 2)
	if system != "" {
		sysParts = append(sysParts, system)
	}

	contents := make([]*genai.Content, 0, len(history))
	for _, m := range history {
		switch m.Role {
		case core.RoleSystem:
			sysParts = append(sysParts, m.Content)
		case core.RoleAssistant, core.RoleModel:
			contents = append(contents, &genai.Content{
				Role:  genai.RoleModel,
				Parts: []*genai.Part{{Text: m.Content}},
			})
		default:
			contents = append(contents, &genai.Content{
				Role:  genai.RoleUser,
				Parts: []*genai.Part{{Text: m.Content}},
			})
		}
	}

	cfg := &genai.GenerateContentConfig{}
	if len(sysParts) > 0 {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: strings.Join(sysParts, "\n\n")}},
		}
	}
	return contents, cfg
}
