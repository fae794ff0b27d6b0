package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/sandevgo/evabot/internal/core"
)

const (
	openAITemperature = 0.3
	openAIMaxTokens   = 500
)

// OpenAI is a Completer over the /v1/chat/completions surface, used
// for structured summarization.
type OpenAI struct {
	baseProvider
}

func NewOpenAI(baseURL, apiKey, model string) *OpenAI {
	return &OpenAI{
		baseProvider: newBaseProvider(baseURL, apiKey, model),
	}
}

func (o *OpenAI) Complete(ctx context.Context, history []core.ChatMessage, system string) (string, error) {
	messages := make([]core.ChatMessage, 0, len(history)+1)
	if system != "" {
		messages = append(messages, core.ChatMessage{Role: core.RoleSystem, Content: system})
	}
	for _, m := range history {
		// The Gemini-style model role maps back to assistant here.
		if m.Role == core.RoleModel {
			m.Role = core.RoleAssistant
		}
		messages = append(messages, m)
	}

	payload := map[string]any{
		"model":       o.model,
		"messages":    messages,
		"temperature": openAITemperature,
		"max_tokens":  openAIMaxTokens,
	}
	headers := map[string]string{
		"Authorization": "Bearer " + o.apiKey,
		"User-Agent":    core.EvaUserAgent,
	}

	resp, err := o.doRequest(ctx, http.MethodPost, "/v1/chat/completions", payload, headers)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	return parseOpenAIResponse(resp)
}

func parseOpenAIResponse(resp *http.Response) (string, error) {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("http %d: %s", resp.StatusCode, string(data))
	}

	var result struct {
		Choices []struct {
			Message core.ChatMessage `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("empty choices: %s", string(data))
	}
	return result.Choices[0].Message.Content, nil
}
