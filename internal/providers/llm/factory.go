package llm

import (
	"context"
	"fmt"

	"github.com/sandevgo/evabot/internal/config"
	"github.com/sandevgo/evabot/internal/core"
	"github.com/sandevgo/evabot/pkg/log"
)

// Backends are selected by name from a registry resolved once at
// configuration time; each entry builds a fully configured provider.
type ChatConstructor func(ctx context.Context) (core.StreamCompleter, error)
type SummaryConstructor func(ctx context.Context) (core.Completer, error)

func DefaultChatRegistry() map[string]ChatConstructor {
	return map[string]ChatConstructor{
		"gemini": func(ctx context.Context) (core.StreamCompleter, error) {
			cfg := config.NewGeminiConfig(ctx)
			return NewGemini(ctx, cfg.APIKey, cfg.Model)
		},
	}
}

func DefaultSummaryRegistry() map[string]SummaryConstructor {
	return map[string]SummaryConstructor{
		"openai": func(ctx context.Context) (core.Completer, error) {
			cfg := config.NewOpenAIConfig(ctx)
			return NewOpenAI(cfg.BaseURL, cfg.APIKey, cfg.Model), nil
		},
		"gemini": func(ctx context.Context) (core.Completer, error) {
			cfg := config.NewGeminiConfig(ctx)
			return NewGemini(ctx, cfg.APIKey, cfg.Model)
		},
	}
}

func NewChatModel(ctx context.Context, name string, registry map[string]ChatConstructor) (core.StreamCompleter, error) {
	construct, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown chat provider: %s", name)
	}
	log.FromCtx(ctx).Info().Str("provider", name).Msg("starting chat provider")
	return construct(ctx)
}

func NewSummarizer(ctx context.Context, name string, registry map[string]SummaryConstructor) (core.Completer, error) {
	construct, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown summary provider: %s", name)
	}
	log.FromCtx(ctx).Info().Str("provider", name).Msg("starting summary provider")
	return construct(ctx)
}
