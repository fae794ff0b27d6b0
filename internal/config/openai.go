package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/evabot/pkg/log"
)

type OpenAIConfig struct {
	APIKey  string `env:"OPENAI_API_KEY,required,notEmpty"`
	Model   string `env:"OPENAI_MODEL,notEmpty" envDefault:"gpt-3.5-turbo"`
	BaseURL string `env:"OPENAI_BASE_URL,notEmpty" envDefault:"https://api.openai.com"`
}

func NewOpenAIConfig(ctx context.Context) *OpenAIConfig {
	c := &OpenAIConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse OpenAI config")
	}
	return c
}
