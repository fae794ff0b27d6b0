package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/evabot/pkg/log"
)

type GeminiConfig struct {
	APIKey string `env:"GOOGLE_API_KEY,required,notEmpty"`
	Model  string `env:"GEMINI_MODEL,notEmpty" envDefault:"gemini-2.0-flash"`
}

func NewGeminiConfig(ctx context.Context) *GeminiConfig {
	c := &GeminiConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Gemini config")
	}
	return c
}
