package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/sandevgo/evabot/pkg/log"
)

type AppConfig struct {
	RuntimePath string `env:"EVA_RUNTIME_PATH" envDefault:".eva"`

	// Backend selection, resolved once against the provider registry
	ChatProvider    string `env:"CHAT_PROVIDER" envDefault:"gemini"`
	SummaryProvider string `env:"SUMMARY_PROVIDER" envDefault:"openai"`

	// Context management
	ShortTermTTL   time.Duration `env:"SHORT_TERM_TTL" envDefault:"24h"`
	ShortTermLimit int           `env:"SHORT_TERM_LIMIT" envDefault:"10"`
	LongTermLimit  int           `env:"LONG_TERM_LIMIT" envDefault:"5"`
	SummarizeLimit int           `env:"SUMMARIZE_LIMIT" envDefault:"30"`

	// Storage policy
	DeleteBatchSize int           `env:"DELETE_BATCH_SIZE" envDefault:"500"`
	SweepInterval   time.Duration `env:"SWEEP_INTERVAL" envDefault:"1h"`

	// Compression input ceiling, in tokens
	SummaryTokenBudget int `env:"SUMMARY_TOKEN_BUDGET" envDefault:"3000"`

	// Identity used by the CLI transport
	CLIUser string `env:"EVA_CLI_USER" envDefault:"local"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	return c
}

func (c AppConfig) GetRuntimePath() string {
	return c.RuntimePath
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "eva.db")
}
