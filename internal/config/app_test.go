package config

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewAppConfig_Defaults(t *testing.T) {
	cfg := NewAppConfig(context.Background())

	assert.Equal(t, "gemini", cfg.ChatProvider)
	assert.Equal(t, "openai", cfg.SummaryProvider)
	assert.Equal(t, 24*time.Hour, cfg.ShortTermTTL)
	assert.Equal(t, 10, cfg.ShortTermLimit)
	assert.Equal(t, 5, cfg.LongTermLimit)
	assert.Equal(t, 30, cfg.SummarizeLimit)
	assert.Equal(t, 500, cfg.DeleteBatchSize)
	assert.Equal(t, time.Hour, cfg.SweepInterval)
	assert.Equal(t, 3000, cfg.SummaryTokenBudget)
}

func TestNewAppConfig_Overrides(t *testing.T) {
	t.Setenv("EVA_RUNTIME_PATH", "/tmp/eva-test")
	t.Setenv("SHORT_TERM_TTL", "48h")
	t.Setenv("DELETE_BATCH_SIZE", "100")

	cfg := NewAppConfig(context.Background())

	assert.Equal(t, "/tmp/eva-test", cfg.GetRuntimePath())
	assert.Equal(t, filepath.Join("/tmp/eva-test", "eva.db"), cfg.GetDatabasePath())
	assert.Equal(t, 48*time.Hour, cfg.ShortTermTTL)
	assert.Equal(t, 100, cfg.DeleteBatchSize)
}
