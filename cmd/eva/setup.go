package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sandevgo/evabot/internal/config"
	"github.com/sandevgo/evabot/internal/providers/llm"
	"github.com/sandevgo/evabot/internal/service/chat"
	"github.com/sandevgo/evabot/internal/service/memory"
	"github.com/sandevgo/evabot/internal/storage/sqlite"
	"github.com/sandevgo/evabot/internal/transport/cli"
	"github.com/sandevgo/evabot/pkg/log"
	"github.com/sandevgo/evabot/pkg/srv"
)

// App holds the explicitly constructed core, shared by the transports
// and the maintenance commands. Everything is built once at startup
// and injected; nothing initializes lazily on first use.
type App struct {
	Cfg        *config.AppConfig
	Store      *memory.Store
	Builder    *memory.Builder
	Compressor *memory.Compressor
	Cache      *chat.SessionCache
	Chat       *chat.Chat
}

func NewApp(ctx context.Context) (*App, []srv.Service) {
	logger := log.FromCtx(ctx)
	services := make([]srv.Service, 0)

	// init env
	if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	// 1. Configuration
	appCfg := config.NewAppConfig(ctx)

	// 2. Storage
	db, err := sqlite.NewDB(ctx, appCfg.GetDatabasePath())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}
	services = append(services, srv.NewCleanup(db.Close))

	messagesRepo := sqlite.NewMessagesRepo(db, appCfg.DeleteBatchSize)
	factsRepo := sqlite.NewFactsRepo(db)

	// 3. AI providers, resolved once against the registries
	chatModel, err := llm.NewChatModel(ctx, appCfg.ChatProvider, llm.DefaultChatRegistry())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize chat provider")
	}
	summarizer, err := llm.NewSummarizer(ctx, appCfg.SummaryProvider, llm.DefaultSummaryRegistry())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize summary provider")
	}

	// 4. Memory core
	store := memory.NewStore(messagesRepo, factsRepo, appCfg.ShortTermTTL)
	builder := memory.NewBuilder(store)

	compressor := memory.NewCompressor(store, builder, summarizer)
	compressor.FetchLimit = appCfg.SummarizeLimit
	compressor.TokenBudget = appCfg.SummaryTokenBudget

	// 5. Expiry sweeper
	sweeper := memory.NewSweeper(messagesRepo)
	sweeper.Interval = appCfg.SweepInterval
	services = append(services, sweeper)

	// 6. Chat service
	cache := chat.NewSessionCache()
	chatSvc := chat.NewChat(chat.Config{
		ShortTermLimit: appCfg.ShortTermLimit,
		LongTermLimit:  appCfg.LongTermLimit,
	}, cache, store, builder, chatModel)

	app := &App{
		Cfg:        appCfg,
		Store:      store,
		Builder:    builder,
		Compressor: compressor,
		Cache:      cache,
		Chat:       chatSvc,
	}

	return app, services
}

// NewTransport builds the interactive chat surface; only the start
// command wants one, the maintenance commands run headless.
func NewTransport(ctx context.Context, app *App) srv.Service {
	repl, err := cli.NewReadLine(app.Cfg, app.Chat, app.Store, app.Compressor)
	if err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to initialize CLI transport")
	}
	return repl
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
