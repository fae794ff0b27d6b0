package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/sandevgo/evabot/internal/config"
	"github.com/sandevgo/evabot/internal/core"
	"github.com/sandevgo/evabot/internal/service/chat"
	"github.com/sandevgo/evabot/internal/service/memory"
	"github.com/sandevgo/evabot/pkg/log"
)

const defaultConversationID = "cli-local"

type ReadLine struct {
	cfg        *config.AppConfig
	chat       *chat.Chat
	store      *memory.Store
	compressor *memory.Compressor
	rl         *readline.Instance
}

func NewReadLine(cfg *config.AppConfig, chatSvc *chat.Chat, store *memory.Store, compressor *memory.Compressor) (*ReadLine, error) {
	// Ensure runtime directory exists
	if err := os.MkdirAll(cfg.RuntimePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create runtime directory: %w", err)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          ">>> ",
		HistoryFile:     filepath.Join(cfg.RuntimePath, "input_history"),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, err
	}

	return &ReadLine{
		cfg:        cfg,
		chat:       chatSvc,
		store:      store,
		compressor: compressor,
		rl:         rl,
	}, nil
}

func (r *ReadLine) Start(ctx context.Context) error {
	logger := log.FromCtx(ctx)
	logger.Info().Msg("Eva chat started. Type 'exit' to quit, '/help' for commands.")

	for {
		// Check context before blocking read
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := r.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				if len(line) == 0 {
					return nil // Exit on Ctrl+C
				}
				continue
			} else if err == io.EOF {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "exit" {
			return nil
		}
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			r.handleCommand(ctx, line)
			continue
		}

		_, err = r.chat.SendStream(ctx, r.cfg.CLIUser, defaultConversationID, line, func(chunk string) {
			fmt.Fprint(r.rl.Stdout(), chunk)
		})
		fmt.Fprintln(r.rl.Stdout())
		if err != nil {
			logger.Error().Err(err).Msg("chat turn failed")
			fmt.Fprintf(r.rl.Stdout(), "Error: %v\n", err)
		}
	}
}

func (r *ReadLine) handleCommand(ctx context.Context, line string) {
	out := r.rl.Stdout()
	cmd, arg, _ := strings.Cut(line, " ")

	switch cmd {
	case "/help":
		fmt.Fprintln(out, "/clear     reset the current conversation")
		fmt.Fprintln(out, "/compress  distill recent conversation into long-term memory")
		fmt.Fprintln(out, "/facts     list long-term memory, optionally by category")
		fmt.Fprintln(out, "/history   show the durable conversation log")

	case "/clear":
		count, err := r.chat.ClearConversation(ctx, r.cfg.CLIUser, defaultConversationID)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}
		fmt.Fprintf(out, "Conversation reset, %d messages cleared.\n", count)

	case "/compress":
		result, err := r.compressor.CompressToLongTerm(ctx, r.cfg.CLIUser)
		if err != nil {
			if errors.Is(err, core.ErrNothingToSummarize) {
				fmt.Fprintln(out, "Nothing to summarize yet.")
				return
			}
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}
		fmt.Fprintf(out, "Saved %d facts. Summary: %s\n", result.FactsSaved, result.Summary)

	case "/facts":
		facts, err := r.store.ListFacts(ctx, r.cfg.CLIUser, arg, 20)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}
		if len(facts) == 0 {
			fmt.Fprintln(out, "No long-term memory yet.")
			return
		}
		for _, f := range facts {
			fmt.Fprintf(out, "[%s/%d] %s\n", f.Category, f.Importance, f.Content)
		}

	case "/history":
		msgs, err := r.chat.History(ctx, r.cfg.CLIUser, defaultConversationID, 20)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}
		for _, m := range msgs {
			fmt.Fprintf(out, "%s: %s\n", m.Role, m.Content)
		}

	default:
		fmt.Fprintf(out, "Unknown command %s, try /help\n", cmd)
	}
}

func (r *ReadLine) Shutdown(ctx context.Context) error {
	if r.rl != nil {
		return r.rl.Close()
	}
	return nil
}
