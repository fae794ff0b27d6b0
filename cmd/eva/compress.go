package main

import (
	"errors"
	"fmt"

	"github.com/sandevgo/evabot/internal/core"
	"github.com/sandevgo/evabot/pkg/log"
	"github.com/sandevgo/evabot/pkg/retry"
	"github.com/spf13/cobra"
)

var compressUser string

var compressCmd = &cobra.Command{
	Use:   "compress",
	Short: "Compress a user's short-term context into long-term memory",
	Long:  `Summarizes the user's recent conversation via the summary provider and persists the extracted facts. Intended for scheduled maintenance or an explicit "compress my memory now" trigger.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()
		logger := log.FromCtx(ctx)

		app, services := NewApp(ctx)
		defer func() {
			for _, s := range services {
				if err := s.Shutdown(ctx); err != nil {
					logger.Error().Err(err).Msgf("%T failed to shutdown", s)
				}
			}
		}()

		// The core never retries; this command is the caller that does.
		var result core.CompressionResult
		err := retry.NewDefaultRetrier().Do(ctx, func() error {
			var runErr error
			result, runErr = app.Compressor.CompressToLongTerm(ctx, compressUser)
			if errors.Is(runErr, core.ErrNothingToSummarize) {
				// Nothing to do; retrying won't change that.
				return nil
			}
			return runErr
		})
		if err != nil {
			return fmt.Errorf("compression failed: %w", err)
		}

		if result.FactsSaved == 0 && result.Summary == "" {
			logger.Info().Str("user", compressUser).Msg("nothing to summarize")
			return nil
		}

		logger.Info().
			Str("user", compressUser).
			Int("facts_saved", result.FactsSaved).
			Strs("topics", result.Topics).
			Msg("compression complete")
		fmt.Println(result.Summary)
		return nil
	},
}

func init() {
	compressCmd.Flags().StringVarP(&compressUser, "user", "u", "", "user whose memory to compress")
	_ = compressCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(compressCmd)
}
