package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"dictionary/internal/handler"
	"dictionary/internal/middleware"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

func newBotCmd(logger *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Run migrations and start the Telegram bot",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), logger)
			if err != nil {
				return err
			}
			defer a.Close()

			if a.cfg.BotToken == "" {
				return errors.New("BOT_TOKEN is required")
			}

			if err := runMigrations(a.db, a.cfg.MigrationsPath, logger); err != nil {
				return err
			}

			bot, err := tele.NewBot(tele.Settings{
				Token:  a.cfg.BotToken,
				Poller: &tele.LongPoller{Timeout: 10 * time.Second},
			})
			if err != nil {
				return fmt.Errorf("failed to create bot: %w", err)
			}

			logger.Info("Telegram bot initialized")

			bot.Use(middleware.LoggingMiddleware(logger))
			h := handler.NewHandler(bot, a.wordService, a.fetcher, logger)
			h.RegisterHandlers()

			var metricsServer *http.Server
			if a.cfg.MetricsAddr != "" {
				metricsServer = startMetricsServer(a.cfg.MetricsAddr, logger)
			}

			go func() {
				logger.Info("Bot started successfully")
				bot.Start()
			}()

			// Wait for interrupt signal
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
			<-sigChan

			logger.Info("Shutdown signal received, stopping bot...")

			bot.Stop()
			if metricsServer != nil {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := metricsServer.Shutdown(ctx); err != nil {
					logger.Warn("Failed to stop metrics server", zap.Error(err))
				}
			}

			logger.Info("Bot stopped gracefully")
			return nil
		},
	}
}

func newMigrateCmd(logger *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), logger)
			if err != nil {
				return err
			}
			defer a.Close()

			return runMigrations(a.db, a.cfg.MigrationsPath, logger)
		},
	}
}

func newFetchCmd(logger *zap.Logger) *cobra.Command {
	var save bool

	cmd := &cobra.Command{
		Use:   "fetch WORD",
		Short: "Look a word up on the remote word service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), logger)
			if err != nil {
				return err
			}
			defer a.Close()

			dto, added, err := a.fetcher.FetchAndSave(cmd.Context(), args[0], save)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if dto == nil {
				fmt.Fprintf(out, "%s: not found\n", args[0])
				return nil
			}

			fmt.Fprintf(out, "%s: %s\n", dto.Name, strings.Join(dto.Translations, ", "))
			switch {
			case save && added:
				fmt.Fprintln(out, "saved")
			case save:
				fmt.Fprintln(out, "already in dictionary")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "Store the word in the dictionary")

	return cmd
}

func newWordsCmd(logger *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:     "words",
		Aliases: []string{"ls"},
		Short:   "List stored words",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), logger)
			if err != nil {
				return err
			}
			defer a.Close()

			words, err := a.wordService.FindAll(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, w := range words {
				fmt.Fprintf(out, "%d\t%s\t%d\t%s\n", w.ID, w.Name, w.Progress, strings.Join(w.TranslationNames(), ", "))
			}
			return nil
		},
	}
}

// startMetricsServer exposes Prometheus metrics on addr
func startMetricsServer(addr string, logger *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("Metrics server listening", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed", zap.Error(err))
		}
	}()

	return server
}
