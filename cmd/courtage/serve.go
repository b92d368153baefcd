package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/assurlink/courtage/internal/api"
	"github.com/assurlink/courtage/internal/assistant"
	"github.com/assurlink/courtage/internal/config"
	"github.com/assurlink/courtage/internal/domain"
	"github.com/assurlink/courtage/internal/logging"
	"github.com/assurlink/courtage/internal/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API used by the web and mobile clients",
	Long: `Serve the HTTP API. Configuration comes from --config and the environment
(COURTAGE_ADDR, DATABASE_URL, COURTAGE_JWT_SECRET, GEMINI_API_KEY, COURTAGE_RATES,
COURTAGE_ALLOWED_ORIGINS). The rates file is watched and reloaded on change.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfgPath, _ := cmd.Flags().GetString("config")
		cfg, err := config.LoadServerConfig(cfgPath)
		if err != nil {
			return err
		}
		if rates, _ := cmd.Flags().GetString("rates"); rates != "" {
			cfg.RatesFile = rates
		}
		verbose, _ := cmd.Flags().GetBool("verbose")
		logger, err := logging.New(verbose)
		if err != nil {
			return err
		}
		defer logging.Sync(logger)

		return serve(commandContext(cmd), cfg, logger)
	},
}

func serve(ctx context.Context, cfg config.ServerConfig, logger *zap.Logger) error {
	rates, err := config.NewRatesWatcher(cfg.RatesFile, logger.Sugar())
	if err != nil {
		return err
	}
	rates.OnReload(func(t *domain.RateTables) {
		logger.Info("rates in force", zap.String("version", t.Metadata.Version), zap.String("file", cfg.RatesFile))
	})

	db, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	h := api.NewHandler(rates, cfg, logger)
	h.Store = db
	if cfg.GeminiAPIKey != "" {
		completer, err := assistant.NewGenAICompleter(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return fmt.Errorf("failed to create assistant: %w", err)
		}
		h.Assistant = assistant.New(completer, logger.Named("assistant"))
	} else {
		logger.Warn("GEMINI_API_KEY not set, assistant routes disabled")
	}

	srv := api.NewServer(h)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := rates.Start(gctx); err != nil {
			return err
		}
		<-gctx.Done()
		rates.Stop()
		return nil
	})
	g.Go(func() error {
		logger.Info("listening",
			zap.String("addr", cfg.Addr),
			zap.String("rates", rates.Rates().Metadata.Version),
			zap.Bool("assistant", h.Assistant != nil))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
