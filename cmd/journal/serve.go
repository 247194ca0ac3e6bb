package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	adapthttp "journal/internal/adapter/http"
	"journal/internal/adapter/llm"
	"journal/internal/adapter/memory"
	"journal/internal/adapter/postgres"
	"journal/internal/analysis"
	"journal/internal/app"
	"journal/internal/config"
	"journal/internal/domain"
	"journal/internal/logging"
)

const (
	sessionPurgeInterval = time.Hour
	shutdownTimeout      = 10 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

// stores is the set of repositories one backend provides.
type stores struct {
	entries   domain.EntryRepository
	summaries domain.SummaryRepository
	users     domain.UserRepository
	sessions  domain.SessionRepository
	close     func() error
}

func openStores(ctx context.Context, cfg *config.Config, log *zap.Logger) (*stores, error) {
	if cfg.DatabaseURL == "" {
		log.Warn("JOURNAL_DATABASE_URL not set, using the in-memory store")
		db := memory.New()
		return &stores{
			entries:   db,
			summaries: db,
			users:     db,
			sessions:  db.NewSessionRepo(),
			close:     func() error { return nil },
		}, nil
	}

	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return &stores{
		entries:   db,
		summaries: db,
		users:     db,
		sessions:  postgres.NewSessionRepo(db),
		close:     db.Close,
	}, nil
}

func newGenerator(cfg *config.Config, log *zap.Logger) (domain.NarrativeGenerator, error) {
	g, err := llm.New(llm.Config{
		APIKey:        cfg.OpenAIAPIKey,
		Model:         cfg.OpenAIModel,
		BaseURL:       cfg.OpenAIBaseURL,
		Timeout:       cfg.GenerationTimeout,
		RatePerSecond: cfg.GenerationRate,
	})
	if err != nil {
		return nil, err
	}
	if g == nil {
		log.Warn("JOURNAL_OPENAI_API_KEY not set, weekly summaries are disabled")
		return nil, nil
	}
	return g, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = st.close() }()

	gen, err := newGenerator(cfg, log)
	if err != nil {
		return fmt.Errorf("generation client: %w", err)
	}

	authSvc := app.NewAuthService(st.users, st.sessions, log)
	svc := adapthttp.Services{
		Entries:    app.NewEntryService(st.entries, analysis.NewAnalyzer(nil, log), log),
		Insights:   app.NewInsightsService(st.entries),
		Garden:     app.NewGardenService(st.entries),
		Reflection: app.NewReflectionService(st.entries, nil),
		Weekly:     app.NewWeeklySummaryService(st.entries, st.summaries, gen, cfg.DevMode, log),
		Auth:       authSvc,
	}

	srv := adapthttp.New(svc, cfg.WebDir, log)
	if cfg.OIDCEnabled() {
		oidcCfg, err := adapthttp.NewOIDCConfig(ctx, cfg.OIDCIssuer, cfg.OIDCClientID, cfg.OIDCClientSecret, cfg.OIDCRedirectURL)
		if err != nil {
			return err
		}
		srv = srv.WithOIDC(oidcCfg)
	}
	if cfg.DisableAuth {
		log.Warn("authentication is disabled")
		srv = srv.WithoutAuth()
	}

	go purgeSessions(ctx, authSvc, log)

	httpSrv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", cfg.Addr), zap.Bool("dev_mode", cfg.DevMode))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

func purgeSessions(ctx context.Context, auth *app.AuthService, log *zap.Logger) {
	ticker := time.NewTicker(sessionPurgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := auth.PurgeExpiredSessions(ctx); err != nil {
				log.Warn("session purge failed", zap.Error(err))
			}
		}
	}
}
