// Package server wires the Smart Study backend together: storage and
// migrations, the generation client, services and the REST server. It also
// handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/smartstudy/internal/logging"
	"github.com/dmitrijs2005/smartstudy/internal/server/config"
	"github.com/dmitrijs2005/smartstudy/internal/server/generation"
	"github.com/dmitrijs2005/smartstudy/internal/server/metrics"
	"github.com/dmitrijs2005/smartstudy/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/smartstudy/internal/server/rest"
	"github.com/dmitrijs2005/smartstudy/internal/server/services"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *rest.Server
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.New(os.Stdout, c.LogFormat, logging.ParseLevel(c.LogLevel))

	db, m, err := repomanager.Open(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := m.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	met := metrics.New()

	completer := generation.NewOpenAICompleter(generation.OpenAIConfig{
		APIKey:      c.AIAPIKey,
		Model:       c.AIModel,
		BaseURL:     c.AIBaseURL,
		Temperature: c.AITemperature,
		Timeout:     c.AITimeout,
	}, logger.With("module", "openai"))
	if c.AIAPIKey == "" {
		logger.Warn(ctx, "AI_API_KEY is not set, generation requests will fail")
	}
	gen := generation.NewService(completer, met, logger)

	us := services.NewUserService(db, m, c)
	ss := services.NewStudyService(db, m, gen, logger)
	es := services.NewExportService(ss, c)
	is := services.NewInteractionService(gen, logger)

	srv := rest.NewServer(c, logger, met, us, ss, es, is)

	logger.Info(ctx, "App initialized", "dialect", string(m.Dialect()), "export_enabled", c.ExportEnabled())

	return &App{config: c, logger: logger, db: db, server: srv}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startRESTServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startRESTServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "error closing database", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
