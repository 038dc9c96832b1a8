package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/okian/scorestats/internal/adapters/database"
	"github.com/okian/scorestats/internal/adapters/repository"
	app "github.com/okian/scorestats/internal/app"
	"github.com/okian/scorestats/internal/config"
	"github.com/okian/scorestats/pkg/logger"
	"github.com/okian/scorestats/pkg/metrics"
)

const (
	pushTimeout = 10 * time.Second

	stageConfig  = "config"
	stageConnect = "connect"
)

func main() {
	// Local development values; real environment variables win.
	_ = godotenv.Load(".env")

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := run(ctx, os.Stdout, config.Environment())
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// run loads config for environment, prints both reports to out and pushes
// metrics when a Pushgateway is configured.
func run(ctx context.Context, out io.Writer, environment string) error {
	if err := logger.Init(); err != nil {
		// Use stderr directly since the logger isn't available
		_, _ = os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return err
	}
	defer func() { _ = logger.Sync() }()

	m := metrics.Default()

	cfg, err := config.Load(ctx, environment)
	if err != nil {
		m.RecordRunError(stageConfig)
		logger.Get().Error(ctx, "failed to load config",
			logger.String("environment", environment),
			logger.String("section", config.Section(environment)),
			logger.Error(err),
		)
		return err
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		_ = logger.Init()
		logger.Get().Warn(ctx, "invalid log_format; falling back to text", logger.String("log_format", cfg.LogFormat), logger.Error(err))
	}
	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		m.RecordRunError(stageConnect)
		log.Error(ctx, "failed to connect to database", logger.String("driver", cfg.Database.Driver), logger.Error(err))
		pushMetrics(ctx, log, m, cfg.Metrics, config.Section(environment))
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Warn(ctx, "closing database", logger.Error(err))
		}
	}()

	svc := app.New(
		app.WithStore(repository.New(db,
			repository.WithShowsTable(cfg.Database.ShowsTable),
			repository.WithScoreMapTable(cfg.Database.ScoreMapTable),
			repository.WithLogger(log.Named("repository")),
			repository.WithMetrics(m),
		)),
		app.WithOutput(out),
		app.WithLogger(log),
		app.WithMetrics(m),
	)
	log.Debug(ctx, "starting report",
		logger.String("run_id", svc.RunID()),
		logger.String("section", config.Section(environment)),
	)

	runErr := svc.Run(ctx)
	if runErr != nil {
		log.Error(ctx, "report failed", logger.String("run_id", svc.RunID()), logger.Error(runErr))
	}
	pushMetrics(ctx, log, m, cfg.Metrics, config.Section(environment))
	return runErr
}

// pushMetrics sends the run's metrics to the configured Pushgateway, grouped
// by config section so each environment keeps one series. Push failures are
// logged and never fail the run.
func pushMetrics(ctx context.Context, log logger.Logger, m *metrics.Manager, cfg config.Metrics, section string) {
	if cfg.PushgatewayURL == "" {
		return
	}
	pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), pushTimeout)
	defer cancel()

	if err := m.Push(pushCtx, cfg.PushgatewayURL, cfg.Job, map[string]string{"environment": section}); err != nil {
		log.Warn(ctx, "failed to push metrics", logger.String("url", cfg.PushgatewayURL), logger.Error(err))
		return
	}
	log.Debug(ctx, "pushed metrics", logger.String("url", cfg.PushgatewayURL), logger.String("job", cfg.Job))
}
