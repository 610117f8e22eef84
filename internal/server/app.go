// Package server wires the application together: configuration, storage,
// services, the notification pipeline, the expiry scheduler and the HTTP
// server, with graceful shutdown on OS signals.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/avasilkov/keyvault/internal/logging"
	"github.com/avasilkov/keyvault/internal/server/config"
	"github.com/avasilkov/keyvault/internal/server/httpapi"
	"github.com/avasilkov/keyvault/internal/server/mailer"
	"github.com/avasilkov/keyvault/internal/server/scheduler"
	"github.com/avasilkov/keyvault/internal/server/secrets"
	"github.com/avasilkov/keyvault/internal/server/shared/db"
	"github.com/avasilkov/keyvault/internal/server/users"
)

// shutdownTimeout bounds how long in-flight requests may run after a
// termination signal.
const shutdownTimeout = 10 * time.Second

type App struct {
	config    *config.Config
	logger    logging.Logger
	repos     db.RepositoryManager
	queue     *mailer.Queue
	scheduler *scheduler.Scheduler
	httpsrv   *httpapi.Server
}

// hashLookup adapts the user repository to the secret service's narrow view
// of it.
type hashLookup struct {
	repo users.Repository
}

func (h *hashLookup) PasswordHashByUserID(ctx context.Context, id int64) (string, error) {
	user, err := h.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return user.PasswordHash, nil
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	repos, err := db.NewPostgresRepositoryManager(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	// The queue exists before anything that can produce into it.
	sender, err := mailer.NewSMTPSender(cfg)
	if err != nil {
		return nil, fmt.Errorf("smtp init error: %w", err)
	}
	queue := mailer.NewQueue(cfg.MailQueueCapacity, sender, logger)

	userService := users.NewService(repos.Users(), repos.ResetTokens(), repos.Secrets(),
		repos.Conn(), queue, logger, cfg)
	secretService := secrets.NewService(repos.Secrets(), &hashLookup{repo: repos.Users()})

	sched := scheduler.New(cfg.SchedulerSpec, repos.Secrets(), repos.Notifications(), queue, logger)
	httpsrv := httpapi.NewServer(userService, secretService, repos.Notifications(),
		[]byte(cfg.JWTSecret), logger)

	return &App{
		config:    cfg,
		logger:    logger,
		repos:     repos,
		queue:     queue,
		scheduler: sched,
		httpsrv:   httpsrv,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	srv := &http.Server{
		Addr:    app.config.EndpointAddr,
		Handler: app.httpsrv.Router(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(ctx, "http server shutdown error", "error", err)
		}
	}()

	app.logger.Info(ctx, "http server listening", "addr", app.config.EndpointAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, "http server error", "error", err)
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
		app.queue.Run(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.scheduler.Run(ctx); err != nil {
			app.logger.Error(ctx, "scheduler error", "error", err)
			cancelFunc()
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.repos.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}

	app.logger.Info(ctx, "App stopped")
}
