// Package server initializes and runs the task planner server.
// It opens the database, applies schema migrations, wires the services
// and starts the HTTP endpoint together with the background cleanup worker.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/taskplanner/internal/logging"
	"github.com/dmitrijs2005/taskplanner/internal/server/config"
	"github.com/dmitrijs2005/taskplanner/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/taskplanner/internal/server/rest"
	"github.com/dmitrijs2005/taskplanner/internal/server/services"
)

type App struct {
	config              *config.Config
	logger              logging.Logger
	db                  *sql.DB
	userService         *services.UserService
	workspaceService    *services.WorkspaceService
	todoService         *services.TodoService
	verificationService *services.VerificationService
	cleanupWorker       *services.CleanupWorker
}

func NewApp(cfg *config.Config) (*App, error) {

	logger := logging.NewJSONLogger(os.Stdout)

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm, err := repomanager.NewPostgresRepositoryManager(db)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := rm.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	us := services.NewUserService(db, rm, cfg)
	ws := services.NewWorkspaceService(db, rm)
	ts := services.NewTodoService(db, rm)
	vs := services.NewVerificationService(db, rm, us, services.NewLogMailer(logger), cfg)
	cw := services.NewCleanupWorker(db, rm, logger, cfg)

	return &App{
		config:              cfg,
		logger:              logger,
		db:                  db,
		userService:         us,
		workspaceService:    ws,
		todoService:         ts,
		verificationService: vs,
		cleanupWorker:       cw,
	}, nil
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

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s, err := rest.NewServer(app.config.EndpointAddrHTTP, app.logger,
		app.userService, app.workspaceService, app.todoService, app.verificationService,
		app.config.SecretKey)

	if err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	} else {

		if err := s.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.cleanupWorker.Run(ctx)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
}
