// Package server wires the hrkeeper services together and runs them: it
// opens the database, applies migrations, bootstraps the admin account,
// serves the REST API and purges expired sessions in the background.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/hrkeeper/internal/cryptox"
	"github.com/dmitrijs2005/hrkeeper/internal/logging"
	"github.com/dmitrijs2005/hrkeeper/internal/server/config"
	"github.com/dmitrijs2005/hrkeeper/internal/server/httpapi"
	"github.com/dmitrijs2005/hrkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/hrkeeper/internal/server/services"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const pingTimeout = 10 * time.Second

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB

	authService *services.AuthService
	httpServer  *httpapi.Server
}

func NewApp(c *config.Config) (*App, error) {

	logger, err := logging.New(c.LogBackend, c.LogLevel, os.Stdout)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	rm, err := repomanager.NewPostgresRepositoryManager(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	box := cryptox.NewBox(cryptox.DeriveKey([]byte(c.DataKeyPassphrase), []byte(c.DataKeySalt)))

	as := services.NewAuthService(db, rm, c, box)
	es := services.NewEmployeeService(db, rm, c, box)
	ts := services.NewTimecardService(db, rm, es)
	ps, err := services.NewPayrollService(db, rm, c)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("payroll init error: %w", err)
	}

	srv := httpapi.NewServer(c, logger, httpapi.Services{
		Auth:       as,
		Employees:  es,
		Timecards:  ts,
		Payroll:    ps,
		Leave:      services.NewLeaveService(db, rm),
		Benefits:   services.NewBenefitService(db, rm),
		Recruiting: services.NewRecruitingService(db, rm),
		Documents:  services.NewDocumentService(db, rm, c),
	})

	return &App{config: c, logger: logger, db: db, authService: as, httpServer: srv}, nil
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

// bootstrapAdmin creates the first super admin on an empty database. The
// generated password is logged once and must be changed at first login.
func (app *App) bootstrapAdmin(ctx context.Context) error {
	password, created, err := app.authService.EnsureAdmin(ctx)
	if err != nil {
		return fmt.Errorf("admin bootstrap error: %w", err)
	}
	if created {
		app.logger.Warn(ctx, "Created initial admin account; change the password at first login",
			"username", app.config.AdminUsername, "password", password)
	}
	return nil
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.httpServer.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// startCleanup purges expired sessions and trusted devices until ctx is done.
func (app *App) startCleanup(ctx context.Context) {
	if app.config.CleanupInterval <= 0 {
		return
	}
	ticker := time.NewTicker(app.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sessions, devices, err := app.authService.PurgeExpired(ctx)
			if err != nil {
				app.logger.Error(ctx, "cleanup failed", "error", err)
				continue
			}
			if sessions > 0 || devices > 0 {
				app.logger.Info(ctx, "expired auth state purged", "sessions", sessions, "trusted_devices", devices)
			}
		}
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	defer func() {
		if err := app.db.Close(); err != nil {
			app.logger.Error(ctx, "db close error", "error", err)
		}
	}()

	if err := app.bootstrapAdmin(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		return
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startCleanup(ctx)
	}()

	wg.Wait()

	app.logger.Info(ctx, "App stopped")
}
