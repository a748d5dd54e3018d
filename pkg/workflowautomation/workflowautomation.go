package workflowautomation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/EdwardDuong/WorkFlowAutomation/internal/config"
	"github.com/EdwardDuong/WorkFlowAutomation/internal/controllers"
	"github.com/EdwardDuong/WorkFlowAutomation/internal/engine"
	"github.com/EdwardDuong/WorkFlowAutomation/internal/migrations"
	"github.com/EdwardDuong/WorkFlowAutomation/internal/nodes"
	"github.com/EdwardDuong/WorkFlowAutomation/internal/repository"
	"github.com/EdwardDuong/WorkFlowAutomation/internal/scheduler"
	"github.com/EdwardDuong/WorkFlowAutomation/pkg/workflowautomation/core"

	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/lmittmann/tint"

	_ "github.com/go-sql-driver/mysql"
	migrate "github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const shutdownTimeout = 10 * time.Second

// App wires storage, the execution engine, the scheduler and the HTTP API together.
type App struct {
	Clock core.Clock
	Mux   *http.ServeMux
}

// Setup returns an App using the wall clock and a fresh ServeMux.
func Setup() *App {
	return SetupWithClock(core.NewRealClock())
}

func SetupWithClock(clock core.Clock) *App {
	return &App{Clock: clock, Mux: http.NewServeMux()}
}

// Start is a shortcut for Setup().Run(ctx) on the given mux.
func Start(ctx context.Context, mux *http.ServeMux) error {
	app := Setup()
	if mux != nil {
		app.Mux = mux
	}
	return app.Run(ctx)
}

// Run opens and migrates the database, starts the engine and the scheduler and
// serves the API. It blocks until ctx is cancelled or the server fails.
func (a *App) Run(ctx context.Context) error {
	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	workflowRepo := repository.NewWorkflowRepository(db, a.Clock)
	executionRepo := repository.NewExecutionRepository(db, a.Clock)
	logRepo := repository.NewExecutionLogRepository(db, a.Clock)
	scheduleRepo := repository.NewScheduleRepository(db, a.Clock)
	userRepo := repository.NewUserRepository(db, a.Clock)

	if err := bootstrapAdmin(userRepo); err != nil {
		return fmt.Errorf("bootstrap admin user: %w", err)
	}

	registry := nodes.NewRegistry(nodes.DefaultOptions(a.Clock))
	wfEngine := engine.NewWorkflowEngine(workflowRepo, executionRepo, logRepo, registry, a.Clock, engine.OptionsFromConfig())
	if err := wfEngine.Start(ctx); err != nil {
		return fmt.Errorf("start engine: %w", err)
	}
	// Runs before db.Close so the final status writes land.
	defer wfEngine.Stop()

	sched := scheduler.NewScheduler(scheduleRepo, wfEngine, a.Clock)
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	defer sched.Stop()
	schedules := scheduler.NewScheduleService(scheduleRepo, workflowRepo, sched, a.Clock)

	if a.Mux == nil {
		a.Mux = http.NewServeMux()
	}
	auth := controllers.NewAuthController(userRepo)
	auth.RegisterRoutes(a.Mux)
	controllers.NewUsersController(userRepo).RegisterRoutes(a.Mux)
	controllers.NewWorkflowsController(workflowRepo, auth).RegisterRoutes(a.Mux)
	controllers.NewExecutionsController(wfEngine, auth).RegisterRoutes(a.Mux)
	controllers.NewSchedulesController(schedules, auth).RegisterRoutes(a.Mux)

	return serve(ctx, a.Mux)
}

func serve(ctx context.Context, mux *http.ServeMux) error {
	addr := ":" + config.GetSystemSettingString(config.SERVER_WEB_PORT)
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		addr = v
	}
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "addr", addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		slog.Error("HTTP server failed", "error", err)
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// bootstrapAdmin creates the admin user on first start when a password is configured.
func bootstrapAdmin(users *repository.UserRepository) error {
	username := config.GetSystemSettingString(config.ADMIN_USERNAME)
	password := config.GetSystemSettingString(config.ADMIN_PASSWORD)
	if username == "" || password == "" {
		slog.Warn("No admin password configured, skipping admin user creation", "setting", config.ADMIN_PASSWORD)
		return nil
	}
	existing, err := users.FindByUsername(username)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	u, err := controllers.NewUser(username, password, config.GetSystemSettingString(config.ADMIN_API_KEY))
	if err != nil {
		return err
	}
	if _, err := users.Save(u); err != nil {
		return err
	}
	slog.Info("Created admin user", "username", username)
	return nil
}

func openDatabase() (*sql.DB, error) {
	switch databaseType := config.GetSystemSettingString(config.DATABASE_TYPE); databaseType {
	case config.DATABASE_TYPE_POSTGRES:
		return setupPostgresDatabase()
	case config.DATABASE_TYPE_MYSQL:
		return setupMysqlDatabase()
	case config.DATABASE_TYPE_SQLLITE, "":
		return setupSqlLiteDatabase()
	default:
		return nil, fmt.Errorf("%s must be one of POSTGRES, MYSQL, SQLLITE, got %q", config.DATABASE_TYPE, databaseType)
	}
}

func setupPostgresDatabase() (*sql.DB, error) {
	dbURL := config.GetSystemSettingString(config.DATABASE_URL)
	if dbURL == "" {
		return nil, fmt.Errorf("%s must be set when using the POSTGRES database type", config.DATABASE_URL)
	}
	slog.Info("Running migrations", "database", "postgres")
	if err := runMigrationsFromEmbed("postgres", dbURL); err != nil {
		return nil, fmt.Errorf("migrate postgres: %w", err)
	}
	slog.Info("Opening Postgres database")
	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, err
	}
	return pingOrClose(db)
}

func setupSqlLiteDatabase() (*sql.DB, error) {
	fileName := config.GetSystemSettingString(config.DATABASE_SQLLITE_FILE_NAME)
	if fileName == "" {
		return nil, fmt.Errorf("%s must be set", config.DATABASE_SQLLITE_FILE_NAME)
	}
	slog.Info("Running migrations", "database", "sqlite", "file", fileName)
	if err := runMigrationsFromEmbed("sqllite3", "sqlite3://"+fileName); err != nil {
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	slog.Info("Opening SQLite database", "file", fileName)
	db, err := sql.Open("sqlite3", fileName+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}
	// sqlite allows a single writer
	db.SetMaxOpenConns(1)
	return pingOrClose(db)
}

func setupMysqlDatabase() (*sql.DB, error) {
	dbURL := config.GetSystemSettingString(config.DATABASE_URL)
	if dbURL == "" {
		return nil, fmt.Errorf("%s must be set when using the MYSQL database type", config.DATABASE_URL)
	}
	if !strings.Contains(dbURL, "parseTime=true") {
		return nil, fmt.Errorf("%s must contain 'parseTime=true' for MySQL", config.DATABASE_URL)
	}
	if !strings.HasPrefix(dbURL, "mysql://") {
		return nil, fmt.Errorf("%s must start with 'mysql://' for MySQL", config.DATABASE_URL)
	}
	slog.Info("Running migrations", "database", "mysql")
	if err := runMigrationsFromEmbed("mysql", dbURL); err != nil {
		return nil, fmt.Errorf("migrate mysql: %w", err)
	}
	slog.Info("Opening MySQL database")
	//remove mysql:// prefix from url
	db, err := sql.Open("mysql", strings.Replace(dbURL, "mysql://", "", 1))
	if err != nil {
		return nil, err
	}
	return pingOrClose(db)
}

func pingOrClose(db *sql.DB) (*sql.DB, error) {
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func runMigrationsFromEmbed(migrationsPath string, dbURL string) error {
	sub, err := fs.Sub(migrations.FS, migrationsPath)
	if err != nil {
		return err
	}
	source, err := iofs.New(sub, ".")
	if err != nil {
		return err
	}
	m, err := migrate.NewWithSourceInstance("iofs", source, dbURL)
	if err != nil {
		return err
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// SetupLogger installs a tint handler at the level named by WFA_LOG_LEVEL.
func SetupLogger() {
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      logLevel(config.GetSystemSettingString(config.LOG_LEVEL)),
			TimeFormat: time.RFC3339Nano,
		}),
	))
}

func logLevel(name string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(strings.TrimSpace(name)))); err != nil {
		return slog.LevelInfo
	}
	return level
}
