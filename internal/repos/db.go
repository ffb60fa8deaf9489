package repos

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	defaultMaxConns = 10
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrations embed.FS

func init() {
	// modernc registers as "sqlite", which sqlx does not know by name.
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

type Options struct {
	Driver   string
	DSN      string
	MaxConns int
}

// OpenDB connects to the store, bounds its pool and applies pending
// migrations. Seeding is a separate step (see SeedDemo).
func OpenDB(ctx context.Context, opt Options) (*sqlx.DB, error) {
	driverName, err := sqlDriver(opt.Driver)
	if err != nil {
		return nil, err
	}
	db, err := sqlx.Open(driverName, opt.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", opt.Driver, err)
	}

	maxConns := opt.MaxConns
	if maxConns < 1 {
		maxConns = defaultMaxConns
	}
	if opt.Driver == DriverSQLite {
		// SQLite serializes writers anyway, and every new connection to
		// :memory: would see an empty database.
		maxConns = 1
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", opt.Driver, err)
	}
	if err := Migrate(ctx, db, opt.Driver); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Migrate applies the embedded migrations for driver. Safe to run on every start.
func Migrate(ctx context.Context, db *sqlx.DB, driver string) error {
	dialect, dir, err := gooseDialect(driver)
	if err != nil {
		return err
	}
	fsys, err := fs.Sub(migrations, dir)
	if err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	provider, err := goose.NewProvider(dialect, db.DB, fsys)
	if err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("migrations: up: %w", err)
	}
	return nil
}

func sqlDriver(driver string) (string, error) {
	switch strings.ToLower(driver) {
	case DriverSQLite:
		return "sqlite", nil
	case DriverPostgres:
		return "pgx", nil
	default:
		return "", fmt.Errorf("unsupported store driver %q", driver)
	}
}

func gooseDialect(driver string) (goose.Dialect, string, error) {
	switch strings.ToLower(driver) {
	case DriverSQLite:
		return goose.DialectSQLite3, "migrations/sqlite", nil
	case DriverPostgres:
		return goose.DialectPostgres, "migrations/postgres", nil
	default:
		return "", "", fmt.Errorf("unsupported store driver %q", driver)
	}
}
