// Package integration runs the shop backend against a real PostgreSQL
// started with testcontainers. The tests are skipped with -short.
package integration

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopfront/backend/internal/infrastructure/logger"
	"github.com/shopfront/backend/internal/infrastructure/migration"
	"github.com/shopfront/backend/internal/infrastructure/persistence"
	"github.com/shopfront/backend/migrations"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/postgres"
	gormlogger "gorm.io/gorm/logger"
)

const postgresImage = "postgres:16-alpine"

// pg is the PostgreSQL container shared by every test in the package
var pg struct {
	sync.Mutex
	container *tcpostgres.PostgresContainer
	dsn       string
}

// TestDB is a connection to the migrated, freshly truncated database
type TestDB struct {
	*persistence.Database
	DSN string
}

// NewTestDB connects to the shared container, starting and migrating it the
// first time, and empties every table before returning.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test needs docker")
	}

	dsn, err := sharedDSN()
	require.NoError(t, err, "postgres container")

	tdb := &TestDB{Database: open(t, dsn), DSN: dsn}
	t.Cleanup(func() { _ = tdb.Close() })

	require.NoError(t, tdb.truncate(), "truncate tables")
	return tdb
}

func sharedDSN() (string, error) {
	pg.Lock()
	defer pg.Unlock()
	if pg.container != nil {
		return pg.dsn, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := tcpostgres.Run(ctx, postgresImage,
		tcpostgres.WithDatabase("shopfront_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute)),
	)
	if err != nil {
		return "", err
	}
	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(context.Background())
		return "", err
	}
	if err := migrate(dsn); err != nil {
		_ = container.Terminate(context.Background())
		return "", fmt.Errorf("migrate: %w", err)
	}

	pg.container, pg.dsn = container, dsn
	return dsn, nil
}

func migrate(dsn string) error {
	db, err := persistence.NewDatabaseWithDialector(postgres.Open(dsn), nil)
	if err != nil {
		return err
	}
	defer db.Close()

	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	m, err := migration.New(sqlDB, migrations.FS, zap.NewNop())
	if err != nil {
		return err
	}
	return m.Up()
}

// open connects with SQL logging routed to the test log when TEST_DB_DEBUG
// is set
func open(t *testing.T, dsn string) *persistence.Database {
	t.Helper()

	var gl gormlogger.Interface
	if os.Getenv("TEST_DB_DEBUG") != "" {
		gl = logger.NewGormLogger(zaptest.NewLogger(t), gormlogger.Info)
	}
	db, err := persistence.NewDatabaseWithDialector(postgres.Open(dsn), gl)
	require.NoError(t, err, "connect")

	sqlDB, err := db.DB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(5)
	sqlDB.SetMaxIdleConns(2)
	return db
}

// truncate empties all tables except the migration bookkeeping
func (tdb *TestDB) truncate() error {
	var tables []string
	err := tdb.DB.Raw(`SELECT tablename FROM pg_tables
		WHERE schemaname = 'public' AND tablename <> 'schema_migrations'`).
		Scan(&tables).Error
	if err != nil || len(tables) == 0 {
		return err
	}
	return tdb.DB.Exec("TRUNCATE TABLE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE").Error
}

// CleanupSharedContainer stops the shared container. TestMain calls it
// after m.Run.
func CleanupSharedContainer() {
	pg.Lock()
	defer pg.Unlock()
	if pg.container == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	_ = pg.container.Terminate(ctx)
	pg.container, pg.dsn = nil, ""
}
