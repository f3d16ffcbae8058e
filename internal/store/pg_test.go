//go:build integration

package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDB *gorm.DB

// externalDSN builds a DSN from FF_FRACTIONS_TEST_DB_* when a database is provided by CI
func externalDSN() (string, bool) {
	host := os.Getenv("FF_FRACTIONS_TEST_DB_HOST")
	if host == "" {
		return "", false
	}
	env := func(key, fallback string) string {
		if v := os.Getenv("FF_FRACTIONS_TEST_DB_" + key); v != "" {
			return v
		}
		return fallback
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, env("PORT", "5432"), env("USER", "postgres"), env("PASSWORD", "postgres"), env("NAME", "fractions_test")), true
}

func startPostgres(ctx context.Context) (*postgres.PostgresContainer, string, error) {
	container, err := postgres.Run(ctx,
		"postgres:18-alpine",
		postgres.WithDatabase("fractions_test"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		return nil, "", fmt.Errorf("failed to start PostgreSQL container: %w", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, "", fmt.Errorf("failed to get connection string: %w", err)
	}
	return container, dsn, nil
}

func TestMain(m *testing.M) {
	os.Exit(runWithDatabase(m))
}

func runWithDatabase(m *testing.M) int {
	ctx := context.Background()

	dsn, ok := externalDSN()
	if !ok {
		container, containerDSN, err := startPostgres(ctx)
		if err != nil {
			fmt.Println(err)
			return 1
		}
		defer func() {
			if err := container.Terminate(ctx); err != nil {
				fmt.Printf("Failed to terminate PostgreSQL container: %v\n", err)
			}
		}()
		dsn = containerDSN
	}

	var err error
	testDB, err = gorm.Open(pgdriver.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		fmt.Printf("Failed to connect to database: %v\n", err)
		return 1
	}

	if err := applySchema(testDB); err != nil {
		fmt.Printf("Failed to initialize database: %v\n", err)
		return 1
	}

	return m.Run()
}

// applySchema runs db/init_pg_db.sql
func applySchema(db *gorm.DB) error {
	schemaSQL, err := os.ReadFile(filepath.Join("..", "..", "db", "init_pg_db.sql")) //nolint:gosec,G304
	if err != nil {
		return fmt.Errorf("failed to read schema file: %w", err)
	}
	if err := db.Exec(string(schemaSQL)).Error; err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

// initPGTestDB isolates each test in a transaction that is rolled back on cleanup
func initPGTestDB(t *testing.T) Store {
	tx := testDB.Begin()
	require.NoError(t, tx.Error)
	t.Cleanup(func() {
		tx.Rollback()
	})
	return NewPGStore(tx)
}

func cleanupPGTestDB(*testing.T) {}

// TestPostgreSQLStore runs all store tests against PostgreSQL
func TestPostgreSQLStore(t *testing.T) {
	if testDB == nil {
		t.Fatal("Test database not initialized")
	}

	RunStoreTests(t, initPGTestDB, cleanupPGTestDB)
}

func TestPostgreSQLStore_Counters(t *testing.T) {
	if testDB == nil {
		t.Fatal("Test database not initialized")
	}
	ctx := context.Background()
	s := initPGTestDB(t)

	saleID, err := s.NextSaleID(ctx)
	require.NoError(t, err)
	next, err := s.NextSaleID(ctx)
	require.NoError(t, err)
	require.Equal(t, saleID+1, next)

	// A rolled back allocation hands out the same id again
	err = s.WithTx(ctx, func(tx Store) error {
		if _, err := tx.NextSaleID(ctx); err != nil {
			return err
		}
		return fmt.Errorf("abort")
	})
	require.Error(t, err)
	again, err := s.NextSaleID(ctx)
	require.NoError(t, err)
	require.Equal(t, next+1, again)
}
