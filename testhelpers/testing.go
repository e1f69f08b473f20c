package testhelpers

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// TestDB holds the database connection for testing
type TestDB struct {
	Pool    *pgxpool.Pool
	Cleanup func()
}

// SetupTestDB connects to TEST_DATABASE_URL and applies the schema. The test
// is skipped when the variable is unset.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	connString := os.Getenv("TEST_DATABASE_URL")
	if connString == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping database test")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, connString)
	require.NoError(t, err, "connect to test database")
	require.NoError(t, pool.Ping(ctx), "ping test database")

	schema, err := os.ReadFile(schemaPath())
	require.NoError(t, err, "read schema")
	_, err = pool.Exec(ctx, string(schema))
	require.NoError(t, err, "apply schema")

	db := &TestDB{Pool: pool, Cleanup: pool.Close}
	ResetDealerTables(t, db)
	return db
}

// ResetDealerTables empties every dealer directory table
func ResetDealerTables(t *testing.T, db *TestDB) {
	t.Helper()

	_, err := db.Pool.Exec(context.Background(),
		`TRUNCATE product_lines, contacts, addresses, dealerships, salesmen RESTART IDENTITY CASCADE`)
	require.NoError(t, err, "truncate dealer tables")
}

// SeedSalesman inserts a salesman lookup row
func SeedSalesman(t *testing.T, db *TestDB, code, name string) {
	t.Helper()

	_, err := db.Pool.Exec(context.Background(),
		`INSERT INTO salesmen (salesman_code, salesman_name) VALUES ($1, $2)`, code, name)
	require.NoError(t, err, "seed salesman %s", code)
}

// SeedDealer inserts a bare dealership row with NULL DBA and salesman so
// reads exercise the NULL to empty string coalescing.
func SeedDealer(t *testing.T, db *TestDB, dealerNumber, name string) {
	t.Helper()

	_, err := db.Pool.Exec(context.Background(),
		`INSERT INTO dealerships (dealer_number, dealership_name) VALUES ($1, $2)`, dealerNumber, name)
	require.NoError(t, err, "seed dealer %s", dealerNumber)
}

// SeedProductLine attaches a product line to a dealer
func SeedProductLine(t *testing.T, db *TestDB, dealerNumber, lineName, accountNumber string) {
	t.Helper()

	_, err := db.Pool.Exec(context.Background(),
		`INSERT INTO product_lines (dealer_number, line_name, account_number) VALUES ($1, $2, $3)`,
		dealerNumber, lineName, accountNumber)
	require.NoError(t, err, "seed product line %s", lineName)
}

func schemaPath() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "db", "schema.sql")
}
