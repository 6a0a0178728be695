package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests require a running PostgreSQL instance and skip otherwise
func testConfig() Config {
	return Config{
		Host:            "localhost",
		Port:            5432,
		User:            "engagehub",
		Password:        "engagehub_dev_password",
		Database:        "engagehub_dev",
		SSLMode:         "disable",
		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: 5 * time.Minute,
		ConnMaxIdleTime: 2 * time.Minute,
		Timeout:         3 * time.Second,
	}
}

func TestNewDB(t *testing.T) {
	db, err := NewDB(testConfig())
	if err != nil {
		t.Skipf("Skipping test: PostgreSQL not available: %v", err)
		return
	}
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, db.HealthCheck(ctx))

	assert.GreaterOrEqual(t, db.DB.Stats().MaxOpenConnections, 5)

	// Test with cancelled context
	cancelCtx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, db.HealthCheck(cancelCtx))
}

func TestApplySchemaIsIdempotent(t *testing.T) {
	db, err := NewDB(testConfig())
	if err != nil {
		t.Skipf("Skipping test: PostgreSQL not available: %v", err)
		return
	}
	defer db.Close()

	ddl := `CREATE TABLE IF NOT EXISTS schema_check (id TEXT PRIMARY KEY)`
	ctx := context.Background()
	require.NoError(t, db.ApplySchema(ctx, ddl))
	require.NoError(t, db.ApplySchema(ctx, ddl))

	_, err = db.ExecContext(ctx, `DROP TABLE schema_check`)
	require.NoError(t, err)

	assert.Error(t, db.ApplySchema(ctx, `CREATE TABLE broken (`))
}

func TestNewPGXPool(t *testing.T) {
	pool, err := NewPGXPool(testConfig())
	if err != nil {
		t.Skipf("Skipping test: PostgreSQL not available: %v", err)
		return
	}
	defer pool.Close()

	assert.NoError(t, pool.Ping(context.Background()))
	assert.EqualValues(t, 5, pool.Config().MaxConns)
}

func TestWithDefaults(t *testing.T) {
	cfg := Config{}.withDefaults()
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, "disable", cfg.SSLMode)

	cfg = Config{Timeout: time.Second, SSLMode: "require"}.withDefaults()
	assert.Equal(t, time.Second, cfg.Timeout)
	assert.Equal(t, "require", cfg.SSLMode)
}
