package store

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"paygate/internal/platform/config"
)

func TestFromConfig_DefaultsToSQLite(t *testing.T) {
	t.Setenv("SERVICE_PGSQL_DBURL", "")
	t.Setenv("SERVICE_CLICKHOUSE_DBURL", "")
	t.Setenv("SERVICE_SQLITE_PATH", "/tmp/gate.db")

	cfg := FromConfig(config.New(), "paygate", "api")
	assert.False(t, cfg.PG.Enabled)
	assert.True(t, cfg.SQLite.Enabled)
	assert.Equal(t, "/tmp/gate.db", cfg.SQLite.Path)
	assert.False(t, cfg.CH.Enabled)
}

func TestFromConfig_PostgresWins(t *testing.T) {
	t.Setenv("SERVICE_PGSQL_DBURL", "postgres://u:p@db:5432/paygate")
	t.Setenv("SERVICE_PGSQL_MAX_CONNS", "8")
	t.Setenv("SERVICE_CLICKHOUSE_DBURL", "clickhouse://ch:9000/default")

	cfg := FromConfig(config.New(), "paygate", "api")
	assert.True(t, cfg.PG.Enabled)
	assert.EqualValues(t, 8, cfg.PG.MaxConns)
	assert.False(t, cfg.SQLite.Enabled)
	assert.True(t, cfg.CH.Enabled)
	assert.Equal(t, "api", cfg.CH.ClientTag)
}
