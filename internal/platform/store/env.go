package store

import (
	"paygate/internal/platform/config"
)

// FromConfig builds a Config from the SERVICE_* env views
// postgres wins when SERVICE_PGSQL_DBURL is set, otherwise the embedded file at SERVICE_SQLITE_PATH is used
// clickhouse is enabled only when SERVICE_CLICKHOUSE_DBURL is set
func FromConfig(root config.Conf, app, tag string) Config {
	pgCfg := root.Prefix("SERVICE_PGSQL_")
	liteCfg := root.Prefix("SERVICE_SQLITE_")
	chCfg := root.Prefix("SERVICE_CLICKHOUSE_")

	cfg := Config{AppName: app}
	if url := pgCfg.MayString("DBURL", ""); url != "" {
		cfg.PG = PGConfig{
			Enabled:     true,
			URL:         url,
			MaxConns:    int32(pgCfg.MayIntRange("MAX_CONNS", 4, 1, 256)),
			SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
			LogSQL:      pgCfg.MayBool("LOG_SQL", false),
		}
	} else {
		cfg.SQLite = SQLiteConfig{
			Enabled:       true,
			Path:          liteCfg.MayString("PATH", "paygate.db"),
			BusyTimeoutMs: liteCfg.MayInt("BUSY_TIMEOUT_MS", 5000),
			SlowQueryMs:   liteCfg.MayInt("SLOW_MS", 500),
			LogSQL:        liteCfg.MayBool("LOG_SQL", false),
		}
	}
	if url := chCfg.MayString("DBURL", ""); url != "" {
		cfg.CH = CHConfig{Enabled: true, URL: url, ClientName: app, ClientTag: tag}
	}
	return cfg
}
