package store

import "time"

// Config aggregates per backend configuration
type Config struct {
	AppName string

	PG     PGConfig
	SQLite SQLiteConfig
	CH     CHConfig
}

// PGConfig configures postgres connectivity and tracing
type PGConfig struct {
	Enabled     bool
	URL         string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int

	// Guard/boot knobs:
	ConnectRetries int           // default 20
	PingTimeout    time.Duration // default 3s
}

// SQLiteConfig configures the embedded single file database
type SQLiteConfig struct {
	Enabled       bool
	Path          string
	BusyTimeoutMs int
	LogSQL        bool
	SlowQueryMs   int
}

// CHConfig configures clickhouse connectivity
type CHConfig struct {
	Enabled    bool
	URL        string
	ClientName string
	ClientTag  string
}
