package store

import (
	"time"

	"hamfinder/internal/platform/config"
)

// Config aggregates per backend configuration
type Config struct {
	AppName string

	PG PGConfig
	CH CHConfig
}

// PGConfig configures postgres connectivity and tracing
type PGConfig struct {
	Enabled     bool
	URL         string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int

	ConnectRetries int           // default 6
	PingTimeout    time.Duration // default 3s
}

// CHConfig configures clickhouse connectivity
type CHConfig struct {
	Enabled bool
	URL     string
	Role    string
}

// ConfigFromEnv reads SERVICE_PGSQL_* and SERVICE_CLICKHOUSE_*; each backend is enabled only when asked.
// An enabled backend without a DSN panics
func ConfigFromEnv(cfg config.Conf, appName string, wantPG, wantCH bool) Config {
	pgc := cfg.Prefix("SERVICE_PGSQL_")
	chc := cfg.Prefix("SERVICE_CLICKHOUSE_")

	out := Config{AppName: appName}
	if wantPG {
		out.PG = PGConfig{
			Enabled:        true,
			URL:            pgc.MustString("DBURL"),
			MaxConns:       int32(pgc.MayInt("MAX_CONNS", 2)),
			LogSQL:         pgc.MayBool("LOG_SQL", false),
			SlowQueryMs:    pgc.MayInt("SLOW_MS", 250),
			ConnectRetries: pgc.MayInt("CONNECT_RETRIES", 6),
			PingTimeout:    pgc.MayDuration("PING_TIMEOUT", 3*time.Second),
		}
	}
	if wantCH {
		out.CH = CHConfig{
			Enabled: true,
			URL:     chc.MustString("DBURL"),
			Role:    appName,
		}
	}
	return out
}
