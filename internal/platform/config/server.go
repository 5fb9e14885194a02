package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Server holds process-level settings read from the environment.
type Server struct {
	Port        string
	Environment string
	SessionID   string // journal scope; event sequence numbers restart with each process

	LogLevel string
	LogJSON  bool

	SimConfigPath string
	ShipIDs       []string
	TickRate      time.Duration
	TimeScale     float64
	Profile       string

	DBDriver    string // sqlite or postgres
	SQLitePath  string
	PostgresDSN string

	RedisEnabled bool
	RedisURL     string

	SnapshotInterval time.Duration
	CORSOrigins      []string

	LocaleDir string // gettext catalogs for command feedback; empty keeps English
	Language  string
}

// LoadServer reads .env (if present) and the environment, then validates.
func LoadServer() (*Server, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using system environment variables")
	}

	cfg := loadServer()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func loadServer() *Server {
	tickMillis, _ := strconv.Atoi(GetEnv("TICK_RATE_MS", "100"))
	timeScale, _ := strconv.ParseFloat(GetEnv("TIME_SCALE", "1"), 64)
	snapshotSeconds, _ := strconv.Atoi(GetEnv("SNAPSHOT_INTERVAL_SECONDS", "5"))
	environment := GetEnv("ENVIRONMENT", "development")

	return &Server{
		Port:             GetEnv("PORT", "8080"),
		Environment:      environment,
		SessionID:        GetEnv("SESSION_ID", "session_"+time.Now().UTC().Format("20060102T150405")),
		LogLevel:         GetEnv("LOG_LEVEL", "info"),
		LogJSON:          environment == "production",
		SimConfigPath:    GetEnv("SIM_CONFIG", ""),
		ShipIDs:          splitList(GetEnv("SHIP_IDS", "S1,S2")),
		TickRate:         time.Duration(tickMillis) * time.Millisecond,
		TimeScale:        timeScale,
		Profile:          GetEnv("SERVER_PROFILE", "default"),
		DBDriver:         GetEnv("DB_DRIVER", "sqlite"),
		SQLitePath:       GetEnv("SQLITE_PATH", "./data/hullbreach.db"),
		PostgresDSN:      GetEnv("DATABASE_URL", ""),
		RedisEnabled:     GetEnv("REDIS_ENABLED", "false") == "true",
		RedisURL:         GetEnv("REDIS_URL", "redis://localhost:6379/0"),
		SnapshotInterval: time.Duration(snapshotSeconds) * time.Second,
		CORSOrigins:      splitList(GetEnv("CORS_ORIGINS", "http://localhost:3000")),
		LocaleDir:        GetEnv("LOCALE_DIR", ""),
		Language:         GetEnv("LANGUAGE", "en_US"),
	}
}

func (c *Server) validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.TickRate <= 0 {
		return fmt.Errorf("TICK_RATE_MS must be positive")
	}
	if c.TimeScale <= 0 {
		return fmt.Errorf("TIME_SCALE must be positive")
	}
	if c.SnapshotInterval <= 0 {
		return fmt.Errorf("SNAPSHOT_INTERVAL_SECONDS must be positive")
	}
	if len(c.ShipIDs) == 0 {
		return fmt.Errorf("SHIP_IDS must name at least one ship")
	}
	switch c.DBDriver {
	case "sqlite":
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite driver")
		}
	case "postgres":
		if c.PostgresDSN == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres driver")
		}
	case "none":
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.DBDriver)
	}
	switch c.Profile {
	case "default", "stress", "low":
	default:
		return fmt.Errorf("unknown SERVER_PROFILE %q", c.Profile)
	}
	return nil
}

// TickDelta is the simulated seconds delivered per real tick.
func (c *Server) TickDelta() float64 {
	return c.TickRate.Seconds() * c.TimeScale
}

// GetEnv returns the variable or a fallback.
func GetEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
