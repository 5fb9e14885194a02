// Package optimization provides buffer, pool and rate-limit tuning profiles.
package optimization

import (
	"runtime"
)

// Config holds tuned parameters for one load profile.
type Config struct {
	// Channel buffer sizes
	EventChannelBuffer     int // event journal write-behind queue
	BroadcastChannelBuffer int // hub fan-out
	ClientSendBuffer       int // per WebSocket

	// Connection pools
	DBMaxOpenConns int
	DBMaxIdleConns int
	RedisPoolSize  int

	// Rate limiting, per client
	CommandsPerSecond float64
	CommandBurst      int
	MaxClients        int
}

// DefaultConfig returns sensible defaults for production.
func DefaultConfig() *Config {
	numCPU := runtime.NumCPU()

	return &Config{
		EventChannelBuffer:     1024,
		BroadcastChannelBuffer: 256,
		ClientSendBuffer:       64,

		DBMaxOpenConns: numCPU * 4,
		DBMaxIdleConns: numCPU * 2,
		RedisPoolSize:  numCPU * 2,

		CommandsPerSecond: 20,
		CommandBurst:      40,
		MaxClients:        200,
	}
}

// StressTestConfig returns aggressive settings for load testing.
func StressTestConfig() *Config {
	numCPU := runtime.NumCPU()

	return &Config{
		EventChannelBuffer:     4096,
		BroadcastChannelBuffer: 512,
		ClientSendBuffer:       128,

		DBMaxOpenConns: numCPU * 8,
		DBMaxIdleConns: numCPU * 4,
		RedisPoolSize:  numCPU * 4,

		CommandsPerSecond: 200,
		CommandBurst:      400,
		MaxClients:        500,
	}
}

// LowResourceConfig returns minimal settings for development.
func LowResourceConfig() *Config {
	return &Config{
		EventChannelBuffer:     64,
		BroadcastChannelBuffer: 16,
		ClientSendBuffer:       8,

		DBMaxOpenConns: 5,
		DBMaxIdleConns: 2,
		RedisPoolSize:  5,

		CommandsPerSecond: 5,
		CommandBurst:      10,
		MaxClients:        20,
	}
}

// ForProfile maps SERVER_PROFILE to a config. Unknown names get the default.
func ForProfile(name string) *Config {
	switch name {
	case "stress":
		return StressTestConfig()
	case "low":
		return LowResourceConfig()
	default:
		return DefaultConfig()
	}
}

// Recommendations provides suggestions based on observed metrics.
type Recommendations struct {
	IncreaseEventBuffer     bool
	IncreaseBroadcastBuffer bool
	IncreaseDBConnections   bool
	RaiseCommandLimit       bool
	Notes                   []string
}

// Analyze examines a metrics snapshot and returns recommendations.
func Analyze(metrics map[string]interface{}) *Recommendations {
	rec := &Recommendations{
		Notes: make([]string, 0),
	}

	if tick, ok := metrics["tick"].(map[string]interface{}); ok {
		if maxLat, ok := tick["max_latency_ms"].(float64); ok && maxLat > 100 {
			rec.IncreaseEventBuffer = true
			rec.Notes = append(rec.Notes, "Tick latency exceeds 100ms - enlarge the event journal queue")
		}
	}

	if events, ok := metrics["events"].(map[string]interface{}); ok {
		if maxLat, ok := events["max_write_lat_ms"].(float64); ok && maxLat > 50 {
			rec.IncreaseDBConnections = true
			rec.Notes = append(rec.Notes, "Event write latency exceeds 50ms - increase DB connections")
		}
		if dropped, ok := events["dropped"].(int64); ok && dropped > 0 {
			rec.IncreaseEventBuffer = true
			rec.Notes = append(rec.Notes, "Journal queue overflowed - enlarge the event journal queue")
		}
		if errors, ok := events["errors"].(int64); ok && errors > 0 {
			rec.IncreaseDBConnections = true
			rec.Notes = append(rec.Notes, "Event write errors detected - check DB connection pool")
		}
	}

	if ws, ok := metrics["websocket"].(map[string]interface{}); ok {
		if errors, ok := ws["errors"].(int64); ok && errors > 0 {
			rec.IncreaseBroadcastBuffer = true
			rec.Notes = append(rec.Notes, "WebSocket errors detected - increase client send buffer")
		}
	}

	if cmds, ok := metrics["commands"].(map[string]interface{}); ok {
		limited, _ := cmds["rate_limited"].(int64)
		accepted, _ := cmds["accepted"].(int64)
		if limited > 0 && limited*10 > accepted {
			rec.RaiseCommandLimit = true
			rec.Notes = append(rec.Notes, "More than 10% of commands are rate limited - raise the per-client limit")
		}
	}

	return rec
}

// ApplyRecommendations modifies config based on recommendations.
func ApplyRecommendations(config *Config, rec *Recommendations) *Config {
	if rec.IncreaseEventBuffer {
		config.EventChannelBuffer *= 2
	}
	if rec.IncreaseBroadcastBuffer {
		config.BroadcastChannelBuffer *= 2
		config.ClientSendBuffer *= 2
	}
	if rec.IncreaseDBConnections {
		config.DBMaxOpenConns = int(float64(config.DBMaxOpenConns) * 1.5)
		config.DBMaxIdleConns = int(float64(config.DBMaxIdleConns) * 1.5)
	}
	if rec.RaiseCommandLimit {
		config.CommandsPerSecond *= 2
		config.CommandBurst *= 2
	}
	return config
}
