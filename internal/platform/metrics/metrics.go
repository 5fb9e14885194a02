// Package metrics provides observability for the ship server.
package metrics

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Collector gathers performance metrics.
type Collector struct {
	// Tick metrics
	TickCount      int64
	TickLatencySum int64 // nanoseconds
	TickLatencyMax int64
	LastTickTime   time.Time

	// Event metrics
	EventsWritten    int64
	EventWriteLatSum int64
	EventWriteLatMax int64
	EventWriteErrors int64
	EventsDropped    int64 // journal queue full or closed

	// WebSocket metrics
	WSConnectionsActive int64
	WSMessagesIn        int64
	WSMessagesOut       int64
	WSErrors            int64

	// Command metrics
	CommandsAccepted int64
	CommandsRejected int64
	CommandsLimited  int64
	ShipsDestroyed   int64

	// System
	StartTime time.Time
	mu        sync.RWMutex
}

// Global collector instance
var collector = &Collector{
	StartTime: time.Now(),
}

// Get returns the global collector.
func Get() *Collector {
	return collector
}

func storeMax(addr *int64, v int64) {
	for {
		cur := atomic.LoadInt64(addr)
		if v <= cur || atomic.CompareAndSwapInt64(addr, cur, v) {
			return
		}
	}
}

// RecordTick records a tick cycle completion.
func (c *Collector) RecordTick(latency time.Duration) {
	atomic.AddInt64(&c.TickCount, 1)
	atomic.AddInt64(&c.TickLatencySum, int64(latency))
	storeMax(&c.TickLatencyMax, int64(latency))

	c.mu.Lock()
	c.LastTickTime = time.Now()
	c.mu.Unlock()
}

// RecordEventWrite records an event write to the journal.
func (c *Collector) RecordEventWrite(latency time.Duration, err error) {
	atomic.AddInt64(&c.EventsWritten, 1)
	atomic.AddInt64(&c.EventWriteLatSum, int64(latency))
	storeMax(&c.EventWriteLatMax, int64(latency))

	if err != nil {
		atomic.AddInt64(&c.EventWriteErrors, 1)
	}
}

// RecordEventDropped records an event that never reached the journal queue.
func (c *Collector) RecordEventDropped() {
	atomic.AddInt64(&c.EventsDropped, 1)
}

// RecordWSConnection records WebSocket connection changes.
func (c *Collector) RecordWSConnection(delta int64) {
	atomic.AddInt64(&c.WSConnectionsActive, delta)
}

// RecordWSMessage records WebSocket messages.
func (c *Collector) RecordWSMessage(incoming bool) {
	if incoming {
		atomic.AddInt64(&c.WSMessagesIn, 1)
	} else {
		atomic.AddInt64(&c.WSMessagesOut, 1)
	}
}

// RecordWSError records a WebSocket error.
func (c *Collector) RecordWSError() {
	atomic.AddInt64(&c.WSErrors, 1)
}

// RecordCommand records a command outcome.
func (c *Collector) RecordCommand(accepted bool) {
	if accepted {
		atomic.AddInt64(&c.CommandsAccepted, 1)
	} else {
		atomic.AddInt64(&c.CommandsRejected, 1)
	}
}

// RecordRateLimited records a command dropped by the rate limiter.
func (c *Collector) RecordRateLimited() {
	atomic.AddInt64(&c.CommandsLimited, 1)
}

// RecordShipDestroyed records a terminal transition.
func (c *Collector) RecordShipDestroyed() {
	atomic.AddInt64(&c.ShipsDestroyed, 1)
}

// Snapshot returns current metrics as a map.
func (c *Collector) Snapshot() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	tickCount := atomic.LoadInt64(&c.TickCount)
	eventsWritten := atomic.LoadInt64(&c.EventsWritten)

	var tickAvg, eventAvg float64
	if tickCount > 0 {
		tickAvg = float64(atomic.LoadInt64(&c.TickLatencySum)) / float64(tickCount) / 1e6 // ms
	}
	if eventsWritten > 0 {
		eventAvg = float64(atomic.LoadInt64(&c.EventWriteLatSum)) / float64(eventsWritten) / 1e6
	}

	return map[string]interface{}{
		"uptime_seconds": time.Since(c.StartTime).Seconds(),

		"tick": map[string]interface{}{
			"count":          tickCount,
			"avg_latency_ms": tickAvg,
			"max_latency_ms": float64(atomic.LoadInt64(&c.TickLatencyMax)) / 1e6,
			"last_tick":      c.LastTickTime.Format(time.RFC3339),
		},

		"events": map[string]interface{}{
			"written":          eventsWritten,
			"avg_write_lat_ms": eventAvg,
			"max_write_lat_ms": float64(atomic.LoadInt64(&c.EventWriteLatMax)) / 1e6,
			"errors":           atomic.LoadInt64(&c.EventWriteErrors),
			"dropped":          atomic.LoadInt64(&c.EventsDropped),
		},

		"websocket": map[string]interface{}{
			"active_connections": atomic.LoadInt64(&c.WSConnectionsActive),
			"messages_in":        atomic.LoadInt64(&c.WSMessagesIn),
			"messages_out":       atomic.LoadInt64(&c.WSMessagesOut),
			"errors":             atomic.LoadInt64(&c.WSErrors),
		},

		"commands": map[string]interface{}{
			"accepted":        atomic.LoadInt64(&c.CommandsAccepted),
			"rejected":        atomic.LoadInt64(&c.CommandsRejected),
			"rate_limited":    atomic.LoadInt64(&c.CommandsLimited),
			"ships_destroyed": atomic.LoadInt64(&c.ShipsDestroyed),
		},
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-cache")

		snapshot := collector.Snapshot()
		json.NewEncoder(w).Encode(snapshot)
	}
}

// PrometheusHandler returns metrics in Prometheus format.
func PrometheusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		c := collector

		fmt.Fprintf(w, "# HELP hullbreach_tick_count Total tick cycles\n")
		fmt.Fprintf(w, "# TYPE hullbreach_tick_count counter\n")
		fmt.Fprintf(w, "hullbreach_tick_count %d\n\n", atomic.LoadInt64(&c.TickCount))

		fmt.Fprintf(w, "# HELP hullbreach_tick_latency_max_ms Maximum tick latency\n")
		fmt.Fprintf(w, "# TYPE hullbreach_tick_latency_max_ms gauge\n")
		fmt.Fprintf(w, "hullbreach_tick_latency_max_ms %.2f\n\n", float64(atomic.LoadInt64(&c.TickLatencyMax))/1e6)

		fmt.Fprintf(w, "# HELP hullbreach_events_written Total events written\n")
		fmt.Fprintf(w, "# TYPE hullbreach_events_written counter\n")
		fmt.Fprintf(w, "hullbreach_events_written %d\n\n", atomic.LoadInt64(&c.EventsWritten))

		fmt.Fprintf(w, "# HELP hullbreach_event_write_errors Total event write errors\n")
		fmt.Fprintf(w, "# TYPE hullbreach_event_write_errors counter\n")
		fmt.Fprintf(w, "hullbreach_event_write_errors %d\n\n", atomic.LoadInt64(&c.EventWriteErrors))

		fmt.Fprintf(w, "# HELP hullbreach_events_dropped Events not queued for the journal\n")
		fmt.Fprintf(w, "# TYPE hullbreach_events_dropped counter\n")
		fmt.Fprintf(w, "hullbreach_events_dropped %d\n\n", atomic.LoadInt64(&c.EventsDropped))

		fmt.Fprintf(w, "# HELP hullbreach_ws_connections Active WebSocket connections\n")
		fmt.Fprintf(w, "# TYPE hullbreach_ws_connections gauge\n")
		fmt.Fprintf(w, "hullbreach_ws_connections %d\n\n", atomic.LoadInt64(&c.WSConnectionsActive))

		fmt.Fprintf(w, "# HELP hullbreach_ws_messages_total Total WebSocket messages\n")
		fmt.Fprintf(w, "# TYPE hullbreach_ws_messages_total counter\n")
		fmt.Fprintf(w, "hullbreach_ws_messages_total{direction=\"in\"} %d\n", atomic.LoadInt64(&c.WSMessagesIn))
		fmt.Fprintf(w, "hullbreach_ws_messages_total{direction=\"out\"} %d\n\n", atomic.LoadInt64(&c.WSMessagesOut))

		fmt.Fprintf(w, "# HELP hullbreach_commands_total Commands by outcome\n")
		fmt.Fprintf(w, "# TYPE hullbreach_commands_total counter\n")
		fmt.Fprintf(w, "hullbreach_commands_total{outcome=\"accepted\"} %d\n", atomic.LoadInt64(&c.CommandsAccepted))
		fmt.Fprintf(w, "hullbreach_commands_total{outcome=\"rejected\"} %d\n", atomic.LoadInt64(&c.CommandsRejected))
		fmt.Fprintf(w, "hullbreach_commands_total{outcome=\"rate_limited\"} %d\n\n", atomic.LoadInt64(&c.CommandsLimited))

		fmt.Fprintf(w, "# HELP hullbreach_ships_destroyed Ships that reached hull 0\n")
		fmt.Fprintf(w, "# TYPE hullbreach_ships_destroyed counter\n")
		fmt.Fprintf(w, "hullbreach_ships_destroyed %d\n", atomic.LoadInt64(&c.ShipsDestroyed))
	}
}
