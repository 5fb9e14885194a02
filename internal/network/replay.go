package network

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/MRamiBalles/hullbreach/internal/events"
	"github.com/MRamiBalles/hullbreach/internal/platform/logger"
)

// ReplayHandler serves the event history to consumers that missed the stream.
type ReplayHandler struct {
	eventLog *events.EventLog
	logger   *logger.Logger
}

// NewReplayHandler creates a new replay handler.
func NewReplayHandler(el *events.EventLog, log *logger.Logger) *ReplayHandler {
	return &ReplayHandler{eventLog: el, logger: log}
}

// ReplayResponse is the API response for the event history.
type ReplayResponse struct {
	TotalEvents int                `json:"total_events"`
	LastSeq     int64              `json:"last_seq"`
	FilteredBy  map[string]string  `json:"filtered_by,omitempty"`
	GeneratedAt string             `json:"generated_at"`
	Events      []events.GameEvent `json:"events"`
}

// HandleReplay returns events after a sequence number.
// GET /api/events?since=N&ship=S1&type=SHIP_DESTROYED&terminal=true
func (rh *ReplayHandler) HandleReplay(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var since int64
	if raw := q.Get("since"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 0 {
			writeError(w, "since must be a non-negative integer", http.StatusBadRequest)
			return
		}
		since = n
	}
	ship := q.Get("ship")
	eventType := q.Get("type")
	terminalOnly := q.Get("terminal") == "true"

	filters := map[string]string{}
	if ship != "" {
		filters["ship"] = ship
	}
	if eventType != "" {
		filters["type"] = eventType
	}
	if terminalOnly {
		filters["terminal"] = "true"
	}

	all := rh.eventLog.Since(since)
	out := make([]events.GameEvent, 0, len(all))
	lastSeq := since
	for _, e := range all {
		lastSeq = e.Seq
		if ship != "" && e.ActorID != ship && e.TargetID != ship {
			continue
		}
		if eventType != "" && string(e.Type) != eventType {
			continue
		}
		if terminalOnly && !e.Terminal {
			continue
		}
		out = append(out, e)
	}

	rh.logger.Debug("event replay served", "since", since, "events", len(out))
	writeJSON(w, http.StatusOK, ReplayResponse{
		TotalEvents: len(out),
		LastSeq:     lastSeq,
		FilteredBy:  filters,
		GeneratedAt: time.Now().Format(time.RFC3339),
		Events:      out,
	})
}

// HandleStats returns event counts by type.
// GET /api/events/stats
func (rh *ReplayHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	all := rh.eventLog.Replay()
	byType := make(map[string]int)
	terminal := 0
	for _, e := range all {
		byType[string(e.Type)]++
		if e.Terminal {
			terminal++
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"generated_at":    time.Now().Format(time.RFC3339),
		"total_events":    len(all),
		"terminal_events": terminal,
		"by_type":         byType,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError sends an error response.
func writeError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, map[string]string{"error": message})
}
