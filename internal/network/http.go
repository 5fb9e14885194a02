package network

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/cors"

	"github.com/MRamiBalles/hullbreach/internal/domain/outcome"
	"github.com/MRamiBalles/hullbreach/internal/engine"
	"github.com/MRamiBalles/hullbreach/internal/events"
	"github.com/MRamiBalles/hullbreach/internal/platform/logger"
	"github.com/MRamiBalles/hullbreach/internal/platform/metrics"
)

// RouterConfig wires the HTTP surface.
type RouterConfig struct {
	Sim         Simulation
	EventLog    *events.EventLog
	Hub         *Hub
	Limiter     *IPRateLimiter // applied to command posts; nil disables
	CORSOrigins []string
	Logger      *logger.Logger
}

// NewRouter builds the HTTP API, the metrics endpoints and the WebSocket
// upgrade, wrapped in CORS.
func NewRouter(cfg RouterConfig) http.Handler {
	api := &shipAPI{sim: cfg.Sim, logger: cfg.Logger}
	replay := NewReplayHandler(cfg.EventLog, cfg.Logger)

	var commands http.Handler = http.HandlerFunc(api.handleCommand)
	if cfg.Limiter != nil {
		commands = cfg.Limiter.Middleware(commands)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/ships", api.handleList)
	mux.HandleFunc("GET /api/ships/{id}", api.handleGet)
	mux.Handle("POST /api/ships/{id}/commands", commands)
	mux.HandleFunc("GET /api/events", replay.HandleReplay)
	mux.HandleFunc("GET /api/events/stats", replay.HandleStats)
	mux.HandleFunc("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /metrics/prometheus", metrics.PrometheusHandler())
	if cfg.Hub != nil {
		upgrader := newUpgrader(cfg.CORSOrigins)
		mux.HandleFunc("GET /ws", func(w http.ResponseWriter, r *http.Request) {
			ServeWs(cfg.Hub, upgrader, w, r)
		})
	}

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(mux)
}

type shipAPI struct {
	sim    Simulation
	logger *logger.Logger
}

func (a *shipAPI) handleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"ships": a.sim.Snapshots()})
}

func (a *shipAPI) handleGet(w http.ResponseWriter, r *http.Request) {
	snap, ok := a.sim.Snapshot(r.PathValue("id"))
	if !ok {
		writeError(w, "ship not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (a *shipAPI) handleCommand(w http.ResponseWriter, r *http.Request) {
	var cmd engine.Command
	r.Body = http.MaxBytesReader(w, r.Body, maxMessageSize)
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		writeError(w, "invalid command payload", http.StatusBadRequest)
		return
	}
	cmd.ShipID = r.PathValue("id")

	res := a.sim.Execute(cmd)
	a.logger.Debug("command executed", "ship", cmd.ShipID, "type", cmd.Type, "status", res.Status)
	writeJSON(w, statusFor(res), CommandResponse{Command: cmd, Result: res, Message: Describe(res)})
}

// statusFor maps a result to an HTTP status. Rejections are ordinary
// answers, so only unknown ships and malformed requests are client errors.
func statusFor(r outcome.Result) int {
	switch r.Reason {
	case outcome.ReasonUnknownShip:
		return http.StatusNotFound
	case outcome.ReasonUnknownCommand, outcome.ReasonInvalidRequest:
		return http.StatusBadRequest
	}
	return http.StatusOK
}

func newUpgrader(origins []string) websocket.Upgrader {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || allowed["*"] || allowed[origin]
		},
	}
}

// ServeWs handles websocket requests from the peer.
func ServeWs(hub *Hub, upgrader websocket.Upgrader, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		hub.logger.Error("Failed to upgrade websocket connection", "error", err)
		metrics.Get().RecordWSError()
		return
	}

	client := NewClient(hub, conn)
	client.Register()

	go client.WritePump()
	go client.ReadPump()
}
