package network

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/MRamiBalles/hullbreach/internal/domain/outcome"
	"github.com/MRamiBalles/hullbreach/internal/engine"
	"github.com/MRamiBalles/hullbreach/internal/events"
	"github.com/MRamiBalles/hullbreach/internal/platform/logger"
	"github.com/MRamiBalles/hullbreach/internal/platform/metrics"
	"github.com/MRamiBalles/hullbreach/internal/platform/optimization"
)

// Frame kinds sent to WebSocket clients.
const (
	FrameEvent    = "event"
	FrameSnapshot = "snapshot"
	FrameResult   = "result"
)

// Frame is the envelope of every server-to-client message.
type Frame struct {
	Kind   string                `json:"kind"`
	Event  *events.GameEvent     `json:"event,omitempty"`
	Ships  []engine.ShipSnapshot `json:"ships,omitempty"`
	Result *CommandResponse      `json:"result,omitempty"`
}

// CommandResponse answers one command.
type CommandResponse struct {
	Command engine.Command `json:"command"`
	Result  outcome.Result `json:"result"`
	Message string         `json:"message"`
}

// Simulation is what the network layer needs from the engine.
type Simulation interface {
	Execute(cmd engine.Command) outcome.Result
	Snapshots() []engine.ShipSnapshot
	Snapshot(id string) (engine.ShipSnapshot, bool)
}

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	sim        Simulation
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{} // closed when Run returns
	mu         sync.Mutex
	logger     *logger.Logger
	tuning     *optimization.Config
}

// NewHub initializes a new WebSocket Hub.
func NewHub(sim Simulation, tuning *optimization.Config, log *logger.Logger) *Hub {
	if tuning == nil {
		tuning = optimization.DefaultConfig()
	}
	return &Hub{
		sim:        sim,
		broadcast:  make(chan []byte, tuning.BroadcastChannelBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		clients:    make(map[*Client]bool),
		logger:     log,
		tuning:     tuning,
	}
}

// Run starts the Hub's main loop to handle client connections and broadcasts.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.logger.Info("WebSocket hub shutting down")
			h.mu.Lock()
			for client := range h.clients {
				client.close()
				delete(h.clients, client)
			}
			h.mu.Unlock()
			return
		case client := <-h.register:
			h.mu.Lock()
			if len(h.clients) >= h.tuning.MaxClients {
				client.close()
				h.mu.Unlock()
				h.logger.Warn("Client limit reached, refusing connection", "max_clients", h.tuning.MaxClients)
				continue
			}
			h.clients[client] = true
			h.mu.Unlock()
			metrics.Get().RecordWSConnection(1)
			h.logger.Info("New WebSocket client connected")
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.close()
				metrics.Get().RecordWSConnection(-1)
				h.logger.Info("WebSocket client disconnected")
			}
			h.mu.Unlock()
		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
					metrics.Get().RecordWSMessage(false)
				default:
					client.close()
					delete(h.clients, client)
					metrics.Get().RecordWSConnection(-1)
					metrics.Get().RecordWSError()
				}
			}
			h.mu.Unlock()
		}
	}
}

// ClientCount reports how many clients are connected.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) publish(f Frame) {
	payload, err := json.Marshal(f)
	if err != nil {
		h.logger.Error("Failed to serialize frame for broadcast", "kind", f.Kind, "error", err)
		return
	}
	select {
	case h.broadcast <- payload:
	case <-h.done:
	}
}

// BroadcastEvent sends one event to every client.
func (h *Hub) BroadcastEvent(event events.GameEvent) {
	h.publish(Frame{Kind: FrameEvent, Event: &event})
}

// BroadcastSnapshots sends the current state of every ship.
func (h *Hub) BroadcastSnapshots() {
	h.publish(Frame{Kind: FrameSnapshot, Ships: h.sim.Snapshots()})
}

// StartEventPoller tails the event log by sequence number and pushes new
// events to the hub, plus a fleet snapshot every snapshotEvery.
func (h *Hub) StartEventPoller(ctx context.Context, eventLog *events.EventLog, snapshotEvery time.Duration) {
	go func() {
		pollInterval := time.NewTicker(200 * time.Millisecond)
		defer pollInterval.Stop()

		var snapshotC <-chan time.Time
		if snapshotEvery > 0 {
			t := time.NewTicker(snapshotEvery)
			defer t.Stop()
			snapshotC = t.C
		}

		var lastSeq int64
		for {
			select {
			case <-ctx.Done():
				return
			case <-pollInterval.C:
				for _, event := range eventLog.Since(lastSeq) {
					h.BroadcastEvent(event)
					lastSeq = event.Seq
				}
			case <-snapshotC:
				h.BroadcastSnapshots()
			}
		}
	}()
}
