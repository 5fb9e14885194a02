package network

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/MRamiBalles/hullbreach/internal/domain/outcome"
	"github.com/MRamiBalles/hullbreach/internal/engine"
	"github.com/MRamiBalles/hullbreach/internal/events"
	"github.com/MRamiBalles/hullbreach/internal/platform/config"
	"github.com/MRamiBalles/hullbreach/internal/platform/logger"
	"github.com/MRamiBalles/hullbreach/internal/platform/optimization"
)

type testServer struct {
	eng *engine.Engine
	el  *events.EventLog
	hub *Hub
	srv *httptest.Server
}

func newTestServer(t *testing.T, limiter *IPRateLimiter) *testServer {
	t.Helper()
	log := logger.Discard()
	el := events.NewEventLog(nil, 0)
	eng := engine.NewEngine(el, log)
	for _, id := range []string{"S1", "S2"} {
		if err := eng.RegisterShip(id, "Ship "+id, config.DefaultSimulation()); err != nil {
			t.Fatalf("RegisterShip: %v", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(eng, optimization.DefaultConfig(), log)
	go hub.Run(ctx)

	srv := httptest.NewServer(NewRouter(RouterConfig{
		Sim:         eng,
		EventLog:    el,
		Hub:         hub,
		Limiter:     limiter,
		CORSOrigins: []string{"*"},
		Logger:      log,
	}))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return &testServer{eng: eng, el: el, hub: hub, srv: srv}
}

func (ts *testServer) postCommand(t *testing.T, ship, body string) (int, CommandResponse) {
	t.Helper()
	resp, err := http.Post(ts.srv.URL+"/api/ships/"+ship+"/commands", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	var out CommandResponse
	json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func TestListAndGetShips(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, err := http.Get(ts.srv.URL + "/api/ships")
	if err != nil {
		t.Fatalf("GET /api/ships: %v", err)
	}
	var list struct {
		Ships []engine.ShipSnapshot `json:"ships"`
	}
	json.NewDecoder(resp.Body).Decode(&list)
	resp.Body.Close()
	if len(list.Ships) != 2 || list.Ships[0].ID != "S1" {
		t.Errorf("got %+v, want S1 and S2 in order", list.Ships)
	}

	resp, _ = http.Get(ts.srv.URL + "/api/ships/S2")
	var one engine.ShipSnapshot
	json.NewDecoder(resp.Body).Decode(&one)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || one.ID != "S2" || one.Combat.Hull != 100 {
		t.Errorf("got %d %+v, want S2 at full hull", resp.StatusCode, one)
	}

	resp, _ = http.Get(ts.srv.URL + "/api/ships/S9")
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("got %d for unknown ship, want 404", resp.StatusCode)
	}
}

func TestPostCommand(t *testing.T) {
	ts := newTestServer(t, nil)

	code, out := ts.postCommand(t, "S1", `{"type":"start_warp"}`)
	if code != http.StatusOK || out.Result.Status != outcome.StatusAccepted {
		t.Fatalf("got %d %+v, want accepted", code, out)
	}
	if out.Command.ShipID != "S1" {
		t.Errorf("ship id should come from the path, got %q", out.Command.ShipID)
	}

	code, out = ts.postCommand(t, "S1", `{"type":"start_warp"}`)
	if code != http.StatusOK || out.Result.Reason != outcome.ReasonAlreadyInProgress {
		t.Errorf("got %d %+v, want a 200 rejection", code, out)
	}
	if out.Message == "" {
		t.Errorf("expected a readable message")
	}

	code, _ = ts.postCommand(t, "S9", `{"type":"start_warp"}`)
	if code != http.StatusNotFound {
		t.Errorf("got %d for unknown ship, want 404", code)
	}
	code, _ = ts.postCommand(t, "S1", `{"type":"dance"}`)
	if code != http.StatusBadRequest {
		t.Errorf("got %d for unknown command, want 400", code)
	}
	code, _ = ts.postCommand(t, "S1", `not json`)
	if code != http.StatusBadRequest {
		t.Errorf("got %d for malformed body, want 400", code)
	}
}

func TestEventsSince(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.eng.StartWarp("S1")
	ts.eng.ReceiveDamage("S2", 500, "kinetic")

	resp, err := http.Get(ts.srv.URL + "/api/events?since=2")
	if err != nil {
		t.Fatalf("GET /api/events: %v", err)
	}
	var out ReplayResponse
	json.NewDecoder(resp.Body).Decode(&out)
	resp.Body.Close()

	// Seq 1 and 2 are the registrations.
	if out.TotalEvents != 3 {
		t.Fatalf("got %d events, want 3", out.TotalEvents)
	}
	if out.Events[0].Type != events.EventTypeWarpCharging {
		t.Errorf("got first type %s, want WARP_CHARGING", out.Events[0].Type)
	}
	if out.LastSeq != 5 {
		t.Errorf("got last seq %d, want 5", out.LastSeq)
	}

	resp, _ = http.Get(ts.srv.URL + "/api/events?terminal=true")
	json.NewDecoder(resp.Body).Decode(&out)
	resp.Body.Close()
	if out.TotalEvents != 1 || out.Events[0].Type != events.EventTypeShipDestroyed {
		t.Errorf("got %+v, want only SHIP_DESTROYED", out.Events)
	}

	resp, _ = http.Get(ts.srv.URL + "/api/events?since=-4")
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("got %d for negative since, want 400", resp.StatusCode)
	}
}

func TestCommandRateLimit(t *testing.T) {
	ts := newTestServer(t, NewIPRateLimiter(0.001, 2, logger.Discard()))

	for i := 0; i < 2; i++ {
		if code, _ := ts.postCommand(t, "S1", `{"type":"hold_thrust"}`); code != http.StatusOK {
			t.Fatalf("request %d: got %d, want 200", i, code)
		}
	}
	if code, _ := ts.postCommand(t, "S1", `{"type":"hold_thrust"}`); code != http.StatusTooManyRequests {
		t.Errorf("got %d, want 429", code)
	}
	// Reads are never limited.
	resp, _ := http.Get(ts.srv.URL + "/api/ships")
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("got %d for GET, want 200", resp.StatusCode)
	}
}

func TestWebSocketCommandAndEvents(t *testing.T) {
	ts := newTestServer(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ts.hub.StartEventPoller(ctx, ts.el, 0)

	url := "ws" + strings.TrimPrefix(ts.srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(engine.Command{Type: engine.CmdStartWarp, ShipID: "S1"}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	var gotResult, gotEvent bool
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for !(gotResult && gotEvent) {
		var f Frame
		if err := conn.ReadJSON(&f); err != nil {
			t.Fatalf("ReadJSON: %v (result=%v event=%v)", err, gotResult, gotEvent)
		}
		switch f.Kind {
		case FrameResult:
			if f.Result.Result.Status != outcome.StatusAccepted {
				t.Errorf("got %+v, want accepted", f.Result.Result)
			}
			gotResult = true
		case FrameEvent:
			if f.Event.Type == events.EventTypeWarpCharging {
				gotEvent = true
			}
		}
	}
}

func TestDescribeCoversReasons(t *testing.T) {
	if got := Describe(outcome.Rejectf(outcome.ReasonAreaDisabled, "")); got != "The crew is on strike there." {
		t.Errorf("got %q", got)
	}
	if got := Describe(outcome.Clampf("hull clamped to 100.00")); got != "Done, but limited: hull clamped to 100.00" {
		t.Errorf("got %q", got)
	}
}

func TestStoppedHubDoesNotBlockClients(t *testing.T) {
	ts := newTestServer(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(ts.eng, optimization.DefaultConfig(), logger.Discard())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	c := NewClient(hub, nil)
	returned := make(chan struct{})
	go func() {
		c.Register()
		hub.BroadcastSnapshots()
		close(returned)
	}()
	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("Register on a stopped hub blocked")
	}
	if _, ok := <-c.send; ok {
		t.Errorf("client send channel still open after late registration")
	}
}
