package optimization

import "testing"

func TestForProfile(t *testing.T) {
	if got := ForProfile("low").ClientSendBuffer; got != 8 {
		t.Errorf("low ClientSendBuffer = %d, want 8", got)
	}
	if got := ForProfile("stress").EventChannelBuffer; got != 4096 {
		t.Errorf("stress EventChannelBuffer = %d, want 4096", got)
	}
	if got := ForProfile("anything").EventChannelBuffer; got != 1024 {
		t.Errorf("default EventChannelBuffer = %d, want 1024", got)
	}
}

func TestAnalyzeAndApply(t *testing.T) {
	snapshot := map[string]interface{}{
		"tick":      map[string]interface{}{"max_latency_ms": 250.0},
		"events":    map[string]interface{}{"max_write_lat_ms": 10.0, "errors": int64(0)},
		"websocket": map[string]interface{}{"errors": int64(3)},
		"commands":  map[string]interface{}{"accepted": int64(50), "rate_limited": int64(20)},
	}
	rec := Analyze(snapshot)
	if !rec.IncreaseEventBuffer || !rec.IncreaseBroadcastBuffer || !rec.RaiseCommandLimit {
		t.Fatalf("recommendations = %+v", rec)
	}
	if rec.IncreaseDBConnections {
		t.Errorf("IncreaseDBConnections = true with healthy writes")
	}

	cfg := ApplyRecommendations(LowResourceConfig(), rec)
	if cfg.EventChannelBuffer != 128 || cfg.ClientSendBuffer != 16 || cfg.CommandsPerSecond != 10 {
		t.Errorf("applied config = %+v", cfg)
	}
}
