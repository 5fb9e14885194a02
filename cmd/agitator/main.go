// Package main - agitator
// Load generator for stress testing: many concurrent WebSocket clients
// firing random ship commands at the server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gookit/color"
	"github.com/gorilla/websocket"

	"github.com/MRamiBalles/hullbreach/internal/domain/outcome"
	"github.com/MRamiBalles/hullbreach/internal/engine"
	"github.com/MRamiBalles/hullbreach/internal/network"
)

// Config for the agitator
type Config struct {
	ServerURL      string
	NumClients     int
	ActionInterval time.Duration
	TestDuration   time.Duration
	ShipIDs        []string
	ResultsPath    string
}

// Stats tracks performance metrics
type Stats struct {
	MessagesSent     int64
	MessagesReceived int64
	Accepted         int64
	Rejected         int64
	RateLimited      int64
	EventFrames      int64
	Errors           int64
	Latencies        []time.Duration
	mu               sync.Mutex
}

var (
	colorTitle = color.Style{color.FgCyan, color.OpBold}
	colorGood  = color.Style{color.FgGreen, color.OpBold}
	colorWarn  = color.Style{color.FgYellow, color.OpBold}
	colorBad   = color.Style{color.FgRed, color.OpBold}
)

// Weighted toward cheap commands so ships live long enough to matter.
var commandTypes = []engine.CommandType{
	engine.CmdAccelerate,
	engine.CmdAccelerate,
	engine.CmdDecelerate,
	engine.CmdHoldThrust,
	engine.CmdStartWarp,
	engine.CmdStopWarp,
	engine.CmdEngage,
	engine.CmdExitCombat,
	engine.CmdFireLaser,
	engine.CmdFireMissile,
	engine.CmdLaunchFighter,
	engine.CmdLaunchBomber,
	engine.CmdCraftStrike,
	engine.CmdRecallCraft,
	engine.CmdAttemptBoard,
	engine.CmdAttemptWarpAway,
	engine.CmdSabotageWarp,
	engine.CmdMoraleDelta,
	engine.CmdMoraleEvent,
	engine.CmdStartResearch,
	engine.CmdRepair,
	engine.CmdAddResource,
}

var (
	moraleEvents  = []string{"crew_death", "food_shortage", "entertainment", "successful_mission"}
	resourceKinds = []string{"fuel", "food", "raw_material", "energy"}
	researchNodes = []string{"advanced_engines", "shield_upgrades", "hardened_hull"}
)

func main() {
	serverURL := flag.String("url", "ws://localhost:8080/ws", "WebSocket server URL")
	numClients := flag.Int("clients", 50, "Number of concurrent clients")
	interval := flag.Duration("interval", 100*time.Millisecond, "Command interval per client")
	duration := flag.Duration("duration", 60*time.Second, "Test duration")
	ships := flag.String("ships", "S1,S2", "Comma-separated ship IDs to command")
	out := flag.String("out", "stress_test_results.json", "Where to write the JSON summary")
	flag.Parse()

	config := Config{
		ServerURL:      *serverURL,
		NumClients:     *numClients,
		ActionInterval: *interval,
		TestDuration:   *duration,
		ShipIDs:        strings.Split(*ships, ","),
		ResultsPath:    *out,
	}

	rule := strings.Repeat("=", 41)
	fmt.Println(rule)
	fmt.Println(colorTitle.Sprint("AGITATOR - hullbreach load generator"))
	fmt.Println(rule)
	fmt.Printf("Server:   %s\n", config.ServerURL)
	fmt.Printf("Clients:  %d\n", config.NumClients)
	fmt.Printf("Interval: %v\n", config.ActionInterval)
	fmt.Printf("Duration: %v\n", config.TestDuration)
	fmt.Printf("Ships:    %s\n", strings.Join(config.ShipIDs, ", "))
	fmt.Println(rule)

	ctx, cancel := context.WithTimeout(context.Background(), config.TestDuration)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	go func() {
		<-sigChan
		fmt.Println(colorWarn.Sprint("\nInterrupt received, stopping..."))
		cancel()
	}()

	start := time.Now()
	stats := runStressTest(ctx, config)
	printResults(stats, config, time.Since(start))
}

func runStressTest(ctx context.Context, config Config) *Stats {
	stats := &Stats{
		Latencies: make([]time.Duration, 0, 10000),
	}

	var wg sync.WaitGroup

	fmt.Println("\nStarting clients...")

	for i := 0; i < config.NumClients; i++ {
		wg.Add(1)
		go func(clientID int) {
			defer wg.Done()
			runClient(ctx, clientID, config, stats)
		}(i)

		// Stagger client starts to avoid thundering herd
		time.Sleep(10 * time.Millisecond)
	}

	fmt.Printf("All %d clients started\n\n", config.NumClients)

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fmt.Printf("Progress: sent=%d recv=%d accepted=%d rejected=%d limited=%d errors=%d\n",
					atomic.LoadInt64(&stats.MessagesSent),
					atomic.LoadInt64(&stats.MessagesReceived),
					atomic.LoadInt64(&stats.Accepted),
					atomic.LoadInt64(&stats.Rejected),
					atomic.LoadInt64(&stats.RateLimited),
					atomic.LoadInt64(&stats.Errors))
			}
		}
	}()

	wg.Wait()
	return stats
}

func runClient(ctx context.Context, clientID int, config Config, stats *Stats) {
	u, err := url.Parse(config.ServerURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "client %d: url parse error: %v\n", clientID, err)
		atomic.AddInt64(&stats.Errors, 1)
		return
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "client %d: connection failed: %v\n", clientID, err)
		atomic.AddInt64(&stats.Errors, 1)
		return
	}
	defer conn.Close()

	go func() {
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			atomic.AddInt64(&stats.MessagesReceived, 1)
			countFrame(data, stats)
		}
	}()

	rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(clientID)))
	ticker := time.NewTicker(config.ActionInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cmd := randomCommand(rng, config.ShipIDs)
			start := time.Now()

			if err := conn.WriteJSON(cmd); err != nil {
				atomic.AddInt64(&stats.Errors, 1)
				return
			}

			latency := time.Since(start)
			atomic.AddInt64(&stats.MessagesSent, 1)

			stats.mu.Lock()
			stats.Latencies = append(stats.Latencies, latency)
			stats.mu.Unlock()
		}
	}
}

func countFrame(data []byte, stats *Stats) {
	var f network.Frame
	if err := json.Unmarshal(data, &f); err != nil {
		atomic.AddInt64(&stats.Errors, 1)
		return
	}
	switch f.Kind {
	case network.FrameEvent:
		atomic.AddInt64(&stats.EventFrames, 1)
	case network.FrameResult:
		if f.Result == nil {
			return
		}
		switch {
		case f.Result.Result.Reason == outcome.ReasonRateLimited:
			atomic.AddInt64(&stats.RateLimited, 1)
		case f.Result.Result.OK():
			atomic.AddInt64(&stats.Accepted, 1)
		default:
			atomic.AddInt64(&stats.Rejected, 1)
		}
	}
}

func randomCommand(rng *rand.Rand, ships []string) engine.Command {
	cmd := engine.Command{
		Type:   commandTypes[rng.Intn(len(commandTypes))],
		ShipID: ships[rng.Intn(len(ships))],
	}
	if len(ships) > 1 {
		for cmd.TargetID == "" || cmd.TargetID == cmd.ShipID {
			cmd.TargetID = ships[rng.Intn(len(ships))]
		}
	}

	switch cmd.Type {
	case engine.CmdMoraleDelta:
		cmd.Amount = float64(rng.Intn(21) - 10)
	case engine.CmdMoraleEvent:
		cmd.Kind = moraleEvents[rng.Intn(len(moraleEvents))]
	case engine.CmdStartResearch:
		cmd.NodeID = researchNodes[rng.Intn(len(researchNodes))]
	case engine.CmdRepair:
		cmd.Amount = float64(5 + rng.Intn(20))
	case engine.CmdAddResource:
		cmd.Kind = resourceKinds[rng.Intn(len(resourceKinds))]
		cmd.Amount = float64(10 + rng.Intn(90))
	}
	return cmd
}

func printResults(stats *Stats, config Config, elapsed time.Duration) {
	rule := strings.Repeat("=", 41)
	fmt.Println("\n" + rule)
	fmt.Println(colorTitle.Sprint("STRESS TEST RESULTS"))
	fmt.Println(rule)

	sent := atomic.LoadInt64(&stats.MessagesSent)
	recv := atomic.LoadInt64(&stats.MessagesReceived)
	accepted := atomic.LoadInt64(&stats.Accepted)
	rejected := atomic.LoadInt64(&stats.Rejected)
	limited := atomic.LoadInt64(&stats.RateLimited)
	errs := atomic.LoadInt64(&stats.Errors)

	fmt.Printf("Commands Sent:     %d\n", sent)
	fmt.Printf("Frames Received:   %d (%d events)\n", recv, atomic.LoadInt64(&stats.EventFrames))
	fmt.Printf("Accepted:          %d\n", accepted)
	fmt.Printf("Rejected:          %d\n", rejected)
	fmt.Printf("Rate Limited:      %d\n", limited)
	fmt.Printf("Errors:            %d\n", errs)
	fmt.Printf("Error Rate:        %.2f%%\n", float64(errs)/float64(sent+1)*100)

	throughput := float64(sent) / elapsed.Seconds()
	fmt.Printf("Throughput:        %.2f cmd/sec\n", throughput)

	if len(stats.Latencies) > 0 {
		var total time.Duration
		min, max := stats.Latencies[0], stats.Latencies[0]
		for _, l := range stats.Latencies {
			total += l
			if l < min {
				min = l
			}
			if l > max {
				max = l
			}
		}
		avg := total / time.Duration(len(stats.Latencies))

		fmt.Printf("\nWrite latency:\n")
		fmt.Printf("  Min: %v\n", min)
		fmt.Printf("  Avg: %v\n", avg)
		fmt.Printf("  Max: %v\n", max)
	}

	fmt.Println("\n" + strings.Repeat("-", 41))
	switch {
	case errs == 0 && sent > 0:
		fmt.Println(colorGood.Sprint("PASSED: server handled the load"))
	case float64(errs)/float64(sent+1) < 0.05:
		fmt.Println(colorWarn.Sprint("WARNING: some errors detected"))
	default:
		fmt.Println(colorBad.Sprint("FAILED: high error rate"))
	}
	fmt.Println(rule)

	results := map[string]interface{}{
		"commands_sent":      sent,
		"frames_received":    recv,
		"accepted":           accepted,
		"rejected":           rejected,
		"rate_limited":       limited,
		"errors":             errs,
		"throughput_per_sec": throughput,
		"config": map[string]interface{}{
			"clients":  config.NumClients,
			"interval": config.ActionInterval.String(),
			"duration": config.TestDuration.String(),
			"ships":    config.ShipIDs,
		},
	}

	jsonData, _ := json.MarshalIndent(results, "", "  ")
	if err := os.WriteFile(config.ResultsPath, jsonData, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "could not write results: %v\n", err)
		return
	}
	fmt.Printf("\nResults saved to %s\n", config.ResultsPath)
}
