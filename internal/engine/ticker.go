package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MRamiBalles/hullbreach/internal/platform/logger"
	"github.com/MRamiBalles/hullbreach/internal/platform/metrics"
)

// DefaultTickRate is how often the real-time loop fires.
const DefaultTickRate = 100 * time.Millisecond

// Advancer is anything that can be moved forward by simulated seconds.
type Advancer interface {
	Advance(dt float64) error
}

// Ticker is the real-time heartbeat. It only converts wall-clock ticks into
// dt; it knows nothing about ships.
type Ticker struct {
	target    Advancer
	logger    *logger.Logger
	rate      time.Duration
	timeScale float64

	stopOnce sync.Once
	stopChan chan struct{}
	started  atomic.Bool
	exited   chan struct{}
}

// NewTicker creates a ticker that calls target.Advance every rate with
// dt = rate * timeScale seconds.
func NewTicker(target Advancer, rate time.Duration, timeScale float64, log *logger.Logger) *Ticker {
	if rate <= 0 {
		rate = DefaultTickRate
	}
	if timeScale <= 0 {
		timeScale = 1
	}
	return &Ticker{
		target:    target,
		logger:    log,
		rate:      rate,
		timeScale: timeScale,
		stopChan:  make(chan struct{}),
		exited:    make(chan struct{}),
	}
}

// Delta is the simulated time each tick covers.
func (t *Ticker) Delta() float64 {
	return t.rate.Seconds() * t.timeScale
}

// Start begins the loop. Call in a goroutine, once.
func (t *Ticker) Start(ctx context.Context) {
	t.started.Store(true)
	defer close(t.exited)
	select {
	case <-t.stopChan:
		return
	default:
	}
	t.logger.Info("Engine ticker started", "rate", t.rate, "dt", t.Delta())

	ticker := time.NewTicker(t.rate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			t.logger.Info("Engine ticker stopped by context")
			return
		case <-t.stopChan:
			t.logger.Info("Engine ticker stopped manually")
			return
		case <-ticker.C:
			t.tick()
		}
	}
}

// Stop ends the loop and waits for an in-flight tick to finish.
// Safe to call more than once.
func (t *Ticker) Stop() {
	t.stopOnce.Do(func() { close(t.stopChan) })
	if t.started.Load() {
		<-t.exited
	}
}

func (t *Ticker) tick() {
	start := time.Now()
	if err := t.target.Advance(t.Delta()); err != nil {
		t.logger.Error("tick failed", "error", err)
	}
	metrics.Get().RecordTick(time.Since(start))
}
