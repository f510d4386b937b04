package syncer

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/savegress/carebridge/internal/remote"
)

// Monitor is the boolean-state connectivity event source the coordinator
// subscribes to once at startup.
type Monitor interface {
	// Online reports the current connectivity state.
	Online() bool
	// Events delivers state transitions: true for offline→online, false
	// for online→offline.
	Events() <-chan bool
}

// ProbeMonitor derives connectivity from periodic backend health probes,
// the client-side analogue of an OS online/offline signal.
type ProbeMonitor struct {
	pinger   remote.Pinger
	interval time.Duration

	online atomic.Bool
	events chan bool

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
}

// NewProbeMonitor creates a monitor probing via pinger every interval.
// The initial state is offline until the first successful probe.
func NewProbeMonitor(pinger remote.Pinger, interval time.Duration) *ProbeMonitor {
	return &ProbeMonitor{
		pinger:   pinger,
		interval: interval,
		events:   make(chan bool, 8),
		stopCh:   make(chan struct{}),
	}
}

func (m *ProbeMonitor) Online() bool { return m.online.Load() }

func (m *ProbeMonitor) Events() <-chan bool { return m.events }

// Start begins probing. Safe to call once.
func (m *ProbeMonitor) Start(ctx context.Context) {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return
	}
	m.running = true
	m.mu.Unlock()

	go m.probeLoop(ctx)
}

// Stop halts probing.
func (m *ProbeMonitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		close(m.stopCh)
		m.running = false
	}
}

func (m *ProbeMonitor) probeLoop(ctx context.Context) {
	// Probe immediately so startup does not wait a full interval.
	m.probe(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.stopCh:
			return
		case <-ticker.C:
			m.probe(ctx)
		}
	}
}

func (m *ProbeMonitor) probe(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, m.interval)
	defer cancel()

	nowOnline := m.pinger.Ping(probeCtx) == nil
	if m.online.Swap(nowOnline) == nowOnline {
		return // no transition
	}
	select {
	case m.events <- nowOnline:
	default:
	}
}
