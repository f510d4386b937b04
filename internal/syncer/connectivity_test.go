package syncer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// fakePinger flips between healthy and unreachable on demand.
type fakePinger struct {
	mu   sync.Mutex
	fail bool
}

func (p *fakePinger) set(fail bool) {
	p.mu.Lock()
	p.fail = fail
	p.mu.Unlock()
}

func (p *fakePinger) Ping(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errors.New("unreachable")
	}
	return nil
}

func TestProbeMonitor_TransitionEvents(t *testing.T) {
	pinger := &fakePinger{fail: true}
	m := NewProbeMonitor(pinger, 20*time.Millisecond)

	if m.Online() {
		t.Error("monitor online before first probe")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)
	defer m.Stop()

	// Stays offline while probes fail; no transition event.
	select {
	case online := <-m.Events():
		t.Fatalf("unexpected event %v while offline", online)
	case <-time.After(60 * time.Millisecond):
	}

	pinger.set(false)
	select {
	case online := <-m.Events():
		if !online {
			t.Error("first transition = offline, want online")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no offline to online event")
	}
	if !m.Online() {
		t.Error("Online() = false after successful probe")
	}

	pinger.set(true)
	select {
	case online := <-m.Events():
		if online {
			t.Error("second transition = online, want offline")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no online to offline event")
	}
	if m.Online() {
		t.Error("Online() = true after failed probe")
	}
}

func TestProbeMonitor_StopHaltsProbing(t *testing.T) {
	pinger := &fakePinger{}
	m := NewProbeMonitor(pinger, 10*time.Millisecond)

	ctx := context.Background()
	m.Start(ctx)

	// Wait for the immediate first probe to land.
	deadline := time.After(2 * time.Second)
	for !m.Online() {
		select {
		case <-deadline:
			t.Fatal("monitor never came online")
		case <-time.After(5 * time.Millisecond):
		}
	}

	m.Stop()
	m.Stop() // second stop is a no-op
}
