// Package netx watches provider reachability. Reachability is a hint:
// it decides which login path is attempted first and when queued changes
// get pushed, never whether local operations are allowed.
package netx

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/planner/internal/logging"
)

const probeTimeout = 3 * time.Second

// Pinger is the minimal provider surface the monitor needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Monitor polls the provider and publishes online/offline transitions
// to subscribers. The zero state is offline until the first probe.
type Monitor struct {
	pinger   Pinger
	interval time.Duration
	log      logging.Logger

	mu     sync.Mutex
	online bool
	subs   []chan bool
}

func NewMonitor(pinger Pinger, interval time.Duration, log logging.Logger) *Monitor {
	return &Monitor{pinger: pinger, interval: interval, log: log}
}

// Start probes once immediately, then on every tick until ctx is done.
// It blocks; run it in a goroutine.
func (m *Monitor) Start(ctx context.Context) {
	m.Probe(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Probe(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// Probe performs a single reachability check and returns the new state.
func (m *Monitor) Probe(ctx context.Context) bool {
	pctx, cancel := context.WithTimeout(ctx, probeTimeout)
	err := m.pinger.Ping(pctx)
	cancel()

	online := err == nil
	m.setOnline(ctx, online)
	return online
}

func (m *Monitor) IsOnline() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Subscribe returns a channel that receives the new state on every
// online/offline transition. The channel is buffered; a slow subscriber
// misses intermediate flips but always ends on the latest state.
func (m *Monitor) Subscribe() <-chan bool {
	ch := make(chan bool, 1)
	m.mu.Lock()
	m.subs = append(m.subs, ch)
	m.mu.Unlock()
	return ch
}

func (m *Monitor) setOnline(ctx context.Context, online bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.online == online {
		return
	}
	m.online = online
	if online {
		m.log.Info(ctx, "provider reachable")
	} else {
		m.log.Info(ctx, "provider unreachable, switching to offline")
	}

	for _, ch := range m.subs {
		select {
		case ch <- online:
		default:
			// drop the stale value so the latest one fits
			select {
			case <-ch:
			default:
			}
			ch <- online
		}
	}
}
