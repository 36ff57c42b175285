// Package reachability tracks network availability and interface type. The
// Monitor is push-based: transitions come from whoever watches the platform
// network stack (the Prober here, a system callback elsewhere), and only a
// transition into Wi-Fi is announced to listeners. Cellular reachability
// stays quiet so photo-bearing uploads never auto-start on a metered
// connection.
package reachability

import (
	"context"
	"sync"

	"github.com/keepsakeapp/keepsake/internal/logging"
)

type Status int

const (
	Unknown Status = iota
	Unreachable
	Cellular
	WiFi
)

func (s Status) String() string {
	switch s {
	case Unreachable:
		return "unreachable"
	case Cellular:
		return "cellular"
	case WiFi:
		return "wifi"
	default:
		return "unknown"
	}
}

type Monitor struct {
	log logging.Logger

	mu     sync.Mutex
	status Status
	onWiFi []func()
}

func NewMonitor(log logging.Logger) *Monitor {
	return &Monitor{log: log, status: Unknown}
}

// OnWiFi registers a listener fired on every transition into WiFi.
func (m *Monitor) OnWiFi(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onWiFi = append(m.onWiFi, fn)
}

// Status returns the current reachability state.
func (m *Monitor) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Update records a pushed transition. Listeners fire only when the state
// actually changes into WiFi; same-state updates and all other transitions
// are silent.
func (m *Monitor) Update(s Status) {
	m.mu.Lock()
	prev := m.status
	m.status = s
	var fire []func()
	if s == WiFi && prev != WiFi {
		fire = append(fire, m.onWiFi...)
	}
	m.mu.Unlock()

	if prev != s {
		m.log.Info(context.Background(), "reachability changed", "from", prev.String(), "to", s.String())
	}
	for _, fn := range fire {
		fn()
	}
}
