package reachability

import (
	"context"
	"net"
	"strings"
	"time"
)

// Prober feeds the Monitor on platforms without a native reachability
// callback: it tickers a local interface check and pushes the classified
// result. The Monitor itself never polls; this is just one possible producer
// of transitions.
type Prober struct {
	monitor  *Monitor
	interval time.Duration
	classify func() Status
}

func NewProber(m *Monitor, interval time.Duration) *Prober {
	return &Prober{monitor: m, interval: interval, classify: classifyInterfaces}
}

// Run pushes an immediate reading, then one per tick until ctx is done.
func (p *Prober) Run(ctx context.Context) {
	p.monitor.Update(p.classify())

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.monitor.Update(p.classify())
		case <-ctx.Done():
			return
		}
	}
}

// classifyInterfaces inspects the up, non-loopback interfaces that carry an
// address. Cellular-looking names (wwan, rmnet, ppp) classify as Cellular;
// anything else with connectivity counts as WiFi-class (unmetered), which
// covers wired links on desktops.
func classifyInterfaces() Status {
	ifaces, err := net.Interfaces()
	if err != nil {
		return Unknown
	}

	status := Unreachable
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil || len(addrs) == 0 {
			continue
		}
		name := strings.ToLower(iface.Name)
		if strings.HasPrefix(name, "wwan") || strings.HasPrefix(name, "rmnet") || strings.HasPrefix(name, "ppp") {
			if status == Unreachable {
				status = Cellular
			}
			continue
		}
		return WiFi
	}
	return status
}
