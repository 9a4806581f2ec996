// Package connectivity observes the runtime's online/offline state and
// emits transition events.
//
// The monitor polls a live connectivity signal (a Prober) and reports
// edges only: repeated signals of the same state do not re-fire
// callbacks. The initial state is unknown, so a probe that finds the
// process already offline at startup counts as a transition to offline.
//
// IsOnline always re-probes the live signal rather than trusting the
// cached flag; a cached flag can lag reality, and status computations
// treat the live signal as the final arbiter.
package connectivity

import (
	"context"
	"log"
	"net"
	"net/url"
	"os"
	"sync"
	"time"
)

// Prober is the live connectivity signal.
type Prober interface {
	// Probe reports whether the network is currently reachable.
	Probe(ctx context.Context) bool
}

// DialProber checks reachability by opening a TCP connection to Addr.
type DialProber struct {
	Addr    string
	Timeout time.Duration
}

// NewDialProber builds a prober that dials the host of the given server
// URL. A missing port defaults from the scheme (80/443).
func NewDialProber(serverURL string, timeout time.Duration) (*DialProber, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, err
	}

	host := u.Host
	if u.Port() == "" {
		port := "80"
		if u.Scheme == "https" {
			port = "443"
		}
		host = net.JoinHostPort(u.Hostname(), port)
	}

	return &DialProber{Addr: host, Timeout: timeout}, nil
}

// Probe implements Prober.
func (p *DialProber) Probe(ctx context.Context) bool {
	d := net.Dialer{Timeout: p.Timeout}
	conn, err := d.DialContext(ctx, "tcp", p.Addr)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// Config holds monitor configuration.
type Config struct {
	// ProbeInterval is how often the background loop re-probes.
	ProbeInterval time.Duration

	// ProbeTimeout bounds a single probe.
	ProbeTimeout time.Duration

	// Logger for monitor activity.
	Logger *log.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		ProbeInterval: 5 * time.Second,
		ProbeTimeout:  2 * time.Second,
		Logger:        log.New(os.Stderr, "[connectivity] ", log.LstdFlags),
	}
}

// Monitor tracks connectivity and notifies subscribers on transitions.
type Monitor struct {
	prober Prober
	config *Config

	mu        sync.Mutex
	known     *bool // nil until the first probe completes
	onOnline  []func()
	onOffline []func()

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Monitor. Subscribers should be registered before Start.
func New(prober Prober, config *Config) *Monitor {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Logger == nil {
		config.Logger = log.New(os.Stderr, "[connectivity] ", log.LstdFlags)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Monitor{
		prober: prober,
		config: config,
		ctx:    ctx,
		cancel: cancel,
	}
}

// OnOnline registers a callback fired on the offline-to-online edge.
func (m *Monitor) OnOnline(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onOnline = append(m.onOnline, fn)
}

// OnOffline registers a callback fired on the online-to-offline edge,
// including the initial unknown-to-offline edge at startup.
func (m *Monitor) OnOffline(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onOffline = append(m.onOffline, fn)
}

// Start probes once immediately, then keeps probing on the configured
// interval until Stop is called.
func (m *Monitor) Start() {
	m.wg.Add(1)
	go m.loop()
}

// Stop shuts down the background loop.
func (m *Monitor) Stop() {
	m.cancel()
	m.wg.Wait()
}

// IsOnline re-reads the live signal and returns it. The result is also
// folded into edge detection, so a drop discovered here fires the same
// callbacks the background loop would.
func (m *Monitor) IsOnline() bool {
	ctx, cancel := context.WithTimeout(context.Background(), m.config.ProbeTimeout)
	defer cancel()

	online := m.prober.Probe(ctx)
	m.observe(online)
	return online
}

func (m *Monitor) loop() {
	defer m.wg.Done()

	probe := func() {
		ctx, cancel := context.WithTimeout(m.ctx, m.config.ProbeTimeout)
		online := m.prober.Probe(ctx)
		cancel()
		m.observe(online)
	}

	probe()

	ticker := time.NewTicker(m.config.ProbeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			probe()
		}
	}
}

// observe folds a probe result into the edge detector. Callbacks fire
// outside the lock and only on actual transitions.
func (m *Monitor) observe(online bool) {
	m.mu.Lock()

	transition := m.known == nil || *m.known != online
	state := online
	m.known = &state

	var fire []func()
	if transition {
		if online {
			fire = append(fire, m.onOnline...)
		} else {
			fire = append(fire, m.onOffline...)
		}
	}
	m.mu.Unlock()

	if transition {
		if online {
			m.config.Logger.Printf("Became online")
		} else {
			m.config.Logger.Printf("Became offline")
		}
	}
	for _, fn := range fire {
		fn()
	}
}
