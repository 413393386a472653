package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const probeTimeout = 3 * time.Second

// Probe checks one dependency. Check returns nil when it is reachable.
type Probe struct {
	Name  string
	Check func(ctx context.Context) error
}

// Monitor runs its probes on a cron schedule and caches the results for the
// health endpoint.
type Monitor struct {
	probes   []Probe
	interval time.Duration
	cron     *cron.Cron
	logger   *zap.Logger
	now      func() time.Time

	mu     sync.RWMutex
	status Status
}

func New(interval time.Duration, logger *zap.Logger, probes ...Probe) *Monitor {
	if interval < time.Second {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		probes:   probes,
		interval: interval,
		cron:     cron.New(cron.WithSeconds()),
		logger:   logger,
		now:      time.Now,
	}
}

// Start runs the probes once synchronously and then schedules them.
func (m *Monitor) Start() error {
	m.Refresh(context.Background())

	schedule := fmt.Sprintf("@every %ds", int(m.interval.Seconds()))
	if _, err := m.cron.AddFunc(schedule, func() {
		m.Refresh(context.Background())
	}); err != nil {
		return fmt.Errorf("schedule health checks: %w", err)
	}
	m.cron.Start()
	m.logger.Info("health monitor started", zap.Duration("interval", m.interval))
	return nil
}

// Stop halts the scheduler and waits for a running refresh or ctx expiry.
func (m *Monitor) Stop(ctx context.Context) {
	stopCtx := m.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
}

// Refresh probes every dependency and replaces the cached status.
func (m *Monitor) Refresh(ctx context.Context) Status {
	services := make(map[string]ServiceStatus, len(m.probes))
	for _, probe := range m.probes {
		services[probe.Name] = m.run(ctx, probe)
	}
	status := Status{Services: services, LastCheck: m.now().UTC()}

	m.mu.Lock()
	m.status = status
	m.mu.Unlock()
	return status
}

func (m *Monitor) run(ctx context.Context, probe Probe) ServiceStatus {
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	result := ServiceStatus{Healthy: true, CheckedAt: m.now().UTC()}
	if err := probe.Check(probeCtx); err != nil {
		m.logger.Warn("dependency unhealthy", zap.String("service", probe.Name), zap.Error(err))
		result.Healthy = false
		result.Error = err.Error()
	}
	return result
}

// GetStatus returns a copy of the latest cached status.
func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := Status{
		Services:  make(map[string]ServiceStatus, len(m.status.Services)),
		LastCheck: m.status.LastCheck,
	}
	for name, svc := range m.status.Services {
		out.Services[name] = svc
	}
	return out
}
