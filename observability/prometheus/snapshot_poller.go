package prometheus

import (
	"context"
	"sync"
	"time"

	"github.com/corvidlabs/workerpool/core"
	prom "github.com/prometheus/client_golang/prometheus"
)

// PoolSnapshotProvider provides current pool stats snapshots. *core.ThreadPool
// satisfies this via its Stats method.
type PoolSnapshotProvider interface {
	Stats() core.PoolStats
}

// SnapshotPoller periodically exports ThreadPool.Stats() snapshots into
// Prometheus gauges, for pools whose MetricsExporter hook alone can't carry
// point-in-time state (queue depth, worker counts, running state) between
// events.
type SnapshotPoller struct {
	interval time.Duration

	poolsMu sync.RWMutex
	pools   map[string]PoolSnapshotProvider

	poolQueueSize    *prom.GaugeVec
	poolMaxQueueSize *prom.GaugeVec
	poolWorkersTotal *prom.GaugeVec
	poolWorkersIdle  *prom.GaugeVec
	poolWorkersBusy  *prom.GaugeVec
	poolRunning      *prom.GaugeVec

	stateMu sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewSnapshotPoller creates a snapshot poller and registers its collectors.
func NewSnapshotPoller(reg prom.Registerer, interval time.Duration) (*SnapshotPoller, error) {
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	if interval <= 0 {
		interval = time.Second
	}

	poolQueueSize := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "workerpool",
		Name:      "pool_queue_size",
		Help:      "Queued tasks per pool.",
	}, []string{"pool"})
	poolMaxQueueSize := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "workerpool",
		Name:      "pool_max_queue_size",
		Help:      "Configured queue capacity per pool.",
	}, []string{"pool"})
	poolWorkersTotal := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "workerpool",
		Name:      "pool_workers_total",
		Help:      "Total worker count per pool (permanent + transient).",
	}, []string{"pool"})
	poolWorkersIdle := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "workerpool",
		Name:      "pool_workers_idle",
		Help:      "Idle worker count per pool.",
	}, []string{"pool"})
	poolWorkersBusy := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "workerpool",
		Name:      "pool_workers_active",
		Help:      "Active worker count per pool.",
	}, []string{"pool"})
	poolRunning := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "workerpool",
		Name:      "pool_running",
		Help:      "Pool running state (1=running, 0=not running).",
	}, []string{"pool"})

	var err error
	if poolQueueSize, err = registerCollector(reg, poolQueueSize); err != nil {
		return nil, err
	}
	if poolMaxQueueSize, err = registerCollector(reg, poolMaxQueueSize); err != nil {
		return nil, err
	}
	if poolWorkersTotal, err = registerCollector(reg, poolWorkersTotal); err != nil {
		return nil, err
	}
	if poolWorkersIdle, err = registerCollector(reg, poolWorkersIdle); err != nil {
		return nil, err
	}
	if poolWorkersBusy, err = registerCollector(reg, poolWorkersBusy); err != nil {
		return nil, err
	}
	if poolRunning, err = registerCollector(reg, poolRunning); err != nil {
		return nil, err
	}

	return &SnapshotPoller{
		interval:         interval,
		pools:            make(map[string]PoolSnapshotProvider),
		poolQueueSize:    poolQueueSize,
		poolMaxQueueSize: poolMaxQueueSize,
		poolWorkersTotal: poolWorkersTotal,
		poolWorkersIdle:  poolWorkersIdle,
		poolWorkersBusy:  poolWorkersBusy,
		poolRunning:      poolRunning,
	}, nil
}

// AddPool adds or replaces a pool snapshot provider by name.
func (p *SnapshotPoller) AddPool(name string, provider PoolSnapshotProvider) {
	if p == nil || provider == nil {
		return
	}
	name = normalizeLabel(name, "pool")
	p.poolsMu.Lock()
	p.pools[name] = provider
	p.poolsMu.Unlock()
}

// Start begins periodic polling; repeated calls are no-ops.
func (p *SnapshotPoller) Start(ctx context.Context) {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if p.running {
		p.stateMu.Unlock()
		return
	}
	pollCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.running = true
	p.stateMu.Unlock()

	go p.loop(pollCtx)
}

// Stop stops periodic polling; repeated calls are safe.
func (p *SnapshotPoller) Stop() {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if !p.running {
		p.stateMu.Unlock()
		return
	}
	cancel := p.cancel
	done := p.done
	p.stateMu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}

	p.stateMu.Lock()
	p.running = false
	p.cancel = nil
	p.done = nil
	p.stateMu.Unlock()
}

func (p *SnapshotPoller) loop(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.collectOnce()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.collectOnce()
		}
	}
}

func (p *SnapshotPoller) collectOnce() {
	p.poolsMu.RLock()
	defer p.poolsMu.RUnlock()

	for name, provider := range p.pools {
		stats := provider.Stats()
		p.poolQueueSize.WithLabelValues(name).Set(float64(stats.QueueSize))
		p.poolMaxQueueSize.WithLabelValues(name).Set(float64(stats.MaxQueueSize))
		p.poolWorkersTotal.WithLabelValues(name).Set(float64(stats.NumThreads))
		p.poolWorkersIdle.WithLabelValues(name).Set(float64(stats.IdleThreads))
		p.poolWorkersBusy.WithLabelValues(name).Set(float64(stats.ActiveThreads))
		if stats.State == core.StateRunning {
			p.poolRunning.WithLabelValues(name).Set(1)
		} else {
			p.poolRunning.WithLabelValues(name).Set(0)
		}
	}
}
