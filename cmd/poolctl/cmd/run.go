package cmd

import (
	"context"
	"fmt"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"github.com/corvidlabs/workerpool/core"
)

var (
	flagName         string
	flagMinThreads   int
	flagMaxThreads   int
	flagMaxQueueSize int
	flagIdleTimeout  time.Duration
	flagJobs         int
	flagJobDuration  time.Duration
	flagStatsEvery   time.Duration
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "build a pool, submit synthetic jobs, and print live stats",
	RunE:  runRun,
}

func init() {
	runCmd.Flags().StringVar(&flagName, "name", "poolctl", "pool name")
	runCmd.Flags().IntVar(&flagMinThreads, "min", 0, "min_threads")
	runCmd.Flags().IntVar(&flagMaxThreads, "max", 4, "max_threads")
	runCmd.Flags().IntVar(&flagMaxQueueSize, "queue", 1000, "max_queue_size")
	runCmd.Flags().DurationVar(&flagIdleTimeout, "idle-timeout", core.DefaultIdleTimeout, "idle_timeout")
	runCmd.Flags().IntVar(&flagJobs, "jobs", 50, "number of synthetic jobs to submit")
	runCmd.Flags().DurationVar(&flagJobDuration, "job-duration", 50*time.Millisecond, "approximate duration of each synthetic job")
	runCmd.Flags().DurationVar(&flagStatsEvery, "stats-every", 250*time.Millisecond, "interval between printed stats lines")
}

func runRun(cmd *cobra.Command, args []string) error {
	b := core.NewBuilder(flagName)
	b.MinThreads = flagMinThreads
	b.MaxThreads = flagMaxThreads
	b.MaxQueueSize = flagMaxQueueSize
	b.IdleTimeout = flagIdleTimeout
	b.Config.Logger = core.NewDefaultLogger()

	if configPath != "" {
		fileCfg, err := loadPoolConfig(configPath)
		if err != nil {
			return err
		}
		applyFileConfig(b, fileCfg)
	}

	pool, err := b.Build()
	if err != nil {
		return fmt.Errorf("building pool: %w", err)
	}
	defer pool.Shutdown()

	fmt.Printf("pool %q running: min=%d max=%d queue=%d idle_timeout=%s\n",
		pool.Name(), b.MinThreads, b.MaxThreads, b.MaxQueueSize, b.IdleTimeout)

	statsCtx, cancelStats := context.WithCancel(context.Background())
	defer cancelStats()
	go printStatsLoop(statsCtx, pool, flagStatsEvery)

	var submitted, rejected atomic.Int64
	for i := 0; i < flagJobs; i++ {
		jobID := i
		err := pool.SubmitFunc(context.Background(), func(ctx context.Context) {
			jitter := time.Duration(rand.Int63n(int64(flagJobDuration) + 1))
			time.Sleep(flagJobDuration/2 + jitter/2)
			_ = jobID
		})
		if err != nil {
			rejected.Add(1)
			fmt.Printf("job %d rejected: %v\n", jobID, err)
			continue
		}
		submitted.Add(1)
	}

	pool.Wait()
	cancelStats()

	fmt.Printf("done: submitted=%d rejected=%d\n", submitted.Load(), rejected.Load())
	return nil
}

func applyFileConfig(b *core.Builder, cfg poolConfig) {
	if cfg.Name != "" {
		b.Name = cfg.Name
	}
	if cfg.MinThreads > 0 {
		b.MinThreads = cfg.MinThreads
	}
	if cfg.MaxThreads > 0 {
		b.MaxThreads = cfg.MaxThreads
	}
	if cfg.MaxQueueSize > 0 {
		b.MaxQueueSize = cfg.MaxQueueSize
	}
	if d, err := cfg.idleTimeoutDuration(); err == nil && d > 0 {
		b.IdleTimeout = d
	}
}

func printStatsLoop(ctx context.Context, pool *core.ThreadPool, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s := pool.Stats()
			fmt.Printf("stats: threads=%d active=%d queue=%d/%d state=%s\n",
				s.NumThreads, s.ActiveThreads, s.QueueSize, s.MaxQueueSize, s.State)
		}
	}
}
