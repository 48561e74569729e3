package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	apporder "github.com/marketplace/backend/internal/application/order"
	"github.com/marketplace/backend/internal/infrastructure/config"
)

const defaultReleaseTimeout = 10 * time.Minute

// Releaser releases the earnings of delivered orders that are past the hold period
type Releaser interface {
	ReleaseDue(ctx context.Context) (apporder.ReleaseResult, error)
}

// EarningsReleaseJob runs the earnings release on a cron schedule.
// Overlapping runs are skipped; a second instance running in another
// process is harmless because every order is released under a row lock.
type EarningsReleaseJob struct {
	releaser Releaser
	spec     string
	timeout  time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	entryID cron.EntryID
}

// NewEarningsReleaseJob creates a job from the scheduler configuration
func NewEarningsReleaseJob(releaser Releaser, cfg config.SchedulerConfig, logger *zap.Logger) *EarningsReleaseJob {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.EarningsReleaseTimeout
	if timeout <= 0 {
		timeout = defaultReleaseTimeout
	}
	spec := cfg.EarningsReleaseCron
	if spec == "" {
		spec = "@hourly"
	}
	return &EarningsReleaseJob{
		releaser: releaser,
		spec:     spec,
		timeout:  timeout,
		logger:   logger.Named("earnings-release"),
	}
}

// Spec returns the cron expression the job is scheduled with
func (j *EarningsReleaseJob) Spec() string {
	return j.spec
}

// Start registers the job and starts the cron runner
func (j *EarningsReleaseJob) Start() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.cron != nil {
		return ErrSchedulerAlreadyRunning
	}

	c := cron.New(
		cron.WithLogger(cronLogger{logger: j.logger}),
		cron.WithChain(
			cron.Recover(cronLogger{logger: j.logger}),
			cron.SkipIfStillRunning(cronLogger{logger: j.logger}),
		),
	)
	id, err := c.AddFunc(j.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
		defer cancel()
		_, _ = j.RunOnce(ctx)
	})
	if err != nil {
		return fmt.Errorf("%w: cron spec %q: %v", ErrInvalidConfig, j.spec, err)
	}

	j.cron = c
	j.entryID = id
	c.Start()

	j.logger.Info("Earnings release job started",
		zap.String("spec", j.spec),
		zap.Duration("timeout", j.timeout),
		zap.Time("next_run", c.Entry(id).Next))
	return nil
}

// Stop stops the runner and waits for a running release to finish or for ctx to expire
func (j *EarningsReleaseJob) Stop(ctx context.Context) error {
	j.mu.Lock()
	c := j.cron
	j.cron = nil
	j.mu.Unlock()

	if c == nil {
		return ErrSchedulerNotRunning
	}

	done := c.Stop()
	select {
	case <-done.Done():
		j.logger.Info("Earnings release job stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NextRun returns the next scheduled run, or the zero time when stopped
func (j *EarningsReleaseJob) NextRun() time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.cron == nil {
		return time.Time{}
	}
	return j.cron.Entry(j.entryID).Next
}

// RunOnce performs a single release pass
func (j *EarningsReleaseJob) RunOnce(ctx context.Context) (apporder.ReleaseResult, error) {
	start := time.Now()
	result, err := j.releaser.ReleaseDue(ctx)
	if err != nil {
		j.logger.Error("Earnings release run failed",
			zap.Duration("duration", time.Since(start)),
			zap.Error(err))
		return result, err
	}

	fields := []zap.Field{
		zap.Int("scanned", result.Scanned),
		zap.Int("released", result.Released),
		zap.Int("failed", result.Failed),
		zap.Duration("duration", time.Since(start)),
	}
	if result.Failed > 0 {
		j.logger.Warn("Earnings release run finished with failures", fields...)
	} else {
		j.logger.Info("Earnings release run finished", fields...)
	}
	return result, nil
}

// cronLogger adapts zap to cron.Logger
type cronLogger struct {
	logger *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
