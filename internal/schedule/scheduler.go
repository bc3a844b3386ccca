package schedule

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/fieldorder/internal/metrics"
)

type Job interface {
	Name() string
	Run(ctx context.Context) error
}

type Option func(*CronScheduler)

// WithRunTimeout bounds a single run. Zero leaves runs unbounded.
func WithRunTimeout(d time.Duration) Option {
	return func(s *CronScheduler) {
		s.runTimeout = d
	}
}

// CronScheduler runs housekeeping jobs on five-field cron specs. A run that
// is still going when its next tick fires is skipped, never overlapped.
type CronScheduler struct {
	cron       *cron.Cron
	entries    map[string]cron.EntryID
	runTimeout time.Duration
	ctx        context.Context
}

func NewCronScheduler(opts ...Option) *CronScheduler {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	s := &CronScheduler{
		cron:    cron.New(cron.WithParser(parser)),
		entries: make(map[string]cron.EntryID),
		ctx:     context.Background(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *CronScheduler) AddJob(job Job, spec string) error {
	name := job.Name()
	if _, ok := s.entries[name]; ok {
		return fmt.Errorf("job %s already scheduled", name)
	}
	logger := logutil.GetLogger(context.Background()).With(zap.String("job", name), zap.String("spec", spec))
	entryID, err := s.cron.AddFunc(spec, s.guard(job))
	if err != nil {
		logger.Error("schedule job failed", zap.Error(err))
		return err
	}
	s.entries[name] = entryID
	logger.Info("job scheduled", zap.Time("next", s.cron.Entry(entryID).Schedule.Next(time.Now())))
	return nil
}

// Start hands ctx to every run; cancelling it cancels in-flight jobs.
func (s *CronScheduler) Start(ctx context.Context) {
	if ctx != nil {
		s.ctx = ctx
	}
	s.cron.Start()
}

// Stop waits for running jobs to return.
func (s *CronScheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *CronScheduler) guard(job Job) func() {
	var running atomic.Bool
	return func() {
		if !running.CompareAndSwap(false, true) {
			metrics.JobRuns.WithLabelValues(job.Name(), "skipped").Inc()
			logutil.GetLogger(s.ctx).Info("job skipped: still running", zap.String("job", job.Name()))
			return
		}
		defer running.Store(false)
		s.runOnce(job)
	}
}

func (s *CronScheduler) runOnce(job Job) {
	ctx := s.ctx
	if s.runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.runTimeout)
		defer cancel()
	}
	logger := logutil.GetLogger(ctx).With(zap.String("job", job.Name()))
	start := time.Now()
	err := job.Run(ctx)
	elapsed := time.Since(start)
	metrics.JobDuration.WithLabelValues(job.Name()).Observe(elapsed.Seconds())
	if err != nil {
		metrics.JobRuns.WithLabelValues(job.Name(), "error").Inc()
		logger.Error("job failed", zap.Error(err), zap.Duration("duration", elapsed))
		return
	}
	metrics.JobRuns.WithLabelValues(job.Name(), "ok").Inc()
	logger.Info("job finished", zap.Duration("duration", elapsed))
}
