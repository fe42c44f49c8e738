package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

const JobSessionPurge = "session_purge"

const historySize = 32

type RunFunc func(context.Context) (any, error)

// Run is one finished job execution.
type Run struct {
	Type       string    `json:"type"`
	Status     string    `json:"status"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	Details    any       `json:"details,omitempty"`
	Error      string    `json:"error,omitempty"`
}

// Service runs jobs on a single worker goroutine. Scheduled jobs are fed to
// the worker by a cron scheduler; RunNow executes inline.
type Service struct {
	cron  *cron.Cron
	queue chan job

	mu      sync.Mutex
	history []Run
}

type job struct {
	Type string
	Run  RunFunc
}

func New() *Service {
	return &Service{
		cron:  cron.New(),
		queue: make(chan job, 128),
	}
}

// Schedule registers run under a standard cron spec or descriptor such as "@every 1h".
func (s *Service) Schedule(spec, jobType string, run RunFunc) error {
	if _, err := s.cron.AddFunc(spec, func() { s.Enqueue(jobType, run) }); err != nil {
		return fmt.Errorf("schedule %s: %w", jobType, err)
	}
	return nil
}

// Start launches the worker and the scheduler. Both stop when ctx is done.
func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
	s.cron.Start()
	go func() {
		<-ctx.Done()
		<-s.cron.Stop().Done()
	}()
}

func (s *Service) Enqueue(jobType string, run RunFunc) {
	select {
	case s.queue <- job{Type: jobType, Run: run}:
	default:
		slog.Warn("job queue full", "jobType", jobType)
	}
}

func (s *Service) RunNow(ctx context.Context, jobType string, run RunFunc) (any, error) {
	return s.runJob(ctx, job{Type: jobType, Run: run})
}

// History returns the most recent runs, newest last.
func (s *Service) History() []Run {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Run, len(s.history))
	copy(out, s.history)
	return out
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "err", err)
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	run := Run{Type: j.Type, StartedAt: time.Now().UTC()}
	details, err := j.Run(ctx)
	run.FinishedAt = time.Now().UTC()
	run.Details = details
	run.Status = "completed"
	if err != nil {
		run.Status = "failed"
		run.Error = err.Error()
	}
	slog.Info("job finished", "jobType", j.Type, "status", run.Status, "durationMs", run.FinishedAt.Sub(run.StartedAt).Milliseconds())

	s.mu.Lock()
	s.history = append(s.history, run)
	if len(s.history) > historySize {
		s.history = s.history[len(s.history)-historySize:]
	}
	s.mu.Unlock()
	return details, err
}
