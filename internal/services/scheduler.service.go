package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"chartintel/internal/types"
	"chartintel/internal/utils"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/go-co-op/gocron"
)

type Schedule = types.Schedule

const (
	Hourly          = types.Hourly
	Daily           = types.Daily
	DailyProcessing = types.DailyProcessing
	Weekly          = types.Weekly
)

// Job represents a scheduled task that can be executed by the scheduler
type Job interface {
	// Name identifies the job in logs, status and manual triggers.
	Name() string

	// Execute runs one firing. ctx is cancelled when the scheduler stops.
	Execute(ctx context.Context) error
	Schedule() Schedule
}

type JobStatus struct {
	Name      string     `json:"name"`
	Schedule  string     `json:"schedule"`
	Armed     bool       `json:"armed"`
	Running   bool       `json:"running"`
	NextRun   *time.Time `json:"nextRun,omitempty"`
	LastRun   *time.Time `json:"lastRun,omitempty"`
	LastError string     `json:"lastError,omitempty"`
}

type jobState struct {
	running   bool
	lastRun   *time.Time
	lastError string
}

type SchedulerService struct {
	scheduler *gocron.Scheduler
	jobs      []Job
	state     map[string]*jobState
	log       logger.Logger
	started   bool
	mu        sync.Mutex
	ctx       context.Context
	cancel    context.CancelFunc
}

func NewSchedulerService() *SchedulerService {
	return &SchedulerService{
		jobs:   make([]Job, 0),
		state:  make(map[string]*jobState),
		log:    logger.New("scheduler"),
		ctx:    context.Background(),
		cancel: func() {},
	}
}

// executeJob is the job boundary: errors and panics are logged and recorded,
// never propagated, so the next firing is unaffected.
func (s *SchedulerService) executeJob(ctx context.Context, job Job) {
	log := s.log.Function("executeJob")

	state := s.markRunning(job.Name())
	if state == nil {
		log.Warn("Job already running, skipping", "job", job.Name())
		return
	}

	var err error
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
		s.markFinished(job.Name(), err)

		if err != nil {
			log.Er("Job execution failed", err, "job", job.Name())
			return
		}
		log.Info("Job execution completed successfully", "job", job.Name())
	}()

	log.Info("Executing scheduled job", "job", job.Name())
	err = job.Execute(ctx)
}

func (s *SchedulerService) markRunning(name string) *jobState {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.state[name]
	if state.running {
		return nil
	}
	state.running = true
	return state
}

func (s *SchedulerService) markFinished(name string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	state := s.state[name]
	state.running = false
	state.lastRun = &now
	state.lastError = ""
	if err != nil {
		state.lastError = err.Error()
	}
}

// register adds job to a gocron scheduler under its name as tag. Every
// firing runs with ctx, which Stop cancels.
func (s *SchedulerService) register(ctx context.Context, scheduler *gocron.Scheduler, job Job) error {
	task := func() { s.executeJob(ctx, job) }

	var err error
	switch job.Schedule() {
	case Hourly:
		_, err = scheduler.Every(1).Hour().StartImmediately().Tag(job.Name()).Do(task)
	case Daily:
		_, err = scheduler.Every(1).Day().At("02:00").Tag(job.Name()).Do(task)
	case DailyProcessing:
		_, err = scheduler.Every(1).Day().At("03:00").Tag(job.Name()).Do(task)
	case Weekly:
		_, err = scheduler.Every(1).Week().Sunday().At("04:00").Tag(job.Name()).Do(task)
	default:
		err = fmt.Errorf("unknown schedule %d", job.Schedule())
	}
	return err
}

// AddJob registers a job. Names must be unique. Jobs added while running
// are armed immediately.
func (s *SchedulerService) AddJob(job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.log.Function("AddJob")

	if _, exists := s.state[job.Name()]; exists {
		return log.Error("job already registered", "job", job.Name())
	}

	if s.started {
		if err := s.register(s.ctx, s.scheduler, job); err != nil {
			return log.Err("failed to register job with scheduler", err, "job", job.Name())
		}
	}

	s.jobs = append(s.jobs, job)
	s.state[job.Name()] = &jobState{}
	log.Info("Job registered successfully", "job", job.Name(), "schedule", job.Schedule().String())

	return nil
}

// Start arms every registered job on a fresh gocron scheduler, so a stopped
// service can be started again. Starting a running scheduler is a no-op.
func (s *SchedulerService) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.log.Function("Start")

	if s.started {
		log.Warn("Scheduler already started")
		return nil
	}

	scheduler := gocron.NewScheduler(time.UTC)
	scheduler.SingletonModeAll()

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	for _, job := range s.jobs {
		if err := s.register(runCtx, scheduler, job); err != nil {
			cancel()
			return log.Err("failed to register job with scheduler", err, "job", job.Name())
		}
	}

	s.ctx, s.cancel = runCtx, cancel
	s.scheduler = scheduler

	log.Info("Starting scheduler", "jobCount", len(s.jobs))
	scheduler.StartAsync()
	s.started = true

	for _, job := range scheduler.Jobs() {
		log.Info("Job scheduled", "job", job.Tags(), "nextRun", job.NextRun())
	}

	return nil
}

// Stop cancels running jobs and disarms the schedule, waiting for in-flight
// runs to return until ctx is done. Stopping a stopped scheduler is a no-op.
func (s *SchedulerService) Stop(ctx context.Context) error {
	log := s.log.Function("Stop")

	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		log.Info("Scheduler not started, nothing to stop")
		return nil
	}

	// Running jobs take s.mu when they finish, so the wait happens unlocked.
	scheduler, cancel := s.scheduler, s.cancel
	s.started = false
	s.ctx, s.cancel = context.Background(), func() {}
	s.mu.Unlock()

	log.Info("Stopping scheduler")
	cancel()

	stopped := make(chan struct{})
	go func() {
		scheduler.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		log.Info("Scheduler stopped successfully")
		return nil
	case <-ctx.Done():
		return log.Err("timed out waiting for running jobs to stop", ctx.Err())
	}
}

func (s *SchedulerService) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

func (s *SchedulerService) GetJobCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Status reports every registered job in registration order. Jobs that are
// not armed report when they would next fire once started.
func (s *SchedulerService) Status() []JobStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	nextRuns := make(map[string]time.Time)
	if s.started {
		for _, scheduled := range s.scheduler.Jobs() {
			for _, tag := range scheduled.Tags() {
				nextRuns[tag] = scheduled.NextRun()
			}
		}
	}

	statuses := make([]JobStatus, 0, len(s.jobs))
	for _, job := range s.jobs {
		state := s.state[job.Name()]
		status := JobStatus{
			Name:      job.Name(),
			Schedule:  job.Schedule().String(),
			Armed:     s.started,
			Running:   state.running,
			LastRun:   state.lastRun,
			LastError: state.lastError,
		}
		next, ok := nextRuns[job.Name()]
		if !ok || next.IsZero() {
			next = utils.NextRun(job.Schedule(), now)
		}
		if !next.IsZero() {
			status.NextRun = &next
		}
		statuses = append(statuses, status)
	}

	return statuses
}

// TriggerJobByName runs a registered job now, in the background. The run is
// detached from ctx so it outlives the caller's request.
func (s *SchedulerService) TriggerJobByName(ctx context.Context, jobName string) error {
	s.mu.Lock()
	log := s.log.Function("TriggerJobByName")

	var targetJob Job
	for _, job := range s.jobs {
		if job.Name() == jobName {
			targetJob = job
			break
		}
	}

	runCtx := context.WithoutCancel(ctx)
	if s.started {
		runCtx = s.ctx
	}
	s.mu.Unlock()

	if targetJob == nil {
		return log.Err("job not found", ErrJobNotFound, "job", jobName)
	}

	log.Info("Manually triggering job", "job", jobName)
	go s.executeJob(runCtx, targetJob)

	return nil
}
