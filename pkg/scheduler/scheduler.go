// Package scheduler runs schedule-triggered workflows on their cron expressions.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dukex/classflow/pkg/models"
	"github.com/dukex/classflow/pkg/persistence"
	"github.com/robfig/cron/v3"
)

// Runner starts a workflow run. The run itself continues in the background.
type Runner interface {
	Execute(ctx context.Context, workflowID, triggeredBy string, initial map[string]any) (*models.Execution, error)
}

const jobPrefix = "workflow-"

var parser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Job describes a registered schedule.
type Job struct {
	Name       string    `json:"name"`
	WorkflowID string    `json:"workflowId"`
	Spec       string    `json:"spec"`
	Next       time.Time `json:"next"`
}

type entry struct {
	id   cron.EntryID
	spec string
}

type Scheduler struct {
	cron      *cron.Cron
	workflows persistence.WorkflowRepository
	runner    Runner
	logger    *slog.Logger

	mu   sync.Mutex
	jobs map[string]entry
}

func New(workflows persistence.WorkflowRepository, runner Runner, logger *slog.Logger) *Scheduler {
	logger = logger.With("module", "scheduler")

	return &Scheduler{
		cron: cron.New(
			cron.WithParser(parser),
			cron.WithChain(cron.Recover(cronLogger{logger})),
		),
		workflows: workflows,
		runner:    runner,
		logger:    logger,
		jobs:      make(map[string]entry),
	}
}

// JobName is the deterministic job key of a workflow.
func JobName(workflowID string) string {
	return jobPrefix + workflowID
}

// Spec returns the cron spec for trigger, carrying its timezone when one is set.
func Spec(trigger models.Trigger) string {
	expr := trigger.CronExpression()
	if expr == "" {
		return ""
	}

	if trigger.Config.Timezone != "" {
		return "CRON_TZ=" + trigger.Config.Timezone + " " + expr
	}

	return expr
}

// Validate reports whether trigger carries a cron expression and timezone the scheduler accepts.
func Validate(trigger models.Trigger) error {
	spec := Spec(trigger)
	if spec == "" {
		return models.ErrMissingCron
	}

	if _, err := parser.Parse(spec); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", spec, err)
	}

	return nil
}

// Register schedules wf, replacing any job already registered for it.
func (s *Scheduler) Register(wf *models.Workflow) error {
	spec := Spec(wf.Trigger)
	if spec == "" {
		return fmt.Errorf("workflow %s: %w", wf.ID, models.ErrMissingCron)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	name := JobName(wf.ID)

	if existing, ok := s.jobs[name]; ok {
		if existing.spec == spec {
			return nil
		}

		s.cron.Remove(existing.id)
		delete(s.jobs, name)
	}

	workflowID := wf.ID

	id, err := s.cron.AddFunc(spec, func() { s.fire(workflowID) })
	if err != nil {
		return fmt.Errorf("schedule workflow %s: %w", wf.ID, err)
	}

	s.jobs[name] = entry{id: id, spec: spec}
	s.logger.Info("Workflow scheduled", "workflow_id", wf.ID, "job", name, "spec", spec)

	return nil
}

// Unregister removes the job of workflowID. It reports whether one was registered.
func (s *Scheduler) Unregister(workflowID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := JobName(workflowID)

	existing, ok := s.jobs[name]
	if !ok {
		return false
	}

	s.cron.Remove(existing.id)
	delete(s.jobs, name)
	s.logger.Info("Workflow unscheduled", "workflow_id", workflowID, "job", name)

	return true
}

// Sync registers every active schedule workflow and drops jobs whose workflow is gone,
// inactive or no longer scheduled. A workflow with an invalid expression is logged and skipped.
func (s *Scheduler) Sync(ctx context.Context) error {
	workflows, err := s.workflows.FindActiveByTrigger(ctx, models.TriggerSchedule)
	if err != nil {
		return fmt.Errorf("load scheduled workflows: %w", err)
	}

	wanted := make(map[string]bool, len(workflows))

	for _, wf := range workflows {
		if wf.Trigger.CronExpression() == "" {
			continue
		}

		if err := s.Register(wf); err != nil {
			s.logger.Error("Failed to schedule workflow", "workflow_id", wf.ID, "error", err)

			continue
		}

		wanted[JobName(wf.ID)] = true
	}

	for _, job := range s.Jobs() {
		if !wanted[job.Name] {
			s.Unregister(job.WorkflowID)
		}
	}

	return nil
}

func (s *Scheduler) Start() {
	s.logger.Info("Starting scheduler")
	s.cron.Start()
}

// Stop halts the cron loop and waits for ticks already being dispatched.
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler")
	<-s.cron.Stop().Done()
}

// Jobs lists the registered jobs ordered by name.
func (s *Scheduler) Jobs() []Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobs := make([]Job, 0, len(s.jobs))

	for name, e := range s.jobs {
		jobs = append(jobs, Job{
			Name:       name,
			WorkflowID: strings.TrimPrefix(name, jobPrefix),
			Spec:       e.spec,
			Next:       s.cron.Entry(e.id).Next,
		})
	}

	slices.SortFunc(jobs, func(a, b Job) int { return strings.Compare(a.Name, b.Name) })

	return jobs
}

// fire starts one run. Runs of the same workflow may overlap.
func (s *Scheduler) fire(workflowID string) {
	logger := s.logger.With("workflow_id", workflowID)
	logger.Info("Cron job triggered")

	execution, err := s.runner.Execute(context.Background(), workflowID, models.TriggeredByScheduler, map[string]any{})
	if err != nil {
		logger.Error("Failed to start scheduled run", "error", err)

		return
	}

	logger.Debug("Scheduled run started", "execution_id", execution.ID)
}

// cronLogger routes robfig/cron messages to slog.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}
