package job

import (
	"errors"
	"strings"
	"time"

	"github.com/WatchBeam/clock"
	"github.com/sirupsen/logrus"
)

const msgNotFound = "Job not found"

// Outcomes reported to a Recorder.
const (
	OutcomeSuccess           = "success"
	OutcomeNotFound          = "not_found"
	OutcomeInvalidTransition = "invalid_transition"
	OutcomeError             = "error"
)

// Result is returned by every lifecycle operation.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Job     *Job   `json:"updatedJob,omitempty"`
	Err     error  `json:"-"`
}

// Event is published after a lifecycle operation succeeds.
type Event struct {
	Action Action `json:"action"`
	Job    Job    `json:"job"`
}

type Publisher interface {
	Publish(e Event)
}

type Recorder interface {
	RecordAction(action Action, outcome string)
}

type Options struct {
	Clock     clock.Clock
	Logger    logrus.FieldLogger
	Policy    Policy
	Publisher Publisher
	Recorder  Recorder
}

// Manager applies lifecycle transitions to jobs held by a Repository.
type Manager struct {
	repo   *Repository
	clock  clock.Clock
	log    logrus.FieldLogger
	policy Policy
	pub    Publisher
	rec    Recorder
}

func NewManager(repo *Repository, opts Options) *Manager {
	m := &Manager{
		repo:   repo,
		clock:  opts.Clock,
		log:    opts.Logger,
		policy: opts.Policy,
		pub:    opts.Publisher,
		rec:    opts.Recorder,
	}
	if m.clock == nil {
		m.clock = clock.C
	}
	if m.log == nil {
		m.log = logrus.StandardLogger()
	}
	return m
}

// Start moves a confirmed job en route.
func (m *Manager) Start(id string) Result {
	return m.apply(ActionStart, id, "Job started successfully", "Failed to start job",
		func(j *Job, now time.Time) {
			j.Status = StatusEnRoute
			j.StartedAt = timePtr(now)
		})
}

func (m *Manager) MarkOnSite(id string) Result {
	return m.apply(ActionMarkOnSite, id, "Job marked as on-site", "Failed to update job status",
		func(j *Job, now time.Time) {
			j.Status = StatusOnSite
			j.OnSiteAt = timePtr(now)
		})
}

// Pause remembers the current status so Resume can restore it. Pausing a job
// that is already paused keeps the status it was paused from.
func (m *Manager) Pause(id, reason string) Result {
	return m.apply(ActionPause, id, "Job paused", "Failed to pause job",
		func(j *Job, now time.Time) {
			if j.Status != StatusPaused {
				j.PreviousStatus = j.Status
			}
			j.Status = StatusPaused
			j.PausedAt = timePtr(now)
			j.PauseReason = reason
		})
}

// Resume restores the status held before Pause, falling back to on-site.
func (m *Manager) Resume(id string) Result {
	return m.apply(ActionResume, id, "Job resumed", "Failed to resume job",
		func(j *Job, now time.Time) {
			previous := j.PreviousStatus
			if previous == "" {
				previous = StatusOnSite
			}
			j.Status = previous
			j.PreviousStatus = ""
			j.PausedAt = nil
			j.PauseReason = ""
			j.ResumedAt = timePtr(now)
		})
}

// Complete finishes a job. A non-empty finalPrice overwrites the actual price;
// the bid amount is never touched.
func (m *Manager) Complete(id, finalPrice string) Result {
	return m.apply(ActionComplete, id, "Job completed successfully", "Failed to complete job",
		func(j *Job, now time.Time) {
			j.Status = StatusCompleted
			j.CompletedAt = timePtr(now)
			if finalPrice != "" {
				j.ActualPrice = finalPrice
			}
		})
}

// Cancel accepts any reason, including an empty one; callers validate it.
func (m *Manager) Cancel(id, reason string) Result {
	return m.apply(ActionCancel, id, "Job cancelled", "Failed to cancel job",
		func(j *Job, now time.Time) {
			j.Status = StatusCancelled
			j.CancelledAt = timePtr(now)
			j.CancellationReason = reason
		})
}

func (m *Manager) Reschedule(id, date, timeOfDay string) Result {
	return m.apply(ActionReschedule, id, "Job rescheduled successfully", "Failed to reschedule job",
		func(j *Job, now time.Time) {
			j.ScheduledDate = date
			j.ScheduledTime = timeOfDay
			j.RecentlyRescheduled = true
			j.RescheduledAt = timePtr(now)
		})
}

func (m *Manager) apply(action Action, id, okMsg, failMsg string, mutate func(j *Job, now time.Time)) Result {
	log := m.log.WithFields(logrus.Fields{"job_id": id, "action": action})
	now := m.clock.Now().UTC()

	updated, err := m.repo.Update(id, func(j *Job) error {
		if err := m.policy.check(action, j.Status); err != nil {
			return err
		}
		mutate(j, now)
		if j.Status != StatusPaused {
			j.PreviousStatus = ""
		}
		j.UpdatedAt = timePtr(now)
		return nil
	})

	var transitionErr *TransitionError
	switch {
	case err == nil:
		log.WithField("status", updated.Status).Info("job updated")
		m.record(action, OutcomeSuccess)
		if m.pub != nil {
			m.pub.Publish(Event{Action: action, Job: *updated})
		}
		return Result{Success: true, Message: okMsg, Job: updated}

	case errors.Is(err, ErrNotFound):
		log.Debug("job not found")
		m.record(action, OutcomeNotFound)
		return Result{Message: msgNotFound, Err: err}

	case errors.As(err, &transitionErr):
		log.WithField("status", transitionErr.From).Warn("transition rejected")
		m.record(action, OutcomeInvalidTransition)
		return Result{Message: capitalize(transitionErr.Error()), Err: err}

	default:
		log.WithError(err).Error("job update failed")
		m.record(action, OutcomeError)
		return Result{Message: failMsg, Err: err}
	}
}

func (m *Manager) record(action Action, outcome string) {
	if m.rec != nil {
		m.rec.RecordAction(action, outcome)
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
