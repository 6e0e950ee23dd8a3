package seed

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/trego/provider/internal/job"
)

// ErrNotEmpty is returned by Apply when jobs already exist and force is off.
var ErrNotEmpty = errors.New("job collection is not empty")

type Document struct {
	Jobs []job.Job `yaml:"jobs"`
}

// Parse decodes a seed document and fills in defaults for omitted fields.
func Parse(data []byte, now time.Time) ([]job.Job, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("yaml parse: %w", err)
	}

	seen := make(map[string]bool, len(doc.Jobs))
	for i := range doc.Jobs {
		j := &doc.Jobs[i]
		if j.ID == "" {
			j.ID = uuid.NewString()
		}
		if seen[j.ID] {
			return nil, fmt.Errorf("duplicate job id: %s", j.ID)
		}
		seen[j.ID] = true

		if j.Title == "" {
			return nil, fmt.Errorf("job %s: missing title", j.ID)
		}
		if j.Status == "" {
			j.Status = job.StatusPending
		}
		if !j.Status.Valid() {
			return nil, fmt.Errorf("job %s: invalid status: %s", j.ID, j.Status)
		}
		if err := checkPaused(j); err != nil {
			return nil, err
		}
		if j.Priority == "" {
			j.Priority = job.PriorityNormal
		}

		ts := now
		j.CreatedAt = &ts
		j.UpdatedAt = &ts
		if j.Status == job.StatusPaused {
			j.PausedAt = &ts
		}
	}
	return doc.Jobs, nil
}

// checkPaused enforces that previousStatus is given exactly when a job is
// seeded as paused, so a later resume has somewhere to return to.
func checkPaused(j *job.Job) error {
	if j.Status != job.StatusPaused {
		if j.PreviousStatus != "" {
			return fmt.Errorf("job %s: previousStatus is only allowed on paused jobs", j.ID)
		}
		return nil
	}
	if j.PreviousStatus == "" {
		return fmt.Errorf("job %s: paused job needs a previousStatus", j.ID)
	}
	if !j.PreviousStatus.Valid() || j.PreviousStatus == job.StatusPaused {
		return fmt.Errorf("job %s: invalid previousStatus: %s", j.ID, j.PreviousStatus)
	}
	return nil
}

func Load(path string, now time.Time) ([]job.Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(data, now)
}

// Apply stores the seed jobs. An existing collection is only replaced when
// force is set.
func Apply(repo *job.Repository, jobs []job.Job, force bool) error {
	if force {
		return repo.Replace(jobs)
	}
	stored, err := repo.InsertIfEmpty(jobs...)
	if err != nil {
		return err
	}
	if stored > 0 {
		return fmt.Errorf("%w: %d jobs stored", ErrNotEmpty, stored)
	}
	return nil
}
