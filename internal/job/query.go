package job

import "strings"

// Filter narrows List. Zero values match everything; Limit <= 0 means no limit.
type Filter struct {
	Status Status
	Query  string
	Limit  int
	Offset int
}

func (f Filter) matches(j *Job) bool {
	if f.Status != "" && j.Status != f.Status {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(f.Query))
	if q == "" {
		return true
	}
	for _, field := range []string{j.Title, j.Client, j.Category, j.Address} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

func (m *Manager) Get(id string) (*Job, error) {
	return m.repo.Get(id)
}

// List returns the matching page in stored order and the total number of matches.
func (m *Manager) List(f Filter) ([]Job, int, error) {
	jobs, err := m.repo.Load()
	if err != nil {
		return nil, 0, err
	}

	filtered := make([]Job, 0, len(jobs))
	for i := range jobs {
		if f.matches(&jobs[i]) {
			filtered = append(filtered, jobs[i])
		}
	}

	total := len(filtered)
	if f.Offset < 0 {
		f.Offset = 0
	}
	if f.Offset >= total {
		return []Job{}, total, nil
	}
	end := total
	if f.Limit > 0 && f.Limit < total-f.Offset {
		end = f.Offset + f.Limit
	}
	return filtered[f.Offset:end], total, nil
}

// Stats counts jobs per status. Every known status is present in the result.
func (m *Manager) Stats() (map[Status]int, error) {
	jobs, err := m.repo.Load()
	if err != nil {
		return nil, err
	}
	counts := make(map[Status]int, len(Statuses))
	for _, s := range Statuses {
		counts[s] = 0
	}
	for _, j := range jobs {
		counts[j.Status]++
	}
	return counts, nil
}
