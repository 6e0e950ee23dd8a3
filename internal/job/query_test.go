package job

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleJobs() []Job {
	return []Job{
		{ID: "1", Title: "Fix leaking sink", Client: "Ana Costa", Category: "Plumbing", Address: "Rua Augusta 12", Status: StatusConfirmed},
		{ID: "2", Title: "Install ceiling light", Client: "Rui Silva", Category: "Electrical", Address: "Av. da Liberdade 90", Status: StatusOnSite},
		{ID: "3", Title: "Replace water heater", Client: "Marta Sousa", Category: "Plumbing", Address: "Rua do Carmo 4", Status: StatusCompleted},
		{ID: "4", Title: "Rewire kitchen", Client: "Ana Costa", Category: "Electrical", Address: "Rua Augusta 12", Status: StatusConfirmed},
	}
}

func TestList_All(t *testing.T) {
	h := newHarness(t, PolicyPermissive, sampleJobs()...)

	jobs, total, err := h.mgr.List(Filter{})

	require.NoError(t, err)
	assert.Equal(t, 4, total)
	assert.Len(t, jobs, 4)
	assert.Equal(t, "1", jobs[0].ID)
}

func TestList_StatusFilter(t *testing.T) {
	h := newHarness(t, PolicyPermissive, sampleJobs()...)

	jobs, total, err := h.mgr.List(Filter{Status: StatusConfirmed})

	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, "4", jobs[1].ID)
}

func TestList_SearchIsCaseInsensitive(t *testing.T) {
	h := newHarness(t, PolicyPermissive, sampleJobs()...)

	tests := []struct {
		query string
		want  int
	}{
		{"plumbing", 2},
		{"ANA COSTA", 2},
		{"liberdade", 1},
		{"heater", 1},
		{"  ", 4},
		{"roofing", 0},
	}
	for _, tt := range tests {
		_, total, err := h.mgr.List(Filter{Query: tt.query})
		require.NoError(t, err)
		assert.Equal(t, tt.want, total, "query %q", tt.query)
	}
}

func TestList_Paging(t *testing.T) {
	h := newHarness(t, PolicyPermissive, sampleJobs()...)

	jobs, total, err := h.mgr.List(Filter{Limit: 2, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	require.Len(t, jobs, 2)
	assert.Equal(t, "2", jobs[0].ID)
	assert.Equal(t, "3", jobs[1].ID)

	jobs, _, err = h.mgr.List(Filter{Limit: 2, Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestList_HugeLimit(t *testing.T) {
	h := newHarness(t, PolicyPermissive, sampleJobs()...)

	var jobs []Job
	var err error
	require.NotPanics(t, func() {
		jobs, _, err = h.mgr.List(Filter{Limit: math.MaxInt, Offset: 1})
	})

	require.NoError(t, err)
	require.Len(t, jobs, 3)
	assert.Equal(t, "2", jobs[0].ID)
}

func TestGet(t *testing.T) {
	h := newHarness(t, PolicyPermissive, sampleJobs()...)

	j, err := h.mgr.Get("3")
	require.NoError(t, err)
	assert.Equal(t, "Replace water heater", j.Title)

	_, err = h.mgr.Get("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStats(t *testing.T) {
	h := newHarness(t, PolicyPermissive, sampleJobs()...)

	stats, err := h.mgr.Stats()

	require.NoError(t, err)
	assert.Equal(t, 2, stats[StatusConfirmed])
	assert.Equal(t, 1, stats[StatusOnSite])
	assert.Equal(t, 1, stats[StatusCompleted])
	assert.Equal(t, 0, stats[StatusPaused])
	assert.Len(t, stats, len(Statuses))
}

func TestCanApply(t *testing.T) {
	assert.True(t, CanApply(ActionStart, StatusConfirmed))
	assert.False(t, CanApply(ActionStart, StatusPending))
	assert.True(t, CanApply(ActionComplete, StatusEnRoute))
	assert.True(t, CanApply(ActionCancel, StatusDelayed))
	assert.True(t, CanApply(ActionReschedule, StatusPaused))
	assert.False(t, CanApply(ActionCancel, StatusCompleted))
	assert.False(t, CanApply(Action("teleport"), StatusConfirmed))
}

func TestStatus(t *testing.T) {
	assert.True(t, StatusDelayed.Valid())
	assert.False(t, Status("archived").Valid())
	assert.True(t, StatusCancelled.Terminal())
	assert.False(t, StatusPaused.Terminal())
}

func TestNotes_DecodeStringOrList(t *testing.T) {
	var single Job
	require.NoError(t, json.Unmarshal([]byte(`{"id":"1","notes":"bring ladder"}`), &single))
	assert.Equal(t, Notes{"bring ladder"}, single.Notes)

	var many Job
	require.NoError(t, json.Unmarshal([]byte(`{"id":"1","notes":["gate code 1234","dog"]}`), &many))
	assert.Equal(t, Notes{"gate code 1234", "dog"}, many.Notes)

	var fromYAML struct {
		Notes Notes `yaml:"notes"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("notes: park behind the shop\n"), &fromYAML))
	assert.Equal(t, Notes{"park behind the shop"}, fromYAML.Notes)
}
