package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/trego/provider/internal/job"
	"github.com/trego/provider/internal/validate"
)

const defaultPageSize = 20

type PauseRequest struct {
	Reason string `json:"reason"`
}

type CompleteRequest struct {
	FinalPrice string `json:"finalPrice"`
}

type CancelRequest struct {
	Reason string `json:"reason" validate:"required"`
}

type RescheduleRequest struct {
	Date string `json:"date" validate:"required"`
	Time string `json:"time" validate:"required"`
}

type ListResponse struct {
	Jobs   []job.Job `json:"jobs"`
	Total  int       `json:"total"`
	Limit  int       `json:"limit"`
	Offset int       `json:"offset"`
}

func (h *Handlers) ListJobs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	status := job.Status(q.Get("status"))

	if status != "" && !status.Valid() {
		writeError(w, http.StatusBadRequest, "unknown status: "+string(status))
		return
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if offset < 0 {
		offset = 0
	}

	jobs, total, err := h.jobs.List(job.Filter{
		Status: status,
		Query:  q.Get("q"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		h.log.WithError(err).Error("list jobs")
		writeError(w, http.StatusInternalServerError, "failed to load jobs")
		return
	}
	if jobs == nil {
		jobs = []job.Job{}
	}
	writeJSON(w, http.StatusOK, ListResponse{Jobs: jobs, Total: total, Limit: limit, Offset: offset})
}

func (h *Handlers) GetJob(w http.ResponseWriter, r *http.Request) {
	j, err := h.jobs.Get(chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, job.ErrNotFound):
		writeError(w, http.StatusNotFound, "job not found")
	case err != nil:
		h.log.WithError(err).Error("get job")
		writeError(w, http.StatusInternalServerError, "failed to load jobs")
	default:
		writeJSON(w, http.StatusOK, j)
	}
}

func (h *Handlers) StartJob(w http.ResponseWriter, r *http.Request) {
	writeResult(w, h.jobs.Start(chi.URLParam(r, "id")))
}

func (h *Handlers) MarkOnSite(w http.ResponseWriter, r *http.Request) {
	writeResult(w, h.jobs.MarkOnSite(chi.URLParam(r, "id")))
}

func (h *Handlers) ResumeJob(w http.ResponseWriter, r *http.Request) {
	writeResult(w, h.jobs.Resume(chi.URLParam(r, "id")))
}

func (h *Handlers) PauseJob(w http.ResponseWriter, r *http.Request) {
	var req PauseRequest
	if err := decodeOptional(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	writeResult(w, h.jobs.Pause(chi.URLParam(r, "id"), req.Reason))
}

func (h *Handlers) CompleteJob(w http.ResponseWriter, r *http.Request) {
	var req CompleteRequest
	if err := decodeOptional(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	writeResult(w, h.jobs.Complete(chi.URLParam(r, "id"), req.FinalPrice))
}

func (h *Handlers) CancelJob(w http.ResponseWriter, r *http.Request) {
	var req CancelRequest
	if !decodeValid(w, r, &req) {
		return
	}
	writeResult(w, h.jobs.Cancel(chi.URLParam(r, "id"), req.Reason))
}

func (h *Handlers) RescheduleJob(w http.ResponseWriter, r *http.Request) {
	var req RescheduleRequest
	if !decodeValid(w, r, &req) {
		return
	}
	writeResult(w, h.jobs.Reschedule(chi.URLParam(r, "id"), req.Date, req.Time))
}

// decodeValid decodes and validates the body, writing a 400 on failure.
func decodeValid(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := decodeOptional(r, v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := validate.Struct(v); err != nil {
		var verr *validate.Error
		if errors.As(err, &verr) {
			writeValidationError(w, verr)
		} else {
			writeError(w, http.StatusBadRequest, err.Error())
		}
		return false
	}
	return true
}

func writeResult(w http.ResponseWriter, res job.Result) {
	status := http.StatusOK
	switch {
	case res.Success:
	case errors.Is(res.Err, job.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(res.Err, job.ErrInvalidTransition):
		status = http.StatusConflict
	default:
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, res)
}
