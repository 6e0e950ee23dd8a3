package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/trego/provider/internal/config"
	"github.com/trego/provider/internal/job"
	"github.com/trego/provider/internal/media"
	"github.com/trego/provider/internal/profile"
	"github.com/trego/provider/internal/validate"
)

const version = "0.1.0"

var startTime = time.Now()

// SubscriberCounter reports connected job event subscribers.
type SubscriberCounter interface {
	Count() int
}

type Handlers struct {
	cfg      *config.Config
	jobs     *job.Manager
	profiles *profile.Store
	media    *media.Store
	subs     SubscriberCounter
	log      logrus.FieldLogger
}

func NewHandlers(cfg *config.Config, jobs *job.Manager, profiles *profile.Store, mediaStore *media.Store, subs SubscriberCounter, log logrus.FieldLogger) *Handlers {
	return &Handlers{cfg: cfg, jobs: jobs, profiles: profiles, media: mediaStore, subs: subs, log: log}
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (h *Handlers) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"node_id":            h.cfg.NodeID,
		"version":            version,
		"uptime_seconds":     int(time.Since(startTime).Seconds()),
		"store_backend":      h.cfg.StoreBackend,
		"strict_transitions": h.cfg.StrictTransitions,
	})
}

func (h *Handlers) Stats(w http.ResponseWriter, r *http.Request) {
	byStatus, err := h.jobs.Stats()
	if err != nil {
		h.log.WithError(err).Error("job stats")
		writeError(w, http.StatusInternalServerError, "failed to load jobs")
		return
	}
	total := 0
	for _, n := range byStatus {
		total += n
	}
	subscribers := 0
	if h.subs != nil {
		subscribers = h.subs.Count()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"node_id":        h.cfg.NodeID,
		"uptime_seconds": int(time.Since(startTime).Seconds()),
		"jobs": map[string]any{
			"total":     total,
			"by_status": byStatus,
		},
		"subscribers": map[string]int{
			"connected": subscribers,
		},
	})
}

type ProfileResponse struct {
	Profile    *profile.Profile `json:"profile"`
	Completion int              `json:"completion"`
}

func (h *Handlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.profiles.Profile()
	if err != nil {
		h.log.WithError(err).Error("load profile")
		writeError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "profile not found")
		return
	}
	writeJSON(w, http.StatusOK, ProfileResponse{Profile: p, Completion: p.Completion()})
}

func (h *Handlers) SaveProfile(w http.ResponseWriter, r *http.Request) {
	var p profile.Profile
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if p.ProfilePhoto == "" && h.media != nil && h.media.Exists(profilePhotoName) {
		p.ProfilePhoto = profilePhotoURL
	}
	if err := h.profiles.SaveProfile(&p); err != nil {
		h.writeSaveError(w, err, "failed to save profile")
		return
	}
	writeJSON(w, http.StatusOK, ProfileResponse{Profile: &p, Completion: p.Completion()})
}

func (h *Handlers) GetSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.profiles.Settings()
	if err != nil {
		h.log.WithError(err).Error("load settings")
		writeError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *Handlers) SaveSettings(w http.ResponseWriter, r *http.Request) {
	current, err := h.profiles.Settings()
	if err != nil {
		h.log.WithError(err).Error("load settings")
		writeError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}
	// Fields missing from the body keep their stored values.
	if err := json.NewDecoder(r.Body).Decode(&current); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.profiles.SaveSettings(current); err != nil {
		h.writeSaveError(w, err, "failed to save settings")
		return
	}
	writeJSON(w, http.StatusOK, current)
}

func (h *Handlers) writeSaveError(w http.ResponseWriter, err error, msg string) {
	var verr *validate.Error
	if errors.As(err, &verr) {
		writeValidationError(w, verr)
		return
	}
	h.log.WithError(err).Error(msg)
	writeError(w, http.StatusInternalServerError, msg)
}

// decodeOptional decodes a JSON body, treating an empty body as valid.
func decodeOptional(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeValidationError(w http.ResponseWriter, verr *validate.Error) {
	writeJSON(w, http.StatusBadRequest, map[string]any{
		"error":  "validation failed",
		"fields": verr.Fields,
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
