package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/trego/provider/internal/billing"
	"github.com/trego/provider/internal/config"
	"github.com/trego/provider/internal/contact"
	"github.com/trego/provider/internal/job"
	"github.com/trego/provider/internal/kv"
	"github.com/trego/provider/internal/media"
	"github.com/trego/provider/internal/metrics"
	"github.com/trego/provider/internal/profile"
	"github.com/trego/provider/internal/ws"
)

type Deps struct {
	Config   *config.Config
	Jobs     *job.Manager
	Profiles *profile.Store
	Media    *media.Store
	Contacts *contact.Store
	Billing  *billing.Store
	Store    kv.Store
	Hub      *ws.Hub
	Metrics  *metrics.Metrics
	Log      logrus.FieldLogger
}

func NewRouter(d Deps) http.Handler {
	log := d.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware)
	}

	var subs SubscriberCounter
	if d.Hub != nil {
		subs = d.Hub
	}
	h := NewHandlers(d.Config, d.Jobs, d.Profiles, d.Media, subs, log)

	// Health & Info
	r.Get("/health", h.Health)
	r.Get("/info", h.Info)
	r.Get("/stats", h.Stats)
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}

	// Jobs API
	r.Route("/api/jobs", func(r chi.Router) {
		r.Get("/", h.ListJobs)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetJob)
			r.Post("/start", h.StartJob)
			r.Post("/on-site", h.MarkOnSite)
			r.Post("/pause", h.PauseJob)
			r.Post("/resume", h.ResumeJob)
			r.Post("/complete", h.CompleteJob)
			r.Post("/cancel", h.CancelJob)
			r.Post("/reschedule", h.RescheduleJob)
		})
	})

	// Profile & settings
	r.Get("/api/profile", h.GetProfile)
	r.Put("/api/profile", h.SaveProfile)
	r.Get("/api/settings", h.GetSettings)
	r.Put("/api/settings", h.SaveSettings)
	if d.Media != nil {
		r.Put("/api/profile/photo", h.UploadProfilePhoto)
		r.Get("/api/profile/photo", h.GetProfilePhoto)
		r.Delete("/api/profile/photo", h.DeleteProfilePhoto)
	}

	// Contacts
	if d.Contacts != nil {
		ch := NewContactHandlers(d.Contacts, log)
		r.Route("/api/contacts", func(r chi.Router) {
			r.Get("/", ch.List)
			r.Post("/", ch.Create)
			r.Get("/{id}", ch.Get)
			r.Put("/{id}", ch.Update)
			r.Delete("/{id}", ch.Delete)
		})
	}

	// Billing
	if d.Billing != nil {
		bh := NewBillingHandlers(d.Billing, log)
		r.Route("/api/invoices", func(r chi.Router) {
			r.Get("/", bh.ListInvoices)
			r.Post("/", bh.CreateInvoice)
			r.Get("/{id}", bh.GetInvoice)
			r.Post("/{id}/status", bh.SetInvoiceStatus)
		})
		r.Get("/api/expenses", bh.ListExpenses)
		r.Post("/api/expenses", bh.CreateExpense)
		r.Get("/api/billing/summary", bh.Summary)
	}

	// Raw storage
	if d.Store != nil {
		storageHandlers := kv.NewHandlers(d.Store, log)
		r.Route("/api/storage", func(r chi.Router) {
			r.Get("/", storageHandlers.List)
			r.Get("/{key}", storageHandlers.Get)
			r.Put("/{key}", storageHandlers.Set)
			r.Delete("/{key}", storageHandlers.Delete)
		})
	}

	// WebSocket
	if d.Hub != nil {
		r.Get("/ws/jobs", d.Hub.HandleSubscribe)
	}

	return r
}

func requestLogger(log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				log.WithFields(logrus.Fields{
					"request_id": middleware.GetReqID(r.Context()),
					"method":     r.Method,
					"path":       r.URL.Path,
					"status":     ww.Status(),
					"bytes":      ww.BytesWritten(),
					"duration":   time.Since(start),
				}).Debug("http request")
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
