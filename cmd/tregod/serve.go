package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/trego/provider/internal/api"
	"github.com/trego/provider/internal/billing"
	"github.com/trego/provider/internal/contact"
	"github.com/trego/provider/internal/job"
	"github.com/trego/provider/internal/media"
	"github.com/trego/provider/internal/metrics"
	"github.com/trego/provider/internal/profile"
	"github.com/trego/provider/internal/seed"
	"github.com/trego/provider/internal/ws"
)

func newServeCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Args:  cobra.NoArgs,
		Short: "Run the HTTP and websocket server",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(*configPath)
			if err != nil {
				return err
			}
			defer a.Close()
			return serve(a)
		},
	}
}

func serve(a *app) error {
	cfg := a.cfg
	log := a.log

	log.WithField("node_id", cfg.NodeID).Info("starting provider node")
	log.WithFields(logrus.Fields{
		"port":    cfg.HTTPPort,
		"backend": cfg.StoreBackend,
		"policy":  a.policy().String(),
	}).Info("configuration loaded")

	if cfg.SeedFile != "" {
		if err := seedIfEmpty(a); err != nil {
			return err
		}
	}

	photos, err := media.NewStore(filepath.Join(cfg.DataDir, "media"))
	if err != nil {
		return err
	}

	m := metrics.New()
	hub := ws.NewHub(log, cfg.WSWriteTimeout, m)
	mgr := a.manager(job.Options{Publisher: hub, Recorder: m})

	router := api.NewRouter(api.Deps{
		Config:   cfg,
		Jobs:     mgr,
		Profiles: profile.NewStore(a.store),
		Media:    photos,
		Contacts: contact.NewStore(a.store, nil),
		Billing:  billing.NewStore(a.store),
		Store:    a.store,
		Hub:      hub,
		Metrics:  m,
		Log:      log,
	})

	server := &http.Server{
		Addr:        cfg.Addr(),
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		log.Infof("server listening on %s", cfg.Addr())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return err
		}
	case <-done:
	}
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return err
	}

	log.Info("server stopped")
	return nil
}

// seedIfEmpty loads the configured seed file into an empty collection and
// leaves existing jobs alone.
func seedIfEmpty(a *app) error {
	jobs, err := seed.Load(a.cfg.SeedFile, time.Now().UTC())
	if err != nil {
		return err
	}
	err = seed.Apply(a.repo, jobs, false)
	if errors.Is(err, seed.ErrNotEmpty) {
		a.log.WithField("file", a.cfg.SeedFile).Debug("jobs already stored, seed skipped")
		return nil
	}
	if err != nil {
		return err
	}
	a.log.WithField("count", len(jobs)).Info("seeded jobs")
	return nil
}
