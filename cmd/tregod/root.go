package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/trego/provider/internal/config"
	"github.com/trego/provider/internal/job"
	"github.com/trego/provider/internal/kv"
	"github.com/trego/provider/internal/logging"
)

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:          "tregod",
		Short:        "Trego provider job service",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")

	rootCmd.AddCommand(
		newServeCommand(&configPath),
		newSeedCommand(&configPath),
		newJobsCommand(&configPath),
		newWatchCommand(&configPath),
	)

	return rootCmd
}

// app holds what every command needs: configuration, a logger and the open store.
type app struct {
	cfg   *config.Config
	log   *logrus.Logger
	store kv.Store
	repo  *job.Repository
}

func openApp(configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	log, err := logging.New(cfg)
	if err != nil {
		return nil, err
	}
	store, err := kv.Open(cfg.StoreBackend, cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.StoreBackend, err)
	}
	return &app{cfg: cfg, log: log, store: store, repo: job.NewRepository(store)}, nil
}

func (a *app) policy() job.Policy {
	if a.cfg.StrictTransitions {
		return job.PolicyStrict
	}
	return job.PolicyPermissive
}

func (a *app) manager(opts job.Options) *job.Manager {
	opts.Logger = a.log
	opts.Policy = a.policy()
	return job.NewManager(a.repo, opts)
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.log.WithError(err).Warn("close store")
	}
}
