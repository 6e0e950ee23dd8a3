package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/trego/provider/internal/seed"
)

func newSeedCommand(configPath *string) *cobra.Command {
	var (
		file  string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Args:  cobra.NoArgs,
		Short: "Load jobs from a YAML seed file",
		Long:  `Load jobs from a YAML seed file. Existing jobs are only replaced with --force.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(*configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			jobs, err := seed.Load(file, time.Now().UTC())
			if err != nil {
				return err
			}
			if err := seed.Apply(a.repo, jobs, force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d jobs\n", len(jobs))
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "seed file to load")
	cmd.Flags().BoolVar(&force, "force", false, "replace existing jobs")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}
