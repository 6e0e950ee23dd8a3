package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/trego/provider/internal/job"
)

func newJobsCommand(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "jobs",
		Args:    cobra.NoArgs,
		Aliases: []string{"j"},
		Short:   "Inspect and update jobs",
	}

	cmd.AddCommand(
		newJobsListCommand(configPath),
		newJobsGetCommand(configPath),
		newActionCommand(configPath, "start <id>", "Start driving to a confirmed job", func(m *job.Manager, id string) job.Result {
			return m.Start(id)
		}),
		newActionCommand(configPath, "on-site <id>", "Mark a job as on site", func(m *job.Manager, id string) job.Result {
			return m.MarkOnSite(id)
		}),
		newActionCommand(configPath, "resume <id>", "Resume a paused job", func(m *job.Manager, id string) job.Result {
			return m.Resume(id)
		}),
		newPauseCommand(configPath),
		newCompleteCommand(configPath),
		newCancelCommand(configPath),
		newRescheduleCommand(configPath),
	)

	return cmd
}

func newJobsListCommand(configPath *string) *cobra.Command {
	var (
		status string
		query  string
		limit  int
		offset int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Args:  cobra.NoArgs,
		Short: "List jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			if status != "" && !job.Status(status).Valid() {
				return fmt.Errorf("unknown status: %s", status)
			}
			a, err := openApp(*configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			jobs, total, err := a.manager(job.Options{}).List(job.Filter{
				Status: job.Status(status),
				Query:  query,
				Limit:  limit,
				Offset: offset,
			})
			if err != nil {
				return err
			}
			printJobTable(cmd.OutOrStdout(), jobs, total)
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "only jobs with this status")
	cmd.Flags().StringVarP(&query, "query", "q", "", "search title, client, category and address")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum jobs to show (0 for all)")
	cmd.Flags().IntVar(&offset, "offset", 0, "jobs to skip")

	return cmd
}

func newJobsGetCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Args:  cobra.ExactArgs(1),
		Short: "Show one job as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(*configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			j, err := a.manager(job.Options{}).Get(args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), j)
		},
	}
}

type actionFunc func(m *job.Manager, id string) job.Result

func newActionCommand(configPath *string, use, short string, fn actionFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Args:  cobra.ExactArgs(1),
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction(cmd, *configPath, args[0], fn)
		},
	}
}

func newPauseCommand(configPath *string) *cobra.Command {
	var reason string
	cmd := &cobra.Command{
		Use:   "pause <id>",
		Args:  cobra.ExactArgs(1),
		Short: "Pause a job",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction(cmd, *configPath, args[0], func(m *job.Manager, id string) job.Result {
				return m.Pause(id, reason)
			})
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "why the job is paused")
	return cmd
}

func newCompleteCommand(configPath *string) *cobra.Command {
	var price string
	cmd := &cobra.Command{
		Use:   "complete <id>",
		Args:  cobra.ExactArgs(1),
		Short: "Complete a job",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction(cmd, *configPath, args[0], func(m *job.Manager, id string) job.Result {
				return m.Complete(id, price)
			})
		},
	}
	cmd.Flags().StringVar(&price, "price", "", "final price charged")
	return cmd
}

func newCancelCommand(configPath *string) *cobra.Command {
	var reason string
	cmd := &cobra.Command{
		Use:   "cancel <id>",
		Args:  cobra.ExactArgs(1),
		Short: "Cancel a job",
		RunE: func(cmd *cobra.Command, args []string) error {
			if reason == "" {
				return errors.New("a cancellation reason is required")
			}
			return runAction(cmd, *configPath, args[0], func(m *job.Manager, id string) job.Result {
				return m.Cancel(id, reason)
			})
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "why the job is cancelled")
	_ = cmd.MarkFlagRequired("reason")
	return cmd
}

func newRescheduleCommand(configPath *string) *cobra.Command {
	var date, timeOfDay string
	cmd := &cobra.Command{
		Use:   "reschedule <id>",
		Args:  cobra.ExactArgs(1),
		Short: "Move a job to a new date and time",
		RunE: func(cmd *cobra.Command, args []string) error {
			if date == "" || timeOfDay == "" {
				return errors.New("both --date and --time are required")
			}
			return runAction(cmd, *configPath, args[0], func(m *job.Manager, id string) job.Result {
				return m.Reschedule(id, date, timeOfDay)
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "new scheduled date")
	cmd.Flags().StringVar(&timeOfDay, "time", "", "new scheduled time")
	_ = cmd.MarkFlagRequired("date")
	_ = cmd.MarkFlagRequired("time")
	return cmd
}

func runAction(cmd *cobra.Command, configPath, id string, fn actionFunc) error {
	a, err := openApp(configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	res := fn(a.manager(job.Options{}), id)
	if err := printJSON(cmd.OutOrStdout(), res); err != nil {
		return err
	}
	if !res.Success {
		return errors.New(res.Message)
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printJobTable(w io.Writer, jobs []job.Job, total int) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tSCHEDULED\tCLIENT\tTITLE")
	for _, j := range jobs {
		fmt.Fprintf(tw, "%s\t%s\t%s %s\t%s\t%s\n", j.ID, j.Status, j.ScheduledDate, j.ScheduledTime, j.Client, j.Title)
	}
	tw.Flush()
	fmt.Fprintf(w, "%d of %d jobs\n", len(jobs), total)
}
