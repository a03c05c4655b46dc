package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show recent pipeline runs",
	Long: `Lists recent pipeline runs recorded in the jobs table.

Example:
  go run ./cmd/stockrank status
  go run ./cmd/stockrank status --limit 10`,
	RunE: runStatus,
}

var statusLimit int

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().IntVar(&statusLimit, "limit", 20, "number of runs to show")
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := initApp(false, 0)
	if err != nil {
		return err
	}
	defer a.close()

	jobs, err := a.tracker.List(context.Background(), statusLimit)
	if err != nil {
		return fmt.Errorf("list jobs: %w", err)
	}

	if len(jobs) == 0 {
		fmt.Println("No pipeline runs recorded")
		return nil
	}

	fmt.Println("Recent pipeline runs:")
	for _, job := range jobs {
		end := "running"
		if job.EndTime != nil {
			end = job.EndTime.Sub(job.StartTime).Round(time.Second).String()
		}
		line := fmt.Sprintf("  [%d] %-16s %-10s %s (%s)",
			job.ID, job.JobType, job.Status, job.StartTime.Format("2006-01-02 15:04:05"), end)
		if job.Detail != "" {
			line += " " + job.Detail
		}
		fmt.Println(line)
	}
	return nil
}
