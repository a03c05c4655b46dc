package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ethanwoods/stockrank/internal/scheduler"
	"github.com/ethanwoods/stockrank/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Manage the job scheduler",
	Long: `Starts the scheduler daemon or inspects its jobs.

Registered jobs:
- full_ingestion: daily at 02:00 (universe, prices, ratings)
- benchmark_sync: Saturdays at 03:00 (benchmark prices)
- full_ranking: daily at 04:00 (analyst confidence, company scores)

Subcommands:
  start   - start the scheduler daemon
  list    - list registered jobs
  run     - run a job immediately

Example:
  go run ./cmd/stockrank scheduler start
  go run ./cmd/stockrank scheduler run full_ingestion`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the scheduler daemon",
		Long: `Starts the scheduler and schedules all registered jobs.

The scheduler runs until interrupted with Ctrl+C.`,
		RunE: runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "List registered jobs",
		RunE:  listScheduledJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "Run a job immediately",
		Args:  cobra.ExactArgs(1),
		RunE:  runScheduledJob,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

func initScheduler() (*scheduler.Scheduler, *app, error) {
	a, err := initApp(false, 0)
	if err != nil {
		return nil, nil, err
	}

	sched := scheduler.New(a.log)

	jobList := []scheduler.Job{
		jobs.NewIngestionJob(a.orch, a.tracker, a.cfg, a.log),
		jobs.NewBenchmarkJob(a.orch, a.tracker, a.cfg, a.log),
		jobs.NewRankingJob(a.engine, a.tracker, a.log),
	}
	for _, job := range jobList {
		if err := sched.AddJob(job); err != nil {
			a.close()
			return nil, nil, fmt.Errorf("register %s: %w", job.Name(), err)
		}
	}

	return sched, a, nil
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== stockrank scheduler ===")

	sched, a, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer a.close()

	sched.Start()

	fmt.Println("\n✅ Scheduler started")
	fmt.Println("\nRegistered jobs:")
	for _, name := range sched.JobNames() {
		fmt.Printf("  - %s\n", name)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	fmt.Println("Scheduler stopped")
	return nil
}

func listScheduledJobs(cmd *cobra.Command, args []string) error {
	sched, a, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer a.close()

	fmt.Println("Registered jobs:")
	for _, name := range sched.JobNames() {
		fmt.Printf("  - %s\n", name)
	}
	return nil
}

func runScheduledJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	fmt.Printf("Running job: %s\n", jobName)

	sched, a, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer a.close()

	if err := sched.RunNow(jobName); err != nil {
		return fmt.Errorf("run job: %w", err)
	}

	// The job runs in the background; wait for it to record a result
	// before the database pool is closed.
	for {
		time.Sleep(time.Second)
		history, err := sched.History(jobName)
		if err != nil {
			return err
		}
		results := history.Latest(1)
		if len(results) == 0 {
			continue
		}
		result := results[0]
		if !result.Success {
			return fmt.Errorf("job %s failed: %s", jobName, result.Error)
		}
		fmt.Printf("✅ Job %s completed in %v\n", jobName, result.Duration.Round(time.Millisecond))
		return nil
	}
}
