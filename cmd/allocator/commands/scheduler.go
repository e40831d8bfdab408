package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/allocator/internal/scheduler"
	"github.com/wonny/allocator/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 관리",
	Long: `스케줄러를 시작하거나 작업을 관리합니다.

Subcommands:
  start   - 스케줄러 시작
  list    - 등록된 작업 목록
  run     - 특정 작업 즉시 실행

Example:
  go run ./cmd/allocator scheduler start
  go run ./cmd/allocator scheduler list
  go run ./cmd/allocator scheduler run watchlist_revalidation`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "스케줄러 시작",
		Long: `스케줄러를 시작하고 등록된 모든 작업을 스케줄합니다.

등록되는 작업 (engine config schedule):
- market_data_warmup: warm_cache_cron (watchlist 시세 캐시 선적재)
- watchlist_revalidation: revalidate_cron (watchlist 재검증 + 저장)

스케줄러는 Ctrl+C로 종료할 수 있습니다.`,
		RunE: runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "등록된 작업 목록",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "특정 작업 즉시 실행",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Allocator Scheduler ===")

	d, err := newDeps(cmd.Context())
	if err != nil {
		return err
	}
	defer d.Close()

	sched, err := initScheduler(d)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	sched.Start()

	fmt.Println("\n✅ Scheduler started successfully")
	fmt.Println("\nRegistered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		next, _ := sched.Next(jobName)
		fmt.Printf("  - %-24s next: %s\n", jobName, next.Format("2006-01-02 15:04:05"))
	}
	fmt.Println("\nPress Ctrl+C to stop")

	<-cmd.Context().Done()

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	fmt.Println("Scheduler stopped")

	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	d, err := newDeps(cmd.Context())
	if err != nil {
		return err
	}
	defer d.Close()

	sched, err := initScheduler(d)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	fmt.Println("Registered jobs:")
	for name, stat := range sched.GetJobStats() {
		fmt.Printf("  - %-24s %s\n", name, stat.Schedule)
	}

	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	d, err := newDeps(cmd.Context())
	if err != nil {
		return err
	}
	defer d.Close()

	sched, err := initScheduler(d)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	fmt.Printf("Running job: %s\n", jobName)
	result, err := sched.RunJob(cmd.Context(), jobName)
	if err != nil {
		return fmt.Errorf("run job: %w", err)
	}

	if !result.Success {
		PrintError(fmt.Sprintf("%s failed after %d attempts: %s", jobName, result.Attempts, result.Error))
		return fmt.Errorf("job %s failed", jobName)
	}
	PrintSuccess(fmt.Sprintf("%s completed in %s", jobName, result.Duration.Round(1e6)))
	return nil
}

// initScheduler registers every job whose cron expression is set
func initScheduler(d *deps) (*scheduler.Scheduler, error) {
	sched := scheduler.New(d.log)

	candidates := []scheduler.Job{
		jobs.NewWarmCacheJob(d.provider, d.engine, d.log),
		jobs.NewRevalidateJob(d.service, d.engine, d.log),
	}
	for _, job := range candidates {
		if job.Schedule() == "" {
			d.log.WithField("job", job.Name()).Info("Job disabled (no schedule)")
			continue
		}
		if err := sched.AddJob(job); err != nil {
			return nil, err
		}
	}

	return sched, nil
}
