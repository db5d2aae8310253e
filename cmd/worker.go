package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"example.com/outcry/config"
	"example.com/outcry/internal/service"

	"github.com/go-co-op/gocron/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var runOnce bool

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start the background worker",
	Long: `Start the background worker that periodically rebuilds the job search index
and publishes notifications for production stages that are past their due date.`,
	RunE: runWorker,
}

func init() {
	rootCmd.AddCommand(workerCmd)

	workerCmd.Flags().BoolVar(&runOnce, "once", false, "Run every job a single time and exit")
}

// workerJob is a periodic task run by the scheduler
type workerJob struct {
	name     string
	interval time.Duration
	run      func(ctx context.Context) (int, error)
}

func workerJobs(cfg config.WorkerConfig, svc service.Service) []workerJob {
	return []workerJob{
		{name: "reindex-jobs", interval: cfg.ReindexInterval, run: svc.ReindexJobs},
		{name: "overdue-stages", interval: cfg.OverdueCheckInterval, run: svc.NotifyOverdueStages},
	}
}

// runJob executes one job and logs its outcome; failures never stop the scheduler
func runJob(ctx context.Context, job workerJob) {
	start := time.Now()
	n, err := job.run(ctx)
	if err != nil {
		log.Error().Err(err).Str("job", job.name).Msg("Worker job failed")
		return
	}
	log.Info().
		Str("job", job.name).
		Int("processed", n).
		Dur("duration", time.Since(start)).
		Msg("Worker job finished")
}

func runWorker(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	comps, err := buildComponents(ctx, cfg)
	if err != nil {
		return err
	}
	defer comps.Close()

	jobs := workerJobs(cfg.Worker, comps.service)
	if runOnce {
		for _, job := range jobs {
			runJob(ctx, job)
		}
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		scheduler, err := gocron.NewScheduler()
		if err != nil {
			return errors.Wrap(err, "failed to create scheduler")
		}

		for _, job := range jobs {
			if job.interval <= 0 {
				log.Info().Str("job", job.name).Msg("Worker job disabled, no interval configured")
				continue
			}
			job := job
			_, err = scheduler.NewJob(
				gocron.DurationJob(job.interval),
				gocron.NewTask(func() { runJob(ctx, job) }),
				gocron.WithName(job.name),
				gocron.WithSingletonMode(gocron.LimitModeReschedule),
				gocron.WithStartAt(gocron.WithStartImmediately()),
			)
			if err != nil {
				return errors.Wrapf(err, "failed to schedule %s", job.name)
			}
			log.Info().Str("job", job.name).Dur("interval", job.interval).Msg("Scheduled worker job")
		}

		scheduler.Start()

		<-ctx.Done()

		log.Info().Msg("Stopping scheduler...")
		return scheduler.Shutdown()
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Worker error")
		return err
	}

	log.Info().Msg("Worker shutting down gracefully")
	return nil
}
