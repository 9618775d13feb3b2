package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/tribalconversions/tribal-backend/internal/config"
	"github.com/tribalconversions/tribal-backend/internal/services"
)

// Task types processed by the background worker.
const (
	TypeFollowupSweep = "followup:sweep"
)

// --- Task Client (Enqueuing tasks) ---

func NewClient(rdb *redis.Client) *asynq.Client {
	clientOpt := asynq.RedisClientOpt{
		Addr:     rdb.Options().Addr,
		Password: rdb.Options().Password,
		DB:       rdb.Options().DB,
	}
	return asynq.NewClient(clientOpt)
}

// NewFollowupSweepTask builds the periodic sweep task. It carries no
// payload; the sweep always scans everything pending.
func NewFollowupSweepTask() *asynq.Task {
	return asynq.NewTask(TypeFollowupSweep, nil, asynq.Queue("default"))
}

// EnqueueInitialSweep kicks off the recurring sweep chain. Each handler run
// re-enqueues the next one, so this only needs to happen once per worker
// start.
func EnqueueInitialSweep(ctx context.Context, client *asynq.Client) error {
	info, err := client.EnqueueContext(ctx, NewFollowupSweepTask())
	if err != nil {
		return fmt.Errorf("failed to enqueue initial followup sweep: %w", err)
	}
	log.Printf("Enqueued initial followup sweep task %s", info.ID)
	return nil
}

// --- Task Server (Processing tasks) ---

// TaskProcessor handles the processing of tasks.
// It holds dependencies needed by task handlers.
type TaskProcessor struct {
	cfg         *config.Config
	followupSvc services.IFollowupService
	taskClient  *asynq.Client
}

func NewTaskProcessor(cfg *config.Config, followupSvc services.IFollowupService, taskClient *asynq.Client) *TaskProcessor {
	return &TaskProcessor{
		cfg:         cfg,
		followupSvc: followupSvc,
		taskClient:  taskClient,
	}
}

// SetupServer configures an Asynq server with the background task handlers
// registered and returns it together with its mux. The caller runs it.
func SetupServer(rdb *redis.Client, processor *TaskProcessor) (*asynq.Server, *asynq.ServeMux) {
	serverOpt := asynq.RedisClientOpt{
		Addr:     rdb.Options().Addr,
		Password: rdb.Options().Password,
		DB:       rdb.Options().DB,
	}

	srv := asynq.NewServer(
		serverOpt,
		asynq.Config{
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				fmt.Printf("[Asynq Error] Task Type: %s, Error: %v\n", task.Type(), err)
			}),
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeFollowupSweep, processor.HandleFollowupSweepTask)
	fmt.Println("Registered background task handlers (followup sweep).")

	return srv, mux
}

// HandleFollowupSweepTask runs one sweep over pending follow-ups, then
// re-enqueues itself to run again after the configured interval. The sweep
// itself is idempotent, so an extra run after a crash-and-retry is harmless.
func (p *TaskProcessor) HandleFollowupSweepTask(ctx context.Context, t *asynq.Task) error {
	log.Println("Starting followup sweep...")

	stats, err := p.followupSvc.Sweep(ctx, time.Now().UTC())
	if err != nil {
		// The next scheduled run picks up whatever this one missed;
		// individual task failures are already absorbed inside Sweep.
		log.Printf("Followup sweep failed: %v", err)
	} else {
		log.Printf("Followup sweep finished: scanned=%d due=%d sent=%d failed=%d orphaned=%d",
			stats.Scanned, stats.Due, stats.Sent, stats.Failed, stats.Orphaned)
	}

	taskInfo, err := p.taskClient.EnqueueContext(ctx, NewFollowupSweepTask(), asynq.ProcessIn(p.cfg.SweepInterval))
	if err != nil {
		// Returning the error makes asynq retry this task, which keeps the
		// sweep chain alive.
		log.Printf("ERROR failed to re-enqueue followup sweep: %v", err)
		return err
	}
	log.Printf("Re-enqueued followup sweep task %s to run in %v.", taskInfo.ID, p.cfg.SweepInterval)
	return nil
}
