package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueEmail   = "jobs:email"
	QueueInvoice = "jobs:invoice"

	JobEmail   = "email"
	JobInvoice = "invoice"

	// MaxAttempts is how many times a job runs before it goes to the DLQ.
	MaxAttempts = 5
)

// ErrPermanent marks a failure that retrying cannot fix; the job goes
// straight to the DLQ.
var ErrPermanent = errors.New("permanent job failure")

// Job is the generic envelope for all async tasks.
type Job struct {
	ID       string          `json:"id"`
	Type     string          `json:"type"`
	Queue    string          `json:"queue"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

// Handler processes one job payload. A returned error schedules a retry.
type Handler interface {
	Process(ctx context.Context, payload json.RawMessage) error
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueEmail pushes a plain notification email.
func (d *Dispatcher) EnqueueEmail(ctx context.Context, payload EmailJobPayload) error {
	return d.enqueue(ctx, QueueEmail, JobEmail, payload)
}

// EnqueueInvoice pushes a render-and-mail job for a completed sale.
func (d *Dispatcher) EnqueueInvoice(ctx context.Context, payload InvoiceJobPayload) error {
	return d.enqueue(ctx, QueueInvoice, JobInvoice, payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(Job{ID: uuid.NewString(), Type: jobType, Queue: queue, Payload: data})
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// Pool consumes the job queues with a fixed number of goroutines.
type Pool struct {
	rdb      *redis.Client
	handlers map[string]Handler
	now      func() time.Time
}

func NewPool(rdb *redis.Client, handlers map[string]Handler) *Pool {
	return &Pool{rdb: rdb, handlers: handlers, now: time.Now}
}

// Start launches numWorkers goroutines consuming every queue.
// Each goroutine blocks on BRPOP and exits when ctx is cancelled.
func (p *Pool) Start(ctx context.Context, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go p.run(ctx, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func (p *Pool) run(ctx context.Context, id int) {
	queues := []string{QueueInvoice, QueueEmail}
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop, waits up to 5s then loops to check ctx
			result, err := p.rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil || len(result) < 2 {
				continue
			}
			p.handle(ctx, result[0], result[1])
		}
	}
}

func (p *Pool) handle(ctx context.Context, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		quoted, _ := json.Marshal(raw)
		SendToDLQ(ctx, p.rdb, Job{Type: "unknown", Queue: queue, Payload: quoted}, "malformed job: "+err.Error())
		return
	}
	if job.Queue == "" {
		job.Queue = queue
	}
	err := p.process(ctx, &job)
	if err == nil {
		return
	}
	if errors.Is(err, ErrPermanent) || job.Attempts >= MaxAttempts {
		SendToDLQ(ctx, p.rdb, job, fmt.Sprintf("max attempts (%d) exceeded: %s", MaxAttempts, err))
		return
	}
	if err := ScheduleRetry(ctx, p.rdb, job, p.now().Add(retryBackoff(job.Attempts))); err != nil {
		log.Error().Err(err).Str("job_id", job.ID).Msg("failed to schedule retry")
	}
}

// process runs the job's handler and bumps its attempt counter.
func (p *Pool) process(ctx context.Context, job *Job) error {
	job.Attempts++
	h, ok := p.handlers[job.Type]
	if !ok {
		return fmt.Errorf("no handler for job type %q", job.Type)
	}
	logger := log.With().Str("job_id", job.ID).Str("type", job.Type).Int("attempt", job.Attempts).Logger()
	if err := h.Process(ctx, job.Payload); err != nil {
		logger.Warn().Err(err).Msg("job failed")
		return err
	}
	logger.Debug().Msg("job done")
	return nil
}
