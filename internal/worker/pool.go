package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueRecibos = "jobs:recibos"

	// AuditoriaStream is a fire-and-forget sink: domain events are LPUSHed
	// for an external consumer; nobody in this process reads it back.
	AuditoriaStream = "auditoria:eventos"
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueRecibo pushes a receipt rendering job to Redis.
func (d *Dispatcher) EnqueueRecibo(ctx context.Context, payload interface{}) error {
	return d.enqueue(ctx, QueueRecibos, "recibo", payload)
}

// NotificarAuditoria pushes a domain event to the audit sink. Best effort:
// a sink failure is logged and swallowed, it never propagates to the caller.
func (d *Dispatcher) NotificarAuditoria(ctx context.Context, evento string, datos map[string]any) {
	entry := map[string]any{
		"evento": evento,
		"datos":  datos,
		"ts":     time.Now().UTC().Format(time.RFC3339),
	}
	encoded, err := json.Marshal(entry)
	if err != nil {
		log.Error().Err(err).Str("evento", evento).Msg("auditoria: no se pudo serializar el evento")
		return
	}
	if err := d.rdb.LPush(ctx, AuditoriaStream, encoded).Err(); err != nil {
		log.Warn().Err(err).Str("evento", evento).Msg("auditoria: no se pudo publicar el evento")
	}
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job := Job{Type: jobType, Payload: data}
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// Handlers maps job types to their processors.
type Handlers struct {
	Recibo *ReciboWorker
}

// StartWorkerPool launches numWorkers goroutines consuming the job queues.
// Each goroutine blocks on BRPOP — zero CPU when idle.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, handlers Handlers, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, handlers, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, handlers Handlers, id int) {
	queues := []string{QueueRecibos}
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop — waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, rdb, handlers, result[0], result[1])
		}
	}
}

func processJob(ctx context.Context, rdb *redis.Client, handlers Handlers, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		return
	}
	switch job.Type {
	case "recibo":
		if handlers.Recibo != nil {
			handlers.Recibo.Process(ctx, rdb, job.Payload)
			return
		}
	}
	log.Warn().Str("type", job.Type).Str("queue", queue).Msg("no handler for job type")
}
