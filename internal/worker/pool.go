package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"sahayak-backend/internal/logger"
	"sahayak-backend/internal/metrics"
	"sahayak-backend/internal/models"
	"sahayak-backend/internal/storage"
)

const (
	QueueWorksheetGeneration = "queue:worksheet-generation"
	QueueSyllabusProcessing  = "queue:syllabus-processing"

	popTimeout  = 30 * time.Second
	lockTTL     = 10 * time.Minute
	seenTTL     = 24 * time.Hour
	jobDeadline = 5 * time.Minute
)

// ErrUnroutable is returned by Enqueue for objects outside the watched prefixes.
var ErrUnroutable = errors.New("object path has no pipeline")

type Publisher interface {
	Publish(ctx context.Context, teacherID string, msg models.WSMessage)
}

// Pool pops upload jobs from Redis and runs the matching pipeline once. Jobs
// are never re-queued; failures are logged and published to the teacher.
type Pool struct {
	redis       *redis.Client
	worksheets  *WorksheetPipeline
	syllabus    *SyllabusPipeline
	publisher   Publisher
	metrics     *metrics.Metrics
	logger      *zap.Logger
	workerCount int
	stopChan    chan struct{}
	wg          sync.WaitGroup
}

func NewPool(
	redisClient *redis.Client,
	worksheets *WorksheetPipeline,
	syllabus *SyllabusPipeline,
	publisher Publisher,
	m *metrics.Metrics,
	l *zap.Logger,
	workerCount int,
) *Pool {
	if workerCount <= 0 {
		workerCount = 1
	}
	return &Pool{
		redis:       redisClient,
		worksheets:  worksheets,
		syllabus:    syllabus,
		publisher:   publisher,
		metrics:     m,
		logger:      logger.OrNop(l).Named("worker"),
		workerCount: workerCount,
		stopChan:    make(chan struct{}),
	}
}

// JobFor maps a finalized object onto a job, or returns ErrUnroutable.
func JobFor(ev storage.ObjectEvent) (*models.Job, string, error) {
	job := &models.Job{
		ID:          uuid.New(),
		ObjectPath:  ev.Path,
		ContentType: ev.ContentType,
		Metadata:    ev.Metadata,
		CreatedAt:   time.Now().UTC(),
	}
	switch {
	case strings.HasPrefix(ev.Path, worksheetPrefix):
		job.Type = models.JobWorksheetGeneration
		return job, QueueWorksheetGeneration, nil
	case strings.HasPrefix(ev.Path, syllabusPrefix):
		job.Type = models.JobSyllabusProcessing
		return job, QueueSyllabusProcessing, nil
	default:
		return nil, "", ErrUnroutable
	}
}

// Enqueue pushes a job for ev. Each object path is enqueued at most once.
func (p *Pool) Enqueue(ctx context.Context, ev storage.ObjectEvent) error {
	job, queue, err := JobFor(ev)
	if err != nil {
		return err
	}

	fresh, err := p.redis.SetNX(ctx, "object_seen:"+ev.Path, job.ID.String(), seenTTL).Result()
	if err != nil {
		return fmt.Errorf("mark object seen: %w", err)
	}
	if !fresh {
		p.logger.Debug("object already enqueued", zap.String("path", ev.Path))
		return nil
	}

	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	if err := p.redis.RPush(ctx, queue, data).Err(); err != nil {
		return fmt.Errorf("enqueue job: %w", err)
	}

	p.logger.Info("job enqueued", zap.Stringer("job_id", job.ID), zap.String("type", job.Type), zap.String("path", job.ObjectPath))
	return nil
}

func (p *Pool) Start() {
	queues := []string{QueueWorksheetGeneration, QueueSyllabusProcessing}

	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i, queues)
	}

	p.logger.Info("started worker goroutines", zap.Int("count", p.workerCount))
}

// Stop signals workers and waits for in-flight jobs to finish.
func (p *Pool) Stop() {
	close(p.stopChan)
	p.wg.Wait()
}

func (p *Pool) worker(id int, queues []string) {
	defer p.wg.Done()
	log := p.logger.With(zap.Int("worker", id))

	for {
		select {
		case <-p.stopChan:
			log.Info("worker shutting down")
			return
		default:
		}

		ctx := context.Background()

		result, err := p.redis.BLPop(ctx, popTimeout, queues...).Result()
		if err != nil {
			if !errors.Is(err, redis.Nil) {
				log.Warn("queue pop failed", zap.Error(err))
				time.Sleep(time.Second)
			}
			continue
		}
		if len(result) < 2 {
			continue
		}

		var job models.Job
		if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
			log.Error("failed to parse job", zap.Error(err))
			continue
		}

		lockKey := fmt.Sprintf("job_lock:%s", job.ID)
		locked, err := p.redis.SetNX(ctx, lockKey, "1", lockTTL).Result()
		if err != nil || !locked {
			continue
		}

		log.Info("processing job", zap.Stringer("job_id", job.ID), zap.String("type", job.Type))
		jobCtx, cancel := context.WithTimeout(ctx, jobDeadline)
		p.Process(jobCtx, &job)
		cancel()

		p.redis.Del(ctx, lockKey)
	}
}

// Process runs the pipeline for job and reports the outcome.
func (p *Pool) Process(ctx context.Context, job *models.Job) {
	var (
		msg     *models.WSMessage
		outcome = "completed"
		err     error
	)

	switch job.Type {
	case models.JobWorksheetGeneration:
		var ws *models.WorksheetArtifact
		ws, err = p.worksheets.Process(ctx, job)
		if err == nil && ws != nil {
			msg = &models.WSMessage{
				Type: models.EventWorksheetReady,
				Payload: models.CompletedEvent{
					JobID:      job.ID,
					ResultID:   ws.ID,
					ResultType: "worksheet",
					Topic:      ws.Topic,
				},
			}
		}
	case models.JobSyllabusProcessing:
		var n int
		n, err = p.syllabus.Process(ctx, job)
		if err == nil && n > 0 {
			msg = &models.WSMessage{
				Type:    models.EventSyllabusReady,
				Payload: map[string]any{"job_id": job.ID, "topics": n},
			}
		}
	default:
		err = fmt.Errorf("unknown job type: %s", job.Type)
	}

	switch {
	case err != nil:
		outcome = "failed"
		p.handleFailure(ctx, job, err)
	case msg == nil:
		outcome = "skipped"
	default:
		p.publisher.Publish(ctx, job.TeacherID(), *msg)
		p.logger.Info("job completed", zap.Stringer("job_id", job.ID))
	}
	p.metrics.IncPipelineRun(job.Type, outcome)
}

func (p *Pool) handleFailure(ctx context.Context, job *models.Job, err error) {
	p.logger.Error("job failed",
		zap.Stringer("job_id", job.ID),
		zap.String("type", job.Type),
		zap.String("path", job.ObjectPath),
		zap.Error(err),
	)

	// Detail stays in the log; the teacher only learns which upload failed.
	p.publisher.Publish(ctx, job.TeacherID(), models.WSMessage{
		Type: models.EventJobFailed,
		Payload: models.ErrorEvent{
			JobID:        job.ID,
			ErrorCode:    "JOB_FAILED",
			ErrorMessage: "We could not process your upload. Please try again.",
		},
	})
}
