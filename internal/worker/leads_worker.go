package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"asterbot/internal/domain"
	"asterbot/internal/metrics"
	"asterbot/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// TaskAppendLead задача выгрузки контакта в таблицу лидов.
const TaskAppendLead = "append_lead"

// LeadsWorker забирает задачи из sync_queue и дописывает лиды в Google-таблицу.
// Redis используется как быстрая очередь, таблица sync_queue как надежная.
type LeadsWorker struct {
	store         domain.SyncQueueRepository
	sheets        domain.SheetsWriter
	redis         *redis.Client
	retryPolicy   RetryPolicy
	queue         chan models.SyncTask
	redisQueueKey string
	deadLetterKey string
	pollInterval  time.Duration
	batchSize     int
	logger        *zerolog.Logger
}

func NewLeadsWorker(store domain.SyncQueueRepository, sheets domain.SheetsWriter, redisClient *redis.Client, retry RetryPolicy, logger *zerolog.Logger) *LeadsWorker {
	if logger == nil {
		l := zerolog.Nop()
		logger = &l
	}

	return &LeadsWorker{
		store:         store,
		sheets:        sheets,
		redis:         redisClient,
		retryPolicy:   retry.withDefaults(),
		queue:         make(chan models.SyncTask, models.WorkerQueueSize),
		redisQueueKey: "leads:queue",
		deadLetterKey: "leads:deadletter",
		pollInterval:  2 * time.Second,
		batchSize:     20,
		logger:        logger,
	}
}

// EnqueueLead сохраняет задачу в базе и передает ее воркеру через Redis или локальную очередь.
func (w *LeadsWorker) EnqueueLead(ctx context.Context, lead *models.Lead) error {
	if lead == nil || lead.UserID == 0 {
		return errors.New("lead user id is required")
	}

	payload, err := json.Marshal(lead)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	task := models.SyncTask{
		TaskType: TaskAppendLead,
		UserID:   lead.UserID,
		Payload:  string(payload),
		Status:   models.SyncStatusPending,
	}
	if err := w.store.CreateSyncTask(ctx, &task); err != nil {
		return fmt.Errorf("persist sync task: %w", err)
	}

	if w.redis != nil {
		if err := w.pushRedis(ctx, w.redisQueueKey, task); err != nil {
			w.logger.Warn().Err(err).Int64("task_id", task.ID).Msg("redis push failed, fallback to memory queue")
		} else {
			return nil
		}
	}

	select {
	case w.queue <- task:
	default:
		w.logger.Warn().Int64("task_id", task.ID).Msg("memory queue full, task left for polling")
	}
	return nil
}

// Start крутит цикл обработки до отмены ctx.
func (w *LeadsWorker) Start(ctx context.Context) {
	w.logger.Info().Msg("leads worker started")
	defer w.logger.Info().Msg("leads worker stopped")

	for {
		if ctx.Err() != nil {
			return
		}

		if t, ok := w.tryLocalQueue(); ok {
			w.processTask(ctx, &t)
			continue
		}

		if t, ok := w.tryRedis(ctx); ok {
			w.processTask(ctx, &t)
			continue
		}

		tasks, err := w.store.GetPendingSyncTasks(ctx, w.batchSize)
		if err != nil {
			w.logger.Error().Err(err).Msg("failed to fetch pending sync tasks")
		}
		if len(tasks) == 0 {
			if !sleep(ctx, w.pollInterval) {
				return
			}
			continue
		}

		for i := range tasks {
			w.processTask(ctx, &tasks[i])
		}
	}
}

func (w *LeadsWorker) tryLocalQueue() (models.SyncTask, bool) {
	select {
	case t := <-w.queue:
		return t, true
	default:
		return models.SyncTask{}, false
	}
}

func (w *LeadsWorker) tryRedis(ctx context.Context) (models.SyncTask, bool) {
	if w.redis == nil {
		return models.SyncTask{}, false
	}
	res, err := w.redis.BRPop(ctx, time.Second, w.redisQueueKey).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			w.logger.Error().Err(err).Msg("redis BRPOP failed")
		}
		return models.SyncTask{}, false
	}
	if len(res) != 2 {
		return models.SyncTask{}, false
	}
	var task models.SyncTask
	if err := json.Unmarshal([]byte(res[1]), &task); err != nil {
		w.logger.Error().Err(err).Msg("failed to decode redis task")
		return models.SyncTask{}, false
	}
	return task, true
}

func (w *LeadsWorker) processTask(ctx context.Context, task *models.SyncTask) {
	if task.TaskType != TaskAppendLead {
		w.failTask(ctx, task, fmt.Errorf("unknown task type: %s", task.TaskType))
		return
	}

	lead, err := decodeLead(task.Payload)
	if err != nil {
		w.failTask(ctx, task, fmt.Errorf("decode payload: %w", err))
		return
	}

	if err := w.sheets.AppendLead(ctx, lead); err != nil {
		w.retryOrFail(ctx, task, err)
		return
	}

	metrics.IncLeadSync(models.SyncStatusCompleted)
	if err := w.store.UpdateSyncTaskStatus(ctx, task.ID, models.SyncStatusCompleted, "", nil); err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("failed to mark task completed")
	}
}

func (w *LeadsWorker) retryOrFail(ctx context.Context, task *models.SyncTask, cause error) {
	attempt := task.RetryCount + 1
	if w.retryPolicy.Exhausted(attempt) {
		w.failTask(ctx, task, cause)
		return
	}

	metrics.IncLeadSync(models.SyncStatusRetry)
	next := time.Now().Add(w.retryPolicy.NextDelay(attempt))
	if err := w.store.UpdateSyncTaskStatus(ctx, task.ID, models.SyncStatusRetry, cause.Error(), &next); err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("failed to mark task for retry")
	}
	w.logger.Warn().Err(cause).Int64("task_id", task.ID).Int("attempt", attempt).Time("next_retry_at", next).Msg("lead sync failed, will retry")
}

func (w *LeadsWorker) failTask(ctx context.Context, task *models.SyncTask, cause error) {
	metrics.IncLeadSync(models.SyncStatusFailed)
	if err := w.store.UpdateSyncTaskStatus(ctx, task.ID, models.SyncStatusFailed, cause.Error(), nil); err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("failed to mark task failed")
	}
	w.logger.Error().Err(cause).Int64("task_id", task.ID).Msg("lead sync failed permanently")
	if w.redis != nil {
		if err := w.pushRedis(ctx, w.deadLetterKey, *task); err != nil {
			w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("deadletter push failed")
		}
	}
}

func (w *LeadsWorker) pushRedis(ctx context.Context, key string, task models.SyncTask) error {
	data, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return w.redis.LPush(ctx, key, data).Err()
}

func decodeLead(raw string) (*models.Lead, error) {
	var lead models.Lead
	if err := json.Unmarshal([]byte(raw), &lead); err != nil {
		return nil, err
	}
	return &lead, nil
}

// sleep ждет d или отмену ctx; false означает отмену.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
