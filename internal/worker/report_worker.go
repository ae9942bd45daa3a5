package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"reservio/internal/database"
	"reservio/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	TaskOccupancy = "occupancy"
)

// reportTaskPayload is persisted in ReportTask.Payload as JSON.
type reportTaskPayload struct {
	HotelID int64  `json:"hotel_id"`
	Start   string `json:"start"`
	End     string `json:"end"`
}

// ReportGenerator renders a report to disk and returns the file path.
type ReportGenerator interface {
	GenerateOccupancy(ctx context.Context, hotelID int64, start, end time.Time) (string, error)
}

// ReportWorker consumes report_queue tasks and renders spreadsheets.
// Tasks are persisted to the database first; redis carries the hot queue
// with an in-memory channel as fallback, and DB polling catches leftovers.
type ReportWorker struct {
	db            *database.DB
	generator     ReportGenerator
	redis         *redis.Client
	retryPolicy   RetryPolicy
	queue         chan models.ReportTask
	redisQueueKey string
	deadLetterKey string
	pollInterval  time.Duration
	batchSize     int
	logger        *log.Logger
}

// NewReportWorker builds a worker with sane defaults.
func NewReportWorker(db *database.DB, generator ReportGenerator, redisClient *redis.Client, retry RetryPolicy, logger *log.Logger) *ReportWorker {
	defaults := DefaultReportRetryPolicy()
	if retry.MaxRetries == 0 {
		retry.MaxRetries = defaults.MaxRetries
	}
	if retry.InitialDelay == 0 {
		retry.InitialDelay = defaults.InitialDelay
	}
	if retry.MaxDelay == 0 {
		retry.MaxDelay = defaults.MaxDelay
	}
	if retry.BackoffFactor == 0 {
		retry.BackoffFactor = defaults.BackoffFactor
	}
	if logger == nil {
		logger = log.Default()
	}

	return &ReportWorker{
		db:            db,
		generator:     generator,
		redis:         redisClient,
		retryPolicy:   retry,
		queue:         make(chan models.ReportTask, models.WorkerQueueSize),
		redisQueueKey: "reports:queue",
		deadLetterKey: "reports:deadletter",
		pollInterval:  2 * time.Second,
		batchSize:     20,
		logger:        logger,
	}
}

// EnqueueOccupancyReport persists the request and schedules it via redis
// or the in-memory queue.
func (w *ReportWorker) EnqueueOccupancyReport(ctx context.Context, hotelID int64, start, end time.Time) error {
	if hotelID == 0 {
		return errors.New("hotel id is required")
	}
	if !end.After(start) {
		return errors.New("report range end must be after start")
	}

	payload := reportTaskPayload{
		HotelID: hotelID,
		Start:   start.Format("2006-01-02"),
		End:     end.Format("2006-01-02"),
	}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	task := models.ReportTask{
		TaskType:  TaskOccupancy,
		HotelID:   hotelID,
		Payload:   string(payloadBytes),
		Status:    "pending",
		CreatedAt: time.Now(),
	}

	if err := w.db.CreateReportTask(ctx, &task); err != nil {
		return fmt.Errorf("persist report task: %w", err)
	}

	// Try redis first for durability.
	if w.redis != nil {
		if err := w.pushRedis(ctx, task); err != nil {
			w.logger.Printf("report_worker: redis push failed, fallback to memory queue: %v", err)
		} else {
			return nil
		}
	}

	// Fallback to in-memory queue if redis missing or failed.
	select {
	case w.queue <- task:
	default:
		w.logger.Printf("report_worker: in-memory queue full, task %d dropped to polling", task.ID)
	}

	return nil
}

// Start launches main loop; stops when ctx is done.
func (w *ReportWorker) Start(ctx context.Context) {
	w.logger.Printf("report_worker: started")
	defer w.logger.Printf("report_worker: stopped")

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if t, ok := w.tryLocalQueue(); ok {
			w.processTask(ctx, &t)
			continue
		}

		if t, ok := w.tryRedis(ctx); ok {
			w.processTask(ctx, &t)
			continue
		}

		tasks, err := w.db.GetPendingReportTasks(ctx, w.batchSize)
		if err != nil {
			w.logger.Printf("report_worker: fetch pending: %v", err)
			time.Sleep(w.pollInterval)
			continue
		}
		if len(tasks) == 0 {
			time.Sleep(w.pollInterval)
			continue
		}

		for i := range tasks {
			w.processTask(ctx, &tasks[i])
		}
	}
}

func (w *ReportWorker) tryLocalQueue() (models.ReportTask, bool) {
	select {
	case t := <-w.queue:
		return t, true
	default:
		return models.ReportTask{}, false
	}
}

func (w *ReportWorker) tryRedis(ctx context.Context) (models.ReportTask, bool) {
	if w.redis == nil {
		return models.ReportTask{}, false
	}
	res, err := w.redis.BRPop(ctx, time.Second, w.redisQueueKey).Result()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, redis.Nil) {
			return models.ReportTask{}, false
		}
		w.logger.Printf("report_worker: redis BRPOP error: %v", err)
		return models.ReportTask{}, false
	}
	if len(res) != 2 {
		return models.ReportTask{}, false
	}
	var task models.ReportTask
	if err := json.Unmarshal([]byte(res[1]), &task); err != nil {
		w.logger.Printf("report_worker: decode redis task: %v", err)
		return models.ReportTask{}, false
	}
	return task, true
}

func (w *ReportWorker) processTask(ctx context.Context, task *models.ReportTask) {
	payload, err := w.decodePayload(task.Payload)
	if err != nil {
		w.failTask(ctx, task, fmt.Errorf("decode payload: %w", err))
		return
	}

	if err := w.handleReportTask(ctx, task.TaskType, payload); err != nil {
		w.retryOrFail(ctx, task, err)
		return
	}

	if err := w.db.UpdateReportTaskStatus(ctx, task.ID, "completed", "", nil); err != nil {
		w.logger.Printf("report_worker: mark completed %d: %v", task.ID, err)
	}
}

func (w *ReportWorker) handleReportTask(ctx context.Context, taskType string, payload reportTaskPayload) error {
	switch taskType {
	case TaskOccupancy:
		start, err := time.Parse("2006-01-02", payload.Start)
		if err != nil {
			return fmt.Errorf("bad start date: %w", err)
		}
		end, err := time.Parse("2006-01-02", payload.End)
		if err != nil {
			return fmt.Errorf("bad end date: %w", err)
		}
		path, err := w.generator.GenerateOccupancy(ctx, payload.HotelID, start, end)
		if err != nil {
			return err
		}
		w.logger.Printf("report_worker: occupancy report for hotel %d written to %s", payload.HotelID, path)
		return nil
	default:
		return fmt.Errorf("unknown task type: %s", taskType)
	}
}

func (w *ReportWorker) retryOrFail(ctx context.Context, task *models.ReportTask, cause error) {
	attempt := task.RetryCount + 1
	if attempt >= w.retryPolicy.MaxRetries {
		if err := w.db.UpdateReportTaskStatus(ctx, task.ID, "failed", cause.Error(), nil); err != nil {
			w.logger.Printf("report_worker: mark failed %d: %v", task.ID, err)
		}
		w.pushDeadLetter(ctx, task)
		return
	}

	nextDelay := w.retryPolicy.NextDelay(attempt)
	nextTime := time.Now().Add(nextDelay)
	if err := w.db.UpdateReportTaskStatus(ctx, task.ID, "retry", cause.Error(), &nextTime); err != nil {
		w.logger.Printf("report_worker: mark retry %d: %v", task.ID, err)
	}
}

func (w *ReportWorker) failTask(ctx context.Context, task *models.ReportTask, err error) {
	if err := w.db.UpdateReportTaskStatus(ctx, task.ID, "failed", err.Error(), nil); err != nil {
		w.logger.Printf("report_worker: mark failed %d: %v", task.ID, err)
	}
	w.pushDeadLetter(ctx, task)
}

func (w *ReportWorker) decodePayload(raw string) (reportTaskPayload, error) {
	var payload reportTaskPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return payload, err
	}
	return payload, nil
}

func (w *ReportWorker) pushRedis(ctx context.Context, task models.ReportTask) error {
	if w.redis == nil {
		return errors.New("redis client is nil")
	}
	data, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return w.redis.LPush(ctx, w.redisQueueKey, data).Err()
}

func (w *ReportWorker) pushDeadLetter(ctx context.Context, task *models.ReportTask) {
	if w.redis == nil {
		return
	}
	data, err := json.Marshal(task)
	if err != nil {
		w.logger.Printf("report_worker: encode deadletter %d: %v", task.ID, err)
		return
	}
	if err := w.redis.LPush(ctx, w.deadLetterKey, data).Err(); err != nil {
		w.logger.Printf("report_worker: deadletter push %d: %v", task.ID, err)
	}
}
