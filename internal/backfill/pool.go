package backfill

import (
	"context"
	"fmt"
	"sync"
	"time"

	"xscraper/pkg/config"
	"xscraper/pkg/logger"
	"xscraper/pkg/models"
	"xscraper/pkg/ratelimit"
	"xscraper/pkg/retry"
	"xscraper/pkg/storage"
	"xscraper/pkg/twitter"
)

// Job represents a single thread to backfill
type Job struct {
	ThreadID string
}

// Result represents the outcome of a backfill job
type Result struct {
	Job      Job
	Success  bool
	Skipped  bool
	Error    error
	Duration time.Duration
	Posts    int
}

// ThreadFetcher fetches the detail response for one thread
type ThreadFetcher interface {
	CaptureThreadDetail(ctx context.Context, threadID string) ([]byte, error)
}

// DetailStore persists parsed thread details
type DetailStore interface {
	HasThreadDetail(threadID string) bool
	AppendThreadDetail(threadID string, records []models.PostRecord) (storage.ThreadUnit, error)
}

// WorkerPool manages concurrent thread backfill workers
type WorkerPool struct {
	numWorkers   int
	fetchTimeout time.Duration
	maxRetries   int
	retryDelay   time.Duration
	jobQueue     chan Job
	resultQueue  chan Result
	wg           sync.WaitGroup
	ctx          context.Context
	cancel       context.CancelFunc
	fetcher      ThreadFetcher
	store        DetailStore
	rateLimiter  ratelimit.Limiter
	logger       logger.Logger
}

// NewWorkerPool creates a new backfill worker pool
func NewWorkerPool(
	cfg *config.BackfillConfig,
	fetcher ThreadFetcher,
	store DetailStore,
	rateLimiter ratelimit.Limiter,
	log logger.Logger,
) *WorkerPool {
	ctx, cancel := context.WithCancel(context.Background())

	if log == nil {
		log = logger.GetLogger()
	}

	return &WorkerPool{
		numWorkers:   cfg.Workers,
		fetchTimeout: cfg.FetchTimeout,
		maxRetries:   cfg.MaxRetries,
		retryDelay:   cfg.RetryDelay,
		jobQueue:     make(chan Job, cfg.Workers*2), // Buffer size = 2x workers
		resultQueue:  make(chan Result, cfg.Workers),
		ctx:          ctx,
		cancel:       cancel,
		fetcher:      fetcher,
		store:        store,
		rateLimiter:  rateLimiter,
		logger:       log,
	}
}

// Start initializes and starts all workers
func (wp *WorkerPool) Start() {
	wp.logger.InfoWithFields("Starting backfill pool", map[string]interface{}{
		"num_workers": wp.numWorkers,
	})

	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

// Stop gracefully shuts down the worker pool
func (wp *WorkerPool) Stop() {
	wp.logger.Info("Stopping backfill pool...")

	// Close job queue to signal no more jobs will be added
	close(wp.jobQueue)

	// Wait for all workers to finish processing remaining jobs
	wp.wg.Wait()

	// Close result queue
	close(wp.resultQueue)

	// Cancel context
	wp.cancel()

	wp.logger.Info("Backfill pool stopped")
}

// Submit adds a new backfill job to the queue
func (wp *WorkerPool) Submit(job Job) error {
	select {
	case wp.jobQueue <- job:
		wp.logger.DebugWithFields("Job submitted to queue", map[string]interface{}{
			"thread_id": job.ThreadID,
		})
		return nil
	case <-wp.ctx.Done():
		return fmt.Errorf("backfill pool is shutting down")
	}
}

// Results returns the result channel for consuming backfill results
func (wp *WorkerPool) Results() <-chan Result {
	return wp.resultQueue
}

// worker is the main worker routine
func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	wp.logger.DebugWithFields("Worker started", map[string]interface{}{
		"worker_id": id,
	})

	for job := range wp.jobQueue {
		// Check if context is cancelled
		select {
		case <-wp.ctx.Done():
			wp.logger.DebugWithFields("Worker stopping - context cancelled", map[string]interface{}{
				"worker_id": id,
			})
			return
		default:
		}

		// Process the job
		result := wp.processJob(job, id)

		// Send result
		select {
		case wp.resultQueue <- result:
		case <-wp.ctx.Done():
			wp.logger.DebugWithFields("Worker stopping - context cancelled while sending result", map[string]interface{}{
				"worker_id": id,
			})
			return
		}
	}

	wp.logger.DebugWithFields("Worker stopping - job queue closed", map[string]interface{}{
		"worker_id": id,
	})
}

// processJob backfills a single thread
func (wp *WorkerPool) processJob(job Job, workerID int) Result {
	start := time.Now()
	result := Result{
		Job:     job,
		Success: false,
	}

	wp.logger.DebugWithFields("Worker processing thread", map[string]interface{}{
		"worker_id": workerID,
		"thread_id": job.ThreadID,
	})

	// Check if a detail unit already exists from an earlier run
	if wp.store.HasThreadDetail(job.ThreadID) {
		wp.logger.DebugWithFields("Thread already backfilled", map[string]interface{}{
			"worker_id": workerID,
			"thread_id": job.ThreadID,
		})
		result.Success = true
		result.Skipped = true
		result.Duration = time.Since(start)
		return result
	}

	// Wait for rate limit
	if err := wp.rateLimiter.Wait(wp.ctx); err != nil {
		result.Error = fmt.Errorf("rate limit wait aborted: %w", err)
		result.Duration = time.Since(start)
		return result
	}

	// Fetch the thread detail response, retrying transient failures
	body, err := retry.DoWithResult(func() ([]byte, error) {
		fetchCtx, cancel := context.WithTimeout(wp.ctx, wp.fetchTimeout)
		defer cancel()
		return wp.fetcher.CaptureThreadDetail(fetchCtx, job.ThreadID)
	}, &retry.Config{
		MaxAttempts: wp.maxRetries,
		Backoff:     &retry.ExponentialBackoff{BaseDelay: wp.retryDelay, MaxDelay: time.Minute, Multiplier: 2.0, JitterFactor: 0.1},
		RetryIf:     retry.DefaultRetryIf,
		Context:     wp.ctx,
		Logger:      wp.logger,
	})
	if err != nil {
		result.Error = fmt.Errorf("fetch failed: %w", err)
		result.Duration = time.Since(start)

		wp.logger.ErrorWithFields("Worker failed to fetch thread", map[string]interface{}{
			"worker_id": workerID,
			"thread_id": job.ThreadID,
			"error":     err.Error(),
			"duration":  result.Duration,
		})

		return result
	}

	// Parse the detail response
	detail, err := twitter.ParseThreadDetail(body)
	if err != nil {
		result.Error = fmt.Errorf("parse failed: %w", err)
		result.Duration = time.Since(start)

		wp.logger.ErrorWithFields("Worker failed to parse thread detail", map[string]interface{}{
			"worker_id": workerID,
			"thread_id": job.ThreadID,
			"error":     err.Error(),
		})

		return result
	}

	result.Posts = len(detail.Posts)

	// Persist the detail unit
	if _, err := wp.store.AppendThreadDetail(job.ThreadID, detail.Posts); err != nil {
		result.Error = fmt.Errorf("save failed: %w", err)
		result.Duration = time.Since(start)

		wp.logger.ErrorWithFields("Worker failed to save thread detail", map[string]interface{}{
			"worker_id": workerID,
			"thread_id": job.ThreadID,
			"error":     err.Error(),
			"posts":     result.Posts,
		})

		return result
	}

	result.Success = true
	result.Duration = time.Since(start)

	wp.logger.DebugWithFields("Worker completed thread backfill", map[string]interface{}{
		"worker_id": workerID,
		"thread_id": job.ThreadID,
		"posts":     result.Posts,
		"duration":  result.Duration,
	})

	return result
}

// GetQueueSize returns the current number of jobs in the queue
func (wp *WorkerPool) GetQueueSize() int {
	return len(wp.jobQueue)
}

// GetActiveWorkers returns the number of active workers
func (wp *WorkerPool) GetActiveWorkers() int {
	return wp.numWorkers
}
