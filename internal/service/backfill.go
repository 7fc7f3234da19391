package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/UnknownOlympus/locus/internal/metrics"
	"github.com/UnknownOlympus/locus/internal/models"
	"github.com/UnknownOlympus/locus/internal/repository"
	"github.com/UnknownOlympus/locus/internal/resolver"
)

// DefaultBatchSize is the number of pending addresses fetched per polling cycle.
const DefaultBatchSize = 100

// Task outcome labels.
const (
	statusSuccess   = "success"
	statusUnlocated = "unlocated"
	statusFailure   = "failure"
)

// BackfillService periodically locates stored customer addresses that only carry a postal code.
// It is the address-registration consumer of the resolver: every worker owns its own Resolver,
// so the single-flight guard never rejects work inside the pool.
type BackfillService struct {
	log          *slog.Logger
	repo         repository.Interface
	newResolver  func() *resolver.Resolver
	metrics      *metrics.Metrics
	numWorkers   int
	pollInterval time.Duration
	batchSize    int
}

// NewBackfillService creates a new instance of BackfillService.
func NewBackfillService(
	log *slog.Logger,
	repo repository.Interface,
	newResolver func() *resolver.Resolver,
	metrics *metrics.Metrics,
	numWorkers int,
	pollInterval time.Duration,
) *BackfillService {
	if numWorkers <= 0 {
		numWorkers = 1
	}

	return &BackfillService{
		log:          log,
		repo:         repo,
		newResolver:  newResolver,
		metrics:      metrics,
		numWorkers:   numWorkers,
		pollInterval: pollInterval,
		batchSize:    DefaultBatchSize,
	}
}

// Run polls for pending addresses until ctx is canceled.
func (bs *BackfillService) Run(ctx context.Context) {
	ticker := time.NewTicker(bs.pollInterval)
	defer ticker.Stop()

	bs.log.InfoContext(ctx, "Address backfill started", "workers", bs.numWorkers, "interval", bs.pollInterval)

	for {
		select {
		case <-ctx.Done():
			bs.log.InfoContext(ctx, "Address backfill stopped.")
			return
		case <-ticker.C:
			bs.log.InfoContext(ctx, "Polling for addresses to locate...")
			bs.processBatch(ctx)
		}
	}
}

// processBatch fetches one batch of pending addresses and fans it out to the worker pool.
func (bs *BackfillService) processBatch(ctx context.Context) {
	tasks, err := bs.repo.FetchPendingAddresses(ctx, bs.batchSize)
	if err != nil {
		bs.log.ErrorContext(ctx, "Failed to fetch pending addresses", "error", err)
		return
	}
	if len(tasks) == 0 {
		bs.log.InfoContext(ctx, "No addresses to process.")
		return
	}

	workers := min(bs.numWorkers, len(tasks))
	bs.log.InfoContext(ctx, "Found addresses to process. Starting worker pool.",
		"jobs", len(tasks),
		"num_workers", workers,
	)

	jobs := make(chan models.Task, len(tasks))
	var wgr sync.WaitGroup

	for i := 1; i <= workers; i++ {
		wgr.Add(1)
		go bs.worker(ctx, i, &wgr, jobs)
	}

	for _, task := range tasks {
		jobs <- task
	}
	close(jobs)

	wgr.Wait()
	bs.log.InfoContext(ctx, "Processing batch finished")
}

// worker resolves tasks from jobs with a Resolver of its own.
func (bs *BackfillService) worker(ctx context.Context, idx int, wg *sync.WaitGroup, jobs <-chan models.Task) {
	defer wg.Done()

	res := bs.newResolver()
	for task := range jobs {
		bs.metrics.ActiveWorkers.Inc()
		status := bs.handle(ctx, idx, res, task)
		bs.metrics.TaskProcessed.WithLabelValues(status).Inc()
		bs.metrics.ActiveWorkers.Dec()
	}
}

func (bs *BackfillService) handle(ctx context.Context, idx int, res *resolver.Resolver, task models.Task) string {
	bs.log.DebugContext(ctx, "Processing address", "worker", idx, "id", task.ID, "cep", task.PostalCode)

	result, err := res.ResolvePostalCode(ctx, task.PostalCode)
	if err != nil {
		bs.log.WarnContext(ctx, "Failed to resolve address", "worker", idx, "id", task.ID, "error", err)
		bs.recordFailure(ctx, idx, task, err.Error())
		return statusFailure
	}

	if result.Coordinate == nil {
		bs.log.InfoContext(ctx, "Address has no known location", "worker", idx, "id", task.ID)
		bs.recordFailure(ctx, idx, task, models.ErrNoCoordinateAvailable.Error())
		return statusUnlocated
	}

	if err = bs.repo.UpdateAddressLocation(ctx, task.ID, *result); err != nil {
		bs.log.ErrorContext(ctx, "Failed to store address location", "worker", idx, "id", task.ID, "error", err)
		return statusFailure
	}

	bs.log.DebugContext(ctx, "Worker located the address",
		"worker", idx,
		"id", task.ID,
		"tier", result.Tier,
		"source", result.Source,
	)

	return statusSuccess
}

func (bs *BackfillService) recordFailure(ctx context.Context, idx int, task models.Task, reason string) {
	if err := bs.repo.IncrementFailureCount(ctx, task.ID, reason); err != nil {
		bs.log.ErrorContext(ctx, "Could not update failure count for address",
			"worker", idx,
			"id", task.ID,
			"error", err,
		)
	}
}
