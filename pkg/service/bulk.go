package service

import (
	"runtime"
	"sync"

	"github.com/velkovb/taskforge/pkg/models"
)

// BulkResult is the independent outcome for one task in a bulk operation.
type BulkResult struct {
	TaskID   string
	Task     models.Task
	Err      error
	Warnings []error
}

type bulkJob struct {
	index  int
	taskID string
}

// bulkPool is a bounded worker pool for bulk operations. Items run
// concurrently and fail independently; the pool never aborts the batch
// because one item failed. Collisions between items and outside writers are
// caught by the per-task version check, not by cross-task locking.
type bulkPool struct {
	svc     *TaskService
	workers int
}

func newBulkPool(svc *TaskService, workers int) *bulkPool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &bulkPool{svc: svc, workers: workers}
}

func (p *bulkPool) run(userID string, taskIDs []string, update TaskUpdate) []BulkResult {
	results := make([]BulkResult, len(taskIDs))
	jobs := make(chan bulkJob, p.workers)

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				res, err := p.svc.UpdateTask(userID, job.taskID, update)
				results[job.index] = BulkResult{
					TaskID:   job.taskID,
					Task:     res.Task,
					Err:      err,
					Warnings: res.Warnings,
				}
			}
		}()
	}
	for i, id := range taskIDs {
		jobs <- bulkJob{index: i, taskID: id}
	}
	close(jobs)
	wg.Wait()
	return results
}

// BulkUpdate applies the update to each task independently and returns a
// result per task id, in input order. The aggregate call fails only when the
// caller lacks the bulk_update permission; individual item failures are
// reported in their result entries and each item still produces its own
// audit entry.
func (s *TaskService) BulkUpdate(userID string, taskIDs []string, update TaskUpdate) ([]BulkResult, error) {
	const op = "bulk_update"
	if err := s.authorize(userID, models.BulkUpdateAction, op, ""); err != nil {
		return nil, err
	}
	results := newBulkPool(s, s.cfg.BulkWorkers).run(userID, taskIDs, update)

	succeeded := 0
	for _, r := range results {
		if r.Err == nil {
			succeeded++
		}
	}
	s.logger.Infof("Bulk update by %s: %d/%d tasks updated", userID, succeeded, len(taskIDs))
	return results, nil
}
