package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/rkdansdlf/kbo-data/internal/store"
)

// Fetcher retrieves the page for one unit of work. A nil PageSource with
// a nil error means the source has nothing for this unit, a normal
// outcome recorded as no-data.
type Fetcher interface {
	RecordPage(ctx context.Context, playerID int, series, recordType string) (*PageSource, error)
}

// Run processes a batch of already-fetched pages with a worker pool and
// returns the merged result.
func (p *Processor) Run(ctx context.Context, sources []PageSource, workers int) store.RunResult {
	start := time.Now()
	var total store.RunResult
	if len(sources) == 0 {
		return total
	}

	if workers < 1 {
		workers = 1
	}
	if workers > len(sources) {
		workers = len(sources)
	}

	ch := make(chan PageSource, len(sources))
	for _, src := range sources {
		ch <- src
	}
	close(ch)

	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for src := range ch {
				res := p.Process(ctx, src)
				mu.Lock()
				total.Add(res)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if p.logger != nil {
		p.logger.Info("batch complete",
			"pages", len(sources), "workers", workers,
			"duration", time.Since(start), "summary", total.Summary())
	}
	return total
}

// ProcessQueue claims pending units of work, fetches and processes each,
// and records the per-unit outcome back on the queue. Re-running it is
// how an interrupted crawl resumes.
func (p *Processor) ProcessQueue(ctx context.Context, queue *store.Queue, fetcher Fetcher, limit, maxRetries, workers int) store.RunResult {
	start := time.Now()
	var total store.RunResult

	items, err := queue.Claim(ctx, limit, maxRetries)
	if err != nil {
		total.AddErrorf("claim queue items: %v", err)
		return total
	}
	if len(items) == 0 {
		if p.logger != nil {
			p.logger.Info("queue empty, nothing to process")
		}
		return total
	}
	if p.logger != nil {
		p.logger.Info("claimed queue items", "count", len(items))
	}

	if workers < 1 {
		workers = 1
	}
	if workers > len(items) {
		workers = len(items)
	}

	ch := make(chan store.QueueItem, len(items))
	for _, item := range items {
		ch <- item
	}
	close(ch)

	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range ch {
				res := p.processItem(ctx, queue, fetcher, item)
				mu.Lock()
				total.Add(res)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if p.logger != nil {
		p.logger.Info("queue run complete",
			"items", len(items), "workers", workers,
			"duration", time.Since(start), "summary", total.Summary())
	}
	return total
}

func (p *Processor) processItem(ctx context.Context, queue *store.Queue, fetcher Fetcher, item store.QueueItem) store.RunResult {
	var result store.RunResult

	src, err := fetcher.RecordPage(ctx, item.PlayerID, item.Series, item.RecordType)
	if err != nil {
		result.AddErrorf("fetch player %d %s: %v", item.PlayerID, item.RecordType, err)
		if mErr := queue.MarkFailed(ctx, item.ID, err.Error()); mErr != nil {
			result.AddErrorf("mark item %d failed: %v", item.ID, mErr)
		}
		return result
	}
	if src == nil {
		result.NoData++
		if mErr := queue.MarkDone(ctx, item.ID); mErr != nil {
			result.AddErrorf("mark item %d done: %v", item.ID, mErr)
		}
		return result
	}

	result = p.Process(ctx, *src)
	if len(result.Errors) > 0 {
		if mErr := queue.MarkFailed(ctx, item.ID, result.Errors[0]); mErr != nil {
			result.AddErrorf("mark item %d failed: %v", item.ID, mErr)
		}
		return result
	}
	if mErr := queue.MarkDone(ctx, item.ID); mErr != nil {
		result.AddErrorf("mark item %d done: %v", item.ID, mErr)
	}
	return result
}
