package pipeline

import (
	"context"
	"sync"

	"github.com/joseph-ayodele/finvoice-bridge/constants"
	"github.com/joseph-ayodele/finvoice-bridge/internal/entity"
)

// BatchStats aggregates outcome counts for one batch run.
type BatchStats struct {
	Total       int
	Succeeded   int
	NeedsReview int
	Rejected    int
}

// ProcessBatch fans documents out over concurrency workers and returns
// outcomes in input order. Documents share nothing, so no coordination is
// needed beyond the fan-out and fan-in here.
func (p *Processor) ProcessBatch(ctx context.Context, docs []entity.Document, concurrency int) ([]entity.Outcome, BatchStats) {
	if concurrency <= 0 {
		concurrency = 1
	}
	if concurrency > len(docs) {
		concurrency = len(docs)
	}

	outcomes := make([]entity.Outcome, len(docs))
	indexes := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				outcomes[i] = p.ProcessDocument(ctx, docs[i])
			}
		}()
	}

feed:
	for i := range docs {
		select {
		case <-ctx.Done():
			break feed
		case indexes <- i:
		}
	}
	close(indexes)
	wg.Wait()

	var stats BatchStats
	for _, out := range outcomes {
		switch out.Status {
		case constants.StatusSucceeded:
			stats.Succeeded++
		case constants.StatusNeedsReview:
			stats.NeedsReview++
		case constants.StatusRejected:
			stats.Rejected++
		}
	}
	stats.Total = stats.Succeeded + stats.NeedsReview + stats.Rejected

	p.logger.Info("pipeline.batch.done",
		"total", stats.Total,
		"succeeded", stats.Succeeded,
		"needs_review", stats.NeedsReview,
		"rejected", stats.Rejected,
	)
	return outcomes, stats
}
