package payout

import (
	"context"
	"sync"
)

// ProcessBulk pushes every item through Process on a bounded worker
// pool. Items touch disjoint lawyers, so they run in parallel with no
// cross-item lock; one item's failure is captured in its result and
// never aborts or rolls back the rest.
func (s *service) ProcessBulk(ctx context.Context, items []BulkItem, actorID uint, actorIP string) (*BulkResult, error) {
	results := make([]BulkItemResult, len(items))

	workers := s.config.BulkWorkers
	if workers > len(items) {
		workers = len(items)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range jobs {
				item := items[i]
				res, err := s.Process(ctx, ProcessRequest{
					LawyerID: item.LawyerID,
					Method:   item.Method,
					ActorID:  actorID,
					ActorIP:  actorIP,
				})
				if err != nil {
					results[i] = BulkItemResult{
						LawyerID: item.LawyerID,
						Success:  false,
						Error:    err.Error(),
					}
					continue
				}
				results[i] = BulkItemResult{
					LawyerID: item.LawyerID,
					Success:  true,
					PayoutID: res.Payout.ID,
					Amount:   res.Amount,
				}
			}
		}()
	}

	for i := range items {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	out := &BulkResult{Results: results}
	for _, r := range results {
		if r.Success {
			out.Processed++
		} else {
			out.Failed++
		}
	}
	out.Success = out.Failed == 0
	return out, nil
}
