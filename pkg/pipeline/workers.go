package pipeline

import (
	"context"
	"sync"

	"github.com/dtnitsch/sweep-schedules/models"
)

type job struct {
	index int
	asset models.Asset
}

type result struct {
	index   int
	outcome Outcome
}

// Run processes assets on a pool of workers. Outcomes are returned in the
// order of assets. Documents are independent: a failure only marks its own
// outcome. Assets not yet started when ctx is cancelled fail with ctx's error.
func Run(ctx context.Context, p *Processor, buildID string, assets []models.Asset, workers int) []Outcome {
	if workers < 1 {
		workers = 1
	}

	p.logger().Info("Starting build workers", "asset_count", len(assets), "workers", workers, "build_id", buildID)
	var wg sync.WaitGroup
	jobs := make(chan job, len(assets))
	results := make(chan result, len(assets))

	for w := 1; w <= workers; w++ {
		wg.Add(1)
		go worker(ctx, w, p, buildID, &wg, jobs, results)
	}

	for i, asset := range assets {
		jobs <- job{index: i, asset: asset}
	}
	close(jobs)

	wg.Wait()
	close(results)
	p.logger().Info("All build workers finished", "build_id", buildID)

	outcomes := make([]Outcome, len(assets))
	for r := range results {
		outcomes[r.index] = r.outcome
	}
	return outcomes
}

func worker(ctx context.Context, id int, p *Processor, buildID string, wg *sync.WaitGroup, jobs <-chan job, results chan<- result) {
	defer wg.Done()
	for j := range jobs {
		if err := ctx.Err(); err != nil {
			results <- result{index: j.index, outcome: Outcome{Asset: j.asset, Error: err, ErrorType: Cancelled}}
			continue
		}
		p.logger().Debug("Processing asset", "worker_id", id, "asset", j.asset.UUID, "url", j.asset.URL)
		results <- result{index: j.index, outcome: p.Process(ctx, buildID, j.asset)}
	}
}

// Tally counts succeeded and failed outcomes.
func Tally(outcomes []Outcome) (succeeded, failed int) {
	for _, o := range outcomes {
		if o.OK() {
			succeeded++
		} else {
			failed++
		}
	}
	return succeeded, failed
}
