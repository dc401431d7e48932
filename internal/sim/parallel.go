package sim

import (
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Job is one entry of a RunMany batch.
type Job struct {
	Name    string
	Params  Parameters
	Options Options
}

// RunMany runs every job against m concurrently. Runs share nothing but
// the model, so the results are identical to running the jobs one after
// another. results[i] belongs to jobs[i]; it may be partial or nil when
// that job failed. The first error is returned.
func RunMany(m *Model, jobs []Job) ([]*Result, error) {
	results := make([]*Result, len(jobs))

	var g errgroup.Group
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			res, err := Run(m, job.Params, job.Options)
			results[i] = res
			if err != nil {
				return fmt.Errorf("%s: %w", job.Name, err)
			}
			return nil
		})
	}

	return results, g.Wait()
}
