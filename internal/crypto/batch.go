package crypto

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/PatelShiv10/sgp-7-sem-sub001/internal/domain"
)

// DefaultWorkers bounds DecryptBatch when the caller passes zero.
const DefaultWorkers = 4

// Result is the outcome of decrypting one envelope of a batch.
type Result struct {
	Plaintext string
	Err       error
}

// DecryptBatch decrypts envs concurrently with at most workers goroutines.
// It never fails as a whole: each result carries its own error, and envelopes
// not reached before ctx is done carry ctx.Err().
func DecryptBatch(
	ctx context.Context,
	envs []domain.Envelope,
	priv domain.PrivateKey,
	workers int,
) []Result {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	out := make([]Result, len(envs))

	var g errgroup.Group
	g.SetLimit(workers)
	for i := range envs {
		if err := ctx.Err(); err != nil {
			out[i].Err = err
			continue
		}
		g.Go(func() error {
			pt, err := Decrypt(envs[i], priv)
			out[i] = Result{Plaintext: pt, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return out
}
