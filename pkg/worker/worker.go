package worker

import (
	"hash"
	"sync/atomic"

	"github.com/screa/jumpdest-cruncher/internal/crypto"
	"github.com/screa/jumpdest-cruncher/pkg/types"
)

// attempts are published to the shared counter in batches of this size
const flushEvery = 4096

// Worker hashes candidate nonces and checks them against the target
type Worker struct {
	config   *types.WorkerConfig
	attempts *atomic.Uint64
	hasher   hash.Hash

	// Pre-allocated buffers for performance
	input  [crypto.InputLen]byte // signature and address primed once
	digest [crypto.DigestLen]byte
}

// NewWorker creates a new worker instance
func NewWorker(config *types.WorkerConfig, attempts *atomic.Uint64) *Worker {
	w := &Worker{
		config:   config,
		attempts: attempts,
		hasher:   crypto.NewHasher(),
	}
	crypto.PutInput(&w.input, config.Signature, config.Address, 0)
	return w
}

// Digest computes the digest for nonce. The returned pointer is reused by
// the next call.
func (w *Worker) Digest(nonce uint64) *[crypto.DigestLen]byte {
	crypto.PutNonce(&w.input, nonce)
	crypto.DigestInto(w.hasher, w.input[:], &w.digest)
	return &w.digest
}

// ScanRange checks every nonce in [lo, hi]. It returns early when a match is
// found or when another worker has already set the found flag.
func (w *Worker) ScanRange(lo, hi uint64) (nonce uint64, digest [crypto.DigestLen]byte, ok bool) {
	if lo > hi {
		return 0, digest, false
	}

	var pending uint64
	defer func() {
		if w.attempts != nil {
			w.attempts.Add(pending)
		}
	}()

	for n := lo; ; n++ {
		if w.config.Found.Load() {
			return 0, digest, false
		}

		d := w.Digest(n)
		pending++
		if w.config.Target.Matches(d) {
			return n, *d, true
		}

		if pending == flushEvery && w.attempts != nil {
			w.attempts.Add(pending)
			pending = 0
		}
		if n == hi {
			return 0, digest, false
		}
	}
}
