// Package cruncher searches the nonce domain in parallel for a digest that
// carries a jumpdest pattern.
//
// The range is cut into fixed-size chunks that idle workers claim from a
// shared cursor. The first worker to find a match wins; every other worker
// sees the found flag before hashing its next candidate and returns. Which
// match is reported when several exist depends on scheduling: it is the first
// one found, not the numerically smallest.
package cruncher

import (
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/screa/jumpdest-cruncher/internal/config"
	"github.com/screa/jumpdest-cruncher/internal/crypto"
	"github.com/screa/jumpdest-cruncher/internal/logger"
	"github.com/screa/jumpdest-cruncher/pkg/types"
	"github.com/screa/jumpdest-cruncher/pkg/worker"
)

// DefaultChunkSize is the number of nonces a worker claims at a time
const DefaultChunkSize uint64 = 1 << 16

// Cruncher coordinates the workers of one search
type Cruncher struct {
	config       *config.Config
	logger       *logger.Logger
	workerConfig *types.WorkerConfig
	rng          types.Range
	chunkSize    uint64
	chunks       uint64

	next     atomic.Uint64 // index of the next unclaimed chunk
	attempts atomic.Uint64
	found    atomic.Bool
	result   *types.Result // written once, by the worker that flips found
}

// NewCruncher creates a cruncher for an already parsed configuration.
// Input construction problems are reported here, before any worker starts.
func NewCruncher(cfg *config.Config, log *logger.Logger) (*Cruncher, error) {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.Start > cfg.End {
		return nil, config.ErrBadRange
	}
	if log == nil {
		log = logger.Discard()
	}

	addr, err := crypto.DecodeAddress(cfg.Address)
	if err != nil {
		return nil, err
	}
	if _, err := crypto.Assemble(cfg.Signature, cfg.Address, cfg.Start); err != nil {
		return nil, err
	}

	c := &Cruncher{
		config: cfg,
		logger: log,
		rng:    types.Range{Start: cfg.Start, End: cfg.End},
	}
	c.workerConfig = &types.WorkerConfig{
		Signature: cfg.Signature,
		Address:   addr,
		Target:    types.NewMatchTarget(cfg.Jumpdest),
		Found:     &c.found,
	}
	c.setChunkSize(DefaultChunkSize)
	return c, nil
}

func (c *Cruncher) setChunkSize(size uint64) {
	if size == 0 {
		size = 1
	}
	c.chunkSize = size
	c.chunks = (c.rng.End-c.rng.Start)/size + 1
}

// SetTarget replaces the match target. It must not be called while Crunch runs.
func (c *Cruncher) SetTarget(target types.MatchTarget) {
	c.workerConfig.Target = target
}

// Target returns the match target in use.
func (c *Cruncher) Target() types.MatchTarget {
	return c.workerConfig.Target
}

// Attempts returns the number of nonces hashed so far.
func (c *Cruncher) Attempts() uint64 {
	return c.attempts.Load()
}

// Crunch runs the search to completion and returns a found or exhausted result.
func (c *Cruncher) Crunch() *types.Result {
	start := time.Now()
	c.next.Store(0)
	c.attempts.Store(0)
	c.found.Store(false)
	c.result = nil

	// Start periodic logging if verbose mode is enabled
	var logDone, logStopped chan struct{}
	if c.logger.Verbose() {
		interval := time.Duration(c.config.LogInterval) * time.Second
		logDone = make(chan struct{})
		logStopped = make(chan struct{})
		go c.periodicLogger(time.NewTicker(interval), logDone, logStopped, start)

		c.logger.Printf("Crunching %s with %d workers, logging every %d seconds...",
			c.config.GetRangeDescription(), c.config.Workers, c.config.LogInterval)
	}

	var g errgroup.Group
	for i := 0; i < c.config.Workers; i++ {
		g.Go(c.work)
	}
	// Workers never fail; Wait only joins them.
	_ = g.Wait()

	if logDone != nil {
		close(logDone)
		<-logStopped
	}

	result := c.result
	if result == nil {
		result = &types.Result{}
	}
	result.Attempts = c.attempts.Load()
	result.Duration = time.Since(start)
	return result
}

// work claims chunks until the range is used up or a match is known.
func (c *Cruncher) work() error {
	w := worker.NewWorker(c.workerConfig, &c.attempts)

	for !c.found.Load() {
		lo, hi, ok := c.nextChunk()
		if !ok {
			return nil
		}

		nonce, digest, ok := w.ScanRange(lo, hi)
		if ok && c.found.CompareAndSwap(false, true) {
			c.result = &types.Result{
				Found:  true,
				Nonce:  nonce,
				Digest: digest,
			}
			return nil
		}
	}
	return nil
}

// nextChunk claims the next unscanned chunk as an inclusive range.
func (c *Cruncher) nextChunk() (lo, hi uint64, ok bool) {
	idx := c.next.Add(1) - 1
	if idx >= c.chunks {
		return 0, 0, false
	}

	lo = c.rng.Start + idx*c.chunkSize
	hi = c.rng.End
	if c.rng.End-lo >= c.chunkSize {
		hi = lo + c.chunkSize - 1
	}
	return lo, hi, true
}

// periodicLogger logs progress at regular intervals
func (c *Cruncher) periodicLogger(ticker *time.Ticker, done, stopped chan struct{}, start time.Time) {
	defer close(stopped)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.logger.Print(progressLine(c.attempts.Load(), time.Since(start)))
		case <-done:
			return
		}
	}
}

func progressLine(attempts uint64, elapsed time.Duration) string {
	// Calculate rate safely
	rate := 0.0
	if elapsed.Seconds() > 0 {
		rate = float64(attempts) / elapsed.Seconds()
	}
	return fmt.Sprintf("Progress: %d attempts, %.2f hashes/sec, No match yet", attempts, rate)
}
