package types

import (
	"math"
	"sync/atomic"
	"time"

	"github.com/screa/jumpdest-cruncher/internal/crypto"
)

// MatchTarget is the byte pattern a digest must carry
type MatchTarget struct {
	Jump0  byte // digest[0]
	Jump1  byte // digest[1]
	Tail30 byte // digest[30]
	Tail31 byte // digest[31]
}

// NewMatchTarget builds a target for a 2-byte jumpdest with the fixed tail bytes.
func NewMatchTarget(jumpdest [2]byte) MatchTarget {
	return MatchTarget{
		Jump0:  jumpdest[0],
		Jump1:  jumpdest[1],
		Tail30: crypto.TailByte30,
		Tail31: crypto.TailByte31,
	}
}

// Matches reports whether digest bytes 0, 1, 30 and 31 equal the target.
// The remaining bytes are ignored.
func (t MatchTarget) Matches(digest *[crypto.DigestLen]byte) bool {
	return digest[0] == t.Jump0 &&
		digest[1] == t.Jump1 &&
		digest[30] == t.Tail30 &&
		digest[31] == t.Tail31
}

// Range is an inclusive range of nonces
type Range struct {
	Start uint64
	End   uint64
}

// FullRange covers every 64-bit nonce.
func FullRange() Range {
	return Range{Start: 0, End: math.MaxUint64}
}

// Result is the terminal outcome of a crunch: either a found nonce or exhaustion.
type Result struct {
	Found    bool
	Nonce    uint64
	Digest   [crypto.DigestLen]byte
	Attempts uint64
	Duration time.Duration
}

// Exhausted reports whether the whole range was searched without a match.
func (r *Result) Exhausted() bool {
	return !r.Found
}

// WorkerConfig contains configuration shared by all workers of one crunch
type WorkerConfig struct {
	Signature byte
	Address   [crypto.AddressLen]byte
	Target    MatchTarget

	// Set once by the first worker that finds a match; polled before every candidate.
	Found *atomic.Bool
}
