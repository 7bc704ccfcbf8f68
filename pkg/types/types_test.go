package types

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/screa/jumpdest-cruncher/internal/crypto"
)

func TestNewMatchTarget(t *testing.T) {
	target := NewMatchTarget([2]byte{0x12, 0x34})
	assert.Equal(t, MatchTarget{Jump0: 0x12, Jump1: 0x34, Tail30: 0xD0, Tail31: 0x73}, target)
}

func TestMatchTargetMatches(t *testing.T) {
	target := NewMatchTarget([2]byte{0x12, 0x34})

	matching := func() [crypto.DigestLen]byte {
		var d [crypto.DigestLen]byte
		d[0], d[1], d[30], d[31] = 0x12, 0x34, 0xD0, 0x73
		return d
	}

	tests := []struct {
		name     string
		mutate   func(d *[crypto.DigestLen]byte)
		expected bool
	}{
		{name: "exact bytes", mutate: func(d *[crypto.DigestLen]byte) {}, expected: true},
		{
			name: "other bytes ignored",
			mutate: func(d *[crypto.DigestLen]byte) {
				for i := 2; i < 30; i++ {
					d[i] = 0xff
				}
			},
			expected: true,
		},
		{name: "byte 0 differs", mutate: func(d *[crypto.DigestLen]byte) { d[0] = 0x13 }},
		{name: "byte 1 differs", mutate: func(d *[crypto.DigestLen]byte) { d[1] = 0x00 }},
		{name: "byte 30 differs", mutate: func(d *[crypto.DigestLen]byte) { d[30] = 0xD1 }},
		{name: "byte 31 differs", mutate: func(d *[crypto.DigestLen]byte) { d[31] = 0x74 }},
		{name: "jump bytes swapped", mutate: func(d *[crypto.DigestLen]byte) { d[0], d[1] = d[1], d[0] }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := matching()
			tt.mutate(&d)
			assert.Equal(t, tt.expected, target.Matches(&d))
		})
	}
}

func TestFullRange(t *testing.T) {
	r := FullRange()
	assert.Zero(t, r.Start)
	assert.Equal(t, uint64(math.MaxUint64), r.End)
}

func TestResultExhausted(t *testing.T) {
	assert.True(t, (&Result{}).Exhausted())
	assert.False(t, (&Result{Found: true}).Exhausted())
}
