package config

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	cfg := NewConfig()
	assert.Positive(t, cfg.Workers)
	assert.Equal(t, 5, cfg.LogInterval)
	assert.Equal(t, uint8(0x03), cfg.Signature)
	assert.Zero(t, cfg.Start)
	assert.Equal(t, uint64(math.MaxUint64), cfg.End)
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "full 64-bit domain", cfg.GetRangeDescription())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   error
	}{
		{name: "no workers", mutate: func(c *Config) { c.Workers = 0 }, want: ErrNoWorkers},
		{name: "inverted range", mutate: func(c *Config) { c.Start, c.End = 10, 9 }, want: ErrBadRange},
		{name: "single nonce range", mutate: func(c *Config) { c.Start, c.End = 10, 10 }},
		{name: "zero log interval", mutate: func(c *Config) { c.LogInterval = 0 }, want: ErrBadLogInterval},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestParseAddress(t *testing.T) {
	const want = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"

	for _, in := range []string{
		want,
		"0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed",
		"5AAEB6053F3E94C9B9A09F33669435E7EF1BEAED",
	} {
		checksum, lower, err := ParseAddress(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, checksum)
		assert.Equal(t, "5aaeb6053f3e94c9b9a09f33669435e7ef1beaed", lower)
	}

	for _, in := range []string{"", "0x1234", "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaez", "0x000000000000000000000000000000000000aa"} {
		_, _, err := ParseAddress(in)
		assert.ErrorIs(t, err, ErrInvalidAddress, in)
	}
}

func TestParseJumpdest(t *testing.T) {
	tests := []struct {
		in   string
		want [2]byte
		err  error
	}{
		{in: "0x1234", want: [2]byte{0x12, 0x34}},
		{in: "abcd", want: [2]byte{0xab, 0xcd}},
		{in: "0XABCD", want: [2]byte{0xab, 0xcd}},
		{in: "0x12", err: ErrJumpdestLength},
		{in: "0x123456", err: ErrJumpdestLength},
		{in: "", err: ErrJumpdestLength},
		{in: "0x123", err: ErrInvalidJumpdest},
		{in: "zzzz", err: ErrInvalidJumpdest},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseJumpdest(tt.in)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseArgs(t *testing.T) {
	cfg := NewConfig()
	assert.ErrorIs(t, cfg.ParseArgs(nil), ErrNoAddress)
	assert.ErrorIs(t, cfg.ParseArgs([]string{"0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"}), ErrNoJumpdest)
	assert.ErrorIs(t, cfg.ParseArgs([]string{"0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed", "0x12"}), ErrJumpdestLength)

	require.NoError(t, cfg.ParseArgs([]string{"0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed", "0x1234"}))
	assert.Equal(t, "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", cfg.Checksum)
	assert.Equal(t, "5aaeb6053f3e94c9b9a09f33669435e7ef1beaed", cfg.Address)
	assert.Equal(t, [2]byte{0x12, 0x34}, cfg.Jumpdest)
}
