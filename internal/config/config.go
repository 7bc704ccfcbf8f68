package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"runtime"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/screa/jumpdest-cruncher/internal/crypto"
)

// Errors
var (
	ErrNoAddress       = errors.New("No address provided.")
	ErrNoJumpdest      = errors.New("No jumpdest provided.")
	ErrInvalidAddress  = errors.New("Invalid address")
	ErrInvalidJumpdest = errors.New("Invalid jumpdest")
	ErrJumpdestLength  = errors.New("Jumpdest can only be 2 bytes.")
	ErrNoWorkers       = errors.New("workers must be greater than zero")
	ErrBadRange        = errors.New("start nonce must not exceed end nonce")
	ErrBadLogInterval  = errors.New("log interval must be greater than zero")
)

// JumpdestLen is the number of bytes in a jumpdest
const JumpdestLen = 2

// Config holds the application configuration
type Config struct {
	Workers     int
	Verbose     bool
	LogFile     string
	LogInterval int // Logging interval in seconds
	Signature   uint8
	Start       uint64 // first nonce, inclusive
	End         uint64 // last nonce, inclusive

	// Set from positional arguments by ParseArgs
	Address  string // lowercase, 40 hex chars, no prefix
	Checksum string // EIP-55, 0x-prefixed
	Jumpdest [JumpdestLen]byte
}

// NewConfig creates a new configuration with default values
func NewConfig() *Config {
	return &Config{
		Workers:     runtime.NumCPU(),
		LogInterval: 5, // Default 5 seconds
		Signature:   crypto.DefaultSignature,
		Start:       0,
		End:         math.MaxUint64,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Workers <= 0 {
		return ErrNoWorkers
	}
	if c.Start > c.End {
		return ErrBadRange
	}
	if c.LogInterval <= 0 {
		return ErrBadLogInterval
	}
	return nil
}

// ParseArgs fills Address, Checksum and Jumpdest from the positional arguments.
func (c *Config) ParseArgs(args []string) error {
	if len(args) < 1 {
		return ErrNoAddress
	}
	if len(args) < 2 {
		return ErrNoJumpdest
	}

	checksum, lower, err := ParseAddress(args[0])
	if err != nil {
		return err
	}
	jumpdest, err := ParseJumpdest(args[1])
	if err != nil {
		return err
	}

	c.Checksum = checksum
	c.Address = lower
	c.Jumpdest = jumpdest
	return nil
}

// ParseAddress validates a 20-byte hex address (any case, optional 0x) and
// returns its EIP-55 checksum form and the lowercase hex used for hashing.
func ParseAddress(s string) (checksum string, lower string, err error) {
	s = strings.TrimSpace(s)
	if !common.IsHexAddress(s) {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	checksum = common.HexToAddress(s).Hex()
	return checksum, strings.ToLower(checksum[2:42]), nil
}

// ParseJumpdest decodes a hex jumpdest (optional 0x) which must be exactly 2 bytes.
func ParseJumpdest(s string) ([JumpdestLen]byte, error) {
	var out [JumpdestLen]byte

	// Remove 0x prefix if present
	code := strings.TrimSpace(s)
	if len(code) >= 2 && (code[:2] == "0x" || code[:2] == "0X") {
		code = code[2:]
	}

	b, err := hex.DecodeString(code)
	if err != nil {
		return out, fmt.Errorf("%w: %v", ErrInvalidJumpdest, err)
	}
	if len(b) != JumpdestLen {
		return out, ErrJumpdestLength
	}
	copy(out[:], b)
	return out, nil
}

// GetRangeDescription returns a human-readable description of the nonce range
func (c *Config) GetRangeDescription() string {
	if c.Start == 0 && c.End == math.MaxUint64 {
		return "full 64-bit domain"
	}
	return fmt.Sprintf("%d..%d", c.Start, c.End)
}
