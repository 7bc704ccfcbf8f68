package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/screa/jumpdest-cruncher/internal/config"
	"github.com/screa/jumpdest-cruncher/internal/crypto"
	logpkg "github.com/screa/jumpdest-cruncher/internal/logger"
	"github.com/screa/jumpdest-cruncher/pkg/cruncher"
	"github.com/screa/jumpdest-cruncher/pkg/types"
)

// usageError carries a message that is printed to the user as-is.
type usageError struct{ err error }

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func main() {
	cfg := config.NewConfig()
	rootCmd := newRootCmd(cfg)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, userMessage(err))
		os.Exit(1)
	}
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "jumpdest-cruncher <address> <jumpdest>",
		Short: "Brute-force a nonce whose keccak256 digest carries a jumpdest",
		Long: `Searches the 64-bit nonce space for a value whose keccak256 digest of
signature || address || nonce starts with the given 2-byte jumpdest and
ends with 0xd073. The first match found by any worker is reported.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, cfg, args)
		},
	}

	rootCmd.Flags().IntVarP(&cfg.Workers, "workers", "w", runtime.NumCPU(), "Number of worker goroutines")
	rootCmd.Flags().BoolVarP(&cfg.Verbose, "verbose", "v", false, "Verbose output")
	rootCmd.Flags().StringVarP(&cfg.LogFile, "log-file", "l", "", "Log file for progress tracking (default: stderr)")
	rootCmd.Flags().IntVarP(&cfg.LogInterval, "log-interval", "i", 5, "Logging interval in seconds")
	rootCmd.Flags().Uint8VarP(&cfg.Signature, "signature", "s", crypto.DefaultSignature, "Dispatch index placed in the signature field")
	rootCmd.Flags().Uint64Var(&cfg.Start, "start", cfg.Start, "First nonce to try")
	rootCmd.Flags().Uint64Var(&cfg.End, "end", cfg.End, "Last nonce to try (inclusive)")

	return rootCmd
}

func run(cmd *cobra.Command, cfg *config.Config, args []string) error {
	if err := cfg.ParseArgs(args); err != nil {
		return &usageError{err: err}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, closeLog, err := setupLogging(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer closeLog()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Checksumed Address: %s\n", cfg.Checksum)
	fmt.Fprintf(out, "Jumpdest: 0x%02x%02x\n", cfg.Jumpdest[0], cfg.Jumpdest[1])

	c, err := cruncher.NewCruncher(cfg, logger)
	if err != nil {
		return err
	}
	logger.Verbosef("Crunching with %d workers, signature 0x%02x, range %s",
		cfg.Workers, cfg.Signature, cfg.GetRangeDescription())

	stop := interruptOnSignal(logger, c)
	defer stop()

	result := c.Crunch()
	return report(out, logger, cfg, result)
}

// report prints the outcome. The digest of a found nonce is rebuilt from its
// text form and must agree with what the worker hashed.
func report(out io.Writer, logger *logpkg.Logger, cfg *config.Config, result *types.Result) error {
	if result.Exhausted() {
		fmt.Fprintln(out, "Crunching failed. Bigger range?")
		logger.Verbosef("Exhausted after %d attempts in %v", result.Attempts, result.Duration)
		return nil
	}

	digest, err := crypto.Assemble(cfg.Signature, cfg.Address, result.Nonce)
	if err != nil {
		return err
	}
	if digest != result.Digest {
		return fmt.Errorf("digest mismatch for nonce %d: worker %x, assembler %x", result.Nonce, result.Digest, digest)
	}

	fmt.Fprintf(out, "Hash: %x\n", digest)
	fmt.Fprintf(out, "i: %d\n", result.Nonce)
	fmt.Fprintf(out, "i (hex): %016x\n", result.Nonce)

	// Calculate rate safely
	rate := 0.0
	if result.Duration.Seconds() > 0 {
		rate = float64(result.Attempts) / result.Duration.Seconds()
	}
	logger.Verbosef("Attempts: %d, Duration: %v, Rate: %.2f hashes/sec", result.Attempts, result.Duration, rate)
	return nil
}

// interruptOnSignal terminates the process on Ctrl+C. Crunch has no
// cancellation of its own.
func interruptOnSignal(logger *logpkg.Logger, c *cruncher.Cruncher) (stop func()) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		select {
		case <-sigChan:
			logger.Printf("Received interrupt signal after %d attempts. Stopping.", c.Attempts())
			os.Exit(130)
		case <-done:
		}
	}()

	return func() {
		signal.Stop(sigChan)
		close(done)
	}
}

func setupLogging(cfg *config.Config, stderr io.Writer) (*logpkg.Logger, func(), error) {
	var logger *logpkg.Logger
	closeLog := func() {}

	if cfg.LogFile != "" {
		// Log to file
		file, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		logger = logpkg.NewWriter(file)
		logger.SetFlags(logpkg.LstdFlags | logpkg.Lmicroseconds)
		closeLog = func() { _ = file.Close() }
	} else {
		logger = logpkg.NewWriter(stderr)
		logger.SetFlags(logpkg.LstdFlags)
	}
	logger.SetVerbose(cfg.Verbose)
	return logger, closeLog, nil
}

func userMessage(err error) string {
	var ue *usageError
	if errors.As(err, &ue) {
		return ue.Error()
	}
	return "Error: " + err.Error()
}
