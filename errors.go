package blockchain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidChain marks a block or chain that failed link or
	// proof-of-work verification. Always recoverable by discarding the
	// candidate.
	ErrInvalidChain = errors.New("invalid chain")

	// ErrMiningCancelled is returned by a search that was aborted before a
	// valid nonce was found.
	ErrMiningCancelled = errors.New("mining cancelled")

	// ErrEngineStopped is returned for work submitted after Stop.
	ErrEngineStopped = errors.New("engine stopped")

	// ErrUnknownFormat is returned by the report renderers.
	ErrUnknownFormat = errors.New("format must be either text or json")
)

// ValidationError describes malformed transaction input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ChainError pinpoints the block at which verification failed.
type ChainError struct {
	Index  uint64
	Reason string
}

func (e *ChainError) Error() string {
	return fmt.Sprintf("%s: block %d: %s", ErrInvalidChain, e.Index, e.Reason)
}

func (e *ChainError) Unwrap() error {
	return ErrInvalidChain
}
