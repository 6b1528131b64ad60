package inventory

import (
	"errors"
	"fmt"

	"github.com/arencloud/chione/internal/glacier"
)

var (
	// ErrUnknownVault means no record exists; vaults must be synced first.
	ErrUnknownVault = errors.New("unknown vault")
	// ErrProviderUnavailable matches every *ProviderError.
	ErrProviderUnavailable = errors.New("provider unavailable")
	// ErrAlreadyRequested is returned when an explicit job request finds the
	// vault past not_requested.
	ErrAlreadyRequested = errors.New("inventory already requested")
)

// ProviderError is a failed provider call. The stored record is left as it was.
type ProviderError struct {
	Op    string
	Vault string
	Err   error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s on vault %q: %v", e.Op, e.Vault, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

func (e *ProviderError) Is(target error) bool { return target == ErrProviderUnavailable }

// Code is the provider's error code, if it sent one.
func (e *ProviderError) Code() string { return glacier.ErrorCode(e.Err) }
