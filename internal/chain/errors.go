// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chain

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration marks a mint that cannot be attempted as configured.
	// Retrying without changing configuration or input will fail again.
	ErrConfiguration = errors.New("chain: configuration error")

	// ErrNoTransferEvent is reported when a mined mint emitted no
	// Transfer-from-zero log for the recipient.
	ErrNoTransferEvent = errors.New("no Transfer event from the zero address in receipt")

	// ErrReverted is reported when the mint transaction was mined but failed.
	ErrReverted = errors.New("transaction reverted")
)

// MintError is a chain-side mint failure. TxHash is set once a transaction
// was broadcast; such mints must not be retried blindly.
type MintError struct {
	Network string
	TxHash  string
	Err     error
}

func (e *MintError) Error() string {
	if e.TxHash != "" {
		return fmt.Sprintf("mint on %s failed (tx %s): %v", e.Network, e.TxHash, e.Err)
	}
	return fmt.Sprintf("mint on %s failed: %v", e.Network, e.Err)
}

func (e *MintError) Unwrap() error { return e.Err }

// Broadcast reports whether the failed mint reached the network.
func (e *MintError) Broadcast() bool { return e.TxHash != "" }

func configurationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}
