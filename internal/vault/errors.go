package vault

import "errors"

var (
	// ErrZeroAmount rejects a zero (or absent) monetary argument.
	ErrZeroAmount = errors.New("amount is zero")
	// ErrZeroAddress rejects a zero (or absent) identity argument.
	ErrZeroAddress = errors.New("zero address")
	// ErrPaused rejects deposit and mint while the admission gate is engaged.
	ErrPaused = errors.New("vault is paused")
	// ErrNotOwner rejects admin operations from anyone but the owner.
	ErrNotOwner = errors.New("caller is not the owner")
	// ErrReentrantCall rejects a mutating call made while another is in flight.
	ErrReentrantCall = errors.New("reentrant call")
	// ErrCannotSweepVaultAsset protects depositor funds from the sweep path.
	ErrCannotSweepVaultAsset = errors.New("cannot sweep the vault's underlying asset")
)
