package vault

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"sharevault/internal/model"
	"sharevault/internal/token"
)

// Pause engages the admission gate. Deposit and mint are rejected until
// Unpause; withdraw and redeem are unaffected.
func (v *Vault) Pause(caller common.Address) error {
	if err := v.lock(); err != nil {
		return err
	}
	defer v.unlock()

	if !v.access.isOwner(caller) {
		return ErrNotOwner
	}
	v.gate.engage()
	v.emit(model.EventPaused, model.PausedEvent{
		By:        caller.Hex(),
		Timestamp: uint64(v.now().Unix()),
	})
	v.logger.Info("paused", zap.String("by", caller.Hex()))
	return nil
}

// Unpause releases the admission gate.
func (v *Vault) Unpause(caller common.Address) error {
	if err := v.lock(); err != nil {
		return err
	}
	defer v.unlock()

	if !v.access.isOwner(caller) {
		return ErrNotOwner
	}
	v.gate.release()
	v.emit(model.EventUnpaused, model.PausedEvent{
		By:        caller.Hex(),
		Timestamp: uint64(v.now().Unix()),
	})
	v.logger.Info("unpaused", zap.String("by", caller.Hex()))
	return nil
}

// SetMaxTotalAssets updates the advisory deposit cap. The cap is queryable
// but not checked on the deposit path.
func (v *Vault) SetMaxTotalAssets(caller common.Address, newCap *big.Int) error {
	if err := v.lock(); err != nil {
		return err
	}
	defer v.unlock()

	if !v.access.isOwner(caller) {
		return ErrNotOwner
	}
	if newCap == nil || newCap.Sign() < 0 {
		return ErrZeroAmount
	}

	old := v.maxTotalAssets
	v.maxTotalAssets = new(big.Int).Set(newCap)
	v.emit(model.EventMaxAssetsUpdated, model.MaxAssetsUpdatedEvent{
		Old:       old.String(),
		New:       newCap.String(),
		Timestamp: uint64(v.now().Unix()),
	})
	return nil
}

// Sweep transfers the vault's entire balance of a stray token to a recovery
// address. The underlying asset itself can never be swept.
func (v *Vault) Sweep(ctx context.Context, caller common.Address, stray token.Asset, to common.Address) error {
	if err := v.lock(); err != nil {
		return err
	}
	defer v.unlock()

	if !v.access.isOwner(caller) {
		return ErrNotOwner
	}
	if stray == nil {
		return fmt.Errorf("stray token: %w", ErrZeroAddress)
	}
	if err := checkAddresses(to); err != nil {
		return err
	}
	if stray.Address() == v.asset.Address() {
		return ErrCannotSweepVaultAsset
	}

	amount, err := stray.BalanceOf(ctx, v.addr)
	if err != nil {
		return fmt.Errorf("read stray balance: %w", err)
	}

	mark := len(v.journal)
	v.emit(model.EventTokenSwept, model.TokenSweptEvent{
		Token:     stray.Address().Hex(),
		To:        to.Hex(),
		Amount:    amount.String(),
		Timestamp: uint64(v.now().Unix()),
	})

	if err := stray.Transfer(ctx, to, amount); err != nil {
		v.revert(mark)
		return fmt.Errorf("sweep transfer: %w", err)
	}

	v.logger.Info("token swept",
		zap.String("token", stray.Address().Hex()),
		zap.String("to", to.Hex()),
		zap.String("amount", amount.String()),
	)
	return nil
}

// TransferOwnership hands the admin capability to a new owner.
func (v *Vault) TransferOwnership(caller, newOwner common.Address) error {
	if err := v.lock(); err != nil {
		return err
	}
	defer v.unlock()

	if !v.access.isOwner(caller) {
		return ErrNotOwner
	}
	if err := checkAddresses(newOwner); err != nil {
		return err
	}

	previous := v.access.owner
	v.access.owner = newOwner
	v.emit(model.EventOwnershipTransferred, model.OwnershipTransferredEvent{
		Previous: previous.Hex(),
		New:      newOwner.Hex(),
	})
	return nil
}
