package vault

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"sharevault/internal/convert"
	"sharevault/internal/ledger"
	"sharevault/internal/model"
	"sharevault/internal/token"
)

// Decimals is the fixed share precision, independent of the asset's own.
const Decimals = 18

// Config holds construction parameters for a vault.
type Config struct {
	// Asset is the underlying token collaborator, bound to the vault address.
	Asset token.Asset
	// VaultAddress is the vault's own identity; pooled assets are whatever
	// the asset reports at this address.
	VaultAddress common.Address
	Owner        common.Address
	Name         string
	Symbol       string
	Logger       *zap.Logger
}

// Vault is the operation controller: it orchestrates conversions, ledger
// mutation, event emission, and external asset movement for every entry
// point, and serializes them behind a single reentrancy flag.
type Vault struct {
	asset  token.Asset
	addr   common.Address
	name   string
	symbol string

	ledger         *ledger.Ledger
	access         accessControl
	gate           pauseSwitch
	maxTotalAssets *big.Int

	locked  bool
	seq     uint64
	journal []model.Event

	logger *zap.Logger
	now    func() time.Time
}

func New(cfg Config) (*Vault, error) {
	if cfg.Asset == nil || cfg.Asset.Address() == (common.Address{}) {
		return nil, fmt.Errorf("underlying asset: %w", ErrZeroAddress)
	}
	if cfg.VaultAddress == (common.Address{}) {
		return nil, fmt.Errorf("vault address: %w", ErrZeroAddress)
	}
	if cfg.Owner == (common.Address{}) {
		return nil, fmt.Errorf("owner: %w", ErrZeroAddress)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Vault{
		asset:          cfg.Asset,
		addr:           cfg.VaultAddress,
		name:           cfg.Name,
		symbol:         cfg.Symbol,
		ledger:         ledger.New(),
		access:         accessControl{owner: cfg.Owner},
		maxTotalAssets: new(big.Int),
		logger:         logger,
		now:            time.Now,
	}, nil
}

// Deposit pulls assets from caller and issues shares to receiver, rounding
// share issuance down. Rejected while paused.
func (v *Vault) Deposit(ctx context.Context, caller, receiver common.Address, assets *big.Int) (*big.Int, error) {
	if err := v.lock(); err != nil {
		return nil, err
	}
	defer v.unlock()

	if err := checkAmount(assets); err != nil {
		return nil, err
	}
	if err := checkAddresses(caller, receiver); err != nil {
		return nil, err
	}
	if v.gate.engaged() {
		return nil, ErrPaused
	}

	totalAssets, err := v.pooledAssets(ctx)
	if err != nil {
		return nil, err
	}
	shares, err := convert.SharesForDeposit(assets, v.ledger.TotalShares(), totalAssets)
	if err != nil {
		return nil, err
	}

	mark := len(v.journal)
	v.ledger.Credit(receiver, shares)
	v.emit(model.EventDeposit, model.DepositEvent{
		Caller: caller.Hex(),
		Owner:  receiver.Hex(),
		Assets: assets.String(),
		Shares: shares.String(),
	})

	if err := v.asset.TransferFrom(ctx, caller, v.addr, assets); err != nil {
		v.revert(mark)
		if derr := v.ledger.Debit(receiver, shares); derr != nil {
			v.logger.Error("deposit rollback failed", zap.Error(derr))
		}
		return nil, fmt.Errorf("pull assets: %w", err)
	}

	v.logger.Info("deposit",
		zap.String("caller", caller.Hex()),
		zap.String("owner", receiver.Hex()),
		zap.String("assets", assets.String()),
		zap.String("shares", shares.String()),
	)
	return shares, nil
}

// Mint pulls the assets required for exactly shares, rounding the asset
// price up. Rejected while paused.
func (v *Vault) Mint(ctx context.Context, caller, receiver common.Address, shares *big.Int) (*big.Int, error) {
	if err := v.lock(); err != nil {
		return nil, err
	}
	defer v.unlock()

	if err := checkAmount(shares); err != nil {
		return nil, err
	}
	if err := checkAddresses(caller, receiver); err != nil {
		return nil, err
	}
	if v.gate.engaged() {
		return nil, ErrPaused
	}

	totalAssets, err := v.pooledAssets(ctx)
	if err != nil {
		return nil, err
	}
	assets, err := convert.AssetsForMint(shares, v.ledger.TotalShares(), totalAssets)
	if err != nil {
		return nil, err
	}

	mark := len(v.journal)
	v.ledger.Credit(receiver, shares)
	v.emit(model.EventDeposit, model.DepositEvent{
		Caller: caller.Hex(),
		Owner:  receiver.Hex(),
		Assets: assets.String(),
		Shares: shares.String(),
	})

	if err := v.asset.TransferFrom(ctx, caller, v.addr, assets); err != nil {
		v.revert(mark)
		if derr := v.ledger.Debit(receiver, shares); derr != nil {
			v.logger.Error("mint rollback failed", zap.Error(derr))
		}
		return nil, fmt.Errorf("pull assets: %w", err)
	}

	v.logger.Info("mint",
		zap.String("caller", caller.Hex()),
		zap.String("owner", receiver.Hex()),
		zap.String("assets", assets.String()),
		zap.String("shares", shares.String()),
	)
	return assets, nil
}

// Withdraw burns the shares required for exactly assets (rounded up) from
// owner and pays assets to receiver. Third-party callers spend allowance by
// the share amount burned. Always permitted, paused or not.
func (v *Vault) Withdraw(ctx context.Context, caller, receiver, owner common.Address, assets *big.Int) (*big.Int, error) {
	if err := v.lock(); err != nil {
		return nil, err
	}
	defer v.unlock()

	if err := checkAmount(assets); err != nil {
		return nil, err
	}
	if err := checkAddresses(caller, receiver, owner); err != nil {
		return nil, err
	}

	totalAssets, err := v.pooledAssets(ctx)
	if err != nil {
		return nil, err
	}
	shares, err := convert.SharesForWithdraw(assets, v.ledger.TotalShares(), totalAssets)
	if err != nil {
		return nil, err
	}

	return shares, v.exit(ctx, caller, receiver, owner, assets, shares)
}

// Redeem burns exactly shares from owner and pays the corresponding assets
// (rounded down) to receiver. Always permitted, paused or not.
func (v *Vault) Redeem(ctx context.Context, caller, receiver, owner common.Address, shares *big.Int) (*big.Int, error) {
	if err := v.lock(); err != nil {
		return nil, err
	}
	defer v.unlock()

	if err := checkAmount(shares); err != nil {
		return nil, err
	}
	if err := checkAddresses(caller, receiver, owner); err != nil {
		return nil, err
	}

	totalAssets, err := v.pooledAssets(ctx)
	if err != nil {
		return nil, err
	}
	assets, err := convert.AssetsForRedeem(shares, v.ledger.TotalShares(), totalAssets)
	if err != nil {
		return nil, err
	}

	return assets, v.exit(ctx, caller, receiver, owner, assets, shares)
}

// exit is the shared burn-and-pay path for Withdraw and Redeem: allowance
// consumption, ledger debit, and event emission all precede the external
// push, and every step is undone if the push fails.
func (v *Vault) exit(ctx context.Context, caller, receiver, owner common.Address, assets, shares *big.Int) error {
	restoreAllowance := func() {}
	if caller != owner {
		before := v.ledger.Allowance(owner, caller)
		if err := v.ledger.ConsumeAllowance(owner, caller, shares); err != nil {
			return err
		}
		restoreAllowance = func() { v.ledger.SetAllowance(owner, caller, before) }
	}

	if err := v.ledger.Debit(owner, shares); err != nil {
		restoreAllowance()
		return err
	}

	mark := len(v.journal)
	v.emit(model.EventWithdraw, model.WithdrawEvent{
		Caller:   caller.Hex(),
		Receiver: receiver.Hex(),
		Owner:    owner.Hex(),
		Assets:   assets.String(),
		Shares:   shares.String(),
	})

	if err := v.asset.Transfer(ctx, receiver, assets); err != nil {
		v.revert(mark)
		v.ledger.Credit(owner, shares)
		restoreAllowance()
		return fmt.Errorf("push assets: %w", err)
	}

	v.logger.Info("withdraw",
		zap.String("caller", caller.Hex()),
		zap.String("receiver", receiver.Hex()),
		zap.String("owner", owner.Hex()),
		zap.String("assets", assets.String()),
		zap.String("shares", shares.String()),
	)
	return nil
}

// Transfer moves caller's shares to another account.
func (v *Vault) Transfer(caller, to common.Address, amount *big.Int) error {
	if err := v.lock(); err != nil {
		return err
	}
	defer v.unlock()

	if err := checkAmount(amount); err != nil {
		return err
	}
	if err := checkAddresses(caller, to); err != nil {
		return err
	}

	if err := v.ledger.Transfer(caller, to, amount); err != nil {
		return err
	}
	v.emit(model.EventTransfer, model.TransferEvent{
		From:  caller.Hex(),
		To:    to.Hex(),
		Value: amount.String(),
	})
	return nil
}

// TransferFrom moves shares between third parties against caller's allowance.
func (v *Vault) TransferFrom(caller, from, to common.Address, amount *big.Int) error {
	if err := v.lock(); err != nil {
		return err
	}
	defer v.unlock()

	if err := checkAmount(amount); err != nil {
		return err
	}
	if err := checkAddresses(caller, from, to); err != nil {
		return err
	}

	restoreAllowance := func() {}
	if caller != from {
		before := v.ledger.Allowance(from, caller)
		if err := v.ledger.ConsumeAllowance(from, caller, amount); err != nil {
			return err
		}
		restoreAllowance = func() { v.ledger.SetAllowance(from, caller, before) }
	}

	if err := v.ledger.Transfer(from, to, amount); err != nil {
		restoreAllowance()
		return err
	}
	v.emit(model.EventTransfer, model.TransferEvent{
		From:  from.Hex(),
		To:    to.Hex(),
		Value: amount.String(),
	})
	return nil
}

// Approve sets the allowance caller grants spender. A zero amount clears it;
// ledger.Unlimited means never decrement.
func (v *Vault) Approve(caller, spender common.Address, amount *big.Int) error {
	if err := v.lock(); err != nil {
		return err
	}
	defer v.unlock()

	if amount == nil || amount.Sign() < 0 {
		return ErrZeroAmount
	}
	if err := checkAddresses(caller, spender); err != nil {
		return err
	}

	v.ledger.SetAllowance(caller, spender, amount)
	v.emit(model.EventApproval, model.ApprovalEvent{
		Owner:   caller.Hex(),
		Spender: spender.Hex(),
		Value:   amount.String(),
	})
	return nil
}

// TotalAssets reads the pooled asset balance live from the asset collaborator.
func (v *Vault) TotalAssets(ctx context.Context) (*big.Int, error) {
	return v.pooledAssets(ctx)
}

// ConvertToShares reports the shares a deposit of assets would mint now.
func (v *Vault) ConvertToShares(ctx context.Context, assets *big.Int) (*big.Int, error) {
	totalAssets, err := v.pooledAssets(ctx)
	if err != nil {
		return nil, err
	}
	return convert.SharesForDeposit(assets, v.ledger.TotalShares(), totalAssets)
}

// ConvertToAssets reports the assets redeeming shares would pay now.
func (v *Vault) ConvertToAssets(ctx context.Context, shares *big.Int) (*big.Int, error) {
	totalAssets, err := v.pooledAssets(ctx)
	if err != nil {
		return nil, err
	}
	return convert.AssetsForRedeem(shares, v.ledger.TotalShares(), totalAssets)
}

// PreviewDeposit mirrors Deposit's conversion without mutating anything.
func (v *Vault) PreviewDeposit(ctx context.Context, assets *big.Int) (*big.Int, error) {
	return v.ConvertToShares(ctx, assets)
}

// PreviewMint reports the assets Mint would pull for shares, rounded up.
func (v *Vault) PreviewMint(ctx context.Context, shares *big.Int) (*big.Int, error) {
	totalAssets, err := v.pooledAssets(ctx)
	if err != nil {
		return nil, err
	}
	return convert.AssetsForMint(shares, v.ledger.TotalShares(), totalAssets)
}

// PreviewWithdraw reports the shares Withdraw would burn for assets, rounded up.
func (v *Vault) PreviewWithdraw(ctx context.Context, assets *big.Int) (*big.Int, error) {
	totalAssets, err := v.pooledAssets(ctx)
	if err != nil {
		return nil, err
	}
	return convert.SharesForWithdraw(assets, v.ledger.TotalShares(), totalAssets)
}

// PreviewRedeem mirrors Redeem's conversion without mutating anything.
func (v *Vault) PreviewRedeem(ctx context.Context, shares *big.Int) (*big.Int, error) {
	return v.ConvertToAssets(ctx, shares)
}

func (v *Vault) BalanceOf(account common.Address) *big.Int {
	return v.ledger.BalanceOf(account)
}

func (v *Vault) Allowance(owner, spender common.Address) *big.Int {
	return v.ledger.Allowance(owner, spender)
}

func (v *Vault) TotalShares() *big.Int {
	return v.ledger.TotalShares()
}

func (v *Vault) MaxTotalAssets() *big.Int {
	return new(big.Int).Set(v.maxTotalAssets)
}

func (v *Vault) Paused() bool { return v.gate.engaged() }

func (v *Vault) Owner() common.Address { return v.access.owner }

func (v *Vault) Address() common.Address { return v.addr }

func (v *Vault) AssetAddress() common.Address { return v.asset.Address() }

func (v *Vault) Name() string { return v.name }

func (v *Vault) Symbol() string { return v.symbol }

// Events returns a copy of the journal.
func (v *Vault) Events() []model.Event {
	out := make([]model.Event, len(v.journal))
	copy(out, v.journal)
	return out
}

// DrainEvents returns the journal and clears it. Sequence numbers keep
// increasing across drains.
func (v *Vault) DrainEvents() []model.Event {
	out := v.journal
	v.journal = nil
	return out
}

func (v *Vault) pooledAssets(ctx context.Context) (*big.Int, error) {
	balance, err := v.asset.BalanceOf(ctx, v.addr)
	if err != nil {
		return nil, fmt.Errorf("read pooled assets: %w", err)
	}
	return balance, nil
}

func (v *Vault) lock() error {
	if v.locked {
		return ErrReentrantCall
	}
	v.locked = true
	return nil
}

func (v *Vault) unlock() { v.locked = false }

func (v *Vault) emit(name string, data any) {
	v.seq++
	v.journal = append(v.journal, model.Event{Seq: v.seq, Name: name, Data: data})
}

// revert drops journal entries emitted since mark. Used when the external
// asset call fails after effects were applied.
func (v *Vault) revert(mark int) {
	dropped := len(v.journal) - mark
	if dropped <= 0 {
		return
	}
	v.journal = v.journal[:mark]
	v.seq -= uint64(dropped)
}

func checkAmount(amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrZeroAmount
	}
	return nil
}

func checkAddresses(addrs ...common.Address) error {
	for _, addr := range addrs {
		if addr == (common.Address{}) {
			return ErrZeroAddress
		}
	}
	return nil
}
