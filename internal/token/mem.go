package token

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	ethmath "github.com/ethereum/go-ethereum/common/math"
)

var (
	ErrTransferExceedsBalance   = errors.New("transfer amount exceeds balance")
	ErrTransferExceedsAllowance = errors.New("transfer amount exceeds allowance")
)

// MemAsset is an in-memory ERC-20-style token used by the replay command and
// by tests. It keeps the standard balance/allowance semantics, including the
// max-uint256 unlimited-allowance convention.
type MemAsset struct {
	addr       common.Address
	balances   map[common.Address]*big.Int
	allowances map[common.Address]map[common.Address]*big.Int
}

func NewMemAsset(addr common.Address) *MemAsset {
	return &MemAsset{
		addr:       addr,
		balances:   make(map[common.Address]*big.Int),
		allowances: make(map[common.Address]map[common.Address]*big.Int),
	}
}

func (t *MemAsset) Address() common.Address { return t.addr }

// Mint credits amount to an account out of thin air. Minting to a vault's own
// address simulates externally-injected yield.
func (t *MemAsset) Mint(to common.Address, amount *big.Int) {
	bal, ok := t.balances[to]
	if !ok {
		bal = new(big.Int)
		t.balances[to] = bal
	}
	bal.Add(bal, amount)
}

// Approve sets the allowance owner grants spender.
func (t *MemAsset) Approve(owner, spender common.Address, amount *big.Int) {
	grants, ok := t.allowances[owner]
	if !ok {
		grants = make(map[common.Address]*big.Int)
		t.allowances[owner] = grants
	}
	grants[spender] = new(big.Int).Set(amount)
}

// BalanceOf returns the token balance of an account.
func (t *MemAsset) BalanceOf(account common.Address) *big.Int {
	if bal, ok := t.balances[account]; ok {
		return new(big.Int).Set(bal)
	}
	return new(big.Int)
}

func (t *MemAsset) move(from, to common.Address, amount *big.Int) error {
	src, ok := t.balances[from]
	if !ok || src.Cmp(amount) < 0 {
		return fmt.Errorf("%w: %s has %s, needs %s", ErrTransferExceedsBalance, from.Hex(), t.BalanceOf(from), amount)
	}
	src.Sub(src, amount)
	dst, ok := t.balances[to]
	if !ok {
		dst = new(big.Int)
		t.balances[to] = dst
	}
	dst.Add(dst, amount)
	return nil
}

func (t *MemAsset) spendAllowance(owner, spender common.Address, amount *big.Int) error {
	grants, ok := t.allowances[owner]
	if !ok {
		return ErrTransferExceedsAllowance
	}
	current, ok := grants[spender]
	if !ok || current.Cmp(amount) < 0 {
		return ErrTransferExceedsAllowance
	}
	if current.Cmp(ethmath.MaxBig256) != 0 {
		current.Sub(current, amount)
	}
	return nil
}

// Bound returns an Asset view acting as the given identity. A vault holds a
// view bound to its own address.
func (t *MemAsset) Bound(actor common.Address) Asset {
	return &boundMemAsset{token: t, actor: actor}
}

type boundMemAsset struct {
	token *MemAsset
	actor common.Address
}

func (b *boundMemAsset) Address() common.Address { return b.token.addr }

func (b *boundMemAsset) BalanceOf(_ context.Context, account common.Address) (*big.Int, error) {
	return b.token.BalanceOf(account), nil
}

func (b *boundMemAsset) Transfer(_ context.Context, to common.Address, amount *big.Int) error {
	return b.token.move(b.actor, to, amount)
}

func (b *boundMemAsset) TransferFrom(_ context.Context, from, to common.Address, amount *big.Int) error {
	if from != b.actor {
		if err := b.token.spendAllowance(from, b.actor, amount); err != nil {
			return err
		}
	}
	return b.token.move(from, to, amount)
}
