package ledger

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	ethmath "github.com/ethereum/go-ethereum/common/math"
)

var (
	ErrInsufficientShares    = errors.New("insufficient shares")
	ErrInsufficientAllowance = errors.New("insufficient allowance")
)

// Unlimited is the allowance sentinel: an allowance equal to this value is
// never decremented. It is the maximum uint256, matching on-chain convention.
var Unlimited = new(big.Int).Set(ethmath.MaxBig256)

// Ledger tracks share balances, allowances, and the total-shares counter.
// It performs local map arithmetic only and makes no external calls.
type Ledger struct {
	totalShares *big.Int
	balances    map[common.Address]*big.Int
	allowances  map[common.Address]map[common.Address]*big.Int
}

func New() *Ledger {
	return &Ledger{
		totalShares: new(big.Int),
		balances:    make(map[common.Address]*big.Int),
		allowances:  make(map[common.Address]map[common.Address]*big.Int),
	}
}

// TotalShares returns the sum of all share balances.
func (l *Ledger) TotalShares() *big.Int {
	return new(big.Int).Set(l.totalShares)
}

// BalanceOf returns the share balance of an account. Absent accounts hold zero.
func (l *Ledger) BalanceOf(account common.Address) *big.Int {
	if bal, ok := l.balances[account]; ok {
		return new(big.Int).Set(bal)
	}
	return new(big.Int)
}

// Allowance returns the amount spender may move from owner's shares.
func (l *Ledger) Allowance(owner, spender common.Address) *big.Int {
	if grants, ok := l.allowances[owner]; ok {
		if amount, ok := grants[spender]; ok {
			return new(big.Int).Set(amount)
		}
	}
	return new(big.Int)
}

// Credit issues amount new shares to account, increasing totalShares.
func (l *Ledger) Credit(account common.Address, amount *big.Int) {
	bal, ok := l.balances[account]
	if !ok {
		bal = new(big.Int)
		l.balances[account] = bal
	}
	bal.Add(bal, amount)
	l.totalShares.Add(l.totalShares, amount)
}

// Debit burns amount shares from account, decreasing totalShares.
func (l *Ledger) Debit(account common.Address, amount *big.Int) error {
	bal, ok := l.balances[account]
	if !ok || bal.Cmp(amount) < 0 {
		return ErrInsufficientShares
	}
	bal.Sub(bal, amount)
	l.totalShares.Sub(l.totalShares, amount)
	if bal.Sign() == 0 {
		delete(l.balances, account)
	}
	return nil
}

// Transfer moves amount shares from one account to another. totalShares is
// unchanged; the debit and credit are applied together or not at all.
func (l *Ledger) Transfer(from, to common.Address, amount *big.Int) error {
	src, ok := l.balances[from]
	if !ok || src.Cmp(amount) < 0 {
		return ErrInsufficientShares
	}
	src.Sub(src, amount)
	if src.Sign() == 0 {
		delete(l.balances, from)
	}
	dst, ok := l.balances[to]
	if !ok {
		dst = new(big.Int)
		l.balances[to] = dst
	}
	dst.Add(dst, amount)
	return nil
}

// SetAllowance replaces the allowance owner grants spender.
func (l *Ledger) SetAllowance(owner, spender common.Address, amount *big.Int) {
	grants, ok := l.allowances[owner]
	if !ok {
		grants = make(map[common.Address]*big.Int)
		l.allowances[owner] = grants
	}
	grants[spender] = new(big.Int).Set(amount)
}

// ConsumeAllowance deducts amount from the allowance owner grants spender.
// An allowance equal to Unlimited is left untouched.
func (l *Ledger) ConsumeAllowance(owner, spender common.Address, amount *big.Int) error {
	grants, ok := l.allowances[owner]
	if !ok {
		return ErrInsufficientAllowance
	}
	current, ok := grants[spender]
	if !ok || current.Cmp(amount) < 0 {
		return ErrInsufficientAllowance
	}
	if current.Cmp(Unlimited) == 0 {
		return nil
	}
	current.Sub(current, amount)
	return nil
}
