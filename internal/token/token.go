package token

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Asset is the external fungible-token collaborator, bound to an acting
// identity: Transfer spends the actor's own balance, TransferFrom spends a
// third party's balance against the actor's allowance. Any returned error is
// fatal to the enclosing vault operation.
type Asset interface {
	Address() common.Address
	BalanceOf(ctx context.Context, account common.Address) (*big.Int, error)
	Transfer(ctx context.Context, to common.Address, amount *big.Int) error
	TransferFrom(ctx context.Context, from, to common.Address, amount *big.Int) error
}
