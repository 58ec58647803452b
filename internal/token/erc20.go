package token

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"sharevault/internal/chain"
)

// ErrReadOnly is returned by transfer methods of the on-chain client, which
// has no transaction signer. The watch command only reads balances.
var ErrReadOnly = errors.New("on-chain asset client is read-only")

const erc20BalanceABIJSON = `[
  {"inputs": [{"name": "account", "type": "address"}], "name": "balanceOf", "outputs": [{"type": "uint256"}], "stateMutability": "view", "type": "function"}
]`

var (
	erc20BalanceABI     abi.ABI
	erc20BalanceABIOnce sync.Once
	erc20BalanceABIErr  error
)

func erc20BalanceABIInstance() (abi.ABI, error) {
	erc20BalanceABIOnce.Do(func() {
		erc20BalanceABI, erc20BalanceABIErr = abi.JSON(strings.NewReader(erc20BalanceABIJSON))
	})
	return erc20BalanceABI, erc20BalanceABIErr
}

// ERC20 reads balances of a deployed token over RPC. It satisfies Asset so
// the watch command can report pooled totals for a live vault.
type ERC20 struct {
	client *chain.Client
	addr   common.Address
}

func NewERC20(client *chain.Client, addr common.Address) *ERC20 {
	return &ERC20{client: client, addr: addr}
}

func (t *ERC20) Address() common.Address { return t.addr }

// BalanceOf calls balanceOf(account) on the token contract.
func (t *ERC20) BalanceOf(ctx context.Context, account common.Address) (*big.Int, error) {
	parsed, err := erc20BalanceABIInstance()
	if err != nil {
		return nil, fmt.Errorf("erc20 abi: %w", err)
	}

	input, err := parsed.Pack("balanceOf", account)
	if err != nil {
		return nil, fmt.Errorf("pack balanceOf: %w", err)
	}

	output, err := t.client.CallContract(ctx, ethereum.CallMsg{To: &t.addr, Data: input})
	if err != nil {
		return nil, fmt.Errorf("call balanceOf: %w", err)
	}

	values, err := parsed.Unpack("balanceOf", output)
	if err != nil {
		return nil, fmt.Errorf("unpack balanceOf: %w", err)
	}
	if len(values) != 1 {
		return nil, fmt.Errorf("balanceOf returned %d values", len(values))
	}
	balance, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("balanceOf returned %T", values[0])
	}
	return balance, nil
}

func (t *ERC20) Transfer(context.Context, common.Address, *big.Int) error {
	return ErrReadOnly
}

func (t *ERC20) TransferFrom(context.Context, common.Address, common.Address, *big.Int) error {
	return ErrReadOnly
}
