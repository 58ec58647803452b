package replay

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"sharevault/internal/ledger"
	"sharevault/internal/model"
	"sharevault/internal/storage"
	"sharevault/internal/token"
	"sharevault/internal/vault"
)

// Runner replays an operation journal against a fresh vault backed by an
// in-memory asset. Rejected operations are counted, not fatal: a journal may
// legitimately contain operations the vault refuses.
type Runner struct {
	Vault  *vault.Vault
	Token  *token.MemAsset
	logger *zap.Logger
}

// Stats summarizes a replay run.
type Stats struct {
	Applied  int
	Rejected int
}

func NewRunner(assetAddr, vaultAddr, owner common.Address, name, symbol string, logger *zap.Logger) (*Runner, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	tok := token.NewMemAsset(assetAddr)
	v, err := vault.New(vault.Config{
		Asset:        tok.Bound(vaultAddr),
		VaultAddress: vaultAddr,
		Owner:        owner,
		Name:         name,
		Symbol:       symbol,
		Logger:       logger,
	})
	if err != nil {
		return nil, err
	}
	return &Runner{Vault: v, Token: tok, logger: logger}, nil
}

// Run reads one JSON op per line from in, applies each, and flushes emitted
// events to the sink after every operation.
func (r *Runner) Run(ctx context.Context, in io.Reader, sink storage.Sink) (Stats, error) {
	var stats Stats
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		var op model.Op
		if err := json.Unmarshal(raw, &op); err != nil {
			return stats, fmt.Errorf("parse op line %d: %w", line, err)
		}

		if err := r.Apply(ctx, op); err != nil {
			stats.Rejected++
			r.logger.Warn("op rejected",
				zap.Int("line", line),
				zap.String("kind", op.Kind),
				zap.Error(err),
			)
		} else {
			stats.Applied++
		}

		if sink != nil {
			if err := sink.AppendEvents(ctx, r.Vault.DrainEvents()); err != nil {
				return stats, fmt.Errorf("flush events line %d: %w", line, err)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("read journal: %w", err)
	}

	return stats, nil
}

// Apply executes one operation against the vault.
func (r *Runner) Apply(ctx context.Context, op model.Op) error {
	switch op.Kind {
	case model.OpFund:
		// Mint tokens to the caller and approve the vault for pulls.
		caller, err := parseAddress(op.Caller)
		if err != nil {
			return err
		}
		amount, err := parseAmount(op.Amount)
		if err != nil {
			return err
		}
		r.Token.Mint(caller, amount)
		r.Token.Approve(caller, r.Vault.Address(), ledger.Unlimited)
		return nil

	case model.OpYield:
		// External yield: assets appear at the vault address directly.
		amount, err := parseAmount(op.Amount)
		if err != nil {
			return err
		}
		r.Token.Mint(r.Vault.Address(), amount)
		return nil

	case model.OpDeposit:
		caller, receiver, err := callerReceiver(op)
		if err != nil {
			return err
		}
		amount, err := parseAmount(op.Amount)
		if err != nil {
			return err
		}
		_, err = r.Vault.Deposit(ctx, caller, receiver, amount)
		return err

	case model.OpMint:
		caller, receiver, err := callerReceiver(op)
		if err != nil {
			return err
		}
		amount, err := parseAmount(op.Amount)
		if err != nil {
			return err
		}
		_, err = r.Vault.Mint(ctx, caller, receiver, amount)
		return err

	case model.OpWithdraw:
		caller, receiver, owner, err := exitParties(op)
		if err != nil {
			return err
		}
		amount, err := parseAmount(op.Amount)
		if err != nil {
			return err
		}
		_, err = r.Vault.Withdraw(ctx, caller, receiver, owner, amount)
		return err

	case model.OpRedeem:
		caller, receiver, owner, err := exitParties(op)
		if err != nil {
			return err
		}
		amount, err := parseAmount(op.Amount)
		if err != nil {
			return err
		}
		_, err = r.Vault.Redeem(ctx, caller, receiver, owner, amount)
		return err

	case model.OpTransfer:
		caller, err := parseAddress(op.Caller)
		if err != nil {
			return err
		}
		to, err := parseAddress(op.To)
		if err != nil {
			return err
		}
		amount, err := parseAmount(op.Amount)
		if err != nil {
			return err
		}
		return r.Vault.Transfer(caller, to, amount)

	case model.OpTransferFrom:
		caller, err := parseAddress(op.Caller)
		if err != nil {
			return err
		}
		from, err := parseAddress(op.From)
		if err != nil {
			return err
		}
		to, err := parseAddress(op.To)
		if err != nil {
			return err
		}
		amount, err := parseAmount(op.Amount)
		if err != nil {
			return err
		}
		return r.Vault.TransferFrom(caller, from, to, amount)

	case model.OpApprove:
		caller, err := parseAddress(op.Caller)
		if err != nil {
			return err
		}
		spender, err := parseAddress(op.Spender)
		if err != nil {
			return err
		}
		amount, err := parseAmount(op.Amount)
		if err != nil {
			return err
		}
		return r.Vault.Approve(caller, spender, amount)

	case model.OpPause:
		caller, err := parseAddress(op.Caller)
		if err != nil {
			return err
		}
		return r.Vault.Pause(caller)

	case model.OpUnpause:
		caller, err := parseAddress(op.Caller)
		if err != nil {
			return err
		}
		return r.Vault.Unpause(caller)

	case model.OpSetMaxAssets:
		caller, err := parseAddress(op.Caller)
		if err != nil {
			return err
		}
		amount, err := parseAmount(op.Amount)
		if err != nil {
			return err
		}
		return r.Vault.SetMaxTotalAssets(caller, amount)

	default:
		return fmt.Errorf("unknown op kind: %q", op.Kind)
	}
}

func callerReceiver(op model.Op) (common.Address, common.Address, error) {
	caller, err := parseAddress(op.Caller)
	if err != nil {
		return common.Address{}, common.Address{}, err
	}
	receiver := caller
	if op.Receiver != "" {
		receiver, err = parseAddress(op.Receiver)
		if err != nil {
			return common.Address{}, common.Address{}, err
		}
	}
	return caller, receiver, nil
}

func exitParties(op model.Op) (common.Address, common.Address, common.Address, error) {
	caller, err := parseAddress(op.Caller)
	if err != nil {
		return common.Address{}, common.Address{}, common.Address{}, err
	}
	receiver := caller
	if op.Receiver != "" {
		receiver, err = parseAddress(op.Receiver)
		if err != nil {
			return common.Address{}, common.Address{}, common.Address{}, err
		}
	}
	owner := caller
	if op.Owner != "" {
		owner, err = parseAddress(op.Owner)
		if err != nil {
			return common.Address{}, common.Address{}, common.Address{}, err
		}
	}
	return caller, receiver, owner, nil
}

func parseAddress(input string) (common.Address, error) {
	if !common.IsHexAddress(input) {
		return common.Address{}, fmt.Errorf("invalid address: %q", input)
	}
	return common.HexToAddress(input), nil
}

func parseAmount(input string) (*big.Int, error) {
	if input == "" {
		return nil, fmt.Errorf("amount is required")
	}
	amount, ok := new(big.Int).SetString(input, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount: %q", input)
	}
	return amount, nil
}
