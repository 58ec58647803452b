package watch

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"sharevault/internal/model"
)

func topicFromAddress(addr common.Address) common.Hash {
	return common.BytesToHash(addr.Bytes())
}

func buildLog(vault common.Address, topic0 common.Hash, data []byte, indexed []common.Hash) types.Log {
	topics := append([]common.Hash{topic0}, indexed...)
	return types.Log{
		Address:     vault,
		Topics:      topics,
		Data:        data,
		BlockNumber: 12345,
		TxHash:      common.HexToHash("0xdef0"),
		Index:       7,
	}
}

func TestDecodeDepositLog(t *testing.T) {
	parsed, err := VaultABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}

	vault := common.HexToAddress("0x1111111111111111111111111111111111111111")
	sender := common.HexToAddress("0x2222222222222222222222222222222222222222")
	owner := common.HexToAddress("0x3333333333333333333333333333333333333333")

	data, err := parsed.Events["Deposit"].Inputs.NonIndexed().Pack(
		big.NewInt(1000),
		big.NewInt(909),
	)
	if err != nil {
		t.Fatalf("pack deposit: %v", err)
	}

	log := buildLog(vault, parsed.Events["Deposit"].ID, data, []common.Hash{
		topicFromAddress(sender),
		topicFromAddress(owner),
	})

	event, err := DecodeLog(56, log, 1700000000)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if event == nil {
		t.Fatalf("deposit log skipped")
	}
	if event.Name != "Deposit" || event.ChainID != 56 || event.BlockNumber != 12345 || event.Timestamp != 1700000000 {
		t.Fatalf("envelope mismatch: %+v", event)
	}

	dep, ok := event.Data.(model.DepositEvent)
	if !ok {
		t.Fatalf("decoded type mismatch: %T", event.Data)
	}
	want := model.DepositEvent{Caller: sender.Hex(), Owner: owner.Hex(), Assets: "1000", Shares: "909"}
	if dep != want {
		t.Fatalf("deposit payload: got %+v want %+v", dep, want)
	}
}

func TestDecodeWithdrawLog(t *testing.T) {
	parsed, err := VaultABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}

	vault := common.HexToAddress("0x9999999999999999999999999999999999999999")
	sender := common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	receiver := common.HexToAddress("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
	owner := common.HexToAddress("0xcccccccccccccccccccccccccccccccccccccccc")

	data, err := parsed.Events["Withdraw"].Inputs.NonIndexed().Pack(
		big.NewInt(500),
		big.NewInt(450),
	)
	if err != nil {
		t.Fatalf("pack withdraw: %v", err)
	}

	log := buildLog(vault, parsed.Events["Withdraw"].ID, data, []common.Hash{
		topicFromAddress(sender),
		topicFromAddress(receiver),
		topicFromAddress(owner),
	})

	event, err := DecodeLog(56, log, 1700000001)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if event == nil {
		t.Fatalf("withdraw log skipped")
	}

	wd, ok := event.Data.(model.WithdrawEvent)
	if !ok {
		t.Fatalf("decoded type mismatch: %T", event.Data)
	}
	want := model.WithdrawEvent{
		Caller:   sender.Hex(),
		Receiver: receiver.Hex(),
		Owner:    owner.Hex(),
		Assets:   "500",
		Shares:   "450",
	}
	if wd != want {
		t.Fatalf("withdraw payload: got %+v want %+v", wd, want)
	}
}

func TestDecodeUnknownTopicSkipped(t *testing.T) {
	log := types.Log{
		Address: common.HexToAddress("0x1111111111111111111111111111111111111111"),
		Topics:  []common.Hash{common.HexToHash("0x01")},
	}
	event, err := DecodeLog(1, log, 0)
	if err != nil {
		t.Fatalf("decode unknown: %v", err)
	}
	if event != nil {
		t.Fatalf("unknown topic decoded: %+v", event)
	}
}
