package watch

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"sharevault/internal/model"
)

// DecodeLog turns a raw vault log into a ChainEvent. Logs whose topic0 is not
// a vault event return (nil, nil) and are skipped.
func DecodeLog(chainID uint64, log types.Log, timestamp uint64) (*model.ChainEvent, error) {
	parsed, err := VaultABI()
	if err != nil {
		return nil, fmt.Errorf("vault abi: %w", err)
	}
	if len(log.Topics) == 0 {
		return nil, nil
	}

	event, err := parsed.EventByID(log.Topics[0])
	if err != nil {
		return nil, nil
	}

	values := make(map[string]interface{})
	if err := parsed.UnpackIntoMap(values, event.Name, log.Data); err != nil {
		return nil, fmt.Errorf("unpack %s: %w", event.Name, err)
	}

	var data any
	switch event.Name {
	case "Deposit":
		if len(log.Topics) != 3 {
			return nil, fmt.Errorf("deposit log has %d topics", len(log.Topics))
		}
		data = model.DepositEvent{
			Caller: topicAddress(log.Topics[1]),
			Owner:  topicAddress(log.Topics[2]),
			Assets: bigString(values["assets"]),
			Shares: bigString(values["shares"]),
		}
	case "Withdraw":
		if len(log.Topics) != 4 {
			return nil, fmt.Errorf("withdraw log has %d topics", len(log.Topics))
		}
		data = model.WithdrawEvent{
			Caller:   topicAddress(log.Topics[1]),
			Receiver: topicAddress(log.Topics[2]),
			Owner:    topicAddress(log.Topics[3]),
			Assets:   bigString(values["assets"]),
			Shares:   bigString(values["shares"]),
		}
	case "Transfer":
		if len(log.Topics) != 3 {
			return nil, fmt.Errorf("transfer log has %d topics", len(log.Topics))
		}
		data = model.TransferEvent{
			From:  topicAddress(log.Topics[1]),
			To:    topicAddress(log.Topics[2]),
			Value: bigString(values["value"]),
		}
	default:
		return nil, nil
	}

	return &model.ChainEvent{
		ChainID:     chainID,
		BlockNumber: log.BlockNumber,
		TxHash:      log.TxHash.Hex(),
		LogIndex:    uint64(log.Index),
		Vault:       log.Address.Hex(),
		Name:        event.Name,
		Data:        data,
		Timestamp:   timestamp,
	}, nil
}

func topicAddress(topic common.Hash) string {
	return common.BytesToAddress(topic.Bytes()).Hex()
}

func bigString(value interface{}) string {
	if v, ok := value.(*big.Int); ok {
		return v.String()
	}
	return ""
}
