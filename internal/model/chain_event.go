package model

// ChainEvent is a decoded vault log observed on chain by the watch command.
type ChainEvent struct {
	ChainID     uint64 `json:"chain_id"`
	BlockNumber uint64 `json:"block_number"`
	TxHash      string `json:"tx_hash"`
	LogIndex    uint64 `json:"log_index"`
	Vault       string `json:"vault"`
	Name        string `json:"name"`
	Data        any    `json:"data"`
	Timestamp   uint64 `json:"timestamp"`
}
