package watch

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Canonical ERC-4626 vault events, as emitted by a deployed vault.
const vaultABIJSON = `[
  {"anonymous": false, "inputs": [
    {"indexed": true, "name": "sender", "type": "address"},
    {"indexed": true, "name": "owner", "type": "address"},
    {"indexed": false, "name": "assets", "type": "uint256"},
    {"indexed": false, "name": "shares", "type": "uint256"}
  ], "name": "Deposit", "type": "event"},
  {"anonymous": false, "inputs": [
    {"indexed": true, "name": "sender", "type": "address"},
    {"indexed": true, "name": "receiver", "type": "address"},
    {"indexed": true, "name": "owner", "type": "address"},
    {"indexed": false, "name": "assets", "type": "uint256"},
    {"indexed": false, "name": "shares", "type": "uint256"}
  ], "name": "Withdraw", "type": "event"},
  {"anonymous": false, "inputs": [
    {"indexed": true, "name": "from", "type": "address"},
    {"indexed": true, "name": "to", "type": "address"},
    {"indexed": false, "name": "value", "type": "uint256"}
  ], "name": "Transfer", "type": "event"}
]`

var (
	vaultABI     abi.ABI
	vaultABIOnce sync.Once
	vaultABIErr  error
)

// VaultABI returns the parsed vault event ABI.
func VaultABI() (abi.ABI, error) {
	vaultABIOnce.Do(func() {
		vaultABI, vaultABIErr = abi.JSON(strings.NewReader(vaultABIJSON))
	})
	return vaultABI, vaultABIErr
}
