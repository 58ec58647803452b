package model

// Op kinds accepted by the replay command.
const (
	OpFund         = "fund"
	OpDeposit      = "deposit"
	OpMint         = "mint"
	OpWithdraw     = "withdraw"
	OpRedeem       = "redeem"
	OpTransfer     = "transfer"
	OpTransferFrom = "transfer_from"
	OpApprove      = "approve"
	OpPause        = "pause"
	OpUnpause      = "unpause"
	OpSetMaxAssets = "set_max_assets"
	OpYield        = "yield"
)

// Op is one journaled vault operation. Amount is a decimal string; address
// fields are hex. Fields not used by a kind are left empty.
type Op struct {
	Kind     string `json:"kind"`
	Caller   string `json:"caller,omitempty"`
	Owner    string `json:"owner,omitempty"`
	Receiver string `json:"receiver,omitempty"`
	Spender  string `json:"spender,omitempty"`
	From     string `json:"from,omitempty"`
	To       string `json:"to,omitempty"`
	Amount   string `json:"amount,omitempty"`
}
