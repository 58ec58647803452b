package model

// Canonical event names in the vault journal.
const (
	EventDeposit              = "Deposit"
	EventWithdraw             = "Withdraw"
	EventTransfer             = "Transfer"
	EventApproval             = "Approval"
	EventPaused               = "Paused"
	EventUnpaused             = "Unpaused"
	EventTokenSwept           = "TokenSwept"
	EventMaxAssetsUpdated     = "MaxAssetsUpdated"
	EventOwnershipTransferred = "OwnershipTransferred"
)

// Event is one journal entry. Seq is assigned by the vault and is strictly
// increasing; Data holds the typed payload for Name.
type Event struct {
	Seq  uint64 `json:"seq"`
	Name string `json:"name"`
	Data any    `json:"data"`
}

// DepositEvent records shares issued against assets pulled in.
type DepositEvent struct {
	Caller string `json:"caller"`
	Owner  string `json:"owner"`
	Assets string `json:"assets"`
	Shares string `json:"shares"`
}

// WithdrawEvent records shares burned against assets paid out.
type WithdrawEvent struct {
	Caller   string `json:"caller"`
	Receiver string `json:"receiver"`
	Owner    string `json:"owner"`
	Assets   string `json:"assets"`
	Shares   string `json:"shares"`
}

// TransferEvent records a share movement between accounts.
type TransferEvent struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Value string `json:"value"`
}

// ApprovalEvent records an allowance grant.
type ApprovalEvent struct {
	Owner   string `json:"owner"`
	Spender string `json:"spender"`
	Value   string `json:"value"`
}

// PausedEvent records an admission-gate toggle. Unpaused shares the shape.
type PausedEvent struct {
	By        string `json:"by"`
	Timestamp uint64 `json:"timestamp"`
}

// TokenSweptEvent records recovery of a stray token balance.
type TokenSweptEvent struct {
	Token     string `json:"token"`
	To        string `json:"to"`
	Amount    string `json:"amount"`
	Timestamp uint64 `json:"timestamp"`
}

// MaxAssetsUpdatedEvent records a change to the advisory deposit cap.
type MaxAssetsUpdatedEvent struct {
	Old       string `json:"old"`
	New       string `json:"new"`
	Timestamp uint64 `json:"timestamp"`
}

// OwnershipTransferredEvent records an owner change.
type OwnershipTransferredEvent struct {
	Previous string `json:"previous"`
	New      string `json:"new"`
}
