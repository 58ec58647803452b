package vault

import "github.com/ethereum/go-ethereum/common"

// accessControl is the single-owner capability check.
type accessControl struct {
	owner common.Address
}

func (a accessControl) isOwner(addr common.Address) bool {
	return addr == a.owner
}

// pauseSwitch is the admission gate. It blocks deposit and mint only;
// withdraw and redeem stay open regardless.
type pauseSwitch struct {
	on bool
}

func (p *pauseSwitch) engage()       { p.on = true }
func (p *pauseSwitch) release()      { p.on = false }
func (p *pauseSwitch) engaged() bool { return p.on }
