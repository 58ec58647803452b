package vault

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"sharevault/internal/model"
	"sharevault/internal/token"
)

var strayAddr = common.HexToAddress("0xeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee")

func TestPauseGatesAdmissionOnly(t *testing.T) {
	v, tok := newTestVault(t)
	ctx := context.Background()
	fund(tok, alice, 200)

	if _, err := v.Deposit(ctx, alice, alice, bi(100)); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	if err := v.Pause(admin); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if !v.Paused() {
		t.Fatalf("not paused")
	}

	if _, err := v.Deposit(ctx, alice, alice, bi(10)); !errors.Is(err, ErrPaused) {
		t.Fatalf("paused deposit: got %v", err)
	}
	if _, err := v.Mint(ctx, alice, alice, bi(10)); !errors.Is(err, ErrPaused) {
		t.Fatalf("paused mint: got %v", err)
	}

	// Exit liquidity is unconditional.
	if _, err := v.Withdraw(ctx, alice, alice, alice, bi(30)); err != nil {
		t.Fatalf("paused withdraw: %v", err)
	}
	if _, err := v.Redeem(ctx, alice, alice, alice, bi(30)); err != nil {
		t.Fatalf("paused redeem: %v", err)
	}

	if err := v.Unpause(admin); err != nil {
		t.Fatalf("unpause: %v", err)
	}
	if _, err := v.Deposit(ctx, alice, alice, bi(10)); err != nil {
		t.Fatalf("deposit after unpause: %v", err)
	}
}

func TestPauseEventsCarryTimestamp(t *testing.T) {
	v, _ := newTestVault(t)
	at := time.Unix(1700000000, 0)
	v.now = func() time.Time { return at }

	if err := v.Pause(admin); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if err := v.Unpause(admin); err != nil {
		t.Fatalf("unpause: %v", err)
	}

	events := v.Events()
	if len(events) != 2 {
		t.Fatalf("events: %+v", events)
	}
	paused := events[0].Data.(model.PausedEvent)
	if events[0].Name != model.EventPaused || paused.By != admin.Hex() || paused.Timestamp != 1700000000 {
		t.Fatalf("paused event: %+v", events[0])
	}
	unpaused := events[1].Data.(model.PausedEvent)
	if events[1].Name != model.EventUnpaused || unpaused.Timestamp != 1700000000 {
		t.Fatalf("unpaused event: %+v", events[1])
	}
}

func TestAdminAuthorization(t *testing.T) {
	v, tok := newTestVault(t)
	ctx := context.Background()
	stray := token.NewMemAsset(strayAddr)

	if err := v.Pause(alice); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("pause by non-owner: %v", err)
	}
	if err := v.Unpause(alice); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("unpause by non-owner: %v", err)
	}
	if err := v.SetMaxTotalAssets(alice, bi(10)); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("set cap by non-owner: %v", err)
	}
	if err := v.Sweep(ctx, alice, stray.Bound(vaultAddr), bob); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("sweep by non-owner: %v", err)
	}
	if err := v.TransferOwnership(alice, bob); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("ownership transfer by non-owner: %v", err)
	}

	// The owner cannot sweep the underlying asset itself.
	if err := v.Sweep(ctx, admin, tok.Bound(vaultAddr), bob); !errors.Is(err, ErrCannotSweepVaultAsset) {
		t.Fatalf("sweep vault asset: %v", err)
	}
}

func TestSweepStrayToken(t *testing.T) {
	v, _ := newTestVault(t)
	ctx := context.Background()
	at := time.Unix(1700000123, 0)
	v.now = func() time.Time { return at }

	stray := token.NewMemAsset(strayAddr)
	stray.Mint(vaultAddr, bi(777))

	if err := v.Sweep(ctx, admin, stray.Bound(vaultAddr), bob); err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if stray.BalanceOf(bob).Cmp(bi(777)) != 0 {
		t.Fatalf("swept balance: %s", stray.BalanceOf(bob))
	}
	if stray.BalanceOf(vaultAddr).Sign() != 0 {
		t.Fatalf("vault still holds stray: %s", stray.BalanceOf(vaultAddr))
	}

	events := v.Events()
	swept := events[len(events)-1].Data.(model.TokenSweptEvent)
	want := model.TokenSweptEvent{Token: strayAddr.Hex(), To: bob.Hex(), Amount: "777", Timestamp: 1700000123}
	if swept != want {
		t.Fatalf("swept event: got %+v want %+v", swept, want)
	}
}

func TestMaxTotalAssetsIsInformational(t *testing.T) {
	v, tok := newTestVault(t)
	ctx := context.Background()
	fund(tok, alice, 1000)

	if err := v.SetMaxTotalAssets(admin, bi(50)); err != nil {
		t.Fatalf("set cap: %v", err)
	}
	if v.MaxTotalAssets().Cmp(bi(50)) != 0 {
		t.Fatalf("cap: %s", v.MaxTotalAssets())
	}

	// The cap is advisory: deposits above it still succeed.
	if _, err := v.Deposit(ctx, alice, alice, bi(1000)); err != nil {
		t.Fatalf("deposit above cap: %v", err)
	}

	events := v.Events()
	updated := events[0].Data.(model.MaxAssetsUpdatedEvent)
	if updated.Old != "0" || updated.New != "50" {
		t.Fatalf("cap event: %+v", updated)
	}
}

func TestTransferOwnership(t *testing.T) {
	v, _ := newTestVault(t)

	if err := v.TransferOwnership(admin, carol); err != nil {
		t.Fatalf("transfer ownership: %v", err)
	}
	if v.Owner() != carol {
		t.Fatalf("owner: %s", v.Owner().Hex())
	}

	if err := v.Pause(admin); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("old owner still authorized: %v", err)
	}
	if err := v.Pause(carol); err != nil {
		t.Fatalf("new owner pause: %v", err)
	}
}
