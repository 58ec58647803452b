package convert

import (
	"errors"
	"math/big"
	"testing"
)

func bi(v int64) *big.Int { return big.NewInt(v) }

func TestBootstrapIsIdentity(t *testing.T) {
	zero := big.NewInt(0)

	shares, err := SharesForDeposit(bi(12345), zero, zero)
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if shares.Cmp(bi(12345)) != 0 {
		t.Fatalf("deposit bootstrap: got %s", shares)
	}

	assets, err := AssetsForMint(bi(777), zero, zero)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if assets.Cmp(bi(777)) != 0 {
		t.Fatalf("mint bootstrap: got %s", assets)
	}

	shares, err = SharesForWithdraw(bi(50), zero, zero)
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if shares.Cmp(bi(50)) != 0 {
		t.Fatalf("withdraw bootstrap: got %s", shares)
	}

	assets, err = AssetsForRedeem(bi(50), zero, zero)
	if err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if assets.Cmp(bi(50)) != 0 {
		t.Fatalf("redeem bootstrap: got %s", assets)
	}
}

func TestRoundingDirections(t *testing.T) {
	// Pool at 110 assets / 100 shares: rate is 1.1 assets per share.
	totalShares := bi(100)
	totalAssets := bi(110)

	cases := []struct {
		name string
		fn   func() (*big.Int, error)
		want int64
	}{
		// 100 * 100 / 110 = 90.909..., floor.
		{"deposit floors", func() (*big.Int, error) { return SharesForDeposit(bi(100), totalShares, totalAssets) }, 90},
		// 7 * 110 / 100 = 7.7, ceil.
		{"mint ceils", func() (*big.Int, error) { return AssetsForMint(bi(7), totalShares, totalAssets) }, 8},
		// 100 * 100 / 110 = 90.909..., ceil.
		{"withdraw ceils", func() (*big.Int, error) { return SharesForWithdraw(bi(100), totalShares, totalAssets) }, 91},
		// 7 * 110 / 100 = 7.7, floor.
		{"redeem floors", func() (*big.Int, error) { return AssetsForRedeem(bi(7), totalShares, totalAssets) }, 7},
	}

	for _, tc := range cases {
		got, err := tc.fn()
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if got.Cmp(bi(tc.want)) != 0 {
			t.Fatalf("%s: got %s want %d", tc.name, got, tc.want)
		}
	}
}

func TestExactRateNoRounding(t *testing.T) {
	shares, err := SharesForDeposit(bi(50), bi(200), bi(100))
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if shares.Cmp(bi(100)) != 0 {
		t.Fatalf("exact deposit: got %s", shares)
	}

	up, err := SharesForWithdraw(bi(50), bi(200), bi(100))
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if up.Cmp(shares) != 0 {
		t.Fatalf("exact rate should round identically: %s vs %s", up, shares)
	}
}

func TestDrainedPool(t *testing.T) {
	if _, err := SharesForDeposit(bi(1), bi(100), bi(0)); !errors.Is(err, ErrDrainedPool) {
		t.Fatalf("deposit drained: got %v", err)
	}
	if _, err := SharesForWithdraw(bi(1), bi(100), bi(0)); !errors.Is(err, ErrDrainedPool) {
		t.Fatalf("withdraw drained: got %v", err)
	}
	// Mint must fail too; at a zero rate it would price any share amount
	// at zero assets.
	if _, err := AssetsForMint(bi(1), bi(100), bi(0)); !errors.Is(err, ErrDrainedPool) {
		t.Fatalf("mint drained: got %v", err)
	}
	// Redeem against a drained pool pays zero rather than failing.
	out, err := AssetsForRedeem(bi(10), bi(100), bi(0))
	if err != nil {
		t.Fatalf("redeem drained: %v", err)
	}
	if out.Sign() != 0 {
		t.Fatalf("redeem drained: got %s", out)
	}
}

func TestPoolFavorableRoundTrips(t *testing.T) {
	// After yield, converting back and forth must never credit the user.
	totalShares := bi(1000)
	totalAssets := bi(1130)

	for _, x := range []int64{1, 3, 7, 99, 1000, 1129} {
		shares, err := SharesForDeposit(bi(x), totalShares, totalAssets)
		if err != nil {
			t.Fatalf("deposit %d: %v", x, err)
		}
		back, err := AssetsForRedeem(shares, totalShares, totalAssets)
		if err != nil {
			t.Fatalf("redeem %d: %v", x, err)
		}
		if back.Cmp(bi(x)) > 0 {
			t.Fatalf("round trip gained value: %d -> %s -> %s", x, shares, back)
		}

		assets, err := AssetsForRedeem(bi(x), totalShares, totalAssets)
		if err != nil {
			t.Fatalf("convert %d: %v", x, err)
		}
		backShares, err := SharesForDeposit(assets, totalShares, totalAssets)
		if err != nil {
			t.Fatalf("convert back %d: %v", x, err)
		}
		if backShares.Cmp(bi(x)) > 0 {
			t.Fatalf("share round trip gained value: %d -> %s -> %s", x, assets, backShares)
		}
	}
}

func TestNearMaxMagnitude(t *testing.T) {
	// uint256 ceiling; big.Int keeps the intermediate product exact.
	max := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

	shares, err := SharesForDeposit(max, max, max)
	if err != nil {
		t.Fatalf("deposit at max: %v", err)
	}
	if shares.Cmp(max) != 0 {
		t.Fatalf("deposit at max: got %s", shares)
	}

	// totalAssets slightly above totalShares: result must floor below max.
	bigAssets := new(big.Int).Set(max)
	bigShares := new(big.Int).Sub(max, big.NewInt(1))
	out, err := SharesForDeposit(bigShares, bigShares, bigAssets)
	if err != nil {
		t.Fatalf("deposit near max: %v", err)
	}
	if out.Cmp(bigShares) > 0 {
		t.Fatalf("deposit near max rounded up: got %s", out)
	}

	up, err := SharesForWithdraw(bigShares, bigShares, bigAssets)
	if err != nil {
		t.Fatalf("withdraw near max: %v", err)
	}
	if up.Cmp(out) < 0 {
		t.Fatalf("ceil below floor near max: %s < %s", up, out)
	}
}
