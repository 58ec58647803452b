package convert

import (
	"errors"
	"math/big"
)

// ErrDrainedPool is returned when shares are outstanding but the pooled
// asset balance is zero, which makes the exchange rate undefined.
var ErrDrainedPool = errors.New("pool drained: shares outstanding with zero assets")

// SharesForDeposit returns the shares minted for depositing assets,
// rounded down so the remainder stays with the pool.
func SharesForDeposit(assets, totalShares, totalAssets *big.Int) (*big.Int, error) {
	if totalShares.Sign() == 0 {
		return new(big.Int).Set(assets), nil
	}
	if totalAssets.Sign() == 0 {
		return nil, ErrDrainedPool
	}
	return mulDivFloor(assets, totalShares, totalAssets), nil
}

// AssetsForMint returns the assets required to mint the given shares,
// rounded up so the pool never accepts less than the exact rate.
func AssetsForMint(shares, totalShares, totalAssets *big.Int) (*big.Int, error) {
	if totalShares.Sign() == 0 {
		return new(big.Int).Set(shares), nil
	}
	if totalAssets.Sign() == 0 {
		return nil, ErrDrainedPool
	}
	return mulDivCeil(shares, totalAssets, totalShares), nil
}

// SharesForWithdraw returns the shares burned to withdraw the given assets,
// rounded up so the user never burns less than the exact rate demands.
func SharesForWithdraw(assets, totalShares, totalAssets *big.Int) (*big.Int, error) {
	if totalShares.Sign() == 0 {
		return new(big.Int).Set(assets), nil
	}
	if totalAssets.Sign() == 0 {
		return nil, ErrDrainedPool
	}
	return mulDivCeil(assets, totalShares, totalAssets), nil
}

// AssetsForRedeem returns the assets paid out for burning the given shares,
// rounded down so the pool never pays more than the exact rate.
func AssetsForRedeem(shares, totalShares, totalAssets *big.Int) (*big.Int, error) {
	if totalShares.Sign() == 0 {
		return new(big.Int).Set(shares), nil
	}
	return mulDivFloor(shares, totalAssets, totalShares), nil
}

func mulDivFloor(a, b, denom *big.Int) *big.Int {
	out := new(big.Int).Mul(a, b)
	return out.Div(out, denom)
}

func mulDivCeil(a, b, denom *big.Int) *big.Int {
	num := new(big.Int).Mul(a, b)
	quo, rem := new(big.Int).QuoRem(num, denom, new(big.Int))
	if rem.Sign() != 0 {
		quo.Add(quo, big.NewInt(1))
	}
	return quo
}
