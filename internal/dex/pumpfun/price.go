// ==============================================
// File: internal/dex/pumpfun/price.go
// ==============================================
package pumpfun

import (
	"math"

	"github.com/gagliardetto/solana-go"
)

// PriceSnapshot holds the initial price derived from a bonding curve
// together with the virtual reserves it was derived from. The protocol
// prices against the virtual reserves, not the real ones.
type PriceSnapshot struct {
	// InitialPrice is the SOL-per-token price scaled by the token decimal
	// precision.
	InitialPrice float64

	TokenReserves uint64
	SolReserves   uint64
}

// DerivePriceSnapshot derives the initial token price from decoded curve
// state. A curve with zero virtual token reserves prices at exactly zero;
// this is a defined edge case for freshly initialized curves, not an error.
func DerivePriceSnapshot(state *BondingCurveState) PriceSnapshot {
	snapshot := PriceSnapshot{
		TokenReserves: state.VirtualTokenReserves,
		SolReserves:   state.VirtualSolReserves,
	}

	if state.VirtualTokenReserves == 0 {
		return snapshot
	}

	priceLamports := float64(state.VirtualSolReserves) / float64(state.VirtualTokenReserves)
	snapshot.InitialPrice = priceLamports * math.Pow10(TokenDecimals) / float64(solana.LAMPORTS_PER_SOL)

	return snapshot
}
