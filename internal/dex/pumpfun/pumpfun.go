// ==============================================
// File: internal/dex/pumpfun/pumpfun.go
// ==============================================
package pumpfun

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Program ID for Pump.fun protocol
var PumpFunProgramID = solana.MustPublicKeyFromBase58("6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P")

const (
	// TokenDecimals is the decimal precision of every token minted through
	// the Pump.fun program.
	TokenDecimals = 6

	bondingCurveSeed = "bonding-curve"
)

// DeriveBondingCurveAddress derives the bonding curve PDA for a token mint.
// The derivation is deterministic: the seeds are the literal "bonding-curve"
// and the mint's bytes.
func DeriveBondingCurveAddress(mint solana.PublicKey) (solana.PublicKey, uint8, error) {
	addr, bump, err := solana.FindProgramAddress(
		[][]byte{[]byte(bondingCurveSeed), mint.Bytes()},
		PumpFunProgramID,
	)
	if err != nil {
		return solana.PublicKey{}, 0, fmt.Errorf("failed to derive bonding curve: %w", err)
	}
	return addr, bump, nil
}
