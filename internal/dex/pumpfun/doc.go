// Package pumpfun implements the on-chain account model of the Pump.fun
// protocol on the Solana blockchain, as consumed by the launch collector.
//
// This package provides:
// - Deriving the bonding curve PDA for a token mint.
// - Decoding the versioned bonding curve account layout.
// - Deriving the initial token price and reserves from curve state.
//
// Key Types and Functions:
//
// - BondingCurveState struct: Decoded state of one bonding curve account.
// - DecodeBondingCurveState(): Validates the account discriminator, selects
//   the layout version and deserializes the curve fields.
// - PriceSnapshot struct: Initial price plus the virtual reserve pair.
// - DerivePriceSnapshot(): Pure price derivation from decoded curve state.
// - DeriveBondingCurveAddress(): PDA derivation from the token mint.
//
// Detailed information about each function can be found in their respective
// source files:
//   - pumpfun.go: Protocol constants and address derivation.
//   - curve_state.go: Account layouts and binary decoding.
//   - price.go: Price and reserve derivation.
package pumpfun
