// ==============================================
// File: internal/dex/pumpfun/curve_state.go
// ==============================================
package pumpfun

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// curveStateDiscriminator is the Anchor account discriminator prefacing
// every bonding curve account.
const curveStateDiscriminator uint64 = 6966180631402821399

// Decoding errors
var (
	ErrInvalidDiscriminator = errors.New("invalid curve state discriminator")
	ErrTruncatedPayload     = errors.New("truncated curve state payload")
)

type layoutTag uint8

// Known bonding curve account layouts. V2 appends a 32-byte creator key to
// the V1 fields.
const (
	layoutV1 layoutTag = iota + 1
	layoutV2
)

const (
	discriminatorLen = 8

	// Five u64 fields plus the one-byte complete flag.
	fixedFieldsLen = 5*8 + 1
	creatorLen     = 32

	// Accounts longer than this carry the creator field. The threshold is
	// applied to the full payload, discriminator included.
	layoutV2Threshold = 150
)

// bodyLen returns the number of bytes the layout occupies after the
// discriminator.
func (t layoutTag) bodyLen() int {
	if t == layoutV2 {
		return fixedFieldsLen + creatorLen
	}
	return fixedFieldsLen
}

// selectLayout picks the account layout from the total payload length.
// Pump.fun never versioned the account explicitly, so the length is the
// only available discriminator between the two shapes.
func selectLayout(payloadLen int) layoutTag {
	if payloadLen > layoutV2Threshold {
		return layoutV2
	}
	return layoutV1
}

// BondingCurveState is the decoded state of one bonding curve account.
// Values are immutable after construction.
type BondingCurveState struct {
	VirtualTokenReserves uint64
	VirtualSolReserves   uint64
	RealTokenReserves    uint64
	RealSolReserves      uint64
	TokenTotalSupply     uint64
	Complete             bool

	// Creator is only present in the newer account layout.
	Creator *solana.PublicKey
}

// DecodeBondingCurveState parses raw bonding curve account data into a
// fully populated BondingCurveState. All integer fields are little-endian
// unsigned 64-bit values; the complete flag occupies a single byte with
// nonzero meaning true.
func DecodeBondingCurveState(data []byte) (*BondingCurveState, error) {
	if len(data) < discriminatorLen {
		return nil, fmt.Errorf("%w: %d bytes", ErrTruncatedPayload, len(data))
	}

	if binary.LittleEndian.Uint64(data[:discriminatorLen]) != curveStateDiscriminator {
		return nil, fmt.Errorf("%w: got %x", ErrInvalidDiscriminator, data[:discriminatorLen])
	}

	layout := selectLayout(len(data))
	body := data[discriminatorLen:]
	if len(body) < layout.bodyLen() {
		return nil, fmt.Errorf("%w: %d bytes after discriminator, need %d",
			ErrTruncatedPayload, len(body), layout.bodyLen())
	}

	state := &BondingCurveState{
		VirtualTokenReserves: binary.LittleEndian.Uint64(body[0:8]),
		VirtualSolReserves:   binary.LittleEndian.Uint64(body[8:16]),
		RealTokenReserves:    binary.LittleEndian.Uint64(body[16:24]),
		RealSolReserves:      binary.LittleEndian.Uint64(body[24:32]),
		TokenTotalSupply:     binary.LittleEndian.Uint64(body[32:40]),
		Complete:             body[40] != 0,
	}

	if layout == layoutV2 {
		creator := solana.PublicKeyFromBytes(body[fixedFieldsLen : fixedFieldsLen+creatorLen])
		state.Creator = &creator
	}

	return state, nil
}
