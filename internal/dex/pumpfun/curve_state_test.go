package pumpfun

import (
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// encodeCurveState builds a raw account payload for a state. totalLen pads
// the payload with trailing zeros, mirroring the reserved space real
// accounts carry.
func encodeCurveState(state *BondingCurveState, totalLen int) []byte {
	buf := make([]byte, 0, totalLen)

	disc := make([]byte, 8)
	binary.LittleEndian.PutUint64(disc, curveStateDiscriminator)
	buf = append(buf, disc...)

	for _, v := range []uint64{
		state.VirtualTokenReserves,
		state.VirtualSolReserves,
		state.RealTokenReserves,
		state.RealSolReserves,
		state.TokenTotalSupply,
	} {
		field := make([]byte, 8)
		binary.LittleEndian.PutUint64(field, v)
		buf = append(buf, field...)
	}

	if state.Complete {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}

	if state.Creator != nil {
		buf = append(buf, state.Creator.Bytes()...)
	}

	for len(buf) < totalLen {
		buf = append(buf, 0)
	}
	return buf
}

func TestSelectLayout(t *testing.T) {
	tests := []struct {
		name       string
		payloadLen int
		expected   layoutTag
	}{
		{"minimal v1 account", 49, layoutV1},
		{"exactly at threshold", 150, layoutV1},
		{"just above threshold", 151, layoutV2},
		{"padded v2 account", 200, layoutV2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, selectLayout(tt.payloadLen))
		})
	}
}

func TestDecodeBondingCurveStateV1(t *testing.T) {
	original := &BondingCurveState{
		VirtualTokenReserves: 1_073_000_000_000_000,
		VirtualSolReserves:   30_000_000_000,
		RealTokenReserves:    793_100_000_000_000,
		RealSolReserves:      0,
		TokenTotalSupply:     1_000_000_000_000_000,
		Complete:             false,
	}

	data := encodeCurveState(original, 0)
	require.Len(t, data, 49)

	state, err := DecodeBondingCurveState(data)
	require.NoError(t, err)

	assert.Equal(t, original.VirtualTokenReserves, state.VirtualTokenReserves)
	assert.Equal(t, original.VirtualSolReserves, state.VirtualSolReserves)
	assert.Equal(t, original.RealTokenReserves, state.RealTokenReserves)
	assert.Equal(t, original.RealSolReserves, state.RealSolReserves)
	assert.Equal(t, original.TokenTotalSupply, state.TokenTotalSupply)
	assert.False(t, state.Complete)
	assert.Nil(t, state.Creator, "v1 layout must not carry a creator")
}

func TestDecodeBondingCurveStateV2(t *testing.T) {
	creator := solana.NewWallet().PublicKey()
	original := &BondingCurveState{
		VirtualTokenReserves: 1_073_000_000_000_000,
		VirtualSolReserves:   30_000_000_000,
		RealTokenReserves:    793_100_000_000_000,
		RealSolReserves:      0,
		TokenTotalSupply:     1_000_000_000_000_000,
		Complete:             true,
		Creator:              &creator,
	}

	data := encodeCurveState(original, 160)

	state, err := DecodeBondingCurveState(data)
	require.NoError(t, err)

	assert.True(t, state.Complete)
	require.NotNil(t, state.Creator)
	assert.Equal(t, creator, *state.Creator)
}

func TestDecodeBondingCurveStateInvalidDiscriminator(t *testing.T) {
	data := encodeCurveState(&BondingCurveState{VirtualTokenReserves: 1}, 0)
	data[0] ^= 0xFF

	state, err := DecodeBondingCurveState(data)
	assert.Nil(t, state)
	assert.ErrorIs(t, err, ErrInvalidDiscriminator)
}

func TestDecodeBondingCurveStateTruncated(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty payload", []byte{}},
		{"shorter than discriminator", []byte{0x17, 0x42}},
		{"valid discriminator, short body", encodeCurveState(&BondingCurveState{}, 0)[:30]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, err := DecodeBondingCurveState(tt.data)
			assert.Nil(t, state)
			assert.ErrorIs(t, err, ErrTruncatedPayload)
		})
	}
}

func TestDecodeBondingCurveStateRoundTrip(t *testing.T) {
	original := &BondingCurveState{
		VirtualTokenReserves: 42,
		VirtualSolReserves:   84,
		RealTokenReserves:    21,
		RealSolReserves:      7,
		TokenTotalSupply:     1_000_000,
		Complete:             true,
	}

	state, err := DecodeBondingCurveState(encodeCurveState(original, 0))
	require.NoError(t, err)
	assert.Equal(t, original, state)
}

func TestDecodeBondingCurveStateKnownVector(t *testing.T) {
	original := &BondingCurveState{
		VirtualTokenReserves: 1_000_000_000,
		VirtualSolReserves:   30_000_000_000,
		RealTokenReserves:    800_000_000,
		RealSolReserves:      25_000_000_000,
		TokenTotalSupply:     1_000_000_000,
	}

	state, err := DecodeBondingCurveState(encodeCurveState(original, 0))
	require.NoError(t, err)

	assert.Equal(t, uint64(1_000_000_000), state.VirtualTokenReserves)
	assert.Equal(t, uint64(30_000_000_000), state.VirtualSolReserves)
	assert.False(t, state.Complete)

	snapshot := DerivePriceSnapshot(state)
	// 30e9/1e9 lamports per base unit, scaled by 10^6 / 1e9.
	assert.InDelta(t, 0.03, snapshot.InitialPrice, 1e-12)
}
