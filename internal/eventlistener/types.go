package eventlistener

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
)

// LaunchEvent is the notification delivered for every newly created
// bonding curve pool. Read-only input for handlers.
type LaunchEvent struct {
	Platform     string
	Name         string
	Symbol       string
	URI          string
	Mint         solana.PublicKey
	BondingCurve solana.PublicKey
	Creator      solana.PublicKey
	Signature    string
}

// TokenCallback is invoked once per launch event. Delivery is sequential:
// the listener does not read the next notification until the callback
// returns.
type TokenCallback func(ctx context.Context, event LaunchEvent)

const (
	// PlatformPumpFun tags events originating from the Pump.fun program.
	PlatformPumpFun = "pump_fun"

	readTimeout  = 30 * time.Second
	writeTimeout = 5 * time.Second
)

// createEventDiscriminator prefixes the Anchor CreateEvent emitted by the
// Pump.fun program in "Program data:" log lines.
var createEventDiscriminator = [8]byte{27, 114, 169, 77, 222, 235, 99, 118}

var errNotCreateEvent = errors.New("not a create event")

// logsNotification mirrors the JSON-RPC logsSubscribe notification shape.
type logsNotification struct {
	Method string `json:"method"`
	Params struct {
		Result struct {
			Value struct {
				Signature string      `json:"signature"`
				Err       interface{} `json:"err"`
				Logs      []string    `json:"logs"`
			} `json:"value"`
		} `json:"result"`
	} `json:"params"`
}

// decodeCreateEvent parses the borsh-encoded CreateEvent payload: three
// length-prefixed strings (name, symbol, uri) followed by the mint, bonding
// curve and creator public keys.
func decodeCreateEvent(data []byte) (*LaunchEvent, error) {
	if len(data) < len(createEventDiscriminator) {
		return nil, errNotCreateEvent
	}
	for i, b := range createEventDiscriminator {
		if data[i] != b {
			return nil, errNotCreateEvent
		}
	}

	r := &borshReader{buf: data[len(createEventDiscriminator):]}

	name := r.readString()
	symbol := r.readString()
	uri := r.readString()
	mint := r.readPublicKey()
	bondingCurve := r.readPublicKey()
	creator := r.readPublicKey()

	if r.err != nil {
		return nil, fmt.Errorf("malformed create event payload: %w", r.err)
	}

	return &LaunchEvent{
		Platform:     PlatformPumpFun,
		Name:         name,
		Symbol:       symbol,
		URI:          uri,
		Mint:         mint,
		BondingCurve: bondingCurve,
		Creator:      creator,
	}, nil
}

// borshReader is a minimal cursor over a borsh payload. The first error
// sticks; subsequent reads return zero values.
type borshReader struct {
	buf []byte
	off int
	err error
}

func (r *borshReader) readString() string {
	if r.err != nil {
		return ""
	}
	if r.off+4 > len(r.buf) {
		r.err = errors.New("string length out of bounds")
		return ""
	}
	n := int(binary.LittleEndian.Uint32(r.buf[r.off : r.off+4]))
	r.off += 4
	if n < 0 || r.off+n > len(r.buf) {
		r.err = errors.New("string body out of bounds")
		return ""
	}
	s := string(r.buf[r.off : r.off+n])
	r.off += n
	return s
}

func (r *borshReader) readPublicKey() solana.PublicKey {
	if r.err != nil {
		return solana.PublicKey{}
	}
	if r.off+32 > len(r.buf) {
		r.err = errors.New("public key out of bounds")
		return solana.PublicKey{}
	}
	pk := solana.PublicKeyFromBytes(r.buf[r.off : r.off+32])
	r.off += 32
	return pk
}
