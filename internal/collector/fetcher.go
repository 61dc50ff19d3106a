// =============================
// File: internal/collector/fetcher.go
// =============================
package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/pumpfun-collector/internal/blockchain/solbc"
	"github.com/rovshanmuradov/pumpfun-collector/internal/dex/pumpfun"
)

// Defaults for absorbing RPC propagation delay after a token launch.
const (
	DefaultMaxRetries = 5
	DefaultRetryDelay = 1500 * time.Millisecond
)

// AccountReader is the remote read dependency of the fetcher. Satisfied by
// solbc.Client; mocked in tests.
type AccountReader interface {
	GetAccountDataWithOpts(ctx context.Context, pubkey solana.PublicKey, commitment rpc.CommitmentType) ([]byte, error)
}

// CurveFetcher fetches and decodes bonding curve state with a bounded retry
// policy. Newly created accounts are not immediately visible to every read
// replica, so a fixed number of fixed-delay attempts is made before giving up.
type CurveFetcher struct {
	client     AccountReader
	logger     *zap.Logger
	commitment rpc.CommitmentType
	maxRetries uint
	retryDelay time.Duration
}

// NewCurveFetcher создаёт fetcher с политикой повторов по умолчанию,
// если параметры не заданы.
func NewCurveFetcher(client AccountReader, logger *zap.Logger, commitment rpc.CommitmentType, maxRetries int, retryDelay time.Duration) *CurveFetcher {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	if retryDelay <= 0 {
		retryDelay = DefaultRetryDelay
	}
	if commitment == "" {
		commitment = rpc.CommitmentConfirmed
	}
	return &CurveFetcher{
		client:     client,
		logger:     logger.Named("curve-fetcher"),
		commitment: commitment,
		maxRetries: uint(maxRetries),
		retryDelay: retryDelay,
	}
}

// isNotYetAvailable reports whether an attempt failed only because the
// account has not propagated to the queried replica yet.
func isNotYetAvailable(err error) bool {
	return errors.Is(err, solbc.ErrAccountNotFound) || errors.Is(err, solbc.ErrEmptyAccountData)
}

// FetchPriceSnapshot reads the bonding curve account, decodes its state and
// derives the initial price snapshot. Transient not-yet-available results
// are retried up to the configured bound; any other read or decode failure
// is permanent and propagates immediately.
func (f *CurveFetcher) FetchPriceSnapshot(ctx context.Context, curveAddr solana.PublicKey) (*pumpfun.PriceSnapshot, error) {
	attempt := 0

	operation := func() (*pumpfun.PriceSnapshot, error) {
		attempt++

		data, err := f.client.GetAccountDataWithOpts(ctx, curveAddr, f.commitment)
		if err != nil {
			if isNotYetAvailable(err) {
				f.logger.Warn("Bonding curve not available yet",
					zap.String("address", curveAddr.String()),
					zap.Int("attempt", attempt),
					zap.Uint("max_retries", f.maxRetries))
				return nil, err
			}
			return nil, backoff.Permanent(fmt.Errorf("failed to read bonding curve account: %w", err))
		}

		state, err := pumpfun.DecodeBondingCurveState(data)
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("failed to decode bonding curve state: %w", err))
		}

		snapshot := pumpfun.DerivePriceSnapshot(state)
		return &snapshot, nil
	}

	notify := func(err error, delay time.Duration) {
		f.logger.Info("Retrying bonding curve fetch",
			zap.String("address", curveAddr.String()),
			zap.Duration("delay", delay),
			zap.Error(err))
	}

	snapshot, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewConstantBackOff(f.retryDelay)),
		backoff.WithMaxTries(f.maxRetries),
		backoff.WithNotify(notify))
	if err != nil {
		if isNotYetAvailable(err) {
			f.logger.Error("Bonding curve still unavailable after all attempts",
				zap.String("address", curveAddr.String()),
				zap.Uint("attempts", f.maxRetries))
			return nil, fmt.Errorf("bonding curve %s unavailable after %d attempts: %w",
				curveAddr.String(), f.maxRetries, err)
		}
		return nil, err
	}

	return snapshot, nil
}
