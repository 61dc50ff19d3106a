// =============================
// File: internal/collector/handler.go
// =============================
package collector

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/pumpfun-collector/internal/dex/pumpfun"
	"github.com/rovshanmuradov/pumpfun-collector/internal/eventlistener"
	"github.com/rovshanmuradov/pumpfun-collector/internal/logger"
)

// SnapshotSink receives the derived snapshot for every successfully
// collected launch. Implemented by the dataset writer in internal/export.
type SnapshotSink interface {
	WriteSnapshot(event eventlistener.LaunchEvent, snapshot pumpfun.PriceSnapshot) error
}

// Handler reconciles launch events against the derived bonding curve
// address and drives the fetch-with-retry cycle for each one.
type Handler struct {
	fetcher *CurveFetcher
	sink    SnapshotSink
	logger  *zap.Logger
}

// NewHandler создаёт обработчик событий запуска. sink может быть nil, если
// снапшоты нужны только в логах.
func NewHandler(fetcher *CurveFetcher, sink SnapshotSink, logger *zap.Logger) *Handler {
	return &Handler{
		fetcher: fetcher,
		sink:    sink,
		logger:  logger.Named("launch-handler"),
	}
}

// OnTokenLaunch is the listener callback. Each launch is handled under an
// operation-scoped logger carrying a fresh correlation id and the token
// context, so all records of one collection run can be joined. Any failure
// in the handling sequence is logged and swallowed here so one malformed
// event never stops the listening loop.
func (h *Handler) OnTokenLaunch(ctx context.Context, event eventlistener.LaunchEvent) {
	log := logger.WithToken(
		logger.WithOperation(h.logger, "collect-launch"),
		event.Mint.String(), event.Symbol)

	if err := h.handle(ctx, log, event); err != nil {
		log.Error("Failed to fetch on-chain data for token", zap.Error(err))
	}
}

func (h *Handler) handle(ctx context.Context, log *zap.Logger, event eventlistener.LaunchEvent) error {
	log.Info("New token detected",
		zap.String("platform", event.Platform),
		zap.String("name", event.Name),
		zap.String("creator", event.Creator.String()))

	derived, _, err := pumpfun.DeriveBondingCurveAddress(event.Mint)
	if err != nil {
		return fmt.Errorf("failed to derive bonding curve address: %w", err)
	}

	log.Info("Bonding curve addresses",
		zap.String("from_event", event.BondingCurve.String()),
		zap.String("derived", derived.String()))

	// The derivation is authoritative; the event-reported address is only
	// cross-checked.
	if event.BondingCurve.String() != derived.String() {
		log.Warn("Bonding curve from event and derived address do not match",
			zap.String("from_event", event.BondingCurve.String()),
			zap.String("derived", derived.String()))
	}

	snapshot, err := h.fetcher.FetchPriceSnapshot(ctx, derived)
	if err != nil {
		return err
	}

	log.Info("Successfully fetched initial on-chain data",
		zap.Float64("initial_price_sol", snapshot.InitialPrice),
		zap.Uint64("token_reserves", snapshot.TokenReserves),
		zap.Uint64("sol_reserves", snapshot.SolReserves))

	if h.sink != nil {
		if err := h.sink.WriteSnapshot(event, *snapshot); err != nil {
			log.Warn("Failed to hand snapshot to dataset sink", zap.Error(err))
		}
	}

	return nil
}
