package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/pumpfun-collector/internal/dex/pumpfun"
	"github.com/rovshanmuradov/pumpfun-collector/internal/eventlistener"
)

// SnapshotFormat represents the dataset file format
type SnapshotFormat string

const (
	FormatCSV  SnapshotFormat = "csv"
	FormatJSON SnapshotFormat = "json"
)

// SnapshotRecord is one dataset row: the launch metadata joined with the
// derived on-chain snapshot.
type SnapshotRecord struct {
	DetectedAt    time.Time `json:"detected_at"`
	Platform      string    `json:"platform"`
	Name          string    `json:"name"`
	Symbol        string    `json:"symbol"`
	Mint          string    `json:"mint"`
	BondingCurve  string    `json:"bonding_curve"`
	Creator       string    `json:"creator"`
	Signature     string    `json:"signature"`
	InitialPrice  float64   `json:"initial_price"`
	TokenReserves uint64    `json:"token_reserves"`
	SolReserves   uint64    `json:"sol_reserves"`
}

// SnapshotWriter appends launch snapshots to a dataset file for the
// downstream pipeline. CSV gets a header row on file creation; JSON is
// written as one object per line.
type SnapshotWriter struct {
	logger *zap.Logger
	dir    string
	format SnapshotFormat
	mu     sync.Mutex
}

// NewSnapshotWriter creates a snapshot writer rooted at dir.
func NewSnapshotWriter(dir string, format SnapshotFormat, logger *zap.Logger) (*SnapshotWriter, error) {
	switch format {
	case FormatCSV, FormatJSON:
	default:
		return nil, fmt.Errorf("unsupported dataset format: %s", format)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create dataset directory: %w", err)
	}

	return &SnapshotWriter{
		logger: logger.Named("snapshot-writer"),
		dir:    dir,
		format: format,
	}, nil
}

// Path returns the dataset file the writer appends to.
func (w *SnapshotWriter) Path() string {
	if w.format == FormatJSON {
		return filepath.Join(w.dir, "launches.jsonl")
	}
	return filepath.Join(w.dir, "launches.csv")
}

// WriteSnapshot appends one record to the dataset. Safe for concurrent use.
func (w *SnapshotWriter) WriteSnapshot(event eventlistener.LaunchEvent, snapshot pumpfun.PriceSnapshot) error {
	record := SnapshotRecord{
		DetectedAt:    time.Now().UTC(),
		Platform:      event.Platform,
		Name:          event.Name,
		Symbol:        event.Symbol,
		Mint:          event.Mint.String(),
		BondingCurve:  event.BondingCurve.String(),
		Creator:       event.Creator.String(),
		Signature:     event.Signature,
		InitialPrice:  snapshot.InitialPrice,
		TokenReserves: snapshot.TokenReserves,
		SolReserves:   snapshot.SolReserves,
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	var err error
	if w.format == FormatJSON {
		err = w.appendJSON(record)
	} else {
		err = w.appendCSV(record)
	}
	if err != nil {
		return err
	}

	w.logger.Debug("Appended snapshot to dataset",
		zap.String("mint", record.Mint),
		zap.String("path", w.Path()))
	return nil
}

func (w *SnapshotWriter) appendJSON(record SnapshotRecord) error {
	file, err := os.OpenFile(w.Path(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open dataset file: %w", err)
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	if err := enc.Encode(record); err != nil {
		return fmt.Errorf("failed to encode snapshot record: %w", err)
	}
	return nil
}

func (w *SnapshotWriter) appendCSV(record SnapshotRecord) error {
	path := w.Path()

	_, statErr := os.Stat(path)
	writeHeader := os.IsNotExist(statErr)

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open dataset file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if writeHeader {
		header := []string{
			"detected_at", "platform", "name", "symbol", "mint",
			"bonding_curve", "creator", "signature",
			"initial_price", "token_reserves", "sol_reserves",
		}
		if err := writer.Write(header); err != nil {
			return fmt.Errorf("failed to write dataset header: %w", err)
		}
	}

	row := []string{
		record.DetectedAt.Format(time.RFC3339Nano),
		record.Platform,
		record.Name,
		record.Symbol,
		record.Mint,
		record.BondingCurve,
		record.Creator,
		record.Signature,
		strconv.FormatFloat(record.InitialPrice, 'f', -1, 64),
		strconv.FormatUint(record.TokenReserves, 10),
		strconv.FormatUint(record.SolReserves, 10),
	}
	if err := writer.Write(row); err != nil {
		return fmt.Errorf("failed to write dataset row: %w", err)
	}

	writer.Flush()
	return writer.Error()
}
