// internal/blockchain/solbc/client.go
package solbc

import (
	"context"
	"errors"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
)

// Client – тонкий адаптер для взаимодействия с блокчейном Solana через solana-go.
type Client struct {
	rpc    *rpc.Client
	logger *zap.Logger
}

// Определение ошибок
var (
	// ErrAccountNotFound is returned when the RPC node has no record of the
	// account at the requested commitment level yet.
	ErrAccountNotFound = errors.New("account not found")

	// ErrEmptyAccountData is returned when the account exists but carries no
	// data payload, which happens briefly while a new account propagates.
	ErrEmptyAccountData = errors.New("account has no data")
)

// IsAccountNotFoundError проверяет, является ли ошибка "not found"
func IsAccountNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrAccountNotFound) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "not found")
}

// NewClient создаёт новый клиент, принимая RPC URL и логгер через dependency injection.
func NewClient(rpcURL string, logger *zap.Logger) *Client {
	return &Client{
		rpc:    rpc.New(rpcURL),
		logger: logger.Named("solbc-client"),
	}
}

// GetAccountDataWithOpts fetches the raw data of an account as base64 at the
// given commitment level and returns the decoded bytes. A missing account or
// an account without a data payload is reported via the sentinel errors
// above so callers can classify it without matching message text.
func (c *Client) GetAccountDataWithOpts(ctx context.Context, pubkey solana.PublicKey, commitment rpc.CommitmentType) ([]byte, error) {
	result, err := c.rpc.GetAccountInfoWithOpts(ctx, pubkey, &rpc.GetAccountInfoOpts{
		Encoding:   solana.EncodingBase64,
		Commitment: commitment,
	})
	if err != nil {
		if IsAccountNotFoundError(err) {
			return nil, ErrAccountNotFound
		}
		c.logger.Debug("GetAccountInfoWithOpts error",
			zap.String("pubkey", pubkey.String()),
			zap.Error(err))
		return nil, err
	}

	if result == nil || result.Value == nil {
		return nil, ErrAccountNotFound
	}

	data := result.Value.Data.GetBinary()
	if len(data) == 0 {
		return nil, ErrEmptyAccountData
	}

	return data, nil
}

// GetHealth проверяет доступность RPC-узла.
func (c *Client) GetHealth(ctx context.Context) error {
	out, err := c.rpc.GetHealth(ctx)
	if err != nil {
		return err
	}
	if out != rpc.HealthOk {
		return errors.New("rpc node is unhealthy")
	}
	return nil
}
