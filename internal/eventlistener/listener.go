// internal/eventlistener/listener.go
package eventlistener

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"go.uber.org/zap"
)

// EventListener subscribes to the Solana logs feed over WebSocket and
// surfaces Pump.fun token launches as LaunchEvent callbacks.
type EventListener struct {
	conn      net.Conn
	logger    *zap.Logger
	wsURL     string
	programID string
	mu        sync.Mutex
	closeOnce sync.Once
	done      chan struct{}
}

// NewEventListener устанавливает WebSocket-соединение с использованием контекста.
func NewEventListener(ctx context.Context, wsURL string, programID string, logger *zap.Logger) (*EventListener, error) {
	conn, _, _, err := ws.Dial(ctx, wsURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial websocket: %w", err)
	}

	return &EventListener{
		conn:      conn,
		logger:    logger.Named("event-listener"),
		wsURL:     wsURL,
		programID: programID,
		done:      make(chan struct{}),
	}, nil
}

// subscribeRequest is the logsSubscribe JSON-RPC call for all transactions
// mentioning the watched program.
func (el *EventListener) subscribeRequest() ([]byte, error) {
	req := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "logsSubscribe",
		"params": []interface{}{
			map[string]interface{}{"mentions": []string{el.programID}},
			map[string]interface{}{"commitment": "processed"},
		},
	}
	return json.Marshal(req)
}

// Subscribe sends the logsSubscribe request. Must be called once before
// Listen.
func (el *EventListener) Subscribe() error {
	payload, err := el.subscribeRequest()
	if err != nil {
		return fmt.Errorf("failed to marshal subscribe request: %w", err)
	}

	el.mu.Lock()
	defer el.mu.Unlock()

	if err := el.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	if err := wsutil.WriteClientText(el.conn, payload); err != nil {
		return fmt.Errorf("failed to send subscribe request: %w", err)
	}

	el.logger.Info("Subscribed to program logs",
		zap.String("program_id", el.programID),
		zap.String("ws_url", el.wsURL))
	return nil
}

// Listen reads notifications until the context is cancelled or the
// connection breaks. Launch events are delivered to the handler one at a
// time; the handler runs to completion before the next message is read, so
// a slow handler backpressures the feed instead of fanning out.
func (el *EventListener) Listen(ctx context.Context, handler TokenCallback) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-el.done:
			return nil
		default:
		}

		if err := el.conn.SetReadDeadline(time.Now().Add(readTimeout)); err != nil {
			return err
		}

		msg, err := wsutil.ReadServerText(el.conn)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			// A read error during shutdown is expected: Close tears down
			// the connection under the blocked read.
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-el.done:
				return nil
			default:
			}
			el.logger.Error("Failed to read from websocket", zap.Error(err))
			return fmt.Errorf("websocket read failed: %w", err)
		}

		event, ok := el.parseNotification(msg)
		if !ok {
			continue
		}

		handler(ctx, *event)
	}
}

// parseNotification extracts a launch event from one logsNotification
// message, if it carries a successful Create instruction.
func (el *EventListener) parseNotification(msg []byte) (*LaunchEvent, bool) {
	var note logsNotification
	if err := json.Unmarshal(msg, &note); err != nil {
		el.logger.Debug("Skipping unparseable message", zap.Error(err))
		return nil, false
	}

	if note.Method != "logsNotification" {
		return nil, false
	}
	if note.Params.Result.Value.Err != nil {
		return nil, false
	}

	logs := note.Params.Result.Value.Logs
	if !hasCreateInstruction(logs) {
		return nil, false
	}

	for _, line := range logs {
		payload, ok := strings.CutPrefix(line, "Program data: ")
		if !ok {
			continue
		}

		raw, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			continue
		}

		event, err := decodeCreateEvent(raw)
		if err != nil {
			continue
		}

		event.Signature = note.Params.Result.Value.Signature
		return event, true
	}

	return nil, false
}

func hasCreateInstruction(logs []string) bool {
	for _, line := range logs {
		if strings.HasSuffix(line, "Instruction: Create") {
			return true
		}
	}
	return false
}

// Close завершает соединение; безопасно вызывать несколько раз.
func (el *EventListener) Close() error {
	var err error
	el.closeOnce.Do(func() {
		close(el.done)
		err = el.conn.Close()
	})
	return err
}
