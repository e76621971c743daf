package queue

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"mailsplit-backend/internal/shared/telemetry"
)

// DefaultNATSSubject carries assignment jobs.
const DefaultNATSSubject = "mailsplit.assign"

const natsWorkerGroup = "assign-workers"

// NATSClient publishes and consumes assignment jobs over core NATS.
type NATSClient struct {
	conn    *nats.Conn
	subject string
}

// NewNATSClient connects to the server at url.
func NewNATSClient(url, subject string) (*NATSClient, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, fmt.Errorf("nats url is required")
	}
	if strings.TrimSpace(subject) == "" {
		subject = DefaultNATSSubject
	}
	conn, err := nats.Connect(
		url,
		nats.Name("mailsplit"),
		nats.Timeout(2*time.Second),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(60),
		nats.RetryOnFailedConnect(true),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			telemetry.Warn("queue.nats.disconnected", map[string]any{"error": errString(err)})
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			telemetry.Info("queue.nats.reconnected", map[string]any{"url": nc.ConnectedUrl()})
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &NATSClient{conn: conn, subject: subject}, nil
}

// Healthy reports an error while the connection is down.
func (n *NATSClient) Healthy(context.Context) error {
	if n.conn == nil || !n.conn.IsConnected() {
		return fmt.Errorf("nats not connected")
	}
	return nil
}

// Close releases the connection.
func (n *NATSClient) Close() {
	if n.conn != nil {
		n.conn.Close()
	}
}

// Send publishes msg on the job subject.
func (n *NATSClient) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := EncodeMessage(msg)
	if err != nil {
		return fmt.Errorf("encode nats message: %w", err)
	}
	if err := n.conn.Publish(n.subject, payload); err != nil {
		return fmt.Errorf("nats publish: %w", err)
	}
	return nil
}

// Subscribe delivers each payload to handler until ctx is done, then drains.
// Core NATS has no redelivery, so handler errors are only logged.
func (n *NATSClient) Subscribe(ctx context.Context, handler func(context.Context, []byte) error) error {
	sub, err := n.conn.QueueSubscribe(n.subject, natsWorkerGroup, func(msg *nats.Msg) {
		if ctx.Err() != nil {
			return
		}
		if err := handler(ctx, msg.Data); err != nil {
			telemetry.Warn("queue.nats.handler_failed", map[string]any{"error": err.Error()})
		}
	})
	if err != nil {
		return fmt.Errorf("nats subscribe: %w", err)
	}
	if err := n.conn.Flush(); err != nil {
		return fmt.Errorf("nats flush: %w", err)
	}

	<-ctx.Done()
	if err := sub.Drain(); err != nil {
		return fmt.Errorf("nats drain subscription: %w", err)
	}
	if err := n.conn.FlushTimeout(5 * time.Second); err != nil {
		return fmt.Errorf("nats flush after drain: %w", err)
	}
	return nil
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

var _ Client = (*NATSClient)(nil)
