package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/specbuilder/internal/config"
	ferrors "git.home.luguber.info/inful/specbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/specbuilder/internal/logfields"
	"git.home.luguber.info/inful/specbuilder/internal/retry"
)

// Publisher is the subset of *nats.Conn used for publishing.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// NATSNotifier publishes events as JSON on a NATS subject.
type NATSNotifier struct {
	pub     Publisher
	conn    *nats.Conn
	subject string
}

// NewNATSNotifier wraps an existing publisher.
func NewNATSNotifier(pub Publisher, subject string) *NATSNotifier {
	n := &NATSNotifier{pub: pub, subject: subject}
	if c, ok := pub.(*nats.Conn); ok {
		n.conn = c
	}
	return n
}

// ConnectNATS dials cfg.URL, retrying with the configured backoff policy.
func ConnectNATS(ctx context.Context, cfg config.NATSConfig) (*NATSNotifier, error) {
	policy := retry.NewPolicy(cfg.RetryBackoff, cfg.InitialDelay(), 30*time.Second, cfg.MaxRetries)

	var conn *nats.Conn
	err := policy.Do(ctx, func(attempt int) error {
		c, err := nats.Connect(cfg.URL,
			nats.Name("specbuilder"),
			nats.Timeout(5*time.Second),
		)
		if err != nil {
			slog.Warn("NATS connect failed", slog.String("url", cfg.URL), slog.Int("attempt", attempt+1), logfields.Error(err))
			return err
		}
		conn = c
		return nil
	})
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryNetwork, "failed to connect to NATS").
			WithContext("url", cfg.URL).Build()
	}

	slog.Info("NATS notifier connected", slog.String("url", cfg.URL), slog.String("subject", cfg.Subject))
	return NewNATSNotifier(conn, cfg.Subject), nil
}

func (n *NATSNotifier) Notify(_ context.Context, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := n.pub.Publish(n.subject, data); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryNetwork, "failed to publish event").
			WithContext("subject", n.subject).Build()
	}
	slog.Debug("Published event", slog.String("subject", n.subject), slog.String("kind", string(ev.Kind)))
	return nil
}

// Close drains the underlying connection when the notifier owns one.
func (n *NATSNotifier) Close() error {
	if n.conn == nil {
		return nil
	}
	if err := n.conn.Drain(); err != nil {
		n.conn.Close()
		return fmt.Errorf("drain NATS connection: %w", err)
	}
	return nil
}
