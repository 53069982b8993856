package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"git.home.luguber.info/inful/docagent/internal/config"
	"git.home.luguber.info/inful/docagent/internal/foundation/errors"
)

// NATSPublisher publishes to a JetStream stream.
type NATSPublisher struct {
	conn *nats.Conn
	js   jetstream.JetStream
}

// ConnectNATS connects to cfg.NATSURL and ensures a stream named cfg.Stream
// captures every subject below cfg.Subject.
func ConnectNATS(ctx context.Context, cfg config.NotificationsConfig) (*NATSPublisher, error) {
	conn, err := nats.Connect(cfg.NATSURL, nats.Name("docagent"))
	if err != nil {
		return nil, errors.NetworkError("failed to connect to NATS").
			WithCause(err).
			WithContext("url", cfg.NATSURL).
			Retryable().
			Build()
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, errors.WrapError(err, errors.CategoryNetwork, "failed to create JetStream context").Build()
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:        cfg.Stream,
		Description: "Generation settlements",
		Subjects:    []string{cfg.Subject + ".>"},
		MaxAge:      7 * 24 * time.Hour,
	})
	if err != nil {
		conn.Close()
		return nil, errors.WrapError(err, errors.CategoryNetwork, "failed to create JetStream stream").
			WithContext("stream", cfg.Stream).
			Build()
	}

	slog.Info("NATS notifications enabled",
		"url", cfg.NATSURL,
		"subject", cfg.Subject,
		"stream", cfg.Stream)

	return &NATSPublisher{conn: conn, js: js}, nil
}

// Publish sends data to subject and waits for the stream acknowledgement.
func (p *NATSPublisher) Publish(ctx context.Context, subject string, data []byte) error {
	if _, err := p.js.Publish(ctx, subject, data); err != nil {
		return errors.WrapError(err, errors.CategoryNetwork, "failed to publish notification").
			WithContext("subject", subject).
			Build()
	}
	return nil
}

// Close drains and closes the connection.
func (p *NATSPublisher) Close() error {
	if p.conn == nil {
		return nil
	}
	return p.conn.Drain()
}
