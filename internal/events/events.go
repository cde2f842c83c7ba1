package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"wedding-relay/internal/models"
)

// Subjects
const (
	RSVPSubmitted = "rsvp.submitted"
)

// RSVPSubmittedEvent is published once every write of a submission settled.
type RSVPSubmittedEvent struct {
	Summary        models.SubmissionSummary `json:"summary"`
	UpdatesSuccess bool                     `json:"updates_success"`
	FailedUpdates  int                      `json:"failed_updates"`
	PublishedAt    time.Time                `json:"published_at"`
}

type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

type NATSPublisher struct {
	conn *nats.Conn
	log  zerolog.Logger
}

// NewNATSPublisher connects to the NATS server at url
func NewNATSPublisher(url string, log zerolog.Logger) (*NATSPublisher, error) {
	conn, err := nats.Connect(url, nats.Name("wedding-relay"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSPublisher{
		conn: conn,
		log:  log.With().Str("component", "Events").Logger(),
	}, nil
}

func (n *NATSPublisher) Publish(ctx context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	n.log.Debug().Str("subject", subject).RawJSON("data", payload).Msg("Publishing event")

	return n.conn.Publish(subject, payload)
}

func (n *NATSPublisher) Close() error {
	return n.conn.Drain()
}

// Nop discards events. Used when no NATS server is configured.
type Nop struct{}

func (Nop) Publish(context.Context, string, interface{}) error { return nil }
func (Nop) Close() error                                      { return nil }
