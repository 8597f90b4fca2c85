package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/samirrijal/aterpe/internal/core/domain"
)

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and enables JetStream.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	// Ensure the stream exists
	cfg := nats.StreamConfig{
		Name:      "LISTING_UPDATES",
		Subjects:  []string{"rentals.listing.>"},
		Retention: nats.InterestPolicy,
		MaxAge:    24 * time.Hour,
		Storage:   nats.FileStorage,
	}
	if _, err := js.AddStream(&cfg); err != nil {
		// Stream may already exist — try update
		if _, err := js.UpdateStream(&cfg); err != nil {
			return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

// PublishListingUpdated announces a created or changed listing on its city
// subject.
func (p *Publisher) PublishListingUpdated(ctx context.Context, l *domain.Listing) error {
	event := domain.ListingEvent{
		Type:      domain.ListingUpdated,
		ListingID: l.ID,
		City:      l.City,
		Listing:   l,
	}
	return p.publish(event)
}

// PublishListingRemoved announces a deleted listing. Only the id and city
// travel; the listing body is gone.
func (p *Publisher) PublishListingRemoved(ctx context.Context, id, city string) error {
	event := domain.ListingEvent{
		Type:      domain.ListingRemoved,
		ListingID: id,
		City:      city,
	}
	return p.publish(event)
}

func (p *Publisher) publish(event domain.ListingEvent) error {
	data, err := json.Marshal(&event)
	if err != nil {
		return err
	}
	_, err = p.js.Publish("rentals.listing."+subjectToken(event.City), data)
	return err
}

// subjectToken makes a city name safe as a NATS subject token.
func subjectToken(city string) string {
	if city == "" {
		return "unknown"
	}
	city = strings.ToLower(city)
	city = strings.ReplaceAll(city, " ", "_")
	city = strings.ReplaceAll(city, ".", "_")
	return city
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
