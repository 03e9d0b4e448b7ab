package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/supercivilian/supercivilian/internal/core/domain"
)

// OccupancySubjectPrefix prefixes per-shelter occupancy subjects.
const OccupancySubjectPrefix = "shelters.occupancy."

// OccupancySubject returns the subject for one shelter's updates.
func OccupancySubject(shelterID int64) string {
	return OccupancySubjectPrefix + strconv.FormatInt(shelterID, 10)
}

// OccupancyEvent is the published payload.
type OccupancyEvent struct {
	ID        int64     `json:"id"`
	Capacity  int       `json:"capacity"`
	Occupancy int       `json:"occupancy"`
	Free      int       `json:"free"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and enables JetStream.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	// Ensure stream exists
	cfg := nats.StreamConfig{
		Name:      "SHELTER_OCCUPANCY",
		Subjects:  []string{OccupancySubjectPrefix + ">"},
		Retention: nats.LimitsPolicy,
		MaxAge:    24 * time.Hour,
		Storage:   nats.FileStorage,
	}
	if _, err := js.AddStream(&cfg); err != nil {
		// Stream may already exist, try update
		if _, err := js.UpdateStream(&cfg); err != nil {
			conn.Close()
			return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

func (p *Publisher) PublishOccupancy(ctx context.Context, occ *domain.Occupancy) error {
	data, err := json.Marshal(OccupancyEvent{
		ID:        occ.ShelterID,
		Capacity:  occ.Capacity,
		Occupancy: occ.Occupancy,
		Free:      occ.Free(),
		UpdatedAt: occ.UpdatedAt,
	})
	if err != nil {
		return err
	}
	_, err = p.js.Publish(OccupancySubject(occ.ShelterID), data, nats.Context(ctx))
	return err
}

// Ready reports whether the connection is up.
func (p *Publisher) Ready() bool {
	return p.conn.IsConnected()
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("supercivilian"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
