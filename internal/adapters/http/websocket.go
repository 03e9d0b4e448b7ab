package http

import (
	"encoding/json"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	natsadapter "github.com/supercivilian/supercivilian/internal/adapters/nats"
	"github.com/supercivilian/supercivilian/internal/pkg/metrics"
)

// wsMessage is sent from client to subscribe/unsubscribe to occupancy feeds.
type wsMessage struct {
	Action    string `json:"action"`     // "subscribe" | "unsubscribe"
	ShelterID int64  `json:"shelter_id"` // 0 = all shelters
}

// occupancySubject returns the NATS subject for a shelter, or the
// wildcard for all of them.
func occupancySubject(shelterID int64) string {
	if shelterID == 0 {
		return natsadapter.OccupancySubjectPrefix + ">"
	}
	return natsadapter.OccupancySubject(shelterID)
}

// WebSocketHandler returns a handler that upgrades to WebSocket and relays
// shelter occupancy events to connected clients.
// Clients send JSON: {"action":"subscribe","shelter_id":1234}
// A shelter_id of 0 subscribes to every shelter.
func WebSocketHandler(nc *nats.Conn) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		remoteAddr := c.RemoteAddr().String()
		log := slog.Default().With("remote", remoteAddr)
		log.Info("ws client connected")

		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		var mu sync.Mutex
		subs := make(map[string]*nats.Subscription) // subject -> subscription

		writeJSON := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}

		// Keep-alive ping
		done := make(chan struct{})
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}

			var m wsMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				_ = writeJSON(map[string]string{"error": "invalid JSON"})
				continue
			}
			if m.ShelterID < 0 {
				_ = writeJSON(map[string]string{"error": "invalid shelter_id: " + strconv.FormatInt(m.ShelterID, 10)})
				continue
			}

			subject := occupancySubject(m.ShelterID)

			switch m.Action {
			case "subscribe":
				if nc == nil {
					_ = writeJSON(map[string]string{"error": "event stream unavailable"})
					continue
				}
				if _, exists := subs[subject]; exists {
					_ = writeJSON(map[string]string{"status": "already subscribed", "subject": subject})
					continue
				}
				s, err := nc.Subscribe(subject, func(msg *nats.Msg) {
					_ = writeJSON(json.RawMessage(msg.Data))
				})
				if err != nil {
					_ = writeJSON(map[string]string{"error": "subscribe failed: " + err.Error()})
					continue
				}
				subs[subject] = s
				_ = writeJSON(map[string]string{"status": "subscribed", "subject": subject})

			case "unsubscribe":
				if s, exists := subs[subject]; exists {
					_ = s.Unsubscribe()
					delete(subs, subject)
					_ = writeJSON(map[string]string{"status": "unsubscribed", "subject": subject})
				} else {
					_ = writeJSON(map[string]string{"error": "not subscribed to " + subject})
				}

			default:
				_ = writeJSON(map[string]string{"error": "unknown action: " + m.Action})
			}
		}

		close(done)
		for _, s := range subs {
			_ = s.Unsubscribe()
		}
		log.Info("ws client disconnected", "subscriptions", len(subs))
	}
}
