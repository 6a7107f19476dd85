package mqtt

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// PresenceTracker counts active consumers per stream for one camera.
//
// MQTT brokers do not expose per-topic subscriber counts to publishers,
// so spinbridge uses a presence convention instead: every consumer
// publishes a retained document on spinbridge/{camera}/presence/{client}
// declaring which streams it wants, and clears it (empty retained
// payload or status "offline") when it goes away. The bridge consults
// the tracker before building expensive image payloads.
//
// Thread Safety: all methods are safe for concurrent use.
type PresenceTracker struct {
	mu      sync.RWMutex
	clients map[string][]string // client id → declared streams
}

// PresenceMessage is the document consumers publish on their presence topic.
type PresenceMessage struct {
	// ClientID identifies the consumer. If empty, the topic's last
	// segment is used instead.
	ClientID string `json:"client_id,omitempty"`

	// Status is "online" or "offline".
	Status string `json:"status"`

	// Streams lists the streams this consumer wants, e.g. ["image","meta"].
	Streams []string `json:"streams,omitempty"`
}

// TrackPresence subscribes to the presence topics of a camera and returns
// a tracker that reflects the current consumer population.
//
// Because presence documents are retained, the tracker converges to the
// true population shortly after subscribing, including consumers that
// announced themselves before the bridge started.
//
// Parameters:
//   - camera: The camera's frame id (topic segment)
//
// Returns:
//   - *PresenceTracker: Live tracker updated as consumers come and go
//   - error: If the subscription fails
func (c *Client) TrackPresence(camera string) (*PresenceTracker, error) {
	t := &PresenceTracker{
		clients: make(map[string][]string),
	}

	topic := Topics{}.AllPresence(camera)
	if err := c.Subscribe(topic, 1, t.handleMessage); err != nil {
		return nil, fmt.Errorf("tracking presence: %w", err)
	}

	return t, nil
}

// handleMessage updates the tracker from a presence document.
// An empty payload is a retained-message clear and removes the client.
func (t *PresenceTracker) handleMessage(topic string, payload []byte) error {
	// Client id from the topic keeps the tracker correct even when the
	// document omits or mismatches its own client_id field.
	segments := strings.Split(topic, "/")
	clientID := segments[len(segments)-1]

	if len(payload) == 0 {
		t.remove(clientID)
		return nil
	}

	var msg PresenceMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return fmt.Errorf("parsing presence message on %s: %w", topic, err)
	}

	if msg.Status == "offline" || len(msg.Streams) == 0 {
		t.remove(clientID)
		return nil
	}

	t.mu.Lock()
	t.clients[clientID] = append([]string(nil), msg.Streams...)
	t.mu.Unlock()

	return nil
}

// remove drops a client from the tracker.
func (t *PresenceTracker) remove(clientID string) {
	t.mu.Lock()
	delete(t.clients, clientID)
	t.mu.Unlock()
}

// SubscriberCount returns how many consumers declared interest in a stream.
func (t *PresenceTracker) SubscriberCount(stream string) int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	count := 0
	for _, streams := range t.clients {
		for _, s := range streams {
			if s == stream {
				count++
				break
			}
		}
	}
	return count
}

// HasSubscribers reports whether at least one consumer wants a stream.
func (t *PresenceTracker) HasSubscribers(stream string) bool {
	return t.SubscriberCount(stream) > 0
}

// ClientCount returns the number of announced consumers.
func (t *PresenceTracker) ClientCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.clients)
}
