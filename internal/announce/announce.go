// Package announce publishes the host's registration state to a message broker.
package announce

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/joshp123/dfuhost/internal/core"
)

// Publisher sends a payload to a topic.
type Publisher interface {
	Publish(topic string, payload []byte) error
}

// Snapshot is the announced registration state.
type Snapshot struct {
	Keys      []string  `json:"keys"`
	Channels  []string  `json:"channels"`
	Timestamp time.Time `json:"timestamp"`
}

// Announce publishes the current registry snapshot to topic.
func Announce(pub Publisher, topic string, reg *core.Registry, now time.Time) error {
	payload, err := json.Marshal(Snapshot{
		Keys:      reg.Keys(),
		Channels:  reg.Channels(),
		Timestamp: now.UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return pub.Publish(topic, payload)
}
