package realtime

import (
	"encoding/json"

	"github.com/wachat/wachat-backend/models"
)

// Event names delivered to connected clients.
const (
	EventNewMessage   = "new_message"
	EventStatusUpdate = "status_update"
)

// Notifier delivers a named event carrying a full message record to every
// currently connected listener. Delivery is fire-and-forget: no
// acknowledgment, no retry, no replay for listeners that were not connected
// at publish time.
//
// Ingestion and send paths take a Notifier explicitly (nil means "no
// notifications") so tests can substitute a recording stub.
type Notifier interface {
	Emit(event string, msg *models.Message)
}

// Envelope is the wire format for events on the websocket (and on the Redis
// relay channel). Clients filter on Data.WaID themselves; there is no
// per-conversation subscription.
type Envelope struct {
	Event string          `json:"event"`
	Data  *models.Message `json:"data"`
}

func marshalEnvelope(event string, msg *models.Message) ([]byte, error) {
	return json.Marshal(Envelope{Event: event, Data: msg})
}

func unmarshalEnvelope(data []byte, env *Envelope) error {
	return json.Unmarshal(data, env)
}
