package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/wachat/wachat-backend/metrics"
	"github.com/wachat/wachat-backend/models"
	"github.com/wachat/wachat-backend/realtime"
)

// ErrUnknownPayloadType reports a payload whose discriminator is neither
// "message" nor "status".
var ErrUnknownPayloadType = errors.New("unknown payload type")

// ProcessPayload applies one inbound payload to the store.
//
// A "message" payload creates a new record with status "sent", the payload
// timestamp when present (else now), and the original payload bytes kept in
// the raw column. A "status" payload updates the status of the record
// matched by store id or, failing that, meta_msg_id; no match is a benign
// no-op returning (nil, nil).
//
// On a successful mutation the event is emitted on sink when one is given.
// Store failures propagate to the caller.
func ProcessPayload(db *gorm.DB, data []byte, sink realtime.Notifier) (*models.Message, error) {
	m := metrics.Registry(metrics.DefaultNamespace)

	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		m.IngestedPayloads.WithLabelValues("invalid", "error").Inc()
		return nil, fmt.Errorf("failed to decode payload: %w", err)
	}

	switch p.Type {
	case PayloadTypeMessage:
		msg := &models.Message{
			WaID:      p.WaID,
			Name:      p.Name,
			Number:    p.Number,
			Message:   p.Message,
			Status:    models.StatusSent,
			Timestamp: timestampOrNow(p.Timestamp),
			MetaMsgID: p.MetaMsgID,
			Raw:       json.RawMessage(data),
		}
		if err := db.Create(msg).Error; err != nil {
			m.IngestedPayloads.WithLabelValues(p.Type, "error").Inc()
			return nil, fmt.Errorf("failed to store message: %w", err)
		}
		m.IngestedPayloads.WithLabelValues(p.Type, "created").Inc()
		if sink != nil {
			sink.Emit(realtime.EventNewMessage, msg)
		}
		return msg, nil

	case PayloadTypeStatus:
		query := db.Where("meta_msg_id = ?", p.MetaMsgID)
		if p.ID != 0 {
			query = db.Where("id = ?", p.ID)
		}

		var msg models.Message
		if err := query.First(&msg).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// Updates for unknown messages are silently dropped.
				m.IngestedPayloads.WithLabelValues(p.Type, "not_found").Inc()
				return nil, nil
			}
			m.IngestedPayloads.WithLabelValues(p.Type, "error").Inc()
			return nil, fmt.Errorf("failed to find message: %w", err)
		}

		if err := db.Model(&msg).Update("status", p.Status).Error; err != nil {
			m.IngestedPayloads.WithLabelValues(p.Type, "error").Inc()
			return nil, fmt.Errorf("failed to update message status: %w", err)
		}
		m.IngestedPayloads.WithLabelValues(p.Type, "updated").Inc()
		if sink != nil {
			sink.Emit(realtime.EventStatusUpdate, &msg)
		}
		return &msg, nil

	default:
		m.IngestedPayloads.WithLabelValues("unknown", "error").Inc()
		return nil, fmt.Errorf("%w: %q", ErrUnknownPayloadType, p.Type)
	}
}

func timestampOrNow(t *FlexTime) time.Time {
	if t != nil && !t.IsZero() {
		return t.Time
	}
	return time.Now()
}
