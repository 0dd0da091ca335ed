package services

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Payload discriminator values.
const (
	PayloadTypeMessage = "message"
	PayloadTypeStatus  = "status"
)

// Payload is one inbound ingestion payload, either a new message or a
// status update for an existing one. The Type field discriminates; each
// variant only reads the fields it needs.
type Payload struct {
	Type      string    `json:"type"`
	ID        uint      `json:"id,omitempty"` // store id, status updates only
	WaID      string    `json:"wa_id,omitempty"`
	Name      string    `json:"name,omitempty"`
	Number    string    `json:"number,omitempty"`
	Message   string    `json:"message,omitempty"`
	Status    string    `json:"status,omitempty"`
	Timestamp *FlexTime `json:"timestamp,omitempty"`
	MetaMsgID string    `json:"meta_msg_id,omitempty"`
}

// FlexTime is a timestamp that accepts the shapes provider payloads carry:
// an RFC 3339 string, unix seconds, or unix milliseconds, numeric or quoted.
type FlexTime struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *FlexTime) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "" || s == "null" {
		return nil
	}

	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		parsed, err := parseTimeString(str)
		if err != nil {
			return err
		}
		t.Time = parsed
		return nil
	}

	var epoch float64
	if err := json.Unmarshal(data, &epoch); err != nil {
		return fmt.Errorf("invalid timestamp %s: %w", s, err)
	}
	t.Time = timeFromEpoch(epoch)
	return nil
}

func parseTimeString(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed, nil
		}
	}
	// WhatsApp webhook payloads carry unix seconds as strings.
	if epoch, err := strconv.ParseFloat(s, 64); err == nil {
		return timeFromEpoch(epoch), nil
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}

// timeFromEpoch treats values above 1e12 as milliseconds; unix seconds will
// not reach that magnitude for tens of thousands of years.
func timeFromEpoch(epoch float64) time.Time {
	if epoch > 1e12 {
		return time.UnixMilli(int64(epoch)).UTC()
	}
	return time.Unix(int64(epoch), 0).UTC()
}
