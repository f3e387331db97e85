package enforcer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"mercator-hq/warden/pkg/policy/model"
)

// Category tags a UI message.
type Category string

const (
	// CategoryRequestMessage asks for the actions of the sender's tab.
	CategoryRequestMessage Category = "REQUEST_MESSAGE"

	// CategoryDisclaimerAcceptance records that the user accepted a disclaimer.
	CategoryDisclaimerAcceptance Category = "STORE_DISCLAIMER_ACCEPTANCE"

	// CategoryStickyCancellation records that the user dismissed a block or warning.
	CategoryStickyCancellation Category = "STORE_STICKY_CANCELLATION"
)

// maxDurationSeconds is the largest duration representable as time.Duration.
const maxDurationSeconds = float64(math.MaxInt64 / int64(time.Second))

// Message is one of RequestMessage, DisclaimerAcceptance or
// StickyCancellation.
type Message interface {
	Category() Category
	isMessage()
}

// RequestMessage asks for the stored actions of the sender's tab.
type RequestMessage struct{}

// DisclaimerAcceptance grants a disclaimer override to the sender's host.
type DisclaimerAcceptance struct {
	// Duration is the grant length in seconds.
	Duration float64
}

// StickyCancellation grants a sticky override to the sender's host.
type StickyCancellation struct {
	// Duration is the grant length in seconds.
	Duration float64
}

func (RequestMessage) Category() Category       { return CategoryRequestMessage }
func (DisclaimerAcceptance) Category() Category { return CategoryDisclaimerAcceptance }
func (StickyCancellation) Category() Category   { return CategoryStickyCancellation }

func (RequestMessage) isMessage()       {}
func (DisclaimerAcceptance) isMessage() {}
func (StickyCancellation) isMessage()   {}

// TTL converts the duration to a time.Duration.
func (m DisclaimerAcceptance) TTL() (time.Duration, error) { return ttl(m.Duration) }

// TTL converts the duration to a time.Duration.
func (m StickyCancellation) TTL() (time.Duration, error) { return ttl(m.Duration) }

func ttl(seconds float64) (time.Duration, error) {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidDuration, seconds)
	}
	if seconds < 0 {
		return 0, fmt.Errorf("%w: %v is negative", ErrInvalidDuration, seconds)
	}
	if seconds > maxDurationSeconds {
		return 0, fmt.Errorf("%w: %v exceeds %v seconds", ErrInvalidDuration, seconds, maxDurationSeconds)
	}
	return time.Duration(seconds * float64(time.Second)), nil
}

// Envelope is the wire form of a message.
type Envelope struct {
	Category Category        `json:"category"`
	Data     json.RawMessage `json:"data,omitempty"`
}

type durationData struct {
	Duration *float64 `json:"duration"`
}

// Decode converts the envelope into its tagged message.
func (e Envelope) Decode() (Message, error) {
	switch e.Category {
	case CategoryRequestMessage:
		return RequestMessage{}, nil
	case CategoryDisclaimerAcceptance:
		d, err := decodeDuration(e.Data)
		if err != nil {
			return nil, err
		}
		return DisclaimerAcceptance{Duration: d}, nil
	case CategoryStickyCancellation:
		d, err := decodeDuration(e.Data)
		if err != nil {
			return nil, err
		}
		return StickyCancellation{Duration: d}, nil
	case "":
		return nil, fmt.Errorf("%w: missing category", ErrMalformedMessage)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, e.Category)
	}
}

func decodeDuration(raw json.RawMessage) (float64, error) {
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return 0, fmt.Errorf("%w: missing data", ErrInvalidDuration)
	}
	var data durationData
	if err := json.Unmarshal(raw, &data); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	if data.Duration == nil {
		return 0, fmt.Errorf("%w: missing duration", ErrInvalidDuration)
	}
	if _, err := ttl(*data.Duration); err != nil {
		return 0, err
	}
	return *data.Duration, nil
}

// DecodeMessage parses a JSON message.
func DecodeMessage(data []byte) (Message, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	return env.Decode()
}

// EncodeMessage returns the wire form of msg.
func EncodeMessage(msg Message) (Envelope, error) {
	env := Envelope{Category: msg.Category()}
	var d float64
	switch m := msg.(type) {
	case RequestMessage:
		return env, nil
	case DisclaimerAcceptance:
		d = m.Duration
	case StickyCancellation:
		d = m.Duration
	default:
		return Envelope{}, fmt.Errorf("%w: %T", ErrUnknownCategory, msg)
	}
	data, err := json.Marshal(durationData{Duration: &d})
	if err != nil {
		return Envelope{}, err
	}
	env.Data = data
	return env, nil
}

// Response answers a RequestMessage. Response is nil when the tab has no
// stored evaluation and encodes as null.
type Response struct {
	Response []model.PolicyAction `json:"response"`
}
