package enforcer

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"mercator-hq/warden/pkg/policy/model"
)

func TestDecodeMessage(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Message
		wantErr error
	}{
		{"request", `{"category": "REQUEST_MESSAGE"}`, RequestMessage{}, nil},
		{"request ignores data", `{"category": "REQUEST_MESSAGE", "data": {"x": 1}}`, RequestMessage{}, nil},
		{"disclaimer", `{"category": "STORE_DISCLAIMER_ACCEPTANCE", "data": {"duration": 3600}}`, DisclaimerAcceptance{Duration: 3600}, nil},
		{"sticky fractional", `{"category": "STORE_STICKY_CANCELLATION", "data": {"duration": 1.5}}`, StickyCancellation{Duration: 1.5}, nil},
		{"zero duration", `{"category": "STORE_STICKY_CANCELLATION", "data": {"duration": 0}}`, StickyCancellation{Duration: 0}, nil},
		{"negative duration", `{"category": "STORE_STICKY_CANCELLATION", "data": {"duration": -5}}`, nil, ErrInvalidDuration},
		{"missing duration", `{"category": "STORE_DISCLAIMER_ACCEPTANCE", "data": {}}`, nil, ErrInvalidDuration},
		{"missing data", `{"category": "STORE_DISCLAIMER_ACCEPTANCE"}`, nil, ErrInvalidDuration},
		{"duration as string", `{"category": "STORE_DISCLAIMER_ACCEPTANCE", "data": {"duration": "60"}}`, nil, ErrMalformedMessage},
		{"unknown category", `{"category": "OPEN_TAB"}`, nil, ErrUnknownCategory},
		{"missing category", `{}`, nil, ErrMalformedMessage},
		{"not json", `category=REQUEST_MESSAGE`, nil, ErrMalformedMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeMessage([]byte(tt.input))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("DecodeMessage() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeMessage() error = %v, want nil", err)
			}
			if got != tt.want {
				t.Errorf("DecodeMessage() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestEncodeMessage(t *testing.T) {
	env, err := EncodeMessage(DisclaimerAcceptance{Duration: 90})
	if err != nil {
		t.Fatalf("EncodeMessage() error = %v, want nil", err)
	}
	data, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(data) != `{"category":"STORE_DISCLAIMER_ACCEPTANCE","data":{"duration":90}}` {
		t.Errorf("encoded = %s", data)
	}

	env, err = EncodeMessage(RequestMessage{})
	if err != nil {
		t.Fatalf("EncodeMessage() error = %v", err)
	}
	data, _ = json.Marshal(env)
	if string(data) != `{"category":"REQUEST_MESSAGE"}` {
		t.Errorf("encoded = %s", data)
	}
}

func TestTTL(t *testing.T) {
	tests := []struct {
		seconds float64
		want    time.Duration
		wantErr bool
	}{
		{0, 0, false},
		{1.5, 1500 * time.Millisecond, false},
		{86400, 24 * time.Hour, false},
		{-1, 0, true},
		{math.NaN(), 0, true},
		{math.Inf(1), 0, true},
		{1e12, 0, true},
	}
	for _, tt := range tests {
		got, err := StickyCancellation{Duration: tt.seconds}.TTL()
		if (err != nil) != tt.wantErr {
			t.Errorf("TTL(%v) error = %v, wantErr %v", tt.seconds, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("TTL(%v) = %v, want %v", tt.seconds, got, tt.want)
		}
	}
}

func TestResponse_JSON(t *testing.T) {
	data, _ := json.Marshal(Response{})
	if string(data) != `{"response":null}` {
		t.Errorf("empty response = %s", data)
	}
	data, _ = json.Marshal(Response{Response: []model.PolicyAction{}})
	if string(data) != `{"response":[]}` {
		t.Errorf("evaluated empty response = %s", data)
	}
}
