package domain

import (
	"encoding/json"
	"testing"
)

func TestDecodePayload(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantUID string
		wantErr bool
	}{
		{
			name:    "native object",
			raw:     `{"streamUid":"abc123"}`,
			wantUID: "abc123",
		},
		{
			name:    "json-encoded string",
			raw:     `"{\"streamUid\":\"abc123\"}"`,
			wantUID: "abc123",
		},
		{
			name:    "bare keys inside string",
			raw:     `"{streamUid: \"abc123\"}"`,
			wantUID: "abc123",
		},
		{
			name:    "empty payload",
			raw:     ``,
			wantErr: true,
		},
		{
			name:    "unparseable string",
			raw:     `"not json at all"`,
			wantErr: true,
		},
		{
			name:    "number payload",
			raw:     `42`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var payload StreamPayload
			err := DecodePayload(json.RawMessage(tt.raw), &payload)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got payload %+v", payload)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if payload.StreamUID != tt.wantUID {
				t.Errorf("streamUid = %q, want %q", payload.StreamUID, tt.wantUID)
			}
		})
	}
}

func TestDecodePayloadChat(t *testing.T) {
	raw := json.RawMessage(`"{streamUid: \"abc123\", message: \"hello\"}"`)

	var payload ChatPayload
	if err := DecodePayload(raw, &payload); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload.StreamUID != "abc123" || payload.Message != "hello" {
		t.Errorf("payload = %+v", payload)
	}
}
