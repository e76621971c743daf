package queue

import (
	"reflect"
	"testing"
	"time"
)

func TestMessageRoundTrip(t *testing.T) {
	msg := Message{
		EmailID:    42,
		CompanyID:  7,
		RequestID:  "request-456",
		EnqueuedAt: "2026-01-30T22:00:00Z",
		Version:    1,
	}

	payload, err := EncodeMessage(msg)
	if err != nil {
		t.Fatalf("encode message: %v", err)
	}

	got, err := DecodeMessage(payload)
	if err != nil {
		t.Fatalf("decode message: %v", err)
	}

	if !reflect.DeepEqual(got, msg) {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, msg)
	}
}

func TestNewMessageStampsVersionAndTime(t *testing.T) {
	msg := NewMessage(3, 1, "req")
	if msg.Version != MessageVersion || msg.EmailID != 3 || msg.CompanyID != 1 {
		t.Fatalf("unexpected message: %+v", msg)
	}
	if _, err := time.Parse(time.RFC3339, msg.EnqueuedAt); err != nil {
		t.Fatalf("enqueuedAt not RFC3339: %q", msg.EnqueuedAt)
	}
}

func TestDecodeMessageRejectsGarbage(t *testing.T) {
	if _, err := DecodeMessage([]byte("{not json")); err == nil {
		t.Fatalf("expected decode error")
	}
}
