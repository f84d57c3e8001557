package amqp

import (
	"testing"
	"time"
)

func TestTransactionEventMessageRoundTrip(t *testing.T) {
	msg := NewTransactionEventMessage(ActionCreated, 42, "user-1")

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	back, err := TransactionEventMessageFromJSON(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Action != ActionCreated || back.ID != 42 || back.UserID != "user-1" {
		t.Fatalf("round trip mismatch: %+v", back)
	}
	if back.Timestamp.IsZero() {
		t.Fatal("timestamp not preserved")
	}
}

func TestTransactionEventMessageTimestamp(t *testing.T) {
	before := time.Now()
	msg := NewTransactionEventMessage(ActionDeleted, 7, "user-2")
	after := time.Now()

	if msg.Timestamp.Before(before) || msg.Timestamp.After(after) {
		t.Fatalf("timestamp %v outside [%v, %v]", msg.Timestamp, before, after)
	}
}

func TestTransactionEventMessageFromJSONInvalid(t *testing.T) {
	if _, err := TransactionEventMessageFromJSON([]byte(`{not json`)); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}
