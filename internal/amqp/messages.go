package amqp

import (
	"encoding/json"
	"time"
)

// Action names the transaction lifecycle step an event describes.
type Action string

const (
	ActionCreated     Action = "created"
	ActionEffectuated Action = "effectuated"
	ActionDeleted     Action = "deleted"
)

// TransactionEventMessage is the lightweight wire form of a ledger event.
// Consumers fetch the full row from the database when they need it.
type TransactionEventMessage struct {
	Action    Action    `json:"action"`
	ID        int64     `json:"id"`
	UserID    string    `json:"userId"`
	Timestamp time.Time `json:"timestamp"`
}

func NewTransactionEventMessage(action Action, id int64, userID string) *TransactionEventMessage {
	return &TransactionEventMessage{
		Action:    action,
		ID:        id,
		UserID:    userID,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *TransactionEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionEventMessageFromJSON creates a message from JSON bytes
func TransactionEventMessageFromJSON(data []byte) (*TransactionEventMessage, error) {
	var msg TransactionEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
