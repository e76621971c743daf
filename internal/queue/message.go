package queue

import (
	"encoding/json"
	"time"
)

// MessageVersion is the current payload version.
const MessageVersion = 1

// Message asks a worker to run the assignment pass for one email.
type Message struct {
	EmailID    int64  `json:"emailId"`
	CompanyID  int64  `json:"companyId"`
	RequestID  string `json:"requestId"`
	EnqueuedAt string `json:"enqueuedAt"`
	Version    int    `json:"version"`
}

// NewMessage builds a versioned message stamped with the current time.
func NewMessage(emailID, companyID int64, requestID string) Message {
	return Message{
		EmailID:    emailID,
		CompanyID:  companyID,
		RequestID:  requestID,
		EnqueuedAt: time.Now().UTC().Format(time.RFC3339),
		Version:    MessageVersion,
	}
}

// EncodeMessage returns the JSON representation of a message.
func EncodeMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}

// DecodeMessage parses a JSON payload into a Message.
func DecodeMessage(payload []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return Message{}, err
	}
	return msg, nil
}
