package kafka

import (
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// IncomingCustomerMessage is the intake envelope announcing a customer
// request awaiting resolution
type IncomingCustomerMessage struct {
	RequestID  int64     `json:"request_id" validate:"required,gt=0"`
	Source     string    `json:"source,omitempty"`
	ReceivedAt time.Time `json:"received_at,omitempty"`
}

// IncomingMessage is a raw message fetched from Kafka
type IncomingMessage struct {
	Key       string
	Value     []byte
	Headers   map[string]string
	Partition int
	Offset    int64
	Timestamp time.Time
	Topic     string

	// CustomerMessage is populated by ParseCustomerMessage
	CustomerMessage *IncomingCustomerMessage
}

// ParseCustomerMessage decodes and validates the intake envelope
func (m *IncomingMessage) ParseCustomerMessage() error {
	var msg IncomingCustomerMessage
	if err := json.Unmarshal(m.Value, &msg); err != nil {
		return err
	}
	if err := validate.Struct(&msg); err != nil {
		return err
	}

	m.CustomerMessage = &msg
	return nil
}
