package events

import "time"

// Event types
const (
	TransactionCreated = "transaction.created"
	TransactionUpdated = "transaction.updated"
	TransactionDeleted = "transaction.deleted"
)

// Stream names
const (
	TransactionEventsStream = "transaction.events"
)

// Base event structure
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

type TransactionCreatedEvent struct {
	TransactionID string    `json:"transactionId"`
	Description   string    `json:"description"`
	Amount        float64   `json:"amount"`
	Category      string    `json:"category"`
	Date          time.Time `json:"date"`
}

type TransactionUpdatedEvent struct {
	TransactionID string     `json:"transactionId"`
	Description   string     `json:"description"`
	Amount        float64    `json:"amount"`
	Category      string     `json:"category"`
	Date          *time.Time `json:"date,omitempty"`
}

type TransactionDeletedEvent struct {
	TransactionID string `json:"transactionId"`
}
