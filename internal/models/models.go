package models

import "time"

// Transaction is one recorded financial event.
type Transaction struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	Category    string    `json:"category"`
	Date        time.Time `json:"date"`
}

// TransactionInput is the validated write payload for create and update.
// A nil Date means "not supplied": create fills in the current time, update
// leaves the stored date untouched.
type TransactionInput struct {
	Description string
	Amount      float64
	Category    string
	Date        *time.Time
}

// CategoryGroup is one row of the group-by-category aggregation.
type CategoryGroup struct {
	Category     string        `json:"category"`
	TotalAmount  float64       `json:"totalAmount"`
	Transactions []Transaction `json:"transactions"`
}
