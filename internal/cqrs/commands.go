package cqrs

import "github.com/eaglebank/ledger-service/internal/models"

type CreateTransactionCommand struct {
	Input models.TransactionInput
}

type UpdateTransactionCommand struct {
	TransactionID string
	Input         models.TransactionInput
}

type DeleteTransactionCommand struct {
	TransactionID string
}

type LoginCommand struct {
	Username string
	Password string
}
