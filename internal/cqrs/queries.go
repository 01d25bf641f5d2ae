package cqrs

import "github.com/eaglebank/ledger-service/internal/models"

// GetTransactionQuery fetches a single transaction for the edit form.
type GetTransactionQuery struct {
	TransactionID string
}

// ListTransactionsQuery fetches every transaction, optionally ordered.
type ListTransactionsQuery struct {
	SortBy models.SortKey
}

// GroupByCategoryQuery partitions all transactions by category.
type GroupByCategoryQuery struct{}
