package repository

import (
	"context"
	"errors"

	"github.com/eaglebank/ledger-service/internal/models"
)

// ErrNotFound is returned when an id does not resolve to a stored transaction.
var ErrNotFound = errors.New("transaction not found")

// TransactionStore is the document store holding transactions. Every backend
// owns its connection; callers close it at shutdown.
type TransactionStore interface {
	FindAll(ctx context.Context, sortBy models.SortKey) ([]models.Transaction, error)
	FindByID(ctx context.Context, id string) (*models.Transaction, error)
	Insert(ctx context.Context, in models.TransactionInput) (*models.Transaction, error)
	UpdateByID(ctx context.Context, id string, in models.TransactionInput) error
	DeleteByID(ctx context.Context, id string) error
	GroupByCategory(ctx context.Context) ([]models.CategoryGroup, error)
	Close(ctx context.Context) error
}
