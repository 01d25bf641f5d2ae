package query

import (
	"context"

	"github.com/eaglebank/ledger-service/internal/cqrs"
	"github.com/eaglebank/ledger-service/internal/models"
	"github.com/eaglebank/ledger-service/internal/repository"
)

// TransactionQueryService serves reads straight from the store; nothing is
// cached between requests.
type TransactionQueryService struct {
	store repository.TransactionStore
}

func NewTransactionQueryService(store repository.TransactionStore) *TransactionQueryService {
	return &TransactionQueryService{store: store}
}

func (s *TransactionQueryService) GetTransaction(ctx context.Context, q cqrs.GetTransactionQuery) (*models.Transaction, error) {
	return s.store.FindByID(ctx, q.TransactionID)
}

// ListTransactions returns every transaction, ordered by q.SortBy when set.
func (s *TransactionQueryService) ListTransactions(ctx context.Context, q cqrs.ListTransactionsQuery) ([]models.Transaction, error) {
	transactions, err := s.store.FindAll(ctx, q.SortBy)
	if err != nil {
		return nil, err
	}
	if transactions == nil {
		transactions = []models.Transaction{}
	}
	return transactions, nil
}

func (s *TransactionQueryService) GroupByCategory(ctx context.Context, _ cqrs.GroupByCategoryQuery) ([]models.CategoryGroup, error) {
	groups, err := s.store.GroupByCategory(ctx)
	if err != nil {
		return nil, err
	}
	if groups == nil {
		groups = []models.CategoryGroup{}
	}
	return groups, nil
}
