package repository

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/eaglebank/ledger-service/internal/models"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryStore keeps transactions in process memory. Natural order is
// insertion order, like a freshly created collection.
type MemoryStore struct {
	mu    sync.RWMutex
	order []string
	docs  map[string]models.Transaction
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]models.Transaction)}
}

func (s *MemoryStore) FindAll(_ context.Context, sortBy models.SortKey) ([]models.Transaction, error) {
	s.mu.RLock()
	out := make([]models.Transaction, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.docs[id])
	}
	s.mu.RUnlock()

	sortTransactions(out, sortBy)
	return out, nil
}

func (s *MemoryStore) FindByID(_ context.Context, id string) (*models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.docs[id]
	if !ok {
		return nil, fmt.Errorf("failed to find transaction %s: %w", id, ErrNotFound)
	}
	return &t, nil
}

func (s *MemoryStore) Insert(_ context.Context, in models.TransactionInput) (*models.Transaction, error) {
	t := models.Transaction{
		ID:          primitive.NewObjectID().Hex(),
		Description: in.Description,
		Amount:      in.Amount,
		Category:    in.Category,
		Date:        time.Now().UTC(),
	}
	if in.Date != nil {
		t.Date = *in.Date
	}

	s.mu.Lock()
	s.docs[t.ID] = t
	s.order = append(s.order, t.ID)
	s.mu.Unlock()

	return &t, nil
}

func (s *MemoryStore) UpdateByID(_ context.Context, id string, in models.TransactionInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.docs[id]
	if !ok {
		return fmt.Errorf("failed to update transaction %s: %w", id, ErrNotFound)
	}
	t.Description = in.Description
	t.Amount = in.Amount
	t.Category = in.Category
	if in.Date != nil {
		t.Date = *in.Date
	}
	s.docs[id] = t
	return nil
}

func (s *MemoryStore) DeleteByID(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[id]; !ok {
		return fmt.Errorf("failed to delete transaction %s: %w", id, ErrNotFound)
	}
	delete(s.docs, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// GroupByCategory sums amounts with decimal arithmetic so totals such as
// 4.5 + 10 come out exact.
func (s *MemoryStore) GroupByCategory(ctx context.Context) ([]models.CategoryGroup, error) {
	all, err := s.FindAll(ctx, models.SortNone)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int)
	sums := make([]decimal.Decimal, 0)
	floats := make([]float64, 0)
	var groups []models.CategoryGroup
	for _, t := range all {
		i, ok := index[t.Category]
		if !ok {
			i = len(groups)
			index[t.Category] = i
			groups = append(groups, models.CategoryGroup{Category: t.Category})
			sums = append(sums, decimal.Zero)
			floats = append(floats, 0)
		}
		groups[i].Transactions = append(groups[i].Transactions, t)
		floats[i] += t.Amount
		if !math.IsInf(t.Amount, 0) && !math.IsNaN(t.Amount) {
			sums[i] = sums[i].Add(decimal.NewFromFloat(t.Amount))
		}
	}
	for i := range groups {
		// decimal has no Inf or NaN; such totals keep the float sum.
		if math.IsInf(floats[i], 0) || math.IsNaN(floats[i]) {
			groups[i].TotalAmount = floats[i]
			continue
		}
		groups[i].TotalAmount = sums[i].InexactFloat64()
	}
	return groups, nil
}

func (s *MemoryStore) Close(context.Context) error { return nil }

func sortTransactions(ts []models.Transaction, key models.SortKey) {
	var less func(a, b models.Transaction) bool
	switch key {
	case models.SortCategory:
		less = func(a, b models.Transaction) bool { return strings.Compare(a.Category, b.Category) < 0 }
	case models.SortAmount:
		less = func(a, b models.Transaction) bool { return a.Amount > b.Amount }
	case models.SortDescription:
		less = func(a, b models.Transaction) bool { return strings.Compare(a.Description, b.Description) < 0 }
	case models.SortDate:
		less = func(a, b models.Transaction) bool { return a.Date.Before(b.Date) }
	default:
		return
	}
	sort.SliceStable(ts, func(i, j int) bool { return less(ts[i], ts[j]) })
}
