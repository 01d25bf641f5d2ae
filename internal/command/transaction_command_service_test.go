package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/eaglebank/ledger-service/internal/cqrs"
	"github.com/eaglebank/ledger-service/internal/events"
	"github.com/eaglebank/ledger-service/internal/logger"
	"github.com/eaglebank/ledger-service/internal/models"
	"github.com/eaglebank/ledger-service/internal/repository"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type publishedEvent struct {
	stream    string
	eventType string
	data      any
}

type recordingPublisher struct {
	events []publishedEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, stream, eventType string, data any) error {
	p.events = append(p.events, publishedEvent{stream: stream, eventType: eventType, data: data})
	return p.err
}

type failingStore struct {
	repository.TransactionStore
	err error
}

func (s failingStore) Insert(context.Context, models.TransactionInput) (*models.Transaction, error) {
	return nil, s.err
}

func (s failingStore) UpdateByID(context.Context, string, models.TransactionInput) error {
	return s.err
}

func (s failingStore) DeleteByID(context.Context, string) error {
	return s.err
}

func newService(store repository.TransactionStore, pub EventPublisher) *TransactionCommandService {
	return NewTransactionCommandService(store, pub, zerolog.Nop())
}

func TestCreateTransaction_DefaultsDateToNow(t *testing.T) {
	store := repository.NewMemoryStore()
	pub := &recordingPublisher{}
	svc := newService(store, pub)
	fixed := time.Date(2024, time.May, 4, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	created, err := svc.CreateTransaction(context.Background(), cqrs.CreateTransactionCommand{
		Input: models.TransactionInput{Description: "Coffee", Amount: 4.5, Category: "Food"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Coffee", created.Description)
	assert.Equal(t, 4.5, created.Amount)
	assert.Equal(t, "Food", created.Category)
	assert.True(t, created.Date.Equal(fixed))

	require.Len(t, pub.events, 1)
	assert.Equal(t, events.TransactionEventsStream, pub.events[0].stream)
	assert.Equal(t, events.TransactionCreated, pub.events[0].eventType)
	assert.Equal(t, created.ID, pub.events[0].data.(events.TransactionCreatedEvent).TransactionID)
}

func TestCreateTransaction_KeepsSuppliedDate(t *testing.T) {
	svc := newService(repository.NewMemoryStore(), events.NopPublisher{})
	date := time.Date(2023, time.December, 24, 0, 0, 0, 0, time.UTC)

	created, err := svc.CreateTransaction(context.Background(), cqrs.CreateTransactionCommand{
		Input: models.TransactionInput{Description: "Gift", Amount: 30, Category: "Presents", Date: &date},
	})
	require.NoError(t, err)
	assert.True(t, created.Date.Equal(date))
}

func TestCreateTransaction_StoreErrorSkipsEvent(t *testing.T) {
	pub := &recordingPublisher{}
	svc := newService(failingStore{err: fmt.Errorf("connection refused")}, pub)

	_, err := svc.CreateTransaction(context.Background(), cqrs.CreateTransactionCommand{
		Input: models.TransactionInput{Description: "Coffee", Amount: 4.5, Category: "Food"},
	})
	assert.EqualError(t, err, "connection refused")
	assert.Empty(t, pub.events)
}

func TestCreateTransaction_PublishFailureIsLogged(t *testing.T) {
	buf := &bytes.Buffer{}
	pub := &recordingPublisher{err: errors.New("redis down")}
	svc := NewTransactionCommandService(repository.NewMemoryStore(), pub, logger.NewWithWriter(buf))

	created, err := svc.CreateTransaction(context.Background(), cqrs.CreateTransactionCommand{
		Input: models.TransactionInput{Description: "Coffee", Amount: 4.5, Category: "Food"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Contains(t, buf.String(), "Failed to publish event")
	assert.Contains(t, buf.String(), "redis down")
}

func TestUpdateTransaction(t *testing.T) {
	store := repository.NewMemoryStore()
	pub := &recordingPublisher{}
	svc := newService(store, pub)
	ctx := context.Background()

	created, err := store.Insert(ctx, models.TransactionInput{Description: "Coffee", Amount: 4.5, Category: "Food"})
	require.NoError(t, err)

	date := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	err = svc.UpdateTransaction(ctx, cqrs.UpdateTransactionCommand{
		TransactionID: created.ID,
		Input:         models.TransactionInput{Description: "Tea", Amount: 3, Category: "Drinks", Date: &date},
	})
	require.NoError(t, err)

	got, err := store.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Transaction{ID: created.ID, Description: "Tea", Amount: 3, Category: "Drinks", Date: date}, *got)

	require.Len(t, pub.events, 1)
	assert.Equal(t, events.TransactionUpdated, pub.events[0].eventType)
}

func TestUpdateTransaction_NotFound(t *testing.T) {
	pub := &recordingPublisher{}
	svc := newService(repository.NewMemoryStore(), pub)

	err := svc.UpdateTransaction(context.Background(), cqrs.UpdateTransactionCommand{
		TransactionID: "missing",
		Input:         models.TransactionInput{Description: "Tea", Amount: 3, Category: "Drinks"},
	})
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Empty(t, pub.events)
}

func TestDeleteTransaction(t *testing.T) {
	store := repository.NewMemoryStore()
	pub := &recordingPublisher{}
	svc := newService(store, pub)
	ctx := context.Background()

	created, err := store.Insert(ctx, models.TransactionInput{Description: "Coffee", Amount: 4.5, Category: "Food"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTransaction(ctx, cqrs.DeleteTransactionCommand{TransactionID: created.ID}))

	_, err = store.FindByID(ctx, created.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	require.Len(t, pub.events, 1)
	assert.Equal(t, events.TransactionDeletedEvent{TransactionID: created.ID}, pub.events[0].data)

	err = svc.DeleteTransaction(ctx, cqrs.DeleteTransactionCommand{TransactionID: created.ID})
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Len(t, pub.events, 1)
}

func TestDeleteTransaction_StoreError(t *testing.T) {
	svc := newService(failingStore{err: errors.New("timeout")}, events.NopPublisher{})
	err := svc.DeleteTransaction(context.Background(), cqrs.DeleteTransactionCommand{TransactionID: "x"})
	assert.EqualError(t, err, "timeout")
}

func TestCommandLogsCarryRequestLogger(t *testing.T) {
	base := &bytes.Buffer{}
	svc := NewTransactionCommandService(repository.NewMemoryStore(), events.NopPublisher{}, logger.NewWithWriter(base))

	reqBuf := &bytes.Buffer{}
	reqLog := logger.NewWithWriter(reqBuf).With().Str("request_id", "req-42").Logger()
	ctx := logger.WithContext(context.Background(), reqLog)

	created, err := svc.CreateTransaction(ctx, cqrs.CreateTransactionCommand{
		Input: models.TransactionInput{Description: "Coffee", Amount: 4.5, Category: "Food"},
	})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteTransaction(ctx, cqrs.DeleteTransactionCommand{TransactionID: created.ID}))

	lines := reqBuf.String()
	assert.Contains(t, lines, `"request_id":"req-42"`)
	assert.Contains(t, lines, `"component":"transaction-commands"`)
	assert.Contains(t, lines, "Transaction created")
	assert.Contains(t, lines, "Transaction deleted")
	assert.Empty(t, base.String())
}

func TestCommandLogsFallBackWithoutRequestLogger(t *testing.T) {
	base := &bytes.Buffer{}
	svc := NewTransactionCommandService(repository.NewMemoryStore(), events.NopPublisher{}, logger.NewWithWriter(base))

	_, err := svc.CreateTransaction(context.Background(), cqrs.CreateTransactionCommand{
		Input: models.TransactionInput{Description: "Coffee", Amount: 4.5, Category: "Food"},
	})
	require.NoError(t, err)
	assert.Contains(t, base.String(), "Transaction created")
	assert.NotContains(t, base.String(), "request_id")
}
