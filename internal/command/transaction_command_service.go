package command

import (
	"context"
	"time"

	"github.com/eaglebank/ledger-service/internal/cqrs"
	"github.com/eaglebank/ledger-service/internal/events"
	"github.com/eaglebank/ledger-service/internal/logger"
	"github.com/eaglebank/ledger-service/internal/models"
	"github.com/eaglebank/ledger-service/internal/repository"
	"github.com/rs/zerolog"
)

const component = "transaction-commands"

// EventPublisher is satisfied by events.Publisher and events.NopPublisher.
type EventPublisher interface {
	Publish(ctx context.Context, stream, eventType string, data any) error
}

// TransactionCommandService performs the write side: each call issues exactly
// one store write, then announces it on the event stream. A failed publish is
// logged and never fails the write.
type TransactionCommandService struct {
	store     repository.TransactionStore
	publisher EventPublisher
	log       zerolog.Logger
	now       func() time.Time
}

func NewTransactionCommandService(store repository.TransactionStore, publisher EventPublisher, log zerolog.Logger) *TransactionCommandService {
	return &TransactionCommandService{
		store:     store,
		publisher: publisher,
		log:       log.With().Str("component", component).Logger(),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *TransactionCommandService) CreateTransaction(ctx context.Context, cmd cqrs.CreateTransactionCommand) (*models.Transaction, error) {
	in := cmd.Input
	if in.Date == nil {
		now := s.now()
		in.Date = &now
	}

	transaction, err := s.store.Insert(ctx, in)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.TransactionCreated, events.TransactionCreatedEvent{
		TransactionID: transaction.ID,
		Description:   transaction.Description,
		Amount:        transaction.Amount,
		Category:      transaction.Category,
		Date:          transaction.Date,
	})
	log := s.requestLog(ctx)
	log.Info().
		Str("transaction_id", transaction.ID).
		Str("category", transaction.Category).
		Float64("amount", transaction.Amount).
		Msg("Transaction created")
	return transaction, nil
}

func (s *TransactionCommandService) UpdateTransaction(ctx context.Context, cmd cqrs.UpdateTransactionCommand) error {
	if err := s.store.UpdateByID(ctx, cmd.TransactionID, cmd.Input); err != nil {
		return err
	}

	s.publish(ctx, events.TransactionUpdated, events.TransactionUpdatedEvent{
		TransactionID: cmd.TransactionID,
		Description:   cmd.Input.Description,
		Amount:        cmd.Input.Amount,
		Category:      cmd.Input.Category,
		Date:          cmd.Input.Date,
	})
	log := s.requestLog(ctx)
	log.Info().Str("transaction_id", cmd.TransactionID).Msg("Transaction updated")
	return nil
}

func (s *TransactionCommandService) DeleteTransaction(ctx context.Context, cmd cqrs.DeleteTransactionCommand) error {
	if err := s.store.DeleteByID(ctx, cmd.TransactionID); err != nil {
		return err
	}

	s.publish(ctx, events.TransactionDeleted, events.TransactionDeletedEvent{
		TransactionID: cmd.TransactionID,
	})
	log := s.requestLog(ctx)
	log.Info().Str("transaction_id", cmd.TransactionID).Msg("Transaction deleted")
	return nil
}

func (s *TransactionCommandService) publish(ctx context.Context, eventType string, data any) {
	if err := s.publisher.Publish(ctx, events.TransactionEventsStream, eventType, data); err != nil {
		log := s.requestLog(ctx)
		log.Warn().Err(err).Str("event_type", eventType).Msg("Failed to publish event")
	}
}

// requestLog prefers the logger the request middleware attached, so lines
// carry its request_id.
func (s *TransactionCommandService) requestLog(ctx context.Context) zerolog.Logger {
	if l, ok := logger.Lookup(ctx); ok {
		return l.With().Str("component", component).Logger()
	}
	return s.log
}
