package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/eaglebank/ledger-service/internal/models"
	"github.com/lib/pq"
)

// invalid_text_representation, raised when an id is not a valid uuid.
const pqInvalidTextRepresentation = "22P02"

// PostgresStore keeps transactions in a single PostgreSQL table. Grouping
// uses json_agg so one query returns the members of every category.
type PostgresStore struct {
	db *sql.DB
}

// OpenPostgres connects to databaseURL, applies pending migrations and
// returns a ready store.
func OpenPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := RunMigrations(databaseURL); err != nil {
		db.Close()
		return nil, err
	}
	return NewPostgresStore(db), nil
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (r *PostgresStore) FindAll(ctx context.Context, sortBy models.SortKey) ([]models.Transaction, error) {
	query := `
		SELECT id, description, amount, category, date
		FROM transactions
	` + orderByClause(sortBy)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var out []models.Transaction
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(&t.ID, &t.Description, &t.Amount, &t.Category, &t.Date); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return out, nil
}

func (r *PostgresStore) FindByID(ctx context.Context, id string) (*models.Transaction, error) {
	query := `
		SELECT id, description, amount, category, date
		FROM transactions
		WHERE id = $1
	`
	var t models.Transaction
	err := r.db.QueryRowContext(ctx, query, id).Scan(&t.ID, &t.Description, &t.Amount, &t.Category, &t.Date)
	if errors.Is(err, sql.ErrNoRows) || isInvalidID(err) {
		return nil, fmt.Errorf("failed to find transaction %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return &t, nil
}

func (r *PostgresStore) Insert(ctx context.Context, in models.TransactionInput) (*models.Transaction, error) {
	query := `
		INSERT INTO transactions (description, amount, category, date)
		VALUES ($1, $2, $3, COALESCE($4, NOW()))
		RETURNING id, date
	`
	t := models.Transaction{
		Description: in.Description,
		Amount:      in.Amount,
		Category:    in.Category,
	}
	if err := r.db.QueryRowContext(ctx, query, in.Description, in.Amount, in.Category, in.Date).Scan(&t.ID, &t.Date); err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	return &t, nil
}

func (r *PostgresStore) UpdateByID(ctx context.Context, id string, in models.TransactionInput) error {
	query := `
		UPDATE transactions
		SET description = $2, amount = $3, category = $4, date = COALESCE($5, date)
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, id, in.Description, in.Amount, in.Category, in.Date)
	if isInvalidID(err) {
		return fmt.Errorf("failed to update transaction %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	return requireRow(result, "update", id)
}

func (r *PostgresStore) DeleteByID(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if isInvalidID(err) {
		return fmt.Errorf("failed to delete transaction %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	return requireRow(result, "delete", id)
}

func (r *PostgresStore) GroupByCategory(ctx context.Context) ([]models.CategoryGroup, error) {
	query := `
		SELECT category, SUM(amount),
			json_agg(json_build_object(
				'id', id, 'description', description, 'amount', amount,
				'category', category, 'date', date
			))
		FROM transactions
		GROUP BY category
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to group transactions: %w", err)
	}
	defer rows.Close()

	var groups []models.CategoryGroup
	for rows.Next() {
		var g models.CategoryGroup
		var members []byte
		if err := rows.Scan(&g.Category, &g.TotalAmount, &members); err != nil {
			return nil, fmt.Errorf("failed to scan category group: %w", err)
		}
		if err := json.Unmarshal(members, &g.Transactions); err != nil {
			return nil, fmt.Errorf("failed to decode members of %s: %w", g.Category, err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to group transactions: %w", err)
	}
	return groups, nil
}

func (r *PostgresStore) Close(context.Context) error {
	return r.db.Close()
}

func orderByClause(key models.SortKey) string {
	switch key {
	case models.SortCategory:
		return "ORDER BY category ASC"
	case models.SortAmount:
		return "ORDER BY amount DESC"
	case models.SortDescription:
		return "ORDER BY description ASC"
	case models.SortDate:
		return "ORDER BY date ASC"
	default:
		return ""
	}
}

func isInvalidID(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqInvalidTextRepresentation
}

func requireRow(result sql.Result, op, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("failed to %s transaction %s: %w", op, id, ErrNotFound)
	}
	return nil
}
