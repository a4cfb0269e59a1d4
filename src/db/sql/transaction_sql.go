package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"dayspend-server/src/models"
)

const transactionColumns = `id, user_id, name, amount, transaction_date::text, is_savings_op, created_at`

func scanTransactions(rows pgx.Rows) ([]models.Transaction, error) {
	defer rows.Close()
	var list []models.Transaction
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Name, &t.Amount, &t.TransactionDate, &t.IsSavingsOp, &t.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan transaction")
		}
		list = append(list, t)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "read transactions")
	}
	return list, nil
}

func (s *Store) ListTransactionsOn(ctx context.Context, userID int, day string) ([]models.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions WHERE user_id = $1 AND transaction_date = $2::date
	`
	rows, err := s.pool.Query(ctx, query, userID, day)
	if err != nil {
		return nil, errors.Wrap(err, "list transactions for day")
	}
	return scanTransactions(rows)
}

func (s *Store) ListTransactionsBetween(ctx context.Context, userID int, fromDay, toDay string) ([]models.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE user_id = $1 AND transaction_date >= $2::date AND transaction_date <= $3::date
	`
	rows, err := s.pool.Query(ctx, query, userID, fromDay, toDay)
	if err != nil {
		return nil, errors.Wrap(err, "list transactions between days")
	}
	return scanTransactions(rows)
}

func (s *Store) ListRecentTransactions(ctx context.Context, userID, limit int) ([]models.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions WHERE user_id = $1
		ORDER BY transaction_date DESC, id DESC
		LIMIT $2
	`
	rows, err := s.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, errors.Wrap(err, "list recent transactions")
	}
	return scanTransactions(rows)
}

func (s *Store) InsertTransaction(ctx context.Context, t *models.Transaction) error {
	query := `
		INSERT INTO transactions (user_id, name, amount, transaction_date, is_savings_op)
		VALUES ($1, $2, $3, $4::date, $5)
		RETURNING id, created_at
	`
	err := s.pool.QueryRow(ctx, query, t.UserID, t.Name, t.Amount, t.TransactionDate, t.IsSavingsOp).
		Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return errors.Wrap(err, "insert transaction")
	}
	return nil
}

func (s *Store) DeleteTransaction(ctx context.Context, userID, id int) error {
	cmd, err := s.pool.Exec(ctx, `DELETE FROM transactions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return errors.Wrap(err, "delete transaction")
	}
	if cmd.RowsAffected() == 0 {
		return errors.New("transaction not found")
	}
	return nil
}
