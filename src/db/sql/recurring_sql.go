package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"dayspend-server/src/models"
)

func (s *Store) ListRecurring(ctx context.Context, userID int) ([]models.RecurringTransaction, error) {
	if cached, ok := s.cache.GetRecurring(userID); ok {
		if list, ok := cached.([]models.RecurringTransaction); ok {
			return list, nil
		}
	}

	query := `
		SELECT id, user_id, name, amount
		FROM recurring_transactions WHERE user_id = $1
		ORDER BY id
	`
	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, errors.Wrap(err, "list recurring transactions")
	}
	defer rows.Close()

	var list []models.RecurringTransaction
	for rows.Next() {
		var rt models.RecurringTransaction
		if err := rows.Scan(&rt.ID, &rt.UserID, &rt.Name, &rt.Amount); err != nil {
			return nil, errors.Wrap(err, "scan recurring transaction")
		}
		list = append(list, rt)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "list recurring transactions")
	}

	s.cache.SetRecurring(userID, list)
	return list, nil
}

func (s *Store) GetRecurringByID(ctx context.Context, userID, id int) (*models.RecurringTransaction, error) {
	query := `
		SELECT id, user_id, name, amount
		FROM recurring_transactions WHERE id = $1 AND user_id = $2
	`
	var rt models.RecurringTransaction
	err := s.pool.QueryRow(ctx, query, id, userID).Scan(&rt.ID, &rt.UserID, &rt.Name, &rt.Amount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "get recurring transaction")
	}
	return &rt, nil
}

func (s *Store) CreateRecurring(ctx context.Context, rt *models.RecurringTransaction) error {
	query := `
		INSERT INTO recurring_transactions (user_id, name, amount)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	if err := s.pool.QueryRow(ctx, query, rt.UserID, rt.Name, rt.Amount).Scan(&rt.ID); err != nil {
		return errors.Wrap(err, "create recurring transaction")
	}
	s.cache.InvalidateRecurring(rt.UserID)
	return nil
}

func (s *Store) UpdateRecurring(ctx context.Context, rt *models.RecurringTransaction) error {
	query := `
		UPDATE recurring_transactions
		SET name = $1, amount = $2
		WHERE id = $3 AND user_id = $4
	`
	cmd, err := s.pool.Exec(ctx, query, rt.Name, rt.Amount, rt.ID, rt.UserID)
	if err != nil {
		return errors.Wrap(err, "update recurring transaction")
	}
	if cmd.RowsAffected() == 0 {
		return errors.New("recurring transaction not found")
	}
	s.cache.InvalidateRecurring(rt.UserID)
	return nil
}

func (s *Store) DeleteRecurring(ctx context.Context, userID, id int) error {
	cmd, err := s.pool.Exec(ctx, `DELETE FROM recurring_transactions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return errors.Wrap(err, "delete recurring transaction")
	}
	if cmd.RowsAffected() == 0 {
		return errors.New("recurring transaction not found")
	}
	s.cache.InvalidateRecurring(userID)
	return nil
}
