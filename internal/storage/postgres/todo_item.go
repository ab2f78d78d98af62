package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pribylovaa/go-todo-list/internal/models"
	"github.com/pribylovaa/go-todo-list/internal/storage"
)

// SaveItem создает новый элемент списка дел.
func (s *Storage) SaveItem(ctx context.Context, item *models.TodoItem) error {
	const op = "storage.postgres.SaveItem"

	query := `
		INSERT INTO todo_items(id, user_id, name, is_complete, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.db.Exec(ctx, query,
		item.ID,
		item.UserID,
		item.Name,
		item.IsComplete,
		item.CreatedAt,
		item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// ItemByID находит элемент по ID.
func (s *Storage) ItemByID(ctx context.Context, id uuid.UUID) (*models.TodoItem, error) {
	const op = "storage.postgres.ItemByID"

	query := `
		SELECT id, user_id, name, is_complete, created_at, updated_at
		FROM todo_items
		WHERE id = $1
	`

	var item models.TodoItem
	err := s.db.QueryRow(ctx, query, id).Scan(
		&item.ID,
		&item.UserID,
		&item.Name,
		&item.IsComplete,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &item, nil
}

// ItemsByUserID возвращает все элементы пользователя (новые — первыми).
func (s *Storage) ItemsByUserID(ctx context.Context, userID uuid.UUID) ([]models.TodoItem, error) {
	const op = "storage.postgres.ItemsByUserID"

	query := `
		SELECT id, user_id, name, is_complete, created_at, updated_at
		FROM todo_items
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	items := make([]models.TodoItem, 0)
	for rows.Next() {
		var item models.TodoItem
		if err := rows.Scan(
			&item.ID,
			&item.UserID,
			&item.Name,
			&item.IsComplete,
			&item.CreatedAt,
			&item.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return items, nil
}

// UpdateItem обновляет имя и признак выполнения.
func (s *Storage) UpdateItem(ctx context.Context, item *models.TodoItem) error {
	const op = "storage.postgres.UpdateItem"

	query := `
		UPDATE todo_items
		SET name = $2, is_complete = $3, updated_at = $4
		WHERE id = $1
	`

	cmdTag, err := s.db.Exec(ctx, query, item.ID, item.Name, item.IsComplete, item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}

// DeleteItem удаляет элемент.
func (s *Storage) DeleteItem(ctx context.Context, id uuid.UUID) error {
	const op = "storage.postgres.DeleteItem"

	query := `DELETE FROM todo_items WHERE id = $1`

	cmdTag, err := s.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}
