package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pribylovaa/go-todo-list/internal/models"
	"github.com/pribylovaa/go-todo-list/internal/pkg/log"
	"github.com/pribylovaa/go-todo-list/internal/storage"
)

// maxItemNameLen — жёсткий лимит длины имени элемента списка.
const maxItemNameLen = 100

// ListItems возвращает все элементы списка пользователя, новые — первыми.
func (s *Service) ListItems(ctx context.Context, userID uuid.UUID) ([]models.TodoItem, error) {
	const op = "service.todo.ListItems"

	items, err := s.storage.ItemsByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return items, nil
}

// ItemByID возвращает элемент по идентификатору. Чужие элементы недоступны.
func (s *Service) ItemByID(ctx context.Context, userID, itemID uuid.UUID) (*models.TodoItem, error) {
	const op = "service.todo.ItemByID"

	item, err := s.storage.ItemByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrItemNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if item.UserID != userID {
		return nil, fmt.Errorf("%s: %w", op, ErrForbidden)
	}

	return item, nil
}

// CreateItem создаёт новый элемент списка.
func (s *Service) CreateItem(ctx context.Context, userID uuid.UUID, name string, isComplete bool) (*models.TodoItem, error) {
	const op = "service.todo.CreateItem"

	normName, err := validateItemName(name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	item := &models.TodoItem{
		ID:         uuid.New(),
		UserID:     userID,
		Name:       normName,
		IsComplete: isComplete,
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}

	if err := s.storage.SaveItem(ctx, item); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.From(ctx).Info("todo_item_created",
		slog.String("user_id", userID.String()),
		slog.String("item_id", item.ID.String()),
	)

	return item, nil
}

// UpdateItem обновляет имя и признак выполнения существующего элемента.
func (s *Service) UpdateItem(ctx context.Context, userID, itemID uuid.UUID, name string, isComplete bool) (*models.TodoItem, error) {
	const op = "service.todo.UpdateItem"

	normName, err := validateItemName(name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	item, err := s.ItemByID(ctx, userID, itemID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	item.Name = normName
	item.IsComplete = isComplete
	item.UpdatedAt = time.Now().UTC()

	if err := s.storage.UpdateItem(ctx, item); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrItemNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return item, nil
}

// DeleteItem удаляет элемент списка.
func (s *Service) DeleteItem(ctx context.Context, userID, itemID uuid.UUID) error {
	const op = "service.todo.DeleteItem"

	if _, err := s.ItemByID(ctx, userID, itemID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.storage.DeleteItem(ctx, itemID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrItemNotFound)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// validateItemName проверяет имя элемента: непустое, не длиннее 100 символов.
func validateItemName(raw string) (string, error) {
	const op = "service.todo.validateItemName"

	name := strings.TrimSpace(raw)
	if name == "" || len([]rune(name)) > maxItemNameLen {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidItemName)
	}

	return name, nil
}
