package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/pribylovaa/go-todo-list/internal/models"
)

var (
	// ErrNotFound — запись не найдена (пользователь/элемент списка).
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists — нарушение уникальности (email/имя пользователя).
	ErrAlreadyExists = errors.New("already exists")
)

// UserStorage выполняет операции над пользователями.
type UserStorage interface {
	// SaveUser создает нового пользователя в БД.
	SaveUser(ctx context.Context, user *models.User) error
	// UserByEmail находит пользователя по email.
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	// UserByName находит пользователя по имени.
	UserByName(ctx context.Context, name string) (*models.User, error)
	// UserByID находит пользователя по ID.
	UserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	// MarkEmailVerified проставляет флаг подтверждения e-mail.
	MarkEmailVerified(ctx context.Context, email string) error
}

// TodoStorage выполняет операции над элементами списка дел.
type TodoStorage interface {
	// SaveItem создает новый элемент.
	SaveItem(ctx context.Context, item *models.TodoItem) error
	// ItemByID находит элемент по ID.
	ItemByID(ctx context.Context, id uuid.UUID) (*models.TodoItem, error)
	// ItemsByUserID возвращает все элементы пользователя (новые — первыми).
	ItemsByUserID(ctx context.Context, userID uuid.UUID) ([]models.TodoItem, error)
	// UpdateItem обновляет имя и признак выполнения.
	UpdateItem(ctx context.Context, item *models.TodoItem) error
	// DeleteItem удаляет элемент.
	DeleteItem(ctx context.Context, id uuid.UUID) error
}

// Storage задает контракт работы с БД.
type Storage interface {
	UserStorage
	TodoStorage
	Close()
}
