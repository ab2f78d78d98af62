package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/go-todo-list/internal/models"
	"github.com/pribylovaa/go-todo-list/internal/storage"
)

func testItem(userID uuid.UUID) models.TodoItem {
	return models.TodoItem{
		ID:         uuid.New(),
		UserID:     userID,
		Name:       "buy milk",
		IsComplete: false,
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}
}

func TestCreateItem_OK(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newServiceWithMock(t)
	defer ctrl.Finish()

	userID := uuid.New()
	st.EXPECT().SaveItem(gomock.Any(), gomock.Any()).Return(nil)

	item, err := svc.CreateItem(context.Background(), userID, "  buy milk  ", false)
	require.NoError(t, err)
	require.Equal(t, "buy milk", item.Name)
	require.Equal(t, userID, item.UserID)
	require.False(t, item.IsComplete)
	require.NotEqual(t, uuid.Nil, item.ID)
}

func TestCreateItem_InvalidName(t *testing.T) {
	t.Parallel()

	svc, _, ctrl := newServiceWithMock(t)
	defer ctrl.Finish()

	_, err := svc.CreateItem(context.Background(), uuid.New(), "   ", false)
	require.ErrorIs(t, err, ErrInvalidItemName)

	long := strings.Repeat("x", 101)
	_, err = svc.CreateItem(context.Background(), uuid.New(), long, false)
	require.ErrorIs(t, err, ErrInvalidItemName)
}

func TestListItems_OK(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newServiceWithMock(t)
	defer ctrl.Finish()

	userID := uuid.New()
	items := []models.TodoItem{testItem(userID), testItem(userID)}
	st.EXPECT().ItemsByUserID(gomock.Any(), userID).Return(items, nil)

	got, err := svc.ListItems(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, got, 2)
}

func TestItemByID_Ownership(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newServiceWithMock(t)
	defer ctrl.Finish()

	owner := uuid.New()
	stranger := uuid.New()
	item := testItem(owner)

	st.EXPECT().ItemByID(gomock.Any(), item.ID).Return(&item, nil).Times(2)

	got, err := svc.ItemByID(context.Background(), owner, item.ID)
	require.NoError(t, err)
	require.Equal(t, item.ID, got.ID)

	// Чужой элемент недоступен даже на чтение.
	_, err = svc.ItemByID(context.Background(), stranger, item.ID)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestItemByID_NotFound(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newServiceWithMock(t)
	defer ctrl.Finish()

	id := uuid.New()
	st.EXPECT().ItemByID(gomock.Any(), id).Return(nil, storage.ErrNotFound)

	_, err := svc.ItemByID(context.Background(), uuid.New(), id)
	require.ErrorIs(t, err, ErrItemNotFound)
}

func TestUpdateItem_OK(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newServiceWithMock(t)
	defer ctrl.Finish()

	owner := uuid.New()
	item := testItem(owner)

	st.EXPECT().ItemByID(gomock.Any(), item.ID).Return(&item, nil)
	st.EXPECT().UpdateItem(gomock.Any(), gomock.Any()).Return(nil)

	got, err := svc.UpdateItem(context.Background(), owner, item.ID, "buy bread", true)
	require.NoError(t, err)
	require.Equal(t, "buy bread", got.Name)
	require.True(t, got.IsComplete)
}

func TestUpdateItem_Forbidden(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newServiceWithMock(t)
	defer ctrl.Finish()

	item := testItem(uuid.New())
	st.EXPECT().ItemByID(gomock.Any(), item.ID).Return(&item, nil)

	_, err := svc.UpdateItem(context.Background(), uuid.New(), item.ID, "buy bread", true)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestDeleteItem_OK(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newServiceWithMock(t)
	defer ctrl.Finish()

	owner := uuid.New()
	item := testItem(owner)

	st.EXPECT().ItemByID(gomock.Any(), item.ID).Return(&item, nil)
	st.EXPECT().DeleteItem(gomock.Any(), item.ID).Return(nil)

	require.NoError(t, svc.DeleteItem(context.Background(), owner, item.ID))
}

func TestDeleteItem_NotFound(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newServiceWithMock(t)
	defer ctrl.Finish()

	id := uuid.New()
	st.EXPECT().ItemByID(gomock.Any(), id).Return(nil, storage.ErrNotFound)

	err := svc.DeleteItem(context.Background(), uuid.New(), id)
	require.ErrorIs(t, err, ErrItemNotFound)
}
