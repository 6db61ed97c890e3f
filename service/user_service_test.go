package service

import (
	"context"
	"fmt"
	"testing"

	"artificer/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUserService_GetOrCreateUser_ExistingUser(t *testing.T) {
	m := newTestMocks()
	svc := NewUserService(m.factory)
	ctx := context.Background()

	existing := &models.User{ID: 1, Name: "arenvald", Balance: 750}
	m.user.On("GetByID", ctx, int64(1)).Return(existing, nil)

	user, err := svc.GetOrCreateUser(ctx, 1, "arenvald")
	require.NoError(t, err)

	assert.Equal(t, existing, user)

	// No mint for an existing user
	m.user.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	m.ledger.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
	m.uow.AssertNotCalled(t, "Commit")
}

func TestUserService_GetOrCreateUser_NewUserMintsStartingBalance(t *testing.T) {
	m := newTestMocks()
	svc := NewUserService(m.factory)
	ctx := context.Background()

	created := &models.User{ID: 1, Name: "arenvald", Balance: 1000}
	m.user.On("GetByID", ctx, int64(1)).Return(nil, nil)
	m.user.On("Create", ctx, int64(1), "arenvald", int64(1000)).Return(created, nil)
	m.ledger.On("Record", ctx, mock.MatchedBy(func(e *models.LedgerEntry) bool {
		return e.UserID == 1 &&
			e.Reason == models.LedgerReasonInitial &&
			e.BalanceBefore == 0 &&
			e.BalanceAfter == 1000 &&
			e.ChangeAmount == 1000 &&
			e.Metadata["name"] == "arenvald"
	})).Return(nil)

	user, err := svc.GetOrCreateUser(ctx, 1, "arenvald")
	require.NoError(t, err)

	assert.Equal(t, int64(1000), user.Balance)

	m.user.AssertExpectations(t)
	m.ledger.AssertExpectations(t)
	m.uow.AssertCalled(t, "Commit")
}

func TestUserService_GetOrCreateUser_CreateError(t *testing.T) {
	m := newTestMocks()
	svc := NewUserService(m.factory)
	ctx := context.Background()

	m.user.On("GetByID", ctx, int64(1)).Return(nil, nil)
	m.user.On("Create", ctx, int64(1), "arenvald", int64(1000)).
		Return(nil, fmt.Errorf("connection lost"))

	_, err := svc.GetOrCreateUser(ctx, 1, "arenvald")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create user")

	m.uow.AssertNotCalled(t, "Commit")
}

func TestUserService_GetLedgerHistory(t *testing.T) {
	m := newTestMocks()
	svc := NewUserService(m.factory)
	ctx := context.Background()

	entries := []*models.LedgerEntry{
		{ID: 2, UserID: 1, Reason: models.LedgerReasonShopBuyT1, ChangeAmount: -100},
		{ID: 1, UserID: 1, Reason: models.LedgerReasonInitial, ChangeAmount: 1000},
	}
	m.ledger.On("GetByUser", ctx, int64(1), 10).Return(entries, nil)

	got, err := svc.GetLedgerHistory(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, models.LedgerReasonShopBuyT1, got[0].Reason)
}
