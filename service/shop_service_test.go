package service

import (
	"context"
	"testing"

	"artificer/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// stubRand replays a scripted sequence of draws
type stubRand struct {
	ints   []int
	floats []float64
}

func (s *stubRand) Intn(n int) int {
	if len(s.ints) == 0 {
		return 0
	}
	v := s.ints[0]
	s.ints = s.ints[1:]
	return v
}

func (s *stubRand) Float64() float64 {
	if len(s.floats) == 0 {
		return 0
	}
	v := s.floats[0]
	s.floats = s.floats[1:]
	return v
}

type testMocks struct {
	factory *MockUnitOfWorkFactory
	uow     *MockUnitOfWork
	user    *MockUserRepository
	catalog *MockCatalogRepository
	holding *MockHoldingRepository
	ledger  *MockLedgerRepository
	listing *MockListingRepository
}

// newTestMocks wires a unit of work whose Begin/Commit/Rollback succeed
func newTestMocks() *testMocks {
	m := &testMocks{
		factory: new(MockUnitOfWorkFactory),
		uow:     new(MockUnitOfWork),
		user:    new(MockUserRepository),
		catalog: new(MockCatalogRepository),
		holding: new(MockHoldingRepository),
		ledger:  new(MockLedgerRepository),
		listing: new(MockListingRepository),
	}
	m.uow.SetRepositories(m.user, m.catalog, m.holding, m.ledger, m.listing, nil)
	m.factory.On("Create").Return(m.uow)
	m.uow.On("Begin", mock.Anything).Return(nil)
	m.uow.On("Commit").Return(nil)
	m.uow.On("Rollback").Return(nil)
	return m
}

func int64Ptr(v int64) *int64 {
	return &v
}

func TestShopService_BuyBaseRoll_UnknownUser(t *testing.T) {
	m := newTestMocks()
	svc := NewShopService(m.factory, &stubRand{})
	ctx := context.Background()

	m.user.On("GetByIDForUpdate", ctx, int64(1)).Return(nil, nil)

	_, err := svc.BuyBaseRoll(ctx, 1)
	assert.ErrorIs(t, err, models.ErrNotFound)

	m.user.AssertNotCalled(t, "DeductBalance", mock.Anything, mock.Anything, mock.Anything)
}

func TestShopService_BuyBaseRoll_InsufficientFunds(t *testing.T) {
	m := newTestMocks()
	svc := NewShopService(m.factory, &stubRand{})
	ctx := context.Background()

	m.user.On("GetByIDForUpdate", ctx, int64(1)).Return(&models.User{ID: 1, Balance: 99}, nil)

	_, err := svc.BuyBaseRoll(ctx, 1)
	assert.ErrorIs(t, err, models.ErrInsufficientFunds)

	m.user.AssertNotCalled(t, "DeductBalance", mock.Anything, mock.Anything, mock.Anything)
	m.uow.AssertNotCalled(t, "Commit")
}

func TestShopService_BuyBaseRoll_GrantsItemAndArmsPityTimer(t *testing.T) {
	m := newTestMocks()
	// First draw arms the pity timer at 0+4+2=6, second picks item index 1
	svc := NewShopService(m.factory, &stubRand{ints: []int{2, 1}})
	ctx := context.Background()

	user := &models.User{ID: 1, Balance: 1000, ShopPurchases: 0, NextRecipeDrop: nil}
	items := []*models.Item{
		{ID: 10, Code: "pebble", Tier: 1},
		{ID: 11, Code: "twig", Tier: 1},
	}

	m.user.On("GetByIDForUpdate", ctx, int64(1)).Return(user, nil)
	m.user.On("DeductBalance", ctx, int64(1), int64(100)).Return(nil)
	m.ledger.On("Record", ctx, mock.MatchedBy(func(e *models.LedgerEntry) bool {
		return e.Reason == models.LedgerReasonShopBuyT1 &&
			e.ChangeAmount == -100 &&
			e.BalanceBefore == 1000 &&
			e.BalanceAfter == 900
	})).Return(nil)
	m.catalog.On("GetItemsByTier", ctx, 1).Return(items, nil)
	m.holding.On("Credit", ctx, int64(1), models.TargetKindItem, int64(11), int64(1)).Return(nil)
	m.user.On("UpdateShopProgress", ctx, int64(1), int64(1), int64Ptr(6)).Return(nil)

	result, err := svc.BuyBaseRoll(ctx, 1)
	require.NoError(t, err)

	require.NotNil(t, result.Item)
	assert.Equal(t, int64(11), result.Item.ID)
	assert.Nil(t, result.Recipe)
	assert.Equal(t, int64(1), result.PurchaseCount)
	assert.Equal(t, int64(900), result.NewBalance)

	m.user.AssertExpectations(t)
	m.ledger.AssertExpectations(t)
	m.holding.AssertExpectations(t)
	m.uow.AssertCalled(t, "Commit")
	// The shop progress read must take the row lock
	m.user.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestShopService_BuyBaseRoll_PityTimerDropsRecipe(t *testing.T) {
	m := newTestMocks()
	// Draws: tier roll 12 -> 13 means tier 5, recipe index 0, re-arm offset 4+0
	svc := NewShopService(m.factory, &stubRand{ints: []int{12, 0, 0}})
	ctx := context.Background()

	user := &models.User{ID: 1, Balance: 500, ShopPurchases: 4, NextRecipeDrop: int64Ptr(5)}
	recipes := []*models.Recipe{{ID: 30, Code: "forge-dragon-core", Tier: 5}}

	m.user.On("GetByIDForUpdate", ctx, int64(1)).Return(user, nil)
	m.user.On("DeductBalance", ctx, int64(1), int64(100)).Return(nil)
	m.ledger.On("Record", ctx, mock.Anything).Return(nil)
	m.catalog.On("GetRecipesByTier", ctx, 5).Return(recipes, nil)
	m.holding.On("Credit", ctx, int64(1), models.TargetKindRecipe, int64(30), int64(1)).Return(nil)
	// Counter reaches 5 and the timer re-arms at 5+4+0=9
	m.user.On("UpdateShopProgress", ctx, int64(1), int64(5), int64Ptr(9)).Return(nil)

	result, err := svc.BuyBaseRoll(ctx, 1)
	require.NoError(t, err)

	require.NotNil(t, result.Recipe)
	assert.Equal(t, int64(30), result.Recipe.ID)
	assert.Nil(t, result.Item)
	assert.Equal(t, int64(5), result.PurchaseCount)

	m.user.AssertExpectations(t)
	m.catalog.AssertExpectations(t)
	m.holding.AssertExpectations(t)
}

func TestShopService_BuyBaseRoll_RecipeTierFallback(t *testing.T) {
	m := newTestMocks()
	// Tier roll 30 -> 31 lands in tier 4, which is empty, so the draw
	// falls back to tier 3
	svc := NewShopService(m.factory, &stubRand{ints: []int{30, 0, 1}})
	ctx := context.Background()

	user := &models.User{ID: 1, Balance: 500, ShopPurchases: 7, NextRecipeDrop: int64Ptr(8)}
	tier3 := []*models.Recipe{{ID: 40, Code: "smelt-steel", Tier: 3}}

	m.user.On("GetByIDForUpdate", ctx, int64(1)).Return(user, nil)
	m.user.On("DeductBalance", ctx, int64(1), int64(100)).Return(nil)
	m.ledger.On("Record", ctx, mock.Anything).Return(nil)
	m.catalog.On("GetRecipesByTier", ctx, 4).Return([]*models.Recipe{}, nil)
	m.catalog.On("GetRecipesByTier", ctx, 3).Return(tier3, nil)
	m.holding.On("Credit", ctx, int64(1), models.TargetKindRecipe, int64(40), int64(1)).Return(nil)
	m.user.On("UpdateShopProgress", ctx, int64(1), int64(8), mock.Anything).Return(nil)

	result, err := svc.BuyBaseRoll(ctx, 1)
	require.NoError(t, err)

	require.NotNil(t, result.Recipe)
	assert.Equal(t, int64(40), result.Recipe.ID)
}

// Nine consecutive rolls against a user whose pity timer is armed at 10:
// every roll yields a tier-1 item, the counter walks to 9 and the balance
// drains from 1000 to 100.
func TestShopService_BuyBaseRoll_NineRollsBeforeDrop(t *testing.T) {
	ctx := context.Background()
	items := []*models.Item{{ID: 10, Code: "pebble", Tier: 1}}

	balance := int64(1000)
	purchases := int64(0)

	for i := 0; i < 9; i++ {
		m := newTestMocks()
		svc := NewShopService(m.factory, &stubRand{ints: []int{0}})

		user := &models.User{ID: 1, Balance: balance, ShopPurchases: purchases, NextRecipeDrop: int64Ptr(10)}
		m.user.On("GetByIDForUpdate", ctx, int64(1)).Return(user, nil)
		m.user.On("DeductBalance", ctx, int64(1), int64(100)).Return(nil)
		m.ledger.On("Record", ctx, mock.Anything).Return(nil)
		m.catalog.On("GetItemsByTier", ctx, 1).Return(items, nil)
		m.holding.On("Credit", ctx, int64(1), models.TargetKindItem, int64(10), int64(1)).Return(nil)
		// The threshold stays put until the drop fires
		m.user.On("UpdateShopProgress", ctx, int64(1), purchases+1, int64Ptr(10)).Return(nil)

		result, err := svc.BuyBaseRoll(ctx, 1)
		require.NoError(t, err)
		require.NotNil(t, result.Item)
		assert.Nil(t, result.Recipe)

		balance = result.NewBalance
		purchases = result.PurchaseCount
	}

	assert.Equal(t, int64(100), balance)
	assert.Equal(t, int64(9), purchases)
}
