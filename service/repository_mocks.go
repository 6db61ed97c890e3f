package service

import (
	"context"

	"artificer/events"
	"artificer/models"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, userID int64) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByIDForUpdate(ctx context.Context, userID int64) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, userID int64, name string, initialBalance int64) (*models.User, error) {
	args := m.Called(ctx, userID, name, initialBalance)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) AddBalance(ctx context.Context, userID int64, amount int64) error {
	args := m.Called(ctx, userID, amount)
	return args.Error(0)
}

func (m *MockUserRepository) DeductBalance(ctx context.Context, userID int64, amount int64) error {
	args := m.Called(ctx, userID, amount)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateShopProgress(ctx context.Context, userID int64, purchases int64, nextRecipeDrop *int64) error {
	args := m.Called(ctx, userID, purchases, nextRecipeDrop)
	return args.Error(0)
}

// MockCatalogRepository is a mock implementation of CatalogRepository
type MockCatalogRepository struct {
	mock.Mock
}

func (m *MockCatalogRepository) GetItemByID(ctx context.Context, itemID int64) (*models.Item, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Item), args.Error(1)
}

func (m *MockCatalogRepository) GetItemByCode(ctx context.Context, code string) (*models.Item, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Item), args.Error(1)
}

func (m *MockCatalogRepository) GetItemsByTier(ctx context.Context, tier int) ([]*models.Item, error) {
	args := m.Called(ctx, tier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Item), args.Error(1)
}

func (m *MockCatalogRepository) GetRecipeByID(ctx context.Context, recipeID int64) (*models.Recipe, error) {
	args := m.Called(ctx, recipeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Recipe), args.Error(1)
}

func (m *MockCatalogRepository) GetRecipeByCode(ctx context.Context, code string) (*models.Recipe, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Recipe), args.Error(1)
}

func (m *MockCatalogRepository) GetRecipesByTier(ctx context.Context, tier int) ([]*models.Recipe, error) {
	args := m.Called(ctx, tier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Recipe), args.Error(1)
}

func (m *MockCatalogRepository) UpdateItemBonusGold(ctx context.Context, itemID int64, bonusGold int64) error {
	args := m.Called(ctx, itemID, bonusGold)
	return args.Error(0)
}

// MockHoldingRepository is a mock implementation of HoldingRepository
type MockHoldingRepository struct {
	mock.Mock
}

func (m *MockHoldingRepository) Credit(ctx context.Context, userID int64, kind models.TargetKind, targetID int64, qty int64) error {
	args := m.Called(ctx, userID, kind, targetID, qty)
	return args.Error(0)
}

func (m *MockHoldingRepository) Debit(ctx context.Context, userID int64, kind models.TargetKind, targetID int64, qty int64) error {
	args := m.Called(ctx, userID, kind, targetID, qty)
	return args.Error(0)
}

func (m *MockHoldingRepository) GetItemQuantity(ctx context.Context, userID int64, itemID int64) (int64, error) {
	args := m.Called(ctx, userID, itemID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockHoldingRepository) GetRecipeCharges(ctx context.Context, userID int64, recipeID int64) (int64, error) {
	args := m.Called(ctx, userID, recipeID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockHoldingRepository) GetDistinctItemsByTier(ctx context.Context, userID int64, tier int) ([]*models.UserItemHolding, error) {
	args := m.Called(ctx, userID, tier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.UserItemHolding), args.Error(1)
}

func (m *MockHoldingRepository) IncrementRecipeAttempts(ctx context.Context, userID int64, recipeID int64) error {
	args := m.Called(ctx, userID, recipeID)
	return args.Error(0)
}

// MockLedgerRepository is a mock implementation of LedgerRepository
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) Record(ctx context.Context, entry *models.LedgerEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockLedgerRepository) GetByUser(ctx context.Context, userID int64, limit int) ([]*models.LedgerEntry, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) SumByUser(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

// MockListingRepository is a mock implementation of ListingRepository
type MockListingRepository struct {
	mock.Mock
}

func (m *MockListingRepository) Create(ctx context.Context, listing *models.Listing) error {
	args := m.Called(ctx, listing)
	return args.Error(0)
}

func (m *MockListingRepository) GetByID(ctx context.Context, listingID int64) (*models.Listing, error) {
	args := m.Called(ctx, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}

func (m *MockListingRepository) GetByIDForUpdate(ctx context.Context, listingID int64) (*models.Listing, error) {
	args := m.Called(ctx, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}

func (m *MockListingRepository) MarkPaid(ctx context.Context, listingID int64, buyerID int64, soldPrice int64) error {
	args := m.Called(ctx, listingID, buyerID, soldPrice)
	return args.Error(0)
}

func (m *MockListingRepository) MarkCanceled(ctx context.Context, listingID int64) error {
	args := m.Called(ctx, listingID)
	return args.Error(0)
}

func (m *MockListingRepository) ListLive(ctx context.Context, limit int) ([]*models.Listing, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Listing), args.Error(1)
}

func (m *MockListingRepository) CreateEscrow(ctx context.Context, escrow *models.EscrowRecord) error {
	args := m.Called(ctx, escrow)
	return args.Error(0)
}

func (m *MockListingRepository) GetEscrowByListing(ctx context.Context, listingID int64) (*models.EscrowRecord, error) {
	args := m.Called(ctx, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EscrowRecord), args.Error(1)
}

func (m *MockListingRepository) DeleteEscrow(ctx context.Context, listingID int64) error {
	args := m.Called(ctx, listingID)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// nopEventPublisher swallows events for tests that don't assert on them
type nopEventPublisher struct{}

func (nopEventPublisher) Publish(event events.Event) {}

// MockUnitOfWork is a mock implementation of UnitOfWork. Repositories are
// plain fields so tests wire concrete mocks once with SetRepositories.
type MockUnitOfWork struct {
	mock.Mock

	userRepo    UserRepository
	catalogRepo CatalogRepository
	holdingRepo HoldingRepository
	ledgerRepo  LedgerRepository
	listingRepo ListingRepository
	publisher   EventPublisher
}

// SetRepositories wires the repositories returned by the getters. Nil
// publisher gets a no-op publisher.
func (m *MockUnitOfWork) SetRepositories(
	userRepo UserRepository,
	catalogRepo CatalogRepository,
	holdingRepo HoldingRepository,
	ledgerRepo LedgerRepository,
	listingRepo ListingRepository,
	publisher EventPublisher,
) {
	m.userRepo = userRepo
	m.catalogRepo = catalogRepo
	m.holdingRepo = holdingRepo
	m.ledgerRepo = ledgerRepo
	m.listingRepo = listingRepo
	if publisher == nil {
		publisher = nopEventPublisher{}
	}
	m.publisher = publisher
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) UserRepository() UserRepository {
	return m.userRepo
}

func (m *MockUnitOfWork) CatalogRepository() CatalogRepository {
	return m.catalogRepo
}

func (m *MockUnitOfWork) HoldingRepository() HoldingRepository {
	return m.holdingRepo
}

func (m *MockUnitOfWork) LedgerRepository() LedgerRepository {
	return m.ledgerRepo
}

func (m *MockUnitOfWork) ListingRepository() ListingRepository {
	return m.listingRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	return m.publisher
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}
