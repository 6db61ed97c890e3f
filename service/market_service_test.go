package service

import (
	"context"
	"testing"
	"time"

	"artificer/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func liveListing() *models.Listing {
	return &models.Listing{
		ID:       50,
		SellerID: 1,
		Kind:     models.TargetKindItem,
		TargetID: 10,
		Quantity: 3,
		Price:    500,
		FeeBps:   100,
		Status:   models.ListingStatusLive,
		EndTime:  time.Now().Add(7 * 24 * time.Hour),
	}
}

func TestMarketService_CreateListing_Validation(t *testing.T) {
	m := newTestMocks()
	svc := NewMarketService(m.factory)
	ctx := context.Background()

	_, err := svc.CreateListing(ctx, 1, models.TargetKind("gold"), 10, 1, 100)
	assert.ErrorIs(t, err, models.ErrInvalidTarget)

	_, err = svc.CreateListing(ctx, 1, models.TargetKindItem, 10, 0, 100)
	assert.Error(t, err)

	_, err = svc.CreateListing(ctx, 1, models.TargetKindItem, 10, 1, 0)
	assert.ErrorIs(t, err, models.ErrInvalidPrice)

	_, err = svc.CreateListing(ctx, 1, models.TargetKindItem, 10, 1, -5)
	assert.ErrorIs(t, err, models.ErrInvalidPrice)

	m.factory.AssertNotCalled(t, "Create")
}

func TestMarketService_CreateListing_FeeUnaffordable(t *testing.T) {
	m := newTestMocks()
	svc := NewMarketService(m.factory)
	ctx := context.Background()

	item := &models.Item{ID: 10, Code: "ruby", Tier: 4}
	m.catalog.On("GetItemByID", ctx, int64(10)).Return(item, nil)
	// Fee on 500 is 5; the seller holds 4
	m.user.On("GetByID", ctx, int64(1)).Return(&models.User{ID: 1, Balance: 4}, nil)

	_, err := svc.CreateListing(ctx, 1, models.TargetKindItem, 10, 3, 500)
	assert.ErrorIs(t, err, models.ErrInsufficientFunds)

	m.user.AssertNotCalled(t, "DeductBalance", mock.Anything, mock.Anything, mock.Anything)
	m.holding.AssertNotCalled(t, "Debit", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMarketService_CreateListing_Success(t *testing.T) {
	m := newTestMocks()
	svc := NewMarketService(m.factory)
	ctx := context.Background()

	item := &models.Item{ID: 10, Code: "ruby", Tier: 4}
	m.catalog.On("GetItemByID", ctx, int64(10)).Return(item, nil)
	m.user.On("GetByID", ctx, int64(1)).Return(&models.User{ID: 1, Balance: 1000}, nil)
	m.user.On("DeductBalance", ctx, int64(1), int64(5)).Return(nil)
	m.holding.On("Debit", ctx, int64(1), models.TargetKindItem, int64(10), int64(3)).Return(nil)
	m.listing.On("Create", ctx, mock.MatchedBy(func(l *models.Listing) bool {
		return l.SellerID == 1 &&
			l.Kind == models.TargetKindItem &&
			l.TargetID == 10 &&
			l.Quantity == 3 &&
			l.Price == 500 &&
			l.FeeBps == 100 &&
			!l.EndTime.IsZero()
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Listing).ID = 50
	}).Return(nil)
	m.listing.On("CreateEscrow", ctx, mock.MatchedBy(func(e *models.EscrowRecord) bool {
		return e.ListingID == 50 && e.OwnerID == 1 && e.TargetID == 10 && e.Quantity == 3
	})).Return(nil)
	m.ledger.On("Record", ctx, mock.MatchedBy(func(e *models.LedgerEntry) bool {
		return e.Reason == models.LedgerReasonSaleListFee &&
			e.ChangeAmount == -5 &&
			e.RelatedID != nil && *e.RelatedID == 50
	})).Return(nil)

	listing, err := svc.CreateListing(ctx, 1, models.TargetKindItem, 10, 3, 500)
	require.NoError(t, err)

	assert.Equal(t, int64(50), listing.ID)

	m.listing.AssertExpectations(t)
	m.ledger.AssertExpectations(t)
	m.uow.AssertCalled(t, "Commit")
}

func TestMarketService_CreateListing_NoFeeBelowDivisor(t *testing.T) {
	m := newTestMocks()
	svc := NewMarketService(m.factory)
	ctx := context.Background()

	item := &models.Item{ID: 10, Code: "pebble", Tier: 1}
	m.catalog.On("GetItemByID", ctx, int64(10)).Return(item, nil)
	// Fee on 99 truncates to zero, so no charge and no ledger entry
	m.user.On("GetByID", ctx, int64(1)).Return(&models.User{ID: 1, Balance: 0}, nil)
	m.holding.On("Debit", ctx, int64(1), models.TargetKindItem, int64(10), int64(1)).Return(nil)
	m.listing.On("Create", ctx, mock.Anything).Return(nil)
	m.listing.On("CreateEscrow", ctx, mock.Anything).Return(nil)

	_, err := svc.CreateListing(ctx, 1, models.TargetKindItem, 10, 1, 99)
	require.NoError(t, err)

	m.user.AssertNotCalled(t, "DeductBalance", mock.Anything, mock.Anything, mock.Anything)
	m.ledger.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
}

func TestMarketService_CancelListing_Forbidden(t *testing.T) {
	m := newTestMocks()
	svc := NewMarketService(m.factory)
	ctx := context.Background()

	m.listing.On("GetByIDForUpdate", ctx, int64(50)).Return(liveListing(), nil)

	err := svc.CancelListing(ctx, 2, 50)
	assert.ErrorIs(t, err, models.ErrForbidden)

	m.listing.AssertNotCalled(t, "MarkCanceled", mock.Anything, mock.Anything)
}

func TestMarketService_CancelListing_NotLive(t *testing.T) {
	m := newTestMocks()
	svc := NewMarketService(m.factory)
	ctx := context.Background()

	sold := liveListing()
	sold.Status = models.ListingStatusPaid
	m.listing.On("GetByIDForUpdate", ctx, int64(50)).Return(sold, nil)

	err := svc.CancelListing(ctx, 1, 50)
	assert.ErrorIs(t, err, models.ErrListingNotLive)
}

func TestMarketService_CancelListing_ReturnsGoods(t *testing.T) {
	m := newTestMocks()
	svc := NewMarketService(m.factory)
	ctx := context.Background()

	escrow := &models.EscrowRecord{
		ID: 7, ListingID: 50, OwnerID: 1,
		Kind: models.TargetKindItem, TargetID: 10, Quantity: 3,
	}

	m.listing.On("GetByIDForUpdate", ctx, int64(50)).Return(liveListing(), nil)
	m.listing.On("GetEscrowByListing", ctx, int64(50)).Return(escrow, nil)
	m.holding.On("Credit", ctx, int64(1), models.TargetKindItem, int64(10), int64(3)).Return(nil)
	m.listing.On("MarkCanceled", ctx, int64(50)).Return(nil)
	m.listing.On("DeleteEscrow", ctx, int64(50)).Return(nil)

	err := svc.CancelListing(ctx, 1, 50)
	require.NoError(t, err)

	// No refund of the listing fee
	m.user.AssertNotCalled(t, "AddBalance", mock.Anything, mock.Anything, mock.Anything)
	m.listing.AssertExpectations(t)
	m.holding.AssertExpectations(t)
	m.uow.AssertCalled(t, "Commit")
}

func TestMarketService_BuyListing_SelfPurchase(t *testing.T) {
	m := newTestMocks()
	svc := NewMarketService(m.factory)
	ctx := context.Background()

	m.listing.On("GetByIDForUpdate", ctx, int64(50)).Return(liveListing(), nil)

	_, err := svc.BuyListing(ctx, 1, 50)
	assert.ErrorIs(t, err, models.ErrSelfPurchase)
}

func TestMarketService_BuyListing_InsufficientFunds(t *testing.T) {
	m := newTestMocks()
	svc := NewMarketService(m.factory)
	ctx := context.Background()

	m.listing.On("GetByIDForUpdate", ctx, int64(50)).Return(liveListing(), nil)
	m.user.On("GetByID", ctx, int64(2)).Return(&models.User{ID: 2, Balance: 499}, nil)

	_, err := svc.BuyListing(ctx, 2, 50)
	assert.ErrorIs(t, err, models.ErrInsufficientFunds)

	m.user.AssertNotCalled(t, "DeductBalance", mock.Anything, mock.Anything, mock.Anything)
	m.uow.AssertNotCalled(t, "Commit")
}

func TestMarketService_BuyListing_NotLive(t *testing.T) {
	m := newTestMocks()
	svc := NewMarketService(m.factory)
	ctx := context.Background()

	canceled := liveListing()
	canceled.Status = models.ListingStatusCanceled
	m.listing.On("GetByIDForUpdate", ctx, int64(50)).Return(canceled, nil)

	_, err := svc.BuyListing(ctx, 2, 50)
	assert.ErrorIs(t, err, models.ErrListingNotLive)
}

func TestMarketService_BuyListing_Settlement(t *testing.T) {
	m := newTestMocks()
	svc := NewMarketService(m.factory)
	ctx := context.Background()

	escrow := &models.EscrowRecord{
		ID: 7, ListingID: 50, OwnerID: 1,
		Kind: models.TargetKindItem, TargetID: 10, Quantity: 3,
	}

	m.listing.On("GetByIDForUpdate", ctx, int64(50)).Return(liveListing(), nil)
	m.user.On("GetByID", ctx, int64(2)).Return(&models.User{ID: 2, Balance: 800}, nil)
	m.user.On("GetByID", ctx, int64(1)).Return(&models.User{ID: 1, Balance: 100}, nil)
	m.user.On("DeductBalance", ctx, int64(2), int64(500)).Return(nil)
	m.ledger.On("Record", ctx, mock.MatchedBy(func(e *models.LedgerEntry) bool {
		return e.UserID == 2 &&
			e.Reason == models.LedgerReasonSaleBuy &&
			e.ChangeAmount == -500 &&
			e.BalanceAfter == 300
	})).Return(nil)
	// 100 bps of 500 is 5; the seller nets 495
	m.user.On("AddBalance", ctx, int64(1), int64(495)).Return(nil)
	m.ledger.On("Record", ctx, mock.MatchedBy(func(e *models.LedgerEntry) bool {
		return e.UserID == 1 &&
			e.Reason == models.LedgerReasonSaleEarn &&
			e.ChangeAmount == 495 &&
			e.BalanceAfter == 595
	})).Return(nil)
	m.listing.On("GetEscrowByListing", ctx, int64(50)).Return(escrow, nil)
	m.holding.On("Credit", ctx, int64(2), models.TargetKindItem, int64(10), int64(3)).Return(nil)
	m.listing.On("MarkPaid", ctx, int64(50), int64(2), int64(500)).Return(nil)
	m.listing.On("DeleteEscrow", ctx, int64(50)).Return(nil)

	result, err := svc.BuyListing(ctx, 2, 50)
	require.NoError(t, err)

	assert.Equal(t, int64(5), result.Fee)
	assert.Equal(t, int64(495), result.SellerNet)
	assert.Equal(t, int64(300), result.BuyerNewBalance)
	assert.Equal(t, models.ListingStatusPaid, result.Listing.Status)
	require.NotNil(t, result.Listing.BuyerID)
	assert.Equal(t, int64(2), *result.Listing.BuyerID)

	m.user.AssertExpectations(t)
	m.ledger.AssertExpectations(t)
	m.listing.AssertExpectations(t)
	m.uow.AssertCalled(t, "Commit")
}

func TestMarketService_GetListing_NotFound(t *testing.T) {
	m := newTestMocks()
	svc := NewMarketService(m.factory)
	ctx := context.Background()

	m.listing.On("GetByID", ctx, int64(999)).Return(nil, nil)

	_, err := svc.GetListing(ctx, 999)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestMarketService_ListLiveListings(t *testing.T) {
	m := newTestMocks()
	svc := NewMarketService(m.factory)
	ctx := context.Background()

	listings := []*models.Listing{liveListing()}
	m.listing.On("ListLive", ctx, 25).Return(listings, nil)

	got, err := svc.ListLiveListings(ctx, 25)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
