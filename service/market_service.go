package service

import (
	"context"
	"fmt"
	"time"

	"artificer/config"
	"artificer/events"
	"artificer/models"
)

// Listings stay purchasable for seven days; expiry is enforced by an
// external sweep, the engine only stamps the end time.
const listingLifetime = 7 * 24 * time.Hour

// listingFeeDivisor sets the up-front listing fee to 1% of the asking price.
const listingFeeDivisor = 100

type marketService struct {
	uowFactory UnitOfWorkFactory
}

// NewMarketService creates a new market service
func NewMarketService(uowFactory UnitOfWorkFactory) MarketService {
	return &marketService{
		uowFactory: uowFactory,
	}
}

func (s *marketService) CreateListing(ctx context.Context, sellerID int64, kind models.TargetKind, targetID int64, qty int64, price int64) (*models.Listing, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("kind %q: %w", kind, models.ErrInvalidTarget)
	}
	if qty <= 0 {
		return nil, fmt.Errorf("quantity must be positive")
	}
	if price <= 0 {
		return nil, fmt.Errorf("price %d: %w", price, models.ErrInvalidPrice)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	if err := s.checkTargetExists(ctx, uow, kind, targetID); err != nil {
		return nil, err
	}

	seller, err := uow.UserRepository().GetByID(ctx, sellerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get seller: %w", err)
	}
	if seller == nil {
		return nil, fmt.Errorf("user %d: %w", sellerID, models.ErrNotFound)
	}

	// The listing fee is charged up front and never refunded, even when
	// the listing is later canceled
	fee := price / listingFeeDivisor
	if seller.Balance < fee {
		return nil, fmt.Errorf("listing fee %d, have %d: %w", fee, seller.Balance, models.ErrInsufficientFunds)
	}

	if fee > 0 {
		if err := uow.UserRepository().DeductBalance(ctx, sellerID, fee); err != nil {
			return nil, fmt.Errorf("failed to charge listing fee: %w", err)
		}
	}

	// Goods move into escrow in the same transaction; a short stock rolls
	// the fee charge back with everything else
	if err := uow.HoldingRepository().Debit(ctx, sellerID, kind, targetID, qty); err != nil {
		return nil, fmt.Errorf("failed to withdraw goods: %w", err)
	}

	now := time.Now().UTC()
	listing := &models.Listing{
		SellerID: sellerID,
		Kind:     kind,
		TargetID: targetID,
		Quantity: qty,
		Price:    price,
		FeeBps:   config.Get().ListingFeeBps,
		EndTime:  now.Add(listingLifetime),
	}

	if err := uow.ListingRepository().Create(ctx, listing); err != nil {
		return nil, fmt.Errorf("failed to create listing: %w", err)
	}

	escrow := &models.EscrowRecord{
		ListingID: listing.ID,
		OwnerID:   sellerID,
		Kind:      kind,
		TargetID:  targetID,
		Quantity:  qty,
	}
	if err := uow.ListingRepository().CreateEscrow(ctx, escrow); err != nil {
		return nil, fmt.Errorf("failed to create escrow: %w", err)
	}

	if fee > 0 {
		relatedID := listing.ID
		relatedType := models.RelatedTypeListing
		entry := &models.LedgerEntry{
			UserID:        sellerID,
			BalanceBefore: seller.Balance,
			BalanceAfter:  seller.Balance - fee,
			ChangeAmount:  -fee,
			Reason:        models.LedgerReasonSaleListFee,
			RelatedID:     &relatedID,
			RelatedType:   &relatedType,
		}
		if err := RecordLedgerEntry(ctx, uow, entry); err != nil {
			return nil, fmt.Errorf("failed to record listing fee: %w", err)
		}
	}

	uow.EventBus().Publish(events.ListingCreatedEvent{
		ListingID: listing.ID,
		SellerID:  sellerID,
		Kind:      kind,
		TargetID:  targetID,
		Quantity:  qty,
		Price:     price,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return listing, nil
}

func (s *marketService) CancelListing(ctx context.Context, requesterID int64, listingID int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	listing, err := uow.ListingRepository().GetByIDForUpdate(ctx, listingID)
	if err != nil {
		return fmt.Errorf("failed to get listing: %w", err)
	}
	if listing == nil {
		return fmt.Errorf("listing %d: %w", listingID, models.ErrNotFound)
	}

	if listing.SellerID != requesterID {
		return fmt.Errorf("listing %d belongs to user %d: %w", listingID, listing.SellerID, models.ErrForbidden)
	}
	if listing.Status != models.ListingStatusLive {
		return fmt.Errorf("listing %d is %s: %w", listingID, listing.Status, models.ErrListingNotLive)
	}

	escrow, err := uow.ListingRepository().GetEscrowByListing(ctx, listingID)
	if err != nil {
		return fmt.Errorf("failed to get escrow: %w", err)
	}
	if escrow == nil {
		return fmt.Errorf("escrow for listing %d: %w", listingID, models.ErrNotFound)
	}

	// The escrowed goods return to the seller; the listing fee does not
	if err := uow.HoldingRepository().Credit(ctx, escrow.OwnerID, escrow.Kind, escrow.TargetID, escrow.Quantity); err != nil {
		return fmt.Errorf("failed to return goods: %w", err)
	}

	if err := uow.ListingRepository().MarkCanceled(ctx, listingID); err != nil {
		return err
	}

	if err := uow.ListingRepository().DeleteEscrow(ctx, listingID); err != nil {
		return fmt.Errorf("failed to delete escrow: %w", err)
	}

	uow.EventBus().Publish(events.ListingCanceledEvent{
		ListingID: listingID,
		SellerID:  listing.SellerID,
	})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (s *marketService) BuyListing(ctx context.Context, buyerID int64, listingID int64) (*models.PurchaseResult, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	// Row lock so a racing buy and cancel serialize; the loser then sees
	// the listing out of live
	listing, err := uow.ListingRepository().GetByIDForUpdate(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}
	if listing == nil {
		return nil, fmt.Errorf("listing %d: %w", listingID, models.ErrNotFound)
	}

	if listing.Status != models.ListingStatusLive {
		return nil, fmt.Errorf("listing %d is %s: %w", listingID, listing.Status, models.ErrListingNotLive)
	}
	if listing.Price <= 0 {
		return nil, fmt.Errorf("listing %d price %d: %w", listingID, listing.Price, models.ErrInvalidPrice)
	}
	if listing.SellerID == buyerID {
		return nil, fmt.Errorf("listing %d: %w", listingID, models.ErrSelfPurchase)
	}

	buyer, err := uow.UserRepository().GetByID(ctx, buyerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get buyer: %w", err)
	}
	if buyer == nil {
		return nil, fmt.Errorf("user %d: %w", buyerID, models.ErrNotFound)
	}
	if buyer.Balance < listing.Price {
		return nil, fmt.Errorf("have %d, need %d: %w", buyer.Balance, listing.Price, models.ErrInsufficientFunds)
	}

	seller, err := uow.UserRepository().GetByID(ctx, listing.SellerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get seller: %w", err)
	}
	if seller == nil {
		return nil, fmt.Errorf("user %d: %w", listing.SellerID, models.ErrNotFound)
	}

	// The fee stays with the system: buyer pays the full price, seller
	// receives the remainder
	fee := int64(listing.FeeBps) * listing.Price / 10000
	net := listing.Price - fee

	relatedID := listing.ID
	relatedType := models.RelatedTypeListing

	if err := uow.UserRepository().DeductBalance(ctx, buyerID, listing.Price); err != nil {
		return nil, fmt.Errorf("failed to charge buyer: %w", err)
	}

	buyerEntry := &models.LedgerEntry{
		UserID:        buyerID,
		BalanceBefore: buyer.Balance,
		BalanceAfter:  buyer.Balance - listing.Price,
		ChangeAmount:  -listing.Price,
		Reason:        models.LedgerReasonSaleBuy,
		RelatedID:     &relatedID,
		RelatedType:   &relatedType,
	}
	if err := RecordLedgerEntry(ctx, uow, buyerEntry); err != nil {
		return nil, fmt.Errorf("failed to record purchase: %w", err)
	}

	if net > 0 {
		if err := uow.UserRepository().AddBalance(ctx, listing.SellerID, net); err != nil {
			return nil, fmt.Errorf("failed to credit seller: %w", err)
		}

		sellerEntry := &models.LedgerEntry{
			UserID:        listing.SellerID,
			BalanceBefore: seller.Balance,
			BalanceAfter:  seller.Balance + net,
			ChangeAmount:  net,
			Reason:        models.LedgerReasonSaleEarn,
			RelatedID:     &relatedID,
			RelatedType:   &relatedType,
		}
		if err := RecordLedgerEntry(ctx, uow, sellerEntry); err != nil {
			return nil, fmt.Errorf("failed to record sale earnings: %w", err)
		}
	}

	escrow, err := uow.ListingRepository().GetEscrowByListing(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get escrow: %w", err)
	}
	if escrow == nil {
		return nil, fmt.Errorf("escrow for listing %d: %w", listingID, models.ErrNotFound)
	}

	if err := uow.HoldingRepository().Credit(ctx, buyerID, escrow.Kind, escrow.TargetID, escrow.Quantity); err != nil {
		return nil, fmt.Errorf("failed to deliver goods: %w", err)
	}

	if err := uow.ListingRepository().MarkPaid(ctx, listingID, buyerID, listing.Price); err != nil {
		return nil, err
	}

	if err := uow.ListingRepository().DeleteEscrow(ctx, listingID); err != nil {
		return nil, fmt.Errorf("failed to delete escrow: %w", err)
	}

	uow.EventBus().Publish(events.ListingSoldEvent{
		ListingID: listingID,
		SellerID:  listing.SellerID,
		BuyerID:   buyerID,
		Price:     listing.Price,
		Fee:       fee,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	listing.Status = models.ListingStatusPaid
	listing.BuyerID = &buyerID
	soldPrice := listing.Price
	listing.SoldPrice = &soldPrice

	return &models.PurchaseResult{
		Listing:         listing,
		Fee:             fee,
		SellerNet:       net,
		BuyerNewBalance: buyer.Balance - listing.Price,
	}, nil
}

func (s *marketService) GetListing(ctx context.Context, listingID int64) (*models.Listing, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	listing, err := uow.ListingRepository().GetByID(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}
	if listing == nil {
		return nil, fmt.Errorf("listing %d: %w", listingID, models.ErrNotFound)
	}

	return listing, nil
}

func (s *marketService) ListLiveListings(ctx context.Context, limit int) ([]*models.Listing, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	listings, err := uow.ListingRepository().ListLive(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list live listings: %w", err)
	}

	return listings, nil
}

func (s *marketService) checkTargetExists(ctx context.Context, uow UnitOfWork, kind models.TargetKind, targetID int64) error {
	switch kind {
	case models.TargetKindItem:
		item, err := uow.CatalogRepository().GetItemByID(ctx, targetID)
		if err != nil {
			return fmt.Errorf("failed to get item: %w", err)
		}
		if item == nil {
			return fmt.Errorf("item %d: %w", targetID, models.ErrNotFound)
		}
	case models.TargetKindRecipe:
		recipe, err := uow.CatalogRepository().GetRecipeByID(ctx, targetID)
		if err != nil {
			return fmt.Errorf("failed to get recipe: %w", err)
		}
		if recipe == nil {
			return fmt.Errorf("recipe %d: %w", targetID, models.ErrNotFound)
		}
	}
	return nil
}
