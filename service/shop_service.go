package service

import (
	"context"
	"fmt"

	"artificer/events"
	"artificer/models"
)

// BaseRollPrice is the fixed cost of one shop roll in minor units.
const BaseRollPrice = 100

// The pity timer guarantees a recipe drop within a bounded random number of
// rolls: each re-arm picks a uniform offset in [dropWindowMin, dropWindowMax].
const (
	dropWindowMin = 4
	dropWindowMax = 8
)

// Recipe drop tier weights, out of 1000: 13 for tier 5, then cumulative
// 50 for tier 4 and 200 for tier 3, remainder tier 2.
const (
	tier5Weight = 13
	tier4Weight = 50
	tier3Weight = 200
)

type shopService struct {
	uowFactory UnitOfWorkFactory
	rng        Rand
}

// NewShopService creates a new shop service
func NewShopService(uowFactory UnitOfWorkFactory, rng Rand) ShopService {
	return &shopService{
		uowFactory: uowFactory,
		rng:        rng,
	}
}

func (s *shopService) BuyBaseRoll(ctx context.Context, userID int64) (*models.GachaResult, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	// Row lock: the purchase counter and pity threshold are read, advanced
	// and written back, so racing rolls for the same user must serialize
	user, err := uow.UserRepository().GetByIDForUpdate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %d: %w", userID, models.ErrNotFound)
	}

	if user.Balance < BaseRollPrice {
		return nil, fmt.Errorf("have %d, need %d: %w", user.Balance, BaseRollPrice, models.ErrInsufficientFunds)
	}

	if err := uow.UserRepository().DeductBalance(ctx, userID, BaseRollPrice); err != nil {
		return nil, fmt.Errorf("failed to charge roll price: %w", err)
	}

	newBalance := user.Balance - BaseRollPrice
	entry := &models.LedgerEntry{
		UserID:        userID,
		BalanceBefore: user.Balance,
		BalanceAfter:  newBalance,
		ChangeAmount:  -BaseRollPrice,
		Reason:        models.LedgerReasonShopBuyT1,
	}
	if err := RecordLedgerEntry(ctx, uow, entry); err != nil {
		return nil, fmt.Errorf("failed to record roll charge: %w", err)
	}

	// Arm the pity timer on first use only. It is re-armed again after a
	// drop, never on an ordinary non-drop purchase.
	nextDrop := user.NextRecipeDrop
	if nextDrop == nil {
		t := user.ShopPurchases + s.rollDropOffset()
		nextDrop = &t
	}

	purchases := user.ShopPurchases + 1

	result := &models.GachaResult{
		PurchaseCount: purchases,
		NewBalance:    newBalance,
	}

	if purchases >= *nextDrop {
		recipe, err := s.rollRecipe(ctx, uow)
		if err != nil {
			return nil, err
		}

		if err := uow.HoldingRepository().Credit(ctx, userID, models.TargetKindRecipe, recipe.ID, 1); err != nil {
			return nil, fmt.Errorf("failed to credit recipe: %w", err)
		}

		t := purchases + s.rollDropOffset()
		nextDrop = &t
		result.Recipe = recipe

		uow.EventBus().Publish(events.RecipeDropEvent{
			UserID:        userID,
			RecipeID:      recipe.ID,
			PurchaseCount: purchases,
		})
	} else {
		item, err := s.rollBaseItem(ctx, uow)
		if err != nil {
			return nil, err
		}

		if err := uow.HoldingRepository().Credit(ctx, userID, models.TargetKindItem, item.ID, 1); err != nil {
			return nil, fmt.Errorf("failed to credit item: %w", err)
		}

		result.Item = item

		uow.EventBus().Publish(events.ItemGrantedEvent{
			UserID: userID,
			ItemID: item.ID,
		})
	}

	if err := uow.UserRepository().UpdateShopProgress(ctx, userID, purchases, nextDrop); err != nil {
		return nil, fmt.Errorf("failed to update shop progress: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return result, nil
}

// rollDropOffset draws a uniform integer in [dropWindowMin, dropWindowMax]
func (s *shopService) rollDropOffset() int64 {
	return int64(dropWindowMin + s.rng.Intn(dropWindowMax-dropWindowMin+1))
}

// rollBaseItem picks a uniformly random tier-1 item
func (s *shopService) rollBaseItem(ctx context.Context, uow UnitOfWork) (*models.Item, error) {
	items, err := uow.CatalogRepository().GetItemsByTier(ctx, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to load tier-1 items: %w", err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("no tier-1 items in catalog: %w", models.ErrNotFound)
	}

	return items[s.rng.Intn(len(items))], nil
}

// rollRecipe performs the tiered weighted draw: a roll in [1,1000] maps to
// tier 5/4/3/2 by the cumulative weights, then falls back down a tier when
// the chosen tier has no catalog entries, and finally picks uniformly
// within the tier.
func (s *shopService) rollRecipe(ctx context.Context, uow UnitOfWork) (*models.Recipe, error) {
	roll := s.rng.Intn(1000) + 1

	var tier int
	switch {
	case roll <= tier5Weight:
		tier = 5
	case roll <= tier4Weight:
		tier = 4
	case roll <= tier3Weight:
		tier = 3
	default:
		tier = 2
	}

	for t := tier; t >= 2; t-- {
		recipes, err := uow.CatalogRepository().GetRecipesByTier(ctx, t)
		if err != nil {
			return nil, fmt.Errorf("failed to load tier-%d recipes: %w", t, err)
		}
		if len(recipes) > 0 {
			return recipes[s.rng.Intn(len(recipes))], nil
		}
	}

	return nil, fmt.Errorf("no recipes in catalog: %w", models.ErrNotFound)
}
