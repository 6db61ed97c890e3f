package service

import (
	"context"
	"fmt"

	"artificer/events"
	"artificer/models"
)

// CraftSuccessProbability is the fixed chance that a validated craft
// attempt produces the recipe's output item.
const CraftSuccessProbability = 0.90

// ArtefactDistinctItems is the number of distinct tier-5 items consumed by
// one artefact assembly.
const (
	ArtefactDistinctItems = 10
	artefactSourceTier    = 5
)

type craftService struct {
	uowFactory UnitOfWorkFactory
	rng        Rand
}

// NewCraftService creates a new craft service
func NewCraftService(uowFactory UnitOfWorkFactory, rng Rand) CraftService {
	return &craftService{
		uowFactory: uowFactory,
		rng:        rng,
	}
}

func (s *craftService) Craft(ctx context.Context, userID int64, recipeID int64) (*models.CraftResult, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	recipe, err := uow.CatalogRepository().GetRecipeByID(ctx, recipeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}
	if recipe == nil {
		return nil, fmt.Errorf("recipe %d: %w", recipeID, models.ErrRecipeNotFound)
	}

	charges, err := uow.HoldingRepository().GetRecipeCharges(ctx, userID, recipeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get recipe charges: %w", err)
	}
	if charges < 1 {
		return nil, fmt.Errorf("recipe %d: %w", recipeID, models.ErrRecipeNotOwned)
	}

	// Validate every ingredient before touching any holding, so a short
	// stock consumes nothing
	for _, ing := range recipe.Ingredients {
		qty, err := uow.HoldingRepository().GetItemQuantity(ctx, userID, ing.ItemID)
		if err != nil {
			return nil, fmt.Errorf("failed to get ingredient quantity: %w", err)
		}
		if qty < ing.Quantity {
			return nil, fmt.Errorf("item %d (have %d, need %d): %w",
				ing.ItemID, qty, ing.Quantity, models.ErrMissingMaterials)
		}
	}

	// Materials are consumed once validation passes, win or lose
	for _, ing := range recipe.Ingredients {
		if err := uow.HoldingRepository().Debit(ctx, userID, models.TargetKindItem, ing.ItemID, ing.Quantity); err != nil {
			return nil, fmt.Errorf("failed to consume ingredient: %w", err)
		}
	}

	if err := uow.HoldingRepository().IncrementRecipeAttempts(ctx, userID, recipeID); err != nil {
		return nil, fmt.Errorf("failed to count attempt: %w", err)
	}

	succeeded := s.rng.Float64() < CraftSuccessProbability

	result := &models.CraftResult{Succeeded: succeeded}

	if succeeded {
		output, err := uow.CatalogRepository().GetItemByID(ctx, recipe.OutputItemID)
		if err != nil {
			return nil, fmt.Errorf("failed to get output item: %w", err)
		}
		if output == nil {
			return nil, fmt.Errorf("output item %d: %w", recipe.OutputItemID, models.ErrNotFound)
		}

		if err := uow.HoldingRepository().Credit(ctx, userID, models.TargetKindItem, output.ID, 1); err != nil {
			return nil, fmt.Errorf("failed to credit output: %w", err)
		}

		// The charge is only ever spent on success
		if err := uow.HoldingRepository().Debit(ctx, userID, models.TargetKindRecipe, recipeID, 1); err != nil {
			return nil, fmt.Errorf("failed to consume recipe charge: %w", err)
		}

		result.Output = output
		result.ChargesLeft = charges - 1
	} else {
		scrap, err := uow.CatalogRepository().GetItemByCode(ctx, models.ItemCodeScrap)
		if err != nil {
			return nil, fmt.Errorf("failed to get consolation item: %w", err)
		}
		if scrap == nil {
			return nil, fmt.Errorf("consolation item %q: %w", models.ItemCodeScrap, models.ErrNotFound)
		}

		if err := uow.HoldingRepository().Credit(ctx, userID, models.TargetKindItem, scrap.ID, 1); err != nil {
			return nil, fmt.Errorf("failed to credit consolation: %w", err)
		}

		result.Consolation = scrap
		result.ChargesLeft = charges
	}

	eventItemID := int64(0)
	if result.Output != nil {
		eventItemID = result.Output.ID
	} else if result.Consolation != nil {
		eventItemID = result.Consolation.ID
	}
	uow.EventBus().Publish(events.CraftResolvedEvent{
		UserID:    userID,
		RecipeID:  recipeID,
		Succeeded: succeeded,
		ItemID:    eventItemID,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return result, nil
}

func (s *craftService) AssembleArtefact(ctx context.Context, userID int64) (*models.ArtefactResult, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	holdings, err := uow.HoldingRepository().GetDistinctItemsByTier(ctx, userID, artefactSourceTier)
	if err != nil {
		return nil, fmt.Errorf("failed to get tier-%d holdings: %w", artefactSourceTier, err)
	}
	if len(holdings) < ArtefactDistinctItems {
		return nil, fmt.Errorf("have %d distinct, need %d: %w",
			len(holdings), ArtefactDistinctItems, models.ErrInsufficientDistinctItems)
	}

	// Holdings arrive ordered by item ID, so for the same inventory the
	// same ten types are consumed
	consumed := make([]int64, 0, ArtefactDistinctItems)
	for _, h := range holdings[:ArtefactDistinctItems] {
		if err := uow.HoldingRepository().Debit(ctx, userID, models.TargetKindItem, h.ItemID, 1); err != nil {
			return nil, fmt.Errorf("failed to consume item %d: %w", h.ItemID, err)
		}
		consumed = append(consumed, h.ItemID)
	}

	artefact, err := uow.CatalogRepository().GetItemByCode(ctx, models.ItemCodeArtefact)
	if err != nil {
		return nil, fmt.Errorf("failed to get artefact item: %w", err)
	}
	if artefact == nil {
		return nil, fmt.Errorf("artefact item %q: %w", models.ItemCodeArtefact, models.ErrNotFound)
	}

	if err := uow.HoldingRepository().Credit(ctx, userID, models.TargetKindItem, artefact.ID, 1); err != nil {
		return nil, fmt.Errorf("failed to credit artefact: %w", err)
	}

	uow.EventBus().Publish(events.ArtefactForgedEvent{
		UserID:    userID,
		ItemID:    artefact.ID,
		BonusGold: artefact.BonusGold,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.ArtefactResult{
		Artefact:        artefact,
		BonusGold:       artefact.BonusGold,
		ConsumedItemIDs: consumed,
	}, nil
}
