package repository

import (
	"context"
	"fmt"

	"artificer/database"
	"artificer/models"
	"github.com/jackc/pgx/v5"
)

// HoldingRepository implements the service.HoldingRepository interface.
// It is the inventory transfer primitive: credits and debits run on the
// caller's transaction and never open one of their own.
type HoldingRepository struct {
	q queryable
}

// NewHoldingRepository creates a new holding repository
func NewHoldingRepository(db *database.DB) *HoldingRepository {
	return &HoldingRepository{q: db.Pool}
}

// newHoldingRepositoryWithTx creates a new holding repository with a transaction
func newHoldingRepositoryWithTx(tx queryable) *HoldingRepository {
	return &HoldingRepository{q: tx}
}

func holdingTable(kind models.TargetKind) (table, column string, err error) {
	switch kind {
	case models.TargetKindItem:
		return "user_items", "item_id", nil
	case models.TargetKindRecipe:
		return "user_recipes", "recipe_id", nil
	default:
		return "", "", fmt.Errorf("kind %q: %w", kind, models.ErrInvalidTarget)
	}
}

// Credit increases the holding for the target by qty, creating the row if absent
func (r *HoldingRepository) Credit(ctx context.Context, userID int64, kind models.TargetKind, targetID int64, qty int64) error {
	if qty <= 0 {
		return fmt.Errorf("quantity must be positive")
	}

	table, column, err := holdingTable(kind)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, %s, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, %s)
		DO UPDATE SET quantity = %s.quantity + $3
	`, table, column, column, table)

	if _, err := r.q.Exec(ctx, query, userID, targetID, qty); err != nil {
		return fmt.Errorf("failed to credit %s %d to user %d: %w", kind, targetID, userID, err)
	}

	return nil
}

// Debit decreases the holding for the target by qty. The conditional update
// keeps racing debits from committing a negative quantity.
func (r *HoldingRepository) Debit(ctx context.Context, userID int64, kind models.TargetKind, targetID int64, qty int64) error {
	if qty <= 0 {
		return fmt.Errorf("quantity must be positive")
	}

	table, column, err := holdingTable(kind)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET quantity = quantity - $3
		WHERE user_id = $1 AND %s = $2 AND quantity >= $3
	`, table, column)

	result, err := r.q.Exec(ctx, query, userID, targetID, qty)
	if err != nil {
		return fmt.Errorf("failed to debit %s %d from user %d: %w", kind, targetID, userID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("%s %d for user %d: %w", kind, targetID, userID, models.ErrInsufficientStock)
	}

	return nil
}

// GetItemQuantity returns the quantity of an item held by a user
func (r *HoldingRepository) GetItemQuantity(ctx context.Context, userID int64, itemID int64) (int64, error) {
	query := `SELECT quantity FROM user_items WHERE user_id = $1 AND item_id = $2`

	var qty int64
	err := r.q.QueryRow(ctx, query, userID, itemID).Scan(&qty)
	if err == pgx.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get item quantity for user %d: %w", userID, err)
	}

	return qty, nil
}

// GetRecipeCharges returns the remaining charges of a recipe held by a user
func (r *HoldingRepository) GetRecipeCharges(ctx context.Context, userID int64, recipeID int64) (int64, error) {
	query := `SELECT quantity FROM user_recipes WHERE user_id = $1 AND recipe_id = $2`

	var qty int64
	err := r.q.QueryRow(ctx, query, userID, recipeID).Scan(&qty)
	if err == pgx.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get recipe charges for user %d: %w", userID, err)
	}

	return qty, nil
}

// GetDistinctItemsByTier returns holdings with quantity > 0 for items of the
// given tier. Ordered by item ID so selection among qualifying items is
// deterministic for a given set of holdings.
func (r *HoldingRepository) GetDistinctItemsByTier(ctx context.Context, userID int64, tier int) ([]*models.UserItemHolding, error) {
	query := `
		SELECT ui.user_id, ui.item_id, ui.quantity
		FROM user_items ui
		JOIN items i ON i.id = ui.item_id
		WHERE ui.user_id = $1 AND i.tier = $2 AND ui.quantity > 0
		ORDER BY ui.item_id
	`

	rows, err := r.q.Query(ctx, query, userID, tier)
	if err != nil {
		return nil, fmt.Errorf("failed to get tier %d holdings for user %d: %w", tier, userID, err)
	}
	defer rows.Close()

	var holdings []*models.UserItemHolding
	for rows.Next() {
		var h models.UserItemHolding
		if err := rows.Scan(&h.UserID, &h.ItemID, &h.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan holding: %w", err)
		}
		holdings = append(holdings, &h)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate holdings: %w", err)
	}

	return holdings, nil
}

// IncrementRecipeAttempts bumps the persisted attempt counter for a held recipe
func (r *HoldingRepository) IncrementRecipeAttempts(ctx context.Context, userID int64, recipeID int64) error {
	query := `
		UPDATE user_recipes
		SET attempts = attempts + 1
		WHERE user_id = $1 AND recipe_id = $2
	`

	if _, err := r.q.Exec(ctx, query, userID, recipeID); err != nil {
		return fmt.Errorf("failed to increment attempts for user %d recipe %d: %w", userID, recipeID, err)
	}

	return nil
}
