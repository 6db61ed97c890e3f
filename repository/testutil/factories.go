package testutil

import (
	"context"
	"testing"
	"time"

	"artificer/database"
	"artificer/models"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
)

// CreateTestUser inserts a user row with the given balance and returns it
func CreateTestUser(t *testing.T, db *database.DB, userID int64, balance int64) *models.User {
	ctx := context.Background()

	var user models.User
	err := db.QueryRow(ctx, `
		INSERT INTO users (id, name, balance)
		VALUES ($1, $2, $3)
		RETURNING id, name, balance, shop_purchases, next_recipe_drop, created_at, updated_at
	`, userID, "test-user", balance).Scan(
		&user.ID, &user.Name, &user.Balance, &user.ShopPurchases,
		&user.NextRecipeDrop, &user.CreatedAt, &user.UpdatedAt,
	)
	require.NoError(t, err)

	return &user
}

// InsertTestItem inserts a catalog item and returns its ID. The catalog is
// owned by the seeding process in production, so tests write it directly.
func InsertTestItem(t *testing.T, db *database.DB, code string, tier int) int64 {
	ctx := context.Background()

	var id int64
	err := db.QueryRow(ctx, `
		INSERT INTO items (code, name, tier)
		VALUES ($1, $2, $3)
		RETURNING id
	`, code, code, tier).Scan(&id)
	require.NoError(t, err)

	return id
}

// InsertTestRecipe inserts a recipe with its ingredient list in one
// transaction and returns the recipe ID
func InsertTestRecipe(t *testing.T, db *database.DB, code string, tier int, outputItemID int64, ingredients []models.RecipeIngredient) int64 {
	ctx := context.Background()

	var id int64
	err := db.WithTransaction(ctx, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, `
			INSERT INTO recipes (code, name, tier, output_item_id)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`, code, code, tier, outputItemID).Scan(&id); err != nil {
			return err
		}

		for _, ing := range ingredients {
			if _, err := tx.Exec(ctx, `
				INSERT INTO recipe_ingredients (recipe_id, item_id, quantity, position)
				VALUES ($1, $2, $3, $4)
			`, id, ing.ItemID, ing.Quantity, ing.Position); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	return id
}

// GiveItem sets a user's holding of an item to the given quantity
func GiveItem(t *testing.T, db *database.DB, userID, itemID, qty int64) {
	ctx := context.Background()

	_, err := db.Exec(ctx, `
		INSERT INTO user_items (user_id, item_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, item_id) DO UPDATE SET quantity = $3
	`, userID, itemID, qty)
	require.NoError(t, err)
}

// GiveRecipe sets a user's charges of a recipe to the given quantity
func GiveRecipe(t *testing.T, db *database.DB, userID, recipeID, qty int64) {
	ctx := context.Background()

	_, err := db.Exec(ctx, `
		INSERT INTO user_recipes (user_id, recipe_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, recipe_id) DO UPDATE SET quantity = $3
	`, userID, recipeID, qty)
	require.NoError(t, err)
}

// CreateTestLedgerEntry builds an in-memory ledger entry for repository tests
func CreateTestLedgerEntry(userID int64, before, after int64, reason models.LedgerReason) *models.LedgerEntry {
	return &models.LedgerEntry{
		UserID:        userID,
		BalanceBefore: before,
		BalanceAfter:  after,
		ChangeAmount:  after - before,
		Reason:        reason,
		Metadata: map[string]any{
			"test": true,
		},
		CreatedAt: time.Now(),
	}
}
