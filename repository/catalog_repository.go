package repository

import (
	"context"
	"fmt"

	"artificer/database"
	"artificer/models"
	"github.com/jackc/pgx/v5"
)

// CatalogRepository implements the service.CatalogRepository interface.
// The catalog is seeded externally; everything here is read-only except
// the bonus-gold accessor.
type CatalogRepository struct {
	q queryable
}

// NewCatalogRepository creates a new catalog repository
func NewCatalogRepository(db *database.DB) *CatalogRepository {
	return &CatalogRepository{q: db.Pool}
}

// newCatalogRepositoryWithTx creates a new catalog repository with a transaction
func newCatalogRepositoryWithTx(tx queryable) *CatalogRepository {
	return &CatalogRepository{q: tx}
}

const itemColumns = "id, code, name, tier, odd_icon, bonus_gold"

func scanItem(row pgx.Row) (*models.Item, error) {
	var item models.Item
	err := row.Scan(
		&item.ID,
		&item.Code,
		&item.Name,
		&item.Tier,
		&item.OddIcon,
		&item.BonusGold,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// GetItemByID retrieves an item by ID, nil when absent
func (r *CatalogRepository) GetItemByID(ctx context.Context, itemID int64) (*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1`

	item, err := scanItem(r.q.QueryRow(ctx, query, itemID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item %d: %w", itemID, err)
	}

	return item, nil
}

// GetItemByCode retrieves an item by its unique code, nil when absent
func (r *CatalogRepository) GetItemByCode(ctx context.Context, code string) (*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE code = $1`

	item, err := scanItem(r.q.QueryRow(ctx, query, code))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item %q: %w", code, err)
	}

	return item, nil
}

// GetItemsByTier returns all items of a tier, ordered by ID
func (r *CatalogRepository) GetItemsByTier(ctx context.Context, tier int) ([]*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE tier = $1 ORDER BY id`

	rows, err := r.q.Query(ctx, query, tier)
	if err != nil {
		return nil, fmt.Errorf("failed to get items for tier %d: %w", tier, err)
	}
	defer rows.Close()

	var items []*models.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}

	return items, nil
}

// GetRecipeByID retrieves a recipe with its ingredient list, nil when absent
func (r *CatalogRepository) GetRecipeByID(ctx context.Context, recipeID int64) (*models.Recipe, error) {
	query := `SELECT id, code, name, tier, output_item_id FROM recipes WHERE id = $1`

	var recipe models.Recipe
	err := r.q.QueryRow(ctx, query, recipeID).Scan(
		&recipe.ID,
		&recipe.Code,
		&recipe.Name,
		&recipe.Tier,
		&recipe.OutputItemID,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get recipe %d: %w", recipeID, err)
	}

	if err := r.loadIngredients(ctx, &recipe); err != nil {
		return nil, err
	}

	return &recipe, nil
}

// GetRecipeByCode retrieves a recipe by its unique code, nil when absent
func (r *CatalogRepository) GetRecipeByCode(ctx context.Context, code string) (*models.Recipe, error) {
	query := `SELECT id, code, name, tier, output_item_id FROM recipes WHERE code = $1`

	var recipe models.Recipe
	err := r.q.QueryRow(ctx, query, code).Scan(
		&recipe.ID,
		&recipe.Code,
		&recipe.Name,
		&recipe.Tier,
		&recipe.OutputItemID,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get recipe %q: %w", code, err)
	}

	if err := r.loadIngredients(ctx, &recipe); err != nil {
		return nil, err
	}

	return &recipe, nil
}

// GetRecipesByTier returns all recipes of a tier, ordered by ID.
// Ingredient lists are not loaded; callers needing them fetch the recipe
// by ID.
func (r *CatalogRepository) GetRecipesByTier(ctx context.Context, tier int) ([]*models.Recipe, error) {
	query := `SELECT id, code, name, tier, output_item_id FROM recipes WHERE tier = $1 ORDER BY id`

	rows, err := r.q.Query(ctx, query, tier)
	if err != nil {
		return nil, fmt.Errorf("failed to get recipes for tier %d: %w", tier, err)
	}
	defer rows.Close()

	var recipes []*models.Recipe
	for rows.Next() {
		var recipe models.Recipe
		err := rows.Scan(
			&recipe.ID,
			&recipe.Code,
			&recipe.Name,
			&recipe.Tier,
			&recipe.OutputItemID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recipe: %w", err)
		}
		recipes = append(recipes, &recipe)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recipes: %w", err)
	}

	return recipes, nil
}

// UpdateItemBonusGold sets the bonus-gold attribute of an item
func (r *CatalogRepository) UpdateItemBonusGold(ctx context.Context, itemID int64, bonusGold int64) error {
	query := `UPDATE items SET bonus_gold = $1 WHERE id = $2`

	result, err := r.q.Exec(ctx, query, bonusGold, itemID)
	if err != nil {
		return fmt.Errorf("failed to update bonus gold for item %d: %w", itemID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("item %d: %w", itemID, models.ErrNotFound)
	}

	return nil
}

func (r *CatalogRepository) loadIngredients(ctx context.Context, recipe *models.Recipe) error {
	query := `
		SELECT item_id, quantity, position
		FROM recipe_ingredients
		WHERE recipe_id = $1
		ORDER BY position, item_id
	`

	rows, err := r.q.Query(ctx, query, recipe.ID)
	if err != nil {
		return fmt.Errorf("failed to get ingredients for recipe %d: %w", recipe.ID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var ing models.RecipeIngredient
		if err := rows.Scan(&ing.ItemID, &ing.Quantity, &ing.Position); err != nil {
			return fmt.Errorf("failed to scan ingredient: %w", err)
		}
		recipe.Ingredients = append(recipe.Ingredients, ing)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate ingredients: %w", err)
	}

	return nil
}
