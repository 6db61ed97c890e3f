package models

// TargetKind distinguishes whether an inventory operation or listing
// refers to an item or a recipe.
type TargetKind string

const (
	TargetKindItem   TargetKind = "item"
	TargetKindRecipe TargetKind = "recipe"
)

// Valid reports whether the kind is one of the two known kinds.
func (k TargetKind) Valid() bool {
	return k == TargetKindItem || k == TargetKindRecipe
}

// UserItemHolding is the quantity of one item owned by one user.
// Zero-quantity rows may exist; read paths treat them as absent.
type UserItemHolding struct {
	UserID   int64 `db:"user_id"`
	ItemID   int64 `db:"item_id"`
	Quantity int64 `db:"quantity"`
}

// UserRecipeHolding is the number of remaining charges of one recipe owned
// by one user. Attempts counts craft attempts and is persisted but never
// read by engine logic.
type UserRecipeHolding struct {
	UserID   int64 `db:"user_id"`
	RecipeID int64 `db:"recipe_id"`
	Quantity int64 `db:"quantity"`
	Attempts int64 `db:"attempts"`
}
