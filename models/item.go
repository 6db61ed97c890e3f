package models

// Well-known catalog codes the engine depends on.
const (
	// ItemCodeScrap is the consolation item granted on a failed craft.
	ItemCodeScrap = "scrap"
	// ItemCodeArtefact is the singular tier-6 item produced by assembly.
	ItemCodeArtefact = "artefact"
)

// Item is a catalog entry. The catalog is seeded externally and read-only
// to the engine, except for the BonusGold attribute which is settable
// through the admin accessor.
type Item struct {
	ID        int64  `db:"id"`
	Code      string `db:"code"`
	Name      string `db:"name"`
	Tier      int    `db:"tier"` // 1 (raw material) through 6 (artefact)
	OddIcon   bool   `db:"odd_icon"`
	BonusGold int64  `db:"bonus_gold"` // only meaningful for the artefact
}

// RecipeIngredient is one required input of a recipe.
type RecipeIngredient struct {
	ItemID   int64 `db:"item_id"`
	Quantity int64 `db:"quantity"`
	Position int   `db:"position"`
}

// Recipe is a catalog entry describing how to craft its output item.
type Recipe struct {
	ID           int64              `db:"id"`
	Code         string             `db:"code"`
	Name         string             `db:"name"`
	Tier         int                `db:"tier"`
	OutputItemID int64              `db:"output_item_id"`
	Ingredients  []RecipeIngredient `db:"-"`
}
