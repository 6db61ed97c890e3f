package models

import (
	"time"
)

// User represents a player account with a silver balance.
// Balance is stored in minor units (100 silver = 1 gold) and is never
// allowed to go negative.
type User struct {
	ID             int64      `db:"id"`
	Name           string     `db:"name"`
	Balance        int64      `db:"balance"`
	ShopPurchases  int64      `db:"shop_purchases"`
	NextRecipeDrop *int64     `db:"next_recipe_drop"` // nil until the first roll arms the pity timer
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
}
