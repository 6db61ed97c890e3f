package models

import "errors"

// Engine error kinds. Every economy operation aborts its transaction and
// surfaces one of these when a precondition fails; callers match them with
// errors.Is. Randomized outcomes (a failed craft, a roll without a recipe
// drop) are not errors.
var (
	ErrInsufficientFunds         = errors.New("insufficient funds")
	ErrInsufficientStock         = errors.New("insufficient stock")
	ErrMissingMaterials          = errors.New("missing materials")
	ErrInvalidPrice              = errors.New("invalid price")
	ErrInvalidTarget             = errors.New("invalid target")
	ErrRecipeNotFound            = errors.New("recipe not found")
	ErrRecipeNotOwned            = errors.New("recipe not owned")
	ErrListingNotLive            = errors.New("listing not live")
	ErrForbidden                 = errors.New("forbidden")
	ErrSelfPurchase              = errors.New("cannot buy own listing")
	ErrInsufficientDistinctItems = errors.New("insufficient distinct items")
	ErrNotFound                  = errors.New("not found")
)
