package models

// GachaResult describes what a shop roll produced. Exactly one of Item or
// Recipe is set.
type GachaResult struct {
	Item          *Item
	Recipe        *Recipe
	PurchaseCount int64
	NewBalance    int64
}

// CraftResult describes the outcome of a craft attempt that passed
// validation. Materials are always consumed; on failure the consolation
// item is granted and no recipe charge is spent.
type CraftResult struct {
	Succeeded   bool
	Output      *Item // set on success
	Consolation *Item // set on failure
	ChargesLeft int64
}

// ArtefactResult describes a successful artefact assembly.
type ArtefactResult struct {
	Artefact        *Item
	BonusGold       int64
	ConsumedItemIDs []int64
}

// PurchaseResult describes a settled buy-now purchase.
type PurchaseResult struct {
	Listing         *Listing
	Fee             int64 // retained by the system
	SellerNet       int64
	BuyerNewBalance int64
}
