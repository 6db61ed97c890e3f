package service

import (
	"context"

	"artificer/events"
	"artificer/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// GetByID retrieves a user by their ID
	GetByID(ctx context.Context, userID int64) (*models.User, error)

	// GetByIDForUpdate retrieves a user with a row lock so racing operations
	// that read and write the same user's state serialize
	GetByIDForUpdate(ctx context.Context, userID int64) (*models.User, error)

	// Create creates a new user with the initial balance
	Create(ctx context.Context, userID int64, name string, initialBalance int64) (*models.User, error)

	// AddBalance adds to a user's balance atomically
	AddBalance(ctx context.Context, userID int64, amount int64) error

	// DeductBalance deducts from a user's balance atomically, failing with
	// models.ErrInsufficientFunds if the balance is short
	DeductBalance(ctx context.Context, userID int64, amount int64) error

	// UpdateShopProgress stores the purchase counter and pity-timer threshold
	UpdateShopProgress(ctx context.Context, userID int64, purchases int64, nextRecipeDrop *int64) error
}

// CatalogRepository defines read access to the item/recipe reference catalog.
// The catalog is seeded externally; the engine never writes it except for
// the bonus-gold admin accessor.
type CatalogRepository interface {
	GetItemByID(ctx context.Context, itemID int64) (*models.Item, error)
	GetItemByCode(ctx context.Context, code string) (*models.Item, error)
	GetItemsByTier(ctx context.Context, tier int) ([]*models.Item, error)

	// GetRecipeByID retrieves a recipe with its ingredient list
	GetRecipeByID(ctx context.Context, recipeID int64) (*models.Recipe, error)
	GetRecipeByCode(ctx context.Context, code string) (*models.Recipe, error)
	GetRecipesByTier(ctx context.Context, tier int) ([]*models.Recipe, error)

	// UpdateItemBonusGold sets the bonus-gold attribute of an item
	UpdateItemBonusGold(ctx context.Context, itemID int64, bonusGold int64) error
}

// HoldingRepository is the inventory transfer primitive. Credit and Debit
// carry no transaction of their own; they run on whatever transaction the
// enclosing unit of work holds.
type HoldingRepository interface {
	// Credit increases the holding for the target by qty, creating the row
	// if absent. An unknown kind fails with models.ErrInvalidTarget.
	Credit(ctx context.Context, userID int64, kind models.TargetKind, targetID int64, qty int64) error

	// Debit decreases the holding for the target by qty, failing with
	// models.ErrInsufficientStock if the current quantity is less than qty
	Debit(ctx context.Context, userID int64, kind models.TargetKind, targetID int64, qty int64) error

	// GetItemQuantity returns the quantity of an item held by a user
	// (zero when no row exists)
	GetItemQuantity(ctx context.Context, userID int64, itemID int64) (int64, error)

	// GetRecipeCharges returns the remaining charges of a recipe held by a user
	GetRecipeCharges(ctx context.Context, userID int64, recipeID int64) (int64, error)

	// GetDistinctItemsByTier returns holdings with quantity > 0 for items of
	// the given tier, ordered by item ID
	GetDistinctItemsByTier(ctx context.Context, userID int64, tier int) ([]*models.UserItemHolding, error)

	// IncrementRecipeAttempts bumps the persisted attempt counter for a
	// held recipe
	IncrementRecipeAttempts(ctx context.Context, userID int64, recipeID int64) error
}

// LedgerRepository defines the interface for the append-only currency ledger
type LedgerRepository interface {
	// Record creates a new ledger entry
	Record(ctx context.Context, entry *models.LedgerEntry) error

	// GetByUser returns the most recent ledger entries for a user
	GetByUser(ctx context.Context, userID int64, limit int) ([]*models.LedgerEntry, error)

	// SumByUser returns the sum of all signed deltas for a user. It must
	// always equal the user's current balance.
	SumByUser(ctx context.Context, userID int64) (int64, error)
}

// ListingRepository defines the interface for marketplace listings and
// their escrow records
type ListingRepository interface {
	// Create inserts a live listing and fills in its ID and timestamps
	Create(ctx context.Context, listing *models.Listing) error

	// GetByID retrieves a listing, nil when absent
	GetByID(ctx context.Context, listingID int64) (*models.Listing, error)

	// GetByIDForUpdate retrieves a listing with a row lock so racing
	// operations on the same listing serialize
	GetByIDForUpdate(ctx context.Context, listingID int64) (*models.Listing, error)

	// MarkPaid transitions a live listing to paid, recording the buyer,
	// sold price and settlement time. Fails with models.ErrListingNotLive
	// when the listing already left the live state.
	MarkPaid(ctx context.Context, listingID int64, buyerID int64, soldPrice int64) error

	// MarkCanceled transitions a live listing to canceled. Fails with
	// models.ErrListingNotLive when the listing already left the live state.
	MarkCanceled(ctx context.Context, listingID int64) error

	// ListLive returns live listings, newest first
	ListLive(ctx context.Context, limit int) ([]*models.Listing, error)

	// CreateEscrow inserts the escrow record backing a live listing
	CreateEscrow(ctx context.Context, escrow *models.EscrowRecord) error

	// GetEscrowByListing retrieves the escrow record for a listing, nil when absent
	GetEscrowByListing(ctx context.Context, listingID int64) (*models.EscrowRecord, error)

	// DeleteEscrow removes the escrow record for a listing
	DeleteEscrow(ctx context.Context, listingID int64) error
}

// Rand supplies the random draws used by economy operations. Injected so
// tests can script deterministic sequences.
type Rand interface {
	// Intn returns a uniform int in [0, n)
	Intn(n int) int

	// Float64 returns a uniform float64 in [0, 1)
	Float64() float64
}

// UserService defines the interface for user operations
type UserService interface {
	// GetOrCreateUser retrieves an existing user or creates a new one,
	// minting the configured starting balance
	GetOrCreateUser(ctx context.Context, userID int64, name string) (*models.User, error)

	// GetLedgerHistory returns the most recent ledger entries for a user
	GetLedgerHistory(ctx context.Context, userID int64, limit int) ([]*models.LedgerEntry, error)
}

// ShopService defines the interface for the gacha shop
type ShopService interface {
	// BuyBaseRoll charges the roll price and grants either a random tier-1
	// item or, when the pity timer fires, a random recipe
	BuyBaseRoll(ctx context.Context, userID int64) (*models.GachaResult, error)
}

// CraftService defines the interface for crafting operations
type CraftService interface {
	// Craft attempts a recipe: consumes materials, then rolls success
	Craft(ctx context.Context, userID int64, recipeID int64) (*models.CraftResult, error)

	// AssembleArtefact consumes one unit each of ten distinct tier-5 items
	// and produces the artefact
	AssembleArtefact(ctx context.Context, userID int64) (*models.ArtefactResult, error)
}

// MarketService defines the interface for the buy-now marketplace
type MarketService interface {
	// CreateListing charges the listing fee, escrows the goods and opens a
	// live listing
	CreateListing(ctx context.Context, sellerID int64, kind models.TargetKind, targetID int64, qty int64, price int64) (*models.Listing, error)

	// CancelListing returns escrowed goods to the seller; only the seller
	// may cancel, and only while the listing is live
	CancelListing(ctx context.Context, requesterID int64, listingID int64) error

	// BuyListing settles a buy-now purchase: buyer pays the price, seller
	// receives the price minus the fee, goods move to the buyer
	BuyListing(ctx context.Context, buyerID int64, listingID int64) (*models.PurchaseResult, error)

	// GetListing retrieves a listing by ID
	GetListing(ctx context.Context, listingID int64) (*models.Listing, error)

	// ListLiveListings returns live listings, newest first
	ListLiveListings(ctx context.Context, limit int) ([]*models.Listing, error)
}

// AdminService defines the administrative collaborator surface
type AdminService interface {
	// AdjustBalance applies a signed delta to a user's balance with an
	// ADMIN_ADJUST ledger entry. This is the only mint/burn point besides
	// user creation and listing fees.
	AdjustBalance(ctx context.Context, userID int64, delta int64, note string) (*models.User, error)

	// SetItemBonusGold sets the bonus-gold catalog attribute of an item
	SetItemBonusGold(ctx context.Context, itemCode string, bonusGold int64) error

	// GetItemBonusGold reads the bonus-gold catalog attribute of an item
	GetItemBonusGold(ctx context.Context, itemCode string) (int64, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	UserRepository() UserRepository
	CatalogRepository() CatalogRepository
	HoldingRepository() HoldingRepository
	LedgerRepository() LedgerRepository
	ListingRepository() ListingRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	// Create creates a new UnitOfWork instance
	Create() UnitOfWork
}
