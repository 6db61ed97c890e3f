package repository

import (
	"context"
	"fmt"

	"artificer/database"
	"artificer/models"
	"github.com/jackc/pgx/v5"
)

// ListingRepository implements the service.ListingRepository interface
type ListingRepository struct {
	q queryable
}

// NewListingRepository creates a new listing repository
func NewListingRepository(db *database.DB) *ListingRepository {
	return &ListingRepository{q: db.Pool}
}

// newListingRepositoryWithTx creates a new listing repository with a transaction
func newListingRepositoryWithTx(tx queryable) *ListingRepository {
	return &ListingRepository{q: tx}
}

const listingColumns = `id, seller_id, kind, target_id, quantity, price, fee_bps,
	       status, buyer_id, sold_price, settled_at, created_at, end_time`

func scanListing(row pgx.Row) (*models.Listing, error) {
	var l models.Listing
	err := row.Scan(
		&l.ID,
		&l.SellerID,
		&l.Kind,
		&l.TargetID,
		&l.Quantity,
		&l.Price,
		&l.FeeBps,
		&l.Status,
		&l.BuyerID,
		&l.SoldPrice,
		&l.SettledAt,
		&l.CreatedAt,
		&l.EndTime,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// Create inserts a live listing and fills in its ID and creation time
func (r *ListingRepository) Create(ctx context.Context, listing *models.Listing) error {
	query := `
		INSERT INTO listings (seller_id, kind, target_id, quantity, price, fee_bps, status, end_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		listing.SellerID,
		listing.Kind,
		listing.TargetID,
		listing.Quantity,
		listing.Price,
		listing.FeeBps,
		models.ListingStatusLive,
		listing.EndTime,
	).Scan(&listing.ID, &listing.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create listing for seller %d: %w", listing.SellerID, err)
	}

	listing.Status = models.ListingStatusLive
	return nil
}

// GetByID retrieves a listing by ID, nil when absent
func (r *ListingRepository) GetByID(ctx context.Context, listingID int64) (*models.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE id = $1`

	listing, err := scanListing(r.q.QueryRow(ctx, query, listingID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get listing %d: %w", listingID, err)
	}

	return listing, nil
}

// GetByIDForUpdate retrieves a listing with a row lock so racing operations
// on the same listing serialize on it
func (r *ListingRepository) GetByIDForUpdate(ctx context.Context, listingID int64) (*models.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE id = $1 FOR UPDATE`

	listing, err := scanListing(r.q.QueryRow(ctx, query, listingID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock listing %d: %w", listingID, err)
	}

	return listing, nil
}

// MarkPaid transitions a live listing to paid. Conditional on status so
// exactly one transition out of live ever commits.
func (r *ListingRepository) MarkPaid(ctx context.Context, listingID int64, buyerID int64, soldPrice int64) error {
	query := `
		UPDATE listings
		SET status = $1, buyer_id = $2, sold_price = $3, settled_at = NOW()
		WHERE id = $4 AND status = $5
	`

	result, err := r.q.Exec(ctx, query,
		models.ListingStatusPaid, buyerID, soldPrice, listingID, models.ListingStatusLive)
	if err != nil {
		return fmt.Errorf("failed to mark listing %d paid: %w", listingID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("listing %d: %w", listingID, models.ErrListingNotLive)
	}

	return nil
}

// MarkCanceled transitions a live listing to canceled
func (r *ListingRepository) MarkCanceled(ctx context.Context, listingID int64) error {
	query := `
		UPDATE listings
		SET status = $1
		WHERE id = $2 AND status = $3
	`

	result, err := r.q.Exec(ctx, query,
		models.ListingStatusCanceled, listingID, models.ListingStatusLive)
	if err != nil {
		return fmt.Errorf("failed to mark listing %d canceled: %w", listingID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("listing %d: %w", listingID, models.ErrListingNotLive)
	}

	return nil
}

// ListLive returns live listings, newest first
func (r *ListingRepository) ListLive(ctx context.Context, limit int) ([]*models.Listing, error) {
	query := `
		SELECT ` + listingColumns + `
		FROM listings
		WHERE status = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, models.ListingStatusLive, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list live listings: %w", err)
	}
	defer rows.Close()

	var listings []*models.Listing
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan listing: %w", err)
		}
		listings = append(listings, listing)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate listings: %w", err)
	}

	return listings, nil
}

// CreateEscrow inserts the escrow record backing a live listing
func (r *ListingRepository) CreateEscrow(ctx context.Context, escrow *models.EscrowRecord) error {
	query := `
		INSERT INTO escrow_records (listing_id, owner_id, kind, target_id, quantity)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := r.q.QueryRow(ctx, query,
		escrow.ListingID,
		escrow.OwnerID,
		escrow.Kind,
		escrow.TargetID,
		escrow.Quantity,
	).Scan(&escrow.ID)

	if err != nil {
		return fmt.Errorf("failed to create escrow for listing %d: %w", escrow.ListingID, err)
	}

	return nil
}

// GetEscrowByListing retrieves the escrow record for a listing, nil when absent
func (r *ListingRepository) GetEscrowByListing(ctx context.Context, listingID int64) (*models.EscrowRecord, error) {
	query := `
		SELECT id, listing_id, owner_id, kind, target_id, quantity
		FROM escrow_records
		WHERE listing_id = $1
	`

	var e models.EscrowRecord
	err := r.q.QueryRow(ctx, query, listingID).Scan(
		&e.ID,
		&e.ListingID,
		&e.OwnerID,
		&e.Kind,
		&e.TargetID,
		&e.Quantity,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get escrow for listing %d: %w", listingID, err)
	}

	return &e, nil
}

// DeleteEscrow removes the escrow record for a listing
func (r *ListingRepository) DeleteEscrow(ctx context.Context, listingID int64) error {
	query := `DELETE FROM escrow_records WHERE listing_id = $1`

	result, err := r.q.Exec(ctx, query, listingID)
	if err != nil {
		return fmt.Errorf("failed to delete escrow for listing %d: %w", listingID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("escrow for listing %d: %w", listingID, models.ErrNotFound)
	}

	return nil
}
