package models

import (
	"time"
)

// ListingStatus is the state of a marketplace listing.
// A listing is created live and transitions exactly once, to paid or
// canceled. Both are terminal.
type ListingStatus string

const (
	ListingStatusLive     ListingStatus = "live"
	ListingStatusPaid     ListingStatus = "paid"
	ListingStatusCanceled ListingStatus = "canceled"
)

// Listing is a buy-now marketplace offer backed by escrowed goods.
type Listing struct {
	ID        int64         `db:"id"`
	SellerID  int64         `db:"seller_id"`
	Kind      TargetKind    `db:"kind"`
	TargetID  int64         `db:"target_id"`
	Quantity  int64         `db:"quantity"`
	Price     int64         `db:"price"` // minor units, buy-now
	FeeBps    int           `db:"fee_bps"`
	Status    ListingStatus `db:"status"`
	BuyerID   *int64        `db:"buyer_id"`
	SoldPrice *int64        `db:"sold_price"`
	SettledAt *time.Time    `db:"settled_at"`
	CreatedAt time.Time     `db:"created_at"`
	EndTime   time.Time     `db:"end_time"`
}

// EscrowRecord holds the goods withdrawn from a seller while their listing
// is live. Exactly one escrow record exists per live listing; it is deleted
// in the same transaction that moves the listing out of live.
type EscrowRecord struct {
	ID        int64      `db:"id"`
	ListingID int64      `db:"listing_id"`
	OwnerID   int64      `db:"owner_id"`
	Kind      TargetKind `db:"kind"`
	TargetID  int64      `db:"target_id"`
	Quantity  int64      `db:"quantity"`
}
