package models

import (
	"time"
)

// LedgerReason identifies why a balance changed.
type LedgerReason string

const (
	LedgerReasonInitial     LedgerReason = "INITIAL"
	LedgerReasonShopBuyT1   LedgerReason = "SHOP_BUY_T1"
	LedgerReasonSaleListFee LedgerReason = "SALE_LIST_FEE"
	LedgerReasonSaleBuy     LedgerReason = "SALE_BUY"
	LedgerReasonSaleEarn    LedgerReason = "SALE_EARN"
	LedgerReasonAdminAdjust LedgerReason = "ADMIN_ADJUST"
)

// RelatedType tells what entity a ledger entry's RelatedID refers to.
type RelatedType string

const (
	RelatedTypeListing RelatedType = "listing"
)

// LedgerEntry is one append-only record of the currency audit trail.
// Entries are never mutated or deleted. The user row's balance is the
// source of truth; the sum of a user's ChangeAmounts must always equal it.
type LedgerEntry struct {
	ID            int64          `db:"id"`
	UserID        int64          `db:"user_id"`
	BalanceBefore int64          `db:"balance_before"`
	BalanceAfter  int64          `db:"balance_after"`
	ChangeAmount  int64          `db:"change_amount"`
	Reason        LedgerReason   `db:"reason"`
	Metadata      map[string]any `db:"metadata"`
	RelatedID     *int64         `db:"related_id"`
	RelatedType   *RelatedType   `db:"related_type"`
	CreatedAt     time.Time      `db:"created_at"`
}
