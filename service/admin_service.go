package service

import (
	"context"
	"fmt"

	"artificer/models"
)

type adminService struct {
	uowFactory UnitOfWorkFactory
}

// NewAdminService creates a new admin service
func NewAdminService(uowFactory UnitOfWorkFactory) AdminService {
	return &adminService{
		uowFactory: uowFactory,
	}
}

func (s *adminService) AdjustBalance(ctx context.Context, userID int64, delta int64, note string) (*models.User, error) {
	if delta == 0 {
		return nil, fmt.Errorf("delta must be non-zero")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	// Row lock so the ledger entry's before/after pair reflects the state
	// the adjustment actually applied to
	user, err := uow.UserRepository().GetByIDForUpdate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %d: %w", userID, models.ErrNotFound)
	}

	if delta > 0 {
		if err := uow.UserRepository().AddBalance(ctx, userID, delta); err != nil {
			return nil, fmt.Errorf("failed to credit user: %w", err)
		}
	} else {
		if user.Balance < -delta {
			return nil, fmt.Errorf("have %d, need %d: %w", user.Balance, -delta, models.ErrInsufficientFunds)
		}
		if err := uow.UserRepository().DeductBalance(ctx, userID, -delta); err != nil {
			return nil, fmt.Errorf("failed to debit user: %w", err)
		}
	}

	entry := &models.LedgerEntry{
		UserID:        userID,
		BalanceBefore: user.Balance,
		BalanceAfter:  user.Balance + delta,
		ChangeAmount:  delta,
		Reason:        models.LedgerReasonAdminAdjust,
		Metadata: map[string]any{
			"note": note,
		},
	}
	if err := RecordLedgerEntry(ctx, uow, entry); err != nil {
		return nil, fmt.Errorf("failed to record adjustment: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	user.Balance += delta
	return user, nil
}

func (s *adminService) SetItemBonusGold(ctx context.Context, itemCode string, bonusGold int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	item, err := uow.CatalogRepository().GetItemByCode(ctx, itemCode)
	if err != nil {
		return fmt.Errorf("failed to get item: %w", err)
	}
	if item == nil {
		return fmt.Errorf("item %q: %w", itemCode, models.ErrNotFound)
	}

	if err := uow.CatalogRepository().UpdateItemBonusGold(ctx, item.ID, bonusGold); err != nil {
		return fmt.Errorf("failed to update bonus gold: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (s *adminService) GetItemBonusGold(ctx context.Context, itemCode string) (int64, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	item, err := uow.CatalogRepository().GetItemByCode(ctx, itemCode)
	if err != nil {
		return 0, fmt.Errorf("failed to get item: %w", err)
	}
	if item == nil {
		return 0, fmt.Errorf("item %q: %w", itemCode, models.ErrNotFound)
	}

	return item.BonusGold, nil
}
