package service

import (
	"context"
	"fmt"

	"artificer/events"
	"artificer/models"
)

// RecordLedgerEntry appends a ledger entry and queues the matching balance
// change event. This is the single entry point for all balance changes in
// the system; every mint, burn and transfer passes through here.
func RecordLedgerEntry(ctx context.Context, uow UnitOfWork, entry *models.LedgerEntry) error {
	if err := uow.LedgerRepository().Record(ctx, entry); err != nil {
		return fmt.Errorf("failed to record ledger entry: %w", err)
	}

	// Queued on the transactional bus; flushed only after commit
	event := events.BalanceChangeEvent{
		UserID:       entry.UserID,
		OldBalance:   entry.BalanceBefore,
		NewBalance:   entry.BalanceAfter,
		Reason:       entry.Reason,
		ChangeAmount: entry.ChangeAmount,
	}
	uow.EventBus().Publish(event)

	if entry.Reason == models.LedgerReasonInitial {
		if name, ok := entry.Metadata["name"].(string); ok {
			uow.EventBus().Publish(events.UserCreatedEvent{
				UserID:         entry.UserID,
				Name:           name,
				InitialBalance: entry.BalanceAfter,
			})
		}
	}

	return nil
}
