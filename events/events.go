package events

import (
	"context"
	"sync"

	"artificer/models"
	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBalanceChange   EventType = "balance_change"
	EventTypeUserCreated     EventType = "user_created"
	EventTypeItemGranted     EventType = "item_granted"
	EventTypeRecipeDrop      EventType = "recipe_drop"
	EventTypeCraftResolved   EventType = "craft_resolved"
	EventTypeArtefactForged  EventType = "artefact_forged"
	EventTypeListingCreated  EventType = "listing_created"
	EventTypeListingSold     EventType = "listing_sold"
	EventTypeListingCanceled EventType = "listing_canceled"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeEvent represents a balance change that occurred
type BalanceChangeEvent struct {
	UserID       int64
	OldBalance   int64
	NewBalance   int64
	Reason       models.LedgerReason
	ChangeAmount int64
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// UserCreatedEvent represents a new user creation
type UserCreatedEvent struct {
	UserID         int64
	Name           string
	InitialBalance int64
}

func (e UserCreatedEvent) Type() EventType {
	return EventTypeUserCreated
}

// ItemGrantedEvent represents an item credited by a shop roll
type ItemGrantedEvent struct {
	UserID int64
	ItemID int64
}

func (e ItemGrantedEvent) Type() EventType {
	return EventTypeItemGranted
}

// RecipeDropEvent represents a recipe granted by the pity timer
type RecipeDropEvent struct {
	UserID        int64
	RecipeID      int64
	PurchaseCount int64
}

func (e RecipeDropEvent) Type() EventType {
	return EventTypeRecipeDrop
}

// CraftResolvedEvent represents the outcome of a craft attempt
type CraftResolvedEvent struct {
	UserID    int64
	RecipeID  int64
	Succeeded bool
	ItemID    int64 // output on success, consolation on failure
}

func (e CraftResolvedEvent) Type() EventType {
	return EventTypeCraftResolved
}

// ArtefactForgedEvent represents a completed artefact assembly
type ArtefactForgedEvent struct {
	UserID    int64
	ItemID    int64
	BonusGold int64
}

func (e ArtefactForgedEvent) Type() EventType {
	return EventTypeArtefactForged
}

// ListingCreatedEvent represents a new live listing with escrowed goods
type ListingCreatedEvent struct {
	ListingID int64
	SellerID  int64
	Kind      models.TargetKind
	TargetID  int64
	Quantity  int64
	Price     int64
}

func (e ListingCreatedEvent) Type() EventType {
	return EventTypeListingCreated
}

// ListingSoldEvent represents a settled buy-now purchase
type ListingSoldEvent struct {
	ListingID int64
	SellerID  int64
	BuyerID   int64
	Price     int64
	Fee       int64
}

func (e ListingSoldEvent) Type() EventType {
	return EventTypeListingSold
}

// ListingCanceledEvent represents a listing returned to its seller
type ListingCanceledEvent struct {
	ListingID int64
	SellerID  int64
}

func (e ListingCanceledEvent) Type() EventType {
	return EventTypeListingCanceled
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	// Call handlers asynchronously to avoid blocking
	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// A transactional event bus for holding pending events coupled to the Unit of Work.
// Flushes to the underlying event bus.
type TransactionalBus struct {
	real    *Bus
	pending []Event // stashed until Flush
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// Flush emits all pending events. Called after a successful DB commit.
func (b *TransactionalBus) Flush(ctx context.Context) error {
	// Events outlive the transaction context that produced them.
	eventCtx := context.Background()

	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
	return nil
}

// Discard drops pending events. Called after a DB rollback.
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
