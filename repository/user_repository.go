package repository

import (
	"context"
	"fmt"

	"artificer/database"
	"artificer/models"
	"github.com/jackc/pgx/v5"
)

// UserRepository implements the service.UserRepository interface
type UserRepository struct {
	q queryable
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{q: db.Pool}
}

// newUserRepositoryWithTx creates a new user repository with a transaction
func newUserRepositoryWithTx(tx queryable) *UserRepository {
	return &UserRepository{q: tx}
}

// GetByID retrieves a user by their ID
func (r *UserRepository) GetByID(ctx context.Context, userID int64) (*models.User, error) {
	query := `
		SELECT id, name, balance, shop_purchases, next_recipe_drop, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	var user models.User
	err := r.q.QueryRow(ctx, query, userID).Scan(
		&user.ID,
		&user.Name,
		&user.Balance,
		&user.ShopPurchases,
		&user.NextRecipeDrop,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", userID, err)
	}

	return &user, nil
}

// GetByIDForUpdate retrieves a user with a row lock. Read-modify-write
// flows (shop progress, admin adjustments) take this lock so a racing
// operation on the same user sees the committed state, not a stale read.
func (r *UserRepository) GetByIDForUpdate(ctx context.Context, userID int64) (*models.User, error) {
	query := `
		SELECT id, name, balance, shop_purchases, next_recipe_drop, created_at, updated_at
		FROM users
		WHERE id = $1
		FOR UPDATE
	`

	var user models.User
	err := r.q.QueryRow(ctx, query, userID).Scan(
		&user.ID,
		&user.Name,
		&user.Balance,
		&user.ShopPurchases,
		&user.NextRecipeDrop,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock user %d: %w", userID, err)
	}

	return &user, nil
}

// Create creates a new user with the initial balance
func (r *UserRepository) Create(ctx context.Context, userID int64, name string, initialBalance int64) (*models.User, error) {
	query := `
		INSERT INTO users (id, name, balance)
		VALUES ($1, $2, $3)
		RETURNING id, name, balance, shop_purchases, next_recipe_drop, created_at, updated_at
	`

	var user models.User
	err := r.q.QueryRow(ctx, query, userID, name, initialBalance).Scan(
		&user.ID,
		&user.Name,
		&user.Balance,
		&user.ShopPurchases,
		&user.NextRecipeDrop,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create user %d: %w", userID, err)
	}

	return &user, nil
}

// AddBalance adds to a user's balance atomically
func (r *UserRepository) AddBalance(ctx context.Context, userID int64, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive")
	}

	query := `
		UPDATE users
		SET balance = balance + $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.q.Exec(ctx, query, amount, userID)
	if err != nil {
		return fmt.Errorf("failed to add balance for user %d: %w", userID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %d: %w", userID, models.ErrNotFound)
	}

	return nil
}

// DeductBalance deducts from a user's balance atomically, failing if the
// balance is insufficient. The conditional update is what keeps racing
// debits from committing a negative balance.
func (r *UserRepository) DeductBalance(ctx context.Context, userID int64, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive")
	}

	query := `
		UPDATE users
		SET balance = balance - $1, updated_at = NOW()
		WHERE id = $2 AND balance >= $1
	`

	result, err := r.q.Exec(ctx, query, amount, userID)
	if err != nil {
		return fmt.Errorf("failed to deduct balance for user %d: %w", userID, err)
	}

	if result.RowsAffected() == 0 {
		user, err := r.GetByID(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to check user: %w", err)
		}
		if user == nil {
			return fmt.Errorf("user %d: %w", userID, models.ErrNotFound)
		}
		return fmt.Errorf("have %d, need %d: %w", user.Balance, amount, models.ErrInsufficientFunds)
	}

	return nil
}

// UpdateShopProgress stores the purchase counter and pity-timer threshold
func (r *UserRepository) UpdateShopProgress(ctx context.Context, userID int64, purchases int64, nextRecipeDrop *int64) error {
	query := `
		UPDATE users
		SET shop_purchases = $1, next_recipe_drop = $2, updated_at = NOW()
		WHERE id = $3
	`

	result, err := r.q.Exec(ctx, query, purchases, nextRecipeDrop, userID)
	if err != nil {
		return fmt.Errorf("failed to update shop progress for user %d: %w", userID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %d: %w", userID, models.ErrNotFound)
	}

	return nil
}
