package repository

import (
	"context"
	"sync"
	"testing"

	"artificer/models"
	"artificer/repository/testutil"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_CreateAndGet(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	missing, err := repo.GetByID(ctx, 400)
	require.NoError(t, err)
	assert.Nil(t, missing)

	created, err := repo.Create(ctx, 400, "arenvald", 1000)
	require.NoError(t, err)
	assert.Equal(t, int64(400), created.ID)
	assert.Equal(t, "arenvald", created.Name)
	assert.Equal(t, int64(1000), created.Balance)
	assert.Equal(t, int64(0), created.ShopPurchases)
	assert.Nil(t, created.NextRecipeDrop)

	fetched, err := repo.GetByID(ctx, 400)
	require.NoError(t, err)
	require.NotNil(t, fetched)
	assert.Equal(t, created.Balance, fetched.Balance)
}

func TestUserRepository_BalanceMutations(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	user := testutil.CreateTestUser(t, testDB.DB, 401, 500)

	t.Run("add balance", func(t *testing.T) {
		require.NoError(t, repo.AddBalance(ctx, user.ID, 250))

		fetched, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(750), fetched.Balance)
	})

	t.Run("deduct balance", func(t *testing.T) {
		require.NoError(t, repo.DeductBalance(ctx, user.ID, 700))

		fetched, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(50), fetched.Balance)
	})

	t.Run("deduct past zero fails and changes nothing", func(t *testing.T) {
		err := repo.DeductBalance(ctx, user.ID, 51)
		assert.ErrorIs(t, err, models.ErrInsufficientFunds)

		fetched, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(50), fetched.Balance)
	})

	t.Run("deduct from unknown user", func(t *testing.T) {
		err := repo.DeductBalance(ctx, 999999, 1)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

// Concurrent read-modify-write cycles on the same user must serialize on
// the row lock: with plain reads, racing transactions would both read the
// same purchase count and one increment would be lost.
func TestUserRepository_GetByIDForUpdate_SerializesProgressUpdates(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	user := testutil.CreateTestUser(t, testDB.DB, 403, 1000)

	const workers = 4
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- testDB.DB.WithTransaction(ctx, func(tx pgx.Tx) error {
				repo := newUserRepositoryWithTx(tx)
				locked, err := repo.GetByIDForUpdate(ctx, user.ID)
				if err != nil {
					return err
				}
				return repo.UpdateShopProgress(ctx, user.ID, locked.ShopPurchases+1, nil)
			})
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	repo := NewUserRepository(testDB.DB)
	fetched, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(workers), fetched.ShopPurchases)
}

func TestUserRepository_GetByIDForUpdate_MissingUser(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	err := testDB.DB.WithTransaction(ctx, func(tx pgx.Tx) error {
		repo := newUserRepositoryWithTx(tx)
		locked, err := repo.GetByIDForUpdate(ctx, 12345)
		require.NoError(t, err)
		assert.Nil(t, locked)
		return nil
	})
	require.NoError(t, err)
}

func TestUserRepository_UpdateShopProgress(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	user := testutil.CreateTestUser(t, testDB.DB, 402, 1000)

	next := int64(7)
	require.NoError(t, repo.UpdateShopProgress(ctx, user.ID, 3, &next))

	fetched, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), fetched.ShopPurchases)
	require.NotNil(t, fetched.NextRecipeDrop)
	assert.Equal(t, int64(7), *fetched.NextRecipeDrop)

	// Clearing the threshold after a drop re-arms on next purchase
	require.NoError(t, repo.UpdateShopProgress(ctx, user.ID, 4, nil))

	fetched, err = repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), fetched.ShopPurchases)
	assert.Nil(t, fetched.NextRecipeDrop)
}
