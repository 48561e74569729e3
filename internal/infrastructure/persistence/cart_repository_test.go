package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/cart"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormCartRepository_SQLite(t *testing.T) {
	ctx := context.Background()

	t.Run("saves a new cart with its lines", func(t *testing.T) {
		repo := NewGormCartRepository(newSQLiteDB(t))
		userID := uuid.New()
		c, err := cart.NewCart(userID)
		require.NoError(t, err)
		_, err = c.AddItem(newTestOffer(t, "25.00", 10), 2, time.Now())
		require.NoError(t, err)

		require.NoError(t, repo.Save(ctx, c))

		found, err := repo.FindActiveByUser(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, c.ID, found.ID)
		require.Len(t, found.Items, 1)
		assert.Equal(t, 2, found.Items[0].Quantity)
		assert.Equal(t, "25.00", found.Items[0].PriceAtAddition.String())
	})

	t.Run("reconciles updated and removed lines", func(t *testing.T) {
		repo := NewGormCartRepository(newSQLiteDB(t))
		c, err := cart.NewCart(uuid.New())
		require.NoError(t, err)
		now := time.Now()
		first := newTestOffer(t, "10.00", 10)
		second := newTestOffer(t, "20.00", 10)
		a, err := c.AddItem(first, 1, now)
		require.NoError(t, err)
		firstItemID := a.ID
		b, err := c.AddItem(second, 1, now)
		require.NoError(t, err)
		secondItemID := b.ID
		require.NoError(t, repo.Save(ctx, c))

		loaded, err := repo.FindByID(ctx, c.ID)
		require.NoError(t, err)
		_, err = loaded.UpdateQuantity(firstItemID, 4, first, now)
		require.NoError(t, err)
		_, err = loaded.UpdateQuantity(secondItemID, 0, second, now)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, loaded))
		assert.Equal(t, 2, loaded.Version)

		found, err := repo.FindByID(ctx, c.ID)
		require.NoError(t, err)
		require.Len(t, found.Items, 1)
		assert.Equal(t, firstItemID, found.Items[0].ID)
		assert.Equal(t, 4, found.Items[0].Quantity)
	})

	t.Run("stale cart loses", func(t *testing.T) {
		repo := NewGormCartRepository(newSQLiteDB(t))
		c, err := cart.NewCart(uuid.New())
		require.NoError(t, err)
		_, err = c.AddItem(newTestOffer(t, "10.00", 10), 1, time.Now())
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, c))

		winner, err := repo.FindByID(ctx, c.ID)
		require.NoError(t, err)
		loser, err := repo.FindByID(ctx, c.ID)
		require.NoError(t, err)

		require.NoError(t, winner.MarkConverted())
		require.NoError(t, repo.Save(ctx, winner))

		require.NoError(t, loser.MarkConverted())
		err = repo.Save(ctx, loser)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)

		_, err = repo.FindActiveByUser(ctx, c.UserID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
