package redemption

import (
	"context"
	"sync"
	"testing"

	"github.com/chris/clothing-swap-settlement/pkg/identity"
	"github.com/chris/clothing-swap-settlement/pkg/ledger"
	"github.com/chris/clothing-swap-settlement/pkg/models"
	"github.com/chris/clothing-swap-settlement/pkg/storage/sqlstore"
	"github.com/chris/clothing-swap-settlement/pkg/storage/sqlstore/sqlstoretest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var admin = identity.Identity{UserID: "admin", Role: models.RoleAdmin}

func member(id string) identity.Identity {
	return identity.Identity{UserID: id, Role: models.RoleUser}
}

// fund registers a user and credits them through the ledger so that audits reconcile.
func fund(t *testing.T, store *sqlstore.Store, userID string, points int64) {
	t.Helper()
	sqlstoretest.User(t, store, userID, 0)
	if points == 0 {
		return
	}
	_, err := ledger.NewService(store, nil, nil).Post(context.Background(), admin, ledger.PostInput{
		UserID: userID,
		Amount: points,
		Type:   models.TransactionBonus,
	})
	require.NoError(t, err)
}

func balance(t *testing.T, store *sqlstore.Store, userID string) int64 {
	t.Helper()
	user, err := store.GetUser(context.Background(), userID)
	require.NoError(t, err)
	return user.Points
}

func TestRedeem(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		store := sqlstoretest.New(t)
		fund(t, store, "uploader", 10)
		fund(t, store, "redeemer", 80)
		item := sqlstoretest.Item(t, store, "uploader", models.ItemAvailable, models.ConditionGood, 50)
		engine := NewEngine(store, nil, nil)

		result, err := engine.Redeem(ctx, member("redeemer"), item.ID)
		require.NoError(t, err)

		assert.Equal(t, int64(50), result.PointsSpent)
		assert.Equal(t, int64(30), result.NewBalance)
		assert.Equal(t, models.ItemRedeemed, result.Item.Status)
		assert.Equal(t, "redeemer", result.Item.RedeemedBy)
		assert.Equal(t, models.RedemptionCompleted, result.Redemption.Status)

		// Points are conserved across the two parties.
		assert.Equal(t, int64(30), balance(t, store, "redeemer"))
		assert.Equal(t, int64(60), balance(t, store, "uploader"))

		stored, err := store.GetItem(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ItemRedeemed, stored.Status)
		assert.Equal(t, result.Item.Version, stored.Version)

		entries, err := store.ListUserTransactions(ctx, "redeemer")
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, int64(-50), entries[1].Amount)
		assert.Equal(t, models.TransactionRedeem, entries[1].Type)
		assert.Equal(t, result.Redemption.TransactionID, entries[1].ID)
		assert.Equal(t, result.Redemption.ID, entries[1].RelatedRedemptionID)

		results, err := ledger.NewService(store, nil, nil).AuditAll(ctx)
		require.NoError(t, err)
		for _, r := range results {
			assert.True(t, r.Consistent(), r.UserID)
		}

		redemptions, err := engine.ListForUser(ctx, member("redeemer"), "redeemer")
		require.NoError(t, err)
		require.Len(t, redemptions, 1)

		got, err := engine.Get(ctx, member("uploader"), result.Redemption.ID)
		require.NoError(t, err)
		assert.Equal(t, item.ID, got.ItemID)

		_, err = engine.Get(ctx, member("stranger"), result.Redemption.ID)
		assert.ErrorIs(t, err, models.ErrForbidden)
	})

	t.Run("Insufficient Funds", func(t *testing.T) {
		store := sqlstoretest.New(t)
		fund(t, store, "uploader", 0)
		fund(t, store, "redeemer", 40)
		item := sqlstoretest.Item(t, store, "uploader", models.ItemAvailable, models.ConditionGood, 50)
		engine := NewEngine(store, nil, nil)

		_, err := engine.Redeem(ctx, member("redeemer"), item.ID)

		var funds *models.InsufficientFundsError
		require.ErrorAs(t, err, &funds)
		assert.Equal(t, int64(10), funds.Shortfall())

		assert.Equal(t, int64(40), balance(t, store, "redeemer"))
		assert.Equal(t, int64(0), balance(t, store, "uploader"))
		stored, err := store.GetItem(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ItemAvailable, stored.Status)
		redemptions, err := store.ListRedemptionsByUser(ctx, "redeemer")
		require.NoError(t, err)
		assert.Empty(t, redemptions)
	})

	t.Run("Self Redemption", func(t *testing.T) {
		store := sqlstoretest.New(t)
		fund(t, store, "uploader", 500)
		item := sqlstoretest.Item(t, store, "uploader", models.ItemAvailable, models.ConditionGood, 50)

		_, err := NewEngine(store, nil, nil).Redeem(ctx, member("uploader"), item.ID)
		assert.ErrorIs(t, err, models.ErrSelfRedemptionDenied)
		assert.Equal(t, models.KindSelfRedemptionDenied, models.ErrorKind(err))
	})

	t.Run("Not Available", func(t *testing.T) {
		store := sqlstoretest.New(t)
		fund(t, store, "redeemer", 100)
		item := sqlstoretest.Item(t, store, "uploader", models.ItemPending, models.ConditionGood, 50)

		_, err := NewEngine(store, nil, nil).Redeem(ctx, member("redeemer"), item.ID)

		var stateErr *models.StateError
		require.ErrorAs(t, err, &stateErr)
		assert.Equal(t, string(models.ItemPending), stateErr.Current)
	})

	t.Run("Not Found", func(t *testing.T) {
		store := sqlstoretest.New(t)
		fund(t, store, "redeemer", 100)

		_, err := NewEngine(store, nil, nil).Redeem(ctx, member("redeemer"), "missing")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("Uploader Missing", func(t *testing.T) {
		store := sqlstoretest.New(t)
		fund(t, store, "redeemer", 100)
		item := sqlstoretest.Item(t, store, "ghost", models.ItemAvailable, models.ConditionGood, 50)

		_, err := NewEngine(store, nil, nil).Redeem(ctx, member("redeemer"), item.ID)
		assert.ErrorIs(t, err, models.ErrInternalInconsistency)
		assert.Equal(t, int64(100), balance(t, store, "redeemer"))
	})

	t.Run("Anonymous", func(t *testing.T) {
		store := sqlstoretest.New(t)
		_, err := NewEngine(store, nil, nil).Redeem(ctx, identity.Identity{}, "any")
		assert.ErrorIs(t, err, models.ErrUnauthorized)
	})
}

func TestRedeemExactlyOnce(t *testing.T) {
	ctx := context.Background()
	store := sqlstoretest.New(t)
	fund(t, store, "uploader", 0)
	fund(t, store, "first", 100)
	fund(t, store, "second", 100)
	item := sqlstoretest.Item(t, store, "uploader", models.ItemAvailable, models.ConditionExcellent, 70)
	engine := NewEngine(store, nil, nil)

	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
		errs  = make([]error, 2)
	)
	for i, id := range []string{"first", "second"} {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			<-start
			_, errs[i] = engine.Redeem(ctx, member(id), item.ID)
		}(i, id)
	}
	close(start)
	wg.Wait()

	var succeeded, invalid int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case models.ErrorKind(err) == models.KindInvalidState:
			invalid++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, invalid)

	assert.Equal(t, int64(70), balance(t, store, "uploader"))
	assert.Equal(t, int64(130), balance(t, store, "first")+balance(t, store, "second"))

	first, err := store.ListRedemptionsByUser(ctx, "first")
	require.NoError(t, err)
	second, err := store.ListRedemptionsByUser(ctx, "second")
	require.NoError(t, err)
	assert.Len(t, append(first, second...), 1)
}
