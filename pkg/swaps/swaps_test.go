package swaps

import (
	"context"
	"testing"

	"github.com/chris/clothing-swap-settlement/pkg/identity"
	"github.com/chris/clothing-swap-settlement/pkg/models"
	"github.com/chris/clothing-swap-settlement/pkg/storage"
	"github.com/chris/clothing-swap-settlement/pkg/storage/sqlstore"
	"github.com/chris/clothing-swap-settlement/pkg/storage/sqlstore/sqlstoretest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	requester = identity.Identity{UserID: "requester", Role: models.RoleUser}
	owner     = identity.Identity{UserID: "owner", Role: models.RoleUser}
	stranger  = identity.Identity{UserID: "stranger", Role: models.RoleUser}
)

type fixture struct {
	store     *sqlstore.Store
	engine    *Engine
	requested *models.Item
	offered   []*models.Item
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := sqlstoretest.New(t)
	sqlstoretest.User(t, store, "requester", 0)
	sqlstoretest.User(t, store, "owner", 0)
	return fixture{
		store:     store,
		engine:    NewEngine(store, nil, nil),
		requested: sqlstoretest.Item(t, store, "owner", models.ItemAvailable, models.ConditionGood, 50),
		offered: []*models.Item{
			sqlstoretest.Item(t, store, "requester", models.ItemAvailable, models.ConditionGood, 50),
			sqlstoretest.Item(t, store, "requester", models.ItemAvailable, models.ConditionFair, 30),
		},
	}
}

// staleSwapReads hides existing swaps from the engine's precondition read.
type staleSwapReads struct {
	*sqlstore.Store
}

func (staleSwapReads) ListSwaps(context.Context, storage.SwapFilter) ([]models.Swap, error) {
	return nil, nil
}

func (f fixture) propose(t *testing.T) *models.Swap {
	t.Helper()
	swap, err := f.engine.Propose(context.Background(), requester, ProposeInput{
		RequestedItemID: f.requested.ID,
		OfferedItemIDs:  []string{f.offered[0].ID, f.offered[1].ID},
		Message:         "Would you trade?",
	})
	require.NoError(t, err)
	return swap
}

func (f fixture) item(t *testing.T, id string) *models.Item {
	t.Helper()
	item, err := f.store.GetItem(context.Background(), id)
	require.NoError(t, err)
	return item
}

func TestPropose(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		f := newFixture(t)
		swap := f.propose(t)

		assert.Equal(t, models.SwapPending, swap.Status)
		assert.Equal(t, "owner", swap.OwnerID)
		assert.Equal(t, models.ItemAvailable, f.item(t, f.requested.ID).Status)
	})

	t.Run("Duplicate", func(t *testing.T) {
		f := newFixture(t)
		f.propose(t)

		_, err := f.engine.Propose(ctx, requester, ProposeInput{
			RequestedItemID: f.requested.ID,
			OfferedItemIDs:  []string{f.offered[0].ID},
		})
		assert.ErrorIs(t, err, models.ErrDuplicateSwap)
	})

	t.Run("Duplicate Missed By Read", func(t *testing.T) {
		f := newFixture(t)
		f.propose(t)

		// A concurrent proposal that read before the first one committed.
		engine := NewEngine(staleSwapReads{f.store}, nil, nil)
		_, err := engine.Propose(ctx, requester, ProposeInput{
			RequestedItemID: f.requested.ID,
			OfferedItemIDs:  []string{f.offered[0].ID},
		})
		assert.ErrorIs(t, err, models.ErrDuplicateSwap)

		swaps, err := f.store.ListSwaps(ctx, storage.SwapFilter{RequesterID: requester.UserID})
		require.NoError(t, err)
		assert.Len(t, swaps, 1)
	})

	t.Run("Own Item", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.engine.Propose(ctx, owner, ProposeInput{
			RequestedItemID: f.requested.ID,
			OfferedItemIDs:  []string{f.offered[0].ID},
		})
		assert.ErrorIs(t, err, models.ErrSelfSwapDenied)
	})

	t.Run("Offered Item Not Owned", func(t *testing.T) {
		f := newFixture(t)
		other := sqlstoretest.Item(t, f.store, "owner", models.ItemAvailable, models.ConditionGood, 50)

		_, err := f.engine.Propose(ctx, requester, ProposeInput{
			RequestedItemID: f.requested.ID,
			OfferedItemIDs:  []string{other.ID},
		})
		assert.ErrorIs(t, err, models.ErrForbidden)
	})

	t.Run("Offered Item Unavailable", func(t *testing.T) {
		f := newFixture(t)
		pending := sqlstoretest.Item(t, f.store, "requester", models.ItemPending, models.ConditionGood, 50)

		_, err := f.engine.Propose(ctx, requester, ProposeInput{
			RequestedItemID: f.requested.ID,
			OfferedItemIDs:  []string{pending.ID},
		})
		assert.ErrorIs(t, err, models.ErrInvalidState)
	})

	t.Run("Nothing Offered", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.engine.Propose(ctx, requester, ProposeInput{RequestedItemID: f.requested.ID})
		assert.ErrorIs(t, err, models.ErrValidation)
	})

	t.Run("Requested Item Missing", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.engine.Propose(ctx, requester, ProposeInput{
			RequestedItemID: "missing",
			OfferedItemIDs:  []string{f.offered[0].ID},
		})
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestAcceptAndComplete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	swap := f.propose(t)

	_, err := f.engine.Accept(ctx, requester, swap.ID, "")
	assert.ErrorIs(t, err, models.ErrForbidden)

	_, err = f.engine.Complete(ctx, owner, swap.ID)
	assert.ErrorIs(t, err, models.ErrInvalidState)

	accepted, err := f.engine.Accept(ctx, owner, swap.ID, "Deal")
	require.NoError(t, err)
	assert.Equal(t, models.SwapAccepted, accepted.Status)
	assert.Equal(t, "Deal", accepted.ResponseMessage)
	for _, id := range swap.ItemIDs() {
		assert.Equal(t, models.ItemSwapping, f.item(t, id).Status)
	}

	_, err = f.engine.Accept(ctx, owner, swap.ID, "")
	assert.ErrorIs(t, err, models.ErrInvalidState)

	_, err = f.engine.Complete(ctx, stranger, swap.ID)
	assert.ErrorIs(t, err, models.ErrForbidden)

	completed, err := f.engine.Complete(ctx, requester, swap.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SwapCompleted, completed.Status)
	assert.NotNil(t, completed.CompletedDate)

	requested := f.item(t, f.requested.ID)
	assert.Equal(t, models.ItemSwapped, requested.Status)
	assert.Equal(t, "requester", requested.UploaderID)
	for _, offered := range f.offered {
		got := f.item(t, offered.ID)
		assert.Equal(t, models.ItemSwapped, got.Status)
		assert.Equal(t, "owner", got.UploaderID)
	}

	for _, id := range []string{"requester", "owner"} {
		user, err := f.store.GetUser(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, int64(1), user.SuccessfulSwaps, id)
		assert.Equal(t, int64(0), user.Points, id)
	}

	_, err = f.engine.Complete(ctx, requester, swap.ID)
	assert.ErrorIs(t, err, models.ErrInvalidState)
}

func TestAcceptWithLockedItem(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	swap := f.propose(t)

	removed := *f.item(t, f.offered[1].ID)
	removed.Status = models.ItemRemoved
	require.NoError(t, f.store.UpdateItem(ctx, storage.ItemChange{From: models.ItemAvailable, Item: removed}))

	_, err := f.engine.Accept(ctx, owner, swap.ID, "")
	assert.ErrorIs(t, err, models.ErrInvalidState)

	assert.Equal(t, models.ItemAvailable, f.item(t, f.requested.ID).Status)
	got, err := f.engine.Get(ctx, owner, swap.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SwapPending, got.Status)
}

func TestRejectAndCancel(t *testing.T) {
	ctx := context.Background()

	t.Run("Reject By Requester", func(t *testing.T) {
		f := newFixture(t)
		swap := f.propose(t)

		rejected, err := f.engine.Reject(ctx, requester, swap.ID, "Changed my mind")
		require.NoError(t, err)
		assert.Equal(t, models.SwapRejected, rejected.Status)
		assert.Equal(t, models.ItemAvailable, f.item(t, f.requested.ID).Status)
	})

	t.Run("Reject By Stranger", func(t *testing.T) {
		f := newFixture(t)
		swap := f.propose(t)

		_, err := f.engine.Reject(ctx, stranger, swap.ID, "")
		assert.ErrorIs(t, err, models.ErrForbidden)
	})

	t.Run("Cancel", func(t *testing.T) {
		f := newFixture(t)
		swap := f.propose(t)

		_, err := f.engine.Cancel(ctx, owner, swap.ID, "")
		assert.ErrorIs(t, err, models.ErrForbidden)

		cancelled, err := f.engine.Cancel(ctx, requester, swap.ID, "")
		require.NoError(t, err)
		assert.Equal(t, models.SwapCancelled, cancelled.Status)
		assert.NotNil(t, cancelled.CancelledDate)

		// A closed proposal no longer blocks a new one.
		f.propose(t)
	})
}

func TestGetAndList(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	swap := f.propose(t)

	_, err := f.engine.Get(ctx, stranger, swap.ID)
	assert.ErrorIs(t, err, models.ErrForbidden)

	_, err = f.engine.Get(ctx, identity.Identity{UserID: "admin", Role: models.RoleAdmin}, swap.ID)
	assert.NoError(t, err)

	sent, err := f.engine.List(ctx, requester, ListFilter{Role: RoleSent})
	require.NoError(t, err)
	assert.Len(t, sent, 1)

	received, err := f.engine.List(ctx, requester, ListFilter{Role: RoleReceived})
	require.NoError(t, err)
	assert.Empty(t, received)

	all, err := f.engine.List(ctx, owner, ListFilter{Status: models.SwapPending})
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = f.engine.List(ctx, owner, ListFilter{Role: "both"})
	assert.ErrorIs(t, err, models.ErrValidation)
}
