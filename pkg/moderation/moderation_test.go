package moderation

import (
	"context"
	"testing"

	"github.com/chris/clothing-swap-settlement/pkg/identity"
	"github.com/chris/clothing-swap-settlement/pkg/ledger"
	"github.com/chris/clothing-swap-settlement/pkg/models"
	"github.com/chris/clothing-swap-settlement/pkg/storage"
	"github.com/chris/clothing-swap-settlement/pkg/storage/sqlstore/sqlstoretest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	admin    = identity.Identity{UserID: "admin", Role: models.RoleAdmin}
	uploader = identity.Identity{UserID: "uploader", Role: models.RoleUser}
	reporter = identity.Identity{UserID: "reporter", Role: models.RoleUser}
)

func TestBulkApprove(t *testing.T) {
	ctx := context.Background()

	t.Run("Partial Independence", func(t *testing.T) {
		store := sqlstoretest.New(t)
		sqlstoretest.User(t, store, "uploader", 0)
		pending := sqlstoretest.Item(t, store, "uploader", models.ItemPending, models.ConditionGood, 50)
		approved := sqlstoretest.Item(t, store, "uploader", models.ItemAvailable, models.ConditionGood, 50)
		missing := uuid.NewString()
		engine := NewEngine(store, nil, models.DefaultApprovalRewards, nil)

		result, err := engine.BulkApprove(ctx, admin, []string{pending.ID, missing, approved.ID, "not-a-uuid"}, nil)
		require.NoError(t, err)

		require.Len(t, result.Succeeded, 1)
		assert.Equal(t, pending.ID, result.Succeeded[0].ID)
		assert.Equal(t, int64(5), result.Succeeded[0].Points)
		assert.Equal(t, []string{missing}, result.NotFound)
		assert.Equal(t, []Skipped{{ID: approved.ID, Status: string(models.ItemAvailable)}}, result.AlreadyProcessed)
		assert.Equal(t, []string{"not-a-uuid"}, result.InvalidIDs)
		assert.Empty(t, result.Failed)
		assert.Equal(t, Summary{Requested: 4, Succeeded: 1, NotFound: 1, AlreadyProcessed: 1, InvalidIDs: 1}, result.Summary)

		item, err := store.GetItem(ctx, pending.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ItemAvailable, item.Status)
		assert.Equal(t, "admin", item.ApprovedBy)
		assert.Equal(t, int64(50), item.PointsValue)

		user, err := store.GetUser(ctx, "uploader")
		require.NoError(t, err)
		assert.Equal(t, int64(5), user.Points)

		entries, err := store.ListUserTransactions(ctx, "uploader")
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, models.TransactionUpload, entries[0].Type)
		assert.Equal(t, int64(5), entries[0].Amount)
		assert.Equal(t, pending.ID, entries[0].RelatedItemID)
		assert.Equal(t, "admin", entries[0].AdminID)

		audit, err := ledger.NewService(store, nil, nil).Audit(ctx, "uploader")
		require.NoError(t, err)
		assert.True(t, audit[0].Consistent())
	})

	t.Run("Reward Schedule And Override", func(t *testing.T) {
		store := sqlstoretest.New(t)
		sqlstoretest.User(t, store, "uploader", 0)
		likeNew := sqlstoretest.Item(t, store, "uploader", models.ItemPending, models.ConditionLikeNew, 90)
		fair := sqlstoretest.Item(t, store, "uploader", models.ItemPending, models.ConditionFair, 30)
		engine := NewEngine(store, nil, models.DefaultApprovalRewards, nil)

		result, err := engine.BulkApprove(ctx, admin, []string{likeNew.ID, fair.ID}, map[string]int64{fair.ID: 45})
		require.NoError(t, err)
		require.Len(t, result.Succeeded, 2)

		user, err := store.GetUser(ctx, "uploader")
		require.NoError(t, err)
		assert.Equal(t, int64(18), user.Points)

		item, err := store.GetItem(ctx, fair.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(45), item.PointsValue)
	})

	t.Run("Missing Uploader", func(t *testing.T) {
		store := sqlstoretest.New(t)
		orphan := sqlstoretest.Item(t, store, "ghost", models.ItemPending, models.ConditionGood, 50)

		result, err := NewEngine(store, nil, models.DefaultApprovalRewards, nil).BulkApprove(ctx, admin, []string{orphan.ID}, nil)
		require.NoError(t, err)
		require.Len(t, result.Failed, 1)
		assert.Equal(t, models.KindInternalInconsistency, result.Failed[0].Kind)

		item, err := store.GetItem(ctx, orphan.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ItemPending, item.Status)
	})

	t.Run("Members Forbidden", func(t *testing.T) {
		store := sqlstoretest.New(t)
		_, err := NewEngine(store, nil, models.DefaultApprovalRewards, nil).BulkApprove(ctx, uploader, []string{uuid.NewString()}, nil)
		assert.ErrorIs(t, err, models.ErrForbidden)
	})

	t.Run("Batch Limits", func(t *testing.T) {
		store := sqlstoretest.New(t)
		engine := NewEngine(store, nil, models.DefaultApprovalRewards, nil)

		_, err := engine.BulkApprove(ctx, admin, nil, nil)
		assert.ErrorIs(t, err, models.ErrValidation)

		ids := make([]string, MaxBatch+1)
		for i := range ids {
			ids[i] = uuid.NewString()
		}
		_, err = engine.BulkApprove(ctx, admin, ids, nil)
		assert.ErrorIs(t, err, models.ErrValidation)
	})
}

func TestBulkReject(t *testing.T) {
	ctx := context.Background()
	store := sqlstoretest.New(t)
	sqlstoretest.User(t, store, "uploader", 0)
	pending := sqlstoretest.Item(t, store, "uploader", models.ItemPending, models.ConditionGood, 50)
	engine := NewEngine(store, nil, models.DefaultApprovalRewards, nil)

	_, err := engine.BulkReject(ctx, admin, []string{pending.ID}, "  ")
	assert.ErrorIs(t, err, models.ErrValidation)

	result, err := engine.BulkReject(ctx, admin, []string{pending.ID, pending.ID}, "Blurry photos")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Summary.Succeeded)
	assert.Equal(t, 1, result.Summary.AlreadyProcessed)

	item, err := store.GetItem(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ItemRejected, item.Status)
	assert.Equal(t, "Blurry photos", item.RejectionReason)

	user, err := store.GetUser(ctx, "uploader")
	require.NoError(t, err)
	assert.Equal(t, int64(0), user.Points)
}

func TestReport(t *testing.T) {
	ctx := context.Background()
	store := sqlstoretest.New(t)
	item := sqlstoretest.Item(t, store, "uploader", models.ItemAvailable, models.ConditionGood, 50)
	engine := NewEngine(store, nil, models.DefaultApprovalRewards, nil)
	in := ReportInput{Reason: models.ReasonCounterfeit, Details: "Logo is off"}

	t.Run("Success", func(t *testing.T) {
		report, err := engine.Report(ctx, reporter, item.ID, in)
		require.NoError(t, err)
		assert.Equal(t, models.ReportPending, report.Status)
	})

	t.Run("Duplicate", func(t *testing.T) {
		_, err := engine.Report(ctx, reporter, item.ID, in)
		assert.ErrorIs(t, err, models.ErrDuplicateReport)
	})

	t.Run("Another Reporter", func(t *testing.T) {
		_, err := engine.Report(ctx, identity.Identity{UserID: "someone", Role: models.RoleUser}, item.ID, in)
		assert.NoError(t, err)
	})

	t.Run("Own Item", func(t *testing.T) {
		_, err := engine.Report(ctx, uploader, item.ID, in)
		assert.ErrorIs(t, err, models.ErrSelfReportDenied)
	})

	t.Run("Unknown Reason", func(t *testing.T) {
		_, err := engine.Report(ctx, reporter, item.ID, ReportInput{Reason: "Smells"})
		assert.ErrorIs(t, err, models.ErrValidation)
	})

	t.Run("Item Not Found", func(t *testing.T) {
		_, err := engine.Report(ctx, reporter, uuid.NewString(), in)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestResolveReports(t *testing.T) {
	ctx := context.Background()
	store := sqlstoretest.New(t)
	engine := NewEngine(store, nil, models.DefaultApprovalRewards, nil)

	listed := sqlstoretest.Item(t, store, "uploader", models.ItemAvailable, models.ConditionGood, 50)
	sold := sqlstoretest.Item(t, store, "uploader", models.ItemRedeemed, models.ConditionGood, 50)
	other := sqlstoretest.Item(t, store, "uploader", models.ItemAvailable, models.ConditionGood, 50)

	onListed, err := engine.Report(ctx, reporter, listed.ID, ReportInput{Reason: models.ReasonMisleading})
	require.NoError(t, err)
	onSold, err := engine.Report(ctx, reporter, sold.ID, ReportInput{Reason: models.ReasonOther})
	require.NoError(t, err)
	onOther, err := engine.Report(ctx, reporter, other.ID, ReportInput{Reason: models.ReasonOther})
	require.NoError(t, err)

	t.Run("Remove", func(t *testing.T) {
		result, err := engine.ResolveReports(ctx, admin, []string{onListed.ID, onSold.ID, uuid.NewString()}, ActionRemove, "")
		require.NoError(t, err)
		assert.Equal(t, 2, result.Summary.Succeeded)
		assert.Equal(t, 1, result.Summary.NotFound)

		item, err := store.GetItem(ctx, listed.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ItemRemoved, item.Status)
		assert.Equal(t, "Removed due to report: Misleading description", item.RemovalReason)

		untouched, err := store.GetItem(ctx, sold.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ItemRedeemed, untouched.Status)

		report, err := store.GetReport(ctx, onListed.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ReportRemoved, report.Status)
		assert.Equal(t, "Item removed due to report", report.ReviewNotes)
		assert.Equal(t, "admin", report.ReviewedBy)
	})

	t.Run("Dismiss", func(t *testing.T) {
		result, err := engine.ResolveReports(ctx, admin, []string{onOther.ID, onListed.ID}, ActionDismiss, "")
		require.NoError(t, err)
		assert.Equal(t, 1, result.Summary.Succeeded)
		assert.Equal(t, []Skipped{{ID: onListed.ID, Status: string(models.ReportRemoved)}}, result.AlreadyProcessed)

		report, err := store.GetReport(ctx, onOther.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ReportDismissed, report.Status)
		assert.Equal(t, "Dismissed by admin", report.ReviewNotes)

		item, err := store.GetItem(ctx, other.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ItemAvailable, item.Status)
	})

	t.Run("Unknown Action", func(t *testing.T) {
		_, err := engine.ResolveReports(ctx, admin, []string{onOther.ID}, "archive", "")
		assert.ErrorIs(t, err, models.ErrValidation)
	})

	t.Run("List", func(t *testing.T) {
		list, err := engine.ListReports(ctx, admin, models.ReportRemoved)
		require.NoError(t, err)
		assert.Len(t, list.Reports, 2)
		assert.Equal(t, 0, list.Counts[models.ReportPending])
		assert.Equal(t, 2, list.Counts[models.ReportRemoved])
		assert.Equal(t, 1, list.Counts[models.ReportDismissed])

		_, err = engine.ListReports(ctx, reporter, "")
		assert.ErrorIs(t, err, models.ErrForbidden)
	})
}

var _ Store = (storage.Storage)(nil)
