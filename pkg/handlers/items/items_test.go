package items_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chris/clothing-swap-settlement/pkg/api"
	"github.com/chris/clothing-swap-settlement/pkg/handlers/items"
	"github.com/chris/clothing-swap-settlement/pkg/identity"
	itemsvc "github.com/chris/clothing-swap-settlement/pkg/items"
	"github.com/chris/clothing-swap-settlement/pkg/models"
	"github.com/chris/clothing-swap-settlement/pkg/moderation"
	"github.com/chris/clothing-swap-settlement/pkg/redemption"
	"github.com/chris/clothing-swap-settlement/pkg/storage/sqlstore"
	"github.com/chris/clothing-swap-settlement/pkg/storage/sqlstore/sqlstoretest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*items.ItemsHandler, *sqlstore.Store) {
	t.Helper()
	store := sqlstoretest.New(t)
	return items.NewItemsHandler(
		itemsvc.NewService(store, nil, models.DefaultRedemptionPrices, nil),
		redemption.NewEngine(store, nil, nil),
		moderation.NewEngine(store, nil, models.DefaultApprovalRewards, nil),
	), store
}

func as(req *http.Request, userID string) *http.Request {
	return req.WithContext(identity.WithIdentity(req.Context(), identity.Identity{UserID: userID, Role: models.RoleUser}))
}

func TestSubmitItem(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		h, store := setup(t)
		sqlstoretest.User(t, store, "alice", 0)

		body, _ := json.Marshal(api.NewItem{
			Title:       "Silk scarf",
			Description: "Hand rolled edges",
			Images:      []string{"https://img.example.com/scarf.jpg"},
			Category:    string(models.CategoryAccessories),
			Size:        "One size",
			Condition:   string(models.ConditionLikeNew),
			Tags:        &[]string{"silk"},
		})
		rr := httptest.NewRecorder()
		h.SubmitItem(rr, as(httptest.NewRequest(http.MethodPost, "/items", bytes.NewReader(body)), "alice"))

		assert.Equal(t, http.StatusCreated, rr.Code)
		var out api.Item
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
		assert.Equal(t, string(models.ItemPending), out.Status)
		assert.Equal(t, int64(90), out.PointsValue)
		assert.Equal(t, []string{"silk"}, out.Tags)
	})

	t.Run("Validation Details", func(t *testing.T) {
		h, store := setup(t)
		sqlstoretest.User(t, store, "alice", 0)

		body, _ := json.Marshal(api.NewItem{Title: "Scarf", Category: "Hats", Condition: "Worn"})
		rr := httptest.NewRecorder()
		h.SubmitItem(rr, as(httptest.NewRequest(http.MethodPost, "/items", bytes.NewReader(body)), "alice"))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		var out api.ErrorResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
		assert.Equal(t, models.KindValidation, out.Error.Kind)
		assert.NotEmpty(t, out.Error.Details)
	})
}

func TestListItems(t *testing.T) {
	h, store := setup(t)
	sqlstoretest.Item(t, store, "alice", models.ItemAvailable, models.ConditionGood, 50)
	sqlstoretest.Item(t, store, "alice", models.ItemPending, models.ConditionGood, 50)

	t.Run("Public Listing", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.ListItems(rr, httptest.NewRequest(http.MethodGet, "/items", nil), api.ListItemsParams{})

		assert.Equal(t, http.StatusOK, rr.Code)
		var out api.ItemList
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
		assert.Equal(t, 1, out.Count)
	})

	t.Run("Own Listing", func(t *testing.T) {
		uploader := "alice"
		rr := httptest.NewRecorder()
		h.ListItems(rr, as(httptest.NewRequest(http.MethodGet, "/items", nil), "alice"), api.ListItemsParams{UploaderId: &uploader})

		var out api.ItemList
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
		assert.Equal(t, 2, out.Count)
	})

	t.Run("Pending Listing Forbidden", func(t *testing.T) {
		status := string(models.ItemPending)
		rr := httptest.NewRecorder()
		h.ListItems(rr, as(httptest.NewRequest(http.MethodGet, "/items", nil), "bob"), api.ListItemsParams{Status: &status})
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("Limit Out Of Range", func(t *testing.T) {
		limit := int32(500)
		rr := httptest.NewRecorder()
		h.ListItems(rr, httptest.NewRequest(http.MethodGet, "/items", nil), api.ListItemsParams{Limit: &limit})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestGetAndDeleteItem(t *testing.T) {
	h, store := setup(t)
	sqlstoretest.User(t, store, "alice", 0)
	item := sqlstoretest.Item(t, store, "alice", models.ItemPending, models.ConditionGood, 50)
	id := uuid.MustParse(item.ID)

	rr := httptest.NewRecorder()
	h.GetItem(rr, as(httptest.NewRequest(http.MethodGet, "/items/"+item.ID, nil), "bob"), id)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = httptest.NewRecorder()
	h.DeleteItem(rr, as(httptest.NewRequest(http.MethodDelete, "/items/"+item.ID, nil), "bob"), id)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = httptest.NewRecorder()
	h.DeleteItem(rr, as(httptest.NewRequest(http.MethodDelete, "/items/"+item.ID, nil), "alice"), id)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	removed, err := store.GetItem(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ItemRemoved, removed.Status)
}

func TestRedeemItem(t *testing.T) {
	h, store := setup(t)
	sqlstoretest.User(t, store, "alice", 0)
	sqlstoretest.User(t, store, "bob", 10)
	item := sqlstoretest.Item(t, store, "alice", models.ItemAvailable, models.ConditionGood, 50)

	rr := httptest.NewRecorder()
	h.RedeemItem(rr, as(httptest.NewRequest(http.MethodPost, "/items/"+item.ID+"/redeem", nil), "bob"), uuid.MustParse(item.ID))

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	var out api.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	assert.Equal(t, models.KindInsufficientFunds, out.Error.Kind)
	assert.Equal(t, int64(40), *out.Error.Shortfall)
}

func TestReportItem(t *testing.T) {
	h, store := setup(t)
	item := sqlstoretest.Item(t, store, "alice", models.ItemAvailable, models.ConditionGood, 50)
	body, _ := json.Marshal(api.NewReport{Reason: string(models.ReasonCounterfeit)})

	rr := httptest.NewRecorder()
	h.ReportItem(rr, as(httptest.NewRequest(http.MethodPost, "/items/"+item.ID+"/reports", bytes.NewReader(body)), "bob"), uuid.MustParse(item.ID))
	assert.Equal(t, http.StatusCreated, rr.Code)

	rr = httptest.NewRecorder()
	h.ReportItem(rr, as(httptest.NewRequest(http.MethodPost, "/items/"+item.ID+"/reports", bytes.NewReader(body)), "bob"), uuid.MustParse(item.ID))
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = httptest.NewRecorder()
	h.ReportItem(rr, as(httptest.NewRequest(http.MethodPost, "/items/"+item.ID+"/reports", bytes.NewReader(body)), "alice"), uuid.MustParse(item.ID))
	assert.Equal(t, http.StatusForbidden, rr.Code)
}
