// Package mapping converts between domain models and API wire types.
package mapping

import (
	"github.com/chris/clothing-swap-settlement/pkg/api"
	"github.com/chris/clothing-swap-settlement/pkg/items"
	"github.com/chris/clothing-swap-settlement/pkg/ledger"
	"github.com/chris/clothing-swap-settlement/pkg/models"
	"github.com/chris/clothing-swap-settlement/pkg/moderation"
	"github.com/chris/clothing-swap-settlement/pkg/redemption"
)

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ToApiUser converts a domain User to an API User.
func ToApiUser(u *models.User) *api.User {
	return &api.User{
		Id:              u.ID,
		Name:            u.Name,
		Email:           u.Email,
		Points:          u.Points,
		SuccessfulSwaps: u.SuccessfulSwaps,
		Role:            string(u.Role),
		CreatedAt:       u.CreatedAt,
	}
}

// ToApiPointTransaction converts a ledger entry to its API form.
func ToApiPointTransaction(tx *models.PointTransaction) api.PointTransaction {
	return api.PointTransaction{
		Id:                  tx.ID,
		UserId:              tx.UserID,
		Amount:              tx.Amount,
		Type:                string(tx.Type),
		Description:         tx.Description,
		RelatedItemId:       optional(tx.RelatedItemID),
		RelatedSwapId:       optional(tx.RelatedSwapID),
		RelatedRedemptionId: optional(tx.RelatedRedemptionID),
		AdminId:             optional(tx.AdminID),
		BalanceAfter:        tx.BalanceAfter,
		CreatedAt:           tx.CreatedAt,
	}
}

// ToApiPointTransactionList converts ledger entries to an API list.
func ToApiPointTransactionList(entries []models.PointTransaction) *api.PointTransactionList {
	out := &api.PointTransactionList{Transactions: make([]api.PointTransaction, len(entries)), Count: len(entries)}
	for i := range entries {
		out.Transactions[i] = ToApiPointTransaction(&entries[i])
	}
	return out
}

// ToApiPointsSummary converts a ledger summary to its API form.
func ToApiPointsSummary(s *ledger.Summary) *api.PointsSummary {
	out := &api.PointsSummary{
		UserId:       s.UserID,
		Balance:      s.Balance,
		TotalEarned:  s.TotalEarned,
		TotalSpent:   s.TotalSpent,
		Entries:      s.Entries,
		Transactions: make([]api.PointTransaction, len(s.Recent)),
	}
	for i := range s.Recent {
		out.Transactions[i] = ToApiPointTransaction(&s.Recent[i])
	}
	return out
}

// ToDomainPostInput converts an API ledger entry request.
func ToDomainPostInput(in *api.NewLedgerEntry) ledger.PostInput {
	return ledger.PostInput{
		UserID:        in.UserId,
		Amount:        in.Amount,
		Type:          models.TransactionType(in.Type),
		Description:   deref(in.Description),
		RelatedItemID: deref(in.RelatedItemId),
		RelatedSwapID: deref(in.RelatedSwapId),
	}
}

// ToApiAuditReport converts audit results and counts the inconsistent ones.
func ToApiAuditReport(results []ledger.AuditResult) *api.AuditReport {
	out := &api.AuditReport{Results: make([]api.AuditResult, len(results))}
	for i, r := range results {
		out.Results[i] = api.AuditResult{
			UserId:        r.UserID,
			Points:        r.Points,
			Replayed:      r.Replayed,
			Entries:       r.Entries,
			Drift:         r.Drift,
			BrokenChainAt: r.BrokenChainAt,
			Consistent:    r.Consistent(),
		}
		if !r.Consistent() {
			out.Inconsistent++
		}
	}
	return out
}

// ToApiItem converts a domain Item to an API Item.
func ToApiItem(item *models.Item) api.Item {
	tags := item.Tags
	if tags == nil {
		tags = []string{}
	}
	return api.Item{
		Id:              item.ID,
		Title:           item.Title,
		Description:     item.Description,
		Images:          item.Images,
		Category:        string(item.Category),
		Size:            item.Size,
		Condition:       string(item.Condition),
		Tags:            tags,
		PointsValue:     item.PointsValue,
		Status:          string(item.Status),
		UploaderId:      item.UploaderID,
		RedeemedBy:      optional(item.RedeemedBy),
		RedemptionDate:  item.RedemptionDate,
		ApprovedBy:      optional(item.ApprovedBy),
		ApprovedDate:    item.ApprovedDate,
		RejectionReason: optional(item.RejectionReason),
		RemovalReason:   optional(item.RemovalReason),
		CreatedAt:       item.CreatedAt,
		UpdatedAt:       item.UpdatedAt,
	}
}

// ToApiItemList converts a listing.
func ToApiItemList(list []models.Item) *api.ItemList {
	out := &api.ItemList{Items: make([]api.Item, len(list)), Count: len(list)}
	for i := range list {
		out.Items[i] = ToApiItem(&list[i])
	}
	return out
}

// ToDomainSubmitInput converts a new item request.
func ToDomainSubmitInput(in *api.NewItem) items.SubmitInput {
	out := items.SubmitInput{
		Title:       in.Title,
		Description: in.Description,
		Images:      in.Images,
		Category:    models.Category(in.Category),
		Size:        in.Size,
		Condition:   models.Condition(in.Condition),
	}
	if in.Tags != nil {
		out.Tags = *in.Tags
	}
	return out
}

// ToDomainEditInput converts an item update request. Absent fields stay nil.
func ToDomainEditInput(in *api.ItemUpdate) items.EditInput {
	out := items.EditInput{
		Title:       in.Title,
		Description: in.Description,
		Size:        in.Size,
	}
	if in.Images != nil {
		out.Images = *in.Images
	}
	if in.Tags != nil {
		out.Tags = *in.Tags
	}
	if in.Category != nil {
		c := models.Category(*in.Category)
		out.Category = &c
	}
	if in.Condition != nil {
		c := models.Condition(*in.Condition)
		out.Condition = &c
	}
	return out
}

// ToApiRedemption converts a domain Redemption to an API Redemption.
func ToApiRedemption(r *models.Redemption) api.Redemption {
	return api.Redemption{
		Id:                  r.ID,
		ItemId:              r.ItemID,
		UserId:              r.UserID,
		UploaderId:          r.UploaderID,
		PointsSpent:         r.PointsSpent,
		TransactionId:       r.TransactionID,
		CreditTransactionId: r.CreditTransactionID,
		Status:              string(r.Status),
		CreatedAt:           r.CreatedAt,
	}
}

// ToApiRedemptionResult converts the outcome of a redemption.
func ToApiRedemptionResult(res *redemption.Result) *api.RedemptionResult {
	return &api.RedemptionResult{
		Redemption:  ToApiRedemption(&res.Redemption),
		Item:        ToApiItem(&res.Item),
		PointsSpent: res.PointsSpent,
		NewBalance:  res.NewBalance,
	}
}

// ToApiRedemptionList converts a redemption listing.
func ToApiRedemptionList(list []models.Redemption) *api.RedemptionList {
	out := &api.RedemptionList{Redemptions: make([]api.Redemption, len(list)), Count: len(list)}
	for i := range list {
		out.Redemptions[i] = ToApiRedemption(&list[i])
	}
	return out
}

// ToApiSwap converts a domain Swap to an API Swap.
func ToApiSwap(s *models.Swap) api.Swap {
	return api.Swap{
		Id:              s.ID,
		RequesterId:     s.RequesterID,
		OwnerId:         s.OwnerID,
		RequestedItemId: s.RequestedItemID,
		OfferedItemIds:  s.OfferedItemIDs,
		Status:          string(s.Status),
		Message:         optional(s.Message),
		ResponseMessage: optional(s.ResponseMessage),
		AcceptedDate:    s.AcceptedDate,
		RejectedDate:    s.RejectedDate,
		CompletedDate:   s.CompletedDate,
		CancelledDate:   s.CancelledDate,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

// ToApiSwapList converts a swap listing.
func ToApiSwapList(list []models.Swap) *api.SwapList {
	out := &api.SwapList{Swaps: make([]api.Swap, len(list)), Count: len(list)}
	for i := range list {
		out.Swaps[i] = ToApiSwap(&list[i])
	}
	return out
}

// ToApiReport converts a domain Report to an API Report.
func ToApiReport(r *models.Report) api.Report {
	return api.Report{
		Id:           r.ID,
		ItemId:       r.ItemID,
		ReporterId:   r.ReporterID,
		Reason:       string(r.Reason),
		Details:      optional(r.Details),
		Status:       string(r.Status),
		ReviewedBy:   optional(r.ReviewedBy),
		ReviewedDate: r.ReviewedDate,
		ReviewNotes:  optional(r.ReviewNotes),
		CreatedAt:    r.CreatedAt,
	}
}

// ToApiReportList converts a report listing with its status counts.
func ToApiReportList(list *moderation.ReportList) *api.ReportList {
	out := &api.ReportList{
		Reports: make([]api.Report, len(list.Reports)),
		Counts:  make(map[string]int, len(list.Counts)),
	}
	for i := range list.Reports {
		out.Reports[i] = ToApiReport(&list.Reports[i])
	}
	for status, n := range list.Counts {
		out.Counts[string(status)] = n
	}
	return out
}

// BulkKind names the success bucket of a bulk response.
type BulkKind int

const (
	BulkApproved BulkKind = iota
	BulkRejected
	BulkResolved
)

// ToApiBulkResult converts a bulk result, filing successes under kind.
func ToApiBulkResult(res *moderation.BulkResult, kind BulkKind) *api.BulkResult {
	succeeded := make([]api.BulkOutcome, len(res.Succeeded))
	for i, o := range res.Succeeded {
		succeeded[i] = api.BulkOutcome{
			Id:            o.ID,
			UploaderId:    optional(o.UploaderID),
			TransactionId: optional(o.TransactionID),
		}
		if o.Points != 0 {
			points := o.Points
			succeeded[i].Points = &points
		}
	}

	out := &api.BulkResult{
		NotFound:         res.NotFound,
		AlreadyProcessed: make([]api.BulkSkipped, len(res.AlreadyProcessed)),
		InvalidIds:       res.InvalidIDs,
		Failed:           make([]api.BulkFailure, len(res.Failed)),
		Summary: api.BulkSummary{
			Requested:        res.Summary.Requested,
			Succeeded:        res.Summary.Succeeded,
			NotFound:         res.Summary.NotFound,
			AlreadyProcessed: res.Summary.AlreadyProcessed,
			InvalidIds:       res.Summary.InvalidIDs,
			Failed:           res.Summary.Failed,
		},
	}
	for i, s := range res.AlreadyProcessed {
		out.AlreadyProcessed[i] = api.BulkSkipped{Id: s.ID, Status: s.Status}
	}
	for i, f := range res.Failed {
		out.Failed[i] = api.BulkFailure{Id: f.ID, Kind: f.Kind, Message: f.Message}
	}

	switch kind {
	case BulkApproved:
		out.Approved = &succeeded
	case BulkRejected:
		out.Rejected = &succeeded
	case BulkResolved:
		out.Resolved = &succeeded
	}
	return out
}
