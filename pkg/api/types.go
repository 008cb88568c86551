// Package api defines the HTTP wire types and routing of the exchange API.
//
// Wire types use camelCase JSON names. Domain types are converted at the edge
// by package mapping.
package api

import (
	"time"
)

// FieldError describes one invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the body of every failed response.
type Error struct {
	Kind    string       `json:"kind"`
	Message string       `json:"message"`
	Details []FieldError `json:"details,omitempty"`

	// Shortfall is set on InsufficientFunds.
	Shortfall *int64 `json:"shortfall,omitempty"`
}

// ErrorResponse wraps Error.
type ErrorResponse struct {
	Error Error `json:"error"`
}

// RegisterUser is the body of PUT /users/me.
type RegisterUser struct {
	Name  string  `json:"name"`
	Email *string `json:"email,omitempty"`
}

// User is a member's points account.
type User struct {
	Id              string    `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email,omitempty"`
	Points          int64     `json:"points"`
	SuccessfulSwaps int64     `json:"successfulSwaps"`
	Role            string    `json:"role"`
	CreatedAt       time.Time `json:"createdAt"`
}

// PointTransaction is one ledger entry.
type PointTransaction struct {
	Id                  string    `json:"id"`
	UserId              string    `json:"userId"`
	Amount              int64     `json:"amount"`
	Type                string    `json:"type"`
	Description         string    `json:"description"`
	RelatedItemId       *string   `json:"relatedItemId,omitempty"`
	RelatedSwapId       *string   `json:"relatedSwapId,omitempty"`
	RelatedRedemptionId *string   `json:"relatedRedemptionId,omitempty"`
	AdminId             *string   `json:"adminId,omitempty"`
	BalanceAfter        int64     `json:"balanceAfter"`
	CreatedAt           time.Time `json:"createdAt"`
}

// PointsSummary is the response of GET /users/me/points.
type PointsSummary struct {
	UserId       string             `json:"userId"`
	Balance      int64              `json:"balance"`
	TotalEarned  int64              `json:"totalEarned"`
	TotalSpent   int64              `json:"totalSpent"`
	Entries      int                `json:"entries"`
	Transactions []PointTransaction `json:"transactions"`
}

// PointTransactionList is the response of GET /users/me/transactions and
// GET /admin/ledger/entries, newest first.
type PointTransactionList struct {
	Transactions []PointTransaction `json:"transactions"`
	Count        int                `json:"count"`
}

// ListMyTransactionsParams are the query parameters of GET /users/me/transactions.
type ListMyTransactionsParams struct {
	Limit *int32 `form:"limit,omitempty" json:"limit,omitempty"`
}

// NewItem is the body of POST /items.
type NewItem struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Images      []string  `json:"images"`
	Category    string    `json:"category"`
	Size        string    `json:"size"`
	Condition   string    `json:"condition"`
	Tags        *[]string `json:"tags,omitempty"`
}

// ItemUpdate is the body of PUT /items/{itemId}. Absent fields are unchanged.
type ItemUpdate struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Images      *[]string `json:"images,omitempty"`
	Category    *string   `json:"category,omitempty"`
	Size        *string   `json:"size,omitempty"`
	Condition   *string   `json:"condition,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
}

// Item is a listing.
type Item struct {
	Id              string     `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Images          []string   `json:"images"`
	Category        string     `json:"category"`
	Size            string     `json:"size"`
	Condition       string     `json:"condition"`
	Tags            []string   `json:"tags"`
	PointsValue     int64      `json:"pointsValue"`
	Status          string     `json:"status"`
	UploaderId      string     `json:"uploaderId"`
	RedeemedBy      *string    `json:"redeemedBy,omitempty"`
	RedemptionDate  *time.Time `json:"redemptionDate,omitempty"`
	ApprovedBy      *string    `json:"approvedBy,omitempty"`
	ApprovedDate    *time.Time `json:"approvedDate,omitempty"`
	RejectionReason *string    `json:"rejectionReason,omitempty"`
	RemovalReason   *string    `json:"removalReason,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// ItemList is the response of GET /items.
type ItemList struct {
	Items []Item `json:"items"`
	Count int    `json:"count"`
}

// ListItemsParams are the query parameters of GET /items.
type ListItemsParams struct {
	Status     *string `form:"status,omitempty" json:"status,omitempty"`
	UploaderId *string `form:"uploaderId,omitempty" json:"uploaderId,omitempty"`
	Limit      *int32  `form:"limit,omitempty" json:"limit,omitempty"`
}

// Redemption is a completed purchase of an item with points.
type Redemption struct {
	Id                  string    `json:"id"`
	ItemId              string    `json:"itemId"`
	UserId              string    `json:"userId"`
	UploaderId          string    `json:"uploaderId"`
	PointsSpent         int64     `json:"pointsSpent"`
	TransactionId       string    `json:"transactionId"`
	CreditTransactionId string    `json:"creditTransactionId"`
	Status              string    `json:"status"`
	CreatedAt           time.Time `json:"createdAt"`
}

// RedemptionResult is the response of POST /items/{itemId}/redeem.
type RedemptionResult struct {
	Redemption  Redemption `json:"redemption"`
	Item        Item       `json:"item"`
	PointsSpent int64      `json:"pointsSpent"`
	NewBalance  int64      `json:"newBalance"`
}

// RedemptionList is the response of GET /users/me/redemptions.
type RedemptionList struct {
	Redemptions []Redemption `json:"redemptions"`
	Count       int          `json:"count"`
}

// NewReport is the body of POST /items/{itemId}/reports.
type NewReport struct {
	Reason  string  `json:"reason"`
	Details *string `json:"details,omitempty"`
}

// Report is a member's complaint about an item.
type Report struct {
	Id           string     `json:"id"`
	ItemId       string     `json:"itemId"`
	ReporterId   string     `json:"reporterId"`
	Reason       string     `json:"reason"`
	Details      *string    `json:"details,omitempty"`
	Status       string     `json:"status"`
	ReviewedBy   *string    `json:"reviewedBy,omitempty"`
	ReviewedDate *time.Time `json:"reviewedDate,omitempty"`
	ReviewNotes  *string    `json:"reviewNotes,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// ReportList is the response of GET /admin/reports.
type ReportList struct {
	Reports []Report       `json:"reports"`
	Counts  map[string]int `json:"counts"`
}

// ListReportsParams are the query parameters of GET /admin/reports.
type ListReportsParams struct {
	Status *string `form:"status,omitempty" json:"status,omitempty"`
}

// NewSwap is the body of POST /swaps.
type NewSwap struct {
	RequestedItemId string   `json:"requestedItemId"`
	OfferedItemIds  []string `json:"offeredItemIds"`
	Message         *string  `json:"message,omitempty"`
}

// SwapResponse is the optional body of the swap actions.
type SwapResponse struct {
	Message *string `json:"message,omitempty"`
}

// Swap is an item-for-items exchange proposal.
type Swap struct {
	Id              string     `json:"id"`
	RequesterId     string     `json:"requesterId"`
	OwnerId         string     `json:"ownerId"`
	RequestedItemId string     `json:"requestedItemId"`
	OfferedItemIds  []string   `json:"offeredItemIds"`
	Status          string     `json:"status"`
	Message         *string    `json:"message,omitempty"`
	ResponseMessage *string    `json:"responseMessage,omitempty"`
	AcceptedDate    *time.Time `json:"acceptedDate,omitempty"`
	RejectedDate    *time.Time `json:"rejectedDate,omitempty"`
	CompletedDate   *time.Time `json:"completedDate,omitempty"`
	CancelledDate   *time.Time `json:"cancelledDate,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// SwapList is the response of GET /swaps.
type SwapList struct {
	Swaps []Swap `json:"swaps"`
	Count int    `json:"count"`
}

// ListSwapsParams are the query parameters of GET /swaps.
type ListSwapsParams struct {
	Role   *string `form:"role,omitempty" json:"role,omitempty"`
	Status *string `form:"status,omitempty" json:"status,omitempty"`
}

// BulkApprove is the body of POST /admin/items/approve.
type BulkApprove struct {
	ItemIds         []string          `json:"itemIds"`
	PointsOverrides *map[string]int64 `json:"pointsOverrides,omitempty"`
}

// BulkReject is the body of POST /admin/items/reject.
type BulkReject struct {
	ItemIds []string `json:"itemIds"`
	Reason  string   `json:"reason"`
}

// ResolveReports is the body of POST /admin/reports/resolve.
type ResolveReports struct {
	ReportIds []string `json:"reportIds"`
	Action    string   `json:"action"`
	Notes     *string  `json:"notes,omitempty"`
}

// BulkOutcome is one processed id of a bulk call.
type BulkOutcome struct {
	Id            string  `json:"id"`
	UploaderId    *string `json:"uploaderId,omitempty"`
	Points        *int64  `json:"points,omitempty"`
	TransactionId *string `json:"transactionId,omitempty"`
}

// BulkSkipped is an id whose target was already processed.
type BulkSkipped struct {
	Id     string `json:"id"`
	Status string `json:"status"`
}

// BulkFailure is an id whose settlement failed.
type BulkFailure struct {
	Id      string `json:"id"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// BulkSummary counts each bucket of a bulk result.
type BulkSummary struct {
	Requested        int `json:"requested"`
	Succeeded        int `json:"succeeded"`
	NotFound         int `json:"notFound"`
	AlreadyProcessed int `json:"alreadyProcessed"`
	InvalidIds       int `json:"invalidIds"`
	Failed           int `json:"failed"`
}

// BulkResult is the response of the admin bulk endpoints. Exactly one of
// Approved, Rejected or Resolved is set, depending on the endpoint.
type BulkResult struct {
	Approved         *[]BulkOutcome `json:"approved,omitempty"`
	Rejected         *[]BulkOutcome `json:"rejected,omitempty"`
	Resolved         *[]BulkOutcome `json:"resolved,omitempty"`
	NotFound         []string       `json:"notFound"`
	AlreadyProcessed []BulkSkipped  `json:"alreadyProcessed"`
	InvalidIds       []string       `json:"invalidIds"`
	Failed           []BulkFailure  `json:"failed"`
	Summary          BulkSummary    `json:"summary"`
}

// NewLedgerEntry is the body of POST /admin/ledger/entries.
type NewLedgerEntry struct {
	UserId        string  `json:"userId"`
	Amount        int64   `json:"amount"`
	Type          string  `json:"type"`
	Description   *string `json:"description,omitempty"`
	RelatedItemId *string `json:"relatedItemId,omitempty"`
	RelatedSwapId *string `json:"relatedSwapId,omitempty"`
}

// ListLedgerEntriesParams are the query parameters of GET /admin/ledger/entries.
type ListLedgerEntriesParams struct {
	Limit *int32 `form:"limit,omitempty" json:"limit,omitempty"`
}

// AuditResult is the ledger replay of one user.
type AuditResult struct {
	UserId        string `json:"userId"`
	Points        int64  `json:"points"`
	Replayed      int64  `json:"replayed"`
	Entries       int    `json:"entries"`
	Drift         int64  `json:"drift"`
	BrokenChainAt *int   `json:"brokenChainAt,omitempty"`
	Consistent    bool   `json:"consistent"`
}

// AuditReport is the response of GET /admin/ledger/audit.
type AuditReport struct {
	Results      []AuditResult `json:"results"`
	Inconsistent int           `json:"inconsistent"`
}

// AuditLedgerParams are the query parameters of GET /admin/ledger/audit.
type AuditLedgerParams struct {
	UserId *string `form:"userId,omitempty" json:"userId,omitempty"`
}
