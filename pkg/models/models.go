package models

import (
	"time"
)

// Role is the access level carried by a caller identity.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ItemStatus defines the possible states of a listing.
type ItemStatus string

const (
	ItemPending   ItemStatus = "pending"
	ItemAvailable ItemStatus = "available"
	ItemSwapping  ItemStatus = "swapping"
	ItemSwapped   ItemStatus = "swapped"
	ItemRedeemed  ItemStatus = "redeemed"
	ItemRejected  ItemStatus = "rejected"
	ItemRemoved   ItemStatus = "removed"
)

// Condition grades the wear of an item. It drives both points schedules.
type Condition string

const (
	ConditionLikeNew   Condition = "Like New"
	ConditionExcellent Condition = "Excellent"
	ConditionGood      Condition = "Good"
	ConditionFair      Condition = "Fair"
)

// Category is the garment category of an item.
type Category string

const (
	CategoryTops        Category = "Tops"
	CategoryBottoms     Category = "Bottoms"
	CategoryDresses     Category = "Dresses"
	CategoryOuterwear   Category = "Outerwear"
	CategoryFootwear    Category = "Footwear"
	CategoryAccessories Category = "Accessories"
	CategoryActivewear  Category = "Activewear"
	CategoryFormal      Category = "Formal"
	CategoryOther       Category = "Other"
)

// TransactionType classifies a ledger entry.
type TransactionType string

const (
	TransactionUpload TransactionType = "upload"
	TransactionRedeem TransactionType = "redeem"
	TransactionSwap   TransactionType = "swap"
	TransactionAdmin  TransactionType = "admin"
	TransactionBonus  TransactionType = "bonus"
)

type RedemptionStatus string

const (
	RedemptionCompleted RedemptionStatus = "completed"
	RedemptionCancelled RedemptionStatus = "cancelled"
	RedemptionRefunded  RedemptionStatus = "refunded"
)

type SwapStatus string

const (
	SwapPending   SwapStatus = "pending"
	SwapAccepted  SwapStatus = "accepted"
	SwapRejected  SwapStatus = "rejected"
	SwapCompleted SwapStatus = "completed"
	SwapCancelled SwapStatus = "cancelled"
)

type ReportReason string

const (
	ReasonInappropriate ReportReason = "Inappropriate content"
	ReasonCounterfeit   ReportReason = "Counterfeit item"
	ReasonMisleading    ReportReason = "Misleading description"
	ReasonWrongCategory ReportReason = "Wrong category"
	ReasonOther         ReportReason = "Other"
)

type ReportStatus string

const (
	ReportPending   ReportStatus = "pending"
	ReportDismissed ReportStatus = "dismissed"
	ReportRemoved   ReportStatus = "removed"
)

// User is the points-holding account of a member.
// Points only ever change together with a PointTransaction in the same settlement.
type User struct {
	ID              string    `json:"id" dynamodbav:"id" gorm:"primaryKey"`
	Name            string    `json:"name" dynamodbav:"name"`
	Email           string    `json:"email" dynamodbav:"email"`
	Points          int64     `json:"points" dynamodbav:"points" gorm:"not null;default:0"`
	SuccessfulSwaps int64     `json:"successful_swaps" dynamodbav:"successful_swaps" gorm:"not null;default:0"`
	Role            Role      `json:"role" dynamodbav:"role" gorm:"not null"`
	Version         int64     `json:"version" dynamodbav:"version" gorm:"not null;default:0"`
	CreatedAt       time.Time `json:"created_at" dynamodbav:"created_at"`
}

// Item represents a single clothing listing.
type Item struct {
	ID              string     `json:"id" dynamodbav:"id" gorm:"primaryKey"`
	Title           string     `json:"title" dynamodbav:"title"`
	Description     string     `json:"description" dynamodbav:"description"`
	Images          []string   `json:"images" dynamodbav:"images" gorm:"serializer:json"`
	Category        Category   `json:"category" dynamodbav:"category"`
	Size            string     `json:"size" dynamodbav:"size"`
	Condition       Condition  `json:"condition" dynamodbav:"condition"`
	Tags            []string   `json:"tags,omitempty" dynamodbav:"tags,omitempty" gorm:"serializer:json"`
	PointsValue     int64      `json:"points_value" dynamodbav:"points_value"`
	Status          ItemStatus `json:"status" dynamodbav:"status" gorm:"index;not null"`
	UploaderID      string     `json:"uploader_id" dynamodbav:"uploader_id" gorm:"index;not null"`
	RedeemedBy      string     `json:"redeemed_by,omitempty" dynamodbav:"redeemed_by,omitempty"`
	RedemptionDate  *time.Time `json:"redemption_date,omitempty" dynamodbav:"redemption_date,omitempty"`
	ApprovedBy      string     `json:"approved_by,omitempty" dynamodbav:"approved_by,omitempty"`
	ApprovedDate    *time.Time `json:"approved_date,omitempty" dynamodbav:"approved_date,omitempty"`
	RejectedBy      string     `json:"rejected_by,omitempty" dynamodbav:"rejected_by,omitempty"`
	RejectedDate    *time.Time `json:"rejected_date,omitempty" dynamodbav:"rejected_date,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty" dynamodbav:"rejection_reason,omitempty"`
	RemovedBy       string     `json:"removed_by,omitempty" dynamodbav:"removed_by,omitempty"`
	RemovedDate     *time.Time `json:"removed_date,omitempty" dynamodbav:"removed_date,omitempty"`
	RemovalReason   string     `json:"removal_reason,omitempty" dynamodbav:"removal_reason,omitempty"`
	Version         int64      `json:"version" dynamodbav:"version" gorm:"not null;default:0"`
	CreatedAt       time.Time  `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" dynamodbav:"updated_at"`
}

// PointTransaction is an immutable ledger entry.
type PointTransaction struct {
	ID                  string          `json:"id" dynamodbav:"id" gorm:"primaryKey"`
	UserID              string          `json:"user_id" dynamodbav:"user_id" gorm:"index:idx_ledger_user_created,priority:1;not null"`
	Amount              int64           `json:"amount" dynamodbav:"amount"`
	Type                TransactionType `json:"type" dynamodbav:"type"`
	Description         string          `json:"description" dynamodbav:"description"`
	RelatedItemID       string          `json:"related_item_id,omitempty" dynamodbav:"related_item_id,omitempty"`
	RelatedSwapID       string          `json:"related_swap_id,omitempty" dynamodbav:"related_swap_id,omitempty"`
	RelatedRedemptionID string          `json:"related_redemption_id,omitempty" dynamodbav:"related_redemption_id,omitempty"`
	AdminID             string          `json:"admin_id,omitempty" dynamodbav:"admin_id,omitempty"`
	BalanceAfter        int64           `json:"balance_after" dynamodbav:"balance_after"`
	CreatedAt           time.Time       `json:"created_at" dynamodbav:"created_at" gorm:"index:idx_ledger_user_created,priority:2"`
	GSI1PK              string          `json:"-" dynamodbav:"gsi1pk" gorm:"-"`
}

// Redemption records a points-for-item settlement.
type Redemption struct {
	ID                  string           `json:"id" dynamodbav:"id" gorm:"primaryKey"`
	ItemID              string           `json:"item_id" dynamodbav:"item_id" gorm:"index;not null"`
	UserID              string           `json:"user_id" dynamodbav:"user_id" gorm:"index;not null"`
	UploaderID          string           `json:"uploader_id" dynamodbav:"uploader_id"`
	PointsSpent         int64            `json:"points_spent" dynamodbav:"points_spent"`
	TransactionID       string           `json:"transaction_id" dynamodbav:"transaction_id"`
	CreditTransactionID string           `json:"credit_transaction_id" dynamodbav:"credit_transaction_id"`
	Status              RedemptionStatus `json:"status" dynamodbav:"status"`
	CancellationReason  string           `json:"cancellation_reason,omitempty" dynamodbav:"cancellation_reason,omitempty"`
	CancelledDate       *time.Time       `json:"cancelled_date,omitempty" dynamodbav:"cancelled_date,omitempty"`
	RefundTransactionID string           `json:"refund_transaction_id,omitempty" dynamodbav:"refund_transaction_id,omitempty"`
	CreatedAt           time.Time        `json:"created_at" dynamodbav:"created_at"`
}

// Swap records an item-for-item exchange between a requester and an item owner.
type Swap struct {
	ID              string     `json:"id" dynamodbav:"id" gorm:"primaryKey"`
	RequesterID     string     `json:"requester_id" dynamodbav:"requester_id" gorm:"index;uniqueIndex:idx_pending_swap,where:status = 'pending';not null"`
	OwnerID         string     `json:"owner_id" dynamodbav:"owner_id" gorm:"index;not null"`
	RequestedItemID string     `json:"requested_item_id" dynamodbav:"requested_item_id" gorm:"index;uniqueIndex:idx_pending_swap,where:status = 'pending';not null"`
	OfferedItemIDs  []string   `json:"offered_item_ids" dynamodbav:"offered_item_ids" gorm:"serializer:json"`
	Status          SwapStatus `json:"status" dynamodbav:"status" gorm:"index;not null"`
	Message         string     `json:"message,omitempty" dynamodbav:"message,omitempty"`
	ResponseMessage string     `json:"response_message,omitempty" dynamodbav:"response_message,omitempty"`
	AcceptedDate    *time.Time `json:"accepted_date,omitempty" dynamodbav:"accepted_date,omitempty"`
	RejectedDate    *time.Time `json:"rejected_date,omitempty" dynamodbav:"rejected_date,omitempty"`
	CompletedDate   *time.Time `json:"completed_date,omitempty" dynamodbav:"completed_date,omitempty"`
	CancelledDate   *time.Time `json:"cancelled_date,omitempty" dynamodbav:"cancelled_date,omitempty"`
	CreatedAt       time.Time  `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" dynamodbav:"updated_at"`
}

// Involves reports whether userID is one of the two parties of the swap.
func (s *Swap) Involves(userID string) bool {
	return s.RequesterID == userID || s.OwnerID == userID
}

// ItemIDs returns the requested item followed by every offered item.
func (s *Swap) ItemIDs() []string {
	ids := make([]string, 0, len(s.OfferedItemIDs)+1)
	ids = append(ids, s.RequestedItemID)
	return append(ids, s.OfferedItemIDs...)
}

// Report is a complaint against an item.
type Report struct {
	ID           string       `json:"id" dynamodbav:"id" gorm:"primaryKey"`
	ItemID       string       `json:"item_id" dynamodbav:"item_id" gorm:"uniqueIndex:idx_report_item_reporter;not null"`
	ReporterID   string       `json:"reporter_id" dynamodbav:"reporter_id" gorm:"uniqueIndex:idx_report_item_reporter;not null"`
	Reason       ReportReason `json:"reason" dynamodbav:"reason"`
	Details      string       `json:"details,omitempty" dynamodbav:"details,omitempty"`
	Status       ReportStatus `json:"status" dynamodbav:"status" gorm:"index;not null"`
	ReviewedBy   string       `json:"reviewed_by,omitempty" dynamodbav:"reviewed_by,omitempty"`
	ReviewedDate *time.Time   `json:"reviewed_date,omitempty" dynamodbav:"reviewed_date,omitempty"`
	ReviewNotes  string       `json:"review_notes,omitempty" dynamodbav:"review_notes,omitempty"`
	CreatedAt    time.Time    `json:"created_at" dynamodbav:"created_at"`
}
