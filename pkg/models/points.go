package models

// PointsSchedule maps an item condition to a number of points.
//
// Two independent schedules exist: the approval reward credited to an uploader
// when an admin approves the listing, and the redemption price a member pays
// to redeem the item. They are configured separately and must not be mixed up.
type PointsSchedule struct {
	LikeNew   int64
	Excellent int64
	Good      int64
	Default   int64
}

// DefaultApprovalRewards is the reward schedule used by bulk approval.
var DefaultApprovalRewards = PointsSchedule{LikeNew: 15, Excellent: 10, Good: 5, Default: 3}

// DefaultRedemptionPrices is the price schedule applied when an item is submitted.
var DefaultRedemptionPrices = PointsSchedule{LikeNew: 90, Excellent: 70, Good: 50, Default: 30}

// For returns the points for the given condition. Unknown conditions and Fair use Default.
func (s PointsSchedule) For(c Condition) int64 {
	switch c {
	case ConditionLikeNew:
		return s.LikeNew
	case ConditionExcellent:
		return s.Excellent
	case ConditionGood:
		return s.Good
	default:
		return s.Default
	}
}
