package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"Nil", nil, ""},
		{"Validation", NewValidationError("title", "is required"), KindValidation},
		{"Wrapped Not Found", fmt.Errorf("item abc: %w", ErrNotFound), KindNotFound},
		{"State", &StateError{Entity: "item", Current: "redeemed"}, KindInvalidState},
		{"Self Redemption", ErrSelfRedemptionDenied, KindSelfRedemptionDenied},
		{"Self Report", ErrSelfReportDenied, KindSelfReportDenied},
		{"Self Swap", ErrSelfSwapDenied, KindSelfActionDenied},
		{"Insufficient Funds", &InsufficientFundsError{Required: 50, Available: 40}, KindInsufficientFunds},
		{"Transaction Failure", fmt.Errorf("%w: conflict", ErrTransactionFailed), KindTransactionFailed},
		{"Unknown", errors.New("boom"), KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorKind(tt.err))
		})
	}
}

func TestInsufficientFundsError(t *testing.T) {
	err := &InsufficientFundsError{Required: 50, Available: 40}

	assert.Equal(t, int64(10), err.Shortfall())
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Contains(t, err.Error(), "shortfall 10")
}

func TestPointsSchedules(t *testing.T) {
	t.Run("Approval Rewards", func(t *testing.T) {
		assert.Equal(t, int64(15), DefaultApprovalRewards.For(ConditionLikeNew))
		assert.Equal(t, int64(10), DefaultApprovalRewards.For(ConditionExcellent))
		assert.Equal(t, int64(5), DefaultApprovalRewards.For(ConditionGood))
		assert.Equal(t, int64(3), DefaultApprovalRewards.For(ConditionFair))
	})

	t.Run("Redemption Prices", func(t *testing.T) {
		assert.Equal(t, int64(90), DefaultRedemptionPrices.For(ConditionLikeNew))
		assert.Equal(t, int64(70), DefaultRedemptionPrices.For(ConditionExcellent))
		assert.Equal(t, int64(50), DefaultRedemptionPrices.For(ConditionGood))
		assert.Equal(t, int64(30), DefaultRedemptionPrices.For(Condition("Worn")))
	})
}
