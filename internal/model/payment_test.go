package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPaymentStatus_CanTransition(t *testing.T) {
	cases := []struct {
		from PaymentStatus
		to   PaymentStatus
		ok   bool
	}{
		{PaymentPending, PaymentProcessing, true},
		{PaymentPending, PaymentCompleted, true},
		{PaymentPending, PaymentFailed, true},
		{PaymentPending, PaymentCancelled, true},
		{PaymentProcessing, PaymentCompleted, true},
		{PaymentProcessing, PaymentFailed, true},
		{PaymentCompleted, PaymentRefunded, true},

		// 不允许回退或从终态迁出
		{PaymentCompleted, PaymentPending, false},
		{PaymentCompleted, PaymentFailed, false},
		{PaymentFailed, PaymentCompleted, false},
		{PaymentRefunded, PaymentCompleted, false},
		{PaymentCancelled, PaymentPending, false},
		{PaymentProcessing, PaymentPending, false},
	}

	for _, c := range cases {
		assert.Equal(t, c.ok, c.from.CanTransition(c.to), "%s -> %s", c.from, c.to)
	}
}

func TestPaymentStatus_IsTerminal(t *testing.T) {
	assert.False(t, PaymentPending.IsTerminal())
	assert.False(t, PaymentProcessing.IsTerminal())
	assert.False(t, PaymentCompleted.IsTerminal()) // 还可以退款
	assert.True(t, PaymentFailed.IsTerminal())
	assert.True(t, PaymentRefunded.IsTerminal())
	assert.True(t, PaymentCancelled.IsTerminal())
}

func TestSubscriptionStatus_CanTransition(t *testing.T) {
	assert.True(t, SubscriptionPending.CanTransition(SubscriptionActive))
	assert.True(t, SubscriptionPending.CanTransition(SubscriptionFailed))
	assert.True(t, SubscriptionActive.CanTransition(SubscriptionExpired))
	assert.True(t, SubscriptionActive.CanTransition(SubscriptionCancelled))

	assert.False(t, SubscriptionFailed.CanTransition(SubscriptionActive))
	assert.False(t, SubscriptionExpired.CanTransition(SubscriptionActive))
	assert.False(t, SubscriptionCancelled.CanTransition(SubscriptionActive))
}

func TestUserSubscription_IsActive(t *testing.T) {
	sub := &UserSubscription{
		Status:  SubscriptionActive,
		EndDate: time.Now().Add(24 * time.Hour),
	}
	assert.True(t, sub.IsActive())

	// 状态不对
	sub.Status = SubscriptionPending
	assert.False(t, sub.IsActive())

	// 已过期
	sub.Status = SubscriptionActive
	sub.EndDate = time.Now().Add(-time.Hour)
	assert.False(t, sub.IsActive())
}

func TestSubscriptionPlan_DiscountedPrice(t *testing.T) {
	plan := &SubscriptionPlan{Price: 100}
	assert.Equal(t, 100.0, plan.DiscountedPrice())

	plan.DiscountPercentage = 20
	assert.Equal(t, 80.0, plan.DiscountedPrice())
}
