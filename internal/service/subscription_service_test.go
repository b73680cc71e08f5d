package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/softskills/softskills_go_server/internal/model"
	"github.com/softskills/softskills_go_server/internal/repository"
	"github.com/softskills/softskills_go_server/internal/testutil"
)

func newSubscriptionService(db *gorm.DB) *SubscriptionService {
	return NewSubscriptionService(
		repository.NewSubscriptionRepository(db),
		repository.NewPlanRepository(db),
		repository.NewUserRepository(db),
	)
}

func TestSubscriptionService_GetMySubscription(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := newSubscriptionService(db)

	user := testutil.TestUser(t, db)
	plan := testutil.TestPlan(t, db)
	testutil.TestSubscription(t, db, user.ID, plan.ID,
		testutil.WithSubscriptionStatus(model.SubscriptionActive))

	info, err := svc.GetMySubscription(user.ID)
	require.NoError(t, err)
	assert.True(t, info.IsActive)
	assert.Equal(t, plan.ID, info.PlanID)
	assert.Equal(t, plan.Name, info.PlanName)
}

func TestSubscriptionService_GetMySubscription_None(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := newSubscriptionService(db)

	user := testutil.TestUser(t, db)

	_, err := svc.GetMySubscription(user.ID)
	assert.ErrorIs(t, err, ErrNoActiveSubscription)
}

func TestSubscriptionService_Cancel(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := newSubscriptionService(db)

	user := testutil.TestUser(t, db, testutil.WithSubscribed(time.Now().Add(30*24*time.Hour)))
	plan := testutil.TestPlan(t, db)
	sub := testutil.TestSubscription(t, db, user.ID, plan.ID,
		testutil.WithSubscriptionStatus(model.SubscriptionActive))

	require.NoError(t, svc.CancelSubscription(user.ID))

	reloaded, err := repository.NewSubscriptionRepository(db).GetByID(sub.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SubscriptionCancelled, reloaded.Status)
	assert.NotNil(t, reloaded.CancelledAt)
	assert.False(t, reloaded.IsActive())

	// 用户冗余标记被收回
	updated, err := repository.NewUserRepository(db).GetByID(user.ID)
	require.NoError(t, err)
	assert.False(t, updated.IsSubscribed)

	// 再次取消报无有效订阅
	err = svc.CancelSubscription(user.ID)
	assert.ErrorIs(t, err, ErrNoActiveSubscription)
}

func TestSubscriptionService_ExpireSweep(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := newSubscriptionService(db)

	plan := testutil.TestPlan(t, db)

	// 一个已到期，一个还有效
	expiredUser := testutil.TestUser(t, db, testutil.WithSubscribed(time.Now().Add(-time.Hour)))
	expired := testutil.TestSubscription(t, db, expiredUser.ID, plan.ID,
		testutil.WithSubscriptionStatus(model.SubscriptionActive))
	expired.EndDate = time.Now().Add(-time.Hour)
	require.NoError(t, db.Save(expired).Error)

	activeUser := testutil.TestUser(t, db)
	active := testutil.TestSubscription(t, db, activeUser.ID, plan.ID,
		testutil.WithSubscriptionStatus(model.SubscriptionActive))

	processed, err := svc.ExpireSweep(100)
	require.NoError(t, err)
	assert.Equal(t, 1, processed)

	reloaded, err := repository.NewSubscriptionRepository(db).GetByID(expired.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SubscriptionExpired, reloaded.Status)

	stillActive, err := repository.NewSubscriptionRepository(db).GetByID(active.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SubscriptionActive, stillActive.Status)

	// 到期用户的标记被清掉
	user, err := repository.NewUserRepository(db).GetByID(expiredUser.ID)
	require.NoError(t, err)
	assert.False(t, user.IsSubscribed)

	// 再跑一遍没有可处理的
	processed, err = svc.ExpireSweep(100)
	require.NoError(t, err)
	assert.Equal(t, 0, processed)
}

func TestSubscriptionService_ListPlans(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := newSubscriptionService(db)

	cheap := testutil.TestPlan(t, db, testutil.WithPlanPrice(50))
	testutil.TestPlan(t, db, testutil.WithPlanPrice(150))
	inactive := testutil.TestPlan(t, db)
	inactive.IsActive = false
	require.NoError(t, db.Save(inactive).Error)

	plans, err := svc.ListPlans()
	require.NoError(t, err)
	require.Len(t, plans, 2)

	// 按价格升序
	assert.Equal(t, cheap.ID, plans[0].ID)
}
