package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/softskills/softskills_go_server/internal/testutil"
)

func TestCouponRepository_GetByCode(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewCouponRepository(db)

	created := testutil.TestCoupon(t, db)

	found, err := repo.GetByCode(created.Code)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
}

func TestCouponRepository_IncrementUsed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewCouponRepository(db)

	coupon := testutil.TestCoupon(t, db, testutil.WithMaxUses(2, 0))

	ok, err := repo.IncrementUsed(coupon.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.IncrementUsed(coupon.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	// 额度用完后占用失败，计数不再增长
	ok, err = repo.IncrementUsed(coupon.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	reloaded, err := repo.GetByID(coupon.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.UsedCount)
}

func TestCouponRepository_IncrementUsed_Unlimited(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewCouponRepository(db)

	coupon := testutil.TestCoupon(t, db, testutil.WithMaxUses(0, 100))

	ok, err := repo.IncrementUsed(coupon.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}
