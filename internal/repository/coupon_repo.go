package repository

import (
	"gorm.io/gorm"

	"github.com/softskills/softskills_go_server/internal/model"
)

type CouponRepository struct {
	db *gorm.DB
}

func NewCouponRepository(db *gorm.DB) *CouponRepository {
	return &CouponRepository{db: db}
}

func (r *CouponRepository) Create(coupon *model.Coupon) error {
	return r.db.Create(coupon).Error
}

func (r *CouponRepository) GetByCode(code string) (*model.Coupon, error) {
	var coupon model.Coupon
	err := r.db.Where("code = ?", code).First(&coupon).Error
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}

func (r *CouponRepository) GetByID(id int64) (*model.Coupon, error) {
	var coupon model.Coupon
	err := r.db.Where("id = ?", id).First(&coupon).Error
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}

// IncrementUsed 占用一次使用额度。条件更新保证并发下不会超过上限，
// 返回 false 表示额度已用完。
func (r *CouponRepository) IncrementUsed(id int64) (bool, error) {
	result := r.db.Model(&model.Coupon{}).
		Where("id = ? AND (max_uses = 0 OR used_count < max_uses)", id).
		Update("used_count", gorm.Expr("used_count + 1"))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// DeactivateExpired 批量停用过期券，返回停用数量
func (r *CouponRepository) DeactivateExpired() (int64, error) {
	result := r.db.Model(&model.Coupon{}).
		Where("is_active = ? AND valid_until < CURRENT_TIMESTAMP", true).
		Update("is_active", false)
	return result.RowsAffected, result.Error
}
