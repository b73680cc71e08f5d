package model

import (
	"time"
)

// 优惠券类型
const (
	CouponPercentage = "percentage"
	CouponFixed      = "fixed"
)

type Coupon struct {
	ID            int64     `gorm:"primaryKey" json:"id"`
	Code          string    `gorm:"size:20;uniqueIndex;not null" json:"code"`
	Description   string    `gorm:"size:200" json:"description,omitempty"`
	CouponType    string    `gorm:"size:20;default:percentage" json:"coupon_type"`
	DiscountValue float64   `gorm:"type:decimal(10,2);not null" json:"discount_value"`
	MinAmount     float64   `gorm:"type:decimal(10,2);default:0" json:"min_amount"`
	MaxUses       int       `gorm:"default:0" json:"max_uses"` // 0 = 不限
	UsedCount     int       `gorm:"default:0" json:"used_count"`
	ValidFrom     time.Time `gorm:"not null" json:"valid_from"`
	ValidUntil    time.Time `gorm:"not null" json:"valid_until"`
	IsActive      bool      `gorm:"default:true" json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (Coupon) TableName() string {
	return "coupons"
}

// IsValid 使用时实时判断，不允许缓存结果
func (c *Coupon) IsValid(now time.Time) bool {
	if !c.IsActive {
		return false
	}
	if now.Before(c.ValidFrom) || now.After(c.ValidUntil) {
		return false
	}
	if c.MaxUses > 0 && c.UsedCount >= c.MaxUses {
		return false
	}
	return true
}

// CalculateDiscount 计算折扣金额，结果不会超过原金额
func (c *Coupon) CalculateDiscount(amount float64) float64 {
	if amount < c.MinAmount {
		return 0
	}
	if c.CouponType == CouponPercentage {
		return amount * c.DiscountValue / 100
	}
	if c.DiscountValue > amount {
		return amount
	}
	return c.DiscountValue
}
