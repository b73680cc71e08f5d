package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PaymentStatus 支付状态，状态迁移必须经过 CanTransition 检查
type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "pending"
	PaymentProcessing PaymentStatus = "processing"
	PaymentCompleted  PaymentStatus = "completed"
	PaymentFailed     PaymentStatus = "failed"
	PaymentRefunded   PaymentStatus = "refunded"
	PaymentCancelled  PaymentStatus = "cancelled"
)

// paymentTransitions 支付状态迁移表：只允许前向迁移，
// refunded / cancelled 为终态，failed 不允许再变为 completed
var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentPending:    {PaymentProcessing, PaymentCompleted, PaymentFailed, PaymentCancelled},
	PaymentProcessing: {PaymentCompleted, PaymentFailed, PaymentCancelled},
	PaymentCompleted:  {PaymentRefunded},
	PaymentFailed:     {},
	PaymentRefunded:   {},
	PaymentCancelled:  {},
}

// CanTransition 检查状态迁移是否合法
func (s PaymentStatus) CanTransition(to PaymentStatus) bool {
	for _, next := range paymentTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal 是否终态
func (s PaymentStatus) IsTerminal() bool {
	return len(paymentTransitions[s]) == 0
}

// 支付用途
const (
	PaymentPurposeSubscription = "subscription"
	PaymentPurposeCourse       = "course"
	PaymentPurposeCoaching     = "coaching"
)

type Payment struct {
	ID            int64         `gorm:"primaryKey" json:"id"`
	UserID        int64         `gorm:"not null;index" json:"user_id"`
	PaymentType   string        `gorm:"size:20;not null;default:course" json:"payment_type"`
	Amount        float64       `gorm:"type:decimal(10,2);not null" json:"amount"`
	DiscountAmt   float64       `gorm:"type:decimal(10,2);default:0" json:"discount_amount"`
	Currency      string        `gorm:"size:3;default:XOF" json:"currency"`
	Status        PaymentStatus `gorm:"size:20;default:pending;index" json:"status"`
	PaymentMethod string        `gorm:"size:20;default:card" json:"payment_method"` // card, mobile_money, bank_transfer

	// 网关返回的 token，唯一；为空时尚未到达网关
	TransactionID   *string        `gorm:"size:100;uniqueIndex" json:"transaction_id,omitempty"`
	GatewayResponse datatypes.JSON `json:"gateway_response,omitempty"`

	// 支付对象，最多指向其中一个
	SubscriptionID *int64 `gorm:"index" json:"subscription_id,omitempty"`
	CourseID       *int64 `gorm:"index" json:"course_id,omitempty"`
	SessionID      *int64 `gorm:"index" json:"session_id,omitempty"`

	CouponID *int64 `gorm:"index" json:"coupon_id,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"` // 首次变为 completed 时写入，之后不再改动
}

func (Payment) TableName() string {
	return "payments"
}

// BeforeSave 首次进入 completed 时写入 CompletedAt，之后保持不变
func (p *Payment) BeforeSave(tx *gorm.DB) error {
	if p.Status == PaymentCompleted && p.CompletedAt == nil {
		now := time.Now()
		p.CompletedAt = &now
	}
	return nil
}

// SubscriptionStatus 订阅状态
type SubscriptionStatus string

const (
	SubscriptionPending   SubscriptionStatus = "pending"
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionExpired   SubscriptionStatus = "expired"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
	SubscriptionFailed    SubscriptionStatus = "failed"
)

var subscriptionTransitions = map[SubscriptionStatus][]SubscriptionStatus{
	SubscriptionPending:   {SubscriptionActive, SubscriptionFailed, SubscriptionCancelled},
	SubscriptionActive:    {SubscriptionExpired, SubscriptionCancelled},
	SubscriptionExpired:   {},
	SubscriptionCancelled: {},
	SubscriptionFailed:    {},
}

// CanTransition 检查订阅状态迁移是否合法
func (s SubscriptionStatus) CanTransition(to SubscriptionStatus) bool {
	for _, next := range subscriptionTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

type SubscriptionPlan struct {
	ID                 int64          `gorm:"primaryKey" json:"id"`
	Name               string         `gorm:"size:100;not null" json:"name"`
	Description        string         `gorm:"type:text" json:"description"`
	PlanType           string         `gorm:"size:20;default:monthly" json:"plan_type"` // monthly, quarterly, yearly, lifetime
	Price              float64        `gorm:"type:decimal(10,2);not null" json:"price"`
	OriginalPrice      *float64       `gorm:"type:decimal(10,2)" json:"original_price,omitempty"`
	DiscountPercentage int            `gorm:"default:0" json:"discount_percentage"`
	Features           datatypes.JSON `json:"features,omitempty"` // 功能列表
	MaxCourses         int            `gorm:"default:0" json:"max_courses"`  // 0 = 不限
	MaxSessions        int            `gorm:"default:0" json:"max_sessions"` // 0 = 不限
	DurationDays       int            `gorm:"default:30" json:"duration_days"`
	IsActive           bool           `gorm:"default:true;index" json:"is_active"`
	IsPopular          bool           `gorm:"default:false" json:"is_popular"`
	IsFeatured         bool           `gorm:"default:false" json:"is_featured"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

func (SubscriptionPlan) TableName() string {
	return "subscription_plans"
}

// DiscountedPrice 折后价
func (p *SubscriptionPlan) DiscountedPrice() float64 {
	if p.DiscountPercentage > 0 {
		return p.Price - p.Price*float64(p.DiscountPercentage)/100
	}
	return p.Price
}

type UserSubscription struct {
	ID            int64              `gorm:"primaryKey" json:"id"`
	UserID        int64              `gorm:"not null;index" json:"user_id"`
	PlanID        int64              `gorm:"not null;index" json:"plan_id"`
	Status        SubscriptionStatus `gorm:"size:20;default:pending;index" json:"status"`
	StartDate     time.Time          `json:"start_date"`
	EndDate       time.Time          `gorm:"index" json:"end_date"`
	CancelledAt   *time.Time         `json:"cancelled_at,omitempty"`
	AutoRenew     bool               `gorm:"default:true" json:"auto_renew"`
	AmountPaid    float64            `gorm:"type:decimal(10,2);default:0" json:"amount_paid"`
	PaymentMethod string             `gorm:"size:50" json:"payment_method,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`

	Plan *SubscriptionPlan `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
}

func (UserSubscription) TableName() string {
	return "user_subscriptions"
}

// IsActive 订阅是否有效，永远实时计算，不落库
func (s *UserSubscription) IsActive() bool {
	return s.Status == SubscriptionActive && s.EndDate.After(time.Now())
}

// DaysRemaining 剩余天数
func (s *UserSubscription) DaysRemaining() int {
	if !s.EndDate.After(time.Now()) {
		return 0
	}
	return int(time.Until(s.EndDate).Hours() / 24)
}
