package dto

// InitiatePaymentRequest 发起支付请求
type InitiatePaymentRequest struct {
	PaymentMethod string `json:"payment_method" binding:"omitempty,oneof=card mobile_money bank_transfer"`
	CouponCode    string `json:"coupon_code" binding:"omitempty,max=20"`
}

// InitiatePaymentResponse 发起支付响应
type InitiatePaymentResponse struct {
	PaymentID   int64   `json:"payment_id"`
	Amount      float64 `json:"amount"`
	Discount    float64 `json:"discount"`
	Currency    string  `json:"currency"`
	RedirectURL string  `json:"redirect_url"`
}

// IPNPayload PayTech 异步通知（IPN）报文
// 网关字段不受我们控制，success 可能是字符串也可能是数字
type IPNPayload struct {
	Token   string      `json:"token"`
	Success interface{} `json:"success"`
	Message string      `json:"message,omitempty"`
}

// ValidateCouponRequest 校验优惠券请求
type ValidateCouponRequest struct {
	Code   string  `json:"code" binding:"required,max=20"`
	Amount float64 `json:"amount" binding:"required,gt=0"`
}

// ValidateCouponResponse 校验优惠券响应
type ValidateCouponResponse struct {
	Valid    bool    `json:"valid"`
	Discount float64 `json:"discount"`
	Final    float64 `json:"final_amount"`
}

// CreatePlanRequest 创建订阅套餐请求
type CreatePlanRequest struct {
	Name               string   `json:"name" binding:"required,max=100"`
	Description        string   `json:"description"`
	PlanType           string   `json:"plan_type" binding:"omitempty,oneof=monthly quarterly yearly lifetime"`
	Price              float64  `json:"price" binding:"required,gt=0"`
	OriginalPrice      *float64 `json:"original_price,omitempty"`
	DiscountPercentage int      `json:"discount_percentage" binding:"omitempty,min=0,max=100"`
	Features           []string `json:"features,omitempty"`
	MaxCourses         int      `json:"max_courses" binding:"omitempty,min=0"`
	MaxSessions        int      `json:"max_sessions" binding:"omitempty,min=0"`
	DurationDays       int      `json:"duration_days" binding:"omitempty,min=1"`
}

// SubscriptionInfo 订阅信息，is_active 为实时计算值
type SubscriptionInfo struct {
	ID            int64   `json:"id"`
	PlanID        int64   `json:"plan_id"`
	PlanName      string  `json:"plan_name"`
	Status        string  `json:"status"`
	StartDate     string  `json:"start_date"`
	EndDate       string  `json:"end_date"`
	IsActive      bool    `json:"is_active"`
	DaysRemaining int     `json:"days_remaining"`
	AmountPaid    float64 `json:"amount_paid"`
}
