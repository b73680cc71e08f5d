package model

import (
	"time"

	"gorm.io/gorm"
)

// Invoice 发票，与 Payment 一对一
type Invoice struct {
	ID            int64   `gorm:"primaryKey" json:"id"`
	UserID        int64   `gorm:"not null;index" json:"user_id"`
	PaymentID     int64   `gorm:"not null;uniqueIndex" json:"payment_id"`
	InvoiceNumber string  `gorm:"size:50;uniqueIndex;not null" json:"invoice_number"`
	Subtotal      float64 `gorm:"type:decimal(10,2);not null" json:"subtotal"`
	TaxAmount     float64 `gorm:"type:decimal(10,2);default:0" json:"tax_amount"`
	DiscountAmt   float64 `gorm:"type:decimal(10,2);default:0" json:"discount_amount"`
	TotalAmount   float64 `gorm:"type:decimal(10,2);not null" json:"total_amount"` // = subtotal + tax - discount

	BillingAddress string `gorm:"type:text" json:"billing_address,omitempty"`
	BillingCity    string `gorm:"size:100" json:"billing_city,omitempty"`
	BillingCountry string `gorm:"size:100" json:"billing_country,omitempty"`

	IsPaid    bool       `gorm:"default:false" json:"is_paid"`
	PaidAt    *time.Time `json:"paid_at,omitempty"` // 首次变为已支付时写入，之后不再改动
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (Invoice) TableName() string {
	return "invoices"
}

// BeforeSave 首次标记已支付时写入 PaidAt，之后保持不变
func (i *Invoice) BeforeSave(tx *gorm.DB) error {
	if i.IsPaid && i.PaidAt == nil {
		now := time.Now()
		i.PaidAt = &now
	}
	return nil
}
