package repository

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/softskills/softskills_go_server/internal/model"
)

type InvoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

func (r *InvoiceRepository) Create(invoice *model.Invoice) error {
	return r.db.Create(invoice).Error
}

func (r *InvoiceRepository) GetByID(id int64) (*model.Invoice, error) {
	var invoice model.Invoice
	err := r.db.Where("id = ?", id).First(&invoice).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *InvoiceRepository) GetByPaymentID(paymentID int64) (*model.Invoice, error) {
	var invoice model.Invoice
	err := r.db.Where("payment_id = ?", paymentID).First(&invoice).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *InvoiceRepository) Update(invoice *model.Invoice) error {
	return r.db.Save(invoice).Error
}

func (r *InvoiceRepository) ListByUser(userID int64, page, pageSize int) ([]*model.Invoice, int64, error) {
	var invoices []*model.Invoice
	var total int64

	query := r.db.Model(&model.Invoice{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&invoices).Error; err != nil {
		return nil, 0, err
	}
	return invoices, total, nil
}

// NextInvoiceNumber 生成发票号，形如 INV-20260830-000042
func (r *InvoiceRepository) NextInvoiceNumber(prefix string) (string, error) {
	var count int64
	if err := r.db.Model(&model.Invoice{}).Count(&count).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s-%06d", prefix, time.Now().Format("20060102"), count+1), nil
}
