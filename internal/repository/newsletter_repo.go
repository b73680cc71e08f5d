package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/softskills/softskills_go_server/internal/model"
)

type NewsletterRepository struct {
	db *gorm.DB
}

func NewNewsletterRepository(db *gorm.DB) *NewsletterRepository {
	return &NewsletterRepository{db: db}
}

func (r *NewsletterRepository) Create(newsletter *model.Newsletter) error {
	return r.db.Create(newsletter).Error
}

func (r *NewsletterRepository) GetByID(id int64) (*model.Newsletter, error) {
	var newsletter model.Newsletter
	err := r.db.Where("id = ?", id).First(&newsletter).Error
	if err != nil {
		return nil, err
	}
	return &newsletter, nil
}

// MarkSent 记录发送完成
func (r *NewsletterRepository) MarkSent(id int64, sentCount int) error {
	now := time.Now()
	return r.db.Model(&model.Newsletter{}).Where("id = ?", id).Updates(map[string]interface{}{
		"is_sent":    true,
		"sent_at":    &now,
		"sent_count": sentCount,
	}).Error
}

func (r *NewsletterRepository) GetSubscriberByEmail(email string) (*model.NewsletterSubscriber, error) {
	var subscriber model.NewsletterSubscriber
	err := r.db.Where("email = ?", email).First(&subscriber).Error
	if err != nil {
		return nil, err
	}
	return &subscriber, nil
}

func (r *NewsletterRepository) CreateSubscriber(subscriber *model.NewsletterSubscriber) error {
	return r.db.Create(subscriber).Error
}

func (r *NewsletterRepository) UpdateSubscriber(subscriber *model.NewsletterSubscriber) error {
	return r.db.Save(subscriber).Error
}

// ListActiveSubscribers 分批取活跃订阅者
func (r *NewsletterRepository) ListActiveSubscribers(offset, limit int) ([]*model.NewsletterSubscriber, error) {
	var subscribers []*model.NewsletterSubscriber
	err := r.db.Where("is_active = ?", true).
		Order("id ASC").Offset(offset).Limit(limit).Find(&subscribers).Error
	return subscribers, err
}

func (r *NewsletterRepository) CountActiveSubscribers() (int64, error) {
	var count int64
	err := r.db.Model(&model.NewsletterSubscriber{}).Where("is_active = ?", true).Count(&count).Error
	return count, err
}
