package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/softskills/softskills_go_server/internal/model"
)

type SubscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

func (r *SubscriptionRepository) Create(sub *model.UserSubscription) error {
	return r.db.Create(sub).Error
}

func (r *SubscriptionRepository) GetByID(id int64) (*model.UserSubscription, error) {
	var sub model.UserSubscription
	err := r.db.Preload("Plan").Where("id = ?", id).First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *SubscriptionRepository) Update(sub *model.UserSubscription) error {
	return r.db.Save(sub).Error
}

// GetActiveByUserID 用户当前有效订阅，未到期且状态为 active
func (r *SubscriptionRepository) GetActiveByUserID(userID int64) (*model.UserSubscription, error) {
	var sub model.UserSubscription
	err := r.db.Preload("Plan").
		Where("user_id = ? AND status = ? AND end_date > ?", userID, model.SubscriptionActive, time.Now()).
		Order("end_date DESC").First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *SubscriptionRepository) ListByUser(userID int64) ([]*model.UserSubscription, error) {
	var subs []*model.UserSubscription
	err := r.db.Preload("Plan").Where("user_id = ?", userID).
		Order("created_at DESC").Find(&subs).Error
	return subs, err
}

// ListExpired 已过期但状态仍是 active 的订阅，供清理任务使用
func (r *SubscriptionRepository) ListExpired(limit int) ([]*model.UserSubscription, error) {
	var subs []*model.UserSubscription
	err := r.db.Where("status = ? AND end_date <= ?", model.SubscriptionActive, time.Now()).
		Limit(limit).Find(&subs).Error
	return subs, err
}
