package service

import (
	"encoding/json"
	"errors"
	"log"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/softskills/softskills_go_server/internal/model"
	"github.com/softskills/softskills_go_server/internal/model/dto"
	"github.com/softskills/softskills_go_server/internal/repository"
)

var (
	ErrNoActiveSubscription = errors.New("当前没有有效订阅")
	ErrSubNotCancelable     = errors.New("订阅已无法取消")
)

type SubscriptionService struct {
	subRepo  *repository.SubscriptionRepository
	planRepo *repository.PlanRepository
	userRepo *repository.UserRepository
}

func NewSubscriptionService(subRepo *repository.SubscriptionRepository, planRepo *repository.PlanRepository, userRepo *repository.UserRepository) *SubscriptionService {
	return &SubscriptionService{
		subRepo:  subRepo,
		planRepo: planRepo,
		userRepo: userRepo,
	}
}

// ListPlans 可购买套餐
func (s *SubscriptionService) ListPlans() ([]*model.SubscriptionPlan, error) {
	return s.planRepo.ListActive()
}

// GetPlan 套餐详情
func (s *SubscriptionService) GetPlan(id int64) (*model.SubscriptionPlan, error) {
	plan, err := s.planRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return plan, nil
}

// CreatePlan 创建套餐
func (s *SubscriptionService) CreatePlan(req *dto.CreatePlanRequest) (*model.SubscriptionPlan, error) {
	plan := &model.SubscriptionPlan{
		Name:               req.Name,
		Description:        req.Description,
		PlanType:           req.PlanType,
		Price:              req.Price,
		OriginalPrice:      req.OriginalPrice,
		DiscountPercentage: req.DiscountPercentage,
		MaxCourses:         req.MaxCourses,
		MaxSessions:        req.MaxSessions,
		DurationDays:       req.DurationDays,
		IsActive:           true,
	}
	if plan.PlanType == "" {
		plan.PlanType = "monthly"
	}
	if plan.DurationDays == 0 {
		plan.DurationDays = 30
	}
	if len(req.Features) > 0 {
		features, err := json.Marshal(req.Features)
		if err != nil {
			return nil, err
		}
		plan.Features = datatypes.JSON(features)
	}

	if err := s.planRepo.Create(plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// GetMySubscription 当前订阅信息，is_active 实时计算
func (s *SubscriptionService) GetMySubscription(userID int64) (*dto.SubscriptionInfo, error) {
	sub, err := s.subRepo.GetActiveByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoActiveSubscription
		}
		return nil, err
	}
	return buildSubscriptionInfo(sub), nil
}

// ListMySubscriptions 历史订阅
func (s *SubscriptionService) ListMySubscriptions(userID int64) ([]*dto.SubscriptionInfo, error) {
	subs, err := s.subRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	infos := make([]*dto.SubscriptionInfo, 0, len(subs))
	for _, sub := range subs {
		infos = append(infos, buildSubscriptionInfo(sub))
	}
	return infos, nil
}

// CancelSubscription 取消订阅。已付周期内仍可用到期，只是不再续费
func (s *SubscriptionService) CancelSubscription(userID int64) error {
	sub, err := s.subRepo.GetActiveByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNoActiveSubscription
		}
		return err
	}
	if !sub.Status.CanTransition(model.SubscriptionCancelled) {
		return ErrSubNotCancelable
	}

	now := time.Now()
	sub.Status = model.SubscriptionCancelled
	sub.CancelledAt = &now
	sub.AutoRenew = false
	if err := s.subRepo.Update(sub); err != nil {
		return err
	}

	// 冗余标记立即收回，访问权限以订阅记录为准
	return s.userRepo.SetSubscriptionFlag(userID, false, nil)
}

// ExpireSweep 把已到期的 active 订阅迁移到 expired，
// 清理任务和定时器调用，返回处理数量
func (s *SubscriptionService) ExpireSweep(batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = 100
	}

	expired, err := s.subRepo.ListExpired(batchSize)
	if err != nil {
		return 0, err
	}

	processed := 0
	for _, sub := range expired {
		if !sub.Status.CanTransition(model.SubscriptionExpired) {
			continue
		}
		sub.Status = model.SubscriptionExpired
		if err := s.subRepo.Update(sub); err != nil {
			log.Printf("Failed to expire subscription %d: %v", sub.ID, err)
			continue
		}
		if err := s.userRepo.SetSubscriptionFlag(sub.UserID, false, nil); err != nil {
			log.Printf("Failed to clear subscription flag for user %d: %v", sub.UserID, err)
			continue
		}
		processed++
	}
	return processed, nil
}

func buildSubscriptionInfo(sub *model.UserSubscription) *dto.SubscriptionInfo {
	info := &dto.SubscriptionInfo{
		ID:            sub.ID,
		PlanID:        sub.PlanID,
		Status:        string(sub.Status),
		StartDate:     sub.StartDate.Format(time.RFC3339),
		EndDate:       sub.EndDate.Format(time.RFC3339),
		IsActive:      sub.IsActive(),
		DaysRemaining: sub.DaysRemaining(),
		AmountPaid:    sub.AmountPaid,
	}
	if sub.Plan != nil {
		info.PlanName = sub.Plan.Name
	}
	return info
}
