package cron

import (
	"log"
	"time"

	"github.com/softskills/softskills_go_server/internal/repository"
	"github.com/softskills/softskills_go_server/internal/service"
)

// 每次过期扫描处理的订阅数上限
const sweepBatchSize = 500

type Service struct {
	subscriptionService *service.SubscriptionService
	couponRepo          *repository.CouponRepository
	stopChan            chan struct{}
}

func NewService(
	subscriptionService *service.SubscriptionService,
	couponRepo *repository.CouponRepository,
) *Service {
	return &Service{
		subscriptionService: subscriptionService,
		couponRepo:          couponRepo,
		stopChan:            make(chan struct{}),
	}
}

// Start 启动定时任务
func (s *Service) Start() {
	go s.runDailyExpirySweep()
	go s.runCouponCleanup()
	log.Println("Cron service started (subscription sweep + coupon cleanup)")
}

// Stop 停止定时任务
func (s *Service) Stop() {
	close(s.stopChan)
	log.Println("Cron service stopped")
}

// runDailyExpirySweep 每日订阅过期扫描任务
func (s *Service) runDailyExpirySweep() {
	now := time.Now().UTC()
	nextMidnight := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, time.UTC)
	timer := time.NewTimer(nextMidnight.Sub(now))

	for {
		select {
		case <-s.stopChan:
			timer.Stop()
			return
		case <-timer.C:
			s.sweepExpiredSubscriptions()
			timer.Reset(24 * time.Hour)
		}
	}
}

// sweepExpiredSubscriptions 将已过期的订阅标记为 expired 并同步用户标记
func (s *Service) sweepExpiredSubscriptions() {
	log.Println("Starting subscription expiry sweep...")
	processed, err := s.subscriptionService.ExpireSweep(sweepBatchSize)
	if err != nil {
		log.Printf("Subscription expiry sweep failed: %v", err)
		return
	}
	log.Printf("Subscription expiry sweep completed, processed=%d", processed)
}

// runCouponCleanup 每小时下线过期优惠券
func (s *Service) runCouponCleanup() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			deactivated, err := s.couponRepo.DeactivateExpired()
			if err != nil {
				log.Printf("Coupon cleanup failed: %v", err)
				continue
			}
			if deactivated > 0 {
				log.Printf("Coupon cleanup: deactivated=%d", deactivated)
			}
		}
	}
}

// RunNow 立即执行一轮扫描（用于测试或手动触发）
func (s *Service) RunNow() (int, error) {
	log.Println("Manual expiry sweep triggered...")
	if _, err := s.couponRepo.DeactivateExpired(); err != nil {
		return 0, err
	}
	return s.subscriptionService.ExpireSweep(sweepBatchSize)
}
