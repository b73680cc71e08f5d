package main

import (
	"flag"
	"log"
	"os"

	"github.com/softskills/softskills_go_server/config"
	"github.com/softskills/softskills_go_server/internal/database"
	"github.com/softskills/softskills_go_server/internal/repository"
	"github.com/softskills/softskills_go_server/internal/service"
)

var batchSize = flag.Int("batch-size", 500, "Max subscriptions to expire per run")

// 一次性维护任务：过期订阅扫描 + 过期优惠券下线。
// 适合挂在外部 crontab 上运行
func main() {
	flag.Parse()

	log.Println("Starting cleanup task...")

	// 加载配置
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化数据库
	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}

	subscriptionService := service.NewSubscriptionService(
		repository.NewSubscriptionRepository(db),
		repository.NewPlanRepository(db),
		repository.NewUserRepository(db),
	)
	couponRepo := repository.NewCouponRepository(db)

	processed, err := subscriptionService.ExpireSweep(*batchSize)
	if err != nil {
		log.Fatalf("Subscription expiry sweep failed: %v", err)
	}
	log.Printf("Expired subscriptions processed: %d", processed)

	deactivated, err := couponRepo.DeactivateExpired()
	if err != nil {
		log.Fatalf("Coupon cleanup failed: %v", err)
	}
	log.Printf("Coupons deactivated: %d", deactivated)

	log.Println("Cleanup task completed")
}
