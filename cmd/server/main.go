package main

import (
	"fmt"
	"log"

	"github.com/softskills/softskills_go_server/config"
	"github.com/softskills/softskills_go_server/internal/api"
	"github.com/softskills/softskills_go_server/internal/api/handler"
	"github.com/softskills/softskills_go_server/internal/database"
	"github.com/softskills/softskills_go_server/internal/pkg/cron"
	"github.com/softskills/softskills_go_server/internal/pkg/email"
	"github.com/softskills/softskills_go_server/internal/pkg/oss"
	"github.com/softskills/softskills_go_server/internal/pkg/paytech"
	"github.com/softskills/softskills_go_server/internal/pkg/queue"
	"github.com/softskills/softskills_go_server/internal/pkg/ws"
	"github.com/softskills/softskills_go_server/internal/repository"
	"github.com/softskills/softskills_go_server/internal/service"
)

func main() {
	// 加载配置
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化数据库
	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database connected")

	// 初始化 Redis
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect redis: %v", err)
	}
	log.Println("Redis connected")

	// 初始化 OSS（可选）
	var ossClient *oss.Client
	if cfg.OSS.Endpoint != "" && cfg.OSS.AccessKeyID != "" {
		ossClient, err = oss.NewClient(&cfg.OSS)
		if err != nil {
			log.Printf("Warning: Failed to init OSS client: %v", err)
		} else {
			log.Println("OSS client initialized")
		}
	}

	// 初始化基础组件
	newsletterQueue := queue.NewQueue(rdb, cfg.Queue.NewsletterQueue)
	emailSvc := email.NewService(&cfg.Email)
	gateway := paytech.NewClient(&cfg.PayTech)
	wsHub := ws.NewHub()

	// 初始化 Repository
	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	coachingRepo := repository.NewCoachingRepository(db)
	blogRepo := repository.NewBlogRepository(db)
	newsletterRepo := repository.NewNewsletterRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	couponRepo := repository.NewCouponRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	planRepo := repository.NewPlanRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)

	// 初始化 Service
	authService := service.NewAuthService(userRepo, emailSvc, cfg)
	userService := service.NewUserService(userRepo, ossClient)
	courseService := service.NewCourseService(courseRepo, enrollmentRepo, subscriptionRepo)
	coachingService := service.NewCoachingService(coachingRepo, userRepo, subscriptionRepo, wsHub)
	blogService := service.NewBlogService(blogRepo)
	newsletterService := service.NewNewsletterService(newsletterRepo, newsletterQueue, emailSvc, cfg)
	subscriptionService := service.NewSubscriptionService(subscriptionRepo, planRepo, userRepo)
	paymentService := service.NewPaymentService(
		paymentRepo,
		couponRepo,
		invoiceRepo,
		enrollmentRepo,
		courseRepo,
		coachingRepo,
		subscriptionRepo,
		planRepo,
		userRepo,
		gateway,
		emailSvc,
		wsHub,
		cfg,
	)

	// 初始化 Handler
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	courseHandler := handler.NewCourseHandler(courseService)
	coachingHandler := handler.NewCoachingHandler(coachingService)
	blogHandler := handler.NewBlogHandler(blogService)
	newsletterHandler := handler.NewNewsletterHandler(newsletterService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	subscriptionHandler := handler.NewSubscriptionHandler(subscriptionService)
	websocketHandler := handler.NewWebSocketHandler(wsHub, cfg.JWT.Secret)

	// 启动定时任务
	cronService := cron.NewService(subscriptionService, couponRepo)
	cronService.Start()
	defer cronService.Stop()

	// 初始化 Router
	router := api.NewRouter(
		authHandler,
		userHandler,
		courseHandler,
		coachingHandler,
		blogHandler,
		newsletterHandler,
		paymentHandler,
		subscriptionHandler,
		websocketHandler,
		subscriptionRepo,
		cfg,
	)
	engine := router.Setup()

	// 启动服务器
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Server starting on %s", addr)
	if err := engine.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
