package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/softskills/softskills_go_server/config"
	"github.com/softskills/softskills_go_server/internal/database"
	"github.com/softskills/softskills_go_server/internal/pkg/email"
	"github.com/softskills/softskills_go_server/internal/pkg/queue"
	"github.com/softskills/softskills_go_server/internal/repository"
	"github.com/softskills/softskills_go_server/internal/service"
)

// 邮件通讯发送 worker，从 Redis 队列取任务逐封投递
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
	log.Println("Database connected")

	// 初始化 Redis
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect redis: %v", err)
	}
	log.Println("Redis connected")

	newsletterQueue := queue.NewQueue(rdb, cfg.Queue.NewsletterQueue)
	emailSvc := email.NewService(&cfg.Email)
	newsletterRepo := repository.NewNewsletterRepository(db)
	newsletterService := service.NewNewsletterService(newsletterRepo, newsletterQueue, emailSvc, cfg)

	// 创建 context 用于优雅关闭
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 监听退出信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("Received shutdown signal")
		cancel()
	}()

	maxWorkers := cfg.Queue.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	log.Printf("Worker started, max workers: %d", maxWorkers)

	var wg sync.WaitGroup
	for i := 0; i < maxWorkers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			newsletterService.ProcessQueue(ctx)
			log.Printf("Worker %d shutting down", workerID)
		}(i)
	}
	wg.Wait()
}
