package service

import (
	"context"
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/softskills/softskills_go_server/config"
	"github.com/softskills/softskills_go_server/internal/model"
	"github.com/softskills/softskills_go_server/internal/model/dto"
	"github.com/softskills/softskills_go_server/internal/pkg/email"
	"github.com/softskills/softskills_go_server/internal/pkg/queue"
	"github.com/softskills/softskills_go_server/internal/repository"
)

var (
	ErrAlreadySubscribed  = errors.New("该邮箱已订阅")
	ErrSubscriberNotFound = errors.New("未找到订阅记录")
	ErrNewsletterSent     = errors.New("该通讯已发送过")
)

type NewsletterService struct {
	newsletterRepo *repository.NewsletterRepository
	queue          *queue.Queue
	emailSvc       *email.Service
	cfg            *config.Config
}

func NewNewsletterService(newsletterRepo *repository.NewsletterRepository, q *queue.Queue, emailSvc *email.Service, cfg *config.Config) *NewsletterService {
	return &NewsletterService{
		newsletterRepo: newsletterRepo,
		queue:          q,
		emailSvc:       emailSvc,
		cfg:            cfg,
	}
}

// Subscribe 订阅邮件通讯。退订过的邮箱重新激活
func (s *NewsletterService) Subscribe(req *dto.SubscribeNewsletterRequest) error {
	existing, err := s.newsletterRepo.GetSubscriberByEmail(req.Email)
	if err == nil {
		if existing.IsActive {
			return ErrAlreadySubscribed
		}
		existing.IsActive = true
		existing.UnsubscribedAt = nil
		return s.newsletterRepo.UpdateSubscriber(existing)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	return s.newsletterRepo.CreateSubscriber(&model.NewsletterSubscriber{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		IsActive:  true,
	})
}

// Unsubscribe 退订
func (s *NewsletterService) Unsubscribe(emailAddr string) error {
	subscriber, err := s.newsletterRepo.GetSubscriberByEmail(emailAddr)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSubscriberNotFound
		}
		return err
	}
	if !subscriber.IsActive {
		return ErrSubscriberNotFound
	}

	now := time.Now()
	subscriber.IsActive = false
	subscriber.UnsubscribedAt = &now
	return s.newsletterRepo.UpdateSubscriber(subscriber)
}

// Send 创建通讯并把每个活跃订阅者的发送任务入队，
// 实际发送由 worker 消费队列完成
func (s *NewsletterService) Send(ctx context.Context, req *dto.SendNewsletterRequest) (*model.Newsletter, int, error) {
	newsletter := &model.Newsletter{
		Title:   req.Title,
		Subject: req.Subject,
		Content: req.Content,
	}
	if err := s.newsletterRepo.Create(newsletter); err != nil {
		return nil, 0, err
	}

	batchSize := s.cfg.Newsletter.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}

	enqueued := 0
	for offset := 0; ; offset += batchSize {
		subscribers, err := s.newsletterRepo.ListActiveSubscribers(offset, batchSize)
		if err != nil {
			return nil, enqueued, err
		}
		if len(subscribers) == 0 {
			break
		}

		for _, sub := range subscribers {
			err := s.queue.Push(ctx, &queue.NewsletterMessage{
				NewsletterID: newsletter.ID,
				Email:        sub.Email,
				Subject:      newsletter.Subject,
				Content:      newsletter.Content,
			})
			if err != nil {
				return nil, enqueued, err
			}
			enqueued++
		}
	}

	if err := s.newsletterRepo.MarkSent(newsletter.ID, enqueued); err != nil {
		return nil, enqueued, err
	}
	return newsletter, enqueued, nil
}

// ProcessQueue 消费发送队列，worker 进程调用，阻塞直到 ctx 取消
func (s *NewsletterService) ProcessQueue(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		msg, err := s.queue.Pop(ctx, 5*time.Second)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("Failed to pop newsletter message: %v", err)
			time.Sleep(time.Second)
			continue
		}
		if msg == nil {
			continue
		}

		if err := s.emailSvc.SendNewsletter(msg.Email, msg.Subject, msg.Content); err != nil {
			log.Printf("Failed to send newsletter %d to %s: %v", msg.NewsletterID, msg.Email, err)
		}
	}
}
