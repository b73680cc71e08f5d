package service

import (
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/softskills/softskills_go_server/internal/model"
	"github.com/softskills/softskills_go_server/internal/model/dto"
	"github.com/softskills/softskills_go_server/internal/pkg/ws"
	"github.com/softskills/softskills_go_server/internal/repository"
)

var (
	ErrCoachNotFound        = errors.New("教练不存在")
	ErrCoachUnavailable     = errors.New("教练暂不接受预约")
	ErrSessionNotFound      = errors.New("会话不存在")
	ErrTimeSlotTaken        = errors.New("该时段已被预约")
	ErrInvalidScheduleTime  = errors.New("预约时间无效")
	ErrSessionNotCompleted  = errors.New("会话尚未结束")
	ErrAlreadyGaveFeedback  = errors.New("已提交过反馈")
	ErrSessionNotCancelable = errors.New("会话已无法取消")
	ErrSessionQuotaFull     = errors.New("已达套餐会话数量上限")
)

// 开始前 24 小时内不允许取消
const cancelDeadline = 24 * time.Hour

type CoachingService struct {
	coachingRepo *repository.CoachingRepository
	userRepo     *repository.UserRepository
	subRepo      *repository.SubscriptionRepository
	hub          *ws.Hub
}

func NewCoachingService(coachingRepo *repository.CoachingRepository, userRepo *repository.UserRepository, subRepo *repository.SubscriptionRepository, hub *ws.Hub) *CoachingService {
	return &CoachingService{
		coachingRepo: coachingRepo,
		userRepo:     userRepo,
		subRepo:      subRepo,
		hub:          hub,
	}
}

// ListCoaches 可预约教练列表
func (s *CoachingService) ListCoaches(page, pageSize int, specialization string) ([]*model.Coach, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.coachingRepo.ListCoaches(page, pageSize, specialization)
}

// GetCoach 教练详情
func (s *CoachingService) GetCoach(id int64) (*model.Coach, error) {
	coach, err := s.coachingRepo.GetCoachByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCoachNotFound
		}
		return nil, err
	}
	return coach, nil
}

// BookSession 预约辅导会话。价格按教练时薪和时长计算，
// 创建后状态为 scheduled，支付完成后确认
func (s *CoachingService) BookSession(clientID int64, req *dto.BookSessionRequest) (*model.CoachingSession, error) {
	coach, err := s.coachingRepo.GetCoachByID(req.CoachID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCoachNotFound
		}
		return nil, err
	}
	if !coach.IsAvailable {
		return nil, ErrCoachUnavailable
	}

	scheduledAt, err := time.Parse(time.RFC3339, req.ScheduledAt)
	if err != nil {
		return nil, ErrInvalidScheduleTime
	}
	if scheduledAt.Before(time.Now()) {
		return nil, ErrInvalidScheduleTime
	}

	duration := req.DurationMinutes
	if duration == 0 {
		duration = 60
	}

	taken, err := s.coachingRepo.HasOverlappingSession(coach.ID, scheduledAt, duration)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrTimeSlotTaken
	}

	session := &model.CoachingSession{
		ClientID:        clientID,
		CoachID:         coach.ID,
		SessionType:     req.SessionType,
		Title:           req.Title,
		Description:     req.Description,
		ScheduledAt:     scheduledAt,
		DurationMinutes: duration,
		Status:          model.SessionScheduled,
		Price:           coach.HourlyRate * float64(duration) / 60,
	}
	if session.SessionType == "" {
		session.SessionType = "individual"
	}

	// 订阅额度内的会话直接确认，无须单独付费
	sub, err := s.subRepo.GetActiveByUserID(clientID)
	if err == nil && sub.IsActive() {
		covered := true
		if sub.Plan != nil && sub.Plan.MaxSessions > 0 {
			count, err := s.coachingRepo.CountPaidSessionsByClient(clientID)
			if err != nil {
				return nil, err
			}
			if count >= int64(sub.Plan.MaxSessions) {
				covered = false
			}
		}
		if covered {
			session.Status = model.SessionConfirmed
			session.IsPaid = true
		}
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if err := s.coachingRepo.CreateSession(session); err != nil {
		return nil, err
	}

	s.notifyCoach(coach.UserID, ws.EventSessionBooked, session)
	return session, nil
}

// ListMySessions 我预约的会话
func (s *CoachingService) ListMySessions(clientID int64, page, pageSize int, status string) ([]*model.CoachingSession, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.coachingRepo.ListSessionsByClient(clientID, page, pageSize, status)
}

// ListCoachSessions 教练名下的会话
func (s *CoachingService) ListCoachSessions(coachUserID int64, page, pageSize int, status string) ([]*model.CoachingSession, int64, error) {
	coach, err := s.coachingRepo.GetCoachByUserID(coachUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrCoachNotFound
		}
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.coachingRepo.ListSessionsByCoach(coach.ID, page, pageSize, status)
}

// CancelSession 取消会话，开始前 24 小时内不允许
func (s *CoachingService) CancelSession(userID, sessionID int64) error {
	session, err := s.coachingRepo.GetSessionByID(sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSessionNotFound
		}
		return err
	}

	isClient := session.ClientID == userID
	isCoach := session.Coach != nil && session.Coach.UserID == userID
	if !isClient && !isCoach {
		return ErrPermissionDenied
	}

	if session.Status != model.SessionScheduled && session.Status != model.SessionConfirmed {
		return ErrSessionNotCancelable
	}
	if isClient && time.Until(session.ScheduledAt) < cancelDeadline {
		return ErrSessionNotCancelable
	}

	session.Status = model.SessionCancelled
	if err := s.coachingRepo.UpdateSession(session); err != nil {
		return err
	}

	if isClient && session.Coach != nil {
		s.notifyCoach(session.Coach.UserID, ws.EventSessionCancelled, session)
	} else {
		s.notifyCoach(session.ClientID, ws.EventSessionCancelled, session)
	}
	return nil
}

// CompleteSession 教练标记会话结束
func (s *CoachingService) CompleteSession(coachUserID, sessionID int64) error {
	session, err := s.coachingRepo.GetSessionByID(sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSessionNotFound
		}
		return err
	}
	if session.Coach == nil || session.Coach.UserID != coachUserID {
		return ErrPermissionDenied
	}
	if session.Status != model.SessionScheduled && session.Status != model.SessionConfirmed {
		return ErrSessionNotCompleted
	}

	now := time.Now()
	session.Status = model.SessionCompleted
	session.CompletedAt = &now
	return s.coachingRepo.UpdateSession(session)
}

// SubmitFeedback 客户提交反馈，同时重算教练评分
func (s *CoachingService) SubmitFeedback(clientID, sessionID int64, req *dto.SessionFeedbackRequest) (*model.SessionFeedback, error) {
	session, err := s.coachingRepo.GetSessionByID(sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if session.ClientID != clientID {
		return nil, ErrPermissionDenied
	}
	if session.Status != model.SessionCompleted {
		return nil, ErrSessionNotCompleted
	}

	if _, err := s.coachingRepo.GetFeedbackBySessionID(sessionID); err == nil {
		return nil, ErrAlreadyGaveFeedback
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	feedback := &model.SessionFeedback{
		SessionID:     sessionID,
		ClientRating:  req.Rating,
		ClientComment: req.Comment,
	}
	if err := s.coachingRepo.CreateFeedback(feedback); err != nil {
		return nil, err
	}

	avg, count, err := s.coachingRepo.AverageCoachRating(session.CoachID)
	if err != nil {
		return nil, err
	}
	if err := s.coachingRepo.UpdateCoachRating(session.CoachID, avg, int(count)); err != nil {
		return nil, err
	}

	return feedback, nil
}

func (s *CoachingService) notifyCoach(userID int64, event string, session *model.CoachingSession) {
	if s.hub == nil {
		return
	}
	if err := s.hub.SendToUser(userID, &ws.Message{Type: event, Data: session}); err != nil {
		log.Printf("Failed to push %s to user %d: %v", event, userID, err)
	}
}
