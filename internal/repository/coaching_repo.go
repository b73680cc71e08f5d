package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/softskills/softskills_go_server/internal/model"
)

type CoachingRepository struct {
	db *gorm.DB
}

func NewCoachingRepository(db *gorm.DB) *CoachingRepository {
	return &CoachingRepository{db: db}
}

func (r *CoachingRepository) CreateCoach(coach *model.Coach) error {
	return r.db.Create(coach).Error
}

func (r *CoachingRepository) GetCoachByID(id int64) (*model.Coach, error) {
	var coach model.Coach
	err := r.db.Preload("User").Where("id = ?", id).First(&coach).Error
	if err != nil {
		return nil, err
	}
	return &coach, nil
}

func (r *CoachingRepository) GetCoachByUserID(userID int64) (*model.Coach, error) {
	var coach model.Coach
	err := r.db.Where("user_id = ?", userID).First(&coach).Error
	if err != nil {
		return nil, err
	}
	return &coach, nil
}

func (r *CoachingRepository) UpdateCoach(coach *model.Coach) error {
	return r.db.Save(coach).Error
}

// ListCoaches 可预约教练列表
func (r *CoachingRepository) ListCoaches(page, pageSize int, specialization string) ([]*model.Coach, int64, error) {
	var coaches []*model.Coach
	var total int64

	query := r.db.Model(&model.Coach{}).Preload("User").Where("is_available = ?", true)
	if specialization != "" {
		query = query.Where("specialization LIKE ?", "%"+specialization+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.Order("rating DESC").Offset(offset).Limit(pageSize).Find(&coaches).Error; err != nil {
		return nil, 0, err
	}
	return coaches, total, nil
}

// UpdateCoachRating 重算教练评分
func (r *CoachingRepository) UpdateCoachRating(coachID int64, rating float64, count int) error {
	return r.db.Model(&model.Coach{}).Where("id = ?", coachID).Updates(map[string]interface{}{
		"rating":       rating,
		"rating_count": count,
	}).Error
}

func (r *CoachingRepository) CreateSession(session *model.CoachingSession) error {
	return r.db.Create(session).Error
}

func (r *CoachingRepository) GetSessionByID(id int64) (*model.CoachingSession, error) {
	var session model.CoachingSession
	err := r.db.Preload("Coach").Preload("Coach.User").Preload("Client").
		Where("id = ?", id).First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *CoachingRepository) UpdateSession(session *model.CoachingSession) error {
	return r.db.Save(session).Error
}

func (r *CoachingRepository) ListSessionsByClient(clientID int64, page, pageSize int, status string) ([]*model.CoachingSession, int64, error) {
	var sessions []*model.CoachingSession
	var total int64

	query := r.db.Model(&model.CoachingSession{}).Preload("Coach").Preload("Coach.User").
		Where("client_id = ?", clientID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.Order("scheduled_at DESC").Offset(offset).Limit(pageSize).Find(&sessions).Error; err != nil {
		return nil, 0, err
	}
	return sessions, total, nil
}

func (r *CoachingRepository) ListSessionsByCoach(coachID int64, page, pageSize int, status string) ([]*model.CoachingSession, int64, error) {
	var sessions []*model.CoachingSession
	var total int64

	query := r.db.Model(&model.CoachingSession{}).Preload("Client").
		Where("coach_id = ?", coachID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.Order("scheduled_at DESC").Offset(offset).Limit(pageSize).Find(&sessions).Error; err != nil {
		return nil, 0, err
	}
	return sessions, total, nil
}

// HasOverlappingSession 教练在该时段是否已有未取消的会话。
// 结束时间由时长推算，无法直接落在 SQL 里，先按开始时间圈定候选再在内存判断。
func (r *CoachingRepository) HasOverlappingSession(coachID int64, start time.Time, durationMinutes int) (bool, error) {
	end := start.Add(time.Duration(durationMinutes) * time.Minute)

	var candidates []*model.CoachingSession
	err := r.db.Where("coach_id = ? AND status IN ?", coachID, []string{model.SessionScheduled, model.SessionConfirmed}).
		Where("scheduled_at < ? AND scheduled_at > ?", end, start.Add(-24*time.Hour)).
		Find(&candidates).Error
	if err != nil {
		return false, err
	}

	for _, s := range candidates {
		sessionEnd := s.ScheduledAt.Add(time.Duration(s.DurationMinutes) * time.Minute)
		if sessionEnd.After(start) {
			return true, nil
		}
	}
	return false, nil
}

// CountPaidSessionsByClient 用户付费会话数，用于套餐配额判断
func (r *CoachingRepository) CountPaidSessionsByClient(clientID int64) (int64, error) {
	var count int64
	err := r.db.Model(&model.CoachingSession{}).
		Where("client_id = ? AND is_paid = ?", clientID, true).Count(&count).Error
	return count, err
}

func (r *CoachingRepository) CreateFeedback(feedback *model.SessionFeedback) error {
	return r.db.Create(feedback).Error
}

func (r *CoachingRepository) GetFeedbackBySessionID(sessionID int64) (*model.SessionFeedback, error) {
	var feedback model.SessionFeedback
	err := r.db.Where("session_id = ?", sessionID).First(&feedback).Error
	if err != nil {
		return nil, err
	}
	return &feedback, nil
}

// AverageCoachRating 教练所有会话反馈的平均分
func (r *CoachingRepository) AverageCoachRating(coachID int64) (float64, int64, error) {
	var result struct {
		Avg   float64
		Count int64
	}
	err := r.db.Model(&model.SessionFeedback{}).
		Select("COALESCE(AVG(session_feedback.client_rating), 0) AS avg, COUNT(*) AS count").
		Joins("JOIN coaching_sessions ON coaching_sessions.id = session_feedback.session_id").
		Where("coaching_sessions.coach_id = ?", coachID).
		Scan(&result).Error
	return result.Avg, result.Count, err
}
