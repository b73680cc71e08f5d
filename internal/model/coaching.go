package model

import (
	"time"
)

type Coach struct {
	ID              int64     `gorm:"primaryKey" json:"id"`
	UserID          int64     `gorm:"not null;uniqueIndex" json:"user_id"`
	Specialization  string    `gorm:"size:200;not null" json:"specialization"`
	ExperienceYears int       `gorm:"default:0" json:"experience_years"`
	Bio             string    `gorm:"type:text" json:"bio"`
	HourlyRate      float64   `gorm:"type:decimal(10,2);not null" json:"hourly_rate"`
	IsAvailable     bool      `gorm:"default:true;index" json:"is_available"`
	Rating          float64   `gorm:"type:decimal(3,2);default:0" json:"rating"`
	RatingCount     int       `gorm:"default:0" json:"rating_count"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Coach) TableName() string {
	return "coaches"
}

// 辅导会话状态
const (
	SessionScheduled = "scheduled"
	SessionConfirmed = "confirmed"
	SessionCompleted = "completed"
	SessionCancelled = "cancelled"
)

type CoachingSession struct {
	ID              int64      `gorm:"primaryKey" json:"id"`
	ClientID        int64      `gorm:"not null;index" json:"client_id"`
	CoachID         int64      `gorm:"not null;index" json:"coach_id"`
	SessionType     string     `gorm:"size:20;default:individual" json:"session_type"` // individual, group
	Title           string     `gorm:"size:200;not null" json:"title"`
	Description     string     `gorm:"type:text" json:"description,omitempty"`
	ScheduledAt     time.Time  `gorm:"not null;index" json:"scheduled_at"`
	DurationMinutes int        `gorm:"default:60" json:"duration_minutes"`
	Status          string     `gorm:"size:20;default:scheduled;index" json:"status"`
	MeetingLink     string     `gorm:"size:500" json:"meeting_link,omitempty"`
	Notes           string     `gorm:"type:text" json:"notes,omitempty"`
	Price           float64    `gorm:"type:decimal(10,2);not null" json:"price"`
	IsPaid          bool       `gorm:"default:false" json:"is_paid"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`

	Coach  *Coach `gorm:"foreignKey:CoachID" json:"coach,omitempty"`
	Client *User  `gorm:"foreignKey:ClientID" json:"client,omitempty"`
}

func (CoachingSession) TableName() string {
	return "coaching_sessions"
}

// SessionFeedback 会话反馈，每个会话一条
type SessionFeedback struct {
	ID            int64     `gorm:"primaryKey" json:"id"`
	SessionID     int64     `gorm:"not null;uniqueIndex" json:"session_id"`
	ClientRating  int       `gorm:"not null" json:"client_rating"` // 1-5
	ClientComment string    `gorm:"type:text" json:"client_comment,omitempty"`
	CoachRating   *int      `json:"coach_rating,omitempty"`
	CoachComment  string    `gorm:"type:text" json:"coach_comment,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (SessionFeedback) TableName() string {
	return "session_feedback"
}
