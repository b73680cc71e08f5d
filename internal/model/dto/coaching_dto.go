package dto

// BookSessionRequest 预约辅导会话请求
type BookSessionRequest struct {
	CoachID         int64  `json:"coach_id" binding:"required"`
	Title           string `json:"title" binding:"required,max=200"`
	Description     string `json:"description" binding:"omitempty,max=2000"`
	SessionType     string `json:"session_type" binding:"omitempty,oneof=individual group"`
	ScheduledAt     string `json:"scheduled_at" binding:"required"` // RFC3339
	DurationMinutes int    `json:"duration_minutes" binding:"omitempty,min=30,max=240"`
}

// SessionFeedbackRequest 会话反馈请求
type SessionFeedbackRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"omitempty,max=2000"`
}
