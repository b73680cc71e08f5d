package dto

// CourseListQuery 课程列表查询参数
type CourseListQuery struct {
	Category   string `form:"category"`
	Difficulty string `form:"difficulty"`
	Free       *bool  `form:"free"`
	Featured   *bool  `form:"featured"`
	Keyword    string `form:"keyword"`
	Page       int    `form:"page"`
	PageSize   int    `form:"page_size"`
}

// CreateCourseRequest 创建课程请求
type CreateCourseRequest struct {
	Title            string  `json:"title" binding:"required,max=200"`
	Slug             string  `json:"slug" binding:"required,max=200"`
	Description      string  `json:"description" binding:"required"`
	ShortDescription string  `json:"short_description" binding:"omitempty,max=300"`
	CategoryID       int64   `json:"category_id" binding:"required"`
	DifficultyLevel  string  `json:"difficulty_level" binding:"omitempty,oneof=beginner intermediate advanced"`
	DurationHours    int     `json:"duration_hours" binding:"omitempty,min=0"`
	Price            float64 `json:"price" binding:"omitempty,min=0"`
	IsFree           bool    `json:"is_free"`
	Objectives       string  `json:"objectives"`
	Prerequisites    string  `json:"prerequisites"`
}

// CourseProgress 课程学习进度，按需计算
type CourseProgress struct {
	CourseID         int64   `json:"course_id"`
	TotalLessons     int     `json:"total_lessons"`
	CompletedLessons int     `json:"completed_lessons"`
	Percentage       float64 `json:"percentage"`
}

// RateCourseRequest 课程评分请求
type RateCourseRequest struct {
	Rating int    `json:"rating" binding:"required,min=1,max=5"`
	Review string `json:"review" binding:"omitempty,max=2000"`
}

// CourseRatingSummary 课程评分汇总
type CourseRatingSummary struct {
	Average float64 `json:"average"`
	Count   int64   `json:"count"`
}
