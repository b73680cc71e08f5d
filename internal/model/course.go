package model

import (
	"time"
)

type Category struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Slug        string    `gorm:"size:100;uniqueIndex;not null" json:"slug"`
	Description string    `gorm:"type:text" json:"description"`
	Icon        string    `gorm:"size:50" json:"icon,omitempty"`
	Color       string    `gorm:"size:7;default:#007bff" json:"color"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Category) TableName() string {
	return "categories"
}

type Course struct {
	ID               int64      `gorm:"primaryKey" json:"id"`
	Title            string     `gorm:"size:200;not null" json:"title"`
	Slug             string     `gorm:"size:200;uniqueIndex;not null" json:"slug"`
	Description      string     `gorm:"type:text" json:"description"`
	ShortDescription string     `gorm:"size:300" json:"short_description"`
	CategoryID       int64      `gorm:"not null;index" json:"category_id"`
	InstructorID     int64      `gorm:"not null;index" json:"instructor_id"`
	DifficultyLevel  string     `gorm:"size:20;default:beginner" json:"difficulty_level"` // beginner, intermediate, advanced
	DurationHours    int        `gorm:"default:0" json:"duration_hours"`
	Price            float64    `gorm:"type:decimal(10,2);default:0" json:"price"`
	IsFree           bool       `gorm:"default:false" json:"is_free"`
	ThumbnailURL     string     `gorm:"size:500" json:"thumbnail_url"`
	VideoIntro       string     `gorm:"size:500" json:"video_intro,omitempty"`
	Objectives       string     `gorm:"type:text" json:"objectives"`
	Prerequisites    string     `gorm:"type:text" json:"prerequisites,omitempty"`
	IsPublished      bool       `gorm:"default:false;index" json:"is_published"`
	IsFeatured       bool       `gorm:"default:false" json:"is_featured"`
	EnrollmentCount  int        `gorm:"default:0" json:"enrollment_count"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	PublishedAt      *time.Time `json:"published_at,omitempty"`

	// 关联
	Category   *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Instructor *User     `gorm:"foreignKey:InstructorID" json:"instructor,omitempty"`
	Lessons    []*Lesson `gorm:"foreignKey:CourseID" json:"lessons,omitempty"`
}

func (Course) TableName() string {
	return "courses"
}

type Lesson struct {
	ID              int64     `gorm:"primaryKey" json:"id"`
	CourseID        int64     `gorm:"not null;index" json:"course_id"`
	Title           string    `gorm:"size:200;not null" json:"title"`
	Slug            string    `gorm:"size:200" json:"slug"`
	Description     string    `gorm:"type:text" json:"description,omitempty"`
	LessonType      string    `gorm:"size:20;default:video" json:"lesson_type"` // video, text, quiz
	Content         string    `gorm:"type:text" json:"content,omitempty"`
	VideoURL        string    `gorm:"size:500" json:"video_url,omitempty"`
	DurationMinutes int       `gorm:"default:0" json:"duration_minutes"`
	Order           int       `gorm:"column:sort_order;default:0;index" json:"order"`
	IsActive        bool      `gorm:"default:true" json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (Lesson) TableName() string {
	return "lessons"
}

// CourseEnrollment 选课记录，(user, course) 唯一
type CourseEnrollment struct {
	ID            int64      `gorm:"primaryKey" json:"id"`
	UserID        int64      `gorm:"not null;uniqueIndex:uniq_user_course" json:"user_id"`
	CourseID      int64      `gorm:"not null;uniqueIndex:uniq_user_course;index" json:"course_id"`
	PaymentID     *int64     `gorm:"index" json:"payment_id,omitempty"`
	PaymentStatus string     `gorm:"size:20;default:free" json:"payment_status"` // free, pending, paid
	EnrolledAt    time.Time  `gorm:"autoCreateTime" json:"enrolled_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`

	Course *Course `gorm:"foreignKey:CourseID" json:"course,omitempty"`
}

func (CourseEnrollment) TableName() string {
	return "course_enrollments"
}

// LessonProgress 课时完成记录，(user, lesson) 唯一
type LessonProgress struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	UserID      int64     `gorm:"not null;uniqueIndex:uniq_user_lesson" json:"user_id"`
	LessonID    int64     `gorm:"not null;uniqueIndex:uniq_user_lesson" json:"lesson_id"`
	CourseID    int64     `gorm:"not null;index" json:"course_id"`
	CompletedAt time.Time `gorm:"autoCreateTime" json:"completed_at"`
}

func (LessonProgress) TableName() string {
	return "lesson_progress"
}

// CourseRating 课程评分，(user, course) 唯一
type CourseRating struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	UserID    int64     `gorm:"not null;uniqueIndex:uniq_user_course_rating" json:"user_id"`
	CourseID  int64     `gorm:"not null;uniqueIndex:uniq_user_course_rating;index" json:"course_id"`
	Rating    int       `gorm:"not null" json:"rating"` // 1-5
	Review    string    `gorm:"type:text" json:"review,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (CourseRating) TableName() string {
	return "course_ratings"
}
