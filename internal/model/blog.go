package model

import (
	"time"
)

type BlogCategory struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Slug        string    `gorm:"size:100;uniqueIndex;not null" json:"slug"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	Color       string    `gorm:"size:7;default:#007bff" json:"color"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

func (BlogCategory) TableName() string {
	return "blog_categories"
}

// 文章状态
const (
	PostDraft     = "draft"
	PostPublished = "published"
	PostArchived  = "archived"
)

type BlogPost struct {
	ID              int64      `gorm:"primaryKey" json:"id"`
	Title           string     `gorm:"size:200;not null" json:"title"`
	Slug            string     `gorm:"size:200;uniqueIndex;not null" json:"slug"`
	Excerpt         string     `gorm:"size:300" json:"excerpt,omitempty"`
	Content         string     `gorm:"type:text;not null" json:"content"`
	AuthorID        int64      `gorm:"not null;index" json:"author_id"`
	CategoryID      *int64     `gorm:"index" json:"category_id,omitempty"`
	CoverURL        string     `gorm:"size:500" json:"cover_url,omitempty"`
	MetaDescription string     `gorm:"size:160" json:"meta_description,omitempty"`
	Status          string     `gorm:"size:20;default:draft;index" json:"status"`
	IsFeatured      bool       `gorm:"default:false" json:"is_featured"`
	AllowComments   bool       `gorm:"default:true" json:"allow_comments"`
	ViewCount       int        `gorm:"default:0" json:"view_count"`
	ReadTimeMinutes int        `gorm:"default:5" json:"read_time_minutes"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	PublishedAt     *time.Time `json:"published_at,omitempty"`

	// 关联
	Author   *User         `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Category *BlogCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Tags     []*BlogTag    `gorm:"many2many:blog_post_tags" json:"tags,omitempty"`
}

func (BlogPost) TableName() string {
	return "blog_posts"
}

type BlogComment struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	PostID     int64     `gorm:"not null;index" json:"post_id"`
	AuthorID   int64     `gorm:"not null;index" json:"author_id"`
	ParentID   *int64    `gorm:"index" json:"parent_id,omitempty"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	IsApproved bool      `gorm:"default:false;index" json:"is_approved"`
	IsSpam     bool      `gorm:"default:false" json:"is_spam"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Author  *User          `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Replies []*BlogComment `gorm:"-" json:"replies,omitempty"`
}

func (BlogComment) TableName() string {
	return "blog_comments"
}

type BlogTag struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:50;uniqueIndex;not null" json:"name"`
	Slug      string    `gorm:"size:50;uniqueIndex;not null" json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

func (BlogTag) TableName() string {
	return "blog_tags"
}

type Newsletter struct {
	ID        int64      `gorm:"primaryKey" json:"id"`
	Title     string     `gorm:"size:200;not null" json:"title"`
	Subject   string     `gorm:"size:200;not null" json:"subject"`
	Content   string     `gorm:"type:text;not null" json:"content"`
	IsSent    bool       `gorm:"default:false" json:"is_sent"`
	SentAt    *time.Time `json:"sent_at,omitempty"`
	SentCount int        `gorm:"default:0" json:"sent_count"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (Newsletter) TableName() string {
	return "newsletters"
}

type NewsletterSubscriber struct {
	ID             int64      `gorm:"primaryKey" json:"id"`
	Email          string     `gorm:"size:100;uniqueIndex;not null" json:"email"`
	FirstName      string     `gorm:"size:100" json:"first_name,omitempty"`
	LastName       string     `gorm:"size:100" json:"last_name,omitempty"`
	IsActive       bool       `gorm:"default:true;index" json:"is_active"`
	SubscribedAt   time.Time  `gorm:"autoCreateTime" json:"subscribed_at"`
	UnsubscribedAt *time.Time `json:"unsubscribed_at,omitempty"`
}

func (NewsletterSubscriber) TableName() string {
	return "newsletter_subscribers"
}
