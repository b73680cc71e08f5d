package dto

// PostListQuery 文章列表查询参数
type PostListQuery struct {
	Category string `form:"category"`
	Tag      string `form:"tag"`
	Featured *bool  `form:"featured"`
	Keyword  string `form:"keyword"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// CreatePostRequest 发布文章请求
type CreatePostRequest struct {
	Title      string   `json:"title" binding:"required,max=200"`
	Slug       string   `json:"slug" binding:"required,max=200"`
	Excerpt    string   `json:"excerpt" binding:"omitempty,max=300"`
	Content    string   `json:"content" binding:"required"`
	CategoryID *int64   `json:"category_id,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	Publish    bool     `json:"publish"`
}

// CreateBlogCommentRequest 发表评论请求
type CreateBlogCommentRequest struct {
	Content  string `json:"content" binding:"required,min=1,max=2000"`
	ParentID *int64 `json:"parent_id,omitempty"`
}

// SubscribeNewsletterRequest 订阅邮件通讯请求
type SubscribeNewsletterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	FirstName string `json:"first_name" binding:"omitempty,max=100"`
	LastName  string `json:"last_name" binding:"omitempty,max=100"`
}

// SendNewsletterRequest 群发邮件通讯请求
type SendNewsletterRequest struct {
	Title   string `json:"title" binding:"required,max=200"`
	Subject string `json:"subject" binding:"required,max=200"`
	Content string `json:"content" binding:"required"`
}
