package repository

import (
	"gorm.io/gorm"

	"github.com/softskills/softskills_go_server/internal/model"
)

type BlogRepository struct {
	db *gorm.DB
}

func NewBlogRepository(db *gorm.DB) *BlogRepository {
	return &BlogRepository{db: db}
}

func (r *BlogRepository) CreateCategory(category *model.BlogCategory) error {
	return r.db.Create(category).Error
}

func (r *BlogRepository) ListCategories() ([]*model.BlogCategory, error) {
	var categories []*model.BlogCategory
	err := r.db.Where("is_active = ?", true).Order("name ASC").Find(&categories).Error
	return categories, err
}

func (r *BlogRepository) CreatePost(post *model.BlogPost) error {
	return r.db.Create(post).Error
}

func (r *BlogRepository) GetPostByID(id int64) (*model.BlogPost, error) {
	var post model.BlogPost
	err := r.db.Where("id = ?", id).First(&post).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *BlogRepository) GetPostBySlug(slug string) (*model.BlogPost, error) {
	var post model.BlogPost
	err := r.db.Preload("Author").Preload("Category").Preload("Tags").
		Where("slug = ?", slug).First(&post).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *BlogRepository) UpdatePost(post *model.BlogPost) error {
	return r.db.Save(post).Error
}

func (r *BlogRepository) DeletePost(id int64) error {
	return r.db.Delete(&model.BlogPost{}, id).Error
}

// ListPosts 已发布文章列表，支持分类 / 标签 / 搜索过滤
func (r *BlogRepository) ListPosts(page, pageSize int, categorySlug, tagSlug, search string) ([]*model.BlogPost, int64, error) {
	var posts []*model.BlogPost
	var total int64

	query := r.db.Model(&model.BlogPost{}).Preload("Author").Preload("Category").Preload("Tags").
		Where("blog_posts.status = ?", model.PostPublished)

	if categorySlug != "" {
		query = query.Joins("JOIN blog_categories ON blog_categories.id = blog_posts.category_id").
			Where("blog_categories.slug = ?", categorySlug)
	}
	if tagSlug != "" {
		query = query.Joins("JOIN blog_post_tags ON blog_post_tags.blog_post_id = blog_posts.id").
			Joins("JOIN blog_tags ON blog_tags.id = blog_post_tags.blog_tag_id").
			Where("blog_tags.slug = ?", tagSlug)
	}
	if search != "" {
		query = query.Where("blog_posts.title LIKE ? OR blog_posts.content LIKE ?", "%"+search+"%", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.Order("blog_posts.published_at DESC").Offset(offset).Limit(pageSize).Find(&posts).Error; err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// ListFeaturedPosts 精选文章
func (r *BlogRepository) ListFeaturedPosts(limit int) ([]*model.BlogPost, error) {
	var posts []*model.BlogPost
	err := r.db.Preload("Author").
		Where("status = ? AND is_featured = ?", model.PostPublished, true).
		Order("published_at DESC").Limit(limit).Find(&posts).Error
	return posts, err
}

// IncrementViewCount 增加浏览数
func (r *BlogRepository) IncrementViewCount(id int64) error {
	return r.db.Model(&model.BlogPost{}).Where("id = ?", id).
		Update("view_count", gorm.Expr("view_count + 1")).Error
}

func (r *BlogRepository) ReplaceTags(post *model.BlogPost, tags []*model.BlogTag) error {
	return r.db.Model(post).Association("Tags").Replace(tags)
}

func (r *BlogRepository) GetOrCreateTag(name, slug string) (*model.BlogTag, error) {
	var tag model.BlogTag
	err := r.db.Where("slug = ?", slug).First(&tag).Error
	if err == nil {
		return &tag, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}
	tag = model.BlogTag{Name: name, Slug: slug}
	if err := r.db.Create(&tag).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

func (r *BlogRepository) ListTags() ([]*model.BlogTag, error) {
	var tags []*model.BlogTag
	err := r.db.Order("name ASC").Find(&tags).Error
	return tags, err
}

func (r *BlogRepository) CreateComment(comment *model.BlogComment) error {
	return r.db.Create(comment).Error
}

func (r *BlogRepository) GetCommentByID(id int64) (*model.BlogComment, error) {
	var comment model.BlogComment
	err := r.db.Where("id = ?", id).First(&comment).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *BlogRepository) UpdateComment(comment *model.BlogComment) error {
	return r.db.Save(comment).Error
}

// ListComments 文章下已审核的顶层评论及回复
func (r *BlogRepository) ListComments(postID int64) ([]*model.BlogComment, error) {
	var comments []*model.BlogComment
	err := r.db.Preload("Author").
		Where("post_id = ? AND is_approved = ?", postID, true).
		Order("created_at ASC").Find(&comments).Error
	if err != nil {
		return nil, err
	}

	// 内存里组树，回复挂到父评论下
	byID := make(map[int64]*model.BlogComment, len(comments))
	for _, c := range comments {
		byID[c.ID] = c
	}
	var roots []*model.BlogComment
	for _, c := range comments {
		if c.ParentID == nil {
			roots = append(roots, c)
			continue
		}
		if parent, ok := byID[*c.ParentID]; ok {
			parent.Replies = append(parent.Replies, c)
		}
	}
	return roots, nil
}
