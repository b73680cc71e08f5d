package service

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/softskills/softskills_go_server/internal/model"
	"github.com/softskills/softskills_go_server/internal/model/dto"
	"github.com/softskills/softskills_go_server/internal/repository"
)

var (
	ErrPostNotFound       = errors.New("文章不存在")
	ErrCommentNotFound    = errors.New("评论不存在")
	ErrCommentsNotAllowed = errors.New("该文章已关闭评论")
	ErrPostSlugExists     = errors.New("slug 已被使用")
)

// 按 200 词每分钟粗略估算阅读时长
const wordsPerMinute = 200

type BlogService struct {
	blogRepo *repository.BlogRepository
}

func NewBlogService(blogRepo *repository.BlogRepository) *BlogService {
	return &BlogService{blogRepo: blogRepo}
}

// ListCategories 博客分类
func (s *BlogService) ListCategories() ([]*model.BlogCategory, error) {
	return s.blogRepo.ListCategories()
}

// ListPosts 已发布文章列表
func (s *BlogService) ListPosts(query *dto.PostListQuery) ([]*model.BlogPost, int64, error) {
	page := query.Page
	if page < 1 {
		page = 1
	}
	pageSize := query.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	if query.Featured != nil && *query.Featured {
		posts, err := s.blogRepo.ListFeaturedPosts(pageSize)
		return posts, int64(len(posts)), err
	}
	return s.blogRepo.ListPosts(page, pageSize, query.Category, query.Tag, query.Keyword)
}

// GetPostBySlug 文章详情，浏览数加一
func (s *BlogService) GetPostBySlug(slug string, viewerID int64) (*model.BlogPost, error) {
	post, err := s.blogRepo.GetPostBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	// 草稿只有作者可见
	if post.Status != model.PostPublished && post.AuthorID != viewerID {
		return nil, ErrPostNotFound
	}

	if post.Status == model.PostPublished {
		if err := s.blogRepo.IncrementViewCount(post.ID); err != nil {
			return nil, err
		}
		post.ViewCount++
	}
	return post, nil
}

// CreatePost 发布文章
func (s *BlogService) CreatePost(authorID int64, req *dto.CreatePostRequest) (*model.BlogPost, error) {
	if _, err := s.blogRepo.GetPostBySlug(req.Slug); err == nil {
		return nil, ErrPostSlugExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	post := &model.BlogPost{
		Title:           req.Title,
		Slug:            req.Slug,
		Excerpt:         req.Excerpt,
		Content:         req.Content,
		AuthorID:        authorID,
		CategoryID:      req.CategoryID,
		Status:          model.PostDraft,
		ReadTimeMinutes: estimateReadTime(req.Content),
	}
	if req.Publish {
		now := time.Now()
		post.Status = model.PostPublished
		post.PublishedAt = &now
	}

	if err := s.blogRepo.CreatePost(post); err != nil {
		return nil, err
	}

	if len(req.Tags) > 0 {
		tags := make([]*model.BlogTag, 0, len(req.Tags))
		for _, name := range req.Tags {
			tag, err := s.blogRepo.GetOrCreateTag(name, slugify(name))
			if err != nil {
				return nil, err
			}
			tags = append(tags, tag)
		}
		if err := s.blogRepo.ReplaceTags(post, tags); err != nil {
			return nil, err
		}
		post.Tags = tags
	}

	return post, nil
}

// PublishPost 草稿转发布
func (s *BlogService) PublishPost(postID, authorID int64) error {
	post, err := s.blogRepo.GetPostByID(postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPostNotFound
		}
		return err
	}
	if post.AuthorID != authorID {
		return ErrPermissionDenied
	}
	if post.Status == model.PostPublished {
		return nil
	}

	now := time.Now()
	post.Status = model.PostPublished
	post.PublishedAt = &now
	return s.blogRepo.UpdatePost(post)
}

// ListTags 所有标签
func (s *BlogService) ListTags() ([]*model.BlogTag, error) {
	return s.blogRepo.ListTags()
}

// ListComments 文章评论树
func (s *BlogService) ListComments(postID int64) ([]*model.BlogComment, error) {
	if _, err := s.blogRepo.GetPostByID(postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return s.blogRepo.ListComments(postID)
}

// CreateComment 发表评论，需等待审核
func (s *BlogService) CreateComment(authorID, postID int64, req *dto.CreateBlogCommentRequest) (*model.BlogComment, error) {
	post, err := s.blogRepo.GetPostByID(postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	if !post.AllowComments {
		return nil, ErrCommentsNotAllowed
	}

	if req.ParentID != nil {
		parent, err := s.blogRepo.GetCommentByID(*req.ParentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCommentNotFound
			}
			return nil, err
		}
		if parent.PostID != postID {
			return nil, ErrCommentNotFound
		}
	}

	comment := &model.BlogComment{
		PostID:   postID,
		AuthorID: authorID,
		ParentID: req.ParentID,
		Content:  req.Content,
	}
	if err := s.blogRepo.CreateComment(comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// ApproveComment 审核通过评论，仅文章作者可操作
func (s *BlogService) ApproveComment(userID, commentID int64) error {
	comment, err := s.blogRepo.GetCommentByID(commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCommentNotFound
		}
		return err
	}

	post, err := s.blogRepo.GetPostByID(comment.PostID)
	if err != nil {
		return err
	}
	if post.AuthorID != userID {
		return ErrPermissionDenied
	}

	comment.IsApproved = true
	return s.blogRepo.UpdateComment(comment)
}

func estimateReadTime(content string) int {
	words := len(strings.Fields(content))
	minutes := words / wordsPerMinute
	if minutes < 1 {
		return 1
	}
	return minutes
}

func slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.ReplaceAll(slug, " ", "-")
	var b strings.Builder
	for _, r := range slug {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
