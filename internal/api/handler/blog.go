package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/softskills/softskills_go_server/internal/api/middleware"
	"github.com/softskills/softskills_go_server/internal/model/dto"
	"github.com/softskills/softskills_go_server/internal/pkg/response"
	"github.com/softskills/softskills_go_server/internal/service"
)

type BlogHandler struct {
	blogService *service.BlogService
}

func NewBlogHandler(blogService *service.BlogService) *BlogHandler {
	return &BlogHandler{
		blogService: blogService,
	}
}

// ListCategories 博客分类列表
// GET /api/v1/blog/categories
func (h *BlogHandler) ListCategories(c *gin.Context) {
	categories, err := h.blogService.ListCategories()
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, categories)
}

// ListPosts 文章列表
// GET /api/v1/blog/posts
func (h *BlogHandler) ListPosts(c *gin.Context) {
	var query dto.PostListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.ParamError(c, err.Error())
		return
	}
	if query.Page < 1 {
		query.Page = 1
	}
	if query.PageSize < 1 || query.PageSize > 100 {
		query.PageSize = 20
	}

	posts, total, err := h.blogService.ListPosts(&query)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.SuccessPage(c, total, query.Page, query.PageSize, posts)
}

// GetPost 文章详情
// GET /api/v1/blog/posts/slug/:slug
func (h *BlogHandler) GetPost(c *gin.Context) {
	viewerID, _ := middleware.GetUserID(c)

	post, err := h.blogService.GetPostBySlug(c.Param("slug"), viewerID)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			response.NotFoundError(c, err.Error())
		} else {
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, post)
}

// CreatePost 发布文章
// POST /api/v1/blog/posts
func (h *BlogHandler) CreatePost(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req dto.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	post, err := h.blogService.CreatePost(userID, &req)
	if err != nil {
		if errors.Is(err, service.ErrPostSlugExists) {
			response.DuplicateError(c, err.Error())
		} else {
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "文章创建成功", post)
}

// PublishPost 发布草稿
// POST /api/v1/blog/posts/:id/publish
func (h *BlogHandler) PublishPost(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	postID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的文章ID")
		return
	}

	if err := h.blogService.PublishPost(postID, userID); err != nil {
		switch {
		case errors.Is(err, service.ErrPostNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrPermissionDenied):
			response.PermissionError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "文章已发布", nil)
}

// ListTags 标签列表
// GET /api/v1/blog/tags
func (h *BlogHandler) ListTags(c *gin.Context) {
	tags, err := h.blogService.ListTags()
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, tags)
}

// ListComments 文章评论列表
// GET /api/v1/blog/posts/:id/comments
func (h *BlogHandler) ListComments(c *gin.Context) {
	postID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的文章ID")
		return
	}

	comments, err := h.blogService.ListComments(postID)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			response.NotFoundError(c, err.Error())
		} else {
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, comments)
}

// CreateComment 发表评论
// POST /api/v1/blog/posts/:id/comments
func (h *BlogHandler) CreateComment(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	postID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的文章ID")
		return
	}

	var req dto.CreateBlogCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	comment, err := h.blogService.CreateComment(userID, postID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPostNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrCommentsNotAllowed):
			response.ParamError(c, err.Error())
		case errors.Is(err, service.ErrCommentNotFound):
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "评论已提交，等待审核", comment)
}

// ApproveComment 审核通过评论
// POST /api/v1/blog/comments/:id/approve
func (h *BlogHandler) ApproveComment(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	commentID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的评论ID")
		return
	}

	if err := h.blogService.ApproveComment(userID, commentID); err != nil {
		switch {
		case errors.Is(err, service.ErrCommentNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrPermissionDenied):
			response.PermissionError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "评论已通过审核", nil)
}
