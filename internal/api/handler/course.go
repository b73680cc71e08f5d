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

type CourseHandler struct {
	courseService *service.CourseService
}

func NewCourseHandler(courseService *service.CourseService) *CourseHandler {
	return &CourseHandler{
		courseService: courseService,
	}
}

// ListCategories 课程分类列表
// GET /api/v1/courses/categories
func (h *CourseHandler) ListCategories(c *gin.Context) {
	categories, err := h.courseService.ListCategories()
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, categories)
}

// ListCourses 课程列表
// GET /api/v1/courses
func (h *CourseHandler) ListCourses(c *gin.Context) {
	var query dto.CourseListQuery
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

	courses, total, err := h.courseService.ListCourses(&query)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.SuccessPage(c, total, query.Page, query.PageSize, courses)
}

// ListFeatured 推荐课程
// GET /api/v1/courses/featured
func (h *CourseHandler) ListFeatured(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "6"))

	courses, err := h.courseService.ListFeaturedCourses(limit)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, courses)
}

// GetCourse 课程详情
// GET /api/v1/courses/slug/:slug
func (h *CourseHandler) GetCourse(c *gin.Context) {
	viewerID, _ := middleware.GetUserID(c)

	course, err := h.courseService.GetCourseBySlug(c.Param("slug"), viewerID)
	if err != nil {
		if errors.Is(err, service.ErrCourseNotFound) {
			response.NotFoundError(c, err.Error())
		} else {
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, course)
}

// CreateCourse 创建课程
// POST /api/v1/courses
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req dto.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	course, err := h.courseService.CreateCourse(userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSlugExists):
			response.DuplicateError(c, err.Error())
		case errors.Is(err, service.ErrCategoryNotFound):
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "课程创建成功", course)
}

// PublishCourse 发布课程
// POST /api/v1/courses/:id/publish
func (h *CourseHandler) PublishCourse(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	courseID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的课程ID")
		return
	}

	if err := h.courseService.PublishCourse(courseID, userID); err != nil {
		switch {
		case errors.Is(err, service.ErrCourseNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrPermissionDenied):
			response.PermissionError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "课程已发布", nil)
}

// ListLessons 课时列表
// GET /api/v1/courses/:id/lessons
func (h *CourseHandler) ListLessons(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	courseID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的课程ID")
		return
	}

	lessons, err := h.courseService.ListLessons(courseID, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCourseNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrPaymentRequired):
			response.SubscriptionError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, lessons)
}

// Enroll 报名课程
// POST /api/v1/courses/:id/enroll
func (h *CourseHandler) Enroll(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	courseID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的课程ID")
		return
	}

	enrollment, err := h.courseService.Enroll(userID, courseID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCourseNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrCourseUnavailable):
			response.ParamError(c, err.Error())
		case errors.Is(err, service.ErrAlreadyEnrolled):
			response.DuplicateError(c, err.Error())
		case errors.Is(err, service.ErrPaymentRequired):
			response.SubscriptionError(c, err.Error())
		case errors.Is(err, service.ErrCourseQuotaFull):
			response.SubscriptionError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "报名成功", enrollment)
}

// ListMyEnrollments 我的课程
// GET /api/v1/courses/my-enrollments
func (h *CourseHandler) ListMyEnrollments(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	enrollments, total, err := h.courseService.ListMyEnrollments(userID, page, pageSize)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.SuccessPage(c, total, page, pageSize, enrollments)
}

// GetLesson 课时内容，订阅会员专属入口
// GET /api/v1/lessons/:id
func (h *CourseHandler) GetLesson(c *gin.Context) {
	lessonID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的课时ID")
		return
	}

	lesson, err := h.courseService.GetLesson(lessonID)
	if err != nil {
		if errors.Is(err, service.ErrLessonNotFound) {
			response.NotFoundError(c, err.Error())
		} else {
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, lesson)
}

// CompleteLesson 标记课时完成
// POST /api/v1/lessons/:id/complete
func (h *CourseHandler) CompleteLesson(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	lessonID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的课时ID")
		return
	}

	progress, err := h.courseService.CompleteLesson(userID, lessonID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrLessonNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrNotEnrolled):
			response.PermissionError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, progress)
}

// GetProgress 学习进度
// GET /api/v1/courses/:id/progress
func (h *CourseHandler) GetProgress(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	courseID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的课程ID")
		return
	}

	progress, err := h.courseService.GetProgress(userID, courseID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCourseNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrNotEnrolled):
			response.PermissionError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, progress)
}

// RateCourse 课程评分
// POST /api/v1/courses/:id/rate
func (h *CourseHandler) RateCourse(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	courseID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的课程ID")
		return
	}

	var req dto.RateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	rating, err := h.courseService.RateCourse(userID, courseID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCourseNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrNotEnrolled):
			response.PermissionError(c, err.Error())
		case errors.Is(err, service.ErrAlreadyRated):
			response.DuplicateError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "评分成功", rating)
}

// GetRatingSummary 课程评分汇总
// GET /api/v1/courses/:id/ratings
func (h *CourseHandler) GetRatingSummary(c *gin.Context) {
	courseID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的课程ID")
		return
	}

	summary, err := h.courseService.GetRatingSummary(courseID)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, summary)
}
