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

type CoachingHandler struct {
	coachingService *service.CoachingService
}

func NewCoachingHandler(coachingService *service.CoachingService) *CoachingHandler {
	return &CoachingHandler{
		coachingService: coachingService,
	}
}

// ListCoaches 教练列表
// GET /api/v1/coaching/coaches
func (h *CoachingHandler) ListCoaches(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	specialization := c.Query("specialization")

	coaches, total, err := h.coachingService.ListCoaches(page, pageSize, specialization)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.SuccessPage(c, total, page, pageSize, coaches)
}

// GetCoach 教练详情
// GET /api/v1/coaching/coaches/:id
func (h *CoachingHandler) GetCoach(c *gin.Context) {
	coachID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的教练ID")
		return
	}

	coach, err := h.coachingService.GetCoach(coachID)
	if err != nil {
		if errors.Is(err, service.ErrCoachNotFound) {
			response.NotFoundError(c, err.Error())
		} else {
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, coach)
}

// BookSession 预约辅导
// POST /api/v1/coaching/sessions
func (h *CoachingHandler) BookSession(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req dto.BookSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	session, err := h.coachingService.BookSession(userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCoachNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrCoachUnavailable):
			response.ParamError(c, err.Error())
		case errors.Is(err, service.ErrInvalidScheduleTime):
			response.ParamError(c, err.Error())
		case errors.Is(err, service.ErrTimeSlotTaken):
			response.DuplicateError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "预约成功", session)
}

// ListMySessions 我预约的辅导
// GET /api/v1/coaching/sessions
func (h *CoachingHandler) ListMySessions(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	status := c.Query("status")

	sessions, total, err := h.coachingService.ListMySessions(userID, page, pageSize, status)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.SuccessPage(c, total, page, pageSize, sessions)
}

// ListCoachSessions 我作为教练的辅导安排
// GET /api/v1/coaching/coach-sessions
func (h *CoachingHandler) ListCoachSessions(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	status := c.Query("status")

	sessions, total, err := h.coachingService.ListCoachSessions(userID, page, pageSize, status)
	if err != nil {
		if errors.Is(err, service.ErrCoachNotFound) {
			response.PermissionError(c, err.Error())
		} else {
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessPage(c, total, page, pageSize, sessions)
}

// CancelSession 取消预约
// POST /api/v1/coaching/sessions/:id/cancel
func (h *CoachingHandler) CancelSession(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	sessionID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的预约ID")
		return
	}

	if err := h.coachingService.CancelSession(userID, sessionID); err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrPermissionDenied):
			response.PermissionError(c, err.Error())
		case errors.Is(err, service.ErrSessionNotCancelable):
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "预约已取消", nil)
}

// CompleteSession 标记辅导完成
// POST /api/v1/coaching/sessions/:id/complete
func (h *CoachingHandler) CompleteSession(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	sessionID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的预约ID")
		return
	}

	if err := h.coachingService.CompleteSession(userID, sessionID); err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrPermissionDenied):
			response.PermissionError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "辅导已完成", nil)
}

// SubmitFeedback 提交辅导反馈
// POST /api/v1/coaching/sessions/:id/feedback
func (h *CoachingHandler) SubmitFeedback(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	sessionID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的预约ID")
		return
	}

	var req dto.SessionFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	feedback, err := h.coachingService.SubmitFeedback(userID, sessionID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrPermissionDenied):
			response.PermissionError(c, err.Error())
		case errors.Is(err, service.ErrSessionNotCompleted):
			response.ParamError(c, err.Error())
		case errors.Is(err, service.ErrAlreadyGaveFeedback):
			response.DuplicateError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "感谢你的反馈", feedback)
}
