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

type SubscriptionHandler struct {
	subscriptionService *service.SubscriptionService
}

func NewSubscriptionHandler(subscriptionService *service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptionService: subscriptionService,
	}
}

// ListPlans 订阅套餐列表
// GET /api/v1/subscriptions/plans
func (h *SubscriptionHandler) ListPlans(c *gin.Context) {
	plans, err := h.subscriptionService.ListPlans()
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, plans)
}

// GetPlan 套餐详情
// GET /api/v1/subscriptions/plans/:id
func (h *SubscriptionHandler) GetPlan(c *gin.Context) {
	planID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的套餐ID")
		return
	}

	plan, err := h.subscriptionService.GetPlan(planID)
	if err != nil {
		if errors.Is(err, service.ErrPlanNotFound) {
			response.NotFoundError(c, err.Error())
		} else {
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, plan)
}

// CreatePlan 创建订阅套餐
// POST /api/v1/subscriptions/plans
func (h *SubscriptionHandler) CreatePlan(c *gin.Context) {
	var req dto.CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	plan, err := h.subscriptionService.CreatePlan(&req)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.SuccessWithMessage(c, "套餐创建成功", plan)
}

// GetMySubscription 当前订阅
// GET /api/v1/subscriptions/my
func (h *SubscriptionHandler) GetMySubscription(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	info, err := h.subscriptionService.GetMySubscription(userID)
	if err != nil {
		if errors.Is(err, service.ErrNoActiveSubscription) {
			response.NotFoundError(c, err.Error())
		} else {
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, info)
}

// ListMySubscriptions 订阅历史
// GET /api/v1/subscriptions/history
func (h *SubscriptionHandler) ListMySubscriptions(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	subs, err := h.subscriptionService.ListMySubscriptions(userID)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, subs)
}

// CancelSubscription 取消订阅
// POST /api/v1/subscriptions/cancel
func (h *SubscriptionHandler) CancelSubscription(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	if err := h.subscriptionService.CancelSubscription(userID); err != nil {
		switch {
		case errors.Is(err, service.ErrNoActiveSubscription):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrSubNotCancelable):
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "订阅已取消", nil)
}
