package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/softskills/softskills_go_server/internal/model/dto"
	"github.com/softskills/softskills_go_server/internal/pkg/response"
	"github.com/softskills/softskills_go_server/internal/service"
)

type NewsletterHandler struct {
	newsletterService *service.NewsletterService
}

func NewNewsletterHandler(newsletterService *service.NewsletterService) *NewsletterHandler {
	return &NewsletterHandler{
		newsletterService: newsletterService,
	}
}

// Subscribe 订阅邮件通讯
// POST /api/v1/newsletter/subscribe
func (h *NewsletterHandler) Subscribe(c *gin.Context) {
	var req dto.SubscribeNewsletterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	if err := h.newsletterService.Subscribe(&req); err != nil {
		if errors.Is(err, service.ErrAlreadySubscribed) {
			response.DuplicateError(c, err.Error())
		} else {
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "订阅成功", nil)
}

// Unsubscribe 退订邮件通讯
// POST /api/v1/newsletter/unsubscribe
func (h *NewsletterHandler) Unsubscribe(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	if err := h.newsletterService.Unsubscribe(req.Email); err != nil {
		if errors.Is(err, service.ErrSubscriberNotFound) {
			response.NotFoundError(c, err.Error())
		} else {
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "退订成功", nil)
}

// Send 群发邮件通讯
// POST /api/v1/newsletter/send
func (h *NewsletterHandler) Send(c *gin.Context) {
	var req dto.SendNewsletterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	newsletter, queued, err := h.newsletterService.Send(c.Request.Context(), &req)
	if err != nil {
		response.ServerError(c, "发送任务入队失败")
		return
	}

	response.SuccessWithMessage(c, "发送任务已入队", gin.H{
		"newsletter_id": newsletter.ID,
		"queued":        queued,
	})
}
