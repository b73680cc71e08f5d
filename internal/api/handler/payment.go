package handler

import (
	"encoding/json"
	"errors"
	"log"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/softskills/softskills_go_server/internal/api/middleware"
	"github.com/softskills/softskills_go_server/internal/model/dto"
	"github.com/softskills/softskills_go_server/internal/pkg/response"
	"github.com/softskills/softskills_go_server/internal/service"
)

type PaymentHandler struct {
	paymentService *service.PaymentService
}

func NewPaymentHandler(paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

// InitiateCoursePayment 发起课程购买
// POST /api/v1/payments/courses/:id
func (h *PaymentHandler) InitiateCoursePayment(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	courseID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的课程ID")
		return
	}

	var req dto.InitiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.paymentService.InitiateCoursePayment(c.Request.Context(), userID, courseID, &req)
	if err != nil {
		h.initiateError(c, err)
		return
	}

	response.Success(c, resp)
}

// InitiateSessionPayment 发起辅导会话支付
// POST /api/v1/payments/sessions/:id
func (h *PaymentHandler) InitiateSessionPayment(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	sessionID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的会话ID")
		return
	}

	var req dto.InitiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.paymentService.InitiateSessionPayment(c.Request.Context(), userID, sessionID, &req)
	if err != nil {
		h.initiateError(c, err)
		return
	}

	response.Success(c, resp)
}

// InitiateSubscription 发起套餐订阅支付
// POST /api/v1/payments/plans/:id
func (h *PaymentHandler) InitiateSubscription(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	planID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的套餐ID")
		return
	}

	var req dto.InitiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.paymentService.InitiateSubscription(c.Request.Context(), userID, planID, &req)
	if err != nil {
		h.initiateError(c, err)
		return
	}

	response.Success(c, resp)
}

func (h *PaymentHandler) initiateError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCourseNotFound),
		errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrPlanNotFound):
		response.NotFoundError(c, err.Error())
	case errors.Is(err, service.ErrNothingToPay),
		errors.Is(err, service.ErrSessionPaid),
		errors.Is(err, service.ErrCouponInvalid):
		response.ParamError(c, err.Error())
	case errors.Is(err, service.ErrAlreadyEnrolled):
		response.DuplicateError(c, err.Error())
	case errors.Is(err, service.ErrPermissionDenied):
		response.PermissionError(c, err.Error())
	case errors.Is(err, service.ErrGatewayRejected):
		response.GatewayError(c, err.Error())
	default:
		response.ServerError(c, "")
	}
}

// IPN PayTech 异步通知回调。
// 网关只认纯文本应答，这里不走统一响应格式
// POST /api/v1/payments/paytech/ipn
func (h *PaymentHandler) IPN(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		c.String(400, "ERROR")
		return
	}

	var payload dto.IPNPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Printf("IPN 报文解析失败: %v", err)
		c.String(400, "ERROR")
		return
	}

	if err := h.paymentService.ProcessIPN(c.Request.Context(), &payload, raw); err != nil {
		log.Printf("IPN 处理失败 token=%s: %v", payload.Token, err)
		c.String(400, "ERROR")
		return
	}

	c.String(200, "OK")
}

// VerifyPayment 主动核对支付状态，IPN 丢失时的兜底
// POST /api/v1/payments/:id/verify
func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	paymentID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的支付ID")
		return
	}

	payment, err := h.paymentService.VerifyAndReconcile(c.Request.Context(), userID, paymentID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPaymentNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrPermissionDenied):
			response.PermissionError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, payment)
}

// ListMyPayments 我的支付记录
// GET /api/v1/payments
func (h *PaymentHandler) ListMyPayments(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	status := c.Query("status")

	payments, total, err := h.paymentService.ListMyPayments(userID, page, pageSize, status)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.SuccessPage(c, total, page, pageSize, payments)
}

// ValidateCoupon 校验优惠券
// POST /api/v1/payments/coupons/validate
func (h *PaymentHandler) ValidateCoupon(c *gin.Context) {
	var req dto.ValidateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.paymentService.ValidateCoupon(&req)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, resp)
}

// GetInvoice 发票详情
// GET /api/v1/payments/invoices/:id
func (h *PaymentHandler) GetInvoice(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	invoiceID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的发票ID")
		return
	}

	invoice, err := h.paymentService.GetInvoice(userID, invoiceID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvoiceNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrPermissionDenied):
			response.PermissionError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, invoice)
}

// ListMyInvoices 我的发票
// GET /api/v1/payments/invoices
func (h *PaymentHandler) ListMyInvoices(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	invoices, total, err := h.paymentService.ListMyInvoices(userID, page, pageSize)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.SuccessPage(c, total, page, pageSize, invoices)
}
