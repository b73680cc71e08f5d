package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/softskills/softskills_go_server/config"
	"github.com/softskills/softskills_go_server/internal/model"
	"github.com/softskills/softskills_go_server/internal/model/dto"
	"github.com/softskills/softskills_go_server/internal/pkg/email"
	"github.com/softskills/softskills_go_server/internal/pkg/paytech"
	"github.com/softskills/softskills_go_server/internal/pkg/ws"
	"github.com/softskills/softskills_go_server/internal/repository"
)

var (
	ErrPaymentNotFound  = errors.New("支付记录不存在")
	ErrCouponInvalid    = errors.New("优惠券无效")
	ErrGatewayRejected  = errors.New("支付网关拒绝了请求")
	ErrNothingToPay     = errors.New("免费课程无需支付")
	ErrSessionPaid      = errors.New("该会话已支付")
	ErrPlanNotFound     = errors.New("套餐不存在")
	ErrInvoiceNotFound  = errors.New("发票不存在")
	ErrInvalidIPNToken  = errors.New("IPN 报文缺少 token")
	ErrPaymentFinalized = errors.New("支付已进入终态")
)

type PaymentService struct {
	paymentRepo    *repository.PaymentRepository
	couponRepo     *repository.CouponRepository
	invoiceRepo    *repository.InvoiceRepository
	enrollmentRepo *repository.EnrollmentRepository
	courseRepo     *repository.CourseRepository
	coachingRepo   *repository.CoachingRepository
	subRepo        *repository.SubscriptionRepository
	planRepo       *repository.PlanRepository
	userRepo       *repository.UserRepository
	gateway        *paytech.Client
	emailSvc       *email.Service
	hub            *ws.Hub
	cfg            *config.Config
}

func NewPaymentService(
	paymentRepo *repository.PaymentRepository,
	couponRepo *repository.CouponRepository,
	invoiceRepo *repository.InvoiceRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	courseRepo *repository.CourseRepository,
	coachingRepo *repository.CoachingRepository,
	subRepo *repository.SubscriptionRepository,
	planRepo *repository.PlanRepository,
	userRepo *repository.UserRepository,
	gateway *paytech.Client,
	emailSvc *email.Service,
	hub *ws.Hub,
	cfg *config.Config,
) *PaymentService {
	return &PaymentService{
		paymentRepo:    paymentRepo,
		couponRepo:     couponRepo,
		invoiceRepo:    invoiceRepo,
		enrollmentRepo: enrollmentRepo,
		courseRepo:     courseRepo,
		coachingRepo:   coachingRepo,
		subRepo:        subRepo,
		planRepo:       planRepo,
		userRepo:       userRepo,
		gateway:        gateway,
		emailSvc:       emailSvc,
		hub:            hub,
		cfg:            cfg,
	}
}

// InitiateCoursePayment 发起课程购买，成功返回网关跳转地址
func (s *PaymentService) InitiateCoursePayment(ctx context.Context, userID, courseID int64, req *dto.InitiatePaymentRequest) (*dto.InitiatePaymentResponse, error) {
	course, err := s.courseRepo.GetByID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	if course.IsFree || course.Price == 0 {
		return nil, ErrNothingToPay
	}

	if _, err := s.enrollmentRepo.Get(userID, courseID); err == nil {
		return nil, ErrAlreadyEnrolled
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	payment := &model.Payment{
		UserID:      userID,
		PaymentType: model.PaymentPurposeCourse,
		Amount:      course.Price,
		CourseID:    &courseID,
	}
	return s.initiate(ctx, payment, course.Title, req)
}

// InitiateSessionPayment 发起辅导会话支付
func (s *PaymentService) InitiateSessionPayment(ctx context.Context, userID, sessionID int64, req *dto.InitiatePaymentRequest) (*dto.InitiatePaymentResponse, error) {
	session, err := s.coachingRepo.GetSessionByID(sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if session.ClientID != userID {
		return nil, ErrPermissionDenied
	}
	if session.IsPaid {
		return nil, ErrSessionPaid
	}
	if session.Status == model.SessionCancelled {
		return nil, ErrSessionNotFound
	}

	payment := &model.Payment{
		UserID:      userID,
		PaymentType: model.PaymentPurposeCoaching,
		Amount:      session.Price,
		SessionID:   &sessionID,
	}
	return s.initiate(ctx, payment, session.Title, req)
}

// InitiateSubscription 购买订阅套餐，先建 pending 订阅再走网关
func (s *PaymentService) InitiateSubscription(ctx context.Context, userID, planID int64, req *dto.InitiatePaymentRequest) (*dto.InitiatePaymentResponse, error) {
	plan, err := s.planRepo.GetByID(planID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	if !plan.IsActive {
		return nil, ErrPlanNotFound
	}

	sub := &model.UserSubscription{
		UserID: userID,
		PlanID: plan.ID,
		Status: model.SubscriptionPending,
	}
	if err := s.subRepo.Create(sub); err != nil {
		return nil, err
	}

	payment := &model.Payment{
		UserID:         userID,
		PaymentType:    model.PaymentPurposeSubscription,
		Amount:         plan.DiscountedPrice(),
		SubscriptionID: &sub.ID,
	}
	return s.initiate(ctx, payment, plan.Name, req)
}

// initiate 公共的发起流程：落库 pending 支付、套用优惠券、调网关
func (s *PaymentService) initiate(ctx context.Context, payment *model.Payment, itemName string, req *dto.InitiatePaymentRequest) (*dto.InitiatePaymentResponse, error) {
	user, err := s.userRepo.GetByID(payment.UserID)
	if err != nil {
		return nil, err
	}

	if req.PaymentMethod != "" {
		payment.PaymentMethod = req.PaymentMethod
	}
	payment.Currency = s.cfg.PayTech.Currency
	if payment.Currency == "" {
		payment.Currency = "XOF"
	}

	if req.CouponCode != "" {
		coupon, err := s.couponRepo.GetByCode(req.CouponCode)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCouponInvalid
			}
			return nil, err
		}
		if !coupon.IsValid(time.Now()) {
			return nil, ErrCouponInvalid
		}
		discount := coupon.CalculateDiscount(payment.Amount)
		if discount <= 0 {
			return nil, ErrCouponInvalid
		}
		payment.CouponID = &coupon.ID
		payment.DiscountAmt = discount
	}

	if err := s.paymentRepo.Create(payment); err != nil {
		return nil, err
	}

	userEmail := ""
	if user.Email != nil {
		userEmail = *user.Email
	}

	baseURL := s.cfg.Server.BaseURL
	gwReq := &paytech.InitRequest{
		ItemName:   itemName,
		RefCommand: fmt.Sprintf("%s-%d", payment.PaymentType, payment.ID),
		Amount:     payment.Amount - payment.DiscountAmt,
		Currency:   payment.Currency,
		Email:      userEmail,
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		IPNURL:     baseURL + "/api/v1/payments/paytech/ipn",
		SuccessURL: baseURL + "/payments/success",
		CancelURL:  baseURL + "/payments/cancel",
	}

	resp, gwErr := s.gateway.InitPayment(ctx, gwReq)
	payment.GatewayResponse = datatypes.JSON(resp.Raw)

	if gwErr != nil || !resp.IsSuccess() {
		payment.Status = model.PaymentFailed
		if err := s.paymentRepo.Update(payment); err != nil {
			return nil, err
		}
		if gwErr != nil {
			log.Printf("Payment %d gateway error: %v", payment.ID, gwErr)
		}
		return nil, ErrGatewayRejected
	}

	payment.Status = model.PaymentProcessing
	payment.TransactionID = &resp.Token
	if err := s.paymentRepo.Update(payment); err != nil {
		return nil, err
	}

	return &dto.InitiatePaymentResponse{
		PaymentID:   payment.ID,
		Amount:      payment.Amount - payment.DiscountAmt,
		Discount:    payment.DiscountAmt,
		Currency:    payment.Currency,
		RedirectURL: resp.RedirectURL,
	}, nil
}

// ValidateCoupon 校验优惠券并预览折扣
func (s *PaymentService) ValidateCoupon(req *dto.ValidateCouponRequest) (*dto.ValidateCouponResponse, error) {
	coupon, err := s.couponRepo.GetByCode(req.Code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &dto.ValidateCouponResponse{Valid: false, Final: req.Amount}, nil
		}
		return nil, err
	}

	if !coupon.IsValid(time.Now()) {
		return &dto.ValidateCouponResponse{Valid: false, Final: req.Amount}, nil
	}

	discount := coupon.CalculateDiscount(req.Amount)
	return &dto.ValidateCouponResponse{
		Valid:    discount > 0,
		Discount: discount,
		Final:    req.Amount - discount,
	}, nil
}

// ProcessIPN 处理网关异步通知。按 token 找到支付记录后对账：
// 成功则迁移到 completed 并履约，失败迁移到 failed。
// 同一笔通知重复到达时是幂等的，已终态的记录直接返回。
func (s *PaymentService) ProcessIPN(ctx context.Context, payload *dto.IPNPayload, raw []byte) error {
	if payload.Token == "" {
		return ErrInvalidIPNToken
	}

	payment, err := s.paymentRepo.GetByTransactionID(payload.Token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPaymentNotFound
		}
		return err
	}

	// 终态不再变化，重复通知直接吞掉
	if payment.Status.IsTerminal() || payment.Status == model.PaymentCompleted {
		return nil
	}

	target := model.PaymentFailed
	if ipnSuccess(payload.Success) {
		target = model.PaymentCompleted
	}
	if !payment.Status.CanTransition(target) {
		return ErrPaymentFinalized
	}

	// 原始报文永远落库，便于审计
	if len(raw) > 0 {
		payment.GatewayResponse = datatypes.JSON(raw)
	}
	payment.Status = target
	if err := s.paymentRepo.Update(payment); err != nil {
		return err
	}

	if target == model.PaymentCompleted {
		return s.fulfill(ctx, payment)
	}

	s.notify(payment.UserID, ws.EventPaymentFailed, payment)
	return nil
}

// VerifyAndReconcile 主动向网关查询并对账，给 IPN 丢失的场景兜底
func (s *PaymentService) VerifyAndReconcile(ctx context.Context, userID, paymentID int64) (*model.Payment, error) {
	payment, err := s.paymentRepo.GetByID(paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	if payment.UserID != userID {
		return nil, ErrPermissionDenied
	}
	if payment.TransactionID == nil {
		return payment, nil
	}
	if payment.Status.IsTerminal() || payment.Status == model.PaymentCompleted {
		return payment, nil
	}

	resp, err := s.gateway.VerifyPayment(ctx, *payment.TransactionID)
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return payment, nil
	}

	if err := s.ProcessIPN(ctx, &dto.IPNPayload{Token: *payment.TransactionID, Success: 1}, resp.Raw); err != nil {
		return nil, err
	}
	return s.paymentRepo.GetByID(paymentID)
}

// fulfill 支付完成后的履约：入课 / 确认会话 / 激活订阅，
// 外加优惠券占用、发票和回执。只会在首次进入 completed 时执行一次
func (s *PaymentService) fulfill(ctx context.Context, payment *model.Payment) error {
	switch payment.PaymentType {
	case model.PaymentPurposeCourse:
		if err := s.fulfillCourse(payment); err != nil {
			return err
		}
	case model.PaymentPurposeCoaching:
		if err := s.fulfillSession(payment); err != nil {
			return err
		}
	case model.PaymentPurposeSubscription:
		if err := s.fulfillSubscription(payment); err != nil {
			return err
		}
	}

	if payment.CouponID != nil {
		ok, err := s.couponRepo.IncrementUsed(*payment.CouponID)
		if err != nil {
			return err
		}
		if !ok {
			// 额度在支付期间被抢完，支付已收款，只记日志
			log.Printf("Coupon %d quota exhausted after payment %d completed", *payment.CouponID, payment.ID)
		}
	}

	invoice, err := s.createInvoice(payment)
	if err != nil {
		return err
	}

	s.sendReceipt(payment, invoice)
	s.notify(payment.UserID, ws.EventPaymentCompleted, payment)
	return nil
}

func (s *PaymentService) fulfillCourse(payment *model.Payment) error {
	if payment.CourseID == nil {
		return nil
	}

	_, created, err := s.enrollmentRepo.GetOrCreate(&model.CourseEnrollment{
		UserID:        payment.UserID,
		CourseID:      *payment.CourseID,
		PaymentID:     &payment.ID,
		PaymentStatus: "paid",
	})
	if err != nil {
		return err
	}
	if created {
		return s.courseRepo.IncrementEnrollmentCount(*payment.CourseID)
	}
	return nil
}

func (s *PaymentService) fulfillSession(payment *model.Payment) error {
	if payment.SessionID == nil {
		return nil
	}

	session, err := s.coachingRepo.GetSessionByID(*payment.SessionID)
	if err != nil {
		return err
	}
	if session.IsPaid {
		return nil
	}
	session.IsPaid = true
	if session.Status == model.SessionScheduled {
		session.Status = model.SessionConfirmed
	}
	return s.coachingRepo.UpdateSession(session)
}

func (s *PaymentService) fulfillSubscription(payment *model.Payment) error {
	if payment.SubscriptionID == nil {
		return nil
	}

	sub, err := s.subRepo.GetByID(*payment.SubscriptionID)
	if err != nil {
		return err
	}
	if !sub.Status.CanTransition(model.SubscriptionActive) {
		return nil
	}

	plan := sub.Plan
	if plan == nil {
		plan, err = s.planRepo.GetByID(sub.PlanID)
		if err != nil {
			return err
		}
	}

	now := time.Now()
	sub.Status = model.SubscriptionActive
	sub.StartDate = now
	sub.EndDate = now.AddDate(0, 0, plan.DurationDays)
	sub.AmountPaid = payment.Amount - payment.DiscountAmt
	sub.PaymentMethod = payment.PaymentMethod
	if err := s.subRepo.Update(sub); err != nil {
		return err
	}

	// 用户上的冗余标记跟着订阅走
	return s.userRepo.SetSubscriptionFlag(sub.UserID, true, sub.EndDate)
}

// createInvoice 生成发票，total = subtotal + tax - discount
func (s *PaymentService) createInvoice(payment *model.Payment) (*model.Invoice, error) {
	if existing, err := s.invoiceRepo.GetByPaymentID(payment.ID); err == nil {
		return existing, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	prefix := s.cfg.Billing.InvoicePrefix
	if prefix == "" {
		prefix = "INV"
	}
	number, err := s.invoiceRepo.NextInvoiceNumber(prefix)
	if err != nil {
		return nil, err
	}

	subtotal := payment.Amount
	discount := payment.DiscountAmt
	tax := (subtotal - discount) * s.cfg.Billing.TaxRate

	invoice := &model.Invoice{
		UserID:        payment.UserID,
		PaymentID:     payment.ID,
		InvoiceNumber: number,
		Subtotal:      subtotal,
		TaxAmount:     tax,
		DiscountAmt:   discount,
		TotalAmount:   subtotal + tax - discount,
		IsPaid:        true,
	}
	if err := s.invoiceRepo.Create(invoice); err != nil {
		return nil, err
	}
	return invoice, nil
}

// ListMyPayments 我的支付记录
func (s *PaymentService) ListMyPayments(userID int64, page, pageSize int, status string) ([]*model.Payment, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.paymentRepo.ListByUser(userID, page, pageSize, status)
}

// GetInvoice 查发票，仅本人可见
func (s *PaymentService) GetInvoice(userID, invoiceID int64) (*model.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByID(invoiceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvoiceNotFound
		}
		return nil, err
	}
	if invoice.UserID != userID {
		return nil, ErrPermissionDenied
	}
	return invoice, nil
}

// ListMyInvoices 我的发票
func (s *PaymentService) ListMyInvoices(userID int64, page, pageSize int) ([]*model.Invoice, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.invoiceRepo.ListByUser(userID, page, pageSize)
}

func (s *PaymentService) sendReceipt(payment *model.Payment, invoice *model.Invoice) {
	if s.emailSvc == nil {
		return
	}
	user, err := s.userRepo.GetByID(payment.UserID)
	if err != nil || user.Email == nil {
		return
	}
	if err := s.emailSvc.SendPaymentReceipt(*user.Email, payment.PaymentType, invoice.InvoiceNumber, invoice.TotalAmount, payment.Currency); err != nil {
		log.Printf("Failed to send receipt for payment %d: %v", payment.ID, err)
	}
}

func (s *PaymentService) notify(userID int64, event string, payment *model.Payment) {
	if s.hub == nil {
		return
	}
	if err := s.hub.SendToUser(userID, &ws.Message{Type: event, Data: payment}); err != nil {
		log.Printf("Failed to push %s to user %d: %v", event, userID, err)
	}
}

// ipnSuccess 网关的 success 字段类型不稳定，字符串和数字都要认
func ipnSuccess(v interface{}) bool {
	switch val := v.(type) {
	case string:
		return val == "1" || val == "true"
	case float64:
		return val == 1
	case int:
		return val == 1
	case bool:
		return val
	default:
		return false
	}
}
