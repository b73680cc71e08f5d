package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/softskills/softskills_go_server/config"
	"github.com/softskills/softskills_go_server/internal/model"
	"github.com/softskills/softskills_go_server/internal/pkg/paytech"
	"github.com/softskills/softskills_go_server/internal/pkg/response"
	"github.com/softskills/softskills_go_server/internal/repository"
	"github.com/softskills/softskills_go_server/internal/service"
	"github.com/softskills/softskills_go_server/internal/testutil"
)

func setupPaymentHandler(t *testing.T) (*PaymentHandler, *testContext, func()) {
	t.Helper()

	db := testutil.SetupTestDB(t)

	cfg := &config.Config{
		Server: config.ServerConfig{BaseURL: "https://api.example.com"},
		PayTech: config.PayTechConfig{
			APIKey:    "pk_test",
			APISecret: "sk_test",
			Env:       "test",
			Currency:  "XOF",
		},
		Billing: config.BillingConfig{TaxRate: 0.18, InvoicePrefix: "INV"},
	}

	paymentService := service.NewPaymentService(
		repository.NewPaymentRepository(db),
		repository.NewCouponRepository(db),
		repository.NewInvoiceRepository(db),
		repository.NewEnrollmentRepository(db),
		repository.NewCourseRepository(db),
		repository.NewCoachingRepository(db),
		repository.NewSubscriptionRepository(db),
		repository.NewPlanRepository(db),
		repository.NewUserRepository(db),
		paytech.NewClient(&cfg.PayTech),
		nil,
		nil,
		cfg,
	)
	handler := NewPaymentHandler(paymentService)

	ctx := &testContext{DB: db}

	cleanup := func() {
		testutil.CleanupTestDB(t, db)
	}

	return handler, ctx, cleanup
}

func performIPN(r http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/ipn", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPaymentHandler_IPN_Success(t *testing.T) {
	handler, ctx, cleanup := setupPaymentHandler(t)
	defer cleanup()

	user := testutil.TestUser(t, ctx.DB)
	instructor := testutil.TestUser(t, ctx.DB, testutil.WithUsername("instructor"))
	course := testutil.TestCourse(t, ctx.DB, instructor.ID)
	testutil.TestPayment(t, ctx.DB, user.ID,
		testutil.WithPaymentCourse(course.ID),
		testutil.WithPaymentStatus(model.PaymentProcessing),
		testutil.WithTransactionID("abc123"))

	router := gin.New()
	router.POST("/ipn", handler.IPN)

	w := performIPN(router, `{"token":"abc123","success":"1"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())

	var payment model.Payment
	require.NoError(t, ctx.DB.Where("transaction_id = ?", "abc123").First(&payment).Error)
	assert.Equal(t, model.PaymentCompleted, payment.Status)
}

func TestPaymentHandler_IPN_DuplicateDelivery(t *testing.T) {
	handler, ctx, cleanup := setupPaymentHandler(t)
	defer cleanup()

	user := testutil.TestUser(t, ctx.DB)
	instructor := testutil.TestUser(t, ctx.DB, testutil.WithUsername("instructor"))
	course := testutil.TestCourse(t, ctx.DB, instructor.ID)
	testutil.TestPayment(t, ctx.DB, user.ID,
		testutil.WithPaymentCourse(course.ID),
		testutil.WithPaymentStatus(model.PaymentProcessing),
		testutil.WithTransactionID("abc123"))

	router := gin.New()
	router.POST("/ipn", handler.IPN)

	w := performIPN(router, `{"token":"abc123","success":"1"}`)
	require.Equal(t, http.StatusOK, w.Code)

	// 网关重发同一通知，仍应应答 OK
	w = performIPN(router, `{"token":"abc123","success":"1"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())

	var count int64
	ctx.DB.Model(&model.CourseEnrollment{}).
		Where("user_id = ? AND course_id = ?", user.ID, course.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestPaymentHandler_IPN_UnknownToken(t *testing.T) {
	handler, _, cleanup := setupPaymentHandler(t)
	defer cleanup()

	router := gin.New()
	router.POST("/ipn", handler.IPN)

	w := performIPN(router, `{"token":"no-such-token","success":"1"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "ERROR", w.Body.String())
}

func TestPaymentHandler_IPN_MalformedBody(t *testing.T) {
	handler, _, cleanup := setupPaymentHandler(t)
	defer cleanup()

	router := gin.New()
	router.POST("/ipn", handler.IPN)

	w := performIPN(router, `{not-json`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "ERROR", w.Body.String())
}

func TestPaymentHandler_IPN_MissingToken(t *testing.T) {
	handler, _, cleanup := setupPaymentHandler(t)
	defer cleanup()

	router := gin.New()
	router.POST("/ipn", handler.IPN)

	w := performIPN(router, `{"success":"1"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "ERROR", w.Body.String())
}

func TestPaymentHandler_IPN_FailureNotice(t *testing.T) {
	handler, ctx, cleanup := setupPaymentHandler(t)
	defer cleanup()

	user := testutil.TestUser(t, ctx.DB)
	instructor := testutil.TestUser(t, ctx.DB, testutil.WithUsername("instructor"))
	course := testutil.TestCourse(t, ctx.DB, instructor.ID)
	testutil.TestPayment(t, ctx.DB, user.ID,
		testutil.WithPaymentCourse(course.ID),
		testutil.WithPaymentStatus(model.PaymentProcessing),
		testutil.WithTransactionID("fail-token"))

	router := gin.New()
	router.POST("/ipn", handler.IPN)

	w := performIPN(router, `{"token":"fail-token","success":0,"message":"insufficient funds"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())

	var payment model.Payment
	require.NoError(t, ctx.DB.Where("transaction_id = ?", "fail-token").First(&payment).Error)
	assert.Equal(t, model.PaymentFailed, payment.Status)
}

func TestPaymentHandler_ValidateCoupon(t *testing.T) {
	handler, ctx, cleanup := setupPaymentHandler(t)
	defer cleanup()

	coupon := testutil.TestCoupon(t, ctx.DB)

	router := gin.New()
	router.POST("/coupons/validate", handler.ValidateCoupon)

	w := performRequest(router, "POST", "/coupons/validate", map[string]interface{}{
		"code":   coupon.Code,
		"amount": 100.0,
	})
	resp := parseResponse(t, w)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, response.CodeSuccess, resp.Code)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, data["valid"])
}

func TestPaymentHandler_ListMyPayments(t *testing.T) {
	handler, ctx, cleanup := setupPaymentHandler(t)
	defer cleanup()

	user := testutil.TestUser(t, ctx.DB)
	testutil.TestPayment(t, ctx.DB, user.ID, testutil.WithTransactionID("tok-1"))
	testutil.TestPayment(t, ctx.DB, user.ID,
		testutil.WithTransactionID("tok-2"),
		testutil.WithPaymentStatus(model.PaymentCompleted))

	router := gin.New()
	router.Use(mockAuth(user.ID))
	router.GET("/payments", handler.ListMyPayments)

	req := httptest.NewRequest("GET", "/payments", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	resp := parseResponse(t, w)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, response.CodeSuccess, resp.Code)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(2), data["total"])
}
