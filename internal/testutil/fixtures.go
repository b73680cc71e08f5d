package testutil

import (
	"fmt"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/softskills/softskills_go_server/internal/model"
)

// TestUser 创建测试用户
func TestUser(t *testing.T, db *gorm.DB, opts ...func(*model.User)) *model.User {
	t.Helper()

	email := fmt.Sprintf("test_%d@example.com", time.Now().UnixNano())
	passwordHash := "$2a$10$abcdefghijklmnopqrstuvwxyz123456" // bcrypt hash placeholder
	user := &model.User{
		Username:      fmt.Sprintf("testuser_%d", time.Now().UnixNano()%1000000),
		Email:         &email,
		PasswordHash:  &passwordHash,
		FirstName:     "Awa",
		LastName:      "Diop",
		EmailVerified: true,
	}

	for _, opt := range opts {
		opt(user)
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// WithUsername 设置用户名
func WithUsername(username string) func(*model.User) {
	return func(u *model.User) {
		u.Username = username
	}
}

// WithEmail 设置邮箱
func WithEmail(email string) func(*model.User) {
	return func(u *model.User) {
		u.Email = &email
	}
}

// WithSubscribed 设置订阅标记
func WithSubscribed(endDate time.Time) func(*model.User) {
	return func(u *model.User) {
		u.IsSubscribed = true
		u.SubscriptionEndDate = &endDate
	}
}

// TestCategory 创建测试分类
func TestCategory(t *testing.T, db *gorm.DB) *model.Category {
	t.Helper()

	n := time.Now().UnixNano()
	category := &model.Category{
		Name:     fmt.Sprintf("Category %d", n),
		Slug:     fmt.Sprintf("category-%d", n),
		IsActive: true,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("Failed to create test category: %v", err)
	}
	return category
}

// TestCourse 创建测试课程
func TestCourse(t *testing.T, db *gorm.DB, instructorID int64, opts ...func(*model.Course)) *model.Course {
	t.Helper()

	category := TestCategory(t, db)
	n := time.Now().UnixNano()
	course := &model.Course{
		Title:        fmt.Sprintf("Test Course %d", n%1000000),
		Slug:         fmt.Sprintf("test-course-%d", n),
		Description:  "Description du cours",
		CategoryID:   category.ID,
		InstructorID: instructorID,
		Price:        49.00,
		IsPublished:  true,
	}

	for _, opt := range opts {
		opt(course)
	}

	if err := db.Create(course).Error; err != nil {
		t.Fatalf("Failed to create test course: %v", err)
	}
	return course
}

// WithPrice 设置课程价格
func WithPrice(price float64) func(*model.Course) {
	return func(c *model.Course) {
		c.Price = price
		c.IsFree = price == 0
	}
}

// WithFree 设置为免费课程
func WithFree() func(*model.Course) {
	return func(c *model.Course) {
		c.Price = 0
		c.IsFree = true
	}
}

// WithPublished 设置发布状态
func WithPublished(published bool) func(*model.Course) {
	return func(c *model.Course) {
		c.IsPublished = published
	}
}

// TestLesson 创建测试课时
func TestLesson(t *testing.T, db *gorm.DB, courseID int64, order int) *model.Lesson {
	t.Helper()

	lesson := &model.Lesson{
		CourseID: courseID,
		Title:    fmt.Sprintf("Lesson %d", order),
		Slug:     fmt.Sprintf("lesson-%d-%d", courseID, order),
		Order:    order,
		IsActive: true,
	}
	if err := db.Create(lesson).Error; err != nil {
		t.Fatalf("Failed to create test lesson: %v", err)
	}
	return lesson
}

// TestCoach 创建测试辅导教练
func TestCoach(t *testing.T, db *gorm.DB, userID int64, opts ...func(*model.Coach)) *model.Coach {
	t.Helper()

	coach := &model.Coach{
		UserID:          userID,
		Specialization:  "Communication",
		ExperienceYears: 5,
		HourlyRate:      60.00,
		IsAvailable:     true,
	}

	for _, opt := range opts {
		opt(coach)
	}

	if err := db.Create(coach).Error; err != nil {
		t.Fatalf("Failed to create test coach: %v", err)
	}
	return coach
}

// WithHourlyRate 设置时薪
func WithHourlyRate(rate float64) func(*model.Coach) {
	return func(c *model.Coach) {
		c.HourlyRate = rate
	}
}

// TestPlan 创建测试订阅套餐
func TestPlan(t *testing.T, db *gorm.DB, opts ...func(*model.SubscriptionPlan)) *model.SubscriptionPlan {
	t.Helper()

	plan := &model.SubscriptionPlan{
		Name:         fmt.Sprintf("Plan %d", time.Now().UnixNano()%1000000),
		PlanType:     "monthly",
		Price:        100.00,
		DurationDays: 30,
		IsActive:     true,
	}

	for _, opt := range opts {
		opt(plan)
	}

	if err := db.Create(plan).Error; err != nil {
		t.Fatalf("Failed to create test plan: %v", err)
	}
	return plan
}

// WithPlanPrice 设置套餐价格
func WithPlanPrice(price float64) func(*model.SubscriptionPlan) {
	return func(p *model.SubscriptionPlan) {
		p.Price = price
	}
}

// WithDuration 设置套餐时长
func WithDuration(days int) func(*model.SubscriptionPlan) {
	return func(p *model.SubscriptionPlan) {
		p.DurationDays = days
	}
}

// TestCoupon 创建测试优惠券
func TestCoupon(t *testing.T, db *gorm.DB, opts ...func(*model.Coupon)) *model.Coupon {
	t.Helper()

	coupon := &model.Coupon{
		Code:          fmt.Sprintf("TEST%d", time.Now().UnixNano()%1000000),
		CouponType:    model.CouponPercentage,
		DiscountValue: 10,
		ValidFrom:     time.Now().Add(-time.Hour),
		ValidUntil:    time.Now().Add(24 * time.Hour),
		IsActive:      true,
	}

	for _, opt := range opts {
		opt(coupon)
	}

	if err := db.Create(coupon).Error; err != nil {
		t.Fatalf("Failed to create test coupon: %v", err)
	}
	return coupon
}

// WithCouponType 设置优惠券类型和面值
func WithCouponType(couponType string, value float64) func(*model.Coupon) {
	return func(c *model.Coupon) {
		c.CouponType = couponType
		c.DiscountValue = value
	}
}

// WithMaxUses 设置使用上限
func WithMaxUses(maxUses, usedCount int) func(*model.Coupon) {
	return func(c *model.Coupon) {
		c.MaxUses = maxUses
		c.UsedCount = usedCount
	}
}

// TestPayment 创建测试支付记录
func TestPayment(t *testing.T, db *gorm.DB, userID int64, opts ...func(*model.Payment)) *model.Payment {
	t.Helper()

	payment := &model.Payment{
		UserID:      userID,
		PaymentType: model.PaymentPurposeCourse,
		Amount:      49.00,
		Currency:    "XOF",
		Status:      model.PaymentPending,
	}

	for _, opt := range opts {
		opt(payment)
	}

	if err := db.Create(payment).Error; err != nil {
		t.Fatalf("Failed to create test payment: %v", err)
	}
	return payment
}

// WithTransactionID 设置网关 token
func WithTransactionID(token string) func(*model.Payment) {
	return func(p *model.Payment) {
		p.TransactionID = &token
	}
}

// WithPaymentCourse 关联课程
func WithPaymentCourse(courseID int64) func(*model.Payment) {
	return func(p *model.Payment) {
		p.PaymentType = model.PaymentPurposeCourse
		p.CourseID = &courseID
	}
}

// WithPaymentStatus 设置支付状态
func WithPaymentStatus(status model.PaymentStatus) func(*model.Payment) {
	return func(p *model.Payment) {
		p.Status = status
	}
}

// TestPost 创建测试博客文章
func TestPost(t *testing.T, db *gorm.DB, authorID int64, opts ...func(*model.BlogPost)) *model.BlogPost {
	t.Helper()

	n := time.Now().UnixNano()
	now := time.Now()
	post := &model.BlogPost{
		Title:       fmt.Sprintf("Test Post %d", n%1000000),
		Slug:        fmt.Sprintf("test-post-%d", n),
		Content:     "Contenu de l'article",
		AuthorID:    authorID,
		Status:      model.PostPublished,
		PublishedAt: &now,
	}

	for _, opt := range opts {
		opt(post)
	}

	if err := db.Create(post).Error; err != nil {
		t.Fatalf("Failed to create test post: %v", err)
	}
	return post
}

// WithPostStatus 设置文章状态
func WithPostStatus(status string) func(*model.BlogPost) {
	return func(p *model.BlogPost) {
		p.Status = status
		if status != model.PostPublished {
			p.PublishedAt = nil
		}
	}
}

// TestSubscription 创建测试订阅
func TestSubscription(t *testing.T, db *gorm.DB, userID, planID int64, opts ...func(*model.UserSubscription)) *model.UserSubscription {
	t.Helper()

	sub := &model.UserSubscription{
		UserID:    userID,
		PlanID:    planID,
		Status:    model.SubscriptionPending,
		StartDate: time.Now(),
		EndDate:   time.Now().Add(30 * 24 * time.Hour),
	}

	for _, opt := range opts {
		opt(sub)
	}

	if err := db.Create(sub).Error; err != nil {
		t.Fatalf("Failed to create test subscription: %v", err)
	}
	return sub
}

// WithSubscriptionStatus 设置订阅状态
func WithSubscriptionStatus(status model.SubscriptionStatus) func(*model.UserSubscription) {
	return func(s *model.UserSubscription) {
		s.Status = status
	}
}
