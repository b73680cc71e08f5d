package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/softskills/softskills_go_server/internal/model"
	"github.com/softskills/softskills_go_server/internal/model/dto"
	"github.com/softskills/softskills_go_server/internal/repository"
	"github.com/softskills/softskills_go_server/internal/testutil"
)

func newCourseService(db *gorm.DB) *CourseService {
	return NewCourseService(
		repository.NewCourseRepository(db),
		repository.NewEnrollmentRepository(db),
		repository.NewSubscriptionRepository(db),
	)
}

func TestCourseService_Enroll_FreeCourse(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := newCourseService(db)

	user := testutil.TestUser(t, db)
	instructor := testutil.TestUser(t, db)
	course := testutil.TestCourse(t, db, instructor.ID, testutil.WithFree())

	enrollment, err := svc.Enroll(user.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, "free", enrollment.PaymentStatus)

	// 选课数加一
	reloaded, err := repository.NewCourseRepository(db).GetByID(course.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.EnrollmentCount)

	// 重复选课报错
	_, err = svc.Enroll(user.ID, course.ID)
	assert.ErrorIs(t, err, ErrAlreadyEnrolled)
}

func TestCourseService_Enroll_PaidCourseRequiresPayment(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := newCourseService(db)

	user := testutil.TestUser(t, db)
	instructor := testutil.TestUser(t, db)
	course := testutil.TestCourse(t, db, instructor.ID, testutil.WithPrice(49.00))

	_, err := svc.Enroll(user.ID, course.ID)
	assert.ErrorIs(t, err, ErrPaymentRequired)
}

func TestCourseService_Enroll_SubscriberSkipsPayment(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := newCourseService(db)

	user := testutil.TestUser(t, db)
	instructor := testutil.TestUser(t, db)
	course := testutil.TestCourse(t, db, instructor.ID, testutil.WithPrice(49.00))
	plan := testutil.TestPlan(t, db)
	testutil.TestSubscription(t, db, user.ID, plan.ID,
		testutil.WithSubscriptionStatus(model.SubscriptionActive))

	enrollment, err := svc.Enroll(user.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, "paid", enrollment.PaymentStatus)
}

func TestCourseService_Enroll_SubscriberQuotaFull(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := newCourseService(db)

	user := testutil.TestUser(t, db)
	instructor := testutil.TestUser(t, db)
	plan := testutil.TestPlan(t, db)
	plan.MaxCourses = 1
	require.NoError(t, db.Save(plan).Error)
	testutil.TestSubscription(t, db, user.ID, plan.ID,
		testutil.WithSubscriptionStatus(model.SubscriptionActive))

	first := testutil.TestCourse(t, db, instructor.ID, testutil.WithPrice(49.00))
	second := testutil.TestCourse(t, db, instructor.ID, testutil.WithPrice(59.00))

	_, err := svc.Enroll(user.ID, first.ID)
	require.NoError(t, err)

	_, err = svc.Enroll(user.ID, second.ID)
	assert.ErrorIs(t, err, ErrCourseQuotaFull)
}

func TestCourseService_Progress(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := newCourseService(db)

	user := testutil.TestUser(t, db)
	instructor := testutil.TestUser(t, db)
	course := testutil.TestCourse(t, db, instructor.ID, testutil.WithFree())

	lessons := make([]*model.Lesson, 0, 4)
	for i := 1; i <= 4; i++ {
		lessons = append(lessons, testutil.TestLesson(t, db, course.ID, i))
	}

	_, err := svc.Enroll(user.ID, course.ID)
	require.NoError(t, err)

	// 完成前两课
	for _, lesson := range lessons[:2] {
		_, err := svc.CompleteLesson(user.ID, lesson.ID)
		require.NoError(t, err)
	}

	progress, err := svc.GetProgress(user.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, progress.TotalLessons)
	assert.Equal(t, 2, progress.CompletedLessons)
	assert.InDelta(t, 50.0, progress.Percentage, 0.001)

	// 重复完成同一课时进度不变
	_, err = svc.CompleteLesson(user.ID, lessons[0].ID)
	require.NoError(t, err)

	progress, err = svc.GetProgress(user.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, progress.CompletedLessons)
}

func TestCourseService_CompleteLesson_NotEnrolled(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := newCourseService(db)

	user := testutil.TestUser(t, db)
	instructor := testutil.TestUser(t, db)
	course := testutil.TestCourse(t, db, instructor.ID, testutil.WithFree())
	lesson := testutil.TestLesson(t, db, course.ID, 1)

	_, err := svc.CompleteLesson(user.ID, lesson.ID)
	assert.ErrorIs(t, err, ErrNotEnrolled)
}

func TestCourseService_RateCourse(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := newCourseService(db)

	user := testutil.TestUser(t, db)
	instructor := testutil.TestUser(t, db)
	course := testutil.TestCourse(t, db, instructor.ID, testutil.WithFree())

	// 未选课不能评分
	_, err := svc.RateCourse(user.ID, course.ID, &dto.RateCourseRequest{Rating: 5})
	assert.ErrorIs(t, err, ErrNotEnrolled)

	_, err = svc.Enroll(user.ID, course.ID)
	require.NoError(t, err)

	rating, err := svc.RateCourse(user.ID, course.ID, &dto.RateCourseRequest{Rating: 4, Review: "Très bon cours"})
	require.NoError(t, err)
	assert.Equal(t, 4, rating.Rating)

	// 重复评分报错
	_, err = svc.RateCourse(user.ID, course.ID, &dto.RateCourseRequest{Rating: 5})
	assert.ErrorIs(t, err, ErrAlreadyRated)

	summary, err := svc.GetRatingSummary(course.ID)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, summary.Average, 0.001)
	assert.Equal(t, int64(1), summary.Count)
}

func TestCourseService_GetCourseBySlug_DraftHidden(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := newCourseService(db)

	instructor := testutil.TestUser(t, db)
	viewer := testutil.TestUser(t, db)
	course := testutil.TestCourse(t, db, instructor.ID, testutil.WithPublished(false))

	_, err := svc.GetCourseBySlug(course.Slug, viewer.ID)
	assert.ErrorIs(t, err, ErrCourseNotFound)

	// 讲师本人可见
	found, err := svc.GetCourseBySlug(course.Slug, instructor.ID)
	require.NoError(t, err)
	assert.Equal(t, course.ID, found.ID)
}

func TestCourseService_ListCourses_Filters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := newCourseService(db)

	instructor := testutil.TestUser(t, db)
	testutil.TestCourse(t, db, instructor.ID, testutil.WithFree())
	testutil.TestCourse(t, db, instructor.ID, testutil.WithPrice(49.00))
	testutil.TestCourse(t, db, instructor.ID, testutil.WithPublished(false))

	free := true
	courses, total, err := svc.ListCourses(&dto.CourseListQuery{Free: &free})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, courses, 1)

	// 未发布课程不进列表
	courses, total, err = svc.ListCourses(&dto.CourseListQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, courses, 2)
}
