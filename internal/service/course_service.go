package service

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/softskills/softskills_go_server/internal/model"
	"github.com/softskills/softskills_go_server/internal/model/dto"
	"github.com/softskills/softskills_go_server/internal/repository"
)

var (
	ErrCourseNotFound    = errors.New("课程不存在")
	ErrLessonNotFound    = errors.New("课时不存在")
	ErrCategoryNotFound  = errors.New("分类不存在")
	ErrAlreadyEnrolled   = errors.New("已选过该课程")
	ErrPaymentRequired   = errors.New("付费课程需要先购买")
	ErrNotEnrolled       = errors.New("尚未选课")
	ErrAlreadyRated      = errors.New("已评价过该课程")
	ErrSlugExists        = errors.New("slug 已被使用")
	ErrCourseUnavailable = errors.New("课程未发布")
	ErrPermissionDenied  = errors.New("无权限执行该操作")
	ErrCourseQuotaFull   = errors.New("已达套餐课程数量上限")
)

type CourseService struct {
	courseRepo     *repository.CourseRepository
	enrollmentRepo *repository.EnrollmentRepository
	subRepo        *repository.SubscriptionRepository
}

func NewCourseService(courseRepo *repository.CourseRepository, enrollmentRepo *repository.EnrollmentRepository, subRepo *repository.SubscriptionRepository) *CourseService {
	return &CourseService{
		courseRepo:     courseRepo,
		enrollmentRepo: enrollmentRepo,
		subRepo:        subRepo,
	}
}

// ListCategories 课程分类列表
func (s *CourseService) ListCategories() ([]*model.Category, error) {
	return s.courseRepo.ListCategories()
}

// ListCourses 已发布课程列表
func (s *CourseService) ListCourses(query *dto.CourseListQuery) ([]*model.Course, int64, error) {
	page := query.Page
	if page < 1 {
		page = 1
	}
	pageSize := query.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	freeOnly := query.Free != nil && *query.Free
	return s.courseRepo.List(page, pageSize, query.Category, query.Difficulty, query.Keyword, freeOnly)
}

// ListFeaturedCourses 精选课程
func (s *CourseService) ListFeaturedCourses(limit int) ([]*model.Course, error) {
	if limit < 1 || limit > 20 {
		limit = 6
	}
	return s.courseRepo.ListFeatured(limit)
}

// GetCourseBySlug 课程详情，未发布课程只有讲师本人可见
func (s *CourseService) GetCourseBySlug(slug string, viewerID int64) (*model.Course, error) {
	course, err := s.courseRepo.GetBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	if !course.IsPublished && course.InstructorID != viewerID {
		return nil, ErrCourseNotFound
	}
	return course, nil
}

// CreateCourse 创建课程，讲师为当前用户
func (s *CourseService) CreateCourse(instructorID int64, req *dto.CreateCourseRequest) (*model.Course, error) {
	if _, err := s.courseRepo.GetBySlug(req.Slug); err == nil {
		return nil, ErrSlugExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	course := &model.Course{
		Title:            req.Title,
		Slug:             req.Slug,
		Description:      req.Description,
		ShortDescription: req.ShortDescription,
		CategoryID:       req.CategoryID,
		InstructorID:     instructorID,
		DifficultyLevel:  req.DifficultyLevel,
		DurationHours:    req.DurationHours,
		Price:            req.Price,
		IsFree:           req.IsFree || req.Price == 0,
		Objectives:       req.Objectives,
		Prerequisites:    req.Prerequisites,
	}
	if course.DifficultyLevel == "" {
		course.DifficultyLevel = "beginner"
	}

	if err := s.courseRepo.Create(course); err != nil {
		return nil, err
	}
	return course, nil
}

// PublishCourse 发布课程
func (s *CourseService) PublishCourse(courseID, instructorID int64) error {
	course, err := s.courseRepo.GetByID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCourseNotFound
		}
		return err
	}
	if course.InstructorID != instructorID {
		return ErrPermissionDenied
	}

	now := time.Now()
	return s.courseRepo.UpdateFields(courseID, map[string]interface{}{
		"is_published": true,
		"published_at": &now,
	})
}

// ListLessons 课程课时列表，需要有访问权限
func (s *CourseService) ListLessons(courseID, userID int64) ([]*model.Lesson, error) {
	course, err := s.courseRepo.GetByID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	ok, err := s.canAccessCourse(course, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrPaymentRequired
	}

	return s.courseRepo.ListLessons(courseID)
}

// GetLesson 课时详情。访问控制由上层路由保证（订阅会员专属入口）
func (s *CourseService) GetLesson(lessonID int64) (*model.Lesson, error) {
	lesson, err := s.courseRepo.GetLessonByID(lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLessonNotFound
		}
		return nil, err
	}
	return lesson, nil
}

// Enroll 选课。免费课程直接成功，付费课程需先完成支付
func (s *CourseService) Enroll(userID, courseID int64) (*model.CourseEnrollment, error) {
	course, err := s.courseRepo.GetByID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	if !course.IsPublished {
		return nil, ErrCourseUnavailable
	}

	if !course.IsFree && course.Price > 0 {
		// 订阅用户可直接选付费课程，但要受套餐数量限制
		sub, err := s.subRepo.GetActiveByUserID(userID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if sub == nil || !sub.IsActive() {
			return nil, ErrPaymentRequired
		}
		if sub.Plan != nil && sub.Plan.MaxCourses > 0 {
			count, err := s.enrollmentRepo.CountPaidByUser(userID)
			if err != nil {
				return nil, err
			}
			if count >= int64(sub.Plan.MaxCourses) {
				return nil, ErrCourseQuotaFull
			}
		}
	}

	status := "free"
	if !course.IsFree && course.Price > 0 {
		status = "paid"
	}

	enrollment, created, err := s.enrollmentRepo.GetOrCreate(&model.CourseEnrollment{
		UserID:        userID,
		CourseID:      courseID,
		PaymentStatus: status,
	})
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, ErrAlreadyEnrolled
	}

	if err := s.courseRepo.IncrementEnrollmentCount(courseID); err != nil {
		return nil, err
	}
	return enrollment, nil
}

// ListMyEnrollments 我的选课
func (s *CourseService) ListMyEnrollments(userID int64, page, pageSize int) ([]*model.CourseEnrollment, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.enrollmentRepo.ListByUser(userID, page, pageSize)
}

// CompleteLesson 标记课时完成，需已选课
func (s *CourseService) CompleteLesson(userID, lessonID int64) (*dto.CourseProgress, error) {
	lesson, err := s.courseRepo.GetLessonByID(lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLessonNotFound
		}
		return nil, err
	}

	if _, err := s.enrollmentRepo.Get(userID, lesson.CourseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotEnrolled
		}
		return nil, err
	}

	// 重复完成不报错，保持幂等
	if _, err := s.enrollmentRepo.MarkLessonCompleted(&model.LessonProgress{
		UserID:   userID,
		LessonID: lessonID,
		CourseID: lesson.CourseID,
	}); err != nil {
		return nil, err
	}

	return s.GetProgress(userID, lesson.CourseID)
}

// GetProgress 课程进度，每次按完成记录实时计算
func (s *CourseService) GetProgress(userID, courseID int64) (*dto.CourseProgress, error) {
	total, err := s.courseRepo.CountLessons(courseID)
	if err != nil {
		return nil, err
	}
	completed, err := s.enrollmentRepo.CountCompletedLessons(userID, courseID)
	if err != nil {
		return nil, err
	}

	progress := &dto.CourseProgress{
		CourseID:         courseID,
		TotalLessons:     int(total),
		CompletedLessons: int(completed),
	}
	if total > 0 {
		progress.Percentage = float64(completed) / float64(total) * 100
	}
	return progress, nil
}

// RateCourse 课程评分，需已选课且未评价过
func (s *CourseService) RateCourse(userID, courseID int64, req *dto.RateCourseRequest) (*model.CourseRating, error) {
	if _, err := s.courseRepo.GetByID(courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	if _, err := s.enrollmentRepo.Get(userID, courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotEnrolled
		}
		return nil, err
	}

	if _, err := s.courseRepo.GetRating(userID, courseID); err == nil {
		return nil, ErrAlreadyRated
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	rating := &model.CourseRating{
		UserID:   userID,
		CourseID: courseID,
		Rating:   req.Rating,
		Review:   req.Review,
	}
	if err := s.courseRepo.CreateRating(rating); err != nil {
		return nil, err
	}
	return rating, nil
}

// GetRatingSummary 课程评分汇总
func (s *CourseService) GetRatingSummary(courseID int64) (*dto.CourseRatingSummary, error) {
	avg, count, err := s.courseRepo.AverageRating(courseID)
	if err != nil {
		return nil, err
	}
	return &dto.CourseRatingSummary{Average: avg, Count: count}, nil
}

// canAccessCourse 课时访问权限：免费课程、已选课、或有有效订阅
func (s *CourseService) canAccessCourse(course *model.Course, userID int64) (bool, error) {
	if course.IsFree || course.Price == 0 {
		return true, nil
	}
	if course.InstructorID == userID {
		return true, nil
	}

	if _, err := s.enrollmentRepo.Get(userID, course.ID); err == nil {
		return true, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	sub, err := s.subRepo.GetActiveByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return sub.IsActive(), nil
}
