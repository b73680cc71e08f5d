package repository

import (
	"gorm.io/gorm"

	"github.com/softskills/softskills_go_server/internal/model"
)

type CourseRepository struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

func (r *CourseRepository) CreateCategory(category *model.Category) error {
	return r.db.Create(category).Error
}

func (r *CourseRepository) ListCategories() ([]*model.Category, error) {
	var categories []*model.Category
	err := r.db.Where("is_active = ?", true).Order("name ASC").Find(&categories).Error
	return categories, err
}

func (r *CourseRepository) GetCategoryBySlug(slug string) (*model.Category, error) {
	var category model.Category
	err := r.db.Where("slug = ?", slug).First(&category).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *CourseRepository) Create(course *model.Course) error {
	return r.db.Create(course).Error
}

func (r *CourseRepository) GetByID(id int64) (*model.Course, error) {
	var course model.Course
	err := r.db.Where("id = ?", id).First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *CourseRepository) GetBySlug(slug string) (*model.Course, error) {
	var course model.Course
	err := r.db.Preload("Category").Preload("Instructor").
		Where("slug = ?", slug).First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *CourseRepository) Update(course *model.Course) error {
	return r.db.Save(course).Error
}

func (r *CourseRepository) UpdateFields(id int64, fields map[string]interface{}) error {
	return r.db.Model(&model.Course{}).Where("id = ?", id).Updates(fields).Error
}

// List 已发布课程列表，支持分类 / 难度 / 免费 / 搜索过滤
func (r *CourseRepository) List(page, pageSize int, categorySlug, difficulty, search string, freeOnly bool) ([]*model.Course, int64, error) {
	var courses []*model.Course
	var total int64

	query := r.db.Model(&model.Course{}).Preload("Category").Where("is_published = ?", true)

	if categorySlug != "" {
		query = query.Joins("JOIN categories ON categories.id = courses.category_id").
			Where("categories.slug = ?", categorySlug)
	}
	if difficulty != "" {
		query = query.Where("difficulty_level = ?", difficulty)
	}
	if freeOnly {
		query = query.Where("is_free = ?", true)
	}
	if search != "" {
		query = query.Where("title LIKE ? OR description LIKE ?", "%"+search+"%", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&courses).Error; err != nil {
		return nil, 0, err
	}

	return courses, total, nil
}

// ListFeatured 精选课程
func (r *CourseRepository) ListFeatured(limit int) ([]*model.Course, error) {
	var courses []*model.Course
	err := r.db.Preload("Category").
		Where("is_published = ? AND is_featured = ?", true, true).
		Order("enrollment_count DESC").Limit(limit).Find(&courses).Error
	return courses, err
}

// IncrementEnrollmentCount 增加选课数
func (r *CourseRepository) IncrementEnrollmentCount(id int64) error {
	return r.db.Model(&model.Course{}).Where("id = ?", id).
		Update("enrollment_count", gorm.Expr("enrollment_count + 1")).Error
}

func (r *CourseRepository) CreateLesson(lesson *model.Lesson) error {
	return r.db.Create(lesson).Error
}

func (r *CourseRepository) GetLessonByID(id int64) (*model.Lesson, error) {
	var lesson model.Lesson
	err := r.db.Where("id = ?", id).First(&lesson).Error
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}

// ListLessons 课程下的课时，按 sort_order 排序
func (r *CourseRepository) ListLessons(courseID int64) ([]*model.Lesson, error) {
	var lessons []*model.Lesson
	err := r.db.Where("course_id = ? AND is_active = ?", courseID, true).
		Order("sort_order ASC").Find(&lessons).Error
	return lessons, err
}

func (r *CourseRepository) CountLessons(courseID int64) (int64, error) {
	var count int64
	err := r.db.Model(&model.Lesson{}).
		Where("course_id = ? AND is_active = ?", courseID, true).Count(&count).Error
	return count, err
}

func (r *CourseRepository) CreateRating(rating *model.CourseRating) error {
	return r.db.Create(rating).Error
}

func (r *CourseRepository) GetRating(userID, courseID int64) (*model.CourseRating, error) {
	var rating model.CourseRating
	err := r.db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&rating).Error
	if err != nil {
		return nil, err
	}
	return &rating, nil
}

func (r *CourseRepository) ListRatings(courseID int64, page, pageSize int) ([]*model.CourseRating, int64, error) {
	var ratings []*model.CourseRating
	var total int64

	query := r.db.Model(&model.CourseRating{}).Preload("User").Where("course_id = ?", courseID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&ratings).Error; err != nil {
		return nil, 0, err
	}
	return ratings, total, nil
}

// AverageRating 课程平均分
func (r *CourseRepository) AverageRating(courseID int64) (float64, int64, error) {
	var result struct {
		Avg   float64
		Count int64
	}
	err := r.db.Model(&model.CourseRating{}).
		Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS count").
		Where("course_id = ?", courseID).Scan(&result).Error
	return result.Avg, result.Count, err
}
