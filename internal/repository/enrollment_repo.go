package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/softskills/softskills_go_server/internal/model"
)

type EnrollmentRepository struct {
	db *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

func (r *EnrollmentRepository) Get(userID, courseID int64) (*model.CourseEnrollment, error) {
	var enrollment model.CourseEnrollment
	err := r.db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&enrollment).Error
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// GetOrCreate 按 (user, course) 取或建选课记录，并发撞唯一索引时回读已有记录。
// 第二个返回值表示是否新建。
func (r *EnrollmentRepository) GetOrCreate(enrollment *model.CourseEnrollment) (*model.CourseEnrollment, bool, error) {
	existing, err := r.Get(enrollment.UserID, enrollment.CourseID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	if err := r.db.Create(enrollment).Error; err != nil {
		existing, err2 := r.Get(enrollment.UserID, enrollment.CourseID)
		if err2 == nil {
			return existing, false, nil
		}
		return nil, false, err
	}
	return enrollment, true, nil
}

func (r *EnrollmentRepository) Update(enrollment *model.CourseEnrollment) error {
	return r.db.Save(enrollment).Error
}

func (r *EnrollmentRepository) ListByUser(userID int64, page, pageSize int) ([]*model.CourseEnrollment, int64, error) {
	var enrollments []*model.CourseEnrollment
	var total int64

	query := r.db.Model(&model.CourseEnrollment{}).Preload("Course").Preload("Course.Category").
		Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.Order("enrolled_at DESC").Offset(offset).Limit(pageSize).Find(&enrollments).Error; err != nil {
		return nil, 0, err
	}
	return enrollments, total, nil
}

// CountPaidByUser 用户付费选课数，用于套餐配额判断
func (r *EnrollmentRepository) CountPaidByUser(userID int64) (int64, error) {
	var count int64
	err := r.db.Model(&model.CourseEnrollment{}).
		Where("user_id = ? AND payment_status = ?", userID, "paid").Count(&count).Error
	return count, err
}

// MarkLessonCompleted 记录课时完成，重复完成不报错
func (r *EnrollmentRepository) MarkLessonCompleted(progress *model.LessonProgress) (bool, error) {
	var existing model.LessonProgress
	err := r.db.Where("user_id = ? AND lesson_id = ?", progress.UserID, progress.LessonID).
		First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	if err := r.db.Create(progress).Error; err != nil {
		var again model.LessonProgress
		if err2 := r.db.Where("user_id = ? AND lesson_id = ?", progress.UserID, progress.LessonID).
			First(&again).Error; err2 == nil {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *EnrollmentRepository) CountCompletedLessons(userID, courseID int64) (int64, error) {
	var count int64
	err := r.db.Model(&model.LessonProgress{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).Count(&count).Error
	return count, err
}

func (r *EnrollmentRepository) ListCompletedLessonIDs(userID, courseID int64) ([]int64, error) {
	var ids []int64
	err := r.db.Model(&model.LessonProgress{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Pluck("lesson_id", &ids).Error
	return ids, err
}
