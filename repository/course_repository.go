package repository

import (
	"context"
	"fmt"

	"github.com/sahilchouksey/edu-platform-api/model"
	"github.com/sahilchouksey/edu-platform-api/utils/apperror"
	"gorm.io/gorm"
)

// CourseWithCounts is an admin listing row
type CourseWithCounts struct {
	model.Course
	GroupCount   int64 `json:"group_count"`
	StudentCount int64 `json:"student_count"`
}

// CourseRepository persists courses
type CourseRepository interface {
	Create(ctx context.Context, course *model.Course) error
	FindByID(ctx context.Context, id uint) (*model.Course, error)
	FindByURL(ctx context.Context, url string) (*model.Course, error)
	Exists(ctx context.Context, id uint) (bool, error)
	NameTaken(ctx context.Context, name string, excludeID uint) (bool, error)
	ListWithCounts(ctx context.Context) ([]CourseWithCounts, error)
	ListByInstructor(ctx context.Context, instructorID uint) ([]model.Course, error)
	ListPublic(ctx context.Context, f CourseFilter) (Page[model.Course], error)
	Save(ctx context.Context, course *model.Course) error
	Delete(ctx context.Context, id uint) error
}

type courseRepository struct {
	db *gorm.DB
}

// NewCourseRepository returns the postgres implementation
func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) Create(ctx context.Context, course *model.Course) error {
	if err := r.db.WithContext(ctx).Omit("Category", "Instructor").Create(course).Error; err != nil {
		return duplicate(err, fmt.Sprintf("course name %q", course.Name))
	}
	return nil
}

func (r *courseRepository) FindByID(ctx context.Context, id uint) (*model.Course, error) {
	var c model.Course
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Instructor").
		Preload("Lessons", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
		Preload("Groups.Schedule").
		First(&c, id).Error
	if err != nil {
		return nil, notFound(err, "course", id)
	}
	return &c, nil
}

func (r *courseRepository) FindByURL(ctx context.Context, url string) (*model.Course, error) {
	var c model.Course
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Instructor").
		Preload("Groups.Schedule").
		Where("url = ?", url).
		First(&c).Error
	if err != nil {
		return nil, notFound(err, "course with url", url)
	}
	return &c, nil
}

func (r *courseRepository) Exists(ctx context.Context, id uint) (bool, error) {
	return exists(r.db.WithContext(ctx).Model(&model.Course{}).Where("id = ?", id))
}

func (r *courseRepository) NameTaken(ctx context.Context, name string, excludeID uint) (bool, error) {
	q := r.db.WithContext(ctx).Model(&model.Course{}).Where("name = ?", name)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	return exists(q)
}

func (r *courseRepository) ListWithCounts(ctx context.Context) ([]CourseWithCounts, error) {
	var rows []CourseWithCounts
	err := r.db.WithContext(ctx).
		Model(&model.Course{}).
		Select(`courses.*,
			(SELECT COUNT(*) FROM groups g WHERE g.course_id = courses.id) AS group_count,
			(SELECT COALESCE(SUM(g.current_students), 0) FROM groups g WHERE g.course_id = courses.id) AS student_count`).
		Order("courses.created_at DESC").
		Scan(&rows).Error
	return rows, err
}

func (r *courseRepository) ListByInstructor(ctx context.Context, instructorID uint) ([]model.Course, error) {
	var courses []model.Course
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("instructor_id = ?", instructorID).
		Order("created_at DESC").
		Find(&courses).Error
	return courses, err
}

// applyCourseFilter translates a CourseFilter into WHERE clauses
func applyCourseFilter(q *gorm.DB, f CourseFilter) *gorm.DB {
	q = q.Where("courses.status = ? AND courses.is_show = ?", model.CourseStatusPublished, true)
	if len(f.Categories) > 0 {
		q = q.Where("courses.category_id IN ?", f.Categories)
	}
	if f.MinPrice != nil {
		q = q.Where("courses.price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("courses.price <= ?", *f.MaxPrice)
	}
	if f.Level != "" {
		q = q.Where("EXISTS (SELECT 1 FROM groups g WHERE g.course_id = courses.id AND g.age_range = ?)", f.Level)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where("(courses.name ILIKE ? OR courses.description ILIKE ?)", like, like)
	}
	return q
}

func (r *courseRepository) ListPublic(ctx context.Context, f CourseFilter) (Page[model.Course], error) {
	f = f.Normalize()
	page := Page[model.Course]{Page: f.Page, Limit: f.Limit}

	base := applyCourseFilter(r.db.WithContext(ctx).Model(&model.Course{}), f)
	if err := base.Count(&page.Total).Error; err != nil {
		return page, err
	}

	err := applyCourseFilter(r.db.WithContext(ctx), f).
		Preload("Category").
		Preload("Groups.Schedule").
		Order("courses.created_at DESC").
		Offset(f.Offset()).
		Limit(f.Limit).
		Find(&page.Items).Error
	return page, err
}

func (r *courseRepository) Save(ctx context.Context, course *model.Course) error {
	err := r.db.WithContext(ctx).
		Omit("Category", "Instructor", "Lessons", "Groups", "Enrollments").
		Save(course).Error
	if err != nil {
		return duplicate(err, fmt.Sprintf("course name %q", course.Name))
	}
	return nil
}

func (r *courseRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Course{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("course", id)
	}
	return nil
}
