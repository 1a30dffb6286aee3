package services

import (
	"context"
	"strings"
	"time"

	"github.com/sahilchouksey/edu-platform-api/model"
	"github.com/sahilchouksey/edu-platform-api/repository"
	"github.com/sahilchouksey/edu-platform-api/services/events"
	"github.com/sahilchouksey/edu-platform-api/utils/apperror"
	"github.com/sahilchouksey/edu-platform-api/utils/cache"
)

// CreateCourseInput represents the request body for creating a course
type CreateCourseInput struct {
	Name                string   `json:"name" validate:"required,min=2,max=255"`
	Heading             string   `json:"heading" validate:"omitempty,max=255"`
	Description         string   `json:"description" validate:"omitempty,max=5000"`
	DetailedDescription string   `json:"detailed_description"`
	Price               float64  `json:"price" validate:"min=0"`
	URL                 string   `json:"url" validate:"omitempty,slug,max=255"`
	Duration            string   `json:"duration" validate:"omitempty,max=100"`
	Level               string   `json:"level" validate:"omitempty,max=100"`
	Color               string   `json:"color" validate:"omitempty,max=20"`
	Status              string   `json:"status" validate:"omitempty,oneof=draft published"`
	IsShow              *bool    `json:"is_show"`
	MetaTitle           string   `json:"meta_title" validate:"omitempty,max=255"`
	MetaDescription     string   `json:"meta_description"`
	Keywords            string   `json:"keywords"`
	Images              []string `json:"images" validate:"omitempty,dive,max=500"`
	CategoryID          *uint    `json:"category_id" validate:"omitempty,min=1"`
	InstructorID        *uint    `json:"instructor_id" validate:"omitempty,min=1"`
}

// UpdateCourseInput is a partial update; category and instructor accept null to unlink
type UpdateCourseInput struct {
	Name                *string        `json:"name" validate:"omitempty,min=2,max=255"`
	Heading             *string        `json:"heading" validate:"omitempty,max=255"`
	Description         *string        `json:"description" validate:"omitempty,max=5000"`
	DetailedDescription *string        `json:"detailed_description"`
	Price               *float64       `json:"price" validate:"omitempty,min=0"`
	URL                 *string        `json:"url" validate:"omitempty,slug,max=255"`
	Duration            *string        `json:"duration" validate:"omitempty,max=100"`
	Level               *string        `json:"level" validate:"omitempty,max=100"`
	Color               *string        `json:"color" validate:"omitempty,max=20"`
	Status              *string        `json:"status" validate:"omitempty,oneof=draft published"`
	IsShow              *bool          `json:"is_show"`
	MetaTitle           *string        `json:"meta_title" validate:"omitempty,max=255"`
	MetaDescription     *string        `json:"meta_description"`
	Keywords            *string        `json:"keywords"`
	Images              *[]string      `json:"images" validate:"omitempty,dive,max=500"`
	CategoryID          Optional[uint] `json:"category_id"`
	InstructorID        Optional[uint] `json:"instructor_id"`
}

// CourseService manages the catalog. Reads go through the cache; every write
// drops the keys that could now be stale.
type CourseService struct {
	courses    repository.CourseRepository
	categories repository.CategoryRepository
	users      repository.UserRepository
	groups     repository.GroupRepository
	cache      cache.Store
	ttl        time.Duration
	bus        events.Publisher
}

// NewCourseService creates a new course service. store may be nil.
func NewCourseService(
	courses repository.CourseRepository,
	categories repository.CategoryRepository,
	users repository.UserRepository,
	groups repository.GroupRepository,
	store cache.Store,
	ttl time.Duration,
	bus events.Publisher,
) *CourseService {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &CourseService{
		courses:    courses,
		categories: categories,
		users:      users,
		groups:     groups,
		cache:      store,
		ttl:        ttl,
		bus:        bus,
	}
}

func (s *CourseService) checkRefs(ctx context.Context, categoryID, instructorID *uint) error {
	if categoryID != nil {
		if _, err := s.categories.FindByID(ctx, *categoryID); err != nil {
			return err
		}
	}
	if instructorID != nil {
		if _, err := s.users.FindByID(ctx, *instructorID); err != nil {
			return err
		}
	}
	return nil
}

func (s *CourseService) checkName(ctx context.Context, name string, excludeID uint) error {
	taken, err := s.courses.NameTaken(ctx, name, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return apperror.Conflict("course name %q", name)
	}
	return nil
}

// Create stores a course. actorID is the staff member creating it.
func (s *CourseService) Create(ctx context.Context, actorID *uint, in CreateCourseInput) (*model.Course, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := s.checkName(ctx, in.Name, 0); err != nil {
		return nil, err
	}
	if err := s.checkRefs(ctx, in.CategoryID, in.InstructorID); err != nil {
		return nil, err
	}

	course := &model.Course{
		Name:                in.Name,
		Heading:             in.Heading,
		Description:         in.Description,
		DetailedDescription: in.DetailedDescription,
		Price:               in.Price,
		URL:                 in.URL,
		Duration:            in.Duration,
		Level:               in.Level,
		Color:               in.Color,
		Status:              model.CourseStatusDraft,
		IsShow:              true,
		MetaTitle:           in.MetaTitle,
		MetaDescription:     in.MetaDescription,
		Keywords:            in.Keywords,
		Images:              in.Images,
		CategoryID:          in.CategoryID,
		InstructorID:        in.InstructorID,
	}
	if in.Status != "" {
		course.Status = in.Status
	}
	if in.IsShow != nil {
		course.IsShow = *in.IsShow
	}

	if err := s.courses.Create(ctx, course); err != nil {
		return nil, err
	}
	s.invalidate(ctx, course, nil)

	if course.IsPublished() {
		s.publishCreated(ctx, actorID, course)
	}
	return course, nil
}

// Update merges the changes. CourseCreated is published only when the
// course moves from any other status to published.
func (s *CourseService) Update(ctx context.Context, actorID *uint, id uint, in UpdateCourseInput) (*model.Course, error) {
	course, err := s.courses.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	before := *course

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name != course.Name {
			if err := s.checkName(ctx, name, id); err != nil {
				return nil, err
			}
		}
		course.Name = name
	}
	if in.CategoryID.Set && in.CategoryID.Value != nil {
		if err := s.checkRefs(ctx, in.CategoryID.Value, nil); err != nil {
			return nil, err
		}
	}
	if in.InstructorID.Set && in.InstructorID.Value != nil {
		if err := s.checkRefs(ctx, nil, in.InstructorID.Value); err != nil {
			return nil, err
		}
	}

	setString(&course.Heading, in.Heading)
	setString(&course.Description, in.Description)
	setString(&course.DetailedDescription, in.DetailedDescription)
	setString(&course.URL, in.URL)
	setString(&course.Duration, in.Duration)
	setString(&course.Level, in.Level)
	setString(&course.Color, in.Color)
	setString(&course.Status, in.Status)
	setString(&course.MetaTitle, in.MetaTitle)
	setString(&course.MetaDescription, in.MetaDescription)
	setString(&course.Keywords, in.Keywords)
	if in.Price != nil {
		course.Price = *in.Price
	}
	if in.IsShow != nil {
		course.IsShow = *in.IsShow
	}
	if in.Images != nil {
		course.Images = *in.Images
	}
	in.CategoryID.apply(&course.CategoryID)
	in.InstructorID.apply(&course.InstructorID)
	// relations were preloaded for the old ids
	course.Category, course.Instructor = nil, nil

	if err := s.courses.Save(ctx, course); err != nil {
		return nil, err
	}
	s.invalidate(ctx, course, &before)

	if course.IsPublished() && !before.IsPublished() {
		s.publishCreated(ctx, actorID, course)
	}
	return course, nil
}

func (s *CourseService) Remove(ctx context.Context, id uint) error {
	course, err := s.courses.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.courses.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, course, nil)
	return nil
}

func (s *CourseService) publishCreated(ctx context.Context, actorID *uint, course *model.Course) {
	events.Emit(ctx, s.bus, events.CourseCreated{
		ID:           course.ID,
		Name:         course.Name,
		Description:  course.Description,
		UserID:       actorID,
		InstructorID: course.InstructorID,
	})
}

// invalidate drops every key that can hold course, before and after the write
func (s *CourseService) invalidate(ctx context.Context, course, before *model.Course) {
	keys := []string{cache.KeyAllCourses, cache.CourseKey(course.ID)}
	for _, c := range []*model.Course{course, before} {
		if c == nil {
			continue
		}
		if c.URL != "" {
			keys = append(keys, cache.CourseURLKey(c.URL))
		}
		if c.InstructorID != nil {
			keys = append(keys, cache.InstructorCoursesKey(*c.InstructorID))
		}
	}
	invalidate(ctx, s.cache, keys, cache.CourseListPattern)
}

// InvalidateCourse drops every cached view of one course. Group writes call
// it since cached courses carry their groups and seat counts.
func (s *CourseService) InvalidateCourse(ctx context.Context, courseID uint) {
	if s.cache == nil {
		return
	}
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		invalidate(ctx, s.cache, []string{cache.KeyAllCourses, cache.CourseKey(courseID)}, cache.CourseListPattern)
		return
	}
	s.invalidate(ctx, course, nil)
}

func (s *CourseService) Get(ctx context.Context, id uint) (*model.Course, error) {
	return cached(ctx, s.cache, cache.CourseKey(id), s.ttl, func() (*model.Course, error) {
		return s.courses.FindByID(ctx, id)
	})
}

func (s *CourseService) GetByURL(ctx context.Context, url string) (*model.Course, error) {
	return cached(ctx, s.cache, cache.CourseURLKey(url), s.ttl, func() (*model.Course, error) {
		return s.courses.FindByURL(ctx, url)
	})
}

// ListAll is the admin listing with group and student counts
func (s *CourseService) ListAll(ctx context.Context) ([]repository.CourseWithCounts, error) {
	return cached(ctx, s.cache, cache.KeyAllCourses, s.ttl, func() ([]repository.CourseWithCounts, error) {
		return s.courses.ListWithCounts(ctx)
	})
}

func (s *CourseService) ListByInstructor(ctx context.Context, instructorID uint) ([]model.Course, error) {
	return cached(ctx, s.cache, cache.InstructorCoursesKey(instructorID), s.ttl, func() ([]model.Course, error) {
		return s.courses.ListByInstructor(ctx, instructorID)
	})
}

// ListPublic serves the catalog. Only unfiltered pages are cached.
func (s *CourseService) ListPublic(ctx context.Context, f repository.CourseFilter) (repository.Page[model.Course], error) {
	f = f.Normalize()
	load := func() (repository.Page[model.Course], error) {
		return s.courses.ListPublic(ctx, f)
	}
	if f.HasActiveFilters() {
		return load()
	}
	key, err := cache.GenerateKey(cache.CourseListPrefix, f)
	if err != nil {
		return load()
	}
	return cached(ctx, s.cache, key, s.ttl, load)
}

func (s *CourseService) Groups(ctx context.Context, courseID uint) ([]model.Group, error) {
	ok, err := s.courses.Exists(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperror.NotFound("course", courseID)
	}
	return s.groups.List(ctx, &courseID)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}
