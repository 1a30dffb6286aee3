package services

import (
	"context"
	"strings"

	"github.com/sahilchouksey/edu-platform-api/model"
	"github.com/sahilchouksey/edu-platform-api/repository"
	"github.com/sahilchouksey/edu-platform-api/services/events"
)

// LessonInput represents the request body for creating a lesson
type LessonInput struct {
	Title           string `json:"title" validate:"required,max=255"`
	Content         string `json:"content"`
	VideoURL        string `json:"video_url" validate:"omitempty,url"`
	Order           int    `json:"order" validate:"min=0"`
	DurationMinutes int    `json:"duration_minutes" validate:"min=0"`
	CourseID        uint   `json:"course_id" validate:"required,min=1"`
}

// UpdateLessonInput is a partial update
type UpdateLessonInput struct {
	Title           *string `json:"title" validate:"omitempty,max=255"`
	Content         *string `json:"content"`
	VideoURL        *string `json:"video_url" validate:"omitempty,url"`
	Order           *int    `json:"order" validate:"omitempty,min=0"`
	DurationMinutes *int    `json:"duration_minutes" validate:"omitempty,min=0"`
	CourseID        *uint   `json:"course_id" validate:"omitempty,min=1"`
}

// LessonService manages course content
type LessonService struct {
	lessons repository.LessonRepository
	courses repository.CourseRepository
	bus     events.Publisher
}

// NewLessonService creates a new lesson service
func NewLessonService(lessons repository.LessonRepository, courses repository.CourseRepository, bus events.Publisher) *LessonService {
	return &LessonService{lessons: lessons, courses: courses, bus: bus}
}

func (s *LessonService) Create(ctx context.Context, in LessonInput) (*model.Lesson, error) {
	course, err := s.courses.FindByID(ctx, in.CourseID)
	if err != nil {
		return nil, err
	}

	lesson := &model.Lesson{
		Title:           strings.TrimSpace(in.Title),
		Content:         in.Content,
		VideoURL:        in.VideoURL,
		Order:           in.Order,
		DurationMinutes: in.DurationMinutes,
		CourseID:        in.CourseID,
	}
	if err := s.lessons.Create(ctx, lesson); err != nil {
		return nil, err
	}

	events.Emit(ctx, s.bus, events.LessonCreated{
		ID:           lesson.ID,
		Title:        lesson.Title,
		CourseID:     course.ID,
		CourseName:   course.Name,
		InstructorID: course.InstructorID,
	})
	return lesson, nil
}

func (s *LessonService) Update(ctx context.Context, id uint, in UpdateLessonInput) (*model.Lesson, error) {
	lesson, err := s.lessons.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.CourseID != nil && *in.CourseID != lesson.CourseID {
		if _, err := s.courses.FindByID(ctx, *in.CourseID); err != nil {
			return nil, err
		}
		lesson.CourseID = *in.CourseID
	}
	setString(&lesson.Title, in.Title)
	setString(&lesson.Content, in.Content)
	setString(&lesson.VideoURL, in.VideoURL)
	if in.Order != nil {
		lesson.Order = *in.Order
	}
	if in.DurationMinutes != nil {
		lesson.DurationMinutes = *in.DurationMinutes
	}

	if err := s.lessons.Save(ctx, lesson); err != nil {
		return nil, err
	}
	return lesson, nil
}

func (s *LessonService) Get(ctx context.Context, id uint) (*model.Lesson, error) {
	return s.lessons.FindByID(ctx, id)
}

// List returns lessons ordered by position, optionally for one course
func (s *LessonService) List(ctx context.Context, courseID *uint) ([]model.Lesson, error) {
	return s.lessons.ListByCourse(ctx, courseID)
}

func (s *LessonService) Remove(ctx context.Context, id uint) error {
	return s.lessons.Delete(ctx, id)
}
