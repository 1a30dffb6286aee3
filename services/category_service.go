package services

import (
	"context"
	"strings"

	"github.com/sahilchouksey/edu-platform-api/model"
	"github.com/sahilchouksey/edu-platform-api/repository"
	"github.com/sahilchouksey/edu-platform-api/utils/apperror"
)

// CategoryInput represents the request body for creating a category
type CategoryInput struct {
	Name        string `json:"name" validate:"required,max=255"`
	URL         string `json:"url" validate:"omitempty,slug,max=255"`
	Description string `json:"description"`
	Status      string `json:"status" validate:"omitempty,oneof=active inactive"`
}

// UpdateCategoryInput is a partial update
type UpdateCategoryInput struct {
	Name        *string `json:"name" validate:"omitempty,max=255"`
	URL         *string `json:"url" validate:"omitempty,slug,max=255"`
	Description *string `json:"description"`
	Status      *string `json:"status" validate:"omitempty,oneof=active inactive"`
}

// CategoryService manages catalog categories
type CategoryService struct {
	categories repository.CategoryRepository
}

// NewCategoryService creates a new category service
func NewCategoryService(categories repository.CategoryRepository) *CategoryService {
	return &CategoryService{categories: categories}
}

func (s *CategoryService) checkName(ctx context.Context, name string, excludeID uint) error {
	taken, err := s.categories.NameTaken(ctx, name, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return apperror.Conflict("category name %q", name)
	}
	return nil
}

func (s *CategoryService) Create(ctx context.Context, in CategoryInput) (*model.Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := s.checkName(ctx, in.Name, 0); err != nil {
		return nil, err
	}
	c := &model.Category{
		Name:        in.Name,
		URL:         in.URL,
		Description: in.Description,
		Status:      "active",
	}
	if in.Status != "" {
		c.Status = in.Status
	}
	if err := s.categories.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CategoryService) Update(ctx context.Context, id uint, in UpdateCategoryInput) (*model.Category, error) {
	c, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name != c.Name {
			if err := s.checkName(ctx, name, id); err != nil {
				return nil, err
			}
		}
		c.Name = name
	}
	setString(&c.URL, in.URL)
	setString(&c.Description, in.Description)
	setString(&c.Status, in.Status)

	if err := s.categories.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CategoryService) Get(ctx context.Context, id uint) (*model.Category, error) {
	return s.categories.FindByID(ctx, id)
}

// ListWithStats is the admin listing with course and student counts
func (s *CategoryService) ListWithStats(ctx context.Context) ([]model.CategoryStats, error) {
	return s.categories.ListWithStats(ctx, false)
}

// ListPublic returns only active categories
func (s *CategoryService) ListPublic(ctx context.Context) ([]model.CategoryStats, error) {
	return s.categories.ListWithStats(ctx, true)
}

func (s *CategoryService) Remove(ctx context.Context, id uint) error {
	return s.categories.Delete(ctx, id)
}
