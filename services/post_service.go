package services

import (
	"context"
	"strings"
	"time"

	"github.com/sahilchouksey/edu-platform-api/model"
	"github.com/sahilchouksey/edu-platform-api/repository"
	"github.com/sahilchouksey/edu-platform-api/utils/apperror"
)

// PostInput represents the request body for creating a blog post or news item
type PostInput struct {
	Title           string     `json:"title" validate:"required,max=255"`
	Content         string     `json:"content" validate:"required"`
	URL             string     `json:"url" validate:"required,slug,max=255"`
	Date            *time.Time `json:"date"`
	Images          []string   `json:"images" validate:"omitempty,dive,max=500"`
	Category        string     `json:"category" validate:"omitempty,max=100"`
	Tags            []string   `json:"tags" validate:"omitempty,dive,max=50"`
	MetaTitle       string     `json:"meta_title" validate:"omitempty,max=255"`
	MetaDescription string     `json:"meta_description"`
	Keywords        string     `json:"keywords"`
	Status          string     `json:"status" validate:"omitempty,oneof=draft published"`
}

// UpdatePostInput is a partial update
type UpdatePostInput struct {
	Title           *string             `json:"title" validate:"omitempty,max=255"`
	Content         *string             `json:"content"`
	URL             *string             `json:"url" validate:"omitempty,slug,max=255"`
	Date            Optional[time.Time] `json:"date"`
	Images          *[]string           `json:"images" validate:"omitempty,dive,max=500"`
	Category        *string             `json:"category" validate:"omitempty,max=100"`
	Tags            *[]string           `json:"tags" validate:"omitempty,dive,max=50"`
	MetaTitle       *string             `json:"meta_title" validate:"omitempty,max=255"`
	MetaDescription *string             `json:"meta_description"`
	Keywords        *string             `json:"keywords"`
	Status          *string             `json:"status" validate:"omitempty,oneof=draft published"`
}

// postPtr is satisfied by *model.BlogPost and *model.News
type postPtr[T any] interface {
	*T
	Fields() *model.PostFields
	PostID() uint
	SetImages([]string)
}

// PostService implements blog and news. Titles and urls are unique per kind.
type PostService[T repository.Post, P postPtr[T]] struct {
	repo   repository.PostRepository[T]
	entity string
}

// NewPostService creates a post service, e.g. NewPostService[model.BlogPost](repo, "blog post")
func NewPostService[T repository.Post, P postPtr[T]](repo repository.PostRepository[T], entity string) *PostService[T, P] {
	return &PostService[T, P]{repo: repo, entity: entity}
}

func (s *PostService[T, P]) checkUnique(ctx context.Context, title, url string, excludeID uint) error {
	if title != "" {
		taken, err := s.repo.TitleTaken(ctx, title, excludeID)
		if err != nil {
			return err
		}
		if taken {
			return apperror.Conflict("%s with title %q", s.entity, title)
		}
	}
	if url != "" {
		taken, err := s.repo.URLTaken(ctx, url, excludeID)
		if err != nil {
			return err
		}
		if taken {
			return apperror.Conflict("%s with url %q", s.entity, url)
		}
	}
	return nil
}

func (s *PostService[T, P]) Create(ctx context.Context, authorID *uint, in PostInput) (*T, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := s.checkUnique(ctx, in.Title, in.URL, 0); err != nil {
		return nil, err
	}

	post := new(T)
	f := P(post).Fields()
	f.Title = in.Title
	f.Content = in.Content
	f.URL = in.URL
	f.Date = in.Date
	f.Category = strings.TrimSpace(in.Category)
	f.Tags = in.Tags
	f.MetaTitle = in.MetaTitle
	f.MetaDescription = in.MetaDescription
	f.Keywords = in.Keywords
	f.Status = model.PostStatusDraft
	if in.Status != "" {
		f.Status = in.Status
	}
	f.AuthorID = authorID
	P(post).SetImages(in.Images)

	if err := s.repo.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService[T, P]) Update(ctx context.Context, id uint, in UpdatePostInput) (*T, error) {
	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	f := P(post).Fields()

	var newTitle, newURL string
	if in.Title != nil && strings.TrimSpace(*in.Title) != f.Title {
		newTitle = strings.TrimSpace(*in.Title)
	}
	if in.URL != nil && *in.URL != f.URL {
		newURL = *in.URL
	}
	if err := s.checkUnique(ctx, newTitle, newURL, id); err != nil {
		return nil, err
	}

	setString(&f.Title, in.Title)
	setString(&f.Content, in.Content)
	setString(&f.URL, in.URL)
	setString(&f.Category, in.Category)
	setString(&f.MetaTitle, in.MetaTitle)
	setString(&f.MetaDescription, in.MetaDescription)
	setString(&f.Keywords, in.Keywords)
	setString(&f.Status, in.Status)
	in.Date.apply(&f.Date)
	if in.Tags != nil {
		f.Tags = *in.Tags
	}
	if in.Images != nil {
		P(post).SetImages(*in.Images)
	}

	if err := s.repo.Save(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService[T, P]) Get(ctx context.Context, id uint) (*T, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *PostService[T, P]) GetByURL(ctx context.Context, url string) (*T, error) {
	return s.repo.FindByURL(ctx, url)
}

// List pages through posts. A category plus excludeId returns related posts.
func (s *PostService[T, P]) List(ctx context.Context, f repository.PostFilter) (repository.Page[T], error) {
	return s.repo.List(ctx, f.Normalize())
}

func (s *PostService[T, P]) Remove(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}
