package post

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/edu-platform-api/handlers"
	"github.com/sahilchouksey/edu-platform-api/repository"
	"github.com/sahilchouksey/edu-platform-api/services"
	"github.com/sahilchouksey/edu-platform-api/utils/middleware"
	"github.com/sahilchouksey/edu-platform-api/utils/response"
	"github.com/sahilchouksey/edu-platform-api/utils/validation"
)

// PostAPI is what the handler needs from services.PostService
type PostAPI[T any] interface {
	Create(ctx context.Context, authorID *uint, in services.PostInput) (*T, error)
	Update(ctx context.Context, id uint, in services.UpdatePostInput) (*T, error)
	Get(ctx context.Context, id uint) (*T, error)
	GetByURL(ctx context.Context, url string) (*T, error)
	List(ctx context.Context, f repository.PostFilter) (repository.Page[T], error)
	Remove(ctx context.Context, id uint) error
}

// PostHandler serves blog posts and news through the same routes
type PostHandler[T any] struct {
	posts PostAPI[T]
	label string
}

// NewPostHandler creates a handler; label names the resource in messages ("Blog post", "News")
func NewPostHandler[T any](posts PostAPI[T], label string) *PostHandler[T] {
	return &PostHandler[T]{posts: posts, label: label}
}

// ListQuery holds listing filters. category together with excludeId
// returns up to three related posts.
type ListQuery struct {
	Page      int    `query:"page" validate:"min=0"`
	Limit     int    `query:"limit" validate:"min=0,max=100"`
	Status    string `query:"status" validate:"omitempty,oneof=draft published"`
	Category  string `query:"category" validate:"max=100"`
	ExcludeID uint   `query:"excludeId"`
}

func (q ListQuery) filter() repository.PostFilter {
	return repository.PostFilter{
		Page:      q.Page,
		Limit:     q.Limit,
		Status:    q.Status,
		Category:  q.Category,
		ExcludeID: q.ExcludeID,
	}
}

func (h *PostHandler[T]) list(c *fiber.Ctx, f repository.PostFilter) error {
	page, err := h.posts.List(c.UserContext(), f)
	if err != nil {
		return err
	}
	return response.Paginated(c, page.Items, response.CalculatePagination(page.Page, page.Limit, page.Total))
}

// ListPosts handles GET /blog and GET /news
func (h *PostHandler[T]) ListPosts(c *fiber.Ctx) error {
	var q ListQuery
	if err := validation.ParseQuery(c, &q); err != nil {
		return err
	}
	return h.list(c, q.filter())
}

// ListByAuthor handles GET /blog/teacher/:id
func (h *PostHandler[T]) ListByAuthor(c *fiber.Ctx) error {
	authorID, err := handlers.ParamID(c, "id")
	if err != nil {
		return err
	}

	var q ListQuery
	if err := validation.ParseQuery(c, &q); err != nil {
		return err
	}
	f := q.filter()
	f.AuthorID = authorID
	return h.list(c, f)
}

func (h *PostHandler[T]) GetPost(c *fiber.Ctx) error {
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		return err
	}

	post, err := h.posts.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return response.Success(c, post)
}

// GetPostByURL handles GET /blog/url/:url and GET /news/url/:url
func (h *PostHandler[T]) GetPostByURL(c *fiber.Ctx) error {
	post, err := h.posts.GetByURL(c.UserContext(), c.Params("url"))
	if err != nil {
		return err
	}
	return response.Success(c, post)
}

// CreatePost records the authenticated user as author
func (h *PostHandler[T]) CreatePost(c *fiber.Ctx) error {
	var req services.PostInput
	if err := validation.ParseBody(c, &req); err != nil {
		return err
	}

	var authorID *uint
	if id, ok := middleware.GetUserID(c); ok {
		authorID = &id
	}

	post, err := h.posts.Create(c.UserContext(), authorID, req)
	if err != nil {
		return err
	}
	return response.Created(c, post)
}

func (h *PostHandler[T]) UpdatePost(c *fiber.Ctx) error {
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		return err
	}

	var req services.UpdatePostInput
	if err := validation.ParseBody(c, &req); err != nil {
		return err
	}

	post, err := h.posts.Update(c.UserContext(), id, req)
	if err != nil {
		return err
	}
	return response.Success(c, post)
}

func (h *PostHandler[T]) DeletePost(c *fiber.Ctx) error {
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		return err
	}

	if err := h.posts.Remove(c.UserContext(), id); err != nil {
		return err
	}
	return response.SuccessWithMessage(c, h.label+" deleted successfully", nil)
}
