package post

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/edu-platform-api/model"
	"github.com/sahilchouksey/edu-platform-api/repository"
	"github.com/sahilchouksey/edu-platform-api/services"
	"github.com/sahilchouksey/edu-platform-api/utils/apperror"
	"github.com/sahilchouksey/edu-platform-api/utils/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePosts struct {
	lastFilter repository.PostFilter
	created    *services.PostInput
	author     *uint
}

func (f *fakePosts) Create(_ context.Context, authorID *uint, in services.PostInput) (*model.BlogPost, error) {
	f.created, f.author = &in, authorID
	return &model.BlogPost{ID: 1, PostFields: model.PostFields{Title: in.Title, URL: in.URL}}, nil
}

func (f *fakePosts) Update(context.Context, uint, services.UpdatePostInput) (*model.BlogPost, error) {
	return nil, apperror.Conflict("blog post title %q", "Hello")
}

func (f *fakePosts) Get(_ context.Context, id uint) (*model.BlogPost, error) {
	return nil, apperror.NotFound("blog post", id)
}

func (f *fakePosts) GetByURL(_ context.Context, url string) (*model.BlogPost, error) {
	return &model.BlogPost{ID: 3, PostFields: model.PostFields{URL: url}}, nil
}

func (f *fakePosts) List(_ context.Context, flt repository.PostFilter) (repository.Page[model.BlogPost], error) {
	f.lastFilter = flt
	return repository.Page[model.BlogPost]{Page: 1, Limit: 10}, nil
}

func (f *fakePosts) Remove(context.Context, uint) error { return nil }

func newTestApp(posts *fakePosts) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler})
	h := NewPostHandler[model.BlogPost](posts, "Blog post")
	app.Get("/blog", h.ListPosts)
	app.Get("/blog/url/:url", h.GetPostByURL)
	app.Get("/blog/teacher/:id", h.ListByAuthor)
	app.Get("/blog/:id", h.GetPost)
	app.Post("/blog", func(c *fiber.Ctx) error {
		c.Locals("user_id", uint(8))
		return c.Next()
	}, h.CreatePost)
	app.Patch("/blog/:id", h.UpdatePost)
	return app
}

func TestListPassesFilters(t *testing.T) {
	posts := &fakePosts{}
	app := newTestApp(posts)

	resp, err := app.Test(httptest.NewRequest("GET", "/blog?category=news&excludeId=4&status=published", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "news", posts.lastFilter.Category)
	assert.Equal(t, uint(4), posts.lastFilter.ExcludeID)
	assert.Equal(t, "published", posts.lastFilter.Status)

	resp, err = app.Test(httptest.NewRequest("GET", "/blog/teacher/9", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, uint(9), posts.lastFilter.AuthorID)

	resp, err = app.Test(httptest.NewRequest("GET", "/blog?status=archived", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestCreateRecordsAuthor(t *testing.T) {
	posts := &fakePosts{}
	app := newTestApp(posts)

	req := httptest.NewRequest("POST", "/blog", strings.NewReader(`{"title":"Hello","content":"x","url":"hello"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.NotNil(t, posts.author)
	assert.Equal(t, uint(8), *posts.author)

	req = httptest.NewRequest("POST", "/blog", strings.NewReader(`{"title":"Hello","content":"x","url":"Not A Slug"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestServiceErrorsReachTheErrorHandler(t *testing.T) {
	app := newTestApp(&fakePosts{})

	resp, err := app.Test(httptest.NewRequest("GET", "/blog/5", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var body struct {
		StatusCode int    `json:"statusCode"`
		Path       string `json:"path"`
		Message    string `json:"message"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 404, body.StatusCode)
	assert.Equal(t, "/blog/5", body.Path)
	assert.Contains(t, body.Message, "blog post")

	req := httptest.NewRequest("PATCH", "/blog/1", strings.NewReader(`{"title":"Hello"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/blog/abc", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
