package services

import (
	"context"
	"testing"

	"github.com/sahilchouksey/edu-platform-api/model"
	"github.com/sahilchouksey/edu-platform-api/utils/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryNameIsUnique(t *testing.T) {
	svc := NewCategoryService(newMemCategories())
	ctx := context.Background()

	math, err := svc.Create(ctx, CategoryInput{Name: "Math"})
	require.NoError(t, err)
	assert.Equal(t, "active", math.Status)
	art, err := svc.Create(ctx, CategoryInput{Name: "Art", Status: "inactive"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CategoryInput{Name: " Math "})
	assert.ErrorIs(t, err, apperror.ErrConflict)

	_, err = svc.Update(ctx, art.ID, UpdateCategoryInput{Name: strPtr("Math")})
	assert.ErrorIs(t, err, apperror.ErrConflict)

	_, err = svc.Update(ctx, math.ID, UpdateCategoryInput{Name: strPtr("Math"), Description: strPtr("numbers")})
	require.NoError(t, err)

	public, err := svc.ListPublic(ctx)
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, "Math", public[0].Name)
}

func TestPostTitleAndURLAreUnique(t *testing.T) {
	svc := NewPostService[model.BlogPost](newMemBlogPosts(), "blog post")
	ctx := context.Background()
	author := uintPtr(3)

	first, err := svc.Create(ctx, author, PostInput{Title: "Hello", Content: "x", URL: "hello", Images: []string{"a.png", "b.png"}})
	require.NoError(t, err)
	assert.Equal(t, model.PostStatusDraft, first.Status)
	assert.Equal(t, author, first.AuthorID)
	assert.Len(t, first.Images, 2)

	second, err := svc.Create(ctx, author, PostInput{Title: "World", Content: "y", URL: "world"})
	require.NoError(t, err)

	tests := []struct {
		name string
		run  func() error
	}{
		{"create with taken title", func() error {
			_, err := svc.Create(ctx, nil, PostInput{Title: "Hello", Content: "z", URL: "other"})
			return err
		}},
		{"create with taken url", func() error {
			_, err := svc.Create(ctx, nil, PostInput{Title: "Other", Content: "z", URL: "hello"})
			return err
		}},
		{"rename onto another post", func() error {
			_, err := svc.Update(ctx, second.ID, UpdatePostInput{Title: strPtr("Hello")})
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.run(), apperror.ErrConflict)
		})
	}

	renamed, err := svc.Update(ctx, first.ID, UpdatePostInput{Title: strPtr("Hello again"), URL: strPtr("hello")})
	require.NoError(t, err)
	assert.Equal(t, "Hello again", renamed.Title)

	again, err := svc.Create(ctx, nil, PostInput{Title: "Hello", Content: "z", URL: "hello-2"})
	require.NoError(t, err, "the old title is free after a rename")
	assert.Equal(t, "Hello", again.Title)
}

func TestNewsKeepsFirstImageAsCover(t *testing.T) {
	var n model.News
	n.SetImages([]string{"cover.png", "second.png"})
	assert.Equal(t, "cover.png", n.Image)
	n.SetImages(nil)
	assert.Empty(t, n.Image)
}
