package repository

import (
	"context"
	"fmt"

	"github.com/sahilchouksey/edu-platform-api/model"
	"github.com/sahilchouksey/edu-platform-api/utils/apperror"
	"gorm.io/gorm"
)

// Post is any titled, url-addressable article
type Post interface {
	model.BlogPost | model.News
}

// PostRepository persists blog posts or news
type PostRepository[T Post] interface {
	Create(ctx context.Context, post *T) error
	FindByID(ctx context.Context, id uint) (*T, error)
	FindByURL(ctx context.Context, url string) (*T, error)
	TitleTaken(ctx context.Context, title string, excludeID uint) (bool, error)
	URLTaken(ctx context.Context, url string, excludeID uint) (bool, error)
	List(ctx context.Context, f PostFilter) (Page[T], error)
	Save(ctx context.Context, post *T) error
	Delete(ctx context.Context, id uint) error
}

type postRepository[T Post] struct {
	db     *gorm.DB
	entity string
}

// NewBlogRepository returns the postgres implementation for blog posts
func NewBlogRepository(db *gorm.DB) PostRepository[model.BlogPost] {
	return &postRepository[model.BlogPost]{db: db, entity: "blog post"}
}

// NewNewsRepository returns the postgres implementation for news
func NewNewsRepository(db *gorm.DB) PostRepository[model.News] {
	return &postRepository[model.News]{db: db, entity: "news"}
}

func (r *postRepository[T]) Create(ctx context.Context, post *T) error {
	if err := r.db.WithContext(ctx).Omit("Author").Create(post).Error; err != nil {
		return duplicate(err, r.entity+" title or url")
	}
	return nil
}

func (r *postRepository[T]) FindByID(ctx context.Context, id uint) (*T, error) {
	var p T
	if err := r.db.WithContext(ctx).Preload("Author").First(&p, id).Error; err != nil {
		return nil, notFound(err, r.entity, id)
	}
	return &p, nil
}

func (r *postRepository[T]) FindByURL(ctx context.Context, url string) (*T, error) {
	var p T
	if err := r.db.WithContext(ctx).Preload("Author").Where("url = ?", url).First(&p).Error; err != nil {
		return nil, notFound(err, r.entity+" with url", url)
	}
	return &p, nil
}

func (r *postRepository[T]) taken(ctx context.Context, column, value string, excludeID uint) (bool, error) {
	q := r.db.WithContext(ctx).Model(new(T)).Where(fmt.Sprintf("%s = ?", column), value)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	return exists(q)
}

func (r *postRepository[T]) TitleTaken(ctx context.Context, title string, excludeID uint) (bool, error) {
	return r.taken(ctx, "title", title, excludeID)
}

func (r *postRepository[T]) URLTaken(ctx context.Context, url string, excludeID uint) (bool, error) {
	return r.taken(ctx, "url", url, excludeID)
}

func (r *postRepository[T]) List(ctx context.Context, f PostFilter) (Page[T], error) {
	f = f.Normalize()
	page := Page[T]{Page: f.Page, Limit: f.Limit}

	q := r.db.WithContext(ctx).Model(new(T))
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.ExcludeID != 0 {
		q = q.Where("id <> ?", f.ExcludeID)
	}
	if f.AuthorID != 0 {
		q = q.Where("author_id = ?", f.AuthorID)
	}
	q = q.Session(&gorm.Session{})

	if err := q.Count(&page.Total).Error; err != nil {
		return page, err
	}
	err := q.Preload("Author").
		Order("COALESCE(date, created_at) DESC").
		Offset(f.Offset()).
		Limit(f.Limit).
		Find(&page.Items).Error
	return page, err
}

func (r *postRepository[T]) Save(ctx context.Context, post *T) error {
	if err := r.db.WithContext(ctx).Omit("Author").Save(post).Error; err != nil {
		return duplicate(err, r.entity+" title or url")
	}
	return nil
}

func (r *postRepository[T]) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(new(T), id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound(r.entity, id)
	}
	return nil
}
