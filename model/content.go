package model

import (
	"time"

	"github.com/lib/pq"
)

const (
	PostStatusDraft     = "draft"
	PostStatusPublished = "published"
)

// PostFields are the columns shared by blog posts and news
type PostFields struct {
	Title           string         `gorm:"uniqueIndex;not null" json:"title"`
	Content         string         `gorm:"type:text" json:"content"`
	URL             string         `gorm:"uniqueIndex;not null" json:"url"`
	Date            *time.Time     `json:"date"`
	Category        string         `gorm:"type:varchar(100);index" json:"category"`
	Tags            pq.StringArray `gorm:"type:text[]" json:"tags"`
	MetaTitle       string         `json:"meta_title"`
	MetaDescription string         `gorm:"type:text" json:"meta_description"`
	Keywords        string         `gorm:"type:text" json:"keywords"`
	Status          string         `gorm:"type:varchar(20);default:'draft';index" json:"status"`
	AuthorID        *uint          `gorm:"index" json:"author_id"`
}

// Fields gives generic code access to the shared columns
func (f *PostFields) Fields() *PostFields { return f }

// BlogPost is an article written by staff
type BlogPost struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	PostFields
	Images pq.StringArray `gorm:"type:text[]" json:"images"`

	Author *User `gorm:"foreignKey:AuthorID;constraint:OnDelete:SET NULL" json:"author,omitempty"`
}

// TableName specifies the table name for BlogPost
func (BlogPost) TableName() string {
	return "blog_posts"
}

func (p *BlogPost) PostID() uint { return p.ID }

func (p *BlogPost) SetImages(images []string) { p.Images = images }

// News is a short announcement with a single cover image
type News struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	PostFields
	Image string `json:"image"`

	Author *User `gorm:"foreignKey:AuthorID;constraint:OnDelete:SET NULL" json:"author,omitempty"`
}

// TableName specifies the table name for News
func (News) TableName() string {
	return "news"
}

func (n *News) PostID() uint { return n.ID }

// SetImages keeps the first image as the cover
func (n *News) SetImages(images []string) {
	n.Image = ""
	if len(images) > 0 {
		n.Image = images[0]
	}
}
