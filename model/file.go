package model

import (
	"strings"
	"time"
)

// FileType is a coarse classification derived from the MIME type
type FileType string

const (
	FileTypeImage    FileType = "image"
	FileTypeDocument FileType = "document"
	FileTypeVideo    FileType = "video"
	FileTypeOther    FileType = "other"
)

// FileTypeFromMIME classifies an uploaded file by MIME type
func FileTypeFromMIME(mime string) FileType {
	mime = strings.ToLower(mime)
	switch {
	case strings.HasPrefix(mime, "image/"):
		return FileTypeImage
	case strings.HasPrefix(mime, "video/"):
		return FileTypeVideo
	case mime == "application/pdf",
		strings.HasPrefix(mime, "text/"),
		strings.Contains(mime, "msword"),
		strings.Contains(mime, "officedocument"):
		return FileTypeDocument
	}
	return FileTypeOther
}

// File is the metadata of an uploaded object
type File struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	OriginalName string    `gorm:"not null" json:"original_name"`
	Path         string    `gorm:"not null" json:"path"`
	URL          string    `json:"url"`
	MimeType     string    `gorm:"type:varchar(100)" json:"mime_type"`
	Size         int64     `json:"size"`
	FileType     FileType  `gorm:"type:varchar(20);default:'other'" json:"file_type"`
	EntityID     *uint     `gorm:"index:idx_file_entity" json:"entity_id"`
	EntityType   string    `gorm:"type:varchar(50);index:idx_file_entity" json:"entity_type"`
	UploadedByID *uint     `gorm:"index" json:"uploaded_by_id"`
	UploadedAt   time.Time `gorm:"autoCreateTime" json:"uploaded_at"`

	UploadedBy *User `gorm:"foreignKey:UploadedByID;constraint:OnDelete:SET NULL" json:"-"`
}
