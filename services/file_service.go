package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/sahilchouksey/edu-platform-api/model"
	"github.com/sahilchouksey/edu-platform-api/repository"
	"github.com/sahilchouksey/edu-platform-api/services/storage"
	"github.com/sahilchouksey/edu-platform-api/utils/apperror"
)

// MaxUploadSize caps a single uploaded file
const MaxUploadSize = 20 << 20

// Upload is a file received from a multipart request
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
	EntityType  string
	EntityID    *uint
	UploadedBy  *uint
}

// FileService stores uploads and their metadata
type FileService struct {
	files repository.FileRepository
	store storage.Store
}

// NewFileService creates a new file service
func NewFileService(files repository.FileRepository, store storage.Store) *FileService {
	return &FileService{files: files, store: store}
}

func (s *FileService) Upload(ctx context.Context, up Upload) (*model.File, error) {
	if up.Size <= 0 {
		return nil, apperror.Invalid("file is empty")
	}
	if up.Size > MaxUploadSize {
		return nil, apperror.Invalid("file exceeds %d MB", MaxUploadSize>>20)
	}
	contentType := up.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	entityType := strings.ToLower(strings.TrimSpace(up.EntityType))
	prefix := entityType
	if prefix == "" {
		prefix = "misc"
	}
	key := storage.ObjectKey(prefix, up.Filename)

	url, err := s.store.Put(ctx, key, up.Body, up.Size, contentType)
	if err != nil {
		return nil, err
	}

	f := &model.File{
		OriginalName: up.Filename,
		Path:         key,
		URL:          url,
		MimeType:     contentType,
		Size:         up.Size,
		FileType:     model.FileTypeFromMIME(contentType),
		EntityID:     up.EntityID,
		EntityType:   entityType,
		UploadedByID: up.UploadedBy,
	}
	if err := s.files.Create(ctx, f); err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			log.Printf("[FILES] failed to remove orphan %s: %v", key, delErr)
		}
		return nil, fmt.Errorf("failed to save file metadata: %w", err)
	}
	return f, nil
}

func (s *FileService) Get(ctx context.Context, id uint) (*model.File, error) {
	return s.files.FindByID(ctx, id)
}

func (s *FileService) ListByEntity(ctx context.Context, entityType string, entityID *uint) ([]model.File, error) {
	return s.files.ListByEntity(ctx, strings.ToLower(entityType), entityID)
}

// Remove deletes the stored object, then the metadata row
func (s *FileService) Remove(ctx context.Context, id uint) error {
	f, err := s.files.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, f.Path); err != nil {
		return err
	}
	return s.files.Delete(ctx, id)
}
