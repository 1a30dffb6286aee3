package file

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/edu-platform-api/handlers"
	"github.com/sahilchouksey/edu-platform-api/services"
	"github.com/sahilchouksey/edu-platform-api/utils/middleware"
	"github.com/sahilchouksey/edu-platform-api/utils/response"
	"github.com/sahilchouksey/edu-platform-api/utils/validation"
)

// FileHandler handles multipart uploads and file metadata
type FileHandler struct {
	files *services.FileService
}

// NewFileHandler creates a new file handler
func NewFileHandler(files *services.FileService) *FileHandler {
	return &FileHandler{files: files}
}

// UploadFile handles POST /files (multipart: file, entity_type, entity_id)
func (h *FileHandler) UploadFile(c *fiber.Ctx) error {
	header, err := c.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "file is required")
	}

	entityID, err := formID(c, "entity_id")
	if err != nil {
		return err
	}

	src, err := header.Open()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Unable to read uploaded file")
	}
	defer src.Close()

	var uploader *uint
	if id, ok := middleware.GetUserID(c); ok {
		uploader = &id
	}

	f, err := h.files.Upload(c.UserContext(), services.Upload{
		Filename:    validation.SanitizeString(header.Filename),
		ContentType: header.Header.Get(fiber.HeaderContentType),
		Size:        header.Size,
		Body:        src,
		EntityType:  c.FormValue("entity_type"),
		EntityID:    entityID,
		UploadedBy:  uploader,
	})
	if err != nil {
		return err
	}
	return response.Created(c, f)
}

// ListFiles handles GET /files?entity_type=&entity_id=
func (h *FileHandler) ListFiles(c *fiber.Ctx) error {
	entityID, err := handlers.QueryID(c, "entity_id")
	if err != nil {
		return err
	}

	files, err := h.files.ListByEntity(c.UserContext(), c.Query("entity_type"), entityID)
	if err != nil {
		return err
	}
	return response.Success(c, files)
}

// GetFile handles GET /files/:id
func (h *FileHandler) GetFile(c *fiber.Ctx) error {
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		return err
	}

	f, err := h.files.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return response.Success(c, f)
}

// DeleteFile handles DELETE /files/:id
func (h *FileHandler) DeleteFile(c *fiber.Ctx) error {
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		return err
	}

	if err := h.files.Remove(c.UserContext(), id); err != nil {
		return err
	}
	return response.SuccessWithMessage(c, "File deleted successfully", nil)
}

func formID(c *fiber.Ctx, name string) (*uint, error) {
	raw := c.FormValue(name)
	if raw == "" {
		return nil, nil
	}
	id, err := handlers.ParseID(raw)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid "+name)
	}
	return &id, nil
}
