package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"imgvault/internal/http/middleware"
	"imgvault/internal/service"
)

// UploadImage accepts a multipart form with fields name, folderId, and
// the binary file under "image". The payload is streamed to object
// storage before the record is created.
func UploadImage(imageSvc service.ImageService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("image")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "image file is required")
		}

		name := c.FormValue("name")
		if name == "" {
			name = fh.Filename
		}
		folderID := c.FormValue("folderId")
		if folderID == "" {
			return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "folderId is required")
		}
		if _, err := uuid.Parse(folderID); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid folder id format")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}

		img, err := imageSvc.Upload(c.UserContext(), middleware.UserID(c), service.UploadInput{
			Reader:      f,
			Name:        name,
			FolderID:    folderID,
			ContentType: ct,
			Size:        fh.Size,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(img)
	}
}

// ListImages returns the caller's images in ?folder=ID.
func ListImages(imageSvc service.ImageService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		folderID := c.Query("folder")
		if folderID == "" {
			return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "folder query parameter is required")
		}
		if _, err := uuid.Parse(folderID); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid folder id format")
		}

		images, err := imageSvc.ListByFolder(c.UserContext(), middleware.UserID(c), folderID)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(images)
	}
}

// SearchImages returns the caller's images whose name contains ?q=.
func SearchImages(imageSvc service.ImageService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		images, err := imageSvc.Search(c.UserContext(), middleware.UserID(c), c.Query("q"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(images)
	}
}

// DeleteImage removes one image record and its stored media.
func DeleteImage(imageSvc service.ImageService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		if err := imageSvc.Delete(c.UserContext(), middleware.UserID(c), id); err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"message": "image deleted successfully"})
	}
}
