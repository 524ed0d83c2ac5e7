package handler

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"imgvault/internal/http/middleware"
	"imgvault/internal/service"
)

type createFolderRequest struct {
	Name   string  `json:"name"`
	Parent *string `json:"parent"`
}

func (r createFolderRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 100)),
	)
}

type renameFolderRequest struct {
	Name string `json:"name"`
}

func (r renameFolderRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 100)),
	)
}

// CreateFolder makes a folder under an optional parent.
func CreateFolder(folderSvc service.FolderService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createFolderRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if err := req.Validate(); err != nil {
			return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		}
		if req.Parent != nil {
			if _, err := uuid.Parse(*req.Parent); err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid parent id format")
			}
		}

		folder, err := folderSvc.Create(c.UserContext(), middleware.UserID(c), req.Name, req.Parent)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(folder)
	}
}

// ListFolders returns the children of ?parent=ID, or root folders when
// parent is absent or "root".
func ListFolders(folderSvc service.FolderService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var parentID *string
		if p := c.Query("parent"); p != "" && p != "root" {
			if _, err := uuid.Parse(p); err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid parent id format")
			}
			parentID = &p
		}

		folders, err := folderSvc.ListChildren(c.UserContext(), middleware.UserID(c), parentID)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(folders)
	}
}

// FolderTree returns the caller's full folder forest.
func FolderTree(folderSvc service.FolderService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tree, err := folderSvc.Tree(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(tree)
	}
}

// GetFolder fetches one folder by id.
func GetFolder(folderSvc service.FolderService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		folder, err := folderSvc.Get(c.UserContext(), middleware.UserID(c), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(folder)
	}
}

// RenameFolder renames a folder in place.
func RenameFolder(folderSvc service.FolderService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		var req renameFolderRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if err := req.Validate(); err != nil {
			return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		}

		folder, err := folderSvc.Rename(c.UserContext(), middleware.UserID(c), id, req.Name)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(folder)
	}
}

// DeleteFolder cascades over the folder's whole subtree: descendant
// folders, contained images, and their stored media.
func DeleteFolder(folderSvc service.FolderService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		if err := folderSvc.DeleteSubtree(c.UserContext(), middleware.UserID(c), id); err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"message": "folder and all contents deleted successfully"})
	}
}
