package model

import "time"

// Folder is a node in a per-owner folder forest.
// ParentID is nil for root folders. Path is a denormalized cache of the
// slash-joined ancestor names ending with this folder's own name; it is
// recomputed whenever the folder (or an ancestor) is renamed.
// This is a pure domain model with no database-specific dependencies or tags.
type Folder struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name"`
	ParentID  *string   `json:"parent_id"`
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FolderNode is a folder with its resolved children, used by the tree view.
type FolderNode struct {
	Folder
	Children []*FolderNode `json:"children"`
}
