package model

import "time"

// Image is a stored picture owned by a single user and filed under exactly
// one folder. The binary payload lives in external object storage: MediaURL
// is the retrieval location and StorageKey the provider-internal identifier
// used to delete the object.
type Image struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	FolderID    string    `json:"folder_id"`
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	MediaURL    string    `json:"media_url"`
	StorageKey  string    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}
