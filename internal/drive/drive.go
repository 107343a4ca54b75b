// Package drive talks to the external file storage holding the source PDFs.
package drive

import (
	"context"
	"time"
)

// File is a storage-side file as reported by the listing API at query time.
type File struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	MimeType     string `json:"mimeType"`
	Size         int64  `json:"size"`
	CreatedTime  string `json:"createdTime"`
	ModifiedTime string `json:"modifiedTime"`
}

// Storage is the read side used by handlers and tools. Implementations are
// built once per process and passed in explicitly.
type Storage interface {
	// ListFiles returns every PDF in the folder, following all pages.
	ListFiles(ctx context.Context, folderID string) ([]File, error)
	GetFileMetadata(ctx context.Context, fileID string) (*File, error)
	GetFileBytes(ctx context.Context, fileID string) ([]byte, error)
}

// Channel is a registered push-notification channel.
type Channel struct {
	ID         string    `json:"id"`
	ResourceID string    `json:"resource_id"`
	FolderID   string    `json:"folder_id"`
	Address    string    `json:"address"`
	Expiration time.Time `json:"expiration"`
}

type Watcher interface {
	WatchFolder(ctx context.Context, folderID, address string, ttl time.Duration) (*Channel, error)
	StopChannel(ctx context.Context, channelID, resourceID string) error
}
