package reconcile

import (
	"context"
	"fmt"

	"readshelf/internal/drive"
	"readshelf/internal/models"

	"gorm.io/gorm"
)

// DirectSource reads Drive and the database without going through HTTP.
// The server uses it for the admin reconcile endpoint.
type DirectSource struct {
	Storage drive.Storage
	DB      *gorm.DB
}

var _ Source = DirectSource{}

func (s DirectSource) FetchDriveIDs(ctx context.Context, folderID string) ([]string, error) {
	files, err := s.Storage.ListFiles(ctx, folderID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(files))
	for _, f := range files {
		ids = append(ids, f.ID)
	}
	return ids, nil
}

func (s DirectSource) FetchCatalog(ctx context.Context) ([]models.Book, error) {
	var books []models.Book
	if err := s.DB.WithContext(ctx).Order("id ASC").Find(&books).Error; err != nil {
		return nil, fmt.Errorf("load books: %w", err)
	}
	return books, nil
}
