// Package reconcile compares the Drive folder listing with the book catalog.
package reconcile

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"readshelf/internal/models"
)

// Result is the outcome of one reconciliation run.
type Result struct {
	DriveCount     int           `json:"drive_count"`
	CatalogCount   int           `json:"catalog_count"`
	MissingInDrive []models.Book `json:"missing_in_drive"`
	OnlyInDrive    []string      `json:"only_in_drive"`
}

// Diff computes both set differences. Catalog entries with an empty drive
// reference take no part. Output is sorted, so the same snapshot always
// yields the same result.
func Diff(driveIDs []string, catalog []models.Book) Result {
	inDrive := make(map[string]bool, len(driveIDs))
	for _, id := range driveIDs {
		inDrive[id] = true
	}

	inCatalog := make(map[string]bool, len(catalog))
	missing := []models.Book{}
	for _, b := range catalog {
		if b.DriveID == "" {
			continue
		}
		inCatalog[b.DriveID] = true
		if !inDrive[b.DriveID] {
			missing = append(missing, b)
		}
	}

	only := []string{}
	for id := range inDrive {
		if !inCatalog[id] {
			only = append(only, id)
		}
	}

	sort.Slice(missing, func(i, j int) bool {
		if missing[i].DriveID != missing[j].DriveID {
			return missing[i].DriveID < missing[j].DriveID
		}
		return missing[i].ID < missing[j].ID
	})
	sort.Strings(only)

	return Result{
		DriveCount:     len(inDrive),
		CatalogCount:   len(catalog),
		MissingInDrive: missing,
		OnlyInDrive:    only,
	}
}

// Source is where Run reads both sides from.
type Source interface {
	FetchDriveIDs(ctx context.Context, folderID string) ([]string, error)
	FetchCatalog(ctx context.Context) ([]models.Book, error)
}

// Run fetches both sides and diffs them. Any fetch error aborts the run.
func Run(ctx context.Context, src Source, folderID string) (*Result, error) {
	driveIDs, err := src.FetchDriveIDs(ctx, folderID)
	if err != nil {
		return nil, fmt.Errorf("fetch drive listing: %w", err)
	}
	catalog, err := src.FetchCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}

	res := Diff(driveIDs, catalog)
	return &res, nil
}

var csvHeader = []string{"drive_id", "book_id", "title", "external_story_id", "created_at", "updated_at"}

// WriteCSV writes the catalog entries that have no file in Drive.
func WriteCSV(w io.Writer, missing []models.Book) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, b := range missing {
		row := []string{
			b.DriveID,
			strconv.FormatUint(uint64(b.ID), 10),
			b.Title,
			b.ExternalStoryID,
			b.CreatedAt.UTC().Format(time.RFC3339),
			b.UpdatedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// PrintSummary writes a human readable report.
func PrintSummary(w io.Writer, res *Result) {
	fmt.Fprintf(w, "Drive files:      %d\n", res.DriveCount)
	fmt.Fprintf(w, "Catalog entries:  %d\n", res.CatalogCount)
	fmt.Fprintf(w, "Missing in Drive: %d\n", len(res.MissingInDrive))
	for _, b := range res.MissingInDrive {
		fmt.Fprintf(w, "  %s  book=%d  %q\n", b.DriveID, b.ID, b.Title)
	}
	fmt.Fprintf(w, "Only in Drive:    %d\n", len(res.OnlyInDrive))
	for _, id := range res.OnlyInDrive {
		fmt.Fprintf(w, "  %s\n", id)
	}
}
