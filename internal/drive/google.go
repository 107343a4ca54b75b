package drive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"readshelf/internal/apperr"
	"readshelf/internal/config"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	drv "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const (
	pdfMimeType = "application/pdf"
	fileFields  = "id, name, mimeType, size, createdTime, modifiedTime"
	listPageMax = 1000
)

// GoogleDrive implements Storage and Watcher over the Drive v3 API.
type GoogleDrive struct {
	svc *drv.Service
}

var _ Storage = (*GoogleDrive)(nil)
var _ Watcher = (*GoogleDrive)(nil)

// TokenSource builds Drive credentials from config: a service account file
// when set, otherwise the OAuth client and refresh token.
func TokenSource(ctx context.Context, cfg config.Google) (oauth2.TokenSource, error) {
	switch {
	case cfg.CredentialsFile != "":
		data, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read credentials file: %w", err)
		}
		creds, err := google.CredentialsFromJSON(ctx, data, drv.DriveReadonlyScope)
		if err != nil {
			return nil, fmt.Errorf("parse credentials file: %w", err)
		}
		return creds.TokenSource, nil
	case cfg.ClientID != "" && cfg.ClientSecret != "" && cfg.RefreshToken != "":
		oc := &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{drv.DriveReadonlyScope},
		}
		return oc.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken}), nil
	default:
		return nil, errors.New("no Google Drive credentials configured")
	}
}

func NewGoogleDrive(ctx context.Context, cfg config.Google) (*GoogleDrive, error) {
	ts, err := TokenSource(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewGoogleDriveWithOptions(ctx, option.WithTokenSource(ts))
}

// NewGoogleDriveWithOptions is NewGoogleDrive with explicit client options.
func NewGoogleDriveWithOptions(ctx context.Context, opts ...option.ClientOption) (*GoogleDrive, error) {
	svc, err := drv.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	return &GoogleDrive{svc: svc}, nil
}

func folderQuery(folderID string) string {
	escaped := strings.ReplaceAll(folderID, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `'`, `\'`)
	return fmt.Sprintf("'%s' in parents and mimeType='%s' and trashed=false", escaped, pdfMimeType)
}

func toFile(f *drv.File) File {
	return File{
		ID:           f.Id,
		Name:         f.Name,
		MimeType:     f.MimeType,
		Size:         f.Size,
		CreatedTime:  f.CreatedTime,
		ModifiedTime: f.ModifiedTime,
	}
}

// mapError turns Drive failures into apperr kinds: 404 is NotFound, the
// rest is Upstream.
func mapError(err error, format string, args ...any) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusNotFound {
		return apperr.NotFound(format+" not found", args...)
	}
	return apperr.Upstream(err, format+" failed", args...)
}

func (g *GoogleDrive) ListFiles(ctx context.Context, folderID string) ([]File, error) {
	call := g.svc.Files.List().
		Q(folderQuery(folderID)).
		Fields(googleapi.Field("nextPageToken, files(" + fileFields + ")")).
		PageSize(listPageMax).
		OrderBy("createdTime").
		Context(ctx)

	files := []File{}
	pageToken := ""
	for {
		if pageToken != "" {
			call.PageToken(pageToken)
		}
		res, err := call.Do()
		if err != nil {
			return nil, mapError(err, "list folder %s", folderID)
		}
		for _, f := range res.Files {
			files = append(files, toFile(f))
		}
		pageToken = res.NextPageToken
		if pageToken == "" {
			return files, nil
		}
	}
}

func (g *GoogleDrive) GetFileMetadata(ctx context.Context, fileID string) (*File, error) {
	f, err := g.svc.Files.Get(fileID).Fields(googleapi.Field(fileFields)).Context(ctx).Do()
	if err != nil {
		return nil, mapError(err, "get file %s", fileID)
	}
	out := toFile(f)
	return &out, nil
}

func (g *GoogleDrive) GetFileBytes(ctx context.Context, fileID string) ([]byte, error) {
	resp, err := g.svc.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return nil, mapError(err, "download file %s", fileID)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.Upstream(err, "read file %s", fileID)
	}
	return data, nil
}

// WatchFolder registers a web_hook channel on the folder. ttl <= 0 leaves
// the expiration to Drive.
func (g *GoogleDrive) WatchFolder(ctx context.Context, folderID, address string, ttl time.Duration) (*Channel, error) {
	req := &drv.Channel{
		Id:      uuid.NewString(),
		Type:    "web_hook",
		Address: address,
	}
	if ttl > 0 {
		req.Expiration = time.Now().Add(ttl).UnixMilli()
	}

	res, err := g.svc.Files.Watch(folderID, req).Context(ctx).Do()
	if err != nil {
		return nil, mapError(err, "watch folder %s", folderID)
	}

	ch := &Channel{
		ID:         res.Id,
		ResourceID: res.ResourceId,
		FolderID:   folderID,
		Address:    address,
	}
	if res.Expiration > 0 {
		ch.Expiration = time.UnixMilli(res.Expiration).UTC()
	}
	return ch, nil
}

func (g *GoogleDrive) StopChannel(ctx context.Context, channelID, resourceID string) error {
	err := g.svc.Channels.Stop(&drv.Channel{Id: channelID, ResourceId: resourceID}).Context(ctx).Do()
	if err != nil {
		return mapError(err, "stop channel %s", channelID)
	}
	return nil
}
