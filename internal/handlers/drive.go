package handlers

import (
	"context"
	"log"
	"strings"

	"readshelf/internal/drive"
	"readshelf/internal/utils"

	"github.com/gin-gonic/gin"
)

const (
	defaultPageSize = 100
	maxPageSize     = 1000
)

// ChannelLookup finds a registered watch channel by id.
type ChannelLookup interface {
	Get(ctx context.Context, channelID string) (*drive.Channel, error)
}

type DriveHandler struct {
	storage  drive.Storage
	channels ChannelLookup
}

// NewDriveHandler channels may be nil when no registry is configured.
func NewDriveHandler(storage drive.Storage, channels ChannelLookup) *DriveHandler {
	return &DriveHandler{storage: storage, channels: channels}
}

type pdfItem struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Name         string `json:"name"`
	CreatedTime  string `json:"createdTime"`
	ModifiedTime string `json:"modifiedTime"`
}

// ListPDFs pages through the folder listing. page starts at 1.
func (h *DriveHandler) ListPDFs(c *gin.Context) {
	page := utils.IntOrDefault(c.Query("page"), 1)
	pageSize := utils.IntOrDefault(c.Query("page_size"), defaultPageSize)
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	files, err := h.storage.ListFiles(c.Request.Context(), c.Param("folder_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	// page is unbounded, compare before multiplying
	start := len(files)
	if page-1 <= len(files)/pageSize {
		start = (page - 1) * pageSize
	}
	end := start + pageSize
	if end > len(files) {
		end = len(files)
	}

	pdfs := make([]pdfItem, 0, end-start)
	for _, f := range files[start:end] {
		pdfs = append(pdfs, pdfItem{
			ID:           f.ID,
			Title:        strings.TrimSuffix(f.Name, ".pdf"),
			Name:         f.Name,
			CreatedTime:  f.CreatedTime,
			ModifiedTime: f.ModifiedTime,
		})
	}

	respondOK(c, gin.H{
		"pdfs":      pdfs,
		"has_more":  end < len(files),
		"page":      page,
		"page_size": pageSize,
		"total":     len(files),
	})
}

// Webhook only logs the push notification.
func (h *DriveHandler) Webhook(c *gin.Context) {
	channelID := c.GetHeader("X-Goog-Channel-ID")
	state := c.GetHeader("X-Goog-Resource-State")
	number := c.GetHeader("X-Goog-Message-Number")

	folder := ""
	if h.channels != nil && channelID != "" {
		if ch, err := h.channels.Get(c.Request.Context(), channelID); err == nil {
			folder = ch.FolderID
		}
	}

	if folder != "" {
		log.Printf("📥 Drive webhook: channel=%s state=%s message=%s folder=%s", channelID, state, number, folder)
	} else {
		log.Printf("📥 Drive webhook: channel=%s state=%s message=%s", channelID, state, number)
	}
	respondOK(c, nil)
}
