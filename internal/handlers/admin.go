package handlers

import (
	"net/http"

	"readshelf/internal/apperr"
	"readshelf/internal/reconcile"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	source        reconcile.Source
	defaultFolder string
}

func NewAdminHandler(source reconcile.Source, defaultFolder string) *AdminHandler {
	return &AdminHandler{source: source, defaultFolder: defaultFolder}
}

// Reconcile compares the Drive folder with the catalog. folder_id falls back
// to the configured folder.
func (h *AdminHandler) Reconcile(c *gin.Context) {
	folderID := c.DefaultQuery("folder_id", h.defaultFolder)
	if folderID == "" {
		respondError(c, apperr.Validation("folder_id is required"))
		return
	}

	res, err := reconcile.Run(c.Request.Context(), h.source, folderID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{
		"folder_id":        folderID,
		"drive_count":      res.DriveCount,
		"catalog_count":    res.CatalogCount,
		"missing_in_drive": res.MissingInDrive,
		"only_in_drive":    res.OnlyInDrive,
	})
}

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "status": "ok"})
}
