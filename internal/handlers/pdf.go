package handlers

import (
	"net/http"

	"readshelf/internal/drive"
	"readshelf/internal/pdfrender"

	"github.com/gin-gonic/gin"
)

type PDFHandler struct {
	storage  drive.Storage
	renderer *pdfrender.Renderer
}

func NewPDFHandler(storage drive.Storage, renderer *pdfrender.Renderer) *PDFHandler {
	return &PDFHandler{storage: storage, renderer: renderer}
}

// Pages 返回每页的文本和内嵌图片
func (h *PDFHandler) Pages(c *gin.Context) {
	pages, err := h.renderer.Pages(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"id": c.Param("id"), "page_count": len(pages), "pages": pages})
}

func (h *PDFHandler) Cover(c *gin.Context) {
	png, err := h.renderer.Cover(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, "image/png", png)
}

func (h *PDFHandler) Metadata(c *gin.Context) {
	meta, err := h.storage.GetFileMetadata(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"file": meta})
}

func (h *PDFHandler) Raw(c *gin.Context) {
	data, err := h.storage.GetFileBytes(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", "inline")
	c.Data(http.StatusOK, "application/pdf", data)
}
