// Package pdfrender turns stored PDFs into per-page text and inline images,
// and renders cover thumbnails.
package pdfrender

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	"readshelf/internal/apperr"
	"readshelf/internal/drive"
	"readshelf/internal/utils"

	"github.com/gen2brain/go-fitz"
)

// Document is the subset of a MuPDF document the renderer uses.
type Document interface {
	NumPage() int
	Text(pageNumber int) (string, error)
	HTML(pageNumber int, header bool) (string, error)
	ImageDPI(pageNumber int, dpi float64) (*image.RGBA, error)
	Close() error
}

// Opener parses raw PDF bytes.
type Opener func(data []byte) (Document, error)

// OpenFitz opens data with MuPDF.
func OpenFitz(data []byte) (Document, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

type Page struct {
	Page   int      `json:"page"`
	Text   string   `json:"text"`
	Images []string `json:"images"`
}

type Renderer struct {
	storage drive.Storage
	open    Opener
	dpi     float64
	covers  *utils.Cache[[]byte]
}

// NewRenderer builds a renderer. open defaults to OpenFitz; covers may be
// nil to disable cover caching.
func NewRenderer(storage drive.Storage, open Opener, dpi float64, covers *utils.Cache[[]byte]) *Renderer {
	if open == nil {
		open = OpenFitz
	}
	if dpi <= 0 {
		dpi = 50
	}
	return &Renderer{storage: storage, open: open, dpi: dpi, covers: covers}
}

func (r *Renderer) load(ctx context.Context, fileID string) (Document, error) {
	data, err := r.storage.GetFileBytes(ctx, fileID)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindInternal {
			return nil, apperr.Upstream(err, "fetch file %s", fileID)
		}
		return nil, err
	}

	doc, err := r.open(data)
	if err != nil {
		return nil, apperr.Resource(err, "open PDF %s", fileID)
	}
	return doc, nil
}

// Pages renders every page of the file. Any page failure fails the whole
// document.
func (r *Renderer) Pages(ctx context.Context, fileID string) ([]Page, error) {
	doc, err := r.load(ctx, fileID)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	pages := make([]Page, 0, doc.NumPage())
	for i := 0; i < doc.NumPage(); i++ {
		text, err := doc.Text(i)
		if err != nil {
			return nil, apperr.Resource(err, "extract text of page %d", i+1)
		}

		html, err := doc.HTML(i, false)
		if err != nil {
			return nil, apperr.Resource(err, "extract images of page %d", i+1)
		}
		images, err := utils.DataImages(html)
		if err != nil {
			return nil, apperr.Resource(err, "parse page %d", i+1)
		}

		pages = append(pages, Page{Page: i + 1, Text: text, Images: images})
	}
	return pages, nil
}

// Cover returns the first page as PNG.
func (r *Renderer) Cover(ctx context.Context, fileID string) ([]byte, error) {
	if r.covers != nil {
		if cached, ok := r.covers.Get(fileID); ok {
			return cached, nil
		}
	}

	doc, err := r.load(ctx, fileID)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	if doc.NumPage() == 0 {
		return nil, apperr.Resource(nil, "PDF %s has no pages", fileID)
	}
	img, err := doc.ImageDPI(0, r.dpi)
	if err != nil {
		return nil, apperr.Resource(err, "render cover of %s", fileID)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode cover: %w", err)
	}

	if r.covers != nil {
		r.covers.Set(fileID, buf.Bytes())
	}
	return buf.Bytes(), nil
}
