package handlers_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"readshelf/internal/models"
)

func sameTime(v any, want time.Time) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	got, err := time.Parse(time.RFC3339Nano, s)
	return err == nil && got.Equal(want)
}

func TestBookmarkUpsert(t *testing.T) {
	e := newTestEnv(t)
	alice := e.register("alice")
	book := e.createBook("Dune", "d1", "")

	w := e.do(request{method: http.MethodPost, path: "/api/bookmarks", cookies: alice, body: map[string]any{"book_id": book.ID}})
	bm := expectStatus(t, w, http.StatusOK)["bookmark"].(map[string]any)
	if bm["page"].(float64) != 1 {
		t.Errorf("default page = %v, want 1", bm["page"])
	}

	w = e.do(request{method: http.MethodPost, path: "/api/bookmarks", cookies: alice, body: map[string]any{"book_id": book.ID, "page": 42, "note": "cliffhanger"}})
	bm = expectStatus(t, w, http.StatusOK)["bookmark"].(map[string]any)
	if bm["page"].(float64) != 42 || bm["note"] != "cliffhanger" {
		t.Errorf("bookmark = %v", bm)
	}
	if bm["book"].(map[string]any)["title"] != "Dune" {
		t.Errorf("book = %v", bm["book"])
	}

	var count int64
	e.db.Model(&models.Bookmark{}).Count(&count)
	if count != 1 {
		t.Errorf("bookmark rows = %d, want 1", count)
	}

	// Only the note changes, page is kept.
	w = e.do(request{method: http.MethodPost, path: "/api/bookmarks", cookies: alice, body: map[string]any{"book_id": book.ID, "note": "later"}})
	bm = expectStatus(t, w, http.StatusOK)["bookmark"].(map[string]any)
	if bm["page"].(float64) != 42 || bm["note"] != "later" {
		t.Errorf("bookmark = %v", bm)
	}

	w = e.do(request{method: http.MethodPost, path: "/api/bookmarks", cookies: alice, body: map[string]any{"book_id": 999}})
	expectStatus(t, w, http.StatusNotFound)
	w = e.do(request{method: http.MethodPost, path: "/api/bookmarks", cookies: alice, body: map[string]any{"book_id": book.ID, "page": 0}})
	expectStatus(t, w, http.StatusBadRequest)
}

func TestBookmarkListRefreshesLastUpdated(t *testing.T) {
	e := newTestEnv(t)
	alice := e.register("alice")
	serial := e.createBook("Mother of Learning", "d1", "21220")
	plain := e.createBook("Dune", "d2", "")

	for _, b := range []*models.Book{serial, plain} {
		w := e.do(request{method: http.MethodPost, path: "/api/bookmarks", cookies: alice, body: map[string]any{"book_id": b.ID}})
		expectStatus(t, w, http.StatusOK)
	}

	list := func() map[uint]map[string]any {
		t.Helper()
		body := expectStatus(t, e.do(request{method: http.MethodGet, path: "/api/bookmarks", cookies: alice}), http.StatusOK)
		out := map[uint]map[string]any{}
		for _, item := range body["bookmarks"].([]any) {
			bm := item.(map[string]any)
			out[uint(bm["book_id"].(float64))] = bm
		}
		return out
	}

	// Feed down, nothing stored yet.
	got := list()
	if len(got) != 2 || got[serial.ID]["last_updated"] != nil {
		t.Fatalf("bookmarks = %v", got)
	}

	updated := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	e.stories.set(updated, nil)
	got = list()
	if !sameTime(got[serial.ID]["last_updated"], updated) {
		t.Errorf("last_updated = %v, want %s", got[serial.ID]["last_updated"], updated)
	}
	if got[plain.ID]["last_updated"] != nil {
		t.Errorf("book without story id got last_updated %v", got[plain.ID]["last_updated"])
	}

	// Persisted: a failing feed falls back to the stored value.
	e.stories.set(time.Time{}, errors.New("timeout"))
	got = list()
	if !sameTime(got[serial.ID]["last_updated"], updated) {
		t.Errorf("fallback last_updated = %v", got[serial.ID]["last_updated"])
	}
}

func TestBookmarkDelete(t *testing.T) {
	e := newTestEnv(t)
	alice := e.register("alice")
	bob := e.register("bob")
	book := e.createBook("Dune", "d1", "")

	w := e.do(request{method: http.MethodPost, path: "/api/bookmarks", cookies: alice, body: map[string]any{"book_id": book.ID}})
	expectStatus(t, w, http.StatusOK)

	path := fmt.Sprintf("/api/bookmarks/%d", book.ID)
	// Bob has no bookmark on this book.
	expectStatus(t, e.do(request{method: http.MethodDelete, path: path, cookies: bob}), http.StatusNotFound)
	expectStatus(t, e.do(request{method: http.MethodDelete, path: path, cookies: alice}), http.StatusOK)
	expectStatus(t, e.do(request{method: http.MethodDelete, path: path, cookies: alice}), http.StatusNotFound)
}
