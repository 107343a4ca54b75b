package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"readshelf/internal/apperr"
	"readshelf/internal/db"
	"readshelf/internal/drive"
	"readshelf/internal/models"
	"readshelf/internal/pdfrender"
	"readshelf/internal/router"
	"readshelf/internal/services"
	"readshelf/internal/testutil"
	"readshelf/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type fakeStorage struct {
	files   []drive.File
	data    map[string][]byte
	listErr error
}

func (s *fakeStorage) ListFiles(ctx context.Context, folderID string) ([]drive.File, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.files, nil
}

func (s *fakeStorage) GetFileMetadata(ctx context.Context, fileID string) (*drive.File, error) {
	for _, f := range s.files {
		if f.ID == fileID {
			f := f
			return &f, nil
		}
	}
	return nil, apperr.NotFound("get file %s not found", fileID)
}

func (s *fakeStorage) GetFileBytes(ctx context.Context, fileID string) ([]byte, error) {
	if fileID == "offline" {
		return nil, apperr.Upstream(errors.New("connection refused"), "download file %s failed", fileID)
	}
	data, ok := s.data[fileID]
	if !ok {
		return nil, apperr.NotFound("download file %s not found", fileID)
	}
	return data, nil
}

type fakeStories struct {
	mu      sync.Mutex
	updated time.Time
	err     error
}

func (f *fakeStories) set(t time.Time, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated, f.err = t, err
}

func (f *fakeStories) LastUpdated(ctx context.Context, storyID string) (time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.updated, f.err
}

type fakeDoc struct{ pages []string }

func (d *fakeDoc) NumPage() int { return len(d.pages) }
func (d *fakeDoc) Text(i int) (string, error) { return d.pages[i], nil }
func (d *fakeDoc) HTML(i int, header bool) (string, error) {
	return `<div><p>` + d.pages[i] + `</p><img src="data:image/png;base64,iVBORw0KGgo="></div>`, nil
}
func (d *fakeDoc) ImageDPI(i int, dpi float64) (*image.RGBA, error) {
	return image.NewRGBA(image.Rect(0, 0, 4, 6)), nil
}
func (d *fakeDoc) Close() error { return nil }

func fakeOpen(data []byte) (pdfrender.Document, error) {
	if string(data) == "broken" {
		return nil, errors.New("no objects found")
	}
	return &fakeDoc{pages: []string{"Chapter one", "Chapter two"}}, nil
}

type testEnv struct {
	t       *testing.T
	r       *gin.Engine
	db      *gorm.DB
	storage *fakeStorage
	stories *fakeStories
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conn := testutil.OpenDB(t)
	if err := db.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	storage := &fakeStorage{data: map[string][]byte{}}
	stories := &fakeStories{err: errors.New("feed unavailable")}

	r := gin.New()
	r.Use(sessions.Sessions("test_session", cookie.NewStore([]byte("test-secret"))))
	router.RegisterRoutes(r, router.Deps{
		DB:            conn,
		Storage:       storage,
		Renderer:      pdfrender.NewRenderer(storage, fakeOpen, 50, utils.NewCache[[]byte](10, time.Minute)),
		Notifier:      services.NewNotifier(conn, nil, "http://test"),
		Stories:       stories,
		DriveFolderID: "folder",
	})

	return &testEnv{t: t, r: r, db: conn, storage: storage, stories: stories}
}

type request struct {
	method  string
	path    string
	body    any
	cookies []*http.Cookie
	headers map[string]string
}

func (e *testEnv) do(req request) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	switch b := req.body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			e.t.Fatalf("encode body: %v", err)
		}
	}

	httpReq := httptest.NewRequest(req.method, req.path, &buf)
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for k, v := range req.headers {
		httpReq.Header.Set(k, v)
	}
	for _, c := range req.cookies {
		httpReq.AddCookie(c)
	}

	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, httpReq)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return out
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, code int) map[string]any {
	t.Helper()
	if w.Code != code {
		t.Fatalf("status = %d, want %d, body %s", w.Code, code, w.Body.String())
	}
	if !strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		return nil
	}
	body := decode(t, w)
	wantSuccess := code < 300
	if body["success"] != wantSuccess {
		t.Fatalf("success = %v, want %v, body %s", body["success"], wantSuccess, w.Body.String())
	}
	if !wantSuccess {
		if msg, _ := body["error"].(string); msg == "" {
			t.Fatalf("error message missing: %s", w.Body.String())
		}
	}
	return body
}

// register creates an account through the API and returns its session cookies.
func (e *testEnv) register(username string) []*http.Cookie {
	e.t.Helper()
	w := e.do(request{method: http.MethodPost, path: "/api/register", body: map[string]string{
		"username": username,
		"password": "password123",
	}})
	expectStatus(e.t, w, http.StatusOK)
	return w.Result().Cookies()
}

func (e *testEnv) createAdmin(username string) *models.User {
	e.t.Helper()
	hash, err := utils.HashPassword("adminpass")
	if err != nil {
		e.t.Fatal(err)
	}
	u := &models.User{Username: username, Password: hash, Role: models.RoleAdmin}
	if err := e.db.Create(u).Error; err != nil {
		e.t.Fatal(err)
	}
	return u
}

func (e *testEnv) createBook(title, driveID, storyID string) *models.Book {
	e.t.Helper()
	b := &models.Book{Title: title, DriveID: driveID, ExternalStoryID: storyID}
	if err := e.db.Create(b).Error; err != nil {
		e.t.Fatal(err)
	}
	return b
}

func userID(t *testing.T, e *testEnv, username string) uint {
	t.Helper()
	var u models.User
	if err := e.db.Where("username = ?", username).First(&u).Error; err != nil {
		t.Fatal(err)
	}
	return u.ID
}
