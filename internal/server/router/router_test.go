package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type fakeOCRHandler struct {
	called []string
}

func (f *fakeOCRHandler) record(name string, c *gin.Context) {
	f.called = append(f.called, name)
	c.Status(http.StatusAccepted)
}

func (f *fakeOCRHandler) Index(c *gin.Context)        { f.record("index", c) }
func (f *fakeOCRHandler) Upload(c *gin.Context)       { f.record("upload", c) }
func (f *fakeOCRHandler) DownloadText(c *gin.Context) { f.record("download_text", c) }
func (f *fakeOCRHandler) Languages(c *gin.Context)    { f.record("languages", c) }
func (f *fakeOCRHandler) Health(c *gin.Context)       { f.record("health", c) }

func TestNew_Healthz(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := New("", &fakeOCRHandler{}, zerolog.Nop())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	if body := w.Body.String(); body != "ok" {
		t.Fatalf("unexpected body: %s", body)
	}
}

func TestNew_Routes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		method string
		path   string
		want   string
	}{
		{http.MethodGet, "/", "index"},
		{http.MethodPost, "/upload", "upload"},
		{http.MethodPost, "/download_text", "download_text"},
		{http.MethodGet, "/languages", "languages"},
		{http.MethodGet, "/health", "health"},
		{http.MethodGet, "/api/v1/", "index"},
		{http.MethodPost, "/api/v1/upload", "upload"},
		{http.MethodPost, "/api/v1/download_text", "download_text"},
		{http.MethodGet, "/api/v1/languages", "languages"},
		{http.MethodGet, "/api/v1/health", "health"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			fakeHandler := &fakeOCRHandler{}
			router := New("", fakeHandler, zerolog.Nop())

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))

			if w.Code != http.StatusAccepted {
				t.Fatalf("unexpected status: %d", w.Code)
			}
			if len(fakeHandler.called) != 1 || fakeHandler.called[0] != tt.want {
				t.Fatalf("expected %s handler, got %v", tt.want, fakeHandler.called)
			}
		})
	}
}

func TestNew_WithAPIKey(t *testing.T) {
	gin.SetMode(gin.TestMode)

	fakeHandler := &fakeOCRHandler{}
	router := New("secret-key", fakeHandler, zerolog.Nop())

	// Test without API key - should fail
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without API key, got %d", w.Code)
	}
	if len(fakeHandler.called) != 0 {
		t.Fatal("handler should not be called without valid API key")
	}

	// Test with correct API key - should succeed
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/upload", nil)
	req.Header.Set("x-api-key", "secret-key")
	router.ServeHTTP(w, req)

	if len(fakeHandler.called) != 1 {
		t.Fatal("handler should be called with valid API key")
	}
	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202 with valid API key, got %d", w.Code)
	}
}

func TestNew_HealthSkipsAPIKey(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := New("secret-key", &fakeOCRHandler{}, zerolog.Nop())

	for _, path := range []string{"/health", "/api/v1/health", "/healthz"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code == http.StatusUnauthorized {
			t.Fatalf("%s should not require an API key", path)
		}
	}
}
