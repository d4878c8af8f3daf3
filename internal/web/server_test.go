package web

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/kozaktomas/face-auth/internal/config"
	"github.com/kozaktomas/face-auth/internal/database"
	"github.com/kozaktomas/face-auth/internal/database/mock"
	"github.com/kozaktomas/face-auth/internal/facestore"
	"github.com/kozaktomas/face-auth/internal/recognition"
	"github.com/kozaktomas/face-auth/internal/vision/visiontest"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	store := facestore.New(filepath.Join(t.TempDir(), "encodings.bin"), nil)
	ext := visiontest.New().On(16, visiontest.Face(0))
	svc := recognition.NewService(store, ext, nil, recognition.Options{})
	return NewServer(config.Defaults(), svc, slog.New(slog.DiscardHandler), 0, "127.0.0.1")
}

func upload(t *testing.T, path string, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("image", "face.png")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	part.Write(visiontest.PNG(16))
	for k, v := range fields {
		w.WriteField(k, v)
	}
	w.Close()

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestRoutes(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/", http.StatusOK},
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/status", http.StatusOK},
		{http.MethodPost, "/reset", http.StatusOK},
		{http.MethodPost, "/train-all", http.StatusOK},
		{http.MethodPost, "/detect_faces", http.StatusBadRequest},
		{http.MethodGet, "/detect_faces", http.StatusMethodNotAllowed},
		{http.MethodGet, "/missing", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			s.Router().ServeHTTP(recorder, httptest.NewRequest(tt.method, tt.path, nil))
			if recorder.Code != tt.status {
				t.Errorf("expected %d, got %d: %s", tt.status, recorder.Code, recorder.Body.String())
			}
		})
	}
}

func TestTrainThenRecognize(t *testing.T) {
	s := newTestServer(t)

	recorder := httptest.NewRecorder()
	s.Router().ServeHTTP(recorder, upload(t, "/train_face", map[string]string{"driver_id": "9", "name": "Sari"}))
	if recorder.Code != http.StatusOK {
		t.Fatalf("train failed: %d %s", recorder.Code, recorder.Body.String())
	}

	recorder = httptest.NewRecorder()
	s.Router().ServeHTTP(recorder, upload(t, "/recognize_face", nil))
	if recorder.Code != http.StatusOK {
		t.Fatalf("recognize failed: %d %s", recorder.Code, recorder.Body.String())
	}

	var result map[string]any
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result["driver_id"] != float64(9) || result["name"] != "Sari" {
		t.Errorf("unexpected recognition %v", result)
	}
	if recorder.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("expected security headers on API responses")
	}
}

func TestServerAddr(t *testing.T) {
	s := newTestServer(t)
	if s.Addr() != "127.0.0.1:0" {
		t.Errorf("unexpected addr %q", s.Addr())
	}
}

func TestTrainAllOutlivesClientCancel(t *testing.T) {
	var ctxErr error
	source := func(ctx context.Context) (database.DriverReader, error) {
		ctxErr = ctx.Err()
		return mock.NewMockDriverReader(), nil
	}
	store := facestore.New(filepath.Join(t.TempDir(), "encodings.bin"), nil)
	svc := recognition.NewService(store, visiontest.New(), source, recognition.Options{})
	s := NewServer(config.Defaults(), svc, slog.New(slog.DiscardHandler), 0, "127.0.0.1")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/train-all", nil).WithContext(ctx)

	recorder := httptest.NewRecorder()
	s.Router().ServeHTTP(recorder, req)

	if ctxErr != nil {
		t.Errorf("training saw a cancelled context: %v", ctxErr)
	}
	if recorder.Code != http.StatusOK {
		t.Errorf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
}
