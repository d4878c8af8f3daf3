package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/kozaktomas/face-auth/internal/facestore"
	"github.com/kozaktomas/face-auth/internal/recognition"
	"github.com/kozaktomas/face-auth/internal/vision/visiontest"
)

// Upload widths select the fake extractor response.
const (
	widthKnown    = 31 // one face at the origin
	widthStranger = 32 // one face far away
	widthNoFace   = 33
	widthGroup    = 34
	widthBroken   = 35
)

// testService creates a recognition service backed by a temp store and a fake extractor
func testService(t *testing.T) (*recognition.Service, *facestore.Store) {
	t.Helper()
	store := facestore.New(filepath.Join(t.TempDir(), "encodings.bin"), nil)
	ext := visiontest.New().
		On(widthKnown, visiontest.Face(0)).
		On(widthStranger, visiontest.Face(0.9)).
		On(widthNoFace).
		On(widthGroup, visiontest.Face(0), visiontest.Face(0.5)).
		Fail(widthBroken, errors.New("embedding server unavailable"))
	return recognition.NewService(store, ext, nil, recognition.Options{Threshold: 0.6}), store
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// multipartRequest builds a POST request with an optional image part and form fields
func multipartRequest(t *testing.T, path string, image []byte, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if image != nil {
		part, err := writer.CreateFormFile("image", "photo.png")
		if err != nil {
			t.Fatalf("failed to create form file: %v", err)
		}
		if _, err := part.Write(image); err != nil {
			t.Fatalf("failed to write image: %v", err)
		}
	}
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			t.Fatalf("failed to write field: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

// parseJSONResponse parses a JSON response body into the target type
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertContentType checks if the response has the expected content type
func assertContentType(t *testing.T, recorder *httptest.ResponseRecorder, expected string) {
	t.Helper()
	ct := recorder.Header().Get("Content-Type")
	if ct != expected {
		t.Errorf("expected Content-Type '%s', got '%s'", expected, ct)
	}
}

// assertJSONError checks if the response is a JSON error with the expected message
func assertJSONError(t *testing.T, recorder *httptest.ResponseRecorder, expectedMessage string) {
	t.Helper()
	var result map[string]any
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse error response: %v\nBody: %s", err, recorder.Body.String())
	}
	if result["error"] != expectedMessage {
		t.Errorf("expected error '%s', got '%v'", expectedMessage, result["error"])
	}
}

func storedIDs(s *facestore.Store) []int64 {
	ids, _ := s.Entries()
	return ids
}
