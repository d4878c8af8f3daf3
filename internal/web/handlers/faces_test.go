package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kozaktomas/face-auth/internal/recognition"
	"github.com/kozaktomas/face-auth/internal/vision/visiontest"
)

func TestFacesHandler_Detect(t *testing.T) {
	svc, _ := testService(t)
	handler := NewFacesHandler(svc, discardLogger())

	recorder := httptest.NewRecorder()
	handler.Detect(recorder, multipartRequest(t, "/detect_faces", visiontest.PNG(widthGroup), nil))

	assertStatusCode(t, recorder, http.StatusOK)
	assertContentType(t, recorder, "application/json")

	var result struct {
		Faces []struct {
			X, Y, W, H int
		} `json:"faces"`
		Count int `json:"count"`
	}
	parseJSONResponse(t, recorder, &result)

	if result.Count != 2 || len(result.Faces) != 2 {
		t.Errorf("expected 2 faces, got count=%d faces=%d", result.Count, len(result.Faces))
	}
	if result.Faces[0].W != 4 {
		t.Errorf("expected box width 4, got %d", result.Faces[0].W)
	}
}

func TestFacesHandler_DetectNoFaces(t *testing.T) {
	svc, _ := testService(t)
	handler := NewFacesHandler(svc, discardLogger())

	recorder := httptest.NewRecorder()
	handler.Detect(recorder, multipartRequest(t, "/detect_faces", visiontest.PNG(widthNoFace), nil))

	assertStatusCode(t, recorder, http.StatusOK)
	var result map[string]any
	parseJSONResponse(t, recorder, &result)
	if result["count"] != float64(0) {
		t.Errorf("expected count 0, got %v", result["count"])
	}
	if faces, ok := result["faces"].([]any); !ok || len(faces) != 0 {
		t.Errorf("expected empty faces array, got %v", result["faces"])
	}
}

func TestFacesHandler_BadUploads(t *testing.T) {
	tests := []struct {
		name          string
		image         []byte
		expectedError string
	}{
		{"missing image", nil, "No image provided"},
		{"invalid image", []byte("not an image"), "Invalid image"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc, _ := testService(t)
			handler := NewFacesHandler(svc, discardLogger())

			for path, fn := range map[string]http.HandlerFunc{
				"/detect_faces":   handler.Detect,
				"/recognize_face": handler.Recognize,
			} {
				recorder := httptest.NewRecorder()
				fn(recorder, multipartRequest(t, path, tc.image, nil))

				assertStatusCode(t, recorder, http.StatusBadRequest)
				assertJSONError(t, recorder, tc.expectedError)
			}
		})
	}
}

func TestFacesHandler_Train(t *testing.T) {
	svc, store := testService(t)
	handler := NewFacesHandler(svc, discardLogger())

	recorder := httptest.NewRecorder()
	req := multipartRequest(t, "/train_face", visiontest.PNG(widthKnown), map[string]string{
		"driver_id": "42",
		"name":      "Budi Santoso",
	})
	handler.Train(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	var result map[string]any
	parseJSONResponse(t, recorder, &result)

	if result["success"] != true {
		t.Errorf("expected success true, got %v", result["success"])
	}
	if result["message"] != "Face registered for Budi Santoso" {
		t.Errorf("unexpected message %v", result["message"])
	}
	if result["driver_id"] != float64(42) {
		t.Errorf("expected driver_id 42, got %v", result["driver_id"])
	}
	if result["replaced"] != false {
		t.Errorf("expected replaced false, got %v", result["replaced"])
	}
	if store.Size() != 1 || !store.Has(42) {
		t.Errorf("expected driver 42 in store, got %v", storedIDs(store))
	}
}

func TestFacesHandler_TrainReplaces(t *testing.T) {
	svc, store := testService(t)
	handler := NewFacesHandler(svc, discardLogger())

	for range 2 {
		recorder := httptest.NewRecorder()
		handler.Train(recorder, multipartRequest(t, "/train_face", visiontest.PNG(widthKnown), map[string]string{
			"driver_id": "7",
			"name":      "Andi",
		}))
		assertStatusCode(t, recorder, http.StatusOK)
	}

	if store.Size() != 1 {
		t.Errorf("expected 1 stored face after retraining, got %d", store.Size())
	}
}

func TestFacesHandler_TrainValidation(t *testing.T) {
	tests := []struct {
		name           string
		image          []byte
		fields         map[string]string
		expectedStatus int
		expectedError  string
	}{
		{"no image", nil, map[string]string{"driver_id": "1", "name": "A"}, http.StatusBadRequest, "No image provided"},
		{"no driver_id", visiontest.PNG(widthKnown), map[string]string{"name": "A"}, http.StatusBadRequest, "driver_id required"},
		{"no name", visiontest.PNG(widthKnown), map[string]string{"driver_id": "1"}, http.StatusBadRequest, "name required"},
		{"blank name", visiontest.PNG(widthKnown), map[string]string{"driver_id": "1", "name": "  "}, http.StatusBadRequest, "name required"},
		{"non-integer driver_id", visiontest.PNG(widthKnown), map[string]string{"driver_id": "abc", "name": "A"}, http.StatusBadRequest, "driver_id must be an integer"},
		{"invalid image", []byte("garbage"), map[string]string{"driver_id": "1", "name": "A"}, http.StatusBadRequest, recognition.MsgInvalidImage},
		{"no face", visiontest.PNG(widthNoFace), map[string]string{"driver_id": "1", "name": "A"}, http.StatusBadRequest, "No face detected in image"},
		{"two faces", visiontest.PNG(widthGroup), map[string]string{"driver_id": "1", "name": "A"}, http.StatusBadRequest, "Multiple faces detected. Please provide image with only one face"},
		{"extractor down", visiontest.PNG(widthBroken), map[string]string{"driver_id": "1", "name": "A"}, http.StatusInternalServerError, recognition.MsgInternal},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc, store := testService(t)
			handler := NewFacesHandler(svc, discardLogger())

			recorder := httptest.NewRecorder()
			handler.Train(recorder, multipartRequest(t, "/train_face", tc.image, tc.fields))

			assertStatusCode(t, recorder, tc.expectedStatus)
			assertJSONError(t, recorder, tc.expectedError)
			if store.Size() != 0 {
				t.Errorf("store should stay empty, got %d", store.Size())
			}
		})
	}
}

func TestFacesHandler_Recognize(t *testing.T) {
	svc, _ := testService(t)
	if _, err := svc.Train(context.Background(), visiontest.PNG(widthKnown), 42, "Budi"); err != nil {
		t.Fatalf("train: %v", err)
	}
	handler := NewFacesHandler(svc, discardLogger())

	recorder := httptest.NewRecorder()
	handler.Recognize(recorder, multipartRequest(t, "/recognize_face", visiontest.PNG(widthKnown), nil))

	assertStatusCode(t, recorder, http.StatusOK)

	var result map[string]any
	parseJSONResponse(t, recorder, &result)

	if result["success"] != true {
		t.Errorf("expected success, got %v", result)
	}
	if result["driver_id"] != float64(42) {
		t.Errorf("expected driver_id 42, got %v", result["driver_id"])
	}
	if result["name"] != "Budi" {
		t.Errorf("expected name Budi, got %v", result["name"])
	}
	if result["confidence"] != float64(1) {
		t.Errorf("expected confidence 1, got %v", result["confidence"])
	}
	if result["message"] != "Face recognized: Budi" {
		t.Errorf("unexpected message %v", result["message"])
	}
}

func TestFacesHandler_RecognizeNotRecognized(t *testing.T) {
	svc, _ := testService(t)
	if _, err := svc.Train(context.Background(), visiontest.PNG(widthKnown), 42, "Budi"); err != nil {
		t.Fatalf("train: %v", err)
	}
	handler := NewFacesHandler(svc, discardLogger())

	recorder := httptest.NewRecorder()
	handler.Recognize(recorder, multipartRequest(t, "/recognize_face", visiontest.PNG(widthStranger), nil))

	assertStatusCode(t, recorder, http.StatusUnauthorized)
	assertJSONError(t, recorder, "Face not recognized")

	var result map[string]any
	parseJSONResponse(t, recorder, &result)
	if result["success"] != false {
		t.Errorf("expected success false, got %v", result["success"])
	}
	dist, ok := result["best_distance"].(float64)
	if !ok || dist < 0.89 || dist > 0.91 {
		t.Errorf("expected best_distance ~0.9, got %v", result["best_distance"])
	}
}

func TestFacesHandler_RecognizeEmptyStore(t *testing.T) {
	svc, _ := testService(t)
	handler := NewFacesHandler(svc, discardLogger())

	recorder := httptest.NewRecorder()
	handler.Recognize(recorder, multipartRequest(t, "/recognize_face", visiontest.PNG(widthKnown), nil))

	assertStatusCode(t, recorder, http.StatusNotFound)
	assertJSONError(t, recorder, "No faces trained yet")
}

func TestFacesHandler_RecognizeNoFace(t *testing.T) {
	svc, _ := testService(t)
	if _, err := svc.Train(context.Background(), visiontest.PNG(widthKnown), 42, "Budi"); err != nil {
		t.Fatalf("train: %v", err)
	}
	handler := NewFacesHandler(svc, discardLogger())

	recorder := httptest.NewRecorder()
	handler.Recognize(recorder, multipartRequest(t, "/recognize_face", visiontest.PNG(widthNoFace), nil))

	assertStatusCode(t, recorder, http.StatusBadRequest)
	assertJSONError(t, recorder, "No face detected")
}

func TestFacesHandler_NonMultipartBody(t *testing.T) {
	svc, _ := testService(t)
	handler := NewFacesHandler(svc, discardLogger())

	req := httptest.NewRequest(http.MethodPost, "/recognize_face", strings.NewReader(`{"image":"aGVsbG8="}`))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	handler.Recognize(recorder, req)

	assertStatusCode(t, recorder, http.StatusBadRequest)
	assertJSONError(t, recorder, errInvalidRequest)
}
