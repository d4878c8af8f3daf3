package handlers

import (
	"fmt"
	"net/http"

	"github.com/kozaktomas/face-auth/internal/recognition"
)

// ServiceName is reported by the index endpoint.
const ServiceName = "Face Recognition Service"

// StatusHandler handles service status and store maintenance endpoints.
type StatusHandler struct {
	service *recognition.Service
}

// NewStatusHandler creates a new status handler.
func NewStatusHandler(service *recognition.Service) *StatusHandler {
	return &StatusHandler{service: service}
}

// endpoints lists the public API on the index page.
var endpoints = map[string]string{
	"POST /train_face":     "Train a new driver face",
	"POST /recognize_face": "Recognize and login with face",
	"POST /detect_faces":   "Detect faces in image",
	"POST /train-all":      "Train all drivers from database",
	"GET /status":          "Get training status",
	"POST /reset":          "Reset all trained faces",
}

// Index handles GET /.
func (h *StatusHandler) Index(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"service":       ServiceName,
		"trained_faces": h.service.TrainedFaces(),
		"endpoints":     endpoints,
	})
}

// Health handles the health check endpoint.
func (h *StatusHandler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"trained_faces": h.service.TrainedFaces(),
	})
}

// Status handles GET /status.
func (h *StatusHandler) Status(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.service.Status())
}

// TrainAll handles POST /train-all.
func (h *StatusHandler) TrainAll(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.TrainAll(r.Context())
	if err != nil {
		body := map[string]any{
			"success": false,
			"error":   recognition.MsgInternal,
		}
		if report != nil {
			// interrupted run: what finished is already stored
			body["trained"] = report.Trained
			body["new_driver_ids"] = report.DriverIDs
			body["total_trained_faces"] = h.service.TrainedFaces()
			body["run_id"] = report.RunID
		}
		respondJSON(w, http.StatusInternalServerError, body)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success":             true,
		"message":             fmt.Sprintf("Trained %d drivers", report.Trained),
		"trained":             report.Trained,
		"total_trained_faces": h.service.TrainedFaces(),
		"driver_ids":          h.service.Status().DriverIDs,
		"new_driver_ids":      report.DriverIDs,
		"rejected":            report.Rejected,
		"run_id":              report.RunID,
	})
}

// Reset handles POST /reset.
func (h *StatusHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Reset(); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "All trained faces reset",
	})
}
