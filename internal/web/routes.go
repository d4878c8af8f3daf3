package web

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/kozaktomas/face-auth/internal/constants"
	"github.com/kozaktomas/face-auth/internal/web/handlers"
	"github.com/kozaktomas/face-auth/internal/web/middleware"
)

func (s *Server) setupRoutes() {
	// Create handlers
	facesHandler := handlers.NewFacesHandler(s.service, s.logger)
	statusHandler := handlers.NewStatusHandler(s.service)

	s.router.Group(func(r chi.Router) {
		r.Use(chiMiddleware.Timeout(constants.RequestTimeout))

		r.Get("/", statusHandler.Index)
		r.Get("/health", statusHandler.Health)
		r.Get("/status", statusHandler.Status)

		r.Post("/detect_faces", facesHandler.Detect)
		r.Post("/train_face", facesHandler.Train)
		r.Post("/recognize_face", facesHandler.Recognize)
		r.Post("/reset", statusHandler.Reset)
	})

	// Bulk training outlives the request timeout and client disconnects.
	s.router.With(middleware.Detached(constants.TrainAllTimeout)).Post("/train-all", statusHandler.TrainAll)
}
