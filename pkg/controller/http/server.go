package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/medassist-dev/medassist/pkg/service/report"
	"github.com/medassist-dev/medassist/pkg/usecase"
	"github.com/medassist-dev/medassist/pkg/utils/logging"
)

type Server struct {
	router *chi.Mux
	uc     *usecase.UseCases
	report *report.Generator
}

type Options func(*Server)

// WithReport enables GET /api/patients/{patientID}/report
func WithReport(gen *report.Generator) Options {
	return func(s *Server) {
		s.report = gen
	}
}

func New(uc *usecase.UseCases, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		uc:     uc,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Route("/api/patients", func(r chi.Router) {
		r.Get("/", s.listPatients)
		r.Post("/", s.registerPatient)
		r.Delete("/", s.clearAll)

		r.Route("/{patientID}", func(r chi.Router) {
			r.Get("/", s.getPatient)
			r.Delete("/", s.deletePatient)
			r.Get("/visits", s.listVisits)
			r.Get("/conversations", s.listConversations)
			if s.report != nil {
				r.Get("/report", s.patientReport)
			}
		})
	})

	r.Get("/api/conversations/{conversationID}/messages", s.listMessages)

	r.Route("/api/sessions", func(r chi.Router) {
		r.Post("/", s.createSession)

		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", s.getSession)
			r.Delete("/", s.deleteSession)
			r.Post("/start", s.startConsultation)
			r.Post("/turns", s.sendTurn)
			r.Post("/summary", s.summarize)
			r.Post("/resume", s.resume)
			r.Post("/end", s.endConsultation)
		})
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// requestLogger binds a logger carrying the request ID to the request context
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := logging.Default().With("request_id", middleware.GetReqID(r.Context()))
		next.ServeHTTP(w, r.WithContext(logging.With(r.Context(), logger)))
	})
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.From(r.Context()).Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
