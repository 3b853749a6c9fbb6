package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/formloom/formloom/pkg/usecase"
	"github.com/formloom/formloom/pkg/utils/logging"
)

// defaultHeartbeat is how often an idle SSE stream emits a comment line
// so intermediaries do not drop the connection.
const defaultHeartbeat = 15 * time.Second

type Server struct {
	router    *chi.Mux
	uc        *usecase.UseCases
	heartbeat time.Duration
}

type Options func(*Server)

// WithHeartbeat overrides the SSE keep-alive interval.
func WithHeartbeat(interval time.Duration) Options {
	return func(s *Server) {
		s.heartbeat = interval
	}
}

func New(uc *usecase.UseCases, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router:    r,
		uc:        uc,
		heartbeat: defaultHeartbeat,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler)

		r.Route("/forms", func(r chi.Router) {
			r.Get("/", s.listForms)
			r.Post("/", s.createForm)

			r.Route("/{formID}", func(r chi.Router) {
				r.Get("/", s.getForm)
				r.Put("/", s.updateForm)
				r.Delete("/", s.deleteForm)
				r.Get("/watch", s.watchForm)

				r.Route("/entries", func(r chi.Router) {
					r.Get("/", s.listEntries)
					r.Post("/draft", s.startDraft)
					r.Delete("/drafts", s.discardDrafts)
					r.Get("/watch", s.watchFormEntries)
				})
			})
		})

		r.Route("/entries/{entryID}", func(r chi.Router) {
			r.Get("/", s.getEntry)
			r.Delete("/", s.deleteEntry)
			r.Patch("/values", s.updateEntryValues)
			r.Post("/complete", s.completeEntry)
			r.Post("/edit-draft", s.startEditDraft)
			r.Post("/duplicate", s.duplicateEntry)
			r.Post("/reopen", s.reopenEntry)
			r.Get("/watch", s.watchEntry)
		})
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
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
