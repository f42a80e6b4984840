package api

import (
	"net/http"
	"net/url"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rpupo63/portfolio-backend/database"
	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type authMiddleware struct {
	responder Responder
	logger    zerolog.Logger
	sessions  *sessionManager
	userRepo  *database.UserRepo
}

func newAuthMiddleware(sessions *sessionManager, userRepo *database.UserRepo) authMiddleware {
	logger := log.With().Str("handlerName", "authMiddleware").Logger()
	return authMiddleware{
		responder: NewResponder(logger),
		logger:    logger,
		sessions:  sessions,
		userRepo:  userRepo,
	}
}

// loadSession decodes the session cookie into the request context. A bad or
// expired cookie is dropped and the request continues anonymously.
func (m authMiddleware) loadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, err := m.sessions.read(r)
		if err != nil {
			m.logger.Debug().Err(err).Msg("discarding session cookie")
			m.sessions.clear(w)
			next.ServeHTTP(w, r)
			return
		}
		if principal == nil {
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(ctxWithPrincipal(r.Context(), principal)))
	})
}

func (m authMiddleware) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ctxGetPrincipal(r.Context()) == nil {
			m.loginRequired(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireAdmin checks the admin flag against the store so a revoked admin
// loses access without waiting for the session to expire.
func (m authMiddleware) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal := ctxGetPrincipal(r.Context())
		if principal == nil {
			m.loginRequired(w, r)
			return
		}

		user, err := m.userRepo.FindByID(r.Context(), principal.UserID)
		if err != nil {
			if database.IsNotFound(err) {
				m.sessions.clear(w)
				m.loginRequired(w, r)
				return
			}
			m.responder.WriteError(w, errs.NewDatabaseError("find", "user", err))
			return
		}

		if !user.IsAdmin {
			if wantsJSON(r) {
				m.responder.WriteError(w, errs.NewAdminRequiredError())
				return
			}
			setFlash(w, flashDanger, "Access denied. Only administrators can access this page.")
			redirect(w, r, "/")
			return
		}

		refreshed := &services.Principal{UserID: user.ID, Name: user.Name, IsAdmin: true}
		next.ServeHTTP(w, r.WithContext(ctxWithPrincipal(r.Context(), refreshed)))
	})
}

func (m authMiddleware) loginRequired(w http.ResponseWriter, r *http.Request) {
	if wantsJSON(r) {
		m.responder.WriteError(w, errs.NewSessionRequiredError())
		return
	}
	setFlash(w, flashWarning, "Please log in to access this page.")
	redirect(w, r, "/login?next="+url.QueryEscape(r.URL.RequestURI()))
}

type statusResponseWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusResponseWriter) WriteHeader(statusCode int) {
	if !w.wroteHeader {
		w.status = statusCode
		w.wroteHeader = true
		w.ResponseWriter.WriteHeader(statusCode)
	}
}

func (w *statusResponseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

func LogInternalServerErrors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		srw := &statusResponseWriter{ResponseWriter: w, status: 200}

		defer func() {
			if err := recover(); err != nil {
				if err == http.ErrAbortHandler {
					panic(err)
				}
				log.Error().
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Interface("panic", err).
					Str("stack", string(debug.Stack())).
					Msg("Recovered from panic")

				// Write 500 if nothing written yet
				if !srw.wroteHeader {
					NewResponder(log.Logger).WriteJSONStatus(srw, http.StatusInternalServerError, ErrorResponse{
						Error:  "Internal Server Error",
						Status: "error",
					})
				}
			}
		}()

		next.ServeHTTP(srw, r)

		// Log 500s that weren't panics (e.g. set by handlers)
		if srw.status == http.StatusInternalServerError {
			log.Error().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Msg("500 error response")
		}
	})
}

// corsMiddleware allows credentialed requests from the accepted origins
func corsMiddleware(acceptedOrigins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   acceptedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}

// HTTPLoggingMiddleware logs each request at a level chosen by its status code
func HTTPLoggingMiddleware(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			srw := &statusResponseWriter{ResponseWriter: w, status: 200}

			next.ServeHTTP(srw, r)

			duration := time.Since(start)

			var logEvent *zerolog.Event
			switch {
			case srw.status >= 500:
				logEvent = logger.Error()
			case srw.status >= 400:
				logEvent = logger.Warn()
			default:
				logEvent = logger.Info()
			}

			logEvent.
				Str("requestId", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", srw.status).
				Dur("duration", duration).
				Str("remote_addr", r.RemoteAddr).
				Msg("HTTP Request")
		})
	}
}
