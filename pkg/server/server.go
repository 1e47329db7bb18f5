package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/jakechorley/volunteer-hub/pkg/core/services"
	"github.com/jakechorley/volunteer-hub/pkg/db"
	"github.com/jakechorley/volunteer-hub/pkg/notify"
)

const (
	requestTimeout           = 30 * time.Second
	defaultHeartbeatInterval = 25 * time.Second
)

// Store defines the database operations used by the HTTP API
type Store interface {
	services.SignupStore
	GetNotifications(ctx context.Context, userID string, limit int) ([]db.Notification, error)
	Ping(ctx context.Context) error
}

// Subscriber opens a live notification stream for a user
type Subscriber interface {
	Subscribe(ctx context.Context, userID string) (<-chan notify.Message, func(), error)
}

// Deps holds the collaborators of the HTTP API. Approver may be nil when
// auto-accept is disabled.
type Deps struct {
	Store     Store
	Approver  services.Approver
	Evaluator services.Evaluator
	Hub       Subscriber
	Logger    *zap.Logger
	Now       func() time.Time
}

// Server is the volunteer signup HTTP API
type Server struct {
	store     Store
	approver  services.Approver
	evaluator services.Evaluator
	hub       Subscriber
	logger    *zap.Logger
	now       func() time.Time

	heartbeat time.Duration
	router    *chi.Mux
}

// New creates the HTTP API and its routes
func New(deps Deps) *Server {
	s := &Server{
		store:     deps.Store,
		approver:  deps.Approver,
		evaluator: deps.Evaluator,
		hub:       deps.Hub,
		logger:    deps.Logger,
		now:       deps.Now,
		heartbeat: defaultHeartbeatInterval,
	}
	if s.now == nil {
		s.now = time.Now
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		// Streams are long lived and must not inherit the request timeout
		r.Get("/users/{userId}/notifications/stream", s.handleNotificationStream)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(requestTimeout))

			r.Get("/health", s.handleHealth)
			r.Get("/shifts/{shiftId}/eligibility", s.handleEligibility)
			r.Post("/shifts/{shiftId}/signups", s.handleSignUp)
			r.Post("/signups/{signupId}/cancel", s.handleCancelSignup)
			r.Get("/users/{userId}/notifications", s.handleListNotifications)
		})
	})

	s.router = r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// requestLogger logs each request once it completes
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			logger.Debug("Handled request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())))
		})
	}
}
