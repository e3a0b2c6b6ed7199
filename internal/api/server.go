// Package api is the HTTP surface of the service: user accounts, care
// data CRUD, the nearby lookup, the doctor finder pipeline, and the
// chatbot proxy.
package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/saransh482003/healthassist/internal/chat"
	"github.com/saransh482003/healthassist/internal/finder"
	"github.com/saransh482003/healthassist/internal/model"
	"github.com/saransh482003/healthassist/internal/monitoring"
	"github.com/saransh482003/healthassist/internal/store"
	"github.com/saransh482003/healthassist/pkg/geoip"
	"github.com/saransh482003/healthassist/pkg/places"
)

// DoctorFinder runs the discovery pipeline.
type DoctorFinder interface {
	FindDoctors(ctx context.Context, req finder.Request) (model.AggregateReport, error)
}

// ChatAssistant answers health questions.
type ChatAssistant interface {
	Reply(ctx context.Context, question string, history chat.History) (string, error)
}

// Server wires handlers to their collaborators.
type Server struct {
	store     store.Store
	places    places.Client
	finder    DoctorFinder
	assistant ChatAssistant
	geo       geoip.Client
	collector *monitoring.Collector
	recorder  *monitoring.Recorder

	sessions *sessionStore
}

// Option configures the Server.
type Option func(*Server)

// WithCollector attaches the analytics collector.
func WithCollector(c *monitoring.Collector) Option {
	return func(s *Server) { s.collector = c }
}

// WithRecorder attaches the finder activity recorder.
func WithRecorder(r *monitoring.Recorder) Option {
	return func(s *Server) { s.recorder = r }
}

// NewServer creates the API server.
func NewServer(st store.Store, pc places.Client, df DoctorFinder, ca ChatAssistant, geo geoip.Client, opts ...Option) *Server {
	s := &Server{
		store:     st,
		places:    pc,
		finder:    df,
		assistant: ca,
		geo:       geo,
		sessions:  newSessionStore(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/users", s.handleRegister)
		r.Post("/login", s.handleLogin)

		r.Get("/doctors/search", s.handleDoctorSearch)
		r.Get("/nearby_places", s.handleNearbyPlaces)
		r.Get("/place-details", s.handlePlaceDetails)
		r.Post("/doctor_finder", s.handleDoctorFinder)
		r.Post("/chatbot", s.handleChatbot)
		r.Get("/location", s.handleLocation)
		r.Get("/yoga_videos", s.handleYogaVideos)
		r.Post("/symptoms", s.handleLogSymptom)
		r.Get("/analytics/symptoms", s.handleSymptomAnalytics)

		// Per-user resources require a session token.
		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/users/me", s.handleCurrentUser)
			r.Put("/users/me", s.handleUpdateProfile)

			r.Post("/yoga_videos", s.handleAddYogaVideo)

			r.Post("/reminders", s.handleCreateReminder)
			r.Get("/reminders", s.handleListReminders)
			r.Put("/reminders/{id}", s.handleUpdateReminder)
			r.Delete("/reminders/{id}", s.handleDeleteReminder)

			r.Post("/medicine-logs", s.handleLogMedicine)
			r.Get("/users/me/health-summary", s.handleHealthSummary)

			r.Post("/emergency_contacts", s.handleCreateContact)
			r.Get("/emergency_contacts", s.handleListContacts)
			r.Delete("/emergency_contacts/{id}", s.handleDeleteContact)
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, map[string]string{"status": "ok"})
}

// requestLogger logs one line per request with latency and status.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		zap.L().Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

// sessionStore maps bearer tokens to user IDs. In-memory: sessions do
// not survive a restart.
type sessionStore struct {
	mu     sync.RWMutex
	tokens map[string]string
}

func newSessionStore() *sessionStore {
	return &sessionStore{tokens: make(map[string]string)}
}

func (ss *sessionStore) put(token, userID string) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.tokens[token] = userID
}

func (ss *sessionStore) get(token string) (string, bool) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	id, ok := ss.tokens[token]
	return id, ok
}
