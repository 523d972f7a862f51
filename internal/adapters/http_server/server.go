package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/rs/zerolog/log"
)

type Options struct {
	AllowedOrigins []string      // empty allows any origin
	RateLimit      int           // requests per client IP per RateWindow; 0 disables
	RateWindow     time.Duration // defaults to a minute
	Timeout        time.Duration
}

type Server struct{ mux *chi.Mux }

func New(o Options) *Server {
	if len(o.AllowedOrigins) == 0 {
		o.AllowedOrigins = []string{"*"}
	}
	if o.RateWindow <= 0 {
		o.RateWindow = time.Minute
	}
	if o.Timeout <= 0 {
		o.Timeout = 15 * time.Second
	}

	m := chi.NewRouter()

	// middlewares must be registered before any route
	m.Use(chimw.RealIP)
	m.Use(chimw.RequestID)
	m.Use(chimw.Recoverer)
	m.Use(cors.Handler(cors.Options{
		AllowedOrigins: o.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "If-None-Match"},
		ExposedHeaders: []string{"ETag"},
		MaxAge:         300,
	}))
	if o.RateLimit > 0 {
		m.Use(httprate.Limit(o.RateLimit, o.RateWindow,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
				writeProblem(w, http.StatusTooManyRequests, "Too Many Requests", "rate limit exceeded")
			})))
	}
	m.Use(Timeout(o.Timeout))
	m.Use(Metrics)
	m.Use(Logger(log.Logger))

	return &Server{mux: m}
}

func (s *Server) Mux() http.Handler { return s.mux }

// Mount attaches any extra handler (e.g., /metrics) to the router.
func (s *Server) Mount(path string, h http.Handler) {
	s.mux.Handle(path, h)
}
