package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"quizgame"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/sessions"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	db       *quizgame.DB
	store    sessions.Store
	tracker  *quizgame.Tracker
	locks    *quizgame.SessionLocks
	pageSize int
}

// NewServer wires the quiz store, the session store and the random play engine.
// A nil rnd uses a time-seeded generator.
func NewServer(db *quizgame.DB, store sessions.Store, rnd quizgame.Uniform, pageSize int) *Server {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &Server{
		db:       db,
		store:    store,
		tracker:  quizgame.NewTracker(quizgame.NewSelector(db, rnd)),
		locks:    quizgame.NewSessionLocks(),
		pageSize: pageSize,
	}
}

func main() {
	cfg := quizgame.ConfigFromEnv()

	var (
		addr    = flag.String("addr", cfg.HTTPAddr, "HTTP listen address")
		driver  = flag.String("driver", cfg.DBDriver, "Database driver (sqlite3, sqlite, postgres)")
		dsn     = flag.String("db", cfg.DBDSN, "Database DSN or file path")
		verbose = flag.Bool("verbose", cfg.Verbose, "Enable verbose debugging output")
	)
	flag.Parse()

	cfg.HTTPAddr, cfg.DBDriver, cfg.DBDSN, cfg.Verbose = *addr, *driver, *dsn, *verbose
	quizgame.SetVerbose(cfg.Verbose)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize database
	db, err := quizgame.OpenDB(ctx, cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.CloseDB()

	// Create tables
	if err := db.CreateTables(ctx); err != nil {
		log.Fatalf("Failed to create tables: %v", err)
	}

	// Initialize session store
	store, err := newSessionStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to create session store: %v", err)
	}
	if cfg.SessionSecret == quizgame.DefaultSessionSecret {
		log.Printf("Warning: using the development session secret, set SESSION_SECRET")
	}

	server := NewServer(db, store, nil, cfg.PageSize)

	log.Printf("Starting server on %s (db=%s, sessions=%s)", cfg.HTTPAddr, db.Driver(), cfg.SessionBackend)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, server.Routes(cfg.CORSOrigins)))
}

func newSessionStore(ctx context.Context, cfg quizgame.Config) (sessions.Store, error) {
	switch cfg.SessionBackend {
	case quizgame.SessionBackendFilesystem, "":
		if cfg.SessionDir != "" {
			if err := os.MkdirAll(cfg.SessionDir, 0700); err != nil {
				return nil, fmt.Errorf("failed to create session directory: %w", err)
			}
		}
		store := sessions.NewFilesystemStore(cfg.SessionDir, []byte(cfg.SessionSecret))
		store.Options = &sessions.Options{
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		}
		store.MaxAge(cfg.SessionMaxAge)
		// values stay on disk, only the id travels in the cookie
		store.MaxLength(0)
		return store, nil
	case quizgame.SessionBackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		store := quizgame.NewRedisStore(client, []byte(cfg.SessionSecret))
		store.MaxAge(cfg.SessionMaxAge)
		if err := store.Ping(ctx); err != nil {
			return nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.RedisAddr, err)
		}
		return store, nil
	case quizgame.SessionBackendCookie:
		log.Printf("Warning: cookie sessions cannot serialize concurrent requests of one player, use %q or %q",
			quizgame.SessionBackendFilesystem, quizgame.SessionBackendRedis)
		store := sessions.NewCookieStore([]byte(cfg.SessionSecret))
		store.Options = &sessions.Options{
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		}
		store.MaxAge(cfg.SessionMaxAge)
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported session backend: %s", cfg.SessionBackend)
	}
}

// Routes builds the HTTP handler. CORS is only enabled when origins are given.
func (s *Server) Routes(corsOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	if len(corsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   corsOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	r.Route("/quizzes", func(qr chi.Router) {
		qr.Get("/", s.handleListQuizzes)
		qr.Post("/", s.handleCreateQuiz)

		qr.Get("/randomplay", s.handleRandomPlay)
		qr.Post("/randomplay", s.handleRandomPlay)
		qr.With(s.loadQuiz).Get("/randomcheck/{quizID}", s.handleRandomCheck)
		qr.With(s.loadQuiz).Post("/randomcheck/{quizID}", s.handleRandomCheck)

		qr.Route("/{quizID}", func(ir chi.Router) {
			ir.Use(s.loadQuiz)
			ir.Get("/", s.handleShowQuiz)
			ir.Put("/", s.handleUpdateQuiz)
			ir.Delete("/", s.handleDeleteQuiz)
			ir.Get("/play", s.handlePlayQuiz)
			ir.Get("/check", s.handleCheckQuiz)
		})
	})

	r.Get("/users/{userID}/quizzes", s.handleListQuizzes)

	return r
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// writeError maps quiz store errors to HTTP statuses
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, quizgame.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		http.Error(w, "Request timed out", http.StatusServiceUnavailable)
	default:
		log.Printf("Request failed: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
