package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/klauspost/compress/gzhttp"
	"github.com/rs/cors"

	"github.com/meigma/asar"
)

// DefaultMaxUploadBytes bounds the size of an uploaded stylesheet.
const DefaultMaxUploadBytes int64 = 8 << 20

// FormField is the multipart field carrying the stylesheet.
const FormField = "theme"

// Converter turns a stylesheet into an archive. [asar.Client] satisfies it.
type Converter interface {
	Convert(ctx context.Context, css, fileName string) (*asar.Result, error)
}

// Server serves the conversion API.
type Server struct {
	conv           Converter
	logger         *slog.Logger
	maxUploadBytes int64
	allowedOrigins []string
	handler        http.Handler
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger for request logs.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMaxUploadBytes limits the request body size. Values below 1 keep
// the default.
func WithMaxUploadBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxUploadBytes = n
		}
	}
}

// WithAllowedOrigins sets the origins allowed by CORS. By default every
// origin is allowed.
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) {
		s.allowedOrigins = origins
	}
}

// New creates a server converting with conv.
func New(conv Converter, opts ...Option) *Server {
	s := &Server{
		conv:           conv,
		maxUploadBytes: DefaultMaxUploadBytes,
		allowedOrigins: []string{"*"},
	}
	for _, opt := range opts {
		opt(s)
	}

	router := mux.NewRouter()
	router.Use(s.logRequests)
	router.HandleFunc("/convert", s.handleConvert).Methods(http.MethodPost)
	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: s.allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{"Content-Disposition", "Content-Length", "X-Content-Digest"},
		MaxAge:         300,
	})
	s.handler = corsHandler.Handler(gzhttp.GzipHandler(router))
	return s
}

func (s *Server) log() *slog.Logger {
	if s.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.logger
}

// Handler returns the HTTP handler for the API.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Serve accepts connections on l until ctx is canceled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(l)
	}()
	s.log().Info("serving", "addr", l.Addr().String())

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ListenAndServe listens on addr and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	var lc net.ListenConfig
	l, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, l)
}
