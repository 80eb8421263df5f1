package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/browser"
	"github.com/sirupsen/logrus"

	"github.com/alnah/go-html2img"
	"github.com/alnah/go-html2img/internal/assets"
)

// Defaults for Options.
const (
	DefaultAddr         = "127.0.0.1:8080"
	DefaultMaxBodyBytes = 8 << 20
	shutdownTimeout     = 5 * time.Second
	readHeaderTimeout   = 10 * time.Second
)

// ErrListen is returned when the studio cannot bind its address.
var ErrListen = errors.New("cannot listen")

// Studio is the export backend the server drives.
type Studio interface {
	Export(ctx context.Context, req html2img.Request) (*html2img.Artifact, error)
	Preview(ctx context.Context, req html2img.Request, maxWidth, maxHeight int) ([]byte, error)
	Overlay(ctx context.Context, req html2img.Request) ([]byte, error)
	Reporter() *html2img.Reporter
}

// Compile-time interface implementation check.
var _ Studio = (*html2img.Studio)(nil)

// Options configures a Server.
type Options struct {
	Addr         string // Listen address (default 127.0.0.1:8080)
	Open         bool   // Open the studio in the default browser once listening
	MaxBodyBytes int64  // Request body limit (default 8MB)

	Markup    string // Initial editor content (default: embedded sample)
	CSS       string // Injected into every render
	SourceDir string // Base for relative asset references
	Basename  string // Artifact filename stem

	Logger *logrus.Logger

	// OnListen, when set, receives the studio URL once the port is bound.
	OnListen func(url string)
}

// Server is one web studio session.
type Server struct {
	studio Studio
	opts   Options
	log    *logrus.Logger
	engine *gin.Engine

	mu    sync.Mutex
	state html2img.AppState

	// openURL is browser.OpenURL outside tests.
	openURL func(string) error
}

// New creates a Server around studio.
func New(studio Studio, opts Options) *Server {
	if opts.Addr == "" {
		opts.Addr = DefaultAddr
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if opts.Markup == "" {
		opts.Markup = assets.DefaultSample()
	}
	if opts.Logger == nil {
		opts.Logger = logrus.New()
		opts.Logger.SetLevel(logrus.WarnLevel)
	}

	s := &Server{
		studio:  studio,
		opts:    opts,
		log:     opts.Logger,
		state:   html2img.NewAppState(opts.Markup),
		openURL: browser.OpenURL,
	}
	s.engine = gin.New()
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Handler returns the HTTP handler of the studio.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// State returns a snapshot of the session state.
func (s *Server) State() html2img.AppState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Server) setupMiddleware() {
	s.engine.Use(gin.Recovery())
	s.engine.Use(requestID())
	s.engine.Use(accessLog(s.log))
	s.engine.Use(limitBody(s.opts.MaxBodyBytes))
}

func (s *Server) setupRoutes() {
	s.engine.GET("/", s.handleIndex)
	s.engine.GET("/healthz", s.handleHealth)

	api := s.engine.Group("/api")
	{
		api.GET("/presets", s.handlePresets)
		api.GET("/presets/match", s.handlePresetMatch)
		api.GET("/state", s.handleState)
		api.POST("/actions", s.handleAction)
		api.POST("/export", s.handleExport)
		api.GET("/status", s.handleStatus)
		api.GET("/status/stream", s.handleStatusStream)
		api.POST("/preview", s.handlePreview)
		api.POST("/overlay", s.handleOverlay)
	}
}

// Run listens on the configured address and serves until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrListen, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is canceled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(ln)
	}()

	url := "http://" + ln.Addr().String()
	s.log.WithField("url", url).Info("studio listening")
	if s.opts.OnListen != nil {
		s.opts.OnListen(url)
	}
	if s.opts.Open {
		if err := s.openURL(url); err != nil {
			s.log.WithError(err).Warn("could not open browser")
		}
	}

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

// request builds a render request for state.
func (s *Server) request(state html2img.AppState) html2img.Request {
	req := html2img.RequestFromState(state)
	req.CSS = s.opts.CSS
	req.SourceDir = s.opts.SourceDir
	req.Basename = s.opts.Basename
	return req
}

// reduce applies a to the shared state under the lock.
func (s *Server) reduce(a html2img.Action) (html2img.AppState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := html2img.Reduce(s.state, a)
	if err != nil {
		return s.state, err
	}
	s.state = next
	return next, nil
}
