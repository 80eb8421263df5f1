package server

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/alnah/go-html2img"
	"github.com/alnah/go-html2img/internal/assets"
)

// Preview bounds used when the client sends none.
const (
	defaultPreviewWidth  = 480
	defaultPreviewHeight = 480
)

// stateView is the JSON shape of the session state sent to the page.
type stateView struct {
	html2img.AppState
	ActivePreset string `json:"activePreset"`
	CanExport    bool   `json:"canExport"`
	Message      string `json:"message"`
}

func newStateView(s html2img.AppState) stateView {
	return stateView{
		AppState:     s,
		ActivePreset: s.ActivePreset(),
		CanExport:    s.CanExport(),
		Message:      s.Status.Message(),
	}
}

// statusView is a status with its rendered message.
type statusView struct {
	html2img.Status
	Message string `json:"message"`
}

func newStatusView(s html2img.Status) statusView {
	return statusView{Status: s, Message: s.Message()}
}

// errorResponse is the body of every non-2xx JSON reply.
type errorResponse struct {
	Error  string      `json:"error"`
	Status *statusView `json:"status,omitempty"`
}

// exportRequest optionally overrides the session settings before an export.
// Overrides are applied to the shared state, as if typed in the editor.
type exportRequest struct {
	Markup  *string `json:"markup,omitempty"`
	Preset  string  `json:"preset,omitempty"`
	Width   int     `json:"width,omitempty"`
	Height  int     `json:"height,omitempty"`
	Format  string  `json:"format,omitempty"`
	Quality int     `json:"quality,omitempty"`
}

// actions converts the overrides into reducer actions, in application order.
func (r exportRequest) actions() []html2img.Action {
	var out []html2img.Action
	if r.Markup != nil {
		out = append(out, html2img.Action{Kind: html2img.ActionSetMarkup, Markup: *r.Markup})
	}
	if r.Preset != "" {
		out = append(out, html2img.Action{Kind: html2img.ActionSelectPreset, Preset: r.Preset})
	}
	if r.Width != 0 || r.Height != 0 {
		out = append(out, html2img.Action{Kind: html2img.ActionSetDimensions, Width: r.Width, Height: r.Height})
	}
	if r.Format != "" {
		out = append(out, html2img.Action{Kind: html2img.ActionSetFormat, Format: r.Format})
	}
	if r.Quality != 0 {
		out = append(out, html2img.Action{Kind: html2img.ActionSetQuality, Quality: r.Quality})
	}
	return out
}

// internalActions drive export bookkeeping and are not accepted from clients.
var internalActions = map[html2img.ActionKind]bool{
	html2img.ActionExportStarted:  true,
	html2img.ActionExportFinished: true,
}

func (s *Server) handleIndex(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", assets.IndexPage())
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handlePresets(c *gin.Context) {
	c.JSON(http.StatusOK, html2img.DefaultRegistry())
}

func (s *Server) handlePresetMatch(c *gin.Context) {
	w := html2img.ParseDimension(c.Query("width"))
	h := html2img.ParseDimension(c.Query("height"))
	c.JSON(http.StatusOK, gin.H{
		"width":  w,
		"height": h,
		"label":  html2img.Reconcile(w, h),
	})
}

func (s *Server) handleState(c *gin.Context) {
	c.JSON(http.StatusOK, newStateView(s.State()))
}

func (s *Server) handleAction(c *gin.Context) {
	var a html2img.Action
	if err := c.ShouldBindJSON(&a); err != nil {
		s.fail(c, http.StatusBadRequest, fmt.Errorf("decoding action: %w", err))
		return
	}
	if internalActions[a.Kind] {
		s.fail(c, http.StatusBadRequest, fmt.Errorf("%w: %q is not accepted over HTTP", html2img.ErrUnknownAction, a.Kind))
		return
	}

	reduce := s.reduce
	if a.Kind == html2img.ActionDismissStatus {
		reduce = s.dismissStatus
	}
	next, err := reduce(a)
	if err != nil {
		s.fail(c, statusCodeFor(err), err)
		return
	}
	c.JSON(http.StatusOK, newStateView(next))
}

// dismissStatus returns both the session and the reporter to ready once the
// client has shown the final status. Holding mu keeps exports from starting
// in between.
func (s *Server) dismissStatus(a html2img.Action) (html2img.AppState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := html2img.Reduce(s.state, a)
	if err != nil {
		return s.state, err
	}
	s.state = next
	s.studio.Reporter().Reset()
	return next, nil
}

func (s *Server) handleExport(c *gin.Context) {
	var body exportRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
			s.fail(c, http.StatusBadRequest, fmt.Errorf("decoding export request: %w", err))
			return
		}
	}

	started, prev, err := s.startExport(body.actions())
	if err != nil {
		s.fail(c, statusCodeFor(err), err)
		return
	}

	req := s.request(started)
	art, err := s.studio.Export(c.Request.Context(), req)

	final := s.studio.Reporter().Current()
	switch {
	case errors.Is(err, html2img.ErrExportInProgress):
		final = prev
	case err != nil && final.Phase != html2img.PhaseFailed:
		final = html2img.Status{Phase: html2img.PhaseFailed, Format: req.Format, Reason: err.Error()}
	}
	_, _ = s.reduce(html2img.Action{Kind: html2img.ActionExportFinished, Status: &final})

	if err != nil {
		_ = c.Error(err)
		view := newStatusView(final)
		c.JSON(statusCodeFor(err), errorResponse{Error: err.Error(), Status: &view})
		return
	}

	s.log.WithFields(logrus.Fields{
		"filename":   art.Filename,
		"bytes":      art.Size(),
		"request_id": c.GetString(requestIDKey),
	}).Info("export delivered")

	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": art.Filename}))
	c.Data(http.StatusOK, art.MIME, art.Data)
}

// startExport applies overrides and marks the session busy in one step.
// On error nothing is committed. It returns the state to export and the
// status it replaced.
func (s *Server) startExport(overrides []html2img.Action) (html2img.AppState, html2img.Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state
	prev := s.state.Status
	for _, a := range append(overrides, html2img.Action{Kind: html2img.ActionExportStarted}) {
		var err error
		if next, err = html2img.Reduce(next, a); err != nil {
			return s.state, prev, err
		}
	}
	s.state = next
	return next, prev, nil
}

func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, newStatusView(s.studio.Reporter().Current()))
}

func (s *Server) handleStatusStream(c *gin.Context) {
	updates, cancel := s.studio.Reporter().Subscribe()
	defer cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case st, ok := <-updates:
			if !ok {
				return false
			}
			c.SSEvent("status", newStatusView(st))
			return true
		}
	})
}

func (s *Server) handlePreview(c *gin.Context) {
	maxW, err := queryInt(c, "maxWidth", defaultPreviewWidth)
	if err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}
	maxH, err := queryInt(c, "maxHeight", defaultPreviewHeight)
	if err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}

	data, err := s.studio.Preview(c.Request.Context(), s.request(s.State()), maxW, maxH)
	if err != nil {
		s.fail(c, statusCodeFor(err), err)
		return
	}
	c.Data(http.StatusOK, html2img.FormatPNG.MIME(), data)
}

func (s *Server) handleOverlay(c *gin.Context) {
	data, err := s.studio.Overlay(c.Request.Context(), s.request(s.State()))
	if err != nil {
		s.fail(c, statusCodeFor(err), err)
		return
	}
	c.Data(http.StatusOK, html2img.FormatPNG.MIME(), data)
}

// fail records err on the context and writes it as JSON.
func (s *Server) fail(c *gin.Context, code int, err error) {
	_ = c.Error(err)
	c.JSON(code, errorResponse{Error: err.Error()})
}

// queryInt reads a positive integer query parameter, or def when absent.
func queryInt(c *gin.Context, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s: must be a positive integer, got %q", key, raw)
	}
	return n, nil
}

// statusCodeFor maps library errors to HTTP status codes.
func statusCodeFor(err error) int {
	switch {
	case errors.Is(err, html2img.ErrExportInProgress):
		return http.StatusConflict
	case errors.Is(err, html2img.ErrExportTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, html2img.ErrEmptyMarkup),
		errors.Is(err, html2img.ErrInvalidDimensions),
		errors.Is(err, html2img.ErrInvalidQuality),
		errors.Is(err, html2img.ErrUnknownFormat),
		errors.Is(err, html2img.ErrUnknownAction),
		errors.Is(err, html2img.ErrPresetNotFound),
		errors.Is(err, html2img.ErrPresetShadowed):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
