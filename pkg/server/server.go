// Package server exposes visualization panels over HTTP.
//
// Each client creates a session, which owns one running [panel.Panel]. The
// client then drives the panel with JSON requests (fetch a range, forward
// pointer events, toggle autoplay, move the slider) and polls rendered frames
// as PNG, SVG or JSON draw lists.
//
// # Routes
//
//	GET    /healthz
//	GET    /api/blocks?start=&end=             raw points of a range
//	POST   /api/sessions                       create a session
//	DELETE /api/sessions/{id}
//	GET    /api/sessions/{id}/status
//	POST   /api/sessions/{id}/fetch            {"start":1,"end":10,"wait":true}
//	POST   /api/sessions/{id}/input            {"kind":"down","id":0,"x":10,"y":20}
//	POST   /api/sessions/{id}/zoom             {"factor":0.9}
//	POST   /api/sessions/{id}/pan              {"dx":5,"dy":0}
//	POST   /api/sessions/{id}/fit
//	POST   /api/sessions/{id}/resize           {"width":800,"height":600}
//	POST   /api/sessions/{id}/autoplay         {"on":true}
//	PUT    /api/sessions/{id}/position         {"position":3}
//	GET    /api/sessions/{id}/frame.{format}   png, svg or json
//	GET    /api/sessions/{id}/graph.{format}   dot or svg
//
// Errors are returned as {"error": message, "code": code}.
package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/blockscape/pkg/blocks"
	"github.com/matzehuels/blockscape/pkg/errors"
	"github.com/matzehuels/blockscape/pkg/gesture"
	"github.com/matzehuels/blockscape/pkg/panel"
	"github.com/matzehuels/blockscape/pkg/provider"
	"github.com/matzehuels/blockscape/pkg/render/nodelink"
	"github.com/matzehuels/blockscape/pkg/render/sink"
	"github.com/matzehuels/blockscape/pkg/session"
	"github.com/matzehuels/blockscape/pkg/viewport"
)

// maxBody bounds request bodies.
const maxBody = 1 << 20

// Server routes API requests to sessions.
type Server struct {
	provider provider.Provider
	sessions *session.Registry
	logger   *log.Logger
	base     context.Context
	panelOps []panel.Option
	router   chi.Router
}

// Option configures a [Server].
type Option func(*Server)

// WithLogger sets the request and panel logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithPanelOptions sets the options every new session panel is created with.
func WithPanelOptions(opts ...panel.Option) Option {
	return func(s *Server) { s.panelOps = append(s.panelOps, opts...) }
}

// WithContext sets the context session panels run under. Cancelling it
// stops every panel.
func WithContext(ctx context.Context) Option {
	return func(s *Server) {
		if ctx != nil {
			s.base = ctx
		}
	}
}

// New returns a server reading from p and storing sessions in reg.
func New(p provider.Provider, reg *session.Registry, opts ...Option) *Server {
	s := &Server{
		provider: p,
		sessions: reg,
		logger:   log.New(io.Discard),
		base:     context.Background(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(cors)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "sessions": s.sessions.Len()})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/blocks", s.handleBlocks)
		r.Post("/sessions", s.handleCreate)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Use(s.withSession)
			r.Delete("/", s.handleDelete)
			r.Get("/status", s.handleStatus)
			r.Post("/fetch", s.handleFetch)
			r.Post("/input", s.handleInput)
			r.Post("/zoom", s.handleZoom)
			r.Post("/pan", s.handlePan)
			r.Post("/fit", s.handleFit)
			r.Post("/resize", s.handleResize)
			r.Post("/autoplay", s.handleAutoplay)
			r.Put("/position", s.handlePosition)
			r.Get("/frame.{format}", s.handleFrame)
			r.Get("/graph.{format}", s.handleGraph)
		})
	})
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		began := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(began),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type sessionKey struct{}

func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.sessions.Get(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, sess)))
	})
}

func sessionFrom(r *http.Request) *session.Session {
	return r.Context().Value(sessionKey{}).(*session.Session)
}

func (s *Server) handleBlocks(w http.ResponseWriter, r *http.Request) {
	start, err := intParam(r, "start")
	if err != nil {
		writeError(w, err)
		return
	}
	end, err := intParam(r, "end")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := errors.ValidateBlockRange(start, end); err != nil {
		writeError(w, err)
		return
	}

	points, err := s.provider.Fetch(r.Context(), start, end)
	if err != nil {
		writeError(w, err)
		return
	}
	data, err := blocks.Encode(points)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

type createRequest struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Start  *int    `json:"start,omitempty"`
	End    *int    `json:"end,omitempty"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := decodeOptional(r, &req); err != nil {
		writeError(w, err)
		return
	}
	opts := append([]panel.Option{panel.WithLogger(s.logger)}, s.panelOps...)
	if req.Width != 0 || req.Height != 0 {
		if err := errors.ValidateCanvasSize(req.Width, req.Height, viewport.Margin); err != nil {
			writeError(w, err)
			return
		}
		opts = append(opts, panel.WithCanvas(req.Width, req.Height))
	}
	if (req.Start == nil) != (req.End == nil) {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "start and end must be given together"))
		return
	}
	if req.Start != nil {
		if err := errors.ValidateBlockRange(*req.Start, *req.End); err != nil {
			writeError(w, err)
			return
		}
	}

	sess, err := s.sessions.Create(s.base, func() *panel.Panel {
		return panel.New(s.provider, opts...)
	})
	if err != nil {
		writeError(w, err)
		return
	}
	if req.Start != nil {
		if err := sess.Panel.Fetch(*req.Start, *req.End); err != nil {
			writeError(w, err)
			return
		}
	}
	s.logger.Info("session created", "id", sess.ID)
	writeJSON(w, http.StatusCreated, sess)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	s.sessions.Delete(sessionFrom(r).ID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st, err := sessionFrom(r).Panel.Status()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

type fetchRequest struct {
	Start int  `json:"start"`
	End   int  `json:"end"`
	Wait  bool `json:"wait"`
}

func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	var req fetchRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	p := sessionFrom(r).Panel

	if !req.Wait {
		if err := p.Fetch(req.Start, req.End); err != nil {
			writeError(w, err)
			return
		}
		s.writeStatus(w, p, http.StatusAccepted)
		return
	}
	if err := p.FetchWait(r.Context(), req.Start, req.End); err != nil {
		writeError(w, err)
		return
	}
	s.writeStatus(w, p, http.StatusOK)
}

type inputRequest struct {
	Kind   string  `json:"kind"`
	ID     int     `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	DeltaY float64 `json:"delta_y"`
}

func (in inputRequest) event() (gesture.Event, error) {
	kind, ok := gesture.ParseKind(in.Kind)
	if !ok {
		return gesture.Event{}, errors.New(errors.ErrCodeInvalidInput, "unknown event kind %q", in.Kind)
	}
	return gesture.Event{Kind: kind, ID: in.ID, X: in.X, Y: in.Y, DeltaY: in.DeltaY}, nil
}

// handleInput accepts a single event or a batch {"events": [...]}.
func (s *Server) handleInput(w http.ResponseWriter, r *http.Request) {
	var req struct {
		inputRequest
		Events []inputRequest `json:"events"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	batch := req.Events
	if len(batch) == 0 {
		batch = []inputRequest{req.inputRequest}
	}

	events := make([]gesture.Event, 0, len(batch))
	for _, in := range batch {
		ev, err := in.event()
		if err != nil {
			writeError(w, err)
			return
		}
		events = append(events, ev)
	}

	p := sessionFrom(r).Panel
	for _, ev := range events {
		if err := p.Input(ev); err != nil {
			writeError(w, err)
			return
		}
	}
	s.writeStatus(w, p, http.StatusOK)
}

func (s *Server) handleZoom(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Factor float64 `json:"factor"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	p := sessionFrom(r).Panel
	if err := p.Zoom(req.Factor); err != nil {
		writeError(w, err)
		return
	}
	s.writeStatus(w, p, http.StatusOK)
}

func (s *Server) handlePan(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DX float64 `json:"dx"`
		DY float64 `json:"dy"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	p := sessionFrom(r).Panel
	if err := p.Pan(req.DX, req.DY); err != nil {
		writeError(w, err)
		return
	}
	s.writeStatus(w, p, http.StatusOK)
}

func (s *Server) handleFit(w http.ResponseWriter, r *http.Request) {
	p := sessionFrom(r).Panel
	if err := p.Fit(); err != nil {
		writeError(w, err)
		return
	}
	s.writeStatus(w, p, http.StatusOK)
}

func (s *Server) handleResize(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	p := sessionFrom(r).Panel
	if err := p.Resize(req.Width, req.Height); err != nil {
		writeError(w, err)
		return
	}
	s.writeStatus(w, p, http.StatusOK)
}

func (s *Server) handleAutoplay(w http.ResponseWriter, r *http.Request) {
	var req struct {
		On bool `json:"on"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	p := sessionFrom(r).Panel
	if err := p.SetAutoplay(req.On); err != nil {
		writeError(w, err)
		return
	}
	s.writeStatus(w, p, http.StatusOK)
}

func (s *Server) handlePosition(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Position *int `json:"position"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Position == nil {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "position is required"))
		return
	}
	p := sessionFrom(r).Panel
	if err := p.Select(*req.Position); err != nil {
		writeError(w, err)
		return
	}
	s.writeStatus(w, p, http.StatusOK)
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	v, err := sessionFrom(r).Panel.View()
	if err != nil {
		writeError(w, err)
		return
	}

	switch format := chi.URLParam(r, "format"); format {
	case "png":
		var opts []sink.PNGOption
		if raw := r.URL.Query().Get("scale"); raw != "" {
			scale, err := strconv.ParseFloat(raw, 64)
			if err != nil || scale <= 0 || scale > 4 {
				writeError(w, errors.New(errors.ErrCodeInvalidInput, "scale must be in (0, 4] (got %q)", raw))
				return
			}
			opts = append(opts, sink.WithScale(scale))
		}
		data, err := sink.RenderPNG(v.Frame, opts...)
		if err != nil {
			writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "render png"))
			return
		}
		writeBytes(w, "image/png", data)
	case "svg":
		writeBytes(w, "image/svg+xml", sink.RenderSVG(v.Frame, sink.WithTooltip(v.Tooltip)))
	case "json":
		data, err := sink.RenderJSON(v.Frame, sink.WithJSONTooltip(v.Tooltip))
		if err != nil {
			writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "render json"))
			return
		}
		writeBytes(w, "application/json", data)
	default:
		writeError(w, errors.New(errors.ErrCodeUnsupported, "unsupported frame format %q", format))
	}
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	block, clusters, err := sessionFrom(r).Panel.Clusters()
	if err != nil {
		writeError(w, err)
		return
	}
	dot := nodelink.ToDOT(clusters, nodelink.Options{
		Block:    block,
		Detailed: r.URL.Query().Get("detailed") == "true",
	})

	switch format := chi.URLParam(r, "format"); format {
	case "dot":
		writeBytes(w, "text/vnd.graphviz", []byte(dot))
	case "svg":
		data, err := nodelink.RenderSVG(r.Context(), dot)
		if err != nil {
			writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "render graph"))
			return
		}
		writeBytes(w, "image/svg+xml", data)
	default:
		writeError(w, errors.New(errors.ErrCodeUnsupported, "unsupported graph format %q", format))
	}
}

func (s *Server) writeStatus(w http.ResponseWriter, p *panel.Panel, code int) {
	st, err := p.Status()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, code, st)
}

func intParam(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, errors.New(errors.ErrCodeInvalidInput, "missing %s parameter", name)
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidInput, "%s must be an integer (got %q)", name, raw)
	}
	return n, nil
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBody)).Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body")
	}
	return nil
}

// decodeOptional accepts an empty body.
func decodeOptional(r *http.Request, v any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBody)).Decode(v)
	if err != nil && err != io.EOF {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body")
	}
	return nil
}

// statusCode maps an error to its HTTP status.
func statusCode(err error) int {
	switch {
	case errors.IsInputValidation(err):
		return http.StatusBadRequest
	case errors.IsFetch(err):
		return http.StatusBadGateway
	}
	switch errors.GetCode(err) {
	case errors.ErrCodeSessionNotFound, errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeEmptyResult:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeSuperseded:
		return http.StatusConflict
	case errors.ErrCodeUnsupported:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	body := map[string]string{"error": errors.UserMessage(err)}
	if code := errors.GetCode(err); code != "" {
		body["code"] = string(code)
	}
	writeJSON(w, statusCode(err), body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeBytes(w http.ResponseWriter, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
