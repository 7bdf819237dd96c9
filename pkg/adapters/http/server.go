package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/espalier"
	"github.com/aretw0/espalier/internal/logging"
	"github.com/aretw0/espalier/pkg/control"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/ports"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server implements ServerInterface over a running engine.
type Server struct {
	Engine   ports.Sampler
	Controls *control.Registry
	Recorder ports.Recorder
	Streams  *StreamManager
	Logger   *slog.Logger

	gatherer prometheus.Gatherer
	interval time.Duration
}

// Ensure Server implements ServerInterface
var _ ServerInterface = (*Server)(nil)

// Option configures the Server.
type Option func(*Server)

// WithControls exposes the registry through /controls.
func WithControls(reg *control.Registry) Option {
	return func(s *Server) { s.Controls = reg }
}

// WithRecorder serves /outputs/{label}/history from rec.
func WithRecorder(rec ports.Recorder) Option {
	return func(s *Server) { s.Recorder = rec }
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.Logger = logger }
}

// WithGatherer selects the Prometheus registry served on /metrics
// (default: prometheus.DefaultGatherer).
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// WithStreamInterval sets the default frame period of /events.
func WithStreamInterval(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.interval = d
		}
	}
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine ports.Sampler, opts ...Option) (http.Handler, error) {
	server := &Server{
		Engine:   engine,
		Streams:  NewStreamManager(),
		Logger:   logging.NewNop(),
		gatherer: prometheus.DefaultGatherer,
		interval: domain.DefaultSampleInterval,
	}
	for _, opt := range opts {
		opt(server)
	}
	server.Streams.logger = server.Logger

	doc, err := GetSwagger()
	if err != nil {
		return nil, err
	}
	validate, err := requestValidator(doc)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(enableCORS, validate)

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		spec, err := rawSpec()
		if err != nil {
			http.Error(w, "Failed to load spec", http.StatusInternalServerError)
			server.Logger.Error("Failed to load OpenAPI spec", "error", err)
			return
		}
		_, _ = w.Write(spec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(swaggerHTML))
	})
	r.Handle("/metrics", promhttp.HandlerFor(server.gatherer, promhttp.HandlerOpts{}))

	return HandlerFromMux(server, r), nil
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Espalier API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

type outputInfo struct {
	Label  string       `json:"label"`
	Bounds domain.Range `json:"bounds"`
}

type sample struct {
	Label string    `json:"label"`
	Value float64   `json:"value"`
	Time  time.Time `json:"time"`
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if swagger, err := GetSwagger(); err == nil && swagger.Info != nil {
		apiVersion = swagger.Info.Version
	}
	s.writeJSON(w, map[string]string{
		"app":         "espalier-http",
		"version":     strings.TrimSpace(espalier.Version),
		"api_version": apiVersion,
	})
}

// ListOutputs handles the GET /outputs request.
func (s *Server) ListOutputs(w http.ResponseWriter, r *http.Request) {
	outputs := s.Engine.Outputs()
	resp := make([]outputInfo, len(outputs))
	for i, out := range outputs {
		resp[i] = outputInfo{Label: out.Label, Bounds: out.Node.Bounds()}
	}
	s.writeJSON(w, resp)
}

// SampleOutput handles the GET /outputs/{label} request.
func (s *Server) SampleOutput(w http.ResponseWriter, r *http.Request, label string) {
	v, err := s.Engine.Sample(label)
	if err != nil {
		s.writeError(w, "Sample", err)
		return
	}
	s.writeJSON(w, sample{Label: label, Value: v, Time: time.Now()})
}

// GetHistory handles the GET /outputs/{label}/history request.
func (s *Server) GetHistory(w http.ResponseWriter, r *http.Request, label string) {
	if s.Recorder == nil {
		http.Error(w, "No recorder configured", http.StatusNotImplemented)
		return
	}
	if !s.hasOutput(label) {
		s.writeError(w, "History", fmt.Errorf("%q: %w", label, domain.ErrUnknownLabel))
		return
	}
	points, err := s.Recorder.Window(r.Context(), label)
	if err != nil {
		s.writeError(w, "History", err)
		return
	}
	if points == nil {
		points = []domain.Point{}
	}
	s.writeJSON(w, points)
}

// GetSnapshot handles the GET /snapshot request.
func (s *Server) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.Engine.Snapshot())
}

// ListControls handles the GET /controls request.
func (s *Server) ListControls(w http.ResponseWriter, r *http.Request) {
	if s.Controls == nil {
		s.writeJSON(w, []control.Info{})
		return
	}
	s.writeJSON(w, s.Controls.List())
}

// SetControl handles the PUT /controls/{name} request.
// Switches read any non-zero value as on.
func (s *Server) SetControl(w http.ResponseWriter, r *http.Request, name string) {
	var body SetControlRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.Logger.Warn("SetControl: Invalid request body", "error", err)
		return
	}
	if s.Controls == nil {
		s.writeError(w, "SetControl", fmt.Errorf("%q: %w", name, domain.ErrUnknownControl))
		return
	}

	if slider, err := s.Controls.Slider(name); err == nil {
		slider.Set(body.Value)
	} else if err := s.Controls.SetSwitch(name, body.Value != 0); err != nil {
		s.writeError(w, "SetControl", err)
		return
	}
	s.controlChanged(w, name)
}

// FlipControl handles the POST /controls/{name}/flip request.
func (s *Server) FlipControl(w http.ResponseWriter, r *http.Request, name string) {
	if s.Controls == nil {
		s.writeError(w, "FlipControl", fmt.Errorf("%q: %w", name, domain.ErrUnknownControl))
		return
	}
	sw, err := s.Controls.Switch(name)
	if err != nil {
		s.writeError(w, "FlipControl", err)
		return
	}
	sw.Flip()
	s.controlChanged(w, name)
}

// GetGraph handles the GET /graph request.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.Engine.Inspect())
}

// controlChanged answers with the new control state and tells stream
// subscribers about it.
func (s *Server) controlChanged(w http.ResponseWriter, name string) {
	for _, info := range s.Controls.List() {
		if info.Name != name {
			continue
		}
		if data, err := json.Marshal(info); err == nil {
			s.Streams.Broadcast(string(data))
		}
		s.Logger.Debug("control updated", "name", name, "value", info.Value)
		s.writeJSON(w, info)
		return
	}
	s.writeError(w, "Control", fmt.Errorf("%q: %w", name, domain.ErrUnknownControl))
}

func (s *Server) hasOutput(label string) bool {
	for _, out := range s.Engine.Outputs() {
		if out.Label == label {
			return true
		}
	}
	return false
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("response encode failed", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrUnknownLabel), errors.Is(err, domain.ErrUnknownControl):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, fmt.Sprintf("%s error: %v", op, err), http.StatusInternalServerError)
		s.Logger.Error(op+" failed", "error", err)
	}
}
