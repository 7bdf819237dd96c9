package mcp

import (
	"context"
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
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// GraphURI is the resource exposing the node graph.
const GraphURI = "espalier://graph"

// OutputInfo describes one labelled output.
type OutputInfo struct {
	Label  string       `json:"label" jsonschema_description:"Output label"`
	Bounds domain.Range `json:"bounds" jsonschema_description:"Declared value range"`
}

// OutputList is the result of list_outputs.
type OutputList struct {
	Outputs []OutputInfo `json:"outputs"`
}

// SampleResult is the result of sample.
type SampleResult struct {
	Labels []string  `json:"labels" jsonschema_description:"Sampled output labels"`
	Values []float64 `json:"values" jsonschema_description:"Values, in the same order as labels"`
	Time   time.Time `json:"time"`
}

// ControlList is the result of list_controls.
type ControlList struct {
	Controls []control.Info `json:"controls"`
}

type sampleArgs struct {
	Label string `json:"label,omitempty"`
}

type setInputArgs struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

type setToggleArgs struct {
	Name string `json:"name"`
	On   *bool  `json:"on,omitempty"`
}

// Server wraps an engine and its controls and exposes them as an MCP Server.
type Server struct {
	engine    ports.Sampler
	controls  *control.Registry
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// NewServer creates a new MCP Server instance. controls may be nil, in which
// case the control tools report every name as unknown.
func NewServer(engine ports.Sampler, controls *control.Registry, opts ...Option) *Server {
	if controls == nil {
		controls = control.NewRegistry()
	}
	s := &Server{
		engine:   engine,
		controls: controls,
		logger:   logging.NewNop(),
		mcpServer: server.NewMCPServer("espalier-mcp", strings.TrimSpace(espalier.Version),
			server.WithToolCapabilities(false),
			server.WithResourceCapabilities(false, false),
		),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying server, for in-process clients.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves MCP over SSE on addr until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, addr string) error {
	baseURL := "http://localhost" + addr
	if !strings.HasPrefix(addr, ":") {
		baseURL = "http://" + addr
	}

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_outputs",
		mcp.WithDescription("List the labelled outputs of the graph with their value ranges."),
		mcp.WithOutputSchema[OutputList](),
	), mcp.NewStructuredToolHandler(s.handleListOutputs))

	s.mcpServer.AddTool(mcp.NewTool("sample",
		mcp.WithDescription("Read the current value of one output, or of every output when label is omitted."),
		mcp.WithString("label", mcp.Description("Output label (optional)")),
		mcp.WithOutputSchema[SampleResult](),
	), mcp.NewStructuredToolHandler(s.handleSample))

	s.mcpServer.AddTool(mcp.NewTool("list_controls",
		mcp.WithDescription("List sliders and switches with their current values."),
		mcp.WithOutputSchema[ControlList](),
	), mcp.NewStructuredToolHandler(s.handleListControls))

	s.mcpServer.AddTool(mcp.NewTool("set_input",
		mcp.WithDescription("Move a slider. The value is clamped to the slider range."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Slider name")),
		mcp.WithNumber("value", mcp.Required(), mcp.Description("New position")),
		mcp.WithOutputSchema[control.Info](),
	), mcp.NewStructuredToolHandler(s.handleSetInput))

	s.mcpServer.AddTool(mcp.NewTool("set_toggle",
		mcp.WithDescription("Turn a switch on or off. Flips it when 'on' is omitted."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Switch name")),
		mcp.WithBoolean("on", mcp.Description("Desired state (optional)")),
		mcp.WithOutputSchema[control.Info](),
	), mcp.NewStructuredToolHandler(s.handleSetToggle))

	s.mcpServer.AddTool(mcp.NewTool("get_graph",
		mcp.WithDescription("Get the node graph for introspection."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		jsonBytes, err := json.Marshal(s.engine.Inspect())
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("inspect failed: %v", err)), nil
		}
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})
}

func (s *Server) handleListOutputs(ctx context.Context, request mcp.CallToolRequest, _ map[string]any) (OutputList, error) {
	outputs := s.engine.Outputs()
	list := OutputList{Outputs: make([]OutputInfo, len(outputs))}
	for i, out := range outputs {
		list.Outputs[i] = OutputInfo{Label: out.Label, Bounds: out.Node.Bounds()}
	}
	return list, nil
}

func (s *Server) handleSample(ctx context.Context, request mcp.CallToolRequest, args sampleArgs) (SampleResult, error) {
	if args.Label == "" {
		frame := s.engine.Snapshot()
		return SampleResult{Labels: frame.Labels, Values: frame.Values, Time: frame.Time}, nil
	}
	v, err := s.engine.Sample(args.Label)
	if err != nil {
		return SampleResult{}, fmt.Errorf("sample %q: %w", args.Label, err)
	}
	return SampleResult{Labels: []string{args.Label}, Values: []float64{v}, Time: time.Now()}, nil
}

func (s *Server) handleListControls(ctx context.Context, request mcp.CallToolRequest, _ map[string]any) (ControlList, error) {
	return ControlList{Controls: s.controls.List()}, nil
}

func (s *Server) handleSetInput(ctx context.Context, request mcp.CallToolRequest, args setInputArgs) (control.Info, error) {
	if _, err := s.controls.SetSlider(args.Name, args.Value); err != nil {
		return control.Info{}, err
	}
	s.logger.Debug("MCP: slider moved", "name", args.Name, "value", args.Value)
	return s.controlInfo(args.Name)
}

func (s *Server) handleSetToggle(ctx context.Context, request mcp.CallToolRequest, args setToggleArgs) (control.Info, error) {
	sw, err := s.controls.Switch(args.Name)
	if err != nil {
		return control.Info{}, err
	}
	if args.On == nil {
		sw.Flip()
	} else {
		sw.Set(*args.On)
	}
	s.logger.Debug("MCP: switch moved", "name", args.Name, "on", sw.IsActive())
	return s.controlInfo(args.Name)
}

func (s *Server) controlInfo(name string) (control.Info, error) {
	for _, info := range s.controls.List() {
		if info.Name == name {
			return info, nil
		}
	}
	return control.Info{}, fmt.Errorf("%q: %w", name, domain.ErrUnknownControl)
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(GraphURI, "Current Graph",
		mcp.WithResourceDescription("Nodes of the running graph, with kinds, bounds and children."),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(s.engine.Inspect())
		if err != nil {
			return nil, fmt.Errorf("failed to inspect graph: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      GraphURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
