package http

import (
	_ "embed"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers/legacy"
	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

//go:embed openapi.yaml
var openapiYAML []byte

// SubscribeEventsParams defines parameters for SubscribeEvents.
type SubscribeEventsParams struct {
	// IntervalMs is the frame period in milliseconds.
	IntervalMs *int `form:"interval_ms,omitempty" json:"interval_ms,omitempty"`
}

// SetControlRequest is the body of PUT /controls/{name}.
type SetControlRequest struct {
	Value float64 `json:"value"`
}

// ServerInterface represents all server handlers described by openapi.yaml.
type ServerInterface interface {
	// (GET /health)
	GetHealth(w http.ResponseWriter, r *http.Request)
	// (GET /info)
	GetInfo(w http.ResponseWriter, r *http.Request)
	// (GET /outputs)
	ListOutputs(w http.ResponseWriter, r *http.Request)
	// (GET /outputs/{label})
	SampleOutput(w http.ResponseWriter, r *http.Request, label string)
	// (GET /outputs/{label}/history)
	GetHistory(w http.ResponseWriter, r *http.Request, label string)
	// (GET /snapshot)
	GetSnapshot(w http.ResponseWriter, r *http.Request)
	// (GET /controls)
	ListControls(w http.ResponseWriter, r *http.Request)
	// (PUT /controls/{name})
	SetControl(w http.ResponseWriter, r *http.Request, name string)
	// (POST /controls/{name}/flip)
	FlipControl(w http.ResponseWriter, r *http.Request, name string)
	// (GET /graph)
	GetGraph(w http.ResponseWriter, r *http.Request)
	// (GET /events)
	SubscribeEvents(w http.ResponseWriter, r *http.Request, params SubscribeEventsParams)
}

// serverInterfaceWrapper binds request parameters before calling the handler.
type serverInterfaceWrapper struct {
	handler ServerInterface
}

func (s *serverInterfaceWrapper) pathParam(w http.ResponseWriter, r *http.Request, name string, dest *string) bool {
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), dest,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid format for parameter %s: %v", name, err), http.StatusBadRequest)
		return false
	}
	return true
}

func (s *serverInterfaceWrapper) SampleOutput(w http.ResponseWriter, r *http.Request) {
	var label string
	if s.pathParam(w, r, "label", &label) {
		s.handler.SampleOutput(w, r, label)
	}
}

func (s *serverInterfaceWrapper) GetHistory(w http.ResponseWriter, r *http.Request) {
	var label string
	if s.pathParam(w, r, "label", &label) {
		s.handler.GetHistory(w, r, label)
	}
}

func (s *serverInterfaceWrapper) SetControl(w http.ResponseWriter, r *http.Request) {
	var name string
	if s.pathParam(w, r, "name", &name) {
		s.handler.SetControl(w, r, name)
	}
}

func (s *serverInterfaceWrapper) FlipControl(w http.ResponseWriter, r *http.Request) {
	var name string
	if s.pathParam(w, r, "name", &name) {
		s.handler.FlipControl(w, r, name)
	}
}

func (s *serverInterfaceWrapper) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	var params SubscribeEventsParams
	if err := runtime.BindQueryParameter("form", true, false, "interval_ms", r.URL.Query(), &params.IntervalMs); err != nil {
		http.Error(w, fmt.Sprintf("Invalid format for parameter interval_ms: %v", err), http.StatusBadRequest)
		return
	}
	s.handler.SubscribeEvents(w, r, params)
}

// HandlerFromMux registers every operation of si on r and returns r.
func HandlerFromMux(si ServerInterface, r chi.Router) http.Handler {
	wrapper := &serverInterfaceWrapper{handler: si}

	r.Get("/health", si.GetHealth)
	r.Get("/info", si.GetInfo)
	r.Get("/outputs", si.ListOutputs)
	r.Get("/outputs/{label}", wrapper.SampleOutput)
	r.Get("/outputs/{label}/history", wrapper.GetHistory)
	r.Get("/snapshot", si.GetSnapshot)
	r.Get("/controls", si.ListControls)
	r.Put("/controls/{name}", wrapper.SetControl)
	r.Post("/controls/{name}/flip", wrapper.FlipControl)
	r.Get("/graph", si.GetGraph)
	r.Get("/events", wrapper.SubscribeEvents)
	return r
}

// rawSpec returns the embedded OpenAPI document.
func rawSpec() ([]byte, error) {
	if len(openapiYAML) == 0 {
		return nil, fmt.Errorf("embedded openapi spec is empty")
	}
	return openapiYAML, nil
}

// GetSwagger parses and validates the embedded OpenAPI document.
func GetSwagger() (*openapi3.T, error) {
	data, err := rawSpec()
	if err != nil {
		return nil, err
	}
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("error loading openapi spec: %w", err)
	}
	if err := doc.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("invalid openapi spec: %w", err)
	}
	return doc, nil
}

// requestValidator rejects requests that do not match the OpenAPI document.
// Paths the document does not describe (/metrics, /openapi.yaml) pass through.
func requestValidator(doc *openapi3.T) (func(http.Handler) http.Handler, error) {
	router, err := legacy.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("openapi router: %w", err)
	}
	opts := &openapi3filter.Options{AuthenticationFunc: openapi3filter.NoopAuthenticationFunc}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route, pathParams, err := router.FindRoute(r)
			if err != nil {
				// Unknown to the document; chi answers 404/405 or serves it.
				next.ServeHTTP(w, r)
				return
			}

			input := &openapi3filter.RequestValidationInput{
				Request:    r,
				PathParams: pathParams,
				Route:      route,
				Options:    opts,
			}
			if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
				http.Error(w, fmt.Sprintf("Invalid request: %v", err), http.StatusBadRequest)
				return
			}
			next.ServeHTTP(w, r)
		})
	}, nil
}
