package runner

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"sync"
	"time"

	"github.com/aretw0/espalier/pkg/domain"
)

// JSONHandler implements the OutputHandler interface for structured JSON-Lines output.
// Every frame is one line: {"type":"frame","seq":1,"time":...,"values":{"label":v}}.
type JSONHandler struct {
	Writer  io.Writer
	Encoder *json.Encoder

	mu sync.Mutex
}

type jsonFrame struct {
	Type   string             `json:"type"`
	Seq    int64              `json:"seq"`
	Time   time.Time          `json:"time"`
	Values map[string]float64 `json:"values"`
}

type jsonSystem struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// NewJSONHandler creates a handler for JSON output (default: stdout).
func NewJSONHandler(w io.Writer) *JSONHandler {
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		Writer:  w,
		Encoder: json.NewEncoder(w),
	}
}

func (h *JSONHandler) Output(_ context.Context, frame domain.Frame) error {
	values := make(map[string]float64, len(frame.Labels))
	for i, label := range frame.Labels {
		values[label] = frame.Values[i]
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	return h.Encoder.Encode(jsonFrame{Type: "frame", Seq: frame.Seq, Time: frame.Time, Values: values})
}

func (h *JSONHandler) SystemOutput(_ context.Context, msg string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.Encoder.Encode(jsonSystem{Type: "system", Message: msg})
}
