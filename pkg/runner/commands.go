package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aretw0/espalier/pkg/control"
)

// Console reads control commands, one per line, and applies them to a
// control registry while a run is in progress. It replaces on-screen
// sliders and switches:
//
//	set <slider> <value>   move a slider (clamped to its range)
//	on|off <switch>        move a switch
//	flip <switch>          invert a switch
//	list                   show every control
type Console struct {
	reader   *bufio.Reader
	controls *control.Registry
}

// NewConsole creates a console over r.
func NewConsole(r io.Reader, controls *control.Registry) *Console {
	return &Console{reader: bufio.NewReader(r), controls: controls}
}

// Serve applies commands until ctx is cancelled or the input ends, reporting
// results and errors through handler. Input errors other than EOF are returned.
func (c *Console) Serve(ctx context.Context, handler OutputHandler) error {
	lines := make(chan string)
	errs := make(chan error, 1)

	go func() {
		defer close(lines)
		for {
			text, err := c.reader.ReadString('\n')
			if text != "" {
				select {
				case lines <- text:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				if !errors.Is(err, io.EOF) {
					errs <- err
				}
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errs:
			return fmt.Errorf("console input: %w", err)
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			msg, err := c.Execute(line)
			if err != nil {
				msg = "error: " + err.Error()
			}
			if msg == "" {
				continue
			}
			if err := handler.SystemOutput(ctx, msg); err != nil {
				return err
			}
		}
	}
}

// Execute applies one command line and returns a human-readable result.
// Blank lines are ignored.
func (c *Console) Execute(line string) (string, error) {
	clean, err := SanitizeInput(strings.TrimSpace(line))
	if err != nil {
		return "", err
	}
	fields := strings.Fields(clean)
	if len(fields) == 0 {
		return "", nil
	}

	switch cmd, args := strings.ToLower(fields[0]), fields[1:]; cmd {
	case "set":
		if len(args) != 2 {
			return "", fmt.Errorf("usage: set <slider> <value>")
		}
		v, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return "", fmt.Errorf("invalid value %q", args[1])
		}
		stored, err := c.controls.SetSlider(args[0], v)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s = %g", args[0], stored), nil

	case "on", "off":
		if len(args) != 1 {
			return "", fmt.Errorf("usage: %s <switch>", cmd)
		}
		if err := c.controls.SetSwitch(args[0], cmd == "on"); err != nil {
			return "", err
		}
		return fmt.Sprintf("%s %s", args[0], cmd), nil

	case "flip":
		if len(args) != 1 {
			return "", fmt.Errorf("usage: flip <switch>")
		}
		sw, err := c.controls.Switch(args[0])
		if err != nil {
			return "", err
		}
		if sw.Flip() {
			return args[0] + " on", nil
		}
		return args[0] + " off", nil

	case "list":
		var sb strings.Builder
		for i, info := range c.controls.List() {
			if i > 0 {
				sb.WriteString("\n")
			}
			fmt.Fprintf(&sb, "%s (%s %v) = %g", info.Name, info.Kind, info.Bounds, info.Value)
		}
		return sb.String(), nil
	}
	return "", fmt.Errorf("unknown command %q (set, on, off, flip, list)", fields[0])
}
