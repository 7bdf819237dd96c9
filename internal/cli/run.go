package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/aretw0/espalier/internal/presentation/tui"
	"github.com/aretw0/espalier/pkg/runner"
)

// RunOptions contains the configuration of the run command.
type RunOptions struct {
	// Duration stops the run after the given time. Zero runs until interrupted.
	Duration time.Duration
	// JSON streams NDJSON frames instead of the terminal table.
	JSON bool
	// Report prints a summary of the recorded window when the run ends.
	Report bool

	Stdin  io.Reader
	Stdout io.Writer
}

// Run samples the app engine until ctx ends, an interrupt arrives or the
// duration elapses. Control commands are read from Stdin.
func Run(ctx context.Context, app *App, opts RunOptions) error {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}

	var handler runner.OutputHandler
	if opts.JSON {
		handler = runner.NewJSONHandler(opts.Stdout)
	} else {
		handler = runner.NewTextHandler(opts.Stdout, runner.WithBounds(app.Engine.Outputs()))
	}

	runOpts := []runner.Option{
		runner.WithLogger(app.Logger),
		runner.WithOutputHandler(handler),
		runner.WithRecorder(app.Recorder),
		runner.WithInterval(app.Config.SampleInterval),
		runner.WithDuration(opts.Duration),
	}
	if opts.Stdin != nil {
		runOpts = append(runOpts, runner.WithConsole(opts.Stdin, app.Traction.Controls))
	}
	if app.Locker != nil {
		runOpts = append(runOpts, runner.WithLocker(app.Locker, app.LockKey, runner.DefaultLockTTL))
	}

	if err := runner.NewRunner(runOpts...).Run(ctx, app.Engine); err != nil {
		return err
	}

	if opts.Report {
		return printReport(ctx, app, opts.Stdout)
	}
	return nil
}

func printReport(ctx context.Context, app *App, w io.Writer) error {
	summaries, err := tui.Summarize(context.WithoutCancel(ctx), app.Recorder)
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}
	md := tui.ReportMarkdown(fmt.Sprintf("Run report (last %s)", app.Config.Recorder.Window), summaries)

	style := ""
	if !runner.IsTerminal(w) {
		style = "notty"
	}
	render, err := tui.NewRenderer(style, 100)
	if err != nil {
		return fmt.Errorf("report renderer: %w", err)
	}
	out, err := render(md)
	if err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}
