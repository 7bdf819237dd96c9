package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	httpAdapter "github.com/aretw0/espalier/pkg/adapters/http"
)

// Serve starts the engine and exposes it over HTTP on addr until ctx is
// cancelled. If ready is not nil it receives the bound address.
func Serve(ctx context.Context, app *App, addr string, ready chan<- string) error {
	handler, err := httpAdapter.NewHandler(app.Engine,
		httpAdapter.WithControls(app.Traction.Controls),
		httpAdapter.WithRecorder(app.Recorder),
		httpAdapter.WithGatherer(app.Metrics),
		httpAdapter.WithLogger(app.Logger),
		httpAdapter.WithStreamInterval(app.Config.SampleInterval),
	)
	if err != nil {
		return fmt.Errorf("http handler: %w", err)
	}

	if err := app.Engine.Start(ctx); err != nil {
		return err
	}
	defer app.Engine.Stop()

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		// Request contexts end with ctx so that SSE streams let Shutdown finish.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	serverErrors := make(chan error, 1)
	go func() {
		app.Logger.Info("Starting espalier server", "addr", ln.Addr().String())
		serverErrors <- srv.Serve(ln)
	}()
	if ready != nil {
		ready <- ln.Addr().String()
	}

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.Logger.Warn("Graceful shutdown did not complete", "error", err)
			return srv.Close()
		}
		app.Logger.Info("espalier server stopped gracefully")
		return nil
	}
}
