/*
Package runner implements the sampling loop and terminal I/O for an espalier engine.

It acts as the external sampler: the engine ticks its own time-variant nodes,
while the runner reads every output at a fixed cadence, records the values
and presents them.

# Key Components

  - Runner: starts the engine, samples it and stops it on interrupt or timeout.
  - OutputHandler: decouples presentation (TextHandler for terminals,
    JSONHandler for NDJSON streams).
  - Console: applies "set", "on", "off", "flip" and "list" commands from an
    input stream to a control registry.

# Usage

	r := runner.NewRunner(
		runner.WithRecorder(memory.NewRecorder(10*time.Second)),
		runner.WithOutputHandler(runner.NewTextHandler(os.Stdout, runner.WithLive(true))),
		runner.WithConsole(os.Stdin, controls),
	)

	if err := r.Run(ctx, engine); err != nil {
		log.Fatal(err)
	}
*/
package runner
