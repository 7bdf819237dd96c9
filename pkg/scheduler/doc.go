/*
Package scheduler drives the Tick of time-variant nodes at a fixed cadence.

Every registered ticker gets its own goroutine: it ticks, then sleeps for the
interval, so the nodes are phase independent and no node ever waits for
another. There is no overrun detection; a slow tick simply delays the next
tick of that node.

Unlike a fire-and-forget daemon, the scheduler owns its goroutines: Stop
cancels them and waits until every one has returned.

	sched := scheduler.New(scheduler.WithInterval(10 * time.Millisecond))
	sched.Register("wheel_1.speed", integrator)
	if err := sched.Start(ctx); err != nil {
		return err
	}
	defer sched.Stop()
*/
package scheduler
