/*
Package observability provides tools for monitoring the espalier engine.

It holds the Prometheus collectors shared by the scheduler and the engine
(ticks, tick durations, recovered panics, samples, rebinds) and helpers to
build and combine lifecycle hooks.
*/
package observability
