/*
Package ports defines the driven ports (interfaces) for the espalier engine.

These interfaces decouple the engine and its presentation layers from
external implementations, allowing history to be kept in memory or in Redis.

# Key Interfaces

  - Sampler: The read side of an engine, used by the runner and the HTTP/MCP adapters.
  - Recorder: Keeps a bounded rolling window of output samples.
  - Locker: Provides distributed locking so one engine writes to a shared recorder namespace.
*/
package ports
