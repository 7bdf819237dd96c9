/*
Package domain contains the core abstractions of the espalier dataflow engine.

It defines what a node is (a value producer with a declared range), what a
time-variant node adds (a Tick), and the events and errors shared by the
engine, its scheduler and the adapters. The package is kept free of I/O and
concurrency so every other layer can depend on it.

# Key Entities

  - Node: pull-based value producer (Sample) with an advisory Range.
  - Ticker: stateful update invoked periodically by a scheduler.
  - Describer: optional introspection used by graph export and validation.
  - Output / Frame / Point: what samplers read and recorders store.
*/
package domain
