// Package splice builds ffmpeg command lines from immutable stream graphs.
//
// A pipeline is a directed acyclic graph of four node kinds: sources declare
// external inputs, filters transform one or more streams, sinks declare
// external outputs, and globals attach process-wide flags after a sink.
// Nodes are identified structurally rather than by object: two independently
// constructed nodes with the same kind, name, parameters, and ancestry are
// the same node, and compiling them yields byte-identical arguments. That
// makes graph fragments safe to share, cache, and compare.
//
// Graphs are assembled either through the fluent Stream methods (Input,
// Filter, Output, and the typed filter catalog) or through the generic
// constructors (NewSource, NewFilter, NewSink, NewGlobal) used by callers
// that build pipelines from data, such as manifest files. Fluent chains
// carry construction errors forward so a whole pipeline can be written
// without intermediate checks; Resolve, Args, and Stream.Err surface the
// first error that occurred.
//
// Resolve walks a graph from its terminal streams and assigns labels to
// every stream boundary the rendered filter chain must name. Args turns the
// resolution into the final argument vector: input declarations, a single
// -filter_complex expression when any filter is present, per-output -map
// references, and trailing global flags. The package never executes ffmpeg;
// see internal/ffmpeg for process supervision.
package splice
