// Package manifest loads declarative pipeline files and builds graphs
// from them.
//
// A manifest is a TOML document listing inputs, filter steps, outputs,
// and trailing global flags. Steps reference earlier steps by id, or by
// id:index when selecting one pad of a multi-output filter or one
// stream of an input container. Build turns the document into terminal
// streams ready for resolution and compilation; construction errors
// from the graph layer surface with the offending step named.
//
// Filter names and parameter values pass through verbatim, mirroring
// the graph API: the manifest layer validates references and document
// structure, never ffmpeg semantics.
package manifest
