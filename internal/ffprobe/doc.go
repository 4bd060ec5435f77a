// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Inspect shells out to ffprobe and decodes the -show_format and
// -show_streams JSON payload into Result. Cache layers a TTL cache over
// Inspect keyed by path, size, and modification time, so repeated
// pipeline compilations do not re-probe unchanged inputs.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: individual audio/video/subtitle stream properties
//   - Format: container-level metadata (duration, size, bitrate)
//
// Helper methods on Result provide convenient access to stream counts,
// duration parsing, and bitrate extraction.
package ffprobe
