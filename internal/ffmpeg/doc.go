// Package ffmpeg executes compiled pipeline argument vectors.
//
// Runner prepends the progress-reporting flags, launches the binary
// through an injectable Executor, parses -progress pipe:1 key=value
// blocks into ProgressUpdate values, and logs each run under a unique
// run ID.
package ffmpeg
