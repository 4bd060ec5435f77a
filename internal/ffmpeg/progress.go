package ffmpeg

import (
	"strconv"
	"strings"
	"time"
)

// ProgressUpdate captures one ffmpeg progress block.
type ProgressUpdate struct {
	Frame     int64
	FPS       float64
	Bitrate   string
	TotalSize int64
	OutTime   time.Duration
	Speed     float64
	Done      bool
}

// progressParser accumulates -progress pipe:1 key=value records until a
// progress= terminator completes a block.
type progressParser struct {
	current ProgressUpdate
}

func (p *progressParser) feed(line string) (ProgressUpdate, bool) {
	key, value, found := strings.Cut(strings.TrimSpace(line), "=")
	if !found {
		return ProgressUpdate{}, false
	}
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)

	switch key {
	case "frame":
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			p.current.Frame = parsed
		}
	case "fps":
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			p.current.FPS = parsed
		}
	case "bitrate":
		if value != "N/A" {
			p.current.Bitrate = value
		}
	case "total_size":
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			p.current.TotalSize = parsed
		}
	case "out_time_us":
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			p.current.OutTime = time.Duration(parsed) * time.Microsecond
		}
	case "speed":
		trimmed := strings.TrimSpace(strings.TrimSuffix(value, "x"))
		if parsed, err := strconv.ParseFloat(trimmed, 64); err == nil {
			p.current.Speed = parsed
		}
	case "progress":
		update := p.current
		update.Done = value == "end"
		return update, true
	}
	return ProgressUpdate{}, false
}
