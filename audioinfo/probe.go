// Package audioinfo inspects local audio files before upload.
package audioinfo

import (
	"encoding/json"
	"fmt"
	"strconv"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Info describes a local audio file as reported by ffprobe.
type Info struct {
	// Duration in seconds.
	Duration float64
	// Format is the container format name, e.g. "wav" or "mov,mp4,m4a,...".
	Format string
}

type probeFormat struct {
	Format struct {
		Duration   string `json:"duration"`
		FormatName string `json:"format_name"`
	} `json:"format"`
}

// Probe runs ffprobe on the file and returns its duration and format. Used to
// show an expected duration in the upload form and to reject non-audio files
// before any bytes leave the machine.
func Probe(path string) (*Info, error) {
	out, err := ffmpeg.Probe(path)
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	var probed probeFormat
	if err := json.Unmarshal([]byte(out), &probed); err != nil {
		return nil, fmt.Errorf("failed to decode ffprobe output: %w", err)
	}

	duration, err := strconv.ParseFloat(probed.Format.Duration, 64)
	if err != nil {
		return nil, fmt.Errorf("file has no readable duration (not an audio file?): %w", err)
	}

	return &Info{
		Duration: duration,
		Format:   probed.Format.FormatName,
	}, nil
}
