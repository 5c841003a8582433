// Package emotion turns raw per-window, per-speaker emotion bundles into
// per-speaker chart series, assigns stable visual identities to speakers, and
// answers "who feels what right now" questions for the playback view.
package emotion

import (
	"regexp"
	"strconv"
	"strings"
	"sync"
)

// SpeakerConfig is a speaker's visual identity: a display name, a palette
// color and an icon glyph.
type SpeakerConfig struct {
	Name  string
	Color string
	Icon  string
}

// palette holds the six visual identity slots; speakers beyond six wrap.
var palette = []SpeakerConfig{
	{Color: "#2E7DE9", Icon: "🔵"}, // blue
	{Color: "#22A06B", Icon: "🟢"}, // green
	{Color: "#9D4EDD", Icon: "🟣"}, // purple
	{Color: "#F77F00", Icon: "🟠"}, // orange
	{Color: "#E64980", Icon: "🌸"}, // pink
	{Color: "#12B5CB", Icon: "💠"}, // cyan
}

var speakerNumberRe = regexp.MustCompile(`(?i)^speaker\s+(\d+)$`)

// Registry assigns visual identities to speakers. It is constructed per view
// (not a process-wide singleton) so tests stay hermetic; within one registry
// the same identifier always yields the same identity. Conventional
// "Speaker N" labels map to slot N-1 directly; arbitrary names get a stable
// string hash into the palette.
type Registry struct {
	mu       sync.Mutex
	assigned map[string]SpeakerConfig
}

// NewRegistry creates an empty speaker registry.
func NewRegistry() *Registry {
	return &Registry{assigned: make(map[string]SpeakerConfig)}
}

// Config returns the stable visual identity for a speaker name.
func (r *Registry) Config(name string) SpeakerConfig {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cfg, ok := r.assigned[name]; ok {
		return cfg
	}

	var idx int
	if m := speakerNumberRe.FindStringSubmatch(strings.TrimSpace(name)); m != nil {
		n, _ := strconv.Atoi(m[1])
		if n < 1 {
			n = 1
		}
		idx = (n - 1) % len(palette)
	} else {
		idx = hashName(name) % len(palette)
	}

	cfg := palette[idx]
	cfg.Name = name
	r.assigned[name] = cfg
	return cfg
}

// hashName is a stable 31-style string hash, truncated to int32 like the
// original frontend so identities survive a port of the same data.
func hashName(name string) int {
	var h int32
	for _, ch := range name {
		h = (h << 5) - h + int32(ch)
	}
	if h < 0 {
		h = -h
	}
	return int(h)
}

// Emotion valence sets for tinting the active speaker.
var (
	positiveEmotions = map[string]bool{
		"joy": true, "happiness": true, "positive": true, "excited": true,
		"pleased": true, "calm": true, "content": true,
	}
	negativeEmotions = map[string]bool{
		"anger": true, "angry": true, "sadness": true, "fear": true,
		"negative": true, "frustrated": true, "disappointed": true,
		"anxiety": true, "stress": true,
	}
)

// GlowColor maps a dominant emotion label to a highlight color: green for
// positive labels, red for negative, gray otherwise.
func GlowColor(dominant string) string {
	switch {
	case dominant == "":
		return "#8A8F98"
	case positiveEmotions[strings.ToLower(dominant)]:
		return "#22A06B"
	case negativeEmotions[strings.ToLower(dominant)]:
		return "#E5484D"
	}
	return "#8A8F98"
}
