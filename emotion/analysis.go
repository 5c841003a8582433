package emotion

import (
	"math"
	"sort"
	"strings"

	"talklens/types"
)

// Peak is one high-intensity emotional moment, used for the key moments list
// and jump-to-moment playback.
type Peak struct {
	Timestamp float64
	Label     string
	Score     float64
	Speaker   string
	Text      string
}

const (
	peakThreshold   = 0.7
	peakMinDistance = 8.0 // seconds between distinct moments
	peakLimit       = 10
	peakTextLimit   = 100
)

// Peaks detects the session's emotional high points. Per window the strongest
// preferred-source score counts, and only at or above the threshold; moments
// within a few seconds of an already-detected one are folded into it. The
// result is ordered strongest first and capped.
func Peaks(bundles []types.EmotionBundle) []Peak {
	var peaks []Peak
	for i := range bundles {
		b := &bundles[i]
		scores := b.PreferredScores()
		if scores == nil {
			continue
		}
		label, score := strongest(scores)
		if score < peakThreshold {
			continue
		}
		ts := 0.0
		if start, _ := b.Window(); start != nil {
			ts = *start
		}
		tooClose := false
		for _, p := range peaks {
			if math.Abs(p.Timestamp-ts) < peakMinDistance {
				tooClose = true
				break
			}
		}
		if tooClose {
			continue
		}
		text := ""
		if b.Segment != nil {
			text = b.Segment.Text
			if len(text) > peakTextLimit {
				text = text[:peakTextLimit]
			}
		}
		peaks = append(peaks, Peak{
			Timestamp: ts,
			Label:     strings.ToLower(label),
			Score:     score,
			Speaker:   bundleKey(b),
			Text:      text,
		})
	}
	sort.SliceStable(peaks, func(i, j int) bool {
		return peaks[i].Score > peaks[j].Score
	})
	if len(peaks) > peakLimit {
		peaks = peaks[:peakLimit]
	}
	return peaks
}

// strongest picks the highest-scoring label, alphabetically first on a tie.
func strongest(scores map[string]float64) (string, float64) {
	labels := make([]string, 0, len(scores))
	for label := range scores {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	best, bestScore := "", -1.0
	for _, label := range labels {
		if scores[label] > bestScore {
			best, bestScore = label, scores[label]
		}
	}
	return best, bestScore
}

// NextPeak returns the earliest peak strictly after t, wrapping back to the
// session's first peak when t is past all of them. ok is false when there are
// no peaks at all.
func NextPeak(peaks []Peak, t float64) (peak Peak, ok bool) {
	if len(peaks) == 0 {
		return Peak{}, false
	}
	ordered := make([]Peak, len(peaks))
	copy(ordered, peaks)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp < ordered[j].Timestamp
	})
	for _, p := range ordered {
		if p.Timestamp > t {
			return p, true
		}
	}
	return ordered[0], true
}

// Metrics aggregates a session's emotion scores into headline numbers.
// Percentages are 0-100 integers.
type Metrics struct {
	AveragePositive int
	AverageNegative int
	PeakCount       int
	CalmRatio       int
	Dominant        string
	Variability     int
}

var (
	positiveLabels = map[string]bool{"joy": true, "happiness": true, "excitement": true, "love": true}
	negativeLabels = map[string]bool{"anger": true, "sadness": true, "fear": true, "disgust": true, "anxiety": true}
	calmLabels     = map[string]bool{"calm": true, "neutral": true, "contentment": true}
)

// ComputeMetrics averages each score class over every scored label occurrence,
// counts scores above the peak threshold, picks the most frequent label as
// dominant (alphabetically first on a tie) and reports the standard deviation
// of all scores as variability. A session with no scores is neutral zeros.
func ComputeMetrics(bundles []types.EmotionBundle) Metrics {
	var (
		totalPositive float64
		totalNegative float64
		totalCalm     float64
		peakCount     int
		counts        = make(map[string]int)
		all           []float64
	)
	for i := range bundles {
		for label, score := range bundles[i].PreferredScores() {
			l := strings.ToLower(label)
			all = append(all, score)
			counts[l]++
			switch {
			case positiveLabels[l]:
				totalPositive += score
			case negativeLabels[l]:
				totalNegative += score
			case calmLabels[l]:
				totalCalm += score
			}
			if score > peakThreshold {
				peakCount++
			}
		}
	}

	m := Metrics{Dominant: "neutral"}
	n := float64(len(all))
	if n == 0 {
		return m
	}
	m.AveragePositive = int(math.Round(totalPositive / n * 100))
	m.AverageNegative = int(math.Round(totalNegative / n * 100))
	m.CalmRatio = int(math.Round(totalCalm / n * 100))
	m.PeakCount = peakCount

	labels := make([]string, 0, len(counts))
	for label := range counts {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	best := 0
	for _, label := range labels {
		if counts[label] > best {
			m.Dominant, best = label, counts[label]
		}
	}

	var sum float64
	for _, s := range all {
		sum += s
	}
	mean := sum / n
	var variance float64
	for _, s := range all {
		variance += (s - mean) * (s - mean)
	}
	variance /= n
	m.Variability = int(math.Round(math.Sqrt(variance) * 100))
	return m
}
