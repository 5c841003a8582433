package emotion

import (
	"math"
	"sort"
	"strings"

	"talklens/types"
)

// ChartPoint is one charted moment for a speaker: the window end time and the
// selected label values scaled to percentages.
type ChartPoint struct {
	EndTime float64
	Values  map[string]float64
}

// SpeakerKey canonicalizes a raw speaker identity for grouping: the
// conventional "Speaker " prefix is stripped, numeric writers keep their
// string form, and a missing identity becomes "Unknown". Display naming is a
// separate concern layered on top.
func SpeakerKey(raw string) string {
	key := strings.TrimSpace(raw)
	if key == "" {
		return "Unknown"
	}
	lower := strings.ToLower(key)
	if strings.HasPrefix(lower, "speaker ") {
		if rest := strings.TrimSpace(key[len("speaker "):]); rest != "" {
			return rest
		}
	}
	return key
}

// bundleKey picks the grouping identity for a bundle: its own who field,
// else the attached segment's writer.
func bundleKey(b *types.EmotionBundle) string {
	if b.Who != "" {
		return SpeakerKey(b.Who)
	}
	if b.Segment != nil {
		return SpeakerKey(b.Segment.Writer)
	}
	return "Unknown"
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// BuildSeries groups bundles by canonical speaker key and produces one sorted
// chart series per speaker. For every selected label the value comes from the
// bundle's preferred score source (mixed over audio over text, never merged),
// scaled to 0-100 and rounded to 2 decimals. Labels match score keys
// case-insensitively. Points are ordered by end time, itself rounded to 2
// decimals for stable chart ticks; bundles without an end time are skipped.
func BuildSeries(bundles []types.EmotionBundle, selectedLabels []string) map[string][]ChartPoint {
	series := make(map[string][]ChartPoint)

	for i := range bundles {
		b := &bundles[i]
		scores := b.PreferredScores()
		if scores == nil {
			continue
		}
		_, end := b.Window()
		if end == nil {
			continue
		}

		values := make(map[string]float64, len(selectedLabels))
		for _, label := range selectedLabels {
			for key, score := range scores {
				if strings.EqualFold(key, label) {
					values[label] = round2(score * 100)
					break
				}
			}
		}

		key := bundleKey(b)
		series[key] = append(series[key], ChartPoint{
			EndTime: round2(*end),
			Values:  values,
		})
	}

	for key := range series {
		points := series[key]
		sort.SliceStable(points, func(i, j int) bool {
			return points[i].EndTime < points[j].EndTime
		})
		series[key] = points
	}
	return series
}

// Labels collects the distinct score labels present across all bundles'
// preferred sources, lowercased and sorted, for building label pickers.
func Labels(bundles []types.EmotionBundle) []string {
	seen := make(map[string]bool)
	for i := range bundles {
		for label := range bundles[i].PreferredScores() {
			seen[strings.ToLower(label)] = true
		}
	}
	labels := make([]string, 0, len(seen))
	for label := range seen {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}
