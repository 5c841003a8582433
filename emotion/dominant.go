package emotion

import (
	"sort"

	"talklens/types"
)

// Dominant returns the single highest-scoring label for a speaker at the
// given playback time, or "" when the speaker has no applicable bundle.
// Bundle selection follows the shared interval rule: a bundle covering t
// wins; otherwise the most recently ended bundle before t; ties go to the
// latest end time. Within the chosen bundle the preferred score source is
// scanned with label keys sorted, so equal scores resolve alphabetically
// instead of by map order.
func Dominant(bundles []types.EmotionBundle, speakerKey string, t float64) string {
	var chosen *types.EmotionBundle
	var chosenEnd float64
	covering := false

	for i := range bundles {
		b := &bundles[i]
		if bundleKey(b) != speakerKey || b.PreferredScores() == nil {
			continue
		}
		start, end := b.Window()
		if end == nil {
			continue
		}
		s := 0.0
		if start != nil {
			s = *start
		}

		if s <= t && t <= *end {
			if !covering || *end >= chosenEnd {
				chosen, chosenEnd, covering = b, *end, true
			}
			continue
		}
		if !covering && *end < t {
			if chosen == nil || *end >= chosenEnd {
				chosen, chosenEnd = b, *end
			}
		}
	}

	if chosen == nil {
		return ""
	}

	scores := chosen.PreferredScores()
	labels := make([]string, 0, len(scores))
	for label := range scores {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	best := ""
	bestScore := -1.0
	for _, label := range labels {
		if scores[label] > bestScore {
			best, bestScore = label, scores[label]
		}
	}
	return best
}

// ActiveSpeaker returns the canonical key of the speaker whose bundle covers
// the given time, applying the same interval rule across all speakers. Used
// to visually emphasize the currently-speaking participant.
func ActiveSpeaker(bundles []types.EmotionBundle, t float64) string {
	var bestKey string
	var bestEnd float64
	covering := false

	for i := range bundles {
		b := &bundles[i]
		start, end := b.Window()
		if end == nil {
			continue
		}
		s := 0.0
		if start != nil {
			s = *start
		}

		if s <= t && t <= *end {
			if !covering || *end >= bestEnd {
				bestKey, bestEnd, covering = bundleKey(b), *end, true
			}
			continue
		}
		if !covering && *end < t {
			if bestKey == "" || *end >= bestEnd {
				bestKey, bestEnd = bundleKey(b), *end
			}
		}
	}
	return bestKey
}
