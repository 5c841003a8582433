package tui

import (
	"fmt"
	"sort"
	"strings"

	"talklens/emotion"
	"talklens/store"
	"talklens/timesync"
	"talklens/types"
)

const (
	transcriptWindow = 9
	lineWidth        = 76
)

// View implements tea.Model interface
func (m Model) View() string {
	switch m.Mode {
	case modeDetail:
		return m.viewDetail()
	case modeUpload:
		return m.viewUpload()
	case modeRename:
		return m.viewRename()
	default:
		return m.viewList()
	}
}

func (m Model) viewList() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("🎙️ TalkLens Sessions"))
	b.WriteString("\n\n")

	switch {
	case m.ListLoading:
		b.WriteString(InfoStyle.Render("Loading sessions..."))
		b.WriteString("\n")
	case m.ListErr != "":
		b.WriteString(ErrorStyle.Render("Failed to load sessions: " + m.ListErr))
		b.WriteString("\n")
	case len(m.Sessions) == 0:
		b.WriteString(InfoStyle.Render("No sessions yet. Press 'u' to upload a recording."))
		b.WriteString("\n")
	default:
		for i, sess := range m.Sessions {
			cursor := "  "
			if i == m.Cursor {
				cursor = "▸ "
			}
			line := fmt.Sprintf("%s%s  %s  %s",
				cursor,
				truncate(sess.Title, 32),
				formatClock(sess.Duration),
				artifactGlyphRow(&sess))
			if i == m.Cursor {
				b.WriteString(SelectedStyle.Render(line))
			} else {
				b.WriteString(line)
			}
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")

	if len(m.Logs) > 0 {
		b.WriteString(InfoStyle.Render("📝 Recent Activity:"))
		b.WriteString("\n")
		for _, logMsg := range m.Logs {
			b.WriteString(InfoStyle.Render("   " + logMsg))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(InfoStyle.Render("enter: open | u: upload | d: delete | r: refresh | q: quit"))
	return b.String()
}

// artifactGlyphRow renders one glyph per artifact in display order.
func artifactGlyphRow(sess *types.Session) string {
	glyphs := make([]string, 0, len(types.Kinds))
	for _, kind := range types.Kinds {
		glyphs = append(glyphs, statusGlyph(sess.StatusFor(kind)))
	}
	return strings.Join(glyphs, " ")
}

func (m Model) viewDetail() string {
	var b strings.Builder

	sess := m.st.Session(m.SessionID)
	title := m.SessionID
	duration := 0.0
	if sess != nil {
		title = sess.Title
		duration = sess.Duration
	}

	b.WriteString(TitleStyle.Render("🎙️ " + title))
	b.WriteString("\n")

	b.WriteString(m.renderStatusRow())
	b.WriteString("\n\n")

	// Playback clock
	playIcon := "▶"
	if m.Clock.Playing() {
		playIcon = "⏸"
	}
	current := m.Clock.CurrentTime()
	b.WriteString(StatusStyle.Render(fmt.Sprintf("%s %s / %s", playIcon, formatClock(current), formatClock(duration))))
	b.WriteString("\n\n")

	b.WriteString(m.renderTranscript(current))
	b.WriteString("\n")
	b.WriteString(m.renderEmotions(current))
	b.WriteString("\n")
	b.WriteString(m.renderSummary())
	b.WriteString("\n")

	b.WriteString(InfoStyle.Render("space: play/pause | ←/→: seek | m: next moment | 1-9: rename speaker | p: preset | g: regenerate | esc: back"))
	return b.String()
}

// renderStatusRow shows each artifact's lifecycle state, marking load errors.
func (m Model) renderStatusRow() string {
	parts := make([]string, 0, len(types.Kinds))
	for _, kind := range types.Kinds {
		snap := m.st.Artifact(m.SessionID, kind)
		glyph := statusGlyph(snap.Status)
		if snap.Err != "" {
			glyph = "⚠️"
		}
		parts = append(parts, fmt.Sprintf("%s %s", string(kind), glyph))
	}
	return InfoStyle.Render(strings.Join(parts, "  "))
}

func (m Model) renderTranscript(current float64) string {
	var b strings.Builder
	snap := m.st.Artifact(m.SessionID, types.KindTranscript)

	if placeholder := snapshotPlaceholder("Transcript", snap); placeholder != "" {
		return placeholder
	}

	segments := snap.Content.Transcript
	intervals := make([]timesync.Interval, len(segments))
	for i := range segments {
		intervals[i] = timesync.Interval{Start: segments[i].StartTime, End: segments[i].EndTime}
	}
	active := timesync.ActiveIndex(intervals, current)

	start := 0
	if active >= 0 {
		start = active - transcriptWindow/2
	}
	if start > len(segments)-transcriptWindow {
		start = len(segments) - transcriptWindow
	}
	if start < 0 {
		start = 0
	}
	end := start + transcriptWindow
	if end > len(segments) {
		end = len(segments)
	}

	for i := start; i < end; i++ {
		seg := segments[i]
		key := emotion.SpeakerKey(seg.Writer)
		display := m.st.DisplayName(m.SessionID, key)
		cfg := m.Speakers.Config(display)

		stamp := ""
		if seg.StartTime != nil {
			stamp = formatClock(*seg.StartTime) + " "
		}
		name := SpeakerStyle(cfg.Color).Render(cfg.Icon + " " + display)
		text := truncate(seg.Text, lineWidth)
		line := fmt.Sprintf("%s%s: %s", stamp, name, text)
		if i == active {
			line = ActiveSegmentStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderEmotions(current float64) string {
	var b strings.Builder
	snap := m.st.Artifact(m.SessionID, types.KindEmotions)

	if placeholder := snapshotPlaceholder("Emotions", snap); placeholder != "" {
		return placeholder
	}

	bundles := snap.Content.Emotions
	series := emotion.BuildSeries(bundles, emotion.Labels(bundles))

	keys := make([]string, 0, len(series))
	for key := range series {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		display := m.st.DisplayName(m.SessionID, key)
		cfg := m.Speakers.Config(display)
		dominant := emotion.Dominant(bundles, key, current)

		values := make([]float64, len(series[key]))
		for i, point := range series[key] {
			max := 0.0
			for _, v := range point.Values {
				if v > max {
					max = v
				}
			}
			values[i] = max
		}

		name := SpeakerStyle(cfg.Color).Render(cfg.Icon + " " + display)
		mood := ""
		if dominant != "" {
			mood = SpeakerStyle(emotion.GlowColor(dominant)).Render(dominant)
		}
		b.WriteString(fmt.Sprintf("%s %s %s", name, sparkline(values), mood))
		b.WriteString("\n")
	}

	metrics := emotion.ComputeMetrics(bundles)
	b.WriteString(InfoStyle.Render(fmt.Sprintf(
		"mood %s | positive %d%% | negative %d%% | calm %d%% | %d peaks | variability %d%%",
		metrics.Dominant, metrics.AveragePositive, metrics.AverageNegative,
		metrics.CalmRatio, metrics.PeakCount, metrics.Variability)))
	b.WriteString("\n")

	if peaks := emotion.Peaks(bundles); len(peaks) > 0 {
		b.WriteString("\nKey moments (m jumps to the next one)\n")
		for _, p := range peaks {
			display := m.st.DisplayName(m.SessionID, p.Speaker)
			label := SpeakerStyle(emotion.GlowColor(p.Label)).Render(p.Label)
			b.WriteString(fmt.Sprintf("  %s %s %.0f%% %s: %s\n",
				formatClock(p.Timestamp), label, p.Score*100, display,
				truncate(p.Text, lineWidth-30)))
		}
	}
	return b.String()
}

func (m Model) renderSummary() string {
	var b strings.Builder
	snap := m.st.Artifact(m.SessionID, types.KindSummary)

	preset := m.currentPreset()
	b.WriteString(InfoStyle.Render(fmt.Sprintf("Summary (preset: %s)", preset)))
	b.WriteString("\n")

	if placeholder := snapshotPlaceholder("Summary", snap); placeholder != "" {
		return b.String() + placeholder
	}

	summary := snap.Content.Summary
	if summary == nil {
		b.WriteString(InfoStyle.Render("Summary loading..."))
		b.WriteString("\n")
		return b.String()
	}
	if summary.Text != "" {
		for _, line := range strings.Split(summary.Text, "\n") {
			b.WriteString(truncate(line, lineWidth))
			b.WriteString("\n")
		}
	}
	for _, bullet := range summary.Bullets {
		b.WriteString("  • " + truncate(bullet, lineWidth))
		b.WriteString("\n")
	}
	return b.String()
}

// snapshotPlaceholder renders the non-ready states of an artifact slot.
// Returns "" when the slot's content is loaded and ready to display.
func snapshotPlaceholder(label string, snap store.Snapshot) string {
	switch {
	case snap.Err != "":
		return ErrorStyle.Render(fmt.Sprintf("%s failed to load: %s", label, snap.Err)) + "\n"
	case snap.Status == types.StatusFailed:
		return ErrorStyle.Render(fmt.Sprintf("%s processing failed", label)) + "\n"
	case snap.Status != types.StatusCompleted:
		return InfoStyle.Render(fmt.Sprintf("%s %s %s", label, statusGlyph(snap.Status), pendingText(snap.Status))) + "\n"
	case snap.Content == nil:
		return InfoStyle.Render(label+" loading...") + "\n"
	}
	return ""
}

func pendingText(status types.Status) string {
	switch status {
	case types.StatusProcessing:
		return "processing..."
	case types.StatusQueued:
		return "queued"
	default:
		return "not started"
	}
}

func (m Model) viewUpload() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("🎙️ Upload Recording"))
	b.WriteString("\n\n")

	fields := []struct {
		label string
		value string
	}{
		{"Title", m.UploadTitle},
		{"Audio file", m.UploadPath},
	}
	var form strings.Builder
	for i, field := range fields {
		marker := "  "
		if i == m.UploadFocus {
			marker = "▸ "
		}
		line := fmt.Sprintf("%s%s: %s", marker, field.label, field.value)
		if i == m.UploadFocus {
			line += "█"
			form.WriteString(SelectedStyle.Render(line))
		} else {
			form.WriteString(line)
		}
		form.WriteString("\n")
	}
	b.WriteString(BoxStyle.Render(form.String()))
	b.WriteString("\n")

	if m.UploadInfo != "" {
		b.WriteString(InfoStyle.Render("🎧 " + m.UploadInfo))
		b.WriteString("\n")
	}
	switch {
	case m.UploadProbing:
		b.WriteString(StatusStyle.Render("Probing audio file..."))
		b.WriteString("\n")
	case m.Uploading:
		b.WriteString(StatusStyle.Render("Uploading..."))
		b.WriteString("\n")
	}
	if m.UploadErr != "" {
		b.WriteString(ErrorStyle.Render("⚠ " + m.UploadErr))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(InfoStyle.Render("tab: switch field | enter: upload | esc: cancel"))
	return b.String()
}

func (m Model) viewRename() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("🎙️ Rename Speaker"))
	b.WriteString("\n\n")

	var form strings.Builder
	form.WriteString(fmt.Sprintf("Speaker: %s\n", m.RenameKey))

	if names := m.st.SpeakerNames(m.SessionID); names != nil {
		if sample, ok := names.Samples[emotion.SpeakerKey(m.RenameKey)]; ok && sample != "" {
			form.WriteString(InfoStyle.Render(fmt.Sprintf("Sample: %q", truncate(sample, 60))))
			form.WriteString("\n")
		}
	}
	form.WriteString(fmt.Sprintf("New name: %s█", m.RenameInput))
	b.WriteString(BoxStyle.Render(form.String()))
	b.WriteString("\n\n")

	b.WriteString(InfoStyle.Render("enter: save | esc: cancel"))
	return b.String()
}
