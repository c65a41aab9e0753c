package summarizer

import (
	"fmt"
	"strings"
	"time"
)

// MarkdownFormatter renders a Summary as a Markdown report.
type MarkdownFormatter struct {
	translate func(string) string
	version   string
}

// MarkdownOption configures a MarkdownFormatter.
type MarkdownOption func(*MarkdownFormatter)

// WithTranslator sets the function used to translate headings and labels.
func WithTranslator(translate func(string) string) MarkdownOption {
	return func(f *MarkdownFormatter) {
		f.translate = translate
	}
}

// WithVersion adds the tool version to the report footer.
func WithVersion(version string) MarkdownOption {
	return func(f *MarkdownFormatter) {
		f.version = version
	}
}

// NewMarkdownFormatter creates a MarkdownFormatter.
func NewMarkdownFormatter(opts ...MarkdownOption) *MarkdownFormatter {
	f := &MarkdownFormatter{
		translate: func(s string) string { return s },
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format implements Formatter.
func (f *MarkdownFormatter) Format(s *Summary) string {
	t := f.translate
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", t("Encoding Summary"))

	fmt.Fprintf(&b, "## %s\n\n", t("Source"))
	fmt.Fprintf(&b, "| %s | %s |\n|---|---|\n", t("Item"), t("Value"))
	if s.Source.Kind != "" {
		fmt.Fprintf(&b, "| %s | %s |\n", t("Kind"), t(string(s.Source.Kind)))
	}
	if s.Source.Location != "" {
		fmt.Fprintf(&b, "| %s | %s |\n", t("Location"), escapeCell(s.Source.Location))
	}
	if s.Source.Title != "" {
		fmt.Fprintf(&b, "| %s | %s |\n", t("Page Title"), escapeCell(s.Source.Title))
	}
	fmt.Fprintf(&b, "| %s | %d |\n\n", t("Frames"), s.Source.Frames)

	fmt.Fprintf(&b, "## %s\n\n", t("Video"))
	fmt.Fprintf(&b, "| %s | %s |\n|---|---|\n", t("Item"), t("Value"))
	if s.Video.Path != "" {
		fmt.Fprintf(&b, "| %s | %s |\n", t("Output"), escapeCell(s.Video.Path))
	}
	fmt.Fprintf(&b, "| %s | %d |\n", t("Frame Count"), s.Video.FrameCount)
	fmt.Fprintf(&b, "| %s | %s |\n", t("Duration"), formatMs(s.Video.DurationMs))
	fmt.Fprintf(&b, "| %s | %dx%d |\n", t("Frame Size"), s.Video.Width, s.Video.Height)
	fmt.Fprintf(&b, "| %s | %s |\n", t("File Size"), formatBytes(s.Video.FileSize))
	if s.Video.PosterPath != "" {
		fmt.Fprintf(&b, "| %s | %s |\n", t("Poster"), escapeCell(s.Video.PosterPath))
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "## %s\n\n", t("Settings"))
	fmt.Fprintf(&b, "| %s | %s |\n|---|---|\n", t("Item"), t("Value"))
	fmt.Fprintf(&b, "| %s | %d |\n", t("Concurrency"), s.Settings.Concurrency)
	fmt.Fprintf(&b, "| %s | %s |\n", t("Cluster Cap"), formatMs(s.Settings.ClusterMaxDurationMs))
	verify := t("Off")
	if s.Settings.Verify {
		verify = t("On")
	}
	fmt.Fprintf(&b, "| %s | %s |\n\n", t("Verify Stills"), verify)

	if len(s.Clusters) > 0 {
		fmt.Fprintf(&b, "## %s\n\n", t("Clusters"))
		fmt.Fprintf(&b, "| # | %s | %s | %s | %s |\n|---|---|---|---|---|\n",
			t("Timecode"), t("Duration"), t("Blocks"), t("Size"))
		for i, c := range s.Clusters {
			fmt.Fprintf(&b, "| %d | %d ms | %s | %d | %s |\n",
				i, c.TimecodeMs, formatMs(c.DurationMs), c.Blocks, formatBytes(int64(c.Size)))
		}
		b.WriteString("\n")
	}

	b.WriteString("---\n\n")
	footer := fmt.Sprintf("%s: %s", t("Generated"), s.GeneratedAt.Format(time.RFC3339))
	if s.Elapsed > 0 {
		footer += fmt.Sprintf(" (%s %s)", t("elapsed"), s.Elapsed.Round(time.Millisecond))
	}
	if f.version != "" {
		footer += " / framecast " + f.version
	}
	b.WriteString(footer + "\n")

	return b.String()
}

func formatMs(ms float64) string {
	if ms == float64(int64(ms)) {
		return fmt.Sprintf("%d ms", int64(ms))
	}
	return fmt.Sprintf("%.1f ms", ms)
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit && exp < 2; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(n)/float64(div), "KMG"[exp])
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}

var _ Formatter = (*MarkdownFormatter)(nil)
