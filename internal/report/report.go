// Package report renders a session snapshot as a Markdown summary of the
// dashboard, optionally converted to HTML.
package report

import (
	"fmt"
	"strings"
	"time"

	"studyviz/domain/view"
	"studyviz/internal/aggregation"
	"studyviz/internal/coordinator"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Format selects the report output.
type Format string

const (
	FormatMarkdown Format = "md"
	FormatHTML     Format = "html"
)

// ParseFormat maps a query value to a format; empty selects Markdown.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatMarkdown, "markdown":
		return FormatMarkdown, nil
	case FormatHTML:
		return FormatHTML, nil
	}
	return "", fmt.Errorf("unsupported report format %q", s)
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatHTML {
		return "text/html; charset=utf-8"
	}
	return "text/markdown; charset=utf-8"
}

// Options controls report rendering.
type Options struct {
	Title string
	// Now stamps the report; zero uses the current time.
	Now time.Time
}

// Render builds the report in the given format.
func Render(snap *coordinator.Snapshot, format Format, opts Options) ([]byte, error) {
	md := Markdown(snap, opts)
	switch format {
	case FormatMarkdown:
		return md, nil
	case FormatHTML:
		return ToHTML(md), nil
	}
	return nil, fmt.Errorf("unsupported report format %q", format)
}

// ToHTML converts Markdown to an HTML fragment.
func ToHTML(md []byte) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs | parser.NoEmptyLineBeforeBlock)
	doc := p.Parse(md)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.HrefTargetBlank})
	return markdown.Render(doc, renderer)
}

// Markdown writes the dashboard summary: dataset, current filter,
// hierarchy counts, distribution, box statistics, means and pins.
func Markdown(snap *coordinator.Snapshot, opts Options) []byte {
	title := opts.Title
	if title == "" {
		title = "Student Performance Dashboard"
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "_Generated %s for session `%s` (generation %d)_\n\n", now.Format(time.RFC3339), snap.SessionID, snap.Generation)

	writeDataset(&b, snap)
	writeSelection(&b, snap)

	if h, ok := snap.Views[view.Hierarchy].(*coordinator.HierarchyPayload); ok && h.Root != nil {
		writeHierarchy(&b, h)
	}
	if hist, ok := snap.Views[view.Histogram].(*aggregation.Histogram); ok {
		writeHistogram(&b, hist)
	}
	if box, ok := snap.Views[view.BoxPlot].(*coordinator.BoxPlotPayload); ok && box.BoxPlot != nil {
		writeBoxPlot(&b, box)
	}
	if radar, ok := snap.Views[view.RadarMeans].(*aggregation.RadarSummary); ok {
		writeMeans(&b, radar)
	}
	if sc, ok := snap.Views[view.Scatter].(*aggregation.Scatter); ok && sc.Correlation != nil {
		writeCorrelation(&b, sc)
	}
	writePins(&b, snap)

	return []byte(b.String())
}

func writeDataset(b *strings.Builder, snap *coordinator.Snapshot) {
	d := snap.Dataset
	b.WriteString("## Dataset\n\n")
	fmt.Fprintf(b, "- **Source:** %s\n", d.Source)
	fmt.Fprintf(b, "- **Records:** %d\n", d.Records)
	fmt.Fprintf(b, "- **Label field:** `%s`\n", d.LabelField)
	fmt.Fprintf(b, "- **Dimensions:** %s\n", codeList(d.Dimensions))
	groupings := make([]string, len(d.Groupings))
	for i, g := range d.Groupings {
		groupings[i] = g.Field
	}
	fmt.Fprintf(b, "- **Groupings:** %s\n\n", codeList(groupings))
}

func writeSelection(b *strings.Builder, snap *coordinator.Snapshot) {
	b.WriteString("## Selection\n\n")
	if snap.Source == "" {
		fmt.Fprintf(b, "No filter is active; all %d records are shown.\n\n", len(snap.FilterIDs))
		return
	}
	fmt.Fprintf(b, "Filtered from the **%s** to `%s`: %d of %d records.\n\n",
		snap.Source, strings.Join(snap.ActivePath, " / "), len(snap.FilterIDs), snap.Dataset.Records)
}

func writeHierarchy(b *strings.Builder, h *coordinator.HierarchyPayload) {
	fmt.Fprintf(b, "## Groups by %s and %s\n\n", h.Primary, h.Secondary)
	b.WriteString("| " + h.Primary + " | " + h.Secondary + " | Students |\n|---|---|---:|\n")
	for _, outer := range h.Root.Children {
		for _, inner := range outer.Children {
			fmt.Fprintf(b, "| %s | %s | %d |\n", outer.Name, inner.Name, inner.Value)
		}
	}
	fmt.Fprintf(b, "| **Total** | | **%d** |\n\n", h.Root.Value)
}

func writeHistogram(b *strings.Builder, hist *aggregation.Histogram) {
	fmt.Fprintf(b, "## Distribution of %s\n\n", hist.Measure)
	if hist.Total == 0 {
		b.WriteString("No numeric values in the current filter.\n\n")
		return
	}
	b.WriteString("| Range | Count |\n|---|---:|\n")
	for _, bin := range hist.Bins {
		fmt.Fprintf(b, "| %s – %s | %d |\n", num(bin.X0), num(bin.X1), bin.Count)
	}
	b.WriteString("\n")
	if hist.Excluded > 0 {
		fmt.Fprintf(b, "%d records without a numeric %s were excluded.\n\n", hist.Excluded, hist.Measure)
	}
}

func writeBoxPlot(b *strings.Builder, box *coordinator.BoxPlotPayload) {
	fmt.Fprintf(b, "## %s by %s\n\n", box.Measure, box.GroupField)
	if len(box.Groups) == 0 {
		b.WriteString("No groups with numeric values.\n\n")
		return
	}
	b.WriteString("| Group | n | Min | Q1 | Median | Q3 | Max |\n|---|---:|---:|---:|---:|---:|---:|\n")
	for _, g := range box.Groups {
		label := g.Label
		if g.Label == box.ActiveGroup {
			label = "**" + label + "**"
		}
		fmt.Fprintf(b, "| %s | %d | %s | %s | %s | %s | %s |\n",
			label, g.Count, num(g.Min), num(g.Q1), num(g.Median), num(g.Q3), num(g.Max))
	}
	b.WriteString("\n")
}

func writeMeans(b *strings.Builder, radar *aggregation.RadarSummary) {
	fmt.Fprintf(b, "## Means of the filter (%d records)\n\n", radar.Count)
	b.WriteString("| Metric | Mean | Dataset range |\n|---|---:|---|\n")
	for _, axis := range radar.Axes {
		mean, extent := "–", "–"
		if axis.Mean != nil {
			mean = num(*axis.Mean)
		}
		if axis.Extent != nil {
			extent = num(axis.Extent.Min) + " – " + num(axis.Extent.Max)
		}
		fmt.Fprintf(b, "| %s | %s | %s |\n", axis.Metric, mean, extent)
	}
	b.WriteString("\n")
}

func writeCorrelation(b *strings.Builder, sc *aggregation.Scatter) {
	c := sc.Correlation
	fmt.Fprintf(b, "## %s vs %s\n\n", sc.X, sc.Y)
	pearson, spearman := "–", "–"
	if c.Pearson != nil {
		pearson = num(*c.Pearson)
		if c.PValue != nil {
			pearson += fmt.Sprintf(" (p = %.3g)", *c.PValue)
		}
	}
	if c.Spearman != nil {
		spearman = num(*c.Spearman)
	}
	fmt.Fprintf(b, "Across %d students: Pearson r = %s, Spearman ρ = %s.\n\n", c.N, pearson, spearman)
}

func writePins(b *strings.Builder, snap *coordinator.Snapshot) {
	b.WriteString("## Pinned students\n\n")
	if len(snap.Pins) == 0 {
		b.WriteString("None.\n")
		return
	}
	for _, p := range snap.Pins {
		fmt.Fprintf(b, "- %s (`%s`, %s)\n", p.Label, p.ID, p.Color)
	}
}

func codeList(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = "`" + s + "`"
	}
	return strings.Join(out, ", ")
}

func num(v float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}
