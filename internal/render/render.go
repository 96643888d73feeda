// Package render formats command records for people: one-line summaries
// for result lists, a labelled plain-text detail view, Markdown export, and
// a styled terminal view built on that Markdown.
package render

import (
	"fmt"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/linux-command-library/internal/catalog"
)

// SummaryWidth is the longest description shown in a summary line.
const SummaryWidth = 120

// Summary renders "name  [category] — description" on one line, with the
// description flattened and truncated to SummaryWidth.
func Summary(rec catalog.CommandRecord) string {
	name := strings.TrimSpace(rec.Name)
	if name == "" {
		name = "<unnamed>"
	}
	desc := Truncate(strings.Join(strings.Fields(rec.Description), " "), SummaryWidth)
	if desc == "" {
		return fmt.Sprintf("%s  [%s]", name, rec.Category)
	}
	return fmt.Sprintf("%s  [%s] — %s", name, rec.Category, desc)
}

// Truncate shortens s to at most width runes, marking the cut with "...".
func Truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 3 {
		return string(r[:width])
	}
	return string(r[:width-3]) + "..."
}

// Detail renders every populated field of rec under a label.
func Detail(rec catalog.CommandRecord) string {
	var b strings.Builder
	add := func(label, value string) {
		if strings.TrimSpace(value) == "" {
			return
		}
		fmt.Fprintf(&b, "%s\n%s\n\n", label, value)
	}
	add("Name", rec.Name)
	add("Category", rec.Category)
	add("Description", rec.Description)
	add("Usage", rec.Syntax)
	if len(rec.Options) > 0 {
		b.WriteString("Options\n")
		for _, opt := range rec.Options {
			if opt.Description != "" {
				fmt.Fprintf(&b, "  %-20s %s\n", opt.Flag, opt.Description)
			} else {
				fmt.Fprintf(&b, "  %s\n", opt.Flag)
			}
		}
		b.WriteString("\n")
	}
	if len(rec.Examples) > 0 {
		b.WriteString("Examples\n")
		for _, ex := range rec.Examples {
			if ex.Description != "" {
				fmt.Fprintf(&b, "  # %s\n", ex.Description)
			}
			fmt.Fprintf(&b, "  $ %s\n", ex.Command)
		}
		b.WriteString("\n")
	}
	if len(rec.Tags) > 0 {
		add("Tags", strings.Join(rec.Tags, ", "))
	}
	add("Source", rec.Source)
	out := strings.TrimRight(b.String(), "\n")
	if out == "" {
		return "(no details available)"
	}
	return out + "\n"
}

// Markdown exports rec in the heading layout the Markdown source reads.
func Markdown(rec catalog.CommandRecord) string {
	lines := []string{"# " + rec.Name, rec.Description}
	if rec.Syntax != "" {
		lines = append(lines, "", "## Usage", "```bash", rec.Syntax, "```")
	}
	if len(rec.Options) > 0 {
		lines = append(lines, "", "## Options")
		for _, opt := range rec.Options {
			if opt.Description != "" {
				lines = append(lines, fmt.Sprintf("- `%s` — %s", opt.Flag, opt.Description))
			} else {
				lines = append(lines, fmt.Sprintf("- `%s`", opt.Flag))
			}
		}
	}
	if len(rec.Examples) > 0 {
		lines = append(lines, "", "## Examples")
		for _, ex := range rec.Examples {
			if ex.Description != "" {
				lines = append(lines, "**"+ex.Description+"**")
			}
			lines = append(lines, "```bash", ex.Command, "```")
		}
	}
	if len(rec.Tags) > 0 {
		lines = append(lines, "", "*tags:* "+strings.Join(rec.Tags, ", "))
	}
	if rec.Source != "" {
		lines = append(lines, "", fmt.Sprintf("[source](%s)", rec.Source))
	}
	return strings.Join(lines, "\n") + "\n"
}
