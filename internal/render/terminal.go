package render

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/Adithya-Monish-Kumar-K/linux-command-library/internal/catalog"
)

// DefaultWidth is used when the terminal width is unknown.
const DefaultWidth = 80

var (
	Accent     = lipgloss.NewStyle().Foreground(lipgloss.Color("#7DCFFF"))
	AccentBold = lipgloss.NewStyle().Foreground(lipgloss.Color("#7DCFFF")).Bold(true)
	Muted      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))
	Bold       = lipgloss.NewStyle().Bold(true)
	Warn       = lipgloss.NewStyle().Foreground(lipgloss.Color("#E0AF68"))
)

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Styler applies lipgloss styles only when writing to a terminal.
type Styler struct {
	enabled bool
}

func NewStyler(w io.Writer) Styler {
	return Styler{enabled: IsTerminal(w) && os.Getenv("NO_COLOR") == ""}
}

func (s Styler) Enabled() bool { return s.enabled }

func (s Styler) Apply(style lipgloss.Style, text string) string {
	if !s.enabled {
		return text
	}
	return style.Render(text)
}

// SummaryLine is Summary with the name and category highlighted.
func (s Styler) SummaryLine(rec catalog.CommandRecord) string {
	if !s.enabled {
		return Summary(rec)
	}
	line := s.Apply(AccentBold, rec.Name) + "  " + s.Apply(Muted, "["+rec.Category+"]")
	if desc := Truncate(strings.Join(strings.Fields(rec.Description), " "), SummaryWidth); desc != "" {
		line += " — " + desc
	}
	return line
}

// Terminal renders rec's Markdown for a terminal of the given width.
func Terminal(rec catalog.CommandRecord, width int) (string, error) {
	if width <= 0 {
		width = DefaultWidth
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStyles(markdownStyle()),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	out, err := r.Render(Markdown(rec))
	if err != nil {
		return "", err
	}
	return strings.TrimRight(out, "\n") + "\n", nil
}

func markdownStyle() ansi.StyleConfig {
	accent := strPtr("#7DCFFF")
	muted := strPtr("8")
	return ansi.StyleConfig{
		Document: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{BlockPrefix: "\n", BlockSuffix: "\n"},
			Margin:         uintPtr(2),
		},
		Heading: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{BlockSuffix: "\n", Color: accent, Bold: boolPtr(true)},
		},
		H1:     ansi.StyleBlock{StylePrimitive: ansi.StylePrimitive{Prefix: "", Underline: boolPtr(true)}},
		H2:     ansi.StyleBlock{StylePrimitive: ansi.StylePrimitive{Prefix: "▍ "}},
		List:   ansi.StyleList{LevelIndent: 2},
		Item:   ansi.StylePrimitive{BlockPrefix: "• "},
		Emph:   ansi.StylePrimitive{Italic: boolPtr(true)},
		Strong: ansi.StylePrimitive{Bold: boolPtr(true)},
		Code: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{Color: accent},
		},
		CodeBlock: ansi.StyleCodeBlock{
			StyleBlock: ansi.StyleBlock{
				StylePrimitive: ansi.StylePrimitive{Color: accent},
				Margin:         uintPtr(2),
			},
		},
		Link:     ansi.StylePrimitive{Color: muted, Underline: boolPtr(true)},
		LinkText: ansi.StylePrimitive{Color: muted},
	}
}

func boolPtr(v bool) *bool { return &v }

func strPtr(v string) *string { return &v }

func uintPtr(v uint) *uint { return &v }
