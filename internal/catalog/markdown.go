package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	apperrors "github.com/Adithya-Monish-Kumar-K/linux-command-library/pkg/errors"
)

// MarkdownSource reads command records from heading-structured Markdown.
// Path may be a single file or a directory of *.md files.
type MarkdownSource struct {
	Path            string
	DefaultCategory string
	logger          *slog.Logger
}

// NewMarkdownSource creates a MarkdownSource for path.
func NewMarkdownSource(path, defaultCategory string) *MarkdownSource {
	return &MarkdownSource{
		Path:            path,
		DefaultCategory: defaultCategory,
		logger:          slog.Default().With("component", "markdown-source"),
	}
}

func (s *MarkdownSource) Name() string {
	return s.Path
}

func (s *MarkdownSource) Records(ctx context.Context) ([]CommandRecord, error) {
	files, err := s.files()
	if err != nil {
		return nil, err
	}
	var records []CommandRecord
	var parseErrs []error
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		recs, err := ParseMarkdown(data, path, s.DefaultCategory)
		if err != nil {
			parseErrs = append(parseErrs, err)
			continue
		}
		records = append(records, recs...)
	}
	if err := errors.Join(parseErrs...); err != nil {
		return nil, err
	}
	s.logger.Debug("markdown source parsed",
		"path", s.Path,
		"files", len(files),
		"records", len(records),
	)
	return records, nil
}

func (s *MarkdownSource) files() ([]string, error) {
	info, err := os.Stat(s.Path)
	if err != nil {
		return nil, fmt.Errorf("opening commands path: %w", err)
	}
	if !info.IsDir() {
		return []string{s.Path}, nil
	}
	entries, err := os.ReadDir(s.Path)
	if err != nil {
		return nil, fmt.Errorf("listing commands path: %w", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".md") {
			files = append(files, filepath.Join(s.Path, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

type section int

const (
	sectionDescription section = iota
	sectionSyntax
	sectionOptions
	sectionExamples
	sectionOther
)

var subsectionNames = map[string]section{
	"description":    sectionDescription,
	"syntax":         sectionSyntax,
	"usage":          sectionSyntax,
	"synopsis":       sectionSyntax,
	"options":        sectionOptions,
	"flags":          sectionOptions,
	"common options": sectionOptions,
	"examples":       sectionExamples,
	"example":        sectionExamples,
}

func subsectionOf(heading string) (section, bool) {
	key := strings.ToLower(strings.TrimRight(strings.TrimSpace(heading), ":"))
	sec, ok := subsectionNames[key]
	return sec, ok
}

// mdParser holds the state of one pass over a Markdown document.
type mdParser struct {
	src        []byte
	source     string
	lineStarts []int

	categoryLevel int
	commandLevel  int

	category string
	draft    *mdDraft
	section  section
	pending  string

	records []CommandRecord
	errs    []error
}

type mdDraft struct {
	rec         CommandRecord
	line        int
	description []string
	fallback    string
}

// ParseMarkdown extracts command records from a Markdown document.
//
// Headings named after a known subsection (Syntax, Options, Examples, ...)
// split a command into parts; every other heading is structural. Commands
// sit at the shallowest level whose headings own text or subsections, the
// level above names the category, and deeper structural headings stay inside
// the command they follow.
func ParseMarkdown(data []byte, source, category string) ([]CommandRecord, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	doc := md.Parser().Parse(text.NewReader(data))

	p := &mdParser{
		src:        data,
		source:     source,
		lineStarts: computeLineStarts(data),
		category:   category,
	}
	p.detectLevels(doc)
	if p.commandLevel == 0 {
		return nil, nil
	}

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		p.block(n)
	}
	p.finish()

	if err := errors.Join(p.errs...); err != nil {
		return nil, err
	}
	return p.records, nil
}

// headingInfo describes one structural heading and the blocks it owns up to
// the next structural heading.
type headingInfo struct {
	level     int
	described bool
	body      bool
	subs      bool
}

func (h headingInfo) commandLike() bool {
	return h.described || h.body || h.subs
}

// detectLevels picks the command level from the headings that own text,
// subsections or an inline description. A lone leading heading with only intro text is a document
// title when a deeper level carries several commands. The category level is
// the nearest structural level above the command level.
func (p *mdParser) detectLevels(doc ast.Node) {
	var heads []headingInfo
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		h, ok := n.(*ast.Heading)
		if !ok {
			if len(heads) > 0 && ownsText(n) {
				heads[len(heads)-1].body = true
			}
			continue
		}
		title := inlineText(h, p.src)
		if _, sub := subsectionOf(title); sub {
			if len(heads) > 0 {
				heads[len(heads)-1].subs = true
			}
			continue
		}
		_, fallback := splitCommandHeading(title)
		heads = append(heads, headingInfo{level: h.Level, described: fallback != ""})
	}
	if len(heads) == 0 {
		return
	}

	count := make(map[int]int)
	content := make(map[int]int)
	for _, h := range heads {
		count[h.level]++
		if h.commandLike() {
			content[h.level]++
		}
	}
	levels := make([]int, 0, len(count))
	for l := range count {
		levels = append(levels, l)
	}
	sort.Ints(levels)

	cmd := 0
	for _, l := range levels {
		if content[l] > 0 {
			cmd = l
			break
		}
	}
	if cmd == 0 {
		cmd = levels[len(levels)-1]
	} else if first := heads[0]; first.level == cmd && count[cmd] == 1 && !first.subs {
		for _, l := range levels {
			if l > cmd && content[l] > 1 {
				cmd = l
				break
			}
		}
	}
	p.commandLevel = cmd
	for _, l := range levels {
		if l < cmd {
			p.categoryLevel = l
		}
	}
}

func ownsText(n ast.Node) bool {
	switch n.(type) {
	case *ast.Paragraph, *ast.List, *ast.FencedCodeBlock, *ast.CodeBlock, *ast.Blockquote, *extast.Table:
		return true
	}
	return false
}

func (p *mdParser) block(n ast.Node) {
	switch node := n.(type) {
	case *ast.Heading:
		p.heading(node)
	case *ast.Paragraph:
		p.paragraph(node)
	case *ast.List:
		p.list(node)
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		p.code(blockLines(n, p.src))
	case *extast.Table:
		p.table(node)
	}
}

func (p *mdParser) heading(h *ast.Heading) {
	title := inlineText(h, p.src)
	if sec, ok := subsectionOf(title); ok {
		if p.draft != nil {
			p.section = sec
			p.pending = ""
		}
		return
	}
	switch {
	case h.Level > p.commandLevel:
		if p.draft != nil {
			p.section = sectionOther
		}
	case h.Level == p.commandLevel:
		p.finish()
		name, fallback := splitCommandHeading(title)
		p.draft = &mdDraft{
			rec: CommandRecord{
				Name:     name,
				Category: p.category,
				Source:   p.source,
			},
			line:     p.lineOf(h),
			fallback: fallback,
		}
		p.section = sectionDescription
		p.pending = ""
	default:
		p.finish()
		if h.Level == p.categoryLevel {
			p.category = strings.TrimSpace(title)
		}
	}
}

func (p *mdParser) paragraph(para *ast.Paragraph) {
	if p.draft == nil {
		return
	}
	body := inlineText(para, p.src)
	if _, link := para.FirstChild().(*ast.Link); link && body == "source" {
		return
	}
	if sec, ok := subsectionOf(strings.Trim(body, "*_: ")); ok {
		p.section = sec
		p.pending = ""
		return
	}
	if tags, ok := strings.CutPrefix(body, "tags:"); ok {
		for _, tag := range strings.Split(tags, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				p.draft.rec.Tags = append(p.draft.rec.Tags, tag)
			}
		}
		return
	}
	switch p.section {
	case sectionDescription:
		p.draft.description = append(p.draft.description, body)
	case sectionSyntax:
		if p.draft.rec.Syntax == "" {
			p.draft.rec.Syntax = body
		}
	case sectionOptions:
		for _, line := range strings.Split(body, "\n") {
			if line = strings.TrimSpace(line); strings.HasPrefix(line, "-") {
				flag, desc := splitFlagText(line)
				p.draft.rec.Options = append(p.draft.rec.Options, Option{Flag: flag, Description: desc})
			}
		}
	case sectionExamples:
		p.pending = strings.Trim(body, "*_ ")
	}
}

func (p *mdParser) list(list *ast.List) {
	if p.draft == nil {
		return
	}
	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		first := item.FirstChild()
		if first == nil {
			continue
		}
		lead, rest, hasCode := splitCodeLead(first, p.src)
		whole := inlineText(first, p.src)
		switch p.section {
		case sectionDescription:
			p.draft.description = append(p.draft.description, whole)
		case sectionOptions:
			opt := Option{Flag: lead, Description: rest}
			if !hasCode {
				opt.Flag, opt.Description = splitFlagText(whole)
			}
			if opt.Flag != "" {
				p.draft.rec.Options = append(p.draft.rec.Options, opt)
			}
		case sectionExamples:
			ex := Example{Command: lead, Description: rest}
			if !hasCode {
				ex = Example{Command: whole}
			}
			if ex.Command != "" {
				p.draft.rec.Examples = append(p.draft.rec.Examples, ex)
			}
		}
	}
}

func (p *mdParser) code(lines []string) {
	if p.draft == nil {
		return
	}
	switch p.section {
	case sectionSyntax:
		if p.draft.rec.Syntax == "" {
			p.draft.rec.Syntax = strings.TrimSpace(strings.Join(lines, "\n"))
		}
	case sectionOptions:
		for _, line := range lines {
			if line = strings.TrimSpace(line); line != "" {
				flag, desc := splitFlagText(line)
				p.draft.rec.Options = append(p.draft.rec.Options, Option{Flag: flag, Description: desc})
			}
		}
	case sectionExamples:
		explain := p.pending
		for _, line := range lines {
			line = strings.TrimSpace(line)
			switch {
			case line == "":
			case strings.HasPrefix(line, "#"):
				explain = strings.TrimSpace(strings.TrimLeft(line, "#"))
			default:
				p.draft.rec.Examples = append(p.draft.rec.Examples, Example{Command: line, Description: explain})
				explain = ""
			}
		}
		p.pending = ""
	}
}

func (p *mdParser) table(tbl *extast.Table) {
	if p.draft == nil || (p.section != sectionOptions && p.section != sectionExamples) {
		return
	}
	for row := tbl.FirstChild(); row != nil; row = row.NextSibling() {
		if _, header := row.(*extast.TableHeader); header {
			continue
		}
		var cells []string
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			cells = append(cells, inlineText(cell, p.src))
		}
		if len(cells) == 0 || cells[0] == "" {
			continue
		}
		var second string
		if len(cells) > 1 {
			second = cells[1]
		}
		if p.section == sectionOptions {
			p.draft.rec.Options = append(p.draft.rec.Options, Option{Flag: cells[0], Description: second})
		} else {
			p.draft.rec.Examples = append(p.draft.rec.Examples, Example{Command: cells[0], Description: second})
		}
	}
}

// finish closes the open command section, if any.
func (p *mdParser) finish() {
	d := p.draft
	if d == nil {
		return
	}
	p.draft = nil
	p.pending = ""

	d.rec.Description = strings.TrimSpace(strings.Join(d.description, "\n"))
	if d.rec.Description == "" {
		d.rec.Description = d.fallback
	}
	if err := ValidateRecord(&d.rec); err != nil {
		p.errs = append(p.errs, &apperrors.ParseError{
			Source: p.source,
			Line:   d.line,
			Entry:  d.rec.Name,
			Reason: err.Error(),
		})
		return
	}
	p.records = append(p.records, d.rec)
}

func (p *mdParser) lineOf(n ast.Node) int {
	lines := n.Lines()
	if lines.Len() == 0 {
		return 0
	}
	return offsetToLine(p.lineStarts, lines.At(0).Start) + 1
}

// splitCommandHeading turns "`ping` — check connectivity" into the command
// name and the trailing text. Names may span several words ("git log").
func splitCommandHeading(title string) (string, string) {
	head, rest := title, ""
	for _, sep := range []string{" — ", " – ", " - ", ": "} {
		if i := strings.Index(title, sep); i > 0 {
			head, rest = title[:i], title[i+len(sep):]
			break
		}
	}
	name := strings.Join(strings.Fields(strings.Trim(head, "`*_ \t")), " ")
	return name, strings.TrimSpace(rest)
}

// splitCodeLead splits an inline block that starts with a code span, such
// as "`-c count` — stop after count replies".
func splitCodeLead(block ast.Node, src []byte) (string, string, bool) {
	cs, ok := block.FirstChild().(*ast.CodeSpan)
	if !ok {
		return "", "", false
	}
	var b strings.Builder
	for c := cs.NextSibling(); c != nil; c = c.NextSibling() {
		b.WriteString(nodeText(c, src))
	}
	rest := strings.TrimSpace(b.String())
	rest = strings.TrimSpace(strings.TrimLeft(rest, "-—–:"))
	return inlineText(cs, src), rest, true
}

func inlineText(n ast.Node, src []byte) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		b.WriteString(nodeText(c, src))
	}
	return strings.TrimSpace(b.String())
}

func nodeText(n ast.Node, src []byte) string {
	switch t := n.(type) {
	case *ast.Text:
		s := string(t.Segment.Value(src))
		if t.SoftLineBreak() || t.HardLineBreak() {
			s += "\n"
		}
		return s
	case *ast.String:
		return string(t.Value)
	default:
		var b strings.Builder
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			b.WriteString(nodeText(c, src))
		}
		return b.String()
	}
}

func blockLines(n ast.Node, src []byte) []string {
	lines := n.Lines()
	out := make([]string, 0, lines.Len())
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		out = append(out, strings.TrimRight(string(seg.Value(src)), "\r\n"))
	}
	return out
}

func computeLineStarts(content []byte) []int {
	starts := []int{0}
	for i, c := range content {
		if c == '\n' && i+1 < len(content) {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// offsetToLine converts a byte offset to a 0-indexed line number.
func offsetToLine(lineStarts []int, offset int) int {
	return sort.Search(len(lineStarts), func(i int) bool {
		return lineStarts[i] > offset
	}) - 1
}
