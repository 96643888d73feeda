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

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	apperrors "github.com/Adithya-Monish-Kumar-K/linux-command-library/pkg/errors"
)

// maxParallelFiles bounds concurrent file parsing.
const maxParallelFiles = 8

// YAMLSource reads command records from a category tree:
//
//	<root>/<Category>/<command>.yml
//
// The category defaults to the directory name. Root may also point at a
// single YAML file holding one record or a list of records.
type YAMLSource struct {
	Root            string
	DefaultCategory string
	logger          *slog.Logger
}

// NewYAMLSource creates a YAMLSource rooted at root.
func NewYAMLSource(root, defaultCategory string) *YAMLSource {
	return &YAMLSource{
		Root:            root,
		DefaultCategory: defaultCategory,
		logger:          slog.Default().With("component", "yaml-source"),
	}
}

func (s *YAMLSource) Name() string {
	return s.Root
}

type yamlFile struct {
	path     string
	category string
}

// Records parses every YAML file under Root in sorted category, then file
// order. Parse errors from all files are joined so a validation run can
// report every problem at once.
func (s *YAMLSource) Records(ctx context.Context) ([]CommandRecord, error) {
	files, err := s.discover()
	if err != nil {
		return nil, err
	}

	parsed := make([][]CommandRecord, len(files))
	parseErrs := make([]error, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelFiles)
	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(f.path)
			if err != nil {
				return fmt.Errorf("reading %s: %w", f.path, err)
			}
			recs, err := ParseYAML(data, f.path, f.category)
			if err != nil {
				parseErrs[i] = err
				return nil
			}
			parsed[i] = recs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := errors.Join(parseErrs...); err != nil {
		return nil, err
	}

	var records []CommandRecord
	for _, recs := range parsed {
		records = append(records, recs...)
	}
	s.logger.Debug("yaml source parsed",
		"root", s.Root,
		"files", len(files),
		"records", len(records),
	)
	return records, nil
}

func (s *YAMLSource) discover() ([]yamlFile, error) {
	info, err := os.Stat(s.Root)
	if err != nil {
		return nil, fmt.Errorf("opening commands path: %w", err)
	}
	if !info.IsDir() {
		return []yamlFile{{path: s.Root, category: s.DefaultCategory}}, nil
	}

	entries, err := os.ReadDir(s.Root)
	if err != nil {
		return nil, fmt.Errorf("listing commands path: %w", err)
	}
	var files []yamlFile
	var categories []string
	for _, entry := range entries {
		if entry.IsDir() {
			if !strings.HasPrefix(entry.Name(), ".") {
				categories = append(categories, entry.Name())
			}
			continue
		}
		if isYAMLFile(entry.Name()) {
			files = append(files, yamlFile{path: filepath.Join(s.Root, entry.Name()), category: s.DefaultCategory})
		}
	}
	sort.Strings(categories)
	for _, cat := range categories {
		dir := filepath.Join(s.Root, cat)
		catEntries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("listing category %s: %w", cat, err)
		}
		names := make([]string, 0, len(catEntries))
		for _, e := range catEntries {
			if !e.IsDir() && isYAMLFile(e.Name()) {
				names = append(names, e.Name())
			}
		}
		sort.Strings(names)
		if len(names) == 0 {
			s.logger.Warn("category directory has no yaml files", "category", cat)
		}
		for _, name := range names {
			files = append(files, yamlFile{path: filepath.Join(dir, name), category: cat})
		}
	}
	return files, nil
}

func isYAMLFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yml" || ext == ".yaml"
}

// yamlRecord mirrors the loose on-disk format; options and examples accept
// several shapes and are decoded by hand.
type yamlRecord struct {
	Name        string    `yaml:"name"`
	Command     string    `yaml:"command"`
	Title       string    `yaml:"title"`
	Category    string    `yaml:"category"`
	Description string    `yaml:"description"`
	Usage       string    `yaml:"usage"`
	Syntax      string    `yaml:"syntax"`
	Options     yaml.Node `yaml:"options"`
	Examples    yaml.Node `yaml:"examples"`
	Tags        []string  `yaml:"tags"`
}

// ParseYAML decodes one YAML document holding either a single record or a
// sequence of records. category fills records that do not name their own.
func ParseYAML(data []byte, source, category string) ([]CommandRecord, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, &apperrors.ParseError{Source: source, Reason: err.Error()}
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		return nil, &apperrors.ParseError{Source: source, Reason: "empty document"}
	}
	doc := root.Content[0]

	var nodes []*yaml.Node
	switch doc.Kind {
	case yaml.MappingNode:
		nodes = []*yaml.Node{doc}
	case yaml.SequenceNode:
		nodes = doc.Content
	default:
		return nil, &apperrors.ParseError{Source: source, Line: doc.Line, Reason: "expected a mapping or a list of mappings"}
	}

	records := make([]CommandRecord, 0, len(nodes))
	for _, n := range nodes {
		rec, err := decodeRecord(n, source, category)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func decodeRecord(n *yaml.Node, source, category string) (CommandRecord, error) {
	var raw yamlRecord
	if err := n.Decode(&raw); err != nil {
		return CommandRecord{}, &apperrors.ParseError{Source: source, Line: n.Line, Reason: err.Error()}
	}
	name := firstNonEmpty(raw.Name, raw.Command, raw.Title)
	rec := CommandRecord{
		Name:        strings.TrimSpace(name),
		Category:    strings.TrimSpace(firstNonEmpty(raw.Category, category)),
		Description: strings.TrimSpace(raw.Description),
		Syntax:      strings.TrimSpace(firstNonEmpty(raw.Usage, raw.Syntax)),
		Tags:        raw.Tags,
		Source:      source,
	}
	opts, err := decodeOptions(&raw.Options)
	if err != nil {
		return CommandRecord{}, &apperrors.ParseError{Source: source, Line: raw.Options.Line, Entry: rec.Name, Reason: err.Error()}
	}
	rec.Options = opts
	examples, err := decodeExamples(&raw.Examples)
	if err != nil {
		return CommandRecord{}, &apperrors.ParseError{Source: source, Line: raw.Examples.Line, Entry: rec.Name, Reason: err.Error()}
	}
	rec.Examples = examples
	if err := ValidateRecord(&rec); err != nil {
		return CommandRecord{}, &apperrors.ParseError{Source: source, Line: n.Line, Entry: rec.Name, Reason: err.Error()}
	}
	return rec, nil
}

func decodeOptions(n *yaml.Node) ([]Option, error) {
	switch n.Kind {
	case 0:
		return nil, nil
	case yaml.SequenceNode:
		opts := make([]Option, 0, len(n.Content))
		for _, item := range n.Content {
			switch item.Kind {
			case yaml.ScalarNode:
				flag, desc := splitFlagText(item.Value)
				opts = append(opts, Option{Flag: flag, Description: desc})
			case yaml.MappingNode:
				var o struct {
					Flag        string `yaml:"flag"`
					Description string `yaml:"description"`
					Meaning     string `yaml:"meaning"`
				}
				if err := item.Decode(&o); err != nil {
					return nil, err
				}
				opts = append(opts, Option{
					Flag:        strings.TrimSpace(o.Flag),
					Description: strings.TrimSpace(firstNonEmpty(o.Description, o.Meaning)),
				})
			default:
				return nil, fmt.Errorf("line %d: option must be a string or a mapping", item.Line)
			}
		}
		return opts, nil
	case yaml.MappingNode:
		opts := make([]Option, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			opts = append(opts, Option{
				Flag:        strings.TrimSpace(n.Content[i].Value),
				Description: strings.TrimSpace(n.Content[i+1].Value),
			})
		}
		return opts, nil
	default:
		return nil, errors.New("'options' should be a list or mapping")
	}
}

func decodeExamples(n *yaml.Node) ([]Example, error) {
	switch n.Kind {
	case 0:
		return nil, nil
	case yaml.ScalarNode:
		if strings.TrimSpace(n.Value) == "" {
			return nil, nil
		}
		return []Example{{Command: strings.TrimSpace(n.Value)}}, nil
	case yaml.SequenceNode:
		examples := make([]Example, 0, len(n.Content))
		for _, item := range n.Content {
			switch item.Kind {
			case yaml.ScalarNode:
				examples = append(examples, Example{Command: strings.TrimSpace(item.Value)})
			case yaml.MappingNode:
				var e struct {
					Cmd         string `yaml:"cmd"`
					Command     string `yaml:"command"`
					Description string `yaml:"description"`
				}
				if err := item.Decode(&e); err != nil {
					return nil, err
				}
				examples = append(examples, Example{
					Command:     strings.TrimSpace(firstNonEmpty(e.Cmd, e.Command)),
					Description: strings.TrimSpace(e.Description),
				})
			default:
				return nil, fmt.Errorf("line %d: example must be a string or a mapping", item.Line)
			}
		}
		return examples, nil
	default:
		return nil, errors.New("'examples' should be a list or a string")
	}
}

// splitFlagText splits "-c, --count  number of probes" style text into the
// flag and its description.
func splitFlagText(s string) (string, string) {
	s = strings.TrimSpace(s)
	for _, sep := range []string{" — ", " – ", " - ", ": ", "\t"} {
		if i := strings.Index(s, sep); i > 0 {
			return strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+len(sep):])
		}
	}
	if i := strings.Index(s, "  "); i > 0 {
		return strings.TrimSpace(s[:i]), strings.TrimSpace(s[i:])
	}
	return s, ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// YAMLDocument is the on-disk layout written for a record, in the field
// order authors expect to read it.
type YAMLDocument struct {
	Name        string    `yaml:"name"`
	Category    string    `yaml:"category"`
	Description string    `yaml:"description"`
	Usage       string    `yaml:"usage,omitempty"`
	Options     []Option  `yaml:"options,omitempty"`
	Examples    []Example `yaml:"examples,omitempty"`
	Tags        []string  `yaml:"tags,omitempty"`
}

// NewYAMLDocument converts rec into its on-disk layout.
func NewYAMLDocument(rec CommandRecord) YAMLDocument {
	return YAMLDocument{
		Name:        rec.Name,
		Category:    rec.Category,
		Description: rec.Description,
		Usage:       rec.Syntax,
		Options:     rec.Options,
		Examples:    rec.Examples,
		Tags:        rec.Tags,
	}
}

// EncodeYAML serializes rec in the format ParseYAML reads.
func EncodeYAML(rec CommandRecord) ([]byte, error) {
	return yaml.Marshal(NewYAMLDocument(rec))
}
